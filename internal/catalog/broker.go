package catalog

import (
	"context"
	"fmt"

	"github.com/tradinghub/backend/internal/model"
	"github.com/tradinghub/backend/internal/repository"
)

// BrokerService はブローカーのサービス層。
type BrokerService struct {
	base
	repo repository.BrokerRepository
}

// NewBrokerService はBrokerServiceの新しいインスタンスを生成する。
func NewBrokerService(repo repository.BrokerRepository, deps Deps) *BrokerService {
	return &BrokerService{base: newBase(deps), repo: repo}
}

// List は条件に一致するブローカーと、ページング前の総件数を返す。
func (s *BrokerService) List(ctx context.Context, filter model.BrokerFilter) ([]*model.Broker, int, error) {
	filter.Limit = NormalizeLimit(filter.Limit, DefaultListLimit, MaxListLimit)
	if filter.Skip < 0 {
		filter.Skip = 0
	}

	brokers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("ブローカー一覧の取得に失敗しました: %w", err)
	}
	return brokers, total, nil
}

// Search は名前または取扱銘柄でブローカーを検索する。
func (s *BrokerService) Search(ctx context.Context, query string, limit int) ([]*model.Broker, error) {
	if query == "" {
		return nil, model.NewValidationError("q is required")
	}
	brokers, err := s.repo.Search(ctx, query, NormalizeLimit(limit, DefaultSearchLimit, MaxSearchLimit))
	if err != nil {
		return nil, fmt.Errorf("ブローカーの検索に失敗しました: %w", err)
	}
	return brokers, nil
}

// Get は指定IDのブローカーを返す。
func (s *BrokerService) Get(ctx context.Context, id string) (*model.Broker, error) {
	b, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("ブローカーの取得に失敗しました: %w", err)
	}
	if b == nil {
		return nil, model.NewBrokerNotFoundError(id)
	}
	return b, nil
}

// Create は入力を検証してブローカーを作成する。
// bonusは任意項目。
func (s *BrokerService) Create(ctx context.Context, in model.BrokerPatch) (*model.Broker, error) {
	if err := requireFields(
		field{"name", in.Name != nil},
		field{"accountTypes", in.AccountTypes != nil},
		field{"minDeposit", in.MinDeposit != nil},
		field{"maxLeverage", in.MaxLeverage != nil},
		field{"spreadsFrom", in.SpreadsFrom != nil},
		field{"rating", in.Rating != nil},
		field{"regulation", in.Regulation != nil},
		field{"instruments", in.Instruments != nil},
		field{"platformsSupported", in.PlatformsSupported != nil},
		field{"withdrawalTime", in.WithdrawalTime != nil},
		field{"customerSupport", in.CustomerSupport != nil},
		field{"affiliateUrl", in.AffiliateURL != nil},
	); err != nil {
		return nil, err
	}

	now := s.now()
	b := &model.Broker{
		ID:        s.newID(),
		Currency:  DefaultCurrency,
		Verified:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.apply(b, in)
	if err := s.validate(b); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, b); err != nil {
		return nil, fmt.Errorf("ブローカーの作成に失敗しました: %w", err)
	}
	s.recorder.RecordCatalogMutation(EntityBroker, ActionCreate)
	return b, nil
}

// Update は指定されたフィールドのみを更新し、updatedAtを現在時刻にする。
func (s *BrokerService) Update(ctx context.Context, id string, patch model.BrokerPatch) (*model.Broker, error) {
	b, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.apply(b, patch)
	if err := s.validate(b); err != nil {
		return nil, err
	}
	b.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, b); err != nil {
		return nil, fmt.Errorf("ブローカーの更新に失敗しました: %w", err)
	}
	s.recorder.RecordCatalogMutation(EntityBroker, ActionUpdate)
	return b, nil
}

// Delete は指定IDのブローカーを削除する。
func (s *BrokerService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("ブローカーの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewBrokerNotFoundError(id)
	}
	s.recorder.RecordCatalogMutation(EntityBroker, ActionDelete)
	return nil
}

func (s *BrokerService) apply(b *model.Broker, patch model.BrokerPatch) {
	if patch.Name != nil {
		b.Name = s.sanitizer.Sanitize(*patch.Name)
	}
	if patch.AccountTypes != nil {
		b.AccountTypes = s.sanitizer.SanitizeList(*patch.AccountTypes)
	}
	if patch.MinDeposit != nil {
		b.MinDeposit = *patch.MinDeposit
	}
	if patch.MaxLeverage != nil {
		b.MaxLeverage = s.sanitizer.Sanitize(*patch.MaxLeverage)
	}
	if patch.SpreadsFrom != nil {
		b.SpreadsFrom = *patch.SpreadsFrom
	}
	if patch.Currency != nil {
		b.Currency = s.sanitizer.Sanitize(*patch.Currency)
	}
	if patch.Bonus != nil {
		// 空文字はボーナスなしとして扱う
		if bonus := s.sanitizer.Sanitize(*patch.Bonus); bonus != "" {
			b.Bonus = &bonus
		} else {
			b.Bonus = nil
		}
	}
	if patch.Rating != nil {
		b.Rating = *patch.Rating
	}
	if patch.Regulation != nil {
		b.Regulation = s.sanitizer.SanitizeList(*patch.Regulation)
	}
	if patch.Instruments != nil {
		b.Instruments = s.sanitizer.SanitizeList(*patch.Instruments)
	}
	if patch.PlatformsSupported != nil {
		b.PlatformsSupported = s.sanitizer.SanitizeList(*patch.PlatformsSupported)
	}
	if patch.WithdrawalTime != nil {
		b.WithdrawalTime = s.sanitizer.Sanitize(*patch.WithdrawalTime)
	}
	if patch.CustomerSupport != nil {
		b.CustomerSupport = s.sanitizer.Sanitize(*patch.CustomerSupport)
	}
	if patch.Verified != nil {
		b.Verified = *patch.Verified
	}
	if patch.AffiliateURL != nil {
		b.AffiliateURL = *patch.AffiliateURL
	}
	for _, list := range []*[]string{&b.AccountTypes, &b.Regulation, &b.Instruments, &b.PlatformsSupported} {
		if *list == nil {
			*list = []string{}
		}
	}
}

func (s *BrokerService) validate(b *model.Broker) error {
	checks := []error{
		checkNotBlank("name", b.Name),
		checkNonNegative("minDeposit", b.MinDeposit),
		checkNonNegative("spreadsFrom", b.SpreadsFrom),
		checkNotBlank("currency", b.Currency),
		checkRange("rating", b.Rating, 0, 5),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return s.checkAffiliateURL(b.AffiliateURL)
}
