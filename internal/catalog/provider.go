package catalog

import (
	"context"
	"fmt"

	"github.com/tradinghub/backend/internal/model"
	"github.com/tradinghub/backend/internal/repository"
)

// ProviderService はシグナルプロバイダーのサービス層。
type ProviderService struct {
	base
	repo repository.ProviderRepository
}

// NewProviderService はProviderServiceの新しいインスタンスを生成する。
func NewProviderService(repo repository.ProviderRepository, deps Deps) *ProviderService {
	return &ProviderService{base: newBase(deps), repo: repo}
}

// List は条件に一致するプロバイダーと、ページング前の総件数を返す。
func (s *ProviderService) List(ctx context.Context, filter model.ProviderFilter) ([]*model.Provider, int, error) {
	filter.Limit = NormalizeLimit(filter.Limit, DefaultListLimit, MaxListLimit)
	if filter.Skip < 0 {
		filter.Skip = 0
	}

	providers, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("プロバイダー一覧の取得に失敗しました: %w", err)
	}
	return providers, total, nil
}

// Search は名前またはシグナル種別でプロバイダーを検索する。
func (s *ProviderService) Search(ctx context.Context, query string, limit int) ([]*model.Provider, error) {
	if query == "" {
		return nil, model.NewValidationError("q is required")
	}
	providers, err := s.repo.Search(ctx, query, NormalizeLimit(limit, DefaultSearchLimit, MaxSearchLimit))
	if err != nil {
		return nil, fmt.Errorf("プロバイダーの検索に失敗しました: %w", err)
	}
	return providers, nil
}

// Get は指定IDのプロバイダーを返す。
func (s *ProviderService) Get(ctx context.Context, id string) (*model.Provider, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("プロバイダーの取得に失敗しました: %w", err)
	}
	if p == nil {
		return nil, model.NewProviderNotFoundError(id)
	}
	return p, nil
}

// Create は入力を検証してプロバイダーを作成する。
// currencyの既定値はUSD、verifiedの既定値はtrue。
func (s *ProviderService) Create(ctx context.Context, in model.ProviderPatch) (*model.Provider, error) {
	if err := requireFields(
		field{"name", in.Name != nil},
		field{"winRate", in.WinRate != nil},
		field{"tradesLastMonth", in.TradesLastMonth != nil},
		field{"signalTypes", in.SignalTypes != nil},
		field{"subscriptionPrice", in.SubscriptionPrice != nil},
		field{"rating", in.Rating != nil},
		field{"followers", in.Followers != nil},
		field{"description", in.Description != nil},
		field{"riskLevel", in.RiskLevel != nil},
		field{"avgPipsProfitMonthly", in.AvgPipsProfitMonthly != nil},
		field{"affiliateUrl", in.AffiliateURL != nil},
	); err != nil {
		return nil, err
	}

	now := s.now()
	p := &model.Provider{
		ID:        s.newID(),
		Currency:  DefaultCurrency,
		Verified:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
	s.apply(p, in)
	if err := s.validate(p); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("プロバイダーの作成に失敗しました: %w", err)
	}
	s.recorder.RecordCatalogMutation(EntityProvider, ActionCreate)
	return p, nil
}

// Update は指定されたフィールドのみを更新し、updatedAtを現在時刻にする。
func (s *ProviderService) Update(ctx context.Context, id string, patch model.ProviderPatch) (*model.Provider, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.apply(p, patch)
	if err := s.validate(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, p); err != nil {
		return nil, fmt.Errorf("プロバイダーの更新に失敗しました: %w", err)
	}
	s.recorder.RecordCatalogMutation(EntityProvider, ActionUpdate)
	return p, nil
}

// Delete は指定IDのプロバイダーを削除する。
func (s *ProviderService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("プロバイダーの削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewProviderNotFoundError(id)
	}
	s.recorder.RecordCatalogMutation(EntityProvider, ActionDelete)
	return nil
}

// apply はpatchの非nilフィールドをpへ反映する。テキストはサニタイズする。
func (s *ProviderService) apply(p *model.Provider, patch model.ProviderPatch) {
	if patch.Name != nil {
		p.Name = s.sanitizer.Sanitize(*patch.Name)
	}
	if patch.WinRate != nil {
		p.WinRate = *patch.WinRate
	}
	if patch.TradesLastMonth != nil {
		p.TradesLastMonth = *patch.TradesLastMonth
	}
	if patch.SignalTypes != nil {
		p.SignalTypes = s.sanitizer.SanitizeList(*patch.SignalTypes)
	}
	if patch.SubscriptionPrice != nil {
		p.SubscriptionPrice = *patch.SubscriptionPrice
	}
	if patch.Currency != nil {
		p.Currency = s.sanitizer.Sanitize(*patch.Currency)
	}
	if patch.Rating != nil {
		p.Rating = *patch.Rating
	}
	if patch.Followers != nil {
		p.Followers = *patch.Followers
	}
	if patch.Description != nil {
		p.Description = s.sanitizer.Sanitize(*patch.Description)
	}
	if patch.RiskLevel != nil {
		p.RiskLevel = s.sanitizer.Sanitize(*patch.RiskLevel)
	}
	if patch.AvgPipsProfitMonthly != nil {
		p.AvgPipsProfitMonthly = *patch.AvgPipsProfitMonthly
	}
	if patch.Verified != nil {
		p.Verified = *patch.Verified
	}
	if patch.AffiliateURL != nil {
		p.AffiliateURL = *patch.AffiliateURL
	}
	if p.SignalTypes == nil {
		p.SignalTypes = []string{}
	}
}

func (s *ProviderService) validate(p *model.Provider) error {
	checks := []error{
		checkNotBlank("name", p.Name),
		checkRange("winRate", p.WinRate, 0, 100),
		checkNonNegative("tradesLastMonth", p.TradesLastMonth),
		checkNonNegative("subscriptionPrice", p.SubscriptionPrice),
		checkNotBlank("currency", p.Currency),
		checkRange("rating", p.Rating, 0, 5),
		checkNonNegative("followers", p.Followers),
		checkNonNegative("avgPipsProfitMonthly", p.AvgPipsProfitMonthly),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return s.checkAffiliateURL(p.AffiliateURL)
}
