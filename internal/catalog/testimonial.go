package catalog

import (
	"context"
	"fmt"

	"github.com/tradinghub/backend/internal/model"
	"github.com/tradinghub/backend/internal/repository"
)

// TestimonialService は推薦文のサービス層。
type TestimonialService struct {
	base
	repo repository.TestimonialRepository
}

// NewTestimonialService はTestimonialServiceの新しいインスタンスを生成する。
func NewTestimonialService(repo repository.TestimonialRepository, deps Deps) *TestimonialService {
	return &TestimonialService{base: newBase(deps), repo: repo}
}

// List は推薦文を新しい順に返す。filter.Approvedがnilの場合は承認状態で絞り込まない。
func (s *TestimonialService) List(ctx context.Context, filter model.TestimonialFilter) ([]*model.Testimonial, int, error) {
	filter.Limit = NormalizeLimit(filter.Limit, DefaultListLimit, MaxListLimit)
	if filter.Skip < 0 {
		filter.Skip = 0
	}

	testimonials, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("推薦文一覧の取得に失敗しました: %w", err)
	}
	return testimonials, total, nil
}

// Get は指定IDの推薦文を返す。
func (s *TestimonialService) Get(ctx context.Context, id string) (*model.Testimonial, error) {
	t, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("推薦文の取得に失敗しました: %w", err)
	}
	if t == nil {
		return nil, model.NewTestimonialNotFoundError(id)
	}
	return t, nil
}

// Create は入力を検証して推薦文を作成する。approvedの既定値はtrue。
func (s *TestimonialService) Create(ctx context.Context, in model.TestimonialPatch) (*model.Testimonial, error) {
	if err := requireFields(
		field{"name", in.Name != nil},
		field{"role", in.Role != nil},
		field{"avatar", in.Avatar != nil},
		field{"rating", in.Rating != nil},
		field{"text", in.Text != nil},
		field{"location", in.Location != nil},
	); err != nil {
		return nil, err
	}

	t := &model.Testimonial{
		ID:        s.newID(),
		Approved:  true,
		CreatedAt: s.now(),
	}
	s.apply(t, in)
	if err := validateTestimonial(t); err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, t); err != nil {
		return nil, fmt.Errorf("推薦文の作成に失敗しました: %w", err)
	}
	s.recorder.RecordCatalogMutation(EntityTestimonial, ActionCreate)
	return t, nil
}

// Update は指定されたフィールドのみを更新する。
func (s *TestimonialService) Update(ctx context.Context, id string, patch model.TestimonialPatch) (*model.Testimonial, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	s.apply(t, patch)
	if err := validateTestimonial(t); err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, t); err != nil {
		return nil, fmt.Errorf("推薦文の更新に失敗しました: %w", err)
	}
	s.recorder.RecordCatalogMutation(EntityTestimonial, ActionUpdate)
	return t, nil
}

// SetApproved は推薦文の承認状態を変更する。
func (s *TestimonialService) SetApproved(ctx context.Context, id string, approved bool) error {
	updated, err := s.repo.SetApproved(ctx, id, approved)
	if err != nil {
		return fmt.Errorf("推薦文の承認状態の更新に失敗しました: %w", err)
	}
	if !updated {
		return model.NewTestimonialNotFoundError(id)
	}
	s.recorder.RecordCatalogMutation(EntityTestimonial, ActionApprove)
	return nil
}

// Delete は指定IDの推薦文を削除する。
func (s *TestimonialService) Delete(ctx context.Context, id string) error {
	deleted, err := s.repo.Delete(ctx, id)
	if err != nil {
		return fmt.Errorf("推薦文の削除に失敗しました: %w", err)
	}
	if !deleted {
		return model.NewTestimonialNotFoundError(id)
	}
	s.recorder.RecordCatalogMutation(EntityTestimonial, ActionDelete)
	return nil
}

func (s *TestimonialService) apply(t *model.Testimonial, patch model.TestimonialPatch) {
	if patch.Name != nil {
		t.Name = s.sanitizer.Sanitize(*patch.Name)
	}
	if patch.Role != nil {
		t.Role = s.sanitizer.Sanitize(*patch.Role)
	}
	if patch.Avatar != nil {
		t.Avatar = s.sanitizer.Sanitize(*patch.Avatar)
	}
	if patch.Rating != nil {
		t.Rating = *patch.Rating
	}
	if patch.Text != nil {
		t.Text = s.sanitizer.Sanitize(*patch.Text)
	}
	if patch.Location != nil {
		t.Location = s.sanitizer.Sanitize(*patch.Location)
	}
	if patch.Approved != nil {
		t.Approved = *patch.Approved
	}
}

func validateTestimonial(t *model.Testimonial) error {
	checks := []error{
		checkNotBlank("name", t.Name),
		checkRange("rating", t.Rating, 1, 5),
		checkNotBlank("text", t.Text),
	}
	for _, err := range checks {
		if err != nil {
			return err
		}
	}
	return nil
}
