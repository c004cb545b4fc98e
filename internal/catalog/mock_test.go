package catalog

import (
	"context"
	"time"

	"github.com/tradinghub/backend/internal/model"
	"github.com/tradinghub/backend/internal/repository"
)

var testNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

// --- ProviderRepository モック ---

type mockProviderRepo struct {
	listFn     func(ctx context.Context, filter model.ProviderFilter) ([]*model.Provider, int, error)
	searchFn   func(ctx context.Context, q string, limit int) ([]*model.Provider, error)
	findByIDFn func(ctx context.Context, id string) (*model.Provider, error)
	createFn   func(ctx context.Context, p *model.Provider) error
	updateFn   func(ctx context.Context, p *model.Provider) error
	deleteFn   func(ctx context.Context, id string) (bool, error)
}

func (m *mockProviderRepo) List(ctx context.Context, filter model.ProviderFilter) ([]*model.Provider, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockProviderRepo) Search(ctx context.Context, q string, limit int) ([]*model.Provider, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, q, limit)
	}
	return nil, nil
}

func (m *mockProviderRepo) FindByID(ctx context.Context, id string) (*model.Provider, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockProviderRepo) Create(ctx context.Context, p *model.Provider) error {
	if m.createFn != nil {
		return m.createFn(ctx, p)
	}
	return nil
}

func (m *mockProviderRepo) Update(ctx context.Context, p *model.Provider) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, p)
	}
	return nil
}

func (m *mockProviderRepo) Delete(ctx context.Context, id string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return false, nil
}

func (m *mockProviderRepo) Count(context.Context) (int, error) { return 0, nil }

// --- BrokerRepository モック ---

type mockBrokerRepo struct {
	listFn     func(ctx context.Context, filter model.BrokerFilter) ([]*model.Broker, int, error)
	findByIDFn func(ctx context.Context, id string) (*model.Broker, error)
	createFn   func(ctx context.Context, b *model.Broker) error
	updateFn   func(ctx context.Context, b *model.Broker) error
	deleteFn   func(ctx context.Context, id string) (bool, error)
}

func (m *mockBrokerRepo) List(ctx context.Context, filter model.BrokerFilter) ([]*model.Broker, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockBrokerRepo) Search(context.Context, string, int) ([]*model.Broker, error) {
	return nil, nil
}

func (m *mockBrokerRepo) FindByID(ctx context.Context, id string) (*model.Broker, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockBrokerRepo) Create(ctx context.Context, b *model.Broker) error {
	if m.createFn != nil {
		return m.createFn(ctx, b)
	}
	return nil
}

func (m *mockBrokerRepo) Update(ctx context.Context, b *model.Broker) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, b)
	}
	return nil
}

func (m *mockBrokerRepo) Delete(ctx context.Context, id string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return false, nil
}

func (m *mockBrokerRepo) Count(context.Context) (int, error) { return 0, nil }

// --- TestimonialRepository モック ---

type mockTestimonialRepo struct {
	listFn        func(ctx context.Context, filter model.TestimonialFilter) ([]*model.Testimonial, int, error)
	findByIDFn    func(ctx context.Context, id string) (*model.Testimonial, error)
	createFn      func(ctx context.Context, t *model.Testimonial) error
	updateFn      func(ctx context.Context, t *model.Testimonial) error
	setApprovedFn func(ctx context.Context, id string, approved bool) (bool, error)
	deleteFn      func(ctx context.Context, id string) (bool, error)
}

func (m *mockTestimonialRepo) List(ctx context.Context, filter model.TestimonialFilter) ([]*model.Testimonial, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockTestimonialRepo) FindByID(ctx context.Context, id string) (*model.Testimonial, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockTestimonialRepo) Create(ctx context.Context, t *model.Testimonial) error {
	if m.createFn != nil {
		return m.createFn(ctx, t)
	}
	return nil
}

func (m *mockTestimonialRepo) Update(ctx context.Context, t *model.Testimonial) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, t)
	}
	return nil
}

func (m *mockTestimonialRepo) SetApproved(ctx context.Context, id string, approved bool) (bool, error) {
	if m.setApprovedFn != nil {
		return m.setApprovedFn(ctx, id, approved)
	}
	return false, nil
}

func (m *mockTestimonialRepo) Delete(ctx context.Context, id string) (bool, error) {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return false, nil
}

func (m *mockTestimonialRepo) Count(context.Context) (int, error) { return 0, nil }

// --- MutationRecorder モック ---

type recordingRecorder struct {
	calls []string
}

func (r *recordingRecorder) RecordCatalogMutation(entity, action string) {
	r.calls = append(r.calls, entity+":"+action)
}

// compile-time interface check
var (
	_ repository.ProviderRepository    = (*mockProviderRepo)(nil)
	_ repository.BrokerRepository      = (*mockBrokerRepo)(nil)
	_ repository.TestimonialRepository = (*mockTestimonialRepo)(nil)
	_ MutationRecorder                 = (*recordingRecorder)(nil)
)

func ptr[T any](v T) *T { return &v }

// fixed はテスト用に時刻とID生成を固定する。
func fixed(b *base) {
	b.now = func() time.Time { return testNow }
	b.newID = func() string { return "fixed-id" }
}
