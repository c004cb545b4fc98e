package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/tradinghub/backend/internal/auth"
	"github.com/tradinghub/backend/internal/model"
)

// --- モック定義 ---

type mockAuthService struct {
	exchangeSessionFn func(ctx context.Context, sessionID string) (*model.User, *model.SessionData, error)
	invalidateFn      func(ctx context.Context, userID string) error
}

func (m *mockAuthService) ExchangeSession(ctx context.Context, sessionID string) (*model.User, *model.SessionData, error) {
	if m.exchangeSessionFn != nil {
		return m.exchangeSessionFn(ctx, sessionID)
	}
	return nil, nil, nil
}

func (m *mockAuthService) Invalidate(ctx context.Context, userID string) error {
	if m.invalidateFn != nil {
		return m.invalidateFn(ctx, userID)
	}
	return nil
}

// stubResolver は常に同じ認証結果を返すIdentityResolver。
type stubResolver struct {
	res auth.Resolution
}

func (s stubResolver) Resolve(context.Context, *http.Request) auth.Resolution {
	return s.res
}

type mockProviderService struct {
	listFn   func(ctx context.Context, filter model.ProviderFilter) ([]*model.Provider, int, error)
	searchFn func(ctx context.Context, query string, limit int) ([]*model.Provider, error)
	getFn    func(ctx context.Context, id string) (*model.Provider, error)
	createFn func(ctx context.Context, in model.ProviderPatch) (*model.Provider, error)
	updateFn func(ctx context.Context, id string, patch model.ProviderPatch) (*model.Provider, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockProviderService) List(ctx context.Context, filter model.ProviderFilter) ([]*model.Provider, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockProviderService) Search(ctx context.Context, query string, limit int) ([]*model.Provider, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return nil, nil
}

func (m *mockProviderService) Get(ctx context.Context, id string) (*model.Provider, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.NewProviderNotFoundError(id)
}

func (m *mockProviderService) Create(ctx context.Context, in model.ProviderPatch) (*model.Provider, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return &model.Provider{ID: "new"}, nil
}

func (m *mockProviderService) Update(ctx context.Context, id string, patch model.ProviderPatch) (*model.Provider, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return &model.Provider{ID: id}, nil
}

func (m *mockProviderService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockBrokerService struct {
	listFn   func(ctx context.Context, filter model.BrokerFilter) ([]*model.Broker, int, error)
	searchFn func(ctx context.Context, query string, limit int) ([]*model.Broker, error)
	getFn    func(ctx context.Context, id string) (*model.Broker, error)
	createFn func(ctx context.Context, in model.BrokerPatch) (*model.Broker, error)
	updateFn func(ctx context.Context, id string, patch model.BrokerPatch) (*model.Broker, error)
	deleteFn func(ctx context.Context, id string) error
}

func (m *mockBrokerService) List(ctx context.Context, filter model.BrokerFilter) ([]*model.Broker, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockBrokerService) Search(ctx context.Context, query string, limit int) ([]*model.Broker, error) {
	if m.searchFn != nil {
		return m.searchFn(ctx, query, limit)
	}
	return nil, nil
}

func (m *mockBrokerService) Get(ctx context.Context, id string) (*model.Broker, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.NewBrokerNotFoundError(id)
}

func (m *mockBrokerService) Create(ctx context.Context, in model.BrokerPatch) (*model.Broker, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return &model.Broker{ID: "new"}, nil
}

func (m *mockBrokerService) Update(ctx context.Context, id string, patch model.BrokerPatch) (*model.Broker, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return &model.Broker{ID: id}, nil
}

func (m *mockBrokerService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

type mockTestimonialService struct {
	listFn        func(ctx context.Context, filter model.TestimonialFilter) ([]*model.Testimonial, int, error)
	getFn         func(ctx context.Context, id string) (*model.Testimonial, error)
	createFn      func(ctx context.Context, in model.TestimonialPatch) (*model.Testimonial, error)
	updateFn      func(ctx context.Context, id string, patch model.TestimonialPatch) (*model.Testimonial, error)
	setApprovedFn func(ctx context.Context, id string, approved bool) error
	deleteFn      func(ctx context.Context, id string) error
}

func (m *mockTestimonialService) List(ctx context.Context, filter model.TestimonialFilter) ([]*model.Testimonial, int, error) {
	if m.listFn != nil {
		return m.listFn(ctx, filter)
	}
	return nil, 0, nil
}

func (m *mockTestimonialService) Get(ctx context.Context, id string) (*model.Testimonial, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, model.NewTestimonialNotFoundError(id)
}

func (m *mockTestimonialService) Create(ctx context.Context, in model.TestimonialPatch) (*model.Testimonial, error) {
	if m.createFn != nil {
		return m.createFn(ctx, in)
	}
	return &model.Testimonial{ID: "new"}, nil
}

func (m *mockTestimonialService) Update(ctx context.Context, id string, patch model.TestimonialPatch) (*model.Testimonial, error) {
	if m.updateFn != nil {
		return m.updateFn(ctx, id, patch)
	}
	return &model.Testimonial{ID: id}, nil
}

func (m *mockTestimonialService) SetApproved(ctx context.Context, id string, approved bool) error {
	if m.setApprovedFn != nil {
		return m.setApprovedFn(ctx, id, approved)
	}
	return nil
}

func (m *mockTestimonialService) Delete(ctx context.Context, id string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// compile-time interface checks
var (
	_ AuthServiceInterface        = (*mockAuthService)(nil)
	_ ProviderServiceInterface    = (*mockProviderService)(nil)
	_ BrokerServiceInterface      = (*mockBrokerService)(nil)
	_ TestimonialServiceInterface = (*mockTestimonialService)(nil)
)

// --- テストヘルパー ---

// withChiURLParam はテスト用にchiのURLパラメータを注入するヘルパー。
func withChiURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	ctx := context.WithValue(r.Context(), chi.RouteCtxKey, rctx)
	return r.WithContext(ctx)
}

// withUser はテスト用にリクエストコンテキストへ認証済みユーザーを注入するヘルパー。
func withUser(r *http.Request, user *model.User) *http.Request {
	res := auth.Resolution{User: user, Outcome: auth.OutcomeAuthenticated, Source: auth.SourceCookie}
	return r.WithContext(auth.WithResolution(r.Context(), res))
}

// parseAPIErrorResponse はレスポンスボディからAPIErrorレスポンスをパースするヘルパー。
func parseAPIErrorResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var result map[string]string
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	return result
}

// decodeBody はレスポンスボディを汎用マップにデコードするヘルパー。
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var result map[string]any
	if err := json.NewDecoder(w.Body).Decode(&result); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return result
}

func strPtr(s string) *string { return &s }
