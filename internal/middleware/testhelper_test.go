package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"

	"github.com/tradinghub/backend/internal/auth"
	"github.com/tradinghub/backend/internal/model"
)

// requestAs は指定ユーザーとして認証済みのリクエストを生成する。
// userIDが空の場合は未認証のリクエストを返す。
func requestAs(method, target, userID string) *http.Request {
	req := httptest.NewRequest(method, target, nil)
	if userID == "" {
		return req
	}
	res := auth.Resolution{
		User:    &model.User{ID: userID},
		Outcome: auth.OutcomeAuthenticated,
		Source:  auth.SourceCookie,
	}
	return req.WithContext(auth.WithResolution(req.Context(), res))
}

// okHandler は200を返し、呼び出し回数を数えるハンドラー。
type okHandler struct {
	calls int
}

func (h *okHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	h.calls++
	w.WriteHeader(http.StatusOK)
}

// mockGate はAccessGateのモック。
type mockGate struct {
	requireAuthFn  func(ctx context.Context, r *http.Request) (*model.User, error)
	requireAdminFn func(ctx context.Context, r *http.Request) (*model.User, error)
}

func (m *mockGate) RequireAuthenticated(ctx context.Context, r *http.Request) (*model.User, error) {
	return m.requireAuthFn(ctx, r)
}

func (m *mockGate) RequireAdmin(ctx context.Context, r *http.Request) (*model.User, error) {
	return m.requireAdminFn(ctx, r)
}

// mockResolver はIdentityResolverのモック。
type mockResolver struct {
	calls int
	res   auth.Resolution
}

func (m *mockResolver) Resolve(context.Context, *http.Request) auth.Resolution {
	m.calls++
	return m.res
}

var (
	_ AccessGate       = (*mockGate)(nil)
	_ IdentityResolver = (*mockResolver)(nil)
)
