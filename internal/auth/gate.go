package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/tradinghub/backend/internal/model"
)

var (
	// ErrAuthenticationRequired は認証済みユーザーに解決できなかったことを示す（401）。
	ErrAuthenticationRequired = errors.New("authentication required")
	// ErrInsufficientPrivilege は認証済みだが管理者でないことを示す（403）。
	ErrInsufficientPrivilege = errors.New("admin access required")
)

// 拒否理由のラベル
const (
	DenyUnauthenticated = "unauthenticated"
	DenyNotAdmin        = "not_admin"
)

// Gate はリクエスト単位の権限判定を行う。
type Gate struct {
	resolver *Resolver
	observer Observer
}

// NewGate はGateを生成する。observerがnilの場合は記録しない。
func NewGate(resolver *Resolver, observer Observer) *Gate {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Gate{resolver: resolver, observer: observer}
}

// resolution はコンテキストに格納済みの認証結果を優先し、なければ解決する。
func (g *Gate) resolution(ctx context.Context, r *http.Request) Resolution {
	if res, ok := ResolutionFromContext(ctx); ok {
		return res
	}
	return g.resolver.Resolve(ctx, r)
}

// RequireAuthenticated は認証済みユーザーを返す。未認証の場合はErrAuthenticationRequired。
func (g *Gate) RequireAuthenticated(ctx context.Context, r *http.Request) (*model.User, error) {
	res := g.resolution(ctx, r)
	if !res.Authenticated() {
		g.observer.AccessDenied(DenyUnauthenticated)
		return nil, ErrAuthenticationRequired
	}
	return res.User, nil
}

// RequireAdmin は管理者ユーザーを返す。
// 未認証はErrAuthenticationRequired、管理者でない場合はErrInsufficientPrivilege。
func (g *Gate) RequireAdmin(ctx context.Context, r *http.Request) (*model.User, error) {
	res := g.resolution(ctx, r)
	if !res.Authenticated() {
		g.observer.AccessDenied(DenyUnauthenticated)
		return nil, ErrAuthenticationRequired
	}
	if !res.User.IsAdmin {
		g.observer.AccessDenied(DenyNotAdmin)
		return nil, ErrInsufficientPrivilege
	}
	return res.User, nil
}
