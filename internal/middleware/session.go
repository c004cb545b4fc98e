// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/tradinghub/backend/internal/auth"
	"github.com/tradinghub/backend/internal/model"
)

// IdentityResolver はリクエストの認証結果を解決するインターフェース。
// auth.Resolverの部分集合として定義する。
type IdentityResolver interface {
	Resolve(ctx context.Context, r *http.Request) auth.Resolution
}

// AccessGate は権限判定のインターフェース。auth.Gateの部分集合。
type AccessGate interface {
	RequireAuthenticated(ctx context.Context, r *http.Request) (*model.User, error)
	RequireAdmin(ctx context.Context, r *http.Request) (*model.User, error)
}

// NewIdentityMiddleware はリクエストごとに1回だけ認証結果を解決し、
// コンテキストに格納するミドルウェアを返す。
// 未認証でも拒否はしない。拒否はRequireAuth/RequireAdminが行う。
func NewIdentityMiddleware(resolver IdentityResolver) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			res := resolver.Resolve(r.Context(), r)
			ctx := auth.WithResolution(r.Context(), res)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// NewRequireAuthMiddleware は認証済みユーザーのみを通すミドルウェアを返す。
// 未認証の場合は401を返す。
func NewRequireAuthMiddleware(gate AccessGate) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := gate.RequireAuthenticated(r.Context(), r); err != nil {
				writeGateError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// NewRequireAdminMiddleware は管理者のみを通すミドルウェアを返す。
// 未認証は401、管理者でない場合は403を返し、後続のハンドラーは実行しない。
func NewRequireAdminMiddleware(gate AccessGate) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := gate.RequireAdmin(r.Context(), r); err != nil {
				if errors.Is(err, auth.ErrInsufficientPrivilege) {
					slog.Warn("admin access denied",
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
					)
				}
				writeGateError(w, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// writeGateError はGateのエラーをHTTPレスポンスに変換する。
func writeGateError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInsufficientPrivilege):
		WriteAPIError(w, model.NewInsufficientPrivilegeError())
	case errors.Is(err, auth.ErrAuthenticationRequired):
		WriteAPIError(w, model.NewAuthenticationRequiredError())
	default:
		slog.Error("authorization failed",
			slog.String("error", err.Error()),
		)
		WriteInternalServerError(w)
	}
}

// UserIDFromContext はコンテキストに格納済みの認証結果からユーザーIDを返す。
// 未認証の場合は空文字とfalseを返す。
func UserIDFromContext(ctx context.Context) (string, bool) {
	user := auth.UserFromContext(ctx)
	if user == nil {
		return "", false
	}
	return user.ID, true
}

// compile-time interface check
var (
	_ IdentityResolver = (*auth.Resolver)(nil)
	_ AccessGate       = (*auth.Gate)(nil)
)
