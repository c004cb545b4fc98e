// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/tradinghub/backend/internal/auth"
	"github.com/tradinghub/backend/internal/middleware"
	"github.com/tradinghub/backend/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	// ExchangeSession はsession_idをIdPで検証し、ユーザーを作成または更新する。
	ExchangeSession(ctx context.Context, sessionID string) (*model.User, *model.SessionData, error)
	// Invalidate はユーザーのセッションを無効化する。
	Invalidate(ctx context.Context, userID string) error
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）
}

// AuthHandler はセッション認証関連のHTTPハンドラー。
type AuthHandler struct {
	service  AuthServiceInterface
	resolver middleware.IdentityResolver
	config   AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
// resolverはコンテキストに認証結果がない場合のみ使用する。
func NewAuthHandler(service AuthServiceInterface, resolver middleware.IdentityResolver, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service:  service,
		resolver: resolver,
		config:   config,
	}
}

// sessionRequest はセッション交換リクエストのボディ。
type sessionRequest struct {
	SessionID string `json:"session_id"`
}

// userResponse は公開するユーザー情報。
type userResponse struct {
	ID      string  `json:"id"`
	Email   string  `json:"email"`
	Name    string  `json:"name"`
	Picture *string `json:"picture"`
	IsAdmin bool    `json:"is_admin"`
}

// meUserResponse は/meで返すユーザー情報。lastLoginを含む。
type meUserResponse struct {
	userResponse
	LastLogin *time.Time `json:"lastLogin"`
}

type sessionResponse struct {
	Success bool         `json:"success"`
	User    userResponse `json:"user"`
}

type meResponse struct {
	Success bool           `json:"success"`
	User    meUserResponse `json:"user"`
}

type checkResponse struct {
	Authenticated bool          `json:"authenticated"`
	User          *userResponse `json:"user"`
}

func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:      u.ID,
		Email:   u.Email,
		Name:    u.Name,
		Picture: u.Picture,
		IsAdmin: u.IsAdmin,
	}
}

// Session はIdPのsession_idをセッショントークンに交換し、HTTP Only Cookieを設定する。
// POST /api/auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	var req sessionRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.SessionID == "" {
		middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewSessionIDRequiredError())
		return
	}

	user, data, err := h.service.ExchangeSession(r.Context(), req.SessionID)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidSessionID) {
			middleware.WriteErrorResponse(w, http.StatusBadRequest, model.NewInvalidSessionIDError())
			return
		}
		slog.Error("failed to process session", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w)
		return
	}

	http.SetCookie(w, h.sessionCookie(data.SessionToken, h.config.SessionMaxAge))
	writeJSON(w, http.StatusOK, sessionResponse{Success: true, User: toUserResponse(user)})
}

// Me は現在のログインユーザー情報を返す。
// GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	res := h.resolve(r)
	if !res.Authenticated() {
		middleware.WriteErrorResponse(w, http.StatusUnauthorized, model.NewAuthenticationRequiredError())
		return
	}

	writeJSON(w, http.StatusOK, meResponse{
		Success: true,
		User: meUserResponse{
			userResponse: toUserResponse(res.User),
			LastLogin:    res.User.LastLogin,
		},
	})
}

// Logout はセッションを無効化し、Cookieを削除する。
// 未認証の場合も成功を返す。
// POST /api/auth/logout
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	// ログアウト失敗時もCookieはクリアする
	http.SetCookie(w, h.sessionCookie("", -1))

	res := h.resolve(r)
	if res.Authenticated() {
		if err := h.service.Invalidate(r.Context(), res.User.ID); err != nil {
			slog.Error("failed to logout",
				slog.String("user_id", res.User.ID),
				slog.String("error", err.Error()),
			)
			middleware.WriteInternalServerError(w)
			return
		}
	}

	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Logged out successfully"})
}

// Check は認証状態を返す。エラーにはならない。
// GET /api/auth/check
func (h *AuthHandler) Check(w http.ResponseWriter, r *http.Request) {
	res := h.resolve(r)
	resp := checkResponse{Authenticated: res.Authenticated()}
	if resp.Authenticated {
		u := toUserResponse(res.User)
		resp.User = &u
	}
	writeJSON(w, http.StatusOK, resp)
}

// resolve はコンテキストの認証結果を返す。なければresolverで解決する。
func (h *AuthHandler) resolve(r *http.Request) auth.Resolution {
	if res, ok := auth.ResolutionFromContext(r.Context()); ok {
		return res
	}
	return h.resolver.Resolve(r.Context(), r)
}

// sessionCookie はセッションCookieを生成する。
// クロスサイトのフロントエンドから送信されるためSameSite=Noneとする。
func (h *AuthHandler) sessionCookie(value string, maxAge int) *http.Cookie {
	return &http.Cookie{
		Name:     auth.SessionCookieName,
		Value:    value,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   maxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteNoneMode,
	}
}
