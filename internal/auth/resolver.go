package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/tradinghub/backend/internal/model"
)

// SessionCookieName はセッショントークンを保持するCookie名。
const SessionCookieName = "session_token"

const bearerPrefix = "Bearer "

// Outcome はリクエスト認証の結果種別。
type Outcome string

const (
	// OutcomeNoCredentials はトークンが提示されなかったことを示す。
	OutcomeNoCredentials Outcome = "no_credentials"
	// OutcomeUnknownSession はトークンが不一致または期限切れだったことを示す。
	OutcomeUnknownSession Outcome = "unknown_session"
	// OutcomeLookupFailed はストレージ障害で判定できなかったことを示す。未認証として扱う。
	OutcomeLookupFailed Outcome = "lookup_failed"
	// OutcomeAuthenticated は有効なセッションを持つユーザーに解決できたことを示す。
	OutcomeAuthenticated Outcome = "authenticated"
)

// TokenSource はトークンの取得元。
type TokenSource string

const (
	SourceNone   TokenSource = "none"
	SourceCookie TokenSource = "cookie"
	SourceHeader TokenSource = "header"
)

// Resolution はリクエスト認証の結果。
// Userは OutcomeAuthenticated の場合のみ非nil。
type Resolution struct {
	User    *model.User
	Outcome Outcome
	Source  TokenSource
	// Ambiguous はCookieとAuthorizationヘッダーの両方が提示されたことを示す。
	Ambiguous bool
	Err       error
}

// Authenticated は認証済みユーザーに解決できたかを返す。
func (r Resolution) Authenticated() bool {
	return r.Outcome == OutcomeAuthenticated && r.User != nil
}

// SessionLookup は有効なセッショントークンからユーザーを引くためのインターフェース。
type SessionLookup interface {
	FindByActiveSessionToken(ctx context.Context, token string, now time.Time) (*model.User, error)
}

// Resolver はリクエストに含まれるトークンからユーザーを解決する。
// 副作用はなく、同一リクエストで何度呼び出してもよい。
type Resolver struct {
	users    SessionLookup
	observer Observer
	now      func() time.Time
}

// NewResolver はResolverを生成する。observerがnilの場合は記録しない。
func NewResolver(users SessionLookup, observer Observer) *Resolver {
	if observer == nil {
		observer = NopObserver{}
	}
	return &Resolver{users: users, observer: observer, now: time.Now}
}

// ExtractToken はリクエストからセッショントークンを取り出す。
// Cookieを優先し、なければAuthorizationヘッダー（"Bearer "を除去した残りをそのまま）を使用する。
// 両方ある場合はambiguousがtrueになる。
func ExtractToken(r *http.Request) (token string, source TokenSource, ambiguous bool) {
	header := strings.TrimPrefix(r.Header.Get("Authorization"), bearerPrefix)

	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value, SourceCookie, header != ""
	}
	if header != "" {
		return header, SourceHeader, false
	}
	return "", SourceNone, false
}

// Resolve はリクエストを認証済みユーザーに解決する。
// ストレージ障害は未認証として扱い、Errに保持する。
func (r *Resolver) Resolve(ctx context.Context, req *http.Request) Resolution {
	res := r.resolve(ctx, req)
	r.observer.IdentityResolved(res.Outcome)
	return res
}

func (r *Resolver) resolve(ctx context.Context, req *http.Request) Resolution {
	token, source, ambiguous := ExtractToken(req)
	if token == "" {
		return Resolution{Outcome: OutcomeNoCredentials, Source: SourceNone}
	}

	if ambiguous {
		slog.Warn("both session cookie and authorization header present, using cookie",
			slog.String("path", req.URL.Path),
		)
	}

	now := r.now()
	user, err := r.users.FindByActiveSessionToken(ctx, token, now)
	if err != nil {
		slog.Error("session lookup failed",
			slog.String("error", err.Error()),
			slog.String("source", string(source)),
		)
		return Resolution{Outcome: OutcomeLookupFailed, Source: source, Ambiguous: ambiguous, Err: err}
	}
	if user == nil || !user.HasActiveSession(now) {
		return Resolution{Outcome: OutcomeUnknownSession, Source: source, Ambiguous: ambiguous}
	}

	return Resolution{User: user, Outcome: OutcomeAuthenticated, Source: source, Ambiguous: ambiguous}
}

type resolutionContextKey struct{}

// WithResolution は認証結果をコンテキストに格納する。
func WithResolution(ctx context.Context, res Resolution) context.Context {
	return context.WithValue(ctx, resolutionContextKey{}, res)
}

// ResolutionFromContext はコンテキストから認証結果を取得する。
// 未設定の場合はokがfalseになる。
func ResolutionFromContext(ctx context.Context) (Resolution, bool) {
	res, ok := ctx.Value(resolutionContextKey{}).(Resolution)
	return res, ok
}

// UserFromContext はコンテキストから認証済みユーザーを取得する。
func UserFromContext(ctx context.Context) *model.User {
	res, ok := ResolutionFromContext(ctx)
	if !ok || !res.Authenticated() {
		return nil
	}
	return res.User
}
