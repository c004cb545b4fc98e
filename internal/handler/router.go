package handler

import (
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/tradinghub/backend/internal/middleware"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Resolver          middleware.IdentityResolver
	Gate              middleware.AccessGate
	RateLimiter       *middleware.RateLimiter
	CORSAllowedOrigin string
	TrustedProxies    []netip.Prefix          // 転送ヘッダーを信用する接続元。空なら常にRemoteAddrを使う
	Logger            *slog.Logger            // nilの場合はslog.Default()
	HTTPRecorder      middleware.HTTPRecorder // nilの場合は記録しない
	MetricsHandler    http.Handler            // nilの場合は/metricsを公開しない

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// カタログ
	ProviderService    ProviderServiceInterface
	BrokerService      BrokerServiceInterface
	TestimonialService TestimonialServiceInterface

	// 稼働確認
	DB Pinger
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	CORS → SecurityHeaders → Recovery → ClientIP/RequestID → Metrics → Identity → Logging → RateLimit(General)
//
// 変更系のカタログルートはすべて管理者ゲートを通す。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigin))
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.AuthConfig.CookieSecure))
	r.Use(middleware.NewRecoveryMiddleware())
	r.Use(middleware.NewClientIPMiddleware(deps.TrustedProxies))
	r.Use(chimw.RequestID)
	if deps.HTTPRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.HTTPRecorder))
	}
	r.Use(middleware.NewIdentityMiddleware(deps.Resolver))
	r.Use(middleware.NewLoggingMiddleware(logger))

	if deps.MetricsHandler != nil {
		r.Method(http.MethodGet, "/metrics", deps.MetricsHandler)
	}

	authHandler := NewAuthHandler(deps.AuthService, deps.Resolver, deps.AuthConfig)
	providerHandler := NewProviderHandler(deps.ProviderService)
	brokerHandler := NewBrokerHandler(deps.BrokerService)
	testimonialHandler := NewTestimonialHandler(deps.TestimonialService)
	healthHandler := NewHealthHandler(deps.DB)

	requireAuth := middleware.NewRequireAuthMiddleware(deps.Gate)
	requireAdmin := middleware.NewRequireAdminMiddleware(deps.Gate)

	r.Route("/api", func(r chi.Router) {
		r.Use(deps.RateLimiter.GeneralMiddleware())

		r.Get("/", healthHandler.Root)
		r.Get("/health", healthHandler.Health)

		// 認証
		r.Route("/auth", func(r chi.Router) {
			// POST /api/auth/session - セッション交換（専用レート制限を追加）
			r.With(deps.RateLimiter.SessionExchangeMiddleware()).Post("/session", authHandler.Session)
			r.With(requireAuth).Get("/me", authHandler.Me)
			r.Post("/logout", authHandler.Logout)
			r.Get("/check", authHandler.Check)
		})

		// シグナルプロバイダー
		r.Route("/providers", func(r chi.Router) {
			r.Get("/", providerHandler.List)
			r.Get("/search", providerHandler.Search)
			r.Get("/{id}", providerHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/", providerHandler.Create)
				r.Put("/{id}", providerHandler.Update)
				r.Delete("/{id}", providerHandler.Delete)
			})
		})

		// ブローカー
		r.Route("/brokers", func(r chi.Router) {
			r.Get("/", brokerHandler.List)
			r.Get("/search", brokerHandler.Search)
			r.Get("/{id}", brokerHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/", brokerHandler.Create)
				r.Put("/{id}", brokerHandler.Update)
				r.Delete("/{id}", brokerHandler.Delete)
			})
		})

		// 推薦文
		r.Route("/testimonials", func(r chi.Router) {
			r.Get("/", testimonialHandler.List)
			r.Get("/{id}", testimonialHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/", testimonialHandler.Create)
				r.Put("/{id}", testimonialHandler.Update)
				r.Patch("/{id}/approve", testimonialHandler.Approve)
				r.Delete("/{id}", testimonialHandler.Delete)
			})
		})
	})

	return r
}
