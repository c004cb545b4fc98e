// Package app はtradinghubのサブコマンドと依存関係のワイヤリングを提供する。
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/tradinghub/backend/internal/auth"
	"github.com/tradinghub/backend/internal/catalog"
	"github.com/tradinghub/backend/internal/config"
	"github.com/tradinghub/backend/internal/database"
	"github.com/tradinghub/backend/internal/handler"
	"github.com/tradinghub/backend/internal/metrics"
	"github.com/tradinghub/backend/internal/middleware"
	"github.com/tradinghub/backend/internal/repository"
	"github.com/tradinghub/backend/internal/security"
	"github.com/tradinghub/backend/internal/seed"
	"github.com/tradinghub/backend/internal/worker/cleanup"
)

// dbPingTimeout は起動時のDB疎通確認のタイムアウト。
const dbPingTimeout = 5 * time.Second

// Run はアプリケーションのメインエントリーポイント。
// argsにはos.Args[1:]を渡す。SIGINTまたはSIGTERMでコンテキストがキャンセルされる。
func Run(w io.Writer, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand(w)
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// runServe はAPIサーバーを起動する。
// DB接続を開き、全依存関係をワイヤリングし、ctxがキャンセルされるとグレースフルシャットダウンを行う。
func runServe(ctx context.Context, cfg *config.Config) error {
	// 1. DB接続
	db, err := database.Open(cfg.DatabaseURL, database.PoolConfig{
		MaxOpenConns:    cfg.DBMaxOpenConns,
		MaxIdleConns:    cfg.DBMaxIdleConns,
		ConnMaxLifetime: cfg.DBConnMaxLifetime,
	})
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := database.Ping(ctx, db, dbPingTimeout); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	slog.Info("database connection established",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	// 2. リポジトリ
	userRepo := repository.NewPostgresUserRepo(db)
	providerRepo := repository.NewPostgresProviderRepo(db)
	brokerRepo := repository.NewPostgresBrokerRepo(db)
	testimonialRepo := repository.NewPostgresTestimonialRepo(db)

	// 初期データの投入失敗ではサーバーを止めない
	if cfg.SeedOnStart {
		if _, err := seedCatalog(ctx, seed.NewSeeder(providerRepo, brokerRepo, testimonialRepo)); err != nil {
			slog.Error("catalog seeding failed", slog.String("error", err.Error()))
		}
	}

	// 3. メトリクス
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	collector := metrics.NewCollector(registry)

	// 4. 認証
	ssrfGuard := security.NewSSRFGuard()
	idpClient := &http.Client{Timeout: cfg.IdentityTimeout}
	if !cfg.IdentityAllowPrivate {
		idpClient = ssrfGuard.NewSafeClient(cfg.IdentityTimeout)
	}
	identityClient := auth.NewIdentityClient(auth.IdentityClientConfig{
		Endpoint:   cfg.IdentitySessionURL,
		HTTPClient: idpClient,
		Timeout:    cfg.IdentityTimeout,
	})
	authService := auth.NewService(identityClient, userRepo,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge}, collector)
	resolver := auth.NewResolver(userRepo, collector)
	gate := auth.NewGate(resolver, collector)

	// 5. カタログ
	catalogDeps := catalog.Deps{
		Sanitizer: security.NewTextSanitizer(),
		URLGuard:  ssrfGuard,
		Recorder:  collector,
	}

	// 6. ルーター
	rateLimiter := middleware.NewRateLimiter(
		middleware.RateLimiterConfigPerMinute(cfg.RateLimitGeneral, cfg.RateLimitSession),
	)
	defer rateLimiter.Stop()

	router := handler.NewRouter(&handler.RouterDeps{
		Resolver:          resolver,
		Gate:              gate,
		RateLimiter:       rateLimiter,
		CORSAllowedOrigin: cfg.CORSAllowedOrigin,
		TrustedProxies:    cfg.TrustedProxies,
		Logger:            slog.Default(),
		HTTPRecorder:      collector,
		MetricsHandler:    metrics.Handler(registry),

		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			CookieDomain:  cfg.CookieDomain,
			CookieSecure:  cfg.CookieSecure,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		ProviderService:    catalog.NewProviderService(providerRepo, catalogDeps),
		BrokerService:      catalog.NewBrokerService(brokerRepo, catalogDeps),
		TestimonialService: catalog.NewTestimonialService(testimonialRepo, catalogDeps),

		DB: db,
	})

	// 7. 期限切れセッションの掃除
	workerCtx, cancelWorker := context.WithCancel(ctx)
	defer cancelWorker()
	sweeper := cleanup.NewSessionSweepJob(userRepo, collector, slog.Default())
	go sweeper.Start(workerCtx, cfg.SessionSweepInterval)

	// 8. HTTPサーバー
	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("API server starting", slog.String("addr", server.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server listen error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	slog.Info("shutting down API server...")
	cancelWorker()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("API server stopped gracefully")
	return nil
}

// runMigrate はすべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
	)

	if err := database.RunMigrations(cfg.DatabaseURL); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("database migrations completed successfully")
	return nil
}

// runMigrateDown は適用済みマイグレーションをsteps件ロールバックする。
func runMigrateDown(cfg *config.Config, steps int) error {
	slog.Info("rolling back database migrations",
		slog.String("database_url", maskDatabaseURL(cfg.DatabaseURL)),
		slog.Int("steps", steps),
	)

	if err := database.RollbackMigrations(cfg.DatabaseURL, steps); err != nil {
		return fmt.Errorf("rollback failed: %w", err)
	}

	slog.Info("database rollback completed successfully")
	return nil
}

// runSeed は組み込みカタログを空のテーブルに投入する。
func runSeed(ctx context.Context, cfg *config.Config) error {
	db, err := database.Open(cfg.DatabaseURL, database.DefaultPoolConfig())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if err := database.Ping(ctx, db, dbPingTimeout); err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	seeder := seed.NewSeeder(
		repository.NewPostgresProviderRepo(db),
		repository.NewPostgresBrokerRepo(db),
		repository.NewPostgresTestimonialRepo(db),
	)
	_, err = seedCatalog(ctx, seeder)
	return err
}

// catalogSeeder はseed.Seederのうちapp層が使う部分。
type catalogSeeder interface {
	Seed(ctx context.Context, c *seed.Catalog) (seed.Result, error)
}

// seedCatalog は組み込みカタログを読み込んで投入し、結果をログに出す。
func seedCatalog(ctx context.Context, seeder catalogSeeder) (seed.Result, error) {
	c, err := seed.DefaultCatalog()
	if err != nil {
		return seed.Result{}, err
	}

	res, err := seeder.Seed(ctx, c)
	if err != nil {
		return res, fmt.Errorf("catalog seeding failed: %w", err)
	}

	slog.Info("catalog seeded",
		slog.Int("providers", res.Providers),
		slog.Int("brokers", res.Brokers),
		slog.Int("testimonials", res.Testimonials),
	)
	return res, nil
}

// checkHealth はヘルスエンドポイントにGETを送り、200以外ならエラーを返す。
func checkHealth(target string) error {
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(target)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}
	return nil
}

// maskDatabaseURL はデータベースURLのパスワードをマスクする。
// URLとして解釈できない場合は全体を伏せる。
func maskDatabaseURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "***"
	}
	return u.Redacted()
}

// Main はプロセスのエントリーポイントから呼ばれ、終了コードを返す。
func Main() int {
	if err := Run(os.Stdout, os.Args[1:]); err != nil {
		slog.Error("command failed", slog.String("error", err.Error()))
		return 1
	}
	return 0
}
