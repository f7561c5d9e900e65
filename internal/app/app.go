// Package app はアプリケーションの起動と依存関係のワイヤリングを担う。
package app

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hitoshi/blogman/internal/auth"
	"github.com/hitoshi/blogman/internal/config"
	"github.com/hitoshi/blogman/internal/database"
	"github.com/hitoshi/blogman/internal/handler"
	"github.com/hitoshi/blogman/internal/logger"
	"github.com/hitoshi/blogman/internal/metrics"
	"github.com/hitoshi/blogman/internal/middleware"
	"github.com/hitoshi/blogman/internal/post"
	"github.com/hitoshi/blogman/internal/repository"
	"github.com/hitoshi/blogman/internal/security"
	"github.com/hitoshi/blogman/internal/storage"
	"github.com/hitoshi/blogman/internal/worker/cleanup"
)

// connectTimeout はドキュメントストアへの初回接続を待つ上限。
const connectTimeout = 10 * time.Second

// Init はアプリケーションの初期化を行う。
// 環境変数からConfigを読み込み、JSON構造化ログをセットアップする。
// writerが指定された場合はログ出力先としてそのwriterを使用する。
func Init(w io.Writer) (*config.Config, error) {
	// 1. ログの初期化（設定読み込み前にログを使えるようにする）
	logger.SetupDefault(w)

	// 2. 環境変数から設定を読み込む
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}

// Run はアプリケーションのメインエントリーポイント。
// コマンドライン引数からサブコマンドを解析し、対応するモードで起動する。
// argsにはos.Args[1:]を渡す。
func Run(w io.Writer, args []string) error {
	cmd := ParseCommand(args)

	// healthcheck は軽量サブコマンドのため、フル初期化をスキップする
	if cmd == CommandHealthcheck {
		port := os.Getenv("SERVER_PORT")
		if port == "" {
			port = "3000"
		}
		return runHealthcheck(port)
	}

	cfg, err := Init(w)
	if err != nil {
		return fmt.Errorf("initialization failed: %w", err)
	}

	slog.Info("starting application",
		slog.String("command", string(cmd)),
		slog.String("port", cfg.ServerPort),
		slog.String("database", cfg.DatabaseName),
	)

	switch cmd {
	case CommandWorker:
		return runWorker(cfg)
	case CommandMigrate:
		return runMigrate(cfg)
	default:
		return runServe(cfg)
	}
}

// connectGateway はドキュメントストアへの接続を確立する。
func connectGateway(cfg *config.Config) (*database.Gateway, error) {
	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()

	gw, err := database.Connect(ctx, cfg.MongoURL, cfg.DatabaseName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to document store: %w", err)
	}
	return gw, nil
}

// runServe はブログサーバーモードで起動する。
// ドキュメントストアへ接続し、全依存関係をワイヤリングし、HTTPサーバーを起動する。
// SIGINTまたはSIGTERMシグナルを受信するとグレースフルシャットダウンを行う。
func runServe(cfg *config.Config) error {
	// 1. ドキュメントストア接続
	gw, err := connectGateway(cfg)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := gw.Disconnect(ctx); err != nil {
			slog.Error("failed to disconnect from document store", slog.String("error", err.Error()))
		}
	}()

	slog.Info("document store connection established")

	// 2. リポジトリの初期化
	sequenceRepo := repository.NewMongoSequenceRepo(gw.Collection(cfg.SequencesCollection))
	postRepo := repository.NewMongoPostRepo(gw.Collection(cfg.PostsCollection), sequenceRepo)
	authorRepo := repository.NewMongoAuthorRepo(gw.Collection(cfg.AuthorsCollection))
	sessionRepo := repository.NewMongoSessionRepo(gw.Collection(cfg.SessionsCollection))

	// 3. カバー画像ストレージとビューの初期化
	covers, err := storage.NewCoverStore(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("failed to initialize cover store: %w", err)
	}

	sanitizer := security.NewContentSanitizer()
	renderer, err := handler.NewViewRenderer(cfg.TemplatesDir, sanitizer)
	if err != nil {
		return fmt.Errorf("failed to load view templates: %w", err)
	}

	// 4. メトリクスの初期化
	registry := prometheus.NewRegistry()
	collector := metrics.NewCollector(registry)

	// 5. ドメインサービスの初期化
	authService := auth.NewService(authorRepo, sessionRepo,
		auth.ServiceConfig{SessionMaxAge: cfg.SessionMaxAge})
	postService := post.NewService(postRepo, authorRepo, covers, slog.Default())

	// 6. ルーターの構築
	rateLimiter := middleware.NewRateLimiter(middleware.NewRateLimiterConfig(cfg.RateLimitLogin))
	defer rateLimiter.Stop()

	deps := &handler.RouterDeps{
		SessionFinder: sessionRepo,
		SessionSecret: cfg.SessionSecret,
		RateLimiter:   rateLimiter,
		Logger:        slog.Default(),

		PostService: postService,
		AuthService: authService,
		AuthConfig: handler.AuthHandlerConfig{
			SessionSecret: cfg.SessionSecret,
			SessionMaxAge: cfg.SessionMaxAge,
		},

		Renderer:  renderer,
		Covers:    covers,
		UploadDir: covers.Dir(),
		StaticDir: cfg.StaticDir,

		Collector:      collector,
		MetricsHandler: metrics.Handler(registry),
		HealthChecker:  gw,
	}

	router := handler.NewRouter(deps)

	// 7. HTTPサーバーの起動
	server := &http.Server{
		Addr:         ":" + cfg.ServerPort,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// グレースフルシャットダウンのためのシグナルハンドリング
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		slog.Info("blog server starting",
			slog.String("addr", server.Addr),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("server listen error", slog.String("error", err.Error()))
		}
	}()

	<-stop
	slog.Info("shutting down blog server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	slog.Info("blog server stopped gracefully")
	return nil
}

// runWorker はクリーンアップワーカーモードで起動する。
// 期限切れセッションと孤児カバー画像の削除を定期実行する。
// SIGINTまたはSIGTERMシグナルを受信するとシャットダウンする。
func runWorker(cfg *config.Config) error {
	// 1. ドキュメントストア接続
	gw, err := connectGateway(cfg)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := gw.Disconnect(ctx); err != nil {
			slog.Error("failed to disconnect from document store", slog.String("error", err.Error()))
		}
	}()

	slog.Info("document store connection established (worker)")

	// 2. 依存関係の初期化
	sequenceRepo := repository.NewMongoSequenceRepo(gw.Collection(cfg.SequencesCollection))
	postRepo := repository.NewMongoPostRepo(gw.Collection(cfg.PostsCollection), sequenceRepo)
	sessionRepo := repository.NewMongoSessionRepo(gw.Collection(cfg.SessionsCollection))

	covers, err := storage.NewCoverStore(cfg.UploadDir)
	if err != nil {
		return fmt.Errorf("failed to initialize cover store: %w", err)
	}

	cleanupJob := cleanup.NewCleanupJob(sessionRepo, postRepo, covers, slog.Default())

	// グレースフルシャットダウンのためのシグナルハンドリング
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-stop
		slog.Info("shutting down worker...")
		cancel()
	}()

	slog.Info("worker starting",
		slog.Duration("cleanup_interval", cfg.CleanupInterval),
	)

	// 起動直後に1回実行
	if err := cleanupJob.Run(ctx); err != nil {
		slog.Error("cleanup job failed", slog.String("error", err.Error()))
	}

	ticker := time.NewTicker(cfg.CleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("worker stopped gracefully")
			return nil
		case <-ticker.C:
			if err := cleanupJob.Run(ctx); err != nil {
				slog.Error("cleanup job failed", slog.String("error", err.Error()))
			}
		}
	}
}

// runMigrate はインデックス作成とシードデータ投入を実行する。
// すべての未適用マイグレーションを順番に適用する。
func runMigrate(cfg *config.Config) error {
	slog.Info("running document store migrations",
		slog.String("database", cfg.DatabaseName),
	)

	gw, err := connectGateway(cfg)
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := gw.Disconnect(ctx); err != nil {
			slog.Error("failed to disconnect from document store", slog.String("error", err.Error()))
		}
	}()

	if err := database.RunMigrations(gw.Client(), cfg.DatabaseName); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	slog.Info("document store migrations completed successfully")
	return nil
}

// runHealthcheck はヘルスチェックを実行する。
// distroless環境でのDockerヘルスチェック用サブコマンド。
// /health エンドポイントにHTTPリクエストを送り、結果を返す。
func runHealthcheck(port string) error {
	url := fmt.Sprintf("http://localhost:%s/health", port)
	client := &http.Client{Timeout: 5 * time.Second}

	resp, err := client.Get(url)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}
