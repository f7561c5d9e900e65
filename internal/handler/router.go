package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/blogman/internal/metrics"
	"github.com/hitoshi/blogman/internal/middleware"
)

// HealthChecker はヘルスチェックに必要なインターフェース。
// database.Gatewayが満たす。
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	SessionFinder middleware.SessionFinder
	SessionSecret string
	RateLimiter   *middleware.RateLimiter
	Logger        *slog.Logger

	// サービス
	PostService PostServiceInterface
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// ビューとストレージ
	Renderer  *ViewRenderer
	Covers    CoverSaver
	UploadDir string
	StaticDir string

	// 観測
	Collector      metrics.MetricsCollector
	MetricsHandler http.Handler
	HealthChecker  HealthChecker
}

// NewRouter は全ルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → SecurityHeaders → SessionLoader → Logging
//
// 記事の作成・編集・削除のルートはRequireAuthorで保護され、
// 未認証のアクセスは/loginへリダイレクトされる。閲覧ルートは誰でも使える。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// 回復したpanicも名前付きステータスビューで応える。
	// SessionLoaderより前段のため、ビューは常に匿名状態で描画される。
	r.Use(middleware.NewRecoveryMiddleware(func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		deps.Renderer.RenderStatus(w, map[string]any{"Authenticated": false}, "internal_error")
	}))
	r.Use(middleware.NewSecurityHeadersMiddleware())
	r.Use(middleware.NewSessionLoader(deps.SessionFinder, deps.SessionSecret))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger, deps.Collector))

	postHandler := NewPostHandler(deps.PostService, deps.Covers, deps.Renderer, deps.Collector)
	authHandler := NewAuthHandler(deps.AuthService, deps.Renderer, deps.AuthConfig, deps.Collector)

	// --- 運用エンドポイント ---

	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		if err := deps.HealthChecker.Ping(req.Context()); err != nil {
			http.Error(w, "unhealthy", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// --- 静的ルート ---

	// カバー画像は専用のプレフィックスで読み取り専用配信する
	r.Handle("/picture/*", http.StripPrefix("/picture/",
		http.FileServer(http.Dir(deps.UploadDir))))
	r.Handle("/static/*", http.StripPrefix("/static/",
		http.FileServer(http.Dir(deps.StaticDir))))

	// --- 認証不要のルート ---

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/list", http.StatusSeeOther)
	})
	r.Get("/list", postHandler.List)
	r.Get("/post/{id}", postHandler.Details)

	r.Get("/login", authHandler.LoginForm)
	r.With(deps.RateLimiter.LoginMiddleware()).Post("/login", authHandler.Login)
	r.Get("/logout", authHandler.Logout)

	// --- 認証が必要なルート ---

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuthor)

		r.Get("/add", postHandler.AddForm)
		r.Post("/add", postHandler.Add)
		r.Get("/edit/{id}", postHandler.EditForm)
		r.Post("/edit", postHandler.Edit)
		r.Post("/remove", postHandler.Remove)
	})

	return r
}
