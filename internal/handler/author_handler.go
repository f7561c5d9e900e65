package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/blogman/internal/auth"
	"github.com/hitoshi/blogman/internal/middleware"
	"github.com/hitoshi/blogman/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	Login(ctx context.Context, username, password string) (*model.SessionRecord, error)
	Logout(ctx context.Context, sessionID string) error
}

// LoginMetrics はログイン結果のメトリクス記録に必要なインターフェース。
type LoginMetrics interface {
	RecordLoginSuccess()
	RecordLoginFailure()
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	SessionSecret string
	SessionMaxAge int // seconds
}

// AuthHandler は著者のログイン・ログアウトのHTTPハンドラー。
type AuthHandler struct {
	service   AuthServiceInterface
	renderer  *ViewRenderer
	config    AuthHandlerConfig
	collector LoginMetrics
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, renderer *ViewRenderer, config AuthHandlerConfig, collector LoginMetrics) *AuthHandler {
	return &AuthHandler{
		service:   service,
		renderer:  renderer,
		config:    config,
		collector: collector,
	}
}

// LoginForm はログインフォームを表示する。
// GET /login
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	h.renderer.Render(w, "login", baseViewData(r))
}

// Login はログインフォームの送信を処理する。
// POST /login (urlencoded)
// usernameの不在・パスワード不一致・ストア障害のいずれも同一の
// 汎用ログイン失敗ビューで応える。アカウントの存在有無を漏らさないため。
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		h.collector.RecordLoginFailure()
		h.renderer.RenderStatus(w, baseViewData(r), "invalid_login")
		return
	}

	username := r.PostFormValue("username")
	password := r.PostFormValue("password")

	record, err := h.service.Login(r.Context(), username, password)
	if err != nil {
		h.collector.RecordLoginFailure()
		// パスワードはログに出さない
		if model.IsKind(err, model.KindCredentialMismatch) {
			slog.Warn("login failed", slog.String("username", username))
		} else {
			slog.Error("login processing failed",
				slog.String("username", username),
				slog.String("error", err.Error()),
			)
		}
		h.renderer.RenderStatus(w, baseViewData(r), "invalid_login")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    auth.SignSessionID(record.ID, h.config.SessionSecret),
		Path:     "/",
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	h.collector.RecordLoginSuccess()
	slog.Info("author logged in", slog.String("username", record.Username))
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// Logout はセッションを破棄してトップへリダイレクトする。
// GET /logout
// セッションが無い状態で呼ばれても成功として扱う。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(middleware.SessionCookieName); err == nil {
		if id, ok := auth.VerifySessionCookie(cookie.Value, h.config.SessionSecret); ok {
			if err := h.service.Logout(r.Context(), id); err != nil {
				slog.Error("failed to delete session on logout", slog.String("error", err.Error()))
			}
		}
	}

	// クッキーを失効させる
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, "/", http.StatusSeeOther)
}
