// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/blogman/internal/auth"
	"github.com/hitoshi/blogman/internal/model"
)

// SessionCookieName はセッションidを運ぶクッキーの名前。
const SessionCookieName = "blog_session"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

// sessionContextKey はリクエストコンテキストにセッションレコードを格納するためのキー。
var sessionContextKey = contextKey("session_record")

// SessionFinder はセッションの検索に必要なインターフェース。
// repository.SessionRepositoryの部分集合として定義する。
type SessionFinder interface {
	FindByID(ctx context.Context, id string) (*model.SessionRecord, error)
}

// NewSessionLoader は署名付きクッキーからセッションレコードを読み込み、
// リクエストコンテキストに注入するミドルウェアを返す。
// クッキーが無い・署名が不正・レコードが不在または期限切れの場合は
// 匿名レコードを注入する。ここでリクエストを拒否することはない。
func NewSessionLoader(finder SessionFinder, secret string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			record := model.Anonymous()

			// 1. クッキーの署名を検証してセッションidを取り出す
			if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
				if id, ok := auth.VerifySessionCookie(cookie.Value, secret); ok {
					// 2. セッションレコードを取得（不在・期限切れはnil）
					found, err := finder.FindByID(r.Context(), id)
					if err != nil {
						// ストア障害はログに残し、匿名として処理を続行する
						slog.Error("failed to load session record",
							slog.String("error", err.Error()),
						)
					} else if found != nil {
						record = found
					}
				}
			}

			// 3. セッションレコードをコンテキストに注入
			ctx := context.WithValue(r.Context(), sessionContextKey, record)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireAuthor は未認証リクエストをログイン画面へリダイレクトするミドルウェア。
// 記事の作成・編集・削除のワークフローを守る。エラーは表示せず、
// 部分的な処理も行わない。SessionLoaderの後に配置すること。
func RequireAuthor(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		record := SessionFromContext(r.Context())
		if !record.Authenticated {
			http.Redirect(w, r, "/login", http.StatusSeeOther)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// SessionFromContext はリクエストコンテキストからセッションレコードを取得する。
// SessionLoaderを通過していないリクエストには匿名レコードを返す。
func SessionFromContext(ctx context.Context) *model.SessionRecord {
	record, ok := ctx.Value(sessionContextKey).(*model.SessionRecord)
	if !ok || record == nil {
		return model.Anonymous()
	}
	return record
}

// ContextWithSession はコンテキストにセッションレコードを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithSession(ctx context.Context, record *model.SessionRecord) context.Context {
	return context.WithValue(ctx, sessionContextKey, record)
}
