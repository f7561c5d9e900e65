package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// NewRecoveryMiddleware はハンドラー内のpanicを捕捉してプロセスクラッシュを
// 防ぐミドルウェアを生成する。panic発生時はスタックトレース付きでログに残し、
// renderErrorが指定されていればそれで500応答を描画する。
// 他の失敗経路と同じステータスビューで応えるため、ルーター側は
// ビューレンダラーを束ねたrenderErrorを渡す。nilの場合は
// プレーンテキストの500を返す。
func NewRecoveryMiddleware(renderError func(w http.ResponseWriter, r *http.Request)) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					slog.Error("panic recovered",
						slog.Any("panic", rec),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)
					if renderError != nil {
						renderError(w, r)
						return
					}
					http.Error(w, "internal server error", http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
