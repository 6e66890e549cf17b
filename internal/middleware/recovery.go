package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"
)

// NewRecoveryMiddleware はハンドラのpanicを回収して500を返すミドルウェアを
// 生成する。ブロードキャスト配信やリスナー呼び出しのpanic隔離と同じ方針で、
// 1リクエストの異常がプロセス全体を道連れにしないようにする。
func NewRecoveryMiddleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if cause := recover(); cause != nil {
					slog.Error("panic recovered",
						slog.Any("panic", cause),
						slog.String("method", r.Method),
						slog.String("path", r.URL.Path),
						slog.String("stack", string(debug.Stack())),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_, _ = w.Write([]byte(`{"code":"INTERNAL_ERROR","message":"内部エラーが発生しました。","category":"system","action":"しばらく待ってから再度お試しください。"}`))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
