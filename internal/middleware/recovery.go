package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"
)

// NewRecoveryMiddleware はpanic発生時にプロセスクラッシュを防ぎ、
// 500レスポンスを返すトップレベルのエラー境界ミドルウェアを生成する。
// 詳細はログのみに記録し、developmentが真の場合のみレスポンスに含める。
func NewRecoveryMiddleware(development bool) func(next http.Handler) http.Handler {
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
					devDetail := ""
					if development {
						devDetail = fmt.Sprintf("panic: %v", rec)
					}
					WriteInternalServerError(w, devDetail)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
