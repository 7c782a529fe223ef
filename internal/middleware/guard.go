// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/kenta/hondana/internal/model"
)

// SessionCookieName はセッショントークンを保持するHTTP Only Cookieの名前。
const SessionCookieName = "session_token"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	principalContextKey = contextKey("principal")
	sessionContextKey   = contextKey("session")
)

// SessionVerifier はリクエストのトークンからセッションを解決するインターフェース。
// 認証コラボレータ（auth.Service）の部分集合として定義する。
// 有効なセッションが存在しない場合は(nil, nil, nil)を返し、
// エラーは検証処理自体の障害のみを表す。
type SessionVerifier interface {
	VerifySession(ctx context.Context, token string) (*model.Principal, *model.Session, error)
}

// SessionVerificationRecorder はセッション検証結果のメトリクス記録インターフェース。
type SessionVerificationRecorder interface {
	RecordSessionVerification(result string)
}

// セッション検証結果のメトリクスラベル値。
const (
	verifyResultValid   = "valid"
	verifyResultInvalid = "invalid"
	verifyResultError   = "error"
)

func recordVerification(recorder SessionVerificationRecorder, result string) {
	if recorder != nil {
		recorder.RecordSessionVerification(result)
	}
}

// TokenFromRequest はリクエストからセッショントークンを取り出す。
// HTTP Only Cookieを優先し、次にAuthorization: Bearerヘッダーを見る。
// どちらにも無い場合は空文字列を返す。
func TokenFromRequest(r *http.Request) string {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	authz := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(authz, "Bearer "); ok && token != "" {
		return token
	}

	return ""
}

// RequireAuth は有効なセッションを必須とするアクセスガードミドルウェアを返す。
// 未認証リクエストには401を返し、ハンドラーは呼び出されない。
// 認証済みの場合はPrincipalとSessionをリクエストコンテキストに注入する。
// Session Verifier自体の障害は500として処理し、内部情報はクライアントに返さない。
// recorderはnil可（検証結果のメトリクス記録なし）。
func RequireAuth(verifier SessionVerifier, recorder SessionVerificationRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, session, err := verifier.VerifySession(r.Context(), TokenFromRequest(r))
			if err != nil {
				recordVerification(recorder, verifyResultError)
				slog.Error("session verification failed",
					slog.String("error", err.Error()),
					slog.String("path", r.URL.Path),
				)
				WriteInternalServerError(w, "")
				return
			}
			if principal == nil {
				recordVerification(recorder, verifyResultInvalid)
				WriteErrorResponse(w, model.NewAuthenticationError())
				return
			}

			recordVerification(recorder, verifyResultValid)
			ctx := context.WithValue(r.Context(), principalContextKey, principal)
			ctx = context.WithValue(ctx, sessionContextKey, session)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// OptionalAuth はセッションがあればPrincipalを注入し、無くても処理を継続する
// ミドルウェアを返す。Session Verifier自体の障害のみ500として処理する。
func OptionalAuth(verifier SessionVerifier, recorder SessionVerificationRecorder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, session, err := verifier.VerifySession(r.Context(), TokenFromRequest(r))
			if err != nil {
				recordVerification(recorder, verifyResultError)
				slog.Error("session verification failed",
					slog.String("error", err.Error()),
					slog.String("path", r.URL.Path),
				)
				WriteInternalServerError(w, "")
				return
			}

			ctx := r.Context()
			if principal != nil {
				recordVerification(recorder, verifyResultValid)
				ctx = context.WithValue(ctx, principalContextKey, principal)
				ctx = context.WithValue(ctx, sessionContextKey, session)
			} else {
				recordVerification(recorder, verifyResultInvalid)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext はリクエストコンテキストから認証済みPrincipalを取得する。
// アクセスガードを通過したリクエストでのみ有効。
func PrincipalFromContext(ctx context.Context) (*model.Principal, error) {
	principal, ok := ctx.Value(principalContextKey).(*model.Principal)
	if !ok || principal == nil {
		return nil, fmt.Errorf("principal not found in context")
	}
	return principal, nil
}

// SessionFromContext はリクエストコンテキストからセッションを取得する。
func SessionFromContext(ctx context.Context) (*model.Session, error) {
	session, ok := ctx.Value(sessionContextKey).(*model.Session)
	if !ok || session == nil {
		return nil, fmt.Errorf("session not found in context")
	}
	return session, nil
}

// ContextWithPrincipal はコンテキストにPrincipalを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithPrincipal(ctx context.Context, principal *model.Principal) context.Context {
	return context.WithValue(ctx, principalContextKey, principal)
}
