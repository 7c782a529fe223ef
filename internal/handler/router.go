package handler

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kenta/hondana/internal/middleware"
	"github.com/kenta/hondana/internal/model"
)

// RouterDeps はNewRouterに必要な依存関係をまとめた構造体。
type RouterDeps struct {
	// ミドルウェア依存
	Verifier           middleware.SessionVerifier
	SessionRecorder    middleware.SessionVerificationRecorder // nil可
	RateLimiter        *middleware.RateLimiter
	CORSAllowedOrigins []string
	Logger             *slog.Logger
	MetricsRecorder    middleware.HTTPMetricsRecorder // nil可
	Development        bool

	// 認証
	AuthService AuthServiceInterface
	AuthConfig  AuthHandlerConfig

	// プロファイル・パーソナライズ
	ProfileService          ProfileServiceInterface
	Personalizer            PersonalizerInterface
	PersonalizationRecorder PersonalizationRecorder // nil可

	// ヘルスチェック
	DB Pinger

	// /metrics エンドポイント。nilの場合は公開しない。
	MetricsHandler http.Handler
}

// NewRouter は全APIエンドポイントのルーティングとミドルウェアチェーンを構成したchi.Routerを返す。
//
// ミドルウェアスタックの実行順序:
//
//	Recovery → CORS → SecurityHeaders → Logging → Metrics → ルーティング
//
// 認証ルート（/auth/*）はセッションガードの外に置き、厳格なレート制限クラスを適用する。
func NewRouter(deps *RouterDeps) http.Handler {
	r := chi.NewRouter()

	// Recoveryを最外周に適用（後続ミドルウェアのpanicも捕捉する）
	r.Use(middleware.NewRecoveryMiddleware(deps.Development))
	r.Use(middleware.NewCORSMiddleware(deps.CORSAllowedOrigins))
	r.Use(middleware.NewSecurityHeadersMiddleware(deps.AuthConfig.CookieSecure))
	r.Use(middleware.NewLoggingMiddleware(deps.Logger))
	if deps.MetricsRecorder != nil {
		r.Use(middleware.NewMetricsMiddleware(deps.MetricsRecorder))
	}

	// 未定義ルートもJSONで統一エラーを返す
	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		middleware.WriteErrorResponse(w, model.NewNotFoundError("Resource"))
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		middleware.WriteErrorResponse(w, &model.APIError{
			Code:    model.ErrCodeInvalidRequest,
			Message: "Method not allowed.",
			Status:  http.StatusMethodNotAllowed,
		})
	})

	authHandler := NewAuthHandler(deps.AuthService, deps.AuthConfig)
	profileHandler := NewProfileHandler(deps.ProfileService)
	personalizeHandler := NewPersonalizeHandler(deps.ProfileService, deps.Personalizer, deps.PersonalizationRecorder)
	chatHandler := NewChatHandler()
	healthHandler := NewHealthHandler(deps.DB)

	// --- 認証不要のルート ---

	r.Get("/health", healthHandler.Health)

	if deps.MetricsHandler != nil {
		r.Handle("/metrics", deps.MetricsHandler)
	}

	// 認証ルート（厳格レート制限クラス）
	r.Route("/auth", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(deps.RateLimiter.Middleware(middleware.ClassAuth))

			r.Post("/sign-up/email", authHandler.SignUpEmail)
			r.Post("/sign-in/email", authHandler.SignInEmail)
			r.Post("/sign-out", authHandler.SignOut)
			r.Get("/session", authHandler.Session)
		})

		// パスワードリセットは最も厳格なクラス
		r.With(deps.RateLimiter.Middleware(middleware.ClassReset)).
			Post("/reset-password", authHandler.ResetPassword)
	})

	// --- 認証が必要なルート ---
	// ミドルウェアスタック: RateLimit(General) → RequireAuth
	// レート制限をセッション検証より先に適用し、超過時はDBに到達させない。
	r.Group(func(r chi.Router) {
		r.Use(deps.RateLimiter.Middleware(middleware.ClassGeneral))
		r.Use(middleware.RequireAuth(deps.Verifier, deps.SessionRecorder))

		r.Route("/user/profile", func(r chi.Router) {
			r.Get("/", profileHandler.GetProfile)
			r.Put("/", profileHandler.UpdateProfile)
		})

		r.Post("/personalize", personalizeHandler.Personalize)
		r.Post("/chat", chatHandler.Chat)
	})

	return r
}
