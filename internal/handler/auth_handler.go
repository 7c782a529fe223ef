package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/kenta/hondana/internal/middleware"
	"github.com/kenta/hondana/internal/model"
)

// AuthServiceInterface は認証ハンドラーが必要とするサービスインターフェース。
type AuthServiceInterface interface {
	SignUp(ctx context.Context, email, password, name string) (*model.Principal, *model.Session, error)
	SignIn(ctx context.Context, email, password string) (*model.Principal, *model.Session, error)
	SignOut(ctx context.Context, token string) error
	VerifySession(ctx context.Context, token string) (*model.Principal, *model.Session, error)
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain  string
	CookieSecure  bool
	SessionMaxAge int // セッションCookieの有効期間（秒）

	// CrossOrigin が真の場合、クロスオリジンCookie配送のため
	// SameSite=Noneを使用する（Secure必須）。偽の場合はLax。
	CrossOrigin bool
}

// AuthHandler はメール認証関連のHTTPハンドラー。
type AuthHandler struct {
	service AuthServiceInterface
	config  AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(service AuthServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
	}
}

// --- リクエスト・レスポンス型 ---

type signUpRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name,omitempty"`
}

type signInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type resetPasswordRequest struct {
	Email string `json:"email"`
}

type principalResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

type sessionResponse struct {
	User      principalResponse `json:"user"`
	Token     string            `json:"token"`
	ExpiresAt string            `json:"expiresAt"`
}

// SignUpEmail はメールアドレスで新規登録する。
// POST /auth/sign-up/email
func (h *AuthHandler) SignUpEmail(w http.ResponseWriter, r *http.Request) {
	var req signUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, model.NewInvalidRequestError())
		return
	}

	principal, session, err := h.service.SignUp(r.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.setSessionCookie(w, session.Token)
	writeJSON(w, http.StatusCreated, sessionResponse{
		User:      toPrincipalResponse(principal),
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Format(timeFormat),
	})
}

// SignInEmail はメールアドレスでサインインする。
// POST /auth/sign-in/email
func (h *AuthHandler) SignInEmail(w http.ResponseWriter, r *http.Request) {
	var req signInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, model.NewInvalidRequestError())
		return
	}

	principal, session, err := h.service.SignIn(r.Context(), req.Email, req.Password)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	h.setSessionCookie(w, session.Token)
	writeJSON(w, http.StatusOK, sessionResponse{
		User:      toPrincipalResponse(principal),
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Format(timeFormat),
	})
}

// SignOut は現在のセッションを破棄する。セッションが無くても成功扱い（冪等）。
// POST /auth/sign-out
func (h *AuthHandler) SignOut(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromRequest(r)
	if token != "" {
		if err := h.service.SignOut(r.Context(), token); err != nil {
			slog.Error("failed to sign out", slog.String("error", err.Error()))
			// サインアウト失敗してもCookieはクリアする
		}
	}

	h.clearSessionCookie(w)
	w.WriteHeader(http.StatusNoContent)
}

// Session は現在のセッション情報を返す。
// GET /auth/session
func (h *AuthHandler) Session(w http.ResponseWriter, r *http.Request) {
	token := middleware.TokenFromRequest(r)

	principal, session, err := h.service.VerifySession(r.Context(), token)
	if err != nil {
		slog.Error("session verification failed", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w, "")
		return
	}
	if principal == nil {
		middleware.WriteErrorResponse(w, model.NewAuthenticationError())
		return
	}

	writeJSON(w, http.StatusOK, sessionResponse{
		User:      toPrincipalResponse(principal),
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Format(timeFormat),
	})
}

// ResetPassword はパスワードリセット要求を受け付ける。
// アドレスの登録有無に関わらず同一応答を返す（列挙攻撃対策）。
// メール送信は未実装のため、受付のみ行う。
// POST /auth/reset-password
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, model.NewInvalidRequestError())
		return
	}
	if req.Email == "" {
		middleware.WriteErrorResponse(w, model.NewValidationError("Email address is required."))
		return
	}

	slog.Info("password reset requested", slog.String("email", req.Email))
	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "If the address is registered, a reset link will be sent.",
	})
}

// setSessionCookie はセッションCookieを設定する。
func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, token string) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    token,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   h.config.SessionMaxAge,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: h.cookieSameSite(),
	})
}

// clearSessionCookie はセッションCookieを削除する。
func (h *AuthHandler) clearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: h.cookieSameSite(),
	})
}

// cookieSameSite はクロスオリジン設定に応じたSameSite属性を返す。
func (h *AuthHandler) cookieSameSite() http.SameSite {
	if h.config.CrossOrigin && h.config.CookieSecure {
		return http.SameSiteNoneMode
	}
	return http.SameSiteLaxMode
}

func toPrincipalResponse(p *model.Principal) principalResponse {
	return principalResponse{
		ID:    p.ID,
		Email: p.Email,
		Name:  p.Name,
	}
}
