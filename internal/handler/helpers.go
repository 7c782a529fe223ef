// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kenta/hondana/internal/auth"
	"github.com/kenta/hondana/internal/middleware"
	"github.com/kenta/hondana/internal/model"
	"github.com/kenta/hondana/internal/profile"
)

// timeFormat はレスポンス中の時刻表現フォーマット。
const timeFormat = "2006-01-02T15:04:05Z07:00"

// writeJSON はJSONレスポンスを書き込む。
func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

// handleServiceError はサービス層のエラーを統一エラーレスポンスに変換する。
func handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidCredentials):
		middleware.WriteErrorResponse(w, &model.APIError{
			Code:    model.ErrCodeUnauthorized,
			Message: "Invalid email or password.",
			Status:  http.StatusUnauthorized,
		})
	case errors.Is(err, auth.ErrEmailTaken):
		middleware.WriteErrorResponse(w, model.NewValidationError("This email address is already registered."))
	case errors.Is(err, auth.ErrWeakPassword):
		middleware.WriteErrorResponse(w, model.NewValidationError("Password must be at least 8 characters."))
	case errors.Is(err, auth.ErrInvalidEmail):
		middleware.WriteErrorResponse(w, model.NewValidationError("Email address is not valid."))
	case errors.Is(err, profile.ErrProfileNotFound):
		middleware.WriteErrorResponse(w, model.NewNotFoundError("Profile"))
	case errors.Is(err, profile.ErrNoUpdatableFields):
		middleware.WriteErrorResponse(w, model.NewValidationError("At least one profile field must be provided."))
	default:
		slog.Error("unhandled service error", slog.String("error", err.Error()))
		middleware.WriteInternalServerError(w, "")
	}
}
