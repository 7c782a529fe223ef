package model

import "fmt"

// APIError はHTTPレスポンスに変換可能なアプリケーションエラーを表す。
// Statusは対応するHTTPステータスコード、Codeはレスポンスボディのerrorフィールド値。
type APIError struct {
	Code       string
	Message    string
	Status     int
	RetryAfter int // 秒。レート制限エラーのみ非ゼロ。
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeValidation     = "VALIDATION_ERROR"
	ErrCodeUnauthorized   = "UNAUTHORIZED"
	ErrCodeNotFound       = "NOT_FOUND"
	ErrCodeRateLimited    = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal       = "INTERNAL_ERROR"
	ErrCodeInvalidRequest = "INVALID_REQUEST"
)

// NewValidationError はクライアント入力の検証エラー（400）を生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeValidation,
		Message: message,
		Status:  400,
	}
}

// NewInvalidRequestError はリクエストボディ解析失敗エラー（400）を生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:    ErrCodeInvalidRequest,
		Message: "Request body could not be parsed as JSON.",
		Status:  400,
	}
}

// NewAuthenticationError はセッション欠落・無効エラー（401）を生成する。
func NewAuthenticationError() *APIError {
	return &APIError{
		Code:    ErrCodeUnauthorized,
		Message: "Authentication required.",
		Status:  401,
	}
}

// NewNotFoundError はリソース未検出エラー（404）を生成する。
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found.", resource),
		Status:  404,
	}
}

// NewRateLimitError はレート制限超過エラー（429）を生成する。
// retryAfterSecは再試行までの推定秒数。
func NewRateLimitError(retryAfterSec int) *APIError {
	return &APIError{
		Code:       ErrCodeRateLimited,
		Message:    "Too many requests. Please try again later.",
		Status:     429,
		RetryAfter: retryAfterSec,
	}
}

// NewInternalError は内部エラー（500）を生成する。
// 詳細はログのみに記録し、クライアントには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:    ErrCodeInternal,
		Message: "An internal error occurred.",
		Status:  500,
	}
}
