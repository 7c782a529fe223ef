package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/kenta/hondana/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
type ErrorResponseBody struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	RetryAfter int    `json:"retryAfter,omitempty"`
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// すべてのAPIエンドポイントで一貫したエラーレスポンスを提供する。
func WriteErrorResponse(w http.ResponseWriter, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	if apiErr.RetryAfter > 0 {
		w.Header().Set("Retry-After", strconv.Itoa(apiErr.RetryAfter))
	}
	w.WriteHeader(apiErr.Status)
	json.NewEncoder(w).Encode(ErrorResponseBody{
		Error:      apiErr.Code,
		Message:    apiErr.Message,
		RetryAfter: apiErr.RetryAfter,
	})
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、クライアントには一般的なメッセージを返す。
// devDetailが非空の場合（開発モード）のみ詳細メッセージを含める。
func WriteInternalServerError(w http.ResponseWriter, devDetail string) {
	apiErr := model.NewInternalError()
	if devDetail != "" {
		apiErr.Message = devDetail
	}
	WriteErrorResponse(w, apiErr)
}
