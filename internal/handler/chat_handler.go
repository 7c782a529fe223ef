package handler

import (
	"encoding/json"
	"net/http"

	"github.com/kenta/hondana/internal/middleware"
	"github.com/kenta/hondana/internal/model"
)

// ChatHandler はチャットのHTTPハンドラー。
// 現状はエコー応答のみで、外部呼び出しは行わない。
type ChatHandler struct{}

// NewChatHandler はChatHandlerを生成する。
func NewChatHandler() *ChatHandler {
	return &ChatHandler{}
}

type chatRequest struct {
	Message string `json:"message"`
}

type chatResponse struct {
	Reply string `json:"reply"`
}

// Chat はメッセージにエコー応答する。
// POST /chat
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, model.NewInvalidRequestError())
		return
	}
	if req.Message == "" {
		middleware.WriteErrorResponse(w, model.NewValidationError("Message is required."))
		return
	}

	writeJSON(w, http.StatusOK, chatResponse{
		Reply: "You said: " + req.Message,
	})
}
