package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

// メッセージにエコー応答が返ることを検証
func TestChat_Echo(t *testing.T) {
	h := NewChatHandler()

	w := httptest.NewRecorder()
	h.Chat(w, authedRequest(http.MethodPost, "/chat", `{"message":"hello"}`))

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}

	var got chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("response is not JSON: %v", err)
	}
	if got.Reply != "You said: hello" {
		t.Errorf("reply = %q, want %q", got.Reply, "You said: hello")
	}
}

// メッセージ無しで400が返ることを検証
func TestChat_MissingMessage(t *testing.T) {
	h := NewChatHandler()

	w := httptest.NewRecorder()
	h.Chat(w, authedRequest(http.MethodPost, "/chat", `{}`))

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", w.Result().StatusCode, http.StatusBadRequest)
	}
}
