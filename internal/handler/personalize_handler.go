package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/kenta/hondana/internal/middleware"
	"github.com/kenta/hondana/internal/model"
	"github.com/kenta/hondana/internal/personalize"
	"github.com/kenta/hondana/internal/profile"
)

// PersonalizerInterface はパーソナライズハンドラーが必要とする変換インターフェース。
type PersonalizerInterface interface {
	Personalize(content string, p *model.Profile) personalize.Result
}

// PersonalizationRecorder はパーソナライズ実行のメトリクス記録インターフェース。
type PersonalizationRecorder interface {
	RecordPersonalization(ruleCount int)
}

// PersonalizeHandler は章コンテンツのパーソナライズHTTPハンドラー。
type PersonalizeHandler struct {
	profiles     ProfileServiceInterface
	personalizer PersonalizerInterface
	recorder     PersonalizationRecorder // nil可
}

// NewPersonalizeHandler はPersonalizeHandlerを生成する。
func NewPersonalizeHandler(profiles ProfileServiceInterface, personalizer PersonalizerInterface, recorder PersonalizationRecorder) *PersonalizeHandler {
	return &PersonalizeHandler{
		profiles:     profiles,
		personalizer: personalizer,
		recorder:     recorder,
	}
}

// --- リクエスト・レスポンス型 ---

type personalizeRequest struct {
	ChapterID string `json:"chapterId"`
	Content   string `json:"content"`
}

type personalizeMetadata struct {
	ChapterID    string   `json:"chapterId,omitempty"`
	AppliedRules []string `json:"appliedRules"`
	HasProfile   bool     `json:"hasProfile"`
}

type personalizeResponse struct {
	PersonalizedContent string              `json:"personalizedContent"`
	UserMetadata        personalizeMetadata `json:"userMetadata"`
}

// Personalize は章コンテンツにプロファイル由来のテキスト置換を適用する。
// プロファイル未作成の場合はサニタイズのみ行う。
// POST /personalize
func (h *PersonalizeHandler) Personalize(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, model.NewAuthenticationError())
		return
	}

	var req personalizeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, model.NewInvalidRequestError())
		return
	}
	if req.Content == "" {
		middleware.WriteErrorResponse(w, model.NewValidationError("Content is required."))
		return
	}

	// プロファイル未作成はパーソナライズなしの正常系として扱う
	p, err := h.profiles.Get(r.Context(), principal.ID)
	if err != nil && !errors.Is(err, profile.ErrProfileNotFound) {
		handleServiceError(w, err)
		return
	}

	result := h.personalizer.Personalize(req.Content, p)
	if result.AppliedRules == nil {
		result.AppliedRules = []string{}
	}

	if h.recorder != nil {
		h.recorder.RecordPersonalization(len(result.AppliedRules))
	}

	writeJSON(w, http.StatusOK, personalizeResponse{
		PersonalizedContent: result.Content,
		UserMetadata: personalizeMetadata{
			ChapterID:    req.ChapterID,
			AppliedRules: result.AppliedRules,
			HasProfile:   p != nil,
		},
	})
}
