package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kenta/hondana/internal/middleware"
	"github.com/kenta/hondana/internal/model"
)

// ProfileServiceInterface はプロファイルハンドラーが必要とするサービスインターフェース。
type ProfileServiceInterface interface {
	// Get は指定Principalのプロファイルを取得する。
	Get(ctx context.Context, principalID string) (*model.Profile, error)
	// Update はプロファイルを部分更新する。対象は常にセッション由来のprincipalID。
	Update(ctx context.Context, principalID, bodyUserID string, update model.ProfileUpdate) (*model.Profile, error)
}

// ProfileHandler は学習プロファイルのHTTPハンドラー。
type ProfileHandler struct {
	service ProfileServiceInterface
}

// NewProfileHandler はProfileHandlerを生成する。
func NewProfileHandler(service ProfileServiceInterface) *ProfileHandler {
	return &ProfileHandler{service: service}
}

// --- リクエスト・レスポンス型 ---

// profileUpdateRequest はプロファイル更新リクエストのボディ。
// 省略されたフィールドは既存値を維持する。
type profileUpdateRequest struct {
	UserID             string  `json:"userId,omitempty"`
	SkillLevel         *string `json:"skillLevel,omitempty"`
	SoftwareBackground *string `json:"softwareBackground,omitempty"`
	HardwareBackground *string `json:"hardwareBackground,omitempty"`
	LearningGoal       *string `json:"learningGoal,omitempty"`
}

type profileResponse struct {
	ID                 string  `json:"id"`
	UserID             string  `json:"userId"`
	SkillLevel         *string `json:"skillLevel"`
	SoftwareBackground *string `json:"softwareBackground"`
	HardwareBackground *string `json:"hardwareBackground"`
	LearningGoal       *string `json:"learningGoal"`
	CreatedAt          string  `json:"createdAt"`
	UpdatedAt          string  `json:"updatedAt"`
}

// GetProfile は認証済みPrincipalのプロファイルを取得する。
// GET /user/profile
func (h *ProfileHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, model.NewAuthenticationError())
		return
	}

	p, err := h.service.Get(r.Context(), principal.ID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

// UpdateProfile はプロファイルを部分更新する。未作成の場合は新規作成する。
// PUT /user/profile
func (h *ProfileHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	principal, err := middleware.PrincipalFromContext(r.Context())
	if err != nil {
		middleware.WriteErrorResponse(w, model.NewAuthenticationError())
		return
	}

	var req profileUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		middleware.WriteErrorResponse(w, model.NewInvalidRequestError())
		return
	}

	update := model.ProfileUpdate{
		SkillLevel:         req.SkillLevel,
		SoftwareBackground: req.SoftwareBackground,
		HardwareBackground: req.HardwareBackground,
		LearningGoal:       req.LearningGoal,
	}

	p, err := h.service.Update(r.Context(), principal.ID, req.UserID, update)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toProfileResponse(p))
}

func toProfileResponse(p *model.Profile) profileResponse {
	return profileResponse{
		ID:                 p.ID,
		UserID:             p.PrincipalID,
		SkillLevel:         p.SkillLevel,
		SoftwareBackground: p.SoftwareBackground,
		HardwareBackground: p.HardwareBackground,
		LearningGoal:       p.LearningGoal,
		CreatedAt:          p.CreatedAt.Format(timeFormat),
		UpdatedAt:          p.UpdatedAt.Format(timeFormat),
	}
}
