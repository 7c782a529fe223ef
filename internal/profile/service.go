// Package profile は学習プロファイルの取得・更新サービスを提供する。
package profile

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/kenta/hondana/internal/model"
	"github.com/kenta/hondana/internal/repository"
)

var (
	// ErrProfileNotFound はプロファイルが未作成の場合のエラー。
	ErrProfileNotFound = errors.New("profile not found")
	// ErrNoUpdatableFields は更新対象フィールドが1つも指定されていない場合のエラー。
	ErrNoUpdatableFields = errors.New("no updatable fields in request")
)

// Service は学習プロファイルのユースケースを実装する。
type Service struct {
	profiles repository.ProfileRepository
}

// NewService は新しいServiceを生成する。
func NewService(profiles repository.ProfileRepository) *Service {
	return &Service{profiles: profiles}
}

// Get は指定Principalのプロファイルを取得する。
// プロファイル未作成の場合はErrProfileNotFoundを返す。
func (s *Service) Get(ctx context.Context, principalID string) (*model.Profile, error) {
	profile, err := s.profiles.FindByPrincipalID(ctx, principalID)
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}
	if profile == nil {
		return nil, ErrProfileNotFound
	}
	return profile, nil
}

// Update はプロファイルを部分更新する。未作成の場合はUPSERTで新規作成する。
// updateのnilフィールドは既存値を維持する。
// 対象Principalは常にセッション由来のprincipalIDで決まる。bodyUserIDは
// クライアントが送信した参考値であり、不一致の場合は警告ログのみ記録し無視する。
func (s *Service) Update(ctx context.Context, principalID, bodyUserID string, update model.ProfileUpdate) (*model.Profile, error) {
	if update.IsEmpty() {
		return nil, ErrNoUpdatableFields
	}

	if bodyUserID != "" && bodyUserID != principalID {
		slog.Warn("suspicious profile update",
			slog.String("session_principal_id", principalID),
			slog.String("body_user_id", bodyUserID),
		)
	}

	profile, err := s.profiles.Upsert(ctx, principalID, update)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}
	return profile, nil
}
