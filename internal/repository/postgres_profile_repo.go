package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/kenta/hondana/internal/database"
	"github.com/kenta/hondana/internal/model"
)

// PostgresProfileRepo はPostgreSQLを使用した学習プロファイルリポジトリ。
type PostgresProfileRepo struct {
	pool *database.Pool

	// nowFunc はテストでの差し替え用。通常はtime.Now。
	nowFunc func() time.Time
}

// NewPostgresProfileRepo はPostgresProfileRepoを生成する。
func NewPostgresProfileRepo(pool *database.Pool) *PostgresProfileRepo {
	return &PostgresProfileRepo{
		pool:    pool,
		nowFunc: time.Now,
	}
}

// FindByPrincipalID は指定PrincipalのProfileを取得する。見つからない場合はnilを返す。
func (r *PostgresProfileRepo) FindByPrincipalID(ctx context.Context, principalID string) (*model.Profile, error) {
	row, err := r.pool.QueryRow(ctx,
		`SELECT id, principal_id, skill_level, software_background, hardware_background, learning_goal, created_at, updated_at
		 FROM profiles WHERE principal_id = $1`,
		principalID,
	)
	if err != nil {
		return nil, err
	}

	profile := &model.Profile{}
	var skillLevel, softwareBG, hardwareBG, learningGoal sql.NullString

	err = row.Scan(
		&profile.ID, &profile.PrincipalID,
		&skillLevel, &softwareBG, &hardwareBG, &learningGoal,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find profile: %w", err)
	}

	profile.SkillLevel = nullableString(skillLevel)
	profile.SoftwareBackground = nullableString(softwareBG)
	profile.HardwareBackground = nullableString(hardwareBG)
	profile.LearningGoal = nullableString(learningGoal)

	return profile, nil
}

// Upsert はプロファイルをprincipal_idキーで冪等にUPSERTする。
// updateのnilフィールドは既存値を維持する部分更新を行う。
// マージは単一ステートメントのINSERT ON CONFLICT + COALESCEでデータベース側で行う。
// 事前読み取りのスナップショットを書き戻さないため、並行する部分更新が
// 互いの確定済みフィールドを巻き戻すことはない（行レベルの原子性で完結する）。
func (r *PostgresProfileRepo) Upsert(ctx context.Context, principalID string, update model.ProfileUpdate) (*model.Profile, error) {
	now := r.nowFunc().UTC()

	row, err := r.pool.QueryRow(ctx,
		`INSERT INTO profiles (id, principal_id, skill_level, software_background, hardware_background, learning_goal, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (principal_id) DO UPDATE SET
		     skill_level = COALESCE(EXCLUDED.skill_level, profiles.skill_level),
		     software_background = COALESCE(EXCLUDED.software_background, profiles.software_background),
		     hardware_background = COALESCE(EXCLUDED.hardware_background, profiles.hardware_background),
		     learning_goal = COALESCE(EXCLUDED.learning_goal, profiles.learning_goal),
		     updated_at = EXCLUDED.updated_at
		 RETURNING id, principal_id, skill_level, software_background, hardware_background, learning_goal, created_at, updated_at`,
		uuid.New().String(), principalID,
		update.SkillLevel, update.SoftwareBackground,
		update.HardwareBackground, update.LearningGoal,
		now, now,
	)
	if err != nil {
		return nil, err
	}

	profile := &model.Profile{}
	var skillLevel, softwareBG, hardwareBG, learningGoal sql.NullString

	err = row.Scan(
		&profile.ID, &profile.PrincipalID,
		&skillLevel, &softwareBG, &hardwareBG, &learningGoal,
		&profile.CreatedAt, &profile.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert profile: %w", err)
	}

	profile.SkillLevel = nullableString(skillLevel)
	profile.SoftwareBackground = nullableString(softwareBG)
	profile.HardwareBackground = nullableString(hardwareBG)
	profile.LearningGoal = nullableString(learningGoal)

	return profile, nil
}

// nullableString はsql.NullStringを*stringに変換する。
func nullableString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}

// compile-time interface check
var _ ProfileRepository = (*PostgresProfileRepo)(nil)
