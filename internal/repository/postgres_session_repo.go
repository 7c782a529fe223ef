package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/kenta/hondana/internal/database"
	"github.com/kenta/hondana/internal/model"
)

// PostgresSessionRepo はPostgreSQLを使用したセッションリポジトリ。
type PostgresSessionRepo struct {
	pool *database.Pool
}

// NewPostgresSessionRepo はPostgresSessionRepoを生成する。
func NewPostgresSessionRepo(pool *database.Pool) *PostgresSessionRepo {
	return &PostgresSessionRepo{pool: pool}
}

// Create はセッションを作成する。
func (r *PostgresSessionRepo) Create(ctx context.Context, session *model.Session) error {
	_, err := r.pool.Exec(ctx,
		`INSERT INTO sessions (token, principal_id, expires_at, created_at, refreshed_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		session.Token, session.PrincipalID, session.ExpiresAt, session.CreatedAt, session.RefreshedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}
	return nil
}

// FindByToken は指定トークンの有効なセッションを取得する。
// 期限切れまたは未登録の場合はnilを返す。
func (r *PostgresSessionRepo) FindByToken(ctx context.Context, token string) (*model.Session, error) {
	row, err := r.pool.QueryRow(ctx,
		`SELECT token, principal_id, expires_at, created_at, refreshed_at
		 FROM sessions
		 WHERE token = $1 AND expires_at > now()`,
		token,
	)
	if err != nil {
		return nil, err
	}

	session := &model.Session{}
	err = row.Scan(&session.Token, &session.PrincipalID, &session.ExpiresAt, &session.CreatedAt, &session.RefreshedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	return session, nil
}

// Refresh はセッションの有効期限を延長する。
func (r *PostgresSessionRepo) Refresh(ctx context.Context, token string, expiresAt, refreshedAt time.Time) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE sessions SET expires_at = $2, refreshed_at = $3 WHERE token = $1`,
		token, expiresAt, refreshedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to refresh session: %w", err)
	}
	return nil
}

// DeleteByToken は指定トークンのセッションを削除する。
func (r *PostgresSessionRepo) DeleteByToken(ctx context.Context, token string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM sessions WHERE token = $1`,
		token,
	)
	if err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// DeleteByPrincipalID は指定Principalの全セッションを削除する。
func (r *PostgresSessionRepo) DeleteByPrincipalID(ctx context.Context, principalID string) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM sessions WHERE principal_id = $1`,
		principalID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete principal sessions: %w", err)
	}
	return nil
}

// compile-time interface check
var _ SessionRepository = (*PostgresSessionRepo)(nil)
