package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kenta/hondana/internal/database"
	"github.com/kenta/hondana/internal/model"
)

// PostgresCredentialRepo はPostgreSQLを使用した資格情報リポジトリ。
type PostgresCredentialRepo struct {
	pool *database.Pool
}

// NewPostgresCredentialRepo はPostgresCredentialRepoを生成する。
func NewPostgresCredentialRepo(pool *database.Pool) *PostgresCredentialRepo {
	return &PostgresCredentialRepo{pool: pool}
}

// FindByPrincipalID は指定PrincipalのCredentialを取得する。見つからない場合はnilを返す。
func (r *PostgresCredentialRepo) FindByPrincipalID(ctx context.Context, principalID string) (*model.Credential, error) {
	row, err := r.pool.QueryRow(ctx,
		`SELECT id, principal_id, password_hash, created_at FROM credentials WHERE principal_id = $1`,
		principalID,
	)
	if err != nil {
		return nil, err
	}

	credential := &model.Credential{}
	err = row.Scan(&credential.ID, &credential.PrincipalID, &credential.PasswordHash, &credential.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find credential: %w", err)
	}

	return credential, nil
}

// compile-time interface check
var _ CredentialRepository = (*PostgresCredentialRepo)(nil)
