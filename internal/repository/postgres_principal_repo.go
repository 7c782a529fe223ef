package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kenta/hondana/internal/database"
	"github.com/kenta/hondana/internal/model"
)

// PostgresPrincipalRepo はPostgreSQLを使用したPrincipalリポジトリ。
type PostgresPrincipalRepo struct {
	pool *database.Pool
}

// NewPostgresPrincipalRepo はPostgresPrincipalRepoを生成する。
func NewPostgresPrincipalRepo(pool *database.Pool) *PostgresPrincipalRepo {
	return &PostgresPrincipalRepo{pool: pool}
}

// FindByID は指定IDのPrincipalを取得する。見つからない場合はnilを返す。
func (r *PostgresPrincipalRepo) FindByID(ctx context.Context, id string) (*model.Principal, error) {
	row, err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, created_at, updated_at FROM principals WHERE id = $1`,
		id,
	)
	if err != nil {
		return nil, err
	}

	principal := &model.Principal{}
	err = row.Scan(&principal.ID, &principal.Email, &principal.Name, &principal.CreatedAt, &principal.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find principal by ID: %w", err)
	}

	return principal, nil
}

// FindByEmail はメールアドレスでPrincipalを検索する。見つからない場合はnilを返す。
func (r *PostgresPrincipalRepo) FindByEmail(ctx context.Context, email string) (*model.Principal, error) {
	row, err := r.pool.QueryRow(ctx,
		`SELECT id, email, name, created_at, updated_at FROM principals WHERE email = $1`,
		email,
	)
	if err != nil {
		return nil, err
	}

	principal := &model.Principal{}
	err = row.Scan(&principal.ID, &principal.Email, &principal.Name, &principal.CreatedAt, &principal.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find principal by email: %w", err)
	}

	return principal, nil
}

// CreateWithCredential はPrincipalと資格情報を同一トランザクションで作成する。
func (r *PostgresPrincipalRepo) CreateWithCredential(ctx context.Context, principal *model.Principal, credential *model.Credential) error {
	db, err := r.pool.Get()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO principals (id, email, name, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		principal.ID, principal.Email, principal.Name, principal.CreatedAt, principal.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert principal: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO credentials (id, principal_id, password_hash, created_at)
		 VALUES ($1, $2, $3, $4)`,
		credential.ID, credential.PrincipalID, credential.PasswordHash, credential.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert credential: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// compile-time interface check
var _ PrincipalRepository = (*PostgresPrincipalRepo)(nil)
