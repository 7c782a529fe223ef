// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/kenta/hondana/internal/model"
)

// PrincipalRepository はPrincipalデータの永続化インターフェース。
// Principalの作成・更新は認証コラボレータ経由でのみ行われる。
type PrincipalRepository interface {
	// FindByID は指定IDのPrincipalを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Principal, error)

	// FindByEmail はメールアドレスでPrincipalを検索する。見つからない場合はnilを返す。
	FindByEmail(ctx context.Context, email string) (*model.Principal, error)

	// CreateWithCredential はPrincipalと資格情報を同一トランザクションで作成する。
	CreateWithCredential(ctx context.Context, principal *model.Principal, credential *model.Credential) error
}

// CredentialRepository はメール認証の資格情報の永続化インターフェース。
type CredentialRepository interface {
	// FindByPrincipalID は指定PrincipalのCredentialを取得する。見つからない場合はnilを返す。
	FindByPrincipalID(ctx context.Context, principalID string) (*model.Credential, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error

	// FindByToken は指定トークンの有効なセッションを取得する。
	// 期限切れまたは未登録の場合はnilを返す。
	FindByToken(ctx context.Context, token string) (*model.Session, error)

	// Refresh はセッションの有効期限を延長する。
	Refresh(ctx context.Context, token string, expiresAt, refreshedAt time.Time) error

	// DeleteByToken は指定トークンのセッションを削除する。
	DeleteByToken(ctx context.Context, token string) error

	// DeleteByPrincipalID は指定Principalの全セッションを削除する。
	DeleteByPrincipalID(ctx context.Context, principalID string) error
}

// ProfileRepository は学習プロファイルの永続化インターフェース。
type ProfileRepository interface {
	// FindByPrincipalID は指定PrincipalのProfileを取得する。見つからない場合はnilを返す。
	FindByPrincipalID(ctx context.Context, principalID string) (*model.Profile, error)

	// Upsert はプロファイルをprincipal_idキーで冪等にUPSERTする。
	// updateのnilフィールドは既存値を維持する部分更新を行う。
	Upsert(ctx context.Context, principalID string, update model.ProfileUpdate) (*model.Profile, error)
}
