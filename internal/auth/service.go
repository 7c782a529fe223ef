// Package auth はメール認証とセッション管理を提供する。
//
// 本パッケージはシステム境界上の認証コラボレータであり、
// 他のコンポーネントからはSessionVerifierインターフェース経由でのみ参照される。
package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kenta/hondana/internal/model"
	"github.com/kenta/hondana/internal/repository"
)

var (
	// ErrInvalidCredentials はメールアドレスまたはパスワードの不一致を表す。
	// どちらが誤っているかは意図的に区別しない。
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrEmailTaken は登録済みメールアドレスでのサインアップを表す。
	ErrEmailTaken = errors.New("email already registered")
	// ErrWeakPassword はパスワード要件を満たさないことを表す。
	ErrWeakPassword = errors.New("password does not meet requirements")
	// ErrInvalidEmail はメールアドレス形式の不備を表す。
	ErrInvalidEmail = errors.New("invalid email address")
)

const (
	minPasswordLength = 8
	tokenBytes        = 32
)

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	// SessionSecret はパスワードハッシュのペッパーとして使用する。
	SessionSecret string
	// SessionMaxAge はセッションの有効期間（秒）。
	SessionMaxAge int
}

// Service はメールサインアップ・サインイン・セッション検証を提供する。
type Service struct {
	principals  repository.PrincipalRepository
	credentials repository.CredentialRepository
	sessions    repository.SessionRepository

	pepper string
	maxAge time.Duration

	// nowFunc はテストでの差し替え用。通常はtime.Now。
	nowFunc func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	principals repository.PrincipalRepository,
	credentials repository.CredentialRepository,
	sessions repository.SessionRepository,
	cfg ServiceConfig,
) *Service {
	return &Service{
		principals:  principals,
		credentials: credentials,
		sessions:    sessions,
		pepper:      cfg.SessionSecret,
		maxAge:      time.Duration(cfg.SessionMaxAge) * time.Second,
		nowFunc:     time.Now,
	}
}

// SignUp はメールアドレスとパスワードで新規Principalを登録し、セッションを発行する。
func (s *Service) SignUp(ctx context.Context, email, password, name string) (*model.Principal, *model.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if !strings.Contains(email, "@") {
		return nil, nil, ErrInvalidEmail
	}
	if len(password) < minPasswordLength {
		return nil, nil, ErrWeakPassword
	}

	existing, err := s.principals.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check existing email: %w", err)
	}
	if existing != nil {
		return nil, nil, ErrEmailTaken
	}

	now := s.nowFunc().UTC()
	principal := &model.Principal{
		ID:        uuid.New().String(),
		Email:     email,
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	credential := &model.Credential{
		ID:           uuid.New().String(),
		PrincipalID:  principal.ID,
		PasswordHash: s.hashPassword(password),
		CreatedAt:    now,
	}

	if err := s.principals.CreateWithCredential(ctx, principal, credential); err != nil {
		return nil, nil, fmt.Errorf("failed to create principal: %w", err)
	}

	session, err := s.createSession(ctx, principal.ID)
	if err != nil {
		return nil, nil, err
	}

	return principal, session, nil
}

// SignIn は資格情報を検証し、新しいセッションを発行する。
// 未登録メール・パスワード不一致のいずれもErrInvalidCredentialsを返す。
func (s *Service) SignIn(ctx context.Context, email, password string) (*model.Principal, *model.Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))

	principal, err := s.principals.FindByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find principal: %w", err)
	}
	if principal == nil {
		return nil, nil, ErrInvalidCredentials
	}

	credential, err := s.credentials.FindByPrincipalID(ctx, principal.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find credential: %w", err)
	}
	if credential == nil || !s.verifyPassword(password, credential.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	session, err := s.createSession(ctx, principal.ID)
	if err != nil {
		return nil, nil, err
	}

	return principal, session, nil
}

// SignOut は指定トークンのセッションを破棄する。
// トークンが存在しない場合もエラーにしない（冪等）。
func (s *Service) SignOut(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.sessions.DeleteByToken(ctx, token); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

// VerifySession はトークンから有効なセッションとその所有Principalを解決する。
// 有効なセッションが存在しない場合は(nil, nil, nil)を返す。
// エラーは検証処理自体の障害（DB障害等）のみを表す。
//
// TTLの半分を超えて経過したセッションはスライディングウィンドウで延長する。
func (s *Service) VerifySession(ctx context.Context, token string) (*model.Principal, *model.Session, error) {
	if token == "" {
		return nil, nil, nil
	}

	session, err := s.sessions.FindByToken(ctx, token)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find session: %w", err)
	}
	if session == nil {
		return nil, nil, nil
	}

	principal, err := s.principals.FindByID(ctx, session.PrincipalID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to find session principal: %w", err)
	}
	if principal == nil {
		// Principal削除済み。セッションはCASCADEで消えるはずだが念のため無効扱いにする。
		return nil, nil, nil
	}

	now := s.nowFunc().UTC()
	if now.Sub(session.RefreshedAt) > s.maxAge/2 {
		expiresAt := now.Add(s.maxAge)
		if err := s.sessions.Refresh(ctx, session.Token, expiresAt, now); err != nil {
			return nil, nil, fmt.Errorf("failed to refresh session: %w", err)
		}
		session.ExpiresAt = expiresAt
		session.RefreshedAt = now
	}

	return principal, session, nil
}

// createSession は新しいセッションを発行して永続化する。
func (s *Service) createSession(ctx context.Context, principalID string) (*model.Session, error) {
	token, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session token: %w", err)
	}

	now := s.nowFunc().UTC()
	session := &model.Session{
		Token:       token,
		PrincipalID: principalID,
		ExpiresAt:   now.Add(s.maxAge),
		CreatedAt:   now,
		RefreshedAt: now,
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return session, nil
}

// hashPassword はペッパー付きSHA-256でパスワードをハッシュ化する。
func (s *Service) hashPassword(password string) string {
	sum := sha256.Sum256([]byte(s.pepper + ":" + password))
	return hex.EncodeToString(sum[:])
}

// verifyPassword はパスワードを定数時間比較で検証する。
func (s *Service) verifyPassword(password, storedHash string) bool {
	candidate := s.hashPassword(password)
	return subtle.ConstantTimeCompare([]byte(candidate), []byte(storedHash)) == 1
}

// generateToken は暗号的に安全なセッショントークンを生成する。
func generateToken() (string, error) {
	b := make([]byte, tokenBytes)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
