// Package model はドメインモデルを定義する。
package model

import "time"

// Principal は認証済みユーザーのアイデンティティを表す。
// 認証コラボレータ側で作成・更新され、本システムからは読み取り専用。
type Principal struct {
	ID        string
	Email     string
	Name      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Session はPrincipalの認証状態を証明するトークン付きセッションを表す。
// サインインで作成され、アクティビティに応じてスライディングウィンドウで更新される。
type Session struct {
	Token       string
	PrincipalID string
	ExpiresAt   time.Time
	CreatedAt   time.Time
	RefreshedAt time.Time
}

// Credential はメール認証の資格情報を表す。認証コラボレータが所有する。
type Credential struct {
	ID           string
	PrincipalID  string
	PasswordHash string
	CreatedAt    time.Time
}
