// Package model はドメインモデルを定義する。
package model

import "time"

// Tier はユーザーの課金プランを表す。コンテンツ閲覧の制御に使用する。
// Role（操作権限）とは独立した軸であり、1つのフィールドに統合してはならない。
type Tier string

const (
	// TierFree は無料プラン。プレミアムコンテンツは閲覧できない。
	TierFree Tier = "free"
	// TierPaid は有料プラン。
	TierPaid Tier = "paid"
	// TierPremium はプレミアムプラン。
	TierPremium Tier = "premium"
)

// Role はユーザーの操作権限を表す。管理APIのアクセス制御に使用する。
type Role string

const (
	// RoleUser は一般ユーザー。
	RoleUser Role = "user"
	// RoleAdmin は管理者。管理APIにアクセスできる。
	RoleAdmin Role = "admin"
	// RoleSuperAdmin は特権管理者。
	RoleSuperAdmin Role = "super_admin"
)

// IsAdmin はRoleが管理者権限を持つかどうかを返す。
func (r Role) IsAdmin() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// Valid はRoleが定義済みの値かどうかを返す。
func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return true
	}
	return false
}

// Valid はTierが定義済みの値かどうかを返す。
func (t Tier) Valid() bool {
	switch t {
	case TierFree, TierPaid, TierPremium:
		return true
	}
	return false
}

// User はサービス利用ユーザーと購読状態を表す。
// 認証自体は外部IdPが担い、本テーブルはtier/roleの唯一の情報源となる。
type User struct {
	ID                    string
	Email                 string
	Name                  string
	Tier                  Tier
	Role                  Role
	IsActive              bool
	SubscriptionStartDate *time.Time
	SubscriptionEndDate   *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

// Identity は外部IdPとの紐付け情報を表す。
// 複数のIdP（Google, GitHub等）に対応可能な構造。
type Identity struct {
	ID             string
	UserID         string
	Provider       string
	ProviderUserID string
	CreatedAt      time.Time
}

// Session はユーザーのログインセッションを表す。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// NewsletterSubscription はユーザーとニュースレターの購読関係を表す。
// 解除時はis_activeをfalseにするのみで、レコードは物理削除しない。
type NewsletterSubscription struct {
	ID           int64
	UserID       string
	NewsletterID int64
	SubscribedAt time.Time
	IsActive     bool
}

// ReadingHistory は閲覧履歴を表す。追記専用のログで、
// 分析と無料プランの閲覧数制限に使用する。
type ReadingHistory struct {
	ID          int64
	UserID      string
	ContentType ContentType
	ContentID   int64
	ReadAt      time.Time
	ReadSeconds int
}
