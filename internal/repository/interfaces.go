// Package repository はデータ永続化のインターフェースを定義する。
package repository

import (
	"context"
	"time"

	"github.com/hitoshi/newsdesk/internal/model"
)

// UserRepository はユーザーデータの永続化インターフェース。
// tier（課金プラン）とrole（操作権限）の唯一の情報源となる。
type UserRepository interface {
	// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.User, error)

	// CreateWithIdentity はユーザーとidentityを同一トランザクションで作成する。
	CreateWithIdentity(ctx context.Context, user *model.User, identity *model.Identity) error

	// RoleByUserID は指定ユーザーのroleを返す。ユーザーが存在しない場合はRoleUserを返す。
	RoleByUserID(ctx context.Context, userID string) (model.Role, error)

	// TierByUserID は指定ユーザーのtierを返す。ユーザーが存在しない場合はTierFreeを返す。
	TierByUserID(ctx context.Context, userID string) (model.Tier, error)

	// UpdateSubscription はtier・有効フラグ・購読期間を更新する。
	UpdateSubscription(ctx context.Context, userID string, tier model.Tier, isActive bool, start, end *time.Time) (*model.User, error)

	// SetRole は指定ユーザーのroleを更新する。
	// 存在しないユーザーにadmin権限を付与する場合は、与えられたemail/nameで
	// premium tierの新規レコードを作成する（管理者は常にプレミアム扱い）。
	SetRole(ctx context.Context, userID, email, name string, role model.Role) (*model.User, error)

	// ListAdmins はis_activeなadmin/super_adminユーザーの一覧を返す。
	ListAdmins(ctx context.Context) ([]*model.User, error)
}

// IdentityRepository は外部IdP紐付け情報の永続化インターフェース。
type IdentityRepository interface {
	// FindByProviderAndProviderUserID はproviderとprovider_user_idでidentityを検索する。
	// 見つからない場合はnilを返す。
	FindByProviderAndProviderUserID(ctx context.Context, provider, providerUserID string) (*model.Identity, error)
}

// SessionRepository はセッションデータの永続化インターフェース。
type SessionRepository interface {
	// Create はセッションを作成する。
	Create(ctx context.Context, session *model.Session) error
	// FindByID は指定IDのセッションを取得する。期限切れの場合はnilを返す。
	FindByID(ctx context.Context, id string) (*model.Session, error)
	// DeleteByID は指定IDのセッションを削除する。
	DeleteByID(ctx context.Context, id string) error
	// DeleteByUserID は指定ユーザーの全セッションを削除する。
	DeleteByUserID(ctx context.Context, userID string) error
}

// ArticleListOptions は記事一覧取得のフィルタとページングを表す。
type ArticleListOptions struct {
	// PublishedOnly がtrueの場合、statusがpublishedの記事のみを返す。
	// 公開API経由のアクセスでは常にtrueにすること。
	PublishedOnly bool
	Limit         int
	Offset        int
}

// ArticleRepository は記事（ニュースレター/ブログ記事）の永続化インターフェース。
// newslettersテーブルとblog_postsテーブルは同一構造のため、実装をテーブル名で共有する。
type ArticleRepository interface {
	// FindByID は指定IDの記事を取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.Article, error)

	// FindBySlug は指定スラッグの記事を取得する。見つからない場合はnilを返す。
	FindBySlug(ctx context.Context, slug string) (*model.Article, error)

	// List は記事一覧をpublished_at降順で返す。
	List(ctx context.Context, opts ArticleListOptions) ([]*model.Article, error)

	// Create は記事を作成し、採番されたIDをarticle.IDに書き戻す。
	Create(ctx context.Context, article *model.Article) error

	// Update は記事を上書き更新する。対象が存在しない場合はエラーを返す。
	Update(ctx context.Context, article *model.Article) error

	// Delete は指定IDの記事を削除する。対象が存在しない場合はエラーを返す。
	Delete(ctx context.Context, id int64) error

	// IncrementViewCount は閲覧数を1加算する。
	// 加算はSQLの view_count = view_count + 1 で行い、並行アクセスでも
	// 更新が失われないことをDBの原子性に依存して保証する。
	IncrementViewCount(ctx context.Context, id int64) error
}

// AIProductRepository はAIプロダクトの永続化インターフェース。
type AIProductRepository interface {
	// FindByID は指定IDのプロダクトを取得する。見つからない場合はnilを返す。
	FindByID(ctx context.Context, id int64) (*model.AIProduct, error)

	// FindBySlug は指定スラッグのプロダクトを取得する。見つからない場合はnilを返す。
	FindBySlug(ctx context.Context, slug string) (*model.AIProduct, error)

	// List はis_activeなプロダクト一覧をcreated_at降順で返す。
	List(ctx context.Context, limit, offset int) ([]*model.AIProduct, error)

	// ListFeatured はis_activeかつis_featuredなプロダクト一覧を返す。
	ListFeatured(ctx context.Context) ([]*model.AIProduct, error)

	// Create はプロダクトを作成し、採番されたIDをproduct.IDに書き戻す。
	Create(ctx context.Context, product *model.AIProduct) error

	// Update はプロダクトを上書き更新する。
	Update(ctx context.Context, product *model.AIProduct) error

	// Delete は指定IDのプロダクトを削除する。
	Delete(ctx context.Context, id int64) error

	// IncrementViewCount は閲覧数を1加算する。
	IncrementViewCount(ctx context.Context, id int64) error
}

// PresentationRepository はプレゼン資料の永続化インターフェース。
type PresentationRepository interface {
	List(ctx context.Context, publishedOnly bool, limit, offset int) ([]*model.Presentation, error)
	FindBySlug(ctx context.Context, slug string) (*model.Presentation, error)
	Create(ctx context.Context, p *model.Presentation) error
	Delete(ctx context.Context, id int64) error
}

// BioPageRepository は紹介ページの永続化インターフェース。
type BioPageRepository interface {
	List(ctx context.Context) ([]*model.BioPage, error)
	FindBySlug(ctx context.Context, slug string) (*model.BioPage, error)
	Create(ctx context.Context, p *model.BioPage) error
	Delete(ctx context.Context, id int64) error
}

// TestimonialRepository は推薦文の永続化インターフェース。
type TestimonialRepository interface {
	// List はis_activeな推薦文の一覧を返す。featuredOnlyがtrueの場合はis_featuredのみ。
	List(ctx context.Context, featuredOnly bool) ([]*model.Testimonial, error)
	Create(ctx context.Context, t *model.Testimonial) error
	Delete(ctx context.Context, id int64) error
}

// NewsletterSubscriptionRepository はニュースレター購読の永続化インターフェース。
type NewsletterSubscriptionRepository interface {
	// Subscribe は購読を作成する。解除済みレコードがある場合は再有効化する（冪等）。
	Subscribe(ctx context.Context, userID string, newsletterID int64) (*model.NewsletterSubscription, error)

	// Unsubscribe はis_activeをfalseにする。レコードは物理削除しない。
	Unsubscribe(ctx context.Context, userID string, newsletterID int64) error

	// ListByUserID はユーザーの有効な購読一覧を返す。
	ListByUserID(ctx context.Context, userID string) ([]*model.NewsletterSubscription, error)
}

// ContentStats はコンテンツ単位の閲覧統計。
type ContentStats struct {
	TotalReads     int
	AvgReadSeconds float64
}

// ReadingHistoryRepository は閲覧履歴の永続化インターフェース。追記専用。
type ReadingHistoryRepository interface {
	// Add は閲覧履歴を追記する。
	Add(ctx context.Context, h *model.ReadingHistory) error

	// ListByUserID はユーザーの閲覧履歴をread_at降順で返す。
	ListByUserID(ctx context.Context, userID string, limit int) ([]*model.ReadingHistory, error)

	// CountInPeriod は期間内の指定コンテンツ種別の閲覧数を返す。
	// 無料プランの月間閲覧数制限に使用する。カウントクエリであり
	// 原子的な予約ではないため、ハードリミットとしては機能しない。
	CountInPeriod(ctx context.Context, userID string, contentType model.ContentType, from, to time.Time) (int, error)

	// StatsByContent はコンテンツ単位の閲覧統計を返す。
	StatsByContent(ctx context.Context, contentType model.ContentType, contentID int64) (*ContentStats, error)

	// DeleteOlderThan は指定時刻より古い閲覧履歴を削除し、削除件数を返す。
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
