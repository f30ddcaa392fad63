// Package model はドメインモデルを定義する。
package model

import "time"

// ContentStatus はコンテンツのライフサイクル状態を表す。
// publishedのコンテンツのみが非管理者に公開される。
type ContentStatus string

const (
	// StatusDraft は下書き状態。
	StatusDraft ContentStatus = "draft"
	// StatusPublished は公開状態。
	StatusPublished ContentStatus = "published"
	// StatusArchived はアーカイブ状態。
	StatusArchived ContentStatus = "archived"
)

// ContentType は閲覧履歴で参照するコンテンツ種別を表す。
type ContentType string

const (
	ContentTypeNewsletter   ContentType = "newsletter"
	ContentTypeBlog         ContentType = "blog"
	ContentTypePresentation ContentType = "presentation"
	ContentTypeProduct      ContentType = "product"
	ContentTypeBio          ContentType = "bio"
	ContentTypeTestimonial  ContentType = "testimonial"
)

// Article はニュースレターとブログ記事に共通する記事データを表す。
// newslettersテーブルとblog_postsテーブルは同一のカラム構成を持つ。
type Article struct {
	ID            int64
	Title         string
	Slug          string
	Description   string
	Content       string // markdown本文
	Excerpt       string
	FeaturedImage string
	Status        ContentStatus
	PublishedAt   *time.Time
	AuthorID      string // 外部IdPのユーザーID（自由記述。FKではない）
	Tags          []string
	ReadTime      int // 推定読了時間（分）
	IsPremium     bool
	ViewCount     int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Published はコンテンツが公開状態かどうかを返す。
func (a *Article) Published() bool {
	return a.Status == StatusPublished
}

// ArticleDraft はAI生成のプレビュー結果を表す。
// 生成オーケストレーターはリポジトリに直接書き込まず、必ず
// 本構造体を呼び出し元に返す。永続化は明示的なpublish操作で行う。
type ArticleDraft struct {
	Title       string
	Content     string
	Description string
	Excerpt     string
	Tags        []string
	ReadTime    int
	Images      []string
	Prompt      string
}

// AIProduct はAIプロダクトのカタログ掲載情報を表す。
type AIProduct struct {
	ID              int64
	Name            string
	Slug            string
	Description     string
	LongDescription string
	Category        string
	Price           string // NUMERIC(10,2)の文字列表現
	Currency        string
	ImageURL        string
	DemoURL         string
	GithubURL       string
	WebsiteURL      string
	Features        []string
	Tags            []string
	IsActive        bool
	IsFeatured      bool
	ViewCount       int
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Presentation はスライド資料を表す。Contentにはスライド構造のJSONを保持する。
type Presentation struct {
	ID           int64
	Title        string
	Slug         string
	Description  string
	Content      string
	ThumbnailURL string
	Status       ContentStatus
	PublishedAt  *time.Time
	AuthorID     string
	Tags         []string
	Duration     int // 分
	IsPremium    bool
	ViewCount    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BioPage は紹介ページを表す。
type BioPage struct {
	ID           int64
	Title        string
	Slug         string
	Content      string
	ProfileImage string
	SocialLinks  map[string]string
	IsActive     bool
	ViewCount    int
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Testimonial は利用者の推薦文を表す。
type Testimonial struct {
	ID         int64
	Name       string
	Title      string
	Company    string
	Content    string
	Avatar     string
	Rating     int // 1-5
	IsActive   bool
	IsFeatured bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
