package content

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/repository"
)

const (
	descriptionMaxChars = 150
	excerptMaxChars     = 200
)

// CreateArticleInput は記事作成の入力。
// Slug・Description・Excerpt・ReadTimeは省略時に本文から導出される。
type CreateArticleInput struct {
	Title         string
	Slug          string
	Description   string
	Content       string
	Excerpt       string
	FeaturedImage string
	Status        model.ContentStatus
	AuthorID      string
	Tags          []string
	ReadTime      int
	IsPremium     bool
}

// UpdateArticleInput は記事更新の入力。
type UpdateArticleInput struct {
	Title         string
	Slug          string
	Description   string
	Content       string
	Excerpt       string
	FeaturedImage string
	Status        model.ContentStatus
	Tags          []string
	ReadTime      int
	IsPremium     bool
}

// ArticleService は記事（ニュースレター/ブログ記事）のアプリケーションサービス。
// ニュースレター用とブログ用で同一実装をリポジトリ差し替えで共有する。
type ArticleService struct {
	repo        repository.ArticleRepository
	historyRepo repository.ReadingHistoryRepository
	contentType model.ContentType
	now         func() time.Time
}

// NewArticleService はArticleServiceを生成する。
func NewArticleService(repo repository.ArticleRepository, historyRepo repository.ReadingHistoryRepository, contentType model.ContentType) *ArticleService {
	return &ArticleService{
		repo:        repo,
		historyRepo: historyRepo,
		contentType: contentType,
		now:         time.Now,
	}
}

// List は記事一覧を返す。includeAllがfalseの場合は公開済みのみ。
func (s *ArticleService) List(ctx context.Context, includeAll bool, limit, offset int) ([]*model.Article, error) {
	articles, err := s.repo.List(ctx, repository.ArticleListOptions{
		PublishedOnly: !includeAll,
		Limit:         limit,
		Offset:        offset,
	})
	if err != nil {
		return nil, fmt.Errorf("記事一覧の取得に失敗しました: %w", err)
	}
	return articles, nil
}

// GetBySlug は公開済みの記事をスラッグで取得する。
// 存在しない、または未公開の場合はNotFoundエラーを返す。
// 未公開記事の存在は非管理者に対して漏らさない。
func (s *ArticleService) GetBySlug(ctx context.Context, slug string) (*model.Article, error) {
	article, err := s.repo.FindBySlug(ctx, slug)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if article == nil || !article.Published() {
		return nil, model.NewNotFoundError("Article")
	}
	return article, nil
}

// GetByID は記事をIDで取得する。未公開も対象とする（管理用）。
func (s *ArticleService) GetByID(ctx context.Context, id int64) (*model.Article, error) {
	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if article == nil {
		return nil, model.NewNotFoundError("Article")
	}
	return article, nil
}

// Create は記事を作成する。省略された派生値は本文から算出し、
// statusがpublishedの場合はpublished_atに現在時刻を設定する。
func (s *ArticleService) Create(ctx context.Context, input CreateArticleInput) (*model.Article, error) {
	if strings.TrimSpace(input.Title) == "" {
		return nil, model.NewValidationError("Title is required")
	}
	if strings.TrimSpace(input.Content) == "" {
		return nil, model.NewValidationError("Content is required")
	}

	now := s.now()
	article := &model.Article{
		Title:         input.Title,
		Slug:          input.Slug,
		Description:   input.Description,
		Content:       input.Content,
		Excerpt:       input.Excerpt,
		FeaturedImage: input.FeaturedImage,
		Status:        input.Status,
		AuthorID:      input.AuthorID,
		Tags:          input.Tags,
		ReadTime:      input.ReadTime,
		IsPremium:     input.IsPremium,
	}
	if article.Status == "" {
		article.Status = model.StatusDraft
	}
	if article.Slug == "" {
		article.Slug = Slugify(article.Title, now)
	}
	if article.Description == "" {
		article.Description = Teaser(article.Content, descriptionMaxChars)
	}
	if article.Excerpt == "" {
		article.Excerpt = Teaser(article.Content, excerptMaxChars)
	}
	if article.ReadTime <= 0 {
		article.ReadTime = ReadTime(article.Content)
	}
	if article.Tags == nil {
		article.Tags = []string{}
	}
	if article.Published() {
		article.PublishedAt = &now
	}

	if err := s.repo.Create(ctx, article); err != nil {
		return nil, fmt.Errorf("記事の作成に失敗しました: %w", err)
	}
	return article, nil
}

// Update は記事を更新する。下書きから公開への遷移時にpublished_atを設定する。
// 既に公開済みの記事のpublished_atは変更しない。
func (s *ArticleService) Update(ctx context.Context, id int64, input UpdateArticleInput) (*model.Article, error) {
	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if article == nil {
		return nil, model.NewNotFoundError("Article")
	}

	article.Title = input.Title
	article.Description = input.Description
	article.Content = input.Content
	article.Excerpt = input.Excerpt
	article.FeaturedImage = input.FeaturedImage
	article.Tags = input.Tags
	article.ReadTime = input.ReadTime
	article.IsPremium = input.IsPremium
	if input.Slug != "" {
		article.Slug = input.Slug
	}
	if input.Status != "" {
		article.Status = input.Status
	}
	if article.ReadTime <= 0 {
		article.ReadTime = ReadTime(article.Content)
	}
	if article.Tags == nil {
		article.Tags = []string{}
	}
	if article.Published() && article.PublishedAt == nil {
		now := s.now()
		article.PublishedAt = &now
	}

	if err := s.repo.Update(ctx, article); err != nil {
		return nil, fmt.Errorf("記事の更新に失敗しました: %w", err)
	}
	return article, nil
}

// Delete は記事を削除する。
func (s *ArticleService) Delete(ctx context.Context, id int64) error {
	article, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return fmt.Errorf("記事の取得に失敗しました: %w", err)
	}
	if article == nil {
		return model.NewNotFoundError("Article")
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("記事の削除に失敗しました: %w", err)
	}
	return nil
}

// RecordView は公開済み記事の閲覧数を加算する。
// 未公開記事の場合はNotFoundエラーを返す。userIDが空でない場合は
// 閲覧履歴も追記する。履歴追記の失敗は閲覧数加算の成功を妨げない。
func (s *ArticleService) RecordView(ctx context.Context, slug, userID string) (*model.Article, error) {
	article, err := s.GetBySlug(ctx, slug)
	if err != nil {
		return nil, err
	}

	if err := s.repo.IncrementViewCount(ctx, article.ID); err != nil {
		return nil, fmt.Errorf("閲覧数の更新に失敗しました: %w", err)
	}
	article.ViewCount++

	if userID != "" && s.historyRepo != nil {
		history := &model.ReadingHistory{
			UserID:      userID,
			ContentType: s.contentType,
			ContentID:   article.ID,
		}
		if err := s.historyRepo.Add(ctx, history); err != nil {
			// 履歴は分析用途のため、失敗しても閲覧自体は成功とする
			slog.Warn("閲覧履歴の追記に失敗しました", "slug", slug, "error", err)
		}
	}

	return article, nil
}

// CanRead はtierがこの記事を閲覧できるかどうかを返す。
// プレミアム記事は無料プランでは閲覧できない。
func CanRead(tier model.Tier, article *model.Article) bool {
	if !article.IsPremium {
		return true
	}
	return tier == model.TierPaid || tier == model.TierPremium
}
