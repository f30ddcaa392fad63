package content

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/repository"
)

// --- モック ---

type mockArticleRepo struct {
	findByIDFn           func(ctx context.Context, id int64) (*model.Article, error)
	findBySlugFn         func(ctx context.Context, slug string) (*model.Article, error)
	listFn               func(ctx context.Context, opts repository.ArticleListOptions) ([]*model.Article, error)
	createFn             func(ctx context.Context, article *model.Article) error
	updateFn             func(ctx context.Context, article *model.Article) error
	deleteFn             func(ctx context.Context, id int64) error
	incrementViewCountFn func(ctx context.Context, id int64) error
}

func (m *mockArticleRepo) FindByID(ctx context.Context, id int64) (*model.Article, error) {
	if m.findByIDFn != nil {
		return m.findByIDFn(ctx, id)
	}
	return nil, nil
}
func (m *mockArticleRepo) FindBySlug(ctx context.Context, slug string) (*model.Article, error) {
	if m.findBySlugFn != nil {
		return m.findBySlugFn(ctx, slug)
	}
	return nil, nil
}
func (m *mockArticleRepo) List(ctx context.Context, opts repository.ArticleListOptions) ([]*model.Article, error) {
	if m.listFn != nil {
		return m.listFn(ctx, opts)
	}
	return nil, nil
}
func (m *mockArticleRepo) Create(ctx context.Context, article *model.Article) error {
	if m.createFn != nil {
		return m.createFn(ctx, article)
	}
	article.ID = 1
	return nil
}
func (m *mockArticleRepo) Update(ctx context.Context, article *model.Article) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, article)
	}
	return nil
}
func (m *mockArticleRepo) Delete(ctx context.Context, id int64) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}
func (m *mockArticleRepo) IncrementViewCount(ctx context.Context, id int64) error {
	if m.incrementViewCountFn != nil {
		return m.incrementViewCountFn(ctx, id)
	}
	return nil
}

type mockHistoryRepo struct {
	addFn func(ctx context.Context, h *model.ReadingHistory) error
}

func (m *mockHistoryRepo) Add(ctx context.Context, h *model.ReadingHistory) error {
	if m.addFn != nil {
		return m.addFn(ctx, h)
	}
	return nil
}
func (m *mockHistoryRepo) ListByUserID(ctx context.Context, userID string, limit int) ([]*model.ReadingHistory, error) {
	return nil, nil
}
func (m *mockHistoryRepo) CountInPeriod(ctx context.Context, userID string, contentType model.ContentType, from, to time.Time) (int, error) {
	return 0, nil
}
func (m *mockHistoryRepo) StatsByContent(ctx context.Context, contentType model.ContentType, contentID int64) (*repository.ContentStats, error) {
	return &repository.ContentStats{}, nil
}
func (m *mockHistoryRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	return 0, nil
}

func newTestService(repo *mockArticleRepo, history *mockHistoryRepo) *ArticleService {
	svc := NewArticleService(repo, history, model.ContentTypeNewsletter)
	svc.now = func() time.Time { return time.UnixMilli(1700000000000) }
	return svc
}

// --- テスト ---

// Createが省略された派生値を本文から導出することを検証
func TestArticleService_Create_DerivesFields(t *testing.T) {
	var created *model.Article
	repo := &mockArticleRepo{
		createFn: func(ctx context.Context, article *model.Article) error {
			article.ID = 42
			created = article
			return nil
		},
	}
	svc := newTestService(repo, nil)

	article, err := svc.Create(context.Background(), CreateArticleInput{
		Title:    "Weekly AI Digest",
		Content:  "# Weekly AI Digest\n\nThe first paragraph of the body.\n\nAnother paragraph.",
		AuthorID: "author-1",
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if created == nil {
		t.Fatal("expected repo.Create to be called")
	}
	if article.ID != 42 {
		t.Errorf("article.ID = %d, want 42", article.ID)
	}
	if article.Slug != "weekly-ai-digest-1700000000000" {
		t.Errorf("article.Slug = %q, want %q", article.Slug, "weekly-ai-digest-1700000000000")
	}
	if article.Status != model.StatusDraft {
		t.Errorf("article.Status = %q, want %q", article.Status, model.StatusDraft)
	}
	if article.Description == "" || article.Excerpt == "" {
		t.Error("expected description and excerpt to be derived")
	}
	if article.ReadTime < 1 {
		t.Errorf("article.ReadTime = %d, want >= 1", article.ReadTime)
	}
	if article.PublishedAt != nil {
		t.Error("draft should not have published_at")
	}
}

// 明示的に与えられた値が導出で上書きされないことを検証
func TestArticleService_Create_KeepsExplicitValues(t *testing.T) {
	svc := newTestService(&mockArticleRepo{}, nil)

	article, err := svc.Create(context.Background(), CreateArticleInput{
		Title:       "Title",
		Slug:        "custom-slug",
		Description: "custom description",
		Content:     "Body text.",
		Excerpt:     "custom excerpt",
		ReadTime:    7,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if article.Slug != "custom-slug" {
		t.Errorf("article.Slug = %q, want %q", article.Slug, "custom-slug")
	}
	if article.Description != "custom description" {
		t.Errorf("article.Description = %q, want %q", article.Description, "custom description")
	}
	if article.Excerpt != "custom excerpt" {
		t.Errorf("article.Excerpt = %q, want %q", article.Excerpt, "custom excerpt")
	}
	if article.ReadTime != 7 {
		t.Errorf("article.ReadTime = %d, want 7", article.ReadTime)
	}
}

// 公開状態で作成するとpublished_atが設定されることを検証
func TestArticleService_Create_PublishedSetsTimestamp(t *testing.T) {
	svc := newTestService(&mockArticleRepo{}, nil)

	article, err := svc.Create(context.Background(), CreateArticleInput{
		Title:   "Launch",
		Content: "Body.",
		Status:  model.StatusPublished,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if article.PublishedAt == nil {
		t.Fatal("expected published_at to be set")
	}
	if !article.PublishedAt.Equal(time.UnixMilli(1700000000000)) {
		t.Errorf("published_at = %v, want fixed test time", article.PublishedAt)
	}
}

// タイトル・本文が空の場合にバリデーションエラーを返すことを検証
func TestArticleService_Create_Validation(t *testing.T) {
	svc := newTestService(&mockArticleRepo{}, nil)

	tests := []struct {
		name  string
		input CreateArticleInput
	}{
		{name: "missing title", input: CreateArticleInput{Content: "body"}},
		{name: "missing content", input: CreateArticleInput{Title: "title"}},
		{name: "whitespace title", input: CreateArticleInput{Title: "   ", Content: "body"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.input)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("expected APIError, got %v", err)
			}
			if apiErr.Code != model.ErrCodeValidation {
				t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeValidation)
			}
		})
	}
}

// GetBySlugが未公開記事をNotFound扱いにすることを検証
func TestArticleService_GetBySlug_DraftHidden(t *testing.T) {
	repo := &mockArticleRepo{
		findBySlugFn: func(ctx context.Context, slug string) (*model.Article, error) {
			return &model.Article{ID: 1, Slug: slug, Status: model.StatusDraft}, nil
		},
	}
	svc := newTestService(repo, nil)

	_, err := svc.GetBySlug(context.Background(), "hidden-draft")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeNotFound {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeNotFound)
	}
}

// Updateで下書きから公開に遷移するとpublished_atが設定されることを検証
func TestArticleService_Update_PublishTransition(t *testing.T) {
	existing := &model.Article{
		ID:      1,
		Title:   "Draft",
		Slug:    "draft-1",
		Content: "Body.",
		Status:  model.StatusDraft,
	}
	repo := &mockArticleRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.Article, error) {
			return existing, nil
		},
	}
	svc := newTestService(repo, nil)

	article, err := svc.Update(context.Background(), 1, UpdateArticleInput{
		Title:   "Draft",
		Content: "Body.",
		Status:  model.StatusPublished,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if article.PublishedAt == nil {
		t.Fatal("expected published_at to be set on publish transition")
	}
}

// 既に公開済みの記事の更新でpublished_atが変わらないことを検証
func TestArticleService_Update_KeepsOriginalPublishedAt(t *testing.T) {
	original := time.UnixMilli(1600000000000)
	existing := &model.Article{
		ID:          1,
		Title:       "Published",
		Slug:        "published-1",
		Content:     "Body.",
		Status:      model.StatusPublished,
		PublishedAt: &original,
	}
	repo := &mockArticleRepo{
		findByIDFn: func(ctx context.Context, id int64) (*model.Article, error) {
			return existing, nil
		},
	}
	svc := newTestService(repo, nil)

	article, err := svc.Update(context.Background(), 1, UpdateArticleInput{
		Title:   "Published v2",
		Content: "Updated body.",
		Status:  model.StatusPublished,
	})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if !article.PublishedAt.Equal(original) {
		t.Errorf("published_at = %v, want original %v", article.PublishedAt, original)
	}
}

// 存在しない記事の更新がNotFoundになることを検証
func TestArticleService_Update_NotFound(t *testing.T) {
	svc := newTestService(&mockArticleRepo{}, nil)

	_, err := svc.Update(context.Background(), 999, UpdateArticleInput{Title: "x", Content: "y"})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeNotFound {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeNotFound)
	}
}

// RecordViewが閲覧数を加算し閲覧履歴を追記することを検証
func TestArticleService_RecordView(t *testing.T) {
	incremented := int64(0)
	repo := &mockArticleRepo{
		findBySlugFn: func(ctx context.Context, slug string) (*model.Article, error) {
			return &model.Article{ID: 5, Slug: slug, Status: model.StatusPublished, ViewCount: 10}, nil
		},
		incrementViewCountFn: func(ctx context.Context, id int64) error {
			incremented = id
			return nil
		},
	}
	var recorded *model.ReadingHistory
	history := &mockHistoryRepo{
		addFn: func(ctx context.Context, h *model.ReadingHistory) error {
			recorded = h
			return nil
		},
	}
	svc := newTestService(repo, history)

	article, err := svc.RecordView(context.Background(), "some-post", "user-1")
	if err != nil {
		t.Fatalf("RecordView() error = %v", err)
	}
	if incremented != 5 {
		t.Errorf("incremented id = %d, want 5", incremented)
	}
	if article.ViewCount != 11 {
		t.Errorf("article.ViewCount = %d, want 11", article.ViewCount)
	}
	if recorded == nil {
		t.Fatal("expected reading history to be recorded")
	}
	if recorded.ContentType != model.ContentTypeNewsletter {
		t.Errorf("history.ContentType = %q, want %q", recorded.ContentType, model.ContentTypeNewsletter)
	}
	if recorded.ContentID != 5 {
		t.Errorf("history.ContentID = %d, want 5", recorded.ContentID)
	}
}

// 履歴追記の失敗が閲覧数加算の成功を妨げないことを検証
func TestArticleService_RecordView_HistoryFailureIgnored(t *testing.T) {
	repo := &mockArticleRepo{
		findBySlugFn: func(ctx context.Context, slug string) (*model.Article, error) {
			return &model.Article{ID: 5, Slug: slug, Status: model.StatusPublished}, nil
		},
	}
	history := &mockHistoryRepo{
		addFn: func(ctx context.Context, h *model.ReadingHistory) error {
			return errors.New("db down")
		},
	}
	svc := newTestService(repo, history)

	article, err := svc.RecordView(context.Background(), "some-post", "user-1")
	if err != nil {
		t.Fatalf("RecordView() error = %v", err)
	}
	if article == nil {
		t.Fatal("expected article despite history failure")
	}
}

// 匿名ユーザーの閲覧では履歴を追記しないことを検証
func TestArticleService_RecordView_AnonymousSkipsHistory(t *testing.T) {
	repo := &mockArticleRepo{
		findBySlugFn: func(ctx context.Context, slug string) (*model.Article, error) {
			return &model.Article{ID: 5, Slug: slug, Status: model.StatusPublished}, nil
		},
	}
	called := false
	history := &mockHistoryRepo{
		addFn: func(ctx context.Context, h *model.ReadingHistory) error {
			called = true
			return nil
		},
	}
	svc := newTestService(repo, history)

	if _, err := svc.RecordView(context.Background(), "some-post", ""); err != nil {
		t.Fatalf("RecordView() error = %v", err)
	}
	if called {
		t.Error("expected history not to be recorded for anonymous view")
	}
}

// 無料プランがプレミアム記事を閲覧できないことを検証
func TestCanRead(t *testing.T) {
	premium := &model.Article{IsPremium: true}
	free := &model.Article{IsPremium: false}

	tests := []struct {
		name    string
		tier    model.Tier
		article *model.Article
		want    bool
	}{
		{name: "free tier, free article", tier: model.TierFree, article: free, want: true},
		{name: "free tier, premium article", tier: model.TierFree, article: premium, want: false},
		{name: "paid tier, premium article", tier: model.TierPaid, article: premium, want: true},
		{name: "premium tier, premium article", tier: model.TierPremium, article: premium, want: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CanRead(tt.tier, tt.article)
			if got != tt.want {
				t.Errorf("CanRead(%q) = %v, want %v", tt.tier, got, tt.want)
			}
		})
	}
}
