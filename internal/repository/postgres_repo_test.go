package repository

import (
	"testing"
	"time"

	"github.com/hitoshi/newsdesk/internal/model"
)

// 各実装が対応するインターフェースを満たすことを検証
func TestPostgresRepos_ImplementInterfaces(t *testing.T) {
	var _ UserRepository = (*PostgresUserRepo)(nil)
	var _ IdentityRepository = (*PostgresIdentityRepo)(nil)
	var _ SessionRepository = (*PostgresSessionRepo)(nil)
	var _ ArticleRepository = (*PostgresArticleRepo)(nil)
	var _ AIProductRepository = (*PostgresAIProductRepo)(nil)
	var _ PresentationRepository = (*PostgresPresentationRepo)(nil)
	var _ BioPageRepository = (*PostgresBioPageRepo)(nil)
	var _ TestimonialRepository = (*PostgresTestimonialRepo)(nil)
	var _ NewsletterSubscriptionRepository = (*PostgresNewsletterSubscriptionRepo)(nil)
	var _ ReadingHistoryRepository = (*PostgresReadingHistoryRepo)(nil)
}

// ニュースレター用とブログ用のリポジトリが異なるテーブルを参照することを検証
func TestPostgresArticleRepo_TablePerConstructor(t *testing.T) {
	newsletters := NewPostgresNewsletterRepo(nil)
	if newsletters.table != "newsletters" {
		t.Errorf("newsletters.table = %q, want %q", newsletters.table, "newsletters")
	}

	blogPosts := NewPostgresBlogPostRepo(nil)
	if blogPosts.table != "blog_posts" {
		t.Errorf("blogPosts.table = %q, want %q", blogPosts.table, "blog_posts")
	}
}

// NewPostgresUserRepoが正しく初期化されることを検証
func TestNewPostgresUserRepo_Initializes(t *testing.T) {
	repo := NewPostgresUserRepo(nil)
	if repo == nil {
		t.Fatal("expected non-nil repo")
	}
}

// CreateWithIdentityに渡すidentityのUserIDはuserのIDと一致していること
func TestPostgresUserRepo_CreateWithIdentity_LinksIdentity(t *testing.T) {
	user := &model.User{
		ID:    "user-id-1",
		Email: "test@example.com",
		Name:  "Test User",
		Tier:  model.TierFree,
		Role:  model.RoleUser,
	}
	identity := &model.Identity{
		ID:             "identity-id-1",
		UserID:         "user-id-1",
		Provider:       "google",
		ProviderUserID: "google-123",
	}

	if identity.UserID != user.ID {
		t.Errorf("identity.UserID = %q, want %q", identity.UserID, user.ID)
	}
}

// SessionRepoのFindByIDが期限切れセッションを返さないことの期待動作
func TestPostgresSessionRepo_FindByID_ExpiredSession_Concept(t *testing.T) {
	session := &model.Session{
		ID:        "expired-session",
		UserID:    "user-1",
		ExpiresAt: time.Now().Add(-1 * time.Hour),
	}

	if session.ExpiresAt.After(time.Now()) {
		t.Error("expected session to be expired")
	}
}

// ArticleListOptionsのゼロ値は全件（下書き含む）を意味すること
func TestArticleListOptions_ZeroValue(t *testing.T) {
	opts := ArticleListOptions{}
	if opts.PublishedOnly {
		t.Error("zero value should not restrict to published")
	}
	if opts.Limit != 0 || opts.Offset != 0 {
		t.Error("zero value should not set paging")
	}
}
