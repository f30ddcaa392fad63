package ingest

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/hitoshi/newsdesk/internal/content"
	"github.com/hitoshi/newsdesk/internal/metrics"
	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/repository"
	"github.com/hitoshi/newsdesk/internal/security"
)

// --- モック ---

type mockArticleRepo struct {
	created *model.Article
}

func (m *mockArticleRepo) FindByID(ctx context.Context, id int64) (*model.Article, error) {
	return nil, nil
}
func (m *mockArticleRepo) FindBySlug(ctx context.Context, slug string) (*model.Article, error) {
	return nil, nil
}
func (m *mockArticleRepo) List(ctx context.Context, opts repository.ArticleListOptions) ([]*model.Article, error) {
	return nil, nil
}
func (m *mockArticleRepo) Create(ctx context.Context, article *model.Article) error {
	article.ID = 1
	m.created = article
	return nil
}
func (m *mockArticleRepo) Update(ctx context.Context, article *model.Article) error { return nil }
func (m *mockArticleRepo) Delete(ctx context.Context, id int64) error               { return nil }
func (m *mockArticleRepo) IncrementViewCount(ctx context.Context, id int64) error   { return nil }

func newTestService(repo *mockArticleRepo) *Service {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	articles := content.NewArticleService(repo, nil, model.ContentTypeNewsletter)
	return NewService(articles, security.NewContentSanitizer(), logger, metrics.NopCollector{})
}

// --- AllowedType / FileTypeDescription ---

// 許可リストの判定を検証
func TestAllowedType(t *testing.T) {
	tests := []struct {
		mimeType string
		want     bool
	}{
		{"text/plain", true},
		{"application/pdf", true},
		{"application/msword", true},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", true},
		{"application/zip", false},
		{"image/png", false},
		{"text/html", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			if got := AllowedType(tt.mimeType); got != tt.want {
				t.Errorf("AllowedType(%q) = %v, want %v", tt.mimeType, got, tt.want)
			}
		})
	}
}

// ファイル種別の表示名を検証
func TestFileTypeDescription(t *testing.T) {
	tests := []struct {
		mimeType string
		want     string
	}{
		{"application/pdf", "PDF Document"},
		{"application/msword", "Word Document (DOC)"},
		{"application/vnd.openxmlformats-officedocument.wordprocessingml.document", "Word Document (DOCX)"},
		{"text/plain", "Text File"},
		{"application/zip", "Unknown File Type"},
		{"", "Unknown File Type"},
	}

	for _, tt := range tests {
		t.Run(tt.mimeType, func(t *testing.T) {
			if got := FileTypeDescription(tt.mimeType); got != tt.want {
				t.Errorf("FileTypeDescription(%q) = %q, want %q", tt.mimeType, got, tt.want)
			}
		})
	}
}

// --- TextExtractor ---

// タイトル抽出の条件（先頭10行、10〜100文字、#以外）を検証
func TestExtractTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{
			name: "first qualifying line",
			text: "short\nThis is the newsletter title line\nbody follows",
			want: "This is the newsletter title line",
		},
		{
			name: "markdown heading skipped",
			text: "# A Heading That Is Long Enough\nAn actual title candidate here",
			want: "An actual title candidate here",
		},
		{
			name: "no candidate falls back",
			text: "short\ntiny\nok",
			want: "Uploaded Newsletter",
		},
		{
			name: "candidate beyond first ten lines ignored",
			text: strings.Repeat("x\n", 10) + "A qualifying title line down here",
			want: "Uploaded Newsletter",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := extractTitle(tt.text); got != tt.want {
				t.Errorf("extractTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}

// 見出しらしい短い行が##に整形されることを検証
func TestFormatContent(t *testing.T) {
	text := "Introduction\nThis is a full sentence, with punctuation.\n\nNext Section\nMore body text here."
	got := formatContent(text)

	if !strings.Contains(got, "## Introduction") {
		t.Errorf("formatContent() = %q, expected heading for Introduction", got)
	}
	if !strings.Contains(got, "## Next Section") {
		t.Errorf("formatContent() = %q, expected heading for Next Section", got)
	}
	if strings.Contains(got, "## This is a full sentence") {
		t.Errorf("formatContent() = %q, sentence should not become heading", got)
	}
}

// 説明・抜粋の文字数上限を検証
func TestExtractDescriptionAndExcerpt(t *testing.T) {
	long := strings.Repeat("a", 300)

	desc := extractDescription(long)
	if len(desc) != 203 || !strings.HasSuffix(desc, "...") {
		t.Errorf("extractDescription(long) len = %d, want 203 with ellipsis", len(desc))
	}

	if got := extractDescription("tiny"); got != "Newsletter content from uploaded file" {
		t.Errorf("extractDescription(short) = %q, want fallback", got)
	}

	excerpt := extractExcerpt("line one\nline two\n" + long)
	if !strings.HasSuffix(excerpt, "...") {
		t.Errorf("extractExcerpt() = %q, want ellipsis", excerpt)
	}
	if strings.Contains(excerpt, "\n") {
		t.Errorf("extractExcerpt() = %q, newlines should be flattened", excerpt)
	}
}

// マルチバイト本文を文字の途中で切らずに切り詰めることを検証
func TestExtractDescriptionAndExcerpt_Multibyte(t *testing.T) {
	long := strings.Repeat("日本語の本文。", 50)

	excerpt := extractExcerpt(long)
	if !utf8.ValidString(excerpt) {
		t.Errorf("extractExcerpt() = %q, want valid UTF-8", excerpt)
	}
	if got := utf8.RuneCountInString(strings.TrimSuffix(excerpt, "...")); got != 200 {
		t.Errorf("excerpt rune count = %d, want 200", got)
	}

	desc := extractDescription(long)
	if !utf8.ValidString(desc) {
		t.Errorf("extractDescription() = %q, want valid UTF-8", desc)
	}
	if got := utf8.RuneCountInString(strings.TrimSuffix(desc, "...")); got != 200 {
		t.Errorf("description rune count = %d, want 200", got)
	}
}

// PDF/Wordのプレースホルダ抽出を検証
func TestBinaryExtractors(t *testing.T) {
	pdf, err := (&PDFExtractor{}).Extract("report.pdf", []byte{0x25, 0x50})
	if err != nil {
		t.Fatalf("PDFExtractor.Extract() error = %v", err)
	}
	if !strings.Contains(pdf.Title, "report.pdf") {
		t.Errorf("pdf.Title = %q, want filename included", pdf.Title)
	}

	word, err := (&WordExtractor{}).Extract("memo.docx", []byte{0x50, 0x4b})
	if err != nil {
		t.Fatalf("WordExtractor.Extract() error = %v", err)
	}
	if !strings.Contains(word.Content, "memo.docx") {
		t.Errorf("word.Content = %q, want filename included", word.Content)
	}
}

// --- Service.Upload ---

// テキストアップロードが公開済み記事として保存されることを検証
func TestService_Upload_TextFile(t *testing.T) {
	repo := &mockArticleRepo{}
	svc := newTestService(repo)

	text := "Weekly Tech Roundup Edition\n\nThis week brought several interesting developments, all covered below.\n\nCloud News\nProviders released new regions."
	article, err := svc.Upload(context.Background(), UploadInput{
		Filename: "roundup.txt",
		MIMEType: "text/plain",
		Data:     []byte(text),
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if article.Status != model.StatusPublished {
		t.Errorf("article.Status = %q, want published", article.Status)
	}
	if article.PublishedAt == nil {
		t.Error("expected published_at to be set")
	}
	if article.Title != "Weekly Tech Roundup Edition" {
		t.Errorf("article.Title = %q, want extracted title", article.Title)
	}
	if article.AuthorID != "admin" {
		t.Errorf("article.AuthorID = %q, want admin default", article.AuthorID)
	}
	if len(article.Tags) != 2 || article.Tags[0] != "uploaded" || article.Tags[1] != "file-import" {
		t.Errorf("article.Tags = %v, want [uploaded file-import]", article.Tags)
	}
	if article.ReadTime < 1 {
		t.Errorf("article.ReadTime = %d, want >= 1", article.ReadTime)
	}
	if repo.created == nil {
		t.Fatal("expected article to be persisted")
	}
}

// 明示的なタイトルとauthorIdが優先されることを検証
func TestService_Upload_ExplicitFields(t *testing.T) {
	svc := newTestService(&mockArticleRepo{})

	article, err := svc.Upload(context.Background(), UploadInput{
		Filename: "notes.txt",
		MIMEType: "text/plain",
		Data:     []byte("A decent line of body text, for the article content."),
		Title:    "Chosen Title",
		AuthorID: "editor-7",
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if article.Title != "Chosen Title" {
		t.Errorf("article.Title = %q, want %q", article.Title, "Chosen Title")
	}
	if article.AuthorID != "editor-7" {
		t.Errorf("article.AuthorID = %q, want %q", article.AuthorID, "editor-7")
	}
}

// 許可外のMIMEタイプが検出種別入りのエラーで拒否されることを検証
func TestService_Upload_RejectsUnsupportedType(t *testing.T) {
	svc := newTestService(&mockArticleRepo{})

	_, err := svc.Upload(context.Background(), UploadInput{
		Filename: "archive.zip",
		MIMEType: "application/zip",
		Data:     []byte{0x50, 0x4b, 0x03, 0x04},
	})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeUnsupportedFileType {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeUnsupportedFileType)
	}
	if !strings.Contains(apiErr.Message, "Unknown File Type") {
		t.Errorf("message = %q, want detected type description", apiErr.Message)
	}
}

// 空ファイルがバリデーションエラーになることを検証
func TestService_Upload_EmptyFile(t *testing.T) {
	svc := newTestService(&mockArticleRepo{})

	_, err := svc.Upload(context.Background(), UploadInput{
		Filename: "empty.txt",
		MIMEType: "text/plain",
	})
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.Code != model.ErrCodeValidation {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeValidation)
	}
}

// 埋め込まれたscriptタグが保存前に除去されることを検証
func TestService_Upload_SanitizesContent(t *testing.T) {
	repo := &mockArticleRepo{}
	svc := newTestService(repo)

	text := "A Title Line For The Upload\n\nSafe paragraph text, which stays.\n<script>alert('xss')</script>"
	_, err := svc.Upload(context.Background(), UploadInput{
		Filename: "sneaky.txt",
		MIMEType: "text/plain",
		Data:     []byte(text),
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if strings.Contains(repo.created.Content, "<script") {
		t.Errorf("stored content contains script tag: %q", repo.created.Content)
	}
}

// PDFアップロードがプレースホルダ記事になることを検証
func TestService_Upload_PDFPlaceholder(t *testing.T) {
	svc := newTestService(&mockArticleRepo{})

	article, err := svc.Upload(context.Background(), UploadInput{
		Filename: "whitepaper.pdf",
		MIMEType: "application/pdf",
		Data:     []byte("%PDF-1.7"),
	})
	if err != nil {
		t.Fatalf("Upload() error = %v", err)
	}
	if !strings.Contains(article.Title, "whitepaper.pdf") {
		t.Errorf("article.Title = %q, want filename included", article.Title)
	}
}
