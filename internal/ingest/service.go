package ingest

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/hitoshi/newsdesk/internal/content"
	"github.com/hitoshi/newsdesk/internal/metrics"
	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/security"
)

// uploadTags はファイル取り込みで作成された記事に付与されるタグ。
var uploadTags = []string{"uploaded", "file-import"}

// UploadInput はファイルアップロードの入力。
type UploadInput struct {
	Filename string
	MIMEType string
	Data     []byte
	Title    string // 省略時は抽出結果またはファイル名から決定
	AuthorID string // 省略時は "admin"
}

// Service はアップロードファイルの記事化を行う。
type Service struct {
	articles  *content.ArticleService
	sanitizer security.ContentSanitizerService
	logger    *slog.Logger
	metrics   metrics.MetricsCollector
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(articles *content.ArticleService, sanitizer security.ContentSanitizerService, logger *slog.Logger, collector metrics.MetricsCollector) *Service {
	return &Service{
		articles:  articles,
		sanitizer: sanitizer,
		logger:    logger,
		metrics:   collector,
	}
}

// Upload はファイルを検証・抽出し、公開済み記事として保存する。
// 許可外のMIMEタイプは検出した種別の説明を含むエラーで拒否する。
func (s *Service) Upload(ctx context.Context, input UploadInput) (*model.Article, error) {
	if len(input.Data) == 0 {
		return nil, model.NewValidationError("No file provided")
	}
	if !AllowedType(input.MIMEType) {
		s.metrics.RecordUpload("rejected")
		return nil, model.NewUnsupportedFileTypeError(FileTypeDescription(input.MIMEType))
	}

	extractor := extractorFor(input.MIMEType)
	extracted, err := extractor.Extract(input.Filename, input.Data)
	if err != nil {
		s.metrics.RecordUpload("rejected")
		return nil, fmt.Errorf("ファイルの抽出に失敗しました: %w", err)
	}

	title := input.Title
	if title == "" {
		title = extracted.Title
	}
	if title == "" {
		title = fmt.Sprintf("Uploaded Newsletter - %s", input.Filename)
	}
	authorID := input.AuthorID
	if authorID == "" {
		authorID = "admin"
	}

	// 外部由来のコンテンツは保存前にサニタイズする
	body := s.sanitizer.Sanitize(extracted.Content)

	article, err := s.articles.Create(ctx, content.CreateArticleInput{
		Title:       title,
		Description: extracted.Description,
		Content:     body,
		Excerpt:     extracted.Excerpt,
		Status:      model.StatusPublished,
		AuthorID:    authorID,
		Tags:        uploadTags,
		ReadTime:    estimateReadTime(body),
		IsPremium:   false,
	})
	if err != nil {
		s.metrics.RecordUpload("rejected")
		return nil, err
	}

	s.logger.Info("アップロードファイルから記事を作成しました",
		slog.String("filename", input.Filename),
		slog.String("mime_type", input.MIMEType),
		slog.Int64("article_id", article.ID),
	)
	s.metrics.RecordUpload("success")
	return article, nil
}

// estimateReadTime は文字数ベースの読了時間の概算を返す。1000文字/分、最低1分。
func estimateReadTime(body string) int {
	minutes := (len(body) + 999) / 1000
	if minutes < 1 {
		return 1
	}
	return minutes
}
