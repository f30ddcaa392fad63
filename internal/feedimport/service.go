package feedimport

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/hitoshi/newsdesk/internal/content"
	"github.com/hitoshi/newsdesk/internal/metrics"
	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/security"
)

// maxBodySize は取得するレスポンスボディの上限（5MB）。
const maxBodySize = 5 * 1024 * 1024

// importTags はフィードインポートで作成された下書きに付与されるタグ。
var importTags = []string{"imported", "feed"}

// ImportResult はフィードインポートの結果。
type ImportResult struct {
	FeedTitle string
	FeedURL   string
	Imported  int
	Skipped   int
	Articles  []*model.Article
}

// Service はフィードインポートのオーケストレーター。
// SSRF検証付きでフィードを取得し、各記事をサニタイズ済みの
// 下書きブログ記事として保存する。
type Service struct {
	articles  *content.ArticleService
	guard     security.SSRFGuardService
	sanitizer security.ContentSanitizerService
	logger    *slog.Logger
	metrics   metrics.MetricsCollector
	timeout   time.Duration
	maxItems  int
	parser    *gofeed.Parser

	// テスト用にHTTPクライアント生成を差し替え可能
	newClient func(timeout time.Duration) *http.Client
}

// NewService はServiceの新しいインスタンスを生成する。
func NewService(
	articles *content.ArticleService,
	guard security.SSRFGuardService,
	sanitizer security.ContentSanitizerService,
	logger *slog.Logger,
	collector metrics.MetricsCollector,
	timeout time.Duration,
	maxItems int,
) *Service {
	return &Service{
		articles:  articles,
		guard:     guard,
		sanitizer: sanitizer,
		logger:    logger,
		metrics:   collector,
		timeout:   timeout,
		maxItems:  maxItems,
		parser:    gofeed.NewParser(),
		newClient: guard.NewSafeClient,
	}
}

// Import は指定URLのフィードを取り込み、記事を下書きとして保存する。
// URLがHTMLページの場合はlink要素からフィードURLを自動検出する。
// 1回のインポートで取り込む記事数はmaxItemsで制限される。
func (s *Service) Import(ctx context.Context, rawURL, authorID string) (*ImportResult, error) {
	if err := s.guard.ValidateURL(rawURL); err != nil {
		return nil, model.NewInvalidFeedURLError(err.Error())
	}

	client := s.newClient(s.timeout)

	body, err := s.fetch(ctx, client, rawURL)
	if err != nil {
		return nil, model.NewExternalServiceError(fmt.Sprintf("Failed to fetch feed: %v", err))
	}

	feedURL := rawURL
	if !looksLikeFeed(body) {
		// HTMLページからフィードURLを自動検出する
		discovered := discoverFeedURL(body, rawURL)
		if discovered == "" {
			return nil, model.NewInvalidFeedURLError("no feed found at URL")
		}
		if err := s.guard.ValidateURL(discovered); err != nil {
			return nil, model.NewInvalidFeedURLError(err.Error())
		}
		s.logger.Info("フィードURLを自動検出しました",
			slog.String("page_url", rawURL),
			slog.String("feed_url", discovered),
		)
		feedURL = discovered
		body, err = s.fetch(ctx, client, discovered)
		if err != nil {
			return nil, model.NewExternalServiceError(fmt.Sprintf("Failed to fetch feed: %v", err))
		}
	}

	feed, err := s.parser.ParseString(string(body))
	if err != nil {
		return nil, model.NewInvalidFeedURLError(fmt.Sprintf("failed to parse feed: %v", err))
	}

	result := &ImportResult{
		FeedTitle: feed.Title,
		FeedURL:   feedURL,
	}

	items := feed.Items
	if s.maxItems > 0 && len(items) > s.maxItems {
		items = items[:s.maxItems]
	}

	for _, item := range items {
		article, err := s.importItem(ctx, item, authorID)
		if err != nil {
			// 個々の記事の失敗はスキップとして扱い、残りの取り込みを続ける
			s.logger.Warn("フィード記事の取り込みに失敗しました",
				slog.String("item_title", item.Title),
				slog.String("error", err.Error()),
			)
			result.Skipped++
			continue
		}
		result.Articles = append(result.Articles, article)
		result.Imported++
	}

	s.logger.Info("フィードインポートが完了しました",
		slog.String("feed_url", feedURL),
		slog.Int("imported", result.Imported),
		slog.Int("skipped", result.Skipped),
	)
	s.metrics.RecordFeedImport(result.Imported)
	return result, nil
}

// importItem はフィード記事1件を下書きブログ記事として保存する。
func (s *Service) importItem(ctx context.Context, item *gofeed.Item, authorID string) (*model.Article, error) {
	if item.Title == "" {
		return nil, fmt.Errorf("item has no title")
	}

	raw := item.Content
	if raw == "" {
		raw = item.Description
	}
	if raw == "" {
		return nil, fmt.Errorf("item has no content")
	}

	body := s.sanitizer.Sanitize(raw)
	return s.articles.Create(ctx, content.CreateArticleInput{
		Title:    item.Title,
		Content:  body,
		Status:   model.StatusDraft,
		AuthorID: authorID,
		Tags:     importTags,
	})
}

// fetch はURLからレスポンスボディを取得する。ボディは上限サイズまでで打ち切る。
func (s *Service) fetch(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗しました: %w", err)
	}
	req.Header.Set("User-Agent", "Newsdesk/1.0 Feed Importer")

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("レスポンスボディの読み取りに失敗しました: %w", err)
	}
	return body, nil
}
