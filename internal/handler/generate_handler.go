package handler

import (
	"context"
	"io"
	"net/http"

	"github.com/hitoshi/newsdesk/internal/ai"
	"github.com/hitoshi/newsdesk/internal/content"
	"github.com/hitoshi/newsdesk/internal/feedimport"
	"github.com/hitoshi/newsdesk/internal/ingest"
	"github.com/hitoshi/newsdesk/internal/middleware"
	"github.com/hitoshi/newsdesk/internal/model"
)

// maxUploadMemory はmultipartフォーム解析時のメモリ上限（16MB）。
const maxUploadMemory = 16 << 20

// AIServiceInterface はAI生成ハンドラーが必要とするサービスインターフェース。
type AIServiceInterface interface {
	GenerateNewsletter(ctx context.Context, prompt, customTitle string, includeMedia bool) (*model.ArticleDraft, error)
	EnhancePrompt(ctx context.Context, prompt, contentType string) (*ai.EnhancedPrompt, error)
}

// UploadServiceInterface はファイルアップロードのサービスインターフェース。
type UploadServiceInterface interface {
	Upload(ctx context.Context, input ingest.UploadInput) (*model.Article, error)
}

// FeedImportServiceInterface はフィードインポートのサービスインターフェース。
type FeedImportServiceInterface interface {
	Import(ctx context.Context, rawURL, authorID string) (*feedimport.ImportResult, error)
}

// GenerateHandler はAI生成・アップロード・フィードインポートのHTTPハンドラー。
// いずれも新しい記事を作り出す管理者向け操作をまとめる。
type GenerateHandler struct {
	aiService   AIServiceInterface
	newsletters ArticleServiceInterface
	uploads     UploadServiceInterface
	feedImports FeedImportServiceInterface
}

// NewGenerateHandler はGenerateHandlerを生成する。
func NewGenerateHandler(
	aiService AIServiceInterface,
	newsletters ArticleServiceInterface,
	uploads UploadServiceInterface,
	feedImports FeedImportServiceInterface,
) *GenerateHandler {
	return &GenerateHandler{
		aiService:   aiService,
		newsletters: newsletters,
		uploads:     uploads,
		feedImports: feedImports,
	}
}

// generateRequest はAI生成リクエストのボディ。
// Contentが指定されている場合はAI生成をスキップし、本文をそのまま保存する。
type generateRequest struct {
	Prompt       string `json:"prompt"`
	Title        string `json:"title"`
	Content      string `json:"content"`
	Publish      bool   `json:"publish"`
	IncludeMedia bool   `json:"includeMedia"`
}

// draftResponse はAI生成プレビューのAPIレスポンス。
type draftResponse struct {
	Title       string   `json:"title"`
	Content     string   `json:"content"`
	Description string   `json:"description"`
	Excerpt     string   `json:"excerpt"`
	Tags        []string `json:"tags"`
	ReadTime    int      `json:"readTime"`
	Images      []string `json:"images,omitempty"`
	Prompt      string   `json:"prompt,omitempty"`
}

// GenerateNewsletter はAIによるニュースレター生成を処理する。
// publishがfalseの場合は生成結果をドラフトとして返すのみで永続化しない。
// POST /api/admin/newsletters/generate
func (h *GenerateHandler) GenerateNewsletter(w http.ResponseWriter, r *http.Request) {
	var req generateRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())

	// 本文が与えられている場合はAI生成せずそのまま保存する
	if req.Content != "" {
		title := req.Title
		if title == "" {
			title = req.Prompt
		}
		status := model.StatusDraft
		if req.Publish {
			status = model.StatusPublished
		}
		article, err := h.newsletters.Create(r.Context(), content.CreateArticleInput{
			Title:    title,
			Content:  req.Content,
			Status:   status,
			AuthorID: userID,
		})
		if err != nil {
			handleServiceError(w, err)
			return
		}
		writeSuccess(w, http.StatusCreated, toArticleResponse(article, false))
		return
	}

	if req.Prompt == "" {
		middleware.WriteAPIError(w, model.NewValidationError("Prompt is required"))
		return
	}

	draft, err := h.aiService.GenerateNewsletter(r.Context(), req.Prompt, req.Title, req.IncludeMedia)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	if !req.Publish {
		writeSuccess(w, http.StatusOK, toDraftResponse(draft))
		return
	}

	article, err := h.newsletters.Create(r.Context(), content.CreateArticleInput{
		Title:       draft.Title,
		Description: draft.Description,
		Content:     draft.Content,
		Excerpt:     draft.Excerpt,
		Status:      model.StatusPublished,
		AuthorID:    userID,
		Tags:        draft.Tags,
		ReadTime:    draft.ReadTime,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, toArticleResponse(article, false))
}

// enhancePromptRequest はプロンプト改善リクエストのボディ。
type enhancePromptRequest struct {
	Prompt      string `json:"prompt"`
	ContentType string `json:"contentType"`
}

// EnhancePrompt はプロンプト改善を処理する。
// POST /api/admin/ai/enhance-prompt
func (h *GenerateHandler) EnhancePrompt(w http.ResponseWriter, r *http.Request) {
	var req enhancePromptRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	if req.Prompt == "" {
		middleware.WriteAPIError(w, model.NewValidationError("Prompt is required"))
		return
	}

	contentType := req.ContentType
	if contentType == "" {
		contentType = "newsletter"
	}

	enhanced, err := h.aiService.EnhancePrompt(r.Context(), req.Prompt, contentType)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, enhanced)
}

// Upload はファイルアップロードによる記事作成を処理する。
// multipart/form-dataのfileフィールドを読み取り、公開済み記事として保存する。
// POST /api/admin/newsletters/upload
func (h *GenerateHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		middleware.WriteAPIError(w, model.NewValidationError("No file provided"))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		middleware.WriteAPIError(w, model.NewValidationError("No file provided"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	// authorIdフィールドが指定されていればそれを著者とし、なければセッションのユーザー。
	authorID := r.FormValue("authorId")
	if authorID == "" {
		authorID, _ = middleware.UserIDFromContext(r.Context())
	}

	article, err := h.uploads.Upload(r.Context(), ingest.UploadInput{
		Filename: header.Filename,
		MIMEType: header.Header.Get("Content-Type"),
		Data:     data,
		Title:    r.FormValue("title"),
		AuthorID: authorID,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, toArticleResponse(article, false))
}

// importFeedRequest はフィードインポートリクエストのボディ。
type importFeedRequest struct {
	URL string `json:"url"`
}

// importFeedResponse はフィードインポート結果のAPIレスポンス。
type importFeedResponse struct {
	FeedTitle string            `json:"feedTitle"`
	FeedURL   string            `json:"feedUrl"`
	Imported  int               `json:"imported"`
	Skipped   int               `json:"skipped"`
	Articles  []articleResponse `json:"articles"`
}

// ImportFeed はRSS/Atomフィードからのブログ記事取り込みを処理する。
// POST /api/admin/blog-posts/import-feed
func (h *GenerateHandler) ImportFeed(w http.ResponseWriter, r *http.Request) {
	var req importFeedRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	if req.URL == "" {
		middleware.WriteAPIError(w, model.NewValidationError("URL is required"))
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())

	result, err := h.feedImports.Import(r.Context(), req.URL, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, importFeedResponse{
		FeedTitle: result.FeedTitle,
		FeedURL:   result.FeedURL,
		Imported:  result.Imported,
		Skipped:   result.Skipped,
		Articles:  toArticleResponses(result.Articles, false),
	})
}

// toDraftResponse はmodel.ArticleDraftからAPIレスポンスに変換する。
func toDraftResponse(d *model.ArticleDraft) draftResponse {
	return draftResponse{
		Title:       d.Title,
		Content:     d.Content,
		Description: d.Description,
		Excerpt:     d.Excerpt,
		Tags:        d.Tags,
		ReadTime:    d.ReadTime,
		Images:      d.Images,
		Prompt:      d.Prompt,
	}
}
