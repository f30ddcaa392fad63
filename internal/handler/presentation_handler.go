package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/newsdesk/internal/content"
	"github.com/hitoshi/newsdesk/internal/middleware"
	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/repository"
)

// PresentationHandler はプレゼン資料のHTTPハンドラー。
type PresentationHandler struct {
	repo repository.PresentationRepository
	now  func() time.Time
}

// NewPresentationHandler はPresentationHandlerを生成する。
func NewPresentationHandler(repo repository.PresentationRepository) *PresentationHandler {
	return &PresentationHandler{
		repo: repo,
		now:  time.Now,
	}
}

// presentationRequest はプレゼン資料の作成リクエストのボディ。
type presentationRequest struct {
	Title        string   `json:"title"`
	Slug         string   `json:"slug"`
	Description  string   `json:"description"`
	Content      string   `json:"content"`
	ThumbnailURL string   `json:"thumbnailUrl"`
	Status       string   `json:"status"`
	Tags         []string `json:"tags"`
	Duration     int      `json:"duration"`
	IsPremium    bool     `json:"isPremium"`
}

// presentationResponse はプレゼン資料のAPIレスポンス。
type presentationResponse struct {
	ID           int64      `json:"id"`
	Title        string     `json:"title"`
	Slug         string     `json:"slug"`
	Description  string     `json:"description"`
	Content      string     `json:"content,omitempty"`
	ThumbnailURL string     `json:"thumbnailUrl,omitempty"`
	Status       string     `json:"status"`
	PublishedAt  *time.Time `json:"publishedAt,omitempty"`
	AuthorID     string     `json:"authorId"`
	Tags         []string   `json:"tags"`
	Duration     int        `json:"duration"`
	IsPremium    bool       `json:"isPremium"`
	ViewCount    int        `json:"viewCount"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
}

// List は公開済みプレゼン資料の一覧を返す。
// GET /api/presentations
func (h *PresentationHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r)

	presentations, err := h.repo.List(r.Context(), true, limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toPresentationResponses(presentations, false))
}

// Get はスラッグでプレゼン資料を取得する。未公開は404。
// GET /api/presentations/{slug}
func (h *PresentationHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	p, err := h.repo.FindBySlug(r.Context(), slug)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if p == nil || p.Status != model.StatusPublished {
		middleware.WriteAPIError(w, model.NewNotFoundError("Presentation"))
		return
	}

	writeSuccess(w, http.StatusOK, toPresentationResponse(p, true))
}

// AdminList は下書きを含む全プレゼン資料の一覧を返す。
// GET /api/admin/presentations
func (h *PresentationHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r)

	presentations, err := h.repo.List(r.Context(), false, limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toPresentationResponses(presentations, false))
}

// Create はプレゼン資料を作成する。
// POST /api/admin/presentations
func (h *PresentationHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req presentationRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	if req.Title == "" {
		middleware.WriteAPIError(w, model.NewValidationError("Title is required"))
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())
	now := h.now()

	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	p := &model.Presentation{
		Title:        req.Title,
		Slug:         req.Slug,
		Description:  req.Description,
		Content:      req.Content,
		ThumbnailURL: req.ThumbnailURL,
		Status:       model.ContentStatus(req.Status),
		AuthorID:     userID,
		Tags:         tags,
		Duration:     req.Duration,
		IsPremium:    req.IsPremium,
	}
	if p.Status == "" {
		p.Status = model.StatusDraft
	}
	if p.Slug == "" {
		p.Slug = content.Slugify(p.Title, now)
	}
	if p.Status == model.StatusPublished {
		p.PublishedAt = &now
	}

	if err := h.repo.Create(r.Context(), p); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, toPresentationResponse(p, true))
}

// Delete はプレゼン資料を削除する。
// DELETE /api/admin/presentations/{id}
func (h *PresentationHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseIDParam(r)
	if apiErr != nil {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"id": id})
}

// toPresentationResponse はmodel.PresentationからAPIレスポンスに変換する。
// includeContentがfalseの場合はスライド本文を含めない。
func toPresentationResponse(p *model.Presentation, includeContent bool) presentationResponse {
	resp := presentationResponse{
		ID:           p.ID,
		Title:        p.Title,
		Slug:         p.Slug,
		Description:  p.Description,
		ThumbnailURL: p.ThumbnailURL,
		Status:       string(p.Status),
		PublishedAt:  p.PublishedAt,
		AuthorID:     p.AuthorID,
		Tags:         p.Tags,
		Duration:     p.Duration,
		IsPremium:    p.IsPremium,
		ViewCount:    p.ViewCount,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
	if includeContent {
		resp.Content = p.Content
	}
	return resp
}

// toPresentationResponses はプレゼン資料スライスをAPIレスポンスに変換する。
func toPresentationResponses(presentations []*model.Presentation, includeContent bool) []presentationResponse {
	results := make([]presentationResponse, len(presentations))
	for i, p := range presentations {
		results[i] = toPresentationResponse(p, includeContent)
	}
	return results
}
