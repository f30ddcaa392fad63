package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/newsdesk/internal/middleware"
	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/repository"
)

// BioPageHandler は紹介ページのHTTPハンドラー。
type BioPageHandler struct {
	repo repository.BioPageRepository
}

// NewBioPageHandler はBioPageHandlerを生成する。
func NewBioPageHandler(repo repository.BioPageRepository) *BioPageHandler {
	return &BioPageHandler{repo: repo}
}

// bioPageRequest は紹介ページの作成リクエストのボディ。
type bioPageRequest struct {
	Title        string            `json:"title"`
	Slug         string            `json:"slug"`
	Content      string            `json:"content"`
	ProfileImage string            `json:"profileImage"`
	SocialLinks  map[string]string `json:"socialLinks"`
	IsActive     *bool             `json:"isActive"`
}

// bioPageResponse は紹介ページのAPIレスポンス。
type bioPageResponse struct {
	ID           int64             `json:"id"`
	Title        string            `json:"title"`
	Slug         string            `json:"slug"`
	Content      string            `json:"content"`
	ProfileImage string            `json:"profileImage,omitempty"`
	SocialLinks  map[string]string `json:"socialLinks"`
	IsActive     bool              `json:"isActive"`
	ViewCount    int               `json:"viewCount"`
	CreatedAt    time.Time         `json:"createdAt"`
	UpdatedAt    time.Time         `json:"updatedAt"`
}

// List は紹介ページの一覧を返す。
// GET /api/bio
func (h *BioPageHandler) List(w http.ResponseWriter, r *http.Request) {
	pages, err := h.repo.List(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]bioPageResponse, 0, len(pages))
	for _, p := range pages {
		if !p.IsActive {
			continue
		}
		results = append(results, toBioPageResponse(p))
	}

	writeSuccess(w, http.StatusOK, results)
}

// Get はスラッグで紹介ページを取得する。無効化されたページは404。
// GET /api/bio/{slug}
func (h *BioPageHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	page, err := h.repo.FindBySlug(r.Context(), slug)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if page == nil || !page.IsActive {
		middleware.WriteAPIError(w, model.NewNotFoundError("Bio page"))
		return
	}

	writeSuccess(w, http.StatusOK, toBioPageResponse(page))
}

// Create は紹介ページを作成する。
// POST /api/admin/bio
func (h *BioPageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req bioPageRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	if req.Title == "" {
		middleware.WriteAPIError(w, model.NewValidationError("Title is required"))
		return
	}
	if req.Slug == "" {
		middleware.WriteAPIError(w, model.NewValidationError("Slug is required"))
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	links := req.SocialLinks
	if links == nil {
		links = map[string]string{}
	}
	page := &model.BioPage{
		Title:        req.Title,
		Slug:         req.Slug,
		Content:      req.Content,
		ProfileImage: req.ProfileImage,
		SocialLinks:  links,
		IsActive:     isActive,
	}

	if err := h.repo.Create(r.Context(), page); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, toBioPageResponse(page))
}

// Delete は紹介ページを削除する。
// DELETE /api/admin/bio/{id}
func (h *BioPageHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// toBioPageResponse はmodel.BioPageからAPIレスポンスに変換する。
func toBioPageResponse(p *model.BioPage) bioPageResponse {
	return bioPageResponse{
		ID:           p.ID,
		Title:        p.Title,
		Slug:         p.Slug,
		Content:      p.Content,
		ProfileImage: p.ProfileImage,
		SocialLinks:  p.SocialLinks,
		IsActive:     p.IsActive,
		ViewCount:    p.ViewCount,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}
}
