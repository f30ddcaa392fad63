package handler

import (
	"net/http"
	"time"

	"github.com/hitoshi/newsdesk/internal/middleware"
	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/repository"
)

// TestimonialHandler は推薦文のHTTPハンドラー。
type TestimonialHandler struct {
	repo repository.TestimonialRepository
}

// NewTestimonialHandler はTestimonialHandlerを生成する。
func NewTestimonialHandler(repo repository.TestimonialRepository) *TestimonialHandler {
	return &TestimonialHandler{repo: repo}
}

// testimonialRequest は推薦文の作成リクエストのボディ。
type testimonialRequest struct {
	Name       string `json:"name"`
	Title      string `json:"title"`
	Company    string `json:"company"`
	Content    string `json:"content"`
	Avatar     string `json:"avatar"`
	Rating     int    `json:"rating"`
	IsActive   *bool  `json:"isActive"`
	IsFeatured bool   `json:"isFeatured"`
}

// testimonialResponse は推薦文のAPIレスポンス。
type testimonialResponse struct {
	ID         int64     `json:"id"`
	Name       string    `json:"name"`
	Title      string    `json:"title,omitempty"`
	Company    string    `json:"company,omitempty"`
	Content    string    `json:"content"`
	Avatar     string    `json:"avatar,omitempty"`
	Rating     int       `json:"rating,omitempty"`
	IsActive   bool      `json:"isActive"`
	IsFeatured bool      `json:"isFeatured"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// List は有効な推薦文の一覧を返す。featured=trueで注目のみに絞り込む。
// GET /api/testimonials?featured=true
func (h *TestimonialHandler) List(w http.ResponseWriter, r *http.Request) {
	featuredOnly := r.URL.Query().Get("featured") == "true"

	testimonials, err := h.repo.List(r.Context(), featuredOnly)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]testimonialResponse, len(testimonials))
	for i, t := range testimonials {
		results[i] = toTestimonialResponse(t)
	}

	writeSuccess(w, http.StatusOK, results)
}

// Create は推薦文を作成する。
// POST /api/admin/testimonials
func (h *TestimonialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req testimonialRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	if req.Name == "" {
		middleware.WriteAPIError(w, model.NewValidationError("Name is required"))
		return
	}
	if req.Content == "" {
		middleware.WriteAPIError(w, model.NewValidationError("Content is required"))
		return
	}
	if req.Rating != 0 && (req.Rating < 1 || req.Rating > 5) {
		middleware.WriteAPIError(w, model.NewValidationError("Rating must be between 1 and 5"))
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	testimonial := &model.Testimonial{
		Name:       req.Name,
		Title:      req.Title,
		Company:    req.Company,
		Content:    req.Content,
		Avatar:     req.Avatar,
		Rating:     req.Rating,
		IsActive:   isActive,
		IsFeatured: req.IsFeatured,
	}

	if err := h.repo.Create(r.Context(), testimonial); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, toTestimonialResponse(testimonial))
}

// Delete は推薦文を削除する。
// DELETE /api/admin/testimonials/{id}
func (h *TestimonialHandler) Delete(w http.ResponseWriter, r *http.Request) {
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

// toTestimonialResponse はmodel.TestimonialからAPIレスポンスに変換する。
func toTestimonialResponse(t *model.Testimonial) testimonialResponse {
	return testimonialResponse{
		ID:         t.ID,
		Name:       t.Name,
		Title:      t.Title,
		Company:    t.Company,
		Content:    t.Content,
		Avatar:     t.Avatar,
		Rating:     t.Rating,
		IsActive:   t.IsActive,
		IsFeatured: t.IsFeatured,
		CreatedAt:  t.CreatedAt,
		UpdatedAt:  t.UpdatedAt,
	}
}
