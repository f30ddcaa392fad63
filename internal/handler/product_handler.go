package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/newsdesk/internal/middleware"
	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/repository"
)

// ProductHandler はAIプロダクトカタログのHTTPハンドラー。
type ProductHandler struct {
	repo repository.AIProductRepository
}

// NewProductHandler はProductHandlerを生成する。
func NewProductHandler(repo repository.AIProductRepository) *ProductHandler {
	return &ProductHandler{repo: repo}
}

// productRequest はプロダクトの作成・更新リクエストのボディ。
type productRequest struct {
	Name            string   `json:"name"`
	Slug            string   `json:"slug"`
	Description     string   `json:"description"`
	LongDescription string   `json:"longDescription"`
	Category        string   `json:"category"`
	Price           string   `json:"price"`
	Currency        string   `json:"currency"`
	ImageURL        string   `json:"imageUrl"`
	DemoURL         string   `json:"demoUrl"`
	GithubURL       string   `json:"githubUrl"`
	WebsiteURL      string   `json:"websiteUrl"`
	Features        []string `json:"features"`
	Tags            []string `json:"tags"`
	IsActive        *bool    `json:"isActive"`
	IsFeatured      bool     `json:"isFeatured"`
}

// productResponse はプロダクトのAPIレスポンス。
type productResponse struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Slug            string    `json:"slug"`
	Description     string    `json:"description"`
	LongDescription string    `json:"longDescription,omitempty"`
	Category        string    `json:"category"`
	Price           string    `json:"price,omitempty"`
	Currency        string    `json:"currency,omitempty"`
	ImageURL        string    `json:"imageUrl,omitempty"`
	DemoURL         string    `json:"demoUrl,omitempty"`
	GithubURL       string    `json:"githubUrl,omitempty"`
	WebsiteURL      string    `json:"websiteUrl,omitempty"`
	Features        []string  `json:"features"`
	Tags            []string  `json:"tags"`
	IsActive        bool      `json:"isActive"`
	IsFeatured      bool      `json:"isFeatured"`
	ViewCount       int       `json:"viewCount"`
	CreatedAt       time.Time `json:"createdAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

// List は有効なプロダクト一覧を返す。
// GET /api/products?limit=20&offset=0
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r)

	products, err := h.repo.List(r.Context(), limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toProductResponses(products))
}

// ListFeatured は注目プロダクトの一覧を返す。
// GET /api/products/featured
func (h *ProductHandler) ListFeatured(w http.ResponseWriter, r *http.Request) {
	products, err := h.repo.ListFeatured(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toProductResponses(products))
}

// Get はスラッグでプロダクトを取得し、閲覧数を加算する。
// GET /api/products/{slug}
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	product, err := h.repo.FindBySlug(r.Context(), slug)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if product == nil || !product.IsActive {
		middleware.WriteAPIError(w, model.NewNotFoundError("Product"))
		return
	}

	if err := h.repo.IncrementViewCount(r.Context(), product.ID); err != nil {
		handleServiceError(w, err)
		return
	}
	product.ViewCount++

	writeSuccess(w, http.StatusOK, toProductResponse(product))
}

// Create はプロダクトを作成する。
// POST /api/admin/products
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	if req.Name == "" {
		middleware.WriteAPIError(w, model.NewValidationError("Name is required"))
		return
	}
	if req.Slug == "" {
		middleware.WriteAPIError(w, model.NewValidationError("Slug is required"))
		return
	}

	product := productFromRequest(&req)
	if err := h.repo.Create(r.Context(), product); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, toProductResponse(product))
}

// Update はプロダクトを更新する。
// PUT /api/admin/products/{id}
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseIDParam(r)
	if apiErr != nil {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	existing, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if existing == nil {
		middleware.WriteAPIError(w, model.NewNotFoundError("Product"))
		return
	}

	var req productRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	product := productFromRequest(&req)
	product.ID = id
	product.ViewCount = existing.ViewCount
	if err := h.repo.Update(r.Context(), product); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toProductResponse(product))
}

// Delete はプロダクトを削除する。
// DELETE /api/admin/products/{id}
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseIDParam(r)
	if apiErr != nil {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	existing, err := h.repo.FindByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if existing == nil {
		middleware.WriteAPIError(w, model.NewNotFoundError("Product"))
		return
	}

	if err := h.repo.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"id": id})
}

// --- ヘルパー関数 ---

// productFromRequest はリクエストボディからmodel.AIProductを組み立てる。
func productFromRequest(req *productRequest) *model.AIProduct {
	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}
	features := req.Features
	if features == nil {
		features = []string{}
	}
	tags := req.Tags
	if tags == nil {
		tags = []string{}
	}
	return &model.AIProduct{
		Name:            req.Name,
		Slug:            req.Slug,
		Description:     req.Description,
		LongDescription: req.LongDescription,
		Category:        req.Category,
		Price:           req.Price,
		Currency:        req.Currency,
		ImageURL:        req.ImageURL,
		DemoURL:         req.DemoURL,
		GithubURL:       req.GithubURL,
		WebsiteURL:      req.WebsiteURL,
		Features:        features,
		Tags:            tags,
		IsActive:        isActive,
		IsFeatured:      req.IsFeatured,
	}
}

// toProductResponse はmodel.AIProductからAPIレスポンスに変換する。
func toProductResponse(p *model.AIProduct) productResponse {
	return productResponse{
		ID:              p.ID,
		Name:            p.Name,
		Slug:            p.Slug,
		Description:     p.Description,
		LongDescription: p.LongDescription,
		Category:        p.Category,
		Price:           p.Price,
		Currency:        p.Currency,
		ImageURL:        p.ImageURL,
		DemoURL:         p.DemoURL,
		GithubURL:       p.GithubURL,
		WebsiteURL:      p.WebsiteURL,
		Features:        p.Features,
		Tags:            p.Tags,
		IsActive:        p.IsActive,
		IsFeatured:      p.IsFeatured,
		ViewCount:       p.ViewCount,
		CreatedAt:       p.CreatedAt,
		UpdatedAt:       p.UpdatedAt,
	}
}

// toProductResponses はプロダクトスライスをAPIレスポンスに変換する。
func toProductResponses(products []*model.AIProduct) []productResponse {
	results := make([]productResponse, len(products))
	for i, p := range products {
		results[i] = toProductResponse(p)
	}
	return results
}
