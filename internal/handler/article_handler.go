package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hitoshi/newsdesk/internal/content"
	"github.com/hitoshi/newsdesk/internal/middleware"
	"github.com/hitoshi/newsdesk/internal/model"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

// ArticleServiceInterface は記事ハンドラーが必要とするサービスインターフェース。
type ArticleServiceInterface interface {
	List(ctx context.Context, includeAll bool, limit, offset int) ([]*model.Article, error)
	GetByID(ctx context.Context, id int64) (*model.Article, error)
	Create(ctx context.Context, input content.CreateArticleInput) (*model.Article, error)
	Update(ctx context.Context, id int64, input content.UpdateArticleInput) (*model.Article, error)
	Delete(ctx context.Context, id int64) error
	RecordView(ctx context.Context, slug, userID string) (*model.Article, error)
}

// TierFinder はユーザーのtierの取得に必要なインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type TierFinder interface {
	TierByUserID(ctx context.Context, userID string) (model.Tier, error)
}

// RoleFinder はユーザーのroleの取得に必要なインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type RoleFinder interface {
	RoleByUserID(ctx context.Context, userID string) (model.Role, error)
}

// ArticleHandler は記事（ニュースレター/ブログ記事）のHTTPハンドラー。
// ニュースレター用とブログ用で同一実装をサービス差し替えで共有する。
type ArticleHandler struct {
	service ArticleServiceInterface
	tiers   TierFinder
	roles   RoleFinder
}

// NewArticleHandler はArticleHandlerを生成する。
func NewArticleHandler(service ArticleServiceInterface, tiers TierFinder, roles RoleFinder) *ArticleHandler {
	return &ArticleHandler{
		service: service,
		tiers:   tiers,
		roles:   roles,
	}
}

// articleRequest は記事の作成・更新リクエストのボディ。
type articleRequest struct {
	Title         string   `json:"title"`
	Slug          string   `json:"slug"`
	Description   string   `json:"description"`
	Content       string   `json:"content"`
	Excerpt       string   `json:"excerpt"`
	FeaturedImage string   `json:"featuredImage"`
	Status        string   `json:"status"`
	Tags          []string `json:"tags"`
	ReadTime      int      `json:"readTime"`
	IsPremium     bool     `json:"isPremium"`
}

// articleResponse は記事のAPIレスポンス。
type articleResponse struct {
	ID            int64      `json:"id"`
	Title         string     `json:"title"`
	Slug          string     `json:"slug"`
	Description   string     `json:"description"`
	Content       string     `json:"content"`
	Excerpt       string     `json:"excerpt"`
	FeaturedImage string     `json:"featuredImage,omitempty"`
	Status        string     `json:"status"`
	PublishedAt   *time.Time `json:"publishedAt,omitempty"`
	AuthorID      string     `json:"authorId"`
	Tags          []string   `json:"tags"`
	ReadTime      int        `json:"readTime"`
	IsPremium     bool       `json:"isPremium"`
	PremiumLocked bool       `json:"premiumLocked,omitempty"`
	ViewCount     int        `json:"viewCount"`
	CreatedAt     time.Time  `json:"createdAt"`
	UpdatedAt     time.Time  `json:"updatedAt"`
}

// List は公開済み記事の一覧を返す。
// GET /api/newsletters?limit=20&offset=0
func (h *ArticleHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r)

	articles, err := h.service.List(r.Context(), false, limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toArticleResponses(articles, false))
}

// Get はスラッグで記事を取得し、閲覧数を加算する。
// 認証済みユーザーの場合は閲覧履歴にも追記する。
// プレミアム記事は無料プランには本文を返さない。
// GET /api/newsletters/{slug}
func (h *ArticleHandler) Get(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	userID, _ := middleware.UserIDFromContext(r.Context())

	article, err := h.service.RecordView(r.Context(), slug, userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	locked := !content.CanRead(h.viewerTier(r.Context(), userID), article)
	writeSuccess(w, http.StatusOK, toArticleResponse(article, locked))
}

// AdminList は記事一覧を返す。認証なしでも呼び出せるが、その場合は
// 公開APIと同様に公開済みの記事のみを返す。管理者が?all=trueを付けた
// 場合に限り、下書きとアーカイブを含む全記事を返す。
// GET /api/admin/newsletters?all=true
func (h *ArticleHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	limit, offset := paginationParams(r)

	includeAll := false
	if r.URL.Query().Get("all") == "true" {
		if userID, err := middleware.UserIDFromContext(r.Context()); err == nil {
			role, err := h.roles.RoleByUserID(r.Context(), userID)
			if err == nil && role.IsAdmin() {
				includeAll = true
			}
		}
	}

	articles, err := h.service.List(r.Context(), includeAll, limit, offset)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toArticleResponses(articles, false))
}

// AdminGet はIDで記事を取得する。下書きも対象。
// GET /api/admin/newsletters/{id}
func (h *ArticleHandler) AdminGet(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseIDParam(r)
	if apiErr != nil {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	article, err := h.service.GetByID(r.Context(), id)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toArticleResponse(article, false))
}

// Create は記事を作成する。
// POST /api/admin/newsletters
func (h *ArticleHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req articleRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	userID, _ := middleware.UserIDFromContext(r.Context())

	article, err := h.service.Create(r.Context(), content.CreateArticleInput{
		Title:         req.Title,
		Slug:          req.Slug,
		Description:   req.Description,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		FeaturedImage: req.FeaturedImage,
		Status:        model.ContentStatus(req.Status),
		AuthorID:      userID,
		Tags:          req.Tags,
		ReadTime:      req.ReadTime,
		IsPremium:     req.IsPremium,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, toArticleResponse(article, false))
}

// Update は記事を更新する。
// PUT /api/admin/newsletters/{id}
func (h *ArticleHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseIDParam(r)
	if apiErr != nil {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	var req articleRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	article, err := h.service.Update(r.Context(), id, content.UpdateArticleInput{
		Title:         req.Title,
		Slug:          req.Slug,
		Description:   req.Description,
		Content:       req.Content,
		Excerpt:       req.Excerpt,
		FeaturedImage: req.FeaturedImage,
		Status:        model.ContentStatus(req.Status),
		Tags:          req.Tags,
		ReadTime:      req.ReadTime,
		IsPremium:     req.IsPremium,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, toArticleResponse(article, false))
}

// Delete は記事を削除する。
// DELETE /api/admin/newsletters/{id}
func (h *ArticleHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, apiErr := parseIDParam(r)
	if apiErr != nil {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"id": id})
}

// viewerTier はリクエストユーザーのtierを返す。匿名の場合はfree扱い。
func (h *ArticleHandler) viewerTier(ctx context.Context, userID string) model.Tier {
	if userID == "" || h.tiers == nil {
		return model.TierFree
	}
	tier, err := h.tiers.TierByUserID(ctx, userID)
	if err != nil {
		return model.TierFree
	}
	return tier
}

// --- ヘルパー関数 ---

// paginationParams はlimit/offsetクエリパラメータを解析する。
func paginationParams(r *http.Request) (limit, offset int) {
	limit = defaultListLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			limit = n
		}
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}
	return limit, offset
}

// parseIDParam はURLのidパラメータを数値として解析する。
func parseIDParam(r *http.Request) (int64, *model.APIError) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, model.NewValidationError("Invalid ID")
	}
	return id, nil
}

// toArticleResponse はmodel.ArticleからAPIレスポンスに変換する。
// lockedがtrueの場合は本文を含めない。
func toArticleResponse(a *model.Article, locked bool) articleResponse {
	resp := articleResponse{
		ID:            a.ID,
		Title:         a.Title,
		Slug:          a.Slug,
		Description:   a.Description,
		Content:       a.Content,
		Excerpt:       a.Excerpt,
		FeaturedImage: a.FeaturedImage,
		Status:        string(a.Status),
		PublishedAt:   a.PublishedAt,
		AuthorID:      a.AuthorID,
		Tags:          a.Tags,
		ReadTime:      a.ReadTime,
		IsPremium:     a.IsPremium,
		ViewCount:     a.ViewCount,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
	if locked {
		resp.Content = ""
		resp.PremiumLocked = true
	}
	return resp
}

// toArticleResponses は記事スライスをAPIレスポンスに変換する。
// 一覧レスポンスは本文を含めない。
func toArticleResponses(articles []*model.Article, locked bool) []articleResponse {
	results := make([]articleResponse, len(articles))
	for i, a := range articles {
		results[i] = toArticleResponse(a, locked)
		results[i].Content = ""
	}
	return results
}
