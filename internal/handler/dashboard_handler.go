package handler

import (
	"context"
	"net/http"
	"strconv"
	"sync"

	"github.com/hitoshi/newsdesk/internal/middleware"
	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/repository"
)

// overviewRecentLimit は管理ダッシュボード初期表示に含める直近件数。
const overviewRecentLimit = 5

// DashboardHandler は管理ダッシュボードのHTTPハンドラー。
type DashboardHandler struct {
	newsletters NewsletterLister
	products    repository.AIProductRepository
	users       repository.UserRepository
	history     repository.ReadingHistoryRepository
}

// NewsletterLister はダッシュボードが参照するニュースレター一覧取得の窓口。
type NewsletterLister interface {
	List(ctx context.Context, includeAll bool, limit, offset int) ([]*model.Article, error)
}

// NewDashboardHandler はDashboardHandlerを生成する。
func NewDashboardHandler(
	newsletters NewsletterLister,
	products repository.AIProductRepository,
	users repository.UserRepository,
	history repository.ReadingHistoryRepository,
) *DashboardHandler {
	return &DashboardHandler{
		newsletters: newsletters,
		products:    products,
		users:       users,
		history:     history,
	}
}

// overviewResponse はダッシュボード初期表示データ。
type overviewResponse struct {
	RecentNewsletters []articleResponse `json:"recentNewsletters"`
	Products          []productResponse `json:"products"`
	Admins            []userResponse    `json:"admins"`
}

// Overview はダッシュボード初期表示に必要なデータをまとめて返す。
// 3つの読み取りは独立しているため並行に実行する。
// GET /api/admin/overview
func (h *DashboardHandler) Overview(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		wg       sync.WaitGroup
		articles []*model.Article
		products []*model.AIProduct
		admins   []*model.User

		articlesErr error
		productsErr error
		adminsErr   error
	)

	wg.Add(3)
	go func() {
		defer wg.Done()
		articles, articlesErr = h.newsletters.List(ctx, true, overviewRecentLimit, 0)
	}()
	go func() {
		defer wg.Done()
		products, productsErr = h.products.List(ctx, overviewRecentLimit, 0)
	}()
	go func() {
		defer wg.Done()
		admins, adminsErr = h.users.ListAdmins(ctx)
	}()
	wg.Wait()

	for _, err := range []error{articlesErr, productsErr, adminsErr} {
		if err != nil {
			handleServiceError(w, err)
			return
		}
	}

	resp := overviewResponse{
		RecentNewsletters: toArticleResponses(articles, false),
		Products:          toProductResponses(products),
		Admins:            make([]userResponse, len(admins)),
	}
	for i, u := range admins {
		resp.Admins[i] = toUserResponse(u)
	}

	writeSuccess(w, http.StatusOK, resp)
}

// contentStatsResponse はコンテンツ単位の閲覧統計レスポンス。
type contentStatsResponse struct {
	ContentType    string  `json:"contentType"`
	ContentID      int64   `json:"contentId"`
	TotalReads     int     `json:"totalReads"`
	AvgReadSeconds float64 `json:"avgReadSeconds"`
}

// ContentStats は指定コンテンツの閲覧統計を返す。
// GET /api/admin/content-stats?contentType=newsletter&contentId=1
func (h *DashboardHandler) ContentStats(w http.ResponseWriter, r *http.Request) {
	contentType := r.URL.Query().Get("contentType")
	if contentType == "" {
		middleware.WriteAPIError(w, model.NewValidationError("contentType is required"))
		return
	}
	contentID, err := strconv.ParseInt(r.URL.Query().Get("contentId"), 10, 64)
	if err != nil || contentID <= 0 {
		middleware.WriteAPIError(w, model.NewValidationError("contentId is required"))
		return
	}

	stats, err := h.history.StatsByContent(r.Context(), model.ContentType(contentType), contentID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, contentStatsResponse{
		ContentType:    contentType,
		ContentID:      contentID,
		TotalReads:     stats.TotalReads,
		AvgReadSeconds: stats.AvgReadSeconds,
	})
}
