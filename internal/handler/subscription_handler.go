package handler

import (
	"net/http"
	"time"

	"github.com/hitoshi/newsdesk/internal/middleware"
	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/repository"
)

// SubscriptionHandler はニュースレター購読と閲覧履歴のHTTPハンドラー。
// いずれも認証済みユーザー専用の操作を扱う。
type SubscriptionHandler struct {
	subscriptions repository.NewsletterSubscriptionRepository
	history       repository.ReadingHistoryRepository
}

// NewSubscriptionHandler はSubscriptionHandlerを生成する。
func NewSubscriptionHandler(
	subscriptions repository.NewsletterSubscriptionRepository,
	history repository.ReadingHistoryRepository,
) *SubscriptionHandler {
	return &SubscriptionHandler{
		subscriptions: subscriptions,
		history:       history,
	}
}

// subscriptionResponse は購読のAPIレスポンス。
type subscriptionResponse struct {
	ID           int64     `json:"id"`
	NewsletterID int64     `json:"newsletterId"`
	SubscribedAt time.Time `json:"subscribedAt"`
	IsActive     bool      `json:"isActive"`
}

// Subscribe はニュースレターを購読する。再購読は冪等に成功する。
// POST /api/newsletters/{id}/subscribe
func (h *SubscriptionHandler) Subscribe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteAPIError(w, model.NewUnauthenticatedError())
		return
	}

	newsletterID, apiErr := parseIDParam(r)
	if apiErr != nil {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	sub, err := h.subscriptions.Subscribe(r.Context(), userID, newsletterID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, toSubscriptionResponse(sub))
}

// Unsubscribe は購読を解除する。レコードは無効化のみで物理削除しない。
// DELETE /api/newsletters/{id}/subscribe
func (h *SubscriptionHandler) Unsubscribe(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteAPIError(w, model.NewUnauthenticatedError())
		return
	}

	newsletterID, apiErr := parseIDParam(r)
	if apiErr != nil {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	if err := h.subscriptions.Unsubscribe(r.Context(), userID, newsletterID); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, map[string]any{"newsletterId": newsletterID})
}

// ListSubscriptions はユーザーの有効な購読一覧を返す。
// GET /api/subscriptions
func (h *SubscriptionHandler) ListSubscriptions(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteAPIError(w, model.NewUnauthenticatedError())
		return
	}

	subs, err := h.subscriptions.ListByUserID(r.Context(), userID)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]subscriptionResponse, len(subs))
	for i, sub := range subs {
		results[i] = toSubscriptionResponse(sub)
	}

	writeSuccess(w, http.StatusOK, results)
}

// readingHistoryRequest は閲覧履歴の追記リクエストのボディ。
type readingHistoryRequest struct {
	ContentType string `json:"contentType"`
	ContentID   int64  `json:"contentId"`
	ReadSeconds int    `json:"readSeconds"`
}

// readingHistoryResponse は閲覧履歴のAPIレスポンス。
type readingHistoryResponse struct {
	ID          int64     `json:"id"`
	ContentType string    `json:"contentType"`
	ContentID   int64     `json:"contentId"`
	ReadAt      time.Time `json:"readAt"`
	ReadSeconds int       `json:"readSeconds"`
}

// AddReadingHistory は閲覧履歴を追記する。読了時間の報告に使用する。
// POST /api/reading-history
func (h *SubscriptionHandler) AddReadingHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteAPIError(w, model.NewUnauthenticatedError())
		return
	}

	var req readingHistoryRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	if req.ContentType == "" || req.ContentID <= 0 {
		middleware.WriteAPIError(w, model.NewValidationError("contentType and contentId are required"))
		return
	}
	if req.ReadSeconds < 0 {
		middleware.WriteAPIError(w, model.NewValidationError("readSeconds must not be negative"))
		return
	}

	entry := &model.ReadingHistory{
		UserID:      userID,
		ContentType: model.ContentType(req.ContentType),
		ContentID:   req.ContentID,
		ReadSeconds: req.ReadSeconds,
	}
	if err := h.history.Add(r.Context(), entry); err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusCreated, toReadingHistoryResponse(entry))
}

// ListReadingHistory はユーザーの閲覧履歴を新しい順に返す。
// GET /api/reading-history?limit=20
func (h *SubscriptionHandler) ListReadingHistory(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteAPIError(w, model.NewUnauthenticatedError())
		return
	}

	limit, _ := paginationParams(r)

	entries, err := h.history.ListByUserID(r.Context(), userID, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]readingHistoryResponse, len(entries))
	for i, entry := range entries {
		results[i] = toReadingHistoryResponse(entry)
	}

	writeSuccess(w, http.StatusOK, results)
}

// monthlyUsageResponse は月間閲覧数のAPIレスポンス。
type monthlyUsageResponse struct {
	ContentType string    `json:"contentType"`
	From        time.Time `json:"from"`
	ReadCount   int       `json:"readCount"`
}

// MonthlyUsage は当月の閲覧数を返す。
// 無料プランの月間閲覧数の表示に使う。カウントクエリのためソフトリミットであり、
// 並行アクセス下では実際の閲覧数を下回る値を返すことがある。
// GET /api/reading-history/usage?contentType=newsletter
func (h *SubscriptionHandler) MonthlyUsage(w http.ResponseWriter, r *http.Request) {
	userID, err := middleware.UserIDFromContext(r.Context())
	if err != nil {
		middleware.WriteAPIError(w, model.NewUnauthenticatedError())
		return
	}

	contentType := model.ContentType(r.URL.Query().Get("contentType"))
	if contentType == "" {
		contentType = model.ContentTypeNewsletter
	}

	now := time.Now().UTC()
	from := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)

	count, err := h.history.CountInPeriod(r.Context(), userID, contentType, from, now)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	writeSuccess(w, http.StatusOK, monthlyUsageResponse{
		ContentType: string(contentType),
		From:        from,
		ReadCount:   count,
	})
}

// toSubscriptionResponse はmodel.NewsletterSubscriptionからAPIレスポンスに変換する。
func toSubscriptionResponse(sub *model.NewsletterSubscription) subscriptionResponse {
	return subscriptionResponse{
		ID:           sub.ID,
		NewsletterID: sub.NewsletterID,
		SubscribedAt: sub.SubscribedAt,
		IsActive:     sub.IsActive,
	}
}

// toReadingHistoryResponse はmodel.ReadingHistoryからAPIレスポンスに変換する。
func toReadingHistoryResponse(entry *model.ReadingHistory) readingHistoryResponse {
	return readingHistoryResponse{
		ID:          entry.ID,
		ContentType: string(entry.ContentType),
		ContentID:   entry.ContentID,
		ReadAt:      entry.ReadAt,
		ReadSeconds: entry.ReadSeconds,
	}
}
