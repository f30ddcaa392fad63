package handler

import (
	"net/http"
	"time"

	"github.com/hitoshi/newsdesk/internal/middleware"
	"github.com/hitoshi/newsdesk/internal/model"
	"github.com/hitoshi/newsdesk/internal/repository"
)

// UserHandler はユーザー管理（管理者専用）のHTTPハンドラー。
type UserHandler struct {
	repo repository.UserRepository
}

// NewUserHandler はUserHandlerを生成する。
func NewUserHandler(repo repository.UserRepository) *UserHandler {
	return &UserHandler{repo: repo}
}

// userResponse はユーザーのAPIレスポンス。
type userResponse struct {
	ID                    string     `json:"id"`
	Email                 string     `json:"email"`
	Name                  string     `json:"name"`
	Tier                  string     `json:"tier"`
	Role                  string     `json:"role"`
	IsActive              bool       `json:"isActive"`
	SubscriptionStartDate *time.Time `json:"subscriptionStartDate,omitempty"`
	SubscriptionEndDate   *time.Time `json:"subscriptionEndDate,omitempty"`
	CreatedAt             time.Time  `json:"createdAt"`
}

// ListAdmins は管理者ユーザーの一覧を返す。
// GET /api/admin/users
func (h *UserHandler) ListAdmins(w http.ResponseWriter, r *http.Request) {
	admins, err := h.repo.ListAdmins(r.Context())
	if err != nil {
		handleServiceError(w, err)
		return
	}

	results := make([]userResponse, len(admins))
	for i, u := range admins {
		results[i] = toUserResponse(u)
	}

	writeSuccess(w, http.StatusOK, results)
}

// setRoleRequest は管理者権限の付与/剥奪リクエストのボディ。
type setRoleRequest struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	Name   string `json:"name"`
}

// SetAdmin は指定ユーザーに管理者権限を付与する。
// 未登録ユーザーの場合はemail/nameで新規作成される。
// POST /api/admin/users/set-admin
func (h *UserHandler) SetAdmin(w http.ResponseWriter, r *http.Request) {
	h.setRole(w, r, model.RoleAdmin)
}

// RemoveAdmin は指定ユーザーの管理者権限を剥奪する。
// POST /api/admin/users/remove-admin
func (h *UserHandler) RemoveAdmin(w http.ResponseWriter, r *http.Request) {
	h.setRole(w, r, model.RoleUser)
}

func (h *UserHandler) setRole(w http.ResponseWriter, r *http.Request, role model.Role) {
	var req setRoleRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	if req.UserID == "" {
		middleware.WriteAPIError(w, model.NewValidationError("userId is required"))
		return
	}

	user, err := h.repo.SetRole(r.Context(), req.UserID, req.Email, req.Name, role)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if user == nil {
		middleware.WriteAPIError(w, model.NewNotFoundError("User"))
		return
	}

	writeSuccess(w, http.StatusOK, toUserResponse(user))
}

// updateSubscriptionRequest は購読状態の更新リクエストのボディ。
type updateSubscriptionRequest struct {
	UserID                string     `json:"userId"`
	Tier                  string     `json:"tier"`
	IsActive              *bool      `json:"isActive"`
	SubscriptionStartDate *time.Time `json:"subscriptionStartDate"`
	SubscriptionEndDate   *time.Time `json:"subscriptionEndDate"`
}

// UpdateSubscription はユーザーのtier・購読期間を更新する。
// POST /api/admin/users/subscription
func (h *UserHandler) UpdateSubscription(w http.ResponseWriter, r *http.Request) {
	var req updateSubscriptionRequest
	if apiErr := decodeBody(r, &req); apiErr != nil {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	if req.UserID == "" {
		middleware.WriteAPIError(w, model.NewValidationError("userId is required"))
		return
	}
	tier := model.Tier(req.Tier)
	if !tier.Valid() {
		middleware.WriteAPIError(w, model.NewValidationError("tier must be free, paid, or premium"))
		return
	}

	isActive := true
	if req.IsActive != nil {
		isActive = *req.IsActive
	}

	user, err := h.repo.UpdateSubscription(
		r.Context(), req.UserID, tier, isActive,
		req.SubscriptionStartDate, req.SubscriptionEndDate,
	)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	if user == nil {
		middleware.WriteAPIError(w, model.NewNotFoundError("User"))
		return
	}

	writeSuccess(w, http.StatusOK, toUserResponse(user))
}

// toUserResponse はmodel.UserからAPIレスポンスに変換する。
func toUserResponse(u *model.User) userResponse {
	return userResponse{
		ID:                    u.ID,
		Email:                 u.Email,
		Name:                  u.Name,
		Tier:                  string(u.Tier),
		Role:                  string(u.Role),
		IsActive:              u.IsActive,
		SubscriptionStartDate: u.SubscriptionStartDate,
		SubscriptionEndDate:   u.SubscriptionEndDate,
		CreatedAt:             u.CreatedAt,
	}
}
