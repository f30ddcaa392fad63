package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/hitoshi/newsdesk/internal/model"
)

// RoleFinder はユーザーのroleの取得に必要なインターフェース。
// repository.UserRepositoryの部分集合として定義する。
type RoleFinder interface {
	RoleByUserID(ctx context.Context, userID string) (model.Role, error)
}

// NewAdminMiddleware は管理APIへのアクセスを管理者に制限するミドルウェアを返す。
// 未認証のリクエストには401、認証済みだが管理者権限がない場合は403を返す。
// roleは毎リクエスト時点のDB値で判定し、セッション発行時の値をキャッシュしない。
func NewAdminMiddleware(roles RoleFinder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, err := UserIDFromContext(r.Context())
			if err != nil {
				WriteAPIError(w, model.NewUnauthenticatedError())
				return
			}

			role, err := roles.RoleByUserID(r.Context(), userID)
			if err != nil {
				slog.Error("roleの取得に失敗しました",
					slog.String("user_id", userID),
					slog.String("error", err.Error()),
				)
				WriteInternalServerError(w)
				return
			}

			if !role.IsAdmin() {
				slog.Warn("管理APIへの権限外アクセスを拒否しました",
					slog.String("user_id", userID),
					slog.String("path", r.URL.Path),
				)
				WriteAPIError(w, model.NewForbiddenError())
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
