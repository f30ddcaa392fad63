package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/newsdesk/internal/model"
)

type mockRoleFinder struct {
	roleByUserIDFn func(ctx context.Context, userID string) (model.Role, error)
}

func (m *mockRoleFinder) RoleByUserID(ctx context.Context, userID string) (model.Role, error) {
	if m.roleByUserIDFn != nil {
		return m.roleByUserIDFn(ctx, userID)
	}
	return model.RoleUser, nil
}

var _ RoleFinder = (*mockRoleFinder)(nil)

func decodeErrorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Success bool `json:"success"`
		Error   struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}
	if body.Success {
		t.Error("error response should have success = false")
	}
	return body.Error.Code
}

// 未認証リクエストが401で拒否されることを検証
func TestAdminMiddleware_Unauthenticated_Returns401(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/newsletters", nil)
	rec := httptest.NewRecorder()

	NewAdminMiddleware(&mockRoleFinder{})(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}
	if code := decodeErrorCode(t, rec); code != model.ErrCodeUnauthenticated {
		t.Errorf("error code = %q, want %q", code, model.ErrCodeUnauthenticated)
	}
}

// 一般ユーザーが403で拒否されることを検証
func TestAdminMiddleware_NonAdmin_Returns403(t *testing.T) {
	roles := &mockRoleFinder{
		roleByUserIDFn: func(ctx context.Context, userID string) (model.Role, error) {
			return model.RoleUser, nil
		},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/newsletters", nil)
	req = req.WithContext(ContextWithUserID(req.Context(), "user-123"))
	rec := httptest.NewRecorder()

	NewAdminMiddleware(roles)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusForbidden)
	}
	if code := decodeErrorCode(t, rec); code != model.ErrCodeForbidden {
		t.Errorf("error code = %q, want %q", code, model.ErrCodeForbidden)
	}
}

// admin/super_adminが通過することを検証
func TestAdminMiddleware_Admin_Passes(t *testing.T) {
	for _, role := range []model.Role{model.RoleAdmin, model.RoleSuperAdmin} {
		t.Run(string(role), func(t *testing.T) {
			roles := &mockRoleFinder{
				roleByUserIDFn: func(ctx context.Context, userID string) (model.Role, error) {
					return role, nil
				},
			}

			called := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				called = true
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/api/admin/newsletters", nil)
			req = req.WithContext(ContextWithUserID(req.Context(), "admin-user"))
			rec := httptest.NewRecorder()

			NewAdminMiddleware(roles)(next).ServeHTTP(rec, req)

			if !called {
				t.Error("next handler should be called")
			}
			if rec.Code != http.StatusOK {
				t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
			}
		})
	}
}

// role取得エラーで500が返ることを検証
func TestAdminMiddleware_RoleLookupError_Returns500(t *testing.T) {
	roles := &mockRoleFinder{
		roleByUserIDFn: func(ctx context.Context, userID string) (model.Role, error) {
			return "", errors.New("db error")
		},
	}

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("next handler should not be called")
	})

	req := httptest.NewRequest(http.MethodGet, "/api/admin/newsletters", nil)
	req = req.WithContext(ContextWithUserID(req.Context(), "user-123"))
	rec := httptest.NewRecorder()

	NewAdminMiddleware(roles)(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusInternalServerError {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusInternalServerError)
	}
}
