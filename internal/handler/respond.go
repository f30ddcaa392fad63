package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/hitoshi/newsdesk/internal/middleware"
	"github.com/hitoshi/newsdesk/internal/model"
)

// successEnvelope はAPI成功レスポンスの統一フォーマット。
type successEnvelope struct {
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// writeSuccess は成功レスポンスをエンベロープ形式で書き込む。
func writeSuccess(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(successEnvelope{
		Success: true,
		Data:    data,
	})
}

// decodeBody はリクエストボディをJSONとしてデコードする。
// 解析失敗時はVALIDATION_ERRORを返す。
func decodeBody(r *http.Request, v any) *model.APIError {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return model.NewValidationError("Invalid request body")
	}
	return nil
}

// handleServiceError はサービス層から返されたエラーを適切なHTTPレスポンスに変換する。
// APIError以外のエラーは詳細をログに記録し、一般的な500レスポンスを返す。
func handleServiceError(w http.ResponseWriter, err error) {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		middleware.WriteAPIError(w, apiErr)
		return
	}

	slog.Error("内部エラーが発生しました", slog.String("error", err.Error()))
	middleware.WriteInternalServerError(w)
}
