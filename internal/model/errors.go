// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// HTTPステータスの決定に使用するコードとユーザー向けメッセージを持つ。
type APIError struct {
	Code    string // エラーコード
	Message string // ユーザー向けメッセージ
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthenticated     = "UNAUTHENTICATED"
	ErrCodeForbidden           = "FORBIDDEN"
	ErrCodeValidation          = "VALIDATION_ERROR"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeUnsupportedFileType = "UNSUPPORTED_FILE_TYPE"
	ErrCodeExternalService     = "EXTERNAL_SERVICE_ERROR"
	ErrCodeAINotConfigured     = "AI_NOT_CONFIGURED"
	ErrCodeInvalidFeedURL      = "INVALID_FEED_URL"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// NewUnauthenticatedError は未認証エラーを生成する。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:    ErrCodeUnauthenticated,
		Message: "Authentication required",
	}
}

// NewForbiddenError は管理者権限がない場合のエラーを生成する。
func NewForbiddenError() *APIError {
	return &APIError{
		Code:    ErrCodeForbidden,
		Message: "Admin access required",
	}
}

// NewValidationError は必須フィールドの欠落・不正値エラーを生成する。
func NewValidationError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeValidation,
		Message: message,
	}
}

// NewNotFoundError は対象が存在しない、または未公開の場合のエラーを生成する。
// 未公開コンテンツの存在を漏らさないため、どちらも同じメッセージを返す。
func NewNotFoundError(resource string) *APIError {
	return &APIError{
		Code:    ErrCodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
	}
}

// NewUnsupportedFileTypeError は許可外のMIMEタイプのエラーを生成する。
// detectedには検出したファイル種別の説明を含める。
func NewUnsupportedFileTypeError(detected string) *APIError {
	return &APIError{
		Code:    ErrCodeUnsupportedFileType,
		Message: fmt.Sprintf("Invalid file type. Please upload PDF, DOC, DOCX, or TXT files only. Detected: %s", detected),
	}
}

// NewExternalServiceError は外部サービス（LLM等）の呼び出し失敗エラーを生成する。
// 自動リトライは行わず、単一のメッセージとして呼び出し元に返す。
func NewExternalServiceError(message string) *APIError {
	return &APIError{
		Code:    ErrCodeExternalService,
		Message: message,
	}
}

// NewAINotConfiguredError はAPIキー未設定の設定エラーを生成する。
func NewAINotConfiguredError() *APIError {
	return &APIError{
		Code:    ErrCodeAINotConfigured,
		Message: "OpenAI API key not configured. Please set OPENAI_API_KEY environment variable.",
	}
}

// NewInvalidFeedURLError はフィードインポートURLの検証エラーを生成する。
func NewInvalidFeedURLError(reason string) *APIError {
	return &APIError{
		Code:    ErrCodeInvalidFeedURL,
		Message: fmt.Sprintf("Invalid feed URL: %s", reason),
	}
}
