// Package model はドメインモデルを定義する。
package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, catalog, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeSessionIDRequired      = "SESSION_ID_REQUIRED"
	ErrCodeInvalidSessionID       = "INVALID_SESSION_ID"
	ErrCodeAuthenticationRequired = "AUTHENTICATION_REQUIRED"
	ErrCodeInsufficientPrivilege  = "INSUFFICIENT_PRIVILEGE"
	ErrCodeInvalidRequest         = "INVALID_REQUEST"
	ErrCodeValidationFailed       = "VALIDATION_FAILED"
	ErrCodeProviderNotFound       = "PROVIDER_NOT_FOUND"
	ErrCodeBrokerNotFound         = "BROKER_NOT_FOUND"
	ErrCodeTestimonialNotFound    = "TESTIMONIAL_NOT_FOUND"
	ErrCodeRateLimited            = "RATE_LIMIT_EXCEEDED"
	ErrCodeInternal               = "INTERNAL_ERROR"
)

// NewSessionIDRequiredError はsession_id未指定エラーを生成する。
func NewSessionIDRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeSessionIDRequired,
		Message:  "session_id required",
		Category: "auth",
		Action:   "Sign in again to obtain a new session id.",
	}
}

// NewInvalidSessionIDError はIdPがsession_idを受け付けなかった場合のエラーを生成する。
// ネットワーク障害と無効なIDは区別しない。
func NewInvalidSessionIDError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidSessionID,
		Message:  "Invalid session ID",
		Category: "auth",
		Action:   "Sign in again to obtain a new session id.",
	}
}

// NewAuthenticationRequiredError は未認証エラーを生成する。
func NewAuthenticationRequiredError() *APIError {
	return &APIError{
		Code:     ErrCodeAuthenticationRequired,
		Message:  "Authentication required",
		Category: "auth",
		Action:   "Sign in and retry.",
	}
}

// NewInsufficientPrivilegeError は権限不足エラーを生成する。
func NewInsufficientPrivilegeError() *APIError {
	return &APIError{
		Code:     ErrCodeInsufficientPrivilege,
		Message:  "Admin access required",
		Category: "auth",
		Action:   "Ask an administrator to perform this operation.",
	}
}

// NewInvalidRequestError はリクエストボディの解析失敗エラーを生成する。
func NewInvalidRequestError() *APIError {
	return &APIError{
		Code:     ErrCodeInvalidRequest,
		Message:  "Failed to parse request body",
		Category: "validation",
		Action:   "Send a valid JSON body.",
	}
}

// NewValidationError は入力値検証エラーを生成する。
func NewValidationError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("Invalid input: %s", reason),
		Category: "validation",
		Action:   "Fix the highlighted field and retry.",
	}
}

// NewProviderNotFoundError はシグナルプロバイダー未検出エラーを生成する。
func NewProviderNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeProviderNotFound,
		Message:  fmt.Sprintf("Provider not found: %s", id),
		Category: "catalog",
		Action:   "Check the provider id.",
	}
}

// NewBrokerNotFoundError はブローカー未検出エラーを生成する。
func NewBrokerNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeBrokerNotFound,
		Message:  fmt.Sprintf("Broker not found: %s", id),
		Category: "catalog",
		Action:   "Check the broker id.",
	}
}

// NewTestimonialNotFoundError は推薦文未検出エラーを生成する。
func NewTestimonialNotFoundError(id string) *APIError {
	return &APIError{
		Code:     ErrCodeTestimonialNotFound,
		Message:  fmt.Sprintf("Testimonial not found: %s", id),
		Category: "catalog",
		Action:   "Check the testimonial id.",
	}
}

// NewRateLimitedError はレート制限超過エラーを生成する。
func NewRateLimitedError() *APIError {
	return &APIError{
		Code:     ErrCodeRateLimited,
		Message:  "Too many requests. Please try again later.",
		Category: "system",
		Action:   "Please wait and retry after the specified time.",
	}
}

// NewInternalError は内部エラーを生成する。
// 詳細はログにのみ記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "Internal error",
		Category: "system",
		Action:   "Please wait a moment and retry.",
	}
}
