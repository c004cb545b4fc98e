package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/tradinghub/backend/internal/model"
)

// ErrorResponseBody はAPIエラーレスポンスの統一フォーマット。
type ErrorResponseBody struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Category string `json:"category"`
	Action   string `json:"action"`
}

// apiErrorStatus はエラーコードとHTTPステータスの対応表。
// 表にないコードは500として扱う。
var apiErrorStatus = map[string]int{
	model.ErrCodeSessionIDRequired:      http.StatusBadRequest,
	model.ErrCodeInvalidSessionID:       http.StatusBadRequest,
	model.ErrCodeInvalidRequest:         http.StatusBadRequest,
	model.ErrCodeValidationFailed:       http.StatusBadRequest,
	model.ErrCodeAuthenticationRequired: http.StatusUnauthorized,
	model.ErrCodeInsufficientPrivilege:  http.StatusForbidden,
	model.ErrCodeProviderNotFound:       http.StatusNotFound,
	model.ErrCodeBrokerNotFound:         http.StatusNotFound,
	model.ErrCodeTestimonialNotFound:    http.StatusNotFound,
	model.ErrCodeRateLimited:            http.StatusTooManyRequests,
	model.ErrCodeInternal:               http.StatusInternalServerError,
}

// StatusForAPIError はAPIErrorのコードに対応するHTTPステータスを返す。
func StatusForAPIError(apiErr *model.APIError) int {
	if status, ok := apiErrorStatus[apiErr.Code]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// WriteAPIError はコードから決まるステータスでAPIErrorを書き込む。
func WriteAPIError(w http.ResponseWriter, apiErr *model.APIError) {
	WriteErrorResponse(w, StatusForAPIError(apiErr), apiErr)
}

// WriteErrorResponse は統一エラーフォーマットでHTTPエラーレスポンスを書き込む。
// エラー応答はキャッシュさせない。
func WriteErrorResponse(w http.ResponseWriter, statusCode int, apiErr *model.APIError) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponseBody{
		Code:     apiErr.Code,
		Message:  apiErr.Message,
		Category: apiErr.Category,
		Action:   apiErr.Action,
	}); err != nil {
		slog.Error("failed to encode error response", slog.String("error", err.Error()))
	}
}

// WriteInternalServerError は内部サーバーエラーの統一レスポンスを書き込む。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func WriteInternalServerError(w http.ResponseWriter) {
	WriteAPIError(w, model.NewInternalError())
}
