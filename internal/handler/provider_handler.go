package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tradinghub/backend/internal/model"
)

// ProviderServiceInterface はプロバイダーハンドラーが必要とするサービスインターフェース。
type ProviderServiceInterface interface {
	List(ctx context.Context, filter model.ProviderFilter) ([]*model.Provider, int, error)
	Search(ctx context.Context, query string, limit int) ([]*model.Provider, error)
	Get(ctx context.Context, id string) (*model.Provider, error)
	Create(ctx context.Context, in model.ProviderPatch) (*model.Provider, error)
	Update(ctx context.Context, id string, patch model.ProviderPatch) (*model.Provider, error)
	Delete(ctx context.Context, id string) error
}

// ProviderHandler はシグナルプロバイダー関連のHTTPハンドラー。
type ProviderHandler struct {
	service ProviderServiceInterface
}

// NewProviderHandler はProviderHandlerを生成する。
func NewProviderHandler(service ProviderServiceInterface) *ProviderHandler {
	return &ProviderHandler{service: service}
}

// List はプロバイダー一覧を返す。
// GET /api/providers
func (h *ProviderHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, skip, err := paging(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	minPrice, maxPrice, err := parsePriceRange(filterValue(r, "priceRange"))
	if err != nil {
		handleServiceError(w, err)
		return
	}

	providers, total, err := h.service.List(r.Context(), model.ProviderFilter{
		SignalType: filterValue(r, "signalType"),
		RiskLevel:  filterValue(r, "riskLevel"),
		MinPrice:   minPrice,
		MaxPrice:   maxPrice,
		Search:     filterValue(r, "search"),
		Limit:      limit,
		Skip:       skip,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeList(w, providers, total)
}

// Search は名前またはシグナル種別でプロバイダーを検索する。
// GET /api/providers/search
func (h *ProviderHandler) Search(w http.ResponseWriter, r *http.Request) {
	q, limit, err := searchParams(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	providers, err := h.service.Search(r.Context(), q, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeList(w, providers, len(providers))
}

// Get は指定IDのプロバイダーを返す。
// GET /api/providers/{id}
func (h *ProviderHandler) Get(w http.ResponseWriter, r *http.Request) {
	provider, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemResponse[*model.Provider]{Success: true, Data: provider})
}

// Create はプロバイダーを作成する。管理者のみ。
// POST /api/providers
func (h *ProviderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.ProviderPatch
	if !decodeJSON(w, r, &in) {
		return
	}

	provider, err := h.service.Create(r.Context(), in)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemResponse[*model.Provider]{
		Success: true,
		Data:    provider,
		Message: "Provider created successfully",
	})
}

// Update はプロバイダーを部分更新する。管理者のみ。
// PUT /api/providers/{id}
func (h *ProviderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.ProviderPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	provider, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemResponse[*model.Provider]{
		Success: true,
		Data:    provider,
		Message: "Provider updated successfully",
	})
}

// Delete はプロバイダーを削除する。管理者のみ。
// DELETE /api/providers/{id}
func (h *ProviderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Provider deleted successfully"})
}
