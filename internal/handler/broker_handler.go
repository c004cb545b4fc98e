package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tradinghub/backend/internal/model"
)

// BrokerServiceInterface はブローカーハンドラーが必要とするサービスインターフェース。
type BrokerServiceInterface interface {
	List(ctx context.Context, filter model.BrokerFilter) ([]*model.Broker, int, error)
	Search(ctx context.Context, query string, limit int) ([]*model.Broker, error)
	Get(ctx context.Context, id string) (*model.Broker, error)
	Create(ctx context.Context, in model.BrokerPatch) (*model.Broker, error)
	Update(ctx context.Context, id string, patch model.BrokerPatch) (*model.Broker, error)
	Delete(ctx context.Context, id string) error
}

// BrokerHandler はブローカー関連のHTTPハンドラー。
type BrokerHandler struct {
	service BrokerServiceInterface
}

// NewBrokerHandler はBrokerHandlerを生成する。
func NewBrokerHandler(service BrokerServiceInterface) *BrokerHandler {
	return &BrokerHandler{service: service}
}

// List はブローカー一覧を返す。
// GET /api/brokers
func (h *BrokerHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, skip, err := paging(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	filter := model.BrokerFilter{
		InstrumentType: filterValue(r, "instrumentType"),
		Regulation:     filterValue(r, "regulation"),
		Search:         filterValue(r, "search"),
		Limit:          limit,
		Skip:           skip,
	}
	// minDepositは「この金額以下で口座開設できる」ブローカーに絞り込む
	if filterValue(r, "minDeposit") != "" {
		v, err := queryInt(r, "minDeposit", 0)
		if err != nil {
			handleServiceError(w, err)
			return
		}
		filter.MaxMinDeposit = &v
	}

	brokers, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeList(w, brokers, total)
}

// Search は名前または取扱商品でブローカーを検索する。
// GET /api/brokers/search
func (h *BrokerHandler) Search(w http.ResponseWriter, r *http.Request) {
	q, limit, err := searchParams(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	brokers, err := h.service.Search(r.Context(), q, limit)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeList(w, brokers, len(brokers))
}

// Get は指定IDのブローカーを返す。
// GET /api/brokers/{id}
func (h *BrokerHandler) Get(w http.ResponseWriter, r *http.Request) {
	broker, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemResponse[*model.Broker]{Success: true, Data: broker})
}

// Create はブローカーを作成する。管理者のみ。
// POST /api/brokers
func (h *BrokerHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.BrokerPatch
	if !decodeJSON(w, r, &in) {
		return
	}

	broker, err := h.service.Create(r.Context(), in)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemResponse[*model.Broker]{
		Success: true,
		Data:    broker,
		Message: "Broker created successfully",
	})
}

// Update はブローカーを部分更新する。管理者のみ。
// PUT /api/brokers/{id}
func (h *BrokerHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.BrokerPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	broker, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemResponse[*model.Broker]{
		Success: true,
		Data:    broker,
		Message: "Broker updated successfully",
	})
}

// Delete はブローカーを削除する。管理者のみ。
// DELETE /api/brokers/{id}
func (h *BrokerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Broker deleted successfully"})
}
