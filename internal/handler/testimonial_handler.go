package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/tradinghub/backend/internal/model"
)

// TestimonialServiceInterface は推薦文ハンドラーが必要とするサービスインターフェース。
type TestimonialServiceInterface interface {
	List(ctx context.Context, filter model.TestimonialFilter) ([]*model.Testimonial, int, error)
	Get(ctx context.Context, id string) (*model.Testimonial, error)
	Create(ctx context.Context, in model.TestimonialPatch) (*model.Testimonial, error)
	Update(ctx context.Context, id string, patch model.TestimonialPatch) (*model.Testimonial, error)
	SetApproved(ctx context.Context, id string, approved bool) error
	Delete(ctx context.Context, id string) error
}

// TestimonialHandler は推薦文関連のHTTPハンドラー。
type TestimonialHandler struct {
	service TestimonialServiceInterface
}

// NewTestimonialHandler はTestimonialHandlerを生成する。
func NewTestimonialHandler(service TestimonialServiceInterface) *TestimonialHandler {
	return &TestimonialHandler{service: service}
}

// List は推薦文一覧を返す。approved未指定時は承認済みのみ。
// GET /api/testimonials
func (h *TestimonialHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, skip, err := paging(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	approved, err := parseApproved(r)
	if err != nil {
		handleServiceError(w, err)
		return
	}

	testimonials, total, err := h.service.List(r.Context(), model.TestimonialFilter{
		Approved: approved,
		Limit:    limit,
		Skip:     skip,
	})
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeList(w, testimonials, total)
}

// Get は指定IDの推薦文を返す。
// GET /api/testimonials/{id}
func (h *TestimonialHandler) Get(w http.ResponseWriter, r *http.Request) {
	testimonial, err := h.service.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemResponse[*model.Testimonial]{Success: true, Data: testimonial})
}

// Create は推薦文を作成する。管理者のみ。
// POST /api/testimonials
func (h *TestimonialHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in model.TestimonialPatch
	if !decodeJSON(w, r, &in) {
		return
	}

	testimonial, err := h.service.Create(r.Context(), in)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemResponse[*model.Testimonial]{
		Success: true,
		Data:    testimonial,
		Message: "Testimonial created successfully",
	})
}

// Update は推薦文を部分更新する。管理者のみ。
// PUT /api/testimonials/{id}
func (h *TestimonialHandler) Update(w http.ResponseWriter, r *http.Request) {
	var patch model.TestimonialPatch
	if !decodeJSON(w, r, &patch) {
		return
	}

	testimonial, err := h.service.Update(r.Context(), chi.URLParam(r, "id"), patch)
	if err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, itemResponse[*model.Testimonial]{
		Success: true,
		Data:    testimonial,
		Message: "Testimonial updated successfully",
	})
}

// Approve は推薦文の承認状態を変更する。管理者のみ。
// PATCH /api/testimonials/{id}/approve?approved=bool
func (h *TestimonialHandler) Approve(w http.ResponseWriter, r *http.Request) {
	approved, err := strconv.ParseBool(r.URL.Query().Get("approved"))
	if err != nil {
		handleServiceError(w, model.NewValidationError("approved must be a boolean"))
		return
	}

	if err := h.service.SetApproved(r.Context(), chi.URLParam(r, "id"), approved); err != nil {
		handleServiceError(w, err)
		return
	}

	status := "rejected"
	if approved {
		status = "approved"
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Testimonial " + status + " successfully"})
}

// Delete は推薦文を削除する。管理者のみ。
// DELETE /api/testimonials/{id}
func (h *TestimonialHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Success: true, Message: "Testimonial deleted successfully"})
}
