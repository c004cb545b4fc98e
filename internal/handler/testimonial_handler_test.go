package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/tradinghub/backend/internal/model"
)

func TestTestimonialHandler_List_DefaultsToApproved(t *testing.T) {
	var got model.TestimonialFilter
	svc := &mockTestimonialService{
		listFn: func(_ context.Context, filter model.TestimonialFilter) ([]*model.Testimonial, int, error) {
			got = filter
			return []*model.Testimonial{{ID: "t1", Approved: true}}, 1, nil
		},
	}
	h := NewTestimonialHandler(svc)

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/testimonials", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	if got.Approved == nil || !*got.Approved {
		t.Errorf("Approved = %v, want true", got.Approved)
	}
}

func TestTestimonialHandler_List_ApprovedFalseAndAll(t *testing.T) {
	tests := []struct {
		query string
		want  *bool
	}{
		{"approved=false", boolPtr(false)},
		{"approved=all", nil},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var got model.TestimonialFilter
			svc := &mockTestimonialService{
				listFn: func(_ context.Context, filter model.TestimonialFilter) ([]*model.Testimonial, int, error) {
					got = filter
					return nil, 0, nil
				},
			}
			h := NewTestimonialHandler(svc)

			w := httptest.NewRecorder()
			h.List(w, httptest.NewRequest(http.MethodGet, "/api/testimonials?"+tt.query, nil))

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
			}
			if (got.Approved == nil) != (tt.want == nil) || (got.Approved != nil && *got.Approved != *tt.want) {
				t.Errorf("Approved = %v, want %v", got.Approved, tt.want)
			}
		})
	}
}

func TestTestimonialHandler_Approve(t *testing.T) {
	tests := []struct {
		query       string
		wantStatus  int
		wantMessage string
		wantValue   bool
	}{
		{"approved=true", http.StatusOK, "Testimonial approved successfully", true},
		{"approved=false", http.StatusOK, "Testimonial rejected successfully", false},
		{"", http.StatusBadRequest, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			var called bool
			var gotValue bool
			svc := &mockTestimonialService{
				setApprovedFn: func(_ context.Context, id string, approved bool) error {
					called = true
					gotValue = approved
					if id != "t1" {
						t.Errorf("id = %q", id)
					}
					return nil
				},
			}
			h := NewTestimonialHandler(svc)

			req := httptest.NewRequest(http.MethodPatch, "/api/testimonials/t1/approve?"+tt.query, nil)
			w := httptest.NewRecorder()
			h.Approve(w, withChiURLParam(req, "id", "t1"))

			if w.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", w.Code, tt.wantStatus)
			}
			if tt.wantStatus != http.StatusOK {
				if called {
					t.Error("service must not be called")
				}
				return
			}
			if gotValue != tt.wantValue {
				t.Errorf("approved = %v, want %v", gotValue, tt.wantValue)
			}
			if body := decodeBody(t, w); body["message"] != tt.wantMessage {
				t.Errorf("message = %v", body["message"])
			}
		})
	}
}

func TestTestimonialHandler_Approve_NotFound(t *testing.T) {
	svc := &mockTestimonialService{
		setApprovedFn: func(_ context.Context, id string, _ bool) error {
			return model.NewTestimonialNotFoundError(id)
		},
	}
	h := NewTestimonialHandler(svc)

	req := httptest.NewRequest(http.MethodPatch, "/api/testimonials/x/approve?approved=true", nil)
	w := httptest.NewRecorder()
	h.Approve(w, withChiURLParam(req, "id", "x"))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", w.Code, http.StatusNotFound)
	}
}

func TestTestimonialHandler_Create(t *testing.T) {
	svc := &mockTestimonialService{
		createFn: func(_ context.Context, in model.TestimonialPatch) (*model.Testimonial, error) {
			if in.Rating == nil || *in.Rating != 5 {
				t.Errorf("input = %+v", in)
			}
			return &model.Testimonial{ID: "t9", Rating: 5, Approved: true}, nil
		},
	}
	h := NewTestimonialHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/api/testimonials", strings.NewReader(`{"name":"K","rating":5}`))
	w := httptest.NewRecorder()
	h.Create(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want %d", w.Code, http.StatusOK)
	}
	body := decodeBody(t, w)
	if body["message"] != "Testimonial created successfully" {
		t.Errorf("message = %v", body["message"])
	}
	if data := body["data"].(map[string]any); data["approved"] != true {
		t.Errorf("data = %v", data)
	}
}

func TestTestimonialHandler_GetUpdateDelete(t *testing.T) {
	svc := &mockTestimonialService{
		getFn: func(_ context.Context, id string) (*model.Testimonial, error) {
			return &model.Testimonial{ID: id, Name: "K"}, nil
		},
	}
	h := NewTestimonialHandler(svc)

	w := httptest.NewRecorder()
	h.Get(w, withChiURLParam(httptest.NewRequest(http.MethodGet, "/api/testimonials/t1", nil), "id", "t1"))
	if w.Code != http.StatusOK {
		t.Errorf("get status = %d", w.Code)
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/testimonials/t1", strings.NewReader(`{"text":"great"}`))
	h.Update(w, withChiURLParam(req, "id", "t1"))
	if body := decodeBody(t, w); body["message"] != "Testimonial updated successfully" {
		t.Errorf("update message = %v", body["message"])
	}

	w = httptest.NewRecorder()
	h.Delete(w, withChiURLParam(httptest.NewRequest(http.MethodDelete, "/api/testimonials/t1", nil), "id", "t1"))
	if body := decodeBody(t, w); body["message"] != "Testimonial deleted successfully" {
		t.Errorf("delete message = %v", body["message"])
	}
}
