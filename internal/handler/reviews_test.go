package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/coral-stay/api/internal/handler"
	"github.com/coral-stay/api/internal/middleware"
	"github.com/coral-stay/api/internal/service"
	"github.com/coral-stay/api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// --- Mock ReviewSubmitter ---

type mockReviewSubmitter struct {
	submitFn func(ctx context.Context, req service.SubmitReviewRequest) (store.Review, error)
	listFn   func(ctx context.Context) ([]store.Review, error)
}

func (m *mockReviewSubmitter) SubmitReview(ctx context.Context, req service.SubmitReviewRequest) (store.Review, error) {
	if m.submitFn != nil {
		return m.submitFn(ctx, req)
	}
	return store.Review{}, service.ErrOrderNotFound
}

func (m *mockReviewSubmitter) ListReviews(ctx context.Context) ([]store.Review, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	return []store.Review{}, nil
}

// --- Test helpers ---

func setupReviewRouter(reviews *mockReviewSubmitter) *chi.Mux {
	h := handler.NewReviewHandler(reviews)
	r := chi.NewRouter()
	r.Use(middleware.Authenticate(testJWTSecret))
	r.Route("/reviews", h.RegisterRoutes)
	return r
}

// --- Tests ---

func TestReviewCreate_HappyPath(t *testing.T) {
	claims := customerClaims()
	orderID := uuid.New()

	reviews := &mockReviewSubmitter{
		submitFn: func(ctx context.Context, req service.SubmitReviewRequest) (store.Review, error) {
			if req.OrderID != orderID {
				t.Errorf("order_id: got %v, want %v", req.OrderID, orderID)
			}
			if req.CustomerID != claims.UserID {
				t.Errorf("customer_id: got %v, want %v", req.CustomerID, claims.UserID)
			}
			if req.Rating != 5 {
				t.Errorf("rating: got %d, want 5", req.Rating)
			}
			return store.Review{
				ID:         uuid.New(),
				OrderID:    orderID,
				CustomerID: claims.UserID,
				DishName:   "Grilled Snapper",
				Rating:     5,
				Comment:    req.Comment,
				CreatedAt:  time.Now(),
			}, nil
		},
	}

	router := setupReviewRouter(reviews)
	rr := doAuthRequest(t, router, "POST", "/reviews", map[string]interface{}{
		"order_id": orderID.String(),
		"rating":   5,
		"comment":  "Perfectly cooked",
	}, claims)

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}

	resp := decodeResponse(t, rr)
	if resp["dish_name"] != "Grilled Snapper" {
		t.Errorf("dish_name: got %v, want Grilled Snapper", resp["dish_name"])
	}
}

func TestReviewCreate_StaffForbidden(t *testing.T) {
	router := setupReviewRouter(&mockReviewSubmitter{})
	rr := doAuthRequest(t, router, "POST", "/reviews", map[string]interface{}{
		"order_id": uuid.New().String(),
		"rating":   5,
	}, staffClaims())

	if rr.Code != http.StatusForbidden {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusForbidden, rr.Body.String())
	}
}

func TestReviewCreate_InvalidRating(t *testing.T) {
	reviews := &mockReviewSubmitter{
		submitFn: func(ctx context.Context, req service.SubmitReviewRequest) (store.Review, error) {
			return store.Review{}, service.ErrInvalidRating
		},
	}

	router := setupReviewRouter(reviews)
	rr := doAuthRequest(t, router, "POST", "/reviews", map[string]interface{}{
		"order_id": uuid.New().String(),
		"rating":   6,
	}, customerClaims())

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusBadRequest, rr.Body.String())
	}
}

func TestReviewCreate_NotDelivered(t *testing.T) {
	reviews := &mockReviewSubmitter{
		submitFn: func(ctx context.Context, req service.SubmitReviewRequest) (store.Review, error) {
			return store.Review{}, service.ErrNotDelivered
		},
	}

	router := setupReviewRouter(reviews)
	rr := doAuthRequest(t, router, "POST", "/reviews", map[string]interface{}{
		"order_id": uuid.New().String(),
		"rating":   4,
	}, customerClaims())

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
	resp := decodeResponse(t, rr)
	if resp["error"] != "order has not been delivered" {
		t.Errorf("error: got %v, want 'order has not been delivered'", resp["error"])
	}
}

func TestReviewCreate_AlreadyReviewed(t *testing.T) {
	reviews := &mockReviewSubmitter{
		submitFn: func(ctx context.Context, req service.SubmitReviewRequest) (store.Review, error) {
			return store.Review{}, service.ErrAlreadyReviewed
		},
	}

	router := setupReviewRouter(reviews)
	rr := doAuthRequest(t, router, "POST", "/reviews", map[string]interface{}{
		"order_id": uuid.New().String(),
		"rating":   4,
	}, customerClaims())

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusConflict, rr.Body.String())
	}
}

func TestReviewCreate_OtherCustomersOrder(t *testing.T) {
	reviews := &mockReviewSubmitter{
		submitFn: func(ctx context.Context, req service.SubmitReviewRequest) (store.Review, error) {
			return store.Review{}, service.ErrNotOrderOwner
		},
	}

	router := setupReviewRouter(reviews)
	rr := doAuthRequest(t, router, "POST", "/reviews", map[string]interface{}{
		"order_id": uuid.New().String(),
		"rating":   4,
	}, customerClaims())

	// Same answer as a missing order; don't leak whose order it is.
	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusNotFound, rr.Body.String())
	}
}

func TestReviewList_HappyPath(t *testing.T) {
	reviews := &mockReviewSubmitter{
		listFn: func(ctx context.Context) ([]store.Review, error) {
			return []store.Review{
				{ID: uuid.New(), DishName: "Grilled Snapper", Rating: 5},
				{ID: uuid.New(), DishName: "Key Lime Pie", Rating: 4},
			}, nil
		},
	}

	router := setupReviewRouter(reviews)
	rr := doAuthRequest(t, router, "GET", "/reviews", nil, customerClaims())

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if got := decodeListResponse(t, rr); len(got) != 2 {
		t.Fatalf("reviews count: got %d, want 2", len(got))
	}
}
