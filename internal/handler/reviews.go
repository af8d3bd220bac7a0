package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/coral-stay/api/internal/enum"
	"github.com/coral-stay/api/internal/middleware"
	"github.com/coral-stay/api/internal/service"
	"github.com/coral-stay/api/internal/store"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ReviewSubmitter defines what review handlers need from the review
// service. Satisfied by *service.ReviewService.
type ReviewSubmitter interface {
	SubmitReview(ctx context.Context, req service.SubmitReviewRequest) (store.Review, error)
	ListReviews(ctx context.Context) ([]store.Review, error)
}

// ReviewHandler handles review endpoints.
type ReviewHandler struct {
	reviews ReviewSubmitter
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviews ReviewSubmitter) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

// RegisterRoutes registers review endpoints on the given Chi router.
func (h *ReviewHandler) RegisterRoutes(r chi.Router) {
	r.Post("/", h.Create)
	r.Get("/", h.List)
}

// --- Request types ---

type createReviewRequest struct {
	OrderID string `json:"order_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment"`
}

// --- Handlers ---

// Create submits a review for a delivered order.
func (h *ReviewHandler) Create(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "not authenticated"})
		return
	}
	if claims.Role != enum.RoleCustomer {
		writeJSON(w, http.StatusForbidden, map[string]string{"error": "only customers write reviews"})
		return
	}

	var req createReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	orderID, err := uuid.Parse(req.OrderID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid order ID"})
		return
	}

	review, err := h.reviews.SubmitReview(r.Context(), service.SubmitReviewRequest{
		OrderID:    orderID,
		CustomerID: claims.UserID,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidRating):
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "rating must be between 1 and 5"})
		case errors.Is(err, service.ErrOrderNotFound), errors.Is(err, service.ErrNotOrderOwner):
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "order not found"})
		case errors.Is(err, service.ErrNotDelivered):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order has not been delivered"})
		case errors.Is(err, service.ErrAlreadyReviewed):
			writeJSON(w, http.StatusConflict, map[string]string{"error": "order already reviewed"})
		default:
			log.Printf("ERROR: submit review: %v", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		}
		return
	}

	writeJSON(w, http.StatusCreated, review)
}

// List returns all reviews, newest first.
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.reviews.ListReviews(r.Context())
	if err != nil {
		log.Printf("ERROR: list reviews: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	writeJSON(w, http.StatusOK, reviews)
}
