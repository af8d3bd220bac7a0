package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/coral-stay/api/internal/enum"
	"github.com/coral-stay/api/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Errors returned by the review service.
var (
	ErrNotDelivered    = errors.New("order has not been delivered")
	ErrAlreadyReviewed = errors.New("order already reviewed")
	ErrInvalidRating   = errors.New("rating must be between 1 and 5")
)

// ReviewStore defines the DB methods the review service needs.
// Satisfied by *store.Store; narrow interface for testability.
type ReviewStore interface {
	GetOrder(ctx context.Context, id uuid.UUID) (store.Order, error)
	SetOrderReviewed(ctx context.Context, id uuid.UUID, reviewed bool) (store.Order, error)
	CreateReview(ctx context.Context, arg store.CreateReviewParams) (store.Review, error)
	DeleteReview(ctx context.Context, id uuid.UUID) error
	ListReviews(ctx context.Context) ([]store.Review, error)
}

// ReviewService gates review submission: only the order's own customer
// may review, only after delivery, and only once.
type ReviewService struct {
	store ReviewStore
}

func NewReviewService(st ReviewStore) *ReviewService {
	return &ReviewService{store: st}
}

type SubmitReviewRequest struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	Rating     int
	Comment    string
}

// SubmitReview writes the review and marks the order reviewed. The two
// writes are not one transaction (the review is the record of note, the
// order flag is derived), so if flagging the order fails the review is
// deleted again to keep the pair consistent.
func (s *ReviewService) SubmitReview(ctx context.Context, req SubmitReviewRequest) (store.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return store.Review{}, ErrInvalidRating
	}

	order, err := s.store.GetOrder(ctx, req.OrderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return store.Review{}, ErrOrderNotFound
		}
		return store.Review{}, fmt.Errorf("loading order: %w", err)
	}
	if order.CustomerID != req.CustomerID {
		return store.Review{}, ErrNotOrderOwner
	}
	if order.Status != enum.OrderStatusDelivered {
		return store.Review{}, ErrNotDelivered
	}
	if order.Reviewed {
		return store.Review{}, ErrAlreadyReviewed
	}

	dishName := ""
	if len(order.Items) > 0 {
		dishName = order.Items[0]
	}

	review, err := s.store.CreateReview(ctx, store.CreateReviewParams{
		OrderID:    req.OrderID,
		CustomerID: req.CustomerID,
		DishName:   dishName,
		Rating:     req.Rating,
		Comment:    req.Comment,
	})
	if err != nil {
		if isUniqueViolation(err) {
			return store.Review{}, ErrAlreadyReviewed
		}
		return store.Review{}, fmt.Errorf("creating review: %w", err)
	}

	if _, err := s.store.SetOrderReviewed(ctx, req.OrderID, true); err != nil {
		// Compensate: without the flag the order would accept a second
		// review, so take the first one back out.
		if delErr := s.store.DeleteReview(ctx, review.ID); delErr != nil {
			log.Printf("ERROR: deleting review %s after failed order update: %v", review.ID, delErr)
		}
		return store.Review{}, fmt.Errorf("marking order reviewed: %w", err)
	}

	return review, nil
}

func (s *ReviewService) ListReviews(ctx context.Context) ([]store.Review, error) {
	return s.store.ListReviews(ctx)
}

// isUniqueViolation checks for a unique constraint violation
// (pgconn error code 23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
