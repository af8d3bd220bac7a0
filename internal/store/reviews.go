package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const reviewColumns = `id, order_id, customer_id, dish_name, rating, comment, created_at`

func scanReview(row pgx.Row) (Review, error) {
	var r Review
	err := row.Scan(&r.ID, &r.OrderID, &r.CustomerID, &r.DishName,
		&r.Rating, &r.Comment, &r.CreatedAt)
	return r, err
}

type CreateReviewParams struct {
	OrderID    uuid.UUID
	CustomerID uuid.UUID
	DishName   string
	Rating     int
	Comment    string
}

// CreateReview inserts a review. The UNIQUE constraint on order_id makes
// a second review for the same order fail at the database.
func (s *Store) CreateReview(ctx context.Context, arg CreateReviewParams) (Review, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO reviews (id, order_id, customer_id, dish_name, rating, comment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+reviewColumns,
		uuid.New(), arg.OrderID, arg.CustomerID, arg.DishName, arg.Rating, arg.Comment)
	return scanReview(row)
}

// DeleteReview removes a review. Used to compensate when the follow-up
// order update fails after the review was already written.
func (s *Store) DeleteReview(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// ListReviews returns all reviews, newest first.
func (s *Store) ListReviews(ctx context.Context) ([]Review, error) {
	rows, err := s.db.Query(ctx, `SELECT `+reviewColumns+` FROM reviews ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	reviews := []Review{}
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, r)
	}
	return reviews, rows.Err()
}
