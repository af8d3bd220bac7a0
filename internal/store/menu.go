package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"
)

const menuColumns = `id, name, description, price, category, image_url, tags, available, created_at`

func scanMenuItem(row pgx.Row) (MenuItem, error) {
	var m MenuItem
	var price pgtype.Numeric
	err := row.Scan(&m.ID, &m.Name, &m.Description, &price, &m.Category,
		&m.ImageURL, &m.Tags, &m.Available, &m.CreatedAt)
	if err != nil {
		return MenuItem{}, err
	}
	m.Price, err = numericToDecimal(price)
	if err != nil {
		return MenuItem{}, fmt.Errorf("scanning menu price: %w", err)
	}
	return m, nil
}

type CreateMenuItemParams struct {
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	ImageURL    string
	Tags        []string
}

func (s *Store) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO menu_items (id, name, description, price, category, image_url, tags)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+menuColumns,
		uuid.New(), arg.Name, arg.Description, decimalToNumeric(arg.Price),
		arg.Category, arg.ImageURL, arg.Tags)
	return scanMenuItem(row)
}

func (s *Store) GetMenuItem(ctx context.Context, id uuid.UUID) (MenuItem, error) {
	row := s.db.QueryRow(ctx, `SELECT `+menuColumns+` FROM menu_items WHERE id = $1`, id)
	return scanMenuItem(row)
}

// ListMenuItems returns the whole menu grouped the way the customer page
// renders it: by category, then by name.
func (s *Store) ListMenuItems(ctx context.Context) ([]MenuItem, error) {
	rows, err := s.db.Query(ctx, `SELECT `+menuColumns+` FROM menu_items ORDER BY category, name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []MenuItem{}
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

type UpdateMenuItemParams struct {
	ID          uuid.UUID
	Name        string
	Description string
	Price       decimal.Decimal
	Category    string
	ImageURL    string
	Tags        []string
	Available   bool
}

func (s *Store) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE menu_items
		SET name = $2, description = $3, price = $4, category = $5,
		    image_url = $6, tags = $7, available = $8
		WHERE id = $1
		RETURNING `+menuColumns,
		arg.ID, arg.Name, arg.Description, decimalToNumeric(arg.Price),
		arg.Category, arg.ImageURL, arg.Tags, arg.Available)
	return scanMenuItem(row)
}

func (s *Store) DeleteMenuItem(ctx context.Context, id uuid.UUID) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM menu_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}
