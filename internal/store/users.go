package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userColumns = `id, email, name, password_hash, role, preferences, created_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Name, &u.PasswordHash,
		&u.Role, &u.Preferences, &u.CreatedAt)
	return u, err
}

type CreateUserParams struct {
	Email        string
	Name         string
	PasswordHash string
	Role         string
}

func (s *Store) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := s.db.QueryRow(ctx, `
		INSERT INTO users (id, email, name, password_hash, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+userColumns,
		uuid.New(), arg.Email, arg.Name, arg.PasswordHash, arg.Role)
	return scanUser(row)
}

func (s *Store) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *Store) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email)
	return scanUser(row)
}

// UpdateUserPreferences stores the free-text dining preferences used by
// the recommendation prompt.
func (s *Store) UpdateUserPreferences(ctx context.Context, id uuid.UUID, preferences string) (User, error) {
	row := s.db.QueryRow(ctx, `
		UPDATE users SET preferences = $2 WHERE id = $1
		RETURNING `+userColumns, id, preferences)
	return scanUser(row)
}
