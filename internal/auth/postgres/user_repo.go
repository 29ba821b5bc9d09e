package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/studypulse/notify-engine/internal/auth"
)

var ErrUserNotFound = errors.New("user not found")

type PgUserRepository struct {
	db *sqlx.DB
}

func NewPgUserRepository(db *sqlx.DB) *PgUserRepository {
	return &PgUserRepository{db: db}
}

func (r *PgUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*auth.User, error) {
	user := &auth.User{}
	query := `SELECT id, email, password_changed_at, created_at FROM users WHERE id = $1`
	err := r.db.GetContext(ctx, user, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return user, nil
}
