package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/studypulse/notify-engine/internal/notify/domain"
)

// PgNotificationRepository persists notification records. Every read filters
// on expires_at so expired records are unobservable even before the reaper
// reclaims them.
type PgNotificationRepository struct {
	db *sqlx.DB
}

func NewPgNotificationRepository(db *sqlx.DB) *PgNotificationRepository {
	return &PgNotificationRepository{db: db}
}

func (r *PgNotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	if n.ExpiresAt.IsZero() {
		n.ExpiresAt = n.CreatedAt.Add(domain.TTL)
	}
	query := `
		INSERT INTO notifications (id, user_id, kind, title, body, link, metadata, is_read, created_at, expires_at)
		VALUES (:id, :user_id, :kind, :title, :body, :link, :metadata, :is_read, :created_at, :expires_at)
	`
	_, err := r.db.NamedExecContext(ctx, query, n)
	return err
}

func (r *PgNotificationRepository) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.Notification, error) {
	query := `
		SELECT * FROM notifications
		WHERE user_id = $1 AND expires_at > now()
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`
	notifications := []domain.Notification{}
	if err := r.db.SelectContext(ctx, &notifications, query, userID, limit, offset); err != nil {
		return nil, err
	}
	return notifications, nil
}

// MarkAsRead is idempotent: marking an already-read notification changes
// nothing. A missing or foreign-owned id reports ErrNotificationNotFound.
func (r *PgNotificationRepository) MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE id = $1 AND user_id = $2 AND expires_at > now()
	`
	res, err := r.db.ExecContext(ctx, query, notificationID, userID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotificationNotFound
	}
	return nil
}

func (r *PgNotificationRepository) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	query := `
		UPDATE notifications
		SET is_read = TRUE
		WHERE user_id = $1 AND is_read = FALSE
	`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

func (r *PgNotificationRepository) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	query := `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = $1 AND is_read = FALSE AND expires_at > now()
	`
	var count int
	err := r.db.GetContext(ctx, &count, query, userID)
	return count, err
}

// DeleteExpired reclaims records past their TTL. Reads already exclude them,
// so the reaper cadence only affects storage, not visibility.
func (r *PgNotificationRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notifications WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
