package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type NotificationRepository interface {
	Create(ctx context.Context, notification *Notification) error
	ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Notification, error)
	MarkAsRead(ctx context.Context, notificationID, userID uuid.UUID) error
	MarkAllAsRead(ctx context.Context, userID uuid.UUID) error
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// TokenRegistry is the per-user device token store. Implementations must
// make every mutation atomic per user: two concurrent Adds for the same user
// may not lose either token.
type TokenRegistry interface {
	Add(ctx context.Context, userID uuid.UUID, token string) error
	Remove(ctx context.Context, userID uuid.UUID, tokens []string) error
	List(ctx context.Context, userID uuid.UUID) (DeviceTokenList, error)
}
