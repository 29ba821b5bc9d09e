package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/studypulse/notify-engine/internal/notify/domain"
	"github.com/studypulse/notify-engine/internal/notify/infrastructure/push"
	"github.com/studypulse/notify-engine/internal/notify/infrastructure/ws"
	"github.com/studypulse/notify-engine/internal/notify/template"
)

// LiveEmitter is the live connection registry as the service sees it.
type LiveEmitter interface {
	Emit(userID uuid.UUID, event string, data any) bool
	Connected(userID uuid.UUID) bool
}

// PushDispatcher fans a message out to the user's devices.
type PushDispatcher interface {
	Dispatch(ctx context.Context, userID uuid.UUID, msg push.Message) push.Result
}

// NotifyResult reports what happened on each channel. Only persistence can
// fail a Notify call; the channel outcomes are attached for observability.
type NotifyResult struct {
	Notification  *domain.Notification `json:"notification"`
	LiveDelivered bool                 `json:"live_delivered"`
	Push          *push.Result         `json:"push,omitempty"`
}

// NotificationService is the single entry point feature code uses to notify
// a user. It formats, persists, then best-effort delivers over the live
// channel and via push.
type NotificationService struct {
	repo   domain.NotificationRepository
	live   LiveEmitter
	pusher PushDispatcher
	logger *slog.Logger

	syncPush bool
	pushes   sync.WaitGroup
}

type Option func(*NotificationService)

func WithLogger(logger *slog.Logger) Option {
	return func(s *NotificationService) { s.logger = logger }
}

// WithSynchronousPush makes Notify wait for the push dispatch and return its
// result. Used by tests and batch producers; the default is a background
// dispatch whose outcome is logged.
func WithSynchronousPush() Option {
	return func(s *NotificationService) { s.syncPush = true }
}

func NewNotificationService(repo domain.NotificationRepository, live LiveEmitter, pusher PushDispatcher, opts ...Option) *NotificationService {
	s := &NotificationService{
		repo:   repo,
		live:   live,
		pusher: pusher,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Notify formats and persists a notification, then attempts delivery.
// Persistence failure is the only error: once the record is durable, a dead
// socket or a flaky push gateway cannot fail the call.
func (s *NotificationService) Notify(ctx context.Context, userID uuid.UUID, kind domain.Kind, payload domain.Payload) (NotifyResult, error) {
	msg, missing := template.Format(kind, payload)
	if len(missing) > 0 {
		s.logger.Warn("notification payload missing template fields",
			"kind", kind, "user_id", userID, "fields", missing)
	}

	now := time.Now()
	n := &domain.Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Title:     msg.Title,
		Body:      msg.Body,
		Link:      msg.Link,
		Metadata:  domain.Metadata(payload),
		CreatedAt: now,
		ExpiresAt: now.Add(domain.TTL),
	}
	if err := s.repo.Create(ctx, n); err != nil {
		return NotifyResult{}, fmt.Errorf("persist notification: %w", err)
	}

	res := NotifyResult{Notification: n}

	if s.live.Emit(userID, ws.EventNewNotification, n) {
		res.LiveDelivered = true
		s.emitUnreadCount(ctx, userID)
	}

	// Push always complements live delivery: the user may be connected on
	// one device and away from another.
	pushMsg := push.Message{Title: n.Title, Body: n.Body, Data: pushData(n)}
	if s.syncPush {
		r := s.pusher.Dispatch(ctx, userID, pushMsg)
		res.Push = &r
	} else {
		s.pushes.Add(1)
		go func() {
			defer s.pushes.Done()
			r := s.pusher.Dispatch(context.Background(), userID, pushMsg)
			s.logger.Info("push dispatch finished",
				"user_id", userID, "kind", kind,
				"sent", r.Sent, "invalid", len(r.Invalid), "transient", len(r.Transient))
		}()
	}

	return res, nil
}

// WaitPushes blocks until all background push dispatches have finished.
// Called on shutdown so in-flight fan-outs are not abandoned silently.
func (s *NotificationService) WaitPushes() {
	s.pushes.Wait()
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, page, pageSize int) ([]domain.Notification, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}
	return s.repo.ListByUser(ctx, userID, pageSize, (page-1)*pageSize)
}

func (s *NotificationService) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	if err := s.repo.MarkAsRead(ctx, notificationID, userID); err != nil {
		return err
	}
	s.emitUnreadCount(ctx, userID)
	return nil
}

func (s *NotificationService) MarkAllAsRead(ctx context.Context, userID uuid.UUID) error {
	if err := s.repo.MarkAllAsRead(ctx, userID); err != nil {
		return err
	}
	s.emitUnreadCount(ctx, userID)
	return nil
}

func (s *NotificationService) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// emitUnreadCount pushes a fresh count to the user's live session, if any.
// The count is always recomputed from the store.
func (s *NotificationService) emitUnreadCount(ctx context.Context, userID uuid.UUID) {
	count, err := s.repo.UnreadCount(ctx, userID)
	if err != nil {
		s.logger.Warn("unread count refresh failed", "user_id", userID, "error", err)
		return
	}
	s.live.Emit(userID, ws.EventUnreadCount, map[string]int{"count": count})
}

func pushData(n *domain.Notification) map[string]any {
	data := make(map[string]any, len(n.Metadata)+3)
	for k, v := range n.Metadata {
		data[k] = v
	}
	data["notification_id"] = n.ID.String()
	data["kind"] = string(n.Kind)
	data["link"] = n.Link
	return data
}
