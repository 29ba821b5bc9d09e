package application_test

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/studypulse/notify-engine/internal/notify/domain"
	"github.com/studypulse/notify-engine/internal/notify/infrastructure/push"
)

// memRepo is an in-memory NotificationRepository for service tests.
type memRepo struct {
	mu         sync.Mutex
	records    []domain.Notification
	failCreate error
}

func (r *memRepo) Create(_ context.Context, n *domain.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failCreate != nil {
		return r.failCreate
	}
	r.records = append(r.records, *n)
	return nil
}

func (r *memRepo) ListByUser(_ context.Context, userID uuid.UUID, limit, offset int) ([]domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Notification
	for _, n := range r.records {
		if n.UserID == userID && n.ExpiresAt.After(time.Now()) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *memRepo) MarkAsRead(_ context.Context, notificationID, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].ID == notificationID && r.records[i].UserID == userID {
			r.records[i].IsRead = true
			return nil
		}
	}
	return domain.ErrNotificationNotFound
}

func (r *memRepo) MarkAllAsRead(_ context.Context, userID uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.records {
		if r.records[i].UserID == userID {
			r.records[i].IsRead = true
		}
	}
	return nil
}

func (r *memRepo) UnreadCount(_ context.Context, userID uuid.UUID) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for _, n := range r.records {
		if n.UserID == userID && !n.IsRead && n.ExpiresAt.After(time.Now()) {
			count++
		}
	}
	return count, nil
}

func (r *memRepo) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.records[:0]
	var deleted int64
	for _, n := range r.records {
		if n.ExpiresAt.After(now) {
			kept = append(kept, n)
		} else {
			deleted++
		}
	}
	r.records = kept
	return deleted, nil
}

func (r *memRepo) get(id uuid.UUID) (domain.Notification, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.records {
		if n.ID == id {
			return n, true
		}
	}
	return domain.Notification{}, false
}

type liveEvent struct {
	userID uuid.UUID
	event  string
	data   any
}

// fakeLive records emits and reports a fixed connection state.
type fakeLive struct {
	mu        sync.Mutex
	connected bool
	events    []liveEvent
}

func (l *fakeLive) Emit(userID uuid.UUID, event string, data any) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.connected {
		return false
	}
	l.events = append(l.events, liveEvent{userID: userID, event: event, data: data})
	return true
}

func (l *fakeLive) Connected(uuid.UUID) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.connected
}

func (l *fakeLive) eventNames() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	names := make([]string, len(l.events))
	for i, e := range l.events {
		names[i] = e.event
	}
	return names
}

// tableGateway classifies sends by a per-token error table.
type tableGateway struct {
	mu   sync.Mutex
	errs map[string]error
	sent []string
}

func (g *tableGateway) Send(_ context.Context, token string, _ push.Message) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sent = append(g.sent, token)
	return g.errs[token]
}

func (g *tableGateway) sentTokens() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.sent...)
}
