package ingest

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studypulse/notify-engine/internal/notify/application"
	"github.com/studypulse/notify-engine/internal/notify/domain"
)

type recordingNotifier struct {
	userID  uuid.UUID
	kind    domain.Kind
	payload domain.Payload
	calls   int
	err     error
}

func (n *recordingNotifier) Notify(_ context.Context, userID uuid.UUID, kind domain.Kind, payload domain.Payload) (application.NotifyResult, error) {
	n.calls++
	n.userID = userID
	n.kind = kind
	n.payload = payload
	return application.NotifyResult{}, n.err
}

func newTestConsumer(n Notifier) *Consumer {
	return &Consumer{notifier: n, logger: slog.Default()}
}

func TestHandle_ValidEvent(t *testing.T) {
	notifier := &recordingNotifier{}
	c := newTestConsumer(notifier)
	userID := uuid.New()

	msg := []byte(`{"user_id":"` + userID.String() + `","kind":"new_follower","payload":{"followerName":"bob","followerId":"4"}}`)
	require.NoError(t, c.handle(context.Background(), msg))

	assert.Equal(t, 1, notifier.calls)
	assert.Equal(t, userID, notifier.userID)
	assert.Equal(t, domain.KindNewFollower, notifier.kind)
	assert.Equal(t, "bob", notifier.payload["followerName"])
}

func TestHandle_MalformedJSONIsDropped(t *testing.T) {
	notifier := &recordingNotifier{}
	c := newTestConsumer(notifier)

	// Dropping returns nil so the message gets committed and never redelivered.
	require.NoError(t, c.handle(context.Background(), []byte(`{not json`)))
	assert.Zero(t, notifier.calls)
}

func TestHandle_BadUserIDIsDropped(t *testing.T) {
	notifier := &recordingNotifier{}
	c := newTestConsumer(notifier)

	msg := []byte(`{"user_id":"not-a-uuid","kind":"new_follower","payload":{}}`)
	require.NoError(t, c.handle(context.Background(), msg))
	assert.Zero(t, notifier.calls)
}

func TestHandle_UnknownKindIsDropped(t *testing.T) {
	notifier := &recordingNotifier{}
	c := newTestConsumer(notifier)

	msg := []byte(`{"user_id":"` + uuid.NewString() + `","kind":"password_reset","payload":{}}`)
	require.NoError(t, c.handle(context.Background(), msg))
	assert.Zero(t, notifier.calls)
}

func TestHandle_NotifyFailurePropagates(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("persist notification: db down")}
	c := newTestConsumer(notifier)

	msg := []byte(`{"user_id":"` + uuid.NewString() + `","kind":"badge_awarded","payload":{"badgeName":"x"}}`)
	err := c.handle(context.Background(), msg)
	assert.Error(t, err)
	assert.Equal(t, 1, notifier.calls)
}
