package application_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studypulse/notify-engine/internal/notify/application"
	"github.com/studypulse/notify-engine/internal/notify/domain"
	"github.com/studypulse/notify-engine/internal/notify/infrastructure/push"
	"github.com/studypulse/notify-engine/internal/notify/infrastructure/tokens"
	"github.com/studypulse/notify-engine/internal/notify/infrastructure/ws"
)

type serviceFixture struct {
	repo     *memRepo
	live     *fakeLive
	gateway  *tableGateway
	registry *tokens.MemoryRegistry
	service  *application.NotificationService
}

func newFixture(connected bool) *serviceFixture {
	repo := &memRepo{}
	live := &fakeLive{connected: connected}
	gateway := &tableGateway{errs: map[string]error{}}
	registry := tokens.NewMemoryRegistry()
	dispatcher := push.NewDispatcher(gateway, registry, time.Second, nil)
	service := application.NewNotificationService(repo, live, dispatcher, application.WithSynchronousPush())
	return &serviceFixture{repo: repo, live: live, gateway: gateway, registry: registry, service: service}
}

func TestNotify_PersistsAndFormatsRecord(t *testing.T) {
	f := newFixture(false)
	userID := uuid.New()

	res, err := f.service.Notify(context.Background(), userID, domain.KindCommentOnQuestion, domain.Payload{
		"commenterName": "alice",
		"questionTitle": "What is a channel?",
		"questionId":    "12",
		"commentId":     "3",
	})
	require.NoError(t, err)

	require.NotNil(t, res.Notification)
	assert.False(t, res.LiveDelivered)

	stored, ok := f.repo.get(res.Notification.ID)
	require.True(t, ok)
	assert.Equal(t, userID, stored.UserID)
	assert.Equal(t, domain.KindCommentOnQuestion, stored.Kind)
	assert.Equal(t, `alice commented on "What is a channel?"`, stored.Body)
	assert.Equal(t, "/questions/12#comment-3", stored.Link)
	assert.False(t, stored.IsRead)
	assert.Equal(t, "12", stored.Metadata["questionId"])
	assert.WithinDuration(t, stored.CreatedAt.Add(domain.TTL), stored.ExpiresAt, time.Second)
}

func TestNotify_PersistenceFailureAbortsDelivery(t *testing.T) {
	f := newFixture(true)
	f.repo.failCreate = errors.New("disk full")
	userID := uuid.New()
	require.NoError(t, f.registry.Add(context.Background(), userID, "tok"))

	_, err := f.service.Notify(context.Background(), userID, domain.KindNewFollower, domain.Payload{
		"followerName": "bob", "followerId": "9",
	})
	require.Error(t, err)

	// No partial notification: nothing on the live channel, nothing pushed.
	assert.Empty(t, f.live.eventNames())
	assert.Empty(t, f.gateway.sentTokens())
}

func TestNotify_OnlineUserGetsLiveEventAndFreshCount(t *testing.T) {
	f := newFixture(true)
	userID := uuid.New()

	res, err := f.service.Notify(context.Background(), userID, domain.KindCommentOnQuestion, domain.Payload{
		"commenterName": "alice", "questionTitle": "q", "questionId": "1", "commentId": "2",
	})
	require.NoError(t, err)

	assert.True(t, res.LiveDelivered)
	assert.Equal(t, []string{ws.EventNewNotification, ws.EventUnreadCount}, f.live.eventNames())

	// The emitted count reflects the freshly persisted record.
	last := f.live.events[len(f.live.events)-1]
	assert.Equal(t, map[string]int{"count": 1}, last.data)
}

func TestNotify_PushComplementsLiveDelivery(t *testing.T) {
	f := newFixture(true)
	userID := uuid.New()
	require.NoError(t, f.registry.Add(context.Background(), userID, "phone-1"))

	res, err := f.service.Notify(context.Background(), userID, domain.KindBadgeAwarded, domain.Payload{
		"badgeName": "gopher",
	})
	require.NoError(t, err)

	// Live delivery succeeded and push was still attempted.
	assert.True(t, res.LiveDelivered)
	require.NotNil(t, res.Push)
	assert.Equal(t, 1, res.Push.Sent)
	assert.Equal(t, []string{"phone-1"}, f.gateway.sentTokens())
}

func TestNotify_InvalidTokenPrunedRecordSurvives(t *testing.T) {
	f := newFixture(false)
	userID := uuid.New()
	ctx := context.Background()
	require.NoError(t, f.registry.Add(ctx, userID, "gone"))
	require.NoError(t, f.registry.Add(ctx, userID, "alive"))
	f.gateway.errs["gone"] = push.ErrInvalidToken

	res, err := f.service.Notify(ctx, userID, domain.KindMention, domain.Payload{
		"mentionerName": "dave", "contentType": "question", "questionId": "77",
	})
	require.NoError(t, err)

	require.NotNil(t, res.Push)
	assert.Equal(t, []string{"gone"}, res.Push.Invalid)

	remaining, err := f.registry.List(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, domain.DeviceTokenList{"alive"}, remaining)

	// The durable record is untouched by the push failure.
	stored, ok := f.repo.get(res.Notification.ID)
	require.True(t, ok)
	assert.False(t, stored.IsRead)
}

func TestNotify_MentionReplyVariantLink(t *testing.T) {
	f := newFixture(true)
	carol := uuid.New()

	res, err := f.service.Notify(context.Background(), carol, domain.KindMention, domain.Payload{
		"mentionerName": "alice",
		"contentType":   "reply",
		"questionId":    "31",
		"replyId":       "88",
	})
	require.NoError(t, err)

	assert.Equal(t, "alice mentioned you in a reply", res.Notification.Body)
	assert.Equal(t, "/questions/31#comment-88", res.Notification.Link)
}

func TestNotify_BackgroundPushIsWaitable(t *testing.T) {
	repo := &memRepo{}
	live := &fakeLive{}
	gateway := &tableGateway{errs: map[string]error{}}
	registry := tokens.NewMemoryRegistry()
	dispatcher := push.NewDispatcher(gateway, registry, time.Second, nil)
	service := application.NewNotificationService(repo, live, dispatcher)

	userID := uuid.New()
	require.NoError(t, registry.Add(context.Background(), userID, "tok"))

	res, err := service.Notify(context.Background(), userID, domain.KindBadgeAwarded, domain.Payload{"badgeName": "x"})
	require.NoError(t, err)
	assert.Nil(t, res.Push)

	service.WaitPushes()
	assert.Equal(t, []string{"tok"}, gateway.sentTokens())
}

func TestMarkAsRead_IdempotentAndReEmitsCount(t *testing.T) {
	f := newFixture(true)
	userID := uuid.New()
	ctx := context.Background()

	res, err := f.service.Notify(ctx, userID, domain.KindBadgeAwarded, domain.Payload{"badgeName": "x"})
	require.NoError(t, err)

	require.NoError(t, f.service.MarkAsRead(ctx, userID, res.Notification.ID))
	count, err := f.service.UnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// Second mark is a no-op on observable state.
	require.NoError(t, f.service.MarkAsRead(ctx, userID, res.Notification.ID))
	count, err = f.service.UnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, count)

	stored, _ := f.repo.get(res.Notification.ID)
	assert.True(t, stored.IsRead)

	// Every mutation ended with a fresh unread_count emit.
	names := f.live.eventNames()
	assert.Equal(t, ws.EventUnreadCount, names[len(names)-1])
}

func TestMarkAsRead_UnknownIDReportsNotFound(t *testing.T) {
	f := newFixture(false)

	err := f.service.MarkAsRead(context.Background(), uuid.New(), uuid.New())
	assert.True(t, errors.Is(err, domain.ErrNotificationNotFound))
}

func TestMarkAllAsRead_ClearsSevenUnread(t *testing.T) {
	f := newFixture(false)
	userID := uuid.New()
	ctx := context.Background()

	for i := 0; i < 7; i++ {
		_, err := f.service.Notify(ctx, userID, domain.KindPointsAwarded, domain.Payload{"points": i, "reason": "testing"})
		require.NoError(t, err)
	}
	count, err := f.service.UnreadCount(ctx, userID)
	require.NoError(t, err)
	require.Equal(t, 7, count)

	require.NoError(t, f.service.MarkAllAsRead(ctx, userID))

	count, err = f.service.UnreadCount(ctx, userID)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestList_PaginatesNewestFirst(t *testing.T) {
	f := newFixture(false)
	userID := uuid.New()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := f.service.Notify(ctx, userID, domain.KindBadgeAwarded, domain.Payload{"badgeName": "b"})
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}

	page1, err := f.service.List(ctx, userID, 1, 3)
	require.NoError(t, err)
	require.Len(t, page1, 3)
	page2, err := f.service.List(ctx, userID, 2, 3)
	require.NoError(t, err)
	require.Len(t, page2, 2)

	assert.True(t, page1[0].CreatedAt.After(page1[2].CreatedAt))
	assert.True(t, page1[2].CreatedAt.After(page2[0].CreatedAt) || page1[2].CreatedAt.Equal(page2[0].CreatedAt))
}
