package application_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/studypulse/notify-engine/internal/notify/application"
	"github.com/studypulse/notify-engine/internal/notify/domain"
)

func TestReaper_DeletesOnlyExpiredRecords(t *testing.T) {
	repo := &memRepo{}
	userID := uuid.New()
	now := time.Now()

	expired := domain.Notification{
		ID: uuid.New(), UserID: userID, Kind: domain.KindBadgeAwarded,
		CreatedAt: now.Add(-31 * 24 * time.Hour), ExpiresAt: now.Add(-24 * time.Hour),
	}
	fresh := domain.Notification{
		ID: uuid.New(), UserID: userID, Kind: domain.KindBadgeAwarded,
		CreatedAt: now, ExpiresAt: now.Add(domain.TTL),
	}
	require.NoError(t, repo.Create(context.Background(), &expired))
	require.NoError(t, repo.Create(context.Background(), &fresh))

	reaper := application.NewReaper(repo, 5*time.Millisecond, nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go reaper.Run(ctx)

	assert.Eventually(t, func() bool {
		_, ok := repo.get(expired.ID)
		return !ok
	}, time.Second, 5*time.Millisecond)

	_, ok := repo.get(fresh.ID)
	assert.True(t, ok)
}

func TestReaper_StopsOnContextCancel(t *testing.T) {
	repo := &memRepo{}
	reaper := application.NewReaper(repo, 5*time.Millisecond, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		reaper.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("reaper did not stop after cancel")
	}
}
