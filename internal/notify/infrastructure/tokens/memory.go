package tokens

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/studypulse/notify-engine/internal/notify/domain"
)

// MemoryRegistry is a mutex-guarded in-memory registry with the same
// semantics as the redis one. It backs tests and single-node dev setups.
type MemoryRegistry struct {
	mu    sync.Mutex
	lists map[uuid.UUID]domain.DeviceTokenList
}

func NewMemoryRegistry() *MemoryRegistry {
	return &MemoryRegistry{lists: make(map[uuid.UUID]domain.DeviceTokenList)}
}

func (r *MemoryRegistry) Add(_ context.Context, userID uuid.UUID, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.lists[userID] = r.lists[userID].Append(token)
	return nil
}

func (r *MemoryRegistry) Remove(_ context.Context, userID uuid.UUID, tokens []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if list, ok := r.lists[userID]; ok {
		r.lists[userID] = list.Without(tokens...)
	}
	return nil
}

func (r *MemoryRegistry) List(_ context.Context, userID uuid.UUID) (domain.DeviceTokenList, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.lists[userID]
	out := make(domain.DeviceTokenList, len(list))
	copy(out, list)
	return out, nil
}
