package favourite

import (
	"context"
	"sort"
	"sync"
	"time"

	"artpay-checkout/internal/domain"
)

type memoryKey struct {
	userID   int64
	kind     domain.FavouriteKind
	entityID int64
}

type memoryRepo struct {
	mu    sync.Mutex
	items map[memoryKey]domain.Favourite
	now   func() time.Time
}

// NewMemory returns a process-local Repository.
func NewMemory() Repository {
	return &memoryRepo{items: make(map[memoryKey]domain.Favourite), now: time.Now}
}

func (r *memoryRepo) Add(_ context.Context, f domain.Favourite) (*domain.Favourite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := memoryKey{f.UserID, f.Kind, f.EntityID}
	if existing, ok := r.items[key]; ok {
		return &existing, nil
	}
	f.CreatedAt = r.now().UTC()
	r.items[key] = f
	return &f, nil
}

func (r *memoryRepo) Remove(_ context.Context, userID int64, kind domain.FavouriteKind, entityID int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := memoryKey{userID, kind, entityID}
	if _, ok := r.items[key]; !ok {
		return domain.ErrNotFound
	}
	delete(r.items, key)
	return nil
}

func (r *memoryRepo) ListByUser(_ context.Context, userID int64) ([]domain.Favourite, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]domain.Favourite, 0)
	for k, f := range r.items {
		if k.userID == userID {
			out = append(out, f)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		if out[i].Kind != out[j].Kind {
			return out[i].Kind < out[j].Kind
		}
		return out[i].EntityID < out[j].EntityID
	})
	return out, nil
}
