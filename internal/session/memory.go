package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"artpay-checkout/internal/domain"
)

// MemoryRepository keeps sessions in process memory. States are deep-copied on
// the way in and out so callers never share pointers with the store.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string][]byte
	now      func() time.Time
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		sessions: make(map[string][]byte),
		now:      time.Now,
	}
}

func (r *MemoryRepository) Create(_ context.Context, st State) (*State, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[st.ID]; ok {
		return nil, domain.ErrAlreadyExists
	}
	now := r.now().UTC()
	st.CreatedAt = now
	st.UpdatedAt = now
	raw, err := json.Marshal(st)
	if err != nil {
		return nil, err
	}
	r.sessions[st.ID] = raw
	return &st, nil
}

func (r *MemoryRepository) Get(_ context.Context, id string) (*State, error) {
	r.mu.RLock()
	raw, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrNotFound
	}
	var st State
	if err := json.Unmarshal(raw, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

func (r *MemoryRepository) Save(_ context.Context, st State) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[st.ID]; !ok {
		return domain.ErrNotFound
	}
	st.UpdatedAt = r.now().UTC()
	raw, err := json.Marshal(st)
	if err != nil {
		return err
	}
	r.sessions[st.ID] = raw
	return nil
}

func (r *MemoryRepository) SaveFlags(ctx context.Context, id string, flags Flags) error {
	st, err := r.Get(ctx, id)
	if err != nil {
		return err
	}
	st.Flags = flags
	return r.Save(ctx, *st)
}

func (r *MemoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return domain.ErrNotFound
	}
	delete(r.sessions, id)
	return nil
}
