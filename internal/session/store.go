package session

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"

	"artpay-checkout/internal/domain"
)

// Store owns session state and guards against two checkout runs for the
// same session overlapping inside this process.
type Store struct {
	repo   Repository
	logger *zap.Logger
	newID  func() string

	mu       sync.Mutex
	inFlight map[string]struct{}
}

func NewStore(repo Repository, logger *zap.Logger) *Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		repo:     repo,
		logger:   logger,
		newID:    func() string { return ulid.Make().String() },
		inFlight: make(map[string]struct{}),
	}
}

// Create opens an idle session for userID. A zero userID is an anonymous visitor.
func (s *Store) Create(ctx context.Context, userID int64) (*State, error) {
	if userID < 0 {
		return nil, fmt.Errorf("user id must not be negative")
	}
	return s.repo.Create(ctx, State{
		ID:     s.newID(),
		UserID: userID,
		Phase:  PhaseIdle,
	})
}

func (s *Store) Get(ctx context.Context, id string) (*State, error) {
	return s.repo.Get(ctx, id)
}

// Begin claims the session for a checkout run and moves it to locating.
// A concurrent Begin for the same id fails with domain.ErrAlreadyProcessing
// until Release is called. The claim is held in this process only: a
// persisted locating or reconciling phase is treated as stale, so replicas
// sharing a Postgres store can run the same session concurrently.
func (s *Store) Begin(ctx context.Context, id string) (*State, error) {
	if !s.claim(id) {
		return nil, domain.ErrAlreadyProcessing
	}

	st, err := s.repo.Get(ctx, id)
	if err != nil {
		s.Release(id)
		return nil, err
	}

	switch {
	case st.Phase == PhaseTerminal:
		st.ClearOrder()
		st.Phase = PhaseIdle
	case st.Phase.Busy():
		// Left behind by a run that never finished; nothing owns it now.
		s.logger.Warn("resetting stale session phase",
			zap.String("session_id", id),
			zap.String("phase", string(st.Phase)),
		)
		st.Phase = PhaseIdle
	case !st.Phase.Valid():
		st.Phase = PhaseIdle
	}

	if err := st.Transition(PhaseLocating); err != nil {
		s.Release(id)
		return nil, err
	}
	if err := s.repo.Save(ctx, *st); err != nil {
		s.Release(id)
		return nil, fmt.Errorf("save session: %w", err)
	}
	return st, nil
}

// Release ends the run started by Begin.
func (s *Store) Release(id string) {
	s.mu.Lock()
	delete(s.inFlight, id)
	s.mu.Unlock()
}

// Processing reports whether a run currently owns the session.
func (s *Store) Processing(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.inFlight[id]
	return ok
}

func (s *Store) Save(ctx context.Context, st *State) error {
	if st == nil {
		return errors.New("nil session state")
	}
	return s.repo.Save(ctx, *st)
}

// ClearFlags drops the continuity flags. Failure only costs a redundant
// lookup on the next load, so it is logged and not returned.
func (s *Store) ClearFlags(ctx context.Context, st *State) {
	st.Flags = Flags{}
	if err := s.repo.SaveFlags(ctx, st.ID, Flags{}); err != nil {
		s.logger.Warn("clear session flags",
			zap.String("session_id", st.ID),
			zap.Error(err),
		)
	}
}

// Reset returns the session to idle with no active order, as happens when
// the buyer leaves the payment pages.
func (s *Store) Reset(ctx context.Context, id string) (*State, error) {
	if !s.claim(id) {
		return nil, domain.ErrAlreadyProcessing
	}
	defer s.Release(id)

	st, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	st.ClearOrder()
	st.Phase = PhaseIdle
	if err := s.repo.Save(ctx, *st); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return st, nil
}

// Delete forgets the session entirely (logout).
func (s *Store) Delete(ctx context.Context, id string) error {
	if !s.claim(id) {
		return domain.ErrAlreadyProcessing
	}
	defer s.Release(id)
	return s.repo.Delete(ctx, id)
}

func (s *Store) claim(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.inFlight[id]; ok {
		return false
	}
	s.inFlight[id] = struct{}{}
	return true
}
