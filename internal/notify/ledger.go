package notify

import (
	"context"
	"strconv"
	"sync"
)

// KindOrderCompleted is the ledger kind for completed-order notifications.
const KindOrderCompleted = "order.completed"

// Ledger records which notifications were already sent so each is sent at most once.
type Ledger interface {
	// Claim returns true when the (order, kind) pair was not claimed before.
	Claim(ctx context.Context, orderID int64, kind string) (bool, error)
	// Release drops a claim so a later attempt can retry.
	Release(ctx context.Context, orderID int64, kind string) error
}

// MemoryLedger is a process-local Ledger.
type MemoryLedger struct {
	mu      sync.Mutex
	claimed map[string]struct{}
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{claimed: make(map[string]struct{})}
}

func (l *MemoryLedger) Claim(_ context.Context, orderID int64, kind string) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	key := ledgerKey(orderID, kind)
	if _, ok := l.claimed[key]; ok {
		return false, nil
	}
	l.claimed[key] = struct{}{}
	return true, nil
}

func (l *MemoryLedger) Release(_ context.Context, orderID int64, kind string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.claimed, ledgerKey(orderID, kind))
	return nil
}

func ledgerKey(orderID int64, kind string) string {
	return strconv.FormatInt(orderID, 10) + "/" + kind
}
