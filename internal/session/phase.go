package session

import (
	"fmt"

	"artpay-checkout/internal/domain"
)

// Phase is where a session is in the checkout lifecycle.
type Phase string

const (
	PhaseIdle            Phase = "idle"
	PhaseLocating        Phase = "locating"
	PhaseReconciling     Phase = "reconciling"
	PhaseAwaitingPayment Phase = "awaiting_payment"
	PhaseTerminal        Phase = "terminal"
)

var transitions = map[Phase][]Phase{
	PhaseIdle:            {PhaseLocating},
	PhaseLocating:        {PhaseReconciling, PhaseAwaitingPayment, PhaseTerminal, PhaseIdle},
	PhaseReconciling:     {PhaseTerminal, PhaseIdle},
	PhaseAwaitingPayment: {PhaseLocating, PhaseIdle},
	PhaseTerminal:        {PhaseIdle},
}

// CanTransition reports whether moving from p to next is allowed.
func (p Phase) CanTransition(next Phase) bool {
	for _, allowed := range transitions[p] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Busy is true while a checkout run owns the session.
func (p Phase) Busy() bool {
	return p == PhaseLocating || p == PhaseReconciling
}

func (p Phase) Valid() bool {
	_, ok := transitions[p]
	return ok
}

func transitionError(from, to Phase) error {
	return fmt.Errorf("%w: %s -> %s", domain.ErrInvalidTransition, from, to)
}
