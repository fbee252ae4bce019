package session

import (
	"time"

	"artpay-checkout/internal/domain"
)

// Flags are continuity hints that survive reloads and payment redirects. They
// are never authoritative; the backend's order status is.
type Flags struct {
	ShowCheckout       bool  `json:"showCheckout"`
	RedirectToExternal bool  `json:"redirectToAcquistoEsterno"`
	CdsOrder           int64 `json:"cdsOrder,omitempty"`
}

func (f Flags) Empty() bool {
	return f == Flags{}
}

// State is everything the storefront knows about one buyer's checkout.
type State struct {
	ID            string                `json:"id"`
	UserID        int64                 `json:"userId"`
	Phase         Phase                 `json:"phase"`
	Order         *domain.Order         `json:"order,omitempty"`
	Profile       *domain.UserProfile   `json:"profile,omitempty"`
	Vendor        *domain.Vendor        `json:"vendor,omitempty"`
	PaymentMethod string                `json:"paymentMethod,omitempty"`
	Intent        *domain.PaymentIntent `json:"intent,omitempty"`
	Flags         Flags                 `json:"flags"`
	CreatedAt     time.Time             `json:"createdAt"`
	UpdatedAt     time.Time             `json:"updatedAt"`
}

// Loading is true while a checkout run is in flight.
func (s *State) Loading() bool {
	return s.Phase.Busy()
}

// Transition moves the state to next if the state machine allows it.
func (s *State) Transition(next Phase) error {
	if !s.Phase.CanTransition(next) {
		return transitionError(s.Phase, next)
	}
	s.Phase = next
	return nil
}

// ClearOrder drops every reference to the active order so a new one can become active.
func (s *State) ClearOrder() {
	s.Order = nil
	s.Vendor = nil
	s.Intent = nil
	s.PaymentMethod = ""
	s.Flags = Flags{}
}
