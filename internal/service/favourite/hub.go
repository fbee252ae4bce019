package favourite

import (
	"sync"

	"artpay-checkout/internal/domain"
)

// EventType says whether a favourite was added or removed.
type EventType string

const (
	EventAdded   EventType = "added"
	EventRemoved EventType = "removed"
)

// Event is published for every change to a user's favourites.
type Event struct {
	Type      EventType        `json:"type"`
	Favourite domain.Favourite `json:"favourite"`
}

const subscriberBuffer = 16

// Hub fans favourite changes out to the subscribers of the affected user.
// Publish never blocks: a subscriber whose buffer is full misses the event.
type Hub struct {
	mu     sync.RWMutex
	nextID int
	subs   map[int64]map[int]chan Event
}

func NewHub() *Hub {
	return &Hub{subs: make(map[int64]map[int]chan Event)}
}

// Subscribe returns a channel of events for userID and a func that closes it.
func (h *Hub) Subscribe(userID int64) (<-chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()
	id := h.nextID
	h.nextID++
	ch := make(chan Event, subscriberBuffer)
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[int]chan Event)
	}
	h.subs[userID][id] = ch

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[userID], id)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			close(ch)
		})
	}
}

// Publish delivers ev to every subscriber of the favourite's user and returns
// how many received it.
func (h *Hub) Publish(ev Event) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	delivered := 0
	for _, ch := range h.subs[ev.Favourite.UserID] {
		select {
		case ch <- ev:
			delivered++
		default:
		}
	}
	return delivered
}

// Subscribers counts the open subscriptions for userID.
func (h *Hub) Subscribers(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}
