package server

import (
	"encoding/json"
	"sync"
)

const (
	EventGuess          = "guess"
	EventTargetFound    = "target_found"
	EventTargetChanged  = "target_changed"
	EventOutOfGuesses   = "out_of_guesses"
	EventLevelComplete  = "level_complete"
	EventSessionExpired = "session_expired"
)

// SSEEvent is the payload published to session subscribers.
type SSEEvent struct {
	Type             string   `json:"type"`
	TargetName       string   `json:"targetName,omitempty"`
	Position         int      `json:"position,omitempty"`
	DistanceKm       *float64 `json:"distanceKm,omitempty"`
	GuessCount       int      `json:"guessCount,omitempty"`
	GuessesRemaining *int     `json:"guessesRemaining,omitempty"`
}

// Broker is an in-process pub/sub for SSE events, keyed by session ID.
type Broker struct {
	mu   sync.RWMutex
	subs map[string]map[chan []byte]struct{}
}

func NewBroker() *Broker {
	return &Broker{
		subs: make(map[string]map[chan []byte]struct{}),
	}
}

// Subscribe returns a channel that receives JSON-encoded SSE events for the given session.
func (b *Broker) Subscribe(sessionID string) chan []byte {
	ch := make(chan []byte, 16)
	b.mu.Lock()
	if b.subs[sessionID] == nil {
		b.subs[sessionID] = make(map[chan []byte]struct{})
	}
	b.subs[sessionID][ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes a channel from the session's subscribers.
func (b *Broker) Unsubscribe(sessionID string, ch chan []byte) {
	b.mu.Lock()
	delete(b.subs[sessionID], ch)
	if len(b.subs[sessionID]) == 0 {
		delete(b.subs, sessionID)
	}
	b.mu.Unlock()
}

// Publish sends events, in order, to all subscribers of the given session.
func (b *Broker) Publish(sessionID string, events ...SSEEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, event := range events {
		data, _ := json.Marshal(event)
		for ch := range b.subs[sessionID] {
			select {
			case ch <- data:
			default:
				// Drop if subscriber is slow.
			}
		}
	}
}

// Expire sends session_expired to every subscriber of the given sessions and
// closes their channels.
func (b *Broker) Expire(sessionIDs ...string) {
	data, _ := json.Marshal(SSEEvent{Type: EventSessionExpired})

	b.mu.Lock()
	defer b.mu.Unlock()

	for _, id := range sessionIDs {
		for ch := range b.subs[id] {
			select {
			case ch <- data:
			default:
			}
			close(ch)
		}
		delete(b.subs, id)
	}
}

// Subscribers returns the number of listeners on a session.
func (b *Broker) Subscribers(sessionID string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[sessionID])
}
