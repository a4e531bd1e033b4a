package server

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/playperu/pinpoint/internal/pinpoint"
	"github.com/playperu/pinpoint/internal/round"
)

// Session is one player working through one level. It owns a round.Round and
// serializes every call on it.
type Session struct {
	ID        string
	LevelID   string
	LevelName string

	mu       sync.Mutex
	round    *round.Round
	clock    func() time.Time
	lastSeen atomic.Int64
}

func (s *Session) touch() { s.lastSeen.Store(s.clock().UnixNano()) }

func (s *Session) idleSince() time.Time { return time.Unix(0, s.lastSeen.Load()) }

// Sessions is the in-memory registry of active sessions. Game progress is not
// persisted: a restart drops every session.
type Sessions struct {
	cfg round.Config
	now func() time.Time

	mu   sync.RWMutex
	byID map[string]*Session
}

func NewSessions(cfg round.Config) *Sessions {
	return &Sessions{
		cfg:  cfg,
		now:  time.Now,
		byID: make(map[string]*Session),
	}
}

// Start creates a session on lvl. It fails if lvl cannot be played.
func (s *Sessions) Start(lvl pinpoint.Level) (*Session, error) {
	rd, err := round.New(lvl, s.cfg)
	if err != nil {
		return nil, fmt.Errorf("starting round on level %q: %w", lvl.ID, err)
	}

	sess := &Session{
		ID:        uuid.NewString(),
		LevelID:   lvl.ID,
		LevelName: lvl.Name,
		round:     rd,
		clock:     func() time.Time { return s.now() },
	}
	sess.touch()

	s.mu.Lock()
	s.byID[sess.ID] = sess
	s.mu.Unlock()
	return sess, nil
}

func (s *Sessions) Get(id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.byID[id]
	s.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	sess.touch()
	return sess, nil
}

func (s *Sessions) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[id]; !ok {
		return ErrNotFound
	}
	delete(s.byID, id)
	return nil
}

func (s *Sessions) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byID)
}

// Sweep drops sessions idle for longer than ttl and returns their IDs.
func (s *Sessions) Sweep(ttl time.Duration) []string {
	cutoff := s.now().Add(-ttl)

	s.mu.Lock()
	defer s.mu.Unlock()

	var dropped []string
	for id, sess := range s.byID {
		if sess.idleSince().Before(cutoff) {
			delete(s.byID, id)
			dropped = append(dropped, id)
		}
	}
	return dropped
}

// RunSweeper calls Sweep every interval until ctx is done. onSweep, if not
// nil, receives the IDs dropped by each sweep.
func (s *Sessions) RunSweeper(ctx context.Context, ttl, interval time.Duration, onSweep func([]string)) error {
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			dropped := s.Sweep(ttl)
			if onSweep != nil && len(dropped) > 0 {
				onSweep(dropped)
			}
		}
	}
}
