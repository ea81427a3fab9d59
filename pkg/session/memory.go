package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process [Store]. Get returns a copy of the stored
// session sharing its Editor, so callers may read it without the store lock.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates a store whose lookups extend expiry by ttl.
// A non-positive ttl uses DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

// TTL returns the sliding lifetime applied on lookup.
func (s *MemoryStore) TTL() time.Duration { return s.ttl }

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	now := s.now()
	if sess.IsExpired(now) {
		delete(s.sessions, id)
		return nil, ErrExpired
	}
	sess.ExpiresAt = now.Add(s.ttl)
	cp := *sess
	return &cp, nil
}

// Set stores a copy of sess. Later changes to sess are not seen by the store.
func (s *MemoryStore) Set(_ context.Context, sess *Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := *sess
	s.sessions[sess.ID] = &cp
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return ErrNotFound
	}
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) Cleanup(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	var n int
	for id, sess := range s.sessions {
		if sess.IsExpired(now) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

// Len returns the number of stored sessions, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Run calls Cleanup every interval until ctx is done.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			s.Cleanup(ctx)
		}
	}
}

var _ Store = (*MemoryStore)(nil)
