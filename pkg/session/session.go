// Package session keeps route editors keyed by session ID.
//
// A [Session] binds one [editor.Editor] to the demo user. Sessions live in
// memory only and expire after a sliding TTL: every successful lookup
// pushes the expiry forward.
//
// # Usage
//
//	store := session.NewMemoryStore(session.DefaultTTL)
//	go store.Run(ctx, time.Minute) // periodic cleanup
//
//	sess := session.New(editor.New(src), session.DefaultTTL)
//	store.Set(ctx, sess)
//
//	sess, err := store.Get(ctx, id)
//	if errors.Is(err, session.ErrNotFound) {
//	    // unknown or already cleaned up
//	}
package session

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/motorrutas/pkg/editor"
)

// Sentinel errors for session operations.
var (
	// ErrNotFound is returned when a session does not exist.
	ErrNotFound = errors.New("session not found")

	// ErrExpired is returned when a session has exceeded its TTL.
	ErrExpired = errors.New("session expired")
)

// DefaultTTL is the default idle lifetime of a session.
const DefaultTTL = 2 * time.Hour

// User identifies who owns a session.
type User struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DemoUser is the fixed identity every session is created for.
var DemoUser = User{ID: "demo", Name: "Usuario Demo"}

// Session is one user's editing session.
type Session struct {
	ID        string         `json:"id"`
	User      User           `json:"user"`
	Editor    *editor.Editor `json:"-"`
	CreatedAt time.Time      `json:"created_at"`
	ExpiresAt time.Time      `json:"expires_at"`
}

// New creates a session for [DemoUser] around ed.
func New(ed *editor.Editor, ttl time.Duration) *Session {
	now := time.Now()
	return &Session{
		ID:        uuid.NewString(),
		User:      DemoUser,
		Editor:    ed,
		CreatedAt: now,
		ExpiresAt: now.Add(ttl),
	}
}

// IsExpired reports whether the session has expired at now.
func (s *Session) IsExpired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}

// Store is the interface for session storage backends.
type Store interface {
	// Get retrieves a session by ID and extends its expiry.
	// Returns ErrNotFound if it doesn't exist and ErrExpired if it has
	// expired; an expired session is removed.
	Get(ctx context.Context, id string) (*Session, error)

	// Set stores a session.
	Set(ctx context.Context, s *Session) error

	// Delete removes a session. Deleting an unknown ID returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Cleanup removes expired sessions and returns how many were removed.
	Cleanup(ctx context.Context) (int, error)
}
