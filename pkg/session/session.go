// Package session provides officer session stores used for audit attribution.
package session

import (
	"context"
	"errors"
	"time"
)

// DefaultTTL applies when a store is constructed with a non-positive TTL.
const DefaultTTL = 12 * time.Hour

// ErrSessionNotFound is returned when a token resolves to no live session.
var ErrSessionNotFound = errors.New("session not found")

// Session links an opaque token to an officer name. It carries no
// authorization: the API only uses it to attribute mutations in the audit
// trail.
type Session struct {
	Token     string    `json:"token"`
	Officer   string    `json:"officer"`
	CreatedAt time.Time `json:"created_at"`
}

// Store is the session storage contract. Implementations expire sessions
// after their TTL; an expired session reads as not found.
type Store interface {
	Put(ctx context.Context, session Session) error
	Get(ctx context.Context, token string) (*Session, error)
	Delete(ctx context.Context, token string) error
	Close() error
}

// IsSessionNotFound checks if an error indicates a missing or expired session.
func IsSessionNotFound(err error) bool {
	return errors.Is(err, ErrSessionNotFound)
}
