// Package store provides session persistence. Stores are interface-driven
// so the in-memory default and the Redis-backed implementation can be
// swapped without rewiring the service.
package store

import (
	"context"
	"errors"

	"saveedit/internal/saves/models"
)

// ErrNotFound is returned when a session does not exist or has expired.
var ErrNotFound = errors.New("session not found")

// SessionStore persists editing sessions for their TTL.
type SessionStore interface {
	Save(ctx context.Context, session models.Session) error
	FindByID(ctx context.Context, id string) (models.Session, error)
	Delete(ctx context.Context, id string) error
}
