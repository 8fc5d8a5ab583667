// Package store persists conflict records. The core only depends on the
// ConflictStore interface; the Postgres implementation is the production
// backend and the in-memory one backs tests.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/counselops/clearance/internal/core/model"
)

var ErrNotFound = errors.New("conflict record not found")

type ConflictStore interface {
	// Create persists a new record and returns its assigned id.
	Create(ctx context.Context, rec model.ConflictRecord) (string, error)

	// Get returns the record or ErrNotFound.
	Get(ctx context.Context, id string) (model.ConflictRecord, error)

	// UpdateResolution applies a resolution to the record. It reports false
	// (with a nil error) when the record does not exist; the caller decides
	// what that means. An already-resolved record is overwritten.
	UpdateResolution(ctx context.Context, id string, resolution model.Resolution, resolverID string, at time.Time) (bool, error)

	// ListUnresolved returns the user's unresolved records created after the
	// given instant, newest first.
	ListUnresolved(ctx context.Context, firmID, userID string, since time.Time) ([]model.ConflictRecord, error)
}
