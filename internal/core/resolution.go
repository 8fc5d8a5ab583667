package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/counselops/clearance/internal/core/model"
	"github.com/counselops/clearance/internal/store"
)

// ErrInvalidResolution rejects resolution values outside the lifecycle
// contract before anything touches the store.
var ErrInvalidResolution = fmt.Errorf("resolution must be one of %q, %q, %q",
	model.ResolutionRefused, model.ResolutionWaiverObtained, model.ResolutionFalsePositive)

// Resolver owns the state-transition rules over persisted conflict records:
// Active -> Resolved (refused, waiver_obtained) or Active -> Dismissed
// (false_positive). Resolving an already-resolved record overwrites the
// previous outcome; the last resolution wins.
type Resolver struct {
	store store.ConflictStore
	log   *zap.Logger
	now   func() time.Time
}

func NewResolver(s store.ConflictStore, log *zap.Logger) *Resolver {
	return &Resolver{store: s, log: log, now: time.Now}
}

// Resolve applies the resolution, stamping the resolver identity and the
// transition time, and returns the record's new status. Store failures leave
// the record untouched and come back as errors, never as partial state.
func (r *Resolver) Resolve(ctx context.Context, recordID string, resolution model.Resolution, resolverID string) (model.Status, error) {
	if !resolution.Valid() {
		return "", ErrInvalidResolution
	}

	if _, err := r.store.Get(ctx, recordID); err != nil {
		return "", fmt.Errorf("failed to load conflict %s: %w", recordID, err)
	}

	ok, err := r.store.UpdateResolution(ctx, recordID, resolution, resolverID, r.now().UTC())
	if err != nil {
		return "", fmt.Errorf("failed to resolve conflict %s: %w", recordID, err)
	}
	if !ok {
		return "", fmt.Errorf("failed to resolve conflict %s: %w", recordID, store.ErrNotFound)
	}

	status := model.StatusFor(resolution)
	r.log.Info("conflict resolved",
		zap.String("record_id", recordID),
		zap.String("resolution", string(resolution)),
		zap.String("resolved_by", resolverID),
		zap.String("status", string(status)))
	return status, nil
}
