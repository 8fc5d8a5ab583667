package core

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/counselops/clearance/internal/core/model"
	"github.com/counselops/clearance/internal/store"
)

func newResolverWithRecord(t *testing.T) (*Resolver, *store.MemoryStore, string) {
	t.Helper()
	s := store.NewMemoryStore()
	id, err := s.Create(context.Background(), model.ConflictRecord{
		FirmID:      "firm-1",
		SubjectID:   "e-1",
		SubjectKind: model.KindPerson,
		Type:        model.TypeFamilyTie,
		Score:       95,
		CreatedBy:   "u-1",
	})
	require.NoError(t, err)
	return NewResolver(s, zap.NewNop()), s, id
}

func TestResolve_FalsePositiveDismisses(t *testing.T) {
	r, s, id := newResolverWithRecord(t)

	status, err := r.Resolve(context.Background(), id, model.ResolutionFalsePositive, "u-2")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDismissed, status)

	rec, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.ResolutionFalsePositive, rec.Resolution)
	assert.Equal(t, "u-2", rec.ResolvedBy)
	require.NotNil(t, rec.ResolvedAt)
	assert.WithinDuration(t, time.Now().UTC(), *rec.ResolvedAt, time.Minute)
	assert.Equal(t, model.StatusDismissed, rec.Status())
}

func TestResolve_WaiverAndRefusalResolve(t *testing.T) {
	for _, resolution := range []model.Resolution{model.ResolutionWaiverObtained, model.ResolutionRefused} {
		r, _, id := newResolverWithRecord(t)
		status, err := r.Resolve(context.Background(), id, resolution, "u-2")
		require.NoError(t, err)
		assert.Equal(t, model.StatusResolved, status)
	}
}

func TestResolve_InvalidResolution(t *testing.T) {
	r, s, id := newResolverWithRecord(t)

	_, err := r.Resolve(context.Background(), id, "shredded_the_file", "u-2")
	assert.ErrorIs(t, err, ErrInvalidResolution)

	// Nothing was written.
	rec, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.StatusActive, rec.Status())
}

func TestResolve_UnknownRecord(t *testing.T) {
	r := NewResolver(store.NewMemoryStore(), zap.NewNop())

	_, err := r.Resolve(context.Background(), "missing", model.ResolutionRefused, "u-2")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestResolve_SecondResolutionOverwrites(t *testing.T) {
	r, s, id := newResolverWithRecord(t)

	_, err := r.Resolve(context.Background(), id, model.ResolutionWaiverObtained, "u-2")
	require.NoError(t, err)

	status, err := r.Resolve(context.Background(), id, model.ResolutionFalsePositive, "u-3")
	require.NoError(t, err)
	assert.Equal(t, model.StatusDismissed, status)

	rec, err := s.Get(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, model.ResolutionFalsePositive, rec.Resolution)
	assert.Equal(t, "u-3", rec.ResolvedBy)
}

func TestStatusDerivation(t *testing.T) {
	assert.Equal(t, model.StatusActive, model.StatusFor(model.ResolutionNone))
	assert.Equal(t, model.StatusDismissed, model.StatusFor(model.ResolutionFalsePositive))
	assert.Equal(t, model.StatusResolved, model.StatusFor(model.ResolutionRefused))
	assert.Equal(t, model.StatusResolved, model.StatusFor(model.ResolutionWaiverObtained))
}
