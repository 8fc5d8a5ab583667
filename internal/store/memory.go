package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/counselops/clearance/internal/core/model"
)

// MemoryStore is a mutex-guarded in-memory ConflictStore. Not distributed,
// not durable; intended for tests and local development.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]model.ConflictRecord
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]model.ConflictRecord)}
}

func (s *MemoryStore) Create(ctx context.Context, rec model.ConflictRecord) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if rec.ID == "" {
		rec.ID = uuid.New().String()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = time.Now().UTC()
	}
	s.records[rec.ID] = rec
	return rec.ID, nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (model.ConflictRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return model.ConflictRecord{}, ErrNotFound
	}
	return rec, nil
}

func (s *MemoryStore) UpdateResolution(ctx context.Context, id string, resolution model.Resolution, resolverID string, at time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return false, nil
	}
	rec.Resolution = resolution
	rec.ResolvedBy = resolverID
	rec.ResolvedAt = &at
	s.records[id] = rec
	return true, nil
}

func (s *MemoryStore) ListUnresolved(ctx context.Context, firmID, userID string, since time.Time) ([]model.ConflictRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.ConflictRecord
	for _, rec := range s.records {
		if rec.FirmID != firmID || rec.CreatedBy != userID {
			continue
		}
		if rec.Resolution != model.ResolutionNone || rec.CreatedAt.Before(since) {
			continue
		}
		out = append(out, rec)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
