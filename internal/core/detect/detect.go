// Package detect holds the eight conflict-pattern detectors. Each detector
// issues exactly one bounded traversal against the relationship graph and
// decodes the rows into typed candidates. Detectors return errors instead of
// swallowing them; deciding what a failed detector means for the overall
// check is the coordinator's job.
package detect

import (
	"context"
	"time"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j/dbtype"

	"github.com/counselops/clearance/internal/core/model"
	"github.com/counselops/clearance/internal/driver"
)

// Subject is the party being checked for conflicts.
type Subject struct {
	ID     string
	Kind   model.EntityKind
	FirmID string
}

type Detector interface {
	Type() model.ConflictType
	// AppliesTo reports whether the detector runs for a subject of the given
	// kind. Direct adversary, historical conflict and professional overlap
	// apply to everyone; family ties only to persons; the corporate patterns
	// only to companies.
	AppliesTo(kind model.EntityKind) bool
	Detect(ctx context.Context, subject Subject) ([]model.Candidate, error)
}

// Options bound every traversal. Zero values fall back to the defaults below.
type Options struct {
	RowLimit          int
	LookbackYears     int
	MaxOwnershipDepth int
	MinPartnerStake   float64
}

const (
	defaultRowLimit      = 100
	defaultLookbackYears = 5
	defaultMaxDepth      = 3
	defaultMinStake      = 25
)

func (o Options) withDefaults() Options {
	if o.RowLimit <= 0 {
		o.RowLimit = defaultRowLimit
	}
	if o.LookbackYears <= 0 {
		o.LookbackYears = defaultLookbackYears
	}
	if o.MaxOwnershipDepth <= 0 || o.MaxOwnershipDepth > defaultMaxDepth {
		o.MaxOwnershipDepth = defaultMaxDepth
	}
	if o.MinPartnerStake <= 0 {
		o.MinPartnerStake = defaultMinStake
	}
	return o
}

// All returns the full detector set in the declared detection order. The
// coordinator relies on this order for deterministic tie-breaking.
func All(d driver.GraphDriver, opts Options) []Detector {
	opts = opts.withDefaults()
	return []Detector{
		&DirectAdversaryDetector{driver: d, limit: opts.RowLimit},
		&IndirectOwnershipDetector{driver: d, limit: opts.RowLimit, maxDepth: opts.MaxOwnershipDepth},
		&DirectorOverlapDetector{driver: d, limit: opts.RowLimit},
		&FamilyTieDetector{driver: d, limit: opts.RowLimit},
		&BusinessPartnerDetector{driver: d, limit: opts.RowLimit, minStake: opts.MinPartnerStake},
		&HistoricalConflictDetector{driver: d, limit: opts.RowLimit, lookback: opts.LookbackYears},
		&GroupCompanyDetector{driver: d, limit: opts.RowLimit},
		&ProfessionalOverlapDetector{driver: d, limit: opts.RowLimit},
	}
}

// Graph rows are loosely keyed; everything below reads with safe defaults so
// a missing or oddly-typed column degrades a single field, not the row.

func stringVal(rec *neo4j.Record, key string) string {
	v, ok := rec.Get(key)
	if !ok {
		return ""
	}
	s, _ := v.(string)
	return s
}

func intVal(rec *neo4j.Record, key string) int {
	v, ok := rec.Get(key)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func floatVal(rec *neo4j.Record, key string) float64 {
	v, ok := rec.Get(key)
	if !ok {
		return 0
	}
	switch n := v.(type) {
	case float64:
		return n
	case int64:
		return float64(n)
	}
	return 0
}

func timeVal(rec *neo4j.Record, key string) time.Time {
	v, ok := rec.Get(key)
	if !ok {
		return time.Time{}
	}
	switch t := v.(type) {
	case time.Time:
		return t
	case dbtype.Date:
		return t.Time()
	case dbtype.LocalDateTime:
		return t.Time()
	}
	return time.Time{}
}

func stringsVal(rec *neo4j.Record, key string) []string {
	v, ok := rec.Get(key)
	if !ok {
		return nil
	}
	raw, ok := v.([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func entityRef(rec *neo4j.Record) model.EntityRef {
	return model.EntityRef{
		ID:   stringVal(rec, "entity_id"),
		Name: stringVal(rec, "entity_name"),
		Kind: model.EntityKind(stringVal(rec, "entity_kind")),
	}
}

func clientContext(rec *neo4j.Record) model.ClientContext {
	return model.ClientContext{
		ClientID:   stringVal(rec, "client_id"),
		ClientName: stringVal(rec, "client_name"),
		CaseID:     stringVal(rec, "case_id"),
		CaseName:   stringVal(rec, "case_name"),
	}
}
