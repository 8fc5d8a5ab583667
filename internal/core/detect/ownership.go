package detect

import (
	"context"
	"fmt"
	"strings"

	"github.com/counselops/clearance/internal/core/model"
	"github.com/counselops/clearance/internal/driver"
)

// IndirectOwnershipDetector walks ownership chains of one to three hops from
// the subject company to companies opposed by represented clients.
type IndirectOwnershipDetector struct {
	driver   driver.GraphDriver
	limit    int
	maxDepth int
}

func (d *IndirectOwnershipDetector) Type() model.ConflictType { return model.TypeIndirectOwnership }

func (d *IndirectOwnershipDetector) AppliesTo(kind model.EntityKind) bool {
	return kind == model.KindCompany
}

func (d *IndirectOwnershipDetector) Detect(ctx context.Context, subject Subject) ([]model.Candidate, error) {
	result, err := d.driver.ExecuteQuery(ctx, driver.IndirectOwnershipQuery, map[string]interface{}{
		"subject_id": subject.ID,
		"firm_id":    subject.FirmID,
		"max_depth":  d.maxDepth,
		"limit":      d.limit,
	})
	if err != nil {
		return nil, fmt.Errorf("indirect ownership traversal: %w", err)
	}

	var candidates []model.Candidate
	for _, rec := range result.Records {
		entity := entityRef(rec)
		chain := stringsVal(rec, "chain")
		depth := intVal(rec, "depth")
		candidates = append(candidates, model.Candidate{
			Type:      d.Type(),
			SubjectID: subject.ID,
			Entity:    entity,
			Client:    clientContext(rec),
			Description: fmt.Sprintf("subject reaches opposed company %s through ownership chain %s (depth %d)",
				entity.Name, strings.Join(chain, " -> "), depth),
			Details: model.OwnershipDetails{Chain: chain, Depth: depth},
		})
	}
	return candidates, nil
}
