package detect

import (
	"context"
	"fmt"

	"github.com/counselops/clearance/internal/core/model"
	"github.com/counselops/clearance/internal/driver"
)

// DirectAdversaryDetector finds cases where the subject itself is the opposing
// party in an active or pending matter.
type DirectAdversaryDetector struct {
	driver driver.GraphDriver
	limit  int
}

func (d *DirectAdversaryDetector) Type() model.ConflictType { return model.TypeDirectAdversary }

func (d *DirectAdversaryDetector) AppliesTo(model.EntityKind) bool { return true }

func (d *DirectAdversaryDetector) Detect(ctx context.Context, subject Subject) ([]model.Candidate, error) {
	result, err := d.driver.ExecuteQuery(ctx, driver.DirectAdversaryQuery, map[string]interface{}{
		"subject_id": subject.ID,
		"firm_id":    subject.FirmID,
		"limit":      d.limit,
	})
	if err != nil {
		return nil, fmt.Errorf("direct adversary traversal: %w", err)
	}

	var candidates []model.Candidate
	for _, rec := range result.Records {
		client := clientContext(rec)
		candidates = append(candidates, model.Candidate{
			Type:      d.Type(),
			SubjectID: subject.ID,
			Entity:    entityRef(rec),
			Client:    client,
			Description: fmt.Sprintf("subject is the opposing party in case %q against client %s",
				client.CaseName, client.ClientName),
		})
	}
	return candidates, nil
}
