package detect

import (
	"context"
	"fmt"

	"github.com/counselops/clearance/internal/core/model"
	"github.com/counselops/clearance/internal/driver"
)

// DirectorOverlapDetector finds directors the subject company shares with
// companies opposed by represented clients.
type DirectorOverlapDetector struct {
	driver driver.GraphDriver
	limit  int
}

func (d *DirectorOverlapDetector) Type() model.ConflictType { return model.TypeDirectorOverlap }

func (d *DirectorOverlapDetector) AppliesTo(kind model.EntityKind) bool {
	return kind == model.KindCompany
}

func (d *DirectorOverlapDetector) Detect(ctx context.Context, subject Subject) ([]model.Candidate, error) {
	result, err := d.driver.ExecuteQuery(ctx, driver.DirectorOverlapQuery, map[string]interface{}{
		"subject_id": subject.ID,
		"firm_id":    subject.FirmID,
		"limit":      d.limit,
	})
	if err != nil {
		return nil, fmt.Errorf("director overlap traversal: %w", err)
	}

	var candidates []model.Candidate
	for _, rec := range result.Records {
		entity := entityRef(rec)
		director := stringVal(rec, "director")
		candidates = append(candidates, model.Candidate{
			Type:      d.Type(),
			SubjectID: subject.ID,
			Entity:    entity,
			Client:    clientContext(rec),
			Description: fmt.Sprintf("subject shares director %s with opposed company %s",
				director, entity.Name),
			Details: model.DirectorDetails{Director: director},
		})
	}
	return candidates, nil
}
