package detect

import (
	"context"
	"fmt"

	"github.com/counselops/clearance/internal/core/model"
	"github.com/counselops/clearance/internal/driver"
)

// FamilyTieDetector finds spouse, parent, child or sibling relations between
// the subject and parties opposed by represented clients.
type FamilyTieDetector struct {
	driver driver.GraphDriver
	limit  int
}

func (d *FamilyTieDetector) Type() model.ConflictType { return model.TypeFamilyTie }

func (d *FamilyTieDetector) AppliesTo(kind model.EntityKind) bool {
	return kind == model.KindPerson
}

func (d *FamilyTieDetector) Detect(ctx context.Context, subject Subject) ([]model.Candidate, error) {
	result, err := d.driver.ExecuteQuery(ctx, driver.FamilyTieQuery, map[string]interface{}{
		"subject_id": subject.ID,
		"firm_id":    subject.FirmID,
		"limit":      d.limit,
	})
	if err != nil {
		return nil, fmt.Errorf("family tie traversal: %w", err)
	}

	var candidates []model.Candidate
	for _, rec := range result.Records {
		entity := entityRef(rec)
		client := clientContext(rec)
		relation := stringVal(rec, "relation")
		candidates = append(candidates, model.Candidate{
			Type:      d.Type(),
			SubjectID: subject.ID,
			Entity:    entity,
			Client:    client,
			Description: fmt.Sprintf("%s is the subject's %s and is opposed by client %s",
				entity.Name, relation, client.ClientName),
			Details: model.FamilyDetails{Relation: relation},
		})
	}
	return candidates, nil
}
