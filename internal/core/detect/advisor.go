package detect

import (
	"context"
	"fmt"

	"github.com/counselops/clearance/internal/core/model"
	"github.com/counselops/clearance/internal/driver"
)

// ProfessionalOverlapDetector finds accountants, notaries or tax advisors the
// subject shares with parties opposed by represented clients.
type ProfessionalOverlapDetector struct {
	driver driver.GraphDriver
	limit  int
}

func (d *ProfessionalOverlapDetector) Type() model.ConflictType { return model.TypeProfessionalOverlap }

func (d *ProfessionalOverlapDetector) AppliesTo(model.EntityKind) bool { return true }

func (d *ProfessionalOverlapDetector) Detect(ctx context.Context, subject Subject) ([]model.Candidate, error) {
	result, err := d.driver.ExecuteQuery(ctx, driver.ProfessionalOverlapQuery, map[string]interface{}{
		"subject_id": subject.ID,
		"firm_id":    subject.FirmID,
		"limit":      d.limit,
	})
	if err != nil {
		return nil, fmt.Errorf("professional overlap traversal: %w", err)
	}

	var candidates []model.Candidate
	for _, rec := range result.Records {
		entity := entityRef(rec)
		advisor := stringVal(rec, "advisor")
		profession := stringVal(rec, "profession")
		candidates = append(candidates, model.Candidate{
			Type:      d.Type(),
			SubjectID: subject.ID,
			Entity:    entity,
			Client:    clientContext(rec),
			Description: fmt.Sprintf("subject shares %s %s with opposed party %s",
				profession, advisor, entity.Name),
			Details: model.AdvisorDetails{Advisor: advisor, Profession: profession},
		})
	}
	return candidates, nil
}
