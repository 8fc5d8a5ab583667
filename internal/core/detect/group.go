package detect

import (
	"context"
	"fmt"
	"strings"

	"github.com/counselops/clearance/internal/core/model"
	"github.com/counselops/clearance/internal/driver"
)

// GroupCompanyDetector finds parent companies (one or two hops up the
// corporate structure) opposed by represented clients.
type GroupCompanyDetector struct {
	driver driver.GraphDriver
	limit  int
}

func (d *GroupCompanyDetector) Type() model.ConflictType { return model.TypeGroupCompany }

func (d *GroupCompanyDetector) AppliesTo(kind model.EntityKind) bool {
	return kind == model.KindCompany
}

func (d *GroupCompanyDetector) Detect(ctx context.Context, subject Subject) ([]model.Candidate, error) {
	result, err := d.driver.ExecuteQuery(ctx, driver.GroupCompanyQuery, map[string]interface{}{
		"subject_id": subject.ID,
		"firm_id":    subject.FirmID,
		"limit":      d.limit,
	})
	if err != nil {
		return nil, fmt.Errorf("group company traversal: %w", err)
	}

	var candidates []model.Candidate
	for _, rec := range result.Records {
		entity := entityRef(rec)
		chain := stringsVal(rec, "chain")
		candidates = append(candidates, model.Candidate{
			Type:      d.Type(),
			SubjectID: subject.ID,
			Entity:    entity,
			Client:    clientContext(rec),
			Description: fmt.Sprintf("subject is a subsidiary of opposed company %s (%s)",
				entity.Name, strings.Join(chain, " -> ")),
			Details: model.GroupDetails{Chain: chain},
		})
	}
	return candidates, nil
}
