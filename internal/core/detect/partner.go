package detect

import (
	"context"
	"fmt"

	"github.com/counselops/clearance/internal/core/model"
	"github.com/counselops/clearance/internal/driver"
)

// BusinessPartnerDetector finds partnership stakes above the configured
// threshold between the subject and opposed companies.
type BusinessPartnerDetector struct {
	driver   driver.GraphDriver
	limit    int
	minStake float64
}

func (d *BusinessPartnerDetector) Type() model.ConflictType { return model.TypeBusinessPartner }

func (d *BusinessPartnerDetector) AppliesTo(kind model.EntityKind) bool {
	return kind == model.KindCompany
}

func (d *BusinessPartnerDetector) Detect(ctx context.Context, subject Subject) ([]model.Candidate, error) {
	result, err := d.driver.ExecuteQuery(ctx, driver.BusinessPartnerQuery, map[string]interface{}{
		"subject_id": subject.ID,
		"firm_id":    subject.FirmID,
		"min_stake":  d.minStake,
		"limit":      d.limit,
	})
	if err != nil {
		return nil, fmt.Errorf("business partner traversal: %w", err)
	}

	var candidates []model.Candidate
	for _, rec := range result.Records {
		entity := entityRef(rec)
		stake := floatVal(rec, "stake")
		candidates = append(candidates, model.Candidate{
			Type:      d.Type(),
			SubjectID: subject.ID,
			Entity:    entity,
			Client:    clientContext(rec),
			Description: fmt.Sprintf("subject holds a %.0f%% partnership stake in opposed company %s",
				stake, entity.Name),
			Details: model.PartnerDetails{StakePercent: stake},
		})
	}
	return candidates, nil
}
