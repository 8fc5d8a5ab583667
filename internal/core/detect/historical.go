package detect

import (
	"context"
	"fmt"
	"time"

	"github.com/counselops/clearance/internal/core/model"
	"github.com/counselops/clearance/internal/driver"
)

// HistoricalConflictDetector finds closed matters within the look-back window
// where the subject was represented against a party our clients now oppose.
type HistoricalConflictDetector struct {
	driver   driver.GraphDriver
	limit    int
	lookback int // years
}

func (d *HistoricalConflictDetector) Type() model.ConflictType { return model.TypeHistoricalConflict }

func (d *HistoricalConflictDetector) AppliesTo(model.EntityKind) bool { return true }

func (d *HistoricalConflictDetector) Detect(ctx context.Context, subject Subject) ([]model.Candidate, error) {
	cutoff := time.Now().UTC().AddDate(-d.lookback, 0, 0)

	result, err := d.driver.ExecuteQuery(ctx, driver.HistoricalConflictQuery, map[string]interface{}{
		"subject_id": subject.ID,
		"firm_id":    subject.FirmID,
		"cutoff":     cutoff,
		"limit":      d.limit,
	})
	if err != nil {
		return nil, fmt.Errorf("historical conflict traversal: %w", err)
	}

	var candidates []model.Candidate
	for _, rec := range result.Records {
		entity := entityRef(rec)
		ended := timeVal(rec, "ended")
		candidates = append(candidates, model.Candidate{
			Type:      d.Type(),
			SubjectID: subject.ID,
			Entity:    entity,
			Client:    clientContext(rec),
			Description: fmt.Sprintf("subject was previously represented against %s (representation ended %s)",
				entity.Name, ended.Format("2006-01-02")),
			Details: model.HistoricalDetails{RepresentationEnded: ended},
		})
	}
	return candidates, nil
}
