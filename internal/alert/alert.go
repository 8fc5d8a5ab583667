// Package alert routes notifications for persisted conflicts: realtime push
// to live subscriber connections, immediate email for critical severities,
// and an on-demand daily digest. Every delivery here is best-effort by
// contract; failures are logged and dropped, never propagated back into the
// detection or resolution paths.
package alert

import (
	"time"

	"github.com/counselops/clearance/internal/core/model"
)

type Tier string

const (
	TierCritical Tier = "critical"
	TierHigh     Tier = "high"
	TierMedium   Tier = "medium"
	TierLow      Tier = "low"
)

// TierFor maps a severity score to its alert tier.
func TierFor(score int) Tier {
	switch {
	case score >= 90:
		return TierCritical
	case score >= 70:
		return TierHigh
	case score >= 50:
		return TierMedium
	}
	return TierLow
}

// Alert is the ephemeral payload pushed to subscribers. Derived from a
// record on dispatch, never persisted.
type Alert struct {
	RecordID    string             `json:"record_id"`
	Type        model.ConflictType `json:"type"`
	Score       int                `json:"score"`
	Tier        Tier               `json:"tier"`
	SubjectID   string             `json:"subject_id"`
	EntityID    string             `json:"entity_id"`
	Description string             `json:"description"`
	CreatedAt   time.Time          `json:"created_at"`
}

func fromRecord(rec model.ConflictRecord) Alert {
	return Alert{
		RecordID:    rec.ID,
		Type:        rec.Type,
		Score:       rec.Score,
		Tier:        TierFor(rec.Score),
		SubjectID:   rec.SubjectID,
		EntityID:    rec.EntityID,
		Description: rec.Description,
		CreatedAt:   rec.CreatedAt,
	}
}
