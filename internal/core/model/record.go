package model

import "time"

// Resolution is the recorded outcome when a conflict is closed out. The empty
// string means the record is still unresolved.
type Resolution string

const (
	ResolutionNone           Resolution = ""
	ResolutionRefused        Resolution = "refused"
	ResolutionWaiverObtained Resolution = "waiver_obtained"
	ResolutionFalsePositive  Resolution = "false_positive"
)

func (r Resolution) Valid() bool {
	switch r {
	case ResolutionRefused, ResolutionWaiverObtained, ResolutionFalsePositive:
		return true
	}
	return false
}

// Status is derived from the resolution value and never stored independently.
type Status string

const (
	StatusActive    Status = "active"
	StatusResolved  Status = "resolved"
	StatusDismissed Status = "dismissed"
)

func StatusFor(r Resolution) Status {
	switch r {
	case ResolutionNone:
		return StatusActive
	case ResolutionFalsePositive:
		return StatusDismissed
	default:
		return StatusResolved
	}
}

// ConflictRecord is a persisted conflict. The relational store owns the rows;
// the core owns the lifecycle rules over them.
type ConflictRecord struct {
	ID          string       `json:"id"`
	FirmID      string       `json:"firm_id"`
	SubjectID   string       `json:"subject_id"`
	SubjectKind EntityKind   `json:"subject_kind"`
	Type        ConflictType `json:"type"`
	Score       int          `json:"score"`
	Description string       `json:"description"`
	EntityID    string       `json:"entity_id"`
	EntityKind  EntityKind   `json:"entity_kind"`
	CaseID      string       `json:"case_id,omitempty"`
	CreatedBy   string       `json:"created_by"`
	CreatedAt   time.Time    `json:"created_at"`
	Resolution  Resolution   `json:"resolution,omitempty"`
	ResolvedBy  string       `json:"resolved_by,omitempty"`
	ResolvedAt  *time.Time   `json:"resolved_at,omitempty"`
}

func (r ConflictRecord) Status() Status {
	return StatusFor(r.Resolution)
}
