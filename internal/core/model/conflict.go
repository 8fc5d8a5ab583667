package model

import "time"

type ConflictType string

// The eight conflict patterns, in detection order. The order is part of the
// contract: the aggregated check result breaks score ties by this sequence,
// never by detector completion order.
const (
	TypeDirectAdversary     ConflictType = "direct_adversary"
	TypeIndirectOwnership   ConflictType = "indirect_ownership"
	TypeDirectorOverlap     ConflictType = "director_overlap"
	TypeFamilyTie           ConflictType = "family_tie"
	TypeBusinessPartner     ConflictType = "business_partner"
	TypeHistoricalConflict  ConflictType = "historical_conflict"
	TypeGroupCompany        ConflictType = "group_company"
	TypeProfessionalOverlap ConflictType = "professional_overlap"
)

type EntityKind string

const (
	KindPerson  EntityKind = "person"
	KindCompany EntityKind = "company"
)

// EntityRef identifies a party in the relationship graph. The graph store
// owns the data; this is a read-only projection.
type EntityRef struct {
	ID   string     `json:"id"`
	Name string     `json:"name"`
	Kind EntityKind `json:"kind"`
}

// ClientContext names the represented client (and case) whose opposition
// triggered the candidate.
type ClientContext struct {
	ClientID   string `json:"client_id"`
	ClientName string `json:"client_name"`
	CaseID     string `json:"case_id,omitempty"`
	CaseName   string `json:"case_name,omitempty"`
}

// Candidate is a raw detection hit. Score is zero until the scorer has run.
// Details holds the pattern-specific attributes as a closed tagged variant,
// validated when the graph rows are decoded.
type Candidate struct {
	Type        ConflictType  `json:"type"`
	SubjectID   string        `json:"subject_id"`
	Entity      EntityRef     `json:"entity"`
	Client      ClientContext `json:"client"`
	Description string        `json:"description"`
	Score       int           `json:"score"`
	Details     Details       `json:"details,omitempty"`
}

// Details is implemented by exactly one struct per conflict type.
type Details interface {
	conflictDetails()
}

type OwnershipDetails struct {
	Chain []string `json:"chain"`
	Depth int      `json:"depth"`
}

type DirectorDetails struct {
	Director string `json:"director"`
}

type FamilyDetails struct {
	Relation string `json:"relation"`
}

type PartnerDetails struct {
	StakePercent float64 `json:"stake_percent"`
}

type HistoricalDetails struct {
	RepresentationEnded time.Time `json:"representation_ended"`
}

type GroupDetails struct {
	Chain []string `json:"chain"`
}

type AdvisorDetails struct {
	Advisor    string `json:"advisor"`
	Profession string `json:"profession"`
}

func (OwnershipDetails) conflictDetails()  {}
func (DirectorDetails) conflictDetails()   {}
func (FamilyDetails) conflictDetails()     {}
func (PartnerDetails) conflictDetails()    {}
func (HistoricalDetails) conflictDetails() {}
func (GroupDetails) conflictDetails()      {}
func (AdvisorDetails) conflictDetails()    {}
