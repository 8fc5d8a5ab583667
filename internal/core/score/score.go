// Package score turns raw conflict candidates into severity scores. Scoring
// is a pure function of the candidate and the reference time, so the same
// check always ranks the same way.
package score

import (
	"time"

	"github.com/counselops/clearance/internal/core/model"
)

const fallbackScore = 50

var baseScores = map[model.ConflictType]int{
	model.TypeDirectAdversary:     100,
	model.TypeDirectorOverlap:     90,
	model.TypeFamilyTie:           85,
	model.TypeIndirectOwnership:   80,
	model.TypeGroupCompany:        75,
	model.TypeBusinessPartner:     70,
	model.TypeHistoricalConflict:  60,
	model.TypeProfessionalOverlap: 50,
}

// Score returns the severity of a candidate in [0, 100]. now anchors the
// elapsed-time decay for historical conflicts.
func Score(c model.Candidate, now time.Time) int {
	base, ok := baseScores[c.Type]
	if !ok {
		return fallbackScore
	}

	s := base
	switch c.Type {
	case model.TypeHistoricalConflict:
		s = adjustHistorical(base, c, now)
	case model.TypeIndirectOwnership:
		s = adjustOwnership(base, c)
	case model.TypeBusinessPartner:
		s = adjustPartner(base, c)
	case model.TypeFamilyTie:
		s = adjustFamily(base, c)
	}

	return clamp(s)
}

// Ten points off per elapsed year since the representation ended, never below
// 30. A candidate without a usable end date keeps the base score.
func adjustHistorical(base int, c model.Candidate, now time.Time) int {
	d, ok := c.Details.(model.HistoricalDetails)
	if !ok || d.RepresentationEnded.IsZero() {
		return base
	}
	years := int(now.Sub(d.RepresentationEnded).Hours() / (24 * 365))
	if years < 0 {
		years = 0
	}
	s := base - 10*years
	if s < 30 {
		s = 30
	}
	return s
}

func adjustOwnership(base int, c model.Candidate) int {
	d, ok := c.Details.(model.OwnershipDetails)
	if !ok {
		return base
	}
	s := base
	switch {
	case d.Depth == 1:
		s = base + 10
	case d.Depth >= 3:
		s = base - 10
	}
	if s < 60 {
		s = 60
	}
	return s
}

func adjustPartner(base int, c model.Candidate) int {
	d, ok := c.Details.(model.PartnerDetails)
	if !ok {
		return base
	}
	switch {
	case d.StakePercent >= 50:
		return base + 20
	case d.StakePercent >= 40:
		return base + 10
	}
	return base
}

func adjustFamily(base int, c model.Candidate) int {
	d, ok := c.Details.(model.FamilyDetails)
	if !ok {
		return base
	}
	s := base
	switch d.Relation {
	case "spouse", "parent", "child":
		s = base + 10
	case "sibling":
		s = base
	default:
		s = base - 5
	}
	if s < 70 {
		s = 70
	}
	return s
}

func clamp(s int) int {
	if s < 0 {
		return 0
	}
	if s > 100 {
		return 100
	}
	return s
}
