// Package core wires the conflict-detection pipeline: detector fan-out,
// severity scoring, deterministic ranking, and the resolution lifecycle over
// persisted conflict records.
package core

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/counselops/clearance/internal/core/detect"
	"github.com/counselops/clearance/internal/core/model"
	"github.com/counselops/clearance/internal/core/score"
	"github.com/counselops/clearance/internal/metrics"
)

// DefaultLatencyBudget is the combined target for one full fan-out. Exceeding
// it is logged and counted, never surfaced as an error.
const DefaultLatencyBudget = 500 * time.Millisecond

// Checker runs the applicable detectors concurrently and aggregates their
// output into a ranked result.
type Checker struct {
	detectors []detect.Detector // declared order, used for tie-breaking
	budget    time.Duration
	log       *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewChecker(detectors []detect.Detector, budget time.Duration, log *zap.Logger, m *metrics.Metrics) *Checker {
	if budget <= 0 {
		budget = DefaultLatencyBudget
	}
	return &Checker{
		detectors: detectors,
		budget:    budget,
		log:       log,
		metrics:   m,
		now:       time.Now,
	}
}

// Check fans out to every detector applicable to the subject's kind, waits
// for all of them to settle, and returns the scored candidates sorted
// descending by severity. A failing detector contributes zero candidates and
// does not disturb its siblings; the result may therefore be partial, which
// is only distinguishable from a clean empty result through logs and metrics.
func (c *Checker) Check(ctx context.Context, subject detect.Subject) []model.Candidate {
	start := c.now()

	selected := make([]detect.Detector, 0, len(c.detectors))
	for _, d := range c.detectors {
		if d.AppliesTo(subject.Kind) {
			selected = append(selected, d)
		}
	}

	// Per-slot capture keeps the declared detector order regardless of
	// completion order, and keeps failure handling visible here at the join
	// instead of buried inside the detectors.
	results := make([][]model.Candidate, len(selected))
	failures := make([]error, len(selected))

	var g errgroup.Group
	for i, d := range selected {
		i, d := i, d
		g.Go(func() error {
			detStart := time.Now()
			candidates, err := d.Detect(ctx, subject)
			c.metrics.ObserveDetector(string(d.Type()), time.Since(detStart))
			results[i] = candidates
			failures[i] = err
			return nil
		})
	}
	// Tasks never return errors; failures land in the slots.
	_ = g.Wait()

	var merged []model.Candidate
	for i, d := range selected {
		if err := failures[i]; err != nil {
			c.log.Warn("detector failed, contributing no candidates",
				zap.String("detector", string(d.Type())),
				zap.String("subject_id", subject.ID),
				zap.Error(err))
			c.metrics.IncDetectorFailure(string(d.Type()))
			continue
		}
		merged = append(merged, results[i]...)
	}

	now := c.now()
	for i := range merged {
		merged[i].Score = score.Score(merged[i], now)
	}

	// Stable keeps emission order (the declared detector sequence) for equal
	// scores.
	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Score > merged[j].Score
	})

	elapsed := time.Since(start)
	c.metrics.ObserveCheck(elapsed)
	if elapsed > c.budget {
		c.log.Warn("conflict check exceeded latency budget",
			zap.String("subject_id", subject.ID),
			zap.Duration("elapsed", elapsed),
			zap.Duration("budget", c.budget))
		c.metrics.IncBudgetViolation()
	}

	return merged
}
