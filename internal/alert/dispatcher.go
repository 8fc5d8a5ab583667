package alert

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/counselops/clearance/internal/core/model"
	"github.com/counselops/clearance/internal/metrics"
	"github.com/counselops/clearance/internal/store"
)

// digestWindow is the trailing period a digest covers.
const digestWindow = 24 * time.Hour

// Dispatcher routes persisted conflicts to the notification channels by
// severity tier: realtime push always, immediate email only for critical.
type Dispatcher struct {
	registry  *Registry
	mailer    Mailer
	store     store.ConflictStore
	directory Directory
	log       *zap.Logger
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewDispatcher(registry *Registry, mailer Mailer, s store.ConflictStore, directory Directory, log *zap.Logger, m *metrics.Metrics) *Dispatcher {
	return &Dispatcher{
		registry:  registry,
		mailer:    mailer,
		store:     s,
		directory: directory,
		log:       log,
		metrics:   m,
		now:       time.Now,
	}
}

// Dispatch notifies the responsible user about a freshly persisted conflict.
// It never fails: every delivery problem is logged, counted and dropped so
// the detection path that triggered it is unaffected.
func (d *Dispatcher) Dispatch(ctx context.Context, rec model.ConflictRecord) {
	a := fromRecord(rec)

	delivered := d.registry.Push(rec.CreatedBy, a)
	if delivered == 0 {
		d.log.Debug("no live subscribers for alert",
			zap.String("user_id", rec.CreatedBy),
			zap.String("record_id", rec.ID))
	} else {
		d.metrics.IncAlertDispatched(string(a.Tier), "realtime")
	}

	if a.Tier != TierCritical {
		return
	}

	addr, ok := d.directory.EmailFor(rec.CreatedBy)
	if !ok {
		d.log.Warn("critical conflict but user has no email address",
			zap.String("user_id", rec.CreatedBy),
			zap.String("record_id", rec.ID))
		d.metrics.IncDeliveryFailure("email")
		return
	}

	subject := fmt.Sprintf("Critical conflict of interest: %s (severity %d)", rec.Type, rec.Score)
	if err := d.mailer.Send(ctx, addr, subject, rec.Description); err != nil {
		d.log.Error("failed to send critical conflict email",
			zap.String("user_id", rec.CreatedBy),
			zap.String("record_id", rec.ID),
			zap.Error(err))
		d.metrics.IncDeliveryFailure("email")
		return
	}
	d.metrics.IncAlertDispatched(string(a.Tier), "email")
}

// Digest emails the user a single batched summary of their unresolved
// conflicts from the trailing 24 hours, most severe first. Returns whether it
// was sent; false means no unresolved conflicts, no deliverable address, or a
// delivery failure.
func (d *Dispatcher) Digest(ctx context.Context, firmID, userID string) bool {
	since := d.now().UTC().Add(-digestWindow)

	records, err := d.store.ListUnresolved(ctx, firmID, userID, since)
	if err != nil {
		d.log.Error("failed to load records for digest",
			zap.String("user_id", userID),
			zap.Error(err))
		return false
	}
	if len(records) == 0 {
		return false
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Score > records[j].Score
	})

	addr, ok := d.directory.EmailFor(userID)
	if !ok {
		d.log.Warn("digest requested but user has no email address",
			zap.String("user_id", userID))
		return false
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Unresolved conflicts from the last 24 hours: %d\n\n", len(records))
	for _, rec := range records {
		fmt.Fprintf(&b, "[%s] severity %d %s\n  %s\n",
			strings.ToUpper(string(TierFor(rec.Score))), rec.Score, rec.Type, rec.Description)
	}

	subject := fmt.Sprintf("Daily conflict digest (%d unresolved)", len(records))
	if err := d.mailer.Send(ctx, addr, subject, b.String()); err != nil {
		d.log.Error("failed to send digest",
			zap.String("user_id", userID),
			zap.Error(err))
		d.metrics.IncDeliveryFailure("email")
		return false
	}
	d.metrics.IncAlertDispatched("digest", "email")
	return true
}
