package alert

import (
	"sync"

	"go.uber.org/zap"

	"github.com/counselops/clearance/internal/metrics"
)

// subscriberBuffer bounds the per-connection queue; a subscriber that cannot
// keep up loses alerts rather than blocking the dispatch path.
const subscriberBuffer = 16

// Subscriber is one live realtime connection. The channel closes on
// unregistration.
type Subscriber struct {
	userID string
	ch     chan Alert
}

// Alerts is the stream the connection handler drains.
func (s *Subscriber) Alerts() <-chan Alert {
	return s.ch
}

// Registry maps user ids to their live connections. It is process-local and
// in-memory only: entries do not survive restarts and there is no fan-out
// across instances. Constructed explicitly and injected, never a package
// global.
type Registry struct {
	mu      sync.RWMutex
	subs    map[string]map[*Subscriber]struct{}
	log     *zap.Logger
	metrics *metrics.Metrics
}

func NewRegistry(log *zap.Logger, m *metrics.Metrics) *Registry {
	return &Registry{
		subs:    make(map[string]map[*Subscriber]struct{}),
		log:     log,
		metrics: m,
	}
}

// Register creates a connection handle for the user and adds it to the
// registry. The caller must guarantee Unregister runs on every exit path of
// the connection.
func (r *Registry) Register(userID string) *Subscriber {
	sub := &Subscriber{userID: userID, ch: make(chan Alert, subscriberBuffer)}

	r.mu.Lock()
	defer r.mu.Unlock()
	if r.subs[userID] == nil {
		r.subs[userID] = make(map[*Subscriber]struct{})
	}
	r.subs[userID][sub] = struct{}{}
	return sub
}

// Unregister removes the connection and closes its channel. Unregistering a
// connection that was never registered (or already removed) is a no-op.
func (r *Registry) Unregister(sub *Subscriber) {
	if sub == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	conns, ok := r.subs[sub.userID]
	if !ok {
		return
	}
	if _, ok := conns[sub]; !ok {
		return
	}
	delete(conns, sub)
	if len(conns) == 0 {
		delete(r.subs, sub.userID)
	}
	close(sub.ch)
}

// Push delivers the alert to every live connection of the user and returns
// how many received it. Sends never block: a full subscriber buffer drops the
// alert for that connection.
func (r *Registry) Push(userID string, a Alert) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	delivered := 0
	for sub := range r.subs[userID] {
		select {
		case sub.ch <- a:
			delivered++
		default:
			r.log.Warn("subscriber buffer full, dropping alert",
				zap.String("user_id", userID),
				zap.String("record_id", a.RecordID))
			r.metrics.IncDeliveryFailure("realtime")
		}
	}
	return delivered
}

// Subscribers reports the number of live connections for the user.
func (r *Registry) Subscribers(userID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.subs[userID])
}
