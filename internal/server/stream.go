package server

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// StreamAlerts is the realtime alert stream: a long-lived SSE connection that
// receives every alert dispatched to the calling user, with a heartbeat so
// proxies keep the connection open. The deferred unregistration is the
// mandatory cleanup path; it runs on normal close, client disconnect and
// internal error alike, so a dead connection never lingers in the registry.
func (s *Server) StreamAlerts(c *gin.Context) {
	_, userID := callerIdentity(c)

	sub := s.registry.Register(userID)
	defer s.registry.Unregister(sub)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	s.log.Info("alert stream opened", zap.String("user_id", userID))
	defer s.log.Info("alert stream closed", zap.String("user_id", userID))

	heartbeat := time.NewTicker(s.heartbeat)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case a, ok := <-sub.Alerts():
			if !ok {
				return false
			}
			c.SSEvent("alert", a)
			return true
		case t := <-heartbeat.C:
			c.SSEvent("heartbeat", t.UTC().Format(time.RFC3339))
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
