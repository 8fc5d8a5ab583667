package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/counselops/clearance/internal/alert"
	"github.com/counselops/clearance/internal/core"
	"github.com/counselops/clearance/internal/core/detect"
	"github.com/counselops/clearance/internal/core/model"
	"github.com/counselops/clearance/internal/store"
)

// ConflictChecker runs the detector fan-out for one subject.
type ConflictChecker interface {
	Check(ctx context.Context, subject detect.Subject) []model.Candidate
}

// ConflictResolver applies the resolution lifecycle to a persisted record.
type ConflictResolver interface {
	Resolve(ctx context.Context, recordID string, resolution model.Resolution, resolverID string) (model.Status, error)
}

// Notifier is the alert pipeline: per-record dispatch plus the daily digest.
type Notifier interface {
	Dispatch(ctx context.Context, rec model.ConflictRecord)
	Digest(ctx context.Context, firmID, userID string) bool
}

type Server struct {
	checker  ConflictChecker
	resolver ConflictResolver
	alerts   Notifier
	registry *alert.Registry
	store    store.ConflictStore
	log      *zap.Logger

	persistThreshold int
	heartbeat        time.Duration
}

func New(checker ConflictChecker, resolver ConflictResolver, alerts Notifier, registry *alert.Registry, s store.ConflictStore, log *zap.Logger, persistThreshold int, heartbeat time.Duration) *Server {
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &Server{
		checker:          checker,
		resolver:         resolver,
		alerts:           alerts,
		registry:         registry,
		store:            s,
		log:              log,
		persistThreshold: persistThreshold,
		heartbeat:        heartbeat,
	}
}

func (s *Server) SetupRouter() *gin.Engine {
	r := gin.Default()

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/check", s.Check)
	r.POST("/conflicts/:id/resolve", s.ResolveConflict)
	r.POST("/digest", s.SendDigest)
	r.GET("/alerts/stream", s.StreamAlerts)

	return r
}

type CheckRequest struct {
	SubjectID   string `json:"subject_id" binding:"required"`
	SubjectKind string `json:"subject_kind" binding:"required"`
	CaseID      string `json:"case_id"`
}

// Check runs the full detection pipeline for a subject, persists candidates
// at or above the persistence threshold, and pushes alerts for them. The
// ranked list is returned regardless of persistence or delivery outcomes.
func (s *Server) Check(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	kind := model.EntityKind(req.SubjectKind)
	if kind != model.KindPerson && kind != model.KindCompany {
		c.JSON(http.StatusBadRequest, gin.H{"error": "subject_kind must be 'person' or 'company'"})
		return
	}

	firmID, userID := callerIdentity(c)
	subject := detect.Subject{ID: req.SubjectID, Kind: kind, FirmID: firmID}
	candidates := s.checker.Check(c.Request.Context(), subject)

	s.log.Info("conflict check completed",
		zap.String("subject_id", req.SubjectID),
		zap.String("subject_kind", req.SubjectKind),
		zap.String("case_id", req.CaseID),
		zap.String("firm_id", firmID),
		zap.Int("candidates", len(candidates)))

	recordIDs := make([]string, 0, len(candidates))
	for _, cand := range candidates {
		if cand.Score < s.persistThreshold {
			continue
		}
		rec := model.ConflictRecord{
			FirmID:      firmID,
			SubjectID:   req.SubjectID,
			SubjectKind: kind,
			Type:        cand.Type,
			Score:       cand.Score,
			Description: cand.Description,
			EntityID:    cand.Entity.ID,
			EntityKind:  cand.Entity.Kind,
			CaseID:      cand.Client.CaseID,
			CreatedBy:   userID,
			CreatedAt:   time.Now().UTC(),
		}
		id, err := s.store.Create(c.Request.Context(), rec)
		if err != nil {
			s.log.Error("failed to persist conflict record",
				zap.String("subject_id", req.SubjectID),
				zap.String("type", string(cand.Type)),
				zap.Error(err))
			continue
		}
		rec.ID = id
		recordIDs = append(recordIDs, id)
		s.alerts.Dispatch(c.Request.Context(), rec)
	}

	c.JSON(http.StatusOK, gin.H{
		"subject_id": req.SubjectID,
		"count":      len(candidates),
		"conflicts":  candidates,
		"record_ids": recordIDs,
	})
}

type ResolveRequest struct {
	Resolution string `json:"resolution" binding:"required"`
}

func (s *Server) ResolveConflict(c *gin.Context) {
	var req ResolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request"})
		return
	}

	_, userID := callerIdentity(c)
	status, err := s.resolver.Resolve(c.Request.Context(), c.Param("id"), model.Resolution(req.Resolution), userID)
	switch {
	case errors.Is(err, core.ErrInvalidResolution):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, store.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "conflict record not found"})
	case err != nil:
		s.log.Error("failed to resolve conflict", zap.String("record_id", c.Param("id")), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve conflict"})
	default:
		c.JSON(http.StatusOK, gin.H{"status": status})
	}
}

func (s *Server) SendDigest(c *gin.Context) {
	firmID, userID := callerIdentity(c)
	sent := s.alerts.Digest(c.Request.Context(), firmID, userID)
	c.JSON(http.StatusOK, gin.H{"sent": sent})
}

// callerIdentity reads the tenant and acting user from headers. Validation
// and authentication live in the gateway in front of this service.
func callerIdentity(c *gin.Context) (firmID, userID string) {
	firmID = c.GetHeader("X-Firm-ID")
	if firmID == "" {
		firmID = "default"
	}
	userID = c.GetHeader("X-User-ID")
	if userID == "" {
		userID = "anonymous"
	}
	return firmID, userID
}
