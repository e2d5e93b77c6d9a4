package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/jadwal-backend/internal/model"
	"github.com/stemsi/jadwal-backend/internal/repository"
)

// historyLimit caps how many audit entries a history request returns.
const historyLimit = 100

// AuditService exposes the audit trail written by the audit worker.
type AuditService struct {
	repo *repository.AuditRepository
	log  zerolog.Logger
}

// NewAuditService creates a new AuditService.
func NewAuditService(repo *repository.AuditRepository, log zerolog.Logger) *AuditService {
	return &AuditService{
		repo: repo,
		log:  log.With().Str("component", "audit_service").Logger(),
	}
}

// History returns the latest changes of one record, newest first.
func (s *AuditService) History(ctx context.Context, entity, entityID string) ([]model.AuditEntry, error) {
	return s.repo.ListByEntity(ctx, entity, entityID, historyLimit)
}

// Prune deletes entries older than retention.
func (s *AuditService) Prune(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	n, err := s.repo.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	s.log.Info().Int64("deleted", n).Time("cutoff", cutoff).Msg("Audit log pruned")
	return n, nil
}
