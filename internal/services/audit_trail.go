package services

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/fastygo/user-service/internal/infrastructure/audit"
	"github.com/fastygo/user-service/usecase"
)

// AuditTrail bridges use cases to the BoltDB audit store and runs the
// scheduled retention purge.
type AuditTrail struct {
	store     *audit.Store
	retention time.Duration
	cron      *cron.Cron
	logger    *zap.Logger
}

func NewAuditTrail(store *audit.Store, retention time.Duration, logger *zap.Logger) *AuditTrail {
	if retention <= 0 {
		retention = 30 * 24 * time.Hour
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuditTrail{
		store:     store,
		retention: retention,
		logger:    logger,
	}
}

// Record satisfies usecase.AuditRecorder.
func (a *AuditTrail) Record(_ context.Context, entry usecase.AuditEntry) error {
	return a.store.Append(audit.Entry{
		Actor:     entry.Actor,
		Operation: entry.Operation,
		Entity:    entry.Entity,
		EntityID:  entry.EntityID,
	})
}

// StartRetention schedules the hourly purge of entries past retention.
func (a *AuditTrail) StartRetention() error {
	a.cron = cron.New()
	if _, err := a.cron.AddFunc("@hourly", a.purge); err != nil {
		return err
	}
	a.cron.Start()
	return nil
}

// Stop halts the retention schedule, waiting for a running purge to finish.
func (a *AuditTrail) Stop(ctx context.Context) {
	if a.cron == nil {
		return
	}
	stopped := a.cron.Stop()
	select {
	case <-stopped.Done():
	case <-ctx.Done():
	}
}

func (a *AuditTrail) purge() {
	cutoff := time.Now().Add(-a.retention)
	if err := a.store.PurgeBefore(cutoff); err != nil {
		a.logger.Warn("audit retention purge failed", zap.Error(err))
		return
	}
	a.logger.Debug("audit retention purge completed", zap.Time("cutoff", cutoff))
}
