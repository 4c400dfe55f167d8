// Package purge hard-deletes soft-deleted content after a retention
// window, keeping the tables from accumulating tombstones forever.
package purge

import (
	"context"
	"time"

	"github.com/greenprint-app/greenprint-backend/internal/database"
	"github.com/greenprint-app/greenprint-backend/internal/logger"
	"github.com/greenprint-app/greenprint-backend/internal/models"
	"go.uber.org/zap"
)

const (
	// DefaultRetention is how long soft-deleted rows are kept
	DefaultRetention = 30 * 24 * time.Hour
	// DefaultInterval is how often the sweep runs
	DefaultInterval = 6 * time.Hour
)

type Service struct {
	retention time.Duration
	interval  time.Duration
	cancel    context.CancelFunc
	done      chan struct{}
}

func NewService(retention, interval time.Duration) *Service {
	if retention <= 0 {
		retention = DefaultRetention
	}
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Service{retention: retention, interval: interval}
}

// Start launches the background sweep loop. One sweep runs immediately.
func (s *Service) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		s.Sweep()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.Sweep()
			}
		}
	}()
	logger.Log.Info("purge service started",
		zap.Duration("retention", s.retention),
		zap.Duration("interval", s.interval))
}

// Stop terminates the loop and waits for an in-flight sweep to finish
func (s *Service) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	logger.Log.Info("purge service stopped")
}

// Sweep permanently removes rows soft-deleted before the cutoff
func (s *Service) Sweep() {
	cutoff := time.Now().UTC().Add(-s.retention)

	targets := []struct {
		name  string
		model interface{}
	}{
		{"posts", &models.Post{}},
		{"comments", &models.Comment{}},
		{"stories", &models.Story{}},
		{"reports", &models.Report{}},
	}

	for _, t := range targets {
		result := database.DB.Unscoped().
			Where("deleted_at IS NOT NULL AND deleted_at < ?", cutoff).
			Delete(t.model)
		if result.Error != nil {
			logger.Log.Warn("purge sweep failed",
				zap.String("table", t.name), zap.Error(result.Error))
			continue
		}
		if result.RowsAffected > 0 {
			logger.Log.Info("purged soft-deleted rows",
				zap.String("table", t.name),
				zap.Int64("rows", result.RowsAffected))
		}
	}
}
