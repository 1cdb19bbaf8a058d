// Package backup snapshots the learning document to object storage on a
// cron schedule and restores it into an empty learner at startup.
package backup

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/timmy/reelsearch/internal/config"
	"github.com/timmy/reelsearch/internal/logger"
	"github.com/timmy/reelsearch/internal/metrics"
	"github.com/timmy/reelsearch/internal/storage"
)

// Backup run results reported to metrics.
const (
	ResultSuccess = "success"
	ResultSkipped = "skipped"
	ResultError   = "error"
)

const contentTypeJSON = "application/json"

var cronParser = cron.NewParser(
	cron.SecondOptional |
		cron.Minute |
		cron.Hour |
		cron.Dom |
		cron.Month |
		cron.Dow |
		cron.Descriptor,
)

// Snapshotter is the learner state the backup copies.
type Snapshotter interface {
	Export() ([]byte, error)
	Import(ctx context.Context, data []byte) error
	IsEmpty() bool
}

// Service copies learner snapshots to and from object storage.
type Service struct {
	storage  storage.ObjectStorage
	learner  Snapshotter
	key      string
	schedule string
	metrics  *metrics.Metrics

	mu   sync.Mutex // serializes runs
	cron *cron.Cron
}

// NewService validates the schedule and creates a backup service.
// Parameters:
//   - store: destination object storage.
//   - learner: state to snapshot.
//   - cfg: schedule and object key.
//   - m: metrics sink; may be nil.
// Returns:
//   - *Service: service ready to Start.
//   - error: non-nil for an empty key or an unparsable schedule.
func NewService(store storage.ObjectStorage, learner Snapshotter, cfg config.BackupConfig, m *metrics.Metrics) (*Service, error) {
	key := strings.TrimPrefix(strings.TrimSpace(cfg.Key), "/")
	if key == "" {
		return nil, errors.New("backup: key is required")
	}
	schedule := strings.TrimSpace(cfg.Schedule)
	if _, err := cronParser.Parse(schedule); err != nil {
		return nil, fmt.Errorf("backup: invalid schedule %q: %w", schedule, err)
	}
	return &Service{
		storage:  store,
		learner:  learner,
		key:      key,
		schedule: schedule,
		metrics:  m,
	}, nil
}

// Start runs Backup on the configured schedule until Stop.
func (s *Service) Start(ctx context.Context) error {
	c := cron.New(cron.WithParser(cronParser))
	if _, err := c.AddFunc(s.schedule, func() {
		if err := s.Backup(ctx); err != nil {
			logger.Component("backup").
				Error(ctx, "Scheduled backup failed: error=%v", err)
		}
	}); err != nil {
		return fmt.Errorf("backup: failed to schedule: %w", err)
	}
	c.Start()
	s.cron = c

	logger.Component("backup").
		Info(ctx, "Backup scheduler started: schedule=%q, key=%s", s.schedule, s.key)
	return nil
}

// Stop halts the scheduler and waits for a running backup to finish.
func (s *Service) Stop() {
	if s.cron == nil {
		return
	}
	<-s.cron.Stop().Done()
	s.cron = nil
}

// Backup uploads the current learner snapshot. An empty learner is skipped
// so a fresh instance never overwrites a good snapshot.
func (s *Service) Backup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.learner.IsEmpty() {
		s.metrics.BackupRun(ResultSkipped)
		logger.Component("backup").
			Debug(ctx, "Nothing learned yet, backup skipped")
		return nil
	}

	start := time.Now()
	data, err := s.learner.Export()
	if err != nil {
		s.metrics.BackupRun(ResultError)
		return fmt.Errorf("failed to export learning data: %w", err)
	}
	if err := s.storage.Upload(ctx, s.key, bytes.NewReader(data), int64(len(data)), contentTypeJSON); err != nil {
		s.metrics.BackupRun(ResultError)
		return err
	}

	s.metrics.BackupRun(ResultSuccess)
	logger.With(logger.Fields{
		logger.FieldComponent: "backup",
		logger.FieldSize:      len(data),
	}).WithDuration(time.Since(start).Milliseconds()).Info(ctx, "Learning data backed up: key=%s", s.key)
	return nil
}

// RestoreIfEmpty imports the stored snapshot when the learner has nothing
// yet. It reports whether a snapshot was imported; a missing snapshot is
// not an error.
func (s *Service) RestoreIfEmpty(ctx context.Context) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.learner.IsEmpty() {
		return false, nil
	}

	body, err := s.storage.Download(ctx, s.key)
	if errors.Is(err, storage.ErrNotFound) {
		logger.Component("backup").
			Info(ctx, "No learning snapshot to restore: key=%s", s.key)
		return false, nil
	}
	if err != nil {
		return false, err
	}
	defer body.Close()

	data, err := io.ReadAll(body)
	if err != nil {
		return false, fmt.Errorf("failed to read snapshot %s: %w", s.key, err)
	}
	if err := s.learner.Import(ctx, data); err != nil {
		return false, fmt.Errorf("failed to import snapshot %s: %w", s.key, err)
	}

	logger.With(logger.Fields{
		logger.FieldComponent: "backup",
		logger.FieldSize:      len(data),
	}).Info(ctx, "Learning data restored: key=%s", s.key)
	return true, nil
}
