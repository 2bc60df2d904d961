package audit

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// RetentionConfig configures the periodic audit cleanup job.
type RetentionConfig struct {
	Interval      time.Duration
	RetentionDays int
}

// DefaultRetentionConfig runs the cleanup daily with a 90-day window.
func DefaultRetentionConfig() RetentionConfig {
	return RetentionConfig{
		Interval:      24 * time.Hour,
		RetentionDays: 90,
	}
}

// RetentionWorker periodically removes session-adjacent audit material older
// than the retention window.
type RetentionWorker struct {
	recorder *Recorder
	config   RetentionConfig

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewRetentionWorker creates a retention worker around a recorder.
func NewRetentionWorker(recorder *Recorder, cfg RetentionConfig) *RetentionWorker {
	return &RetentionWorker{
		recorder: recorder,
		config:   cfg,
		stopChan: make(chan struct{}),
	}
}

// Start launches the cleanup loop.
func (w *RetentionWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("retention worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(ctx)

	log.Info().
		Dur("interval", w.config.Interval).
		Int("retention_days", w.config.RetentionDays).
		Msg("audit retention worker started")

	return nil
}

// Stop shuts the cleanup loop down.
func (w *RetentionWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("retention worker not running")
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	w.wg.Wait()

	log.Info().Msg("audit retention worker stopped")
	return nil
}

func (w *RetentionWorker) run(ctx context.Context) {
	defer w.wg.Done()

	ticker := time.NewTicker(w.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-ticker.C:
			if _, err := w.recorder.CleanupExpired(ctx, w.config.RetentionDays); err != nil {
				log.Error().Err(err).Msg("audit retention cleanup failed")
			}
		}
	}
}
