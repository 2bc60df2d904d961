package audit

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/gridiron/go/internal/sqlutil"
)

// OutboxConfig configures the audit outbox worker.
type OutboxConfig struct {
	DatabaseURL      string        // Postgres DSN for LISTEN/NOTIFY
	NotifyChannel    string        // Channel the audit insert trigger notifies
	FallbackInterval time.Duration // How often to poll for missed entries
	PingInterval     time.Duration // Listener liveness check
	BatchSize        int           // Max entries to drain per pass
}

// DefaultOutboxConfig returns the worker defaults.
func DefaultOutboxConfig() OutboxConfig {
	return OutboxConfig{
		NotifyChannel:    "audit_outbox_events",
		FallbackInterval: 30 * time.Second,
		PingInterval:     90 * time.Second,
		BatchSize:        100,
	}
}

// OutboxWorker drains unpublished audit entries to a Publisher. It wakes on
// Postgres NOTIFY and falls back to interval polling so nothing is stranded
// when a notification is lost.
type OutboxWorker struct {
	db        *sql.DB
	listener  *pq.Listener
	publisher Publisher
	config    OutboxConfig

	mu       sync.Mutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewOutboxWorker creates the worker and opens the notification listener.
func NewOutboxWorker(db *sql.DB, publisher Publisher, cfg OutboxConfig) (*OutboxWorker, error) {
	listener := pq.NewListener(
		cfg.DatabaseURL,
		10*time.Second,
		time.Minute,
		func(ev pq.ListenerEventType, err error) {
			if err != nil {
				log.Error().Err(err).Msg("audit listener event")
			}
		},
	)
	if err := listener.Listen(cfg.NotifyChannel); err != nil {
		_ = listener.Close()
		return nil, fmt.Errorf("listen on %s: %w", cfg.NotifyChannel, err)
	}

	return &OutboxWorker{
		db:        db,
		listener:  listener,
		publisher: publisher,
		config:    cfg,
		stopChan:  make(chan struct{}),
	}, nil
}

// Start launches the drain loop.
func (w *OutboxWorker) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("audit outbox worker already running")
	}
	w.running = true
	w.mu.Unlock()

	w.wg.Add(1)
	go w.run(ctx)

	log.Info().
		Str("channel", w.config.NotifyChannel).
		Dur("fallback_interval", w.config.FallbackInterval).
		Int("batch_size", w.config.BatchSize).
		Msg("audit outbox worker started")

	return nil
}

// Stop shuts the worker down and closes the listener.
func (w *OutboxWorker) Stop() error {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return fmt.Errorf("audit outbox worker not running")
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopChan)
	w.wg.Wait()

	if err := w.listener.Close(); err != nil {
		return fmt.Errorf("close listener: %w", err)
	}
	log.Info().Msg("audit outbox worker stopped")
	return nil
}

// Running reports whether the drain loop is active.
func (w *OutboxWorker) Running() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *OutboxWorker) run(ctx context.Context) {
	defer w.wg.Done()

	fallback := time.NewTicker(w.config.FallbackInterval)
	defer fallback.Stop()
	ping := time.NewTicker(w.config.PingInterval)
	defer ping.Stop()

	// Drain anything pending from before the worker came up.
	w.drain(ctx)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopChan:
			return
		case <-w.listener.Notify:
			w.drain(ctx)
		case <-fallback.C:
			w.drain(ctx)
		case <-ping.C:
			if err := w.listener.Ping(); err != nil {
				log.Error().Err(err).Msg("audit listener ping failed")
			}
		}
	}
}

// drain publishes unpublished entries batch by batch until none remain.
// Each batch runs in its own transaction; a publish failure leaves the entry
// unpublished for the next pass.
func (w *OutboxWorker) drain(ctx context.Context) {
	for {
		var published int
		err := sqlutil.Run(ctx, w.db, func(tx *sql.Tx) error {
			repo := NewRepository(tx)
			entries, err := repo.ListUnpublishedForUpdate(ctx, w.config.BatchSize)
			if err != nil {
				return err
			}
			now := time.Now().UTC()
			for _, entry := range entries {
				if err := w.publisher.Publish(ctx, entry); err != nil {
					log.Error().Err(err).
						Str("audit_id", entry.ID.String()).
						Msg("failed to publish audit entry, will retry")
					continue
				}
				if err := repo.MarkPublished(ctx, entry.ID, now); err != nil {
					return err
				}
				published++
			}
			return nil
		})
		if err != nil {
			log.Error().Err(err).Msg("audit outbox drain failed")
			return
		}
		if published == 0 {
			return
		}
		log.Debug().Int("published", published).Msg("drained audit outbox batch")
	}
}
