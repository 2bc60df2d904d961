// Package audit appends an immutable action-log entry for every
// state-changing operation and fans the entries out through a transactional
// outbox.
package audit

import (
	"context"
	"encoding/json"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/gridiron/go/internal/models"
)

const (
	defaultQueryLimit = 50
	maxQueryLimit     = 500
)

// RecorderRepository defines what the recorder needs from the repository
type RecorderRepository interface {
	InsertEntry(ctx context.Context, params InsertEntryParams) error
	QueryEntries(ctx context.Context, filter Filter) ([]models.AuditLogEntry, error)
	DeleteExpired(ctx context.Context, actions []string, cutoff time.Time) (int64, error)
}

// Recorder appends and reads audit entries. RecordAction never reports an
// error to the caller: a failed append must not abort the business operation
// that triggered it.
type Recorder struct {
	repo  RecorderRepository
	clock clockwork.Clock
}

// NewRecorder creates a new audit recorder
func NewRecorder(repo RecorderRepository, clock clockwork.Clock) *Recorder {
	return &Recorder{
		repo:  repo,
		clock: clock,
	}
}

// RecordAction appends one audit row. Failures are logged and swallowed.
func (r *Recorder) RecordAction(ctx context.Context, rec Record) {
	var details json.RawMessage
	if rec.Details != nil {
		raw, err := json.Marshal(rec.Details)
		if err != nil {
			log.Error().Err(err).
				Str("action", rec.Action).
				Str("entity_type", rec.EntityType).
				Str("entity_id", rec.EntityID).
				Msg("failed to marshal audit details, recording without them")
		} else {
			details = raw
		}
	}

	err := r.repo.InsertEntry(ctx, InsertEntryParams{
		ActorID:        rec.ActorID,
		ImpersonatorID: rec.ImpersonatorID,
		EntityType:     rec.EntityType,
		EntityID:       rec.EntityID,
		Action:         rec.Action,
		Details:        details,
		SourceIP:       rec.SourceIP,
		UserAgent:      rec.UserAgent,
		CreatedAt:      r.clock.Now().UTC(),
	})
	if err != nil {
		log.Error().Err(err).
			Str("action", rec.Action).
			Str("entity_type", rec.EntityType).
			Str("entity_id", rec.EntityID).
			Msg("failed to record audit action")
	}
}

// Query returns matching entries newest-first. The limit defaults to 50 and
// is capped at 500.
func (r *Recorder) Query(ctx context.Context, filter Filter) ([]models.AuditLogEntry, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultQueryLimit
	}
	if filter.Limit > maxQueryLimit {
		filter.Limit = maxQueryLimit
	}
	return r.repo.QueryEntries(ctx, filter)
}

// CleanupExpired removes session/token-adjacent entries older than the
// retention window. Idempotent; returns the number of rows removed.
func (r *Recorder) CleanupExpired(ctx context.Context, retentionDays int) (int64, error) {
	cutoff := r.clock.Now().UTC().AddDate(0, 0, -retentionDays)
	removed, err := r.repo.DeleteExpired(ctx, sessionScopedActions, cutoff)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		log.Info().
			Int64("removed", removed).
			Time("cutoff", cutoff).
			Msg("cleaned up expired audit entries")
	}
	return removed, nil
}
