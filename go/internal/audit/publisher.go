package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/gridiron/go/internal/models"
)

// Publisher ships audit entries downstream.
type Publisher interface {
	Publish(ctx context.Context, entry models.AuditLogEntry) error
}

// JetStreamConfig holds NATS JetStream settings for the audit stream.
type JetStreamConfig struct {
	URL             string
	StreamName      string
	SubjectPrefix   string
	MaxReconnects   int
	ReconnectWait   time.Duration
	MaxAge          time.Duration
	Replicas        int
	DuplicateWindow time.Duration
}

// DefaultJetStreamConfig returns sane local-dev defaults.
func DefaultJetStreamConfig() JetStreamConfig {
	return JetStreamConfig{
		URL:             nats.DefaultURL,
		StreamName:      "AUDIT_EVENTS",
		SubjectPrefix:   "audit.events",
		MaxReconnects:   -1,
		ReconnectWait:   2 * time.Second,
		MaxAge:          30 * 24 * time.Hour,
		Replicas:        1,
		DuplicateWindow: 2 * time.Hour,
	}
}

// JetStreamPublisher publishes audit entries to NATS JetStream. The entry id
// doubles as the message id so redelivery after a crash deduplicates.
type JetStreamPublisher struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	config JetStreamConfig
}

// NewJetStreamPublisher connects to NATS and ensures the audit stream exists.
func NewJetStreamPublisher(cfg JetStreamConfig) (*JetStreamPublisher, error) {
	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Error().Err(err).Msg("NATS disconnected")
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info().Str("url", nc.ConnectedUrl()).Msg("NATS reconnected")
		}),
		nats.ErrorHandler(func(nc *nats.Conn, sub *nats.Subscription, err error) {
			log.Error().Err(err).Msg("NATS error")
		}),
	}

	nc, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("create JetStream context: %w", err)
	}

	p := &JetStreamPublisher{nc: nc, js: js, config: cfg}

	if err := p.ensureStream(context.Background()); err != nil {
		nc.Close()
		return nil, fmt.Errorf("ensure stream: %w", err)
	}

	return p, nil
}

func (p *JetStreamPublisher) ensureStream(ctx context.Context) error {
	sc := jetstream.StreamConfig{
		Name:        p.config.StreamName,
		Description: "Audit trail event stream",
		Subjects:    []string{fmt.Sprintf("%s.>", p.config.SubjectPrefix)},
		MaxAge:      p.config.MaxAge,
		Replicas:    p.config.Replicas,
		Duplicates:  p.config.DuplicateWindow,
		Storage:     jetstream.FileStorage,
	}

	_, err := p.js.CreateOrUpdateStream(ctx, sc)
	if err != nil {
		return fmt.Errorf("create or update stream %s: %w", p.config.StreamName, err)
	}
	return nil
}

// Publish sends one audit entry envelope to its entity-type subject.
func (p *JetStreamPublisher) Publish(ctx context.Context, entry models.AuditLogEntry) error {
	subject := fmt.Sprintf("%s.%s", p.config.SubjectPrefix, entry.EntityType)

	envelope := map[string]any{
		"auditId":    entry.ID.String(),
		"action":     entry.Action,
		"entityType": entry.EntityType,
		"entityId":   entry.EntityID,
		"occurredAt": entry.CreatedAt,
	}
	if entry.ActorID != nil {
		envelope["actorId"] = entry.ActorID.String()
	}
	if len(entry.Details) > 0 {
		envelope["details"] = json.RawMessage(entry.Details)
	}

	payload, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal audit envelope: %w", err)
	}

	_, err = p.js.Publish(ctx, subject, payload,
		jetstream.WithMsgID(entry.ID.String()))
	if err != nil {
		return fmt.Errorf("publish audit entry %s: %w", entry.ID, err)
	}
	return nil
}

// Connected reports whether the underlying NATS connection is up.
func (p *JetStreamPublisher) Connected() bool {
	return p.nc != nil && p.nc.IsConnected()
}

// Close drains the NATS connection.
func (p *JetStreamPublisher) Close() error {
	if p.nc != nil {
		return p.nc.Drain()
	}
	return nil
}

// LogPublisher is a stand-in publisher for development and tests.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, entry models.AuditLogEntry) error {
	log.Info().
		Str("audit_id", entry.ID.String()).
		Str("action", entry.Action).
		Str("entity_type", entry.EntityType).
		Str("entity_id", entry.EntityID).
		Msg("publishing audit entry")
	return nil
}
