package models

import (
	"encoding/json"
	"net"
	"time"

	"github.com/google/uuid"
)

// AuditLogEntry is an append-only record of a state-changing action.
// PublishedAt doubles as the outbox watermark for event fan-out.
type AuditLogEntry struct {
	ID             uuid.UUID       `json:"id"`
	ActorID        *uuid.UUID      `json:"actor_id,omitempty"`
	ImpersonatorID *uuid.UUID      `json:"impersonator_id,omitempty"`
	EntityType     string          `json:"entity_type"`
	EntityID       string          `json:"entity_id"`
	Action         string          `json:"action"`
	Details        json.RawMessage `json:"details,omitempty"`
	SourceIP       net.IP          `json:"source_ip,omitempty"`
	UserAgent      string          `json:"user_agent,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	PublishedAt    *time.Time      `json:"published_at,omitempty"`
}
