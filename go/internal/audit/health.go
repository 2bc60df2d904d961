package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// pendingBacklogWarning is the unpublished-entry count above which the
// health report flags a backlog.
const pendingBacklogWarning = 1000

// HealthStatus is the audit pipeline's health snapshot
type HealthStatus struct {
	Healthy           bool      `json:"healthy"`
	DatabaseConnected bool      `json:"database_connected"`
	NATSConnected     bool      `json:"nats_connected"`
	WorkerActive      bool      `json:"worker_active"`
	PendingEntries    int       `json:"pending_entries"`
	CheckedAt         time.Time `json:"checked_at"`
	Errors            []string  `json:"errors"`
}

// ConnStatus reports whether a downstream connection is up. Satisfied by
// JetStreamPublisher; nil-able for deployments without NATS.
type ConnStatus interface {
	Connected() bool
}

// HealthChecker probes the database, the publisher connection and the outbox
// worker, and serves the result as JSON.
type HealthChecker struct {
	db     *sql.DB
	worker *OutboxWorker
	conn   ConnStatus
}

// NewHealthChecker creates a health checker. conn may be nil when the
// deployment publishes to a log sink instead of NATS.
func NewHealthChecker(db *sql.DB, worker *OutboxWorker, conn ConnStatus) *HealthChecker {
	return &HealthChecker{db: db, worker: worker, conn: conn}
}

// Check probes every dependency and aggregates the result.
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Healthy:   true,
		CheckedAt: time.Now().UTC(),
		Errors:    []string{},
	}

	if err := h.db.PingContext(ctx); err != nil {
		status.Healthy = false
		status.Errors = append(status.Errors, fmt.Sprintf("database ping failed: %v", err))
	} else {
		status.DatabaseConnected = true
	}

	if h.conn != nil {
		status.NATSConnected = h.conn.Connected()
		if !status.NATSConnected {
			status.Healthy = false
			status.Errors = append(status.Errors, "NATS disconnected")
		}
	}

	if h.worker != nil {
		status.WorkerActive = h.worker.Running()
		if !status.WorkerActive {
			status.Healthy = false
			status.Errors = append(status.Errors, "outbox worker not active")
		}
	}

	if status.DatabaseConnected {
		pending, err := NewRepository(h.db).CountUnpublished(ctx)
		if err != nil {
			status.Errors = append(status.Errors, fmt.Sprintf("failed to count pending entries: %v", err))
		} else {
			status.PendingEntries = pending
			if pending > pendingBacklogWarning {
				status.Errors = append(status.Errors, fmt.Sprintf("high pending entry count: %d", pending))
			}
		}
	}

	return status
}

// ServeHTTP reports health as JSON, 503 when unhealthy.
func (h *HealthChecker) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := h.Check(ctx)

	w.Header().Set("Content-Type", "application/json")
	if !status.Healthy {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	_ = json.NewEncoder(w).Encode(status)
}
