package audit

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sqlc-dev/pqtype"

	"github.com/mcdev12/gridiron/go/internal/models"
	"github.com/mcdev12/gridiron/go/internal/sqlutil"
)

const auditColumns = `id, actor_id, impersonator_id, entity_type, entity_id, action, details, source_ip, user_agent, created_at, published_at`

// InsertEntryParams is a fully prepared audit row.
type InsertEntryParams struct {
	ActorID        *uuid.UUID
	ImpersonatorID *uuid.UUID
	EntityType     string
	EntityID       string
	Action         string
	Details        json.RawMessage
	SourceIP       net.IP
	UserAgent      string
	CreatedAt      time.Time
}

// Repository implements audit-log data access operations
type Repository struct {
	db sqlutil.DBTX
}

// NewRepository creates a new audit repository
func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{db: db}
}

// InsertEntry appends one audit row. Rows are immutable once written.
func (r *Repository) InsertEntry(ctx context.Context, params InsertEntryParams) error {
	const query = `
		INSERT INTO audit_log (id, actor_id, impersonator_id, entity_type, entity_id, action, details, source_ip, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.db.ExecContext(ctx, query,
		uuid.New(),
		sqlutil.ToNullUUID(params.ActorID),
		sqlutil.ToNullUUID(params.ImpersonatorID),
		params.EntityType,
		params.EntityID,
		params.Action,
		toNullRawMessage(params.Details),
		toInet(params.SourceIP),
		sqlutil.ToSqlString(nilIfEmpty(params.UserAgent)),
		params.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert audit entry: %w", err)
	}
	return nil
}

// QueryEntries returns matching entries newest-first, bounded by the filter
// limit. The WHERE clause is assembled from parameter placeholders only.
func (r *Repository) QueryEntries(ctx context.Context, filter Filter) ([]models.AuditLogEntry, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.EntityType != "" {
		add("entity_type = $%d", filter.EntityType)
	}
	if filter.EntityID != "" {
		add("entity_id = $%d", filter.EntityID)
	}
	if filter.ActorID != nil {
		add("actor_id = $%d", *filter.ActorID)
	}
	if filter.Action != "" {
		add("action = $%d", filter.Action)
	}
	if filter.From != nil {
		add("created_at >= $%d", *filter.From)
	}
	if filter.To != nil {
		add("created_at < $%d", *filter.To)
	}

	query := `SELECT ` + auditColumns + ` FROM audit_log`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	args = append(args, filter.Limit)
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditLogEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query audit entries: %w", err)
	}
	return entries, nil
}

// DeleteExpired removes entries with the given actions older than the cutoff
// and reports how many rows went away. Safe to run repeatedly.
func (r *Repository) DeleteExpired(ctx context.Context, actions []string, cutoff time.Time) (int64, error) {
	const query = `DELETE FROM audit_log WHERE action = ANY($1) AND created_at < $2`

	res, err := r.db.ExecContext(ctx, query, pq.Array(actions), cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired audit entries: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired audit entries: %w", err)
	}
	return removed, nil
}

// ListUnpublishedForUpdate fetches a batch of unpublished entries oldest-first,
// locking them so concurrent workers skip past each other.
func (r *Repository) ListUnpublishedForUpdate(ctx context.Context, limit int) ([]models.AuditLogEntry, error) {
	const query = `
		SELECT ` + auditColumns + `
		FROM audit_log
		WHERE published_at IS NULL
		ORDER BY created_at
		LIMIT $1
		FOR UPDATE SKIP LOCKED`

	rows, err := r.db.QueryContext(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list unpublished audit entries: %w", err)
	}
	defer rows.Close()

	var entries []models.AuditLogEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list unpublished audit entries: %w", err)
	}
	return entries, nil
}

// CountUnpublished reports the outbox backlog.
func (r *Repository) CountUnpublished(ctx context.Context) (int, error) {
	const query = `SELECT COUNT(*) FROM audit_log WHERE published_at IS NULL`

	var count int
	if err := r.db.QueryRowContext(ctx, query).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count unpublished audit entries: %w", err)
	}
	return count, nil
}

// MarkPublished stamps the outbox watermark on an entry.
func (r *Repository) MarkPublished(ctx context.Context, id uuid.UUID, at time.Time) error {
	const query = `UPDATE audit_log SET published_at = $2 WHERE id = $1`

	if _, err := r.db.ExecContext(ctx, query, id, at); err != nil {
		return fmt.Errorf("failed to mark audit entry published: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*models.AuditLogEntry, error) {
	var (
		entry          models.AuditLogEntry
		actorID        uuid.NullUUID
		impersonatorID uuid.NullUUID
		details        pqtype.NullRawMessage
		sourceIP       pqtype.Inet
		userAgent      sql.NullString
		publishedAt    sql.NullTime
	)
	err := row.Scan(&entry.ID, &actorID, &impersonatorID, &entry.EntityType,
		&entry.EntityID, &entry.Action, &details, &sourceIP, &userAgent,
		&entry.CreatedAt, &publishedAt)
	if err != nil {
		return nil, err
	}
	entry.ActorID = sqlutil.FromNullUUID(actorID)
	entry.ImpersonatorID = sqlutil.FromNullUUID(impersonatorID)
	if details.Valid {
		entry.Details = details.RawMessage
	}
	if sourceIP.Valid {
		entry.SourceIP = sourceIP.IPNet.IP
	}
	entry.UserAgent = sqlutil.FromSqlString(userAgent, "")
	entry.PublishedAt = sqlutil.FromSqlTime(publishedAt)
	return &entry, nil
}

func toNullRawMessage(raw json.RawMessage) pqtype.NullRawMessage {
	if len(raw) == 0 {
		return pqtype.NullRawMessage{Valid: false}
	}
	return pqtype.NullRawMessage{RawMessage: raw, Valid: true}
}

func toInet(ip net.IP) pqtype.Inet {
	if ip == nil {
		return pqtype.Inet{Valid: false}
	}
	bits := 32
	if ip.To4() == nil {
		bits = 128
	}
	return pqtype.Inet{
		IPNet: net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)},
		Valid: true,
	}
}

func nilIfEmpty(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
