// Package membership is the per-league role store. Memberships are closed by
// setting left_at, never deleted, so historical queries stay valid.
package membership

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/gridiron/go/internal/apperrors"
	"github.com/mcdev12/gridiron/go/internal/models"
	"github.com/mcdev12/gridiron/go/internal/sqlutil"
)

const membershipColumns = `id, league_id, user_id, role, explicit, joined_at, left_at`

// CreateMembershipRequest represents the data needed to open a membership
type CreateMembershipRequest struct {
	LeagueID uuid.UUID       `json:"league_id"`
	UserID   uuid.UUID       `json:"user_id"`
	Role     models.RoleCode `json:"role"`
	Explicit bool            `json:"explicit"`
	JoinedAt time.Time       `json:"joined_at"`
}

// Repository implements membership data access operations
type Repository struct {
	db sqlutil.DBTX
}

// NewRepository creates a new membership repository
func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{db: db}
}

// CreateMembership opens a membership row
func (r *Repository) CreateMembership(ctx context.Context, req CreateMembershipRequest) (*models.Membership, error) {
	const query = `
		INSERT INTO memberships (id, league_id, user_id, role, explicit, joined_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + membershipColumns

	row := r.db.QueryRowContext(ctx, query,
		uuid.New(), req.LeagueID, req.UserID, req.Role, req.Explicit, req.JoinedAt,
	)
	m, err := scanMembership(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create membership: %w", err)
	}
	return m, nil
}

// GetActiveMembership retrieves the open membership for a user in a league
func (r *Repository) GetActiveMembership(ctx context.Context, leagueID, userID uuid.UUID) (*models.Membership, error) {
	const query = `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE league_id = $1 AND user_id = $2 AND left_at IS NULL`

	m, err := scanMembership(r.db.QueryRowContext(ctx, query, leagueID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.KindNotFound, "user is not an active member of this league")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get active membership: %w", err)
	}
	return m, nil
}

// GetActivePrimaryCommissioner retrieves the league's single open
// PRIMARY_COMMISSIONER membership
func (r *Repository) GetActivePrimaryCommissioner(ctx context.Context, leagueID uuid.UUID) (*models.Membership, error) {
	const query = `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE league_id = $1 AND role = $2 AND left_at IS NULL`

	m, err := scanMembership(r.db.QueryRowContext(ctx, query, leagueID, models.RolePrimaryCommissioner))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.KindNotFound, "league has no active primary commissioner")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get primary commissioner: %w", err)
	}
	return m, nil
}

// ListActiveByLeague retrieves all open memberships for a league
func (r *Repository) ListActiveByLeague(ctx context.Context, leagueID uuid.UUID) ([]models.Membership, error) {
	const query = `
		SELECT ` + membershipColumns + `
		FROM memberships
		WHERE league_id = $1 AND left_at IS NULL
		ORDER BY joined_at`

	rows, err := r.db.QueryContext(ctx, query, leagueID)
	if err != nil {
		return nil, fmt.Errorf("failed to list memberships by league: %w", err)
	}
	defer rows.Close()

	var memberships []models.Membership
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan membership: %w", err)
		}
		memberships = append(memberships, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list memberships by league: %w", err)
	}
	return memberships, nil
}

// UpdateRole changes the role on an open membership
func (r *Repository) UpdateRole(ctx context.Context, id uuid.UUID, role models.RoleCode) (*models.Membership, error) {
	const query = `
		UPDATE memberships
		SET role = $2
		WHERE id = $1 AND left_at IS NULL
		RETURNING ` + membershipColumns

	m, err := scanMembership(r.db.QueryRowContext(ctx, query, id, role))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.New(apperrors.KindNotFound, "membership is not active")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update membership role: %w", err)
	}
	return m, nil
}

// CloseMembership sets left_at on an open membership
func (r *Repository) CloseMembership(ctx context.Context, id uuid.UUID, leftAt time.Time) error {
	const query = `
		UPDATE memberships
		SET left_at = $2
		WHERE id = $1 AND left_at IS NULL`

	res, err := r.db.ExecContext(ctx, query, id, leftAt)
	if err != nil {
		return fmt.Errorf("failed to close membership: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to close membership: %w", err)
	}
	if affected == 0 {
		return apperrors.New(apperrors.KindNotFound, "membership is not active")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMembership(row rowScanner) (*models.Membership, error) {
	var (
		m      models.Membership
		leftAt sql.NullTime
	)
	err := row.Scan(&m.ID, &m.LeagueID, &m.UserID, &m.Role, &m.Explicit, &m.JoinedAt, &leftAt)
	if err != nil {
		return nil, err
	}
	m.LeftAt = sqlutil.FromSqlTime(leftAt)
	return &m, nil
}
