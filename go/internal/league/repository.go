package league

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/gridiron/go/internal/apperrors"
	"github.com/mcdev12/gridiron/go/internal/models"
	"github.com/mcdev12/gridiron/go/internal/sqlutil"
)

const leagueColumns = `id, season_id, name, description, team_slots, status, playoff_teams,
	allow_decimal_scoring, trade_deadline, max_roster_changes_per_team, max_free_agent_adds_per_team,
	position_format_id, scoring_schema_id, password_hash, created_at, updated_at`

// CreateLeagueParams is a validated league row ready to insert. The password
// is already hashed by the app layer.
type CreateLeagueParams struct {
	SeasonID                uuid.UUID
	Name                    string
	Description             string
	TeamSlots               int
	PlayoffTeams            int
	AllowDecimalScoring     bool
	TradeDeadline           *time.Time
	MaxRosterChangesPerTeam *int
	MaxFreeAgentAddsPerTeam *int
	PositionFormatID        uuid.UUID
	ScoringSchemaID         uuid.UUID
	PasswordHash            string
}

// Repository implements league data access operations
type Repository struct {
	db sqlutil.DBTX
}

// NewRepository creates a new league repository
func NewRepository(db sqlutil.DBTX) *Repository {
	return &Repository{db: db}
}

// CreateLeague inserts a new league in PRE_DRAFT
func (r *Repository) CreateLeague(ctx context.Context, params CreateLeagueParams) (*models.League, error) {
	const query = `
		INSERT INTO leagues (id, season_id, name, description, team_slots, status, playoff_teams,
			allow_decimal_scoring, trade_deadline, max_roster_changes_per_team, max_free_agent_adds_per_team,
			position_format_id, scoring_schema_id, password_hash)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + leagueColumns

	row := r.db.QueryRowContext(ctx, query,
		uuid.New(), params.SeasonID, params.Name, params.Description,
		params.TeamSlots, models.LeagueStatusPreDraft, params.PlayoffTeams,
		params.AllowDecimalScoring,
		sqlutil.ToSqlTime(params.TradeDeadline),
		sqlutil.ToSqlInt32(params.MaxRosterChangesPerTeam),
		sqlutil.ToSqlInt32(params.MaxFreeAgentAddsPerTeam),
		params.PositionFormatID, params.ScoringSchemaID, params.PasswordHash,
	)
	league, err := scanLeague(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create league: %w", err)
	}
	return league, nil
}

// GetLeague retrieves a league by ID
func (r *Repository) GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error) {
	return r.getLeague(ctx, id, false)
}

// GetLeagueForUpdate retrieves a league by ID and takes its row lock,
// serializing concurrent membership, team and roster mutations per league.
// Only valid inside a transaction.
func (r *Repository) GetLeagueForUpdate(ctx context.Context, id uuid.UUID) (*models.League, error) {
	return r.getLeague(ctx, id, true)
}

func (r *Repository) getLeague(ctx context.Context, id uuid.UUID, forUpdate bool) (*models.League, error) {
	query := `SELECT ` + leagueColumns + ` FROM leagues WHERE id = $1`
	if forUpdate {
		query += ` FOR UPDATE`
	}

	league, err := scanLeague(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "league %s does not exist", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get league: %w", err)
	}
	return league, nil
}

// NameExistsInSeason reports whether a league with the name (case-insensitive)
// already exists in the season
func (r *Repository) NameExistsInSeason(ctx context.Context, seasonID uuid.UUID, name string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM leagues
			WHERE season_id = $1 AND lower(name) = lower($2)
		)`

	var exists bool
	if err := r.db.QueryRowContext(ctx, query, seasonID, name).Scan(&exists); err != nil {
		return false, fmt.Errorf("failed to check league name: %w", err)
	}
	return exists, nil
}

// UpdateLeague writes the mutable configuration columns of a league
func (r *Repository) UpdateLeague(ctx context.Context, league *models.League) (*models.League, error) {
	const query = `
		UPDATE leagues
		SET description = $2,
			team_slots = $3,
			playoff_teams = $4,
			allow_decimal_scoring = $5,
			trade_deadline = $6,
			max_roster_changes_per_team = $7,
			max_free_agent_adds_per_team = $8,
			position_format_id = $9,
			scoring_schema_id = $10,
			updated_at = now()
		WHERE id = $1
		RETURNING ` + leagueColumns

	row := r.db.QueryRowContext(ctx, query,
		league.ID, league.Description, league.TeamSlots, league.PlayoffTeams,
		league.AllowDecimalScoring,
		sqlutil.ToSqlTime(league.TradeDeadline),
		sqlutil.ToSqlInt32(league.MaxRosterChangesPerTeam),
		sqlutil.ToSqlInt32(league.MaxFreeAgentAddsPerTeam),
		league.PositionFormatID, league.ScoringSchemaID,
	)
	updated, err := scanLeague(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "league %s does not exist", league.ID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update league: %w", err)
	}
	return updated, nil
}

// UpdateStatus writes only the status of a league
func (r *Repository) UpdateStatus(ctx context.Context, id uuid.UUID, status models.LeagueStatus) (*models.League, error) {
	const query = `
		UPDATE leagues
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING ` + leagueColumns

	league, err := scanLeague(r.db.QueryRowContext(ctx, query, id, status))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.Newf(apperrors.KindNotFound, "league %s does not exist", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update league status: %w", err)
	}
	return league, nil
}

// Search returns a page of public league rows matching the filters. Every row
// carries the total match count via a window aggregate.
func (r *Repository) Search(ctx context.Context, filters SearchFilters, limit, offset int) ([]SearchRow, error) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, val any) {
		args = append(args, val)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filters.SeasonID != nil {
		add("l.season_id = $%d", *filters.SeasonID)
	}
	if filters.Status != nil {
		add("l.status = $%d", *filters.Status)
	}
	if filters.NameContains != "" {
		add("l.name ILIKE '%%' || $%d || '%%'", filters.NameContains)
	}

	query := `
		SELECT l.id, l.name, l.season_id, l.status, l.team_slots,
			COUNT(t.id) FILTER (WHERE t.active) AS active_teams,
			COUNT(*) OVER () AS total_records
		FROM leagues l
		LEFT JOIN teams t ON t.league_id = l.id
	`
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " GROUP BY l.id"
	if filters.OpenSlotsOnly {
		query += " HAVING COUNT(t.id) FILTER (WHERE t.active) < l.team_slots"
	}
	args = append(args, limit)
	query += fmt.Sprintf(" ORDER BY l.created_at DESC LIMIT $%d", len(args))
	args = append(args, offset)
	query += fmt.Sprintf(" OFFSET $%d", len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to search leagues: %w", err)
	}
	defer rows.Close()

	var results []SearchRow
	for rows.Next() {
		var row SearchRow
		err := rows.Scan(&row.LeagueID, &row.Name, &row.SeasonID, &row.Status,
			&row.TeamSlots, &row.ActiveTeams, &row.TotalRecords)
		if err != nil {
			return nil, fmt.Errorf("failed to scan league search row: %w", err)
		}
		row.AvailableSlots = row.TeamSlots - row.ActiveTeams
		results = append(results, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to search leagues: %w", err)
	}
	return results, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLeague(row rowScanner) (*models.League, error) {
	var (
		league           models.League
		tradeDeadline    sql.NullTime
		maxRosterChanges sql.NullInt32
		maxFreeAgentAdds sql.NullInt32
	)
	err := row.Scan(&league.ID, &league.SeasonID, &league.Name, &league.Description,
		&league.TeamSlots, &league.Status, &league.PlayoffTeams,
		&league.AllowDecimalScoring, &tradeDeadline, &maxRosterChanges,
		&maxFreeAgentAdds, &league.PositionFormatID, &league.ScoringSchemaID,
		&league.PasswordHash, &league.CreatedAt, &league.UpdatedAt)
	if err != nil {
		return nil, err
	}
	league.TradeDeadline = sqlutil.FromSqlTime(tradeDeadline)
	league.MaxRosterChangesPerTeam = sqlutil.FromSqlInt32(maxRosterChanges)
	league.MaxFreeAgentAddsPerTeam = sqlutil.FromSqlInt32(maxFreeAgentAdds)
	return &league, nil
}
