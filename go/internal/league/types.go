package league

import (
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/gridiron/go/internal/models"
)

// CreateLeagueRequest represents the data needed to create a new league
type CreateLeagueRequest struct {
	SeasonID            uuid.UUID  `json:"season_id" validate:"required"`
	Name                string     `json:"name" validate:"required"`
	Description         string     `json:"description"`
	TeamSlots           int        `json:"team_slots" validate:"required"`
	PlayoffTeams        int        `json:"playoff_teams" validate:"required"`
	AllowDecimalScoring bool       `json:"allow_decimal_scoring"`
	TradeDeadline       *time.Time `json:"trade_deadline,omitempty"`
	PositionFormatID    uuid.UUID  `json:"position_format_id" validate:"required"`
	ScoringSchemaID     uuid.UUID  `json:"scoring_schema_id" validate:"required"`
	Password            string     `json:"password" validate:"required"`
	// InitialTeamName, when non-blank after trimming, creates the
	// commissioner's team in the same transaction.
	InitialTeamName string `json:"initial_team_name"`
}

// CreateLeagueResult is the summary returned to the creator
type CreateLeagueResult struct {
	LeagueID       uuid.UUID           `json:"league_id"`
	Status         models.LeagueStatus `json:"status"`
	AvailableSlots int                 `json:"available_slots"`
	InitialTeamID  *uuid.UUID          `json:"initial_team_id,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
}

// ConfigPatch carries league configuration edits. Nil fields are left
// unchanged; the Clear/Unlimited flags reset their nullable counterparts.
type ConfigPatch struct {
	// Pre-draft-only fields.
	TeamSlots        *int       `json:"team_slots,omitempty"`
	PositionFormatID *uuid.UUID `json:"position_format_id,omitempty"`
	ScoringSchemaID  *uuid.UUID `json:"scoring_schema_id,omitempty"`

	// Editable in any non-closed state.
	Description             *string    `json:"description,omitempty"`
	PlayoffTeams            *int       `json:"playoff_teams,omitempty"`
	AllowDecimalScoring     *bool      `json:"allow_decimal_scoring,omitempty"`
	TradeDeadline           *time.Time `json:"trade_deadline,omitempty"`
	ClearTradeDeadline      bool       `json:"clear_trade_deadline,omitempty"`
	MaxRosterChangesPerTeam *int       `json:"max_roster_changes_per_team,omitempty"`
	UnlimitedRosterChanges  bool       `json:"unlimited_roster_changes,omitempty"`
	MaxFreeAgentAddsPerTeam *int       `json:"max_free_agent_adds_per_team,omitempty"`
	UnlimitedFreeAgentAdds  bool       `json:"unlimited_free_agent_adds,omitempty"`
}

// LeagueSummary aggregates league configuration with its current teams
type LeagueSummary struct {
	League         models.League `json:"league"`
	Teams          []models.Team `json:"teams"`
	MemberCount    int           `json:"member_count"`
	AvailableSlots int           `json:"available_slots"`
}

// SearchFilters narrows a public league search. Zero-valued fields are
// ignored.
type SearchFilters struct {
	SeasonID      *uuid.UUID           `json:"season_id,omitempty"`
	Status        *models.LeagueStatus `json:"status,omitempty"`
	NameContains  string               `json:"name_contains,omitempty"`
	OpenSlotsOnly bool                 `json:"open_slots_only,omitempty"`
}

// Page selects a search result window
type Page struct {
	Number int `json:"number"`
	Size   int `json:"size"`
}

// SearchRow is one public search result. TotalRecords repeats the full match
// count on every row so clients can do paging math without a second query.
type SearchRow struct {
	LeagueID       uuid.UUID           `json:"league_id"`
	Name           string              `json:"name"`
	SeasonID       uuid.UUID           `json:"season_id"`
	Status         models.LeagueStatus `json:"status"`
	TeamSlots      int                 `json:"team_slots"`
	ActiveTeams    int                 `json:"active_teams"`
	AvailableSlots int                 `json:"available_slots"`
	TotalRecords   int64               `json:"total_records"`
}

// PasswordCheckResult is always returned by ValidatePassword, whether or not
// the league exists, to prevent enumeration.
type PasswordCheckResult struct {
	IsValid bool `json:"is_valid"`
}

// JoinLeagueResult echoes the created team and remaining capacity
type JoinLeagueResult struct {
	TeamID         uuid.UUID `json:"team_id"`
	AvailableSlots int       `json:"available_slots"`
	Message        string    `json:"message"`
}

// MutationResult is the minimal echo for role and membership mutations
type MutationResult struct {
	LeagueID uuid.UUID `json:"league_id"`
	Message  string    `json:"message"`
}
