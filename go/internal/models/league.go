package models

import (
	"time"

	"github.com/google/uuid"
)

// LeagueStatus represents where a league sits in its lifecycle
type LeagueStatus string

const (
	LeagueStatusPreDraft LeagueStatus = "PRE_DRAFT"
	LeagueStatusActive   LeagueStatus = "ACTIVE"
	LeagueStatusInactive LeagueStatus = "INACTIVE"
	LeagueStatusClosed   LeagueStatus = "CLOSED"
)

// League status wire codes as exposed to API callers.
const (
	LeagueStatusCodePreDraft = 0
	LeagueStatusCodeActive   = 1
	LeagueStatusCodeInactive = 2
	LeagueStatusCodeClosed   = 3
)

// LeagueStatusFromCode maps a numeric status code to a LeagueStatus.
// The bool result is false for codes outside 0-3.
func LeagueStatusFromCode(code int) (LeagueStatus, bool) {
	switch code {
	case LeagueStatusCodePreDraft:
		return LeagueStatusPreDraft, true
	case LeagueStatusCodeActive:
		return LeagueStatusActive, true
	case LeagueStatusCodeInactive:
		return LeagueStatusInactive, true
	case LeagueStatusCodeClosed:
		return LeagueStatusClosed, true
	default:
		return "", false
	}
}

// Code returns the numeric wire code for a status.
func (s LeagueStatus) Code() int {
	switch s {
	case LeagueStatusPreDraft:
		return LeagueStatusCodePreDraft
	case LeagueStatusActive:
		return LeagueStatusCodeActive
	case LeagueStatusInactive:
		return LeagueStatusCodeInactive
	case LeagueStatusClosed:
		return LeagueStatusCodeClosed
	default:
		return -1
	}
}

// League represents a fantasy football league
type League struct {
	ID                      uuid.UUID    `json:"id"`
	SeasonID                uuid.UUID    `json:"season_id"`
	Name                    string       `json:"name"`
	Description             string       `json:"description"`
	TeamSlots               int          `json:"team_slots"`
	Status                  LeagueStatus `json:"status"`
	PlayoffTeams            int          `json:"playoff_teams"`
	AllowDecimalScoring     bool         `json:"allow_decimal_scoring"`
	TradeDeadline           *time.Time   `json:"trade_deadline,omitempty"`
	MaxRosterChangesPerTeam *int         `json:"max_roster_changes_per_team,omitempty"`
	MaxFreeAgentAddsPerTeam *int         `json:"max_free_agent_adds_per_team,omitempty"`
	PositionFormatID        uuid.UUID    `json:"position_format_id"`
	ScoringSchemaID         uuid.UUID    `json:"scoring_schema_id"`
	PasswordHash            string       `json:"-"`
	CreatedAt               time.Time    `json:"created_at"`
	UpdatedAt               time.Time    `json:"updated_at"`
}
