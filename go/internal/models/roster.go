package models

import (
	"time"

	"github.com/google/uuid"
)

// AcquisitionType represents how a player was acquired
type AcquisitionType string

const (
	AcquisitionTypeDraft     AcquisitionType = "DRAFT"
	AcquisitionTypeTrade     AcquisitionType = "TRADE"
	AcquisitionTypeFreeAgent AcquisitionType = "FREE_AGENT"
	AcquisitionTypeWaiver    AcquisitionType = "WAIVER"
)

// RosterEntry is a single player-to-team assignment. Entries are never
// physically deleted; dropping a player flips Active and sets DroppedAt.
type RosterEntry struct {
	ID              uuid.UUID       `json:"id"`
	TeamID          uuid.UUID       `json:"team_id"`
	LeagueID        uuid.UUID       `json:"league_id"`
	PlayerID        uuid.UUID       `json:"player_id"`
	AcquisitionType AcquisitionType `json:"acquisition_type"`
	AcquiredAt      time.Time       `json:"acquired_at"`
	Active          bool            `json:"active"`
	DroppedAt       *time.Time      `json:"dropped_at,omitempty"`
}
