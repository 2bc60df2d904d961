package roster

import (
	"github.com/google/uuid"

	"github.com/mcdev12/gridiron/go/internal/models"
)

// AddPlayerRequest represents the data needed to add a player to a roster
type AddPlayerRequest struct {
	TeamID          uuid.UUID              `json:"team_id" validate:"required"`
	PlayerID        uuid.UUID              `json:"player_id" validate:"required"`
	AcquisitionType models.AcquisitionType `json:"acquisition_type" validate:"required"`
}

// AddPlayerResult echoes the created entry and remaining roster capacity
type AddPlayerResult struct {
	EntryID        uuid.UUID `json:"entry_id"`
	SlotsRemaining int       `json:"slots_remaining"`
}

// TeamRoster is a team's current active roster with capacity info
type TeamRoster struct {
	TeamID     uuid.UUID            `json:"team_id"`
	Entries    []models.RosterEntry `json:"entries"`
	SlotsUsed  int                  `json:"slots_used"`
	SlotsTotal int                  `json:"slots_total"`
}

// AcquisitionBreakdown is one slice of a team's acquisition distribution.
// Percent is of the team's active roster; the slices sum to 100 for any
// non-empty roster.
type AcquisitionBreakdown struct {
	Type    models.AcquisitionType `json:"type"`
	Count   int                    `json:"count"`
	Percent float64                `json:"percent"`
}
