package models

import (
	"time"

	"github.com/google/uuid"
)

// Season is read-only reference data; leagues must point at an existing one.
type Season struct {
	ID        uuid.UUID `json:"id"`
	Year      int       `json:"year"`
	Label     string    `json:"label"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}

// PositionFormat describes a roster layout (e.g. standard, superflex).
// TotalSlots caps how many active roster entries a team may hold.
type PositionFormat struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	TotalSlots int       `json:"total_slots"`
}

// ScoringSchema identifies a scoring ruleset. Scoring computation itself
// lives elsewhere; leagues only reference a schema by id.
type ScoringSchema struct {
	ID              uuid.UUID `json:"id"`
	Name            string    `json:"name"`
	SupportsDecimal bool      `json:"supports_decimal"`
}
