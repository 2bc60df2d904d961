package models

import (
	"time"

	"github.com/google/uuid"
)

// Team represents a fantasy team owned by a user within a league
type Team struct {
	ID            uuid.UUID  `json:"id"`
	LeagueID      uuid.UUID  `json:"league_id"`
	OwnerID       uuid.UUID  `json:"owner_id"`
	Name          string     `json:"name"`
	LogoURL       string     `json:"logo_url"`
	ThumbnailURL  string     `json:"thumbnail_url"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"created_at"`
	DeactivatedAt *time.Time `json:"deactivated_at,omitempty"`
}
