package models

import (
	"time"

	"github.com/google/uuid"
)

// Player represents a real-world player eligible for fantasy rosters
type Player struct {
	ID        uuid.UUID `json:"id"`
	FullName  string    `json:"full_name"`
	Position  string    `json:"position"`
	ImageURL  string    `json:"image_url"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
}
