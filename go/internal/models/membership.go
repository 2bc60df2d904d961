package models

import (
	"time"

	"github.com/google/uuid"
)

// RoleCode represents a user's role within a league
type RoleCode string

const (
	RoleMember              RoleCode = "MEMBER"
	RoleCoCommissioner      RoleCode = "CO_COMMISSIONER"
	RolePrimaryCommissioner RoleCode = "PRIMARY_COMMISSIONER"
)

// Membership ties a user to a league with a role. A membership stays on
// record after the user leaves; LeftAt marks it closed.
type Membership struct {
	ID       uuid.UUID  `json:"id"`
	LeagueID uuid.UUID  `json:"league_id"`
	UserID   uuid.UUID  `json:"user_id"`
	Role     RoleCode   `json:"role"`
	Explicit bool       `json:"explicit"`
	JoinedAt time.Time  `json:"joined_at"`
	LeftAt   *time.Time `json:"left_at,omitempty"`
}

// IsActive reports whether the membership is still open.
func (m Membership) IsActive() bool {
	return m.LeftAt == nil
}
