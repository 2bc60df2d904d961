package audit

import (
	"net"
	"time"

	"github.com/google/uuid"
)

// Entity types recorded in the audit log.
const (
	EntityLeague      = "league"
	EntityTeam        = "team"
	EntityMembership  = "membership"
	EntityRosterEntry = "roster_entry"
	EntitySession     = "session"
)

// Action codes. One per state-changing operation, plus the security-relevant
// password-check and session family.
const (
	ActionLeagueCreated           = "LEAGUE_CREATED"
	ActionLeagueConfigUpdated     = "LEAGUE_CONFIG_UPDATED"
	ActionLeagueStatusChanged     = "LEAGUE_STATUS_CHANGED"
	ActionLeagueJoined            = "LEAGUE_JOINED"
	ActionLeagueLeft              = "LEAGUE_LEFT"
	ActionTeamRemoved             = "TEAM_REMOVED"
	ActionCoCommissionerAssigned  = "CO_COMMISSIONER_ASSIGNED"
	ActionCoCommissionerRemoved   = "CO_COMMISSIONER_REMOVED"
	ActionCommissionerTransferred = "COMMISSIONER_TRANSFERRED"
	ActionRosterPlayerAdded       = "ROSTER_PLAYER_ADDED"
	ActionRosterPlayerDropped     = "ROSTER_PLAYER_DROPPED"
	ActionLeaguePasswordChecked   = "LEAGUE_PASSWORD_CHECKED"
	ActionSessionIssued           = "SESSION_ISSUED"
	ActionSessionRefreshed        = "SESSION_REFRESHED"
	ActionSessionRevoked          = "SESSION_REVOKED"
)

// sessionScopedActions is the token-adjacent material the retention cleanup
// removes. Business action entries are kept indefinitely.
var sessionScopedActions = []string{
	ActionSessionIssued,
	ActionSessionRefreshed,
	ActionSessionRevoked,
	ActionLeaguePasswordChecked,
}

// Record is one action to append to the audit log. Details may be any
// JSON-marshalable value.
type Record struct {
	ActorID        *uuid.UUID
	ImpersonatorID *uuid.UUID
	EntityType     string
	EntityID       string
	Action         string
	Details        any
	SourceIP       net.IP
	UserAgent      string
}

// Filter narrows a Query. Zero-valued fields are ignored.
type Filter struct {
	EntityType string
	EntityID   string
	ActorID    *uuid.UUID
	Action     string
	From       *time.Time
	To         *time.Time
	Limit      int
}
