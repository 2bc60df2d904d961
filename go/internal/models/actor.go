package models

import (
	"net"

	"github.com/google/uuid"
)

// Actor is the already-authenticated identity attached to a request by the
// upstream session provider. This core trusts it as-is.
type Actor struct {
	UserID    uuid.UUID
	SourceIP  net.IP
	UserAgent string
}
