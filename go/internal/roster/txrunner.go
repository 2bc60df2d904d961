package roster

import (
	"context"
	"database/sql"

	"github.com/mcdev12/gridiron/go/internal/league"
	"github.com/mcdev12/gridiron/go/internal/membership"
	"github.com/mcdev12/gridiron/go/internal/sqlutil"
	"github.com/mcdev12/gridiron/go/internal/team"
)

// TxRepos bundles the repositories bound to one roster transaction
type TxRepos struct {
	Rosters     RosterRepository
	Teams       TeamReader
	Leagues     LeagueReader
	Memberships MembershipReader
}

// TxRunner executes fn with repositories bound to a single transaction
type TxRunner interface {
	RunTx(ctx context.Context, fn func(r TxRepos) error) error
}

// SQLTxRunner runs roster transactions against a pooled *sql.DB
type SQLTxRunner struct {
	db *sql.DB
}

// NewSQLTxRunner creates a transaction runner
func NewSQLTxRunner(db *sql.DB) *SQLTxRunner {
	return &SQLTxRunner{db: db}
}

// RunTx binds fresh repositories to one *sql.Tx and runs fn inside it
func (r *SQLTxRunner) RunTx(ctx context.Context, fn func(r TxRepos) error) error {
	return sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		return fn(TxRepos{
			Rosters:     NewRepository(tx),
			Teams:       team.NewRepository(tx),
			Leagues:     league.NewRepository(tx),
			Memberships: membership.NewRepository(tx),
		})
	})
}
