package league

import (
	"context"
	"database/sql"

	"github.com/mcdev12/gridiron/go/internal/membership"
	"github.com/mcdev12/gridiron/go/internal/sqlutil"
	"github.com/mcdev12/gridiron/go/internal/team"
)

// TxRepos bundles the repositories bound to one transaction. Everything a
// mutation touches between validation and commit goes through these.
type TxRepos struct {
	Leagues     LeagueRepository
	Teams       TeamRepository
	Memberships MembershipRepository
}

// TxRunner executes fn with repositories bound to a single transaction.
// If fn returns an error, nothing it did is visible afterwards.
type TxRunner interface {
	RunTx(ctx context.Context, fn func(r TxRepos) error) error
}

// SQLTxRunner runs transactions against a pooled *sql.DB.
type SQLTxRunner struct {
	db *sql.DB
}

// NewSQLTxRunner creates a transaction runner
func NewSQLTxRunner(db *sql.DB) *SQLTxRunner {
	return &SQLTxRunner{db: db}
}

// RunTx binds fresh repositories to one *sql.Tx and runs fn inside it.
func (r *SQLTxRunner) RunTx(ctx context.Context, fn func(r TxRepos) error) error {
	return sqlutil.Run(ctx, r.db, func(tx *sql.Tx) error {
		return fn(TxRepos{
			Leagues:     NewRepository(tx),
			Teams:       team.NewRepository(tx),
			Memberships: membership.NewRepository(tx),
		})
	})
}
