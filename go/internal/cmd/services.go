package main

import (
	"database/sql"

	"github.com/jonboulle/clockwork"

	"github.com/mcdev12/gridiron/go/internal/audit"
	"github.com/mcdev12/gridiron/go/internal/league"
	"github.com/mcdev12/gridiron/go/internal/membership"
	"github.com/mcdev12/gridiron/go/internal/player"
	"github.com/mcdev12/gridiron/go/internal/refdata"
	"github.com/mcdev12/gridiron/go/internal/roster"
	"github.com/mcdev12/gridiron/go/internal/team"
)

type Services struct {
	League   *league.App
	Roster   *roster.App
	Recorder *audit.Recorder
}

func setupServices(db *sql.DB, cfg *Config) *Services {
	clock := clockwork.NewRealClock()

	// Database layer → Repository layer → App layer
	auditRepo := audit.NewRepository(db)
	recorder := audit.NewRecorder(auditRepo, clock)

	leagueRepo := league.NewRepository(db)
	teamRepo := team.NewRepository(db)
	membershipRepo := membership.NewRepository(db)
	refdataRepo := refdata.NewRepository(db)
	playerRepo := player.NewRepository(db)

	leagueApp := league.NewApp(
		leagueRepo,
		teamRepo,
		membershipRepo,
		refdataRepo,
		league.NewSQLTxRunner(db),
		recorder,
		clock,
		cfg.League,
	)

	rosterRepo := roster.NewRepository(db)
	rosterApp := roster.NewApp(
		rosterRepo,
		teamRepo,
		leagueRepo,
		playerRepo,
		refdataRepo,
		roster.NewSQLTxRunner(db),
		recorder,
		clock,
	)

	return &Services{
		League:   leagueApp,
		Roster:   rosterApp,
		Recorder: recorder,
	}
}
