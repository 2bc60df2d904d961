// Package roster manages player-to-team assignments: adds, drops, capacity
// and exclusivity checks, and acquisition reporting. A player holds at most
// one active roster slot per league at any moment.
package roster

import (
	"context"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/gridiron/go/internal/apperrors"
	"github.com/mcdev12/gridiron/go/internal/audit"
	"github.com/mcdev12/gridiron/go/internal/models"
)

// RosterRepository defines what the app layer needs from the roster store
type RosterRepository interface {
	CreateEntry(ctx context.Context, req CreateEntryRequest) (*models.RosterEntry, error)
	GetEntry(ctx context.Context, id uuid.UUID) (*models.RosterEntry, error)
	ListActiveByTeam(ctx context.Context, teamID uuid.UUID) ([]models.RosterEntry, error)
	CountActiveByTeam(ctx context.Context, teamID uuid.UUID) (int, error)
	CountByTeamAndTypes(ctx context.Context, teamID uuid.UUID, types []models.AcquisitionType) (int, error)
	PlayerHasActiveEntryInLeague(ctx context.Context, leagueID, playerID uuid.UUID) (bool, error)
	DeactivateEntry(ctx context.Context, id uuid.UUID, at time.Time) error
	CountActiveByAcquisitionType(ctx context.Context, teamID uuid.UUID) ([]AcquisitionCount, error)
}

// TeamReader provides team lookups
type TeamReader interface {
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
}

// LeagueReader provides league lookups. GetLeagueForUpdate takes the league
// row lock, serializing roster mutations with membership and team changes.
type LeagueReader interface {
	GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error)
	GetLeagueForUpdate(ctx context.Context, id uuid.UUID) (*models.League, error)
}

// MembershipReader provides membership lookups
type MembershipReader interface {
	GetActiveMembership(ctx context.Context, leagueID, userID uuid.UUID) (*models.Membership, error)
}

// PlayerReader provides player lookups
type PlayerReader interface {
	GetPlayer(ctx context.Context, id uuid.UUID) (*models.Player, error)
}

// RefDataReader resolves the position format that caps roster size
type RefDataReader interface {
	GetPositionFormat(ctx context.Context, id uuid.UUID) (*models.PositionFormat, error)
}

// AuditRecorder appends audit entries. It never fails the caller.
type AuditRecorder interface {
	RecordAction(ctx context.Context, rec audit.Record)
}

var validAcquisitionTypes = map[models.AcquisitionType]bool{
	models.AcquisitionTypeDraft:     true,
	models.AcquisitionTypeTrade:     true,
	models.AcquisitionTypeFreeAgent: true,
	models.AcquisitionTypeWaiver:    true,
}

// nonDraftTypes count against the per-team roster change cap.
var nonDraftTypes = []models.AcquisitionType{
	models.AcquisitionTypeTrade,
	models.AcquisitionTypeFreeAgent,
	models.AcquisitionTypeWaiver,
}

// freeAgentTypes count against the per-team free agent add cap.
var freeAgentTypes = []models.AcquisitionType{
	models.AcquisitionTypeFreeAgent,
	models.AcquisitionTypeWaiver,
}

// App handles roster business logic
type App struct {
	rosters RosterRepository
	teams   TeamReader
	leagues LeagueReader
	players PlayerReader
	refdata RefDataReader
	tx      TxRunner
	audit   AuditRecorder
	clock   clockwork.Clock
}

// NewApp creates a new roster App
func NewApp(
	rosters RosterRepository,
	teams TeamReader,
	leagues LeagueReader,
	players PlayerReader,
	refdata RefDataReader,
	tx TxRunner,
	recorder AuditRecorder,
	clock clockwork.Clock,
) *App {
	return &App{
		rosters: rosters,
		teams:   teams,
		leagues: leagues,
		players: players,
		refdata: refdata,
		tx:      tx,
		audit:   recorder,
		clock:   clock,
	}
}

// AddPlayer puts a player on a team's roster. The league row lock makes the
// league-wide exclusivity check race-free: two teams grabbing the same free
// agent serialize, and the second sees the player taken.
func (a *App) AddPlayer(ctx context.Context, req AddPlayerRequest, actor models.Actor) (*AddPlayerResult, error) {
	if !validAcquisitionTypes[req.AcquisitionType] {
		return nil, apperrors.Newf(apperrors.KindValidation, "invalid acquisition type %q", req.AcquisitionType)
	}

	p, err := a.players.GetPlayer(ctx, req.PlayerID)
	if err != nil {
		return nil, err
	}
	if !p.Active {
		return nil, apperrors.Newf(apperrors.KindConflict, "player %s is not active", p.FullName)
	}

	var result *AddPlayerResult
	err = a.tx.RunTx(ctx, func(r TxRepos) error {
		t, err := r.Teams.GetTeam(ctx, req.TeamID)
		if err != nil {
			return err
		}
		if !t.Active {
			return apperrors.New(apperrors.KindConflict, "team is deactivated")
		}

		lg, err := r.Leagues.GetLeagueForUpdate(ctx, t.LeagueID)
		if err != nil {
			return err
		}
		if lg.Status == models.LeagueStatusClosed {
			return apperrors.New(apperrors.KindInvalidState, "league is closed")
		}
		if err := requireRosterAccess(ctx, r.Memberships, t, actor.UserID); err != nil {
			return err
		}

		taken, err := r.Rosters.PlayerHasActiveEntryInLeague(ctx, lg.ID, req.PlayerID)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.Newf(apperrors.KindConflict, "player %s is already rostered in this league", p.FullName)
		}

		format, err := a.refdata.GetPositionFormat(ctx, lg.PositionFormatID)
		if err != nil {
			return err
		}
		count, err := r.Rosters.CountActiveByTeam(ctx, req.TeamID)
		if err != nil {
			return err
		}
		if count >= format.TotalSlots {
			return apperrors.Newf(apperrors.KindConflict, "roster is full: %d of %d slots used", count, format.TotalSlots)
		}

		if err := a.checkAddCaps(ctx, r.Rosters, lg, req); err != nil {
			return err
		}

		entry, err := r.Rosters.CreateEntry(ctx, CreateEntryRequest{
			TeamID:          req.TeamID,
			LeagueID:        lg.ID,
			PlayerID:        req.PlayerID,
			AcquisitionType: req.AcquisitionType,
			AcquiredAt:      a.clock.Now().UTC(),
		})
		if err != nil {
			return err
		}
		result = &AddPlayerResult{
			EntryID:        entry.ID,
			SlotsRemaining: format.TotalSlots - count - 1,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.audit.RecordAction(ctx, audit.Record{
		ActorID:    &actor.UserID,
		EntityType: audit.EntityRosterEntry,
		EntityID:   result.EntryID.String(),
		Action:     audit.ActionRosterPlayerAdded,
		Details: map[string]any{
			"team_id":          req.TeamID,
			"player_id":        req.PlayerID,
			"acquisition_type": req.AcquisitionType,
		},
		SourceIP:  actor.SourceIP,
		UserAgent: actor.UserAgent,
	})

	log.Info().
		Str("team_id", req.TeamID.String()).
		Str("player_id", req.PlayerID.String()).
		Str("acquisition_type", string(req.AcquisitionType)).
		Msg("added player to roster")
	return result, nil
}

// DropPlayer releases a roster entry. The entry stays on record with its
// drop time; the player immediately becomes available league-wide.
func (a *App) DropPlayer(ctx context.Context, entryID uuid.UUID, actor models.Actor) error {
	var (
		teamID   uuid.UUID
		playerID uuid.UUID
	)
	err := a.tx.RunTx(ctx, func(r TxRepos) error {
		entry, err := r.Rosters.GetEntry(ctx, entryID)
		if err != nil {
			return err
		}
		if !entry.Active {
			return apperrors.New(apperrors.KindConflict, "roster entry is already dropped")
		}
		teamID = entry.TeamID
		playerID = entry.PlayerID

		t, err := r.Teams.GetTeam(ctx, entry.TeamID)
		if err != nil {
			return err
		}
		lg, err := r.Leagues.GetLeagueForUpdate(ctx, entry.LeagueID)
		if err != nil {
			return err
		}
		if lg.Status == models.LeagueStatusClosed {
			return apperrors.New(apperrors.KindInvalidState, "league is closed")
		}
		if err := requireRosterAccess(ctx, r.Memberships, t, actor.UserID); err != nil {
			return err
		}

		return r.Rosters.DeactivateEntry(ctx, entryID, a.clock.Now().UTC())
	})
	if err != nil {
		return err
	}

	a.audit.RecordAction(ctx, audit.Record{
		ActorID:    &actor.UserID,
		EntityType: audit.EntityRosterEntry,
		EntityID:   entryID.String(),
		Action:     audit.ActionRosterPlayerDropped,
		Details: map[string]any{
			"team_id":   teamID,
			"player_id": playerID,
		},
		SourceIP:  actor.SourceIP,
		UserAgent: actor.UserAgent,
	})

	log.Info().
		Str("entry_id", entryID.String()).
		Str("team_id", teamID.String()).
		Msg("dropped player from roster")
	return nil
}

// GetRoster returns a team's active roster with capacity info.
func (a *App) GetRoster(ctx context.Context, teamID uuid.UUID) (*TeamRoster, error) {
	t, err := a.teams.GetTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	lg, err := a.leagues.GetLeague(ctx, t.LeagueID)
	if err != nil {
		return nil, err
	}
	format, err := a.refdata.GetPositionFormat(ctx, lg.PositionFormatID)
	if err != nil {
		return nil, err
	}
	entries, err := a.rosters.ListActiveByTeam(ctx, teamID)
	if err != nil {
		return nil, err
	}
	return &TeamRoster{
		TeamID:     teamID,
		Entries:    entries,
		SlotsUsed:  len(entries),
		SlotsTotal: format.TotalSlots,
	}, nil
}

// GetAcquisitionDistribution reports how a team's active roster was built.
// An empty roster returns no slices rather than dividing by zero.
func (a *App) GetAcquisitionDistribution(ctx context.Context, teamID uuid.UUID) ([]AcquisitionBreakdown, error) {
	if _, err := a.teams.GetTeam(ctx, teamID); err != nil {
		return nil, err
	}
	counts, err := a.rosters.CountActiveByAcquisitionType(ctx, teamID)
	if err != nil {
		return nil, err
	}

	total := 0
	for _, c := range counts {
		total += c.Count
	}
	if total == 0 {
		return nil, nil
	}

	breakdown := make([]AcquisitionBreakdown, 0, len(counts))
	for _, c := range counts {
		pct := float64(c.Count) / float64(total) * 100
		breakdown = append(breakdown, AcquisitionBreakdown{
			Type:    c.Type,
			Count:   c.Count,
			Percent: math.Round(pct*100) / 100,
		})
	}
	return breakdown, nil
}

func (a *App) checkAddCaps(ctx context.Context, rosters RosterRepository, lg *models.League, req AddPlayerRequest) error {
	if lg.MaxRosterChangesPerTeam != nil && req.AcquisitionType != models.AcquisitionTypeDraft {
		changes, err := rosters.CountByTeamAndTypes(ctx, req.TeamID, nonDraftTypes)
		if err != nil {
			return err
		}
		if changes >= *lg.MaxRosterChangesPerTeam {
			return apperrors.Newf(apperrors.KindConflict,
				"team has reached the roster change limit of %d", *lg.MaxRosterChangesPerTeam)
		}
	}
	if lg.MaxFreeAgentAddsPerTeam != nil && isFreeAgentType(req.AcquisitionType) {
		adds, err := rosters.CountByTeamAndTypes(ctx, req.TeamID, freeAgentTypes)
		if err != nil {
			return err
		}
		if adds >= *lg.MaxFreeAgentAddsPerTeam {
			return apperrors.Newf(apperrors.KindConflict,
				"team has reached the free agent add limit of %d", *lg.MaxFreeAgentAddsPerTeam)
		}
	}
	return nil
}

func isFreeAgentType(t models.AcquisitionType) bool {
	for _, fa := range freeAgentTypes {
		if t == fa {
			return true
		}
	}
	return false
}

// requireRosterAccess permits the team's owner and the league's primary
// commissioner to mutate the roster.
func requireRosterAccess(ctx context.Context, memberships MembershipReader, t *models.Team, userID uuid.UUID) error {
	if t.OwnerID == userID {
		return nil
	}
	m, err := memberships.GetActiveMembership(ctx, t.LeagueID, userID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return apperrors.New(apperrors.KindPermission,
				"only the team owner or the primary commissioner may manage this roster")
		}
		return err
	}
	if m.Role != models.RolePrimaryCommissioner {
		return apperrors.New(apperrors.KindPermission,
			"only the team owner or the primary commissioner may manage this roster")
	}
	return nil
}
