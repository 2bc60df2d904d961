// Package league owns the league lifecycle: creation, configuration edits,
// the status machine, membership and commissioner roles, and joining and
// leaving. Every mutation validates against a freshly locked league row and
// commits atomically before its audit entry is recorded.
package league

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcdev12/gridiron/go/internal/apperrors"
	"github.com/mcdev12/gridiron/go/internal/audit"
	"github.com/mcdev12/gridiron/go/internal/membership"
	"github.com/mcdev12/gridiron/go/internal/models"
	"github.com/mcdev12/gridiron/go/internal/team"
	"github.com/mcdev12/gridiron/go/internal/validation"
)

// LeagueRepository defines what the app layer needs from the league repository
type LeagueRepository interface {
	CreateLeague(ctx context.Context, params CreateLeagueParams) (*models.League, error)
	GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error)
	GetLeagueForUpdate(ctx context.Context, id uuid.UUID) (*models.League, error)
	NameExistsInSeason(ctx context.Context, seasonID uuid.UUID, name string) (bool, error)
	UpdateLeague(ctx context.Context, league *models.League) (*models.League, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.LeagueStatus) (*models.League, error)
	Search(ctx context.Context, filters SearchFilters, limit, offset int) ([]SearchRow, error)
}

// TeamRepository defines what the app layer needs from the team repository
type TeamRepository interface {
	CreateTeam(ctx context.Context, req team.CreateTeamRequest) (*models.Team, error)
	GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error)
	GetActiveTeamByLeagueAndOwner(ctx context.Context, leagueID, ownerID uuid.UUID) (*models.Team, error)
	ListActiveByLeague(ctx context.Context, leagueID uuid.UUID) ([]models.Team, error)
	CountActiveByLeague(ctx context.Context, leagueID uuid.UUID) (int, error)
	ActiveTeamNameExists(ctx context.Context, leagueID uuid.UUID, name string) (bool, error)
	DeactivateTeam(ctx context.Context, id uuid.UUID, at time.Time) error
}

// MembershipRepository defines what the app layer needs from the membership store
type MembershipRepository interface {
	CreateMembership(ctx context.Context, req membership.CreateMembershipRequest) (*models.Membership, error)
	GetActiveMembership(ctx context.Context, leagueID, userID uuid.UUID) (*models.Membership, error)
	GetActivePrimaryCommissioner(ctx context.Context, leagueID uuid.UUID) (*models.Membership, error)
	ListActiveByLeague(ctx context.Context, leagueID uuid.UUID) ([]models.Membership, error)
	UpdateRole(ctx context.Context, id uuid.UUID, role models.RoleCode) (*models.Membership, error)
	CloseMembership(ctx context.Context, id uuid.UUID, leftAt time.Time) error
}

// RefDataRepository defines the read-only reference lookups
type RefDataRepository interface {
	GetSeason(ctx context.Context, id uuid.UUID) (*models.Season, error)
	GetPositionFormat(ctx context.Context, id uuid.UUID) (*models.PositionFormat, error)
	GetScoringSchema(ctx context.Context, id uuid.UUID) (*models.ScoringSchema, error)
}

// AuditRecorder appends audit entries. It never fails the caller.
type AuditRecorder interface {
	RecordAction(ctx context.Context, rec audit.Record)
}

// Policy holds the configurable rules the original system left to operators.
type Policy struct {
	// AllowLeaveWhileActive permits self-service leave while the league is
	// ACTIVE. Off by default: mid-season departures go through the
	// commissioner.
	AllowLeaveWhileActive bool `yaml:"allow_leave_while_active"`
	// AllowRemoveTeamWhileActive permits commissioner-forced removal while
	// the league is ACTIVE.
	AllowRemoveTeamWhileActive bool `yaml:"allow_remove_team_while_active"`
}

// DefaultPolicy returns the default rule set.
func DefaultPolicy() Policy {
	return Policy{
		AllowLeaveWhileActive:      false,
		AllowRemoveTeamWhileActive: true,
	}
}

// statusTransitions is the league lifecycle machine. CLOSED has no outgoing
// edges.
var statusTransitions = map[models.LeagueStatus][]models.LeagueStatus{
	models.LeagueStatusPreDraft: {models.LeagueStatusActive, models.LeagueStatusClosed},
	models.LeagueStatusActive:   {models.LeagueStatusInactive, models.LeagueStatusClosed},
	models.LeagueStatusInactive: {models.LeagueStatusActive, models.LeagueStatusClosed},
	models.LeagueStatusClosed:   {},
}

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// App handles league lifecycle business logic
type App struct {
	leagues     LeagueRepository
	teams       TeamRepository
	memberships MembershipRepository
	refdata     RefDataRepository
	tx          TxRunner
	audit       AuditRecorder
	clock       clockwork.Clock
	policy      Policy
}

// NewApp creates a new league App
func NewApp(
	leagues LeagueRepository,
	teams TeamRepository,
	memberships MembershipRepository,
	refdata RefDataRepository,
	tx TxRunner,
	recorder AuditRecorder,
	clock clockwork.Clock,
	policy Policy,
) *App {
	return &App{
		leagues:     leagues,
		teams:       teams,
		memberships: memberships,
		refdata:     refdata,
		tx:          tx,
		audit:       recorder,
		clock:       clock,
		policy:      policy,
	}
}

// CreateLeague validates the configuration, creates the league in PRE_DRAFT
// with the creator as primary commissioner, and optionally creates the
// creator's team, all in one transaction.
func (a *App) CreateLeague(ctx context.Context, req CreateLeagueRequest, actor models.Actor) (*CreateLeagueResult, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.New(apperrors.KindValidation, "league name is required")
	}
	if err := validation.ValidateTeamSlots(req.TeamSlots); err != nil {
		return nil, err
	}
	if err := validation.ValidatePlayoffTeams(req.PlayoffTeams); err != nil {
		return nil, err
	}
	if violations := validation.ValidatePasswordComplexity(req.Password); len(violations) > 0 {
		return nil, apperrors.New(apperrors.KindValidation, strings.Join(violations, "; "))
	}

	// Reference data is immutable, so these reads can stay outside the
	// transaction.
	if _, err := a.refdata.GetSeason(ctx, req.SeasonID); err != nil {
		return nil, err
	}
	if _, err := a.refdata.GetPositionFormat(ctx, req.PositionFormatID); err != nil {
		return nil, err
	}
	if _, err := a.refdata.GetScoringSchema(ctx, req.ScoringSchemaID); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("failed to hash league password", err)
	}

	initialTeamName := strings.TrimSpace(req.InitialTeamName)

	var (
		created     *models.League
		initialTeam *models.Team
	)
	err = a.tx.RunTx(ctx, func(r TxRepos) error {
		exists, err := r.Leagues.NameExistsInSeason(ctx, req.SeasonID, name)
		if err != nil {
			return err
		}
		if exists {
			return apperrors.Newf(apperrors.KindConflict, "a league named %q already exists in this season", name)
		}

		created, err = r.Leagues.CreateLeague(ctx, CreateLeagueParams{
			SeasonID:            req.SeasonID,
			Name:                name,
			Description:         req.Description,
			TeamSlots:           req.TeamSlots,
			PlayoffTeams:        req.PlayoffTeams,
			AllowDecimalScoring: req.AllowDecimalScoring,
			TradeDeadline:       req.TradeDeadline,
			PositionFormatID:    req.PositionFormatID,
			ScoringSchemaID:     req.ScoringSchemaID,
			PasswordHash:        string(hash),
		})
		if err != nil {
			return err
		}

		_, err = r.Memberships.CreateMembership(ctx, membership.CreateMembershipRequest{
			LeagueID: created.ID,
			UserID:   actor.UserID,
			Role:     models.RolePrimaryCommissioner,
			Explicit: true,
			JoinedAt: a.now(),
		})
		if err != nil {
			return err
		}

		if initialTeamName != "" {
			initialTeam, err = r.Teams.CreateTeam(ctx, team.CreateTeamRequest{
				LeagueID: created.ID,
				OwnerID:  actor.UserID,
				Name:     initialTeamName,
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.audit.RecordAction(ctx, audit.Record{
		ActorID:    &actor.UserID,
		EntityType: audit.EntityLeague,
		EntityID:   created.ID.String(),
		Action:     audit.ActionLeagueCreated,
		Details: map[string]any{
			"name":       created.Name,
			"season_id":  created.SeasonID,
			"team_slots": created.TeamSlots,
		},
		SourceIP:  actor.SourceIP,
		UserAgent: actor.UserAgent,
	})

	result := &CreateLeagueResult{
		LeagueID:       created.ID,
		Status:         created.Status,
		AvailableSlots: created.TeamSlots,
		CreatedAt:      created.CreatedAt,
	}
	if initialTeam != nil {
		result.InitialTeamID = &initialTeam.ID
		result.AvailableSlots--
	}

	log.Info().
		Str("league_id", created.ID.String()).
		Str("name", created.Name).
		Int("team_slots", created.TeamSlots).
		Msg("created league")
	return result, nil
}

// EditConfig applies a configuration patch. Team slots, position format and
// scoring schema only move while the league is still PRE_DRAFT; everything
// else is editable until the league closes.
func (a *App) EditConfig(ctx context.Context, leagueID uuid.UUID, patch ConfigPatch, actor models.Actor) (*models.League, error) {
	if patch.PositionFormatID != nil {
		if _, err := a.refdata.GetPositionFormat(ctx, *patch.PositionFormatID); err != nil {
			return nil, err
		}
	}
	if patch.ScoringSchemaID != nil {
		if _, err := a.refdata.GetScoringSchema(ctx, *patch.ScoringSchemaID); err != nil {
			return nil, err
		}
	}
	if patch.PlayoffTeams != nil {
		if err := validation.ValidatePlayoffTeams(*patch.PlayoffTeams); err != nil {
			return nil, err
		}
	}
	if err := validateCap("max_roster_changes_per_team", patch.MaxRosterChangesPerTeam); err != nil {
		return nil, err
	}
	if err := validateCap("max_free_agent_adds_per_team", patch.MaxFreeAgentAddsPerTeam); err != nil {
		return nil, err
	}

	var (
		updated *models.League
		changed []string
	)
	err := a.tx.RunTx(ctx, func(r TxRepos) error {
		lg, err := r.Leagues.GetLeagueForUpdate(ctx, leagueID)
		if err != nil {
			return err
		}
		if _, err := requirePrimaryCommissioner(ctx, r.Memberships, leagueID, actor.UserID); err != nil {
			return err
		}
		if lg.Status == models.LeagueStatusClosed {
			return apperrors.New(apperrors.KindInvalidState, "a closed league cannot be edited")
		}

		preDraftOnly := patch.TeamSlots != nil || patch.PositionFormatID != nil || patch.ScoringSchemaID != nil
		if preDraftOnly && lg.Status != models.LeagueStatusPreDraft {
			return apperrors.New(apperrors.KindInvalidState,
				"team slots, position format and scoring schema can only change before the draft")
		}

		if patch.TeamSlots != nil {
			if err := validation.ValidateTeamSlots(*patch.TeamSlots); err != nil {
				return err
			}
			count, err := r.Teams.CountActiveByLeague(ctx, leagueID)
			if err != nil {
				return err
			}
			if *patch.TeamSlots < count {
				return apperrors.Newf(apperrors.KindConflict,
					"cannot reduce team slots to %d: league already has %d teams", *patch.TeamSlots, count)
			}
			lg.TeamSlots = *patch.TeamSlots
			changed = append(changed, "team_slots")
		}
		if patch.PositionFormatID != nil {
			lg.PositionFormatID = *patch.PositionFormatID
			changed = append(changed, "position_format_id")
		}
		if patch.ScoringSchemaID != nil {
			lg.ScoringSchemaID = *patch.ScoringSchemaID
			changed = append(changed, "scoring_schema_id")
		}
		if patch.Description != nil {
			lg.Description = *patch.Description
			changed = append(changed, "description")
		}
		if patch.PlayoffTeams != nil {
			lg.PlayoffTeams = *patch.PlayoffTeams
			changed = append(changed, "playoff_teams")
		}
		if patch.AllowDecimalScoring != nil {
			lg.AllowDecimalScoring = *patch.AllowDecimalScoring
			changed = append(changed, "allow_decimal_scoring")
		}
		if patch.ClearTradeDeadline {
			lg.TradeDeadline = nil
			changed = append(changed, "trade_deadline")
		} else if patch.TradeDeadline != nil {
			lg.TradeDeadline = patch.TradeDeadline
			changed = append(changed, "trade_deadline")
		}
		if patch.UnlimitedRosterChanges {
			lg.MaxRosterChangesPerTeam = nil
			changed = append(changed, "max_roster_changes_per_team")
		} else if patch.MaxRosterChangesPerTeam != nil {
			lg.MaxRosterChangesPerTeam = patch.MaxRosterChangesPerTeam
			changed = append(changed, "max_roster_changes_per_team")
		}
		if patch.UnlimitedFreeAgentAdds {
			lg.MaxFreeAgentAddsPerTeam = nil
			changed = append(changed, "max_free_agent_adds_per_team")
		} else if patch.MaxFreeAgentAddsPerTeam != nil {
			lg.MaxFreeAgentAddsPerTeam = patch.MaxFreeAgentAddsPerTeam
			changed = append(changed, "max_free_agent_adds_per_team")
		}

		if len(changed) == 0 {
			return apperrors.New(apperrors.KindValidation, "configuration patch is empty")
		}

		updated, err = r.Leagues.UpdateLeague(ctx, lg)
		return err
	})
	if err != nil {
		return nil, err
	}

	a.audit.RecordAction(ctx, audit.Record{
		ActorID:    &actor.UserID,
		EntityType: audit.EntityLeague,
		EntityID:   leagueID.String(),
		Action:     audit.ActionLeagueConfigUpdated,
		Details:    map[string]any{"changed": changed},
		SourceIP:   actor.SourceIP,
		UserAgent:  actor.UserAgent,
	})

	log.Info().
		Str("league_id", leagueID.String()).
		Strs("changed", changed).
		Msg("updated league config")
	return updated, nil
}

// SetStatus moves the league through its lifecycle. Only the primary
// commissioner may call it; CLOSED is terminal.
func (a *App) SetStatus(ctx context.Context, leagueID uuid.UUID, statusCode int, reason string, actor models.Actor) (*models.League, error) {
	newStatus, ok := models.LeagueStatusFromCode(statusCode)
	if !ok {
		return nil, apperrors.Newf(apperrors.KindValidation, "invalid status code %d: must be 0-3", statusCode)
	}

	var (
		updated *models.League
		before  models.LeagueStatus
	)
	err := a.tx.RunTx(ctx, func(r TxRepos) error {
		lg, err := r.Leagues.GetLeagueForUpdate(ctx, leagueID)
		if err != nil {
			return err
		}
		if _, err := requirePrimaryCommissioner(ctx, r.Memberships, leagueID, actor.UserID); err != nil {
			return err
		}
		before = lg.Status
		if !transitionAllowed(lg.Status, newStatus) {
			return apperrors.Newf(apperrors.KindInvalidState,
				"league cannot move from %s to %s", lg.Status, newStatus)
		}
		updated, err = r.Leagues.UpdateStatus(ctx, leagueID, newStatus)
		return err
	})
	if err != nil {
		return nil, err
	}

	a.audit.RecordAction(ctx, audit.Record{
		ActorID:    &actor.UserID,
		EntityType: audit.EntityLeague,
		EntityID:   leagueID.String(),
		Action:     audit.ActionLeagueStatusChanged,
		Details: map[string]any{
			"before": before,
			"after":  newStatus,
			"reason": reason,
		},
		SourceIP:  actor.SourceIP,
		UserAgent: actor.UserAgent,
	})

	log.Info().
		Str("league_id", leagueID.String()).
		Str("before", string(before)).
		Str("after", string(newStatus)).
		Msg("changed league status")
	return updated, nil
}

// GetSummary aggregates league configuration with its current team list.
func (a *App) GetSummary(ctx context.Context, leagueID uuid.UUID) (*LeagueSummary, error) {
	lg, err := a.leagues.GetLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	teams, err := a.teams.ListActiveByLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	members, err := a.memberships.ListActiveByLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	// The password hash never leaves the service.
	lg.PasswordHash = ""

	return &LeagueSummary{
		League:         *lg,
		Teams:          teams,
		MemberCount:    len(members),
		AvailableSlots: lg.TeamSlots - len(teams),
	}, nil
}

// SearchLeagues is the public, unauthenticated league directory.
func (a *App) SearchLeagues(ctx context.Context, filters SearchFilters, page Page) ([]SearchRow, error) {
	if page.Number < 1 {
		page.Number = 1
	}
	if page.Size <= 0 {
		page.Size = defaultPageSize
	}
	if page.Size > maxPageSize {
		page.Size = maxPageSize
	}
	offset := (page.Number - 1) * page.Size
	return a.leagues.Search(ctx, filters, page.Size, offset)
}

// ValidatePassword checks a candidate league password. It always succeeds
// with an IsValid flag: a missing league and a wrong password are
// indistinguishable, so callers cannot enumerate leagues.
func (a *App) ValidatePassword(ctx context.Context, leagueID uuid.UUID, candidate string, actor models.Actor) PasswordCheckResult {
	valid := false
	if lg, err := a.leagues.GetLeague(ctx, leagueID); err == nil {
		valid = bcrypt.CompareHashAndPassword([]byte(lg.PasswordHash), []byte(candidate)) == nil
	}

	var actorID *uuid.UUID
	if actor.UserID != uuid.Nil {
		actorID = &actor.UserID
	}
	a.audit.RecordAction(ctx, audit.Record{
		ActorID:    actorID,
		EntityType: audit.EntityLeague,
		EntityID:   leagueID.String(),
		Action:     audit.ActionLeaguePasswordChecked,
		Details:    map[string]any{"valid": valid},
		SourceIP:   actor.SourceIP,
		UserAgent:  actor.UserAgent,
	})

	return PasswordCheckResult{IsValid: valid}
}

// JoinLeague creates the caller's team and membership atomically. The league
// row lock makes the last-available-slot race lose cleanly: one joiner
// commits, the rest see the league full.
func (a *App) JoinLeague(ctx context.Context, leagueID uuid.UUID, password, teamName string, actor models.Actor) (*JoinLeagueResult, error) {
	name := strings.TrimSpace(teamName)
	if name == "" {
		return nil, apperrors.New(apperrors.KindValidation, "team name is required")
	}

	var result *JoinLeagueResult
	err := a.tx.RunTx(ctx, func(r TxRepos) error {
		lg, err := r.Leagues.GetLeagueForUpdate(ctx, leagueID)
		if err != nil {
			return err
		}
		if lg.Status == models.LeagueStatusClosed {
			return apperrors.New(apperrors.KindInvalidState, "league is closed")
		}
		if bcrypt.CompareHashAndPassword([]byte(lg.PasswordHash), []byte(password)) != nil {
			return apperrors.New(apperrors.KindConflict, "invalid league password")
		}

		if _, err := r.Memberships.GetActiveMembership(ctx, leagueID, actor.UserID); err == nil {
			return apperrors.New(apperrors.KindConflict, "user is already an active member of this league")
		} else if !apperrors.IsKind(err, apperrors.KindNotFound) {
			return err
		}

		count, err := r.Teams.CountActiveByLeague(ctx, leagueID)
		if err != nil {
			return err
		}
		if count >= lg.TeamSlots {
			return apperrors.New(apperrors.KindConflict, "league has no available team slots")
		}

		taken, err := r.Teams.ActiveTeamNameExists(ctx, leagueID, name)
		if err != nil {
			return err
		}
		if taken {
			return apperrors.Newf(apperrors.KindConflict, "team name %q is already taken in this league", name)
		}

		created, err := r.Teams.CreateTeam(ctx, team.CreateTeamRequest{
			LeagueID: leagueID,
			OwnerID:  actor.UserID,
			Name:     name,
		})
		if err != nil {
			return err
		}
		_, err = r.Memberships.CreateMembership(ctx, membership.CreateMembershipRequest{
			LeagueID: leagueID,
			UserID:   actor.UserID,
			Role:     models.RoleMember,
			Explicit: false,
			JoinedAt: a.now(),
		})
		if err != nil {
			return err
		}

		result = &JoinLeagueResult{
			TeamID:         created.ID,
			AvailableSlots: lg.TeamSlots - count - 1,
			Message:        "joined league",
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	a.audit.RecordAction(ctx, audit.Record{
		ActorID:    &actor.UserID,
		EntityType: audit.EntityLeague,
		EntityID:   leagueID.String(),
		Action:     audit.ActionLeagueJoined,
		Details:    map[string]any{"team_id": result.TeamID, "team_name": name},
		SourceIP:   actor.SourceIP,
		UserAgent:  actor.UserAgent,
	})

	log.Info().
		Str("league_id", leagueID.String()).
		Str("team_id", result.TeamID.String()).
		Int("available_slots", result.AvailableSlots).
		Msg("user joined league")
	return result, nil
}

// LeaveLeague closes the caller's membership and deactivates their team. The
// primary commissioner must transfer the role first.
func (a *App) LeaveLeague(ctx context.Context, leagueID uuid.UUID, actor models.Actor) (*MutationResult, error) {
	err := a.tx.RunTx(ctx, func(r TxRepos) error {
		lg, err := r.Leagues.GetLeagueForUpdate(ctx, leagueID)
		if err != nil {
			return err
		}
		m, err := r.Memberships.GetActiveMembership(ctx, leagueID, actor.UserID)
		if err != nil {
			return err
		}
		if m.Role == models.RolePrimaryCommissioner {
			return apperrors.New(apperrors.KindConflict,
				"the primary commissioner must transfer the role before leaving")
		}
		if lg.Status == models.LeagueStatusClosed {
			return apperrors.New(apperrors.KindInvalidState, "league is closed")
		}
		if lg.Status == models.LeagueStatusActive && !a.policy.AllowLeaveWhileActive {
			return apperrors.New(apperrors.KindInvalidState,
				"cannot leave while the league is active; ask the commissioner to remove your team")
		}

		now := a.now()
		if err := r.Memberships.CloseMembership(ctx, m.ID, now); err != nil {
			return err
		}

		owned, err := r.Teams.GetActiveTeamByLeagueAndOwner(ctx, leagueID, actor.UserID)
		if err == nil {
			return r.Teams.DeactivateTeam(ctx, owned.ID, now)
		}
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			// Member without a team (commissioner who never fielded one).
			return nil
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	a.audit.RecordAction(ctx, audit.Record{
		ActorID:    &actor.UserID,
		EntityType: audit.EntityLeague,
		EntityID:   leagueID.String(),
		Action:     audit.ActionLeagueLeft,
		SourceIP:   actor.SourceIP,
		UserAgent:  actor.UserAgent,
	})

	log.Info().
		Str("league_id", leagueID.String()).
		Str("user_id", actor.UserID.String()).
		Msg("user left league")
	return &MutationResult{LeagueID: leagueID, Message: "left league"}, nil
}

// RemoveTeam is the commissioner-forced equivalent of LeaveLeague.
func (a *App) RemoveTeam(ctx context.Context, leagueID, teamID uuid.UUID, reason string, actor models.Actor) (*MutationResult, error) {
	var removedOwner uuid.UUID
	err := a.tx.RunTx(ctx, func(r TxRepos) error {
		lg, err := r.Leagues.GetLeagueForUpdate(ctx, leagueID)
		if err != nil {
			return err
		}
		if _, err := requirePrimaryCommissioner(ctx, r.Memberships, leagueID, actor.UserID); err != nil {
			return err
		}
		if lg.Status == models.LeagueStatusClosed {
			return apperrors.New(apperrors.KindInvalidState, "league is closed")
		}
		if lg.Status == models.LeagueStatusActive && !a.policy.AllowRemoveTeamWhileActive {
			return apperrors.New(apperrors.KindInvalidState,
				"team removal is disabled while the league is active")
		}

		t, err := r.Teams.GetTeam(ctx, teamID)
		if err != nil {
			return err
		}
		if t.LeagueID != leagueID {
			return apperrors.New(apperrors.KindNotFound, "team does not belong to this league")
		}
		if !t.Active {
			return apperrors.New(apperrors.KindConflict, "team is already deactivated")
		}
		removedOwner = t.OwnerID

		now := a.now()
		ownerMembership, err := r.Memberships.GetActiveMembership(ctx, leagueID, t.OwnerID)
		switch {
		case err == nil:
			if ownerMembership.Role == models.RolePrimaryCommissioner {
				return apperrors.New(apperrors.KindConflict,
					"cannot remove the primary commissioner's team; transfer the role first")
			}
			if err := r.Memberships.CloseMembership(ctx, ownerMembership.ID, now); err != nil {
				return err
			}
		case !apperrors.IsKind(err, apperrors.KindNotFound):
			return err
		}

		return r.Teams.DeactivateTeam(ctx, teamID, now)
	})
	if err != nil {
		return nil, err
	}

	a.audit.RecordAction(ctx, audit.Record{
		ActorID:    &actor.UserID,
		EntityType: audit.EntityTeam,
		EntityID:   teamID.String(),
		Action:     audit.ActionTeamRemoved,
		Details: map[string]any{
			"league_id": leagueID,
			"owner_id":  removedOwner,
			"reason":    reason,
		},
		SourceIP:  actor.SourceIP,
		UserAgent: actor.UserAgent,
	})

	log.Info().
		Str("league_id", leagueID.String()).
		Str("team_id", teamID.String()).
		Msg("removed team from league")
	return &MutationResult{LeagueID: leagueID, Message: "team removed"}, nil
}

// AssignCoCommissioner promotes an existing active member.
func (a *App) AssignCoCommissioner(ctx context.Context, leagueID, targetUserID uuid.UUID, actor models.Actor) (*MutationResult, error) {
	err := a.tx.RunTx(ctx, func(r TxRepos) error {
		if _, err := r.Leagues.GetLeagueForUpdate(ctx, leagueID); err != nil {
			return err
		}
		if _, err := requirePrimaryCommissioner(ctx, r.Memberships, leagueID, actor.UserID); err != nil {
			return err
		}

		target, err := r.Memberships.GetActiveMembership(ctx, leagueID, targetUserID)
		if err != nil {
			return err
		}
		switch target.Role {
		case models.RoleCoCommissioner:
			return apperrors.New(apperrors.KindConflict, "user is already a co-commissioner")
		case models.RolePrimaryCommissioner:
			return apperrors.New(apperrors.KindConflict, "user is the primary commissioner")
		}

		_, err = r.Memberships.UpdateRole(ctx, target.ID, models.RoleCoCommissioner)
		return err
	})
	if err != nil {
		return nil, err
	}

	a.recordRoleChange(ctx, leagueID, targetUserID, audit.ActionCoCommissionerAssigned, actor)
	return &MutationResult{LeagueID: leagueID, Message: "co-commissioner assigned"}, nil
}

// RemoveCoCommissioner demotes a co-commissioner back to member.
func (a *App) RemoveCoCommissioner(ctx context.Context, leagueID, targetUserID uuid.UUID, actor models.Actor) (*MutationResult, error) {
	err := a.tx.RunTx(ctx, func(r TxRepos) error {
		if _, err := r.Leagues.GetLeagueForUpdate(ctx, leagueID); err != nil {
			return err
		}
		if _, err := requirePrimaryCommissioner(ctx, r.Memberships, leagueID, actor.UserID); err != nil {
			return err
		}

		target, err := r.Memberships.GetActiveMembership(ctx, leagueID, targetUserID)
		if err != nil {
			return err
		}
		if target.Role != models.RoleCoCommissioner {
			return apperrors.New(apperrors.KindConflict, "user is not a co-commissioner")
		}

		_, err = r.Memberships.UpdateRole(ctx, target.ID, models.RoleMember)
		return err
	})
	if err != nil {
		return nil, err
	}

	a.recordRoleChange(ctx, leagueID, targetUserID, audit.ActionCoCommissionerRemoved, actor)
	return &MutationResult{LeagueID: leagueID, Message: "co-commissioner removed"}, nil
}

// TransferCommissioner atomically demotes the current primary commissioner to
// co-commissioner and promotes the target. No intermediate state with zero or
// two primaries is ever visible outside the transaction.
func (a *App) TransferCommissioner(ctx context.Context, leagueID, newCommissionerID uuid.UUID, actor models.Actor) (*MutationResult, error) {
	if newCommissionerID == actor.UserID {
		return nil, apperrors.New(apperrors.KindConflict, "user is already the primary commissioner")
	}

	err := a.tx.RunTx(ctx, func(r TxRepos) error {
		if _, err := r.Leagues.GetLeagueForUpdate(ctx, leagueID); err != nil {
			return err
		}
		current, err := requirePrimaryCommissioner(ctx, r.Memberships, leagueID, actor.UserID)
		if err != nil {
			return err
		}
		target, err := r.Memberships.GetActiveMembership(ctx, leagueID, newCommissionerID)
		if err != nil {
			return err
		}

		// Demote before promote so the one-primary constraint holds at
		// every statement inside the transaction.
		if _, err := r.Memberships.UpdateRole(ctx, current.ID, models.RoleCoCommissioner); err != nil {
			return err
		}
		_, err = r.Memberships.UpdateRole(ctx, target.ID, models.RolePrimaryCommissioner)
		return err
	})
	if err != nil {
		return nil, err
	}

	a.recordRoleChange(ctx, leagueID, newCommissionerID, audit.ActionCommissionerTransferred, actor)
	log.Info().
		Str("league_id", leagueID.String()).
		Str("from", actor.UserID.String()).
		Str("to", newCommissionerID.String()).
		Msg("transferred primary commissioner")
	return &MutationResult{LeagueID: leagueID, Message: "commissioner transferred"}, nil
}

// GetMembers lists the league's active memberships.
func (a *App) GetMembers(ctx context.Context, leagueID uuid.UUID) ([]models.Membership, error) {
	if _, err := a.leagues.GetLeague(ctx, leagueID); err != nil {
		return nil, err
	}
	return a.memberships.ListActiveByLeague(ctx, leagueID)
}

// GetTeams lists the league's active teams.
func (a *App) GetTeams(ctx context.Context, leagueID uuid.UUID) ([]models.Team, error) {
	if _, err := a.leagues.GetLeague(ctx, leagueID); err != nil {
		return nil, err
	}
	return a.teams.ListActiveByLeague(ctx, leagueID)
}

func (a *App) now() time.Time {
	return a.clock.Now().UTC()
}

func (a *App) recordRoleChange(ctx context.Context, leagueID, targetUserID uuid.UUID, action string, actor models.Actor) {
	a.audit.RecordAction(ctx, audit.Record{
		ActorID:    &actor.UserID,
		EntityType: audit.EntityMembership,
		EntityID:   targetUserID.String(),
		Action:     action,
		Details:    map[string]any{"league_id": leagueID},
		SourceIP:   actor.SourceIP,
		UserAgent:  actor.UserAgent,
	})
}

// requirePrimaryCommissioner resolves the actor's membership and rejects
// anyone but the league's primary commissioner.
func requirePrimaryCommissioner(ctx context.Context, memberships MembershipRepository, leagueID, userID uuid.UUID) (*models.Membership, error) {
	m, err := memberships.GetActiveMembership(ctx, leagueID, userID)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindNotFound) {
			return nil, apperrors.New(apperrors.KindPermission,
				"only the primary commissioner may perform this action")
		}
		return nil, err
	}
	if m.Role != models.RolePrimaryCommissioner {
		return nil, apperrors.New(apperrors.KindPermission,
			"only the primary commissioner may perform this action")
	}
	return m, nil
}

func transitionAllowed(from, to models.LeagueStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func validateCap(field string, val *int) error {
	if val == nil {
		return nil
	}
	if *val < 1 || *val > 100 {
		return apperrors.Newf(apperrors.KindValidation,
			"%s must be between 1 and 100, or unlimited", field)
	}
	return nil
}
