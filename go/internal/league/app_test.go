package league

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mcdev12/gridiron/go/internal/apperrors"
	"github.com/mcdev12/gridiron/go/internal/audit"
	"github.com/mcdev12/gridiron/go/internal/membership"
	"github.com/mcdev12/gridiron/go/internal/models"
	"github.com/mcdev12/gridiron/go/internal/team"
)

type fakeLeagueRepo struct {
	leagues      map[uuid.UUID]*models.League
	searchLimit  int
	searchOffset int
}

func newFakeLeagueRepo() *fakeLeagueRepo {
	return &fakeLeagueRepo{leagues: make(map[uuid.UUID]*models.League)}
}

func (f *fakeLeagueRepo) CreateLeague(ctx context.Context, params CreateLeagueParams) (*models.League, error) {
	lg := &models.League{
		ID:                  uuid.New(),
		SeasonID:            params.SeasonID,
		Name:                params.Name,
		Description:         params.Description,
		TeamSlots:           params.TeamSlots,
		Status:              models.LeagueStatusPreDraft,
		PlayoffTeams:        params.PlayoffTeams,
		AllowDecimalScoring: params.AllowDecimalScoring,
		TradeDeadline:       params.TradeDeadline,
		PositionFormatID:    params.PositionFormatID,
		ScoringSchemaID:     params.ScoringSchemaID,
		PasswordHash:        params.PasswordHash,
		CreatedAt:           time.Now().UTC(),
	}
	f.leagues[lg.ID] = lg
	return lg, nil
}

func (f *fakeLeagueRepo) GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error) {
	lg, ok := f.leagues[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.KindNotFound, "league %s does not exist", id)
	}
	copied := *lg
	return &copied, nil
}

func (f *fakeLeagueRepo) GetLeagueForUpdate(ctx context.Context, id uuid.UUID) (*models.League, error) {
	return f.GetLeague(ctx, id)
}

func (f *fakeLeagueRepo) NameExistsInSeason(ctx context.Context, seasonID uuid.UUID, name string) (bool, error) {
	for _, lg := range f.leagues {
		if lg.SeasonID == seasonID && lg.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeLeagueRepo) UpdateLeague(ctx context.Context, league *models.League) (*models.League, error) {
	copied := *league
	f.leagues[league.ID] = &copied
	return league, nil
}

func (f *fakeLeagueRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.LeagueStatus) (*models.League, error) {
	lg, ok := f.leagues[id]
	if !ok {
		return nil, apperrors.Newf(apperrors.KindNotFound, "league %s does not exist", id)
	}
	lg.Status = status
	copied := *lg
	return &copied, nil
}

func (f *fakeLeagueRepo) Search(ctx context.Context, filters SearchFilters, limit, offset int) ([]SearchRow, error) {
	f.searchLimit = limit
	f.searchOffset = offset
	return nil, nil
}

type fakeTeamRepo struct {
	teams []*models.Team
}

func (f *fakeTeamRepo) CreateTeam(ctx context.Context, req team.CreateTeamRequest) (*models.Team, error) {
	t := &models.Team{
		ID:        uuid.New(),
		LeagueID:  req.LeagueID,
		OwnerID:   req.OwnerID,
		Name:      req.Name,
		Active:    true,
		CreatedAt: time.Now().UTC(),
	}
	f.teams = append(f.teams, t)
	return t, nil
}

func (f *fakeTeamRepo) GetTeam(ctx context.Context, id uuid.UUID) (*models.Team, error) {
	for _, t := range f.teams {
		if t.ID == id {
			copied := *t
			return &copied, nil
		}
	}
	return nil, apperrors.Newf(apperrors.KindNotFound, "team %s does not exist", id)
}

func (f *fakeTeamRepo) GetActiveTeamByLeagueAndOwner(ctx context.Context, leagueID, ownerID uuid.UUID) (*models.Team, error) {
	for _, t := range f.teams {
		if t.LeagueID == leagueID && t.OwnerID == ownerID && t.Active {
			copied := *t
			return &copied, nil
		}
	}
	return nil, apperrors.New(apperrors.KindNotFound, "user has no active team in this league")
}

func (f *fakeTeamRepo) ListActiveByLeague(ctx context.Context, leagueID uuid.UUID) ([]models.Team, error) {
	var out []models.Team
	for _, t := range f.teams {
		if t.LeagueID == leagueID && t.Active {
			out = append(out, *t)
		}
	}
	return out, nil
}

func (f *fakeTeamRepo) CountActiveByLeague(ctx context.Context, leagueID uuid.UUID) (int, error) {
	teams, _ := f.ListActiveByLeague(ctx, leagueID)
	return len(teams), nil
}

func (f *fakeTeamRepo) ActiveTeamNameExists(ctx context.Context, leagueID uuid.UUID, name string) (bool, error) {
	for _, t := range f.teams {
		if t.LeagueID == leagueID && t.Active && t.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeTeamRepo) DeactivateTeam(ctx context.Context, id uuid.UUID, at time.Time) error {
	for _, t := range f.teams {
		if t.ID == id && t.Active {
			t.Active = false
			t.DeactivatedAt = &at
			return nil
		}
	}
	return apperrors.Newf(apperrors.KindNotFound, "team %s is not active", id)
}

type fakeMembershipRepo struct {
	memberships []*models.Membership
}

func (f *fakeMembershipRepo) CreateMembership(ctx context.Context, req membership.CreateMembershipRequest) (*models.Membership, error) {
	m := &models.Membership{
		ID:       uuid.New(),
		LeagueID: req.LeagueID,
		UserID:   req.UserID,
		Role:     req.Role,
		Explicit: req.Explicit,
		JoinedAt: req.JoinedAt,
	}
	f.memberships = append(f.memberships, m)
	return m, nil
}

func (f *fakeMembershipRepo) GetActiveMembership(ctx context.Context, leagueID, userID uuid.UUID) (*models.Membership, error) {
	for _, m := range f.memberships {
		if m.LeagueID == leagueID && m.UserID == userID && m.LeftAt == nil {
			copied := *m
			return &copied, nil
		}
	}
	return nil, apperrors.New(apperrors.KindNotFound, "user is not an active member of this league")
}

func (f *fakeMembershipRepo) GetActivePrimaryCommissioner(ctx context.Context, leagueID uuid.UUID) (*models.Membership, error) {
	for _, m := range f.memberships {
		if m.LeagueID == leagueID && m.Role == models.RolePrimaryCommissioner && m.LeftAt == nil {
			copied := *m
			return &copied, nil
		}
	}
	return nil, apperrors.New(apperrors.KindNotFound, "league has no active primary commissioner")
}

func (f *fakeMembershipRepo) ListActiveByLeague(ctx context.Context, leagueID uuid.UUID) ([]models.Membership, error) {
	var out []models.Membership
	for _, m := range f.memberships {
		if m.LeagueID == leagueID && m.LeftAt == nil {
			out = append(out, *m)
		}
	}
	return out, nil
}

func (f *fakeMembershipRepo) UpdateRole(ctx context.Context, id uuid.UUID, role models.RoleCode) (*models.Membership, error) {
	for _, m := range f.memberships {
		if m.ID == id && m.LeftAt == nil {
			m.Role = role
			copied := *m
			return &copied, nil
		}
	}
	return nil, apperrors.Newf(apperrors.KindNotFound, "membership %s is not active", id)
}

func (f *fakeMembershipRepo) CloseMembership(ctx context.Context, id uuid.UUID, leftAt time.Time) error {
	for _, m := range f.memberships {
		if m.ID == id && m.LeftAt == nil {
			m.LeftAt = &leftAt
			return nil
		}
	}
	return apperrors.Newf(apperrors.KindNotFound, "membership %s is not active", id)
}

type fakeRefDataRepo struct {
	seasons map[uuid.UUID]*models.Season
	formats map[uuid.UUID]*models.PositionFormat
	schemas map[uuid.UUID]*models.ScoringSchema
}

func (f *fakeRefDataRepo) GetSeason(ctx context.Context, id uuid.UUID) (*models.Season, error) {
	if s, ok := f.seasons[id]; ok {
		return s, nil
	}
	return nil, apperrors.Newf(apperrors.KindNotFound, "season %s does not exist", id)
}

func (f *fakeRefDataRepo) GetPositionFormat(ctx context.Context, id uuid.UUID) (*models.PositionFormat, error) {
	if p, ok := f.formats[id]; ok {
		return p, nil
	}
	return nil, apperrors.Newf(apperrors.KindNotFound, "position format %s does not exist", id)
}

func (f *fakeRefDataRepo) GetScoringSchema(ctx context.Context, id uuid.UUID) (*models.ScoringSchema, error) {
	if s, ok := f.schemas[id]; ok {
		return s, nil
	}
	return nil, apperrors.Newf(apperrors.KindNotFound, "scoring schema %s does not exist", id)
}

type fakeTxRunner struct {
	repos TxRepos
}

func (f *fakeTxRunner) RunTx(ctx context.Context, fn func(r TxRepos) error) error {
	return fn(f.repos)
}

type recordingAudit struct {
	records []audit.Record
}

func (r *recordingAudit) RecordAction(ctx context.Context, rec audit.Record) {
	r.records = append(r.records, rec)
}

func (r *recordingAudit) actions() []string {
	var out []string
	for _, rec := range r.records {
		out = append(out, rec.Action)
	}
	return out
}

type fixture struct {
	app         *App
	leagues     *fakeLeagueRepo
	teams       *fakeTeamRepo
	memberships *fakeMembershipRepo
	refdata     *fakeRefDataRepo
	audit       *recordingAudit

	seasonID uuid.UUID
	formatID uuid.UUID
	schemaID uuid.UUID
}

func newFixture(t *testing.T, policy Policy) *fixture {
	t.Helper()

	f := &fixture{
		leagues:     newFakeLeagueRepo(),
		teams:       &fakeTeamRepo{},
		memberships: &fakeMembershipRepo{},
		audit:       &recordingAudit{},
		seasonID:    uuid.New(),
		formatID:    uuid.New(),
		schemaID:    uuid.New(),
	}
	f.refdata = &fakeRefDataRepo{
		seasons: map[uuid.UUID]*models.Season{
			f.seasonID: {ID: f.seasonID, Year: 2026, Label: "2026", Active: true},
		},
		formats: map[uuid.UUID]*models.PositionFormat{
			f.formatID: {ID: f.formatID, Name: "standard", TotalSlots: 15},
		},
		schemas: map[uuid.UUID]*models.ScoringSchema{
			f.schemaID: {ID: f.schemaID, Name: "ppr", SupportsDecimal: true},
		},
	}
	runner := &fakeTxRunner{repos: TxRepos{
		Leagues:     f.leagues,
		Teams:       f.teams,
		Memberships: f.memberships,
	}}
	f.app = NewApp(f.leagues, f.teams, f.memberships, f.refdata, runner, f.audit,
		clockwork.NewFakeClockAt(time.Date(2026, 8, 1, 0, 0, 0, 0, time.UTC)), policy)
	return f
}

func actorFor(userID uuid.UUID) models.Actor {
	return models.Actor{UserID: userID, UserAgent: "test-agent"}
}

const testPassword = "Abc12345"

func (f *fixture) createLeague(t *testing.T, commissioner uuid.UUID, teamSlots int) uuid.UUID {
	t.Helper()
	result, err := f.app.CreateLeague(context.Background(), CreateLeagueRequest{
		SeasonID:         f.seasonID,
		Name:             "Sunday Legends",
		TeamSlots:        teamSlots,
		PlayoffTeams:     4,
		PositionFormatID: f.formatID,
		ScoringSchemaID:  f.schemaID,
		Password:         testPassword,
	}, actorFor(commissioner))
	require.NoError(t, err)
	// Fakes hash with DefaultCost via CreateLeague; swap in a cheap hash to
	// keep join tests fast.
	hash, err := bcrypt.GenerateFromPassword([]byte(testPassword), bcrypt.MinCost)
	require.NoError(t, err)
	f.leagues.leagues[result.LeagueID].PasswordHash = string(hash)
	return result.LeagueID
}

func (f *fixture) setStatus(t *testing.T, leagueID uuid.UUID, status models.LeagueStatus) {
	t.Helper()
	f.leagues.leagues[leagueID].Status = status
}

func TestCreateLeagueCreatesPrimaryCommissionerAndTeam(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	commissioner := uuid.New()

	result, err := f.app.CreateLeague(context.Background(), CreateLeagueRequest{
		SeasonID:         f.seasonID,
		Name:             "  Sunday Legends  ",
		TeamSlots:        10,
		PlayoffTeams:     6,
		PositionFormatID: f.formatID,
		ScoringSchemaID:  f.schemaID,
		Password:         testPassword,
		InitialTeamName:  "Gridiron Gang",
	}, actorFor(commissioner))
	require.NoError(t, err)

	assert.Equal(t, models.LeagueStatusPreDraft, result.Status)
	assert.Equal(t, 9, result.AvailableSlots)
	require.NotNil(t, result.InitialTeamID)

	m, err := f.memberships.GetActiveMembership(context.Background(), result.LeagueID, commissioner)
	require.NoError(t, err)
	assert.Equal(t, models.RolePrimaryCommissioner, m.Role)
	assert.True(t, m.Explicit)

	lg, err := f.leagues.GetLeague(context.Background(), result.LeagueID)
	require.NoError(t, err)
	assert.Equal(t, "Sunday Legends", lg.Name)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(lg.PasswordHash), []byte(testPassword)))

	assert.Contains(t, f.audit.actions(), audit.ActionLeagueCreated)
}

func TestCreateLeagueReturnsAllPasswordViolations(t *testing.T) {
	f := newFixture(t, DefaultPolicy())

	_, err := f.app.CreateLeague(context.Background(), CreateLeagueRequest{
		SeasonID:         f.seasonID,
		Name:             "Sunday Legends",
		TeamSlots:        10,
		PlayoffTeams:     4,
		PositionFormatID: f.formatID,
		ScoringSchemaID:  f.schemaID,
		Password:         "abc",
	}, actorFor(uuid.New()))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
	assert.Contains(t, err.Error(), "8 and 12")
	assert.Contains(t, err.Error(), "uppercase")
	assert.Contains(t, err.Error(), "digit")
}

func TestCreateLeagueRejectsOddTeamSlots(t *testing.T) {
	f := newFixture(t, DefaultPolicy())

	_, err := f.app.CreateLeague(context.Background(), CreateLeagueRequest{
		SeasonID:         f.seasonID,
		Name:             "Sunday Legends",
		TeamSlots:        7,
		PlayoffTeams:     4,
		PositionFormatID: f.formatID,
		ScoringSchemaID:  f.schemaID,
		Password:         testPassword,
	}, actorFor(uuid.New()))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestCreateLeagueRejectsDuplicateNameInSeason(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	f.createLeague(t, uuid.New(), 10)

	_, err := f.app.CreateLeague(context.Background(), CreateLeagueRequest{
		SeasonID:         f.seasonID,
		Name:             "Sunday Legends",
		TeamSlots:        10,
		PlayoffTeams:     4,
		PositionFormatID: f.formatID,
		ScoringSchemaID:  f.schemaID,
		Password:         testPassword,
	}, actorFor(uuid.New()))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestJoinLeagueCreatesTeamAndMembership(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	leagueID := f.createLeague(t, uuid.New(), 4)
	joiner := uuid.New()

	result, err := f.app.JoinLeague(context.Background(), leagueID, testPassword, "Bench Warmers", actorFor(joiner))
	require.NoError(t, err)
	assert.Equal(t, 3, result.AvailableSlots)

	m, err := f.memberships.GetActiveMembership(context.Background(), leagueID, joiner)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, m.Role)
	assert.False(t, m.Explicit)

	assert.Contains(t, f.audit.actions(), audit.ActionLeagueJoined)
}

func TestJoinLeagueRejectsWhenFull(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	leagueID := f.createLeague(t, uuid.New(), 4)

	for i := 0; i < 4; i++ {
		_, err := f.app.JoinLeague(context.Background(), leagueID, testPassword,
			"Team "+string(rune('A'+i)), actorFor(uuid.New()))
		require.NoError(t, err)
	}

	_, err := f.app.JoinLeague(context.Background(), leagueID, testPassword, "Too Late", actorFor(uuid.New()))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	assert.Contains(t, err.Error(), "no available team slots")
}

func TestJoinLeagueRejectsWrongPassword(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	leagueID := f.createLeague(t, uuid.New(), 4)

	_, err := f.app.JoinLeague(context.Background(), leagueID, "Wrong1234", "Bench Warmers", actorFor(uuid.New()))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestJoinLeagueRejectsClosedLeague(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	leagueID := f.createLeague(t, uuid.New(), 4)
	f.setStatus(t, leagueID, models.LeagueStatusClosed)

	_, err := f.app.JoinLeague(context.Background(), leagueID, testPassword, "Bench Warmers", actorFor(uuid.New()))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
}

func TestJoinLeagueRejectsExistingMember(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	leagueID := f.createLeague(t, uuid.New(), 4)
	joiner := uuid.New()

	_, err := f.app.JoinLeague(context.Background(), leagueID, testPassword, "Bench Warmers", actorFor(joiner))
	require.NoError(t, err)

	_, err = f.app.JoinLeague(context.Background(), leagueID, testPassword, "Second Squad", actorFor(joiner))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	assert.Contains(t, err.Error(), "already an active member")
}

func TestJoinLeagueRejectsDuplicateTeamName(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	leagueID := f.createLeague(t, uuid.New(), 4)

	_, err := f.app.JoinLeague(context.Background(), leagueID, testPassword, "Bench Warmers", actorFor(uuid.New()))
	require.NoError(t, err)

	_, err = f.app.JoinLeague(context.Background(), leagueID, testPassword, "Bench Warmers", actorFor(uuid.New()))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestSetStatusClosedIsTerminal(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	commissioner := uuid.New()
	leagueID := f.createLeague(t, commissioner, 4)

	updated, err := f.app.SetStatus(context.Background(), leagueID,
		models.LeagueStatusCodeClosed, "season cancelled", actorFor(commissioner))
	require.NoError(t, err)
	assert.Equal(t, models.LeagueStatusClosed, updated.Status)

	_, err = f.app.SetStatus(context.Background(), leagueID,
		models.LeagueStatusCodeActive, "", actorFor(commissioner))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
}

func TestSetStatusRejectsUnknownCode(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	commissioner := uuid.New()
	leagueID := f.createLeague(t, commissioner, 4)

	_, err := f.app.SetStatus(context.Background(), leagueID, 7, "", actorFor(commissioner))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestSetStatusRequiresPrimaryCommissioner(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	leagueID := f.createLeague(t, uuid.New(), 4)
	member := uuid.New()
	_, err := f.app.JoinLeague(context.Background(), leagueID, testPassword, "Bench Warmers", actorFor(member))
	require.NoError(t, err)

	_, err = f.app.SetStatus(context.Background(), leagueID,
		models.LeagueStatusCodeActive, "", actorFor(member))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindPermission))
}

func TestSetStatusActiveInactiveRoundTrip(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	commissioner := uuid.New()
	leagueID := f.createLeague(t, commissioner, 4)

	for _, code := range []int{
		models.LeagueStatusCodeActive,
		models.LeagueStatusCodeInactive,
		models.LeagueStatusCodeActive,
	} {
		_, err := f.app.SetStatus(context.Background(), leagueID, code, "", actorFor(commissioner))
		require.NoError(t, err)
	}
}

func TestEditConfigGatesPreDraftFields(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	commissioner := uuid.New()
	leagueID := f.createLeague(t, commissioner, 10)
	f.setStatus(t, leagueID, models.LeagueStatusActive)

	slots := 12
	_, err := f.app.EditConfig(context.Background(), leagueID,
		ConfigPatch{TeamSlots: &slots}, actorFor(commissioner))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))

	// Description stays editable while active.
	desc := "dynasty rules apply"
	updated, err := f.app.EditConfig(context.Background(), leagueID,
		ConfigPatch{Description: &desc}, actorFor(commissioner))
	require.NoError(t, err)
	assert.Equal(t, desc, updated.Description)
}

func TestEditConfigRejectsSlotsBelowTeamCount(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	commissioner := uuid.New()
	leagueID := f.createLeague(t, commissioner, 10)

	for i := 0; i < 6; i++ {
		_, err := f.app.JoinLeague(context.Background(), leagueID, testPassword,
			"Team "+string(rune('A'+i)), actorFor(uuid.New()))
		require.NoError(t, err)
	}

	slots := 4
	_, err := f.app.EditConfig(context.Background(), leagueID,
		ConfigPatch{TeamSlots: &slots}, actorFor(commissioner))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	slots = 6
	updated, err := f.app.EditConfig(context.Background(), leagueID,
		ConfigPatch{TeamSlots: &slots}, actorFor(commissioner))
	require.NoError(t, err)
	assert.Equal(t, 6, updated.TeamSlots)
}

func TestEditConfigRejectsClosedLeague(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	commissioner := uuid.New()
	leagueID := f.createLeague(t, commissioner, 10)
	f.setStatus(t, leagueID, models.LeagueStatusClosed)

	desc := "too late"
	_, err := f.app.EditConfig(context.Background(), leagueID,
		ConfigPatch{Description: &desc}, actorFor(commissioner))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
}

func TestEditConfigRejectsEmptyPatch(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	commissioner := uuid.New()
	leagueID := f.createLeague(t, commissioner, 10)

	_, err := f.app.EditConfig(context.Background(), leagueID, ConfigPatch{}, actorFor(commissioner))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindValidation))
}

func TestEditConfigClearsTradeDeadline(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	commissioner := uuid.New()
	leagueID := f.createLeague(t, commissioner, 10)

	deadline := time.Date(2026, 11, 15, 0, 0, 0, 0, time.UTC)
	updated, err := f.app.EditConfig(context.Background(), leagueID,
		ConfigPatch{TradeDeadline: &deadline}, actorFor(commissioner))
	require.NoError(t, err)
	require.NotNil(t, updated.TradeDeadline)

	updated, err = f.app.EditConfig(context.Background(), leagueID,
		ConfigPatch{ClearTradeDeadline: true}, actorFor(commissioner))
	require.NoError(t, err)
	assert.Nil(t, updated.TradeDeadline)
}

func TestTransferCommissionerSwapsRoles(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	commissioner := uuid.New()
	leagueID := f.createLeague(t, commissioner, 4)
	successor := uuid.New()
	_, err := f.app.JoinLeague(context.Background(), leagueID, testPassword, "Bench Warmers", actorFor(successor))
	require.NoError(t, err)

	_, err = f.app.TransferCommissioner(context.Background(), leagueID, successor, actorFor(commissioner))
	require.NoError(t, err)

	newPrimary, err := f.memberships.GetActivePrimaryCommissioner(context.Background(), leagueID)
	require.NoError(t, err)
	assert.Equal(t, successor, newPrimary.UserID)

	old, err := f.memberships.GetActiveMembership(context.Background(), leagueID, commissioner)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCoCommissioner, old.Role)

	// Exactly one primary remains.
	members, err := f.memberships.ListActiveByLeague(context.Background(), leagueID)
	require.NoError(t, err)
	primaries := 0
	for _, m := range members {
		if m.Role == models.RolePrimaryCommissioner {
			primaries++
		}
	}
	assert.Equal(t, 1, primaries)
}

func TestTransferCommissionerRejectsSelf(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	commissioner := uuid.New()
	leagueID := f.createLeague(t, commissioner, 4)

	_, err := f.app.TransferCommissioner(context.Background(), leagueID, commissioner, actorFor(commissioner))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestTransferCommissionerRejectsNonMember(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	commissioner := uuid.New()
	leagueID := f.createLeague(t, commissioner, 4)

	_, err := f.app.TransferCommissioner(context.Background(), leagueID, uuid.New(), actorFor(commissioner))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestAssignCoCommissioner(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	commissioner := uuid.New()
	leagueID := f.createLeague(t, commissioner, 4)
	member := uuid.New()
	_, err := f.app.JoinLeague(context.Background(), leagueID, testPassword, "Bench Warmers", actorFor(member))
	require.NoError(t, err)

	_, err = f.app.AssignCoCommissioner(context.Background(), leagueID, member, actorFor(commissioner))
	require.NoError(t, err)

	m, err := f.memberships.GetActiveMembership(context.Background(), leagueID, member)
	require.NoError(t, err)
	assert.Equal(t, models.RoleCoCommissioner, m.Role)

	// Promoting again is a conflict.
	_, err = f.app.AssignCoCommissioner(context.Background(), leagueID, member, actorFor(commissioner))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestAssignCoCommissionerRejectsNonMember(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	commissioner := uuid.New()
	leagueID := f.createLeague(t, commissioner, 4)

	_, err := f.app.AssignCoCommissioner(context.Background(), leagueID, uuid.New(), actorFor(commissioner))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestRemoveCoCommissionerRequiresRole(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	commissioner := uuid.New()
	leagueID := f.createLeague(t, commissioner, 4)
	member := uuid.New()
	_, err := f.app.JoinLeague(context.Background(), leagueID, testPassword, "Bench Warmers", actorFor(member))
	require.NoError(t, err)

	_, err = f.app.RemoveCoCommissioner(context.Background(), leagueID, member, actorFor(commissioner))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))

	_, err = f.app.AssignCoCommissioner(context.Background(), leagueID, member, actorFor(commissioner))
	require.NoError(t, err)
	_, err = f.app.RemoveCoCommissioner(context.Background(), leagueID, member, actorFor(commissioner))
	require.NoError(t, err)

	m, err := f.memberships.GetActiveMembership(context.Background(), leagueID, member)
	require.NoError(t, err)
	assert.Equal(t, models.RoleMember, m.Role)
}

func TestLeaveLeagueBlocksPrimaryCommissioner(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	commissioner := uuid.New()
	leagueID := f.createLeague(t, commissioner, 4)

	_, err := f.app.LeaveLeague(context.Background(), leagueID, actorFor(commissioner))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	assert.Contains(t, err.Error(), "transfer")
}

func TestLeaveLeagueBlockedWhileActiveByDefault(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	leagueID := f.createLeague(t, uuid.New(), 4)
	member := uuid.New()
	_, err := f.app.JoinLeague(context.Background(), leagueID, testPassword, "Bench Warmers", actorFor(member))
	require.NoError(t, err)
	f.setStatus(t, leagueID, models.LeagueStatusActive)

	_, err = f.app.LeaveLeague(context.Background(), leagueID, actorFor(member))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindInvalidState))
}

func TestLeaveLeagueClosesMembershipAndTeam(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	leagueID := f.createLeague(t, uuid.New(), 4)
	member := uuid.New()
	joined, err := f.app.JoinLeague(context.Background(), leagueID, testPassword, "Bench Warmers", actorFor(member))
	require.NoError(t, err)

	_, err = f.app.LeaveLeague(context.Background(), leagueID, actorFor(member))
	require.NoError(t, err)

	_, err = f.memberships.GetActiveMembership(context.Background(), leagueID, member)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	left, err := f.teams.GetTeam(context.Background(), joined.TeamID)
	require.NoError(t, err)
	assert.False(t, left.Active)
	assert.NotNil(t, left.DeactivatedAt)

	// The slot opens back up.
	count, err := f.teams.CountActiveByLeague(context.Background(), leagueID)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}

func TestRemoveTeamDeactivatesTeamAndClosesMembership(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	commissioner := uuid.New()
	leagueID := f.createLeague(t, commissioner, 4)
	member := uuid.New()
	joined, err := f.app.JoinLeague(context.Background(), leagueID, testPassword, "Bench Warmers", actorFor(member))
	require.NoError(t, err)
	f.setStatus(t, leagueID, models.LeagueStatusActive)

	_, err = f.app.RemoveTeam(context.Background(), leagueID, joined.TeamID, "inactive owner", actorFor(commissioner))
	require.NoError(t, err)

	removed, err := f.teams.GetTeam(context.Background(), joined.TeamID)
	require.NoError(t, err)
	assert.False(t, removed.Active)

	_, err = f.memberships.GetActiveMembership(context.Background(), leagueID, member)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))

	assert.Contains(t, f.audit.actions(), audit.ActionTeamRemoved)
}

func TestRemoveTeamRejectsPrimaryCommissionersOwnTeam(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	commissioner := uuid.New()

	result, err := f.app.CreateLeague(context.Background(), CreateLeagueRequest{
		SeasonID:         f.seasonID,
		Name:             "Sunday Legends",
		TeamSlots:        4,
		PlayoffTeams:     4,
		PositionFormatID: f.formatID,
		ScoringSchemaID:  f.schemaID,
		Password:         testPassword,
		InitialTeamName:  "Gridiron Gang",
	}, actorFor(commissioner))
	require.NoError(t, err)
	require.NotNil(t, result.InitialTeamID)

	_, err = f.app.RemoveTeam(context.Background(), result.LeagueID, *result.InitialTeamID, "", actorFor(commissioner))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
}

func TestRemoveTeamRejectsForeignTeam(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	commissioner := uuid.New()
	leagueID := f.createLeague(t, commissioner, 4)

	other, err := f.teams.CreateTeam(context.Background(), team.CreateTeamRequest{
		LeagueID: uuid.New(),
		OwnerID:  uuid.New(),
		Name:     "Outsiders",
	})
	require.NoError(t, err)

	_, err = f.app.RemoveTeam(context.Background(), leagueID, other.ID, "", actorFor(commissioner))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindNotFound))
}

func TestRemoveTeamRequiresPrimaryCommissioner(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	leagueID := f.createLeague(t, uuid.New(), 4)
	member := uuid.New()
	joined, err := f.app.JoinLeague(context.Background(), leagueID, testPassword, "Bench Warmers", actorFor(member))
	require.NoError(t, err)

	_, err = f.app.RemoveTeam(context.Background(), leagueID, joined.TeamID, "", actorFor(member))
	require.Error(t, err)
	assert.True(t, apperrors.IsKind(err, apperrors.KindPermission))
}

func TestValidatePasswordNeverErrors(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	leagueID := f.createLeague(t, uuid.New(), 4)

	// Unknown league and wrong password are indistinguishable.
	result := f.app.ValidatePassword(context.Background(), uuid.New(), testPassword, models.Actor{})
	assert.False(t, result.IsValid)

	result = f.app.ValidatePassword(context.Background(), leagueID, "Wrong1234", models.Actor{})
	assert.False(t, result.IsValid)

	result = f.app.ValidatePassword(context.Background(), leagueID, testPassword, models.Actor{})
	assert.True(t, result.IsValid)

	checks := 0
	for _, action := range f.audit.actions() {
		if action == audit.ActionLeaguePasswordChecked {
			checks++
		}
	}
	assert.Equal(t, 3, checks)
}

func TestGetSummaryStripsPasswordHash(t *testing.T) {
	f := newFixture(t, DefaultPolicy())
	leagueID := f.createLeague(t, uuid.New(), 4)
	_, err := f.app.JoinLeague(context.Background(), leagueID, testPassword, "Bench Warmers", actorFor(uuid.New()))
	require.NoError(t, err)

	summary, err := f.app.GetSummary(context.Background(), leagueID)
	require.NoError(t, err)
	assert.Empty(t, summary.League.PasswordHash)
	assert.Len(t, summary.Teams, 1)
	assert.Equal(t, 2, summary.MemberCount)
	assert.Equal(t, 3, summary.AvailableSlots)
}

func TestSearchLeaguesNormalizesPaging(t *testing.T) {
	f := newFixture(t, DefaultPolicy())

	_, err := f.app.SearchLeagues(context.Background(), SearchFilters{}, Page{})
	require.NoError(t, err)
	assert.Equal(t, defaultPageSize, f.leagues.searchLimit)
	assert.Equal(t, 0, f.leagues.searchOffset)

	_, err = f.app.SearchLeagues(context.Background(), SearchFilters{}, Page{Number: 3, Size: 1000})
	require.NoError(t, err)
	assert.Equal(t, maxPageSize, f.leagues.searchLimit)
	assert.Equal(t, 2*maxPageSize, f.leagues.searchOffset)
}
