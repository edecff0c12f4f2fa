package service_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"cedh-tracker/internal/analytics"
	"cedh-tracker/internal/api"
	"cedh-tracker/internal/config"
	"cedh-tracker/internal/database"
	"cedh-tracker/internal/db"
	"cedh-tracker/internal/domain"
	"cedh-tracker/internal/repository"
	"cedh-tracker/internal/service"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	users     *service.UserService
	games     *service.GameService
	analytics *service.AnalyticsService
	decks     *service.DeckService
	players   *service.PlayerService
	resources *service.ResourceService
	transfer  *service.TransferService
	deckRepo  *repository.DeckRepository
}

func newHarness(t *testing.T) harness {
	t.Helper()
	logger := zerolog.Nop()
	sqlDB, err := database.Open(filepath.Join(t.TempDir(), "cedh.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	cfg := &config.Config{
		GuestEmail:       "guest@cedh.local",
		GuestName:        "Guest",
		MoxfieldBaseURL:  "http://127.0.0.1:0",
		MoxfieldTimeout:  time.Second,
		RecentGamesLimit: 10,
		HistogramBucket:  1,
	}
	queries := db.New(sqlDB)
	userRepo := repository.NewUserRepository(queries, logger)
	playerRepo := repository.NewPlayerRepository(sqlDB, queries, logger)
	deckRepo := repository.NewDeckRepository(queries, logger)
	gameRepo := repository.NewGameRepository(sqlDB, queries, logger)
	store := repository.NewAnalyticsStore(sqlDB, queries, logger)
	agg := analytics.NewAggregator(store, logger)

	games := service.NewGameService(gameRepo, logger)
	return harness{
		users:     service.NewUserService(userRepo, cfg, logger),
		games:     games,
		analytics: service.NewAnalyticsService(agg, cfg, logger),
		decks:     service.NewDeckService(deckRepo, store, agg, api.NewMoxfieldClient(cfg, logger), logger),
		players:   service.NewPlayerService(playerRepo, logger),
		resources: service.NewResourceService(playerRepo, deckRepo, gameRepo, logger),
		transfer:  service.NewTransferService(playerRepo, deckRepo, games, store, logger),
		deckRepo:  deckRepo,
	}
}

func (h harness) guest(t *testing.T) string {
	t.Helper()
	u, err := h.users.ActiveUser(context.Background(), "")
	require.NoError(t, err)
	return u.ID
}

func ptr[T any](v T) *T { return &v }

func seatInput(seat int, player, deck string, archetype domain.Archetype, result domain.Result) domain.SeatInput {
	return domain.SeatInput{
		Seat:          seat,
		PlayerName:    player,
		DeckName:      deck,
		Archetype:     archetype,
		ColorIdentity: "WUBRG",
		Commanders:    []string{player},
		Result:        result,
	}
}

// fourPod records a game where the seat listed in winner wins.
func fourPod(startedAt time.Time, turns int, winner int) domain.QuickRecordInput {
	seats := []domain.SeatInput{
		seatInput(1, "Selvala", "Turbo Selvala", domain.ArchetypeTurbo, ""),
		seatInput(2, "Najeela", "Warrior Queen", domain.ArchetypeMidrange, ""),
		seatInput(3, "Tymna", "Blue Farm", domain.ArchetypeAdNauseam, ""),
		seatInput(4, "Kinnan", "Value Engine", domain.ArchetypeCombo, ""),
	}
	seats[winner-1].Result = domain.ResultWin
	return domain.QuickRecordInput{
		StartedAt:        startedAt,
		TurnsToWin:       &turns,
		WinConditionTags: []string{" Combat ", "Combat", ""},
		Players:          seats,
	}
}

var day0 = time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC)

func day(n int) time.Time { return day0.AddDate(0, 0, n) }

func TestUserServiceGuestFallback(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()

	guest, err := h.users.ActiveUser(ctx, "  ")
	require.NoError(t, err)
	assert.Equal(t, "guest@cedh.local", guest.Email)
	require.NotNil(t, guest.Name)
	assert.Equal(t, "Guest", *guest.Name)

	named, err := h.users.ActiveUser(ctx, "Demo@CEDH.local")
	require.NoError(t, err)
	assert.Equal(t, "demo@cedh.local", named.Email)
	assert.NotEqual(t, guest.ID, named.ID)

	again, err := h.users.ActiveUser(ctx, "demo@cedh.local")
	require.NoError(t, err)
	assert.Equal(t, named.ID, again.ID)

	updated, err := h.users.UpdateProfile(ctx, named.ID, "  Demo User ")
	require.NoError(t, err)
	require.NotNil(t, updated.Name)
	assert.Equal(t, "Demo User", *updated.Name)

	cleared, err := h.users.UpdateProfile(ctx, named.ID, "")
	require.NoError(t, err)
	assert.Nil(t, cleared.Name)
}

func TestRecordGame(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.guest(t)

	game, err := h.games.RecordGame(ctx, userID, fourPod(day0, 5, 1))
	require.NoError(t, err)
	assert.Equal(t, []string{"Combat"}, game.WinConditionTags)

	recent, err := h.analytics.RecentGames(ctx, userID, 0)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	results := map[int]domain.Result{}
	for _, p := range recent[0].Players {
		results[p.Seat] = p.Result
	}
	assert.Equal(t, map[int]domain.Result{1: domain.ResultWin, 2: domain.ResultLose, 3: domain.ResultLose, 4: domain.ResultLose}, results)

	res, err := h.resources.List(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, res.Players, 4)
	assert.Len(t, res.Decks, 4)
	assert.Len(t, res.Pods, 1)
	require.Len(t, res.Tags, 1)
	assert.Equal(t, "Combat", res.Tags[0].Name)

	bad := fourPod(day0, 5, 1)
	bad.Players[1].Seat = 1
	_, err = h.games.RecordGame(ctx, userID, bad)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	reuse := fourPod(day(1), 6, 2)
	reuse.PodID = ptr(res.Pods[0].ID)
	reuse.Players[0].PlayerID = ptr(res.Players[0].ID)
	_, err = h.games.RecordGame(ctx, userID, reuse)
	require.NoError(t, err)

	res, err = h.resources.List(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, res.Pods, 1, "existing pod reused")

	missing := fourPod(day(2), 6, 2)
	missing.Players[0].DeckID = ptr("missing")
	_, err = h.games.RecordGame(ctx, userID, missing)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAnalyticsOverviewAndDashboard(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.guest(t)

	for i, winner := range []int{1, 1, 2, 3} {
		_, err := h.games.RecordGame(ctx, userID, fourPod(day(i), 4+i, winner))
		require.NoError(t, err)
	}

	overview, err := h.analytics.Overview(ctx, userID, nil, 0)
	require.NoError(t, err)
	assert.Len(t, overview.Archetypes, 4)
	require.Len(t, overview.Seats, 4)
	assert.Equal(t, 4, overview.Seats[0].Games)
	assert.InDelta(t, 0.5, overview.Seats[0].WinRate, 1e-9)
	assert.Len(t, overview.Histogram, 4)
	require.NotNil(t, overview.Mulligans)
	assert.Len(t, overview.Matchups, 4)

	since := day(2)
	windowed, err := h.analytics.Overview(ctx, userID, &since, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, windowed.Seats[0].Games)
	assert.Equal(t, []analytics.HistogramBin{{Turn: 5, Count: 1}, {Turn: 7, Count: 1}}, windowed.Histogram)

	dash, err := h.analytics.Dashboard(ctx, userID)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, dash.Kpis.OverallWinRate, 1e-9)
	require.NotNil(t, dash.Kpis.MedianTTW)
	assert.Equal(t, 6, *dash.Kpis.MedianTTW)
	require.NotNil(t, dash.Kpis.TopArchetype)
	assert.Equal(t, domain.ArchetypeTurbo, *dash.Kpis.TopArchetype)
	assert.InDelta(t, 0.5-1.0/6, dash.Kpis.Seat1Delta, 1e-9)
	require.Len(t, dash.Recent, 4)
	assert.True(t, dash.Recent[0].StartedAt.Equal(day(3)))
}

func TestDeckTrendAndPerformance(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.guest(t)
	other, err := h.users.ActiveUser(ctx, "other@cedh.local")
	require.NoError(t, err)

	for i, winner := range []int{2, 1, 1, 3} {
		_, err := h.games.RecordGame(ctx, userID, fourPod(day(i), 5, winner))
		require.NoError(t, err)
	}
	decks, err := h.deckRepo.List(ctx, userID)
	require.NoError(t, err)
	var turbo domain.Deck
	for _, d := range decks {
		if d.Name == "Turbo Selvala" {
			turbo = d
		}
	}
	require.NotEmpty(t, turbo.ID)

	trend, err := h.decks.Trend(ctx, userID, turbo.ID)
	require.NoError(t, err)
	require.Len(t, trend, 4)
	assert.Equal(t, "2024-03-01", trend[0].Date)
	rates := []float64{trend[0].WinRate, trend[1].WinRate, trend[2].WinRate, trend[3].WinRate}
	assert.InDeltaSlice(t, []float64{0, 0.5, 2.0 / 3, 0.5}, rates, 1e-9)

	perf, err := h.decks.Performance(ctx, userID, turbo.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, perf.Games)
	assert.InDelta(t, 0.5, perf.WinRate, 1e-9)

	_, err = h.decks.Performance(ctx, other.ID, turbo.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	_, err = h.decks.Trend(ctx, other.ID, turbo.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = h.decks.LookupMoxfield(ctx, "https://example.com/decks/abc")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestPlayerProfile(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.guest(t)

	for i, winner := range []int{1, 2, 1} {
		_, err := h.games.RecordGame(ctx, userID, fourPod(day(i), 4+i, winner))
		require.NoError(t, err)
	}
	res, err := h.resources.List(ctx, userID)
	require.NoError(t, err)
	var selvala domain.Player
	for _, p := range res.Players {
		if p.DisplayName == "Selvala" {
			selvala = p
		}
	}

	profile, err := h.players.Profile(ctx, userID, selvala.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, profile.Games)
	assert.Equal(t, 2, profile.Wins)
	assert.InDelta(t, 2.0/3, profile.WinRate, 1e-9)
	require.NotNil(t, profile.MedianTurns)
	assert.Equal(t, 5, *profile.MedianTurns)
	require.Len(t, profile.Seats, 1)
	assert.Equal(t, 1, profile.Seats[0].Seat)
	require.Len(t, profile.Decks, 1)
	assert.Equal(t, "Turbo Selvala", profile.Decks[0].Name)
	require.Len(t, profile.History, 3)
	assert.True(t, profile.History[0].StartedAt.Equal(day(2)), "newest first")

	_, err = h.players.Profile(ctx, userID, "missing")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestTransferImport(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.guest(t)

	players, err := h.transfer.Import(ctx, userID, service.DatasetPlayers, "displayName,notes\nSelvala,\n\n  \n,orphan note\nNajeela,\n")
	require.NoError(t, err)
	assert.Equal(t, service.ImportResult{Created: 2, Skipped: 1}, *players)

	decks, err := h.transfer.Import(ctx, userID, service.DatasetDecks, strings.Join([]string{
		"playerName,deckName,moxfieldUrl,archetype,colorIdentity,commanders,companion",
		"Selvala,Turbo Selvala,,Turbo,G,\"Selvala, Heart of the Wilds\",",
		"Tymna,Blue Farm,,NotAnArchetype,WUB,Tymna the Weaver|Kraum,",
		",Nameless,,Turbo,G,,",
	}, "\n"))
	require.NoError(t, err)
	assert.Equal(t, service.ImportResult{Created: 2, Skipped: 1}, *decks)

	res, err := h.resources.List(ctx, userID)
	require.NoError(t, err)
	byName := map[string]domain.Deck{}
	for _, d := range res.Decks {
		byName[d.Name] = d
	}
	assert.Equal(t, []string{"Selvala, Heart of the Wilds"}, byName["Turbo Selvala"].Commanders)
	assert.Equal(t, domain.ArchetypeOther, byName["Blue Farm"].Archetype)
	assert.Equal(t, []string{"Tymna the Weaver", "Kraum"}, byName["Blue Farm"].Commanders)

	games, err := h.transfer.Import(ctx, userID, service.DatasetGames, strings.Join([]string{
		"date,podSize,players,seats,decks,mulligans,winnerSeat,turnsToWin,winTags,eliminationOrder,turnEliminated,notes",
		"2024-03-01T19:00:00Z,4,Selvala|Najeela|Tymna|Kinnan,1|2|3|4,Turbo Selvala|Warrior Queen|Blue Farm|Value Engine,1|0|2|1,1,5,Thassa's Oracle,,0|5|4|4,clutch",
		"2024-03-02,3,A|B|C,1|1|2,,,,,,,,",
		"not-a-date,3,A|B|C,,,,,,,,,",
		"2024-03-03,3,,,,,2,,,,,",
	}, "\n"))
	require.NoError(t, err)
	assert.Equal(t, service.ImportResult{Created: 2, Skipped: 2}, *games)

	recent, err := h.analytics.RecentGames(ctx, userID, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	generated := recent[0]
	assert.Len(t, generated.Players, 3)
	for _, p := range generated.Players {
		assert.Equal(t, domain.ArchetypeOther, p.Deck.Archetype)
		assert.Equal(t, p.Seat == 2, p.Result == domain.ResultWin)
	}

	_, err = h.transfer.Import(ctx, userID, "events", "a\nb")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestTransferExport(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	userID := h.guest(t)

	in := fourPod(day0, 5, 1)
	in.Notes = ptr("line one\nline two")
	in.Players[1].EliminatedBySeat = ptr(1)
	in.Players[1].TurnEliminated = ptr(5)
	in.Players[2].EliminatedBySeat = ptr(1)
	in.Players[2].TurnEliminated = ptr(4)
	_, err := h.games.RecordGame(ctx, userID, in)
	require.NoError(t, err)

	out, err := h.transfer.Export(ctx, userID, service.DatasetGames)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, "date,podSize,players,seats,decks,mulligans,winnerSeat,turnsToWin,winTags,eliminationOrder,turnEliminated,notes", lines[0])
	assert.Equal(t, "2024-03-01T19:00:00Z,4,Selvala|Najeela|Tymna|Kinnan,1|2|3|4,Turbo Selvala|Warrior Queen|Blue Farm|Value Engine,0|0|0|0,1,5,Combat,3|2,4|5,line one line two", lines[1])

	players, err := h.transfer.Export(ctx, userID, service.DatasetPlayers)
	require.NoError(t, err)
	assert.Equal(t, "displayName\nKinnan\nNajeela\nSelvala\nTymna\n", players)

	decks, err := h.transfer.Export(ctx, userID, service.DatasetDecks)
	require.NoError(t, err)
	assert.Contains(t, decks, "Tymna,Blue Farm,,AdNauseam,WUBRG,Tymna,\n")

	// exported games import back into a fresh account
	fresh, err := h.users.ActiveUser(ctx, "fresh@cedh.local")
	require.NoError(t, err)
	result, err := h.transfer.Import(ctx, fresh.ID, service.DatasetGames, out)
	require.NoError(t, err)
	assert.Equal(t, 1, result.Created)
}
