package server_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"cedh-tracker/internal/analytics"
	"cedh-tracker/internal/api"
	"cedh-tracker/internal/config"
	"cedh-tracker/internal/constants"
	"cedh-tracker/internal/database"
	"cedh-tracker/internal/db"
	"cedh-tracker/internal/domain"
	"cedh-tracker/internal/middleware"
	"cedh-tracker/internal/repository"
	"cedh-tracker/internal/rpc"
	"cedh-tracker/internal/server"
	"cedh-tracker/internal/service"

	"connectrpc.com/connect"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T) *rpc.TrackerServiceClient {
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

	tracker := server.NewTrackerServer(
		service.NewUserService(userRepo, cfg, logger),
		games,
		service.NewAnalyticsService(agg, cfg, logger),
		service.NewDeckService(deckRepo, store, agg, api.NewMoxfieldClient(cfg, logger), logger),
		service.NewPlayerService(playerRepo, logger),
		service.NewResourceService(playerRepo, deckRepo, gameRepo, logger),
		service.NewTransferService(playerRepo, deckRepo, games, store, logger),
		logger,
	)

	path, handler := rpc.NewTrackerServiceHandler(tracker)
	mux := http.NewServeMux()
	mux.Handle(path, middleware.RequestID(logger)(middleware.RequestCache(handler)))

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return rpc.NewTrackerServiceClient(srv.Client(), srv.URL)
}

func request[T any](email string, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if email != "" {
		req.Header().Set(constants.UserEmailHeader, email)
	}
	return req
}

func seat(n int, player, deck string, result domain.Result) domain.SeatInput {
	return domain.SeatInput{
		Seat:          n,
		PlayerName:    player,
		DeckName:      deck,
		Archetype:     domain.ArchetypeTurbo,
		ColorIdentity: "G",
		Commanders:    []string{deck},
		Result:        result,
	}
}

func game(startedAt time.Time, turns int) *rpc.RecordGameRequest {
	return &rpc.RecordGameRequest{
		StartedAt:  startedAt,
		TurnsToWin: &turns,
		Players: []domain.SeatInput{
			seat(1, "Ari", "Selvala", domain.ResultWin),
			seat(2, "Bea", "Najeela", domain.ResultLose),
			seat(3, "Cy", "Kinnan", domain.ResultLose),
		},
	}
}

func TestRecordGameAndDashboard(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

	recorded, err := client.RecordGame(ctx, request("", game(start, 5)))
	require.NoError(t, err)
	assert.NotEmpty(t, recorded.Msg.ID)

	_, err = client.RecordGame(ctx, request("", game(start.Add(24*time.Hour), 7)))
	require.NoError(t, err)

	dash, err := client.GetDashboard(ctx, request("", &rpc.GetDashboardRequest{}))
	require.NoError(t, err)
	require.NotNil(t, dash.Msg.Kpis)
	assert.InDelta(t, 1.0/3, dash.Msg.Kpis.OverallWinRate, 1e-9)
	require.Len(t, dash.Msg.Recent, 2)
	assert.True(t, start.Add(24*time.Hour).Equal(dash.Msg.Recent[0].StartedAt))

	recent, err := client.ListRecentGames(ctx, request("", &rpc.ListRecentGamesRequest{Take: 1}))
	require.NoError(t, err)
	require.Len(t, recent.Msg.Games, 1)
	assert.Len(t, recent.Msg.Games[0].Players, 3)
}

func TestUsersAreIsolatedByHeader(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	_, err := client.RecordGame(ctx, request("ari@example.com", game(time.Now().UTC(), 4)))
	require.NoError(t, err)

	mine, err := client.ListResources(ctx, request("ARI@example.com ", &rpc.ListResourcesRequest{}))
	require.NoError(t, err)
	assert.Len(t, mine.Msg.Players, 3)
	assert.Len(t, mine.Msg.Decks, 3)
	assert.Len(t, mine.Msg.Pods, 1)

	guest, err := client.ListResources(ctx, request("", &rpc.ListResourcesRequest{}))
	require.NoError(t, err)
	assert.Empty(t, guest.Msg.Players)
	assert.Empty(t, guest.Msg.Decks)
}

func TestRecordGameInvalidArgument(t *testing.T) {
	client := newClient(t)

	in := game(time.Now().UTC(), 4)
	in.Players = in.Players[:2]

	_, err := client.RecordGame(context.Background(), request("", in))
	require.Error(t, err)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestDeckEndpoints(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()
	start := time.Date(2024, 5, 1, 20, 0, 0, 0, time.UTC)

	_, err := client.RecordGame(ctx, request("", game(start, 5)))
	require.NoError(t, err)

	resources, err := client.ListResources(ctx, request("", &rpc.ListResourcesRequest{}))
	require.NoError(t, err)
	var deckID string
	for _, d := range resources.Msg.Decks {
		if d.Name == "Selvala" {
			deckID = d.ID
		}
	}
	require.NotEmpty(t, deckID)

	perf, err := client.GetDeckPerformance(ctx, request("", &rpc.GetDeckPerformanceRequest{DeckID: deckID}))
	require.NoError(t, err)
	assert.Equal(t, 1, perf.Msg.Games)
	assert.InDelta(t, 1.0, perf.Msg.WinRate, 1e-9)

	trend, err := client.GetDeckTrend(ctx, request("", &rpc.GetDeckTrendRequest{DeckID: deckID}))
	require.NoError(t, err)
	require.Len(t, trend.Msg.Points, 1)
	assert.Equal(t, "2024-05-01", trend.Msg.Points[0].Date)
	assert.InDelta(t, 1.0, trend.Msg.Points[0].WinRate, 1e-9)

	_, err = client.GetDeckPerformance(ctx, request("other@example.com", &rpc.GetDeckPerformanceRequest{DeckID: deckID}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}

func TestPlayerProfileNotFound(t *testing.T) {
	client := newClient(t)

	_, err := client.GetPlayerProfile(context.Background(), request("", &rpc.GetPlayerProfileRequest{PlayerID: "missing"}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}

func TestImportExportRoundTrip(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	imported, err := client.ImportCSV(ctx, request("", &rpc.ImportCSVRequest{
		Dataset: service.DatasetPlayers,
		CSV:     "displayName,notes\nSelvala,\nNajeela,\n",
	}))
	require.NoError(t, err)
	assert.Equal(t, 2, imported.Msg.Created)

	exported, err := client.ExportCSV(ctx, request("", &rpc.ExportCSVRequest{Dataset: service.DatasetPlayers}))
	require.NoError(t, err)
	assert.Equal(t, service.DatasetPlayers, exported.Msg.Dataset)
	assert.Contains(t, exported.Msg.CSV, "Najeela")
	assert.Contains(t, exported.Msg.CSV, "Selvala")

	_, err = client.ExportCSV(ctx, request("", &rpc.ExportCSVRequest{Dataset: "events"}))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestLookupMoxfieldRejectsForeignURL(t *testing.T) {
	client := newClient(t)

	_, err := client.LookupMoxfield(context.Background(), request("", &rpc.LookupMoxfieldRequest{URL: "https://archidekt.com/decks/1"}))
	require.Error(t, err)
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestUpdateProfile(t *testing.T) {
	client := newClient(t)
	ctx := context.Background()

	user, err := client.UpdateProfile(ctx, request("ari@example.com", &rpc.UpdateProfileRequest{Name: " Ari "}))
	require.NoError(t, err)
	assert.Equal(t, "ari@example.com", user.Msg.Email)
	require.NotNil(t, user.Msg.Name)
	assert.Equal(t, "Ari", *user.Msg.Name)
}
