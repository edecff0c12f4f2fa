package analytics_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"cedh-tracker/internal/analytics"
	"cedh-tracker/internal/analytics/memstore"
	"cedh-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const userID = "user-1"

var baseTime = time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC)

type seat struct {
	deck      string
	seat      int
	mulligans int
	result    domain.Result
}

type fixture struct {
	store *memstore.Store
	n     int
}

func newFixture() *fixture {
	return &fixture{store: memstore.New()}
}

func (f *fixture) deck(id string, archetype domain.Archetype) {
	f.store.AddPlayer(domain.Player{ID: "p-" + id, UserID: userID, DisplayName: "Pilot " + id})
	f.store.AddDeck(domain.Deck{
		ID:         id,
		UserID:     userID,
		PlayerID:   "p-" + id,
		Name:       "Deck " + id,
		Archetype:  archetype,
		Commanders: []string{"Commander " + id},
	})
}

func (f *fixture) game(startedAt time.Time, turns *int, seats ...seat) string {
	f.n++
	gameID := fmt.Sprintf("g%d", f.n)
	players := make([]domain.GamePlayer, 0, len(seats))
	for i, s := range seats {
		players = append(players, domain.GamePlayer{
			ID:        fmt.Sprintf("%s-gp%d", gameID, i),
			UserID:    userID,
			GameID:    gameID,
			PlayerID:  "p-" + s.deck,
			DeckID:    s.deck,
			Seat:      s.seat,
			Mulligans: s.mulligans,
			Result:    s.result,
		})
	}
	f.store.AddGame(domain.Game{
		ID:         gameID,
		UserID:     userID,
		PodID:      "pod-1",
		StartedAt:  startedAt,
		TurnsToWin: turns,
	}, players...)
	return gameID
}

func (f *fixture) aggregator() *analytics.Aggregator {
	return analytics.NewAggregator(f.store, zerolog.Nop())
}

func intPtr(v int) *int { return &v }

// one Turbo deck, a win from seat 1 with no mulligan and a loss from seat 2 after one
func turboScenario() *fixture {
	f := newFixture()
	f.deck("turbo", domain.ArchetypeTurbo)
	f.game(baseTime, intPtr(5), seat{deck: "turbo", seat: 1, mulligans: 0, result: domain.ResultWin})
	f.game(baseTime.Add(24*time.Hour), nil, seat{deck: "turbo", seat: 2, mulligans: 1, result: domain.ResultLose})
	return f
}

func TestEndToEndScenario(t *testing.T) {
	ctx := context.Background()
	agg := turboScenario().aggregator()

	archetypes, err := agg.WinRateByArchetype(ctx, userID, nil)
	require.NoError(t, err)
	assert.Equal(t, []analytics.ArchetypeRate{{Archetype: domain.ArchetypeTurbo, Games: 2, WinRate: 0.5}}, archetypes)

	seats, err := agg.SeatAdvantage(ctx, userID, nil)
	require.NoError(t, err)
	assert.Equal(t, []analytics.SeatRate{
		{Seat: 1, Games: 1, WinRate: 1},
		{Seat: 2, Games: 1, WinRate: 0},
	}, seats)

	impact, err := agg.MulliganImpact(ctx, userID, nil)
	require.NoError(t, err)
	assert.Equal(t, []analytics.MulliganRate{
		{Mulligans: 0, Games: 1, WinRate: 1},
		{Mulligans: 1, Games: 1, WinRate: 0},
	}, impact.Points)
	assert.InDelta(t, -1.0, impact.Slope, 1e-9)
}

func TestWinRateByArchetype(t *testing.T) {
	ctx := context.Background()

	t.Run("archetypes without games report zero", func(t *testing.T) {
		f := newFixture()
		f.deck("stax", domain.ArchetypeStax)
		f.deck("combo", domain.ArchetypeCombo)
		f.game(baseTime, nil, seat{deck: "combo", seat: 1, result: domain.ResultWin})

		rows, err := f.aggregator().WinRateByArchetype(ctx, userID, nil)
		require.NoError(t, err)
		assert.Equal(t, []analytics.ArchetypeRate{
			{Archetype: domain.ArchetypeStax, Games: 0, WinRate: 0},
			{Archetype: domain.ArchetypeCombo, Games: 1, WinRate: 1},
		}, rows)
	})

	t.Run("decks sharing an archetype are merged", func(t *testing.T) {
		f := newFixture()
		f.deck("a", domain.ArchetypeCombo)
		f.deck("b", domain.ArchetypeCombo)
		f.game(baseTime, nil,
			seat{deck: "a", seat: 1, result: domain.ResultWin},
			seat{deck: "b", seat: 2, result: domain.ResultLose},
		)
		f.game(baseTime, nil,
			seat{deck: "a", seat: 1, result: domain.ResultDraw},
			seat{deck: "b", seat: 2, result: domain.ResultDraw},
		)

		rows, err := f.aggregator().WinRateByArchetype(ctx, userID, nil)
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Equal(t, 4, rows[0].Games)
		assert.Equal(t, 0.25, rows[0].WinRate)
	})

	t.Run("rows for unknown decks are dropped", func(t *testing.T) {
		f := newFixture()
		f.deck("known", domain.ArchetypeMidrange)
		f.game(baseTime, nil,
			seat{deck: "known", seat: 1, result: domain.ResultLose},
			seat{deck: "ghost", seat: 2, result: domain.ResultWin},
		)

		rows, err := f.aggregator().WinRateByArchetype(ctx, userID, nil)
		require.NoError(t, err)
		assert.Equal(t, []analytics.ArchetypeRate{{Archetype: domain.ArchetypeMidrange, Games: 1, WinRate: 0}}, rows)
	})

	t.Run("since filters on game start", func(t *testing.T) {
		f := turboScenario()
		since := baseTime.Add(time.Hour)

		rows, err := f.aggregator().WinRateByArchetype(ctx, userID, &since)
		require.NoError(t, err)
		assert.Equal(t, []analytics.ArchetypeRate{{Archetype: domain.ArchetypeTurbo, Games: 1, WinRate: 0}}, rows)
	})

	t.Run("since bound is inclusive", func(t *testing.T) {
		f := turboScenario()
		since := baseTime

		rows, err := f.aggregator().WinRateByArchetype(ctx, userID, &since)
		require.NoError(t, err)
		assert.Equal(t, 2, rows[0].Games)
	})
}

func TestSeatAdvantageSortedAndSparse(t *testing.T) {
	f := newFixture()
	f.deck("a", domain.ArchetypeTurbo)
	f.deck("b", domain.ArchetypeStax)
	f.game(baseTime, nil,
		seat{deck: "a", seat: 4, result: domain.ResultWin},
		seat{deck: "b", seat: 2, result: domain.ResultLose},
	)
	f.game(baseTime, nil,
		seat{deck: "a", seat: 2, result: domain.ResultWin},
		seat{deck: "b", seat: 4, result: domain.ResultLose},
	)

	seats, err := f.aggregator().SeatAdvantage(context.Background(), userID, nil)
	require.NoError(t, err)
	assert.Equal(t, []analytics.SeatRate{
		{Seat: 2, Games: 2, WinRate: 0.5},
		{Seat: 4, Games: 2, WinRate: 0.5},
	}, seats)
}

func TestTurnsToWinHistogram(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.deck("a", domain.ArchetypeTurbo)
	for _, turns := range []int{7, 4, 5, 4, 8, 3} {
		f.game(baseTime, intPtr(turns), seat{deck: "a", seat: 1, result: domain.ResultWin})
	}
	f.game(baseTime, nil, seat{deck: "a", seat: 1, result: domain.ResultLose})
	agg := f.aggregator()

	bins, err := agg.TurnsToWinHistogram(ctx, userID, 1, nil)
	require.NoError(t, err)
	assert.Equal(t, []analytics.HistogramBin{
		{Turn: 3, Count: 1},
		{Turn: 4, Count: 2},
		{Turn: 5, Count: 1},
		{Turn: 7, Count: 1},
		{Turn: 8, Count: 1},
	}, bins)

	bins, err = agg.TurnsToWinHistogram(ctx, userID, 3, nil)
	require.NoError(t, err)
	assert.Equal(t, []analytics.HistogramBin{
		{Turn: 1, Count: 1},
		{Turn: 4, Count: 3},
		{Turn: 7, Count: 2},
	}, bins)

	bins, err = agg.TurnsToWinHistogram(ctx, userID, 0, nil)
	require.NoError(t, err)
	assert.Len(t, bins, 5)
}

func TestMulliganImpact(t *testing.T) {
	ctx := context.Background()

	t.Run("linear synthetic set has positive slope", func(t *testing.T) {
		f := newFixture()
		f.deck("a", domain.ArchetypeTurbo)
		wins := map[int]int{0: 4, 1: 5, 2: 6}
		for mulligans := 0; mulligans <= 2; mulligans++ {
			for i := 0; i < 10; i++ {
				result := domain.ResultLose
				if i < wins[mulligans] {
					result = domain.ResultWin
				}
				f.game(baseTime, nil, seat{deck: "a", seat: 1, mulligans: mulligans, result: result})
			}
		}

		impact, err := f.aggregator().MulliganImpact(ctx, userID, nil)
		require.NoError(t, err)
		require.Len(t, impact.Points, 3)
		assert.Equal(t, 0, impact.Points[0].Mulligans)
		assert.InDelta(t, 0.4, impact.Points[0].WinRate, 1e-9)
		assert.InDelta(t, 0.6, impact.Points[2].WinRate, 1e-9)
		assert.Greater(t, impact.Slope, 0.0)
		assert.InDelta(t, 0.1, impact.Slope, 1e-9)
	})

	t.Run("no games yields zero slope", func(t *testing.T) {
		impact, err := newFixture().aggregator().MulliganImpact(ctx, userID, nil)
		require.NoError(t, err)
		assert.Empty(t, impact.Points)
		assert.Equal(t, 0.0, impact.Slope)
	})
}

func TestMatchupMatrixIsDirectional(t *testing.T) {
	f := newFixture()
	f.deck("a", domain.ArchetypeCombo)
	f.deck("b", domain.ArchetypeStax)
	for i := 0; i < 2; i++ {
		f.game(baseTime, nil,
			seat{deck: "a", seat: 1, result: domain.ResultWin},
			seat{deck: "b", seat: 2, result: domain.ResultLose},
		)
	}

	matrix, err := f.aggregator().MatchupMatrix(context.Background(), userID, nil)
	require.NoError(t, err)
	assert.Equal(t, []analytics.MatchupRow{
		{
			Archetype: domain.ArchetypeCombo,
			Opponents: []analytics.MatchupCell{{OpponentArchetype: domain.ArchetypeStax, Games: 2, WinRate: 1}},
		},
		{
			Archetype: domain.ArchetypeStax,
			Opponents: []analytics.MatchupCell{{OpponentArchetype: domain.ArchetypeCombo, Games: 2, WinRate: 0}},
		},
	}, matrix)
}

func TestMatchupMatrixExcludesSelfOnly(t *testing.T) {
	f := newFixture()
	f.deck("a", domain.ArchetypeTurbo)
	f.deck("b", domain.ArchetypeTurbo)
	f.deck("c", domain.ArchetypeControl)
	f.deck("d", domain.ArchetypeControl)
	f.game(baseTime, nil,
		seat{deck: "a", seat: 1, result: domain.ResultWin},
		seat{deck: "b", seat: 2, result: domain.ResultLose},
		seat{deck: "c", seat: 3, result: domain.ResultLose},
		seat{deck: "d", seat: 4, result: domain.ResultLose},
	)

	matrix, err := f.aggregator().MatchupMatrix(context.Background(), userID, nil)
	require.NoError(t, err)
	require.Len(t, matrix, 2)

	turbo := matrix[0]
	assert.Equal(t, domain.ArchetypeTurbo, turbo.Archetype)
	// two turbo pilots each see one turbo mirror and two control opponents
	assert.Equal(t, []analytics.MatchupCell{
		{OpponentArchetype: domain.ArchetypeTurbo, Games: 2, WinRate: 0.5},
		{OpponentArchetype: domain.ArchetypeControl, Games: 4, WinRate: 0.5},
	}, turbo.Opponents)

	total := 0
	for _, row := range matrix {
		for _, cell := range row.Opponents {
			total += cell.Games
		}
	}
	assert.Equal(t, 12, total) // 4 players x 3 opponents
}

func TestDeckPerformance(t *testing.T) {
	ctx := context.Background()

	t.Run("missing deck is nil", func(t *testing.T) {
		perf, err := newFixture().aggregator().DeckPerformance(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, perf)
	})

	t.Run("aggregates the deck's own rows", func(t *testing.T) {
		f := newFixture()
		f.deck("a", domain.ArchetypeDoomsday)
		f.deck("b", domain.ArchetypeStax)
		f.game(baseTime, intPtr(8),
			seat{deck: "a", seat: 1, result: domain.ResultWin},
			seat{deck: "b", seat: 2, result: domain.ResultLose},
		)
		f.game(baseTime, intPtr(4),
			seat{deck: "a", seat: 2, result: domain.ResultLose},
			seat{deck: "b", seat: 1, result: domain.ResultWin},
		)
		f.game(baseTime, nil, seat{deck: "a", seat: 3, result: domain.ResultWin})

		perf, err := f.aggregator().DeckPerformance(ctx, "a")
		require.NoError(t, err)
		require.NotNil(t, perf)
		assert.Equal(t, "a", perf.Deck.ID)
		assert.Equal(t, 3, perf.Games)
		assert.InDelta(t, 2.0/3.0, perf.WinRate, 1e-9)
		require.NotNil(t, perf.MedianTurns)
		assert.Equal(t, 8, *perf.MedianTurns)
		assert.Equal(t, []analytics.ArchetypeRate{
			{Archetype: domain.ArchetypeDoomsday, Games: 3, WinRate: 2.0 / 3.0},
		}, perf.VsArchetype)
	})

	t.Run("deck without games", func(t *testing.T) {
		f := newFixture()
		f.deck("a", domain.ArchetypeOther)

		perf, err := f.aggregator().DeckPerformance(ctx, "a")
		require.NoError(t, err)
		require.NotNil(t, perf)
		assert.Equal(t, 0.0, perf.WinRate)
		assert.Nil(t, perf.MedianTurns)
		assert.Empty(t, perf.VsArchetype)
	})
}

func TestDashboardKpis(t *testing.T) {
	ctx := context.Background()

	t.Run("empty", func(t *testing.T) {
		kpis, err := newFixture().aggregator().DashboardKpis(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, &analytics.DashboardKpis{}, kpis)
	})

	t.Run("populated", func(t *testing.T) {
		f := newFixture()
		f.deck("a", domain.ArchetypeTurbo)
		f.deck("b", domain.ArchetypeStax)
		f.game(baseTime, intPtr(4),
			seat{deck: "a", seat: 1, result: domain.ResultWin},
			seat{deck: "b", seat: 2, result: domain.ResultLose},
		)
		f.game(baseTime, intPtr(8),
			seat{deck: "a", seat: 1, result: domain.ResultWin},
			seat{deck: "b", seat: 2, result: domain.ResultLose},
		)
		f.game(baseTime, intPtr(6),
			seat{deck: "b", seat: 1, result: domain.ResultLose},
			seat{deck: "a", seat: 2, result: domain.ResultWin},
		)

		kpis, err := f.aggregator().DashboardKpis(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 0.5, kpis.OverallWinRate)
		require.NotNil(t, kpis.MedianTTW)
		assert.Equal(t, 6, *kpis.MedianTTW)
		require.NotNil(t, kpis.TopArchetype)
		assert.Equal(t, domain.ArchetypeTurbo, *kpis.TopArchetype)
		// seat 1: 2 of 3; other seats: 1 of 3
		assert.InDelta(t, 1.0/3.0, kpis.Seat1Delta, 1e-9)
	})

	t.Run("median of two uses upper middle", func(t *testing.T) {
		f := newFixture()
		f.deck("a", domain.ArchetypeTurbo)
		f.game(baseTime, intPtr(6), seat{deck: "a", seat: 1, result: domain.ResultWin})
		f.game(baseTime, intPtr(4), seat{deck: "a", seat: 1, result: domain.ResultWin})

		kpis, err := f.aggregator().DashboardKpis(ctx, userID)
		require.NoError(t, err)
		assert.Equal(t, 6, *kpis.MedianTTW)
	})
}

func TestRecentGamesNewestFirst(t *testing.T) {
	f := newFixture()
	f.deck("a", domain.ArchetypeTurbo)
	var ids []string
	for i := 0; i < 4; i++ {
		ids = append(ids, f.game(baseTime.Add(time.Duration(i)*time.Hour), nil, seat{deck: "a", seat: 1, result: domain.ResultWin}))
	}

	games, err := f.aggregator().RecentGames(context.Background(), userID, 3)
	require.NoError(t, err)
	require.Len(t, games, 3)
	assert.Equal(t, ids[3], games[0].ID)
	assert.Equal(t, ids[2], games[1].ID)
	assert.Equal(t, ids[1], games[2].ID)
	require.Len(t, games[0].Players, 1)
	assert.Equal(t, "Deck a", games[0].Players[0].Deck.Name)
	assert.Equal(t, "Pilot a", games[0].Players[0].Player.DisplayName)
}

func TestWinRatesStayInUnitInterval(t *testing.T) {
	ctx := context.Background()
	f := newFixture()
	f.deck("a", domain.ArchetypeTurbo)
	f.deck("b", domain.ArchetypeCombo)
	f.deck("c", domain.ArchetypeControl)
	results := []domain.Result{domain.ResultWin, domain.ResultLose, domain.ResultDraw}
	for i := 0; i < 9; i++ {
		f.game(baseTime.Add(time.Duration(i)*time.Hour), intPtr(i+1),
			seat{deck: "a", seat: 1, mulligans: i % 3, result: results[i%3]},
			seat{deck: "b", seat: 2, mulligans: (i + 1) % 3, result: results[(i+1)%3]},
			seat{deck: "c", seat: 3, mulligans: (i + 2) % 3, result: results[(i+2)%3]},
		)
	}
	agg := f.aggregator()

	inRange := func(rate float64) {
		assert.GreaterOrEqual(t, rate, 0.0)
		assert.LessOrEqual(t, rate, 1.0)
	}

	archetypes, err := agg.WinRateByArchetype(ctx, userID, nil)
	require.NoError(t, err)
	for _, r := range archetypes {
		inRange(r.WinRate)
	}
	seats, err := agg.SeatAdvantage(ctx, userID, nil)
	require.NoError(t, err)
	for _, r := range seats {
		inRange(r.WinRate)
	}
	matrix, err := agg.MatchupMatrix(ctx, userID, nil)
	require.NoError(t, err)
	for _, row := range matrix {
		for _, cell := range row.Opponents {
			inRange(cell.WinRate)
		}
	}
}

type failingStore struct {
	analytics.Store
	err error
}

func (s failingStore) GroupGamePlayers(context.Context, analytics.GroupQuery) ([]analytics.GroupRow, error) {
	return nil, s.err
}

func TestStoreErrorsPropagate(t *testing.T) {
	boom := errors.New("connection refused")
	agg := analytics.NewAggregator(failingStore{Store: memstore.New(), err: boom}, zerolog.Nop())

	_, err := agg.SeatAdvantage(context.Background(), userID, nil)
	assert.ErrorIs(t, err, boom)

	_, err = agg.DashboardKpis(context.Background(), userID)
	assert.ErrorIs(t, err, boom)
}

type countingStore struct {
	analytics.Store
	groupCalls int
}

func (s *countingStore) GroupGamePlayers(ctx context.Context, q analytics.GroupQuery) ([]analytics.GroupRow, error) {
	s.groupCalls++
	return s.Store.GroupGamePlayers(ctx, q)
}

func TestRequestCacheMemoizesPerRequest(t *testing.T) {
	store := &countingStore{Store: turboScenario().store}
	agg := analytics.NewAggregator(store, zerolog.Nop())

	cache := analytics.NewRequestCache()
	ctx := analytics.WithRequestCache(context.Background(), cache)

	first, err := agg.SeatAdvantage(ctx, userID, nil)
	require.NoError(t, err)
	second, err := agg.SeatAdvantage(ctx, userID, nil)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, store.groupCalls)
	assert.Equal(t, 1, cache.Len())

	since := baseTime.Add(time.Hour)
	_, err = agg.SeatAdvantage(ctx, userID, &since)
	require.NoError(t, err)
	assert.Equal(t, 2, store.groupCalls)

	_, err = agg.SeatAdvantage(ctx, "someone-else", nil)
	require.NoError(t, err)
	assert.Equal(t, 3, store.groupCalls)

	// a fresh request recomputes
	_, err = agg.SeatAdvantage(analytics.WithRequestCache(context.Background(), analytics.NewRequestCache()), userID, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, store.groupCalls)

	// no cache attached recomputes
	_, err = agg.SeatAdvantage(context.Background(), userID, nil)
	require.NoError(t, err)
	assert.Equal(t, 5, store.groupCalls)
}
