package analytics

import (
	"context"
	"fmt"
	"slices"
	"time"

	"cedh-tracker/internal/constants"
	"cedh-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"
)

type Aggregator struct {
	store  Store
	logger zerolog.Logger
}

func NewAggregator(store Store, logger zerolog.Logger) *Aggregator {
	return &Aggregator{store: store, logger: logger}
}

// WinRateByArchetype reports one row per archetype among the user's decks, including
// archetypes whose decks have no games yet.
func (a *Aggregator) WinRateByArchetype(ctx context.Context, userID string, since *time.Time) ([]ArchetypeRate, error) {
	key := newCacheKey("winRateByArchetype", userID, since)
	return memo(ctx, key, func(ctx context.Context) ([]ArchetypeRate, error) {
		filter := Filter{UserID: userID, Since: since}

		var decks []domain.Deck
		var rows []GroupRow
		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			decks, err = a.store.FindDecks(gCtx, userID)
			return err
		})
		g.Go(func() error {
			var err error
			rows, err = a.store.GroupGamePlayers(gCtx, GroupQuery{
				Filter: filter,
				By:     []GroupField{GroupByResult, GroupByDeckID},
			})
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("failed to load archetype data: %w", err)
		}

		archetypeByDeck := lo.SliceToMap(decks, func(d domain.Deck) (string, domain.Archetype) {
			return d.ID, d.Archetype
		})
		order := lo.Uniq(lo.Map(decks, func(d domain.Deck, _ int) domain.Archetype { return d.Archetype }))
		totals := make(map[domain.Archetype]*tally, len(order))
		for _, archetype := range order {
			totals[archetype] = &tally{}
		}

		skipped := 0
		for _, row := range rows {
			archetype, ok := archetypeByDeck[row.DeckID]
			if !ok {
				skipped++
				continue
			}
			totals[archetype].add(row.Result, row.Count)
		}
		if skipped > 0 {
			a.logger.Debug().Str("user_id", userID).Int("skipped_rows", skipped).Msg("dropped rows for unknown decks")
		}

		return lo.Map(order, func(archetype domain.Archetype, _ int) ArchetypeRate {
			t := totals[archetype]
			return ArchetypeRate{Archetype: archetype, Games: t.games, WinRate: t.rate()}
		}), nil
	})
}

// SeatAdvantage reports seats present in the data, ascending.
func (a *Aggregator) SeatAdvantage(ctx context.Context, userID string, since *time.Time) ([]SeatRate, error) {
	key := newCacheKey("seatAdvantage", userID, since)
	return memo(ctx, key, func(ctx context.Context) ([]SeatRate, error) {
		rows, err := a.store.GroupGamePlayers(ctx, GroupQuery{
			Filter: Filter{UserID: userID, Since: since},
			By:     []GroupField{GroupBySeat, GroupByResult},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to group seats: %w", err)
		}

		totals := make(map[int]*tally)
		for _, row := range rows {
			t, ok := totals[row.Seat]
			if !ok {
				t = &tally{}
				totals[row.Seat] = t
			}
			t.add(row.Result, row.Count)
		}

		seats := lo.Keys(totals)
		slices.Sort(seats)
		return lo.Map(seats, func(seat int, _ int) SeatRate {
			t := totals[seat]
			return SeatRate{Seat: seat, Games: t.games, WinRate: t.rate()}
		}), nil
	})
}

// TurnsToWinHistogram buckets games into left-aligned bins starting at turn 1.
// A bucket below 1 is treated as 1.
func (a *Aggregator) TurnsToWinHistogram(ctx context.Context, userID string, bucket int, since *time.Time) ([]HistogramBin, error) {
	if bucket < 1 {
		bucket = constants.DefaultHistogramSize
	}
	key := newCacheKey("turnsToWinHistogram", userID, since, bucket)
	return memo(ctx, key, func(ctx context.Context) ([]HistogramBin, error) {
		games, err := a.store.FindGames(ctx, GameQuery{
			Filter:        Filter{UserID: userID, Since: since},
			WithTurnsOnly: true,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load games: %w", err)
		}

		counts := make(map[int]int)
		for _, game := range games {
			if game.TurnsToWin == nil {
				continue
			}
			counts[turnBin(*game.TurnsToWin, bucket)]++
		}

		bins := lo.Keys(counts)
		slices.Sort(bins)
		return lo.Map(bins, func(bin int, _ int) HistogramBin {
			return HistogramBin{Turn: bin, Count: counts[bin]}
		}), nil
	})
}

func (a *Aggregator) MulliganImpact(ctx context.Context, userID string, since *time.Time) (*MulliganImpact, error) {
	key := newCacheKey("mulliganImpact", userID, since)
	return memo(ctx, key, func(ctx context.Context) (*MulliganImpact, error) {
		rows, err := a.store.GroupGamePlayers(ctx, GroupQuery{
			Filter: Filter{UserID: userID, Since: since},
			By:     []GroupField{GroupByMulligans, GroupByResult},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to group mulligans: %w", err)
		}

		totals := make(map[int]*tally)
		for _, row := range rows {
			t, ok := totals[row.Mulligans]
			if !ok {
				t = &tally{}
				totals[row.Mulligans] = t
			}
			t.add(row.Result, row.Count)
		}

		counts := lo.Keys(totals)
		slices.Sort(counts)
		points := lo.Map(counts, func(mulligans int, _ int) MulliganRate {
			t := totals[mulligans]
			return MulliganRate{Mulligans: mulligans, Games: t.games, WinRate: t.rate()}
		})

		return &MulliganImpact{Points: points, Slope: weightedSlope(points)}, nil
	})
}

// MatchupMatrix counts every directed (player, opponent) pairing within a game.
// Rows and cells appear in the order they are first observed.
func (a *Aggregator) MatchupMatrix(ctx context.Context, userID string, since *time.Time) ([]MatchupRow, error) {
	key := newCacheKey("matchupMatrix", userID, since)
	return memo(ctx, key, func(ctx context.Context) ([]MatchupRow, error) {
		games, err := a.store.FindGames(ctx, GameQuery{Filter: Filter{UserID: userID, Since: since}})
		if err != nil {
			return nil, fmt.Errorf("failed to load games: %w", err)
		}

		type row struct {
			order []domain.Archetype
			cells map[domain.Archetype]*tally
		}
		var rowOrder []domain.Archetype
		matrix := make(map[domain.Archetype]*row)

		for _, game := range games {
			for _, player := range game.Players {
				archetype := player.Deck.Archetype
				r, ok := matrix[archetype]
				if !ok {
					r = &row{cells: make(map[domain.Archetype]*tally)}
					matrix[archetype] = r
					rowOrder = append(rowOrder, archetype)
				}
				for _, opponent := range game.Players {
					if opponent.ID == player.ID {
						continue
					}
					opp := opponent.Deck.Archetype
					cell, ok := r.cells[opp]
					if !ok {
						cell = &tally{}
						r.cells[opp] = cell
						r.order = append(r.order, opp)
					}
					cell.add(player.Result, 1)
				}
			}
		}

		return lo.Map(rowOrder, func(archetype domain.Archetype, _ int) MatchupRow {
			r := matrix[archetype]
			return MatchupRow{
				Archetype: archetype,
				Opponents: lo.Map(r.order, func(opp domain.Archetype, _ int) MatchupCell {
					cell := r.cells[opp]
					return MatchupCell{OpponentArchetype: opp, Games: cell.games, WinRate: cell.rate()}
				}),
			}
		}), nil
	})
}

// DeckPerformance returns nil, nil when the deck does not exist.
//
// VsArchetype groups by the archetype attached to each of the deck's own rows, which
// is the deck's archetype, so it holds a single bucket.
func (a *Aggregator) DeckPerformance(ctx context.Context, deckID string) (*DeckPerformance, error) {
	key := newCacheKey("deckPerformance", deckID, nil)
	return memo(ctx, key, func(ctx context.Context) (*DeckPerformance, error) {
		deck, err := a.store.FindDeck(ctx, deckID)
		if err != nil {
			return nil, fmt.Errorf("failed to load deck: %w", err)
		}
		if deck == nil {
			return nil, nil
		}

		rows, err := a.store.FindDeckGames(ctx, deckID)
		if err != nil {
			return nil, fmt.Errorf("failed to load deck games: %w", err)
		}

		wins := 0
		var turns []int
		var order []domain.Archetype
		vs := make(map[domain.Archetype]*tally)
		for _, gp := range rows {
			if gp.Result == domain.ResultWin {
				wins++
			}
			if gp.TurnsToWin != nil {
				turns = append(turns, *gp.TurnsToWin)
			}
			cell, ok := vs[gp.Archetype]
			if !ok {
				cell = &tally{}
				vs[gp.Archetype] = cell
				order = append(order, gp.Archetype)
			}
			cell.add(gp.Result, 1)
		}

		return &DeckPerformance{
			Deck:        *deck,
			Games:       len(rows),
			WinRate:     winRate(wins, len(rows)),
			MedianTurns: median(turns),
			VsArchetype: lo.Map(order, func(archetype domain.Archetype, _ int) ArchetypeRate {
				t := vs[archetype]
				return ArchetypeRate{Archetype: archetype, Games: t.games, WinRate: t.rate()}
			}),
		}, nil
	})
}

func (a *Aggregator) DashboardKpis(ctx context.Context, userID string) (*DashboardKpis, error) {
	key := newCacheKey("dashboardKpis", userID, nil)
	return memo(ctx, key, func(ctx context.Context) (*DashboardKpis, error) {
		filter := Filter{UserID: userID}
		win := domain.ResultWin

		var resultRows, seatRows, topRows []GroupRow
		var games []domain.GameWithPlayers
		g, gCtx := errgroup.WithContext(ctx)
		g.Go(func() error {
			var err error
			resultRows, err = a.store.GroupGamePlayers(gCtx, GroupQuery{Filter: filter, By: []GroupField{GroupByResult}})
			return err
		})
		g.Go(func() error {
			var err error
			games, err = a.store.FindGames(gCtx, GameQuery{Filter: filter, WithTurnsOnly: true})
			return err
		})
		g.Go(func() error {
			var err error
			seatRows, err = a.store.GroupGamePlayers(gCtx, GroupQuery{Filter: filter, By: []GroupField{GroupBySeat, GroupByResult}})
			return err
		})
		g.Go(func() error {
			var err error
			topRows, err = a.store.GroupGamePlayers(gCtx, GroupQuery{
				Filter:           filter,
				By:               []GroupField{GroupByDeckID},
				Result:           &win,
				OrderByCountDesc: true,
				Limit:            1,
			})
			return err
		})
		if err := g.Wait(); err != nil {
			return nil, fmt.Errorf("failed to load dashboard data: %w", err)
		}

		var overall tally
		for _, row := range resultRows {
			overall.add(row.Result, row.Count)
		}

		var seat1 tally
		for _, row := range seatRows {
			if row.Seat == 1 {
				seat1.add(row.Result, row.Count)
			}
		}
		others := tally{wins: overall.wins - seat1.wins, games: overall.games - seat1.games}

		turns := lo.FilterMap(games, func(game domain.GameWithPlayers, _ int) (int, bool) {
			if game.TurnsToWin == nil {
				return 0, false
			}
			return *game.TurnsToWin, true
		})

		kpis := &DashboardKpis{
			OverallWinRate: overall.rate(),
			MedianTTW:      median(turns),
			Seat1Delta:     seat1.rate() - others.rate(),
		}

		if len(topRows) > 0 {
			deck, err := a.store.FindDeck(ctx, topRows[0].DeckID)
			if err != nil {
				return nil, fmt.Errorf("failed to load top deck: %w", err)
			}
			if deck != nil {
				archetype := deck.Archetype
				kpis.TopArchetype = &archetype
			}
		}

		return kpis, nil
	})
}

// RecentGames returns the newest games first. A take below 1 uses the default page size.
func (a *Aggregator) RecentGames(ctx context.Context, userID string, take int) ([]domain.GameWithPlayers, error) {
	if take < 1 {
		take = constants.DefaultRecentGames
	}
	key := newCacheKey("recentGames", userID, nil, take)
	return memo(ctx, key, func(ctx context.Context) ([]domain.GameWithPlayers, error) {
		games, err := a.store.FindGames(ctx, GameQuery{
			Filter: Filter{UserID: userID},
			Newest: true,
			Limit:  take,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to load recent games: %w", err)
		}
		return games, nil
	})
}
