package main

import (
	"context"
	"fmt"
	"slices"

	"cedh-tracker/internal/analytics"
	"cedh-tracker/internal/analytics/memstore"
	"cedh-tracker/internal/domain"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const previewUser = "preview"

// previewStore loads the seed games into memory without touching the database.
func previewStore() *memstore.Store {
	store := memstore.New()
	for _, name := range playerNames {
		store.AddPlayer(domain.Player{ID: name, UserID: previewUser, DisplayName: name})
	}
	names := lo.Keys(deckSeeds)
	slices.Sort(names)
	for _, name := range names {
		d := deckSeeds[name]
		store.AddDeck(domain.Deck{
			ID:            name,
			UserID:        previewUser,
			PlayerID:      d.player,
			Name:          name,
			Archetype:     d.archetype,
			ColorIdentity: d.colorIdentity,
			Commanders:    d.commanders,
			IsActive:      true,
		})
	}
	for i := 0; i < podCount; i++ {
		store.AddPod(domain.Pod{ID: fmt.Sprintf("pod-%d", i), UserID: previewUser})
	}

	for i, seed := range buildGames() {
		in := gameInput(seed, nil)
		game := domain.Game{
			ID:               fmt.Sprintf("game-%02d", i),
			UserID:           previewUser,
			PodID:            fmt.Sprintf("pod-%d", seed.podIndex%podCount),
			StartedAt:        in.StartedAt,
			EndedAt:          in.EndedAt,
			TurnsToWin:       in.TurnsToWin,
			WinConditionTags: in.WinConditionTags,
			Notes:            in.Notes,
		}
		bySeat := make(map[int]string, len(in.Players))
		for _, p := range in.Players {
			bySeat[p.Seat] = p.PlayerName
		}

		seats := make([]domain.GamePlayer, 0, len(in.Players))
		for _, p := range in.Players {
			gp := domain.GamePlayer{
				ID:             fmt.Sprintf("%s-%d", game.ID, p.Seat),
				UserID:         previewUser,
				GameID:         game.ID,
				PlayerID:       p.PlayerName,
				DeckID:         p.DeckName,
				Seat:           p.Seat,
				Mulligans:      p.Mulligans,
				Result:         p.Result,
				TurnEliminated: p.TurnEliminated,
			}
			if p.EliminatedBySeat != nil {
				if by, ok := bySeat[*p.EliminatedBySeat]; ok {
					gp.EliminatedByPlayerID = &by
				}
			}
			seats = append(seats, gp)
		}
		store.AddGame(game, seats...)
	}
	return store
}

func preview(ctx context.Context, logger zerolog.Logger) error {
	agg := analytics.NewAggregator(previewStore(), logger)

	kpis, err := agg.DashboardKpis(ctx, previewUser)
	if err != nil {
		return fmt.Errorf("failed to compute kpis: %w", err)
	}
	archetypes, err := agg.WinRateByArchetype(ctx, previewUser, nil)
	if err != nil {
		return fmt.Errorf("failed to compute archetype rates: %w", err)
	}

	event := logger.Info().
		Float64("overall_win_rate", kpis.OverallWinRate).
		Float64("seat1_delta", kpis.Seat1Delta)
	if kpis.MedianTTW != nil {
		event = event.Int("median_ttw", *kpis.MedianTTW)
	}
	if kpis.TopArchetype != nil {
		event = event.Str("top_archetype", string(*kpis.TopArchetype))
	}
	event.Msg("seed preview")

	for _, a := range archetypes {
		logger.Info().
			Str("archetype", string(a.Archetype)).
			Int("games", a.Games).
			Float64("win_rate", a.WinRate).
			Msg("archetype")
	}
	return nil
}
