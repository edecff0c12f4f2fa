package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"cedh-tracker/internal/domain"
	fxmodules "cedh-tracker/internal/fx"
	"cedh-tracker/internal/logger"
	"cedh-tracker/internal/service"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

const demoEmail = "demo@cedh.local"

type seeder struct {
	users     *service.UserService
	games     *service.GameService
	resources *service.ResourceService
	logger    zerolog.Logger
}

func main() {
	dryRun := flag.Bool("preview", false, "compute analytics over the seed data in memory and exit")
	flag.Parse()

	if *dryRun {
		log := logger.New()
		if err := preview(context.Background(), log); err != nil {
			log.Fatal().Err(err).Msg("preview failed")
		}
		return
	}

	var s seeder
	app := fx.New(
		fxmodules.Module,
		fx.NopLogger,
		fx.Populate(&s.users, &s.games, &s.resources, &s.logger),
	)
	if err := app.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "failed to build app: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	if err := app.Start(ctx); err != nil {
		s.logger.Fatal().Err(err).Msg("failed to start app")
	}

	runErr := s.run(ctx)
	if err := app.Stop(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("failed to stop app")
	}
	if runErr != nil {
		s.logger.Error().Err(runErr).Msg("seed failed")
		os.Exit(1)
	}
	s.logger.Info().Msg("seed data created")
}

func (s *seeder) run(ctx context.Context) error {
	demo, err := s.users.ActiveUser(ctx, demoEmail)
	if err != nil {
		return err
	}
	if demo.Name == nil {
		if demo, err = s.users.UpdateProfile(ctx, demo.ID, "Demo User"); err != nil {
			return err
		}
	}
	guest, err := s.users.ActiveUser(ctx, "")
	if err != nil {
		return err
	}

	for _, user := range []*domain.User{demo, guest} {
		if err := s.seedUser(ctx, user); err != nil {
			return fmt.Errorf("failed to seed %s: %w", user.Email, err)
		}
	}
	return nil
}

// seedUser records the demo games once. Users that already own pods are left alone.
func (s *seeder) seedUser(ctx context.Context, user *domain.User) error {
	existing, err := s.resources.List(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(existing.Pods) > 0 {
		s.logger.Info().Str("email", user.Email).Msg("user already has data, skipping")
		return nil
	}

	pods := make([]*string, podCount)
	for i, seed := range buildGames() {
		idx := seed.podIndex % podCount
		game, err := s.games.RecordGame(ctx, user.ID, gameInput(seed, pods[idx]))
		if err != nil {
			return fmt.Errorf("game %d: %w", i, err)
		}
		if pods[idx] == nil {
			pods[idx] = &game.PodID
		}
	}

	s.logger.Info().
		Str("email", user.Email).
		Int("players", len(playerNames)).
		Int("decks", len(deckSeeds)).
		Msg("user seeded")
	return nil
}

func gameInput(seed gameSeed, podID *string) domain.QuickRecordInput {
	endedAt := seed.startedAt.Add(seed.duration)
	turns := seed.turnsToWin
	in := domain.QuickRecordInput{
		PodID:            podID,
		StartedAt:        seed.startedAt,
		EndedAt:          &endedAt,
		TurnsToWin:       &turns,
		WinConditionTags: seed.tags,
	}
	if seed.notes != "" {
		notes := seed.notes
		in.Notes = &notes
	}

	for _, st := range seed.seats {
		deck := deckSeeds[st.deck]
		seat := domain.SeatInput{
			Seat:          st.seat,
			PlayerName:    deck.player,
			DeckName:      st.deck,
			MoxfieldURL:   moxfieldURL(st.deck),
			Archetype:     deck.archetype,
			ColorIdentity: deck.colorIdentity,
			Commanders:    deck.commanders,
			Mulligans:     st.mulligans,
			Result:        st.result,
		}
		if deck.companion != "" {
			companion := deck.companion
			seat.Companion = &companion
		}
		if st.eliminatedBySeat > 0 {
			by, turn := st.eliminatedBySeat, st.turnEliminated
			seat.EliminatedBySeat = &by
			seat.TurnEliminated = &turn
		}
		in.Players = append(in.Players, seat)
	}
	return in
}

func moxfieldURL(deckName string) string {
	return "https://www.moxfield.com/decks/" + strings.ToLower(strings.Join(strings.Fields(deckName), "-"))
}
