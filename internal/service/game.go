package service

import (
	"context"
	"fmt"
	"strings"

	"cedh-tracker/internal/constants"
	"cedh-tracker/internal/domain"
	"cedh-tracker/internal/repository"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

type GameService struct {
	repo   *repository.GameRepository
	logger zerolog.Logger
}

func NewGameService(repo *repository.GameRepository, logger zerolog.Logger) *GameService {
	return &GameService{repo: repo, logger: logger}
}

// RecordGame validates input and stores the game with its pod, players, decks and tags.
func (s *GameService) RecordGame(ctx context.Context, userID string, input domain.QuickRecordInput) (*domain.Game, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	if err := input.Validate(); err != nil {
		s.logger.Debug().Err(err).Str("user_id", userID).Msg("rejected game input")
		return nil, err
	}

	tags := lo.Uniq(lo.FilterMap(input.WinConditionTags, func(tag string, _ int) (string, bool) {
		tag = strings.TrimSpace(tag)
		return tag, tag != ""
	}))

	seats := lo.Map(input.Players, func(p domain.SeatInput, _ int) repository.SeatParams {
		var moxfield *string
		if p.MoxfieldURL != "" {
			moxfield = &p.MoxfieldURL
		}
		return repository.SeatParams{
			PlayerID:   p.PlayerID,
			PlayerName: p.PlayerName,
			DeckID:     p.DeckID,
			Deck: repository.DeckParams{
				Name:          p.DeckName,
				Archetype:     p.Archetype,
				ColorIdentity: p.ColorIdentity,
				Commanders:    p.Commanders,
				Companion:     p.Companion,
				MoxfieldURL:   moxfield,
			},
			Seat:             p.Seat,
			Mulligans:        p.Mulligans,
			Result:           lo.Ternary(p.Result == "", domain.ResultLose, p.Result),
			EliminatedBySeat: p.EliminatedBySeat,
			TurnEliminated:   p.TurnEliminated,
		}
	})

	game, err := s.repo.Create(ctx, repository.NewGameParams{
		UserID:           userID,
		PodID:            input.PodID,
		EventID:          input.EventID,
		StartedAt:        input.StartedAt,
		EndedAt:          input.EndedAt,
		TurnsToWin:       input.TurnsToWin,
		WinConditionTags: tags,
		Notes:            input.Notes,
		Seats:            seats,
	})
	if err != nil {
		s.logger.Error().Err(err).Str("user_id", userID).Msg("failed to record game")
		return nil, fmt.Errorf("failed to record game: %w", err)
	}

	s.logger.Info().Str("user_id", userID).Str("game_id", game.ID).Int("players", len(seats)).Msg("game recorded")
	return game, nil
}
