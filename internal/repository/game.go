package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"cedh-tracker/internal/db"
	"cedh-tracker/internal/domain"

	"github.com/rs/zerolog"
)

type GameRepository struct {
	queries *db.Queries
	db      *sql.DB
	logger  zerolog.Logger
}

func NewGameRepository(sqlDB *sql.DB, queries *db.Queries, logger zerolog.Logger) *GameRepository {
	return &GameRepository{
		queries: queries,
		db:      sqlDB,
		logger:  logger,
	}
}

// SeatParams is one participant of a new game. An existing player or deck is reused
// when its id is set; otherwise it is resolved by name and upserted.
type SeatParams struct {
	PlayerID   *string
	PlayerName string
	DeckID     *string
	Deck       DeckParams

	Seat             int
	Mulligans        int
	Result           domain.Result
	EliminatedBySeat *int
	TurnEliminated   *int
}

type NewGameParams struct {
	UserID           string
	PodID            *string
	EventID          *string
	StartedAt        time.Time
	EndedAt          *time.Time
	TurnsToWin       *int
	WinConditionTags []string
	Notes            *string
	Seats            []SeatParams
}

type resolvedSeat struct {
	SeatParams
	playerID string
	deckID   string
}

// Create records a game with all of its seats in one transaction.
func (r *GameRepository) Create(ctx context.Context, params NewGameParams) (*domain.Game, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	qtx := r.queries.WithTx(tx)
	now := time.Now().UTC()

	podID, err := r.resolvePod(ctx, qtx, params, now)
	if err != nil {
		return nil, err
	}

	seats := make([]resolvedSeat, 0, len(params.Seats))
	for _, seat := range params.Seats {
		resolved, err := r.resolveSeat(ctx, qtx, params.UserID, seat)
		if err != nil {
			return nil, err
		}
		seats = append(seats, resolved)
	}

	tags, err := encodeList(params.WinConditionTags)
	if err != nil {
		return nil, err
	}
	gameID, err := newID()
	if err != nil {
		return nil, err
	}
	err = qtx.CreateGame(ctx, db.CreateGameParams{
		ID:               gameID,
		UserID:           params.UserID,
		PodID:            podID,
		StartedAt:        params.StartedAt.UTC(),
		EndedAt:          utcPtr(params.EndedAt),
		TurnsToWin:       int64Ptr(params.TurnsToWin),
		WinConditionTags: tags,
		Notes:            params.Notes,
		CreatedAt:        now,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}

	playerBySeat := make(map[int]string, len(seats))
	for _, seat := range seats {
		playerBySeat[seat.Seat] = seat.playerID
	}

	for _, seat := range seats {
		var eliminatedBy *string
		if seat.EliminatedBySeat != nil {
			if playerID, ok := playerBySeat[*seat.EliminatedBySeat]; ok {
				eliminatedBy = &playerID
			}
		}
		result := seat.Result
		if result == "" {
			result = domain.ResultLose
		}

		id, err := newID()
		if err != nil {
			return nil, err
		}
		err = qtx.CreateGamePlayer(ctx, db.CreateGamePlayerParams{
			ID:                   id,
			UserID:               params.UserID,
			GameID:               gameID,
			PlayerID:             seat.playerID,
			DeckID:               seat.deckID,
			Seat:                 int64(seat.Seat),
			Mulligans:            int64(seat.Mulligans),
			Result:               string(result),
			EliminatedByPlayerID: eliminatedBy,
			TurnEliminated:       int64Ptr(seat.TurnEliminated),
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create game player for seat %d: %w", seat.Seat, err)
		}
	}

	for _, name := range params.WinConditionTags {
		id, err := newID()
		if err != nil {
			return nil, err
		}
		if err := qtx.UpsertTag(ctx, db.UpsertTagParams{ID: id, UserID: params.UserID, Name: name}); err != nil {
			return nil, fmt.Errorf("failed to upsert tag %s: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit game: %w", err)
	}

	r.logger.Debug().
		Str("user_id", params.UserID).
		Str("game_id", gameID).
		Int("seats", len(seats)).
		Msg("game recorded")

	return &domain.Game{
		ID:               gameID,
		UserID:           params.UserID,
		PodID:            podID,
		StartedAt:        params.StartedAt.UTC(),
		EndedAt:          utcPtr(params.EndedAt),
		TurnsToWin:       params.TurnsToWin,
		WinConditionTags: params.WinConditionTags,
		Notes:            params.Notes,
		CreatedAt:        now,
	}, nil
}

func (r *GameRepository) resolvePod(ctx context.Context, q *db.Queries, params NewGameParams, now time.Time) (string, error) {
	if params.PodID != nil {
		pod, err := q.GetPod(ctx, *params.PodID)
		if errors.Is(err, sql.ErrNoRows) || (err == nil && pod.UserID != params.UserID) {
			return "", fmt.Errorf("pod %s: %w", *params.PodID, domain.ErrNotFound)
		}
		if err != nil {
			return "", fmt.Errorf("failed to get pod: %w", err)
		}
		return pod.ID, nil
	}

	id, err := newID()
	if err != nil {
		return "", err
	}
	err = q.CreatePod(ctx, db.CreatePodParams{
		ID:        id,
		UserID:    params.UserID,
		EventID:   params.EventID,
		CreatedAt: now,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create pod: %w", err)
	}
	return id, nil
}

func (r *GameRepository) resolveSeat(ctx context.Context, q *db.Queries, userID string, seat SeatParams) (resolvedSeat, error) {
	var player *domain.Player
	var err error
	if seat.PlayerID != nil {
		player, err = getOwnedPlayer(ctx, q, userID, *seat.PlayerID)
	} else {
		player, err = upsertPlayer(ctx, q, userID, seat.PlayerName)
	}
	if err != nil {
		return resolvedSeat{}, fmt.Errorf("seat %d: %w", seat.Seat, err)
	}

	var deck *domain.Deck
	if seat.DeckID != nil {
		deck, err = getOwnedDeck(ctx, q, userID, *seat.DeckID)
	} else {
		deck, err = upsertDeck(ctx, q, userID, player.ID, seat.Deck)
	}
	if err != nil {
		return resolvedSeat{}, fmt.Errorf("seat %d: %w", seat.Seat, err)
	}

	return resolvedSeat{SeatParams: seat, playerID: player.ID, deckID: deck.ID}, nil
}

func (r *GameRepository) ListPods(ctx context.Context, userID string) ([]domain.Pod, error) {
	rows, err := r.queries.ListPodsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list pods: %w", err)
	}
	pods := make([]domain.Pod, len(rows))
	for i, row := range rows {
		pods[i] = toPod(row)
	}
	return pods, nil
}

func (r *GameRepository) ListTags(ctx context.Context, userID string) ([]domain.Tag, error) {
	rows, err := r.queries.ListTagsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	tags := make([]domain.Tag, len(rows))
	for i, row := range rows {
		tags[i] = domain.Tag{ID: row.ID, UserID: row.UserID, Name: row.Name}
	}
	return tags, nil
}
