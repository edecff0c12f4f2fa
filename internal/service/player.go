package service

import (
	"context"
	"slices"
	"time"

	"cedh-tracker/internal/constants"
	"cedh-tracker/internal/domain"
	"cedh-tracker/internal/repository"

	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

type PlayerService struct {
	repo   *repository.PlayerRepository
	logger zerolog.Logger
}

func NewPlayerService(repo *repository.PlayerRepository, logger zerolog.Logger) *PlayerService {
	return &PlayerService{repo: repo, logger: logger}
}

type SeatRecord struct {
	Seat    int     `json:"seat"`
	Games   int     `json:"games"`
	WinRate float64 `json:"winRate"`
}

type DeckRecord struct {
	DeckID    string           `json:"deckId"`
	Name      string           `json:"name"`
	Archetype domain.Archetype `json:"archetype"`
	Games     int              `json:"games"`
	WinRate   float64          `json:"winRate"`
}

type HistoryEntry struct {
	GameID     string        `json:"gameId"`
	StartedAt  time.Time     `json:"startedAt"`
	DeckName   string        `json:"deckName"`
	Seat       int           `json:"seat"`
	Mulligans  int           `json:"mulligans"`
	Result     domain.Result `json:"result"`
	TurnsToWin *int          `json:"turnsToWin,omitempty"`
}

type PlayerProfile struct {
	Player      domain.Player  `json:"player"`
	Games       int            `json:"games"`
	Wins        int            `json:"wins"`
	WinRate     float64        `json:"winRate"`
	MedianTurns *int           `json:"medianTurns,omitempty"`
	Seats       []SeatRecord   `json:"seats"`
	Decks       []DeckRecord   `json:"decks"`
	History     []HistoryEntry `json:"history"`
}

type record struct{ games, wins int }

func (r *record) add(result domain.Result) {
	r.games++
	if result == domain.ResultWin {
		r.wins++
	}
}

func (r record) rate() float64 {
	if r.games == 0 {
		return 0
	}
	return float64(r.wins) / float64(r.games)
}

// Profile summarizes every game the player sat in. Decks are ordered by games played.
func (s *PlayerService) Profile(ctx context.Context, userID, playerID string) (*PlayerProfile, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	player, err := s.repo.Get(ctx, userID, playerID)
	if err != nil {
		return nil, err
	}
	games, err := s.repo.Games(ctx, userID, playerID)
	if err != nil {
		s.logger.Error().Err(err).Str("player_id", playerID).Msg("failed to load player games")
		return nil, err
	}

	var total record
	seats := map[int]*record{}
	decks := map[string]*record{}
	var deckOrder []string
	deckInfo := map[string]repository.PlayerGame{}
	var turns []int

	for _, g := range games {
		total.add(g.Result)
		if seats[g.Seat] == nil {
			seats[g.Seat] = &record{}
		}
		seats[g.Seat].add(g.Result)
		if decks[g.DeckID] == nil {
			decks[g.DeckID] = &record{}
			deckOrder = append(deckOrder, g.DeckID)
			deckInfo[g.DeckID] = g
		}
		decks[g.DeckID].add(g.Result)
		if g.TurnsToWin != nil {
			turns = append(turns, *g.TurnsToWin)
		}
	}

	seatNumbers := lo.Keys(seats)
	slices.Sort(seatNumbers)

	deckRecords := lo.Map(deckOrder, func(id string, _ int) DeckRecord {
		info := deckInfo[id]
		return DeckRecord{
			DeckID:    id,
			Name:      info.DeckName,
			Archetype: info.DeckArchetype,
			Games:     decks[id].games,
			WinRate:   decks[id].rate(),
		}
	})
	slices.SortStableFunc(deckRecords, func(a, b DeckRecord) int { return b.Games - a.Games })

	profile := &PlayerProfile{
		Player:  *player,
		Games:   total.games,
		Wins:    total.wins,
		WinRate: total.rate(),
		Seats: lo.Map(seatNumbers, func(seat int, _ int) SeatRecord {
			return SeatRecord{Seat: seat, Games: seats[seat].games, WinRate: seats[seat].rate()}
		}),
		Decks: deckRecords,
		History: lo.Map(games, func(g repository.PlayerGame, _ int) HistoryEntry {
			return HistoryEntry{
				GameID:     g.GameID,
				StartedAt:  g.StartedAt,
				DeckName:   g.DeckName,
				Seat:       g.Seat,
				Mulligans:  g.Mulligans,
				Result:     g.Result,
				TurnsToWin: g.TurnsToWin,
			}
		}),
	}
	if len(turns) > 0 {
		slices.Sort(turns)
		mid := turns[len(turns)/2]
		profile.MedianTurns = &mid
	}
	return profile, nil
}
