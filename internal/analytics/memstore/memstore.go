// Package memstore is an in-memory analytics.Store built from plain rows.
package memstore

import (
	"context"
	"slices"
	"sync"

	"cedh-tracker/internal/analytics"
	"cedh-tracker/internal/domain"

	"github.com/samber/lo"
)

type Store struct {
	mu          sync.RWMutex
	players     map[string]domain.Player
	decks       []domain.Deck
	pods        map[string]domain.Pod
	games       []domain.Game
	gamePlayers []domain.GamePlayer
}

func New() *Store {
	return &Store{
		players: make(map[string]domain.Player),
		pods:    make(map[string]domain.Pod),
	}
}

func (s *Store) AddPlayer(p domain.Player) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.players[p.ID] = p
}

func (s *Store) AddDeck(d domain.Deck) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decks = append(s.decks, d)
}

func (s *Store) AddPod(p domain.Pod) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pods[p.ID] = p
}

// AddGame stores a game with its seats.
func (s *Store) AddGame(g domain.Game, players ...domain.GamePlayer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.games = append(s.games, g)
	s.gamePlayers = append(s.gamePlayers, players...)
}

func (s *Store) deck(id string) (domain.Deck, bool) {
	return lo.Find(s.decks, func(d domain.Deck) bool { return d.ID == id })
}

func (s *Store) game(id string) (domain.Game, bool) {
	return lo.Find(s.games, func(g domain.Game) bool { return g.ID == id })
}

func (s *Store) FindGames(_ context.Context, q analytics.GameQuery) ([]domain.GameWithPlayers, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	games := lo.Filter(s.games, func(g domain.Game, _ int) bool {
		if g.UserID != q.UserID || !q.Includes(g.StartedAt) {
			return false
		}
		return !q.WithTurnsOnly || g.TurnsToWin != nil
	})
	slices.SortStableFunc(games, func(a, b domain.Game) int {
		if q.Newest {
			return b.StartedAt.Compare(a.StartedAt)
		}
		return a.StartedAt.Compare(b.StartedAt)
	})
	if q.Limit > 0 && len(games) > q.Limit {
		games = games[:q.Limit]
	}

	result := make([]domain.GameWithPlayers, 0, len(games))
	for _, g := range games {
		seats := lo.Filter(s.gamePlayers, func(gp domain.GamePlayer, _ int) bool { return gp.GameID == g.ID })
		details := make([]domain.GamePlayerDetail, 0, len(seats))
		for _, gp := range seats {
			deck, _ := s.deck(gp.DeckID)
			details = append(details, domain.GamePlayerDetail{
				GamePlayer: gp,
				Player:     s.players[gp.PlayerID],
				Deck:       deck,
			})
		}
		result = append(result, domain.GameWithPlayers{
			Game:    g,
			Pod:     s.pods[g.PodID],
			Players: details,
		})
	}
	return result, nil
}

type groupKey struct {
	result    domain.Result
	deckID    string
	seat      int
	mulligans int
}

func (s *Store) GroupGamePlayers(_ context.Context, q analytics.GroupQuery) ([]analytics.GroupRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	by := lo.Associate(q.By, func(f analytics.GroupField) (analytics.GroupField, bool) { return f, true })

	var order []groupKey
	counts := make(map[groupKey]int)
	for _, gp := range s.gamePlayers {
		if gp.UserID != q.UserID {
			continue
		}
		if q.Result != nil && gp.Result != *q.Result {
			continue
		}
		if q.Since != nil {
			g, ok := s.game(gp.GameID)
			if !ok || !q.Includes(g.StartedAt) {
				continue
			}
		}

		var key groupKey
		if by[analytics.GroupByResult] {
			key.result = gp.Result
		}
		if by[analytics.GroupByDeckID] {
			key.deckID = gp.DeckID
		}
		if by[analytics.GroupBySeat] {
			key.seat = gp.Seat
		}
		if by[analytics.GroupByMulligans] {
			key.mulligans = gp.Mulligans
		}
		if _, seen := counts[key]; !seen {
			order = append(order, key)
		}
		counts[key]++
	}

	rows := lo.Map(order, func(k groupKey, _ int) analytics.GroupRow {
		return analytics.GroupRow{
			Result:    k.result,
			DeckID:    k.deckID,
			Seat:      k.seat,
			Mulligans: k.mulligans,
			Count:     counts[k],
		}
	})
	if q.OrderByCountDesc {
		slices.SortStableFunc(rows, func(a, b analytics.GroupRow) int { return b.Count - a.Count })
	}
	if q.Limit > 0 && len(rows) > q.Limit {
		rows = rows[:q.Limit]
	}
	return rows, nil
}

func (s *Store) FindDecks(_ context.Context, userID string) ([]domain.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return lo.Filter(s.decks, func(d domain.Deck, _ int) bool { return d.UserID == userID }), nil
}

func (s *Store) FindDeck(_ context.Context, deckID string) (*domain.Deck, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	deck, ok := s.deck(deckID)
	if !ok {
		return nil, nil
	}
	return &deck, nil
}

func (s *Store) FindDeckGames(_ context.Context, deckID string) ([]analytics.DeckGameRow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	deck, ok := s.deck(deckID)
	if !ok {
		return nil, nil
	}

	var rows []analytics.DeckGameRow
	for _, gp := range s.gamePlayers {
		if gp.DeckID != deckID {
			continue
		}
		g, _ := s.game(gp.GameID)
		rows = append(rows, analytics.DeckGameRow{
			GamePlayer: gp,
			StartedAt:  g.StartedAt,
			TurnsToWin: g.TurnsToWin,
			Archetype:  deck.Archetype,
		})
	}
	return rows, nil
}

var _ analytics.Store = (*Store)(nil)
