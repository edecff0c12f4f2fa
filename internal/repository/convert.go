package repository

import (
	"fmt"
	"time"

	"cedh-tracker/internal/db"
	"cedh-tracker/internal/domain"

	"github.com/goccy/go-json"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const idLength = 21

func newID() (string, error) {
	id, err := gonanoid.New(idLength)
	if err != nil {
		return "", fmt.Errorf("failed to generate id: %w", err)
	}
	return id, nil
}

// List columns are stored as JSON arrays of strings.
func encodeList(values []string) (string, error) {
	if values == nil {
		values = []string{}
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("failed to encode list: %w", err)
	}
	return string(b), nil
}

func decodeList(raw string) ([]string, error) {
	if raw == "" {
		return []string{}, nil
	}
	var values []string
	if err := json.Unmarshal([]byte(raw), &values); err != nil {
		return nil, fmt.Errorf("failed to decode list: %w", err)
	}
	return values, nil
}

func intPtr(v *int64) *int {
	if v == nil {
		return nil
	}
	i := int(*v)
	return &i
}

func int64Ptr(v *int) *int64 {
	if v == nil {
		return nil
	}
	i := int64(*v)
	return &i
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func toUser(u db.User) domain.User {
	return domain.User{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func toPlayer(p db.Player) domain.Player {
	return domain.Player{
		ID:          p.ID,
		UserID:      p.UserID,
		DisplayName: p.DisplayName,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}
}

func toDeck(d db.Deck) (domain.Deck, error) {
	commanders, err := decodeList(d.Commanders)
	if err != nil {
		return domain.Deck{}, fmt.Errorf("deck %s: %w", d.ID, err)
	}
	return domain.Deck{
		ID:            d.ID,
		UserID:        d.UserID,
		PlayerID:      d.PlayerID,
		Name:          d.Name,
		Archetype:     domain.ParseArchetype(d.Archetype),
		ColorIdentity: d.ColorIdentity,
		Commanders:    commanders,
		Companion:     d.Companion,
		MoxfieldURL:   d.MoxfieldUrl,
		IsActive:      d.IsActive,
		CreatedAt:     d.CreatedAt,
		UpdatedAt:     d.UpdatedAt,
	}, nil
}

func toDecks(rows []db.Deck) ([]domain.Deck, error) {
	decks := make([]domain.Deck, 0, len(rows))
	for _, row := range rows {
		d, err := toDeck(row)
		if err != nil {
			return nil, err
		}
		decks = append(decks, d)
	}
	return decks, nil
}

func toPod(p db.Pod) domain.Pod {
	return domain.Pod{
		ID:        p.ID,
		UserID:    p.UserID,
		EventID:   p.EventID,
		CreatedAt: p.CreatedAt,
	}
}

func toGame(g db.Game) (domain.Game, error) {
	tags, err := decodeList(g.WinConditionTags)
	if err != nil {
		return domain.Game{}, fmt.Errorf("game %s: %w", g.ID, err)
	}
	return domain.Game{
		ID:               g.ID,
		UserID:           g.UserID,
		PodID:            g.PodID,
		StartedAt:        g.StartedAt,
		EndedAt:          g.EndedAt,
		TurnsToWin:       intPtr(g.TurnsToWin),
		WinConditionTags: tags,
		Notes:            g.Notes,
		CreatedAt:        g.CreatedAt,
	}, nil
}

func toGamePlayer(gp db.GamePlayer) domain.GamePlayer {
	return domain.GamePlayer{
		ID:                   gp.ID,
		UserID:               gp.UserID,
		GameID:               gp.GameID,
		PlayerID:             gp.PlayerID,
		DeckID:               gp.DeckID,
		Seat:                 int(gp.Seat),
		Mulligans:            int(gp.Mulligans),
		Result:               domain.Result(gp.Result),
		EliminatedByPlayerID: gp.EliminatedByPlayerID,
		TurnEliminated:       intPtr(gp.TurnEliminated),
	}
}
