package domain

import (
	"time"
)

type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      *string   `json:"name"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Player struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	DisplayName string    `json:"displayName"` // unique per user
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type Deck struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	PlayerID      string    `json:"playerId"`
	Name          string    `json:"name"` // unique per player
	Archetype     Archetype `json:"archetype"`
	ColorIdentity string    `json:"colorIdentity"`
	Commanders    []string  `json:"commanders"`
	Companion     *string   `json:"companion"`
	MoxfieldURL   *string   `json:"moxfieldUrl"`
	IsActive      bool      `json:"isActive"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type Pod struct {
	ID        string    `json:"id"`
	UserID    string    `json:"userId"`
	EventID   *string   `json:"eventId"`
	CreatedAt time.Time `json:"createdAt"`
}

type Tag struct {
	ID     string `json:"id"`
	UserID string `json:"userId"`
	Name   string `json:"name"`
}

type Game struct {
	ID               string     `json:"id"`
	UserID           string     `json:"userId"`
	PodID            string     `json:"podId"`
	StartedAt        time.Time  `json:"startedAt"`
	EndedAt          *time.Time `json:"endedAt"`
	TurnsToWin       *int       `json:"turnsToWin"` // >= 1 when set
	WinConditionTags []string   `json:"winConditionTags"`
	Notes            *string    `json:"notes"`
	CreatedAt        time.Time  `json:"createdAt"`
}

type GamePlayer struct {
	ID                   string  `json:"id"`
	UserID               string  `json:"userId"`
	GameID               string  `json:"gameId"`
	PlayerID             string  `json:"playerId"`
	DeckID               string  `json:"deckId"`
	Seat                 int     `json:"seat"`      // 1..5, distinct within a game
	Mulligans            int     `json:"mulligans"` // 0..6
	Result               Result  `json:"result"`
	EliminatedByPlayerID *string `json:"eliminatedByPlayerId"`
	TurnEliminated       *int    `json:"turnEliminated"`
}

// enriched
type GamePlayerDetail struct {
	GamePlayer
	Player Player `json:"player"`
	Deck   Deck   `json:"deck"`
}

type GameWithPlayers struct {
	Game
	Pod     Pod                `json:"pod"`
	Players []GamePlayerDetail `json:"players"`
}
