package db

import (
	"time"
)

type User struct {
	ID        string
	Email     string
	Name      *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Player struct {
	ID          string
	UserID      string
	DisplayName string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Deck struct {
	ID            string
	UserID        string
	PlayerID      string
	Name          string
	Archetype     string
	ColorIdentity string
	Commanders    string // JSON array
	Companion     *string
	MoxfieldUrl   *string
	IsActive      bool
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

type Pod struct {
	ID        string
	UserID    string
	EventID   *string
	CreatedAt time.Time
}

type Tag struct {
	ID     string
	UserID string
	Name   string
}

type Game struct {
	ID               string
	UserID           string
	PodID            string
	StartedAt        time.Time
	EndedAt          *time.Time
	TurnsToWin       *int64
	WinConditionTags string // JSON array
	Notes            *string
	CreatedAt        time.Time
}

type GamePlayer struct {
	ID                   string
	UserID               string
	GameID               string
	PlayerID             string
	DeckID               string
	Seat                 int64
	Mulligans            int64
	Result               string
	EliminatedByPlayerID *string
	TurnEliminated       *int64
}
