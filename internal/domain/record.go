package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// QuickRecordInput is one game as entered in the record wizard.
type QuickRecordInput struct {
	PodID            *string     `json:"podId,omitempty"`
	EventID          *string     `json:"eventId,omitempty"`
	StartedAt        time.Time   `json:"startedAt" validate:"required"`
	EndedAt          *time.Time  `json:"endedAt,omitempty"`
	TurnsToWin       *int        `json:"turnsToWin,omitempty" validate:"omitempty,min=1,max=20"`
	Notes            *string     `json:"notes,omitempty" validate:"omitempty,max=500"`
	WinConditionTags []string    `json:"winConditionTags" validate:"dive,required"`
	Players          []SeatInput `json:"players" validate:"min=3,max=5,unique=Seat,dive"`
}

// SeatInput names a player and deck either by id or by name. Named ones are created
// on first use.
type SeatInput struct {
	Seat             int       `json:"seat" validate:"min=1,max=5"`
	PlayerID         *string   `json:"playerId,omitempty"`
	PlayerName       string    `json:"playerName" validate:"required"`
	DeckID           *string   `json:"deckId,omitempty"`
	DeckName         string    `json:"deckName" validate:"required"`
	MoxfieldURL      string    `json:"moxfieldUrl,omitempty" validate:"omitempty,url"`
	Archetype        Archetype `json:"archetype" validate:"required,oneof=Turbo Stax Midrange Control Combo AdNauseam Doomsday Other"`
	ColorIdentity    string    `json:"colorIdentity" validate:"required"`
	Commanders       []string  `json:"commanders" validate:"min=1,dive,required"`
	Companion        *string   `json:"companion,omitempty"`
	Mulligans        int       `json:"mulligans" validate:"min=0,max=6"`
	Result           Result    `json:"result,omitempty" validate:"omitempty,oneof=Win Lose Draw"`
	EliminatedBySeat *int      `json:"eliminatedBySeat,omitempty" validate:"omitempty,min=1,max=5"`
	TurnEliminated   *int      `json:"turnEliminated,omitempty" validate:"omitempty,min=1,max=20"`
}

// Validate reports every violated constraint wrapped in ErrInvalidInput.
func (in *QuickRecordInput) Validate() error {
	err := validate.Struct(in)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		return fmt.Errorf("%w: %s", ErrInvalidInput, verrs.Error())
	}
	return fmt.Errorf("%w: %w", ErrInvalidInput, err)
}
