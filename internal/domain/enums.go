package domain

import "errors"

var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidInput = errors.New("invalid input")
)

type Archetype string

const (
	ArchetypeTurbo     Archetype = "Turbo"
	ArchetypeStax      Archetype = "Stax"
	ArchetypeMidrange  Archetype = "Midrange"
	ArchetypeControl   Archetype = "Control"
	ArchetypeCombo     Archetype = "Combo"
	ArchetypeAdNauseam Archetype = "AdNauseam"
	ArchetypeDoomsday  Archetype = "Doomsday"
	ArchetypeOther     Archetype = "Other"
)

var Archetypes = []Archetype{
	ArchetypeTurbo,
	ArchetypeStax,
	ArchetypeMidrange,
	ArchetypeControl,
	ArchetypeCombo,
	ArchetypeAdNauseam,
	ArchetypeDoomsday,
	ArchetypeOther,
}

func (a Archetype) Valid() bool {
	for _, known := range Archetypes {
		if a == known {
			return true
		}
	}
	return false
}

// ParseArchetype maps unknown names to Other, matching how imports treat them.
func ParseArchetype(s string) Archetype {
	if a := Archetype(s); a.Valid() {
		return a
	}
	return ArchetypeOther
}

type Result string

const (
	ResultWin  Result = "Win"
	ResultLose Result = "Lose"
	ResultDraw Result = "Draw"
)

func (r Result) Valid() bool {
	return r == ResultWin || r == ResultLose || r == ResultDraw
}
