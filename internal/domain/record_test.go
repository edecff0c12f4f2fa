package domain_test

import (
	"strings"
	"testing"
	"time"

	"cedh-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validInput() domain.QuickRecordInput {
	seat := func(n int) domain.SeatInput {
		return domain.SeatInput{
			Seat:          n,
			PlayerName:    "Player",
			DeckName:      "Deck",
			Archetype:     domain.ArchetypeCombo,
			ColorIdentity: "UG",
			Commanders:    []string{"Kinnan, Bonder Prodigy"},
		}
	}
	return domain.QuickRecordInput{
		StartedAt: time.Date(2024, 3, 1, 19, 0, 0, 0, time.UTC),
		Players:   []domain.SeatInput{seat(1), seat(2), seat(3), seat(4)},
	}
}

func TestQuickRecordInputValid(t *testing.T) {
	in := validInput()
	require.NoError(t, in.Validate())
}

func TestQuickRecordInputRejects(t *testing.T) {
	five := 5
	twentyOne := 21
	cases := map[string]func(in *domain.QuickRecordInput){
		"eliminated by seat 0": func(in *domain.QuickRecordInput) {
			zero := 0
			in.Players[0].EliminatedBySeat = &zero
		},
		"notes too long": func(in *domain.QuickRecordInput) {
			notes := strings.Repeat("x", 501)
			in.Notes = &notes
		},
		"too few players":    func(in *domain.QuickRecordInput) { in.Players = in.Players[:2] },
		"duplicate seat":     func(in *domain.QuickRecordInput) { in.Players[1].Seat = 1 },
		"seat out of range":  func(in *domain.QuickRecordInput) { in.Players[0].Seat = 6 },
		"too many mulligans": func(in *domain.QuickRecordInput) { in.Players[0].Mulligans = 7 },
		"turns above 20":     func(in *domain.QuickRecordInput) { in.TurnsToWin = &twentyOne },
		"no commanders":      func(in *domain.QuickRecordInput) { in.Players[0].Commanders = nil },
		"unknown archetype":  func(in *domain.QuickRecordInput) { in.Players[0].Archetype = "Aggro" },
		"bad result":         func(in *domain.QuickRecordInput) { in.Players[0].Result = "Won" },
		"bad moxfield url":   func(in *domain.QuickRecordInput) { in.Players[0].MoxfieldURL = "not a url" },
		"missing start":      func(in *domain.QuickRecordInput) { in.StartedAt = time.Time{} },
		"empty player name":  func(in *domain.QuickRecordInput) { in.Players[0].PlayerName = "" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			in := validInput()
			mutate(&in)
			assert.ErrorIs(t, in.Validate(), domain.ErrInvalidInput)
		})
	}

	in := validInput()
	in.TurnsToWin = &five
	in.Players[1].EliminatedBySeat = &five
	assert.NoError(t, in.Validate(), "eliminatedBySeat may name a seat outside the pod")
}
