package main

import (
	"time"

	"cedh-tracker/internal/domain"
)

var playerNames = []string{"Selvala", "Najeela", "Tymna", "Kinnan", "Tivit", "Korvold"}

type deckSeed struct {
	player        string
	archetype     domain.Archetype
	colorIdentity string
	commanders    []string
	companion     string
}

var deckSeeds = map[string]deckSeed{
	"Turbo Selvala":        {"Selvala", domain.ArchetypeTurbo, "G", []string{"Selvala, Heart of the Wilds"}, ""},
	"Warrior Queen":        {"Najeela", domain.ArchetypeMidrange, "WUBRG", []string{"Najeela, the Blade-Blossom"}, ""},
	"Blue Farm":            {"Tymna", domain.ArchetypeAdNauseam, "WUB", []string{"Tymna the Weaver", "Kraum, Ludevic's Opus"}, ""},
	"Value Engine":         {"Kinnan", domain.ArchetypeCombo, "UG", []string{"Kinnan, Bonder Prodigy"}, "Lutri, the Spellchaser"},
	"Doomsday Bureaucracy": {"Tivit", domain.ArchetypeDoomsday, "WUB", []string{"Tivit, Seller of Secrets"}, ""},
	"Dockside Express":     {"Korvold", domain.ArchetypeCombo, "BRG", []string{"Korvold, Fae-Cursed King"}, ""},
	"Stax Selvala":         {"Selvala", domain.ArchetypeStax, "GW", []string{"Selvala, Explorer Returned"}, ""},
	"Tempo Warriors":       {"Najeela", domain.ArchetypeControl, "WUBRG", []string{"Najeela, the Blade-Blossom"}, ""},
}

type seatSeed struct {
	seat             int
	deck             string
	mulligans        int
	result           domain.Result
	eliminatedBySeat int
	turnEliminated   int
}

type gameSeed struct {
	startedAt  time.Time
	duration   time.Duration
	turnsToWin int
	podIndex   int
	tags       []string
	notes      string
	seats      []seatSeed
}

const podCount = 5

func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.March, day, hour, minute, 0, 0, time.UTC)
}

var baseGames = []gameSeed{
	{
		startedAt:  at(1, 19, 0),
		duration:   45 * time.Minute,
		turnsToWin: 5,
		podIndex:   0,
		tags:       []string{"Thassa's Oracle"},
		notes:      "Selvala turboed out Oracle after a clutch Ad Naus.",
		seats: []seatSeed{
			{1, "Turbo Selvala", 1, domain.ResultWin, 0, 0},
			{2, "Warrior Queen", 0, domain.ResultLose, 1, 5},
			{3, "Blue Farm", 2, domain.ResultLose, 1, 4},
			{4, "Value Engine", 1, domain.ResultLose, 1, 4},
		},
	},
	{
		startedAt:  at(1, 20, 15),
		duration:   time.Hour,
		turnsToWin: 7,
		podIndex:   0,
		tags:       []string{"Combat"},
		notes:      "Najeela ground out the table with an army of warriors.",
		seats: []seatSeed{
			{1, "Stax Selvala", 0, domain.ResultLose, 2, 6},
			{2, "Tempo Warriors", 1, domain.ResultWin, 0, 0},
			{3, "Blue Farm", 1, domain.ResultLose, 2, 7},
			{4, "Value Engine", 2, domain.ResultLose, 2, 7},
		},
	},
	{
		startedAt:  at(2, 18, 0),
		duration:   55 * time.Minute,
		turnsToWin: 6,
		podIndex:   1,
		tags:       []string{"Dockside loop"},
		seats: []seatSeed{
			{1, "Dockside Express", 2, domain.ResultWin, 0, 0},
			{2, "Blue Farm", 1, domain.ResultLose, 1, 6},
			{3, "Doomsday Bureaucracy", 0, domain.ResultLose, 1, 5},
			{4, "Warrior Queen", 1, domain.ResultLose, 1, 6},
		},
	},
	{
		startedAt:  at(2, 19, 30),
		duration:   42 * time.Minute,
		turnsToWin: 5,
		podIndex:   1,
		tags:       []string{"Thassa's Oracle"},
		seats: []seatSeed{
			{1, "Dockside Express", 2, domain.ResultLose, 3, 5},
			{2, "Blue Farm", 0, domain.ResultLose, 3, 4},
			{3, "Doomsday Bureaucracy", 1, domain.ResultWin, 0, 0},
			{4, "Tempo Warriors", 1, domain.ResultLose, 3, 5},
		},
	},
	{
		startedAt:  at(3, 18, 15),
		duration:   70 * time.Minute,
		turnsToWin: 8,
		podIndex:   2,
		tags:       []string{"Underworld Breach"},
		notes:      "Blue Farm navigated a long stack war to secure Breach.",
		seats: []seatSeed{
			{1, "Blue Farm", 1, domain.ResultWin, 0, 0},
			{2, "Dockside Express", 3, domain.ResultLose, 1, 8},
			{3, "Turbo Selvala", 0, domain.ResultLose, 1, 7},
			{4, "Doomsday Bureaucracy", 1, domain.ResultLose, 1, 7},
		},
	},
	{
		startedAt:  at(4, 17, 0),
		duration:   30 * time.Minute,
		turnsToWin: 4,
		podIndex:   3,
		tags:       []string{"Ad Nauseam"},
		seats: []seatSeed{
			{1, "Turbo Selvala", 0, domain.ResultLose, 3, 4},
			{2, "Warrior Queen", 1, domain.ResultLose, 3, 3},
			{3, "Blue Farm", 0, domain.ResultWin, 0, 0},
			{4, "Dockside Express", 2, domain.ResultLose, 3, 4},
		},
	},
	{
		startedAt:  at(4, 18, 0),
		duration:   50 * time.Minute,
		turnsToWin: 6,
		podIndex:   3,
		tags:       []string{"Dockside loop"},
		seats: []seatSeed{
			{1, "Stax Selvala", 1, domain.ResultLose, 4, 6},
			{2, "Tempo Warriors", 2, domain.ResultLose, 4, 5},
			{3, "Blue Farm", 1, domain.ResultLose, 4, 5},
			{4, "Dockside Express", 1, domain.ResultWin, 0, 0},
		},
	},
	{
		startedAt:  at(5, 19, 45),
		duration:   62 * time.Minute,
		turnsToWin: 7,
		podIndex:   4,
		tags:       []string{"Combat"},
		seats: []seatSeed{
			{1, "Stax Selvala", 1, domain.ResultLose, 2, 6},
			{2, "Warrior Queen", 0, domain.ResultWin, 0, 0},
			{3, "Doomsday Bureaucracy", 1, domain.ResultLose, 2, 7},
			{4, "Value Engine", 2, domain.ResultLose, 2, 7},
		},
	},
	{
		startedAt:  at(6, 18, 0),
		duration:   48 * time.Minute,
		turnsToWin: 6,
		podIndex:   4,
		tags:       []string{"Thassa's Oracle"},
		seats: []seatSeed{
			{1, "Turbo Selvala", 0, domain.ResultLose, 3, 6},
			{2, "Dockside Express", 1, domain.ResultLose, 3, 6},
			{3, "Doomsday Bureaucracy", 1, domain.ResultWin, 0, 0},
			{4, "Value Engine", 2, domain.ResultLose, 3, 6},
		},
	},
}

// buildGames appends eleven day-shifted copies of the base games. Only every other copy keeps its notes.
func buildGames() []gameSeed {
	games := append([]gameSeed(nil), baseGames...)
	for i := 0; i < 11; i++ {
		clone := baseGames[i%len(baseGames)]
		clone.startedAt = clone.startedAt.AddDate(0, 0, i+1)
		if i%2 != 0 {
			clone.notes = ""
		}
		games = append(games, clone)
	}
	return games
}
