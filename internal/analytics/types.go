package analytics

import "cedh-tracker/internal/domain"

type ArchetypeRate struct {
	Archetype domain.Archetype `json:"archetype"`
	Games     int              `json:"games"`
	WinRate   float64          `json:"winRate"`
}

type SeatRate struct {
	Seat    int     `json:"seat"`
	Games   int     `json:"games"`
	WinRate float64 `json:"winRate"`
}

type MulliganRate struct {
	Mulligans int     `json:"mulligans"`
	Games     int     `json:"games"`
	WinRate   float64 `json:"winRate"`
}

type HistogramBin struct {
	Turn  int `json:"turn"`
	Count int `json:"count"`
}

type MulliganImpact struct {
	Points []MulliganRate `json:"points"`
	// Slope is the games-weighted least-squares change in win rate per extra mulligan.
	Slope float64 `json:"slope"`
}

type MatchupCell struct {
	OpponentArchetype domain.Archetype `json:"opponentArchetype"`
	Games             int              `json:"games"`
	WinRate           float64          `json:"winRate"`
}

type MatchupRow struct {
	Archetype domain.Archetype `json:"archetype"`
	Opponents []MatchupCell    `json:"opponents"`
}

type DeckPerformance struct {
	Deck        domain.Deck     `json:"deck"`
	Games       int             `json:"games"`
	WinRate     float64         `json:"winRate"`
	MedianTurns *int            `json:"medianTurns"`
	VsArchetype []ArchetypeRate `json:"vsArchetype"`
}

type DashboardKpis struct {
	OverallWinRate float64           `json:"overallWinRate"`
	MedianTTW      *int              `json:"medianTtw"`
	TopArchetype   *domain.Archetype `json:"topArchetype"`
	Seat1Delta     float64           `json:"seat1Delta"`
}
