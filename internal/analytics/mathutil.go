package analytics

import (
	"slices"

	"cedh-tracker/internal/domain"

	"gonum.org/v1/gonum/stat"
)

type tally struct {
	wins  int
	games int
}

func (t *tally) add(result domain.Result, count int) {
	t.games += count
	if result == domain.ResultWin {
		t.wins += count
	}
}

func (t tally) rate() float64 {
	return winRate(t.wins, t.games)
}

func winRate(wins, games int) float64 {
	if games == 0 {
		return 0
	}
	return float64(wins) / float64(games)
}

// median sorts a copy and picks index n/2, the upper middle for even lengths.
func median(values []int) *int {
	if len(values) == 0 {
		return nil
	}
	sorted := slices.Clone(values)
	slices.Sort(sorted)
	m := sorted[len(sorted)/2]
	return &m
}

// floorDiv rounds toward negative infinity, unlike Go's integer division.
func floorDiv(n, d int) int {
	q := n / d
	if n%d != 0 && (n < 0) != (d < 0) {
		q--
	}
	return q
}

func turnBin(turns, bucket int) int {
	return floorDiv(turns-1, bucket)*bucket + 1
}

func weightedSlope(points []MulliganRate) float64 {
	x := make([]float64, len(points))
	y := make([]float64, len(points))
	w := make([]float64, len(points))
	var total float64
	for i, p := range points {
		x[i] = float64(p.Mulligans)
		y[i] = p.WinRate
		w[i] = float64(p.Games)
		total += w[i]
	}
	if total == 0 {
		return 0
	}

	meanX := stat.Mean(x, w)
	meanY := stat.Mean(y, w)

	var numerator, denominator float64
	for i := range points {
		dx := x[i] - meanX
		numerator += w[i] * dx * (y[i] - meanY)
		denominator += w[i] * dx * dx
	}
	if denominator == 0 {
		return 0
	}
	return numerator / denominator
}
