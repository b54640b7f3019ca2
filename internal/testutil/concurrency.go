package testutil

import (
	"slices"
	"time"
)

// MaxOverlap returns the largest number of intervals active at the same
// instant. Touching endpoints do not overlap.
func MaxOverlap(intervals []Interval) int {
	type edge struct {
		at    time.Time
		delta int
	}
	edges := make([]edge, 0, 2*len(intervals))
	for _, iv := range intervals {
		edges = append(edges, edge{iv.Start, +1}, edge{iv.End, -1})
	}
	slices.SortFunc(edges, func(a, b edge) int {
		if c := a.at.Compare(b.at); c != 0 {
			return c
		}
		return a.delta - b.delta
	})

	active, peak := 0, 0
	for _, e := range edges {
		active += e.delta
		peak = max(peak, active)
	}
	return peak
}
