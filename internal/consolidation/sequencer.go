package consolidation

import (
	"math"
	"slices"
	"sort"
)

// Sequence numbers stops 1..N in their current order and returns the result.
func Sequence(stops []Stop) []Stop {
	out := slices.Clone(stops)
	for i := range out {
		out[i].Sequence = i + 1
	}
	return out
}

// Resequence orders stops by their proposed sequence, keeping ties in input order,
// then renumbers them 1..N. Stops without a positive proposal sort last.
func Resequence(stops []Stop) []Stop {
	out := slices.Clone(stops)
	sort.SliceStable(out, func(i, j int) bool {
		return proposedRank(out[i].Sequence) < proposedRank(out[j].Sequence)
	})
	return Sequence(out)
}

// Contiguous reports whether the stop sequence numbers are exactly {1..N}.
func Contiguous(stops []Stop) bool {
	seen := make([]bool, len(stops)+1)
	for _, s := range stops {
		if s.Sequence < 1 || s.Sequence > len(stops) || seen[s.Sequence] {
			return false
		}
		seen[s.Sequence] = true
	}
	return true
}

func proposedRank(sequence int) int {
	if sequence <= 0 {
		return math.MaxInt
	}
	return sequence
}
