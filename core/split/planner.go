// Package split implements the equalized cycle-cut segmentation task:
// splitting an audio track into N segments whose interior boundaries all
// land on integer multiples of a repeating visual cycle length, while
// staying as close as possible to an equal split.
package split

import (
	"math"

	"loopcut/taskerr"
)

// boundaryEps guards the floor at the end of the track against floating
// rounding; a cut exactly on the final boundary would yield an empty tail.
const boundaryEps = 1e-3

// ComputeCuts returns the cut plan for splitting audioDur seconds of audio
// into segments pieces aligned to cycle. The result has segments+1 entries:
// 0.0, then each interior cut as a multiple of cycle rounded to
// milliseconds, then audioDur rounded to milliseconds.
//
// The placement is greedy left to right: each interior cut snaps the ideal
// equal-split position to the nearest cycle boundary, clamped so cuts stay
// strictly increasing and enough boundaries remain for the cuts still to be
// placed. Deterministic, O(segments), not a global optimum.
func ComputeCuts(audioDur float64, segments int, cycle float64) ([]float64, error) {
	if segments == 1 {
		return []float64{0.0, audioDur}, nil
	}
	if cycle <= 0 {
		return nil, taskerr.New(taskerr.CodeInvalidCycle, "cycle length must be > 0")
	}

	maxK := int(math.Floor((audioDur - boundaryEps) / cycle))
	if maxK < segments-1 {
		return nil, taskerr.New(taskerr.CodeInsufficientCycles,
			"not enough cycles for %d segments (reduce segments or use another cycle)", segments)
	}

	idealLen := audioDur / float64(segments)
	ks := make([]int, 0, segments-1)
	kPrev := 0
	for i := 1; i < segments; i++ {
		idealTime := float64(i) * idealLen
		idealK := int(math.Round(idealTime / cycle))
		minAllowed := kPrev + 1
		maxAllowed := maxK - ((segments - 1) - i)
		if minAllowed > maxAllowed {
			// Degenerate tight packing: the strict-increase floor is
			// relaxed in favor of feasibility. Unreachable when the
			// maxK precheck above passed.
			minAllowed = maxAllowed
		}
		k := clampInt(idealK, minAllowed, maxAllowed)
		ks = append(ks, k)
		kPrev = k
	}

	cuts := make([]float64, 0, segments+1)
	cuts = append(cuts, 0.0)
	for _, k := range ks {
		cuts = append(cuts, roundMillis(float64(k)*cycle))
	}
	cuts = append(cuts, roundMillis(audioDur))
	return cuts, nil
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func roundMillis(t float64) float64 {
	return math.Round(t*1000) / 1000
}
