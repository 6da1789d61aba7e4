package split

import (
	"errors"
	"math"
	"reflect"
	"testing"

	"loopcut/taskerr"
)

func TestComputeCutsSingleSegment(t *testing.T) {
	for _, dur := range []float64{0.5, 1.0, 9.0, 123.456} {
		cuts, err := ComputeCuts(dur, 1, 3.0)
		if err != nil {
			t.Fatalf("ComputeCuts(%v, 1, 3.0) error: %v", dur, err)
		}
		if !reflect.DeepEqual(cuts, []float64{0.0, dur}) {
			t.Errorf("ComputeCuts(%v, 1, 3.0) = %v, want [0 %v]", dur, cuts, dur)
		}
	}
}

func TestComputeCutsAlignedIdealSplit(t *testing.T) {
	// Ideal equal split already lands on cycle boundaries.
	cuts, err := ComputeCuts(9.0, 3, 3.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0.0, 3.0, 6.0, 9.0}
	if !reflect.DeepEqual(cuts, want) {
		t.Errorf("cuts = %v, want %v", cuts, want)
	}
}

func TestComputeCutsSnapsToNearestBoundary(t *testing.T) {
	// Ideal interior time 5.0 with cycle 3.0: round(5/3) = 2, within
	// [1, 3], so the cut lands at 6.0.
	cuts, err := ComputeCuts(10.0, 2, 3.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0.0, 6.0, 10.0}
	if !reflect.DeepEqual(cuts, want) {
		t.Errorf("cuts = %v, want %v", cuts, want)
	}
}

func TestComputeCutsInsufficientCycles(t *testing.T) {
	// floor(4.999/3) = 1 < segments-1 = 2.
	_, err := ComputeCuts(5.0, 3, 3.0)
	if err == nil {
		t.Fatal("expected error, got nil")
	}
	if got := taskerr.CodeOf(err); got != taskerr.CodeInsufficientCycles {
		t.Errorf("code = %s, want %s", got, taskerr.CodeInsufficientCycles)
	}
}

func TestComputeCutsInvalidCycle(t *testing.T) {
	for _, cycle := range []float64{0.0, -1.0} {
		_, err := ComputeCuts(10.0, 2, cycle)
		if err == nil {
			t.Fatalf("cycle %v: expected error, got nil", cycle)
		}
		if got := taskerr.CodeOf(err); got != taskerr.CodeInvalidCycle {
			t.Errorf("cycle %v: code = %s, want %s", cycle, got, taskerr.CodeInvalidCycle)
		}
	}
}

func TestComputeCutsNoCycleConstraintForSingleSegment(t *testing.T) {
	// segments == 1 short-circuits before the cycle is validated.
	cuts, err := ComputeCuts(7.0, 1, -5.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !reflect.DeepEqual(cuts, []float64{0.0, 7.0}) {
		t.Errorf("cuts = %v", cuts)
	}
}

func TestComputeCutsProperties(t *testing.T) {
	cases := []struct {
		dur      float64
		segments int
		cycle    float64
	}{
		{9.0, 3, 3.0},
		{10.0, 2, 3.0},
		{60.0, 5, 4.2},
		{31.7, 4, 2.5},
		{100.0, 10, 3.33},
		{12.6, 3, 4.2},
		{7.0, 2, 3.5}, // boundary: maxK = floor(6.999/3.5) = 1 = segments-1
	}

	for _, tc := range cases {
		cuts, err := ComputeCuts(tc.dur, tc.segments, tc.cycle)
		if err != nil {
			t.Fatalf("ComputeCuts(%v, %d, %v) error: %v", tc.dur, tc.segments, tc.cycle, err)
		}

		if len(cuts) != tc.segments+1 {
			t.Errorf("len(cuts) = %d, want %d", len(cuts), tc.segments+1)
		}
		if cuts[0] != 0.0 {
			t.Errorf("first cut = %v, want 0", cuts[0])
		}
		wantLast := math.Round(tc.dur*1000) / 1000
		if cuts[len(cuts)-1] != wantLast {
			t.Errorf("last cut = %v, want %v", cuts[len(cuts)-1], wantLast)
		}

		for i := 1; i < len(cuts); i++ {
			if cuts[i] <= cuts[i-1] {
				t.Errorf("cuts not strictly increasing at %d: %v", i, cuts)
			}
		}

		// Every interior value is a multiple of cycle, within the
		// millisecond rounding applied to the result.
		for _, c := range cuts[1 : len(cuts)-1] {
			k := math.Round(c / tc.cycle)
			aligned := math.Round(k*tc.cycle*1000) / 1000
			if math.Abs(c-aligned) > 1e-9 {
				t.Errorf("interior cut %v not a multiple of %v (cuts %v)", c, tc.cycle, cuts)
			}
		}
	}
}

func TestComputeCutsDeterministic(t *testing.T) {
	first, err := ComputeCuts(100.0, 7, 3.33)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 10; i++ {
		again, err := ComputeCuts(100.0, 7, 3.33)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("run %d differs: %v vs %v", i, first, again)
		}
	}
}

func TestComputeCutsErrorIsClassified(t *testing.T) {
	_, err := ComputeCuts(5.0, 3, 3.0)
	var te *taskerr.Error
	if !errors.As(err, &te) {
		t.Fatalf("error %v is not a *taskerr.Error", err)
	}
}
