package progression_test

import (
	"math"
	"testing"

	"github.com/myrjola/wendler/internal/progression"
	"github.com/myrjola/wendler/internal/ptr"
)

func TestEstimateOneRepMax(t *testing.T) {
	if _, ok := progression.EstimateOneRepMax(100, 0); ok {
		t.Error("zero reps should have no estimate")
	}
	if _, ok := progression.EstimateOneRepMax(100, -2); ok {
		t.Error("negative reps should have no estimate")
	}

	got, ok := progression.EstimateOneRepMax(100, 5)
	if !ok {
		t.Fatal("5 reps should have an estimate")
	}
	if want := 116.65; math.Abs(got-want) > 1e-9 {
		t.Errorf("EstimateOneRepMax(100, 5) = %v, want %v", got, want)
	}

	// A zero weight is a valid estimate of zero, unlike zero reps.
	if got, ok = progression.EstimateOneRepMax(0, 5); !ok || got != 0 {
		t.Errorf("EstimateOneRepMax(0, 5) = %v, %v, want 0, true", got, ok)
	}
}

func TestEstimateOneRepMax_Monotonic(t *testing.T) {
	for w := 20.0; w <= 300; w += 12.5 {
		prev := 0.0
		for r := 1; r <= 20; r++ {
			est, _ := progression.EstimateOneRepMax(w, r)
			if est <= prev {
				t.Fatalf("estimate not increasing in reps at weight %v: %d reps gave %v after %v", w, r, est, prev)
			}
			heavier, _ := progression.EstimateOneRepMax(w+2.5, r)
			if heavier <= est {
				t.Fatalf("estimate not increasing in weight at %d reps: %v then %v", r, est, heavier)
			}
			prev = est
		}
	}
}

func TestIsWon(t *testing.T) {
	tests := []struct {
		repGoal, progress int
		want              bool
	}{
		{repGoal: 5, progress: 4, want: false},
		{repGoal: 5, progress: 5, want: true},
		{repGoal: 5, progress: 9, want: true},
		{repGoal: 1, progress: 0, want: false},
	}
	for _, tt := range tests {
		if got := progression.IsWon(tt.repGoal, tt.progress); got != tt.want {
			t.Errorf("IsWon(%d, %d) = %v, want %v", tt.repGoal, tt.progress, got, tt.want)
		}
	}
}

func TestRepsToBeat(t *testing.T) {
	plusSets := func(topWeight float64) []progression.ExerciseSet {
		return []progression.ExerciseSet{
			{Type: progression.SetTypeRegular, Weight: topWeight - 20, SetGoal: 5, RepGoal: 5, Progress: 0, Complete: false},
			{Type: progression.SetTypeRegular, Weight: topWeight - 10, SetGoal: 5, RepGoal: 5, Progress: 0, Complete: false},
			{Type: progression.SetTypePlusSet, Weight: topWeight, SetGoal: 1, RepGoal: 5, Progress: 0, Complete: false},
		}
	}

	tie, _ := progression.EstimateOneRepMax(100, 5)

	tests := []struct {
		name    string
		sets    []progression.ExerciseSet
		highest *float64
		want    int
		wantOK  bool
	}{
		{name: "no history", sets: plusSets(100), highest: nil, want: 0, wantOK: false},
		{name: "zero estimate", sets: plusSets(100), highest: ptr.Ref(0.0), want: 0, wantOK: false},
		{name: "ties do not beat", sets: plusSets(100), highest: &tie, want: 6, wantOK: true},
		{name: "beats with five", sets: plusSets(100), highest: ptr.Ref(116.0), want: 5, wantOK: true},
		{name: "lighter record", sets: plusSets(100), highest: ptr.Ref(90.0), want: 1, wantOK: true},
		{name: "heavy record", sets: plusSets(85), highest: ptr.Ref(120.0), want: 13, wantOK: true},
		{
			name: "deload week",
			sets: []progression.ExerciseSet{
				{Type: progression.SetTypeRegular, Weight: 60, SetGoal: 5, RepGoal: 5, Progress: 0, Complete: false},
			},
			highest: ptr.Ref(120.0),
			want:    0,
			wantOK:  false,
		},
		{name: "no sets", sets: nil, highest: ptr.Ref(120.0), want: 0, wantOK: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := progression.RepsToBeat(tt.sets, tt.highest)
			if got != tt.want || ok != tt.wantOK {
				t.Errorf("RepsToBeat() = %d, %v, want %d, %v", got, ok, tt.want, tt.wantOK)
			}
			if !ok {
				return
			}
			top := tt.sets[len(tt.sets)-1]
			est, _ := progression.EstimateOneRepMax(top.Weight, got)
			if est <= *tt.highest {
				t.Errorf("%d reps at %v estimates %v, which does not beat %v", got, top.Weight, est, *tt.highest)
			}
			if got > 1 {
				fewer, _ := progression.EstimateOneRepMax(top.Weight, got-1)
				if fewer > *tt.highest {
					t.Errorf("%d reps would already beat %v", got-1, *tt.highest)
				}
			}
		})
	}
}
