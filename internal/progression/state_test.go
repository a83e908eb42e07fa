package progression_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/wendler/internal/progression"
)

func state(trainingMax float64, week, cycle int, pending bool) progression.TrainingState {
	return progression.TrainingState{
		TrainingMax:       trainingMax,
		Week:              week,
		Cycle:             cycle,
		CycleDisplayName:  cycle,
		PendingDeload:     pending,
		Increment:         10,
		WorkoutPercentage: progression.DefaultWorkoutPercentage,
	}
}

var (
	won    = progression.Outcome{Completed: true, Won: true}  //nolint:exhaustruct // only flags matter.
	failed = progression.Outcome{Completed: true, Won: false} //nolint:exhaustruct // only flags matter.
)

func TestAdvance(t *testing.T) {
	tests := []struct {
		name    string
		state   progression.TrainingState
		outcome progression.Outcome
		policy  progression.DeloadPolicy
		want    progression.TrainingState
	}{
		{
			name:    "not completed keeps state",
			state:   state(300, 2, 1, true),
			outcome: progression.Outcome{Completed: false, Won: true}, //nolint:exhaustruct // only flags matter.
			want:    state(300, 2, 1, true),
		},
		{
			name:    "won mid cycle moves to next week",
			state:   state(300, 3, 2, false),
			outcome: won,
			want:    state(300, 4, 2, false),
		},
		{
			name:    "won last week starts new cycle heavier",
			state:   state(300, 4, 2, false),
			outcome: won,
			want:    state(310, 1, 3, false),
		},
		{
			name:    "won last week keeps pending flag",
			state:   state(300, 4, 2, true),
			outcome: won,
			want:    state(310, 1, 3, true),
		},
		{
			name:    "failure mid cycle flags deload",
			state:   state(300, 2, 1, false),
			outcome: failed,
			want:    state(300, 3, 1, true),
		},
		{
			name:    "failure in week 4 without pending flags deload and rolls cycle",
			state:   state(300, 4, 1, false),
			outcome: failed,
			want:    state(300, 1, 2, true),
		},
		{
			name:    "pending deload fires on week 4 failure",
			state:   state(300, 4, 2, true),
			outcome: failed,
			want: progression.TrainingState{
				TrainingMax:       290,
				Week:              1,
				Cycle:             3,
				CycleDisplayName:  2,
				PendingDeload:     false,
				Increment:         10,
				WorkoutPercentage: progression.DefaultWorkoutPercentage,
			},
		},
		{
			name:    "immediate policy deloads mid cycle",
			state:   state(300, 2, 1, false),
			outcome: failed,
			policy:  progression.DeloadPolicy{Immediate: true},
			want: progression.TrainingState{
				TrainingMax:       290,
				Week:              1,
				Cycle:             2,
				CycleDisplayName:  1,
				PendingDeload:     false,
				Increment:         10,
				WorkoutPercentage: progression.DefaultWorkoutPercentage,
			},
		},
		{
			name:    "deload never drops training max below zero",
			state:   state(5, 4, 1, true),
			outcome: failed,
			want: progression.TrainingState{
				TrainingMax:       0,
				Week:              1,
				Cycle:             2,
				CycleDisplayName:  1,
				PendingDeload:     false,
				Increment:         10,
				WorkoutPercentage: progression.DefaultWorkoutPercentage,
			},
		},
		{
			name:    "cycle below one is clamped",
			state:   state(100, 2, 0, false),
			outcome: won,
			want:    state(100, 3, 1, false),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := progression.Advance(tt.state, tt.outcome, tt.policy)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("Advance() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

// A failure flags the deload, the cycle rolls over normally, and the next week 4 failure deloads.
func TestAdvance_DelayedDeloadLifecycle(t *testing.T) {
	s := state(100, 1, 1, false)
	var policy progression.DeloadPolicy

	s = progression.Advance(s, failed, policy)
	if !s.PendingDeload || s.Week != 2 {
		t.Fatalf("after failure: %+v, want week 2 with pending deload", s)
	}
	for range 2 {
		s = progression.Advance(s, won, policy)
	}
	if !progression.DeloadDue(s) {
		t.Fatalf("week 4 with pending deload should be due: %+v", s)
	}
	s = progression.Advance(s, failed, policy)
	want := progression.TrainingState{
		TrainingMax:       90,
		Week:              1,
		Cycle:             2,
		CycleDisplayName:  1,
		PendingDeload:     false,
		Increment:         10,
		WorkoutPercentage: progression.DefaultWorkoutPercentage,
	}
	if diff := cmp.Diff(want, s); diff != "" {
		t.Errorf("after deload mismatch (-want +got):\n%s", diff)
	}
	if progression.DeloadDue(s) {
		t.Error("deload should not be due after it fired")
	}
}

func TestAdvance_StaysInRange(t *testing.T) {
	policies := []progression.DeloadPolicy{{Immediate: false}, {Immediate: true}}
	outcomes := []progression.Outcome{won, failed}
	for _, policy := range policies {
		s := progression.NewTrainingState(20, 10, progression.DefaultWorkoutPercentage)
		for i := range 200 {
			s = progression.Advance(s, outcomes[(i*7/3)%2], policy)
			if s.Week < 1 || s.Week > progression.WeeksPerCycle || s.Cycle < 1 || s.TrainingMax < 0 ||
				s.CycleDisplayName < 1 {
				t.Fatalf("step %d left range: %+v", i, s)
			}
		}
	}
}

func TestEvaluate(t *testing.T) {
	sets, err := progression.BuildWorkingSets(200, testScheme(), 1, nil)
	if err != nil {
		t.Fatalf("BuildWorkingSets: %v", err)
	}
	sets[2].Perform(7)
	s := state(200, 1, 3, false)

	got := progression.Evaluate(s, sets, true)
	want := progression.Outcome{
		Week:              1,
		Cycle:             3,
		TrainingMaxAtTime: 200,
		LastSetWeight:     170,
		RepsPerformed:     7,
		Completed:         true,
		Won:               true,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Evaluate() mismatch (-want +got):\n%s", diff)
	}

	if got = progression.Evaluate(s, sets, false); got.Won {
		t.Error("an incomplete workout should never be won")
	}
}

func TestTrainingMaxFromOneRepMax(t *testing.T) {
	if got := progression.TrainingMaxFromOneRepMax(145, 90, 2.5); got != 130 {
		t.Errorf("TrainingMaxFromOneRepMax(145, 90, 2.5) = %v, want 130", got)
	}
}
