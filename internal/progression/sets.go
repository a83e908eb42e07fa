package progression

import (
	"fmt"

	"github.com/myrjola/wendler/internal/errors"
)

// ErrInvalidConfiguration is returned when the percentage or rep table lacks an entry for a required week.
var ErrInvalidConfiguration = errors.NewSentinel("invalid configuration")

// Cycle shape.
const (
	WeeksPerCycle = 4
	WorkingSets   = 3
	DeloadWeek    = WeeksPerCycle
)

// SetType tags a set for display and for deciding whether it is performed for max reps.
type SetType string

// Set types.
const (
	SetTypeWarmUp  SetType = "warm_up"
	SetTypeRegular SetType = "regular"
	SetTypePlusSet SetType = "plus_set"
)

// ExerciseSet is one prescribed set and how far the trainee got with it.
type ExerciseSet struct {
	Type   SetType `json:"type"`
	Weight float64 `json:"weight"`
	// SetGoal is the number of reps needed for the set to count as complete.
	SetGoal int `json:"set_goal"`
	// RepGoal is the number of reps needed for the set to count as won. On plus sets it exceeds SetGoal.
	RepGoal  int  `json:"rep_goal"`
	Progress int  `json:"progress"`
	Complete bool `json:"complete"`
}

// Perform records the reps done on the set.
func (s *ExerciseSet) Perform(reps int) {
	s.Progress = reps
	s.Complete = reps >= s.SetGoal
}

// IsWon reports whether the rep goal was met.
func (s ExerciseSet) IsWon() bool {
	return IsWon(s.RepGoal, s.Progress)
}

// SetGroup is a run of consecutive sets sharing a type.
type SetGroup struct {
	Type SetType       `json:"type"`
	Sets []ExerciseSet `json:"sets"`
}

// GroupSets splits sets into runs of the same type, keeping order.
func GroupSets(sets []ExerciseSet) []SetGroup {
	var groups []SetGroup
	for _, s := range sets {
		if n := len(groups); n > 0 && groups[n-1].Type == s.Type {
			groups[n-1].Sets = append(groups[n-1].Sets, s)
			continue
		}
		groups = append(groups, SetGroup{Type: s.Type, Sets: []ExerciseSet{s}})
	}
	return groups
}

// WarmupStep is one warm-up set expressed as a percentage of the training max.
type WarmupStep struct {
	Percentage float64
	Reps       int
}

// Scheme holds the tables that turn a training max into a week's prescription.
type Scheme struct {
	// Percentages maps a week to the training max percentages of its working sets.
	Percentages map[int][WorkingSets]float64
	// RepGoals maps a week to the rep goal of each working set.
	RepGoals          map[int][WorkingSets]int
	Warmup            []WarmupStep
	WarmupEnabled     bool
	RoundingIncrement float64
}

// BuildWarmupSets prescribes one warm-up set per step. A non-nil performed marks the sets as done, which is how
// sets of an already recorded workout are rebuilt.
func BuildWarmupSets(trainingMax float64, steps []WarmupStep, increment float64, performed *int) []ExerciseSet {
	sets := make([]ExerciseSet, 0, len(steps))
	for _, step := range steps {
		s := ExerciseSet{
			Type:     SetTypeWarmUp,
			Weight:   WeightForPercentage(trainingMax, step.Percentage, increment),
			SetGoal:  step.Reps,
			RepGoal:  step.Reps,
			Progress: 0,
			Complete: false,
		}
		if performed != nil {
			s.Perform(s.SetGoal)
		}
		sets = append(sets, s)
	}
	return sets
}

// BuildWorkingSets prescribes the three working sets for week. The last one is a plus set except in the deload
// week. A non-nil performed marks the first two sets as done and records *performed reps on the top set.
func BuildWorkingSets(trainingMax float64, scheme Scheme, week int, performed *int) ([]ExerciseSet, error) {
	percentages, ok := scheme.Percentages[week]
	if !ok {
		return nil, fmt.Errorf("week %d has no percentages: %w", week, ErrInvalidConfiguration)
	}
	repGoals, ok := scheme.RepGoals[week]
	if !ok {
		return nil, fmt.Errorf("week %d has no rep goals: %w", week, ErrInvalidConfiguration)
	}

	sets := make([]ExerciseSet, 0, WorkingSets)
	for i := range WorkingSets {
		s := ExerciseSet{
			Type:     SetTypeRegular,
			Weight:   WeightForPercentage(trainingMax, percentages[i], scheme.RoundingIncrement),
			SetGoal:  repGoals[i],
			RepGoal:  repGoals[i],
			Progress: 0,
			Complete: false,
		}
		top := i == WorkingSets-1
		if top && week != DeloadWeek {
			// Any rep completes a plus set but only the rep goal wins it.
			s.Type = SetTypePlusSet
			s.SetGoal = 1
		}
		if performed != nil {
			if top {
				s.Perform(*performed)
			} else {
				s.Perform(s.SetGoal)
			}
		}
		sets = append(sets, s)
	}
	return sets, nil
}

// BuildSets prescribes the warm-up sets, when enabled, followed by the working sets.
func BuildSets(trainingMax float64, scheme Scheme, week int, performed *int) ([]ExerciseSet, error) {
	working, err := BuildWorkingSets(trainingMax, scheme, week, performed)
	if err != nil {
		return nil, err
	}
	if !scheme.WarmupEnabled {
		return working, nil
	}
	warmup := BuildWarmupSets(trainingMax, scheme.Warmup, scheme.RoundingIncrement, performed)
	return append(warmup, working...), nil
}

// TopSet returns the last working set.
func TopSet(sets []ExerciseSet) (ExerciseSet, bool) {
	if len(sets) == 0 {
		return ExerciseSet{}, false
	}
	return sets[len(sets)-1], true
}
