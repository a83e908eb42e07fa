// Package program loads the training program: the week percentage and rep tables, the warm-up, plate rounding, the
// deload policy and the lifts trained.
package program

import (
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/myrjola/wendler/internal/errors"
	"github.com/myrjola/wendler/internal/progression"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfiguration is returned when the program cannot prescribe every week.
var ErrInvalidConfiguration = progression.ErrInvalidConfiguration

// Program is the YAML program file.
type Program struct {
	RoundingIncrement float64      `yaml:"rounding_increment"`
	WorkoutPercentage int          `yaml:"workout_percentage"`
	Warmup            Warmup       `yaml:"warmup"`
	Weeks             map[int]Week `yaml:"weeks"`
	Deload            Deload       `yaml:"deload"`
	Lifts             []Lift       `yaml:"lifts"`
}

// Warmup configures the warm-up sets done before the working sets.
type Warmup struct {
	Enabled bool         `yaml:"enabled"`
	Sets    []WarmupStep `yaml:"sets"`
}

// WarmupStep is one warm-up set.
type WarmupStep struct {
	Percentage float64 `yaml:"percentage"`
	Reps       int     `yaml:"reps"`
}

// Week holds the working set percentages and rep goals of one week.
type Week struct {
	Percentages []float64 `yaml:"percentages"`
	Reps        []int     `yaml:"reps"`
}

// Deload configures what a failed workout does.
type Deload struct {
	// Delayed flags a failure and deloads at the next week 4 instead of right away.
	Delayed bool `yaml:"delayed"`
}

// Lift is a main lift with its training order and training max increment.
type Lift struct {
	Name      string  `yaml:"name"`
	Increment float64 `yaml:"increment"`
}

// Default returns the classic 5/3/1 program for press, deadlift, bench press and squat.
func Default() Program {
	return Program{
		RoundingIncrement: progression.DefaultRoundingIncrement,
		WorkoutPercentage: progression.DefaultWorkoutPercentage,
		Warmup: Warmup{
			Enabled: true,
			Sets: []WarmupStep{
				{Percentage: 40, Reps: 5}, //nolint:mnd // 5/3/1 warm-up.
				{Percentage: 50, Reps: 5}, //nolint:mnd // 5/3/1 warm-up.
				{Percentage: 60, Reps: 3}, //nolint:mnd // 5/3/1 warm-up.
			},
		},
		Weeks: map[int]Week{
			1: {Percentages: []float64{65, 75, 85}, Reps: []int{5, 5, 5}}, //nolint:mnd // 5/3/1 week.
			2: {Percentages: []float64{70, 80, 90}, Reps: []int{3, 3, 3}}, //nolint:mnd // 5/3/1 week.
			3: {Percentages: []float64{75, 85, 95}, Reps: []int{5, 3, 1}}, //nolint:mnd // 5/3/1 week.
			4: {Percentages: []float64{40, 50, 60}, Reps: []int{5, 5, 5}}, //nolint:mnd // 5/3/1 deload week.
		},
		Deload: Deload{Delayed: true},
		Lifts: []Lift{
			{Name: "press", Increment: progression.DefaultUpperIncrement},
			{Name: "deadlift", Increment: progression.DefaultLowerIncrement},
			{Name: "bench", Increment: progression.DefaultUpperIncrement},
			{Name: "squat", Increment: progression.DefaultLowerIncrement},
		},
	}
}

// Load reads the program at path on top of [Default] and validates it. An empty path returns the default program.
//
// Keys missing from the file keep their default. A week present in the file replaces the default week.
func Load(path string) (Program, error) {
	p := Default()
	if path == "" {
		return p, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Program{}, fmt.Errorf("read program file: %w", err)
	}
	if err = yaml.Unmarshal(data, &p); err != nil {
		return Program{}, errors.Wrap(err, "parse program file", slog.String("path", path))
	}
	if err = p.Validate(); err != nil {
		return Program{}, errors.Wrap(err, "validate program", slog.String("path", path))
	}
	return p, nil
}

// Validate checks that every week of the cycle can be prescribed.
func (p Program) Validate() error {
	for week := 1; week <= progression.WeeksPerCycle; week++ {
		w, ok := p.Weeks[week]
		if !ok {
			return fmt.Errorf("week %d missing: %w", week, ErrInvalidConfiguration)
		}
		if len(w.Percentages) != progression.WorkingSets {
			return fmt.Errorf("week %d has %d percentages, want %d: %w",
				week, len(w.Percentages), progression.WorkingSets, ErrInvalidConfiguration)
		}
		if len(w.Reps) != progression.WorkingSets {
			return fmt.Errorf("week %d has %d rep goals, want %d: %w",
				week, len(w.Reps), progression.WorkingSets, ErrInvalidConfiguration)
		}
		if slices.ContainsFunc(w.Percentages, func(v float64) bool { return v <= 0 }) {
			return fmt.Errorf("week %d has a non-positive percentage: %w", week, ErrInvalidConfiguration)
		}
		if slices.ContainsFunc(w.Reps, func(v int) bool { return v <= 0 }) {
			return fmt.Errorf("week %d has a non-positive rep goal: %w", week, ErrInvalidConfiguration)
		}
	}
	for i, s := range p.Warmup.Sets {
		if s.Percentage <= 0 || s.Reps <= 0 {
			return fmt.Errorf("warm-up set %d is not positive: %w", i+1, ErrInvalidConfiguration)
		}
	}
	if p.RoundingIncrement < 0 {
		return fmt.Errorf("negative rounding increment %v: %w", p.RoundingIncrement, ErrInvalidConfiguration)
	}
	if p.WorkoutPercentage <= 0 || p.WorkoutPercentage > 100 {
		return fmt.Errorf("workout percentage %d out of range: %w", p.WorkoutPercentage, ErrInvalidConfiguration)
	}
	seen := make(map[string]bool, len(p.Lifts))
	for _, l := range p.Lifts {
		if l.Name == "" || seen[l.Name] {
			return fmt.Errorf("lift name %q empty or repeated: %w", l.Name, ErrInvalidConfiguration)
		}
		if l.Increment < 0 {
			return fmt.Errorf("lift %s has a negative increment: %w", l.Name, ErrInvalidConfiguration)
		}
		seen[l.Name] = true
	}
	if len(p.Lifts) == 0 {
		return fmt.Errorf("no lifts: %w", ErrInvalidConfiguration)
	}
	return nil
}

// Scheme converts the program into the tables used to prescribe sets. The program must be valid.
func (p Program) Scheme() progression.Scheme {
	s := progression.Scheme{
		Percentages:       make(map[int][progression.WorkingSets]float64, len(p.Weeks)),
		RepGoals:          make(map[int][progression.WorkingSets]int, len(p.Weeks)),
		Warmup:            make([]progression.WarmupStep, 0, len(p.Warmup.Sets)),
		WarmupEnabled:     p.Warmup.Enabled,
		RoundingIncrement: p.RoundingIncrement,
	}
	for week, w := range p.Weeks {
		var (
			percentages [progression.WorkingSets]float64
			reps        [progression.WorkingSets]int
		)
		copy(percentages[:], w.Percentages)
		copy(reps[:], w.Reps)
		s.Percentages[week] = percentages
		s.RepGoals[week] = reps
	}
	for _, step := range p.Warmup.Sets {
		s.Warmup = append(s.Warmup, progression.WarmupStep{Percentage: step.Percentage, Reps: step.Reps})
	}
	return s
}

// DeloadPolicy returns the policy applied to failed workouts.
func (p Program) DeloadPolicy() progression.DeloadPolicy {
	return progression.DeloadPolicy{Immediate: !p.Deload.Delayed}
}

// Lift returns the configured lift called name.
func (p Program) Lift(name string) (Lift, bool) {
	i := slices.IndexFunc(p.Lifts, func(l Lift) bool { return l.Name == name })
	if i < 0 {
		return Lift{}, false
	}
	return p.Lifts[i], true
}
