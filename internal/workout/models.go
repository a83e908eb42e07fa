package workout

import (
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/myrjola/wendler/internal/errors"
	"github.com/myrjola/wendler/internal/progression"
)

var (
	// ErrNotFound is returned when a lift or workout does not exist.
	ErrNotFound = errors.NewSentinel("not found")
	// ErrAlreadyInitialized is returned when setting up lifts that already exist.
	ErrAlreadyInitialized = errors.NewSentinel("already initialized")
	// ErrUnknownExercise is returned when a lift is not part of the program.
	ErrUnknownExercise = errors.NewSentinel("unknown exercise")
	// ErrAlreadyRecorded is returned when a completed workout exists for the lift's current cycle and week.
	ErrAlreadyRecorded = errors.NewSentinel("workout already recorded")
	// ErrInvalidInput is returned for input the engine cannot score, such as negative reps.
	ErrInvalidInput = errors.NewSentinel("invalid input")
)

// Lift is a main lift and where it stands in the program.
type Lift struct {
	Name string `json:"name"`
	// Order is the position of the lift in the training week, starting from 1.
	Order int                       `json:"order"`
	State progression.TrainingState `json:"state"`
}

// LiftSetup seeds a lift from a tested one-rep max.
type LiftSetup struct {
	Name      string  `json:"name"`
	OneRepMax float64 `json:"one_rep_max"`
	// Increment overrides the program's training max increment for the lift.
	Increment *float64 `json:"increment,omitempty"`
}

// MaxNotesLength is the longest note, in characters, stored with a workout.
const MaxNotesLength = 4096

// Performance is what the trainee reports after a workout.
type Performance struct {
	// Reps done on the top set.
	Reps      int       `json:"reps"`
	Completed bool      `json:"completed"`
	Date      time.Time `json:"date"`
	Notes     string    `json:"notes"`
}

func (p Performance) validate() error {
	if p.Reps < 0 {
		return errors.Wrap(ErrInvalidInput, "negative reps", slog.Int("reps", p.Reps))
	}
	if n := utf8.RuneCountInString(p.Notes); n > MaxNotesLength {
		return errors.Wrap(ErrInvalidInput, "notes too long", slog.Int("length", n))
	}
	return nil
}

// Snapshot is the part of a lift's state saved with each workout so that it can be restored.
type Snapshot struct {
	TrainingMax      float64 `json:"training_max"`
	Week             int     `json:"week"`
	Cycle            int     `json:"cycle"`
	CycleDisplayName int     `json:"cycle_display_name"`
	PendingDeload    bool    `json:"pending_deload"`
}

func snapshotOf(s progression.TrainingState) Snapshot {
	return Snapshot{
		TrainingMax:      s.TrainingMax,
		Week:             s.Week,
		Cycle:            s.Cycle,
		CycleDisplayName: s.CycleDisplayName,
		PendingDeload:    s.PendingDeload,
	}
}

// restore applies the snapshot on top of current, keeping the lift's increment and workout percentage.
func (s Snapshot) restore(current progression.TrainingState) progression.TrainingState {
	current.TrainingMax = s.TrainingMax
	current.Week = s.Week
	current.Cycle = s.Cycle
	current.CycleDisplayName = s.CycleDisplayName
	current.PendingDeload = s.PendingDeload
	return current
}

// Workout is a recorded workout of one lift.
type Workout struct {
	ID               uuid.UUID `json:"id"`
	Lift             string    `json:"lift"`
	Date             time.Time `json:"date"`
	InsertedAt       time.Time `json:"inserted_at"`
	Week             int       `json:"week"`
	Cycle            int       `json:"cycle"`
	CycleDisplayName int       `json:"cycle_display_name"`
	TrainingMax      float64   `json:"training_max"`
	LastSetWeight    float64   `json:"last_set_weight"`
	TopSetRepGoal    int       `json:"top_set_rep_goal"`
	Reps             int       `json:"reps"`
	Completed        bool      `json:"completed"`
	Won              bool      `json:"won"`
	// EstimatedOneRepMax is nil when no reps were done.
	EstimatedOneRepMax *float64 `json:"estimated_one_rep_max,omitempty"`
	Notes              string   `json:"notes"`
	Before             Snapshot `json:"before"`
}

// outcome rebuilds the progression outcome of the workout.
func (w Workout) outcome() progression.Outcome {
	return progression.Outcome{
		Week:              w.Week,
		Cycle:             w.Cycle,
		TrainingMaxAtTime: w.TrainingMax,
		LastSetWeight:     w.LastSetWeight,
		RepsPerformed:     w.Reps,
		Completed:         w.Completed,
		Won:               w.Won,
	}
}

// score fills the result fields of w from p. The top set weight and rep goal must already be set.
func (w *Workout) score(p Performance) {
	w.Reps = p.Reps
	w.Completed = p.Completed
	w.Won = p.Completed && progression.IsWon(w.TopSetRepGoal, p.Reps)
	w.EstimatedOneRepMax = nil
	if est, ok := progression.EstimateOneRepMax(w.LastSetWeight, p.Reps); ok {
		w.EstimatedOneRepMax = &est
	}
	w.Notes = p.Notes
	if !p.Date.IsZero() {
		w.Date = p.Date
	}
}

// Prescription is what a lift calls for today.
type Prescription struct {
	Lift  string                    `json:"lift"`
	Order int                       `json:"order"`
	State progression.TrainingState `json:"state"`
	// Sets are the warm-up sets, when enabled, followed by the three working sets.
	Sets   []progression.ExerciseSet `json:"sets"`
	Groups []progression.SetGroup    `json:"groups"`
	// RepsToBeat is the top set rep count that would set a new estimated one-rep max. Nil when not applicable.
	RepsToBeat      *int     `json:"reps_to_beat,omitempty"`
	HighestEstimate *float64 `json:"highest_estimate,omitempty"`
	// DeloadDue is set when a failure today deloads right away.
	DeloadDue bool `json:"deload_due"`
	// Recorded is the workout already logged for this week, if any.
	Recorded *Workout `json:"recorded,omitempty"`
}
