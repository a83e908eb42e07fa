// Package workout runs the progression engine against the lift and workout history store.
package workout

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/wendler/internal/errors"
	"github.com/myrjola/wendler/internal/logging"
	"github.com/myrjola/wendler/internal/metrics"
	"github.com/myrjola/wendler/internal/program"
	"github.com/myrjola/wendler/internal/progression"
	"github.com/myrjola/wendler/internal/ptr"
	"github.com/myrjola/wendler/internal/sqlite"
	"golang.org/x/sync/errgroup"
)

// History limits.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// Service handles the business logic of the program.
type Service struct {
	repo    *sqliteRepository
	logger  *slog.Logger
	metrics *metrics.Manager
	program program.Program
	scheme  progression.Scheme
	policy  progression.DeloadPolicy
	locks   *liftLocks
	now     func() time.Time
}

// NewService creates a new workout service. The program must be valid.
func NewService(db *sqlite.Database, logger *slog.Logger, prog program.Program, m *metrics.Manager) *Service {
	return &Service{
		repo:    newSQLiteRepository(db, logger),
		logger:  logger,
		metrics: m,
		program: prog,
		scheme:  prog.Scheme(),
		policy:  prog.DeloadPolicy(),
		locks:   newLiftLocks(),
		now:     time.Now,
	}
}

// Initialize sets up the program's lifts from tested one-rep maxes. Lifts without a setup start from a training max
// of zero. Fails with ErrAlreadyInitialized when lifts already exist.
func (s *Service) Initialize(ctx context.Context, setups []LiftSetup) error {
	byName := make(map[string]LiftSetup, len(setups))
	for _, setup := range setups {
		if _, ok := s.program.Lift(setup.Name); !ok {
			return errors.Wrap(ErrUnknownExercise, "initialize", slog.String("lift", setup.Name))
		}
		if _, ok := byName[setup.Name]; ok {
			return errors.Wrap(ErrInvalidInput, "repeated lift", slog.String("lift", setup.Name))
		}
		if !isNonNegative(setup.OneRepMax) || (setup.Increment != nil && !isNonNegative(*setup.Increment)) {
			return errors.Wrap(ErrInvalidInput, "negative weight", slog.String("lift", setup.Name))
		}
		byName[setup.Name] = setup
	}

	lifts := make([]Lift, 0, len(s.program.Lifts))
	for i, pl := range s.program.Lifts {
		setup := byName[pl.Name]
		increment := ptr.Deref(setup.Increment, pl.Increment)
		trainingMax := progression.TrainingMaxFromOneRepMax(
			setup.OneRepMax, s.program.WorkoutPercentage, s.scheme.RoundingIncrement)
		lifts = append(lifts, Lift{
			Name:  pl.Name,
			Order: i + 1,
			State: progression.NewTrainingState(trainingMax, increment, s.program.WorkoutPercentage),
		})
	}

	if err := s.repo.CreateLifts(ctx, lifts); err != nil {
		return fmt.Errorf("create lifts: %w", err)
	}
	for _, l := range lifts {
		s.recordTrainingMax(l)
		s.logger.LogAttrs(ctx, slog.LevelInfo, "initialized lift",
			slog.String("lift", l.Name), slog.Float64("training_max", l.State.TrainingMax))
	}
	return nil
}

// State returns where lift stands in the program. Fails with ErrNotFound when the lift has not been set up.
func (s *Service) State(ctx context.Context, lift string) (progression.TrainingState, error) {
	l, err := s.repo.GetLift(ctx, lift)
	if err != nil {
		return progression.TrainingState{}, fmt.Errorf("get lift %s: %w", lift, err)
	}
	return l.State, nil
}

// Lifts lists the lifts in training order.
func (s *Service) Lifts(ctx context.Context) ([]Lift, error) {
	lifts, err := s.repo.ListLifts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list lifts: %w", err)
	}
	return lifts, nil
}

// Prescribe returns the sets lift calls for at its current week.
func (s *Service) Prescribe(ctx context.Context, lift string) (Prescription, error) {
	l, err := s.repo.GetLift(ctx, lift)
	if err != nil {
		return Prescription{}, fmt.Errorf("get lift %s: %w", lift, err)
	}
	return s.prescribe(ctx, l)
}

// Overview prescribes every lift in training order.
func (s *Service) Overview(ctx context.Context) ([]Prescription, error) {
	lifts, err := s.repo.ListLifts(ctx)
	if err != nil {
		return nil, fmt.Errorf("list lifts: %w", err)
	}

	prescriptions := make([]Prescription, len(lifts))
	g, gctx := errgroup.WithContext(ctx)
	for i, l := range lifts {
		g.Go(func() error {
			p, prescribeErr := s.prescribe(gctx, l)
			if prescribeErr != nil {
				return prescribeErr
			}
			prescriptions[i] = p
			return nil
		})
	}
	if err = g.Wait(); err != nil {
		return nil, err
	}
	return prescriptions, nil
}

func (s *Service) prescribe(ctx context.Context, l Lift) (Prescription, error) {
	p := Prescription{
		Lift:            l.Name,
		Order:           l.Order,
		State:           l.State,
		Sets:            nil,
		Groups:          nil,
		RepsToBeat:      nil,
		HighestEstimate: nil,
		DeloadDue:       progression.DeloadDue(l.State),
		Recorded:        nil,
	}

	var performed *int
	recorded, err := s.repo.FindWorkout(ctx, l.Name, l.State.Cycle, l.State.Week)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return Prescription{}, fmt.Errorf("find recorded workout: %w", err)
	default:
		p.Recorded = &recorded
		performed = &recorded.Reps
	}

	if p.Sets, err = progression.BuildSets(l.State.TrainingMax, s.scheme, l.State.Week, performed); err != nil {
		return Prescription{}, errors.Wrap(err, "build sets", slog.String("lift", l.Name), slog.Int("week", l.State.Week))
	}
	p.Groups = progression.GroupSets(p.Sets)

	if p.HighestEstimate, err = s.repo.HighestEstimate(ctx, l.Name); err != nil {
		return Prescription{}, fmt.Errorf("highest estimate: %w", err)
	}
	// A workout already logged for the week has nothing left to beat.
	if p.Recorded == nil {
		if reps, ok := progression.RepsToBeat(p.Sets, p.HighestEstimate); ok {
			p.RepsToBeat = &reps
		}
	}
	return p, nil
}

// Complete records a workout for lift at its current week and advances the lift.
func (s *Service) Complete(ctx context.Context, lift string, perf Performance) (Workout, error) {
	if err := perf.validate(); err != nil {
		return Workout{}, err
	}
	ctx = logging.WithAttrs(ctx, slog.String("lift", lift))
	unlock := s.locks.lock(lift)
	defer unlock()

	l, err := s.repo.GetLift(ctx, lift)
	if err != nil {
		return Workout{}, fmt.Errorf("get lift %s: %w", lift, err)
	}
	sets, err := progression.BuildWorkingSets(l.State.TrainingMax, s.scheme, l.State.Week, &perf.Reps)
	if err != nil {
		return Workout{}, errors.Wrap(err, "build working sets", slog.Int("week", l.State.Week))
	}
	outcome := progression.Evaluate(l.State, sets, perf.Completed)
	top, _ := progression.TopSet(sets)

	w := Workout{
		ID:                 uuid.New(),
		Lift:               l.Name,
		Date:               s.workoutDate(perf.Date),
		InsertedAt:         time.Time{},
		Week:               outcome.Week,
		Cycle:              outcome.Cycle,
		CycleDisplayName:   l.State.CycleDisplayName,
		TrainingMax:        outcome.TrainingMaxAtTime,
		LastSetWeight:      outcome.LastSetWeight,
		TopSetRepGoal:      top.RepGoal,
		Reps:               outcome.RepsPerformed,
		Completed:          outcome.Completed,
		Won:                outcome.Won,
		EstimatedOneRepMax: nil,
		Notes:              perf.Notes,
		Before:             snapshotOf(l.State),
	}
	if est, ok := progression.EstimateOneRepMax(w.LastSetWeight, w.Reps); ok {
		w.EstimatedOneRepMax = &est
	}

	highest, err := s.repo.HighestEstimate(ctx, l.Name)
	if err != nil {
		return Workout{}, fmt.Errorf("highest estimate: %w", err)
	}

	next := l
	next.State = progression.Advance(l.State, outcome, s.policy)
	if err = s.repo.RecordWorkout(ctx, &w, next); err != nil {
		return Workout{}, fmt.Errorf("record workout: %w", err)
	}

	s.observeOutcome(l, outcome)
	if w.EstimatedOneRepMax != nil && highest != nil && *w.EstimatedOneRepMax > *highest && s.metrics != nil {
		s.metrics.CounterPRsBeaten.WithLabelValues(l.Name).Inc()
	}
	s.logTransition(ctx, "completed workout", l.State, next.State, slog.String("workout_id", w.ID.String()),
		slog.Int("reps", w.Reps), slog.Bool("won", w.Won), slog.Bool("completed", w.Completed))
	return w, nil
}

// Edit changes the result of a recorded workout.
//
// The lift is re-advanced from the state saved with the workout only when the edit changes whether the workout was
// completed or won and the workout is the lift's latest completed one. Edits to older workouts never cascade.
func (s *Service) Edit(ctx context.Context, id uuid.UUID, perf Performance) (Workout, error) {
	if err := perf.validate(); err != nil {
		return Workout{}, err
	}
	existing, err := s.repo.GetWorkout(ctx, id)
	if err != nil {
		return Workout{}, fmt.Errorf("get workout %s: %w", id, err)
	}
	ctx = logging.WithAttrs(ctx, slog.String("lift", existing.Lift), slog.String("workout_id", id.String()))
	unlock := s.locks.lock(existing.Lift)
	defer unlock()

	var (
		outcomeChanged bool
		before, after  progression.TrainingState
	)
	updated, err := s.repo.UpdateWorkout(ctx, id,
		func(w *Workout, _ bool) (bool, error) {
			completed, won := w.Completed, w.Won
			w.score(perf)
			outcomeChanged = completed != w.Completed || won != w.Won
			return true, nil
		},
		func(w Workout, l *Lift, wasLatest, isLatest bool) (bool, error) {
			if !outcomeChanged || !(wasLatest || isLatest) {
				return false, nil
			}
			// A workout that only now became the latest must sit at the lift's current position to move it.
			if !wasLatest && (w.Cycle != l.State.Cycle || w.Week != l.State.Week) {
				return false, nil
			}
			before = l.State
			l.State = progression.Advance(w.Before.restore(l.State), w.outcome(), s.policy)
			after = l.State
			return true, nil
		})
	if err != nil {
		return Workout{}, fmt.Errorf("update workout: %w", err)
	}

	if before != after {
		s.logTransition(ctx, "re-evaluated lift", before, after)
	} else {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "edited workout", slog.Bool("outcome_changed", outcomeChanged))
	}
	return updated, nil
}

// Delete removes a workout. Deleting the latest completed workout of a lift restores the state saved with it and
// drops the unfinished workouts recorded past the restored position.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	existing, err := s.repo.GetWorkout(ctx, id)
	if err != nil {
		return fmt.Errorf("get workout %s: %w", id, err)
	}
	ctx = logging.WithAttrs(ctx, slog.String("lift", existing.Lift), slog.String("workout_id", id.String()))
	unlock := s.locks.lock(existing.Lift)
	defer unlock()

	var before, after progression.TrainingState
	err = s.repo.DeleteWorkout(ctx, id, func(w Workout, l *Lift, wasLatest bool) bool {
		if !wasLatest {
			return false
		}
		before = l.State
		l.State = w.Before.restore(l.State)
		after = l.State
		return true
	})
	if err != nil {
		return fmt.Errorf("delete workout: %w", err)
	}

	if before != after {
		s.logTransition(ctx, "restored lift", before, after)
	} else {
		s.logger.LogAttrs(ctx, slog.LevelInfo, "deleted workout")
	}
	return nil
}

// IsLatest reports whether id is the most recent completed workout of lift.
func (s *Service) IsLatest(ctx context.Context, id uuid.UUID, lift string) (bool, error) {
	latest, err := s.repo.IsLatest(ctx, id, lift)
	if err != nil {
		return false, fmt.Errorf("is latest: %w", err)
	}
	return latest, nil
}

// Workout retrieves a recorded workout.
func (s *Service) Workout(ctx context.Context, id uuid.UUID) (Workout, error) {
	w, err := s.repo.GetWorkout(ctx, id)
	if err != nil {
		return Workout{}, fmt.Errorf("get workout %s: %w", id, err)
	}
	return w, nil
}

// History lists completed workouts newest first. A non-positive limit uses DefaultHistoryLimit.
func (s *Service) History(ctx context.Context, limit int) ([]Workout, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	workouts, err := s.repo.ListWorkouts(ctx, min(limit, MaxHistoryLimit))
	if err != nil {
		return nil, fmt.Errorf("list workouts: %w", err)
	}
	return workouts, nil
}

// UpdateTrainingMax re-derives the training max of lift from a newly tested one-rep max.
func (s *Service) UpdateTrainingMax(ctx context.Context, lift string, oneRepMax float64) (progression.TrainingState, error) {
	if !isNonNegative(oneRepMax) {
		return progression.TrainingState{}, errors.Wrap(ErrInvalidInput, "negative one-rep max",
			slog.Float64("one_rep_max", oneRepMax))
	}
	ctx = logging.WithAttrs(ctx, slog.String("lift", lift))
	unlock := s.locks.lock(lift)
	defer unlock()

	var before, after progression.TrainingState
	err := s.repo.UpdateLift(ctx, lift, func(l *Lift) (bool, error) {
		before = l.State
		l.State.TrainingMax = progression.TrainingMaxFromOneRepMax(
			oneRepMax, l.State.WorkoutPercentage, s.scheme.RoundingIncrement)
		after = l.State
		return before != after, nil
	})
	if err != nil {
		return progression.TrainingState{}, fmt.Errorf("update lift %s: %w", lift, err)
	}
	s.recordTrainingMax(Lift{Name: lift, Order: 0, State: after})
	s.logTransition(ctx, "updated training max", before, after)
	return after, nil
}

func (s *Service) workoutDate(d time.Time) time.Time {
	if d.IsZero() {
		d = s.now()
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, time.UTC)
}

func (s *Service) observeOutcome(l Lift, outcome progression.Outcome) {
	if s.metrics == nil {
		return
	}
	label := "incomplete"
	switch {
	case outcome.Won:
		label = "won"
	case outcome.Completed:
		label = "failed"
		kind := "delayed"
		if s.policy.Immediate || progression.DeloadDue(l.State) {
			kind = "immediate"
		}
		s.metrics.CounterDeloads.WithLabelValues(l.Name, kind).Inc()
	}
	s.metrics.CounterWorkouts.WithLabelValues(l.Name, label).Inc()
}

func (s *Service) recordTrainingMax(l Lift) {
	if s.metrics == nil {
		return
	}
	s.metrics.GaugeTrainingMax.WithLabelValues(l.Name).Set(l.State.TrainingMax)
}

func (s *Service) logTransition(
	ctx context.Context,
	msg string,
	before, after progression.TrainingState,
	attrs ...slog.Attr,
) {
	attrs = append(attrs,
		slog.Group("before", stateAttrs(before)...),
		slog.Group("after", stateAttrs(after)...),
	)
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func stateAttrs(st progression.TrainingState) []any {
	return []any{
		slog.Int("week", st.Week),
		slog.Int("cycle", st.Cycle),
		slog.Int("cycle_display_name", st.CycleDisplayName),
		slog.Float64("training_max", st.TrainingMax),
		slog.Bool("pending_deload", st.PendingDeload),
	}
}

func isNonNegative(v float64) bool {
	return v >= 0 && !math.IsNaN(v) && !math.IsInf(v, 0)
}
