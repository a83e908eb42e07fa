package workout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

const workoutColumns = `id, lift, workout_date, inserted_at, week, cycle, cycle_display_name, training_max,
	last_set_weight, top_set_rep_goal, reps, completed, won, est_one_rm, notes, before_training_max, before_week,
	before_cycle, before_cycle_display_name, before_pending_deload`

func scanWorkout(row rowScanner) (Workout, error) {
	var (
		w          Workout
		id         string
		date       string
		insertedAt string
		estimate   sql.NullFloat64
	)
	err := row.Scan(&id, &w.Lift, &date, &insertedAt, &w.Week, &w.Cycle, &w.CycleDisplayName, &w.TrainingMax,
		&w.LastSetWeight, &w.TopSetRepGoal, &w.Reps, &w.Completed, &w.Won, &estimate, &w.Notes,
		&w.Before.TrainingMax, &w.Before.Week, &w.Before.Cycle, &w.Before.CycleDisplayName, &w.Before.PendingDeload)
	if errors.Is(err, sql.ErrNoRows) {
		return Workout{}, ErrNotFound
	}
	if err != nil {
		return Workout{}, fmt.Errorf("scan workout: %w", err)
	}

	if w.ID, err = uuid.Parse(id); err != nil {
		return Workout{}, fmt.Errorf("parse workout id: %w", err)
	}
	if w.Date, err = parseDate(date); err != nil {
		return Workout{}, err
	}
	if w.InsertedAt, err = parseTimestamp(insertedAt); err != nil {
		return Workout{}, err
	}
	if estimate.Valid {
		w.EstimatedOneRepMax = &estimate.Float64
	}
	return w, nil
}

func queryWorkout(ctx context.Context, q querier, id uuid.UUID) (Workout, error) {
	return scanWorkout(q.QueryRowContext(ctx, `SELECT `+workoutColumns+` FROM workouts WHERE id = ?`, id.String()))
}

// queryIsLatest reports whether id is the most recent completed workout of lift.
func queryIsLatest(ctx context.Context, q querier, id uuid.UUID, lift string) (bool, error) {
	var latest string
	err := q.QueryRowContext(ctx, `
		SELECT id
		FROM workouts
		WHERE lift = ? AND completed = 1
		ORDER BY cycle DESC, week DESC, inserted_at DESC
		LIMIT 1`, lift).Scan(&latest)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query latest workout: %w", err)
	}
	return latest == id.String(), nil
}

// upsertWorkout inserts w, replacing an incomplete workout recorded for the same lift, cycle and week. A completed
// workout in that slot is never replaced and ErrAlreadyRecorded is returned instead. The stored id and insert time
// are written back to w.
func upsertWorkout(ctx context.Context, q querier, w *Workout) error {
	var (
		id         string
		insertedAt string
	)
	err := q.QueryRowContext(ctx, `
		INSERT INTO workouts (
			id, lift, workout_date, week, cycle, cycle_display_name, training_max, last_set_weight,
			top_set_rep_goal, reps, completed, won, est_one_rm, notes, before_training_max, before_week,
			before_cycle, before_cycle_display_name, before_pending_deload
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (lift, cycle, week) DO UPDATE SET
			workout_date = excluded.workout_date,
			inserted_at = excluded.inserted_at,
			cycle_display_name = excluded.cycle_display_name,
			training_max = excluded.training_max,
			last_set_weight = excluded.last_set_weight,
			top_set_rep_goal = excluded.top_set_rep_goal,
			reps = excluded.reps,
			completed = excluded.completed,
			won = excluded.won,
			est_one_rm = excluded.est_one_rm,
			notes = excluded.notes,
			before_training_max = excluded.before_training_max,
			before_week = excluded.before_week,
			before_cycle = excluded.before_cycle,
			before_cycle_display_name = excluded.before_cycle_display_name,
			before_pending_deload = excluded.before_pending_deload
		WHERE workouts.completed = 0
		RETURNING id, inserted_at`,
		w.ID.String(), w.Lift, formatDate(w.Date), w.Week, w.Cycle, w.CycleDisplayName, w.TrainingMax,
		w.LastSetWeight, w.TopSetRepGoal, w.Reps, w.Completed, w.Won, w.EstimatedOneRepMax, w.Notes,
		w.Before.TrainingMax, w.Before.Week, w.Before.Cycle, w.Before.CycleDisplayName, w.Before.PendingDeload,
	).Scan(&id, &insertedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrAlreadyRecorded
	}
	if err != nil {
		return fmt.Errorf("upsert workout: %w", err)
	}
	if w.ID, err = uuid.Parse(id); err != nil {
		return fmt.Errorf("parse workout id: %w", err)
	}
	if w.InsertedAt, err = parseTimestamp(insertedAt); err != nil {
		return err
	}
	return nil
}

func updateWorkoutResult(ctx context.Context, q querier, w Workout) error {
	_, err := q.ExecContext(ctx, `
		UPDATE workouts
		SET workout_date = ?, reps = ?, completed = ?, won = ?, est_one_rm = ?, notes = ?
		WHERE id = ?`,
		formatDate(w.Date), w.Reps, w.Completed, w.Won, w.EstimatedOneRepMax, w.Notes, w.ID.String())
	if err != nil {
		return fmt.Errorf("update workout: %w", err)
	}
	return nil
}

// deleteIncompleteAfter removes the unfinished workouts of a lift recorded past its position. Nothing can complete them
// once the lift has been moved back.
func deleteIncompleteAfter(ctx context.Context, q querier, l Lift) error {
	_, err := q.ExecContext(ctx, `
		DELETE FROM workouts
		WHERE lift = ? AND completed = 0 AND (cycle > ? OR (cycle = ? AND week > ?))`,
		l.Name, l.State.Cycle, l.State.Cycle, l.State.Week)
	if err != nil {
		return fmt.Errorf("delete incomplete workouts: %w", err)
	}
	return nil
}

// GetWorkout retrieves a workout by id.
func (r *sqliteRepository) GetWorkout(ctx context.Context, id uuid.UUID) (Workout, error) {
	return queryWorkout(ctx, r.db.ReadOnly, id)
}

// FindWorkout retrieves the workout recorded for lift in the given cycle and week.
func (r *sqliteRepository) FindWorkout(ctx context.Context, lift string, cycle, week int) (Workout, error) {
	return scanWorkout(r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT `+workoutColumns+`
		FROM workouts
		WHERE lift = ? AND cycle = ? AND week = ?`, lift, cycle, week))
}

// IsLatest reports whether id is the most recent completed workout of lift.
func (r *sqliteRepository) IsLatest(ctx context.Context, id uuid.UUID, lift string) (bool, error) {
	return queryIsLatest(ctx, r.db.ReadOnly, id, lift)
}

// ListWorkouts retrieves up to limit completed workouts, newest first.
func (r *sqliteRepository) ListWorkouts(ctx context.Context, limit int) (_ []Workout, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `
		SELECT `+workoutColumns+`
		FROM workouts
		WHERE completed = 1
		ORDER BY workout_date DESC, inserted_at DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query workouts: %w", err)
	}
	defer closeRows(rows, &err)

	var workouts []Workout
	for rows.Next() {
		var w Workout
		if w, err = scanWorkout(rows); err != nil {
			return nil, err
		}
		workouts = append(workouts, w)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return workouts, nil
}

// RecordWorkout stores w and the lift's next state in one transaction.
func (r *sqliteRepository) RecordWorkout(ctx context.Context, w *Workout, next Lift) error {
	defer r.estimates.invalidate(w.Lift)
	return r.transact(ctx, func(tx *sql.Tx) error {
		if err := upsertWorkout(ctx, tx, w); err != nil {
			return err
		}
		return saveLiftState(ctx, tx, next)
	})
}

// UpdateWorkout modifies a workout with read-modify-write semantics.
//
// updateFn receives the stored workout and whether it was the lift's latest completed workout before the change. It
// returns whether the workout changed. When the workout changed, reevaluate is called with the lift and whether the
// workout is the latest completed one after the change, and reports whether the lift's state changed.
func (r *sqliteRepository) UpdateWorkout(
	ctx context.Context,
	id uuid.UUID,
	updateFn func(w *Workout, wasLatest bool) (bool, error),
	reevaluate func(w Workout, l *Lift, wasLatest, isLatest bool) (bool, error),
) (Workout, error) {
	var updated Workout
	err := r.transact(ctx, func(tx *sql.Tx) error {
		w, err := queryWorkout(ctx, tx, id)
		if err != nil {
			return err
		}
		wasLatest, err := queryIsLatest(ctx, tx, id, w.Lift)
		if err != nil {
			return err
		}
		changed, err := updateFn(&w, wasLatest)
		if err != nil {
			return fmt.Errorf("update function: %w", err)
		}
		updated = w
		if !changed {
			return nil
		}
		if err = updateWorkoutResult(ctx, tx, w); err != nil {
			return err
		}

		isLatest, err := queryIsLatest(ctx, tx, id, w.Lift)
		if err != nil {
			return err
		}
		l, err := queryLift(ctx, tx, w.Lift)
		if err != nil {
			return fmt.Errorf("load lift %s: %w", w.Lift, err)
		}
		liftChanged, err := reevaluate(w, &l, wasLatest, isLatest)
		if err != nil {
			return fmt.Errorf("reevaluate lift: %w", err)
		}
		if !liftChanged {
			return nil
		}
		if err = deleteIncompleteAfter(ctx, tx, l); err != nil {
			return err
		}
		return saveLiftState(ctx, tx, l)
	})
	if updated.Lift != "" {
		r.estimates.invalidate(updated.Lift)
	}
	if err != nil {
		return Workout{}, err
	}
	return updated, nil
}

// DeleteWorkout removes a workout. restoreFn is called with the workout, its lift and whether it was the lift's
// latest completed workout, and reports whether the lift's state changed. When it did, unfinished workouts past the
// new position are removed too, as they are by UpdateWorkout.
func (r *sqliteRepository) DeleteWorkout(
	ctx context.Context,
	id uuid.UUID,
	restoreFn func(w Workout, l *Lift, wasLatest bool) bool,
) error {
	var lift string
	defer func() {
		if lift != "" {
			r.estimates.invalidate(lift)
		}
	}()
	return r.transact(ctx, func(tx *sql.Tx) error {
		w, err := queryWorkout(ctx, tx, id)
		if err != nil {
			return err
		}
		lift = w.Lift

		wasLatest, err := queryIsLatest(ctx, tx, id, w.Lift)
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, `DELETE FROM workouts WHERE id = ?`, id.String()); err != nil {
			return fmt.Errorf("delete workout: %w", err)
		}
		l, err := queryLift(ctx, tx, w.Lift)
		if err != nil {
			return fmt.Errorf("load lift %s: %w", w.Lift, err)
		}
		if !restoreFn(w, &l, wasLatest) {
			return nil
		}
		if err = deleteIncompleteAfter(ctx, tx, l); err != nil {
			return err
		}
		return saveLiftState(ctx, tx, l)
	})
}

// HighestEstimate returns the highest estimated one-rep max recorded for lift, or nil when there is none.
func (r *sqliteRepository) HighestEstimate(ctx context.Context, lift string) (*float64, error) {
	if est, ok := r.estimates.get(lift); ok {
		return est, nil
	}
	gen := r.estimates.generation(lift)
	var highest sql.NullFloat64
	err := r.db.ReadOnly.QueryRowContext(ctx, `
		SELECT MAX(est_one_rm)
		FROM workouts
		WHERE lift = ? AND est_one_rm > 0`, lift).Scan(&highest)
	if err != nil {
		return nil, fmt.Errorf("query highest estimate: %w", err)
	}
	var est *float64
	if highest.Valid {
		est = &highest.Float64
	}
	r.estimates.set(lift, est, gen)
	return est, nil
}
