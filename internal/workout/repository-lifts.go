package workout

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const liftColumns = `name, order_in_week, training_max, week, cycle, cycle_display_name, pending_deload,
	increment, workout_percentage`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanLift(row rowScanner) (Lift, error) {
	var l Lift
	err := row.Scan(&l.Name, &l.Order, &l.State.TrainingMax, &l.State.Week, &l.State.Cycle,
		&l.State.CycleDisplayName, &l.State.PendingDeload, &l.State.Increment, &l.State.WorkoutPercentage)
	if errors.Is(err, sql.ErrNoRows) {
		return Lift{}, ErrNotFound
	}
	if err != nil {
		return Lift{}, fmt.Errorf("scan lift: %w", err)
	}
	return l, nil
}

// queryLift loads the lift called name. Fails with ErrNotFound when the lift has not been set up.
func queryLift(ctx context.Context, q querier, name string) (Lift, error) {
	return scanLift(q.QueryRowContext(ctx, `SELECT `+liftColumns+` FROM lifts WHERE name = ?`, name))
}

// saveLiftState overwrites the state of an existing lift.
func saveLiftState(ctx context.Context, q querier, l Lift) error {
	res, err := q.ExecContext(ctx, `
		UPDATE lifts
		SET training_max = ?, week = ?, cycle = ?, cycle_display_name = ?, pending_deload = ?,
		    increment = ?, workout_percentage = ?, updated_at = STRFTIME('%Y-%m-%dT%H:%M:%fZ')
		WHERE name = ?`,
		l.State.TrainingMax, l.State.Week, l.State.Cycle, l.State.CycleDisplayName, l.State.PendingDeload,
		l.State.Increment, l.State.WorkoutPercentage, l.Name)
	if err != nil {
		return fmt.Errorf("update lift %s: %w", l.Name, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetLift retrieves a lift by name.
func (r *sqliteRepository) GetLift(ctx context.Context, name string) (Lift, error) {
	return queryLift(ctx, r.db.ReadOnly, name)
}

// ListLifts retrieves all lifts in training order.
func (r *sqliteRepository) ListLifts(ctx context.Context) (_ []Lift, err error) {
	rows, err := r.db.ReadOnly.QueryContext(ctx, `SELECT `+liftColumns+` FROM lifts ORDER BY order_in_week, name`)
	if err != nil {
		return nil, fmt.Errorf("query lifts: %w", err)
	}
	defer closeRows(rows, &err)

	var lifts []Lift
	for rows.Next() {
		var l Lift
		if l, err = scanLift(rows); err != nil {
			return nil, err
		}
		lifts = append(lifts, l)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return lifts, nil
}

// CreateLifts inserts lifts in one transaction. Fails with ErrAlreadyInitialized when any lift exists.
func (r *sqliteRepository) CreateLifts(ctx context.Context, lifts []Lift) error {
	return r.transact(ctx, func(tx *sql.Tx) error {
		var count int
		if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM lifts`).Scan(&count); err != nil {
			return fmt.Errorf("count lifts: %w", err)
		}
		if count > 0 {
			return ErrAlreadyInitialized
		}
		for _, l := range lifts {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO lifts (`+liftColumns+`)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
				l.Name, l.Order, l.State.TrainingMax, l.State.Week, l.State.Cycle, l.State.CycleDisplayName,
				l.State.PendingDeload, l.State.Increment, l.State.WorkoutPercentage)
			if err != nil {
				return fmt.Errorf("insert lift %s: %w", l.Name, err)
			}
		}
		return nil
	})
}

// UpdateLift modifies a lift with read-modify-write semantics. The lift is saved only if updateFn reports a change.
func (r *sqliteRepository) UpdateLift(
	ctx context.Context,
	name string,
	updateFn func(l *Lift) (bool, error),
) error {
	return r.transact(ctx, func(tx *sql.Tx) error {
		l, err := queryLift(ctx, tx, name)
		if err != nil {
			return err
		}
		updated, err := updateFn(&l)
		if err != nil {
			return fmt.Errorf("update function: %w", err)
		}
		if !updated {
			return nil
		}
		return saveLiftState(ctx, tx, l)
	})
}
