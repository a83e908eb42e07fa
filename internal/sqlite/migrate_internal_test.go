package sqlite

import (
	"context"
	"fmt"
	"testing"

	"github.com/myrjola/wendler/internal/testhelpers"
)

func TestNewDatabase_migrates(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(t.Context())
	t.Cleanup(cancel)
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))

	db, err := NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	tests := []struct {
		name    string
		query   string
		wantErr bool
	}{
		{
			name: "insert lift",
			query: `INSERT INTO lifts (name, order_in_week, training_max, week, cycle, cycle_display_name,
				increment, workout_percentage) VALUES ('squat', 1, 100, 1, 1, 1, 5, 90)`,
			wantErr: false,
		},
		{
			name: "week out of range",
			query: `INSERT INTO lifts (name, order_in_week, training_max, week, cycle, cycle_display_name,
				increment, workout_percentage) VALUES ('bench', 2, 100, 5, 1, 1, 2.5, 90)`,
			wantErr: true,
		},
		{
			name:    "workout for unknown lift",
			query:   workoutInsert("00000000-0000-0000-0000-000000000001", "press", 1, 1),
			wantErr: true,
		},
		{
			name:    "workout",
			query:   workoutInsert("00000000-0000-0000-0000-000000000002", "squat", 1, 1),
			wantErr: false,
		},
		{
			name:    "second workout for the same week",
			query:   workoutInsert("00000000-0000-0000-0000-000000000003", "squat", 1, 1),
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err = db.ReadWrite.ExecContext(ctx, tt.query)
			if (err != nil) != tt.wantErr {
				t.Errorf("exec %q: error = %v, wantErr %v", tt.name, err, tt.wantErr)
			}
		})
	}

	// Reads go through the read-only pool which must see the same in-memory database.
	var count int
	if err = db.ReadOnly.QueryRowContext(ctx, "SELECT COUNT(*) FROM workouts").Scan(&count); err != nil {
		t.Fatalf("count workouts: %v", err)
	}
	if count != 1 {
		t.Errorf("workouts = %d, want 1", count)
	}
	if _, err = db.ReadOnly.ExecContext(ctx, "DELETE FROM workouts"); err == nil {
		t.Error("read-only pool accepted a write")
	}
}

func TestDatabase_migrate_idempotent(t *testing.T) {
	t.Parallel()
	ctx, cancel := context.WithCancel(t.Context())
	t.Cleanup(cancel)
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))

	db, err := NewDatabase(ctx, ":memory:", logger)
	if err != nil {
		t.Fatalf("NewDatabase() error = %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err = db.migrate(ctx); err != nil {
		t.Fatalf("second migrate() error = %v", err)
	}
}

func workoutInsert(id, lift string, cycle, week int) string {
	return fmt.Sprintf(`INSERT INTO workouts (id, lift, workout_date, week, cycle, cycle_display_name, training_max,
		last_set_weight, top_set_rep_goal, reps, completed, won, est_one_rm, before_training_max, before_week,
		before_cycle, before_cycle_display_name, before_pending_deload)
		VALUES ('%s', '%s', '2025-01-06', %d, %d, 1, 100, 85, 5, 5, 1, 1, 99.15, 100, 1, 1, 1, 0)`,
		id, lift, week, cycle)
}
