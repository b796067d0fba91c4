/*
Package sqlite provides a SQLite-backed implementation of the scheduling
storage interfaces.

PURPOSE:
  Implements RosterStore, WeekStore, ScheduleStore and TimeOffStore on a
  single SQLite database. In production the same patterns apply to
  PostgreSQL - only minor SQL dialect differences.

KEY TABLES:
  employees:   Worker roster per location
  schedules:   Week aggregates with approval status and SLA deadline
  shifts:      Half-day slots (date, AM/PM, per-role minimums)
  assignments: Worker-to-slot bindings with concrete hours
  reviews:     One record per review stage entered
  time_off:    Approved leave days consumed by the planner

ATOMICITY:
  ReplaceWeek runs delete-then-insert of a location's week inside one SQL
  transaction; readers observe the old set or the new set, never a
  partial one.

  SetStatusAndDeadline is a conditional UPDATE keyed on (id, status).
  Zero affected rows on an existing schedule means another writer moved
  it first, surfaced as scheduling.ErrConcurrentTransition.

WAL MODE:
  The database is opened with WAL so readers don't block behind the
  single writer.

SEE ALSO:
  - scheduling/store.go:       Interface contracts
  - scheduling/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/warp/shift-engine/scheduling"
)

// Store implements all scheduling storage interfaces using SQLite.
type Store struct {
	db *sql.DB
}

// Compile-time interface checks.
var (
	_ scheduling.RosterStore   = (*Store)(nil)
	_ scheduling.WeekStore     = (*Store)(nil)
	_ scheduling.ScheduleStore = (*Store)(nil)
	_ scheduling.TimeOffStore  = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		location_id TEXT NOT NULL,
		name TEXT NOT NULL,
		category TEXT NOT NULL CHECK(category IN ('fulltime', 'pt')),
		primary_role TEXT NOT NULL,
		skills_json TEXT NOT NULL DEFAULT '[]',
		pt_shift_type TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS idx_employees_location
		ON employees(location_id);

	CREATE TABLE IF NOT EXISTS schedules (
		id TEXT PRIMARY KEY,
		location_id TEXT NOT NULL,
		week_start TEXT NOT NULL,
		status TEXT NOT NULL CHECK(status IN ('draft', 'review1', 'review2', 'published')) DEFAULT 'draft',
		sla_deadline_at TEXT,
		created_by TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_schedules_location_week
		ON schedules(location_id, week_start);
	-- Hot path for the SLA sweep.
	CREATE INDEX IF NOT EXISTS idx_schedules_status_deadline
		ON schedules(status, sla_deadline_at)
		WHERE sla_deadline_at IS NOT NULL;

	CREATE TABLE IF NOT EXISTS shifts (
		id TEXT PRIMARY KEY,
		location_id TEXT NOT NULL,
		date TEXT NOT NULL,
		period TEXT NOT NULL CHECK(period IN ('AM', 'PM')),
		min_staff_json TEXT NOT NULL DEFAULT '{}'
	);
	CREATE INDEX IF NOT EXISTS idx_shifts_location_date
		ON shifts(location_id, date);

	CREATE TABLE IF NOT EXISTS assignments (
		id TEXT PRIMARY KEY,
		shift_id TEXT NOT NULL REFERENCES shifts(id) ON DELETE CASCADE,
		employee_id TEXT NOT NULL,
		role TEXT NOT NULL,
		date TEXT NOT NULL,
		period TEXT NOT NULL,
		start_time TEXT NOT NULL,
		end_time TEXT NOT NULL,
		break_minutes INTEGER NOT NULL DEFAULT 120,
		regular_hours TEXT NOT NULL DEFAULT '0',
		overtime_hours TEXT NOT NULL DEFAULT '0',
		locked INTEGER NOT NULL DEFAULT 0,
		notes TEXT NOT NULL DEFAULT ''
	);
	-- At most one assignment per (worker, slot).
	CREATE UNIQUE INDEX IF NOT EXISTS idx_assignments_worker_slot
		ON assignments(employee_id, shift_id);
	CREATE INDEX IF NOT EXISTS idx_assignments_shift
		ON assignments(shift_id);

	CREATE TABLE IF NOT EXISTS reviews (
		id TEXT PRIMARY KEY,
		schedule_id TEXT NOT NULL REFERENCES schedules(id) ON DELETE CASCADE,
		stage TEXT NOT NULL CHECK(stage IN ('supervisor', 'area_manager')),
		status TEXT NOT NULL CHECK(status IN ('pending', 'approved', 'rejected')) DEFAULT 'pending',
		comment TEXT NOT NULL DEFAULT '',
		decided_by TEXT NOT NULL DEFAULT '',
		decided_at TEXT,
		created_at TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_reviews_schedule
		ON reviews(schedule_id, created_at);

	CREATE TABLE IF NOT EXISTS time_off (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		location_id TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		date TEXT NOT NULL,
		status TEXT NOT NULL DEFAULT 'approved'
	);
	CREATE INDEX IF NOT EXISTS idx_time_off_location_date
		ON time_off(location_id, date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// ROSTER STORE
// =============================================================================

// SaveWorker inserts or updates a worker record. Roster management is
// outside the engine, but the API layer and seed data need the writes.
func (s *Store) SaveWorker(ctx context.Context, w scheduling.Worker) error {
	skills, err := json.Marshal(w.Skills)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO employees (id, location_id, name, category, primary_role, skills_json, pt_shift_type)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			location_id = excluded.location_id,
			name = excluded.name,
			category = excluded.category,
			primary_role = excluded.primary_role,
			skills_json = excluded.skills_json,
			pt_shift_type = excluded.pt_shift_type`,
		w.ID, w.LocationID, w.Name, w.Category, w.PrimaryRole, string(skills), w.PTShiftType)
	return err
}

func (s *Store) ListWorkers(ctx context.Context, locationID scheduling.LocationID) ([]scheduling.Worker, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, location_id, name, category, primary_role, skills_json, pt_shift_type
		FROM employees WHERE location_id = ? ORDER BY id`, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var workers []scheduling.Worker
	for rows.Next() {
		w, err := scanWorker(rows)
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	return workers, rows.Err()
}

func (s *Store) GetWorker(ctx context.Context, id scheduling.WorkerID) (*scheduling.Worker, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, location_id, name, category, primary_role, skills_json, pt_shift_type
		FROM employees WHERE id = ?`, id)
	w, err := scanWorker(row)
	if err == sql.ErrNoRows {
		return nil, scheduling.ErrWorkerNotFound
	}
	if err != nil {
		return nil, err
	}
	return &w, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorker(r rowScanner) (scheduling.Worker, error) {
	var w scheduling.Worker
	var skillsJSON string
	if err := r.Scan(&w.ID, &w.LocationID, &w.Name, &w.Category, &w.PrimaryRole, &skillsJSON, &w.PTShiftType); err != nil {
		return w, err
	}
	if err := json.Unmarshal([]byte(skillsJSON), &w.Skills); err != nil {
		return w, fmt.Errorf("decoding skills for %s: %w", w.ID, err)
	}
	return w, nil
}

// =============================================================================
// WEEK STORE
// =============================================================================

func (s *Store) ReplaceWeek(ctx context.Context, locationID scheduling.LocationID, weekStart scheduling.Date, slots []scheduling.ShiftSlot, assignments []scheduling.Assignment) error {
	weekEnd := weekStart.AddDays(6)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Cascade removes the assignments with their slots.
	if _, err := tx.ExecContext(ctx, `
		DELETE FROM shifts WHERE location_id = ? AND date >= ? AND date <= ?`,
		locationID, weekStart.String(), weekEnd.String()); err != nil {
		return err
	}

	for _, slot := range slots {
		minStaff, err := json.Marshal(slot.MinStaff)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO shifts (id, location_id, date, period, min_staff_json)
			VALUES (?, ?, ?, ?, ?)`,
			slot.ID, slot.LocationID, slot.Date.String(), slot.Period, string(minStaff)); err != nil {
			return err
		}
	}

	for _, a := range assignments {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO assignments
				(id, shift_id, employee_id, role, date, period, start_time, end_time,
				 break_minutes, regular_hours, overtime_hours, locked, notes)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			a.ID, a.SlotID, a.WorkerID, a.Role, a.Date.String(), a.Period,
			a.Start.String(), a.End.String(), a.BreakMinutes,
			a.RegularHours.String(), a.OvertimeHours.String(), a.Locked, a.Notes); err != nil {
			return err
		}
	}

	return tx.Commit()
}

func (s *Store) scheduleWeekBounds(ctx context.Context, scheduleID scheduling.ScheduleID) (scheduling.LocationID, scheduling.Date, scheduling.Date, error) {
	schedule, err := s.GetSchedule(ctx, scheduleID)
	if err != nil {
		return "", scheduling.Date{}, scheduling.Date{}, err
	}
	return schedule.LocationID, schedule.WeekStart, schedule.WeekStart.AddDays(6), nil
}

func (s *Store) ListSlots(ctx context.Context, scheduleID scheduling.ScheduleID) ([]scheduling.ShiftSlot, error) {
	locationID, from, to, err := s.scheduleWeekBounds(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, location_id, date, period, min_staff_json
		FROM shifts WHERE location_id = ? AND date >= ? AND date <= ?
		ORDER BY date, period`, locationID, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var slots []scheduling.ShiftSlot
	for rows.Next() {
		var slot scheduling.ShiftSlot
		var dateStr, minStaffJSON string
		if err := rows.Scan(&slot.ID, &slot.LocationID, &dateStr, &slot.Period, &minStaffJSON); err != nil {
			return nil, err
		}
		if slot.Date, err = scheduling.ParseDate(dateStr); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(minStaffJSON), &slot.MinStaff); err != nil {
			return nil, fmt.Errorf("decoding min staff for slot %s: %w", slot.ID, err)
		}
		slots = append(slots, slot)
	}
	return slots, rows.Err()
}

func (s *Store) ListAssignments(ctx context.Context, scheduleID scheduling.ScheduleID) ([]scheduling.Assignment, error) {
	locationID, from, to, err := s.scheduleWeekBounds(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.shift_id, a.employee_id, a.role, a.date, a.period,
		       a.start_time, a.end_time, a.break_minutes,
		       a.regular_hours, a.overtime_hours, a.locked, a.notes
		FROM assignments a
		JOIN shifts sh ON sh.id = a.shift_id
		WHERE sh.location_id = ? AND sh.date >= ? AND sh.date <= ?
		ORDER BY a.date, a.period, a.role`, locationID, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assignments []scheduling.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, err
		}
		assignments = append(assignments, a)
	}
	return assignments, rows.Err()
}

func scanAssignment(r rowScanner) (scheduling.Assignment, error) {
	var a scheduling.Assignment
	var dateStr, startStr, endStr, regularStr, overtimeStr string
	if err := r.Scan(&a.ID, &a.SlotID, &a.WorkerID, &a.Role, &dateStr, &a.Period,
		&startStr, &endStr, &a.BreakMinutes, &regularStr, &overtimeStr, &a.Locked, &a.Notes); err != nil {
		return a, err
	}

	var err error
	if a.Date, err = scheduling.ParseDate(dateStr); err != nil {
		return a, err
	}
	if a.Start, err = scheduling.ParseClock(startStr); err != nil {
		return a, err
	}
	if a.End, err = scheduling.ParseClock(endStr); err != nil {
		return a, err
	}

	// Stored derived hours are a cache; recompute so stale rows never
	// leak into validation.
	split := scheduling.SplitHours(a.Start, a.End, a.BreakMinutes)
	a.RegularHours = split.Regular
	a.OvertimeHours = split.Overtime
	return a, nil
}

// =============================================================================
// SCHEDULE STORE
// =============================================================================

func (s *Store) CreateSchedule(ctx context.Context, sc *scheduling.Schedule) error {
	var deadline any
	if sc.SLADeadline != nil {
		deadline = sc.SLADeadline.UTC().Format(time.RFC3339)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO schedules (id, location_id, week_start, status, sla_deadline_at, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		sc.ID, sc.LocationID, sc.WeekStart.String(), sc.Status, deadline,
		sc.CreatedBy, sc.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

func (s *Store) GetSchedule(ctx context.Context, id scheduling.ScheduleID) (*scheduling.Schedule, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, location_id, week_start, status, sla_deadline_at, created_by, created_at
		FROM schedules WHERE id = ?`, id)

	sc, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, scheduling.ErrScheduleNotFound
	}
	if err != nil {
		return nil, err
	}
	return sc, nil
}

// ListSchedules returns all schedules for a location, newest week first.
func (s *Store) ListSchedules(ctx context.Context, locationID scheduling.LocationID) ([]scheduling.Schedule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, location_id, week_start, status, sla_deadline_at, created_by, created_at
		FROM schedules WHERE location_id = ? ORDER BY week_start DESC`, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []scheduling.Schedule
	for rows.Next() {
		sc, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *sc)
	}
	return schedules, rows.Err()
}

func scanSchedule(r rowScanner) (*scheduling.Schedule, error) {
	var sc scheduling.Schedule
	var weekStart, createdAt string
	var deadline sql.NullString
	if err := r.Scan(&sc.ID, &sc.LocationID, &weekStart, &sc.Status, &deadline, &sc.CreatedBy, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if sc.WeekStart, err = scheduling.ParseDate(weekStart); err != nil {
		return nil, err
	}
	if sc.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, err
	}
	if deadline.Valid {
		t, err := time.Parse(time.RFC3339, deadline.String)
		if err != nil {
			return nil, err
		}
		sc.SLADeadline = &t
	}
	return &sc, nil
}

func (s *Store) SetStatusAndDeadline(ctx context.Context, id scheduling.ScheduleID, from, to scheduling.ScheduleStatus, deadline *time.Time) error {
	var d any
	if deadline != nil {
		d = deadline.UTC().Format(time.RFC3339)
	}

	// The status predicate makes this a compare-and-swap: a concurrent
	// writer that already moved the schedule leaves zero rows here.
	res, err := s.db.ExecContext(ctx, `
		UPDATE schedules SET status = ?, sla_deadline_at = ?
		WHERE id = ? AND status = ?`, to, d, id, from)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM schedules WHERE id = ?`, id).Scan(&exists); err == sql.ErrNoRows {
			return scheduling.ErrScheduleNotFound
		} else if err != nil {
			return err
		}
		return scheduling.ErrConcurrentTransition
	}
	return nil
}

func (s *Store) ListExpired(ctx context.Context, now time.Time) ([]scheduling.Schedule, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, location_id, week_start, status, sla_deadline_at, created_by, created_at
		FROM schedules
		WHERE status IN ('review1', 'review2') AND sla_deadline_at < ?
		ORDER BY sla_deadline_at`, now.UTC().Format(time.RFC3339))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var schedules []scheduling.Schedule
	for rows.Next() {
		sc, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		schedules = append(schedules, *sc)
	}
	return schedules, rows.Err()
}

// =============================================================================
// REVIEW RECORDS
// =============================================================================

func (s *Store) CreateReviewRecord(ctx context.Context, r *scheduling.ReviewRecord) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO reviews (id, schedule_id, stage, status, comment, decided_by, decided_at, created_at)
		VALUES (?, ?, ?, ?, ?, ?, NULL, ?)`,
		r.ID, r.ScheduleID, r.Stage, r.Status, r.Comment, r.DecidedBy,
		r.CreatedAt.UTC().Format(time.RFC3339))
	return err
}

func (s *Store) GetReviewRecord(ctx context.Context, id scheduling.ReviewID) (*scheduling.ReviewRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, schedule_id, stage, status, comment, decided_by, decided_at, created_at
		FROM reviews WHERE id = ?`, id)

	r, err := scanReview(row)
	if err == sql.ErrNoRows {
		return nil, scheduling.ErrReviewNotFound
	}
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Store) DecideReviewRecord(ctx context.Context, id scheduling.ReviewID, status scheduling.ReviewStatus, comment, deciderID string, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE reviews SET status = ?, comment = ?, decided_by = ?, decided_at = ?
		WHERE id = ? AND status = 'pending'`,
		status, comment, deciderID, at.UTC().Format(time.RFC3339), id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		var exists int
		if err := s.db.QueryRowContext(ctx, `SELECT 1 FROM reviews WHERE id = ?`, id).Scan(&exists); err == sql.ErrNoRows {
			return scheduling.ErrReviewNotFound
		} else if err != nil {
			return err
		}
		return scheduling.ErrReviewAlreadyDecided
	}
	return nil
}

func (s *Store) ListReviews(ctx context.Context, scheduleID scheduling.ScheduleID) ([]scheduling.ReviewRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, schedule_id, stage, status, comment, decided_by, decided_at, created_at
		FROM reviews WHERE schedule_id = ? ORDER BY created_at`, scheduleID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reviews []scheduling.ReviewRecord
	for rows.Next() {
		r, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		reviews = append(reviews, *r)
	}
	return reviews, rows.Err()
}

func scanReview(r rowScanner) (*scheduling.ReviewRecord, error) {
	var rec scheduling.ReviewRecord
	var decidedAt sql.NullString
	var createdAt string
	if err := r.Scan(&rec.ID, &rec.ScheduleID, &rec.Stage, &rec.Status, &rec.Comment,
		&rec.DecidedBy, &decidedAt, &createdAt); err != nil {
		return nil, err
	}

	var err error
	if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, err
	}
	if decidedAt.Valid {
		t, err := time.Parse(time.RFC3339, decidedAt.String)
		if err != nil {
			return nil, err
		}
		rec.DecidedAt = &t
	}
	return &rec, nil
}

// =============================================================================
// TIME OFF
// =============================================================================

// SaveTimeOff records an approved day off for a worker.
func (s *Store) SaveTimeOff(ctx context.Context, locationID scheduling.LocationID, day scheduling.TimeOffDay) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO time_off (location_id, employee_id, date, status)
		VALUES (?, ?, ?, 'approved')`,
		locationID, day.WorkerID, day.Date.String())
	return err
}

func (s *Store) ListApprovedTimeOff(ctx context.Context, locationID scheduling.LocationID, from, to scheduling.Date) ([]scheduling.TimeOffDay, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, date FROM time_off
		WHERE location_id = ? AND status = 'approved' AND date >= ? AND date <= ?
		ORDER BY date, employee_id`, locationID, from.String(), to.String())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var days []scheduling.TimeOffDay
	for rows.Next() {
		var day scheduling.TimeOffDay
		var dateStr string
		if err := rows.Scan(&day.WorkerID, &dateStr); err != nil {
			return nil, err
		}
		if day.Date, err = scheduling.ParseDate(dateStr); err != nil {
			return nil, err
		}
		days = append(days, day)
	}
	return days, rows.Err()
}
