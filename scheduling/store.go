/*
store.go - Persistence interfaces for the scheduling engine

PURPOSE:
  Defines the boundary between the engine and its storage collaborators.
  The engine treats every store call as a synchronous operation with an
  explicit error outcome; it performs no hidden retries (retry policy, if
  any, belongs to the store implementation).

KEY INTERFACES:
  RosterStore:   Worker lookup (read-only to the engine)
  WeekStore:     Slots and assignments; ReplaceWeek is an atomic overwrite
  ScheduleStore: Schedule lifecycle with a conditional status update
  TimeOffStore:  Approved-leave exclusions for the planner

ATOMICITY CONTRACTS:
  ReplaceWeek discards and replaces a location's slots and assignments
  for one week in a single transaction: concurrent readers see either
  the old complete set or the new complete set, never a partial one.

  SetStatusAndDeadline is a compare-and-swap on (id, status). When the
  schedule is no longer in the expected source status the update must
  fail with ErrConcurrentTransition and change nothing. This is the
  mechanism that keeps a human decision and an SLA sweep from both
  applying a transition from the same state.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go:     Production SQLite
  - scheduling/store/memory.go: In-memory for testing
*/
package scheduling

import (
	"context"
	"time"
)

// =============================================================================
// ROSTER STORE
// =============================================================================

// RosterStore provides worker records. The engine never writes workers.
type RosterStore interface {
	// ListWorkers returns every worker at the location.
	ListWorkers(ctx context.Context, locationID LocationID) ([]Worker, error)

	// GetWorker returns one worker, or ErrWorkerNotFound.
	GetWorker(ctx context.Context, id WorkerID) (*Worker, error)
}

// =============================================================================
// WEEK STORE - Slots and assignments
// =============================================================================

type WeekStore interface {
	// ReplaceWeek atomically discards the location's slots and
	// assignments for the week and installs the given ones. Full
	// overwrite, never a merge.
	ReplaceWeek(ctx context.Context, locationID LocationID, weekStart Date, slots []ShiftSlot, assignments []Assignment) error

	// ListSlots returns the slots owned by the schedule, date-ordered.
	ListSlots(ctx context.Context, scheduleID ScheduleID) ([]ShiftSlot, error)

	// ListAssignments returns the assignments owned by the schedule.
	ListAssignments(ctx context.Context, scheduleID ScheduleID) ([]Assignment, error)
}

// =============================================================================
// SCHEDULE STORE - Lifecycle and review records
// =============================================================================

type ScheduleStore interface {
	CreateSchedule(ctx context.Context, s *Schedule) error

	// GetSchedule returns the schedule, or ErrScheduleNotFound.
	GetSchedule(ctx context.Context, id ScheduleID) (*Schedule, error)

	// SetStatusAndDeadline conditionally moves the schedule from the
	// expected status to the new one, setting (or clearing, when nil)
	// the SLA deadline. Fails with ErrConcurrentTransition when the
	// schedule is not in the expected status.
	SetStatusAndDeadline(ctx context.Context, id ScheduleID, from, to ScheduleStatus, deadline *time.Time) error

	// ListExpired returns schedules sitting in a review status whose
	// SLA deadline is strictly before now.
	ListExpired(ctx context.Context, now time.Time) ([]Schedule, error)

	CreateReviewRecord(ctx context.Context, r *ReviewRecord) error

	// GetReviewRecord returns the review record, or ErrReviewNotFound.
	GetReviewRecord(ctx context.Context, id ReviewID) (*ReviewRecord, error)

	// DecideReviewRecord records a decision on a pending review. Fails
	// with ErrReviewAlreadyDecided when the record is not pending.
	DecideReviewRecord(ctx context.Context, id ReviewID, status ReviewStatus, comment, deciderID string, at time.Time) error

	// ListReviews returns the schedule's review records, oldest first.
	ListReviews(ctx context.Context, scheduleID ScheduleID) ([]ReviewRecord, error)
}

// =============================================================================
// TIME-OFF STORE
// =============================================================================

type TimeOffStore interface {
	// ListApprovedTimeOff returns (worker, date) pairs with approved
	// leave inside [from, to].
	ListApprovedTimeOff(ctx context.Context, locationID LocationID, from, to Date) ([]TimeOffDay, error)
}
