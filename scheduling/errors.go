/*
errors.go - Centralized error types for the scheduling engine

PURPOSE:
  All error types in one place for consistency and discoverability.
  Policy breaches are NOT errors: the rules engine returns violation and
  warning lists as data, and a schedule is allowed to exist in an invalid
  state while it is being edited. Errors here cover lifecycle misuse,
  concurrency conflicts, and missing records.

ERROR CATEGORIES:
  1. Not-found errors    - Missing schedules, workers, reviews
  2. Transition errors   - Invalid approval-workflow requests
  3. Concurrency errors  - CAS conflicts between sweeps and decisions

USAGE:
  if errors.Is(err, scheduling.ErrConcurrentTransition) {
      // expected under concurrency: re-read state, maybe retry
  }
*/
package scheduling

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	// ErrScheduleNotFound is returned when a referenced schedule doesn't exist.
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrWorkerNotFound is returned when a referenced worker doesn't exist.
	ErrWorkerNotFound = errors.New("worker not found")

	// ErrReviewNotFound is returned when a referenced review record doesn't exist.
	ErrReviewNotFound = errors.New("review record not found")

	// ErrUnknownStage is returned when a submission names a review stage
	// that is not part of the pipeline.
	ErrUnknownStage = errors.New("unknown review stage")

	// ErrReviewAlreadyDecided is returned when deciding a review record
	// that already carries a decision. Callers must not retry blindly.
	ErrReviewAlreadyDecided = errors.New("review already decided")

	// ErrInvalidTransition is returned when a requested status change is
	// not an edge of the approval state machine.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrConcurrentTransition is returned when a conditional status update
	// loses a race (e.g. a human decision landing during an SLA sweep).
	// This is expected under concurrency, not a system fault: re-read the
	// current state before deciding whether to retry.
	ErrConcurrentTransition = errors.New("concurrent status transition")

	// ErrScheduleNotValid is returned when a schedule with open violations
	// is submitted out of draft. Violations are carried on the wrapping
	// ScheduleInvalidError.
	ErrScheduleNotValid = errors.New("schedule has unresolved violations")
)

// =============================================================================
// STRUCTURED ERRORS - Carry additional context
// =============================================================================

// InvalidTransitionError reports a rejected state-machine edge.
type InvalidTransitionError struct {
	ScheduleID ScheduleID
	From       ScheduleStatus
	To         ScheduleStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("schedule %s: cannot move from %s to %s", e.ScheduleID, e.From, e.To)
}

func (e *InvalidTransitionError) Unwrap() error { return ErrInvalidTransition }

// ScheduleInvalidError carries the violations that blocked a submission.
type ScheduleInvalidError struct {
	ScheduleID ScheduleID
	Violations []Issue
}

func (e *ScheduleInvalidError) Error() string {
	return fmt.Sprintf("schedule %s: %d unresolved violations", e.ScheduleID, len(e.Violations))
}

func (e *ScheduleInvalidError) Unwrap() error { return ErrScheduleNotValid }

// =============================================================================
// ERROR HELPERS
// =============================================================================

// IsRetryable returns true if the error might succeed on retry after
// re-reading current state.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConcurrentTransition)
}

// IsClientError returns true if the error is due to invalid caller input.
func IsClientError(err error) bool {
	return errors.Is(err, ErrUnknownStage) ||
		errors.Is(err, ErrReviewAlreadyDecided) ||
		errors.Is(err, ErrInvalidTransition) ||
		errors.Is(err, ErrScheduleNotValid)
}

// IsNotFound returns true if the error indicates a missing record.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrScheduleNotFound) ||
		errors.Is(err, ErrWorkerNotFound) ||
		errors.Is(err, ErrReviewNotFound)
}
