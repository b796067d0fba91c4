/*
workflow.go - Approval state machine with SLA deadlines

PURPOSE:
  Advances a schedule through the review pipeline:

      draft --> review1 --> review2 --> published
            (supervisor)  (area_manager)

  Each review stage carries a 24h SLA deadline. A stage is left either by
  an explicit human action or by the SLA sweep, which auto-approves any
  schedule whose deadline has passed.

CONCURRENCY:
  A human decision and a timeout sweep may race on the same schedule.
  Every transition goes through the store's compare-and-swap on
  (id, status): whichever writer loses gets ErrConcurrentTransition and
  applies nothing. At most one transition per schedule per timeout window.

REJECTION:
  A rejected decision is recorded on the review record but does not move
  the schedule. Returning it to draft (or resubmitting) is the caller's
  call; the engine deliberately does not infer intent here.

SEE ALSO:
  - store.go:   SetStatusAndDeadline contract
  - service.go: Validity gate applied before leaving draft
*/
package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// DefaultSLA is the review-stage deadline window.
const DefaultSLA = 24 * time.Hour

// Workflow drives the approval state machine over a ScheduleStore.
type Workflow struct {
	Store ScheduleStore

	// Now is the clock, overridable in tests. Defaults to time.Now.
	Now func() time.Time

	// SLA is the per-stage deadline window. Defaults to DefaultSLA.
	SLA time.Duration
}

func NewWorkflow(store ScheduleStore) *Workflow {
	return &Workflow{Store: store, Now: time.Now, SLA: DefaultSLA}
}

func (wf *Workflow) now() time.Time {
	if wf.Now != nil {
		return wf.Now()
	}
	return time.Now()
}

func (wf *Workflow) sla() time.Duration {
	if wf.SLA > 0 {
		return wf.SLA
	}
	return DefaultSLA
}

// =============================================================================
// SUBMISSION
// =============================================================================

// stageEdge maps a submission stage to its state-machine edge.
func stageEdge(stage ReviewStage) (from, to ScheduleStatus, err error) {
	switch stage {
	case StageSupervisor:
		return StatusDraft, StatusReview1, nil
	case StageAreaManager:
		return StatusReview1, StatusReview2, nil
	default:
		return "", "", fmt.Errorf("%w: %q", ErrUnknownStage, stage)
	}
}

// Submit moves the schedule into the named review stage, arms the SLA
// deadline, and opens a pending review record for the stage.
func (wf *Workflow) Submit(ctx context.Context, scheduleID ScheduleID, stage ReviewStage) error {
	from, to, err := stageEdge(stage)
	if err != nil {
		return err
	}

	schedule, err := wf.Store.GetSchedule(ctx, scheduleID)
	if err != nil {
		return err
	}
	if schedule.Status != from {
		return &InvalidTransitionError{ScheduleID: scheduleID, From: schedule.Status, To: to}
	}

	deadline := wf.now().Add(wf.sla())
	if err := wf.Store.SetStatusAndDeadline(ctx, scheduleID, from, to, &deadline); err != nil {
		return err
	}

	return wf.openReview(ctx, scheduleID, stage)
}

func (wf *Workflow) openReview(ctx context.Context, scheduleID ScheduleID, stage ReviewStage) error {
	return wf.Store.CreateReviewRecord(ctx, &ReviewRecord{
		ID:         ReviewID(uuid.NewString()),
		ScheduleID: scheduleID,
		Stage:      stage,
		Status:     ReviewPending,
		CreatedAt:  wf.now(),
	})
}

// =============================================================================
// DECISIONS
// =============================================================================

// Decide records a decision on a pending review record. An approval
// advances the schedule (supervisor: review1 -> review2 with a fresh
// deadline and a pending area-manager review; area manager: review2 ->
// published with the deadline cleared). A rejection is recorded and
// nothing else moves. A lost race with the SLA sweep returns
// ErrConcurrentTransition with the decision unrecorded.
func (wf *Workflow) Decide(ctx context.Context, reviewID ReviewID, outcome ReviewStatus, comment, deciderID string) (*ReviewRecord, error) {
	if outcome != ReviewApproved && outcome != ReviewRejected {
		return nil, fmt.Errorf("invalid review outcome %q", outcome)
	}

	review, err := wf.Store.GetReviewRecord(ctx, reviewID)
	if err != nil {
		return nil, err
	}
	if review.Status != ReviewPending {
		return nil, fmt.Errorf("%w: review %s is %s", ErrReviewAlreadyDecided, reviewID, review.Status)
	}

	now := wf.now()

	// Advance before recording, so a sweep that already moved the
	// schedule surfaces as a conflict and the decision stays unrecorded.
	if outcome == ReviewApproved {
		if err := wf.advanceOnApproval(ctx, review, now); err != nil {
			return nil, err
		}
	}

	if err := wf.Store.DecideReviewRecord(ctx, reviewID, outcome, comment, deciderID, now); err != nil {
		return nil, err
	}

	review.Status = outcome
	review.Comment = comment
	review.DecidedBy = deciderID
	review.DecidedAt = &now
	return review, nil
}

func (wf *Workflow) advanceOnApproval(ctx context.Context, review *ReviewRecord, now time.Time) error {
	switch review.Stage {
	case StageSupervisor:
		deadline := now.Add(wf.sla())
		if err := wf.Store.SetStatusAndDeadline(ctx, review.ScheduleID, StatusReview1, StatusReview2, &deadline); err != nil {
			return err
		}
		return wf.openReview(ctx, review.ScheduleID, StageAreaManager)
	case StageAreaManager:
		return wf.Store.SetStatusAndDeadline(ctx, review.ScheduleID, StatusReview2, StatusPublished, nil)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStage, review.Stage)
	}
}

// =============================================================================
// SLA SWEEP
// =============================================================================

// RunSlaSweep auto-approves every schedule whose review deadline is past
// now, and returns the IDs it advanced. A schedule in review1 moves to
// review2 with a deadline exactly one SLA window after now; a schedule
// in review2 is published with its deadline cleared, so a follow-up
// sweep has nothing left to do. Schedules that lose the CAS to a
// concurrent human decision are skipped, not errors.
func (wf *Workflow) RunSlaSweep(ctx context.Context, now time.Time) ([]ScheduleID, error) {
	expired, err := wf.Store.ListExpired(ctx, now)
	if err != nil {
		return nil, err
	}

	var advanced []ScheduleID
	for _, s := range expired {
		switch s.Status {
		case StatusReview1:
			deadline := now.Add(wf.sla())
			err = wf.Store.SetStatusAndDeadline(ctx, s.ID, StatusReview1, StatusReview2, &deadline)
			if err == nil {
				err = wf.openReview(ctx, s.ID, StageAreaManager)
			}
		case StatusReview2:
			err = wf.Store.SetStatusAndDeadline(ctx, s.ID, StatusReview2, StatusPublished, nil)
		default:
			continue
		}

		if err != nil {
			if IsRetryable(err) {
				// Lost to a concurrent decision; that writer owns the
				// transition for this window.
				continue
			}
			return advanced, err
		}
		advanced = append(advanced, s.ID)
	}
	return advanced, nil
}
