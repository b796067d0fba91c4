/*
service.go - Orchestration over the stores

PURPOSE:
  Wires the pure engine (rules, planner, workflow) to the storage
  collaborators. This is the surface the API layer calls: it loads
  snapshots, runs the computations, and persists results. Nothing in
  here contains scheduling logic of its own.

DRAFT REGENERATION:
  GenerateDraft is a full overwrite of the location's week, delegated to
  the store's atomic ReplaceWeek. Regenerating discards every existing
  slot and assignment for that week; there is no merge.

SUBMISSION GATE:
  A schedule may hold violations while it is edited in draft. Leaving
  draft is the one gate: Submit to the supervisor stage re-validates the
  whole week and refuses with ScheduleInvalidError while violations
  remain. Warnings never block.
*/
package scheduling

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Service exposes the engine's operations over persistent state.
type Service struct {
	Roster    RosterStore
	Weeks     WeekStore
	Schedules ScheduleStore
	TimeOff   TimeOffStore

	Engine   *Engine
	Planner  *Planner
	Workflow *Workflow
}

// NewService assembles a service with the default rule configuration.
func NewService(roster RosterStore, weeks WeekStore, schedules ScheduleStore, timeOff TimeOffStore) *Service {
	engine := NewEngine(DefaultRuleConfig())
	return &Service{
		Roster:    roster,
		Weeks:     weeks,
		Schedules: schedules,
		TimeOff:   timeOff,
		Engine:    engine,
		Planner:   NewPlanner(engine),
		Workflow:  NewWorkflow(schedules),
	}
}

// =============================================================================
// SCHEDULE LIFECYCLE
// =============================================================================

// CreateSchedule opens an empty draft schedule for the location/week.
// weekStart is normalized to its Monday.
func (s *Service) CreateSchedule(ctx context.Context, locationID LocationID, weekStart Date, createdBy string) (*Schedule, error) {
	schedule := &Schedule{
		ID:         ScheduleID(uuid.NewString()),
		LocationID: locationID,
		WeekStart:  WeekOf(weekStart),
		Status:     StatusDraft,
		CreatedBy:  createdBy,
		CreatedAt:  time.Now(),
	}
	if err := s.Schedules.CreateSchedule(ctx, schedule); err != nil {
		return nil, err
	}
	return schedule, nil
}

// =============================================================================
// DRAFT GENERATION
// =============================================================================

// GenerateDraft builds a fresh draft for the schedule's week and
// atomically replaces whatever the week held before. The draft is
// persisted and returned even when it leaves staffing gaps; gaps are
// the validator's business.
func (s *Service) GenerateDraft(ctx context.Context, scheduleID ScheduleID) (*DraftResult, error) {
	schedule, err := s.Schedules.GetSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}

	workers, err := s.Roster.ListWorkers(ctx, schedule.LocationID)
	if err != nil {
		return nil, fmt.Errorf("listing workers: %w", err)
	}

	weekEnd := schedule.WeekStart.AddDays(6)
	timeOff, err := s.TimeOff.ListApprovedTimeOff(ctx, schedule.LocationID, schedule.WeekStart, weekEnd)
	if err != nil {
		return nil, fmt.Errorf("listing time off: %w", err)
	}

	draft := s.Planner.GenerateDraft(workers, schedule.LocationID, schedule.WeekStart, DefaultStaffingTemplate(), timeOff)

	if err := s.Weeks.ReplaceWeek(ctx, schedule.LocationID, schedule.WeekStart, draft.Slots, draft.Assignments); err != nil {
		return nil, fmt.Errorf("replacing week: %w", err)
	}
	return &draft, nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// LoadWeek assembles the full validation snapshot for a schedule.
func (s *Service) LoadWeek(ctx context.Context, scheduleID ScheduleID) (*WeekView, error) {
	schedule, err := s.Schedules.GetSchedule(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	slots, err := s.Weeks.ListSlots(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("listing slots: %w", err)
	}
	assignments, err := s.Weeks.ListAssignments(ctx, scheduleID)
	if err != nil {
		return nil, fmt.Errorf("listing assignments: %w", err)
	}
	workers, err := s.Roster.ListWorkers(ctx, schedule.LocationID)
	if err != nil {
		return nil, fmt.Errorf("listing workers: %w", err)
	}
	return &WeekView{
		Schedule:    *schedule,
		Slots:       slots,
		Assignments: assignments,
		Workers:     workers,
	}, nil
}

// ValidateWeek re-validates the schedule's current week.
func (s *Service) ValidateWeek(ctx context.Context, scheduleID ScheduleID) (*ValidationResult, error) {
	week, err := s.LoadWeek(ctx, scheduleID)
	if err != nil {
		return nil, err
	}
	result := s.Engine.ValidateWeek(*week)
	return &result, nil
}

// =============================================================================
// APPROVAL
// =============================================================================

// Submit pushes the schedule into the named review stage. Leaving draft
// requires a clean validation: open violations refuse the submission
// with a ScheduleInvalidError carrying them.
func (s *Service) Submit(ctx context.Context, scheduleID ScheduleID, stage ReviewStage) error {
	if stage == StageSupervisor {
		result, err := s.ValidateWeek(ctx, scheduleID)
		if err != nil {
			return err
		}
		if !result.Valid {
			return &ScheduleInvalidError{ScheduleID: scheduleID, Violations: result.Violations}
		}
	}
	return s.Workflow.Submit(ctx, scheduleID, stage)
}

// Decide records a decision on a pending review record.
func (s *Service) Decide(ctx context.Context, reviewID ReviewID, outcome ReviewStatus, comment, deciderID string) (*ReviewRecord, error) {
	return s.Workflow.Decide(ctx, reviewID, outcome, comment, deciderID)
}

// RunSlaSweep advances every schedule whose review deadline has passed.
func (s *Service) RunSlaSweep(ctx context.Context, now time.Time) ([]ScheduleID, error) {
	return s.Workflow.RunSlaSweep(ctx, now)
}
