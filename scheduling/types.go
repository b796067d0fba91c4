/*
Package scheduling provides the core shift-scheduling engine.

PURPOSE:
  This package contains the domain types and algorithms for building and
  validating a one-week shift schedule for a single store location:
  labor-rule validation, greedy auto-assignment, and the staged approval
  workflow with SLA deadlines.

KEY CONCEPTS IN THIS FILE (types.go):
  - Worker:       A roster member with a category, skills, and (for
                  part-timers) an optional shift-type restriction
  - ShiftSlot:    One half-day (AM/PM) period for one date
  - Assignment:   A worker bound to a slot with concrete hours and a role
  - Schedule:     The full week aggregate carrying approval status
  - ReviewRecord: One entry per review stage entered

DESIGN PRINCIPLES:
  1. Purity: validation and planning are side-effect-free functions over
     snapshots; all persistence goes through the interfaces in store.go
  2. Precision: hour arithmetic uses decimal.Decimal, never float64
  3. Type Safety: strong typing for IDs prevents mixing worker/slot/schedule IDs
  4. Derived data: regular/overtime hours on an Assignment are computed
     from (start, end, break), never authoritative input

USAGE:
  engine := scheduling.NewEngine(scheduling.DefaultRuleConfig())
  result := engine.ValidateWeek(week)
  for _, v := range result.Violations {
      fmt.Println(v.Message)
  }

SEE ALSO:
  - hours.go:    Work-hour splitting and peak classification
  - rules.go:    Labor-policy validation
  - autoplan.go: Greedy draft generation
  - workflow.go: Approval state machine and SLA sweep
*/
package scheduling

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type WorkerID string
type SlotID string
type AssignmentID string
type ScheduleID string
type ReviewID string
type LocationID string

// =============================================================================
// WORKER - Roster member (read-only to the engine)
// =============================================================================

// Category distinguishes full-time staff from part-timers. The wire values
// match the employee records this engine is fed from.
type Category string

const (
	CategoryFullTime Category = "fulltime"
	CategoryPartTime Category = "pt"
)

// Role is a floor position. The fixed set below is the complete role list
// for a location; FillOrder gives the priority used by the auto-planner.
type Role string

const (
	RoleCashier    Role = "cashier"
	RoleReception  Role = "reception"
	RoleTeaService Role = "tea_service"
	RoleRunner     Role = "runner"
	RolePlating    Role = "plating"
	RoleClearing   Role = "clearing"
	RoleBeverage   Role = "beverage"
	RoleControl    Role = "control"

	// RoleAll is a wildcard skill tag meaning "can cover any position".
	RoleAll Role = "all"
)

// FillOrder is the fixed priority order the auto-planner walks when
// filling a slot: lowest priority number first.
var FillOrder = []Role{
	RoleCashier,
	RoleReception,
	RoleTeaService,
	RoleRunner,
	RolePlating,
	RoleClearing,
	RoleBeverage,
	RoleControl,
}

// PTShiftType restricts which slots a part-time worker may take.
// Full-time workers never carry one.
type PTShiftType string

const (
	PTWeekdayEvening PTShiftType = "weekday_pm"
	PTWeekendEvening PTShiftType = "weekend_pm"
	PTFullDay        PTShiftType = "full_day"
)

// Worker is a roster member. Skills are advisory metadata: a worker
// without the role's skill tag is flagged, not blocked.
type Worker struct {
	ID          WorkerID
	LocationID  LocationID
	Name        string
	Category    Category
	PrimaryRole Role
	Skills      []Role

	// PTShiftType is only meaningful for CategoryPartTime workers.
	// Empty means unrestricted.
	PTShiftType PTShiftType
}

// HasSkill reports whether the worker lists the role among their skills.
// An empty skill list is treated as "assumed capable" and the RoleAll
// wildcard covers every role.
func (w Worker) HasSkill(role Role) bool {
	if len(w.Skills) == 0 {
		return true
	}
	for _, s := range w.Skills {
		if s == role || s == RoleAll {
			return true
		}
	}
	return false
}

// =============================================================================
// SHIFT SLOT - One half-day period for one date
// =============================================================================

// SlotPeriod is the half-day period of a slot.
type SlotPeriod string

const (
	PeriodAM SlotPeriod = "AM"
	PeriodPM SlotPeriod = "PM"
)

// ShiftSlot is the atomic unit of scheduling: one (date, period) cell at
// one location. Immutable once generated for a week.
type ShiftSlot struct {
	ID         SlotID
	LocationID LocationID
	Date       Date
	Period     SlotPeriod

	// MinStaff holds per-role minimum headcounts for this slot. Roles
	// absent from the map fall back to the engine's staffing defaults.
	MinStaff map[Role]int
}

// =============================================================================
// ASSIGNMENT - A worker bound to a slot
// =============================================================================

// Assignment binds one worker to one shift slot. Date and Period are
// denormalized from the owning slot so the validators can operate on an
// assignment list without slot lookups.
type Assignment struct {
	ID       AssignmentID
	SlotID   SlotID
	WorkerID WorkerID
	Role     Role

	Date   Date
	Period SlotPeriod

	Start        ClockTime
	End          ClockTime
	BreakMinutes int

	// Derived, recomputed from (Start, End, BreakMinutes). Never input.
	RegularHours  decimal.Decimal
	OvertimeHours decimal.Decimal

	Locked bool
	Notes  string
}

// WorkedHours returns the recomputed hour split for this assignment.
func (a Assignment) WorkedHours() HourSplit {
	return SplitHours(a.Start, a.End, a.BreakMinutes)
}

// =============================================================================
// SCHEDULE - The week aggregate
// =============================================================================

// ScheduleStatus is the approval lifecycle state. Draft is initial,
// published is terminal. There is no rejected terminal state: a rejection
// is recorded on the review and the schedule stays where it is until the
// caller resubmits.
type ScheduleStatus string

const (
	StatusDraft     ScheduleStatus = "draft"
	StatusReview1   ScheduleStatus = "review1"
	StatusReview2   ScheduleStatus = "review2"
	StatusPublished ScheduleStatus = "published"
)

// InReview reports whether the status is one of the SLA-bounded review stages.
func (s ScheduleStatus) InReview() bool {
	return s == StatusReview1 || s == StatusReview2
}

// Schedule is the approval-bearing record for one location and one
// calendar week (week start = Monday).
type Schedule struct {
	ID         ScheduleID
	LocationID LocationID
	WeekStart  Date
	Status     ScheduleStatus

	// SLADeadline is set while Status is a review stage, nil otherwise.
	SLADeadline *time.Time

	CreatedBy string
	CreatedAt time.Time
}

// WeekView is the full snapshot ValidateWeek operates on: the schedule
// plus everything it owns or references.
type WeekView struct {
	Schedule    Schedule
	Slots       []ShiftSlot
	Assignments []Assignment
	Workers     []Worker
}

// WorkerByID returns the worker with the given ID, or false.
func (w WeekView) WorkerByID(id WorkerID) (Worker, bool) {
	for _, worker := range w.Workers {
		if worker.ID == id {
			return worker, true
		}
	}
	return Worker{}, false
}

// =============================================================================
// REVIEW RECORD - One per review stage entered
// =============================================================================

// ReviewStage names a step in the approval pipeline.
type ReviewStage string

const (
	StageSupervisor  ReviewStage = "supervisor"
	StageAreaManager ReviewStage = "area_manager"
)

// ReviewStatus is the decision state of a single review record.
type ReviewStatus string

const (
	ReviewPending  ReviewStatus = "pending"
	ReviewApproved ReviewStatus = "approved"
	ReviewRejected ReviewStatus = "rejected"
)

// ReviewRecord tracks one review stage for a schedule. A schedule may
// accumulate several records across resubmissions.
type ReviewRecord struct {
	ID         ReviewID
	ScheduleID ScheduleID
	Stage      ReviewStage
	Status     ReviewStatus
	Comment    string
	DecidedBy  string
	DecidedAt  *time.Time
	CreatedAt  time.Time
}

// TimeOffDay marks one approved day off for one worker. Consumed by the
// planner as an availability exclusion.
type TimeOffDay struct {
	WorkerID WorkerID
	Date     Date
}
