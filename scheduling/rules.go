/*
rules.go - Labor-policy rules engine

PURPOSE:
  Validates a proposed assignment, or a whole week's schedule, against
  labor rules, staffing minimums, and fairness heuristics. The engine is
  a pure function over its inputs: it never mutates state, and two runs
  over the same snapshot return identical results.

VIOLATIONS vs WARNINGS:
  Violation = hard policy breach (hour ceilings, consecutive-day limits,
  break floor, staffing shortfall). The schedule should not advance.
  Warning = advisory (skill mismatch, below-standard break, fairness
  skew). Surfaced, never blocking.

CONFIGURATION:
  All thresholds live on RuleConfig, passed in explicitly. There is no
  process-wide rule state; a validation run is reproducible given only
  the config snapshot and the schedule data.

PT SHIFT TYPES:
  Part-time eligibility is driven by a named rule table. Note the
  asymmetry carried over from the store's operating policy: weekday_pm is
  barred from weekends via its own WeekdayOnly flag even though it is not
  weekend-flagged. Correcting that policy is a table edit, not an engine
  change.

SEE ALSO:
  - hours.go:    SplitHours used for every hour check
  - autoplan.go: Consumes IsEligible as its availability predicate
*/
package scheduling

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// RULE CONFIGURATION
// =============================================================================

// CategoryLimits are the per-category work ceilings.
type CategoryLimits struct {
	MaxDailyHours      int
	MaxConsecutiveDays int
	RegularHours       int
}

// PTShiftRule describes which slots one part-time shift type may take.
type PTShiftRule struct {
	Description    string
	AllowedPeriods []SlotPeriod
	WeekendOnly    bool

	// WeekdayOnly bars the type from weekend slots. Kept as an explicit
	// table flag so the weekday_pm special case stays editable policy.
	WeekdayOnly bool
}

// RuleConfig is the complete labor-policy configuration. Construct with
// DefaultRuleConfig and override fields as needed; the engine takes it
// by value and never modifies it.
type RuleConfig struct {
	Limits       map[Category]CategoryLimits
	PTShiftTypes map[PTShiftType]PTShiftRule
	MealWindows  map[SlotPeriod]MealWindow

	// Break floor and standard, in minutes. Below the floor is a
	// violation; below the standard is a warning (the shortfall counts
	// toward overtime).
	MinimumBreak  int
	StandardBreak int

	// MinStaffing is the default per-role headcount floor for every
	// (date, period) cell. A slot's own MinStaff entries override it.
	MinStaffing map[Role]int

	// FairnessSpread is the max allowed gap between the highest and
	// lowest weekend (or evening) shift ratio across workers before a
	// fairness warning fires.
	FairnessSpread float64

	// WeeklyDayCap is the day count multiplied with the daily hour
	// ceiling to form the weekly hour ceiling. Deliberately simple.
	WeeklyDayCap int
}

// DefaultRuleConfig returns the store's standard operating policy.
func DefaultRuleConfig() RuleConfig {
	return RuleConfig{
		Limits: map[Category]CategoryLimits{
			CategoryFullTime: {MaxDailyHours: 12, MaxConsecutiveDays: 5, RegularHours: 8},
			CategoryPartTime: {MaxDailyHours: 10, MaxConsecutiveDays: 6, RegularHours: 8},
		},
		PTShiftTypes: map[PTShiftType]PTShiftRule{
			PTWeekdayEvening: {
				Description:    "weekday evening service (18:00-22:00)",
				AllowedPeriods: []SlotPeriod{PeriodPM},
				WeekdayOnly:    true,
			},
			PTWeekendEvening: {
				Description:    "weekend evening service (18:00-22:00)",
				AllowedPeriods: []SlotPeriod{PeriodPM},
				WeekendOnly:    true,
			},
			PTFullDay: {
				Description:    "full day (full-time hours)",
				AllowedPeriods: []SlotPeriod{PeriodAM, PeriodPM},
			},
		},
		MealWindows:   DefaultMealWindows(),
		MinimumBreak:  30,
		StandardBreak: 120,
		MinStaffing: map[Role]int{
			RoleCashier:    1,
			RoleReception:  1,
			RoleTeaService: 1,
			RoleRunner:     1,
			RolePlating:    1,
			RoleClearing:   1,
			RoleBeverage:   1,
			RoleControl:    1,
		},
		FairnessSpread: 0.3,
		WeeklyDayCap:   6,
	}
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Issue is one violation or warning. Code is stable and machine-readable,
// Message is for humans.
type Issue struct {
	Code     string
	Message  string
	WorkerID WorkerID
	Date     Date
	Period   SlotPeriod
	Role     Role
}

// Issue codes.
const (
	CodeDailyHours      = "daily_hours_exceeded"
	CodeWeeklyHours     = "weekly_hours_exceeded"
	CodeConsecutiveDays = "consecutive_days_exceeded"
	CodeBreakMinimum    = "break_below_minimum"
	CodeBreakStandard   = "break_below_standard"
	CodeSkillMismatch   = "skill_mismatch"
	CodeUnderstaffed    = "understaffed"
	CodeFairnessWeekend = "fairness_weekend_skew"
	CodeFairnessEvening = "fairness_evening_skew"
)

// ValidationResult aggregates the outcome of a validation pass.
// Valid is true when there are no violations; warnings never block.
type ValidationResult struct {
	Valid      bool
	Violations []Issue
	Warnings   []Issue
}

func newValidationResult(violations, warnings []Issue) ValidationResult {
	return ValidationResult{
		Valid:      len(violations) == 0,
		Violations: violations,
		Warnings:   warnings,
	}
}

// =============================================================================
// ENGINE
// =============================================================================

// Engine validates assignments and schedules against a RuleConfig
// snapshot. Safe for concurrent use; it holds no mutable state.
type Engine struct {
	cfg RuleConfig
}

func NewEngine(cfg RuleConfig) *Engine {
	return &Engine{cfg: cfg}
}

// Config returns the engine's configuration snapshot.
func (e *Engine) Config() RuleConfig { return e.cfg }

func (e *Engine) limitsFor(c Category) CategoryLimits {
	if l, ok := e.cfg.Limits[c]; ok {
		return l
	}
	return e.cfg.Limits[CategoryFullTime]
}

// =============================================================================
// SINGLE-ASSIGNMENT VALIDATION
// =============================================================================

// ValidateAssignment checks one proposed assignment for a worker against
// that worker's existing assignments. The existing list is only consulted
// for same-worker consecutive-day counting; other workers' assignments
// are irrelevant here.
func (e *Engine) ValidateAssignment(a Assignment, w Worker, existing []Assignment) ValidationResult {
	var violations, warnings []Issue
	limits := e.limitsFor(w.Category)

	// Daily hour ceiling by category.
	hours := a.WorkedHours()
	if hours.Total.GreaterThan(decimal.NewFromInt(int64(limits.MaxDailyHours))) {
		violations = append(violations, Issue{
			Code:     CodeDailyHours,
			Message:  fmt.Sprintf("%s works %sh on %s, over the %dh daily limit", w.Name, hours.Total, a.Date, limits.MaxDailyHours),
			WorkerID: w.ID,
			Date:     a.Date,
		})
	}

	// Consecutive-day count around the target date.
	run := consecutiveDaysAround(a.Date, w.ID, existing)
	if run >= limits.MaxConsecutiveDays {
		violations = append(violations, Issue{
			Code:     CodeConsecutiveDays,
			Message:  fmt.Sprintf("%s would reach %d consecutive days, limit is %d", w.Name, run, limits.MaxConsecutiveDays),
			WorkerID: w.ID,
			Date:     a.Date,
		})
	}

	// Break floor and standard.
	if a.BreakMinutes < e.cfg.MinimumBreak {
		violations = append(violations, Issue{
			Code:     CodeBreakMinimum,
			Message:  fmt.Sprintf("%s has a %dmin break, floor is %dmin", w.Name, a.BreakMinutes, e.cfg.MinimumBreak),
			WorkerID: w.ID,
			Date:     a.Date,
		})
	} else if a.BreakMinutes < e.cfg.StandardBreak {
		warnings = append(warnings, Issue{
			Code:     CodeBreakStandard,
			Message:  fmt.Sprintf("%s has a %dmin break, below the %dmin standard; shortfall counts toward overtime", w.Name, a.BreakMinutes, e.cfg.StandardBreak),
			WorkerID: w.ID,
			Date:     a.Date,
		})
	}

	// Skills are advisory: flag, don't block.
	if !w.HasSkill(a.Role) {
		warnings = append(warnings, Issue{
			Code:     CodeSkillMismatch,
			Message:  fmt.Sprintf("%s may lack the skills for the %s position", w.Name, a.Role),
			WorkerID: w.ID,
			Date:     a.Date,
			Role:     a.Role,
		})
	}

	return newValidationResult(violations, warnings)
}

// consecutiveDaysAround counts the run of worked days through date,
// scanning up to seven days back and forward through the worker's
// existing assignments. The target date itself counts as one.
func consecutiveDaysAround(date Date, workerID WorkerID, existing []Assignment) int {
	worked := make(map[string]bool)
	for _, a := range existing {
		if a.WorkerID == workerID {
			worked[a.Date.String()] = true
		}
	}

	run := 1
	for i := 1; i <= 7; i++ {
		if !worked[date.AddDays(-i).String()] {
			break
		}
		run++
	}
	for i := 1; i <= 7; i++ {
		if !worked[date.AddDays(i).String()] {
			break
		}
		run++
	}
	return run
}

// =============================================================================
// FULL-WEEK VALIDATION
// =============================================================================

// ValidateWeek validates a complete week snapshot: per-worker hour totals
// and consecutive runs, per-cell staffing floors, and fairness spread.
// Pure: the snapshot is never modified.
func (e *Engine) ValidateWeek(week WeekView) ValidationResult {
	var violations, warnings []Issue

	violations = append(violations, e.checkWorkerTotals(week)...)
	violations = append(violations, e.checkStaffing(week)...)
	warnings = append(warnings, e.checkFairness(week)...)

	return newValidationResult(violations, warnings)
}

func (e *Engine) checkWorkerTotals(week WeekView) []Issue {
	var issues []Issue

	byWorker := make(map[WorkerID][]Assignment)
	for _, a := range week.Assignments {
		byWorker[a.WorkerID] = append(byWorker[a.WorkerID], a)
	}

	// Stable worker order keeps repeated runs byte-identical.
	ids := make([]WorkerID, 0, len(byWorker))
	for id := range byWorker {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	for _, id := range ids {
		worker, ok := week.WorkerByID(id)
		if !ok {
			continue
		}
		limits := e.limitsFor(worker.Category)
		assignments := byWorker[id]

		total := decimal.Zero
		for _, a := range assignments {
			total = total.Add(a.WorkedHours().Total)
		}

		weeklyCap := decimal.NewFromInt(int64(limits.MaxDailyHours * e.cfg.WeeklyDayCap))
		if total.GreaterThan(weeklyCap) {
			issues = append(issues, Issue{
				Code:     CodeWeeklyHours,
				Message:  fmt.Sprintf("%s works %sh this week, over the %sh ceiling", worker.Name, total, weeklyCap),
				WorkerID: id,
			})
		}

		if run := maxConsecutiveRun(assignments); run > limits.MaxConsecutiveDays {
			issues = append(issues, Issue{
				Code:     CodeConsecutiveDays,
				Message:  fmt.Sprintf("%s works %d consecutive days, limit is %d", worker.Name, run, limits.MaxConsecutiveDays),
				WorkerID: id,
			})
		}
	}
	return issues
}

// maxConsecutiveRun finds the longest run of adjacent worked dates.
// AM and PM of the same date count as one day.
func maxConsecutiveRun(assignments []Assignment) int {
	if len(assignments) == 0 {
		return 0
	}

	seen := make(map[string]Date)
	for _, a := range assignments {
		seen[a.Date.String()] = a.Date
	}
	dates := make([]Date, 0, len(seen))
	for _, d := range seen {
		dates = append(dates, d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

	longest, current := 1, 1
	for i := 1; i < len(dates); i++ {
		if DaysBetween(dates[i-1], dates[i]) == 1 {
			current++
			if current > longest {
				longest = current
			}
		} else {
			current = 1
		}
	}
	return longest
}

func (e *Engine) checkStaffing(week WeekView) []Issue {
	var issues []Issue

	counts := make(map[SlotID]map[Role]int)
	for _, a := range week.Assignments {
		if counts[a.SlotID] == nil {
			counts[a.SlotID] = make(map[Role]int)
		}
		counts[a.SlotID][a.Role]++
	}

	for _, slot := range week.Slots {
		for _, role := range FillOrder {
			min := e.cfg.MinStaffing[role]
			if override, ok := slot.MinStaff[role]; ok {
				min = override
			}
			actual := counts[slot.ID][role]
			if actual < min {
				issues = append(issues, Issue{
					Code:    CodeUnderstaffed,
					Message: fmt.Sprintf("%s %s: %s needs %d, has %d", slot.Date, slot.Period, role, min, actual),
					Date:    slot.Date,
					Period:  slot.Period,
					Role:    role,
				})
			}
		}
	}
	return issues
}

// checkFairness compares each worker's weekend and evening shift ratios.
// Only meaningful with two or more assigned workers.
func (e *Engine) checkFairness(week WeekView) []Issue {
	type stats struct {
		weekend, evening, total int
	}
	byWorker := make(map[WorkerID]*stats)
	for _, a := range week.Assignments {
		s := byWorker[a.WorkerID]
		if s == nil {
			s = &stats{}
			byWorker[a.WorkerID] = s
		}
		s.total++
		if a.Date.IsWeekend() {
			s.weekend++
		}
		if a.Period == PeriodPM {
			s.evening++
		}
	}
	if len(byWorker) < 2 {
		return nil
	}

	var minWeekend, maxWeekend, minEvening, maxEvening float64
	first := true
	for _, s := range byWorker {
		wr := float64(s.weekend) / float64(s.total)
		er := float64(s.evening) / float64(s.total)
		if first {
			minWeekend, maxWeekend = wr, wr
			minEvening, maxEvening = er, er
			first = false
			continue
		}
		if wr < minWeekend {
			minWeekend = wr
		}
		if wr > maxWeekend {
			maxWeekend = wr
		}
		if er < minEvening {
			minEvening = er
		}
		if er > maxEvening {
			maxEvening = er
		}
	}

	var issues []Issue
	if maxWeekend-minWeekend > e.cfg.FairnessSpread {
		issues = append(issues, Issue{
			Code:    CodeFairnessWeekend,
			Message: "weekend shifts are unevenly spread across workers",
		})
	}
	if maxEvening-minEvening > e.cfg.FairnessSpread {
		issues = append(issues, Issue{
			Code:    CodeFairnessEvening,
			Message: "evening shifts are unevenly spread across workers",
		})
	}
	return issues
}

// =============================================================================
// AVAILABILITY PREDICATE
// =============================================================================

// IsEligible reports whether the worker may take the slot at all.
// Full-time workers are always eligible; part-timers are filtered by
// their shift-type rule. A part-timer with no or an unknown shift type is
// unrestricted. Approved time off is a separate exclusion applied by the
// planner, not here.
func (e *Engine) IsEligible(w Worker, slot ShiftSlot) bool {
	if w.Category != CategoryPartTime || w.PTShiftType == "" {
		return true
	}
	rule, ok := e.cfg.PTShiftTypes[w.PTShiftType]
	if !ok {
		return true
	}

	allowed := false
	for _, p := range rule.AllowedPeriods {
		if p == slot.Period {
			allowed = true
			break
		}
	}
	if !allowed {
		return false
	}

	if rule.WeekendOnly && !slot.Date.IsWeekend() {
		return false
	}
	if rule.WeekdayOnly && slot.Date.IsWeekend() {
		return false
	}
	return true
}
