package scheduling_test

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-engine/scheduling"
)

func mustDate(t *testing.T, s string) scheduling.Date {
	t.Helper()
	d, err := scheduling.ParseDate(s)
	require.NoError(t, err)
	return d
}

func fullTimer(id scheduling.WorkerID, skills ...scheduling.Role) scheduling.Worker {
	return scheduling.Worker{
		ID:       id,
		Name:     string(id),
		Category: scheduling.CategoryFullTime,
		Skills:   skills,
	}
}

func assignmentOn(date scheduling.Date, worker scheduling.WorkerID, role scheduling.Role, start, end scheduling.ClockTime, brk int) scheduling.Assignment {
	return scheduling.Assignment{
		ID:           scheduling.AssignmentID(string(worker) + "-" + date.String()),
		SlotID:       scheduling.SlotID(date.String()),
		WorkerID:     worker,
		Role:         role,
		Date:         date,
		Period:       scheduling.PeriodAM,
		Start:        start,
		End:          end,
		BreakMinutes: brk,
	}
}

func issueCodes(issues []scheduling.Issue) []string {
	codes := make([]string, 0, len(issues))
	for _, i := range issues {
		codes = append(codes, i.Code)
	}
	return codes
}

func countCode(issues []scheduling.Issue, code string) int {
	n := 0
	for _, i := range issues {
		if i.Code == code {
			n++
		}
	}
	return n
}

// =============================================================================
// SINGLE-ASSIGNMENT VALIDATION
// =============================================================================

func TestValidateAssignment_DailyHoursExceeded(t *testing.T) {
	engine := scheduling.NewEngine(scheduling.DefaultRuleConfig())
	worker := fullTimer("w1", scheduling.RoleCashier)

	// 08:00-22:00 with a 1h break is 13h, over the 12h full-time ceiling.
	a := assignmentOn(mustDate(t, "2025-01-13"), worker.ID, scheduling.RoleCashier,
		scheduling.Clock(8, 0), scheduling.Clock(22, 0), 60)

	result := engine.ValidateAssignment(a, worker, nil)

	assert.False(t, result.Valid)
	assert.Equal(t, 1, countCode(result.Violations, scheduling.CodeDailyHours),
		"want exactly one daily-hours violation, got %v", issueCodes(result.Violations))
}

func TestValidateAssignment_AtDailyLimitIsFine(t *testing.T) {
	engine := scheduling.NewEngine(scheduling.DefaultRuleConfig())
	worker := fullTimer("w1", scheduling.RoleCashier)

	// Exactly 12h worked: at the ceiling, not over it.
	a := assignmentOn(mustDate(t, "2025-01-13"), worker.ID, scheduling.RoleCashier,
		scheduling.Clock(8, 0), scheduling.Clock(22, 0), 120)

	result := engine.ValidateAssignment(a, worker, nil)
	assert.True(t, result.Valid, "violations: %v", issueCodes(result.Violations))
}

func TestValidateAssignment_PartTimeLowerCeiling(t *testing.T) {
	engine := scheduling.NewEngine(scheduling.DefaultRuleConfig())
	worker := scheduling.Worker{
		ID: "pt1", Name: "pt1",
		Category: scheduling.CategoryPartTime,
		Skills:   []scheduling.Role{scheduling.RoleRunner},
	}

	// 11h worked: fine for full-time, over the 10h part-time ceiling.
	a := assignmentOn(mustDate(t, "2025-01-13"), worker.ID, scheduling.RoleRunner,
		scheduling.Clock(9, 0), scheduling.Clock(21, 0), 60)

	result := engine.ValidateAssignment(a, worker, nil)
	assert.Equal(t, 1, countCode(result.Violations, scheduling.CodeDailyHours))
}

func TestValidateAssignment_ConsecutiveDays(t *testing.T) {
	engine := scheduling.NewEngine(scheduling.DefaultRuleConfig())
	worker := fullTimer("w1", scheduling.RoleCashier)
	target := mustDate(t, "2025-01-17") // Friday

	// Worker already has Mon-Thu; Friday would be the fifth consecutive
	// day, at the full-time limit of 5.
	var existing []scheduling.Assignment
	for i := 4; i >= 1; i-- {
		existing = append(existing, assignmentOn(target.AddDays(-i), worker.ID,
			scheduling.RoleCashier, scheduling.Clock(9, 0), scheduling.Clock(17, 0), 120))
	}

	a := assignmentOn(target, worker.ID, scheduling.RoleCashier,
		scheduling.Clock(9, 0), scheduling.Clock(17, 0), 120)
	result := engine.ValidateAssignment(a, worker, existing)

	assert.Equal(t, 1, countCode(result.Violations, scheduling.CodeConsecutiveDays))

	// Without Thursday the run is broken and Friday stands alone.
	result = engine.ValidateAssignment(a, worker, existing[:3])
	assert.Zero(t, countCode(result.Violations, scheduling.CodeConsecutiveDays))
}

func TestValidateAssignment_ConsecutiveDaysCountsBothSides(t *testing.T) {
	engine := scheduling.NewEngine(scheduling.DefaultRuleConfig())
	worker := fullTimer("w1", scheduling.RoleCashier)
	target := mustDate(t, "2025-01-15") // Wednesday

	// Mon, Tue worked and Thu, Fri worked: inserting Wednesday bridges
	// the two runs into five consecutive days.
	existing := []scheduling.Assignment{
		assignmentOn(target.AddDays(-2), worker.ID, scheduling.RoleCashier, scheduling.Clock(9, 0), scheduling.Clock(17, 0), 120),
		assignmentOn(target.AddDays(-1), worker.ID, scheduling.RoleCashier, scheduling.Clock(9, 0), scheduling.Clock(17, 0), 120),
		assignmentOn(target.AddDays(1), worker.ID, scheduling.RoleCashier, scheduling.Clock(9, 0), scheduling.Clock(17, 0), 120),
		assignmentOn(target.AddDays(2), worker.ID, scheduling.RoleCashier, scheduling.Clock(9, 0), scheduling.Clock(17, 0), 120),
	}

	a := assignmentOn(target, worker.ID, scheduling.RoleCashier,
		scheduling.Clock(9, 0), scheduling.Clock(17, 0), 120)
	result := engine.ValidateAssignment(a, worker, existing)

	assert.Equal(t, 1, countCode(result.Violations, scheduling.CodeConsecutiveDays))
}

func TestValidateAssignment_BreakRules(t *testing.T) {
	engine := scheduling.NewEngine(scheduling.DefaultRuleConfig())
	worker := fullTimer("w1", scheduling.RoleCashier)
	date := mustDate(t, "2025-01-13")

	cases := []struct {
		name          string
		breakMinutes  int
		wantViolation bool
		wantWarning   bool
	}{
		{"below floor", 20, true, false},
		{"at floor, below standard", 30, false, true},
		{"just under standard", 119, false, true},
		{"at standard", 120, false, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			a := assignmentOn(date, worker.ID, scheduling.RoleCashier,
				scheduling.Clock(9, 0), scheduling.Clock(17, 0), tc.breakMinutes)
			result := engine.ValidateAssignment(a, worker, nil)

			assert.Equal(t, tc.wantViolation, countCode(result.Violations, scheduling.CodeBreakMinimum) == 1)
			assert.Equal(t, tc.wantWarning, countCode(result.Warnings, scheduling.CodeBreakStandard) == 1)
		})
	}
}

func TestValidateAssignment_SkillMismatchWarnsOnly(t *testing.T) {
	engine := scheduling.NewEngine(scheduling.DefaultRuleConfig())
	worker := fullTimer("w1", scheduling.RoleCashier)

	a := assignmentOn(mustDate(t, "2025-01-13"), worker.ID, scheduling.RoleBeverage,
		scheduling.Clock(9, 0), scheduling.Clock(17, 0), 120)
	result := engine.ValidateAssignment(a, worker, nil)

	assert.True(t, result.Valid, "skill mismatch must not block")
	assert.Equal(t, 1, countCode(result.Warnings, scheduling.CodeSkillMismatch))
}

func TestValidateAssignment_WildcardAndEmptySkills(t *testing.T) {
	engine := scheduling.NewEngine(scheduling.DefaultRuleConfig())
	date := mustDate(t, "2025-01-13")

	allRounder := fullTimer("w1", scheduling.RoleAll)
	blank := fullTimer("w2")

	for _, worker := range []scheduling.Worker{allRounder, blank} {
		a := assignmentOn(date, worker.ID, scheduling.RoleControl,
			scheduling.Clock(9, 0), scheduling.Clock(17, 0), 120)
		result := engine.ValidateAssignment(a, worker, nil)
		assert.Zero(t, countCode(result.Warnings, scheduling.CodeSkillMismatch),
			"worker %s should not be flagged", worker.ID)
	}
}

// =============================================================================
// FULL-WEEK VALIDATION
// =============================================================================

// fullyStaffedWeek builds a week where every (date, period, role) cell has
// exactly one assignment. 14 slots x 8 roles = 112 assignments spread over
// a synthetic roster large enough that nobody breaks an hour or day rule.
func fullyStaffedWeek(t *testing.T) scheduling.WeekView {
	t.Helper()
	weekStart := mustDate(t, "2025-01-13")

	var (
		workers     []scheduling.Worker
		slots       []scheduling.ShiftSlot
		assignments []scheduling.Assignment
	)

	// One dedicated worker per (role, parity-of-day) keeps every worker at
	// 3-4 shifts, well under all ceilings.
	workerFor := make(map[string]scheduling.WorkerID)
	for _, role := range scheduling.FillOrder {
		for parity := 0; parity < 2; parity++ {
			id := scheduling.WorkerID(string(role) + "-" + string(rune('a'+parity)))
			workerFor[string(role)+string(rune('0'+parity))] = id
			workers = append(workers, fullTimer(id, role))
		}
	}

	for day := 0; day < 7; day++ {
		date := weekStart.AddDays(day)
		for _, period := range []scheduling.SlotPeriod{scheduling.PeriodAM, scheduling.PeriodPM} {
			slot := scheduling.ShiftSlot{
				ID:         scheduling.SlotID(date.String() + "-" + string(period)),
				LocationID: "loc-1",
				Date:       date,
				Period:     period,
			}
			slots = append(slots, slot)

			start, end := scheduling.Clock(9, 0), scheduling.Clock(17, 0)
			if period == scheduling.PeriodPM {
				start, end = scheduling.Clock(17, 0), scheduling.Clock(1, 0)
			}
			for _, role := range scheduling.FillOrder {
				workerID := workerFor[string(role)+string(rune('0'+day%2))]
				assignments = append(assignments, scheduling.Assignment{
					ID:           scheduling.AssignmentID(string(slot.ID) + "-" + string(role)),
					SlotID:       slot.ID,
					WorkerID:     workerID,
					Role:         role,
					Date:         date,
					Period:       period,
					Start:        start,
					End:          end,
					BreakMinutes: 120,
				})
			}
		}
	}

	return scheduling.WeekView{
		Schedule: scheduling.Schedule{
			ID:         "sched-1",
			LocationID: "loc-1",
			WeekStart:  weekStart,
			Status:     scheduling.StatusDraft,
		},
		Slots:       slots,
		Assignments: assignments,
		Workers:     workers,
	}
}

func TestValidateWeek_FullyStaffedHasNoViolations(t *testing.T) {
	engine := scheduling.NewEngine(scheduling.DefaultRuleConfig())
	week := fullyStaffedWeek(t)

	result := engine.ValidateWeek(week)
	assert.True(t, result.Valid, "violations: %v", issueCodes(result.Violations))
	assert.Zero(t, countCode(result.Violations, scheduling.CodeUnderstaffed))
}

func TestValidateWeek_RemovingOneAssignmentUnderstaffsOneCell(t *testing.T) {
	engine := scheduling.NewEngine(scheduling.DefaultRuleConfig())
	week := fullyStaffedWeek(t)

	// Drop the first assignment; exactly its (slot, role) cell goes short.
	removed := week.Assignments[0]
	week.Assignments = week.Assignments[1:]

	result := engine.ValidateWeek(week)
	require.Equal(t, 1, countCode(result.Violations, scheduling.CodeUnderstaffed),
		"violations: %v", issueCodes(result.Violations))

	var found scheduling.Issue
	for _, v := range result.Violations {
		if v.Code == scheduling.CodeUnderstaffed {
			found = v
		}
	}
	assert.Equal(t, removed.Date, found.Date)
	assert.Equal(t, removed.Period, found.Period)
	assert.Equal(t, removed.Role, found.Role)
}

func TestValidateWeek_SlotMinStaffOverride(t *testing.T) {
	engine := scheduling.NewEngine(scheduling.DefaultRuleConfig())
	week := fullyStaffedWeek(t)

	// Raise the cashier floor on one slot to 2; only that cell trips.
	week.Slots[0].MinStaff = map[scheduling.Role]int{scheduling.RoleCashier: 2}

	result := engine.ValidateWeek(week)
	assert.Equal(t, 1, countCode(result.Violations, scheduling.CodeUnderstaffed))

	// An override of zero silences the default floor.
	week = fullyStaffedWeek(t)
	week.Slots[0].MinStaff = map[scheduling.Role]int{scheduling.RoleCashier: 0}
	week.Assignments = week.Assignments[1:] // drop that cell's cashier

	result = engine.ValidateWeek(week)
	assert.Zero(t, countCode(result.Violations, scheduling.CodeUnderstaffed),
		"violations: %v", issueCodes(result.Violations))
}

func TestValidateWeek_WeeklyHoursCeiling(t *testing.T) {
	engine := scheduling.NewEngine(scheduling.DefaultRuleConfig())
	weekStart := mustDate(t, "2025-01-13")
	worker := scheduling.Worker{
		ID: "pt1", Name: "pt1",
		Category: scheduling.CategoryPartTime,
		Skills:   []scheduling.Role{scheduling.RoleAll},
	}

	// A part-timer at 10h/day for all 7 days: 70h against a 60h ceiling.
	var assignments []scheduling.Assignment
	for day := 0; day < 7; day++ {
		assignments = append(assignments, assignmentOn(weekStart.AddDays(day), worker.ID,
			scheduling.RoleRunner, scheduling.Clock(9, 0), scheduling.Clock(20, 0), 60))
	}

	week := scheduling.WeekView{
		Schedule:    scheduling.Schedule{ID: "s", WeekStart: weekStart},
		Assignments: assignments,
		Workers:     []scheduling.Worker{worker},
	}

	result := engine.ValidateWeek(week)
	assert.Equal(t, 1, countCode(result.Violations, scheduling.CodeWeeklyHours))
	// 7 straight days also breaks the 6-day part-time run limit.
	assert.Equal(t, 1, countCode(result.Violations, scheduling.CodeConsecutiveDays))
}

func TestValidateWeek_IsPureAndRepeatable(t *testing.T) {
	engine := scheduling.NewEngine(scheduling.DefaultRuleConfig())
	week := fullyStaffedWeek(t)
	week.Assignments = week.Assignments[2:] // introduce some violations

	first := engine.ValidateWeek(week)
	second := engine.ValidateWeek(week)

	if !reflect.DeepEqual(first, second) {
		t.Errorf("two runs over the same snapshot differ:\n%v\n%v", first, second)
	}
}

func TestValidateWeek_FairnessSkew(t *testing.T) {
	engine := scheduling.NewEngine(scheduling.DefaultRuleConfig())
	weekStart := mustDate(t, "2025-01-13")

	w1 := fullTimer("w1", scheduling.RoleAll)
	w2 := fullTimer("w2", scheduling.RoleAll)

	// w1 takes every PM shift Mon-Thu, w2 every AM shift: the evening
	// ratio spread is 1.0, far over the 0.3 allowance. Nobody works the
	// weekend, so the weekend spread stays at zero.
	var assignments []scheduling.Assignment
	for day := 0; day < 4; day++ {
		date := weekStart.AddDays(day)
		am := assignmentOn(date, w2.ID, scheduling.RoleCashier, scheduling.Clock(9, 0), scheduling.Clock(17, 0), 120)
		pm := assignmentOn(date, w1.ID, scheduling.RoleCashier, scheduling.Clock(17, 0), scheduling.Clock(1, 0), 120)
		pm.ID += "-pm"
		pm.Period = scheduling.PeriodPM
		assignments = append(assignments, am, pm)
	}

	week := scheduling.WeekView{
		Schedule:    scheduling.Schedule{ID: "s", WeekStart: weekStart},
		Assignments: assignments,
		Workers:     []scheduling.Worker{w1, w2},
	}

	result := engine.ValidateWeek(week)
	assert.Equal(t, 1, countCode(result.Warnings, scheduling.CodeFairnessEvening))
	assert.Zero(t, countCode(result.Warnings, scheduling.CodeFairnessWeekend))
	assert.True(t, result.Valid, "fairness is advisory")
}

// =============================================================================
// ELIGIBILITY
// =============================================================================

func TestIsEligible(t *testing.T) {
	engine := scheduling.NewEngine(scheduling.DefaultRuleConfig())

	monday := mustDate(t, "2025-01-13")
	saturday := mustDate(t, "2025-01-18")

	slot := func(d scheduling.Date, p scheduling.SlotPeriod) scheduling.ShiftSlot {
		return scheduling.ShiftSlot{ID: "s", Date: d, Period: p}
	}
	pt := func(st scheduling.PTShiftType) scheduling.Worker {
		return scheduling.Worker{ID: "w", Category: scheduling.CategoryPartTime, PTShiftType: st}
	}

	cases := []struct {
		name   string
		worker scheduling.Worker
		slot   scheduling.ShiftSlot
		want   bool
	}{
		{"fulltime anywhere", fullTimer("f"), slot(saturday, scheduling.PeriodAM), true},
		{"pt no type unrestricted", pt(""), slot(monday, scheduling.PeriodAM), true},
		{"pt unknown type unrestricted", pt("night_owl"), slot(saturday, scheduling.PeriodAM), true},

		{"weekday_pm weekday evening", pt(scheduling.PTWeekdayEvening), slot(monday, scheduling.PeriodPM), true},
		{"weekday_pm weekday morning", pt(scheduling.PTWeekdayEvening), slot(monday, scheduling.PeriodAM), false},
		{"weekday_pm weekend evening", pt(scheduling.PTWeekdayEvening), slot(saturday, scheduling.PeriodPM), false},

		{"weekend_pm weekend evening", pt(scheduling.PTWeekendEvening), slot(saturday, scheduling.PeriodPM), true},
		{"weekend_pm weekday evening", pt(scheduling.PTWeekendEvening), slot(monday, scheduling.PeriodPM), false},
		{"weekend_pm weekend morning", pt(scheduling.PTWeekendEvening), slot(saturday, scheduling.PeriodAM), false},

		{"full_day weekday morning", pt(scheduling.PTFullDay), slot(monday, scheduling.PeriodAM), true},
		{"full_day weekend evening", pt(scheduling.PTFullDay), slot(saturday, scheduling.PeriodPM), true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, engine.IsEligible(tc.worker, tc.slot))
		})
	}
}
