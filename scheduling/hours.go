/*
hours.go - Work-hour splitting and peak-window classification

PURPOSE:
  Converts a (start, end, break) triple into total/regular/overtime hours.
  Every other component leans on this: the rules engine for limit checks,
  the export layer for payroll-facing hour columns.

CONTRACT:
  workedMinutes = (end - start) - breakMinutes, clamped to zero
  regular       = min(worked, 8h)
  overtime      = max(worked - 8h, 0)

  An end time strictly before the start time is read as wrapping past
  midnight (a PM close shift of 17:00-01:00 is eight hours, not negative
  sixteen). Equal start and end is a zero-length shift, never a full-day
  wrap. A zero-or-negative worked result after subtracting the break is
  reported as zero hours, never negative; a misconfigured break is
  masked rather than surfaced here.

PEAK CLASSIFICATION:
  A range counts as peak when it sits wholly inside one of the configured
  meal windows (defaults 10:00-14:00 and 18:00-22:00). Informational only,
  consumed by export/reporting, never by validation.
*/
package scheduling

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// =============================================================================
// CLOCK TIME - Minutes since midnight
// =============================================================================

// ClockTime is a wall-clock time within one day, in minutes since
// midnight. Shift end times may conceptually fall on the next day; the
// wrap is resolved by SplitHours, not stored here.
type ClockTime int

const minutesPerDay = 24 * 60

// Clock builds a ClockTime from hour and minute.
func Clock(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// ParseClock parses "15:04".
func ParseClock(s string) (ClockTime, error) {
	var hour, minute int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &minute); err != nil {
		return 0, fmt.Errorf("invalid clock time %q: %w", s, err)
	}
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	return Clock(hour, minute), nil
}

func (c ClockTime) Hour() int   { return int(c) / 60 }
func (c ClockTime) Minute() int { return int(c) % 60 }

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour(), c.Minute())
}

// =============================================================================
// HOUR SPLIT - Regular/overtime decomposition
// =============================================================================

// RegularHourThreshold is the daily regular-hour ceiling: everything a
// worker works past eight hours in one shift is overtime.
var RegularHourThreshold = decimal.NewFromInt(8)

var minutesPerHour = decimal.NewFromInt(60)

// HourSplit is the result of decomposing a shift into paid hour buckets.
// Total == Regular + Overtime always holds.
type HourSplit struct {
	Total    decimal.Decimal
	Regular  decimal.Decimal
	Overtime decimal.Decimal
}

// SplitHours computes the worked-hour split for a shift. An end strictly
// before the start wraps past midnight; equal times are a zero-length
// shift. Results are clamped at zero.
func SplitHours(start, end ClockTime, breakMinutes int) HourSplit {
	span := int(end) - int(start)
	if span < 0 {
		span += minutesPerDay
	}

	worked := span - breakMinutes
	if worked < 0 {
		worked = 0
	}

	total := decimal.NewFromInt(int64(worked)).Div(minutesPerHour)
	regular := decimal.Min(total, RegularHourThreshold)
	overtime := decimal.Max(total.Sub(RegularHourThreshold), decimal.Zero)

	return HourSplit{Total: total, Regular: regular, Overtime: overtime}
}

// =============================================================================
// MEAL WINDOWS - Peak classification
// =============================================================================

// MealWindow is one service window on the clock, end exclusive of wrap
// (windows never cross midnight).
type MealWindow struct {
	Start ClockTime
	End   ClockTime
}

// Contains reports whether the [start, end] range sits wholly inside the window.
func (m MealWindow) Contains(start, end ClockTime) bool {
	return start >= m.Start && end <= m.End && start <= end
}

// DefaultMealWindows are the lunch and dinner service windows.
func DefaultMealWindows() map[SlotPeriod]MealWindow {
	return map[SlotPeriod]MealWindow{
		PeriodAM: {Start: Clock(10, 0), End: Clock(14, 0)},
		PeriodPM: {Start: Clock(18, 0), End: Clock(22, 0)},
	}
}

// IsPeak reports whether the range falls wholly inside any of the given
// meal windows. A wrapped range (end before start) is never peak.
func IsPeak(windows map[SlotPeriod]MealWindow, start, end ClockTime) bool {
	for _, w := range windows {
		if w.Contains(start, end) {
			return true
		}
	}
	return false
}

// =============================================================================
// WEEKLY OVERTIME - Per-worker aggregation for alerts and reporting
// =============================================================================

// OvertimeTotal is one worker's summed overtime across a week.
type OvertimeTotal struct {
	WorkerID WorkerID
	Name     string
	Hours    decimal.Decimal
}

// WeeklyOvertime sums each worker's overtime across the week's
// assignments, recomputed from the raw shift times rather than trusting
// stored columns. Workers with no overtime are omitted; results are
// ordered by worker ID.
func WeeklyOvertime(week WeekView) []OvertimeTotal {
	names := make(map[WorkerID]string, len(week.Workers))
	for _, w := range week.Workers {
		names[w.ID] = w.Name
	}

	totals := make(map[WorkerID]decimal.Decimal)
	for _, a := range week.Assignments {
		split := SplitHours(a.Start, a.End, a.BreakMinutes)
		if split.Overtime.IsPositive() {
			totals[a.WorkerID] = totals[a.WorkerID].Add(split.Overtime)
		}
	}

	out := make([]OvertimeTotal, 0, len(totals))
	for id, hours := range totals {
		out = append(out, OvertimeTotal{WorkerID: id, Name: names[id], Hours: hours})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].WorkerID < out[j].WorkerID })
	return out
}
