/*
Package export renders a schedule week for people outside the tool:
a CSV for payroll-style consumption and a PDF timetable for the wall.

The renderers consume the engine's hour calculator for the regular and
overtime columns and its peak classification for the service-window
marker; they never re-derive hours on their own.
*/
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"

	"github.com/warp/shift-engine/scheduling"
)

// csvHeader is the fixed column layout of a week export.
var csvHeader = []string{
	"date", "period", "worker", "role",
	"start", "end", "break_minutes",
	"regular_hours", "overtime_hours", "peak",
}

// WriteCSV writes one row per assignment plus a per-worker hour summary
// block, ordered by date, period, role.
func WriteCSV(w io.Writer, week scheduling.WeekView, windows map[scheduling.SlotPeriod]scheduling.MealWindow) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	assignments := append([]scheduling.Assignment(nil), week.Assignments...)
	sort.Slice(assignments, func(i, j int) bool {
		a, b := assignments[i], assignments[j]
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		if a.Period != b.Period {
			return a.Period == scheduling.PeriodAM
		}
		return a.Role < b.Role
	})

	for _, a := range assignments {
		name := string(a.WorkerID)
		if worker, ok := week.WorkerByID(a.WorkerID); ok {
			name = worker.Name
		}
		split := a.WorkedHours()

		peak := ""
		if scheduling.IsPeak(windows, a.Start, a.End) {
			peak = "peak"
		}

		row := []string{
			a.Date.String(),
			string(a.Period),
			name,
			string(a.Role),
			a.Start.String(),
			a.End.String(),
			fmt.Sprintf("%d", a.BreakMinutes),
			split.Regular.StringFixed(2),
			split.Overtime.StringFixed(2),
			peak,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	// Summary block: one row per worker with weekly totals.
	if err := cw.Write([]string{}); err != nil {
		return err
	}
	if err := cw.Write([]string{"worker", "shifts", "regular_hours", "overtime_hours"}); err != nil {
		return err
	}
	for _, s := range WeeklySummary(week) {
		row := []string{
			s.Name,
			fmt.Sprintf("%d", s.Shifts),
			s.Regular.StringFixed(2),
			s.Overtime.StringFixed(2),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// CSVFilename names a week export file.
func CSVFilename(locationID scheduling.LocationID, weekStart scheduling.Date) string {
	return fmt.Sprintf("schedule_%s_%s.csv", locationID, weekStart)
}
