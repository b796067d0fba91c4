package export_test

import (
	"bytes"
	"encoding/csv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/shift-engine/export"
	"github.com/warp/shift-engine/scheduling"
)

func sampleWeek(t *testing.T) scheduling.WeekView {
	t.Helper()
	weekStart, err := scheduling.ParseDate("2025-01-13")
	require.NoError(t, err)

	workers := []scheduling.Worker{
		{ID: "w-1", Name: "Chen Wei", Category: scheduling.CategoryFullTime},
		{ID: "w-2", Name: "Lin Yu-ting", Category: scheduling.CategoryPartTime},
	}

	assignments := []scheduling.Assignment{
		{
			ID: "a-2", SlotID: "slot-pm", WorkerID: "w-2", Role: scheduling.RolePlating,
			Date: weekStart, Period: scheduling.PeriodPM,
			Start: scheduling.Clock(18, 0), End: scheduling.Clock(22, 0), BreakMinutes: 30,
		},
		{
			ID: "a-1", SlotID: "slot-am", WorkerID: "w-1", Role: scheduling.RoleCashier,
			Date: weekStart, Period: scheduling.PeriodAM,
			Start: scheduling.Clock(9, 0), End: scheduling.Clock(19, 0), BreakMinutes: 60,
		},
	}

	return scheduling.WeekView{
		Schedule: scheduling.Schedule{
			ID: "s-1", LocationID: "loc-1", WeekStart: weekStart,
			Status: scheduling.StatusPublished,
		},
		Assignments: assignments,
		Workers:     workers,
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	week := sampleWeek(t)

	require.NoError(t, export.WriteCSV(&buf, week, scheduling.DefaultMealWindows()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)

	// Header, two assignment rows, summary header, two summary rows.
	// The blank separator row is dropped by the reader.
	require.Len(t, records, 6)

	assert.Equal(t, "date", records[0][0])
	assert.Equal(t, "peak", records[0][9])

	// Rows come out AM before PM regardless of input order.
	am := records[1]
	assert.Equal(t, "2025-01-13", am[0])
	assert.Equal(t, "AM", am[1])
	assert.Equal(t, "Chen Wei", am[2])
	assert.Equal(t, "cashier", am[3])
	// 10h less a 1h break: 8 regular, 1 overtime.
	assert.Equal(t, "8.00", am[7])
	assert.Equal(t, "1.00", am[8])
	assert.Equal(t, "", am[9], "a long day is not a pure peak shift")

	pm := records[2]
	assert.Equal(t, "PM", pm[1])
	assert.Equal(t, "Lin Yu-ting", pm[2])
	assert.Equal(t, "peak", pm[9], "18:00-22:00 sits inside the dinner window")

	// Summary block totals per worker, sorted by ID.
	assert.Equal(t, []string{"worker", "shifts", "regular_hours", "overtime_hours"}, records[3])
	assert.Equal(t, []string{"Chen Wei", "1", "8.00", "1.00"}, records[4])
	assert.Equal(t, []string{"Lin Yu-ting", "1", "3.50", "0.00"}, records[5])
}

func TestWriteCSV_EmptyWeek(t *testing.T) {
	var buf bytes.Buffer
	week := sampleWeek(t)
	week.Assignments = nil

	require.NoError(t, export.WriteCSV(&buf, week, scheduling.DefaultMealWindows()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2, "header and summary header only")
}

func TestWeeklySummary(t *testing.T) {
	week := sampleWeek(t)

	// Give w-1 a second shift so aggregation is visible.
	second := week.Assignments[1]
	second.ID = "a-3"
	second.Date = week.Schedule.WeekStart.AddDays(1)
	week.Assignments = append(week.Assignments, second)

	summary := export.WeeklySummary(week)
	require.Len(t, summary, 2)

	assert.Equal(t, scheduling.WorkerID("w-1"), summary[0].WorkerID)
	assert.Equal(t, 2, summary[0].Shifts)
	assert.Equal(t, "16.00", summary[0].Regular.StringFixed(2))
	assert.Equal(t, "2.00", summary[0].Overtime.StringFixed(2))

	assert.Equal(t, scheduling.WorkerID("w-2"), summary[1].WorkerID)
	assert.Equal(t, 1, summary[1].Shifts)
}

func TestWeeklySummary_UnknownWorkerFallsBackToID(t *testing.T) {
	week := sampleWeek(t)
	week.Workers = nil

	summary := export.WeeklySummary(week)
	require.Len(t, summary, 2)
	assert.Equal(t, "w-1", summary[0].Name)
}

func TestFilenames(t *testing.T) {
	weekStart, err := scheduling.ParseDate("2025-01-13")
	require.NoError(t, err)

	assert.Equal(t, "schedule_loc-1_2025-01-13.csv", export.CSVFilename("loc-1", weekStart))
	assert.Equal(t, "schedule_loc-1_2025-01-13.pdf", export.PDFFilename("loc-1", weekStart))
}

func TestWritePDF(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, export.WritePDF(&buf, sampleWeek(t)))

	out := buf.Bytes()
	require.NotEmpty(t, out)
	assert.True(t, strings.HasPrefix(string(out), "%PDF-"), "output is not a PDF document")
}
