package export

import (
	"fmt"
	"io"

	"github.com/phpdave11/gofpdf"

	"github.com/warp/shift-engine/scheduling"
)

// WritePDF renders the week as a printable timetable: one table of
// assignments ordered by date and period, followed by per-worker totals.
func WritePDF(w io.Writer, week scheduling.WeekView) error {
	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetTitle(fmt.Sprintf("Schedule %s week of %s", week.Schedule.LocationID, week.Schedule.WeekStart), false)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 10, fmt.Sprintf("Weekly Schedule - week of %s", week.Schedule.WeekStart), "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	pdf.CellFormat(0, 6, fmt.Sprintf("Status: %s", week.Schedule.Status), "", 1, "L", false, 0, "")
	pdf.Ln(2)

	widths := []float64{28, 14, 50, 30, 18, 18, 20, 20, 20}
	headers := []string{"Date", "Slot", "Worker", "Role", "Start", "End", "Break", "Regular", "Overtime"}

	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, date := range scheduling.WeekDates(week.Schedule.WeekStart) {
		for _, period := range []scheduling.SlotPeriod{scheduling.PeriodAM, scheduling.PeriodPM} {
			for _, a := range week.Assignments {
				if !a.Date.Equal(date) || a.Period != period {
					continue
				}
				name := string(a.WorkerID)
				if worker, ok := week.WorkerByID(a.WorkerID); ok {
					name = worker.Name
				}
				split := a.WorkedHours()

				cells := []string{
					a.Date.String(),
					string(a.Period),
					name,
					string(a.Role),
					a.Start.String(),
					a.End.String(),
					fmt.Sprintf("%dm", a.BreakMinutes),
					split.Regular.StringFixed(1),
					split.Overtime.StringFixed(1),
				}
				for i, c := range cells {
					pdf.CellFormat(widths[i], 6, c, "1", 0, "L", false, 0, "")
				}
				pdf.Ln(-1)
			}
		}
	}

	pdf.Ln(4)
	pdf.SetFont("Arial", "B", 10)
	pdf.CellFormat(0, 7, "Weekly totals", "", 1, "L", false, 0, "")
	pdf.SetFont("Arial", "", 9)
	for _, s := range WeeklySummary(week) {
		line := fmt.Sprintf("%s: %d shifts, %s regular, %s overtime",
			s.Name, s.Shifts, s.Regular.StringFixed(1), s.Overtime.StringFixed(1))
		pdf.CellFormat(0, 6, line, "", 1, "L", false, 0, "")
	}

	return pdf.Output(w)
}

// PDFFilename names a week export file.
func PDFFilename(locationID scheduling.LocationID, weekStart scheduling.Date) string {
	return fmt.Sprintf("schedule_%s_%s.pdf", locationID, weekStart)
}
