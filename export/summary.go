package export

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/warp/shift-engine/scheduling"
)

// WorkerSummary is one worker's weekly hour totals.
type WorkerSummary struct {
	WorkerID scheduling.WorkerID
	Name     string
	Shifts   int
	Regular  decimal.Decimal
	Overtime decimal.Decimal
}

// WeeklySummary aggregates the week's assignments per worker, sorted by
// worker ID for stable output.
func WeeklySummary(week scheduling.WeekView) []WorkerSummary {
	byWorker := make(map[scheduling.WorkerID]*WorkerSummary)
	for _, a := range week.Assignments {
		s := byWorker[a.WorkerID]
		if s == nil {
			s = &WorkerSummary{
				WorkerID: a.WorkerID,
				Name:     string(a.WorkerID),
				Regular:  decimal.Zero,
				Overtime: decimal.Zero,
			}
			if worker, ok := week.WorkerByID(a.WorkerID); ok {
				s.Name = worker.Name
			}
			byWorker[a.WorkerID] = s
		}
		split := a.WorkedHours()
		s.Shifts++
		s.Regular = s.Regular.Add(split.Regular)
		s.Overtime = s.Overtime.Add(split.Overtime)
	}

	result := make([]WorkerSummary, 0, len(byWorker))
	for _, s := range byWorker {
		result = append(result, *s)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].WorkerID < result[j].WorkerID })
	return result
}
