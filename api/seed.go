/*
seed.go - Demo fixtures

PURPOSE:
  Loads a small demo roster and an empty draft schedule so the API can be
  exercised immediately after a fresh start. Dev convenience only; a
  production deployment never calls this.
*/
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/warp/shift-engine/scheduling"
)

const demoLocation scheduling.LocationID = "store-001"

// demoRoster is a six-person crew: two full-timers covering the front of
// house, two evening part-timers on kitchen-side roles, two support.
func demoRoster() []scheduling.Worker {
	return []scheduling.Worker{
		{
			ID: "emp-001", LocationID: demoLocation, Name: "Chen Wei",
			Category: scheduling.CategoryFullTime, PrimaryRole: scheduling.RoleCashier,
			Skills: []scheduling.Role{scheduling.RoleCashier, scheduling.RoleReception, scheduling.RoleControl},
		},
		{
			ID: "emp-002", LocationID: demoLocation, Name: "Lin Yu-ting",
			Category: scheduling.CategoryFullTime, PrimaryRole: scheduling.RoleReception,
			Skills: []scheduling.Role{scheduling.RoleReception, scheduling.RoleCashier, scheduling.RoleBeverage},
		},
		{
			ID: "emp-003", LocationID: demoLocation, Name: "Huang Min",
			Category: scheduling.CategoryPartTime, PrimaryRole: scheduling.RolePlating,
			Skills:      []scheduling.Role{scheduling.RolePlating, scheduling.RoleTeaService},
			PTShiftType: scheduling.PTWeekdayEvening,
		},
		{
			ID: "emp-004", LocationID: demoLocation, Name: "Wu Jia-hao",
			Category: scheduling.CategoryPartTime, PrimaryRole: scheduling.RoleRunner,
			Skills:      []scheduling.Role{scheduling.RoleRunner, scheduling.RoleClearing},
			PTShiftType: scheduling.PTWeekendEvening,
		},
		{
			ID: "emp-005", LocationID: demoLocation, Name: "Tsai Mei-ling",
			Category: scheduling.CategoryFullTime, PrimaryRole: scheduling.RoleTeaService,
			Skills: []scheduling.Role{scheduling.RoleTeaService, scheduling.RoleRunner, scheduling.RolePlating, scheduling.RoleClearing},
		},
		{
			ID: "emp-006", LocationID: demoLocation, Name: "Kao Cheng",
			Category: scheduling.CategoryPartTime, PrimaryRole: scheduling.RoleClearing,
			Skills:      []scheduling.Role{scheduling.RoleClearing, scheduling.RoleControl, scheduling.RoleBeverage},
			PTShiftType: scheduling.PTFullDay,
		},
	}
}

// SeedDemo loads the demo roster and opens a draft schedule for the
// upcoming week.
func (h *Handler) SeedDemo(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := h.loadDemoData(ctx); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "demo data loaded", "location_id": string(demoLocation)})
}

func (h *Handler) loadDemoData(ctx context.Context) error {
	for _, worker := range demoRoster() {
		if err := h.Store.SaveWorker(ctx, worker); err != nil {
			return err
		}
	}

	weekStart := scheduling.WeekOf(scheduling.DateOf(time.Now().AddDate(0, 0, 7)))
	_, err := h.Service.CreateSchedule(ctx, demoLocation, weekStart, "seed")
	return err
}
