/*
handlers.go - HTTP handlers for the scheduling API

PURPOSE:
  Thin translation layer between HTTP and the scheduling service: decode,
  call, encode. No scheduling logic lives here; anything smarter than a
  field copy belongs in the scheduling package.

SEE ALSO:
  - dto.go:    Wire shapes and error mapping
  - server.go: Route wiring
*/
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/warp/shift-engine/export"
	"github.com/warp/shift-engine/notify"
	"github.com/warp/shift-engine/scheduling"
)

// Store is the full persistence surface the API needs: the engine's four
// interfaces plus the roster/time-off writes used by seeding and admin.
type Store interface {
	scheduling.RosterStore
	scheduling.WeekStore
	scheduling.ScheduleStore
	scheduling.TimeOffStore

	SaveWorker(ctx context.Context, w scheduling.Worker) error
	SaveTimeOff(ctx context.Context, locationID scheduling.LocationID, day scheduling.TimeOffDay) error
	ListSchedules(ctx context.Context, locationID scheduling.LocationID) ([]scheduling.Schedule, error)
}

// Handler holds the dependencies for all HTTP handlers.
type Handler struct {
	Store    Store
	Service  *scheduling.Service
	Notifier notify.Notifier
}

func NewHandler(store Store, notifier notify.Notifier) *Handler {
	if notifier == nil {
		notifier = notify.NewLogNotifier()
	}
	return &Handler{
		Store:    store,
		Service:  scheduling.NewService(store, store, store, store),
		Notifier: notifier,
	}
}

// =============================================================================
// WORKERS
// =============================================================================

func (h *Handler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	locationID := scheduling.LocationID(r.URL.Query().Get("location_id"))
	workers, err := h.Store.ListWorkers(r.Context(), locationID)
	if err != nil {
		writeError(w, err)
		return
	}
	if workers == nil {
		workers = []scheduling.Worker{}
	}
	writeJSON(w, http.StatusOK, workers)
}

func (h *Handler) GetWorker(w http.ResponseWriter, r *http.Request) {
	worker, err := h.Store.GetWorker(r.Context(), scheduling.WorkerID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, worker)
}

func (h *Handler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var req createWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	skills := make([]scheduling.Role, 0, len(req.Skills))
	for _, s := range req.Skills {
		skills = append(skills, scheduling.Role(s))
	}
	worker := scheduling.Worker{
		ID:          scheduling.WorkerID(req.ID),
		LocationID:  scheduling.LocationID(req.LocationID),
		Name:        req.Name,
		Category:    scheduling.Category(req.Category),
		PrimaryRole: scheduling.Role(req.PrimaryRole),
		Skills:      skills,
		PTShiftType: scheduling.PTShiftType(req.PTShiftType),
	}

	if err := h.Store.SaveWorker(r.Context(), worker); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, worker)
}

func (h *Handler) CreateTimeOff(w http.ResponseWriter, r *http.Request) {
	var req timeOffRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	date, err := scheduling.ParseDate(req.Date)
	if err != nil {
		http.Error(w, "invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	day := scheduling.TimeOffDay{WorkerID: scheduling.WorkerID(req.WorkerID), Date: date}
	if err := h.Store.SaveTimeOff(r.Context(), scheduling.LocationID(req.LocationID), day); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "time off recorded"})
}

// =============================================================================
// SCHEDULES
// =============================================================================

func (h *Handler) CreateSchedule(w http.ResponseWriter, r *http.Request) {
	var req createScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	weekStart, err := scheduling.ParseDate(req.WeekStart)
	if err != nil {
		http.Error(w, "invalid week_start, expected YYYY-MM-DD", http.StatusBadRequest)
		return
	}

	schedule, err := h.Service.CreateSchedule(r.Context(), scheduling.LocationID(req.LocationID), weekStart, req.CreatedBy)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, toScheduleResponse(*schedule))
}

func (h *Handler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	locationID := scheduling.LocationID(r.URL.Query().Get("location_id"))
	schedules, err := h.Store.ListSchedules(r.Context(), locationID)
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]scheduleResponse, 0, len(schedules))
	for _, s := range schedules {
		resp = append(resp, toScheduleResponse(s))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	schedule, err := h.Store.GetSchedule(r.Context(), scheduling.ScheduleID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toScheduleResponse(*schedule))
}

// Autoplan regenerates the schedule's week from scratch. Full overwrite:
// existing slots and assignments for the week are discarded.
func (h *Handler) Autoplan(w http.ResponseWriter, r *http.Request) {
	draft, err := h.Service.GenerateDraft(r.Context(), scheduling.ScheduleID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draftResponse{
		SlotCount:       len(draft.Slots),
		AssignmentCount: len(draft.Assignments),
		Warnings:        draft.Warnings,
	})
}

func (h *Handler) ValidateSchedule(w http.ResponseWriter, r *http.Request) {
	result, err := h.Service.ValidateWeek(r.Context(), scheduling.ScheduleID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, toValidationResponse(*result))
}

// =============================================================================
// APPROVAL
// =============================================================================

func (h *Handler) SubmitSchedule(w http.ResponseWriter, r *http.Request) {
	scheduleID := scheduling.ScheduleID(chi.URLParam(r, "id"))
	stage := scheduling.ReviewStage(r.URL.Query().Get("stage"))

	if err := h.Service.Submit(r.Context(), scheduleID, stage); err != nil {
		writeError(w, err)
		return
	}

	h.Notifier.Send(r.Context(), notify.Submitted(scheduleID, stage))
	h.notifyOvertime(r.Context(), scheduleID)
	writeJSON(w, http.StatusOK, map[string]string{"message": "submitted for review"})
}

// notifyOvertime alerts management about every worker whose submitted
// week carries overtime. Best effort: a failed week load skips the
// alerts, it never fails the submission that already went through.
func (h *Handler) notifyOvertime(ctx context.Context, scheduleID scheduling.ScheduleID) {
	week, err := h.Service.LoadWeek(ctx, scheduleID)
	if err != nil {
		return
	}
	for _, ot := range scheduling.WeeklyOvertime(*week) {
		h.Notifier.Send(ctx, notify.OvertimeAlert(scheduleID, ot))
	}
}

func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	reviews, err := h.Store.ListReviews(r.Context(), scheduling.ScheduleID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, err)
		return
	}

	resp := make([]reviewResponse, 0, len(reviews))
	for _, rec := range reviews {
		resp = append(resp, toReviewResponse(rec))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) DecideReview(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	review, err := h.Service.Decide(r.Context(),
		scheduling.ReviewID(chi.URLParam(r, "id")),
		scheduling.ReviewStatus(req.Status), req.Comment, req.Decider)
	if err != nil {
		writeError(w, err)
		return
	}

	h.Notifier.Send(r.Context(), notify.Decided(review.ScheduleID, review.Status, req.Decider))
	if review.Stage == scheduling.StageAreaManager && review.Status == scheduling.ReviewApproved {
		h.Notifier.Send(r.Context(), notify.Published(review.ScheduleID))
	}
	writeJSON(w, http.StatusOK, toReviewResponse(*review))
}

// TriggerSweep runs one SLA sweep immediately (admin/testing hook; the
// background sweeper covers the periodic case).
func (h *Handler) TriggerSweep(w http.ResponseWriter, r *http.Request) {
	advanced, err := h.Service.RunSlaSweep(r.Context(), h.Service.Workflow.Now())
	if err != nil {
		writeError(w, err)
		return
	}
	if advanced == nil {
		advanced = []scheduling.ScheduleID{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"advanced": advanced})
}

// =============================================================================
// EXPORTS
// =============================================================================

func (h *Handler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	week, err := h.Service.LoadWeek(r.Context(), scheduling.ScheduleID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		"attachment; filename="+export.CSVFilename(week.Schedule.LocationID, week.Schedule.WeekStart))
	if err := export.WriteCSV(w, *week, h.Service.Engine.Config().MealWindows); err != nil {
		writeError(w, err)
	}
}

func (h *Handler) ExportPDF(w http.ResponseWriter, r *http.Request) {
	week, err := h.Service.LoadWeek(r.Context(), scheduling.ScheduleID(chi.URLParam(r, "id")))
	if err != nil {
		writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition",
		"attachment; filename="+export.PDFFilename(week.Schedule.LocationID, week.Schedule.WeekStart))
	if err := export.WritePDF(w, *week); err != nil {
		writeError(w, err)
	}
}
