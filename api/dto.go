/*
dto.go - Request/response shapes and JSON helpers

PURPOSE:
  Wire-format structs for the HTTP API plus the shared JSON writer and
  error mapper. Handlers never hand engine types to the client directly;
  everything crosses through here.
*/
package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/warp/shift-engine/scheduling"
)

// =============================================================================
// REQUESTS
// =============================================================================

type createWorkerRequest struct {
	ID          string   `json:"id"`
	LocationID  string   `json:"location_id"`
	Name        string   `json:"name"`
	Category    string   `json:"category"`
	PrimaryRole string   `json:"primary_role"`
	Skills      []string `json:"skills"`
	PTShiftType string   `json:"pt_shift_type,omitempty"`
}

type createScheduleRequest struct {
	LocationID string `json:"location_id"`
	WeekStart  string `json:"week_start"`
	CreatedBy  string `json:"created_by"`
}

type decisionRequest struct {
	Status  string `json:"status"`
	Comment string `json:"comment"`
	Decider string `json:"decider"`
}

type timeOffRequest struct {
	LocationID string `json:"location_id"`
	WorkerID   string `json:"worker_id"`
	Date       string `json:"date"`
}

// =============================================================================
// RESPONSES
// =============================================================================

type scheduleResponse struct {
	ID          string     `json:"id"`
	LocationID  string     `json:"location_id"`
	WeekStart   string     `json:"week_start"`
	Status      string     `json:"status"`
	SLADeadline *time.Time `json:"sla_deadline,omitempty"`
	CreatedBy   string     `json:"created_by,omitempty"`
}

func toScheduleResponse(s scheduling.Schedule) scheduleResponse {
	return scheduleResponse{
		ID:          string(s.ID),
		LocationID:  string(s.LocationID),
		WeekStart:   s.WeekStart.String(),
		Status:      string(s.Status),
		SLADeadline: s.SLADeadline,
		CreatedBy:   s.CreatedBy,
	}
}

type issueResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type validationResponse struct {
	Valid      bool            `json:"valid"`
	Violations []issueResponse `json:"violations"`
	Warnings   []issueResponse `json:"warnings"`
}

func toValidationResponse(r scheduling.ValidationResult) validationResponse {
	resp := validationResponse{
		Valid:      r.Valid,
		Violations: []issueResponse{},
		Warnings:   []issueResponse{},
	}
	for _, v := range r.Violations {
		resp.Violations = append(resp.Violations, issueResponse{Code: v.Code, Message: v.Message})
	}
	for _, w := range r.Warnings {
		resp.Warnings = append(resp.Warnings, issueResponse{Code: w.Code, Message: w.Message})
	}
	return resp
}

type draftResponse struct {
	SlotCount       int      `json:"slot_count"`
	AssignmentCount int      `json:"assignment_count"`
	Warnings        []string `json:"warnings"`
}

type reviewResponse struct {
	ID         string     `json:"id"`
	ScheduleID string     `json:"schedule_id"`
	Stage      string     `json:"stage"`
	Status     string     `json:"status"`
	Comment    string     `json:"comment,omitempty"`
	DecidedBy  string     `json:"decided_by,omitempty"`
	DecidedAt  *time.Time `json:"decided_at,omitempty"`
}

func toReviewResponse(r scheduling.ReviewRecord) reviewResponse {
	return reviewResponse{
		ID:         string(r.ID),
		ScheduleID: string(r.ScheduleID),
		Stage:      string(r.Stage),
		Status:     string(r.Status),
		Comment:    r.Comment,
		DecidedBy:  r.DecidedBy,
		DecidedAt:  r.DecidedAt,
	}
}

// =============================================================================
// JSON HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[API] encoding response: %v", err)
	}
}

type errorResponse struct {
	Error      string          `json:"error"`
	Violations []issueResponse `json:"violations,omitempty"`
}

// writeError maps engine errors onto HTTP statuses. Concurrency
// conflicts become 409 so callers know to re-read and retry, and a
// blocked submission carries its violations in the body.
func writeError(w http.ResponseWriter, err error) {
	resp := errorResponse{Error: err.Error()}

	status := http.StatusInternalServerError
	switch {
	case scheduling.IsNotFound(err):
		status = http.StatusNotFound
	case scheduling.IsRetryable(err):
		status = http.StatusConflict
	case scheduling.IsClientError(err):
		status = http.StatusUnprocessableEntity
	}

	var invalid *scheduling.ScheduleInvalidError
	if errors.As(err, &invalid) {
		for _, v := range invalid.Violations {
			resp.Violations = append(resp.Violations, issueResponse{Code: v.Code, Message: v.Message})
		}
	}

	writeJSON(w, status, resp)
}
