// Package store provides in-memory implementations of the scheduling
// storage interfaces, for tests and development.
package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/warp/shift-engine/scheduling"
)

// =============================================================================
// MEMORY STORE - Implements all four storage interfaces
// =============================================================================

type Memory struct {
	mu sync.RWMutex

	workers   map[scheduling.WorkerID]scheduling.Worker
	schedules map[scheduling.ScheduleID]scheduling.Schedule
	reviews   map[scheduling.ReviewID]scheduling.ReviewRecord
	weeks     map[weekKey]weekData
	timeOff   map[scheduling.LocationID][]scheduling.TimeOffDay
}

type weekKey struct {
	LocationID scheduling.LocationID
	WeekStart  string
}

type weekData struct {
	slots       []scheduling.ShiftSlot
	assignments []scheduling.Assignment
}

func NewMemory() *Memory {
	return &Memory{
		workers:   make(map[scheduling.WorkerID]scheduling.Worker),
		schedules: make(map[scheduling.ScheduleID]scheduling.Schedule),
		reviews:   make(map[scheduling.ReviewID]scheduling.ReviewRecord),
		weeks:     make(map[weekKey]weekData),
		timeOff:   make(map[scheduling.LocationID][]scheduling.TimeOffDay),
	}
}

// Compile-time interface checks.
var (
	_ scheduling.RosterStore   = (*Memory)(nil)
	_ scheduling.WeekStore     = (*Memory)(nil)
	_ scheduling.ScheduleStore = (*Memory)(nil)
	_ scheduling.TimeOffStore  = (*Memory)(nil)
)

// =============================================================================
// ROSTER
// =============================================================================

// SaveWorker inserts or updates a worker record.
func (m *Memory) SaveWorker(_ context.Context, w scheduling.Worker) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.workers[w.ID] = w
	return nil
}

func (m *Memory) ListWorkers(_ context.Context, locationID scheduling.LocationID) ([]scheduling.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []scheduling.Worker
	for _, w := range m.workers {
		if w.LocationID == locationID {
			result = append(result, w)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

func (m *Memory) GetWorker(_ context.Context, id scheduling.WorkerID) (*scheduling.Worker, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	w, ok := m.workers[id]
	if !ok {
		return nil, scheduling.ErrWorkerNotFound
	}
	return &w, nil
}

// =============================================================================
// WEEK - Atomic overwrite under one lock
// =============================================================================

func (m *Memory) ReplaceWeek(_ context.Context, locationID scheduling.LocationID, weekStart scheduling.Date, slots []scheduling.ShiftSlot, assignments []scheduling.Assignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Single map write under the lock: readers see the old set or the
	// new set, never a mix.
	k := weekKey{LocationID: locationID, WeekStart: weekStart.String()}
	m.weeks[k] = weekData{
		slots:       append([]scheduling.ShiftSlot(nil), slots...),
		assignments: append([]scheduling.Assignment(nil), assignments...),
	}
	return nil
}

func (m *Memory) weekForSchedule(id scheduling.ScheduleID) (weekData, error) {
	s, ok := m.schedules[id]
	if !ok {
		return weekData{}, scheduling.ErrScheduleNotFound
	}
	k := weekKey{LocationID: s.LocationID, WeekStart: s.WeekStart.String()}
	return m.weeks[k], nil
}

func (m *Memory) ListSlots(_ context.Context, scheduleID scheduling.ScheduleID) ([]scheduling.ShiftSlot, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	week, err := m.weekForSchedule(scheduleID)
	if err != nil {
		return nil, err
	}
	return append([]scheduling.ShiftSlot(nil), week.slots...), nil
}

func (m *Memory) ListAssignments(_ context.Context, scheduleID scheduling.ScheduleID) ([]scheduling.Assignment, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	week, err := m.weekForSchedule(scheduleID)
	if err != nil {
		return nil, err
	}
	return append([]scheduling.Assignment(nil), week.assignments...), nil
}

// =============================================================================
// SCHEDULES - CAS on (id, status)
// =============================================================================

func (m *Memory) CreateSchedule(_ context.Context, s *scheduling.Schedule) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.schedules[s.ID] = *s
	return nil
}

func (m *Memory) GetSchedule(_ context.Context, id scheduling.ScheduleID) (*scheduling.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.schedules[id]
	if !ok {
		return nil, scheduling.ErrScheduleNotFound
	}
	return &s, nil
}

func (m *Memory) SetStatusAndDeadline(_ context.Context, id scheduling.ScheduleID, from, to scheduling.ScheduleStatus, deadline *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.schedules[id]
	if !ok {
		return scheduling.ErrScheduleNotFound
	}
	if s.Status != from {
		return scheduling.ErrConcurrentTransition
	}

	s.Status = to
	if deadline != nil {
		d := *deadline
		s.SLADeadline = &d
	} else {
		s.SLADeadline = nil
	}
	m.schedules[id] = s
	return nil
}

// ListSchedules returns all schedules for a location, newest week first.
func (m *Memory) ListSchedules(_ context.Context, locationID scheduling.LocationID) ([]scheduling.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []scheduling.Schedule
	for _, s := range m.schedules {
		if s.LocationID == locationID {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].WeekStart.After(result[j].WeekStart) })
	return result, nil
}

func (m *Memory) ListExpired(_ context.Context, now time.Time) ([]scheduling.Schedule, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []scheduling.Schedule
	for _, s := range m.schedules {
		if s.Status.InReview() && s.SLADeadline != nil && s.SLADeadline.Before(now) {
			result = append(result, s)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].ID < result[j].ID })
	return result, nil
}

// =============================================================================
// REVIEWS
// =============================================================================

func (m *Memory) CreateReviewRecord(_ context.Context, r *scheduling.ReviewRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reviews[r.ID] = *r
	return nil
}

func (m *Memory) GetReviewRecord(_ context.Context, id scheduling.ReviewID) (*scheduling.ReviewRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	r, ok := m.reviews[id]
	if !ok {
		return nil, scheduling.ErrReviewNotFound
	}
	return &r, nil
}

func (m *Memory) DecideReviewRecord(_ context.Context, id scheduling.ReviewID, status scheduling.ReviewStatus, comment, deciderID string, at time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.reviews[id]
	if !ok {
		return scheduling.ErrReviewNotFound
	}
	if r.Status != scheduling.ReviewPending {
		return scheduling.ErrReviewAlreadyDecided
	}

	r.Status = status
	r.Comment = comment
	r.DecidedBy = deciderID
	decidedAt := at
	r.DecidedAt = &decidedAt
	m.reviews[id] = r
	return nil
}

func (m *Memory) ListReviews(_ context.Context, scheduleID scheduling.ScheduleID) ([]scheduling.ReviewRecord, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []scheduling.ReviewRecord
	for _, r := range m.reviews {
		if r.ScheduleID == scheduleID {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool { return result[i].CreatedAt.Before(result[j].CreatedAt) })
	return result, nil
}

// =============================================================================
// TIME OFF
// =============================================================================

// SaveTimeOff records an approved day off.
func (m *Memory) SaveTimeOff(_ context.Context, locationID scheduling.LocationID, day scheduling.TimeOffDay) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.timeOff[locationID] = append(m.timeOff[locationID], day)
	return nil
}

func (m *Memory) ListApprovedTimeOff(_ context.Context, locationID scheduling.LocationID, from, to scheduling.Date) ([]scheduling.TimeOffDay, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var result []scheduling.TimeOffDay
	for _, d := range m.timeOff[locationID] {
		if !d.Date.Before(from) && !d.Date.After(to) {
			result = append(result, d)
		}
	}
	return result, nil
}
