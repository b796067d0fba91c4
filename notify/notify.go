/*
Package notify dispatches schedule-lifecycle notifications.

The engine only decides WHAT happened; delivery transport (messaging,
email) lives behind the Notifier interface and is out of scope here.
The default implementation writes to the process log, which is what
development and the test suite use.
*/
package notify

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/warp/shift-engine/scheduling"
)

// Event is a notification kind.
type Event string

const (
	EventSubmitted   Event = "schedule_submitted"
	EventApproved    Event = "schedule_approved"
	EventRejected    Event = "schedule_rejected"
	EventPublished   Event = "schedule_published"
	EventSLAExpired  Event = "sla_expired"
	EventOvertimeHit Event = "overtime_alert"
)

// Message is one rendered notification.
type Message struct {
	Event      Event
	ScheduleID scheduling.ScheduleID
	Body       string
}

// Notifier delivers messages. Implementations must be safe for
// concurrent use; the SLA sweeper and request handlers both send.
type Notifier interface {
	Send(ctx context.Context, msg Message) error
}

// =============================================================================
// MESSAGE BUILDERS
// =============================================================================

func Submitted(scheduleID scheduling.ScheduleID, stage scheduling.ReviewStage) Message {
	return Message{
		Event:      EventSubmitted,
		ScheduleID: scheduleID,
		Body:       fmt.Sprintf("schedule %s submitted for %s review, SLA 24h", scheduleID, stage),
	}
}

func Decided(scheduleID scheduling.ScheduleID, outcome scheduling.ReviewStatus, decider string) Message {
	event := EventApproved
	if outcome == scheduling.ReviewRejected {
		event = EventRejected
	}
	return Message{
		Event:      event,
		ScheduleID: scheduleID,
		Body:       fmt.Sprintf("schedule %s %s by %s", scheduleID, outcome, decider),
	}
}

func Published(scheduleID scheduling.ScheduleID) Message {
	return Message{
		Event:      EventPublished,
		ScheduleID: scheduleID,
		Body:       fmt.Sprintf("schedule %s is published", scheduleID),
	}
}

func SLAExpired(scheduleID scheduling.ScheduleID, newStatus scheduling.ScheduleStatus) Message {
	return Message{
		Event:      EventSLAExpired,
		ScheduleID: scheduleID,
		Body:       fmt.Sprintf("schedule %s auto-advanced to %s after SLA timeout", scheduleID, newStatus),
	}
}

// OvertimeAlert warns management that a submitted week schedules a
// worker past the regular-hour threshold.
func OvertimeAlert(scheduleID scheduling.ScheduleID, ot scheduling.OvertimeTotal) Message {
	name := ot.Name
	if name == "" {
		name = string(ot.WorkerID)
	}
	return Message{
		Event:      EventOvertimeHit,
		ScheduleID: scheduleID,
		Body:       fmt.Sprintf("schedule %s has %s overtime hours for %s this week", scheduleID, ot.Hours.StringFixed(2), name),
	}
}

// =============================================================================
// LOG NOTIFIER - Default delivery: the process log
// =============================================================================

type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) Send(_ context.Context, msg Message) error {
	log.Printf("[Notify] %s: %s", msg.Event, msg.Body)
	return nil
}

// =============================================================================
// RECORDING NOTIFIER - Captures messages for tests
// =============================================================================

type RecordingNotifier struct {
	mu       sync.Mutex
	messages []Message
}

func NewRecordingNotifier() *RecordingNotifier { return &RecordingNotifier{} }

func (n *RecordingNotifier) Send(_ context.Context, msg Message) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, msg)
	return nil
}

// Messages returns a copy of everything sent so far.
func (n *RecordingNotifier) Messages() []Message {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Message(nil), n.messages...)
}
