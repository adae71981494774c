package events

import "time"

const AttendanceSessionTopic = "hr.attendance.session.v1"

const (
	EventClockedIn    = "attendance.clocked_in"
	EventClockedOut   = "attendance.clocked_out"
	EventBreakStarted = "attendance.break_started"
	EventBreakEnded   = "attendance.break_ended"
)

// AttendanceTransitionedEvent is published after the backend confirmed a
// clock-in, clock-out or break toggle.
type AttendanceTransitionedEvent struct {
	EventID     string    `json:"event_id"`
	EventType   string    `json:"event_type"`
	UserID      string    `json:"user_id"`
	EmployeeID  string    `json:"employee_id"`
	CompanyID   string    `json:"company_id"`
	FromState   string    `json:"from_state"`
	ToState     string    `json:"to_state"`
	Fingerprint string    `json:"device_fingerprint"`
	OccurredAt  time.Time `json:"occurred_at"`
}
