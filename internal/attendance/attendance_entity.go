package attendance

import (
	"encoding/json"
	"time"
)

// Status is the backend's snapshot of today's attendance for one user. A new
// snapshot always replaces the previous one wholesale.
type Status struct {
	IsClockedIn         bool
	IsOnBreak           bool
	CurrentSessionStart *time.Time
	TotalWorkingSeconds int64
	TotalBreakSeconds   int64
	SessionCount        int
	FirstClockIn        *time.Time
	ShiftTime           string

	// Report fields passed through to the page untouched.
	PresentToday json.RawMessage
	AbsentToday  json.RawMessage
}

// BreakResult is the backend's answer to a break toggle. Status is set only
// when the backend returned a fresh snapshot with it.
type BreakResult struct {
	Action Action
	Status *Status
}

// Details is the drill-down of one user's day.
type Details struct {
	UserID   string
	Date     time.Time
	Sessions []WorkSession
}

type WorkSession struct {
	ClockIn  time.Time
	ClockOut *time.Time
	Breaks   []BreakInterval
}

type BreakInterval struct {
	Start time.Time
	End   *time.Time
}

// BreakSeconds sums closed breaks, and the open one up to now.
func (w WorkSession) BreakSeconds(now time.Time) int64 {
	var total int64
	for _, b := range w.Breaks {
		end := now
		if b.End != nil {
			end = *b.End
		}
		total += max(RoundedSeconds(b.Start, end), 0)
	}
	return total
}

// WorkedSeconds is the session length minus its breaks. An open session
// counts up to now.
func (w WorkSession) WorkedSeconds(now time.Time) int64 {
	end := now
	if w.ClockOut != nil {
		end = *w.ClockOut
	}
	return max(RoundedSeconds(w.ClockIn, end)-w.BreakSeconds(now), 0)
}
