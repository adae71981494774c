package attendance

import (
	"fmt"
	"math"
	"time"
)

// Timer is the locally ticked view of the working counter. It is always
// rebuilt from a server Status by Reconcile and never accumulates on its own:
// Tick recomputes from the same base every time.
type Timer struct {
	State              State
	SessionStart       time.Time // zero unless Working
	BaseWorkingSeconds int64
	BreakSeconds       int64
	WorkingSeconds     int64
}

// Reconcile derives the timer from st alone. Offline yields the zero timer.
func Reconcile(st Status, now time.Time) Timer {
	state := StateOf(st)
	if state == StateOffline {
		return Timer{State: StateOffline}
	}

	t := Timer{
		State:              state,
		BaseWorkingSeconds: max(st.TotalWorkingSeconds, 0),
		BreakSeconds:       max(st.TotalBreakSeconds, 0),
	}
	if state == StateWorking && st.CurrentSessionStart != nil {
		t.SessionStart = *st.CurrentSessionStart
	}
	t.WorkingSeconds = t.workingAt(now)
	return t
}

// Tick advances the counter to now. Only a Working timer moves.
func (t Timer) Tick(now time.Time) Timer {
	if t.State != StateWorking {
		return t
	}
	t.WorkingSeconds = t.workingAt(now)
	return t
}

func (t Timer) workingAt(now time.Time) int64 {
	if t.State != StateWorking || t.SessionStart.IsZero() {
		return t.BaseWorkingSeconds
	}
	return t.BaseWorkingSeconds + max(RoundedSeconds(t.SessionStart, now), 0)
}

func (t Timer) WorkingTime() string {
	return FormatHMS(t.WorkingSeconds)
}

func (t Timer) BreakTime() string {
	return FormatHMS(t.BreakSeconds)
}

// RoundedSeconds is to-from in whole seconds, rounded half away from zero.
func RoundedSeconds(from, to time.Time) int64 {
	return int64(math.Round(to.Sub(from).Seconds()))
}

// FormatHMS renders seconds as zero-padded HH:MM:SS. Hours grow past 99
// rather than wrap; negatives render as zero.
func FormatHMS(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, seconds%3600/60, seconds%60)
}
