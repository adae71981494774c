package attendance

import (
	"time"

	attendanceerrors "digiwave-dashboard/internal/attendance/errors"
	"digiwave-dashboard/internal/leave"
)

const (
	reasonLoading  = "Loading attendance status"
	reasonInFlight = "Another attendance action is in progress"
)

// Display renders the session for the page as of now.
func (s *Session) Display() DisplayResponse {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayLocked(s.now())
}

// Subscribe streams the display after every tick and reconcile. The channel
// holds only the latest display; it is closed by the returned cancel func or
// when the session closes.
func (s *Session) Subscribe() (<-chan DisplayResponse, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan DisplayResponse, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}
	id := s.nextSub
	s.nextSub++
	s.subs[id] = ch
	ch <- s.displayLocked(s.now())

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if c, ok := s.subs[id]; ok {
			delete(s.subs, id)
			close(c)
		}
	}
}

func (s *Session) broadcastLocked(now time.Time) {
	if len(s.subs) == 0 {
		return
	}
	d := s.displayLocked(now)
	for _, ch := range s.subs {
		select {
		case ch <- d:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- d:
			default:
			}
		}
	}
}

func (s *Session) displayLocked(now time.Time) DisplayResponse {
	timer := s.timer.Tick(now)
	local := now.In(s.location)
	active := leave.Active(s.leaves, local)

	d := DisplayResponse{
		State:        timer.State.String(),
		StatusText:   timer.State.Label(),
		Category:     timer.State.Category(),
		WorkingTime:  timer.WorkingTime(),
		BreakTime:    timer.BreakTime(),
		OnBreak:      timer.State == StateOnBreak,
		SessionCount: s.status.SessionCount,
		FirstClockIn: s.status.FirstClockIn,
		PresentToday: s.status.PresentToday,
		AbsentToday:  s.status.AbsentToday,
		ShiftTime:    s.shiftWindowLocked().String(),
		Timezone:     s.location.String(),
		ActiveLeave:  leave.ToSummary(active),
		Device:       s.device,
		Busy:         s.inFlight != "",
		Loaded:       s.loaded,
		Stale:        s.stale,
	}
	if !timer.SessionStart.IsZero() {
		start := timer.SessionStart
		d.SessionStart = &start
	}
	if !s.lastSyncedAt.IsZero() {
		synced := s.lastSyncedAt
		d.LastSyncedAt = &synced
	}
	if s.device.IsMobile {
		d.Notice = attendanceerrors.ErrMobileBlocked.Message
	}
	d.Actions = s.actionsLocked(timer.State, local, active)
	return d
}

func (s *Session) actionsLocked(state State, local time.Time, active *leave.Record) ActionsResponse {
	breakLabel := "Start Break"
	if state == StateOnBreak {
		breakLabel = "End Break"
	}
	a := ActionsResponse{
		ClockIn:  ActionState{Label: "Clock In", Visible: state == StateOffline},
		ClockOut: ActionState{Label: "Clock Out", Visible: state != StateOffline},
		Break:    ActionState{Label: breakLabel, Visible: state != StateOffline},
	}

	var blocked string
	switch {
	case !s.loaded:
		blocked = reasonLoading
	case s.device.IsMobile:
		blocked = attendanceerrors.ErrMobileBlocked.Message
	case s.inFlight != "":
		blocked = reasonInFlight
	}
	if blocked != "" {
		a.ClockIn.Reason, a.ClockOut.Reason, a.Break.Reason = blocked, blocked, blocked
		return a
	}

	gate := func(st *ActionState, action Action) {
		if !st.Visible {
			return
		}
		if err := s.eligibilityLocked(action, local, active); err != nil {
			st.Reason = err.Message
			return
		}
		st.Enabled = true
	}
	gate(&a.ClockIn, ActionClockIn)
	gate(&a.ClockOut, ActionClockOut)
	if breakAction, ok := state.BreakAction(); ok {
		gate(&a.Break, breakAction)
	}
	return a
}
