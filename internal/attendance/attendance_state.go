package attendance

import (
	"strings"

	attendanceerrors "digiwave-dashboard/internal/attendance/errors"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// State is the attendance session state. The backend reports it as two
// booleans; "on break while not clocked in" has no State and reads as Offline.
type State int

const (
	StateOffline State = iota
	StateWorking
	StateOnBreak
)

func StateOf(st Status) State {
	switch {
	case !st.IsClockedIn:
		return StateOffline
	case st.IsOnBreak:
		return StateOnBreak
	default:
		return StateWorking
	}
}

func (s State) String() string {
	switch s {
	case StateWorking:
		return "working"
	case StateOnBreak:
		return "on_break"
	default:
		return "offline"
	}
}

var titleCaser = cases.Title(language.English)

// Label is the badge text: "Offline", "Working", "On Break".
func (s State) Label() string {
	return titleCaser.String(strings.ReplaceAll(s.String(), "_", " "))
}

// Category is the badge color class.
func (s State) Category() string {
	switch s {
	case StateWorking:
		return "success"
	case StateOnBreak:
		return "warning"
	default:
		return "danger"
	}
}

type Action string

const (
	ActionClockIn    Action = "clock_in"
	ActionClockOut   Action = "clock_out"
	ActionStartBreak Action = "start"
	ActionEndBreak   Action = "end"
)

// Next is the transition function. Every (state, action) pair not listed is
// ErrInvalidTransition.
func (s State) Next(a Action) (State, error) {
	switch {
	case s == StateOffline && a == ActionClockIn:
		return StateWorking, nil
	case s == StateWorking && a == ActionStartBreak:
		return StateOnBreak, nil
	case s == StateOnBreak && a == ActionEndBreak:
		return StateWorking, nil
	case (s == StateWorking || s == StateOnBreak) && a == ActionClockOut:
		return StateOffline, nil
	default:
		return s, attendanceerrors.ErrInvalidTransition
	}
}

// BreakAction resolves the break toggle for the current state.
func (s State) BreakAction() (Action, bool) {
	switch s {
	case StateWorking:
		return ActionStartBreak, true
	case StateOnBreak:
		return ActionEndBreak, true
	default:
		return "", false
	}
}
