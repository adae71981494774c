package attendance

import (
	"context"

	attendanceerrors "digiwave-dashboard/internal/attendance/errors"
)

// Prompt is what the confirmation dialog shows before a clock-out or a
// break toggle.
type Prompt struct {
	Action  Action
	Title   string
	Message string
}

// Confirmer asks the user to confirm an action. An error means the dialog
// could not be shown at all.
type Confirmer interface {
	Confirm(ctx context.Context, p Prompt) (bool, error)
}

type ConfirmFunc func(ctx context.Context, p Prompt) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, p Prompt) (bool, error) {
	return f(ctx, p)
}

const (
	ConfirmationAccepted = "accepted"
	ConfirmationDeclined = "declined"
	ConfirmationError    = "error"
)

// ConfirmationResult replays the outcome of a dialog the page already
// rendered. Anything but accepted or declined reads as a dialog failure.
func ConfirmationResult(outcome string) Confirmer {
	return ConfirmFunc(func(context.Context, Prompt) (bool, error) {
		switch outcome {
		case ConfirmationAccepted:
			return true, nil
		case ConfirmationDeclined:
			return false, nil
		default:
			return false, attendanceerrors.ErrConfirmationUnavailable
		}
	})
}

func promptFor(a Action) Prompt {
	switch a {
	case ActionClockOut:
		return Prompt{Action: a, Title: "Clock Out", Message: "Are you sure you want to clock out?"}
	case ActionStartBreak:
		return Prompt{Action: a, Title: "Start Break", Message: "Are you sure you want to start your break?"}
	case ActionEndBreak:
		return Prompt{Action: a, Title: "End Break", Message: "Are you sure you want to end your break?"}
	default:
		return Prompt{Action: a, Title: "Confirm", Message: "Are you sure?"}
	}
}
