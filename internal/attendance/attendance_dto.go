package attendance

import (
	"encoding/json"
	"fmt"
	"time"

	"digiwave-dashboard/internal/device"
	"digiwave-dashboard/internal/leave"
	"digiwave-dashboard/internal/notification"
)

// Backend payloads.

type StatusResponse struct {
	IsClockedIn         bool            `json:"is_clocked_in"`
	IsOnBreak           bool            `json:"is_on_break"`
	CurrentSessionStart *string         `json:"current_session_start"`
	TotalWorkingSeconds int64           `json:"total_working_seconds"`
	TotalBreakSeconds   int64           `json:"total_break_seconds"`
	SessionCount        int             `json:"session_count"`
	FirstClockIn        *string         `json:"first_clock_in"`
	PresentToday        json.RawMessage `json:"present_today,omitempty"`
	AbsentToday         json.RawMessage `json:"absent_today,omitempty"`
	ShiftTime           string          `json:"shift_time"`
}

type ClockRequest struct {
	DeviceFingerprint string `json:"device_fingerprint"`
	Timestamp         string `json:"timestamp"`
}

type BreakRequest struct {
	Action            Action `json:"action"`
	DeviceFingerprint string `json:"device_fingerprint"`
	Timestamp         string `json:"timestamp"`
}

// MutationResponse is the data of a clock or break call. Backends that do
// not return a snapshot leave Status nil.
type MutationResponse struct {
	Action string          `json:"action,omitempty"`
	Status *StatusResponse `json:"status,omitempty"`
}

type DetailsResponse struct {
	UserID   string                 `json:"user_id"`
	Date     string                 `json:"date"`
	Sessions []SessionDetailPayload `json:"sessions"`
}

type SessionDetailPayload struct {
	ClockIn  string         `json:"clock_in"`
	ClockOut *string        `json:"clock_out"`
	Breaks   []BreakPayload `json:"breaks"`
}

type BreakPayload struct {
	Start string  `json:"start"`
	End   *string `json:"end"`
}

func (r StatusResponse) toStatus() (Status, error) {
	start, err := parseOptionalTime(r.CurrentSessionStart)
	if err != nil {
		return Status{}, fmt.Errorf("current_session_start: %w", err)
	}
	first, err := parseOptionalTime(r.FirstClockIn)
	if err != nil {
		return Status{}, fmt.Errorf("first_clock_in: %w", err)
	}
	return Status{
		IsClockedIn:         r.IsClockedIn,
		IsOnBreak:           r.IsOnBreak,
		CurrentSessionStart: start,
		TotalWorkingSeconds: max(r.TotalWorkingSeconds, 0),
		TotalBreakSeconds:   max(r.TotalBreakSeconds, 0),
		SessionCount:        max(r.SessionCount, 0),
		FirstClockIn:        first,
		ShiftTime:           r.ShiftTime,
		PresentToday:        r.PresentToday,
		AbsentToday:         r.AbsentToday,
	}, nil
}

func (r DetailsResponse) toDetails(userID string, date time.Time) (Details, error) {
	d := Details{UserID: userID, Date: date, Sessions: make([]WorkSession, 0, len(r.Sessions))}
	for i, s := range r.Sessions {
		in, err := time.Parse(time.RFC3339, s.ClockIn)
		if err != nil {
			return Details{}, fmt.Errorf("sessions[%d].clock_in: %w", i, err)
		}
		out, err := parseOptionalTime(s.ClockOut)
		if err != nil {
			return Details{}, fmt.Errorf("sessions[%d].clock_out: %w", i, err)
		}
		ws := WorkSession{ClockIn: in, ClockOut: out}
		for j, b := range s.Breaks {
			bs, err := time.Parse(time.RFC3339, b.Start)
			if err != nil {
				return Details{}, fmt.Errorf("sessions[%d].breaks[%d].start: %w", i, j, err)
			}
			be, err := parseOptionalTime(b.End)
			if err != nil {
				return Details{}, fmt.Errorf("sessions[%d].breaks[%d].end: %w", i, j, err)
			}
			ws.Breaks = append(ws.Breaks, BreakInterval{Start: bs, End: be})
		}
		d.Sessions = append(d.Sessions, ws)
	}
	return d, nil
}

func parseOptionalTime(v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, *v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// Page payloads.

type MountRequest struct {
	Device device.Signals `json:"device"`
}

// ActionRequest carries the outcome of the page's confirmation dialog.
// An empty value means the dialog could not be shown.
type ActionRequest struct {
	Confirmation string `json:"confirmation" binding:"omitempty,oneof=accepted declined error"`
}

type DetailsQuery struct {
	UserID string `form:"user_id" binding:"required"`
	Date   string `form:"date" binding:"required"`
}

type ActionState struct {
	Visible bool   `json:"visible"`
	Enabled bool   `json:"enabled"`
	Label   string `json:"label,omitempty"`
	Reason  string `json:"reason,omitempty"`
}

type ActionsResponse struct {
	ClockIn  ActionState `json:"clock_in"`
	ClockOut ActionState `json:"clock_out"`
	Break    ActionState `json:"break"`
}

// DisplayResponse is everything the dashboard widget renders.
type DisplayResponse struct {
	State        string                `json:"state"`
	StatusText   string                `json:"status_text"`
	Category     string                `json:"category"`
	WorkingTime  string                `json:"working_time"`
	BreakTime    string                `json:"break_time"`
	OnBreak      bool                  `json:"on_break"`
	SessionCount int                   `json:"session_count"`
	SessionStart *time.Time            `json:"session_start,omitempty"`
	FirstClockIn *time.Time            `json:"first_clock_in,omitempty"`
	PresentToday json.RawMessage       `json:"present_today,omitempty"`
	AbsentToday  json.RawMessage       `json:"absent_today,omitempty"`
	ShiftTime    string                `json:"shift_time"`
	Timezone     string                `json:"timezone"`
	ActiveLeave  *leave.Summary        `json:"active_leave,omitempty"`
	Actions      ActionsResponse       `json:"actions"`
	Device       device.Classification `json:"device"`
	Notice       string                `json:"notice,omitempty"`
	Busy         bool                  `json:"busy"`
	Loaded       bool                  `json:"loaded"`
	Stale        bool                  `json:"stale"`
	LastSyncedAt *time.Time            `json:"last_synced_at,omitempty"`
}

type ActionResponse struct {
	Action  Action          `json:"action"`
	Display DisplayResponse `json:"display"`
}

type NotificationsResponse struct {
	Notifications []notification.Notification `json:"notifications"`
}

type DetailsView struct {
	UserID              string            `json:"user_id"`
	Date                string            `json:"date"`
	Sessions            []WorkSessionView `json:"sessions"`
	TotalWorkingTime    string            `json:"total_working_time"`
	TotalBreakTime      string            `json:"total_break_time"`
	TotalWorkingSeconds int64             `json:"total_working_seconds"`
	TotalBreakSeconds   int64             `json:"total_break_seconds"`
}

type WorkSessionView struct {
	ClockIn     time.Time           `json:"clock_in"`
	ClockOut    *time.Time          `json:"clock_out,omitempty"`
	Breaks      []BreakIntervalView `json:"breaks"`
	WorkingTime string              `json:"working_time"`
	BreakTime   string              `json:"break_time"`
}

type BreakIntervalView struct {
	Start    time.Time  `json:"start"`
	End      *time.Time `json:"end,omitempty"`
	Duration string     `json:"duration"`
}

func mapDetailsView(d Details, now time.Time) DetailsView {
	v := DetailsView{
		UserID:   d.UserID,
		Date:     d.Date.Format(leave.DateLayout),
		Sessions: make([]WorkSessionView, 0, len(d.Sessions)),
	}
	for _, s := range d.Sessions {
		worked, onBreak := s.WorkedSeconds(now), s.BreakSeconds(now)
		sv := WorkSessionView{
			ClockIn:     s.ClockIn,
			ClockOut:    s.ClockOut,
			Breaks:      make([]BreakIntervalView, 0, len(s.Breaks)),
			WorkingTime: FormatHMS(worked),
			BreakTime:   FormatHMS(onBreak),
		}
		for _, b := range s.Breaks {
			end := now
			if b.End != nil {
				end = *b.End
			}
			sv.Breaks = append(sv.Breaks, BreakIntervalView{
				Start:    b.Start,
				End:      b.End,
				Duration: FormatHMS(RoundedSeconds(b.Start, end)),
			})
		}
		v.Sessions = append(v.Sessions, sv)
		v.TotalWorkingSeconds += worked
		v.TotalBreakSeconds += onBreak
	}
	v.TotalWorkingTime = FormatHMS(v.TotalWorkingSeconds)
	v.TotalBreakTime = FormatHMS(v.TotalBreakSeconds)
	return v
}
