package leave

import (
	"fmt"
	"time"
)

// LeaveResponse is a leave as returned by the backend leave lookup.
type LeaveResponse struct {
	ID        string `json:"id"`
	LeaveType string `json:"leave_type"`
	Status    string `json:"status"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason"`
}

// Summary is the leave shown next to the attendance counter.
type Summary struct {
	Type      Type   `json:"leave_type"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Reason    string `json:"reason,omitempty"`
}

func (r LeaveResponse) toRecord() (Record, error) {
	typ, ok := parseType(r.LeaveType)
	if !ok {
		return Record{}, fmt.Errorf("unknown leave_type %q", r.LeaveType)
	}
	status, ok := parseStatus(r.Status)
	if !ok {
		return Record{}, fmt.Errorf("unknown status %q", r.Status)
	}
	start, err := time.Parse(DateLayout, r.StartDate)
	if err != nil {
		return Record{}, fmt.Errorf("start_date: %w", err)
	}
	end, err := time.Parse(DateLayout, r.EndDate)
	if err != nil {
		return Record{}, fmt.Errorf("end_date: %w", err)
	}
	if end.Before(start) {
		return Record{}, fmt.Errorf("end_date %s before start_date %s", r.EndDate, r.StartDate)
	}
	return Record{
		ID:        r.ID,
		Type:      typ,
		Status:    status,
		StartDate: start,
		EndDate:   end,
		Reason:    r.Reason,
	}, nil
}

func mapToResponse(r Record) LeaveResponse {
	return LeaveResponse{
		ID:        r.ID,
		LeaveType: string(r.Type),
		Status:    string(r.Status),
		StartDate: r.StartDate.Format(DateLayout),
		EndDate:   r.EndDate.Format(DateLayout),
		Reason:    r.Reason,
	}
}

// ToSummary is nil-safe so callers can pass Active's result directly.
func ToSummary(r *Record) *Summary {
	if r == nil {
		return nil
	}
	return &Summary{
		Type:      r.Type,
		StartDate: r.StartDate.Format(DateLayout),
		EndDate:   r.EndDate.Format(DateLayout),
		Reason:    r.Reason,
	}
}
