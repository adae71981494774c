package leave

import (
	"strings"
	"time"
)

type Type string

const (
	TypeFull       Type = "full"
	TypeFirstHalf  Type = "first_half"
	TypeSecondHalf Type = "second_half"
)

type Status string

const (
	StatusApproved  Status = "approved"
	StatusPending   Status = "pending"
	StatusRejected  Status = "rejected"
	StatusCancelled Status = "cancelled"
)

const DateLayout = "2006-01-02"

// Record is one leave as seen by the attendance session. Dates are civil
// dates stored at UTC midnight.
type Record struct {
	ID        string
	Type      Type
	Status    Status
	StartDate time.Time
	EndDate   time.Time
	Reason    string
}

// Covers reports whether the record's inclusive date range contains the civil
// date of t in t's own location.
func (r Record) Covers(t time.Time) bool {
	day := CivilDate(t)
	return !day.Before(r.StartDate) && !day.After(r.EndDate)
}

// CivilDate drops the clock and zone of t, keeping its calendar date.
func CivilDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func parseType(v string) (Type, bool) {
	switch Type(strings.ToLower(strings.TrimSpace(v))) {
	case TypeFull, "full_day":
		return TypeFull, true
	case TypeFirstHalf:
		return TypeFirstHalf, true
	case TypeSecondHalf:
		return TypeSecondHalf, true
	default:
		return "", false
	}
}

func parseStatus(v string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(v))) {
	case StatusApproved:
		return StatusApproved, true
	case StatusPending:
		return StatusPending, true
	case StatusRejected:
		return StatusRejected, true
	case StatusCancelled, "canceled":
		return StatusCancelled, true
	default:
		return "", false
	}
}
