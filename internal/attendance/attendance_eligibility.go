package attendance

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"digiwave-dashboard/internal/leave"
)

// ShiftWindow is a daily shift at hour granularity. EndHour < StartHour is an
// overnight shift; StartHour == EndHour covers the whole day.
type ShiftWindow struct {
	StartHour int
	EndHour   int
}

func (w ShiftWindow) Contains(hour int) bool {
	start, end, hour := mod24(w.StartHour), mod24(w.EndHour), mod24(hour)
	switch {
	case start == end:
		return true
	case w.IsOvernight():
		return hour >= start || hour < end
	default:
		return hour >= start && hour < end
	}
}

// IsOvernight reports whether the shift crosses midnight.
func (w ShiftWindow) IsOvernight() bool {
	return mod24(w.EndHour) < mod24(w.StartHour)
}

func (w ShiftWindow) String() string {
	return fmt.Sprintf("%02d:00 - %02d:00", mod24(w.StartHour), mod24(w.EndHour))
}

func mod24(h int) int {
	return ((h % 24) + 24) % 24
}

var shiftTimePattern = regexp.MustCompile(
	`(?i)^\s*(\d{1,2})(?::(\d{2}))?(?::\d{2})?\s*(am|pm)?\s*(?:-|\x{2013}|to)\s*(\d{1,2})(?::(\d{2}))?(?::\d{2})?\s*(am|pm)?\s*$`,
)

// ParseShiftWindow reads the backend's shift_time text, e.g. "09:00-18:00",
// "21:00 - 06:00", "9-18" or "9:00 AM - 6:00 PM". Minutes are dropped.
func ParseShiftWindow(s string) (ShiftWindow, bool) {
	m := shiftTimePattern.FindStringSubmatch(s)
	if m == nil {
		return ShiftWindow{}, false
	}
	start, ok := parseHour(m[1], m[3])
	if !ok {
		return ShiftWindow{}, false
	}
	end, ok := parseHour(m[4], m[6])
	if !ok {
		return ShiftWindow{}, false
	}
	return ShiftWindow{StartHour: start, EndHour: end}, true
}

func parseHour(digits, meridiem string) (int, bool) {
	h, err := strconv.Atoi(digits)
	if err != nil {
		return 0, false
	}
	switch strings.ToLower(meridiem) {
	case "":
		if h > 24 {
			return 0, false
		}
		return mod24(h), true
	case "am":
		if h < 1 || h > 12 {
			return 0, false
		}
		return h % 12, true
	default:
		if h < 1 || h > 12 {
			return 0, false
		}
		return h%12 + 12, true
	}
}

type ShiftCheck struct {
	IsWithinShift bool
	Message       string
}

// ValidateShiftTiming checks now's hour, in now's location, against w.
func ValidateShiftTiming(now time.Time, w ShiftWindow) ShiftCheck {
	if w.Contains(now.Hour()) {
		return ShiftCheck{IsWithinShift: true}
	}
	return ShiftCheck{
		Message: fmt.Sprintf("You can only clock in during your shift hours (%s)", w),
	}
}

type LeaveCheck struct {
	IsAllowed bool
	Message   string
}

const (
	secondHalfClockInFrom  = 10
	secondHalfClockInUntil = 15
	firstHalfClockInFrom   = 14
)

// ValidateLeaveRestrictions gates clock-in and clock-out by the active
// approved leave. A nil leave and break actions are always allowed.
func ValidateLeaveRestrictions(action Action, lv *leave.Record, now time.Time) LeaveCheck {
	if lv == nil {
		return LeaveCheck{IsAllowed: true}
	}
	hour := now.Hour()

	switch action {
	case ActionClockIn:
		switch lv.Type {
		case leave.TypeFull:
			return LeaveCheck{Message: "Cannot clock-in on full day leave"}
		case leave.TypeSecondHalf:
			if hour < secondHalfClockInFrom || hour >= secondHalfClockInUntil {
				return LeaveCheck{Message: fmt.Sprintf(
					"You are on second half leave. Clock-in is only allowed between %02d:00 and %02d:00",
					secondHalfClockInFrom, secondHalfClockInUntil,
				)}
			}
		case leave.TypeFirstHalf:
			if hour < firstHalfClockInFrom {
				return LeaveCheck{Message: fmt.Sprintf(
					"You are on first half leave. Clock-in is only allowed from %02d:00",
					firstHalfClockInFrom,
				)}
			}
		}
	case ActionClockOut:
		if lv.Type == leave.TypeSecondHalf && hour >= secondHalfClockInUntil {
			return LeaveCheck{Message: fmt.Sprintf(
				"You are on second half leave. Clock-out is not allowed after %02d:00",
				secondHalfClockInUntil,
			)}
		}
	}
	return LeaveCheck{IsAllowed: true}
}
