package leave

import "time"

var typePrecedence = map[Type]int{
	TypeFull:       3,
	TypeSecondHalf: 2,
	TypeFirstHalf:  1,
}

// Active returns the approved leave covering now's date, or nil. When several
// approved leaves overlap the day, the most restrictive one wins: full over
// second half over first half.
func Active(records []Record, now time.Time) *Record {
	var best *Record
	for i := range records {
		r := records[i]
		if r.Status != StatusApproved || !r.Covers(now) {
			continue
		}
		if best == nil || typePrecedence[r.Type] > typePrecedence[best.Type] {
			best = &records[i]
		}
	}
	if best == nil {
		return nil
	}
	cp := *best
	return &cp
}
