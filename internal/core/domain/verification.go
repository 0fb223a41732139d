package domain

import "time"

// VerificationRecord is one photo submission for a banner. Records are
// append-only and never modified once written.
type VerificationRecord struct {
	PhotoRef   string
	UploadedAt time.Time
	CapturedAt *time.Time
	Latitude   *float64
	Longitude  *float64
	IsVerified bool
}

// SameDay reports whether captured falls on the same calendar date as now
// in loc. A nil capture time never matches.
func SameDay(captured *time.Time, now time.Time, loc *time.Location) bool {
	if captured == nil {
		return false
	}
	if loc == nil {
		loc = time.UTC
	}
	cy, cm, cd := captured.In(loc).Date()
	ny, nm, nd := now.In(loc).Date()
	return cy == ny && cm == nm && cd == nd
}
