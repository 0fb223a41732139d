package domain

import (
	"math"
	"strings"
	"time"
)

// RawCapture is capture metadata as decoded from an image or supplied by
// the client, before interpretation.
type RawCapture struct {
	// DateTime is the capture timestamp, typically the EXIF
	// DateTimeOriginal value ("2006:01:02 15:04:05").
	DateTime  string
	Latitude  *GPSCoordinate
	Longitude *GPSCoordinate
}

// GPSCoordinate is a degrees/minutes/seconds triple with its hemisphere
// reference ("N", "S", "E" or "W").
type GPSCoordinate struct {
	DMS [3]float64
	Ref string
}

// CaptureInfo is the normalised capture metadata.
type CaptureInfo struct {
	CapturedAt *time.Time
	Latitude   *float64
	Longitude  *float64
}

var captureLayouts = []string{
	"2006:01:02 15:04:05",
	"2006:01:02 15:04:05-07:00",
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

// InterpretCapture normalises raw metadata. It never fails: anything
// missing or malformed is left absent. Timestamps without a zone are read
// in loc.
func InterpretCapture(raw RawCapture, loc *time.Location) CaptureInfo {
	if loc == nil {
		loc = time.UTC
	}
	var info CaptureInfo
	if t, ok := parseCaptureTime(raw.DateTime, loc); ok {
		info.CapturedAt = &t
	}

	lat, latOK := toDecimal(raw.Latitude, "S", 90)
	lng, lngOK := toDecimal(raw.Longitude, "W", 180)
	if latOK && lngOK {
		info.Latitude = &lat
		info.Longitude = &lng
	}
	return info
}

func parseCaptureTime(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(strings.TrimRight(s, "\x00"))
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range captureLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err == nil && !t.IsZero() {
			return t, true
		}
	}
	return time.Time{}, false
}

// toDecimal converts c to signed decimal degrees. negRef is the hemisphere
// reference that flips the sign.
func toDecimal(c *GPSCoordinate, negRef string, limit float64) (float64, bool) {
	if c == nil {
		return 0, false
	}
	v := c.DMS[0] + c.DMS[1]/60 + c.DMS[2]/3600
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > limit {
		return 0, false
	}
	if strings.EqualFold(strings.TrimSpace(c.Ref), negRef) {
		v = -v
	}
	return v, true
}
