package exif

import (
	"bytes"

	"github.com/rwcarlsen/goexif/exif"

	"adfleet/internal/core/domain"
	"adfleet/internal/core/port"
)

var _ port.CaptureDecoder = Decoder{}

// Decoder extracts capture metadata from the EXIF block of a JPEG or TIFF
// photo.
type Decoder struct{}

// Decode returns the raw capture time and GPS position of photo. The
// capture time is DateTimeOriginal, else DateTimeDigitized. ok is
// false when the photo carries no usable EXIF data.
func (Decoder) Decode(photo []byte) (raw domain.RawCapture, ok bool) {
	defer func() {
		// goexif panics on some truncated IFDs.
		if recover() != nil {
			raw, ok = domain.RawCapture{}, false
		}
	}()

	x, err := exif.Decode(bytes.NewReader(photo))
	if x == nil || (err != nil && exif.IsCriticalError(err)) {
		return domain.RawCapture{}, false
	}

	// IFD0 DateTime is the file change time and is never read: a re-saved
	// old photo must not pass as taken today.
	raw.DateTime = stringTag(x, exif.DateTimeOriginal)
	if raw.DateTime == "" {
		raw.DateTime = stringTag(x, exif.DateTimeDigitized)
	}
	raw.Latitude = coordinate(x, exif.GPSLatitude, exif.GPSLatitudeRef)
	raw.Longitude = coordinate(x, exif.GPSLongitude, exif.GPSLongitudeRef)
	return raw, raw.DateTime != "" || raw.Latitude != nil || raw.Longitude != nil
}

func stringTag(x *exif.Exif, name exif.FieldName) string {
	tag, err := x.Get(name)
	if err != nil {
		return ""
	}
	s, err := tag.StringVal()
	if err != nil {
		return ""
	}
	return s
}

// coordinate reads a degrees/minutes/seconds rational triple and its
// hemisphere reference.
func coordinate(x *exif.Exif, value, ref exif.FieldName) *domain.GPSCoordinate {
	tag, err := x.Get(value)
	if err != nil || tag.Count < 3 {
		return nil
	}
	var c domain.GPSCoordinate
	for i := 0; i < 3; i++ {
		num, den, err := tag.Rat2(i)
		if err != nil || den == 0 {
			return nil
		}
		c.DMS[i] = float64(num) / float64(den)
	}
	c.Ref = stringTag(x, ref)
	return &c
}
