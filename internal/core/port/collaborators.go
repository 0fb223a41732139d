package port

import (
	"context"

	"adfleet/internal/core/domain"
)

// PhotoStore persists uploaded verification photos and returns an opaque
// reference that can be used to retrieve them later.
type PhotoStore interface {
	Put(ctx context.Context, data []byte, contentType string) (string, error)
}

// CaptureDecoder extracts capture metadata embedded in image bytes. The
// boolean is false when the image carries no metadata.
type CaptureDecoder interface {
	Decode(photo []byte) (domain.RawCapture, bool)
}

// Locker serialises work on a key across goroutines or processes. The
// returned function releases the lock.
type Locker interface {
	Lock(ctx context.Context, key string) (func(), error)
}

// Recorder receives business metrics.
type Recorder interface {
	ClaimObserved(outcome string)
	VerificationObserved(verified bool)
	BannersRetired(n int)
}
