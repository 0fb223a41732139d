package domain

import "errors"

// Kind classifies domain failures so that adapters can translate them
// without knowing every individual error value.
type Kind int

const (
	KindInternal Kind = iota
	KindNotFound
	KindConflict
	KindInvalidInput
	KindDataIntegrity
	KindForbidden
	KindUnauthorized
)

func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidInput:
		return "invalid_input"
	case KindDataIntegrity:
		return "data_integrity"
	case KindForbidden:
		return "forbidden"
	case KindUnauthorized:
		return "unauthorized"
	default:
		return "internal"
	}
}

// Error is a typed domain failure. Code is stable and safe to expose to
// clients; Message is a human readable explanation.
type Error struct {
	Kind    Kind
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

var (
	ErrBannerNotFound   = &Error{Kind: KindNotFound, Code: "banner-not-found", Message: "banner not found"}
	ErrCampaignNotFound = &Error{Kind: KindNotFound, Code: "campaign-not-found", Message: "campaign not found"}
	ErrDriverNotFound   = &Error{Kind: KindNotFound, Code: "driver-not-found", Message: "driver profile not found"}

	ErrBannerNotAvailable = &Error{Kind: KindConflict, Code: "not-available", Message: "banner already taken"}
	ErrDriverAtCapacity   = &Error{Kind: KindConflict, Code: "at-capacity", Message: "active banner limit reached"}
	ErrCampaignInactive   = &Error{Kind: KindConflict, Code: "campaign-inactive", Message: "campaign is not active"}
	ErrSlotsExhausted     = &Error{Kind: KindConflict, Code: "slots-exhausted", Message: "campaign has no remaining slots"}
	ErrNotAssigned        = &Error{Kind: KindConflict, Code: "not-assigned", Message: "banner is not assigned to you"}
	ErrBannerCompleted    = &Error{Kind: KindConflict, Code: "banner-completed", Message: "banner is already completed"}
	ErrCampaignClosed     = &Error{Kind: KindConflict, Code: "campaign-closed", Message: "campaign is already closed"}

	ErrInvalidBatchCount = &Error{Kind: KindInvalidInput, Code: "invalid-count", Message: "banner count must be at least 1"}
	ErrInvalidPhoto      = &Error{Kind: KindInvalidInput, Code: "invalid-photo", Message: "photo must be a non-empty jpeg or png image"}
	ErrInvalidCampaign   = &Error{Kind: KindInvalidInput, Code: "invalid-campaign", Message: "invalid campaign"}
	ErrInvalidPrincipal  = &Error{Kind: KindInvalidInput, Code: "invalid-principal", Message: "invalid principal"}
	ErrInvalidVehicle    = &Error{Kind: KindInvalidInput, Code: "invalid-vehicle-class", Message: "vehicle class must be auto or car"}

	ErrMissingRate = &Error{Kind: KindDataIntegrity, Code: "missing-rate", Message: "no daily rate for vehicle class"}

	ErrForbidden    = &Error{Kind: KindForbidden, Code: "forbidden", Message: "access denied"}
	ErrUnauthorized = &Error{Kind: KindUnauthorized, Code: "unauthorized", Message: "authentication required"}
)

// KindOf reports the Kind of the first domain Error in err's chain.
// Errors that carry no domain Error are KindInternal.
func KindOf(err error) Kind {
	var de *Error
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindInternal
}

// CodeOf returns the client-facing code of err, or "internal".
func CodeOf(err error) string {
	var de *Error
	if errors.As(err, &de) {
		return de.Code
	}
	return "internal"
}
