package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"adfleet/internal/core/domain"
	"adfleet/internal/core/port"
)

var _ port.VerificationUseCase = (*VerificationUseCase)(nil)

// VerificationUseCase decides whether a photo proves that a claimed banner
// is on the road today. It never mutates banners itself; it appends a
// record through the inventory repository.
type VerificationUseCase struct {
	repo     port.InventoryRepository
	photos   port.PhotoStore
	decoder  port.CaptureDecoder
	locker   port.Locker
	metrics  port.Recorder
	logger   *slog.Logger
	loc      *time.Location
	maxPhoto int
	now      func() time.Time
}

// VerificationOptions tunes the verification engine.
type VerificationOptions struct {
	// Location is the reference time zone for the same-day rule.
	Location *time.Location
	// MaxPhotoBytes rejects larger uploads. Zero disables the check.
	MaxPhotoBytes int
}

func NewVerificationUseCase(
	repo port.InventoryRepository,
	photos port.PhotoStore,
	decoder port.CaptureDecoder,
	locker port.Locker,
	opts VerificationOptions,
	metrics port.Recorder,
	logger *slog.Logger,
) *VerificationUseCase {
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &VerificationUseCase{
		repo:     repo,
		photos:   photos,
		decoder:  decoder,
		locker:   locker,
		metrics:  metrics,
		logger:   orDiscard(logger),
		loc:      opts.Location,
		maxPhoto: opts.MaxPhotoBytes,
		now:      time.Now,
	}
}

// SubmitVerification stores the photo, interprets its capture metadata and
// records the attempt. The attempt is recorded whether or not it proves
// same-day placement. Submissions for one banner are serialised.
func (u *VerificationUseCase) SubmitVerification(ctx context.Context, in port.SubmitVerificationInput) (*port.VerificationResult, error) {
	contentType, err := u.photoContentType(in.Photo)
	if err != nil {
		return nil, err
	}

	unlock, err := u.locker.Lock(ctx, "banner:"+in.BannerID)
	if err != nil {
		return nil, fmt.Errorf("lock banner %s: %w", in.BannerID, err)
	}
	defer unlock()

	b, err := u.repo.GetBanner(ctx, in.BannerID)
	if err != nil {
		return nil, err
	}
	if b.DriverID != in.DriverID || !b.Status.Active() {
		return nil, domain.ErrNotAssigned
	}

	info := domain.InterpretCapture(u.rawCapture(in), u.loc)

	ref, err := u.photos.Put(ctx, in.Photo, contentType)
	if err != nil {
		return nil, fmt.Errorf("store photo: %w", err)
	}

	now := u.now()
	rec := domain.VerificationRecord{
		PhotoRef:   ref,
		UploadedAt: now,
		CapturedAt: info.CapturedAt,
		Latitude:   info.Latitude,
		Longitude:  info.Longitude,
		IsVerified: domain.SameDay(info.CapturedAt, now, u.loc),
	}
	updated, err := u.repo.AppendVerification(ctx, in.BannerID, in.DriverID, rec)
	if err != nil {
		return nil, err
	}

	u.metrics.VerificationObserved(rec.IsVerified)
	u.logger.Info("verification recorded",
		slog.String("banner_id", in.BannerID),
		slog.String("driver_id", in.DriverID),
		slog.Bool("verified", rec.IsVerified),
		slog.Bool("has_capture_time", rec.CapturedAt != nil),
		slog.String("status", string(updated.Status)))

	return &port.VerificationResult{IsVerified: rec.IsVerified, Record: rec, Banner: *updated}, nil
}

// rawCapture merges client supplied metadata over the metadata embedded in
// the photo.
func (u *VerificationUseCase) rawCapture(in port.SubmitVerificationInput) domain.RawCapture {
	var raw domain.RawCapture
	if u.decoder != nil {
		if decoded, ok := u.decoder.Decode(in.Photo); ok {
			raw = decoded
		}
	}
	if c := in.ClientCapture; c != nil {
		if c.DateTime != "" {
			raw.DateTime = c.DateTime
		}
		if c.Latitude != nil && c.Longitude != nil {
			raw.Latitude, raw.Longitude = c.Latitude, c.Longitude
		}
	}
	return raw
}

func (u *VerificationUseCase) photoContentType(photo []byte) (string, error) {
	if len(photo) == 0 || (u.maxPhoto > 0 && len(photo) > u.maxPhoto) {
		return "", domain.ErrInvalidPhoto
	}
	switch ct := http.DetectContentType(photo); ct {
	case "image/jpeg", "image/png":
		return ct, nil
	default:
		return "", domain.ErrInvalidPhoto
	}
}
