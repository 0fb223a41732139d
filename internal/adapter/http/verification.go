package httpadapter

import (
	"errors"
	"io"
	"math"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"adfleet/internal/core/domain"
	"adfleet/internal/core/port"
)

const notVerifiedMessage = "photo not proven to be from today"

// handleSubmitVerification accepts a multipart upload with a "photo" file
// and optional captured_at, latitude and longitude fields. Responds 201
// whether or not the photo proves same-day placement; the record is kept
// either way.
func (h *Handler) handleSubmitVerification(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.uploadLimit+64<<10)
	if err := r.ParseMultipartForm(h.uploadLimit); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "photo-too-large", Message: "photo exceeds upload limit"})
			return
		}
		badRequest(w, "invalid-form", "expected multipart/form-data")
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	file, _, err := r.FormFile("photo")
	if err != nil {
		writeError(w, h.logger, domain.ErrInvalidPhoto)
		return
	}
	defer file.Close()
	photo, err := io.ReadAll(io.LimitReader(file, h.uploadLimit+1))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	if int64(len(photo)) > h.uploadLimit {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "photo-too-large", Message: "photo exceeds upload limit"})
		return
	}

	client, err := clientCapture(r)
	if err != nil {
		badRequest(w, "invalid-capture", err.Error())
		return
	}

	bannerID := chi.URLParam(r, "bannerID")
	res, err := h.verification.SubmitVerification(r.Context(), port.SubmitVerificationInput{
		BannerID:      bannerID,
		DriverID:      driverFrom(r).DriverID,
		Photo:         photo,
		ClientCapture: client,
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}

	out := verificationResponse{
		BannerID:   bannerID,
		IsVerified: res.IsVerified,
		Status:     string(res.Banner.Status),
		Record:     toRecord(res.Record),
	}
	if !res.IsVerified {
		out.Message = notVerifiedMessage
	}
	writeJSON(w, http.StatusCreated, out)
}

// clientCapture reads device supplied capture metadata. Coordinates are
// decimal degrees and only used as a pair.
func clientCapture(r *http.Request) (*domain.RawCapture, error) {
	capturedAt := r.FormValue("captured_at")
	latRaw, lonRaw := r.FormValue("latitude"), r.FormValue("longitude")
	if capturedAt == "" && latRaw == "" && lonRaw == "" {
		return nil, nil
	}
	raw := &domain.RawCapture{DateTime: capturedAt}
	if latRaw == "" || lonRaw == "" {
		return raw, nil
	}
	lat, err := strconv.ParseFloat(latRaw, 64)
	if err != nil {
		return nil, errors.New("latitude must be a decimal number")
	}
	lon, err := strconv.ParseFloat(lonRaw, 64)
	if err != nil {
		return nil, errors.New("longitude must be a decimal number")
	}
	raw.Latitude = decimalCoordinate(lat, "N", "S")
	raw.Longitude = decimalCoordinate(lon, "E", "W")
	return raw, nil
}

func decimalCoordinate(v float64, pos, neg string) *domain.GPSCoordinate {
	ref := pos
	if v < 0 {
		ref = neg
	}
	return &domain.GPSCoordinate{DMS: [3]float64{math.Abs(v), 0, 0}, Ref: ref}
}
