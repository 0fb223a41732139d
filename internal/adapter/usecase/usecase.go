package usecase

import (
	"io"
	"log/slog"
)

type nopRecorder struct{}

func (nopRecorder) ClaimObserved(string)      {}
func (nopRecorder) VerificationObserved(bool) {}
func (nopRecorder) BannersRetired(int)        {}

func orDiscard(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return logger
}
