package httpadapter

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"adfleet/internal/core/domain"
)

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func statusOf(kind domain.Kind) int {
	switch kind {
	case domain.KindNotFound:
		return http.StatusNotFound
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindInvalidInput:
		return http.StatusBadRequest
	case domain.KindUnauthorized:
		return http.StatusUnauthorized
	case domain.KindForbidden:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders err as {"error": code, "message": text}. Errors that
// carry no client facing domain error are logged and hidden behind a
// generic message.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	var de *domain.Error
	isDomain := errors.As(err, &de)
	status := statusOf(domain.KindOf(err))
	if status == http.StatusInternalServerError || !isDomain {
		if logger != nil {
			logger.Error("request failed", slog.Any("error", err))
		}
		code := "internal"
		if de != nil {
			code = de.Code
		}
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: code, Message: "internal error"})
		return
	}
	writeJSON(w, status, errorResponse{Error: de.Code, Message: de.Message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, code, message string) {
	writeJSON(w, http.StatusBadRequest, errorResponse{Error: code, Message: message})
}
