package httpadapter

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"adfleet/internal/core/domain"
)

// handleRegisterDriver creates or updates the caller's driver profile. The
// vehicle class defaults to the one in the token.
func (h *Handler) handleRegisterDriver(w http.ResponseWriter, r *http.Request) {
	p := driverFrom(r)
	req := driverRequest{VehicleClass: string(p.VehicleClass)}
	// An empty body, chunked or not, keeps the token's vehicle class.
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, "invalid-json", "invalid JSON")
		return
	}
	err := h.inventory.RegisterDriver(r.Context(), domain.Driver{
		ID:           p.DriverID,
		VehicleClass: domain.VehicleClass(req.VehicleClass),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) handleDriverBanners(w http.ResponseWriter, r *http.Request) {
	banners, err := h.inventory.DriverBanners(r.Context(), driverFrom(r).DriverID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBanners(banners))
}

// handleEarnings recomputes the caller's earnings from verification
// history.
func (h *Handler) handleEarnings(w http.ResponseWriter, r *http.Request) {
	e, err := h.earnings.ComputeEarnings(r.Context(), driverFrom(r).DriverID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}
