package httpadapter

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"adfleet/internal/core/domain"
)

// handleGetBanner returns one banner with its verification history.
// Advertisers see banners of their campaigns; drivers see their own banners
// and banners still up for grabs.
func (h *Handler) handleGetBanner(w http.ResponseWriter, r *http.Request) {
	b, err := h.inventory.GetBanner(r.Context(), chi.URLParam(r, "bannerID"))
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	p, _ := principalFrom(r.Context())
	switch p := p.(type) {
	case domain.AdvertiserPrincipal:
		if _, err = h.inventory.OwnedCampaign(r.Context(), p.AdvertiserID, b.CampaignID); err != nil {
			writeError(w, h.logger, err)
			return
		}
	case domain.DriverPrincipal:
		if b.DriverID != p.DriverID && b.Status != domain.BannerAvailable {
			writeError(w, h.logger, domain.ErrForbidden)
			return
		}
	default:
		writeError(w, h.logger, domain.ErrForbidden)
		return
	}
	writeJSON(w, http.StatusOK, toBanner(*b))
}

// handleListAvailable lists claimable banners for the driver's vehicle
// class, optionally narrowed by ?campaign_id=.
func (h *Handler) handleListAvailable(w http.ResponseWriter, r *http.Request) {
	banners, err := h.inventory.ListAvailable(r.Context(), domain.AvailableFilter{
		VehicleClass: driverFrom(r).VehicleClass,
		CampaignID:   r.URL.Query().Get("campaign_id"),
	})
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBanners(banners))
}

// handleClaim assigns the banner to the calling driver. Losing a race or
// holding too many banners yields 409 with the conflict reason as code.
func (h *Handler) handleClaim(w http.ResponseWriter, r *http.Request) {
	b, err := h.inventory.Claim(r.Context(), chi.URLParam(r, "bannerID"), driverFrom(r).DriverID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toBanner(*b))
}
