package httpadapter

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"adfleet/internal/core/domain"
)

// handleCreateCampaign prices a campaign for the calling advertiser and
// creates its banners. Responds 201 with the campaign and banner ids.
func (h *Handler) handleCreateCampaign(w http.ResponseWriter, r *http.Request) {
	var req campaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid-json", "invalid JSON")
		return
	}
	draft, err := req.draft()
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	c, ids, err := h.inventory.CreateCampaign(r.Context(), advertiserFrom(r).AdvertiserID, draft)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, createCampaignResponse{Campaign: toCampaign(*c), BannerIDs: ids})
}

// handleCreateBanners adds banners to an open campaign the caller owns.
func (h *Handler) handleCreateBanners(w http.ResponseWriter, r *http.Request) {
	c, ok := h.ownedCampaign(w, r)
	if !ok {
		return
	}
	var req batchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid-json", "invalid JSON")
		return
	}
	ids, err := h.inventory.CreateBannerBatch(r.Context(), c.ID, req.Count)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string][]string{"banner_ids": ids})
}

func (h *Handler) handleCampaignBanners(w http.ResponseWriter, r *http.Request) {
	c, ok := h.ownedCampaign(w, r)
	if !ok {
		return
	}
	view, err := h.inventory.CampaignBanners(r.Context(), c.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toCampaignBanners(view))
}

func (h *Handler) handleCancelCampaign(w http.ResponseWriter, r *http.Request) {
	c, ok := h.ownedCampaign(w, r)
	if !ok {
		return
	}
	n, err := h.inventory.CancelCampaignBanners(r.Context(), c.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, closeResponse{CampaignID: c.ID, Status: string(domain.CampaignCancelled), Retired: n})
}

func (h *Handler) handleCompleteCampaign(w http.ResponseWriter, r *http.Request) {
	c, ok := h.ownedCampaign(w, r)
	if !ok {
		return
	}
	n, err := h.inventory.CompleteCampaign(r.Context(), c.ID)
	if err != nil {
		writeError(w, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, closeResponse{CampaignID: c.ID, Status: string(domain.CampaignCompleted), Retired: n})
}

// ownedCampaign loads the {campaignID} campaign and writes the error
// response itself when the caller does not own it.
func (h *Handler) ownedCampaign(w http.ResponseWriter, r *http.Request) (*domain.Campaign, bool) {
	c, err := h.inventory.OwnedCampaign(r.Context(), advertiserFrom(r).AdvertiserID, chi.URLParam(r, "campaignID"))
	if err != nil {
		writeError(w, h.logger, err)
		return nil, false
	}
	return c, true
}
