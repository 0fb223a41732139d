package httpadapter

import (
	"time"

	"adfleet/internal/core/domain"
	"adfleet/internal/core/port"
)

type campaignRequest struct {
	Name         string `json:"name"`
	VehicleClass string `json:"vehicle_class"`
	DurationDays int    `json:"duration_days"`
	// StartDate is RFC 3339 or a plain 2006-01-02 date.
	StartDate   string `json:"start_date"`
	BannerCount int    `json:"banner_count"`
}

func (r campaignRequest) draft() (domain.CampaignDraft, error) {
	vc, err := domain.ParseVehicleClass(r.VehicleClass)
	if err != nil {
		return domain.CampaignDraft{}, err
	}
	start, err := time.Parse(time.RFC3339, r.StartDate)
	if err != nil {
		if start, err = time.Parse(time.DateOnly, r.StartDate); err != nil {
			return domain.CampaignDraft{}, domain.ErrInvalidCampaign
		}
	}
	return domain.CampaignDraft{
		Name:         r.Name,
		VehicleClass: vc,
		DurationDays: r.DurationDays,
		StartDate:    start,
		BannerCount:  r.BannerCount,
	}, nil
}

type batchRequest struct {
	Count int `json:"count"`
}

type campaignResponse struct {
	ID             string    `json:"id"`
	Name           string    `json:"name"`
	VehicleClass   string    `json:"vehicle_class"`
	DurationDays   int       `json:"duration_days"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	BannerCount    int       `json:"banner_count"`
	RemainingSlots int64     `json:"remaining_slots"`
	TotalCost      int64     `json:"total_cost"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"created_at"`
}

func toCampaign(c domain.Campaign) campaignResponse {
	return campaignResponse{
		ID:             c.ID,
		Name:           c.Name,
		VehicleClass:   string(c.VehicleClass),
		DurationDays:   c.DurationDays,
		StartDate:      c.StartDate,
		EndDate:        c.EndDate,
		BannerCount:    c.BannerCount,
		RemainingSlots: c.RemainingSlots,
		TotalCost:      c.TotalCost,
		Status:         string(c.Status),
		CreatedAt:      c.CreatedAt,
	}
}

type recordResponse struct {
	PhotoRef   string     `json:"photo_ref"`
	UploadedAt time.Time  `json:"uploaded_at"`
	CapturedAt *time.Time `json:"captured_at,omitempty"`
	Latitude   *float64   `json:"latitude,omitempty"`
	Longitude  *float64   `json:"longitude,omitempty"`
	IsVerified bool       `json:"is_verified"`
}

func toRecord(r domain.VerificationRecord) recordResponse {
	return recordResponse(r)
}

type bannerResponse struct {
	ID                  string           `json:"id"`
	CampaignID          string           `json:"campaign_id"`
	DriverID            string           `json:"driver_id,omitempty"`
	Status              string           `json:"status"`
	AssignedAt          *time.Time       `json:"assigned_at,omitempty"`
	CreatedAt           time.Time        `json:"created_at"`
	VerifiedCount       int              `json:"verified_count"`
	VerificationHistory []recordResponse `json:"verification_history"`
}

func toBanner(b domain.Banner) bannerResponse {
	out := bannerResponse{
		ID:                  b.ID,
		CampaignID:          b.CampaignID,
		DriverID:            b.DriverID,
		Status:              string(b.Status),
		AssignedAt:          b.AssignedAt,
		CreatedAt:           b.CreatedAt,
		VerifiedCount:       b.VerifiedCount(),
		VerificationHistory: make([]recordResponse, 0, len(b.VerificationHistory)),
	}
	for _, r := range b.VerificationHistory {
		out.VerificationHistory = append(out.VerificationHistory, toRecord(r))
	}
	return out
}

func toBanners(bs []domain.Banner) []bannerResponse {
	out := make([]bannerResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBanner(b))
	}
	return out
}

type createCampaignResponse struct {
	Campaign  campaignResponse `json:"campaign"`
	BannerIDs []string         `json:"banner_ids"`
}

type campaignBannersResponse struct {
	Campaign campaignResponse   `json:"campaign"`
	Stats    domain.BannerStats `json:"stats"`
	Banners  []bannerResponse   `json:"banners"`
}

func toCampaignBanners(v *port.CampaignBanners) campaignBannersResponse {
	return campaignBannersResponse{
		Campaign: toCampaign(v.Campaign),
		Stats:    v.Stats,
		Banners:  toBanners(v.Banners),
	}
}

type closeResponse struct {
	CampaignID string `json:"campaign_id"`
	Status     string `json:"status"`
	Retired    int    `json:"retired"`
}

type verificationResponse struct {
	BannerID   string         `json:"banner_id"`
	IsVerified bool           `json:"is_verified"`
	Status     string         `json:"status"`
	Message    string         `json:"message,omitempty"`
	Record     recordResponse `json:"record"`
}

type driverRequest struct {
	VehicleClass string `json:"vehicle_class"`
}
