package domain

import (
	"fmt"
	"time"
)

// TariffTable maps a vehicle class to its daily rate in rupees.
type TariffTable map[VehicleClass]int64

// DailyRate returns the rate for vc or ErrMissingRate.
func (t TariffTable) DailyRate(vc VehicleClass) (int64, error) {
	rate, ok := t[vc]
	if !ok || rate <= 0 {
		return 0, fmt.Errorf("%w: %q", ErrMissingRate, vc)
	}
	return rate, nil
}

// CampaignCost is the price of a campaign: rate × duration × banners.
func (t TariffTable) CampaignCost(vc VehicleClass, durationDays, bannerCount int) (int64, error) {
	rate, err := t.DailyRate(vc)
	if err != nil {
		return 0, err
	}
	return rate * int64(durationDays) * int64(bannerCount), nil
}

// ActiveDays derives the number of days a banner was proven on the road
// from its verified submissions. Two verifications are expected per day.
func ActiveDays(verifiedCount int) int64 {
	if verifiedCount <= 0 {
		return 0
	}
	return int64((verifiedCount + 1) / 2)
}

// CampaignEarnings is a driver's earnings from one campaign.
type CampaignEarnings struct {
	CampaignID   string       `json:"campaign_id"`
	CampaignName string       `json:"campaign_name"`
	VehicleClass VehicleClass `json:"vehicle_class"`
	StartDate    time.Time    `json:"start_date"`
	EndDate      time.Time    `json:"end_date"`
	BannerCount  int          `json:"banner_count"`
	ActiveDays   int64        `json:"active_days"`
	Earnings     int64        `json:"earnings"`
}

// Earnings is the derived earnings view of a driver.
type Earnings struct {
	DriverID    string             `json:"driver_id"`
	Total       int64              `json:"total"`
	PerCampaign []CampaignEarnings `json:"per_campaign"`
}
