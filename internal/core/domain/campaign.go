package domain

import (
	"strings"
	"time"
)

// VehicleClass is the kind of vehicle a banner is mounted on.
type VehicleClass string

const (
	VehicleAuto VehicleClass = "auto"
	VehicleCar  VehicleClass = "car"
)

// ParseVehicleClass normalises s into a known VehicleClass.
func ParseVehicleClass(s string) (VehicleClass, error) {
	switch VehicleClass(strings.ToLower(strings.TrimSpace(s))) {
	case VehicleAuto:
		return VehicleAuto, nil
	case VehicleCar:
		return VehicleCar, nil
	default:
		return "", ErrInvalidVehicle
	}
}

// CampaignStatus is the lifecycle state of a campaign.
type CampaignStatus string

const (
	CampaignPending   CampaignStatus = "pending"
	CampaignActive    CampaignStatus = "active"
	CampaignCompleted CampaignStatus = "completed"
	CampaignCancelled CampaignStatus = "cancelled"
)

// Campaign represents an advertising campaign that purchased a number of
// banner slots. Costs are stored in integer currency units (rupees).
type Campaign struct {
	ID             string
	AdvertiserID   string
	Name           string
	VehicleClass   VehicleClass
	DurationDays   int
	StartDate      time.Time
	EndDate        time.Time
	BannerCount    int
	RemainingSlots int64
	TotalCost      int64
	Status         CampaignStatus
	CreatedAt      time.Time
}

// Claimable reports whether banners of the campaign may be claimed at t.
func (c *Campaign) Claimable(t time.Time) bool {
	if c.Status != CampaignActive {
		return false
	}
	return !t.Before(c.StartDate) && !t.After(c.EndDate)
}

// Closed reports whether the campaign was completed or cancelled.
func (c *Campaign) Closed() bool {
	return c.Status == CampaignCompleted || c.Status == CampaignCancelled
}

// CampaignDraft is the advertiser input for a new campaign.
type CampaignDraft struct {
	Name         string
	VehicleClass VehicleClass
	DurationDays int
	StartDate    time.Time
	BannerCount  int
}

// Validate checks the draft's required fields.
func (d CampaignDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" || d.DurationDays < 1 || d.StartDate.IsZero() {
		return ErrInvalidCampaign
	}
	if d.BannerCount < 1 {
		return ErrInvalidBatchCount
	}
	if _, err := ParseVehicleClass(string(d.VehicleClass)); err != nil {
		return err
	}
	return nil
}

// CancelPolicy decides which banners are retired when a campaign is
// cancelled.
type CancelPolicy string

const (
	// CancelRetireUnassigned retires only banners nobody has claimed.
	// Assigned and verified banners stay active and payable.
	CancelRetireUnassigned CancelPolicy = "retire-unassigned"
	// CancelRetireAll retires every banner that is not yet completed.
	CancelRetireAll CancelPolicy = "retire-all"
)

// ParseCancelPolicy returns the policy named by s; unknown values fall
// back to CancelRetireUnassigned.
func ParseCancelPolicy(s string) CancelPolicy {
	if CancelPolicy(strings.ToLower(s)) == CancelRetireAll {
		return CancelRetireAll
	}
	return CancelRetireUnassigned
}

// Retires reports whether a banner in status s is retired under p.
func (p CancelPolicy) Retires(s BannerStatus) bool {
	switch s {
	case BannerAvailable:
		return true
	case BannerAssigned, BannerVerified:
		return p == CancelRetireAll
	default:
		return false
	}
}
