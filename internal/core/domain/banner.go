package domain

import "time"

// BannerStatus is a state of the banner state machine.
//
//	available --claim--> assigned --verified photo--> verified
//	assigned|verified --close out--> completed
//	available --campaign cancelled--> completed
//
// completed is terminal.
type BannerStatus string

const (
	BannerAvailable BannerStatus = "available"
	BannerAssigned  BannerStatus = "assigned"
	BannerVerified  BannerStatus = "verified"
	BannerCompleted BannerStatus = "completed"
)

// Active reports whether the status counts against a driver's capacity.
func (s BannerStatus) Active() bool {
	return s == BannerAssigned || s == BannerVerified
}

// Banner is one physical ad placement slot of a campaign.
type Banner struct {
	ID         string
	CampaignID string
	// DriverID is empty while the banner is available.
	DriverID            string
	Status              BannerStatus
	AssignedAt          *time.Time
	CreatedAt           time.Time
	VerificationHistory []VerificationRecord
}

// VerifiedCount returns the number of successful verifications.
func (b *Banner) VerifiedCount() int {
	n := 0
	for _, r := range b.VerificationHistory {
		if r.IsVerified {
			n++
		}
	}
	return n
}

// Clone returns a deep copy of b.
func (b *Banner) Clone() Banner {
	c := *b
	if b.AssignedAt != nil {
		t := *b.AssignedAt
		c.AssignedAt = &t
	}
	if b.VerificationHistory != nil {
		c.VerificationHistory = make([]VerificationRecord, len(b.VerificationHistory))
		copy(c.VerificationHistory, b.VerificationHistory)
	}
	return c
}

// AvailableFilter selects claimable banners.
type AvailableFilter struct {
	VehicleClass VehicleClass
	// CampaignID optionally narrows the result to one campaign.
	CampaignID string
	// At is the instant the campaign window is evaluated against.
	At time.Time
	// PerCampaign caps how many banners are returned for each campaign.
	// Zero means no cap.
	PerCampaign int
}

// BannerStats counts a campaign's banners by status.
type BannerStats struct {
	Available int `json:"available"`
	Assigned  int `json:"assigned"`
	Verified  int `json:"verified"`
	Completed int `json:"completed"`
}

// Add counts one banner in status s.
func (s *BannerStats) Add(status BannerStatus) {
	switch status {
	case BannerAvailable:
		s.Available++
	case BannerAssigned:
		s.Assigned++
	case BannerVerified:
		s.Verified++
	case BannerCompleted:
		s.Completed++
	}
}
