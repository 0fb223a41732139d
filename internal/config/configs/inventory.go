package configs

// Inventory tunes banner claims and campaign close-out.
type Inventory struct {
	MaxActiveBanners int `env:"MAX_ACTIVE_BANNERS" envDefault:"2"`
	// CancelPolicy is "retire-unassigned" or "retire-all".
	CancelPolicy string `env:"CANCEL_POLICY" envDefault:"retire-unassigned"`
	// AvailablePerCampaign caps banners listed per campaign.
	AvailablePerCampaign int `env:"AVAILABLE_PER_CAMPAIGN" envDefault:"5"`
}
