package port

import (
	"context"

	"adfleet/internal/core/domain"
)

// InventoryUseCase exposes the banner inventory operations. It is the
// primary port used by the HTTP adapter.
type InventoryUseCase interface {
	// CreateCampaign prices and stores a campaign for an advertiser and
	// creates one available banner per purchased slot.
	CreateCampaign(ctx context.Context, advertiserID string, d domain.CampaignDraft) (*domain.Campaign, []string, error)
	// OwnedCampaign returns the campaign when it belongs to advertiserID
	// and domain.ErrForbidden otherwise.
	OwnedCampaign(ctx context.Context, advertiserID, campaignID string) (*domain.Campaign, error)
	// CreateBannerBatch creates count available banners for a campaign.
	CreateBannerBatch(ctx context.Context, campaignID string, count int) ([]string, error)
	// Claim assigns an available banner to a driver.
	Claim(ctx context.Context, bannerID, driverID string) (*domain.Banner, error)
	// ListAvailable returns banners a driver may claim.
	ListAvailable(ctx context.Context, f domain.AvailableFilter) ([]domain.Banner, error)
	// GetBanner returns one banner.
	GetBanner(ctx context.Context, bannerID string) (*domain.Banner, error)
	// CampaignBanners returns the banners of a campaign with status counts.
	CampaignBanners(ctx context.Context, campaignID string) (*CampaignBanners, error)
	// CancelCampaignBanners cancels a campaign and returns how many banners
	// were retired.
	CancelCampaignBanners(ctx context.Context, campaignID string) (int, error)
	// CompleteCampaign closes out a campaign and all of its banners.
	CompleteCampaign(ctx context.Context, campaignID string) (int, error)
	// RegisterDriver creates or updates a driver profile.
	RegisterDriver(ctx context.Context, d domain.Driver) error
	// DriverBanners returns a driver's assigned and verified banners.
	DriverBanners(ctx context.Context, driverID string) ([]domain.Banner, error)
}

// VerificationUseCase judges photo evidence for claimed banners.
type VerificationUseCase interface {
	SubmitVerification(ctx context.Context, in SubmitVerificationInput) (*VerificationResult, error)
}

// EarningsUseCase derives driver earnings from verification history.
type EarningsUseCase interface {
	ComputeEarnings(ctx context.Context, driverID string) (*domain.Earnings, error)
}

// CampaignBanners is a campaign with its banners and per-status counts.
type CampaignBanners struct {
	Campaign domain.Campaign
	Banners  []domain.Banner
	Stats    domain.BannerStats
}

// SubmitVerificationInput is one photo submission. ClientCapture, when
// set, is metadata the device extracted before upload and takes
// precedence over metadata embedded in the photo.
type SubmitVerificationInput struct {
	BannerID      string
	DriverID      string
	Photo         []byte
	ClientCapture *domain.RawCapture
}

// VerificationResult is the outcome of a submission.
type VerificationResult struct {
	IsVerified bool
	Record     domain.VerificationRecord
	Banner     domain.Banner
}
