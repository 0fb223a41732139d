package port

import (
	"context"
	"time"

	"adfleet/internal/core/domain"
)

// InventoryRepository is the single writer of banner state. It is an
// outbound port in hexagonal architecture. Implementations must be
// concurrency-safe: Claim must be atomic with the campaign slot decrement
// and the driver capacity check, and AppendVerification must keep the
// verification history in submission order.
type InventoryRepository interface {
	// CreateCampaign stores a new campaign.
	CreateCampaign(ctx context.Context, c *domain.Campaign) error
	// GetCampaign returns a campaign by id or domain.ErrCampaignNotFound.
	GetCampaign(ctx context.Context, id string) (*domain.Campaign, error)

	// CreateBannerBatch creates count available banners for a campaign and
	// returns their ids.
	CreateBannerBatch(ctx context.Context, campaignID string, count int, now time.Time) ([]string, error)
	// GetBanner returns a banner with its verification history or
	// domain.ErrBannerNotFound.
	GetBanner(ctx context.Context, id string) (*domain.Banner, error)
	// ListCampaignBanners returns every banner of a campaign.
	ListCampaignBanners(ctx context.Context, campaignID string) ([]domain.Banner, error)
	// ListAvailable returns available banners of claimable campaigns with
	// remaining slots.
	ListAvailable(ctx context.Context, f domain.AvailableFilter) ([]domain.Banner, error)
	// ListDriverBanners returns the banners owned by a driver whose status
	// is one of statuses, including verification history.
	ListDriverBanners(ctx context.Context, driverID string, statuses ...domain.BannerStatus) ([]domain.Banner, error)

	// Claim assigns an available banner to a driver and takes one slot
	// from its campaign as a single unit.
	Claim(ctx context.Context, req ClaimRequest) (*domain.Banner, error)
	// AppendVerification appends rec to the banner history and moves an
	// assigned banner to verified when rec.IsVerified. The banner must be
	// owned by driverID and be assigned or verified.
	AppendVerification(ctx context.Context, bannerID, driverID string, rec domain.VerificationRecord) (*domain.Banner, error)
	// CancelCampaign marks the campaign cancelled and retires its banners
	// according to policy. It returns the number of banners retired.
	CancelCampaign(ctx context.Context, campaignID string, policy domain.CancelPolicy) (int, error)
	// CompleteCampaign marks the campaign completed and every banner of it
	// completed. It returns the number of banners transitioned.
	CompleteCampaign(ctx context.Context, campaignID string) (int, error)

	// UpsertDriver creates or updates a driver profile. Earnings are never
	// overwritten.
	UpsertDriver(ctx context.Context, d domain.Driver) error
	// GetDriver returns a driver or domain.ErrDriverNotFound.
	GetDriver(ctx context.Context, id string) (*domain.Driver, error)
	// RaiseDriverEarnings sets the stored earnings to total when total is
	// larger than the stored value.
	RaiseDriverEarnings(ctx context.Context, driverID string, total int64) error
}

// ClaimRequest carries the inputs of an atomic claim.
type ClaimRequest struct {
	BannerID string
	DriverID string
	At       time.Time
	// MaxActive is the number of assigned or verified banners a driver may
	// hold at once.
	MaxActive int
}
