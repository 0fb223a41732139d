package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"adfleet/internal/core/domain"
	"adfleet/internal/core/port"
)

var _ port.InventoryUseCase = (*InventoryUseCase)(nil)

// InventoryOptions tunes the banner inventory.
type InventoryOptions struct {
	// MaxActive is how many assigned or verified banners a driver may hold.
	MaxActive int
	// PerCampaign caps the banners listed per campaign in ListAvailable.
	PerCampaign int
	// CancelPolicy decides which banners a cancellation retires.
	CancelPolicy domain.CancelPolicy
	// Tariffs prices new campaigns.
	Tariffs domain.TariffTable
}

// InventoryUseCase owns the banner lifecycle: campaign intake, claims and
// close-out. It implements port.InventoryUseCase.
type InventoryUseCase struct {
	repo    port.InventoryRepository
	opts    InventoryOptions
	metrics port.Recorder
	logger  *slog.Logger
	now     func() time.Time
}

// NewInventoryUseCase creates the inventory use case. Zero options fall
// back to a capacity of two banners per driver and the retire-unassigned
// cancellation policy.
func NewInventoryUseCase(repo port.InventoryRepository, opts InventoryOptions, metrics port.Recorder, logger *slog.Logger) *InventoryUseCase {
	if opts.MaxActive <= 0 {
		opts.MaxActive = 2
	}
	if opts.CancelPolicy == "" {
		opts.CancelPolicy = domain.CancelRetireUnassigned
	}
	if metrics == nil {
		metrics = nopRecorder{}
	}
	return &InventoryUseCase{
		repo:    repo,
		opts:    opts,
		metrics: metrics,
		logger:  orDiscard(logger),
		now:     time.Now,
	}
}

// CreateCampaign prices the draft, stores the campaign as active and
// creates one available banner per purchased slot.
func (u *InventoryUseCase) CreateCampaign(ctx context.Context, advertiserID string, d domain.CampaignDraft) (*domain.Campaign, []string, error) {
	if advertiserID == "" {
		return nil, nil, domain.ErrForbidden
	}
	if err := d.Validate(); err != nil {
		return nil, nil, err
	}
	cost, err := u.opts.Tariffs.CampaignCost(d.VehicleClass, d.DurationDays, d.BannerCount)
	if err != nil {
		return nil, nil, err
	}

	now := u.now()
	c := &domain.Campaign{
		ID:           uuid.NewString(),
		AdvertiserID: advertiserID,
		Name:         d.Name,
		VehicleClass: d.VehicleClass,
		DurationDays: d.DurationDays,
		StartDate:    d.StartDate,
		EndDate:      d.StartDate.AddDate(0, 0, d.DurationDays),
		TotalCost:    cost,
		Status:       domain.CampaignActive,
		CreatedAt:    now,
	}
	if err = u.repo.CreateCampaign(ctx, c); err != nil {
		return nil, nil, fmt.Errorf("create campaign: %w", err)
	}
	ids, err := u.CreateBannerBatch(ctx, c.ID, d.BannerCount)
	if err != nil {
		return nil, nil, err
	}
	stored, err := u.repo.GetCampaign(ctx, c.ID)
	if err != nil {
		return nil, nil, err
	}
	u.logger.Info("campaign created",
		slog.String("campaign_id", c.ID),
		slog.String("vehicle_class", string(c.VehicleClass)),
		slog.Int("banners", len(ids)),
		slog.Int64("total_cost", cost))
	return stored, ids, nil
}

// OwnedCampaign returns the campaign if advertiserID owns it.
func (u *InventoryUseCase) OwnedCampaign(ctx context.Context, advertiserID, campaignID string) (*domain.Campaign, error) {
	c, err := u.repo.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	if c.AdvertiserID != advertiserID {
		return nil, domain.ErrForbidden
	}
	return c, nil
}

// CreateBannerBatch creates count available banners for the campaign and
// adds count slots to it.
func (u *InventoryUseCase) CreateBannerBatch(ctx context.Context, campaignID string, count int) ([]string, error) {
	if count < 1 {
		return nil, domain.ErrInvalidBatchCount
	}
	return u.repo.CreateBannerBatch(ctx, campaignID, count, u.now())
}

// Claim assigns an available banner to driverID. A lost race surfaces as
// domain.ErrBannerNotAvailable and a full driver as
// domain.ErrDriverAtCapacity; both are conflicts, not failures.
func (u *InventoryUseCase) Claim(ctx context.Context, bannerID, driverID string) (*domain.Banner, error) {
	if bannerID == "" {
		return nil, domain.ErrBannerNotFound
	}
	if driverID == "" {
		return nil, domain.ErrDriverNotFound
	}
	b, err := u.repo.Claim(ctx, port.ClaimRequest{
		BannerID:  bannerID,
		DriverID:  driverID,
		At:        u.now(),
		MaxActive: u.opts.MaxActive,
	})
	if err != nil {
		u.metrics.ClaimObserved(domain.CodeOf(err))
		if domain.KindOf(err) == domain.KindInternal {
			return nil, fmt.Errorf("claim banner %s: %w", bannerID, err)
		}
		u.logger.Debug("claim rejected",
			slog.String("banner_id", bannerID),
			slog.String("driver_id", driverID),
			slog.String("reason", domain.CodeOf(err)))
		return nil, err
	}
	u.metrics.ClaimObserved("claimed")
	u.logger.Info("banner claimed",
		slog.String("banner_id", b.ID),
		slog.String("campaign_id", b.CampaignID),
		slog.String("driver_id", driverID))
	return b, nil
}

// ListAvailable returns claimable banners. A zero At means now.
func (u *InventoryUseCase) ListAvailable(ctx context.Context, f domain.AvailableFilter) ([]domain.Banner, error) {
	if f.At.IsZero() {
		f.At = u.now()
	}
	if f.PerCampaign == 0 {
		f.PerCampaign = u.opts.PerCampaign
	}
	return u.repo.ListAvailable(ctx, f)
}

func (u *InventoryUseCase) GetBanner(ctx context.Context, bannerID string) (*domain.Banner, error) {
	return u.repo.GetBanner(ctx, bannerID)
}

// CampaignBanners returns the campaign's banners with per-status counts.
func (u *InventoryUseCase) CampaignBanners(ctx context.Context, campaignID string) (*port.CampaignBanners, error) {
	c, err := u.repo.GetCampaign(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	banners, err := u.repo.ListCampaignBanners(ctx, campaignID)
	if err != nil {
		return nil, err
	}
	out := &port.CampaignBanners{Campaign: *c, Banners: banners}
	for _, b := range banners {
		out.Stats.Add(b.Status)
	}
	return out, nil
}

// CancelCampaignBanners cancels the campaign and retires banners according
// to the configured policy.
func (u *InventoryUseCase) CancelCampaignBanners(ctx context.Context, campaignID string) (int, error) {
	n, err := u.repo.CancelCampaign(ctx, campaignID, u.opts.CancelPolicy)
	if err != nil {
		return 0, err
	}
	u.metrics.BannersRetired(n)
	u.logger.Info("campaign cancelled",
		slog.String("campaign_id", campaignID),
		slog.String("policy", string(u.opts.CancelPolicy)),
		slog.Int("retired", n))
	return n, nil
}

// CompleteCampaign closes out the campaign; every banner becomes completed.
func (u *InventoryUseCase) CompleteCampaign(ctx context.Context, campaignID string) (int, error) {
	n, err := u.repo.CompleteCampaign(ctx, campaignID)
	if err != nil {
		return 0, err
	}
	u.metrics.BannersRetired(n)
	u.logger.Info("campaign completed", slog.String("campaign_id", campaignID), slog.Int("banners", n))
	return n, nil
}

func (u *InventoryUseCase) RegisterDriver(ctx context.Context, d domain.Driver) error {
	if d.ID == "" {
		return domain.ErrInvalidPrincipal
	}
	vc, err := domain.ParseVehicleClass(string(d.VehicleClass))
	if err != nil {
		return err
	}
	d.VehicleClass = vc
	d.CreatedAt = u.now()
	return u.repo.UpsertDriver(ctx, d)
}

// DriverBanners returns the driver's assigned and verified banners.
func (u *InventoryUseCase) DriverBanners(ctx context.Context, driverID string) ([]domain.Banner, error) {
	return u.repo.ListDriverBanners(ctx, driverID, domain.BannerAssigned, domain.BannerVerified)
}
