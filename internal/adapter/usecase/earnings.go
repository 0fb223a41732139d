package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"adfleet/internal/core/domain"
	"adfleet/internal/core/port"
)

var _ port.EarningsUseCase = (*EarningsUseCase)(nil)

// EarningsUseCase derives driver earnings from the verification history of
// completed banners. Nothing is accumulated incrementally; every call
// recomputes from history.
type EarningsUseCase struct {
	repo    port.InventoryRepository
	tariffs domain.TariffTable
	logger  *slog.Logger
}

func NewEarningsUseCase(repo port.InventoryRepository, tariffs domain.TariffTable, logger *slog.Logger) *EarningsUseCase {
	return &EarningsUseCase{repo: repo, tariffs: tariffs, logger: orDiscard(logger)}
}

// ComputeEarnings sums, per campaign, ActiveDays(verified records) × the
// campaign's daily rate over the driver's completed banners. A campaign
// whose vehicle class has no rate fails the computation with
// domain.ErrMissingRate.
func (u *EarningsUseCase) ComputeEarnings(ctx context.Context, driverID string) (*domain.Earnings, error) {
	if _, err := u.repo.GetDriver(ctx, driverID); err != nil {
		return nil, err
	}
	banners, err := u.repo.ListDriverBanners(ctx, driverID, domain.BannerCompleted)
	if err != nil {
		return nil, fmt.Errorf("list completed banners: %w", err)
	}

	campaigns := make(map[string]*domain.Campaign)
	perCampaign := make(map[string]*domain.CampaignEarnings)
	out := &domain.Earnings{DriverID: driverID, PerCampaign: []domain.CampaignEarnings{}}

	for _, b := range banners {
		verified := b.VerifiedCount()
		if verified == 0 {
			continue
		}
		c, ok := campaigns[b.CampaignID]
		if !ok {
			if c, err = u.repo.GetCampaign(ctx, b.CampaignID); err != nil {
				return nil, fmt.Errorf("banner %s: %w", b.ID, err)
			}
			campaigns[b.CampaignID] = c
		}
		rate, err := u.tariffs.DailyRate(c.VehicleClass)
		if err != nil {
			u.logger.Error("earnings computation failed",
				slog.String("driver_id", driverID),
				slog.String("campaign_id", c.ID),
				slog.Any("error", err))
			return nil, fmt.Errorf("campaign %s: %w", c.ID, err)
		}

		days := domain.ActiveDays(verified)
		entry, ok := perCampaign[c.ID]
		if !ok {
			entry = &domain.CampaignEarnings{
				CampaignID:   c.ID,
				CampaignName: c.Name,
				VehicleClass: c.VehicleClass,
				StartDate:    c.StartDate,
				EndDate:      c.EndDate,
			}
			perCampaign[c.ID] = entry
		}
		entry.BannerCount++
		entry.ActiveDays += days
		entry.Earnings += days * rate
		out.Total += days * rate
	}

	for _, e := range perCampaign {
		out.PerCampaign = append(out.PerCampaign, *e)
	}
	sort.Slice(out.PerCampaign, func(i, j int) bool {
		a, b := out.PerCampaign[i], out.PerCampaign[j]
		if !a.StartDate.Equal(b.StartDate) {
			return a.StartDate.Before(b.StartDate)
		}
		return a.CampaignID < b.CampaignID
	})

	if err = u.repo.RaiseDriverEarnings(ctx, driverID, out.Total); err != nil {
		u.logger.Warn("persist driver earnings", slog.String("driver_id", driverID), slog.Any("error", err))
	}
	return out, nil
}
