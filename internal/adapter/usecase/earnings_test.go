package usecase

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"adfleet/internal/core/domain"
	"adfleet/internal/core/port"
)

// verify submits n photos for the banner; the first `today` of them carry a
// same-day capture time.
func (f *fixture) verify(t *testing.T, bannerID, driverID string, n, today int) {
	t.Helper()
	for i := 0; i < n; i++ {
		captured := fixedAt.AddDate(0, 0, -5)
		if i < today {
			captured = fixedAt.Add(-time.Hour)
		}
		f.decoder.EXPECT().Decode(mock.Anything).Return(domain.RawCapture{DateTime: captured.Format(exifLayout)}, true).Once()
		_, err := f.ver.SubmitVerification(context.Background(), port.SubmitVerificationInput{
			BannerID: bannerID, DriverID: driverID, Photo: jpegBytes,
		})
		require.NoError(t, err)
	}
}

func TestComputeEarnings(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.photos.EXPECT().Put(mock.Anything, mock.Anything, mock.Anything).Return("sha256:photo", nil).Maybe()

	f.driver(t, "driver-a")
	auto, autoIDs := f.campaign(t, domain.VehicleAuto, 2)
	car, carIDs := f.campaign(t, domain.VehicleCar, 1)
	open, openIDs := f.campaign(t, domain.VehicleAuto, 1)

	for _, id := range []string{autoIDs[0], carIDs[0]} {
		_, err := f.inv.Claim(ctx, id, "driver-a")
		require.NoError(t, err)
	}
	f.verify(t, autoIDs[0], "driver-a", 5, 5) // 3 days
	f.verify(t, carIDs[0], "driver-a", 3, 2)  // 1 day
	_, err := f.inv.CompleteCampaign(ctx, auto.ID)
	require.NoError(t, err)
	_, err = f.inv.CompleteCampaign(ctx, car.ID)
	require.NoError(t, err)

	// Banners of running campaigns are not payable yet.
	_, err = f.inv.Claim(ctx, openIDs[0], "driver-a")
	require.NoError(t, err)
	f.verify(t, openIDs[0], "driver-a", 2, 2)

	got, err := f.earn.ComputeEarnings(ctx, "driver-a")
	require.NoError(t, err)
	assert.Equal(t, "driver-a", got.DriverID)
	assert.Equal(t, int64(3*70+1*100), got.Total)
	require.Len(t, got.PerCampaign, 2)
	for _, pc := range got.PerCampaign {
		assert.NotEqual(t, open.ID, pc.CampaignID)
		switch pc.CampaignID {
		case auto.ID:
			assert.Equal(t, int64(3), pc.ActiveDays)
			assert.Equal(t, int64(210), pc.Earnings)
		case car.ID:
			assert.Equal(t, int64(1), pc.ActiveDays)
			assert.Equal(t, int64(100), pc.Earnings)
			assert.Equal(t, domain.VehicleCar, pc.VehicleClass)
		default:
			t.Fatalf("unexpected campaign %s", pc.CampaignID)
		}
	}

	d, err := f.repo.GetDriver(ctx, "driver-a")
	require.NoError(t, err)
	assert.Equal(t, int64(310), d.Earnings)
}

func TestComputeEarningsSkipsUnverified(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.photos.EXPECT().Put(mock.Anything, mock.Anything, mock.Anything).Return("sha256:photo", nil)

	f.driver(t, "driver-a")
	c, ids := f.campaign(t, domain.VehicleAuto, 1)
	_, err := f.inv.Claim(ctx, ids[0], "driver-a")
	require.NoError(t, err)
	f.verify(t, ids[0], "driver-a", 2, 0)
	_, err = f.inv.CompleteCampaign(ctx, c.ID)
	require.NoError(t, err)

	got, err := f.earn.ComputeEarnings(ctx, "driver-a")
	require.NoError(t, err)
	assert.Zero(t, got.Total)
	assert.Empty(t, got.PerCampaign)
}

func TestComputeEarningsMissingRate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.photos.EXPECT().Put(mock.Anything, mock.Anything, mock.Anything).Return("sha256:photo", nil)

	f.driver(t, "driver-a")
	c, ids := f.campaign(t, domain.VehicleCar, 1)
	_, err := f.inv.Claim(ctx, ids[0], "driver-a")
	require.NoError(t, err)
	f.verify(t, ids[0], "driver-a", 1, 1)
	_, err = f.inv.CompleteCampaign(ctx, c.ID)
	require.NoError(t, err)

	f.earn = NewEarningsUseCase(f.repo, domain.TariffTable{domain.VehicleAuto: 70}, nil)
	_, err = f.earn.ComputeEarnings(ctx, "driver-a")
	assert.ErrorIs(t, err, domain.ErrMissingRate)
	assert.Equal(t, domain.KindDataIntegrity, domain.KindOf(err))
}

func TestComputeEarningsUnknownDriver(t *testing.T) {
	f := newFixture(t)
	_, err := f.earn.ComputeEarnings(context.Background(), "ghost")
	assert.ErrorIs(t, err, domain.ErrDriverNotFound)
}
