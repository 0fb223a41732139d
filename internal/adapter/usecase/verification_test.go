package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"adfleet/internal/core/domain"
	"adfleet/internal/core/port"
)

const exifLayout = "2006:01:02 15:04:05"

// claimedBanner returns a banner assigned to driver-a.
func claimedBanner(t *testing.T, f *fixture) string {
	t.Helper()
	_, ids := f.campaign(t, domain.VehicleAuto, 2)
	f.driver(t, "driver-a")
	_, err := f.inv.Claim(context.Background(), ids[0], "driver-a")
	require.NoError(t, err)
	return ids[0]
}

func TestSubmitVerification(t *testing.T) {
	tests := []struct {
		name     string
		raw      domain.RawCapture
		decoded  bool
		verified bool
		status   domain.BannerStatus
	}{
		{
			name:     "captured earlier today",
			raw:      domain.RawCapture{DateTime: fixedAt.Add(-9 * time.Hour).Format(exifLayout)},
			decoded:  true,
			verified: true,
			status:   domain.BannerVerified,
		},
		{
			name:     "captured yesterday",
			raw:      domain.RawCapture{DateTime: fixedAt.Add(-11 * time.Hour).Format(exifLayout)},
			decoded:  true,
			verified: false,
			status:   domain.BannerAssigned,
		},
		{
			name:     "captured tomorrow",
			raw:      domain.RawCapture{DateTime: fixedAt.Add(15 * time.Hour).Format(exifLayout)},
			decoded:  true,
			verified: false,
			status:   domain.BannerAssigned,
		},
		{
			name:     "no metadata",
			decoded:  false,
			verified: false,
			status:   domain.BannerAssigned,
		},
		{
			name:     "unparseable timestamp",
			raw:      domain.RawCapture{DateTime: "yesterday-ish"},
			decoded:  true,
			verified: false,
			status:   domain.BannerAssigned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			bannerID := claimedBanner(t, f)

			f.decoder.EXPECT().Decode(jpegBytes).Return(tt.raw, tt.decoded).Once()
			f.photos.EXPECT().Put(mock.Anything, jpegBytes, "image/jpeg").Return("sha256:photo", nil).Once()

			res, err := f.ver.SubmitVerification(context.Background(), port.SubmitVerificationInput{
				BannerID: bannerID, DriverID: "driver-a", Photo: jpegBytes,
			})
			require.NoError(t, err)
			assert.Equal(t, tt.verified, res.IsVerified)
			assert.Equal(t, tt.status, res.Banner.Status)
			require.Len(t, res.Banner.VerificationHistory, 1)

			rec := res.Banner.VerificationHistory[0]
			assert.Equal(t, "sha256:photo", rec.PhotoRef)
			assert.Equal(t, tt.verified, rec.IsVerified)
			assert.True(t, rec.UploadedAt.Equal(fixedAt))
			assert.Equal(t, 1, f.recorder.verified[tt.verified])
		})
	}
}

func TestSubmitVerificationKeepsVerifiedStatus(t *testing.T) {
	f := newFixture(t)
	bannerID := claimedBanner(t, f)
	in := port.SubmitVerificationInput{BannerID: bannerID, DriverID: "driver-a", Photo: jpegBytes}

	f.photos.EXPECT().Put(mock.Anything, mock.Anything, mock.Anything).Return("sha256:photo", nil)
	f.decoder.EXPECT().Decode(mock.Anything).Return(domain.RawCapture{DateTime: fixedAt.Format(exifLayout)}, true).Once()
	f.decoder.EXPECT().Decode(mock.Anything).Return(domain.RawCapture{}, false).Once()

	res, err := f.ver.SubmitVerification(context.Background(), in)
	require.NoError(t, err)
	require.True(t, res.IsVerified)

	res, err = f.ver.SubmitVerification(context.Background(), in)
	require.NoError(t, err)
	assert.False(t, res.IsVerified)
	assert.Equal(t, domain.BannerVerified, res.Banner.Status)
	assert.Equal(t, 1, res.Banner.VerifiedCount())
	assert.Len(t, res.Banner.VerificationHistory, 2)
}

func TestSubmitVerificationClientCapture(t *testing.T) {
	f := newFixture(t)
	bannerID := claimedBanner(t, f)

	stale := domain.RawCapture{
		DateTime:  fixedAt.AddDate(0, 0, -3).Format(exifLayout),
		Latitude:  &domain.GPSCoordinate{DMS: [3]float64{12, 58, 18}, Ref: "N"},
		Longitude: &domain.GPSCoordinate{DMS: [3]float64{77, 35, 24}, Ref: "E"},
	}
	f.decoder.EXPECT().Decode(mock.Anything).Return(stale, true)
	f.photos.EXPECT().Put(mock.Anything, pngBytes, "image/png").Return("sha256:png", nil)

	res, err := f.ver.SubmitVerification(context.Background(), port.SubmitVerificationInput{
		BannerID: bannerID,
		DriverID: "driver-a",
		Photo:    pngBytes,
		ClientCapture: &domain.RawCapture{
			DateTime: fixedAt.Add(-time.Hour).Format(time.RFC3339),
		},
	})
	require.NoError(t, err)
	assert.True(t, res.IsVerified)

	// Coordinates fall back to the decoded ones when the client sends none.
	require.NotNil(t, res.Record.Latitude)
	require.NotNil(t, res.Record.Longitude)
	assert.InDelta(t, 12.971667, *res.Record.Latitude, 1e-5)
	assert.InDelta(t, 77.59, *res.Record.Longitude, 1e-5)
}

func TestSubmitVerificationRejections(t *testing.T) {
	t.Run("empty photo", func(t *testing.T) {
		f := newFixture(t)
		bannerID := claimedBanner(t, f)
		_, err := f.ver.SubmitVerification(context.Background(), port.SubmitVerificationInput{BannerID: bannerID, DriverID: "driver-a"})
		assert.ErrorIs(t, err, domain.ErrInvalidPhoto)
	})

	t.Run("not an image", func(t *testing.T) {
		f := newFixture(t)
		bannerID := claimedBanner(t, f)
		_, err := f.ver.SubmitVerification(context.Background(), port.SubmitVerificationInput{
			BannerID: bannerID, DriverID: "driver-a", Photo: []byte("%PDF-1.7 not a photo"),
		})
		assert.ErrorIs(t, err, domain.ErrInvalidPhoto)
	})

	t.Run("too large", func(t *testing.T) {
		f := newFixture(t)
		bannerID := claimedBanner(t, f)
		f.ver.maxPhoto = len(jpegBytes) - 1
		_, err := f.ver.SubmitVerification(context.Background(), port.SubmitVerificationInput{
			BannerID: bannerID, DriverID: "driver-a", Photo: jpegBytes,
		})
		assert.ErrorIs(t, err, domain.ErrInvalidPhoto)
	})

	t.Run("other driver", func(t *testing.T) {
		f := newFixture(t)
		bannerID := claimedBanner(t, f)
		f.driver(t, "driver-b")
		_, err := f.ver.SubmitVerification(context.Background(), port.SubmitVerificationInput{
			BannerID: bannerID, DriverID: "driver-b", Photo: jpegBytes,
		})
		assert.ErrorIs(t, err, domain.ErrNotAssigned)
		assert.Equal(t, domain.KindConflict, domain.KindOf(err))
	})

	t.Run("unclaimed banner", func(t *testing.T) {
		f := newFixture(t)
		_, ids := f.campaign(t, domain.VehicleAuto, 1)
		f.driver(t, "driver-a")
		_, err := f.ver.SubmitVerification(context.Background(), port.SubmitVerificationInput{
			BannerID: ids[0], DriverID: "driver-a", Photo: jpegBytes,
		})
		assert.ErrorIs(t, err, domain.ErrNotAssigned)
	})

	t.Run("completed banner", func(t *testing.T) {
		f := newFixture(t)
		bannerID := claimedBanner(t, f)
		b, err := f.inv.GetBanner(context.Background(), bannerID)
		require.NoError(t, err)
		_, err = f.inv.CompleteCampaign(context.Background(), b.CampaignID)
		require.NoError(t, err)

		_, err = f.ver.SubmitVerification(context.Background(), port.SubmitVerificationInput{
			BannerID: bannerID, DriverID: "driver-a", Photo: jpegBytes,
		})
		assert.ErrorIs(t, err, domain.ErrNotAssigned)
	})

	t.Run("unknown banner", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.ver.SubmitVerification(context.Background(), port.SubmitVerificationInput{
			BannerID: "missing", DriverID: "driver-a", Photo: jpegBytes,
		})
		assert.ErrorIs(t, err, domain.ErrBannerNotFound)
	})

	t.Run("photo store failure", func(t *testing.T) {
		f := newFixture(t)
		bannerID := claimedBanner(t, f)
		storeErr := errors.New("bucket unavailable")
		f.decoder.EXPECT().Decode(mock.Anything).Return(domain.RawCapture{}, false)
		f.photos.EXPECT().Put(mock.Anything, mock.Anything, mock.Anything).Return("", storeErr)

		_, err := f.ver.SubmitVerification(context.Background(), port.SubmitVerificationInput{
			BannerID: bannerID, DriverID: "driver-a", Photo: jpegBytes,
		})
		assert.ErrorIs(t, err, storeErr)
		assert.Equal(t, domain.KindInternal, domain.KindOf(err))

		b, err := f.inv.GetBanner(context.Background(), bannerID)
		require.NoError(t, err)
		assert.Empty(t, b.VerificationHistory)
	})
}

// TestConcurrentSubmissions checks that simultaneous uploads for one banner
// each land exactly once in its history.
func TestConcurrentSubmissions(t *testing.T) {
	f := newFixture(t)
	bannerID := claimedBanner(t, f)

	const uploads = 20
	f.decoder.EXPECT().Decode(mock.Anything).Return(domain.RawCapture{DateTime: fixedAt.Format(exifLayout)}, true)
	f.photos.EXPECT().Put(mock.Anything, mock.Anything, mock.Anything).
		RunAndReturn(func(_ context.Context, data []byte, _ string) (string, error) {
			return fmt.Sprintf("ref-%s", data[len(data)-2:]), nil
		})

	wg := sync.WaitGroup{}
	wg.Add(uploads)
	for i := 0; i < uploads; i++ {
		go func(i int) {
			defer wg.Done()
			photo := append(append([]byte{}, jpegBytes...), fmt.Sprintf("%02d", i)...)
			_, err := f.ver.SubmitVerification(context.Background(), port.SubmitVerificationInput{
				BannerID: bannerID, DriverID: "driver-a", Photo: photo,
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	b, err := f.inv.GetBanner(context.Background(), bannerID)
	require.NoError(t, err)
	require.Len(t, b.VerificationHistory, uploads)
	refs := make(map[string]bool, uploads)
	for _, rec := range b.VerificationHistory {
		assert.False(t, refs[rec.PhotoRef], "duplicate record %s", rec.PhotoRef)
		refs[rec.PhotoRef] = true
	}
	assert.Equal(t, domain.BannerVerified, b.Status)
}
