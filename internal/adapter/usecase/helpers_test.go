package usecase

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"adfleet/internal/adapter/memory"
	"adfleet/internal/core/domain"
	"adfleet/internal/core/port/mocks"
)

var (
	ist     = time.FixedZone("IST", 5*3600+1800)
	fixedAt = time.Date(2026, 10, 16, 10, 0, 0, 0, ist)
	tariffs = domain.TariffTable{domain.VehicleAuto: 70, domain.VehicleCar: 100}

	jpegBytes = []byte("\xff\xd8\xff\xe0\x00\x10JFIF\x00photo")
	pngBytes  = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")
)

type recorder struct {
	mu       sync.Mutex
	claims   map[string]int
	verified map[bool]int
	retired  int
}

func newRecorder() *recorder {
	return &recorder{claims: map[string]int{}, verified: map[bool]int{}}
}

func (r *recorder) ClaimObserved(outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.claims[outcome]++
}

func (r *recorder) VerificationObserved(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.verified[v]++
}

func (r *recorder) BannersRetired(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.retired += n
}

type fixture struct {
	repo     *memory.Repository
	inv      *InventoryUseCase
	ver      *VerificationUseCase
	earn     *EarningsUseCase
	photos   *mocks.MockPhotoStore
	decoder  *mocks.MockCaptureDecoder
	recorder *recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := memory.NewRepository()
	rec := newRecorder()
	photos := mocks.NewMockPhotoStore(t)
	decoder := mocks.NewMockCaptureDecoder(t)

	inv := NewInventoryUseCase(repo, InventoryOptions{Tariffs: tariffs, PerCampaign: 5}, rec, nil)
	inv.now = func() time.Time { return fixedAt }

	ver := NewVerificationUseCase(repo, photos, decoder, memory.NewLocker(),
		VerificationOptions{Location: ist, MaxPhotoBytes: 1 << 20}, rec, nil)
	ver.now = func() time.Time { return fixedAt }

	return &fixture{
		repo:     repo,
		inv:      inv,
		ver:      ver,
		earn:     NewEarningsUseCase(repo, tariffs, nil),
		photos:   photos,
		decoder:  decoder,
		recorder: rec,
	}
}

func (f *fixture) campaign(t *testing.T, vc domain.VehicleClass, banners int) (*domain.Campaign, []string) {
	t.Helper()
	c, ids, err := f.inv.CreateCampaign(context.Background(), "adv-1", domain.CampaignDraft{
		Name:         "Festive " + string(vc),
		VehicleClass: vc,
		DurationDays: 30,
		StartDate:    fixedAt.AddDate(0, 0, -1),
		BannerCount:  banners,
	})
	require.NoError(t, err)
	return c, ids
}

func (f *fixture) driver(t *testing.T, id string) {
	t.Helper()
	require.NoError(t, f.inv.RegisterDriver(context.Background(), domain.Driver{ID: id, VehicleClass: domain.VehicleAuto}))
}
