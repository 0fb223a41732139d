package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"adfleet/internal/core/domain"
	"adfleet/internal/core/port"
)

var _ port.InventoryRepository = (*Repository)(nil)

// Repository implements port.InventoryRepository in memory.
//
// The maps are guarded by mu; every row has its own mutex. Rows are never
// removed, so row pointers stay valid after mu is released. Row locks are
// always taken in the order driver, banner, campaign and mu is never held
// while waiting for a row lock.
type Repository struct {
	mu         sync.RWMutex
	campaigns  map[string]*campaignRow
	banners    map[string]*bannerRow
	byCampaign map[string][]string
	byDriver   map[string][]string
	drivers    map[string]*driverRow
}

type campaignRow struct {
	mu    sync.RWMutex
	c     domain.Campaign
	slots *SlotCounter
}

type bannerRow struct {
	mu sync.Mutex
	b  domain.Banner
}

type driverRow struct {
	mu     sync.Mutex
	d      domain.Driver
	active map[string]struct{}
}

// NewRepository returns an empty repository.
func NewRepository() *Repository {
	return &Repository{
		campaigns:  make(map[string]*campaignRow),
		banners:    make(map[string]*bannerRow),
		byCampaign: make(map[string][]string),
		byDriver:   make(map[string][]string),
		drivers:    make(map[string]*driverRow),
	}
}

func (r *Repository) CreateCampaign(_ context.Context, c *domain.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.campaigns[c.ID]; ok {
		return fmt.Errorf("campaign %s already exists", c.ID)
	}
	row := &campaignRow{c: *c, slots: NewSlotCounter(c.RemainingSlots)}
	r.campaigns[c.ID] = row
	return nil
}

func (r *Repository) GetCampaign(_ context.Context, id string) (*domain.Campaign, error) {
	row := r.campaign(id)
	if row == nil {
		return nil, domain.ErrCampaignNotFound
	}
	c := row.snapshot()
	return &c, nil
}

func (r *Repository) CreateBannerBatch(_ context.Context, campaignID string, count int, now time.Time) ([]string, error) {
	if count < 1 {
		return nil, domain.ErrInvalidBatchCount
	}
	row := r.campaign(campaignID)
	if row == nil {
		return nil, domain.ErrCampaignNotFound
	}

	row.mu.Lock()
	defer row.mu.Unlock()
	if row.c.Closed() {
		return nil, domain.ErrCampaignClosed
	}

	ids := make([]string, 0, count)
	rows := make([]*bannerRow, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.NewString()
		ids = append(ids, id)
		rows = append(rows, &bannerRow{b: domain.Banner{
			ID:         id,
			CampaignID: campaignID,
			Status:     domain.BannerAvailable,
			CreatedAt:  now,
		}})
	}

	r.mu.Lock()
	for i, id := range ids {
		r.banners[id] = rows[i]
	}
	r.byCampaign[campaignID] = append(r.byCampaign[campaignID], ids...)
	r.mu.Unlock()

	row.c.BannerCount += count
	row.slots.Add(int64(count))
	return ids, nil
}

func (r *Repository) GetBanner(_ context.Context, id string) (*domain.Banner, error) {
	row := r.banner(id)
	if row == nil {
		return nil, domain.ErrBannerNotFound
	}
	row.mu.Lock()
	b := row.b.Clone()
	row.mu.Unlock()
	return &b, nil
}

func (r *Repository) ListCampaignBanners(_ context.Context, campaignID string) ([]domain.Banner, error) {
	if r.campaign(campaignID) == nil {
		return nil, domain.ErrCampaignNotFound
	}
	return r.collect(r.campaignBannerRows(campaignID), func(domain.Banner) bool { return true }), nil
}

func (r *Repository) ListAvailable(_ context.Context, f domain.AvailableFilter) ([]domain.Banner, error) {
	r.mu.RLock()
	candidates := make([]*campaignRow, 0, len(r.campaigns))
	for id, row := range r.campaigns {
		if f.CampaignID != "" && id != f.CampaignID {
			continue
		}
		candidates = append(candidates, row)
	}
	r.mu.RUnlock()

	var out []domain.Banner
	for _, row := range candidates {
		c := row.snapshot()
		if f.VehicleClass != "" && c.VehicleClass != f.VehicleClass {
			continue
		}
		if !c.Claimable(f.At) || c.RemainingSlots <= 0 {
			continue
		}
		found := 0
		for _, br := range r.campaignBannerRows(c.ID) {
			if f.PerCampaign > 0 && found >= f.PerCampaign {
				break
			}
			br.mu.Lock()
			if br.b.Status == domain.BannerAvailable {
				out = append(out, br.b.Clone())
				found++
			}
			br.mu.Unlock()
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CampaignID != out[j].CampaignID {
			return out[i].CampaignID < out[j].CampaignID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *Repository) ListDriverBanners(_ context.Context, driverID string, statuses ...domain.BannerStatus) ([]domain.Banner, error) {
	r.mu.RLock()
	ids := append([]string(nil), r.byDriver[driverID]...)
	rows := make([]*bannerRow, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, r.banners[id])
	}
	r.mu.RUnlock()

	return r.collect(rows, func(b domain.Banner) bool {
		if b.DriverID != driverID {
			return false
		}
		if len(statuses) == 0 {
			return true
		}
		for _, s := range statuses {
			if b.Status == s {
				return true
			}
		}
		return false
	}), nil
}

func (r *Repository) Claim(_ context.Context, req port.ClaimRequest) (*domain.Banner, error) {
	br := r.banner(req.BannerID)
	if br == nil {
		return nil, domain.ErrBannerNotFound
	}
	dr := r.driver(req.DriverID)
	if dr == nil {
		return nil, domain.ErrDriverNotFound
	}

	dr.mu.Lock()
	defer dr.mu.Unlock()
	br.mu.Lock()
	defer br.mu.Unlock()

	if br.b.Status != domain.BannerAvailable {
		return nil, domain.ErrBannerNotAvailable
	}
	if len(dr.active) >= req.MaxActive {
		return nil, domain.ErrDriverAtCapacity
	}

	cr := r.campaign(br.b.CampaignID)
	if cr == nil {
		return nil, domain.ErrCampaignNotFound
	}
	cr.mu.RLock()
	defer cr.mu.RUnlock()
	if !cr.c.Claimable(req.At) {
		return nil, domain.ErrCampaignInactive
	}

	prev := br.b
	at := req.At
	br.b.DriverID = req.DriverID
	br.b.Status = domain.BannerAssigned
	br.b.AssignedAt = &at
	if !cr.slots.TryTake() {
		br.b = prev
		return nil, domain.ErrSlotsExhausted
	}
	dr.active[br.b.ID] = struct{}{}

	r.mu.Lock()
	r.byDriver[req.DriverID] = append(r.byDriver[req.DriverID], br.b.ID)
	r.mu.Unlock()

	b := br.b.Clone()
	return &b, nil
}

func (r *Repository) AppendVerification(_ context.Context, bannerID, driverID string, rec domain.VerificationRecord) (*domain.Banner, error) {
	br := r.banner(bannerID)
	if br == nil {
		return nil, domain.ErrBannerNotFound
	}
	br.mu.Lock()
	defer br.mu.Unlock()

	if br.b.DriverID != driverID || !br.b.Status.Active() {
		return nil, domain.ErrNotAssigned
	}
	br.b.VerificationHistory = append(br.b.VerificationHistory, rec)
	if rec.IsVerified {
		br.b.Status = domain.BannerVerified
	}
	b := br.b.Clone()
	return &b, nil
}

func (r *Repository) CancelCampaign(_ context.Context, campaignID string, policy domain.CancelPolicy) (int, error) {
	cr := r.campaign(campaignID)
	if cr == nil {
		return 0, domain.ErrCampaignNotFound
	}
	cr.mu.Lock()
	if cr.c.Closed() {
		cr.mu.Unlock()
		return 0, domain.ErrCampaignClosed
	}
	cr.c.Status = domain.CampaignCancelled
	cr.mu.Unlock()

	return r.retire(campaignID, policy.Retires), nil
}

func (r *Repository) CompleteCampaign(_ context.Context, campaignID string) (int, error) {
	cr := r.campaign(campaignID)
	if cr == nil {
		return 0, domain.ErrCampaignNotFound
	}
	cr.mu.Lock()
	if cr.c.Status == domain.CampaignCompleted {
		cr.mu.Unlock()
		return 0, domain.ErrCampaignClosed
	}
	cr.c.Status = domain.CampaignCompleted
	cr.mu.Unlock()

	return r.retire(campaignID, func(s domain.BannerStatus) bool {
		return s != domain.BannerCompleted
	}), nil
}

func (r *Repository) UpsertDriver(_ context.Context, d domain.Driver) error {
	r.mu.Lock()
	row, ok := r.drivers[d.ID]
	if !ok {
		d.Earnings = 0
		r.drivers[d.ID] = &driverRow{d: d, active: make(map[string]struct{})}
		r.mu.Unlock()
		return nil
	}
	r.mu.Unlock()

	row.mu.Lock()
	row.d.VehicleClass = d.VehicleClass
	row.mu.Unlock()
	return nil
}

func (r *Repository) GetDriver(_ context.Context, id string) (*domain.Driver, error) {
	row := r.driver(id)
	if row == nil {
		return nil, domain.ErrDriverNotFound
	}
	row.mu.Lock()
	d := row.d
	row.mu.Unlock()
	return &d, nil
}

func (r *Repository) RaiseDriverEarnings(_ context.Context, driverID string, total int64) error {
	row := r.driver(driverID)
	if row == nil {
		return domain.ErrDriverNotFound
	}
	row.mu.Lock()
	if total > row.d.Earnings {
		row.d.Earnings = total
	}
	row.mu.Unlock()
	return nil
}

// retire moves every banner of the campaign whose status satisfies match
// to completed and releases it from its driver's active set.
func (r *Repository) retire(campaignID string, match func(domain.BannerStatus) bool) int {
	n := 0
	for _, br := range r.campaignBannerRows(campaignID) {
		br.mu.Lock()
		status, driverID := br.b.Status, br.b.DriverID
		if !match(status) {
			br.mu.Unlock()
			continue
		}
		if driverID == "" {
			br.b.Status = domain.BannerCompleted
			br.mu.Unlock()
			n++
			continue
		}
		br.mu.Unlock()

		// Re-acquire in lock order; the banner may have moved meanwhile.
		dr := r.driver(driverID)
		if dr != nil {
			dr.mu.Lock()
		}
		br.mu.Lock()
		if match(br.b.Status) {
			br.b.Status = domain.BannerCompleted
			if dr != nil {
				delete(dr.active, br.b.ID)
			}
			n++
		}
		br.mu.Unlock()
		if dr != nil {
			dr.mu.Unlock()
		}
	}
	return n
}

func (r *Repository) collect(rows []*bannerRow, keep func(domain.Banner) bool) []domain.Banner {
	out := make([]domain.Banner, 0, len(rows))
	for _, br := range rows {
		br.mu.Lock()
		if keep(br.b) {
			out = append(out, br.b.Clone())
		}
		br.mu.Unlock()
	}
	return out
}

func (r *Repository) campaignBannerRows(campaignID string) []*bannerRow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := r.byCampaign[campaignID]
	rows := make([]*bannerRow, 0, len(ids))
	for _, id := range ids {
		rows = append(rows, r.banners[id])
	}
	return rows
}

func (r *Repository) campaign(id string) *campaignRow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.campaigns[id]
}

func (r *Repository) banner(id string) *bannerRow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.banners[id]
}

func (r *Repository) driver(id string) *driverRow {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.drivers[id]
}

func (row *campaignRow) snapshot() domain.Campaign {
	row.mu.RLock()
	defer row.mu.RUnlock()
	c := row.c
	c.RemainingSlots = row.slots.Remaining()
	return c
}
