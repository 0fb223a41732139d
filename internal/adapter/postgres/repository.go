package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"adfleet/internal/core/domain"
	"adfleet/internal/core/port"
)

var _ port.InventoryRepository = (*Repository)(nil)

// Repository implements port.InventoryRepository on PostgreSQL using
// pgxpool.
//
// Transactions lock rows in the order drivers, banners, campaigns so that
// concurrent claims and close-outs cannot deadlock each other.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository returns a repository backed by pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const campaignColumns = `id, advertiser_id, name, vehicle_class, duration_days, start_date, end_date,
    banner_count, remaining_slots, total_cost, status, created_at`

func scanCampaign(row pgx.Row) (*domain.Campaign, error) {
	var c domain.Campaign
	err := row.Scan(&c.ID, &c.AdvertiserID, &c.Name, &c.VehicleClass, &c.DurationDays, &c.StartDate, &c.EndDate,
		&c.BannerCount, &c.RemainingSlots, &c.TotalCost, &c.Status, &c.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrCampaignNotFound
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// CreateCampaign inserts a campaign. An empty ID is filled with a new UUID.
func (r *Repository) CreateCampaign(ctx context.Context, c *domain.Campaign) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO campaigns
    (id, advertiser_id, name, vehicle_class, duration_days, start_date, end_date,
     banner_count, remaining_slots, total_cost, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		c.ID, c.AdvertiserID, c.Name, string(c.VehicleClass), c.DurationDays, c.StartDate, c.EndDate,
		c.BannerCount, c.RemainingSlots, c.TotalCost, string(c.Status), c.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert campaign: %w", err)
	}
	return nil
}

func (r *Repository) GetCampaign(ctx context.Context, id string) (*domain.Campaign, error) {
	return scanCampaign(r.pool.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id))
}

// UpsertDriver creates the driver or updates its vehicle class. Stored
// earnings are left untouched.
func (r *Repository) UpsertDriver(ctx context.Context, d domain.Driver) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO drivers (id, vehicle_class, earnings, created_at)
VALUES ($1, $2, 0, $3)
ON CONFLICT (id) DO UPDATE SET vehicle_class = EXCLUDED.vehicle_class`,
		d.ID, string(d.VehicleClass), d.CreatedAt)
	if err != nil {
		return fmt.Errorf("upsert driver: %w", err)
	}
	return nil
}

func (r *Repository) GetDriver(ctx context.Context, id string) (*domain.Driver, error) {
	var d domain.Driver
	err := r.pool.QueryRow(ctx, `SELECT id, vehicle_class, earnings, created_at FROM drivers WHERE id = $1`, id).
		Scan(&d.ID, &d.VehicleClass, &d.Earnings, &d.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDriverNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// RaiseDriverEarnings stores total if it exceeds the stored earnings.
func (r *Repository) RaiseDriverEarnings(ctx context.Context, driverID string, total int64) error {
	tag, err := r.pool.Exec(ctx, `UPDATE drivers SET earnings = GREATEST(earnings, $2) WHERE id = $1`, driverID, total)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrDriverNotFound
	}
	return nil
}

// lockCampaign locks the campaign row for the rest of tx.
func lockCampaign(ctx context.Context, tx pgx.Tx, id string) (*domain.Campaign, error) {
	return scanCampaign(tx.QueryRow(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1 FOR UPDATE`, id))
}

func statusStrings(statuses []domain.BannerStatus) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}

// retiredStatuses lists the non-terminal statuses matched by retire.
func retiredStatuses(retire func(domain.BannerStatus) bool) []string {
	var out []domain.BannerStatus
	for _, s := range []domain.BannerStatus{domain.BannerAvailable, domain.BannerAssigned, domain.BannerVerified} {
		if retire(s) {
			out = append(out, s)
		}
	}
	return statusStrings(out)
}
