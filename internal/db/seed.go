package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"adfleet/internal/core/domain"
)

// Seed inserts demo campaigns, their banners and a few drivers. It is a
// no-op when campaigns already exist.
func Seed(ctx context.Context, db *pgxpool.Pool, tariffs domain.TariffTable) error {
	var existing int
	if err := db.QueryRow(ctx, `SELECT count(*) FROM campaigns`).Scan(&existing); err != nil {
		return err
	}
	if existing > 0 {
		return nil
	}

	now := time.Now().UTC()
	batch := &pgx.Batch{}
	for i, vc := range []domain.VehicleClass{domain.VehicleAuto, domain.VehicleCar, domain.VehicleAuto} {
		const days, banners = 30, 5
		cost, err := tariffs.CampaignCost(vc, days, banners)
		if err != nil {
			return err
		}
		id := uuid.NewString()
		start := now.AddDate(0, 0, -1)
		batch.Queue(`INSERT INTO campaigns
    (id, advertiser_id, name, vehicle_class, duration_days, start_date, end_date,
     banner_count, remaining_slots, total_cost, status, created_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$8,$9,'active',$10)`,
			id, "demo-advertiser", fmt.Sprintf("Demo campaign %d", i+1), string(vc), days,
			start, start.AddDate(0, 0, days), banners, cost, now)
		for j := 0; j < banners; j++ {
			batch.Queue(`INSERT INTO banners (id, campaign_id, status, created_at) VALUES ($1,$2,'available',$3)`,
				uuid.NewString(), id, now.Add(time.Duration(j)*time.Millisecond))
		}
	}
	for i, vc := range []domain.VehicleClass{domain.VehicleAuto, domain.VehicleAuto, domain.VehicleCar} {
		batch.Queue(`INSERT INTO drivers (id, vehicle_class, created_at) VALUES ($1,$2,$3) ON CONFLICT DO NOTHING`,
			fmt.Sprintf("demo-driver-%d", i+1), string(vc), now)
	}
	return db.SendBatch(ctx, batch).Close()
}
