package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"adfleet/internal/core/domain"
	"adfleet/internal/core/port"
)

const bannerColumns = `b.id, b.campaign_id, b.driver_id, b.status, b.assigned_at, b.created_at`

// querier is satisfied by both the pool and a transaction.
type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func scanBanner(row pgx.CollectableRow) (domain.Banner, error) {
	var (
		b        domain.Banner
		driverID *string
	)
	err := row.Scan(&b.ID, &b.CampaignID, &driverID, &b.Status, &b.AssignedAt, &b.CreatedAt)
	if driverID != nil {
		b.DriverID = *driverID
	}
	return b, err
}

// CreateBannerBatch inserts count available banners and grows the
// campaign's slot pool by the same amount. Closed campaigns are refused
// under the campaign row lock.
func (r *Repository) CreateBannerBatch(ctx context.Context, campaignID string, count int, now time.Time) (ids []string, err error) {
	if count < 1 {
		return nil, domain.ErrInvalidBatchCount
	}
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	c, err := lockCampaign(ctx, tx, campaignID)
	if err != nil {
		return nil, err
	}
	if c.Closed() {
		return nil, domain.ErrCampaignClosed
	}

	ids = make([]string, 0, count)
	rows := make([][]any, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.NewString()
		ids = append(ids, id)
		rows = append(rows, []any{id, campaignID, string(domain.BannerAvailable), now})
	}
	if _, err = tx.CopyFrom(ctx, pgx.Identifier{"banners"},
		[]string{"id", "campaign_id", "status", "created_at"}, pgx.CopyFromRows(rows)); err != nil {
		return nil, fmt.Errorf("insert banners: %w", err)
	}
	_, err = tx.Exec(ctx, `UPDATE campaigns
SET banner_count = banner_count + $2, remaining_slots = remaining_slots + $2
WHERE id = $1`, campaignID, count)
	if err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *Repository) GetBanner(ctx context.Context, id string) (*domain.Banner, error) {
	return getBanner(ctx, r.pool, id)
}

func getBanner(ctx context.Context, q querier, id string) (*domain.Banner, error) {
	rows, err := q.Query(ctx, `SELECT `+bannerColumns+` FROM banners b WHERE b.id = $1`, id)
	if err != nil {
		return nil, err
	}
	b, err := pgx.CollectExactlyOneRow(rows, scanBanner)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBannerNotFound
	}
	if err != nil {
		return nil, err
	}
	banners := []domain.Banner{b}
	if err = loadHistory(ctx, q, banners); err != nil {
		return nil, err
	}
	return &banners[0], nil
}

func (r *Repository) ListCampaignBanners(ctx context.Context, campaignID string) ([]domain.Banner, error) {
	if _, err := r.GetCampaign(ctx, campaignID); err != nil {
		return nil, err
	}
	rows, err := r.pool.Query(ctx, `SELECT `+bannerColumns+` FROM banners b
WHERE b.campaign_id = $1 ORDER BY b.created_at, b.id`, campaignID)
	if err != nil {
		return nil, err
	}
	banners, err := pgx.CollectRows(rows, scanBanner)
	if err != nil {
		return nil, err
	}
	return banners, loadHistory(ctx, r.pool, banners)
}

// ListAvailable returns available banners of claimable campaigns, at most
// f.PerCampaign per campaign when set.
func (r *Repository) ListAvailable(ctx context.Context, f domain.AvailableFilter) ([]domain.Banner, error) {
	args := []any{f.At}
	where := []string{
		"c.status = 'active'",
		"$1 BETWEEN c.start_date AND c.end_date",
		"c.remaining_slots > 0",
		"b.status = 'available'",
	}
	if f.VehicleClass != "" {
		args = append(args, string(f.VehicleClass))
		where = append(where, fmt.Sprintf("c.vehicle_class = $%d", len(args)))
	}
	if f.CampaignID != "" {
		args = append(args, f.CampaignID)
		where = append(where, fmt.Sprintf("c.id = $%d", len(args)))
	}
	limit := ""
	if f.PerCampaign > 0 {
		args = append(args, f.PerCampaign)
		limit = fmt.Sprintf("WHERE rn <= $%d", len(args))
	}

	query := fmt.Sprintf(`SELECT id, campaign_id, driver_id, status, assigned_at, created_at FROM (
    SELECT %s, row_number() OVER (PARTITION BY b.campaign_id ORDER BY b.created_at, b.id) AS rn
    FROM banners b
    JOIN campaigns c ON c.id = b.campaign_id
    WHERE %s
) candidates %s
ORDER BY campaign_id, created_at, id`, bannerColumns, strings.Join(where, " AND "), limit)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return pgx.CollectRows(rows, scanBanner)
}

// ListDriverBanners returns the driver's banners in the given statuses with
// their verification history, oldest assignment first.
func (r *Repository) ListDriverBanners(ctx context.Context, driverID string, statuses ...domain.BannerStatus) ([]domain.Banner, error) {
	args := []any{driverID}
	query := `SELECT ` + bannerColumns + ` FROM banners b WHERE b.driver_id = $1`
	if len(statuses) > 0 {
		args = append(args, statusStrings(statuses))
		query += ` AND b.status = ANY($2)`
	}
	query += ` ORDER BY b.assigned_at, b.id`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	banners, err := pgx.CollectRows(rows, scanBanner)
	if err != nil {
		return nil, err
	}
	return banners, loadHistory(ctx, r.pool, banners)
}

// loadHistory fills the verification history of banners in submission
// order.
func loadHistory(ctx context.Context, q querier, banners []domain.Banner) error {
	if len(banners) == 0 {
		return nil
	}
	index := make(map[string]int, len(banners))
	ids := make([]string, 0, len(banners))
	for i, b := range banners {
		index[b.ID] = i
		ids = append(ids, b.ID)
	}

	rows, err := q.Query(ctx, `SELECT banner_id, photo_ref, uploaded_at, captured_at, latitude, longitude, is_verified
FROM verification_records WHERE banner_id = ANY($1) ORDER BY banner_id, id`, ids)
	if err != nil {
		return err
	}
	type record struct {
		bannerID string
		rec      domain.VerificationRecord
	}
	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (record, error) {
		var r record
		err := row.Scan(&r.bannerID, &r.rec.PhotoRef, &r.rec.UploadedAt, &r.rec.CapturedAt,
			&r.rec.Latitude, &r.rec.Longitude, &r.rec.IsVerified)
		return r, err
	})
	if err != nil {
		return fmt.Errorf("load verification history: %w", err)
	}
	for _, r := range records {
		i := index[r.bannerID]
		banners[i].VerificationHistory = append(banners[i].VerificationHistory, r.rec)
	}
	return nil
}

// Claim assigns the banner to the driver and takes one campaign slot in a
// single transaction. The driver row lock serialises a driver's claims so
// the capacity check cannot be raced.
func (r *Repository) Claim(ctx context.Context, req port.ClaimRequest) (b *domain.Banner, err error) {
	var exists bool
	if err = r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM banners WHERE id = $1)`, req.BannerID).Scan(&exists); err != nil {
		return nil, err
	}
	if !exists {
		return nil, domain.ErrBannerNotFound
	}

	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	var driverID string
	err = tx.QueryRow(ctx, `SELECT id FROM drivers WHERE id = $1 FOR UPDATE`, req.DriverID).Scan(&driverID)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrDriverNotFound
	}
	if err != nil {
		return nil, err
	}

	var (
		status     domain.BannerStatus
		campaignID string
	)
	err = tx.QueryRow(ctx, `SELECT status, campaign_id FROM banners WHERE id = $1 FOR UPDATE`, req.BannerID).
		Scan(&status, &campaignID)
	if err != nil {
		return nil, err
	}
	if status != domain.BannerAvailable {
		return nil, domain.ErrBannerNotAvailable
	}

	var active int
	err = tx.QueryRow(ctx, `SELECT count(*) FROM banners WHERE driver_id = $1 AND status IN ('assigned', 'verified')`,
		req.DriverID).Scan(&active)
	if err != nil {
		return nil, err
	}
	if active >= req.MaxActive {
		return nil, domain.ErrDriverAtCapacity
	}

	c, err := lockCampaign(ctx, tx, campaignID)
	if err != nil {
		return nil, err
	}
	if !c.Claimable(req.At) {
		return nil, domain.ErrCampaignInactive
	}
	tag, err := tx.Exec(ctx, `UPDATE campaigns SET remaining_slots = remaining_slots - 1
WHERE id = $1 AND remaining_slots > 0`, campaignID)
	if err != nil {
		return nil, err
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrSlotsExhausted
	}

	_, err = tx.Exec(ctx, `UPDATE banners SET driver_id = $2, status = 'assigned', assigned_at = $3 WHERE id = $1`,
		req.BannerID, req.DriverID, req.At)
	if err != nil {
		return nil, err
	}
	return getBanner(ctx, tx, req.BannerID)
}

// AppendVerification appends rec under the banner row lock. A verified
// record moves an assigned banner to verified; a failed one never moves it
// back.
func (r *Repository) AppendVerification(ctx context.Context, bannerID, driverID string, rec domain.VerificationRecord) (b *domain.Banner, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	var (
		owner  *string
		status domain.BannerStatus
	)
	err = tx.QueryRow(ctx, `SELECT driver_id, status FROM banners WHERE id = $1 FOR UPDATE`, bannerID).Scan(&owner, &status)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrBannerNotFound
	}
	if err != nil {
		return nil, err
	}
	if owner == nil || *owner != driverID || !status.Active() {
		return nil, domain.ErrNotAssigned
	}

	_, err = tx.Exec(ctx, `INSERT INTO verification_records
    (banner_id, photo_ref, uploaded_at, captured_at, latitude, longitude, is_verified)
VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		bannerID, rec.PhotoRef, rec.UploadedAt, rec.CapturedAt, rec.Latitude, rec.Longitude, rec.IsVerified)
	if err != nil {
		return nil, fmt.Errorf("insert verification record: %w", err)
	}
	if rec.IsVerified && status == domain.BannerAssigned {
		if _, err = tx.Exec(ctx, `UPDATE banners SET status = 'verified' WHERE id = $1`, bannerID); err != nil {
			return nil, err
		}
	}
	return getBanner(ctx, tx, bannerID)
}

// CancelCampaign marks the campaign cancelled and completes the banners
// the policy retires.
func (r *Repository) CancelCampaign(ctx context.Context, campaignID string, policy domain.CancelPolicy) (int, error) {
	return r.closeCampaign(ctx, campaignID, domain.CampaignCancelled, retiredStatuses(policy.Retires))
}

// CompleteCampaign marks the campaign and all of its banners completed.
func (r *Repository) CompleteCampaign(ctx context.Context, campaignID string) (int, error) {
	return r.closeCampaign(ctx, campaignID, domain.CampaignCompleted, retiredStatuses(func(s domain.BannerStatus) bool {
		return s != domain.BannerCompleted
	}))
}

func (r *Repository) closeCampaign(ctx context.Context, campaignID string, to domain.CampaignStatus, retire []string) (n int, err error) {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	// Banners before the campaign, in id order, to match Claim.
	if _, err = tx.Exec(ctx, `SELECT id FROM banners WHERE campaign_id = $1 ORDER BY id FOR UPDATE`, campaignID); err != nil {
		return 0, err
	}
	c, err := lockCampaign(ctx, tx, campaignID)
	if err != nil {
		return 0, err
	}
	if c.Status == domain.CampaignCompleted || (to == domain.CampaignCancelled && c.Status == domain.CampaignCancelled) {
		return 0, domain.ErrCampaignClosed
	}

	if _, err = tx.Exec(ctx, `UPDATE campaigns SET status = $2 WHERE id = $1`, campaignID, string(to)); err != nil {
		return 0, err
	}
	tag, err := tx.Exec(ctx, `UPDATE banners SET status = 'completed' WHERE campaign_id = $1 AND status = ANY($2)`,
		campaignID, retire)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}
