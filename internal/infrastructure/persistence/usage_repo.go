package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"promo-engine/internal/domain"
	"promo-engine/internal/domain/entity"
	"promo-engine/pkg/errcodes"
)

const usageColumns = `id, deal_id, customer_id, order_id, discount_amount, used_at`

type UsageRepository struct {
	db *sqlx.DB
}

func NewUsageRepository(db *sqlx.DB) *UsageRepository {
	return &UsageRepository{db: db}
}

func (r *UsageRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to begin transaction")
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return domain.WrapError(
				fmt.Errorf("%w; rollback: %v", err, rbErr),
				errcodes.InternalServerError,
				"transaction failed",
			)
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to commit")
	}

	return nil
}

// Append writes one record to the usage log. The log is append-only, no
// update or delete path exists.
func (r *UsageRepository) Append(ctx context.Context, record *entity.UsageRecord) error {
	query := `
		INSERT INTO usage_records (id, deal_id, customer_id, order_id, discount_amount, used_at)
		VALUES (:id, :deal_id, :customer_id, :order_id, :discount_amount, :used_at)`

	schema := usageSchema{
		ID:             record.ID,
		DealID:         record.DealID,
		CustomerID:     record.CustomerID,
		OrderID:        record.OrderID,
		DiscountAmount: record.DiscountAmount,
		UsedAt:         record.UsedAt,
	}

	if _, err := r.db.NamedExecContext(ctx, query, schema); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to insert usage record")
	}

	return nil
}

func (r *UsageRepository) ListRecent(ctx context.Context, dealID uuid.UUID, limit int) ([]entity.UsageRecord, error) {
	query := `SELECT ` + usageColumns + ` FROM usage_records WHERE deal_id = $1 ORDER BY used_at DESC, id LIMIT $2`

	var schemas []usageSchema
	if err := r.db.SelectContext(ctx, &schemas, query, dealID, limit); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list usage records")
	}

	return toRecords(schemas), nil
}

func (r *UsageRepository) ListByDeal(ctx context.Context, dealID uuid.UUID) ([]entity.UsageRecord, error) {
	query := `SELECT ` + usageColumns + ` FROM usage_records WHERE deal_id = $1 ORDER BY used_at, id`

	var schemas []usageSchema
	if err := r.db.SelectContext(ctx, &schemas, query, dealID); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list usage records")
	}

	return toRecords(schemas), nil
}

// CountForCustomer reads the per-customer counter advanced by Consume.
func (r *UsageRepository) CountForCustomer(ctx context.Context, dealID, customerID uuid.UUID) (int, error) {
	query := `
		SELECT COALESCE(
			(SELECT used_count FROM deal_customer_usage WHERE deal_id = $1 AND customer_id = $2), 0)`

	var count int
	if err := r.db.GetContext(ctx, &count, query, dealID, customerID); err != nil {
		return 0, domain.WrapError(err, errcodes.InternalServerError, "failed to count customer usage")
	}

	return count, nil
}

// CountTotal reads the total counter advanced by Consume.
func (r *UsageRepository) CountTotal(ctx context.Context, dealID uuid.UUID) (int, error) {
	var count int
	if err := r.db.GetContext(ctx, &count, `SELECT usage_count FROM deals WHERE id = $1`, dealID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, domain.NewError(errcodes.DealNotFound, "deal not found")
		}
		return 0, domain.WrapError(err, errcodes.InternalServerError, "failed to count deal usage")
	}

	return count, nil
}

// Consume takes one usage slot for the deal inside a single transaction.
// The total cap is enforced by a conditional increment on the deals row,
// the per-customer cap by a locked counter row. Either cap leaving no room
// rolls the whole transaction back with a DealExhausted error, so two
// checkouts racing for the last slot cannot both win.
func (r *UsageRepository) Consume(ctx context.Context, deal entity.Deal, customerID *uuid.UUID) error {
	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if deal.MaxUsagePerCustomer != nil && customerID != nil {
			if err := r.consumeCustomerTx(ctx, tx, deal.ID, *customerID, *deal.MaxUsagePerCustomer); err != nil {
				return err
			}
		}

		return r.consumeTotalTx(ctx, tx, deal.ID)
	})
}

func (r *UsageRepository) consumeCustomerTx(
	ctx context.Context,
	tx *sqlx.Tx,
	dealID, customerID uuid.UUID,
	maxPerCustomer int,
) error {
	insert := `
		INSERT INTO deal_customer_usage (deal_id, customer_id, used_count)
		VALUES ($1, $2, 0)
		ON CONFLICT (deal_id, customer_id) DO NOTHING`

	if _, err := tx.ExecContext(ctx, insert, dealID, customerID); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to init customer usage")
	}

	var used int
	lock := `SELECT used_count FROM deal_customer_usage WHERE deal_id = $1 AND customer_id = $2 FOR UPDATE`
	if err := tx.GetContext(ctx, &used, lock, dealID, customerID); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to lock customer usage")
	}

	if used >= maxPerCustomer {
		return domain.NewError(errcodes.DealExhausted, "deal no longer available")
	}

	update := `UPDATE deal_customer_usage SET used_count = used_count + 1 WHERE deal_id = $1 AND customer_id = $2`
	if _, err := tx.ExecContext(ctx, update, dealID, customerID); err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to increment customer usage")
	}

	return nil
}

func (r *UsageRepository) consumeTotalTx(ctx context.Context, tx *sqlx.Tx, dealID uuid.UUID) error {
	query := `
		UPDATE deals
		SET usage_count = usage_count + 1
		WHERE id = $1 AND (max_total_usage IS NULL OR usage_count < max_total_usage)`

	res, err := tx.ExecContext(ctx, query, dealID)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to increment deal usage")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to check affected rows")
	}

	if rows == 0 {
		var exists bool
		if err := tx.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM deals WHERE id = $1)`, dealID); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to check deal existence")
		}

		if !exists {
			return domain.NewError(errcodes.DealNotFound, "deal not found")
		}

		return domain.NewError(errcodes.DealExhausted, "deal no longer available")
	}

	return nil
}

func toRecords(schemas []usageSchema) []entity.UsageRecord {
	records := make([]entity.UsageRecord, 0, len(schemas))
	for _, s := range schemas {
		records = append(records, s.toDomain())
	}

	return records
}
