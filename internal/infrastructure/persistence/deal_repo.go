package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"promo-engine/internal/domain"
	"promo-engine/internal/domain/entity"
	"promo-engine/pkg/errcodes"
)

const dealColumns = `
	id, name, description, badge_text, deal_type,
	discount_percentage, discount_amount, combo_items, combo_price,
	buy_quantity, get_quantity, minimum_purchase,
	applicable_categories, applicable_items, applicable_branches,
	start_date, end_date, start_time, end_time, days_of_week,
	max_usage_per_customer, max_total_usage, usage_count,
	priority, allow_stacking, is_active, show_on_website,
	created_at, updated_at`

type DealRepository struct {
	db *sqlx.DB
}

func NewDealRepository(db *sqlx.DB) *DealRepository {
	return &DealRepository{db: db}
}

// withTx runs fn inside a transaction.
func (r *DealRepository) withTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
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

func (r *DealRepository) Create(ctx context.Context, deal *entity.Deal) error {
	now := time.Now()
	if deal.CreatedAt.IsZero() {
		deal.CreatedAt = now
	}
	deal.UpdatedAt = now

	schema, err := fromDeal(deal)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to marshal deal")
	}

	query := `
		INSERT INTO deals (
			id, name, description, badge_text, deal_type,
			discount_percentage, discount_amount, combo_items, combo_price,
			buy_quantity, get_quantity, minimum_purchase,
			applicable_categories, applicable_items, applicable_branches,
			start_date, end_date, start_time, end_time, days_of_week,
			max_usage_per_customer, max_total_usage,
			priority, allow_stacking, is_active, show_on_website,
			created_at, updated_at
		) VALUES (
			:id, :name, :description, :badge_text, :deal_type,
			:discount_percentage, :discount_amount, :combo_items, :combo_price,
			:buy_quantity, :get_quantity, :minimum_purchase,
			:applicable_categories, :applicable_items, :applicable_branches,
			:start_date, :end_date, :start_time, :end_time, :days_of_week,
			:max_usage_per_customer, :max_total_usage,
			:priority, :allow_stacking, :is_active, :show_on_website,
			:created_at, :updated_at
		)`

	return r.withTx(ctx, func(tx *sqlx.Tx) error {
		if _, err := tx.NamedExecContext(ctx, query, schema); err != nil {
			return domain.WrapError(err, errcodes.InternalServerError, "failed to insert deal")
		}
		return nil
	})
}

func (r *DealRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE id = $1`

	var schema dealSchema
	if err := r.db.GetContext(ctx, &schema, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewError(errcodes.DealNotFound, "deal not found")
		}
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to get deal")
	}

	return schema.toDomain()
}

func (r *DealRepository) Update(ctx context.Context, deal *entity.Deal) error {
	deal.UpdatedAt = time.Now()

	schema, err := fromDeal(deal)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to marshal deal")
	}

	query := `
		UPDATE deals SET
			name = :name,
			description = :description,
			badge_text = :badge_text,
			deal_type = :deal_type,
			discount_percentage = :discount_percentage,
			discount_amount = :discount_amount,
			combo_items = :combo_items,
			combo_price = :combo_price,
			buy_quantity = :buy_quantity,
			get_quantity = :get_quantity,
			minimum_purchase = :minimum_purchase,
			applicable_categories = :applicable_categories,
			applicable_items = :applicable_items,
			applicable_branches = :applicable_branches,
			start_date = :start_date,
			end_date = :end_date,
			start_time = :start_time,
			end_time = :end_time,
			days_of_week = :days_of_week,
			max_usage_per_customer = :max_usage_per_customer,
			max_total_usage = :max_total_usage,
			priority = :priority,
			allow_stacking = :allow_stacking,
			is_active = :is_active,
			show_on_website = :show_on_website,
			updated_at = :updated_at
		WHERE id = :id`

	res, err := r.db.NamedExecContext(ctx, query, schema)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to update deal")
	}

	return checkAffected(res)
}

func (r *DealRepository) Delete(ctx context.Context, id uuid.UUID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM deals WHERE id = $1`, id)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to delete deal")
	}

	return checkAffected(res)
}

func (r *DealRepository) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `UPDATE deals SET is_active = $1, updated_at = $2 WHERE id = $3`

	res, err := r.db.ExecContext(ctx, query, active, time.Now(), id)
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to toggle deal")
	}

	return checkAffected(res)
}

func (r *DealRepository) List(ctx context.Context, limit, offset int) ([]entity.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals ORDER BY created_at DESC, id LIMIT $1 OFFSET $2`

	var schemas []dealSchema
	if err := r.db.SelectContext(ctx, &schemas, query, limit, offset); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list deals")
	}

	return toDeals(schemas)
}

func (r *DealRepository) ListActive(ctx context.Context) ([]entity.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE is_active ORDER BY priority DESC, id`

	var schemas []dealSchema
	if err := r.db.SelectContext(ctx, &schemas, query); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list active deals")
	}

	return toDeals(schemas)
}

func (r *DealRepository) ListWebsite(ctx context.Context) ([]entity.Deal, error) {
	query := `SELECT ` + dealColumns + ` FROM deals WHERE is_active AND show_on_website ORDER BY priority DESC, id`

	var schemas []dealSchema
	if err := r.db.SelectContext(ctx, &schemas, query); err != nil {
		return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to list website deals")
	}

	return toDeals(schemas)
}

// DeactivateExpired switches off deals whose end date has passed and
// returns how many were affected. End dates are stored at midnight and the
// deal stays valid through its whole final day, so only deals a full day
// past end_date are switched off.
func (r *DealRepository) DeactivateExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE deals
		SET is_active = false, updated_at = $1
		WHERE is_active AND end_date IS NOT NULL AND end_date + interval '1 day' <= $2`

	res, err := r.db.ExecContext(ctx, query, now, now)
	if err != nil {
		return 0, domain.WrapError(err, errcodes.InternalServerError, "failed to deactivate expired deals")
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return 0, domain.WrapError(err, errcodes.InternalServerError, "failed to check affected rows")
	}

	return rows, nil
}

func toDeals(schemas []dealSchema) ([]entity.Deal, error) {
	deals := make([]entity.Deal, 0, len(schemas))
	for _, s := range schemas {
		deal, err := s.toDomain()
		if err != nil {
			return nil, domain.WrapError(err, errcodes.InternalServerError, "failed to convert deal")
		}
		deals = append(deals, *deal)
	}

	return deals, nil
}

func checkAffected(res sql.Result) error {
	rows, err := res.RowsAffected()
	if err != nil {
		return domain.WrapError(err, errcodes.InternalServerError, "failed to check affected rows")
	}

	if rows == 0 {
		return domain.NewError(errcodes.DealNotFound, "deal not found")
	}

	return nil
}
