// Package postgres implements the ledger repository on PostgreSQL via sqlx.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/m3rciful/psfastpay/internal/ledger"
)

// Repository persists orders and gift codes.
type Repository struct {
	db *sqlx.DB
}

// NewRepository constructs a Repository over an established connection pool.
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// CreateOrder inserts the draft as a pending order and returns the assigned
// sequential identifier. Identifier assignment and the row insert are one
// statement, so no two creates can observe the same id.
func (r *Repository) CreateOrder(ctx context.Context, draft ledger.DraftOrder) (int64, error) {
	const q = `
		INSERT INTO orders (
			user_id, username, product_id, product_title, variant, region,
			price_usd, price_display, currency, status, created_at,
			payment_method, payment_proof
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, '')
		RETURNING id`

	createdAt := draft.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	var id int64
	err := r.db.QueryRowContext(ctx, q,
		draft.UserID,
		draft.Username,
		draft.ProductID,
		draft.ProductTitle,
		draft.Variant,
		draft.Region,
		draft.PriceUSD,
		draft.PriceDisplay,
		draft.Currency,
		ledger.StatusPending,
		createdAt.UTC().Format(time.RFC3339),
		draft.Method,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert order: %w", err)
	}
	return id, nil
}

// Order returns the order by id, or ledger.ErrNotFound.
func (r *Repository) Order(ctx context.Context, id int64) (ledger.Order, error) {
	const q = `
		SELECT id, user_id, username, product_id, product_title, variant,
		       region, price_usd, price_display, currency, status,
		       created_at, payment_method, payment_proof
		FROM orders
		WHERE id = $1`

	var o ledger.Order
	if err := r.db.GetContext(ctx, &o, q, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.Order{}, ledger.ErrNotFound
		}
		return ledger.Order{}, fmt.Errorf("select order: %w", err)
	}
	return o, nil
}

// AttachProof stores the proof reference and advances the order to
// manual_submitted. The proof column is overwritten unconditionally; the
// status guard keeps paid orders from moving backwards.
func (r *Repository) AttachProof(ctx context.Context, id int64, proof string) error {
	const q = `
		UPDATE orders
		SET payment_proof = $2,
		    status = CASE WHEN status = $3 THEN status ELSE $4 END
		WHERE id = $1`

	res, err := r.db.ExecContext(ctx, q, id, proof, ledger.StatusPaid, ledger.StatusManualSubmitted)
	if err != nil {
		return fmt.Errorf("attach proof: %w", err)
	}
	return requireRow(res)
}

// MarkPaid advances the order to paid. Calling it on an already paid order
// is a no-op; an unknown id returns ledger.ErrNotFound.
func (r *Repository) MarkPaid(ctx context.Context, id int64) error {
	const q = `UPDATE orders SET status = $2 WHERE id = $1`

	res, err := r.db.ExecContext(ctx, q, id, ledger.StatusPaid)
	if err != nil {
		return fmt.Errorf("mark paid: %w", err)
	}
	return requireRow(res)
}

// RecentOrders returns up to limit orders, newest first.
func (r *Repository) RecentOrders(ctx context.Context, limit int) ([]ledger.Order, error) {
	const q = `
		SELECT id, user_id, username, product_id, product_title, variant,
		       region, price_usd, price_display, currency, status,
		       created_at, payment_method, payment_proof
		FROM orders
		ORDER BY id DESC
		LIMIT $1`

	var orders []ledger.Order
	if err := r.db.SelectContext(ctx, &orders, q, limit); err != nil {
		return nil, fmt.Errorf("select recent orders: %w", err)
	}
	return orders, nil
}

// AddGiftCode inserts a new code into inventory. Duplicate codes return
// ledger.ErrCodeExists.
func (r *Repository) AddGiftCode(ctx context.Context, code ledger.GiftCode) (int64, error) {
	const q = `
		INSERT INTO gift_codes (code, denomination, region, used, added_at)
		VALUES ($1, $2, $3, FALSE, $4)
		RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, q, code.Code, code.Denomination, code.Region, code.AddedAt).Scan(&id)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code.Name() == "unique_violation" {
			return 0, ledger.ErrCodeExists
		}
		return 0, fmt.Errorf("insert gift code: %w", err)
	}
	return id, nil
}

// AvailableGiftCodes lists codes not yet redeemed, oldest first.
func (r *Repository) AvailableGiftCodes(ctx context.Context) ([]ledger.GiftCode, error) {
	const q = `
		SELECT id, code, denomination, region, used, added_at
		FROM gift_codes
		WHERE NOT used
		ORDER BY id`

	var codes []ledger.GiftCode
	if err := r.db.SelectContext(ctx, &codes, q); err != nil {
		return nil, fmt.Errorf("select gift codes: %w", err)
	}
	return codes, nil
}

// MarkGiftCodeUsed flips the code's used flag exactly once.
func (r *Repository) MarkGiftCodeUsed(ctx context.Context, code string) error {
	const q = `UPDATE gift_codes SET used = TRUE WHERE code = $1 AND NOT used`

	res, err := r.db.ExecContext(ctx, q, code)
	if err != nil {
		return fmt.Errorf("mark gift code used: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		// Distinguish unknown code from already-used code.
		var used bool
		err := r.db.QueryRowContext(ctx, `SELECT used FROM gift_codes WHERE code = $1`, code).Scan(&used)
		if errors.Is(err, sql.ErrNoRows) {
			return ledger.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("check gift code: %w", err)
		}
		return ledger.ErrCodeUsed
	}
	return nil
}

func requireRow(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return ledger.ErrNotFound
	}
	return nil
}
