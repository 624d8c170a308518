package order

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"shopping-matrix/internal/domain"
)

type postgresRepo struct {
	pool   *pgxpool.Pool
	logger *log.Logger
}

func NewPostgres(pool *pgxpool.Pool, logger *log.Logger) Repository {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &postgresRepo{pool: pool, logger: logger}
}

// Insert stores the order; a repeated insert of the same order is a no-op so
// mirror retries stay idempotent.
func (r *postgresRepo) Insert(ctx context.Context, o domain.Order) error {
	const q = `
INSERT INTO orders (order_number, session_id, items, subtotal, tax, total, status, category, qr_code,
                    payment_method, service_mode, estimated_minutes, estimated_time, ordered_at)
VALUES ($1, $2, $3::jsonb, $4::numeric, $5::numeric, $6::numeric, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (session_id, order_number) DO NOTHING
`
	items, err := json.Marshal(o.Items)
	if err != nil {
		return fmt.Errorf("encode items: %w", err)
	}
	_, err = r.pool.Exec(ctx, q,
		o.ID,
		o.SessionID,
		string(items),
		o.Subtotal.StringFixed(2),
		o.Tax.StringFixed(2),
		o.Total.StringFixed(2),
		string(o.Status),
		string(o.Category),
		o.QRCode,
		string(o.PaymentMethod),
		string(o.ServiceMode),
		o.EstimatedMinutes,
		o.EstimatedReadyTime,
		o.OrderTime,
	)
	if err != nil {
		r.logger.Printf("order repo: insert order=%s session=%s error=%v", o.ID, o.SessionID, err)
		return err
	}
	r.logger.Printf("order repo: inserted order=%s session=%s", o.ID, o.SessionID)
	return nil
}

func (r *postgresRepo) UpdateStatus(ctx context.Context, sessionID, orderNumber string, status domain.OrderStatus) error {
	const q = `
UPDATE orders SET status = $3, updated_at = now()
WHERE session_id = $1 AND order_number = $2
`
	tag, err := r.pool.Exec(ctx, q, sessionID, orderNumber, string(status))
	if err != nil {
		r.logger.Printf("order repo: update status order=%s session=%s error=%v", orderNumber, sessionID, err)
		return err
	}
	if tag.RowsAffected() == 0 {
		r.logger.Printf("order repo: update status order=%s session=%s not found", orderNumber, sessionID)
		return domain.ErrNotFound
	}
	r.logger.Printf("order repo: update status order=%s session=%s status=%s", orderNumber, sessionID, status)
	return nil
}

func (r *postgresRepo) List(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error) {
	const q = `
SELECT order_number, session_id, items, subtotal::text, tax::text, total::text, status, category, qr_code,
       payment_method, service_mode, estimated_minutes, estimated_time, ordered_at
FROM orders
WHERE $1 = '' OR status = $1
ORDER BY ordered_at DESC
`
	rows, err := r.pool.Query(ctx, q, string(status))
	if err != nil {
		r.logger.Printf("order repo: list status=%s error=%v", status, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Order
	for rows.Next() {
		var (
			o                     domain.Order
			items                 []byte
			subtotal, tax, total  string
			st, cat, method, mode string
		)
		if err := rows.Scan(&o.ID, &o.SessionID, &items, &subtotal, &tax, &total, &st, &cat, &o.QRCode,
			&method, &mode, &o.EstimatedMinutes, &o.EstimatedReadyTime, &o.OrderTime); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(items, &o.Items); err != nil {
			return nil, fmt.Errorf("decode items for order %s: %w", o.ID, err)
		}
		if o.Subtotal, err = decimal.NewFromString(subtotal); err != nil {
			return nil, err
		}
		if o.Tax, err = decimal.NewFromString(tax); err != nil {
			return nil, err
		}
		if o.Total, err = decimal.NewFromString(total); err != nil {
			return nil, err
		}
		o.Status = domain.OrderStatus(st)
		o.Category = domain.Category(cat)
		o.PaymentMethod = domain.PaymentMethod(method)
		o.ServiceMode = domain.ServiceMode(mode)
		result = append(result, o)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("order repo: list rows status=%s error=%v", status, err)
		return nil, err
	}
	r.logger.Printf("order repo: list status=%s count=%d", status, len(result))
	return result, nil
}
