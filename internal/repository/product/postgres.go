package product

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/jackc/pgx/v5"
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

// attributes is the jsonb payload for the option lists.
type attributes struct {
	Sizes  []string `json:"sizes,omitempty"`
	Colors []string `json:"colors,omitempty"`
}

const selectColumns = `id::text, name, price::text, category, brand, image, stock_count, description, attributes, created_at, updated_at`

func scanProduct(row pgx.Row) (domain.Product, error) {
	var (
		p     domain.Product
		price string
		cat   string
		attrs []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &price, &cat, &p.Brand, &p.Image, &p.StockCount, &p.Description, &attrs, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return domain.Product{}, err
	}
	d, err := decimal.NewFromString(price)
	if err != nil {
		return domain.Product{}, fmt.Errorf("parse price %q: %w", price, err)
	}
	p.Price = d
	p.Category = domain.Category(cat)
	if len(attrs) > 0 {
		var a attributes
		if err := json.Unmarshal(attrs, &a); err != nil {
			return domain.Product{}, fmt.Errorf("decode attributes: %w", err)
		}
		p.Sizes = a.Sizes
		p.Colors = a.Colors
	}
	return p, nil
}

func (r *postgresRepo) ListByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error) {
	q := `SELECT ` + selectColumns + `
FROM products
WHERE category = $1
ORDER BY created_at DESC
`
	rows, err := r.pool.Query(ctx, q, string(category))
	if err != nil {
		r.logger.Printf("product repo: list category=%s error=%v", category, err)
		return nil, err
	}
	defer rows.Close()

	var result []domain.Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		r.logger.Printf("product repo: list rows category=%s error=%v", category, err)
		return nil, err
	}
	r.logger.Printf("product repo: list category=%s count=%d", category, len(result))
	return result, nil
}

func (r *postgresRepo) GetByID(ctx context.Context, id string) (*domain.Product, error) {
	q := `SELECT ` + selectColumns + `
FROM products
WHERE id = $1::uuid
`
	p, err := scanProduct(r.pool.QueryRow(ctx, q, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("product repo: get id=%s not found", id)
			return nil, domain.ErrNotFound
		}
		r.logger.Printf("product repo: get id=%s error=%v", id, err)
		return nil, err
	}
	return &p, nil
}

// Upsert inserts a product or updates the existing one with the same brand and
// name.
func (r *postgresRepo) Upsert(ctx context.Context, product domain.Product) (*domain.Product, error) {
	const q = `
INSERT INTO products (id, name, price, category, brand, image, stock_count, description, attributes)
VALUES (COALESCE(NULLIF($1, '')::uuid, gen_random_uuid()), $2, $3::numeric, $4, $5, $6, GREATEST($7, 0), $8, $9::jsonb)
ON CONFLICT (brand, name) DO UPDATE SET
    price = EXCLUDED.price,
    category = EXCLUDED.category,
    image = EXCLUDED.image,
    stock_count = EXCLUDED.stock_count,
    description = EXCLUDED.description,
    attributes = EXCLUDED.attributes,
    updated_at = now()
RETURNING id::text, stock_count, created_at, updated_at
`
	attrs, err := json.Marshal(attributes{Sizes: product.Sizes, Colors: product.Colors})
	if err != nil {
		return nil, fmt.Errorf("encode attributes: %w", err)
	}

	res := product
	err = r.pool.QueryRow(ctx, q,
		product.ID,
		product.Name,
		product.Price.StringFixed(2),
		string(product.Category),
		product.Brand,
		product.Image,
		product.StockCount,
		product.Description,
		string(attrs),
	).Scan(&res.ID, &res.StockCount, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		r.logger.Printf("product repo: upsert brand=%s name=%s error=%v", product.Brand, product.Name, err)
		return nil, err
	}
	if product.ID != "" && res.ID != product.ID {
		return nil, fmt.Errorf("product repo: id mismatch for brand=%s name=%s existing_id=%s import_id=%s", product.Brand, product.Name, res.ID, product.ID)
	}
	r.logger.Printf("product repo: upserted brand=%s name=%s id=%s", res.Brand, res.Name, res.ID)
	return &res, nil
}

func (r *postgresRepo) AdjustStock(ctx context.Context, id string, delta int) (int, error) {
	const q = `
UPDATE products
SET stock_count = GREATEST(stock_count + $2, 0), updated_at = now()
WHERE id = $1::uuid
RETURNING stock_count
`
	var remaining int
	if err := r.pool.QueryRow(ctx, q, id, delta).Scan(&remaining); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			r.logger.Printf("product repo: adjust stock id=%s not found", id)
			return 0, domain.ErrNotFound
		}
		r.logger.Printf("product repo: adjust stock id=%s delta=%d error=%v", id, delta, err)
		return 0, err
	}
	r.logger.Printf("product repo: adjust stock id=%s delta=%d remaining=%d", id, delta, remaining)
	return remaining, nil
}
