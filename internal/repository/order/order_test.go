package order

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"shopping-matrix/internal/domain"
	"shopping-matrix/internal/migrate"
)

func sampleOrder(number string, status domain.OrderStatus, at time.Time) domain.Order {
	return domain.Order{
		ID:        number,
		SessionID: "session-1",
		Items: []domain.CartLine{{
			ID:        "line-1",
			ProductID: "p1",
			Name:      "Caffe Latte",
			UnitPrice: decimal.RequireFromString("4.50"),
			Quantity:  2,
			Category:  domain.CategoryFood,
			Brand:     "Starbucks",
		}},
		Subtotal:           decimal.RequireFromString("9.00"),
		Tax:                decimal.RequireFromString("1.62"),
		Total:              decimal.RequireFromString("10.62"),
		Status:             status,
		Category:           domain.CategoryFood,
		OrderTime:          at,
		EstimatedMinutes:   16,
		EstimatedReadyTime: "12:16",
		QRCode:             "QRABC123",
		PaymentMethod:      domain.PaymentCard,
		ServiceMode:        domain.ServiceTakeaway,
	}
}

func TestPostgres_InsertListUpdate(t *testing.T) {
	ctx := context.Background()
	pool := testPool(ctx, t)
	defer pool.Close()

	if err := migrate.Apply(ctx, pool); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	resetTables(ctx, t, pool)

	repo := NewPostgres(pool, nil)
	base := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)

	first := sampleOrder("ORD-000001", domain.OrderStatusPreparing, base)
	second := sampleOrder("ORD-000002", domain.OrderStatusReady, base.Add(time.Minute))
	for _, o := range []domain.Order{first, second, first} {
		if err := repo.Insert(ctx, o); err != nil {
			t.Fatalf("Insert %s: %v", o.ID, err)
		}
	}

	all, err := repo.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(all) != 2 || all[0].ID != second.ID {
		t.Fatalf("expected 2 orders newest first, got %+v", all)
	}
	if len(all[1].Items) != 1 || all[1].Items[0].Quantity != 2 || !all[1].Total.Equal(first.Total) {
		t.Fatalf("unexpected decoded order %+v", all[1])
	}

	if err := repo.UpdateStatus(ctx, "session-1", first.ID, domain.OrderStatusReady); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}
	ready, err := repo.List(ctx, domain.OrderStatusReady)
	if err != nil {
		t.Fatalf("List ready: %v", err)
	}
	if len(ready) != 2 {
		t.Fatalf("expected 2 ready orders, got %d", len(ready))
	}

	if err := repo.UpdateStatus(ctx, "other-session", first.ID, domain.OrderStatusCollected); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func testPool(ctx context.Context, t *testing.T) *pgxpool.Pool {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("connect db: %v", err)
	}
	return pool
}

func resetTables(ctx context.Context, t *testing.T, pool *pgxpool.Pool) {
	t.Helper()
	if _, err := pool.Exec(ctx, `TRUNCATE orders, products RESTART IDENTITY CASCADE`); err != nil {
		t.Fatalf("truncate tables: %v", err)
	}
}
