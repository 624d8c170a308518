package docstore

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"

	"shopping-matrix/internal/domain"
	"shopping-matrix/internal/mirror"
)

func TestOrderDocument(t *testing.T) {
	readyAt := time.Date(2026, 4, 1, 9, 15, 0, 0, time.UTC)
	o := domain.Order{
		ID:        "ORD-123456",
		SessionID: "s1",
		Items: []domain.CartLine{{
			ID:          "l1",
			ProductID:   "p1",
			Name:        "Caffe Latte",
			UnitPrice:   decimal.RequireFromString("2.95"),
			Quantity:    2,
			Category:    domain.CategoryFood,
			ServiceMode: domain.ServiceDineIn,
		}},
		Subtotal:           decimal.RequireFromString("5.9"),
		Tax:                decimal.RequireFromString("1.06"),
		Total:              decimal.RequireFromString("6.96"),
		Status:             domain.OrderStatusPreparing,
		Category:           domain.CategoryFood,
		OrderTime:          readyAt.Add(-16 * time.Minute),
		EstimatedMinutes:   16,
		EstimatedReadyAt:   &readyAt,
		EstimatedReadyTime: "09:15",
		QRCode:             "QRAB12CD",
		PaymentMethod:      domain.PaymentUPI,
		ServiceMode:        domain.ServiceDineIn,
	}

	doc := orderDocument(o)
	assert.Equal(t, "ORD-123456", doc["orderNumber"])
	assert.Equal(t, "5.90", doc["subtotal"])
	assert.Equal(t, "preparing", doc["status"])
	assert.Equal(t, "dine-in", doc["orderType"])
	assert.Equal(t, "09:15", doc["estimatedTime"])

	items, ok := doc["items"].([]bson.M)
	require.True(t, ok)
	require.Len(t, items, 1)
	assert.Equal(t, "2.95", items[0]["price"])
	assert.Equal(t, 2, items[0]["quantity"])
	_, hasSize := items[0]["size"]
	assert.False(t, hasSize)
}

func TestOrderDocumentWithoutEstimate(t *testing.T) {
	doc := orderDocument(domain.Order{ID: "ORD-1", Status: domain.OrderStatusReady, Category: domain.CategoryClothing})
	_, hasEstimate := doc["estimatedTime"]
	assert.False(t, hasEstimate)
	_, hasMode := doc["orderType"]
	assert.False(t, hasMode)
}

func TestStockDocument(t *testing.T) {
	at := time.Date(2026, 4, 1, 9, 0, 0, 0, time.UTC)
	doc := stockDocument(mirror.Event{Kind: mirror.KindStockDecrease, SessionID: "s1", ItemID: "p1", Delta: -2, Remaining: 3, At: at})
	assert.Equal(t, "p1", doc["itemId"])
	assert.Equal(t, -2, doc["delta"])
	assert.Equal(t, 3, doc["remaining"])
	assert.Equal(t, at, doc["at"])
}
