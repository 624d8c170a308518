package docstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"shopping-matrix/internal/domain"
	"shopping-matrix/internal/mirror"
)

const (
	OrdersCollection      = "orders"
	StockEventsCollection = "stock_events"
)

// Sink mirrors journal events into the orders and stock_events collections.
type Sink struct {
	store *Store
}

func NewSink(store *Store) *Sink {
	return &Sink{store: store}
}

func (s *Sink) Name() string { return "mongo" }

func (s *Sink) Apply(ctx context.Context, ev mirror.Event) error {
	switch ev.Kind {
	case mirror.KindOrderCreated, mirror.KindOrderStatus:
		if ev.Order == nil {
			return nil
		}
		return s.upsertOrder(ctx, *ev.Order)
	case mirror.KindStockDecrease:
		_, err := s.store.db.Collection(StockEventsCollection).InsertOne(ctx, stockDocument(ev))
		return err
	}
	return nil
}

// Orders are keyed by session and order number so a retried event rewrites
// the same document.
func (s *Sink) upsertOrder(ctx context.Context, o domain.Order) error {
	filter := bson.M{"sessionId": o.SessionID, "orderNumber": o.ID}
	update := bson.M{
		"$set":         orderDocument(o),
		"$currentDate": bson.M{"updatedAt": true},
		"$setOnInsert": bson.M{"createdAt": s.store.now().UTC()},
	}
	_, err := s.store.db.Collection(OrdersCollection).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}

func orderDocument(o domain.Order) bson.M {
	items := make([]bson.M, 0, len(o.Items))
	for _, l := range o.Items {
		item := bson.M{
			"lineId":    l.ID,
			"productId": l.ProductID,
			"name":      l.Name,
			"price":     l.UnitPrice.String(),
			"quantity":  l.Quantity,
			"brand":     l.Brand,
			"category":  string(l.Category),
			"type":      string(l.AcquisitionMode),
		}
		if l.Size != "" {
			item["size"] = l.Size
		}
		if l.Color != "" {
			item["color"] = l.Color
		}
		if l.ServiceMode != "" {
			item["orderType"] = string(l.ServiceMode)
		}
		items = append(items, item)
	}
	doc := bson.M{
		"sessionId":     o.SessionID,
		"orderNumber":   o.ID,
		"items":         items,
		"subtotal":      o.Subtotal.StringFixed(2),
		"tax":           o.Tax.StringFixed(2),
		"total":         o.Total.StringFixed(2),
		"status":        string(o.Status),
		"category":      string(o.Category),
		"qrCode":        o.QRCode,
		"paymentMethod": string(o.PaymentMethod),
		"orderTime":     o.OrderTime.UTC(),
	}
	if o.ServiceMode != "" {
		doc["orderType"] = string(o.ServiceMode)
	}
	if o.EstimatedReadyAt != nil {
		doc["estimatedMinutes"] = o.EstimatedMinutes
		doc["estimatedTime"] = o.EstimatedReadyTime
	}
	return doc
}

func stockDocument(ev mirror.Event) bson.M {
	return bson.M{
		"sessionId": ev.SessionID,
		"itemId":    ev.ItemID,
		"delta":     ev.Delta,
		"remaining": ev.Remaining,
		"at":        ev.At.UTC(),
	}
}
