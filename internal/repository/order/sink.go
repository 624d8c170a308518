package order

import (
	"context"

	"shopping-matrix/internal/mirror"
)

type stockAdjuster interface {
	AdjustStock(ctx context.Context, id string, delta int) (int, error)
}

// Sink mirrors journal events into the relational store. Stock changes are
// skipped when no product repository is attached.
type Sink struct {
	orders Repository
	stock  stockAdjuster
}

func NewSink(orders Repository, stock stockAdjuster) *Sink {
	return &Sink{orders: orders, stock: stock}
}

func (s *Sink) Name() string { return "postgres" }

func (s *Sink) Apply(ctx context.Context, ev mirror.Event) error {
	switch ev.Kind {
	case mirror.KindOrderCreated:
		if ev.Order == nil {
			return nil
		}
		return s.orders.Insert(ctx, *ev.Order)
	case mirror.KindOrderStatus:
		if ev.Order == nil {
			return nil
		}
		return s.orders.UpdateStatus(ctx, ev.SessionID, ev.Order.ID, ev.Order.Status)
	case mirror.KindStockDecrease:
		if s.stock == nil || ev.Delta == 0 {
			return nil
		}
		_, err := s.stock.AdjustStock(ctx, ev.ItemID, ev.Delta)
		return err
	}
	return nil
}
