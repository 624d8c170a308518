package mirror

import (
	"time"

	"shopping-matrix/internal/domain"
)

type Kind string

const (
	KindOrderCreated  Kind = "order.created"
	KindOrderStatus   Kind = "order.status"
	KindStockDecrease Kind = "stock.decrease"
)

// Event describes a change that has already been committed to a session's
// in-memory stores.
type Event struct {
	Kind      Kind
	SessionID string
	At        time.Time

	// Set for order events; a snapshot taken after the change.
	Order *domain.Order

	// Set for stock events.
	ItemID    string
	Delta     int
	Remaining int
}

// Publisher accepts committed-change events. Implementations must not block.
type Publisher interface {
	Publish(ev Event)
}

// Discard drops every event.
type Discard struct{}

func (Discard) Publish(Event) {}
