package domain

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type OrderStatus string

const (
	OrderStatusPreparing OrderStatus = "preparing"
	OrderStatusReady     OrderStatus = "ready"
	OrderStatusCollected OrderStatus = "collected"
	OrderStatusDelivered OrderStatus = "delivered"
)

// ParseOrderStatus normalises user input into an OrderStatus.
func ParseOrderStatus(raw string) (OrderStatus, bool) {
	s := OrderStatus(strings.ToLower(strings.TrimSpace(raw)))
	switch s {
	case OrderStatusPreparing, OrderStatusReady, OrderStatusCollected, OrderStatusDelivered:
		return s, true
	}
	return "", false
}

var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPreparing: {OrderStatusReady},
	OrderStatusReady:     {OrderStatusCollected, OrderStatusDelivered},
}

// CanTransition reports whether an order may move from one status to the next.
// Collected and delivered are terminal.
func CanTransition(from, to OrderStatus) bool {
	for _, next := range orderTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// Active reports whether the order still awaits fulfillment.
func (s OrderStatus) Active() bool {
	return s == OrderStatusPreparing || s == OrderStatusReady
}

// Completed reports whether the order reached a terminal status.
func (s OrderStatus) Completed() bool {
	return s == OrderStatusCollected || s == OrderStatusDelivered
}

type PaymentMethod string

const (
	PaymentCard   PaymentMethod = "card"
	PaymentUPI    PaymentMethod = "upi"
	PaymentWallet PaymentMethod = "wallet"
)

func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	m := PaymentMethod(strings.ToLower(strings.TrimSpace(raw)))
	switch m {
	case PaymentCard, PaymentUPI, PaymentWallet:
		return m, nil
	}
	return "", ErrInvalidPaymentMethod
}

// Order is a checkout snapshot. Everything except Status is fixed at creation.
type Order struct {
	ID                 string          `json:"id"`
	SessionID          string          `json:"sessionId,omitempty"`
	Items              []CartLine      `json:"items"`
	Subtotal           decimal.Decimal `json:"subtotal"`
	Tax                decimal.Decimal `json:"tax"`
	Total              decimal.Decimal `json:"total"`
	Status             OrderStatus     `json:"status"`
	Category           Category        `json:"category"`
	OrderTime          time.Time       `json:"orderTime"`
	EstimatedMinutes   int             `json:"estimatedMinutes,omitempty"`
	EstimatedReadyAt   *time.Time      `json:"estimatedReadyAt,omitempty"`
	EstimatedReadyTime string          `json:"estimatedTime,omitempty"`
	QRCode             string          `json:"qrCode"`
	PaymentMethod      PaymentMethod   `json:"paymentMethod"`
	ServiceMode        ServiceMode     `json:"orderType,omitempty"`
}

// Clone returns a deep copy so callers cannot reach into journal state.
func (o Order) Clone() Order {
	out := o
	out.Items = append([]CartLine(nil), o.Items...)
	if o.EstimatedReadyAt != nil {
		at := *o.EstimatedReadyAt
		out.EstimatedReadyAt = &at
	}
	return out
}

// ResolveCategory picks the order category: clothing beats food, food beats other.
func ResolveCategory(lines []CartLine) Category {
	hasFood := false
	for _, l := range lines {
		switch l.Category {
		case CategoryClothing:
			return CategoryClothing
		case CategoryFood:
			hasFood = true
		}
	}
	if hasFood {
		return CategoryFood
	}
	return CategoryOther
}
