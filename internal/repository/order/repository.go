package order

import (
	"context"

	"shopping-matrix/internal/domain"
)

type Repository interface {
	Insert(ctx context.Context, o domain.Order) error
	// UpdateStatus sets the status of the order identified by session and order
	// number. Order numbers are only unique within a session.
	UpdateStatus(ctx context.Context, sessionID, orderNumber string, status domain.OrderStatus) error
	// List returns orders newest first; an empty status returns every order.
	List(ctx context.Context, status domain.OrderStatus) ([]domain.Order, error)
}
