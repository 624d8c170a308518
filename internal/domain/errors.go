package domain

import "errors"

var (
	// ErrNotFound indicates the requested entity was not found.
	ErrNotFound = errors.New("not found")
	// ErrInvalidTransition is returned when an order status change skips a stage or moves backward.
	ErrInvalidTransition = errors.New("invalid order status transition")
	// ErrUnknownItem is returned when a stock operation references an item that was never seeded.
	ErrUnknownItem = errors.New("unknown stock item")
	ErrEmptyCart   = errors.New("cart is empty")

	ErrInvalidPaymentMethod = errors.New("invalid payment method")
	ErrInvalidServiceMode   = errors.New("invalid service mode")
	ErrInvalidCategory      = errors.New("invalid category")
	ErrInvalidOption        = errors.New("invalid product option")
	ErrInvalidStatus        = errors.New("invalid order status")
	// ErrOutOfStock is returned when adding an item the session's ledger shows as sold out.
	ErrOutOfStock = errors.New("out of stock")
)
