package product

import (
	"context"

	"shopping-matrix/internal/domain"
)

type Repository interface {
	ListByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error)
	GetByID(ctx context.Context, id string) (*domain.Product, error)
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
	// AdjustStock adds delta to the stored count, never going below zero, and
	// returns the new count.
	AdjustStock(ctx context.Context, id string, delta int) (int, error)
}
