package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Product is a catalog listing as supplied by the catalog provider.
type Product struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Price       decimal.Decimal `json:"price"`
	Image       string          `json:"image,omitempty"`
	Brand       string          `json:"brand"`
	Category    Category        `json:"category"`
	StockCount  int             `json:"stockCount"`
	Description string          `json:"description,omitempty"`
	Sizes       []string        `json:"sizes,omitempty"`
	Colors      []string        `json:"colors,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

func (p Product) InStock() bool {
	return p.StockCount > 0
}

// StockRecord is the ledger's view of one catalog item.
type StockRecord struct {
	ItemID         string   `json:"itemId"`
	RemainingCount int      `json:"remainingCount"`
	Category       Category `json:"category"`
	Brand          string   `json:"brand"`
}

// StockRecordFromProduct seeds a ledger record from a catalog listing.
func StockRecordFromProduct(p Product) StockRecord {
	remaining := p.StockCount
	if remaining < 0 {
		remaining = 0
	}
	return StockRecord{
		ItemID:         p.ID,
		RemainingCount: remaining,
		Category:       p.Category,
		Brand:          p.Brand,
	}
}

// CartLineFor builds an unsaved cart line for this product. Size and color must
// come from the product's option lists when given; trials are clothing only.
func (p Product) CartLineFor(size, color string, mode AcquisitionMode, service ServiceMode) (CartLine, error) {
	if size != "" {
		canonical, ok := lookupOption(p.Sizes, size)
		if !ok {
			return CartLine{}, fmt.Errorf("%w: size %q", ErrInvalidOption, size)
		}
		size = canonical
	}
	if color != "" {
		canonical, ok := lookupOption(p.Colors, color)
		if !ok {
			return CartLine{}, fmt.Errorf("%w: color %q", ErrInvalidOption, color)
		}
		color = canonical
	}
	switch mode {
	case "":
		mode = AcquisitionPurchase
	case AcquisitionPurchase:
	case AcquisitionTrial:
		if p.Category != CategoryClothing {
			return CartLine{}, fmt.Errorf("%w: trial is only offered for clothing", ErrInvalidOption)
		}
	default:
		return CartLine{}, fmt.Errorf("%w: type %q", ErrInvalidOption, mode)
	}
	return CartLine{
		ProductID:       p.ID,
		Name:            p.Name,
		UnitPrice:       p.Price,
		Image:           p.Image,
		Brand:           p.Brand,
		Category:        p.Category,
		AcquisitionMode: mode,
		Size:            size,
		Color:           color,
		ServiceMode:     service,
	}, nil
}

// lookupOption matches case-insensitively and returns the catalog spelling.
func lookupOption(list []string, v string) (string, bool) {
	for _, s := range list {
		if strings.EqualFold(s, v) {
			return s, true
		}
	}
	return "", false
}
