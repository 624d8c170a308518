package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Category groups storefronts in the mall.
type Category string

const (
	CategoryClothing Category = "clothing"
	CategoryFood     Category = "food"
	CategoryOther    Category = "other"
)

// Categories lists every storefront category in display order.
var Categories = []Category{CategoryClothing, CategoryFood, CategoryOther}

// ParseCategory normalises user input into a Category.
func ParseCategory(raw string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(raw)))
	switch c {
	case CategoryClothing, CategoryFood, CategoryOther:
		return c, nil
	}
	return "", ErrInvalidCategory
}

// AcquisitionMode says whether a line is bought outright or reserved for a fitting-room trial.
type AcquisitionMode string

const (
	AcquisitionPurchase AcquisitionMode = "purchase"
	AcquisitionTrial    AcquisitionMode = "trial"
)

// ServiceMode applies to food lines only.
type ServiceMode string

const (
	ServiceDineIn   ServiceMode = "dine-in"
	ServiceTakeaway ServiceMode = "takeaway"
)

// ParseServiceMode accepts an empty value as "no preference".
func ParseServiceMode(raw string) (ServiceMode, error) {
	m := ServiceMode(strings.ToLower(strings.TrimSpace(raw)))
	switch m {
	case "", ServiceDineIn, ServiceTakeaway:
		return m, nil
	}
	return "", ErrInvalidServiceMode
}

type CartLine struct {
	ID              string          `json:"lineId"`
	ProductID       string          `json:"productId"`
	Name            string          `json:"name"`
	UnitPrice       decimal.Decimal `json:"unitPrice"`
	Quantity        int             `json:"quantity"`
	Image           string          `json:"image,omitempty"`
	Brand           string          `json:"brand"`
	Category        Category        `json:"category"`
	AcquisitionMode AcquisitionMode `json:"type"`
	Size            string          `json:"size,omitempty"`
	Color           string          `json:"color,omitempty"`
	ServiceMode     ServiceMode     `json:"serviceMode,omitempty"`
}

// SameOptions reports whether two lines describe the same product configuration.
// Matching is exact; "M" and "m" are different sizes.
func (l CartLine) SameOptions(other CartLine) bool {
	return l.ProductID == other.ProductID &&
		l.Size == other.Size &&
		l.Color == other.Color &&
		l.AcquisitionMode == other.AcquisitionMode
}

// LineTotal is unit price times quantity.
func (l CartLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}
