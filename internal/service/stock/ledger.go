package stock

import (
	"sort"
	"sync"

	"shopping-matrix/internal/domain"
)

// Ledger tracks remaining inventory per catalog item, independently of any cart.
type Ledger struct {
	mu      sync.RWMutex
	records map[string]domain.StockRecord
}

func New() *Ledger {
	return &Ledger{records: make(map[string]domain.StockRecord)}
}

// Seed replaces the whole record set. Negative counts are clamped to zero.
func (l *Ledger) Seed(records []domain.StockRecord) {
	next := make(map[string]domain.StockRecord, len(records))
	for _, r := range records {
		next[r.ItemID] = clamp(r)
	}
	l.mu.Lock()
	l.records = next
	l.mu.Unlock()
}

// SeedCategory replaces only the records of one storefront category, leaving
// the other storefronts untouched.
func (l *Ledger) SeedCategory(category domain.Category, records []domain.StockRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for id, r := range l.records {
		if r.Category == category {
			delete(l.records, id)
		}
	}
	for _, r := range records {
		r.Category = category
		l.records[r.ItemID] = clamp(r)
	}
}

// Decrement lowers an item's remaining count, never below zero, and returns the
// new count. Unknown items are left alone and reported with ErrUnknownItem.
func (l *Ledger) Decrement(itemID string, amount int) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.records[itemID]
	if !ok {
		return 0, domain.ErrUnknownItem
	}
	if amount > 0 {
		r.RemainingCount -= amount
		if r.RemainingCount < 0 {
			r.RemainingCount = 0
		}
		l.records[itemID] = r
	}
	return r.RemainingCount, nil
}

// Restock adds inventory back to a known item.
func (l *Ledger) Restock(itemID string, amount int) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	r, ok := l.records[itemID]
	if !ok {
		return 0, domain.ErrUnknownItem
	}
	if amount > 0 {
		r.RemainingCount += amount
		l.records[itemID] = r
	}
	return r.RemainingCount, nil
}

// Get returns the remaining count, or 0 for unknown items.
func (l *Ledger) Get(itemID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.records[itemID].RemainingCount
}

func (l *Ledger) Lookup(itemID string) (domain.StockRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	r, ok := l.records[itemID]
	return r, ok
}

// IsBrandOpen reports whether at least one of the brand's items is still in stock.
func (l *Ledger) IsBrandOpen(brand string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, r := range l.records {
		if r.Brand == brand && r.RemainingCount > 0 {
			return true
		}
	}
	return false
}

// OpenBrands maps every brand of a category to its open state.
func (l *Ledger) OpenBrands(category domain.Category) map[string]bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make(map[string]bool)
	for _, r := range l.records {
		if r.Category != category {
			continue
		}
		out[r.Brand] = out[r.Brand] || r.RemainingCount > 0
	}
	return out
}

// Records returns a snapshot sorted by item id.
func (l *Ledger) Records() []domain.StockRecord {
	l.mu.RLock()
	out := make([]domain.StockRecord, 0, len(l.records))
	for _, r := range l.records {
		out = append(out, r)
	}
	l.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ItemID < out[j].ItemID })
	return out
}

// HasCategory reports whether any record of the category has been seeded.
func (l *Ledger) HasCategory(category domain.Category) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, r := range l.records {
		if r.Category == category {
			return true
		}
	}
	return false
}

func clamp(r domain.StockRecord) domain.StockRecord {
	if r.RemainingCount < 0 {
		r.RemainingCount = 0
	}
	return r
}
