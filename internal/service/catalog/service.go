package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sort"

	"shopping-matrix/internal/domain"
	"shopping-matrix/internal/session"
)

// ErrUnavailable wraps any failure of the catalog provider.
var ErrUnavailable = errors.New("catalog unavailable")

// Provider supplies the product listings of one storefront category.
type Provider interface {
	FetchCatalog(ctx context.Context, category domain.Category) ([]domain.Product, error)
}

type productLister interface {
	ListByCategory(ctx context.Context, category domain.Category) ([]domain.Product, error)
}

// RepositoryProvider adapts the product repository to Provider.
type RepositoryProvider struct {
	Repo productLister
}

func (p RepositoryProvider) FetchCatalog(ctx context.Context, category domain.Category) ([]domain.Product, error) {
	return p.Repo.ListByCategory(ctx, category)
}

// Listing is a product decorated with the session's live stock.
type Listing struct {
	domain.Product
	Remaining int  `json:"remaining"`
	Available bool `json:"available"`
}

type Brand struct {
	Name     string    `json:"name"`
	Open     bool      `json:"open"`
	Products []Listing `json:"products"`
}

type Storefront struct {
	Category domain.Category `json:"category"`
	Brands   []Brand         `json:"brands"`
}

type Service struct {
	provider Provider
	logger   *log.Logger
}

func New(provider Provider, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Service{provider: provider, logger: logger}
}

// LoadStorefront fetches the category's listings and, on the first visit of
// the session or when refresh is set, seeds the session's stock ledger for that
// category. Later visits keep the session's own decremented counts.
func (s *Service) LoadStorefront(ctx context.Context, sess *session.Session, category domain.Category, refresh bool) (Storefront, error) {
	products, err := s.provider.FetchCatalog(ctx, category)
	if err != nil {
		s.logger.Printf("catalog: fetch category=%s session=%s error=%v", category, sess.ID, err)
		return Storefront{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	sess.Lock()
	if refresh || !sess.StorefrontLoaded(category) {
		records := make([]domain.StockRecord, 0, len(products))
		for _, p := range products {
			records = append(records, domain.StockRecordFromProduct(p))
		}
		sess.Stock.SeedCategory(category, records)
		sess.MarkStorefrontLoaded(category)
		s.logger.Printf("catalog: seeded category=%s session=%s items=%d refresh=%t", category, sess.ID, len(records), refresh)
	}
	sess.Unlock()

	return buildStorefront(category, products, sess.Stock.Get, sess.Stock.OpenBrands(category)), nil
}

// Find returns one product of the category. Unknown ids are domain.ErrNotFound.
func (s *Service) Find(ctx context.Context, category domain.Category, id string) (domain.Product, error) {
	products, err := s.provider.FetchCatalog(ctx, category)
	if err != nil {
		s.logger.Printf("catalog: find category=%s id=%s error=%v", category, id, err)
		return domain.Product{}, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return domain.Product{}, domain.ErrNotFound
}

func buildStorefront(category domain.Category, products []domain.Product, remaining func(string) int, open map[string]bool) Storefront {
	byBrand := make(map[string][]Listing)
	var order []string
	for _, p := range products {
		if _, seen := byBrand[p.Brand]; !seen {
			order = append(order, p.Brand)
		}
		left := remaining(p.ID)
		byBrand[p.Brand] = append(byBrand[p.Brand], Listing{Product: p, Remaining: left, Available: left > 0})
	}
	sort.Strings(order)

	sf := Storefront{Category: category, Brands: make([]Brand, 0, len(order))}
	for _, name := range order {
		sf.Brands = append(sf.Brands, Brand{Name: name, Open: open[name], Products: byBrand[name]})
	}
	return sf
}
