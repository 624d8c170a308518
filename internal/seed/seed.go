package seed

import (
	"context"
	"fmt"
	"io"
	"log"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"shopping-matrix/internal/domain"
)

// ProductWriter is satisfied by the product repository.
type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

type productSeed struct {
	Name        string
	Brand       string
	Category    domain.Category
	Price       string
	Stock       int
	Image       string
	Description string
	Sizes       []string
	Colors      []string
}

var (
	apparelSizes = []string{"S", "M", "L", "XL"}
	shoeSizes    = []string{"7", "8", "9", "10"}
)

var mall = []productSeed{
	{Name: "Linen Blend Shirt", Brand: "Zara", Category: domain.CategoryClothing, Price: "2990", Stock: 14, Image: "/images/zara-linen-shirt.jpg", Description: "Relaxed fit shirt in a breathable linen blend", Sizes: apparelSizes, Colors: []string{"White", "Sand", "Navy"}},
	{Name: "Straight Leg Jeans", Brand: "Zara", Category: domain.CategoryClothing, Price: "3590", Stock: 9, Image: "/images/zara-jeans.jpg", Description: "Mid rise denim with a straight leg", Sizes: []string{"28", "30", "32", "34"}, Colors: []string{"Blue", "Black"}},
	{Name: "Oversized Hoodie", Brand: "H&M", Category: domain.CategoryClothing, Price: "1999", Stock: 20, Image: "/images/hm-hoodie.jpg", Description: "Soft brushed cotton hoodie", Sizes: apparelSizes, Colors: []string{"Grey", "Black", "Green"}},
	{Name: "Ribbed Tank Top", Brand: "H&M", Category: domain.CategoryClothing, Price: "599", Stock: 0, Image: "/images/hm-tank.jpg", Description: "Fitted ribbed jersey tank", Sizes: apparelSizes, Colors: []string{"White", "Black"}},
	{Name: "Ultraboost Running Shoes", Brand: "Adidas", Category: domain.CategoryClothing, Price: "16999", Stock: 6, Image: "/images/adidas-ultraboost.jpg", Description: "Responsive cushioning for daily runs", Sizes: shoeSizes, Colors: []string{"Core Black", "Cloud White"}},
	{Name: "Tiro Track Pants", Brand: "Adidas", Category: domain.CategoryClothing, Price: "3299", Stock: 11, Image: "/images/adidas-tiro.jpg", Description: "Slim training pants with zip pockets", Sizes: apparelSizes, Colors: []string{"Black", "Navy"}},

	{Name: "McAloo Tikki Burger", Brand: "McDonald's", Category: domain.CategoryFood, Price: "69", Stock: 50, Image: "/images/mcd-aloo-tikki.jpg", Description: "Spiced potato patty burger"},
	{Name: "Maharaja Mac Meal", Brand: "McDonald's", Category: domain.CategoryFood, Price: "349", Stock: 30, Image: "/images/mcd-maharaja-meal.jpg", Description: "Double patty burger with fries and a drink"},
	{Name: "Medium Fries", Brand: "McDonald's", Category: domain.CategoryFood, Price: "109", Stock: 80, Image: "/images/mcd-fries.jpg", Description: "Golden salted fries"},
	{Name: "Caffe Latte", Brand: "Starbucks", Category: domain.CategoryFood, Price: "295", Stock: 40, Image: "/images/sbux-latte.jpg", Description: "Espresso with steamed milk"},
	{Name: "Java Chip Frappuccino", Brand: "Starbucks", Category: domain.CategoryFood, Price: "385", Stock: 25, Image: "/images/sbux-java-chip.jpg", Description: "Blended coffee with chocolate chips"},
	{Name: "Paneer Tikka Sandwich", Brand: "Starbucks", Category: domain.CategoryFood, Price: "325", Stock: 15, Image: "/images/sbux-paneer-sandwich.jpg", Description: "Grilled paneer on focaccia"},

	{Name: "WH-1000XM5 Headphones", Brand: "Sony", Category: domain.CategoryOther, Price: "29990", Stock: 4, Image: "/images/sony-xm5.jpg", Description: "Noise cancelling wireless headphones", Colors: []string{"Black", "Silver"}},
	{Name: "SRS-XB13 Speaker", Brand: "Sony", Category: domain.CategoryOther, Price: "3990", Stock: 10, Image: "/images/sony-xb13.jpg", Description: "Compact waterproof bluetooth speaker", Colors: []string{"Blue", "Black"}},
	{Name: "Scented Candle Set", Brand: "Lifestyle", Category: domain.CategoryOther, Price: "799", Stock: 18, Image: "/images/lifestyle-candles.jpg", Description: "Three soy wax candles"},
	{Name: "Cotton Bath Towel", Brand: "Lifestyle", Category: domain.CategoryOther, Price: "649", Stock: 0, Image: "/images/lifestyle-towel.jpg", Description: "Quick dry cotton towel", Colors: []string{"Teal", "Beige"}},
}

// productID derives a stable id from brand and name so every session and every
// seed run agree on item ids.
func productID(brand, name string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("shopping-matrix:"+brand+"/"+name)).String()
}

// DefaultProducts returns the built-in mall catalog.
func DefaultProducts() []domain.Product {
	out := make([]domain.Product, 0, len(mall))
	for _, s := range mall {
		out = append(out, domain.Product{
			ID:          productID(s.Brand, s.Name),
			Name:        s.Name,
			Price:       decimal.RequireFromString(s.Price),
			Image:       s.Image,
			Brand:       s.Brand,
			Category:    s.Category,
			StockCount:  s.Stock,
			Description: s.Description,
			Sizes:       append([]string(nil), s.Sizes...),
			Colors:      append([]string(nil), s.Colors...),
		})
	}
	return out
}

// Apply upserts the default catalog. It is idempotent.
func Apply(ctx context.Context, repo ProductWriter, logger *log.Logger) (int, error) {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	count := 0
	for _, p := range DefaultProducts() {
		if _, err := repo.Upsert(ctx, p); err != nil {
			return count, fmt.Errorf("upsert product %s/%s: %w", p.Brand, p.Name, err)
		}
		count++
	}
	logger.Printf("seed: upserted products=%d", count)
	return count, nil
}

// Catalog serves the default products from memory. It backs the storefronts
// when no database is configured.
type Catalog struct {
	byCategory map[domain.Category][]domain.Product
}

func NewCatalog(products []domain.Product) *Catalog {
	c := &Catalog{byCategory: make(map[domain.Category][]domain.Product)}
	for _, p := range products {
		c.byCategory[p.Category] = append(c.byCategory[p.Category], p)
	}
	for cat := range c.byCategory {
		list := c.byCategory[cat]
		sort.SliceStable(list, func(i, j int) bool { return list[i].Brand < list[j].Brand })
	}
	return c
}

func (c *Catalog) FetchCatalog(_ context.Context, category domain.Category) ([]domain.Product, error) {
	src := c.byCategory[category]
	out := make([]domain.Product, len(src))
	for i, p := range src {
		p.Sizes = append([]string(nil), p.Sizes...)
		p.Colors = append([]string(nil), p.Colors...)
		out[i] = p
	}
	return out, nil
}
