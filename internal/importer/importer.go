package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"shopping-matrix/internal/domain"
)

type ProductWriter interface {
	Upsert(ctx context.Context, product domain.Product) (*domain.Product, error)
}

// CSVImporter reads storefront product sheets and inserts or updates products.
// Expected header: name,price,category,brand,image,stock_count,description,sizes,colors
// with sizes and colors separated by ';'. Column order does not matter.
type CSVImporter struct {
	reader      *csv.Reader
	productRepo ProductWriter
}

func NewCSVImporter(r io.Reader, repo ProductWriter) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:      csvr,
		productRepo: repo,
	}
}

var requiredColumns = []string{"name", "price", "category", "brand"}

// Run parses every row and upserts it. Blank rows are skipped; the first
// invalid row stops the import with its line number.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, col := range requiredColumns {
		if _, ok := index[col]; !ok {
			return 0, fmt.Errorf("missing required column %q", col)
		}
	}

	imported := 0
	line := 1
	for {
		record, err := i.reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return imported, fmt.Errorf("read row %d: %w", line, err)
		}
		if blank(record) {
			continue
		}

		p, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("row %d: %w", line, err)
		}
		if _, err := i.productRepo.Upsert(ctx, p); err != nil {
			return imported, fmt.Errorf("upsert product %q: %w", p.Name, err)
		}
		imported++
	}
	return imported, nil
}

func parseRow(record []string, index map[string]int) (domain.Product, error) {
	name := pick(record, index, "name")
	brand := pick(record, index, "brand")
	if name == "" || brand == "" {
		return domain.Product{}, errors.New("name and brand are required")
	}

	price, err := decimal.NewFromString(pick(record, index, "price"))
	if err != nil {
		return domain.Product{}, fmt.Errorf("invalid price for %q: %w", name, err)
	}
	if price.IsNegative() {
		return domain.Product{}, fmt.Errorf("negative price for %q", name)
	}

	category, err := domain.ParseCategory(pick(record, index, "category"))
	if err != nil {
		return domain.Product{}, fmt.Errorf("product %q: %w", name, err)
	}

	stock := 0
	if raw := pick(record, index, "stock_count"); raw != "" {
		stock, err = strconv.Atoi(raw)
		if err != nil {
			return domain.Product{}, fmt.Errorf("invalid stock_count for %q: %w", name, err)
		}
		if stock < 0 {
			stock = 0
		}
	}

	return domain.Product{
		Name:        name,
		Price:       price,
		Category:    category,
		Brand:       brand,
		Image:       pick(record, index, "image"),
		StockCount:  stock,
		Description: pick(record, index, "description"),
		Sizes:       splitList(pick(record, index, "sizes")),
		Colors:      splitList(pick(record, index, "colors")),
	}, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.ToLower(strings.TrimSpace(h))] = i
	}
	return idx
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(raw, ";") {
		if v := strings.TrimSpace(part); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
