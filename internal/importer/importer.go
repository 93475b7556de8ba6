package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"bakereserve-storefront/internal/domain"
	catalogsvc "bakereserve-storefront/internal/service/catalog"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// ProductWriter creates catalog products with an admin token.
type ProductWriter interface {
	Create(ctx context.Context, token string, in catalogsvc.ProductInput) (*domain.Product, error)
}

// CacheInvalidator drops the shared product list so the API serves fresh data.
type CacheInvalidator interface {
	Invalidate(ctx context.Context) error
}

// CSVImporter reads product rows and creates them through the catalog.
type CSVImporter struct {
	reader  *csv.Reader
	catalog ProductWriter
	cache   CacheInvalidator
	token   string
	logger  zerolog.Logger
}

var requiredHeaders = []string{"name", "price", "category"}

// NewCSVImporter builds an importer. cache may be nil when Redis is not reachable.
func NewCSVImporter(r io.Reader, catalog ProductWriter, cache CacheInvalidator, token string, logger zerolog.Logger) *CSVImporter {
	csvr := csv.NewReader(r)
	csvr.FieldsPerRecord = -1 // rows may have trailing commas
	csvr.TrimLeadingSpace = true
	return &CSVImporter{
		reader:  csvr,
		catalog: catalog,
		cache:   cache,
		token:   token,
		logger:  logger,
	}
}

// Run creates one product per row and stops at the first bad row. The
// product cache is dropped once afterwards if anything was created.
func (i *CSVImporter) Run(ctx context.Context) (int, error) {
	imported, err := i.run(ctx)
	if imported > 0 {
		i.invalidate(ctx)
	}
	return imported, err
}

func (i *CSVImporter) invalidate(ctx context.Context) {
	if i.cache == nil {
		return
	}
	if err := i.cache.Invalidate(ctx); err != nil {
		i.logger.Warn().Err(err).Msg("import.cache_invalidate_failed")
	}
}

func (i *CSVImporter) run(ctx context.Context) (int, error) {
	headers, err := i.reader.Read()
	if err != nil {
		return 0, fmt.Errorf("read headers: %w", err)
	}
	index := headerIndex(headers)
	for _, h := range requiredHeaders {
		if _, ok := index[h]; !ok {
			return 0, fmt.Errorf("missing column %q", h)
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
			return imported, fmt.Errorf("read line %d: %w", line, err)
		}
		if blank(record) {
			continue
		}

		in, err := parseRow(record, index)
		if err != nil {
			return imported, fmt.Errorf("line %d: %w", line, err)
		}
		product, err := i.catalog.Create(ctx, i.token, in)
		if err != nil {
			return imported, fmt.Errorf("line %d: create %q: %w", line, in.Name, err)
		}
		imported++
		i.logger.Debug().Str("product_id", product.ID).Str("name", product.Name).Msg("import.product_created")
	}
	return imported, nil
}

func headerIndex(headers []string) map[string]int {
	idx := make(map[string]int, len(headers))
	for i, h := range headers {
		idx[strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))] = i
	}
	return idx
}

func parseRow(record []string, index map[string]int) (catalogsvc.ProductInput, error) {
	in := catalogsvc.ProductInput{
		Name:        pick(record, index, "name"),
		Category:    domain.Category(strings.ToLower(pick(record, index, "category"))),
		SubCategory: pick(record, index, "subCategory"),
		Flavor:      pick(record, index, "flavor"),
		Description: pick(record, index, "description"),
		Image:       pick(record, index, "image"),
	}

	price, err := decimal.NewFromString(pick(record, index, "price"))
	if err != nil {
		return in, domain.Invalid("price", "must be a number")
	}
	in.Price = price

	if raw := pick(record, index, "countInStock"); raw != "" {
		stock, err := strconv.Atoi(raw)
		if err != nil {
			return in, domain.Invalid("countInStock", "must be a whole number")
		}
		in.CountInStock = stock
	}
	return in, nil
}

func pick(record []string, index map[string]int, key string) string {
	pos, ok := index[key]
	if !ok || pos >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[pos])
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
