package catalog

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"bakereserve-storefront/internal/domain"
	"bakereserve-storefront/internal/storeapi"
	"bakereserve-storefront/internal/validation"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type productAPI interface {
	ListProducts(ctx context.Context) ([]domain.Product, error)
	GetProduct(ctx context.Context, id string) (*domain.Product, error)
	CreateProduct(ctx context.Context, token string, in storeapi.ProductInput) (*domain.Product, error)
	UpdateProduct(ctx context.Context, token, id string, in storeapi.ProductInput) (*domain.Product, error)
	SetStock(ctx context.Context, token, id string, count int) error
	DeleteProduct(ctx context.Context, token, id string) error
}

type productCache interface {
	Products(ctx context.Context) ([]domain.Product, bool, error)
	StoreProducts(ctx context.Context, products []domain.Product) error
	Invalidate(ctx context.Context) error
}

type cacheCounter interface {
	IncCache(result string)
}

type Service struct {
	api     productAPI
	cache   productCache
	metrics cacheCounter
	logger  zerolog.Logger
}

func New(api productAPI, cache productCache, metrics cacheCounter, logger zerolog.Logger) *Service {
	return &Service{api: api, cache: cache, metrics: metrics, logger: logger}
}

// ProductInput is the admin form for creating or editing a product.
type ProductInput struct {
	Name         string          `json:"name" validate:"required"`
	Price        decimal.Decimal `json:"price"`
	Category     domain.Category `json:"category" validate:"required,oneof=bakery cake"`
	SubCategory  string          `json:"subCategory"`
	Flavor       string          `json:"flavor"`
	Description  string          `json:"description"`
	Image        string          `json:"image"`
	CountInStock int             `json:"countInStock" validate:"gte=0"`
}

func (in ProductInput) normalized() ProductInput {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = domain.Category(strings.ToLower(strings.TrimSpace(string(in.Category))))
	in.SubCategory = strings.TrimSpace(in.SubCategory)
	in.Flavor = strings.TrimSpace(in.Flavor)
	in.Description = strings.TrimSpace(in.Description)
	in.Image = strings.TrimSpace(in.Image)
	return in
}

// Validate checks the admin form before any upstream call.
func (in ProductInput) Validate() error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if !in.Price.IsPositive() {
		return domain.Invalid("price", "must be greater than 0")
	}
	return nil
}

func (in ProductInput) toAPI() storeapi.ProductInput {
	return storeapi.ProductInput{
		Name:         in.Name,
		Price:        in.Price,
		Category:     in.Category,
		SubCategory:  in.SubCategory,
		Flavor:       in.Flavor,
		Description:  in.Description,
		Image:        in.Image,
		CountInStock: in.CountInStock,
	}
}

// List returns the catalog, optionally narrowed to one category.
func (s *Service) List(ctx context.Context, category domain.Category) ([]domain.Product, error) {
	if category != "" && !category.IsValid() {
		return nil, domain.Invalid("category", "must be bakery or cake")
	}
	products, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	return domain.FilterByCategory(products, category), nil
}

func (s *Service) all(ctx context.Context) ([]domain.Product, error) {
	cached, ok, err := s.cache.Products(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("catalog.cache_read_failed")
		s.metrics.IncCache("error")
	}
	if ok {
		s.metrics.IncCache("hit")
		return cached, nil
	}
	if err == nil {
		s.metrics.IncCache("miss")
	}

	products, err := s.api.ListProducts(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.cache.StoreProducts(ctx, products); err != nil {
		s.logger.Warn().Err(err).Msg("catalog.cache_write_failed")
	}
	return products, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.Invalid("id", "is required")
	}
	product, err := s.api.GetProduct(ctx, id)
	if err != nil {
		if storeapi.StatusOf(err) == 404 {
			return nil, fmt.Errorf("product %s: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return product, nil
}

func (s *Service) Create(ctx context.Context, token string, in ProductInput) (*domain.Product, error) {
	in = in.normalized()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	product, err := s.api.CreateProduct(ctx, token, in.toAPI())
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.logger.Info().Str("product_id", product.ID).Msg("catalog.product_created")
	return product, nil
}

func (s *Service) Update(ctx context.Context, token, id string, in ProductInput) (*domain.Product, error) {
	in = in.normalized()
	if err := in.Validate(); err != nil {
		return nil, err
	}
	product, err := s.api.UpdateProduct(ctx, token, id, in.toAPI())
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return product, nil
}

func (s *Service) Delete(ctx context.Context, token, id string) error {
	if err := s.api.DeleteProduct(ctx, token, id); err != nil {
		return err
	}
	s.invalidate(ctx)
	s.logger.Info().Str("product_id", id).Msg("catalog.product_deleted")
	return nil
}

// AdjustStock applies delta to the current stock, clamping at zero.
func (s *Service) AdjustStock(ctx context.Context, token, id string, delta int) (*domain.Product, error) {
	if delta == 0 {
		return nil, domain.Invalid("delta", "must not be zero")
	}
	product, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	count := max(product.CountInStock+delta, 0)
	if err := s.api.SetStock(ctx, token, id, count); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	product.CountInStock = count
	return product, nil
}

// LowStock lists products at or below threshold, lowest stock first.
func (s *Service) LowStock(ctx context.Context, threshold int) ([]domain.Product, error) {
	products, err := s.all(ctx)
	if err != nil {
		return nil, err
	}
	out := []domain.Product{}
	for _, p := range products {
		if p.CountInStock <= threshold {
			out = append(out, p)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CountInStock != out[j].CountInStock {
			return out[i].CountInStock < out[j].CountInStock
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn().Err(err).Msg("catalog.cache_invalidate_failed")
	}
}
