package storeapi

import (
	"context"
	"net/http"
	"net/url"

	"bakereserve-storefront/internal/domain"
	"github.com/shopspring/decimal"
)

// ProductInput is the admin payload for creating or editing a product.
type ProductInput struct {
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Category     domain.Category `json:"category"`
	SubCategory  string          `json:"subCategory,omitempty"`
	Flavor       string          `json:"flavor,omitempty"`
	Description  string          `json:"description"`
	Image        string          `json:"image,omitempty"`
	CountInStock int             `json:"countInStock"`
}

func (c *Client) ListProducts(ctx context.Context) ([]domain.Product, error) {
	var out []apiProduct
	if err := c.do(ctx, http.MethodGet, "GET /products", "/products", "", nil, &out); err != nil {
		return nil, err
	}
	products := make([]domain.Product, 0, len(out))
	for _, p := range out {
		products = append(products, toProduct(p))
	}
	return products, nil
}

func (c *Client) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	var out apiProduct
	if err := c.do(ctx, http.MethodGet, "GET /products/:id", "/products/"+url.PathEscape(id), "", nil, &out); err != nil {
		return nil, err
	}
	p := toProduct(out)
	return &p, nil
}

func (c *Client) CreateProduct(ctx context.Context, token string, in ProductInput) (*domain.Product, error) {
	var out apiProduct
	if err := c.do(ctx, http.MethodPost, "POST /products", "/products", token, in, &out); err != nil {
		return nil, err
	}
	p := toProduct(out)
	return &p, nil
}

func (c *Client) UpdateProduct(ctx context.Context, token, id string, in ProductInput) (*domain.Product, error) {
	var out apiProduct
	if err := c.do(ctx, http.MethodPut, "PUT /products/:id", "/products/"+url.PathEscape(id), token, in, &out); err != nil {
		return nil, err
	}
	p := toProduct(out)
	return &p, nil
}

// SetStock overwrites the stock count of a product.
func (c *Client) SetStock(ctx context.Context, token, id string, count int) error {
	body := map[string]int{"countInStock": count}
	return c.do(ctx, http.MethodPut, "PUT /products/:id", "/products/"+url.PathEscape(id), token, body, nil)
}

func (c *Client) DeleteProduct(ctx context.Context, token, id string) error {
	return c.do(ctx, http.MethodDelete, "DELETE /products/:id", "/products/"+url.PathEscape(id), token, nil, nil)
}
