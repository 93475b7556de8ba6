package storeapi

import (
	"context"
	"net/http"
	"net/url"

	"bakereserve-storefront/internal/domain"
)

type AddToCartRequest struct {
	ProductID     string                `json:"productId"`
	Quantity      int                   `json:"quantity"`
	Customization *domain.Customization `json:"customization,omitempty"`
}

func (c *Client) GetCart(ctx context.Context, token string) (domain.Cart, error) {
	var out apiCart
	if err := c.do(ctx, http.MethodGet, "GET /cart", "/cart", token, nil, &out); err != nil {
		return domain.Cart{}, err
	}
	return toCart(out), nil
}

func (c *Client) AddToCart(ctx context.Context, token string, in AddToCartRequest) error {
	return c.do(ctx, http.MethodPost, "POST /cart", "/cart", token, in, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, token, lineItemID string, quantity int) error {
	body := map[string]int{"quantity": quantity}
	return c.do(ctx, http.MethodPut, "PUT /cart/:id", "/cart/"+url.PathEscape(lineItemID), token, body, nil)
}

func (c *Client) RemoveCartItem(ctx context.Context, token, lineItemID string) error {
	return c.do(ctx, http.MethodDelete, "DELETE /cart/:id", "/cart/"+url.PathEscape(lineItemID), token, nil, nil)
}
