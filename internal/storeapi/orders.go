package storeapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"bakereserve-storefront/internal/domain"
)

type CheckoutRequest struct {
	PickupDate      string               `json:"pickupDate"`
	PickupTime      string               `json:"pickupTime"`
	PaymentMethod   domain.PaymentMethod `json:"paymentMethod"`
	SelectedItemIDs []string             `json:"selectedItemIds"`
}

// createdOrders accepts a bare array, {"orders": [...]} or a single order.
type createdOrders []apiOrder

func (c *createdOrders) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil
	}
	if data[0] == '[' {
		return json.Unmarshal(data, (*[]apiOrder)(c))
	}
	var wrapped struct {
		Orders []apiOrder `json:"orders"`
		Order  *apiOrder  `json:"order"`
		ID     string     `json:"_id"`
	}
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return err
	}
	switch {
	case len(wrapped.Orders) > 0:
		*c = wrapped.Orders
	case wrapped.Order != nil:
		*c = []apiOrder{*wrapped.Order}
	case wrapped.ID != "":
		var single apiOrder
		if err := json.Unmarshal(data, &single); err != nil {
			return err
		}
		*c = []apiOrder{single}
	}
	return nil
}

// Checkout converts the selected cart lines into one or more orders.
func (c *Client) Checkout(ctx context.Context, token string, in CheckoutRequest) ([]domain.Order, error) {
	var out createdOrders
	if err := c.do(ctx, http.MethodPost, "POST /orders/checkout", "/orders/checkout", token, in, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("POST /orders/checkout: no orders created")
	}
	return toOrders(out), nil
}

func (c *Client) MyOrders(ctx context.Context, token string) ([]domain.Order, error) {
	var out []apiOrder
	if err := c.do(ctx, http.MethodGet, "GET /orders/my-orders", "/orders/my-orders", token, nil, &out); err != nil {
		return nil, err
	}
	return toOrders(out), nil
}

func (c *Client) AllOrders(ctx context.Context, token string) ([]domain.Order, error) {
	var out []apiOrder
	if err := c.do(ctx, http.MethodGet, "GET /orders", "/orders", token, nil, &out); err != nil {
		return nil, err
	}
	return toOrders(out), nil
}

func (c *Client) UpdateOrderStatus(ctx context.Context, token, orderID string, status domain.OrderStatus) error {
	body := map[string]domain.OrderStatus{"status": status}
	return c.do(ctx, http.MethodPut, "PUT /orders/:id/status", "/orders/"+url.PathEscape(orderID)+"/status", token, body, nil)
}
