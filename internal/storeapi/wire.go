package storeapi

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"bakereserve-storefront/internal/domain"
	"github.com/shopspring/decimal"
)

type apiProduct struct {
	ID           string          `json:"_id"`
	Name         string          `json:"name"`
	Price        decimal.Decimal `json:"price"`
	Category     string          `json:"category"`
	SubCategory  string          `json:"subCategory,omitempty"`
	Flavor       string          `json:"flavor,omitempty"`
	Description  string          `json:"description,omitempty"`
	Image        string          `json:"image,omitempty"`
	CountInStock int             `json:"countInStock"`
	CreatedAt    time.Time       `json:"createdAt,omitzero"`
}

// productRef accepts either a populated product or a bare id.
type productRef struct {
	apiProduct
}

func (r *productRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	return json.Unmarshal(data, &r.apiProduct)
}

// userRef accepts either a populated user or a bare id.
type userRef struct {
	ID        string `json:"_id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

func (r *userRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil
	}
	if data[0] == '"' {
		return json.Unmarshal(data, &r.ID)
	}
	type plain userRef
	return json.Unmarshal(data, (*plain)(r))
}

type apiCartItem struct {
	ID            string                `json:"_id"`
	Product       productRef            `json:"product"`
	Quantity      int                   `json:"quantity"`
	Price         decimal.Decimal       `json:"price"`
	Customization *domain.Customization `json:"customization,omitempty"`
}

type apiCart struct {
	Items []apiCartItem `json:"items"`
}

type apiOrderItem struct {
	Name          string                `json:"name"`
	Quantity      int                   `json:"quantity"`
	Price         decimal.Decimal       `json:"price"`
	Image         string                `json:"image,omitempty"`
	Product       productRef            `json:"product"`
	Customization *domain.Customization `json:"customization,omitempty"`
}

type apiOrder struct {
	ID            string          `json:"_id"`
	User          userRef         `json:"user"`
	OrderItems    []apiOrderItem  `json:"orderItems"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	PickupDate    string          `json:"pickupDate"`
	PickupTime    string          `json:"pickupTime"`
	PaymentMethod string          `json:"paymentMethod"`
	PaymentStatus string          `json:"paymentStatus,omitempty"`
	OrderStatus   string          `json:"orderStatus"`
	CreatedAt     time.Time       `json:"createdAt"`
}

type apiAuth struct {
	ID            string `json:"_id"`
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	ContactNumber string `json:"contactNumber"`
	Role          string `json:"role"`
	Token         string `json:"token"`
}

func toProduct(p apiProduct) domain.Product {
	return domain.Product{
		ID:           p.ID,
		Name:         p.Name,
		Price:        p.Price,
		Category:     domain.Category(strings.ToLower(strings.TrimSpace(p.Category))),
		SubCategory:  p.SubCategory,
		Flavor:       p.Flavor,
		Description:  p.Description,
		Image:        p.Image,
		CountInStock: p.CountInStock,
		CreatedAt:    p.CreatedAt,
	}
}

func toCart(c apiCart) domain.Cart {
	items := make([]domain.CartLineItem, 0, len(c.Items))
	for _, item := range c.Items {
		price := item.Price
		if price.IsZero() {
			price = item.Product.Price
		}
		items = append(items, domain.CartLineItem{
			ID:            item.ID,
			Product:       toProduct(item.Product.apiProduct),
			Quantity:      item.Quantity,
			Price:         price,
			Customization: nonEmpty(item.Customization),
		})
	}
	return domain.Cart{Items: items}
}

func toOrder(o apiOrder) domain.Order {
	items := make([]domain.OrderItem, 0, len(o.OrderItems))
	for _, item := range o.OrderItems {
		name := item.Name
		if name == "" {
			name = item.Product.Name
		}
		items = append(items, domain.OrderItem{
			ProductID:     item.Product.ID,
			Name:          name,
			Price:         item.Price,
			Quantity:      item.Quantity,
			Category:      domain.Category(strings.ToLower(item.Product.Category)),
			SubCategory:   item.Product.SubCategory,
			Image:         item.Image,
			Customization: nonEmpty(item.Customization),
		})
	}
	customer := strings.TrimSpace(o.User.FirstName + " " + o.User.LastName)
	return domain.Order{
		ID:            o.ID,
		UserID:        o.User.ID,
		CustomerName:  customer,
		Items:         items,
		TotalPrice:    o.TotalPrice,
		PickupDate:    datePart(o.PickupDate),
		PickupTime:    o.PickupTime,
		PaymentMethod: domain.PaymentMethod(o.PaymentMethod),
		PaymentStatus: o.PaymentStatus,
		Status:        domain.OrderStatus(o.OrderStatus),
		CreatedAt:     o.CreatedAt,
	}
}

func toOrders(in []apiOrder) []domain.Order {
	out := make([]domain.Order, 0, len(in))
	for _, o := range in {
		out = append(out, toOrder(o))
	}
	return out
}

func nonEmpty(c *domain.Customization) *domain.Customization {
	if c == nil || c.IsEmpty() {
		return nil
	}
	return c
}

// datePart trims an ISO timestamp down to YYYY-MM-DD.
func datePart(v string) string {
	if len(v) >= 10 && v[4] == '-' && v[7] == '-' {
		return v[:10]
	}
	return v
}
