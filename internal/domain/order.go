package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus tracks the lifecycle of a pre-order.
type OrderStatus string

const (
	OrderStatusPending        OrderStatus = "pending"
	OrderStatusApproved       OrderStatus = "approved"
	OrderStatusInProcess      OrderStatus = "in_process"
	OrderStatusReadyForPickup OrderStatus = "ready_for_pickup"
	OrderStatusCompleted      OrderStatus = "completed"
	OrderStatusRejected       OrderStatus = "rejected"
	OrderStatusCancelled      OrderStatus = "cancelled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusApproved,
	OrderStatusInProcess,
	OrderStatusReadyForPickup,
	OrderStatusCompleted,
	OrderStatusRejected,
	OrderStatusCancelled,
}

// successors holds the admin-driven transitions. Cancellation is applied by
// the upstream system and never offered here.
var successors = map[OrderStatus][]OrderStatus{
	OrderStatusPending:        {OrderStatusApproved, OrderStatusRejected},
	OrderStatusApproved:       {OrderStatusInProcess},
	OrderStatusInProcess:      {OrderStatusReadyForPickup},
	OrderStatusReadyForPickup: {OrderStatusCompleted},
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible.
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusRejected || s == OrderStatusCancelled
}

// IsPast reports whether the order belongs in history rather than the active list.
func (s OrderStatus) IsPast() bool {
	return s.IsTerminal()
}

// Next lists the statuses an admin may move an order to from s.
func (s OrderStatus) Next() []OrderStatus {
	next := successors[s]
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether to is a direct successor of from.
func CanTransition(from, to OrderStatus) bool {
	for _, candidate := range successors[from] {
		if candidate == to {
			return true
		}
	}
	return false
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}

// OrderClass splits orders into the customer-facing tabs.
type OrderClass string

const (
	OrderClassActive OrderClass = "active"
	OrderClassPast   OrderClass = "past"
)

// Classify maps a status to its tab.
func Classify(status OrderStatus) OrderClass {
	if status.IsPast() {
		return OrderClassPast
	}
	return OrderClassActive
}

// OrderType is derived from the items of an order.
type OrderType string

const (
	OrderTypeCake    OrderType = "cake"
	OrderTypeRegular OrderType = "regular"
)

type PaymentMethod string

const (
	PaymentMethodCOD     PaymentMethod = "cod"
	PaymentMethodEWallet PaymentMethod = "ewallet"
)

func (m PaymentMethod) IsValid() bool {
	return m == PaymentMethodCOD || m == PaymentMethodEWallet
}

type EWalletType string

const (
	EWalletGCash   EWalletType = "gcash"
	EWalletPayMaya EWalletType = "paymaya"
)

func (t EWalletType) IsValid() bool {
	return t == EWalletGCash || t == EWalletPayMaya
}

// PickupSlots are the collection windows a customer can choose from.
var PickupSlots = []string{
	"08:00-10:00",
	"10:00-12:00",
	"12:00-14:00",
	"14:00-16:00",
	"16:00-18:00",
}

// IsPickupSlot reports whether value is one of PickupSlots.
func IsPickupSlot(value string) bool {
	for _, slot := range PickupSlots {
		if slot == value {
			return true
		}
	}
	return false
}

// OrderItem is a snapshot of a cart line taken at order time.
type OrderItem struct {
	ProductID     string          `json:"productId,omitempty"`
	Name          string          `json:"name"`
	Price         decimal.Decimal `json:"price"`
	Quantity      int             `json:"quantity"`
	Category      Category        `json:"category,omitempty"`
	SubCategory   string          `json:"subCategory,omitempty"`
	Image         string          `json:"image,omitempty"`
	Customization *Customization  `json:"customization,omitempty"`
}

// IsCake reports whether the item counts toward cake statistics.
func (i OrderItem) IsCake() bool {
	return i.Category == CategoryCake
}

type Order struct {
	ID            string          `json:"id"`
	UserID        string          `json:"userId,omitempty"`
	CustomerName  string          `json:"customerName,omitempty"`
	Items         []OrderItem     `json:"items"`
	TotalPrice    decimal.Decimal `json:"totalPrice"`
	PickupDate    string          `json:"pickupDate"`
	PickupTime    string          `json:"pickupTime"`
	PaymentMethod PaymentMethod   `json:"paymentMethod"`
	PaymentStatus string          `json:"paymentStatus,omitempty"`
	Status        OrderStatus     `json:"orderStatus"`
	CreatedAt     time.Time       `json:"createdAt"`
}

// Type is cake when any item carries a customization payload.
func (o Order) Type() OrderType {
	for _, item := range o.Items {
		if item.Customization != nil && !item.Customization.IsEmpty() {
			return OrderTypeCake
		}
	}
	return OrderTypeRegular
}

// Class maps the order status to its customer tab.
func (o Order) Class() OrderClass {
	return Classify(o.Status)
}
