package order

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"bakereserve-storefront/internal/domain"
	"github.com/rs/zerolog"
)

// Tab values shared by the customer and admin listings.
const (
	TabAll      = "all"
	TabActive   = "active"
	TabPast     = "past"
	TabRejected = "rejected"
)

// AdminTabs are the status tabs of the admin order board, in display order.
var AdminTabs = []string{
	string(domain.OrderStatusPending),
	string(domain.OrderStatusApproved),
	string(domain.OrderStatusInProcess),
	string(domain.OrderStatusReadyForPickup),
	string(domain.OrderStatusCompleted),
	TabRejected,
	TabAll,
}

type orderAPI interface {
	MyOrders(ctx context.Context, token string) ([]domain.Order, error)
	AllOrders(ctx context.Context, token string) ([]domain.Order, error)
	UpdateOrderStatus(ctx context.Context, token, orderID string, status domain.OrderStatus) error
}

type transitionCounter interface {
	IncTransition(status string)
}

type Service struct {
	api     orderAPI
	metrics transitionCounter
	logger  zerolog.Logger
}

func New(api orderAPI, metrics transitionCounter, logger zerolog.Logger) *Service {
	return &Service{api: api, metrics: metrics, logger: logger}
}

// ListMine returns the caller's orders for one tab, newest first.
func (s *Service) ListMine(ctx context.Context, sess *domain.Session, tab string) ([]domain.Order, error) {
	if sess == nil {
		return nil, domain.ErrUnauthenticated
	}
	tab = strings.ToLower(strings.TrimSpace(tab))
	if tab == "" {
		tab = TabActive
	}
	if tab != TabActive && tab != TabPast && tab != TabAll {
		return nil, domain.Invalid("tab", "must be active, past or all")
	}
	orders, err := s.api.MyOrders(ctx, sess.Token)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		if tab == TabAll || string(o.Class()) == tab {
			out = append(out, o)
		}
	}
	newestFirst(out)
	return out, nil
}

type Filter struct {
	StatusTab string
	Type      string
}

// Board is the admin order listing with per-tab counts.
type Board struct {
	Orders []domain.Order `json:"orders"`
	Counts map[string]int `json:"counts"`
	Tab    string         `json:"tab"`
	Type   string         `json:"type"`
}

func (f Filter) normalized() (Filter, error) {
	f.StatusTab = strings.ToLower(strings.TrimSpace(f.StatusTab))
	if f.StatusTab == "" {
		f.StatusTab = string(domain.OrderStatusPending)
	}
	valid := false
	for _, tab := range AdminTabs {
		if tab == f.StatusTab {
			valid = true
			break
		}
	}
	if !valid {
		return f, domain.Invalid("status", "must be one of "+strings.Join(AdminTabs, ", "))
	}
	f.Type = strings.ToLower(strings.TrimSpace(f.Type))
	if f.Type == "" {
		f.Type = TabAll
	}
	if f.Type != TabAll && f.Type != string(domain.OrderTypeCake) && f.Type != string(domain.OrderTypeRegular) {
		return f, domain.Invalid("type", "must be all, cake or regular")
	}
	return f, nil
}

// MatchesTab reports whether an order is listed under an admin status tab.
func MatchesTab(o domain.Order, tab string) bool {
	switch tab {
	case TabAll:
		return true
	case TabRejected:
		return o.Status == domain.OrderStatusRejected || o.Status == domain.OrderStatusCancelled
	default:
		return string(o.Status) == tab
	}
}

// ListAll loads every order and applies the admin board filter.
func (s *Service) ListAll(ctx context.Context, sess *domain.Session, filter Filter) (*Board, error) {
	filter, err := filter.normalized()
	if err != nil {
		return nil, err
	}
	orders, err := s.All(ctx, sess)
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int, len(AdminTabs))
	for _, tab := range AdminTabs {
		counts[tab] = 0
	}
	out := make([]domain.Order, 0, len(orders))
	for _, o := range orders {
		for _, tab := range AdminTabs {
			if MatchesTab(o, tab) {
				counts[tab]++
			}
		}
		if !MatchesTab(o, filter.StatusTab) {
			continue
		}
		if filter.Type != TabAll && string(o.Type()) != filter.Type {
			continue
		}
		out = append(out, o)
	}
	newestFirst(out)
	return &Board{Orders: out, Counts: counts, Tab: filter.StatusTab, Type: filter.Type}, nil
}

// All returns every order visible to an admin session.
func (s *Service) All(ctx context.Context, sess *domain.Session) ([]domain.Order, error) {
	if sess == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !sess.IsAdmin() {
		return nil, domain.ErrForbidden
	}
	return s.api.AllOrders(ctx, sess.Token)
}

// Transition moves an order one legal step forward.
func (s *Service) Transition(ctx context.Context, sess *domain.Session, orderID string, target domain.OrderStatus) (*domain.Order, error) {
	if !target.IsValid() {
		return nil, domain.Invalid("status", fmt.Sprintf("unknown status %q", target))
	}
	orders, err := s.All(ctx, sess)
	if err != nil {
		return nil, err
	}
	var current *domain.Order
	for i := range orders {
		if orders[i].ID == orderID {
			current = &orders[i]
			break
		}
	}
	if current == nil {
		return nil, fmt.Errorf("order %s: %w", orderID, domain.ErrNotFound)
	}
	if !domain.CanTransition(current.Status, target) {
		return nil, fmt.Errorf("%w: %s to %s", domain.ErrInvalidTransition, current.Status, target)
	}
	if err := s.api.UpdateOrderStatus(ctx, sess.Token, orderID, target); err != nil {
		return nil, err
	}
	s.metrics.IncTransition(string(target))
	s.logger.Info().
		Str("order_id", orderID).
		Str("from", string(current.Status)).
		Str("to", string(target)).
		Msg("order.transition")

	updated := *current
	updated.Status = target
	return &updated, nil
}

// Actions lists the statuses an admin can move the order to next.
func Actions(o domain.Order) []domain.OrderStatus {
	return o.Status.Next()
}

func newestFirst(orders []domain.Order) {
	sort.SliceStable(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
