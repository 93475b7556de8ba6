package cart

import (
	"context"
	"fmt"
	"strings"

	"bakereserve-storefront/internal/domain"
	"bakereserve-storefront/internal/storeapi"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// BrowsePath is where an empty cart sends the customer.
const BrowsePath = "/home"

type cartAPI interface {
	GetCart(ctx context.Context, token string) (domain.Cart, error)
	AddToCart(ctx context.Context, token string, in storeapi.AddToCartRequest) error
	UpdateCartItem(ctx context.Context, token, lineItemID string, quantity int) error
	RemoveCartItem(ctx context.Context, token, lineItemID string) error
}

type productSource interface {
	Get(ctx context.Context, id string) (*domain.Product, error)
}

type selectionRepo interface {
	List(ctx context.Context, sessionID string) ([]string, error)
	Add(ctx context.Context, sessionID string, lineItemIDs ...string) error
	Remove(ctx context.Context, sessionID string, lineItemIDs ...string) error
	Clear(ctx context.Context, sessionID string) error
}

type Service struct {
	api       cartAPI
	products  productSource
	selection selectionRepo
	logger    zerolog.Logger
}

func New(api cartAPI, products productSource, selection selectionRepo, logger zerolog.Logger) *Service {
	return &Service{api: api, products: products, selection: selection, logger: logger}
}

// View is the cart as the customer sees it, with the checkout selection applied.
type View struct {
	Items         []domain.CartLineItem `json:"items"`
	Selected      []string              `json:"selected"`
	SelectedCount int                   `json:"selectedCount"`
	SelectedTotal decimal.Decimal       `json:"selectedTotal"`
	Empty         bool                  `json:"empty"`
	Browse        string                `json:"browse,omitempty"`
}

type AddInput struct {
	ProductID     string                `json:"productId"`
	Quantity      int                   `json:"quantity"`
	Customization *domain.Customization `json:"customization,omitempty"`
}

// View loads the cart and prunes selected ids that are no longer in it.
func (s *Service) View(ctx context.Context, sess *domain.Session) (*View, error) {
	if sess == nil {
		return nil, domain.ErrUnauthenticated
	}
	cart, sel, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	return buildView(cart, sel), nil
}

// Selected returns the reconciled cart and selection for checkout.
func (s *Service) Selected(ctx context.Context, sess *domain.Session) (domain.Cart, domain.Selection, error) {
	if sess == nil {
		return domain.Cart{}, nil, domain.ErrUnauthenticated
	}
	return s.load(ctx, sess)
}

func (s *Service) load(ctx context.Context, sess *domain.Session) (domain.Cart, domain.Selection, error) {
	cart, err := s.api.GetCart(ctx, sess.Token)
	if err != nil {
		return domain.Cart{}, nil, err
	}
	ids, err := s.selection.List(ctx, sess.ID)
	if err != nil {
		return domain.Cart{}, nil, fmt.Errorf("load selection: %w", err)
	}
	kept, dropped := domain.NewSelection(ids...).Reconcile(cart)
	if len(dropped) > 0 {
		if err := s.selection.Remove(ctx, sess.ID, dropped...); err != nil {
			return domain.Cart{}, nil, fmt.Errorf("prune selection: %w", err)
		}
		s.logger.Debug().Str("session_id", sess.ID).Int("dropped", len(dropped)).Msg("cart.selection_pruned")
	}
	return cart, kept, nil
}

func buildView(cart domain.Cart, sel domain.Selection) *View {
	items := cart.Items
	if items == nil {
		items = []domain.CartLineItem{}
	}
	ordered := sel.Ordered(cart)
	v := &View{
		Items:         items,
		Selected:      ordered,
		SelectedCount: len(ordered),
		SelectedTotal: domain.ComputeTotal(items, sel),
		Empty:         len(items) == 0,
	}
	if v.Empty {
		v.Browse = BrowsePath
	}
	return v
}

func (s *Service) AddItem(ctx context.Context, sess *domain.Session, in AddInput) (*View, error) {
	if sess == nil {
		return nil, domain.ErrUnauthenticated
	}
	in.ProductID = strings.TrimSpace(in.ProductID)
	if in.ProductID == "" {
		return nil, domain.Invalid("productId", "is required")
	}
	if in.Quantity < 1 {
		return nil, domain.Invalid("quantity", "must be at least 1")
	}

	var custom *domain.Customization
	if in.Customization != nil && !in.Customization.IsEmpty() {
		normalized := in.Customization.Normalized()
		custom = &normalized
	}

	if custom == nil || !custom.IsCustomBuild {
		product, err := s.products.Get(ctx, in.ProductID)
		if err != nil {
			return nil, err
		}
		cart, err := s.api.GetCart(ctx, sess.Token)
		if err != nil {
			return nil, err
		}
		if !product.InStock(cart.QuantityOfStockItem(product.ID) + in.Quantity) {
			return nil, stockError(product)
		}
	}

	if err := s.api.AddToCart(ctx, sess.Token, storeapi.AddToCartRequest{
		ProductID:     in.ProductID,
		Quantity:      in.Quantity,
		Customization: custom,
	}); err != nil {
		return nil, err
	}
	return s.View(ctx, sess)
}

// UpdateQuantity sets a line's quantity. Values below 1 leave the cart unchanged.
func (s *Service) UpdateQuantity(ctx context.Context, sess *domain.Session, lineItemID string, quantity int) (*View, error) {
	if sess == nil {
		return nil, domain.ErrUnauthenticated
	}
	if quantity < 1 {
		return s.View(ctx, sess)
	}
	cart, err := s.api.GetCart(ctx, sess.Token)
	if err != nil {
		return nil, err
	}
	line, ok := cart.Find(lineItemID)
	if !ok {
		return nil, fmt.Errorf("cart item %s: %w", lineItemID, domain.ErrNotFound)
	}
	if quantity == line.Quantity {
		return s.View(ctx, sess)
	}
	if !line.IsCustom() {
		product, err := s.products.Get(ctx, line.Product.ID)
		if err != nil {
			return nil, err
		}
		others := cart.QuantityOfStockItem(product.ID) - line.Quantity
		if !product.InStock(others + quantity) {
			return nil, stockError(product)
		}
	}
	if err := s.api.UpdateCartItem(ctx, sess.Token, lineItemID, quantity); err != nil {
		return nil, err
	}
	return s.View(ctx, sess)
}

// RemoveItem deletes a line once the customer has confirmed.
func (s *Service) RemoveItem(ctx context.Context, sess *domain.Session, lineItemID string, confirmed bool) (*View, error) {
	if sess == nil {
		return nil, domain.ErrUnauthenticated
	}
	if !confirmed {
		return nil, domain.ErrConfirmationRequired
	}
	if err := s.api.RemoveCartItem(ctx, sess.Token, lineItemID); err != nil {
		return nil, err
	}
	if err := s.selection.Remove(ctx, sess.ID, lineItemID); err != nil {
		return nil, fmt.Errorf("evict selection: %w", err)
	}
	return s.View(ctx, sess)
}

func (s *Service) ToggleSelection(ctx context.Context, sess *domain.Session, lineItemID string) (*View, error) {
	if sess == nil {
		return nil, domain.ErrUnauthenticated
	}
	cart, sel, err := s.load(ctx, sess)
	if err != nil {
		return nil, err
	}
	if _, ok := cart.Find(lineItemID); !ok {
		return nil, fmt.Errorf("cart item %s: %w", lineItemID, domain.ErrNotFound)
	}
	if sel.Has(lineItemID) {
		err = s.selection.Remove(ctx, sess.ID, lineItemID)
		delete(sel, lineItemID)
	} else {
		err = s.selection.Add(ctx, sess.ID, lineItemID)
		sel[lineItemID] = struct{}{}
	}
	if err != nil {
		return nil, fmt.Errorf("toggle selection: %w", err)
	}
	return buildView(cart, sel), nil
}

func (s *Service) SelectAll(ctx context.Context, sess *domain.Session, selected bool) (*View, error) {
	if sess == nil {
		return nil, domain.ErrUnauthenticated
	}
	cart, err := s.api.GetCart(ctx, sess.Token)
	if err != nil {
		return nil, err
	}
	if err := s.selection.Clear(ctx, sess.ID); err != nil {
		return nil, fmt.Errorf("clear selection: %w", err)
	}
	sel := domain.NewSelection()
	if selected {
		ids := cart.IDs()
		if err := s.selection.Add(ctx, sess.ID, ids...); err != nil {
			return nil, fmt.Errorf("select all: %w", err)
		}
		sel = domain.NewSelection(ids...)
	}
	return buildView(cart, sel), nil
}

// Deselect drops ids from the selection after they were checked out.
func (s *Service) Deselect(ctx context.Context, sess *domain.Session, lineItemIDs ...string) error {
	if sess == nil {
		return domain.ErrUnauthenticated
	}
	return s.selection.Remove(ctx, sess.ID, lineItemIDs...)
}

func stockError(p *domain.Product) error {
	return fmt.Errorf("%w: only %d of %s available", domain.ErrOutOfStock, p.CountInStock, p.Name)
}
