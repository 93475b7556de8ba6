package report

import (
	"context"
	"time"

	"bakereserve-storefront/internal/domain"
	"golang.org/x/sync/errgroup"
)

type orderSource interface {
	All(ctx context.Context, sess *domain.Session) ([]domain.Order, error)
}

type stockSource interface {
	LowStock(ctx context.Context, threshold int) ([]domain.Product, error)
}

type Service struct {
	orders orderSource
	stock  stockSource
	now    func() time.Time
}

func New(orders orderSource, stock stockSource) *Service {
	return &Service{orders: orders, stock: stock, now: time.Now}
}

func (s *Service) Stats(ctx context.Context, sess *domain.Session, q Query) (*Stats, error) {
	orders, err := s.orders.All(ctx, sess)
	if err != nil {
		return nil, err
	}
	st := Compute(orders, q, s.now())
	return &st, nil
}

type Dashboard struct {
	Stats    Stats            `json:"stats"`
	LowStock []domain.Product `json:"lowStock"`
}

// Dashboard loads order stats and low-stock products concurrently.
func (s *Service) Dashboard(ctx context.Context, sess *domain.Session, q Query) (*Dashboard, error) {
	var (
		orders []domain.Order
		low    []domain.Product
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		orders, err = s.orders.All(gctx, sess)
		return err
	})
	g.Go(func() error {
		var err error
		low, err = s.stock.LowStock(gctx, domain.LowStockThreshold)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if low == nil {
		low = []domain.Product{}
	}
	return &Dashboard{Stats: Compute(orders, q, s.now()), LowStock: low}, nil
}
