package payment

import (
	"context"

	"bakereserve-storefront/internal/domain"
)

// Repository records e-wallet protocol runs.
type Repository interface {
	Create(ctx context.Context, a domain.PaymentAttempt) (*domain.PaymentAttempt, error)
	Update(ctx context.Context, a domain.PaymentAttempt) error
	MarkSucceededByIntent(ctx context.Context, intentID string, owner domain.PaymentOwner) error
	MarkFailedByIntent(ctx context.Context, intentID string, owner domain.PaymentOwner, reason string) error
	List(ctx context.Context, status domain.PaymentAttemptStatus, limit int) ([]domain.PaymentAttempt, error)
}
