package selection

import "context"

// Repository stores the per-session set of cart line ids chosen for checkout.
type Repository interface {
	List(ctx context.Context, sessionID string) ([]string, error)
	Add(ctx context.Context, sessionID string, lineItemIDs ...string) error
	Remove(ctx context.Context, sessionID string, lineItemIDs ...string) error
	Clear(ctx context.Context, sessionID string) error
}
