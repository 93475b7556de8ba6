package storeapi

import (
	"context"
	"net/http"

	"bakereserve-storefront/internal/domain"
)

// Identity is what the API returns after login or registration.
type Identity struct {
	UserID        string
	Token         string
	Role          domain.Role
	FirstName     string
	LastName      string
	Email         string
	ContactNumber string
}

type RegisterRequest struct {
	FirstName     string `json:"firstName"`
	LastName      string `json:"lastName"`
	Email         string `json:"email"`
	ContactNumber string `json:"contactNumber"`
	Password      string `json:"password"`
}

func (c *Client) Login(ctx context.Context, email, password string) (*Identity, error) {
	body := map[string]string{"email": email, "password": password}
	var out apiAuth
	if err := c.do(ctx, http.MethodPost, "POST /auth/login", "/auth/login", "", body, &out); err != nil {
		return nil, err
	}
	return toIdentity(out), nil
}

func (c *Client) Register(ctx context.Context, in RegisterRequest) (*Identity, error) {
	var out apiAuth
	if err := c.do(ctx, http.MethodPost, "POST /auth/register", "/auth/register", "", in, &out); err != nil {
		return nil, err
	}
	return toIdentity(out), nil
}

func toIdentity(a apiAuth) *Identity {
	role := domain.RoleCustomer
	if domain.Role(a.Role) == domain.RoleAdmin {
		role = domain.RoleAdmin
	}
	return &Identity{
		UserID:        a.ID,
		Token:         a.Token,
		Role:          role,
		FirstName:     a.FirstName,
		LastName:      a.LastName,
		Email:         a.Email,
		ContactNumber: a.ContactNumber,
	}
}
