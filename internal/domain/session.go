package domain

import "time"

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

// Session is the authenticated identity of one browser.
type Session struct {
	ID            string    `json:"-"`
	Token         string    `json:"-"`
	Role          Role      `json:"role"`
	UserID        string    `json:"userId,omitempty"`
	FirstName     string    `json:"firstName"`
	LastName      string    `json:"lastName"`
	Email         string    `json:"email"`
	ContactNumber string    `json:"contactNumber,omitempty"`
	ExpiresAt     time.Time `json:"expiresAt"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

func (s Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}
