package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bakereserve-storefront/internal/domain"
	"bakereserve-storefront/internal/storeapi"
	"bakereserve-storefront/internal/validation"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

type sessionRepo interface {
	Create(ctx context.Context, s domain.Session) (*domain.Session, error)
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

type authAPI interface {
	Login(ctx context.Context, email, password string) (*storeapi.Identity, error)
	Register(ctx context.Context, in storeapi.RegisterRequest) (*storeapi.Identity, error)
}

// Service issues and resolves gateway sessions backed by upstream tokens.
type Service struct {
	repo   sessionRepo
	api    authAPI
	ttl    time.Duration
	now    func() time.Time
	logger zerolog.Logger
}

func New(repo sessionRepo, api authAPI, ttl time.Duration, logger zerolog.Logger) *Service {
	return &Service{repo: repo, api: api, ttl: ttl, now: time.Now, logger: logger}
}

type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type RegisterInput struct {
	FirstName     string `json:"firstName" validate:"required,min=2"`
	LastName      string `json:"lastName" validate:"required,min=2"`
	Email         string `json:"email" validate:"required,email"`
	ContactNumber string `json:"contactNumber" validate:"required,number"`
	Password      string `json:"password" validate:"required,min=7,password"`
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*domain.Session, error) {
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	identity, err := s.api.Login(ctx, in.Email, in.Password)
	if err != nil {
		return nil, err
	}
	return s.open(ctx, identity)
}

func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.Session, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	in.ContactNumber = strings.TrimSpace(in.ContactNumber)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	identity, err := s.api.Register(ctx, storeapi.RegisterRequest{
		FirstName:     in.FirstName,
		LastName:      in.LastName,
		Email:         in.Email,
		ContactNumber: in.ContactNumber,
		Password:      in.Password,
	})
	if err != nil {
		return nil, err
	}
	return s.open(ctx, identity)
}

func (s *Service) open(ctx context.Context, identity *storeapi.Identity) (*domain.Session, error) {
	if identity == nil || identity.Token == "" {
		return nil, errors.New("auth response carried no token")
	}
	now := s.now()
	expiresAt := now.Add(s.ttl)
	if exp, ok := tokenExpiry(identity.Token); ok && exp.Before(expiresAt) {
		expiresAt = exp
	}
	sess, err := s.repo.Create(ctx, domain.Session{
		ID:            uuid.NewString(),
		Token:         identity.Token,
		Role:          identity.Role,
		UserID:        identity.UserID,
		FirstName:     identity.FirstName,
		LastName:      identity.LastName,
		Email:         identity.Email,
		ContactNumber: identity.ContactNumber,
		ExpiresAt:     expiresAt,
	})
	if err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}
	s.logger.Info().Str("user_id", sess.UserID).Str("role", string(sess.Role)).Msg("session.opened")
	return sess, nil
}

// Resolve returns the live session for id or domain.ErrUnauthenticated.
func (s *Service) Resolve(ctx context.Context, id string) (*domain.Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, domain.ErrUnauthenticated
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, domain.ErrUnauthenticated
	}
	sess, err := s.repo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrUnauthenticated
		}
		return nil, err
	}
	now := s.now()
	expired := sess.Expired(now)
	if exp, ok := tokenExpiry(sess.Token); ok && !exp.After(now) {
		expired = true
	}
	if expired {
		if err := s.repo.Delete(ctx, sess.ID); err != nil && !errors.Is(err, domain.ErrNotFound) {
			s.logger.Warn().Err(err).Msg("session.expire_delete_failed")
		}
		return nil, domain.ErrUnauthenticated
	}
	return sess, nil
}

func (s *Service) Logout(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

// PurgeExpired removes sessions past their expiry.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteExpired(ctx, s.now())
}

// tokenExpiry reads the exp claim without verifying the signature; the
// upstream API remains the authority on token validity.
func tokenExpiry(token string) (time.Time, bool) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return time.Time{}, false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}, false
	}
	return exp.Time, true
}
