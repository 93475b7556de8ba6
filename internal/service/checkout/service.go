package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"bakereserve-storefront/internal/domain"
	"bakereserve-storefront/internal/storeapi"
	"bakereserve-storefront/internal/validation"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	StatusPlaced    = "placed"
	StatusRedirect  = "redirect"
	StatusSucceeded = "succeeded"

	OrdersPath        = "/orders"
	PaymentStatusPath = "/payment-status?status=succeeded"
)

type orderAPI interface {
	Checkout(ctx context.Context, token string, in storeapi.CheckoutRequest) ([]domain.Order, error)
	CreatePaymentIntent(ctx context.Context, token string, orderIDs []string) (string, error)
	CreatePaymentMethod(ctx context.Context, token string, walletType domain.EWalletType) (string, error)
	ConfirmPayment(ctx context.Context, token, intentID, methodID, returnURL string) (*storeapi.Confirmation, error)
}

type cartSource interface {
	Selected(ctx context.Context, sess *domain.Session) (domain.Cart, domain.Selection, error)
	Deselect(ctx context.Context, sess *domain.Session, lineItemIDs ...string) error
}

type attemptRepo interface {
	Create(ctx context.Context, a domain.PaymentAttempt) (*domain.PaymentAttempt, error)
	Update(ctx context.Context, a domain.PaymentAttempt) error
	MarkSucceededByIntent(ctx context.Context, intentID string, owner domain.PaymentOwner) error
	MarkFailedByIntent(ctx context.Context, intentID string, owner domain.PaymentOwner, reason string) error
	List(ctx context.Context, status domain.PaymentAttemptStatus, limit int) ([]domain.PaymentAttempt, error)
}

type checkoutCounter interface {
	IncCheckout(paymentMethod, result string)
}

// PaymentStepError reports which e-wallet step failed. The orders it names
// already exist upstream and stay pending.
type PaymentStepError struct {
	Step     domain.PaymentStep
	OrderIDs []string
	Err      error
}

// Error shows the remote message verbatim and hides transport details.
func (e *PaymentStepError) Error() string {
	var apiErr *storeapi.APIError
	if errors.As(e.Err, &apiErr) {
		return apiErr.Error()
	}
	return storeapi.DefaultErrorMessage
}

func (e *PaymentStepError) Unwrap() error {
	return e.Err
}

type Service struct {
	api       orderAPI
	cart      cartSource
	attempts  attemptRepo
	metrics   checkoutCounter
	returnURL string
	now       func() time.Time
	logger    zerolog.Logger
}

func New(api orderAPI, cart cartSource, attempts attemptRepo, metrics checkoutCounter, returnURL string, logger zerolog.Logger) *Service {
	return &Service{
		api:       api,
		cart:      cart,
		attempts:  attempts,
		metrics:   metrics,
		returnURL: returnURL,
		now:       time.Now,
		logger:    logger,
	}
}

type Input struct {
	SelectedItemIDs []string             `json:"selectedItemIds,omitempty"`
	PickupDate      string               `json:"pickupDate" validate:"required,datetime=2006-01-02"`
	PickupTime      string               `json:"pickupTime" validate:"required,pickupslot"`
	PaymentMethod   domain.PaymentMethod `json:"paymentMethod" validate:"required,oneof=cod ewallet"`
	EWalletType     domain.EWalletType   `json:"eWalletType" validate:"required_if=PaymentMethod ewallet,omitempty,oneof=gcash paymaya"`
}

type Result struct {
	Status      string   `json:"status"`
	Next        string   `json:"next,omitempty"`
	RedirectURL string   `json:"redirectUrl,omitempty"`
	OrderIDs    []string `json:"orderIds"`
	AttemptID   string   `json:"attemptId,omitempty"`
}

func (s *Service) validate(in *Input) error {
	in.PickupDate = strings.TrimSpace(in.PickupDate)
	in.PickupTime = strings.TrimSpace(in.PickupTime)
	in.PaymentMethod = domain.PaymentMethod(strings.ToLower(strings.TrimSpace(string(in.PaymentMethod))))
	in.EWalletType = domain.EWalletType(strings.ToLower(strings.TrimSpace(string(in.EWalletType))))
	in.SelectedItemIDs = dedupe(in.SelectedItemIDs)

	if err := validation.Struct(*in); err != nil {
		return err
	}
	if in.PaymentMethod != domain.PaymentMethodEWallet && in.EWalletType != "" {
		return domain.Invalid("eWalletType", "is only accepted with ewallet payment")
	}
	today := s.now().Format(time.DateOnly)
	if in.PickupDate < today {
		return domain.Invalid("pickupDate", "must not be in the past")
	}
	return nil
}

// Checkout turns the selected cart lines into orders and, for e-wallet
// payment, runs intent, method and confirm in order. Any failure stops the
// sequence without undoing the created orders.
func (s *Service) Checkout(ctx context.Context, sess *domain.Session, in Input) (*Result, error) {
	if sess == nil {
		return nil, domain.ErrUnauthenticated
	}
	if err := s.validate(&in); err != nil {
		return nil, err
	}

	cart, selected, err := s.cart.Selected(ctx, sess)
	if err != nil {
		return nil, err
	}
	in.SelectedItemIDs, err = checkoutLines(in.SelectedItemIDs, cart, selected)
	if err != nil {
		return nil, err
	}

	orders, err := s.api.Checkout(ctx, sess.Token, storeapi.CheckoutRequest{
		PickupDate:      in.PickupDate,
		PickupTime:      in.PickupTime,
		PaymentMethod:   in.PaymentMethod,
		SelectedItemIDs: in.SelectedItemIDs,
	})
	if err != nil {
		s.metrics.IncCheckout(string(in.PaymentMethod), "failed")
		return nil, err
	}
	orderIDs := make([]string, 0, len(orders))
	for _, o := range orders {
		orderIDs = append(orderIDs, o.ID)
	}
	if err := s.cart.Deselect(ctx, sess, in.SelectedItemIDs...); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sess.ID).Msg("checkout.deselect_failed")
	}
	s.logger.Info().
		Str("user_id", sess.UserID).
		Strs("order_ids", orderIDs).
		Str("payment_method", string(in.PaymentMethod)).
		Msg("checkout.orders_created")

	if in.PaymentMethod == domain.PaymentMethodCOD {
		s.metrics.IncCheckout(string(in.PaymentMethod), StatusPlaced)
		return &Result{Status: StatusPlaced, Next: OrdersPath, OrderIDs: orderIDs}, nil
	}
	return s.payEWallet(ctx, sess, in.EWalletType, orderIDs)
}

func (s *Service) payEWallet(ctx context.Context, sess *domain.Session, wallet domain.EWalletType, orderIDs []string) (*Result, error) {
	attempt := domain.PaymentAttempt{
		ID:          uuid.NewString(),
		SessionID:   sess.ID,
		UserID:      sess.UserID,
		OrderIDs:    orderIDs,
		EWalletType: wallet,
		Status:      domain.PaymentAttemptStarted,
	}
	recorded := true
	if _, err := s.attempts.Create(ctx, attempt); err != nil {
		recorded = false
		s.logger.Error().Err(err).Strs("order_ids", orderIDs).Msg("checkout.attempt_record_failed")
	}
	save := func() {
		if !recorded {
			return
		}
		if err := s.attempts.Update(ctx, attempt); err != nil {
			s.logger.Error().Err(err).Str("attempt_id", attempt.ID).Msg("checkout.attempt_update_failed")
		}
	}
	fail := func(step domain.PaymentStep, err error) error {
		attempt.Step = step
		attempt.Status = domain.PaymentAttemptFailed
		attempt.Error = err.Error()
		save()
		s.metrics.IncCheckout(string(domain.PaymentMethodEWallet), "failed")
		s.logger.Warn().
			Err(err).
			Str("step", string(step)).
			Strs("order_ids", orderIDs).
			Msg("checkout.payment_step_failed")
		return &PaymentStepError{Step: step, OrderIDs: orderIDs, Err: err}
	}

	intentID, err := s.api.CreatePaymentIntent(ctx, sess.Token, orderIDs)
	if err != nil {
		return nil, fail(domain.PaymentStepIntent, err)
	}
	attempt.IntentID = intentID

	methodID, err := s.api.CreatePaymentMethod(ctx, sess.Token, wallet)
	if err != nil {
		return nil, fail(domain.PaymentStepMethod, err)
	}
	attempt.MethodID = methodID

	confirmation, err := s.api.ConfirmPayment(ctx, sess.Token, intentID, methodID, s.returnURL)
	if err != nil {
		return nil, fail(domain.PaymentStepConfirm, err)
	}
	attempt.Step = domain.PaymentStepConfirm

	res := &Result{OrderIDs: orderIDs}
	if recorded {
		res.AttemptID = attempt.ID
	}
	if confirmation.Redirect() {
		attempt.Status = domain.PaymentAttemptRedirected
		res.Status = StatusRedirect
		res.RedirectURL = confirmation.RedirectURL
	} else {
		attempt.Status = domain.PaymentAttemptSucceeded
		res.Status = StatusSucceeded
		res.Next = PaymentStatusPath
	}
	save()
	s.metrics.IncCheckout(string(domain.PaymentMethodEWallet), res.Status)
	return res, nil
}

// PaymentStatus is what the payment-status page shows after a redirect.
type PaymentStatus struct {
	Status   string `json:"status"`
	IntentID string `json:"paymentIntentId,omitempty"`
	Next     string `json:"next"`
}

// ReturnFromPayment settles the caller's redirected attempt with the status
// the wallet reported. Attempts owned by another session are left untouched.
func (s *Service) ReturnFromPayment(ctx context.Context, sess *domain.Session, status, intentID string) (*PaymentStatus, error) {
	if sess == nil {
		return nil, domain.ErrUnauthenticated
	}
	status = strings.ToLower(strings.TrimSpace(status))
	if status == "" {
		status = "unknown"
	}
	intentID = strings.TrimSpace(intentID)
	ps := &PaymentStatus{Status: status, IntentID: intentID, Next: OrdersPath}
	if intentID == "" || status == "unknown" {
		return ps, nil
	}

	owner := domain.OwnerOf(sess)
	var err error
	if status == StatusSucceeded {
		err = s.attempts.MarkSucceededByIntent(ctx, intentID, owner)
	} else {
		err = s.attempts.MarkFailedByIntent(ctx, intentID, owner, "wallet returned status "+status)
	}
	switch {
	case errors.Is(err, domain.ErrNotFound):
		s.logger.Warn().Str("intent_id", intentID).Str("status", status).Msg("checkout.return_unmatched")
	case err != nil:
		return nil, fmt.Errorf("settle payment attempt: %w", err)
	case status != StatusSucceeded:
		s.metrics.IncCheckout(string(domain.PaymentMethodEWallet), "failed")
	}
	return ps, nil
}

// Attempts lists recorded e-wallet runs, newest first.
func (s *Service) Attempts(ctx context.Context, status string, limit int) ([]domain.PaymentAttempt, error) {
	st := domain.PaymentAttemptStatus(strings.ToLower(strings.TrimSpace(status)))
	switch st {
	case "", domain.PaymentAttemptStarted, domain.PaymentAttemptRedirected, domain.PaymentAttemptSucceeded, domain.PaymentAttemptFailed:
	default:
		return nil, domain.Invalid("status", "must be started, redirected, succeeded or failed")
	}
	return s.attempts.List(ctx, st, limit)
}

// checkoutLines falls back to the stored selection when ids is empty and
// otherwise requires every id to be a selected line of the cart.
func checkoutLines(ids []string, cart domain.Cart, selected domain.Selection) ([]string, error) {
	if len(ids) == 0 {
		ids = selected.Ordered(cart)
	}
	if len(ids) == 0 {
		return nil, domain.Invalid("selectedItemIds", "select at least one item")
	}
	for _, id := range ids {
		if _, ok := cart.Find(id); !ok {
			return nil, domain.Invalid("selectedItemIds", fmt.Sprintf("item %s is no longer in the cart", id))
		}
		if !selected.Has(id) {
			return nil, domain.Invalid("selectedItemIds", fmt.Sprintf("item %s is not selected", id))
		}
	}
	return ids, nil
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
