package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"bakereserve-storefront/internal/domain"
	"bakereserve-storefront/internal/storeapi"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAPI struct {
	orders       []domain.Order
	checkoutErr  error
	intentErr    error
	methodErr    error
	confirm      *storeapi.Confirmation
	confirmErr   error
	calls        []string
	lastCheckout storeapi.CheckoutRequest
	lastReturn   string
}

func (a *stubAPI) Checkout(_ context.Context, _ string, in storeapi.CheckoutRequest) ([]domain.Order, error) {
	a.calls = append(a.calls, "checkout")
	a.lastCheckout = in
	return a.orders, a.checkoutErr
}

func (a *stubAPI) CreatePaymentIntent(context.Context, string, []string) (string, error) {
	a.calls = append(a.calls, "intent")
	if a.intentErr != nil {
		return "", a.intentErr
	}
	return "pi_1", nil
}

func (a *stubAPI) CreatePaymentMethod(context.Context, string, domain.EWalletType) (string, error) {
	a.calls = append(a.calls, "method")
	if a.methodErr != nil {
		return "", a.methodErr
	}
	return "pm_1", nil
}

func (a *stubAPI) ConfirmPayment(_ context.Context, _, _, _, returnURL string) (*storeapi.Confirmation, error) {
	a.calls = append(a.calls, "confirm")
	a.lastReturn = returnURL
	if a.confirmErr != nil {
		return nil, a.confirmErr
	}
	return a.confirm, nil
}

type stubCart struct {
	cart       domain.Cart
	selected   domain.Selection
	deselected []string
}

func (c *stubCart) Selected(context.Context, *domain.Session) (domain.Cart, domain.Selection, error) {
	return c.cart, c.selected, nil
}

func (c *stubCart) Deselect(_ context.Context, _ *domain.Session, ids ...string) error {
	c.deselected = append(c.deselected, ids...)
	return nil
}

type stubAttempts struct {
	created   []domain.PaymentAttempt
	updated   []domain.PaymentAttempt
	settled   []string
	failed    []string
	owners    []domain.PaymentOwner
	settleErr error
	lastList  domain.PaymentAttemptStatus
}

func (r *stubAttempts) Create(_ context.Context, a domain.PaymentAttempt) (*domain.PaymentAttempt, error) {
	r.created = append(r.created, a)
	return &a, nil
}

func (r *stubAttempts) Update(_ context.Context, a domain.PaymentAttempt) error {
	r.updated = append(r.updated, a)
	return nil
}

func (r *stubAttempts) MarkSucceededByIntent(_ context.Context, intentID string, owner domain.PaymentOwner) error {
	r.settled = append(r.settled, intentID)
	r.owners = append(r.owners, owner)
	return r.settleErr
}

func (r *stubAttempts) MarkFailedByIntent(_ context.Context, intentID string, owner domain.PaymentOwner, reason string) error {
	r.failed = append(r.failed, intentID+":"+reason)
	r.owners = append(r.owners, owner)
	return r.settleErr
}

func (r *stubAttempts) List(_ context.Context, status domain.PaymentAttemptStatus, _ int) ([]domain.PaymentAttempt, error) {
	r.lastList = status
	return nil, nil
}

type countingMetrics struct{ outcomes []string }

func (m *countingMetrics) IncCheckout(method, result string) {
	m.outcomes = append(m.outcomes, method+":"+result)
}

var sess = &domain.Session{ID: "s1", Token: "tok", UserID: "u1"}

type fixture struct {
	api      *stubAPI
	cart     *stubCart
	attempts *stubAttempts
	metrics  *countingMetrics
	svc      *Service
}

func newFixture() *fixture {
	f := &fixture{
		api: &stubAPI{
			orders:  []domain.Order{{ID: "o1"}, {ID: "o2"}},
			confirm: &storeapi.Confirmation{Status: "succeeded"},
		},
		cart: &stubCart{cart: domain.Cart{Items: []domain.CartLineItem{
			{ID: "A", Price: decimal.NewFromInt(100), Quantity: 2},
			{ID: "B", Price: decimal.NewFromInt(50), Quantity: 1},
		}}, selected: domain.NewSelection("A", "B")},
		attempts: &stubAttempts{},
		metrics:  &countingMetrics{},
	}
	f.svc = New(f.api, f.cart, f.attempts, f.metrics, "http://localhost:5173/payment-status", zerolog.Nop())
	f.svc.now = func() time.Time { return time.Date(2026, 10, 17, 15, 0, 0, 0, time.UTC) }
	return f
}

func validInput(method domain.PaymentMethod, wallet domain.EWalletType) Input {
	return Input{
		SelectedItemIDs: []string{"A", "B"},
		PickupDate:      "2026-10-18",
		PickupTime:      "10:00-12:00",
		PaymentMethod:   method,
		EWalletType:     wallet,
	}
}

func TestCheckoutFailsFastWithoutRemoteCalls(t *testing.T) {
	cases := map[string]func(*Input){
		"missing date":           func(in *Input) { in.PickupDate = "" },
		"missing time":           func(in *Input) { in.PickupTime = "" },
		"past date":              func(in *Input) { in.PickupDate = "2026-10-16" },
		"bad slot":               func(in *Input) { in.PickupTime = "23:00-24:00" },
		"bad method":             func(in *Input) { in.PaymentMethod = "card" },
		"wallet without type":    func(in *Input) { in.PaymentMethod = domain.PaymentMethodEWallet },
		"unknown wallet":         func(in *Input) { in.PaymentMethod, in.EWalletType = domain.PaymentMethodEWallet, "venmo" },
		"cod with wallet type":   func(in *Input) { in.EWalletType = domain.EWalletGCash },
		"item no longer in cart": func(in *Input) { in.SelectedItemIDs = []string{"A", "Z"} },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			in := validInput(domain.PaymentMethodCOD, "")
			mutate(&in)

			_, err := f.svc.Checkout(context.Background(), sess, in)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err), "got %v", err)
			assert.Empty(t, f.api.calls)
		})
	}
}

func TestCheckoutDefaultsToStoredSelection(t *testing.T) {
	f := newFixture()
	f.cart.selected = domain.NewSelection("B")
	in := validInput(domain.PaymentMethodCOD, "")
	in.SelectedItemIDs = nil

	_, err := f.svc.Checkout(context.Background(), sess, in)
	require.NoError(t, err)
	assert.Equal(t, []string{"B"}, f.api.lastCheckout.SelectedItemIDs)
	assert.Equal(t, []string{"B"}, f.cart.deselected)
}

func TestCheckoutRejectsUnselectedItem(t *testing.T) {
	f := newFixture()
	f.cart.selected = domain.NewSelection("A")

	_, err := f.svc.Checkout(context.Background(), sess, validInput(domain.PaymentMethodCOD, ""))
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Contains(t, err.Error(), "item B is not selected")
	assert.Empty(t, f.api.calls)
}

func TestCheckoutEmptySelection(t *testing.T) {
	for name, ids := range map[string][]string{"omitted": nil, "blank": {" "}} {
		t.Run(name, func(t *testing.T) {
			f := newFixture()
			f.cart.selected = domain.NewSelection()
			in := validInput(domain.PaymentMethodCOD, "")
			in.SelectedItemIDs = ids

			_, err := f.svc.Checkout(context.Background(), sess, in)
			require.Error(t, err)
			assert.True(t, domain.IsValidation(err))
			assert.Empty(t, f.api.calls)
		})
	}
}

func TestCheckoutSameDayPickupAllowed(t *testing.T) {
	f := newFixture()
	in := validInput(domain.PaymentMethodCOD, "")
	in.PickupDate = "2026-10-17"

	_, err := f.svc.Checkout(context.Background(), sess, in)
	require.NoError(t, err)
}

func TestCheckoutRequiresSession(t *testing.T) {
	_, err := newFixture().svc.Checkout(context.Background(), nil, validInput(domain.PaymentMethodCOD, ""))
	assert.True(t, errors.Is(err, domain.ErrUnauthenticated))
}

func TestCheckoutCOD(t *testing.T) {
	f := newFixture()
	in := validInput(domain.PaymentMethodCOD, "")
	in.SelectedItemIDs = []string{"A", "A"}

	res, err := f.svc.Checkout(context.Background(), sess, in)
	require.NoError(t, err)
	assert.Equal(t, StatusPlaced, res.Status)
	assert.Equal(t, OrdersPath, res.Next)
	assert.Equal(t, []string{"o1", "o2"}, res.OrderIDs)
	assert.Equal(t, []string{"checkout"}, f.api.calls)
	assert.Equal(t, []string{"A"}, f.api.lastCheckout.SelectedItemIDs)
	assert.Equal(t, []string{"A"}, f.cart.deselected)
	assert.Empty(t, f.attempts.created)
	assert.Equal(t, []string{"cod:placed"}, f.metrics.outcomes)
}

func TestCheckoutOrderCreationFailure(t *testing.T) {
	f := newFixture()
	f.api.checkoutErr = &storeapi.APIError{StatusCode: 400, Message: "Cart is empty"}

	_, err := f.svc.Checkout(context.Background(), sess, validInput(domain.PaymentMethodEWallet, domain.EWalletGCash))
	require.Error(t, err)
	assert.Equal(t, "Cart is empty", err.Error())
	assert.Equal(t, []string{"checkout"}, f.api.calls)
	assert.Empty(t, f.cart.deselected)
}

func TestEWalletMethodFailureStopsBeforeConfirm(t *testing.T) {
	f := newFixture()
	f.api.methodErr = &storeapi.APIError{StatusCode: 422, Message: "Unsupported wallet"}

	_, err := f.svc.Checkout(context.Background(), sess, validInput(domain.PaymentMethodEWallet, domain.EWalletPayMaya))
	require.Error(t, err)

	var stepErr *PaymentStepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, domain.PaymentStepMethod, stepErr.Step)
	assert.Equal(t, []string{"o1", "o2"}, stepErr.OrderIDs)
	assert.Equal(t, "Unsupported wallet", err.Error())
	assert.Equal(t, 422, storeapi.StatusOf(err))

	assert.Equal(t, []string{"checkout", "intent", "method"}, f.api.calls)
	require.Len(t, f.attempts.updated, 1)
	last := f.attempts.updated[0]
	assert.Equal(t, domain.PaymentAttemptFailed, last.Status)
	assert.Equal(t, domain.PaymentStepMethod, last.Step)
	assert.Equal(t, "pi_1", last.IntentID)
	assert.Equal(t, "Unsupported wallet", last.Error)
	assert.Equal(t, []string{"ewallet:failed"}, f.metrics.outcomes)
}

func TestEWalletIntentFailure(t *testing.T) {
	f := newFixture()
	f.api.intentErr = errors.New("POST /payments/intent: dial tcp 10.0.0.1:443: connection refused")

	_, err := f.svc.Checkout(context.Background(), sess, validInput(domain.PaymentMethodEWallet, domain.EWalletGCash))
	var stepErr *PaymentStepError
	require.True(t, errors.As(err, &stepErr))
	assert.Equal(t, domain.PaymentStepIntent, stepErr.Step)
	assert.Equal(t, []string{"checkout", "intent"}, f.api.calls)
	assert.Equal(t, storeapi.DefaultErrorMessage, err.Error())

	require.Len(t, f.attempts.updated, 1)
	assert.Contains(t, f.attempts.updated[0].Error, "connection refused")
}

func TestEWalletRedirect(t *testing.T) {
	f := newFixture()
	f.api.confirm = &storeapi.Confirmation{Status: "awaiting_next_action", RedirectURL: "https://wallet.example/auth"}

	res, err := f.svc.Checkout(context.Background(), sess, validInput(domain.PaymentMethodEWallet, domain.EWalletGCash))
	require.NoError(t, err)
	assert.Equal(t, StatusRedirect, res.Status)
	assert.Equal(t, "https://wallet.example/auth", res.RedirectURL)
	assert.NotEmpty(t, res.AttemptID)
	assert.Equal(t, "http://localhost:5173/payment-status", f.api.lastReturn)
	assert.Equal(t, []string{"checkout", "intent", "method", "confirm"}, f.api.calls)

	require.Len(t, f.attempts.created, 1)
	assert.Equal(t, domain.PaymentAttemptStarted, f.attempts.created[0].Status)
	require.Len(t, f.attempts.updated, 1)
	assert.Equal(t, domain.PaymentAttemptRedirected, f.attempts.updated[0].Status)
	assert.Equal(t, "pm_1", f.attempts.updated[0].MethodID)
}

func TestEWalletImmediateSuccess(t *testing.T) {
	f := newFixture()

	res, err := f.svc.Checkout(context.Background(), sess, validInput(domain.PaymentMethodEWallet, domain.EWalletGCash))
	require.NoError(t, err)
	assert.Equal(t, StatusSucceeded, res.Status)
	assert.Equal(t, PaymentStatusPath, res.Next)
	assert.Equal(t, []string{"ewallet:succeeded"}, f.metrics.outcomes)
}

func TestReturnFromPayment(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	ps, err := f.svc.ReturnFromPayment(ctx, sess, "Succeeded", "pi_1")
	require.NoError(t, err)
	assert.Equal(t, "succeeded", ps.Status)
	assert.Equal(t, OrdersPath, ps.Next)
	assert.Equal(t, []string{"pi_1"}, f.attempts.settled)
	assert.Equal(t, []domain.PaymentOwner{{SessionID: "s1", UserID: "u1"}}, f.attempts.owners)

	f.attempts.settleErr = domain.ErrNotFound
	_, err = f.svc.ReturnFromPayment(ctx, sess, "succeeded", "pi_1")
	require.NoError(t, err)
}

func TestReturnFromPaymentRecordsWalletFailure(t *testing.T) {
	f := newFixture()

	ps, err := f.svc.ReturnFromPayment(context.Background(), sess, "failed", "pi_2")
	require.NoError(t, err)
	assert.Equal(t, "failed", ps.Status)
	assert.Empty(t, f.attempts.settled)
	assert.Equal(t, []string{"pi_2:wallet returned status failed"}, f.attempts.failed)
	assert.Equal(t, []string{"ewallet:failed"}, f.metrics.outcomes)
}

func TestReturnFromPaymentForeignSession(t *testing.T) {
	f := newFixture()
	f.attempts.settleErr = domain.ErrNotFound
	other := &domain.Session{ID: "s2", Token: "tok2", UserID: "u2"}

	ps, err := f.svc.ReturnFromPayment(context.Background(), other, "succeeded", "pi_1")
	require.NoError(t, err)
	assert.Equal(t, "succeeded", ps.Status)
	assert.Equal(t, []domain.PaymentOwner{{SessionID: "s2", UserID: "u2"}}, f.attempts.owners)
	assert.Empty(t, f.metrics.outcomes)
}

func TestReturnFromPaymentWithoutIntentOrSession(t *testing.T) {
	f := newFixture()

	ps, err := f.svc.ReturnFromPayment(context.Background(), sess, "", "")
	require.NoError(t, err)
	assert.Equal(t, "unknown", ps.Status)
	assert.Empty(t, f.attempts.owners)

	_, err = f.svc.ReturnFromPayment(context.Background(), nil, "succeeded", "pi_1")
	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
}

func TestAttemptsFilter(t *testing.T) {
	f := newFixture()
	_, err := f.svc.Attempts(context.Background(), "FAILED", 20)
	require.NoError(t, err)
	assert.Equal(t, domain.PaymentAttemptFailed, f.attempts.lastList)

	_, err = f.svc.Attempts(context.Background(), "lost", 20)
	assert.True(t, domain.IsValidation(err))
}
