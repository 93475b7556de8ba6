package storeapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"bakereserve-storefront/internal/domain"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingObserver struct {
	mu    sync.Mutex
	calls []string
}

func (o *recordingObserver) ObserveUpstream(endpoint string, _ int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, endpoint)
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *recordingObserver) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	obs := &recordingObserver{}
	return New(srv.URL+"/api/", 2*time.Second, obs, zerolog.Nop()), obs
}

func TestErrorMessageFromBody(t *testing.T) {
	cases := map[string]string{
		`{"message":"Invalid email or password"}`: "Invalid email or password",
		`{"error":"Token expired"}`:               "Token expired",
		`<html>oops</html>`:                       DefaultErrorMessage,
		``:                                        DefaultErrorMessage,
	}
	for body, want := range cases {
		client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, body)
		})
		_, err := client.Login(context.Background(), "a@b.c", "pw")
		require.Error(t, err)
		assert.Equal(t, want, err.Error())
		assert.Equal(t, http.StatusUnauthorized, StatusOf(err))
	}
}

func TestLoginMapsIdentity(t *testing.T) {
	client, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "baker@example.com", body["email"])
		_, _ = io.WriteString(w, `{"_id":"u1","firstName":"Ana","lastName":"Cruz","email":"baker@example.com","role":"admin","token":"jwt"}`)
	})

	id, err := client.Login(context.Background(), "baker@example.com", "secret")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, id.Role)
	assert.Equal(t, "jwt", id.Token)
	assert.Equal(t, "u1", id.UserID)
	assert.Equal(t, []string{"POST /auth/login"}, obs.calls)
}

func TestRegisterPostsUnderAuth(t *testing.T) {
	client, obs := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/auth/register", r.URL.Path)
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "09171234567", body["contactNumber"])
		_, _ = io.WriteString(w, `{"_id":"u2","firstName":"Ben","role":"customer","token":"jwt2"}`)
	})

	id, err := client.Register(context.Background(), RegisterRequest{
		FirstName:     "Ben",
		LastName:      "Reyes",
		Email:         "ben@example.com",
		ContactNumber: "09171234567",
		Password:      "secret1!",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.RoleCustomer, id.Role)
	assert.Equal(t, "u2", id.UserID)
	assert.Equal(t, []string{"POST /auth/register"}, obs.calls)
}

func TestGetCartDecodesPopulatedAndBareProducts(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"items":[
			{"_id":"l1","product":{"_id":"p1","name":"Pandesal","price":5,"category":"bakery","countInStock":40},"quantity":2,"price":5,"customization":{}},
			{"_id":"l2","product":"p2","quantity":1,"price":850.5,"customization":{"shape":"Round","message":"Hi","isCustomBuild":true}}
		]}`)
	})

	cart, err := client.GetCart(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, cart.Items, 2)
	assert.Equal(t, "Pandesal", cart.Items[0].Product.Name)
	assert.Nil(t, cart.Items[0].Customization)
	assert.Equal(t, "p2", cart.Items[1].Product.ID)
	assert.True(t, cart.Items[1].IsCustom())
	assert.True(t, decimal.RequireFromString("850.5").Equal(cart.Items[1].Price))
}

func TestCheckoutAcceptsResponseShapes(t *testing.T) {
	bodies := []string{
		`[{"_id":"o1","orderStatus":"pending"},{"_id":"o2","orderStatus":"pending"}]`,
		`{"orders":[{"_id":"o1","orderStatus":"pending"},{"_id":"o2","orderStatus":"pending"}]}`,
	}
	for _, body := range bodies {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var in CheckoutRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
			assert.Equal(t, []string{"l1"}, in.SelectedItemIDs)
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, body)
		})
		orders, err := client.Checkout(context.Background(), "tok", CheckoutRequest{
			PickupDate: "2026-10-20", PickupTime: "10:00-12:00", PaymentMethod: domain.PaymentMethodCOD, SelectedItemIDs: []string{"l1"},
		})
		require.NoError(t, err)
		require.Len(t, orders, 2)
		assert.Equal(t, domain.OrderStatusPending, orders[1].Status)
	}

	single, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{"_id":"o9","pickupDate":"2026-10-20T00:00:00.000Z","orderStatus":"pending"}`)
	})
	orders, err := single.Checkout(context.Background(), "tok", CheckoutRequest{})
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "2026-10-20", orders[0].PickupDate)
}

func TestOrdersMapItemsAndUser(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/orders", r.URL.Path)
		_, _ = io.WriteString(w, `[{"_id":"o1","user":{"_id":"u1","firstName":"Ana","lastName":"Cruz"},
			"orderItems":[{"name":"Choco Cake","quantity":1,"price":900,"product":{"_id":"p9","category":"cake","subCategory":"Heart"},"customization":{"message":"Happy"}}],
			"totalPrice":900,"paymentMethod":"cod","orderStatus":"approved","createdAt":"2026-10-01T08:00:00Z"}]`)
	})

	orders, err := client.AllOrders(context.Background(), "tok")
	require.NoError(t, err)
	require.Len(t, orders, 1)
	o := orders[0]
	assert.Equal(t, "Ana Cruz", o.CustomerName)
	assert.Equal(t, domain.OrderTypeCake, o.Type())
	assert.True(t, o.Items[0].IsCake())
	assert.Equal(t, "Heart", o.Items[0].SubCategory)
}

func TestConfirmPaymentRedirect(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "pi_1", body["paymentIntentId"])
		assert.Equal(t, "pm_1", body["paymentMethodId"])
		_, _ = io.WriteString(w, `{"status":"awaiting_next_action","nextAction":{"type":"redirect","redirect":{"url":"https://pay.example/auth"}}}`)
	})

	conf, err := client.ConfirmPayment(context.Background(), "tok", "pi_1", "pm_1", "https://shop/payment-status")
	require.NoError(t, err)
	assert.True(t, conf.Redirect())
	assert.Equal(t, "https://pay.example/auth", conf.RedirectURL)
}

func TestCreatePaymentIntentRequiresID(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, _ *http.Request) {
		_, _ = io.WriteString(w, `{}`)
	})
	_, err := client.CreatePaymentIntent(context.Background(), "tok", []string{"o1"})
	require.Error(t, err)
	assert.Zero(t, StatusOf(err))
}
