package storeapi

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"bakereserve-storefront/internal/domain"
)

// Confirmation is the answer to the final e-wallet step.
type Confirmation struct {
	Status      string
	RedirectURL string
}

// Redirect reports whether the user agent must be sent to RedirectURL.
func (c Confirmation) Redirect() bool {
	return c.RedirectURL != ""
}

func (c *Client) CreatePaymentIntent(ctx context.Context, token string, orderIDs []string) (string, error) {
	body := map[string][]string{"orderIds": orderIDs}
	var out struct {
		PaymentIntentID string `json:"paymentIntentId"`
		ID              string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "POST /payments/intent", "/payments/intent", token, body, &out); err != nil {
		return "", err
	}
	id := firstNonEmpty(out.PaymentIntentID, out.ID)
	if id == "" {
		return "", fmt.Errorf("POST /payments/intent: missing payment intent id")
	}
	return id, nil
}

func (c *Client) CreatePaymentMethod(ctx context.Context, token string, walletType domain.EWalletType) (string, error) {
	body := map[string]domain.EWalletType{"type": walletType}
	var out struct {
		PaymentMethodID string `json:"paymentMethodId"`
		ID              string `json:"id"`
	}
	if err := c.do(ctx, http.MethodPost, "POST /payments/method", "/payments/method", token, body, &out); err != nil {
		return "", err
	}
	id := firstNonEmpty(out.PaymentMethodID, out.ID)
	if id == "" {
		return "", fmt.Errorf("POST /payments/method: missing payment method id")
	}
	return id, nil
}

func (c *Client) ConfirmPayment(ctx context.Context, token, intentID, methodID, returnURL string) (*Confirmation, error) {
	body := map[string]string{
		"paymentIntentId": intentID,
		"paymentMethodId": methodID,
		"returnUrl":       returnURL,
	}
	var out struct {
		Status     string `json:"status"`
		NextAction *struct {
			Type     string `json:"type"`
			Redirect struct {
				URL string `json:"url"`
			} `json:"redirect"`
		} `json:"nextAction"`
	}
	if err := c.do(ctx, http.MethodPost, "POST /payments/confirm", "/payments/confirm", token, body, &out); err != nil {
		return nil, err
	}
	conf := &Confirmation{Status: out.Status}
	if out.NextAction != nil && strings.EqualFold(out.NextAction.Type, "redirect") {
		conf.RedirectURL = strings.TrimSpace(out.NextAction.Redirect.URL)
	}
	return conf, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
