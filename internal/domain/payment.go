package domain

import "time"

// PaymentStep names one call of the e-wallet protocol.
type PaymentStep string

const (
	PaymentStepIntent  PaymentStep = "intent"
	PaymentStepMethod  PaymentStep = "method"
	PaymentStepConfirm PaymentStep = "confirm"
)

type PaymentAttemptStatus string

const (
	PaymentAttemptStarted    PaymentAttemptStatus = "started"
	PaymentAttemptRedirected PaymentAttemptStatus = "redirected"
	PaymentAttemptSucceeded  PaymentAttemptStatus = "succeeded"
	PaymentAttemptFailed     PaymentAttemptStatus = "failed"
)

// PaymentAttempt records one run of the e-wallet protocol for a checkout.
// Failed attempts point admins at orders left pending without payment.
type PaymentAttempt struct {
	ID          string               `json:"id"`
	SessionID   string               `json:"-"`
	UserID      string               `json:"userId,omitempty"`
	OrderIDs    []string             `json:"orderIds"`
	EWalletType EWalletType          `json:"ewalletType"`
	IntentID    string               `json:"paymentIntentId,omitempty"`
	MethodID    string               `json:"paymentMethodId,omitempty"`
	Step        PaymentStep          `json:"step,omitempty"`
	Status      PaymentAttemptStatus `json:"status"`
	Error       string               `json:"error,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// PaymentOwner identifies who may settle an attempt on return from the wallet.
type PaymentOwner struct {
	SessionID string
	UserID    string
}

// OwnerOf returns the owner fields carried by sess.
func OwnerOf(sess *Session) PaymentOwner {
	if sess == nil {
		return PaymentOwner{}
	}
	return PaymentOwner{SessionID: sess.ID, UserID: sess.UserID}
}
