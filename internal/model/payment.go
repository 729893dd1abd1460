package model

import (
	"fmt"
	"strings"
	"time"
)

// PaymentStatus is the state reported by the payment gateway.  Only
// PaymentCompleted matters to availability and checkout; the others are
// recorded for bookkeeping.
type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentCompleted PaymentStatus = "completed"
	PaymentFailed    PaymentStatus = "failed"
	PaymentRefunded  PaymentStatus = "refunded"
)

// ParsePaymentStatus accepts the four known statuses in any case.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	switch PaymentStatus(strings.ToLower(strings.TrimSpace(s))) {
	case PaymentPending:
		return PaymentPending, nil
	case PaymentCompleted:
		return PaymentCompleted, nil
	case PaymentFailed:
		return PaymentFailed, nil
	case PaymentRefunded:
		return PaymentRefunded, nil
	}
	return "", fmt.Errorf("unknown payment status %q", s)
}

// Payment methods accepted by the front desk.
const (
	MethodCash         = "cash"
	MethodCard         = "card"
	MethodEWallet      = "e-wallet"
	MethodBankTransfer = "bank_transfer"
)

// NormalizePaymentMethod maps the spellings used by the booking site and
// the gateway ("GCash", "E Wallet", "credit card" ...) onto the four
// stored methods.  It returns false when the method is unknown.
func NormalizePaymentMethod(raw string) (string, bool) {
	m := strings.ToLower(strings.TrimSpace(raw))
	m = strings.NewReplacer("‑", "", " ", "", "_", "", "-", "").Replace(m)
	switch m {
	case "cash":
		return MethodCash, true
	case "card", "creditcard", "debitcard":
		return MethodCard, true
	case "ewallet", "gcash", "paymaya", "maya":
		return MethodEWallet, true
	case "banktransfer", "bank":
		return MethodBankTransfer, true
	}
	return "", false
}

// Payment is money received against a reservation.  A reservation may carry
// any number of payments.
type Payment struct {
	ID               uint64        `json:"id"`
	ReservationID    uint64        `json:"reservation_id"`
	Amount           float64       `json:"amount"`
	Currency         string        `json:"currency"`
	Method           string        `json:"method"`
	Status           PaymentStatus `json:"status"`
	PaymentReference string        `json:"payment_reference"`
	TransactionID    string        `json:"transaction_id"`
	CreatedAt        time.Time     `json:"created_at"`
}
