package model

import "time"

type PaymentStatus string

const (
	// PaymentStatusCompleted is the only status this core writes: a payment
	// row is recorded at the moment money is taken for a create or renew.
	PaymentStatusCompleted PaymentStatus = "completed"
)

type PaymentMethod string

const (
	PaymentMethodCash     PaymentMethod = "cash"
	PaymentMethodMobile   PaymentMethod = "mobile_money"
	PaymentMethodCard     PaymentMethod = "card"
	PaymentMethodTransfer PaymentMethod = "bank_transfer"
)

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentMethodCash, PaymentMethodMobile, PaymentMethodCard, PaymentMethodTransfer:
		return true
	}
	return false
}

// Payment is one row of the append-only ledger. Exactly one payment is
// written per create or renew, carrying the package price resolved at the
// time of that operation. Rows are never updated or deleted; refunds and
// corrections are out of scope.
type Payment struct {
	ID             string // ULID, sortable by creation order
	UserID         string // UUID
	SubscriptionID string // UUID; may dangle after a hard delete (audit trail)
	Amount         int64  // minor currency units
	Status         PaymentStatus
	Method         PaymentMethod
	PaymentDate    time.Time
}
