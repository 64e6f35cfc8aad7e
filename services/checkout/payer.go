package checkout

import (
	"context"
)

// PaymentStatus is the provider's status enum, kept as opaque strings so an
// unknown status degrades to the generic failure path instead of a panic.
type PaymentStatus string

const (
	PaymentStatusSucceeded             PaymentStatus = "succeeded"
	PaymentStatusRequiresAction        PaymentStatus = "requires_action"
	PaymentStatusRequiresConfirmation  PaymentStatus = "requires_confirmation"
	PaymentStatusRequiresPaymentMethod PaymentStatus = "requires_payment_method"
	PaymentStatusProcessing            PaymentStatus = "processing"
)

type ConfirmRequest struct {
	// PaymentMethodUID is empty on a secondary-authentication retry: the
	// intent keeps the method from the first attempt.
	PaymentMethodUID string

	// HandleNextActionManually is set on the wallet path so the wallet sheet
	// can be completed or failed before any secondary authentication runs.
	HandleNextActionManually bool

	BillingName    string
	BillingEmail   string
	BillingPhone   string
	BillingAddress Address
}

type PaymentResult struct {
	Status PaymentStatus
}

//go:generate mockgen -source=payer.go -package checkout -destination payer_mock.go Payer
type Payer interface {
	UseAPIKey(key string)

	// ConfirmPayment asks the provider to confirm the payment intent. A
	// returned error is a provider-reported payment error whose message is
	// shown to the shopper verbatim.
	ConfirmPayment(ctx context.Context, paymentIntentUID string, req ConfirmRequest) (PaymentResult, error)

	// CanMakeWalletPayment reports whether an express wallet sheet is usable
	// for this amount, currency and country.
	CanMakeWalletPayment(ctx context.Context, amountInCents int64, currency string, country string) bool
}
