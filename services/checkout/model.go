package checkout

import (
	"fmt"
	"time"

	"github.com/roastworks/roasterybackend/lib/myerrors"
	"github.com/roastworks/roasterybackend/services/cartapi"
)

// State models where a checkout is in its lifecycle. Modeled as a tagged
// value, not a pile of booleans.
type State string

const (
	StateIdle                  State = "idle"
	StateCollectingInput       State = "collectingInput"
	StateValidating            State = "validating"
	StateSubmittingShipping    State = "submittingShipping"
	StateConfirmingPayment     State = "confirmingPayment"
	StateAwaitingSecondaryAuth State = "awaitingSecondaryAuth"
	StateFinalizing            State = "finalizing"
	StateSucceeded             State = "succeeded"
	StateFailed                State = "failed"
)

type Address struct {
	Unit       string
	Street     string
	City       string
	PostalCode string
	Country    string
}

func (a Address) complete() bool {
	return a.Street != "" && a.City != "" && a.PostalCode != "" && a.Country != ""
}

// CheckoutContext is the per-cart record of one checkout attempt. It is
// persisted on every state change so the flow can be audited afterwards.
type CheckoutContext struct {
	CheckoutUID string // equals the cart uid

	Name  string
	Email string
	Phone string

	ShippingAddress       Address
	BillingSameAsShipping bool
	BillingAddress        Address

	ClientSecret     string `datastore:",noindex"`
	PaymentIntentUID string

	AmountInCents int64
	Currency      string

	State         State
	FailureReason string `datastore:",noindex"`
	Completed     bool

	CreatedAt    time.Time
	LastModified *time.Time
}

// validate enforces every rule that must hold before any network call is
// made: all contact and shipping fields non-empty, billing fields non-empty
// when billing differs from shipping, postal code valid after normalization.
func (cc CheckoutContext) validate() error {
	if cc.Name == "" || cc.Email == "" || cc.Phone == "" {
		return myerrors.NewInvalidInputError(fmt.Errorf("missing contact details"))
	}
	if !cc.ShippingAddress.complete() {
		return myerrors.NewInvalidInputError(fmt.Errorf("missing shipping address fields"))
	}
	if !IsValidPostalCode(cc.ShippingAddress.PostalCode) {
		return myerrors.NewInvalidInputError(fmt.Errorf("invalid postal code %q", cc.ShippingAddress.PostalCode))
	}
	if !cc.BillingSameAsShipping {
		if !cc.BillingAddress.complete() {
			return myerrors.NewInvalidInputError(fmt.Errorf("missing billing address fields"))
		}
	}
	return nil
}

func newCheckoutContext(cartUID string, form cartapi.CheckoutForm, now time.Time) CheckoutContext {
	cc := CheckoutContext{
		CheckoutUID:           cartUID,
		Name:                  form.Name,
		Email:                 form.Email,
		Phone:                 form.Phone,
		ShippingAddress:       newAddress(form.Shipping),
		BillingSameAsShipping: form.BillingSameAsShipping,
		ClientSecret:          form.ClientSecret,
		PaymentIntentUID:      PaymentIntentIDFromClientSecret(form.ClientSecret),
		State:                 StateCollectingInput,
		CreatedAt:             now,
	}
	if form.BillingSameAsShipping {
		cc.BillingAddress = cc.ShippingAddress
	} else {
		cc.BillingAddress = newAddress(form.Billing)
	}
	return cc
}

func newAddress(a cartapi.Address) Address {
	country := a.Country
	if country == "" {
		country = supportedCountry
	}
	return Address{
		Unit:       a.Unit,
		Street:     a.Street,
		City:       a.City,
		PostalCode: NormalizePostalCode(a.PostalCode),
		Country:    country,
	}
}
