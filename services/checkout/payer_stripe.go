package checkout

import (
	"context"
	"errors"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/paymentintent"
)

type stripePayer struct{}

func NewPayer() Payer {
	return &stripePayer{}
}

func (p *stripePayer) UseAPIKey(apiKey string) {
	stripe.Key = apiKey
}

func (p *stripePayer) ConfirmPayment(ctx context.Context, paymentIntentUID string, req ConfirmRequest) (PaymentResult, error) {
	params := &stripe.PaymentIntentConfirmParams{}
	params.Context = ctx

	if req.PaymentMethodUID != "" {
		params.PaymentMethod = stripe.String(req.PaymentMethodUID)
	}
	if req.HandleNextActionManually {
		params.UseStripeSDK = stripe.Bool(true)
	}
	if req.BillingEmail != "" {
		params.ReceiptEmail = stripe.String(req.BillingEmail)
	}
	if req.BillingAddress.Street != "" {
		params.Shipping = &stripe.ShippingDetailsParams{
			Name:  stripe.String(req.BillingName),
			Phone: stripe.String(req.BillingPhone),
			Address: &stripe.AddressParams{
				Line1:      stripe.String(req.BillingAddress.Street),
				Line2:      stripe.String(req.BillingAddress.Unit),
				City:       stripe.String(req.BillingAddress.City),
				PostalCode: stripe.String(req.BillingAddress.PostalCode),
				Country:    stripe.String(req.BillingAddress.Country),
			},
		}
	}

	intent, err := paymentintent.Confirm(paymentIntentUID, params)
	if err != nil {
		if stripeErr, ok := err.(*stripe.Error); ok && stripeErr.Msg != "" {
			return PaymentResult{}, errors.New(stripeErr.Msg)
		}
		return PaymentResult{}, err
	}

	return PaymentResult{
		Status: PaymentStatus(intent.Status),
	}, nil
}

// CanMakeWalletPayment mirrors the wallet capability rules of the payment
// sheet: positive amount in the supported currency and country.
func (p *stripePayer) CanMakeWalletPayment(ctx context.Context, amountInCents int64, currency string, country string) bool {
	return amountInCents > 0 && currency == supportedCurrency && country == supportedCountry
}
