package checkout

import (
	"context"
	"fmt"

	"github.com/roastworks/roasterybackend/lib/myerrors"
	"github.com/roastworks/roasterybackend/lib/mylog"
	"github.com/roastworks/roasterybackend/services/cartapi"
)

// Wallet sheet outcomes, reported back so the sheet can close itself with the
// right animation before any secondary authentication runs.
const (
	WalletSheetSuccess = "success"
	WalletSheetFail    = "fail"
)

type ShippingOption struct {
	UID           string
	Label         string
	AmountInCents int64
}

// shippingOptions is the fixed set offered inside the wallet sheet.
var shippingOptions = []ShippingOption{
	{UID: "standard", Label: "Standard delivery (2-3 working days)", AmountInCents: 350},
	{UID: "express", Label: "Express delivery (next working day)", AmountInCents: 695},
}

// walletAvailable reports whether the express wallet button should be shown
// for this cart.
func (s *service) walletAvailable(c context.Context, cartUID string) (bool, error) {
	basket, err := s.cartService.Get(c, cartUID)
	if err != nil {
		return false, myerrors.NewInternalError(fmt.Errorf("error fetching cart %s: %s", cartUID, err))
	}

	s.payer.UseAPIKey(s.resolveAPIKey(c))

	return s.payer.CanMakeWalletPayment(c, basket.TotalPrice(), supportedCurrency, supportedCountry), nil
}

// walletShippingOptions handles the sheet's shipping-address-changed event:
// the option list is fixed, only the total is recomputed.
func (s *service) walletShippingOptions(c context.Context, cartUID string) ([]ShippingOption, int64, error) {
	basket, err := s.cartService.Get(c, cartUID)
	if err != nil {
		return nil, 0, myerrors.NewInternalError(fmt.Errorf("error fetching cart %s: %s", cartUID, err))
	}

	total := basket.TotalPrice() + shippingOptions[0].AmountInCents

	return shippingOptions, total, nil
}

// shippingOptionByUID falls back to the default option for an unknown or
// omitted uid.
func shippingOptionByUID(uid string) ShippingOption {
	for _, option := range shippingOptions {
		if option.UID == uid {
			return option
		}
	}
	return shippingOptions[0]
}

// checkoutWithWallet handles the sheet's payment-method-selected event. Payer
// details from the wallet win over whatever was typed into the checkout form
// earlier; the form values serve as fallback for anything the wallet omits.
// Shipping details are persisted before the charge, like on the card path.
// The recorded amount includes the selected shipping option, so it matches
// the total quoted inside the sheet.
func (s *service) checkoutWithWallet(c context.Context, cartUID string, walletForm cartapi.WalletPaymentForm) (CheckoutContext, string, error) {
	form := s.mergeWithStored(c, cartUID, walletForm)
	option := shippingOptionByUID(walletForm.ShippingOptionUID)

	cc, err := s.saveShipping(c, cartUID, form, option.AmountInCents)
	if err != nil {
		return cc, WalletSheetFail, err
	}

	if cc.PaymentIntentUID == "" {
		err := myerrors.NewInvalidInputError(fmt.Errorf("missing or malformed payment client secret"))
		s.fail(c, &cc, err.Error())
		return cc, WalletSheetFail, err
	}

	err = s.transition(c, &cc, StateConfirmingPayment)
	if err != nil {
		return cc, WalletSheetFail, err
	}

	s.payer.UseAPIKey(s.resolveAPIKey(c))

	// Next actions are handled manually so the sheet gets its verdict first.
	result, err := s.payer.ConfirmPayment(c, cc.PaymentIntentUID, ConfirmRequest{
		PaymentMethodUID:         form.PaymentMethodID,
		HandleNextActionManually: true,
		BillingName:              cc.Name,
		BillingEmail:             cc.Email,
		BillingPhone:             cc.Phone,
		BillingAddress:           cc.BillingAddress,
	})
	if err != nil {
		s.fail(c, &cc, err.Error())
		return cc, WalletSheetFail, myerrors.NewInvalidInputError(err)
	}

	err = s.interpretResult(c, &cc, result)
	if err != nil {
		return cc, WalletSheetSuccess, err
	}

	return cc, WalletSheetSuccess, nil
}

func (s *service) mergeWithStored(c context.Context, cartUID string, walletForm cartapi.WalletPaymentForm) cartapi.CheckoutForm {
	form := cartapi.CheckoutForm{
		Name:                  walletForm.PayerName,
		Email:                 walletForm.PayerEmail,
		Phone:                 walletForm.PayerPhone,
		Shipping:              walletForm.Shipping,
		BillingSameAsShipping: true,
		ClientSecret:          walletForm.ClientSecret,
		PaymentMethodID:       walletForm.PaymentMethodID,
	}

	existing, found, err := s.checkoutStore.Get(c, cartUID)
	if err != nil {
		s.logger.Log(c, cartUID, mylog.SeverityWarn, "Error fetching checkout %s for wallet fallback: %s", cartUID, err)
		return form
	}
	if !found {
		return form
	}

	if form.Name == "" {
		form.Name = existing.Name
	}
	if form.Email == "" {
		form.Email = existing.Email
	}
	if form.Phone == "" {
		form.Phone = existing.Phone
	}
	if form.Shipping.Street == "" {
		form.Shipping = cartapi.Address{
			Unit:       existing.ShippingAddress.Unit,
			Street:     existing.ShippingAddress.Street,
			City:       existing.ShippingAddress.City,
			PostalCode: existing.ShippingAddress.PostalCode,
			Country:    existing.ShippingAddress.Country,
		}
	}
	if form.ClientSecret == "" {
		form.ClientSecret = existing.ClientSecret
	}

	return form
}
