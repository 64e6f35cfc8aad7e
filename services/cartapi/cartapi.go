package cartapi

import (
	"net/http"
	"net/url"

	formcodec "github.com/go-playground/form/v4"

	"github.com/roastworks/roasterybackend/lib/myerrors"
)

// AddItemRequest is what the product pages post when a shopper adds a
// product (with its chosen variant) to the cart.
type AddItemRequest struct {
	ProductUID  string `form:"productUid"`
	ProductType string `form:"productType"`
	Name        string `form:"name"`
	UnitPrice   int64  `form:"unitPrice"`
	Image       string `form:"image"`
	Quantity    int    `form:"quantity"`
	Size        string `form:"size"`
	Grind       string `form:"grind"`
	SKU         string `form:"sku"`
	Stock       int    `form:"stock"`
}

// CheckoutForm carries everything the checkout page submits.
type CheckoutForm struct {
	Name  string `form:"name"`
	Email string `form:"email"`
	Phone string `form:"phone"`

	Shipping Address `form:"shipping"`

	BillingSameAsShipping bool    `form:"billingSameAsShipping"`
	Billing               Address `form:"billing"`

	ClientSecret    string `form:"clientSecret"`
	PaymentMethodID string `form:"paymentMethodId"`
}

// WalletPaymentForm is what the wallet sheet posts once the shopper has
// picked a payment method. Payer fields come from the wallet itself and take
// precedence over whatever was typed into the checkout form.
type WalletPaymentForm struct {
	PayerName  string `form:"payerName"`
	PayerEmail string `form:"payerEmail"`
	PayerPhone string `form:"payerPhone"`

	Shipping          Address `form:"shipping"`
	ShippingOptionUID string  `form:"shippingOptionId"`

	ClientSecret    string `form:"clientSecret"`
	PaymentMethodID string `form:"paymentMethodId"`
}

type Address struct {
	Unit       string `form:"unit"`
	Street     string `form:"street"`
	City       string `form:"city"`
	PostalCode string `form:"postalCode"`
	Country    string `form:"country"`
}

func NewAddItemRequestFromRequest(r *http.Request) (AddItemRequest, error) {
	err := r.ParseForm()
	if err != nil {
		return AddItemRequest{}, myerrors.NewInvalidInputError(err)
	}
	req := AddItemRequest{}
	err = decode(&req, r.Form)
	if err != nil {
		return AddItemRequest{}, err
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}
	return req, nil
}

func NewCheckoutFormFromRequest(r *http.Request) (CheckoutForm, error) {
	err := r.ParseForm()
	if err != nil {
		return CheckoutForm{}, myerrors.NewInvalidInputError(err)
	}
	form := CheckoutForm{}
	err = decode(&form, r.Form)
	if err != nil {
		return CheckoutForm{}, err
	}
	return form, nil
}

func NewWalletPaymentFormFromRequest(r *http.Request) (WalletPaymentForm, error) {
	err := r.ParseForm()
	if err != nil {
		return WalletPaymentForm{}, myerrors.NewInvalidInputError(err)
	}
	form := WalletPaymentForm{}
	err = decode(&form, r.Form)
	if err != nil {
		return WalletPaymentForm{}, err
	}
	return form, nil
}

func decode(target interface{}, values url.Values) error {
	err := formcodec.NewDecoder().Decode(target, values)
	if err != nil {
		return myerrors.NewInvalidInputErrorf("error decoding form: %s", err)
	}
	return nil
}
