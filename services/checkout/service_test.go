package checkout

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/roastworks/roasterybackend/lib/myerrors"
	"github.com/roastworks/roasterybackend/lib/mylog"
	"github.com/roastworks/roasterybackend/lib/mypublisher"
	"github.com/roastworks/roasterybackend/lib/myqueue"
	"github.com/roastworks/roasterybackend/lib/mystore"
	"github.com/roastworks/roasterybackend/lib/mytime"
	"github.com/roastworks/roasterybackend/lib/myvault"
	"github.com/roastworks/roasterybackend/services/cart"
	"github.com/roastworks/roasterybackend/services/cartapi"
	"github.com/roastworks/roasterybackend/services/checkoutevents"
)

const (
	testAPIKey       = "sk_test_123"
	testClientSecret = "pi_123_secret_456"
	testIntentUID    = "pi_123"
)

func TestCheckoutWithCard(t *testing.T) {
	t.Run("Happy path saves shipping, confirms once and clears the cart", func(t *testing.T) {
		c, sut, m := setupCheckout(t)

		// given
		m.cartService.EXPECT().Get(gomock.Any(), "cart-1").Return(basketWithBeans(), nil)
		m.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, checkoutevents.CheckoutStarted{
			CheckoutUID:   "cart-1",
			AmountInCents: 2300,
			Currency:      "gbp",
			ShopperEmail:  "jo@example.com",
		}).Return(nil)
		m.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, checkoutevents.ShippingDetailsSaved{
			CheckoutUID:      "cart-1",
			PaymentIntentUID: testIntentUID,
			City:             "London",
			PostalCode:       "SW1A 1AA",
		}).Return(nil)
		m.payer.EXPECT().ConfirmPayment(gomock.Any(), testIntentUID, gomock.Any()).
			Return(PaymentResult{Status: PaymentStatusSucceeded}, nil)
		m.queue.EXPECT().Enqueue(gomock.Any(), myqueue.Task{
			UID:            "complete_cart-1",
			WebhookURLPath: "/api/checkout/cart-1/complete",
			Payload:        []byte{},
		}).Return(nil)
		m.cartService.EXPECT().Clear(gomock.Any(), "cart-1").Return(nil)

		// when
		cc, err := sut.checkoutWithCard(c, "cart-1", validForm())

		// then
		assert.NoError(t, err)
		assert.Equal(t, StateSucceeded, cc.State)
		assert.Equal(t, int64(2300), cc.AmountInCents)

		stored, found, _ := sut.checkoutStore.Get(c, "cart-1")
		assert.True(t, found)
		assert.Equal(t, StateSucceeded, stored.State)
	})

	t.Run("Secondary authentication retries the confirmation once", func(t *testing.T) {
		c, sut, m := setupCheckout(t)

		m.cartService.EXPECT().Get(gomock.Any(), "cart-1").Return(basketWithBeans(), nil)
		m.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil).Times(2)
		first := m.payer.EXPECT().ConfirmPayment(gomock.Any(), testIntentUID, gomock.Any()).
			Return(PaymentResult{Status: PaymentStatusRequiresAction}, nil)
		// the retry carries no payment method, the intent keeps the first one
		m.payer.EXPECT().ConfirmPayment(gomock.Any(), testIntentUID, ConfirmRequest{}).
			Return(PaymentResult{Status: PaymentStatusSucceeded}, nil).After(first)
		m.queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil)
		m.cartService.EXPECT().Clear(gomock.Any(), "cart-1").Return(nil)

		cc, err := sut.checkoutWithCard(c, "cart-1", validForm())

		assert.NoError(t, err)
		assert.Equal(t, StateSucceeded, cc.State)
	})

	t.Run("Failed secondary authentication fails with a distinct reason", func(t *testing.T) {
		c, sut, m := setupCheckout(t)

		m.cartService.EXPECT().Get(gomock.Any(), "cart-1").Return(basketWithBeans(), nil)
		m.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil).Times(2)
		first := m.payer.EXPECT().ConfirmPayment(gomock.Any(), testIntentUID, gomock.Any()).
			Return(PaymentResult{Status: PaymentStatusRequiresAction}, nil)
		m.payer.EXPECT().ConfirmPayment(gomock.Any(), testIntentUID, ConfirmRequest{}).
			Return(PaymentResult{Status: PaymentStatusRequiresAction}, nil).After(first)
		// the cart must stay intact on failure

		cc, err := sut.checkoutWithCard(c, "cart-1", validForm())

		assert.Error(t, err)
		assert.Equal(t, StateFailed, cc.State)
		assert.Equal(t, "authentication required but failed", cc.FailureReason)
	})

	t.Run("Declined payment asks for a different payment method", func(t *testing.T) {
		c, sut, m := setupCheckout(t)

		m.cartService.EXPECT().Get(gomock.Any(), "cart-1").Return(basketWithBeans(), nil)
		m.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil).Times(2)
		m.payer.EXPECT().ConfirmPayment(gomock.Any(), testIntentUID, gomock.Any()).
			Return(PaymentResult{Status: PaymentStatusRequiresPaymentMethod}, nil)

		cc, err := sut.checkoutWithCard(c, "cart-1", validForm())

		assert.Error(t, err)
		assert.Equal(t, StateFailed, cc.State)
		assert.Contains(t, cc.FailureReason, "different payment method")
	})

	t.Run("Provider payment error is surfaced verbatim", func(t *testing.T) {
		c, sut, m := setupCheckout(t)

		m.cartService.EXPECT().Get(gomock.Any(), "cart-1").Return(basketWithBeans(), nil)
		m.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil).Times(2)
		m.payer.EXPECT().ConfirmPayment(gomock.Any(), testIntentUID, gomock.Any()).
			Return(PaymentResult{}, errors.New("Your card has insufficient funds."))

		cc, err := sut.checkoutWithCard(c, "cart-1", validForm())

		assert.Error(t, err)
		assert.Equal(t, "Your card has insufficient funds.", cc.FailureReason)
		assert.Equal(t, 400, myerrors.GetHttpStatus(err))
	})

	t.Run("A still processing payment finalizes optimistically", func(t *testing.T) {
		c, sut, m := setupCheckout(t)

		m.cartService.EXPECT().Get(gomock.Any(), "cart-1").Return(basketWithBeans(), nil)
		m.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil).Times(2)
		m.payer.EXPECT().ConfirmPayment(gomock.Any(), testIntentUID, gomock.Any()).
			Return(PaymentResult{Status: PaymentStatusProcessing}, nil)
		m.queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil)
		m.cartService.EXPECT().Clear(gomock.Any(), "cart-1").Return(nil)

		cc, err := sut.checkoutWithCard(c, "cart-1", validForm())

		assert.NoError(t, err)
		assert.Equal(t, StateSucceeded, cc.State)
	})

	t.Run("Validation failure aborts before any network call", func(t *testing.T) {
		c, sut, _ := setupCheckout(t)

		form := validForm()
		form.Shipping.PostalCode = "no such code"

		cc, err := sut.checkoutWithCard(c, "cart-1", form)

		assert.Error(t, err)
		assert.Equal(t, 400, myerrors.GetHttpStatus(err))
		assert.Equal(t, StateFailed, cc.State)
	})

	t.Run("Failure to persist shipping aborts before any charge", func(t *testing.T) {
		c, sut, m := setupCheckout(t)

		m.cartService.EXPECT().Get(gomock.Any(), "cart-1").Return(basketWithBeans(), nil)
		m.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).
			Return(errors.New("pubsub down"))
		// no ConfirmPayment expected: the provider must not be touched

		_, err := sut.checkoutWithCard(c, "cart-1", validForm())

		assert.Error(t, err)
	})

	t.Run("Missing client secret fails without charging", func(t *testing.T) {
		c, sut, m := setupCheckout(t)

		m.cartService.EXPECT().Get(gomock.Any(), "cart-1").Return(basketWithBeans(), nil)
		m.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil).Times(2)

		form := validForm()
		form.ClientSecret = "garbage"

		cc, err := sut.checkoutWithCard(c, "cart-1", form)

		assert.Error(t, err)
		assert.Equal(t, StateFailed, cc.State)
	})
}

func TestMarkComplete(t *testing.T) {
	t.Run("Completion publishes the order event exactly once", func(t *testing.T) {
		c, sut, m := setupCheckout(t)

		err := sut.checkoutStore.Put(c, "cart-1", CheckoutContext{
			CheckoutUID:      "cart-1",
			Name:             "Jo Bloggs",
			Email:            "jo@example.com",
			PaymentIntentUID: testIntentUID,
			AmountInCents:    2300,
			Currency:         "gbp",
			State:            StateSucceeded,
		})
		assert.NoError(t, err)

		m.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, checkoutevents.OrderCompleted{
			CheckoutUID:      "cart-1",
			PaymentIntentUID: testIntentUID,
			AmountInCents:    2300,
			Currency:         "gbp",
			ShopperName:      "Jo Bloggs",
			ShopperEmail:     "jo@example.com",
			Success:          true,
		}).Return(nil).Times(1)

		// when: the task queue retries
		assert.NoError(t, sut.markComplete(c, "cart-1"))
		assert.NoError(t, sut.markComplete(c, "cart-1"))
	})

	t.Run("Completing an unknown checkout is a not-found", func(t *testing.T) {
		c, sut, _ := setupCheckout(t)

		err := sut.markComplete(c, "missing")

		assert.Error(t, err)
		assert.Equal(t, 404, myerrors.GetHttpStatus(err))
	})
}

type checkoutMocks struct {
	payer       *MockPayer
	cartService *MockCartService
	queue       *myqueue.MockTaskQueuer
	publisher   *mypublisher.MockPublisher
}

func setupCheckout(t *testing.T) (context.Context, *service, checkoutMocks) {
	ctrl := gomock.NewController(t)
	c := context.TODO()

	checkoutStore, _, _ := mystore.New[CheckoutContext](c)
	vault, _, _ := myvault.New(c)
	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	m := checkoutMocks{
		payer:       NewMockPayer(ctrl),
		cartService: NewMockCartService(ctrl),
		queue:       myqueue.NewMockTaskQueuer(ctrl),
		publisher:   mypublisher.NewMockPublisher(ctrl),
	}
	m.payer.EXPECT().UseAPIKey(testAPIKey).AnyTimes()

	sut := newService(testAPIKey, m.payer, checkoutStore, m.cartService, vault, m.queue, m.publisher, nower, mylog.New("checkoutTest"))

	return c, sut, m
}

func validForm() cartapi.CheckoutForm {
	return cartapi.CheckoutForm{
		Name:  "Jo Bloggs",
		Email: "jo@example.com",
		Phone: "+44 20 7946 0958",
		Shipping: cartapi.Address{
			Street:     "10 Downing Street",
			City:       "London",
			PostalCode: "sw1a1aa",
		},
		BillingSameAsShipping: true,
		ClientSecret:          testClientSecret,
		PaymentMethodID:       "pm_123",
	}
}

func basketWithBeans() cart.Cart {
	return cart.Cart{
		UID: "cart-1",
		Items: []cart.LineItem{
			{ID: "coffee_yirgacheffe|250g", Name: "Ethiopia Yirgacheffe", UnitPrice: 1150, Quantity: 2, Stock: 10},
		},
	}
}
