package checkout

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/roastworks/roasterybackend/lib/mypublisher"
	"github.com/roastworks/roasterybackend/lib/myqueue"
	"github.com/roastworks/roasterybackend/lib/mystore"
	"github.com/roastworks/roasterybackend/lib/mytime"
	"github.com/roastworks/roasterybackend/lib/myvault"
	"github.com/roastworks/roasterybackend/services/checkoutevents"
)

func TestCheckoutWebService(t *testing.T) {
	t.Run("Confirm endpoint returns the redirect on success", func(t *testing.T) {
		router, m := setupWeb(t)

		m.cartService.EXPECT().Get(gomock.Any(), "cart-1").Return(basketWithBeans(), nil)
		m.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil).Times(2)
		m.payer.EXPECT().ConfirmPayment(gomock.Any(), testIntentUID, gomock.Any()).
			Return(PaymentResult{Status: PaymentStatusSucceeded}, nil)
		m.queue.EXPECT().Enqueue(gomock.Any(), gomock.Any()).Return(nil)
		m.cartService.EXPECT().Clear(gomock.Any(), "cart-1").Return(nil)

		req := httptest.NewRequest(http.MethodPost, "/api/checkout/cart-1/confirm", strings.NewReader(checkoutFormBody()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp := httptest.NewRecorder()

		router.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"State": "succeeded"`)
		assert.Contains(t, resp.Body.String(), "/checkout/cart-1/confirmation")
	})

	t.Run("Confirm endpoint reports the failure reason inline", func(t *testing.T) {
		router, m := setupWeb(t)

		m.cartService.EXPECT().Get(gomock.Any(), "cart-1").Return(basketWithBeans(), nil)
		m.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil).Times(2)
		m.payer.EXPECT().ConfirmPayment(gomock.Any(), testIntentUID, gomock.Any()).
			Return(PaymentResult{Status: PaymentStatusRequiresPaymentMethod}, nil)

		req := httptest.NewRequest(http.MethodPost, "/api/checkout/cart-1/confirm", strings.NewReader(checkoutFormBody()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		resp := httptest.NewRecorder()

		router.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Contains(t, resp.Body.String(), `"State": "failed"`)
		assert.Contains(t, resp.Body.String(), "different payment method")
	})

	t.Run("Complete endpoint is safe to retry", func(t *testing.T) {
		router, m := setupWeb(t)

		err := m.checkoutStore.Put(context.TODO(), "cart-1", CheckoutContext{
			CheckoutUID:   "cart-1",
			Email:         "jo@example.com",
			AmountInCents: 2300,
			Currency:      "gbp",
			State:         StateSucceeded,
		})
		assert.NoError(t, err)
		m.publisher.EXPECT().Publish(gomock.Any(), checkoutevents.TopicName, gomock.Any()).Return(nil).Times(1)

		for i := 0; i < 2; i++ {
			req := httptest.NewRequest(http.MethodPut, "/api/checkout/cart-1/complete", nil)
			resp := httptest.NewRecorder()

			router.ServeHTTP(resp, req)

			assert.Equal(t, http.StatusOK, resp.Code)
		}
	})

	t.Run("Wallet availability endpoint reflects the payer capability", func(t *testing.T) {
		router, m := setupWeb(t)

		m.cartService.EXPECT().Get(gomock.Any(), "cart-1").Return(basketWithBeans(), nil)
		m.payer.EXPECT().CanMakeWalletPayment(gomock.Any(), int64(2300), "gbp", "GB").Return(false)

		req := httptest.NewRequest(http.MethodGet, "/api/checkout/cart-1/wallet/availability", nil)
		resp := httptest.NewRecorder()

		router.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), `"Available": false`)
	})
}

type webMocks struct {
	checkoutMocks
	checkoutStore mystore.Store[CheckoutContext]
}

func setupWeb(t *testing.T) (*mux.Router, webMocks) {
	ctrl := gomock.NewController(t)
	c := context.TODO()

	checkoutStore, _, _ := mystore.New[CheckoutContext](c)
	vault, _, _ := myvault.New(c)
	nower := mytime.NewMockNower(ctrl)
	nower.EXPECT().Now().Return(mytime.ExampleTime).AnyTimes()

	m := webMocks{
		checkoutMocks: checkoutMocks{
			payer:       NewMockPayer(ctrl),
			cartService: NewMockCartService(ctrl),
			queue:       myqueue.NewMockTaskQueuer(ctrl),
			publisher:   mypublisher.NewMockPublisher(ctrl),
		},
		checkoutStore: checkoutStore,
	}
	m.payer.EXPECT().UseAPIKey(testAPIKey).AnyTimes()
	m.publisher.EXPECT().CreateTopic(gomock.Any(), checkoutevents.TopicName).Return(nil)

	sut, err := NewWebService(testAPIKey, m.payer, checkoutStore, m.cartService, vault, m.queue, m.publisher, nower)
	assert.NoError(t, err)

	router := mux.NewRouter()
	err = sut.RegisterEndpoints(c, router)
	assert.NoError(t, err)

	return router, m
}

func checkoutFormBody() string {
	form := validForm()
	values := url.Values{}
	values.Set("name", form.Name)
	values.Set("email", form.Email)
	values.Set("phone", form.Phone)
	values.Set("shipping.street", form.Shipping.Street)
	values.Set("shipping.city", form.Shipping.City)
	values.Set("shipping.postalCode", form.Shipping.PostalCode)
	values.Set("billingSameAsShipping", "true")
	values.Set("clientSecret", form.ClientSecret)
	values.Set("paymentMethodId", form.PaymentMethodID)
	return values.Encode()
}
