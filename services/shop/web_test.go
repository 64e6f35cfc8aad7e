package shop

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"

	"github.com/roastworks/roasterybackend/lib/mystore"
	"github.com/roastworks/roasterybackend/lib/myuuid"
	"github.com/roastworks/roasterybackend/services/cart"
	"github.com/roastworks/roasterybackend/services/catalog"
	"github.com/roastworks/roasterybackend/services/checkout"
)

type fakeCatalog struct {
	products []catalog.Product
}

func (f fakeCatalog) List(c context.Context, productType string) ([]catalog.Product, error) {
	return f.products, nil
}

func (f fakeCatalog) Get(c context.Context, productUID string) (catalog.Product, error) {
	return f.products[0], nil
}

type fakeCartReader struct {
	cart cart.Cart
}

func (f fakeCartReader) Get(c context.Context, cartUID string) (cart.Cart, error) {
	return f.cart, nil
}

func TestShopPages(t *testing.T) {
	t.Run("Index groups products by type and mints a cart cookie", func(t *testing.T) {
		router, _ := setupShop(t)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		resp := httptest.NewRecorder()

		router.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "Ethiopia Yirgacheffe")
		assert.Contains(t, resp.Body.String(), "£11.50")

		cookies := resp.Result().Cookies()
		assert.Len(t, cookies, 1)
		assert.Equal(t, cartCookieName, cookies[0].Name)
	})

	t.Run("An existing cart cookie is reused", func(t *testing.T) {
		router, _ := setupShop(t)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: cartCookieName, Value: "cart-1"})
		resp := httptest.NewRecorder()

		router.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Empty(t, resp.Result().Cookies())
	})

	t.Run("Checkout page redirects to the cart when it is empty", func(t *testing.T) {
		router, _ := setupShop(t)

		req := httptest.NewRequest(http.MethodGet, "/checkout", nil)
		resp := httptest.NewRecorder()

		router.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusSeeOther, resp.Code)
		assert.Equal(t, "/cart", resp.Header().Get("Location"))
	})

	t.Run("Confirmation page renders the completed checkout", func(t *testing.T) {
		router, checkoutStore := setupShop(t)

		err := checkoutStore.Put(context.TODO(), "cart-1", checkout.CheckoutContext{
			CheckoutUID: "cart-1",
			Name:        "Jo Bloggs",
			Email:       "jo@example.com",
			State:       checkout.StateSucceeded,
		})
		assert.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/checkout/cart-1/confirmation", nil)
		resp := httptest.NewRecorder()

		router.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusOK, resp.Code)
		assert.Contains(t, resp.Body.String(), "Jo Bloggs")
		assert.Contains(t, resp.Body.String(), "cart-1")
	})

	t.Run("Confirmation of an unknown checkout is a 404", func(t *testing.T) {
		router, _ := setupShop(t)

		req := httptest.NewRequest(http.MethodGet, "/checkout/missing/confirmation", nil)
		resp := httptest.NewRecorder()

		router.ServeHTTP(resp, req)

		assert.Equal(t, http.StatusNotFound, resp.Code)
	})
}

func setupShop(t *testing.T) (*mux.Router, mystore.Store[checkout.CheckoutContext]) {
	c := context.TODO()

	checkoutStore, _, _ := mystore.New[checkout.CheckoutContext](c)

	sut := NewWebService(
		fakeCatalog{products: []catalog.Product{
			{UID: "coffee_yirgacheffe", ProductType: catalog.ProductTypeCoffee, Name: "Ethiopia Yirgacheffe", PriceInCents: 1150},
		}},
		fakeCartReader{},
		checkoutStore,
		myuuid.RealUUIDer{},
		"pk_test_123",
	)

	router := mux.NewRouter()
	sut.RegisterEndpoints(c, router)

	return router, checkoutStore
}
