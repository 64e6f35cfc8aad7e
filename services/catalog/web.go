package catalog

import (
	"context"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/roastworks/roasterybackend/lib/mycontext"
	"github.com/roastworks/roasterybackend/lib/myhttp"
	"github.com/roastworks/roasterybackend/lib/mylog"
	"github.com/roastworks/roasterybackend/lib/mystore"
	"github.com/roastworks/roasterybackend/lib/mytime"
)

type webService struct {
	logger  mylog.Logger
	service *service
}

func NewWebService(productStore mystore.Store[Product], nower mytime.Nower) *webService {
	logger := mylog.New("catalog")
	return &webService{
		logger:  logger,
		service: newService(productStore, nower, logger),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/products", s.listProductsPage()).Methods("GET")
	router.HandleFunc("/api/products/{productUID}", s.productDetailPage()).Methods("GET")

	return s.service.seedWhenEmpty(c)
}

// Lister gives other services read access without dragging in the web layer.
func (s *webService) Lister() *service {
	return s.service
}

func (s *webService) listProductsPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		productType := r.URL.Query().Get("type")

		s.logger.Log(c, "", mylog.SeverityInfo, "Fetch products (type=%s)", productType)

		products, err := s.service.listProducts(c, productType)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, products)
	}
}

func (s *webService) productDetailPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		productUID := mux.Vars(r)["productUID"]

		product, err := s.service.getProduct(c, productUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, product)
	}
}

// List and Get are the programmatic surface used by the shop pages.
func (s *service) List(c context.Context, productType string) ([]Product, error) {
	return s.listProducts(c, productType)
}

func (s *service) Get(c context.Context, productUID string) (Product, error) {
	return s.getProduct(c, productUID)
}
