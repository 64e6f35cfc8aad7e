package checkout

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/roastworks/roasterybackend/lib/mycontext"
	"github.com/roastworks/roasterybackend/lib/myhttp"
	"github.com/roastworks/roasterybackend/lib/mylog"
	"github.com/roastworks/roasterybackend/lib/mypublisher"
	"github.com/roastworks/roasterybackend/lib/myqueue"
	"github.com/roastworks/roasterybackend/lib/mystore"
	"github.com/roastworks/roasterybackend/lib/mytime"
	"github.com/roastworks/roasterybackend/lib/myvault"
	"github.com/roastworks/roasterybackend/services/cartapi"
)

type webService struct {
	logger  mylog.Logger
	service *service
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(apiKey string, payer Payer, checkoutStore mystore.Store[CheckoutContext], cartService CartService, vault myvault.Vault, queue myqueue.TaskQueuer, publisher mypublisher.Publisher, nower mytime.Nower) (*webService, error) {
	logger := mylog.New("checkout")
	return &webService{
		logger:  logger,
		service: newService(apiKey, payer, checkoutStore, cartService, vault, queue, publisher, nower, logger),
	}, nil
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/checkout/{cartUID}", s.getCheckoutPage()).Methods("GET")
	router.HandleFunc("/api/checkout/{cartUID}/shipping", s.saveShippingPage()).Methods("POST")
	router.HandleFunc("/api/checkout/{cartUID}/confirm", s.confirmPage()).Methods("POST")
	router.HandleFunc("/api/checkout/{cartUID}/complete", s.completePage()).Methods("PUT")

	router.HandleFunc("/api/checkout/{cartUID}/wallet/availability", s.walletAvailabilityPage()).Methods("GET")
	router.HandleFunc("/api/checkout/{cartUID}/wallet/shippingoptions", s.walletShippingOptionsPage()).Methods("POST")
	router.HandleFunc("/api/checkout/{cartUID}/wallet/confirm", s.walletConfirmPage()).Methods("POST")

	err := s.service.CreateTopics(c)
	if err != nil {
		return fmt.Errorf("error creating topics: %s", err)
	}

	return nil
}

// checkoutResponse is what every checkout endpoint returns: enough for the
// page to decide between the confirmation redirect and an inline error.
type checkoutResponse struct {
	CheckoutUID   string
	State         State
	FailureReason string `json:",omitempty"`
	RedirectURL   string `json:",omitempty"`
}

func newCheckoutResponse(cc CheckoutContext) checkoutResponse {
	resp := checkoutResponse{
		CheckoutUID:   cc.CheckoutUID,
		State:         cc.State,
		FailureReason: cc.FailureReason,
	}
	if cc.State == StateSucceeded {
		resp.RedirectURL = fmt.Sprintf("/checkout/%s/confirmation", cc.CheckoutUID)
	}
	return resp
}

func (s *webService) getCheckoutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]

		cc, err := s.service.getCheckout(c, cartUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, newCheckoutResponse(cc))
	}
}

func (s *webService) saveShippingPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]

		form, err := cartapi.NewCheckoutFormFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		cc, err := s.service.saveShipping(c, cartUID, form, 0)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, newCheckoutResponse(cc))
	}
}

func (s *webService) confirmPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]

		form, err := cartapi.NewCheckoutFormFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		s.logger.Log(c, cartUID, mylog.SeverityInfo, "Confirm checkout %s", cartUID)

		cc, err := s.service.checkoutWithCard(c, cartUID, form)
		if err != nil {
			// The terminal state and reason are part of the response body so
			// the page can show them inline.
			errorWriter.WriteWithError(c, w, err, newCheckoutResponse(cc))
			return
		}

		errorWriter.Write(c, w, http.StatusOK, newCheckoutResponse(cc))
	}
}

// completePage is hit by the task queue after a successful payment, so it
// must be idempotent.
func (s *webService) completePage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]

		err := s.service.markComplete(c, cartUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.SuccessResponse{Message: fmt.Sprintf("order %s completed", cartUID)})
	}
}

type walletAvailabilityResponse struct {
	Available bool
}

func (s *webService) walletAvailabilityPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]

		available, err := s.service.walletAvailable(c, cartUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, walletAvailabilityResponse{Available: available})
	}
}

type walletShippingOptionsResponse struct {
	ShippingOptions []ShippingOption
	TotalInCents    int64
}

func (s *webService) walletShippingOptionsPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]

		options, total, err := s.service.walletShippingOptions(c, cartUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, walletShippingOptionsResponse{
			ShippingOptions: options,
			TotalInCents:    total,
		})
	}
}

type walletConfirmResponse struct {
	checkoutResponse
	SheetResult string
}

func (s *webService) walletConfirmPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]

		form, err := cartapi.NewWalletPaymentFormFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		s.logger.Log(c, cartUID, mylog.SeverityInfo, "Confirm wallet checkout %s", cartUID)

		cc, sheetResult, err := s.service.checkoutWithWallet(c, cartUID, form)
		resp := walletConfirmResponse{
			checkoutResponse: newCheckoutResponse(cc),
			SheetResult:      sheetResult,
		}
		if err != nil {
			errorWriter.WriteWithError(c, w, err, resp)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, resp)
	}
}
