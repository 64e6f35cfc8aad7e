package cart

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/roastworks/roasterybackend/lib/mycontext"
	"github.com/roastworks/roasterybackend/lib/myerrors"
	"github.com/roastworks/roasterybackend/lib/myhttp"
	"github.com/roastworks/roasterybackend/lib/mylog"
	"github.com/roastworks/roasterybackend/services/cartapi"
)

type webService struct {
	logger  mylog.Logger
	service *Service
}

func NewWebService(service *Service) *webService {
	return &webService{
		logger:  mylog.New("cartWeb"),
		service: service,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/api/cart/{cartUID}", s.getCartPage()).Methods("GET")
	router.HandleFunc("/api/cart/{cartUID}/items", s.addItemPage()).Methods("POST")
	router.HandleFunc("/api/cart/{cartUID}/items/{itemID}", s.updateQuantityPage()).Methods("PUT")
	router.HandleFunc("/api/cart/{cartUID}/items/{itemID}", s.removeItemPage()).Methods("DELETE")
	router.HandleFunc("/api/cart/{cartUID}/drawer/{action}", s.drawerPage()).Methods("PUT")
}

// cartResponse carries the cart plus its derived aggregates; a non-empty
// warning means a stock clamp rejected part of the request.
type cartResponse struct {
	Cart       Cart
	TotalItems int
	TotalPrice int64
	Warning    string `json:",omitempty"`
}

func newCartResponse(cart Cart, warning string) cartResponse {
	return cartResponse{
		Cart:       cart,
		TotalItems: cart.TotalItems(),
		TotalPrice: cart.TotalPrice(),
		Warning:    warning,
	}
}

func (s *webService) getCartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]

		cart, err := s.service.Get(c, cartUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, newCartResponse(cart, ""))
	}
}

func (s *webService) addItemPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]

		req, err := cartapi.NewAddItemRequestFromRequest(r)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		s.logger.Log(c, cartUID, mylog.SeverityInfo, "Add %d x %s to cart %s", req.Quantity, req.ProductUID, cartUID)

		cart, warning, err := s.service.AddItem(c, cartUID, LineItem{
			ID:          composeItemID(req),
			ProductType: req.ProductType,
			Name:        req.Name,
			UnitPrice:   req.UnitPrice,
			Image:       req.Image,
			Size:        req.Size,
			Grind:       req.Grind,
			SKU:         req.SKU,
			Stock:       req.Stock,
		}, req.Quantity)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, newCartResponse(cart, warning))
	}
}

func (s *webService) updateQuantityPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]
		itemID := mux.Vars(r)["itemID"]

		quantity, err := strconv.Atoi(r.URL.Query().Get("quantity"))
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("invalid quantity: %s", err))
			return
		}

		cart, err := s.service.UpdateQuantity(c, cartUID, itemID, quantity)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, newCartResponse(cart, ""))
	}
}

func (s *webService) removeItemPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]
		itemID := mux.Vars(r)["itemID"]

		cart, err := s.service.RemoveItem(c, cartUID, itemID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, newCartResponse(cart, ""))
	}
}

func (s *webService) drawerPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		cartUID := mux.Vars(r)["cartUID"]
		action := mux.Vars(r)["action"]

		var cart Cart
		var err error
		switch action {
		case "open":
			cart, err = s.service.Open(c, cartUID)
		case "close":
			cart, err = s.service.Close(c, cartUID)
		case "toggle":
			cart, err = s.service.Toggle(c, cartUID)
		default:
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("unknown drawer action %s", action))
			return
		}
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, newCartResponse(cart, ""))
	}
}

// composeItemID makes one line item per product-variant combination, so the
// same bean in a different grind gets its own line.
func composeItemID(req cartapi.AddItemRequest) string {
	id := req.ProductUID
	if req.Size != "" {
		id += "|" + req.Size
	}
	if req.Grind != "" {
		id += "|" + req.Grind
	}
	return id
}
