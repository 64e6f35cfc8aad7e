package shop

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/roastworks/roasterybackend/lib/mycontext"
	"github.com/roastworks/roasterybackend/lib/myerrors"
	"github.com/roastworks/roasterybackend/lib/myhttp"
	"github.com/roastworks/roasterybackend/lib/mylog"
	"github.com/roastworks/roasterybackend/lib/mystore"
	"github.com/roastworks/roasterybackend/lib/myuuid"
	"github.com/roastworks/roasterybackend/services/cart"
	"github.com/roastworks/roasterybackend/services/catalog"
	"github.com/roastworks/roasterybackend/services/checkout"
)

//go:embed templates
var templateFolder embed.FS
var (
	indexPageTemplate        *template.Template
	productPageTemplate      *template.Template
	cartPageTemplate         *template.Template
	checkoutPageTemplate     *template.Template
	confirmationPageTemplate *template.Template
)

func init() {
	indexPageTemplate = parseTemplate("index.html")
	productPageTemplate = parseTemplate("product.html")
	cartPageTemplate = parseTemplate("cart.html")
	checkoutPageTemplate = parseTemplate("checkout.html")
	confirmationPageTemplate = parseTemplate("confirmation.html")
}

func parseTemplate(name string) *template.Template {
	return template.Must(template.New(name).Funcs(template.FuncMap{
		"price": formatPrice,
	}).ParseFS(templateFolder, "templates/"+name))
}

// formatPrice renders a minor-unit amount as pounds.
func formatPrice(cents int64) string {
	return fmt.Sprintf("£%d.%02d", cents/100, cents%100)
}

const cartCookieName = "roastworksCartUID"

type ProductCatalog interface {
	List(c context.Context, productType string) ([]catalog.Product, error)
	Get(c context.Context, productUID string) (catalog.Product, error)
}

type CartReader interface {
	Get(c context.Context, cartUID string) (cart.Cart, error)
}

type webService struct {
	logger        mylog.Logger
	catalog       ProductCatalog
	cartService   CartReader
	checkoutStore mystore.Store[checkout.CheckoutContext]
	uuider        myuuid.UUIDer
	publicKey     string
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(productCatalog ProductCatalog, cartService CartReader, checkoutStore mystore.Store[checkout.CheckoutContext], uuider myuuid.UUIDer, publicKey string) *webService {
	return &webService{
		logger:        mylog.New("shop"),
		catalog:       productCatalog,
		cartService:   cartService,
		checkoutStore: checkoutStore,
		uuider:        uuider,
		publicKey:     publicKey,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/", s.indexPage()).Methods("GET")
	router.HandleFunc("/product/{productUID}", s.productPage()).Methods("GET")
	router.HandleFunc("/cart", s.cartPage()).Methods("GET")
	router.HandleFunc("/checkout", s.checkoutPage()).Methods("GET")
	router.HandleFunc("/checkout/{checkoutUID}/confirmation", s.confirmationPage()).Methods("GET")
}

// ensureCartUID reads the cart uid cookie, minting one on the first visit.
func (s *webService) ensureCartUID(w http.ResponseWriter, r *http.Request) string {
	cookie, err := r.Cookie(cartCookieName)
	if err == nil && cookie.Value != "" {
		return cookie.Value
	}

	cartUID := s.uuider.Create()
	http.SetCookie(w, &http.Cookie{
		Name:     cartCookieName,
		Value:    cartUID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	return cartUID
}

type productGroup struct {
	ProductType string
	Products    []catalog.Product
}

type indexPageData struct {
	CartUID string
	Groups  []productGroup
}

func (s *webService) indexPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		cartUID := s.ensureCartUID(w, r)

		products, err := s.catalog.List(c, "")
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		s.renderPage(c, w, indexPageTemplate, indexPageData{
			CartUID: cartUID,
			Groups:  groupByType(products),
		})
	}
}

// groupByType keeps the catalog ordering within each group and orders the
// groups the way they appear in the assortment.
func groupByType(products []catalog.Product) []productGroup {
	groups := []productGroup{}
	index := map[string]int{}

	for _, product := range products {
		i, found := index[product.ProductType]
		if !found {
			groups = append(groups, productGroup{ProductType: product.ProductType})
			i = len(groups) - 1
			index[product.ProductType] = i
		}
		groups[i].Products = append(groups[i].Products, product)
	}

	return groups
}

type productPageData struct {
	CartUID string
	Product catalog.Product
}

func (s *webService) productPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		cartUID := s.ensureCartUID(w, r)
		productUID := mux.Vars(r)["productUID"]

		product, err := s.catalog.Get(c, productUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		s.renderPage(c, w, productPageTemplate, productPageData{
			CartUID: cartUID,
			Product: product,
		})
	}
}

type cartPageData struct {
	Cart       cart.Cart
	TotalItems int
	TotalPrice int64
}

func (s *webService) cartPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		cartUID := s.ensureCartUID(w, r)

		basket, err := s.cartService.Get(c, cartUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		s.renderPage(c, w, cartPageTemplate, cartPageData{
			Cart:       basket,
			TotalItems: basket.TotalItems(),
			TotalPrice: basket.TotalPrice(),
		})
	}
}

type checkoutPageData struct {
	Cart       cart.Cart
	TotalPrice int64
	PublicKey  string
}

func (s *webService) checkoutPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		cartUID := s.ensureCartUID(w, r)

		basket, err := s.cartService.Get(c, cartUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}
		if len(basket.Items) == 0 {
			http.Redirect(w, r, "/cart", http.StatusSeeOther)
			return
		}

		s.renderPage(c, w, checkoutPageTemplate, checkoutPageData{
			Cart:       basket,
			TotalPrice: basket.TotalPrice(),
			PublicKey:  s.publicKey,
		})
	}
}

func (s *webService) confirmationPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		checkoutUID := mux.Vars(r)["checkoutUID"]

		cc, found, err := s.checkoutStore.Get(c, checkoutUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInternalError(fmt.Errorf("error fetching checkout %s: %s", checkoutUID, err)))
			return
		}
		if !found {
			errorWriter.WriteError(c, w, 2, myerrors.NewNotFoundErrorf("checkout with uid %s not found", checkoutUID))
			return
		}

		s.renderPage(c, w, confirmationPageTemplate, cc)
	}
}

func (s *webService) renderPage(c context.Context, w http.ResponseWriter, t *template.Template, data interface{}) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	err := t.Execute(w, data)
	if err != nil {
		myhttp.NewWriter(s.logger).WriteError(c, w, 99, myerrors.NewInternalError(fmt.Errorf("error executing template: %s", err)))
	}
}
