package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"

	"github.com/roastworks/roasterybackend/lib/myhttpclient"
	"github.com/roastworks/roasterybackend/lib/mypublisher"
	"github.com/roastworks/roasterybackend/lib/mypubsub"
	"github.com/roastworks/roasterybackend/lib/myqueue"
	"github.com/roastworks/roasterybackend/lib/mystore"
	"github.com/roastworks/roasterybackend/lib/mytime"
	"github.com/roastworks/roasterybackend/lib/myuuid"
	"github.com/roastworks/roasterybackend/lib/myvault"
	"github.com/roastworks/roasterybackend/services/addresssearch"
	"github.com/roastworks/roasterybackend/services/cart"
	"github.com/roastworks/roasterybackend/services/catalog"
	"github.com/roastworks/roasterybackend/services/checkout"
	"github.com/roastworks/roasterybackend/services/notification"
	"github.com/roastworks/roasterybackend/services/shop"
)

func main() {
	c := context.Background()

	router := mux.NewRouter()
	nower := mytime.RealNower{}
	uuider := myuuid.RealUUIDer{}

	// infrastructure

	pubsub, pubsubCleanup, err := mypubsub.New(c)
	if err != nil {
		log.Fatalf("Error creating pubsub: %s", err)
	}
	defer pubsubCleanup()

	queue, queueCleanup, err := myqueue.New(c)
	if err != nil {
		log.Fatalf("Error creating task queue: %s", err)
	}
	defer queueCleanup()

	publisher, publisherCleanup, err := mypublisher.New(c, pubsub, queue, nower)
	if err != nil {
		log.Fatalf("Error creating publisher: %s", err)
	}
	defer publisherCleanup()
	publisher.RegisterEndpoints(c, router)

	vault, vaultCleanup, err := myvault.New(c)
	if err != nil {
		log.Fatalf("Error creating vault: %s", err)
	}
	defer vaultCleanup()

	// services

	productStore, productStoreCleanup, err := mystore.New[catalog.Product](c)
	if err != nil {
		log.Fatalf("Error creating product store: %s", err)
	}
	defer productStoreCleanup()

	catalogService := catalog.NewWebService(productStore, nower)
	err = catalogService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error starting catalog service: %s", err)
	}

	cartStore, cartStoreCleanup, err := mystore.New[cart.Cart](c)
	if err != nil {
		log.Fatalf("Error creating cart store: %s", err)
	}
	defer cartStoreCleanup()

	cartService := cart.NewService(cartStore, nower)
	cart.NewWebService(cartService).RegisterEndpoints(c, router)

	checkoutStore, checkoutStoreCleanup, err := mystore.New[checkout.CheckoutContext](c)
	if err != nil {
		log.Fatalf("Error creating checkout store: %s", err)
	}
	defer checkoutStoreCleanup()

	checkoutService, err := checkout.NewWebService(
		os.Getenv("STRIPE_API_KEY"),
		checkout.NewPayer(),
		checkoutStore,
		cartService,
		vault,
		queue,
		publisher,
		nower,
	)
	if err != nil {
		log.Fatalf("Error creating checkout service: %s", err)
	}
	err = checkoutService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error starting checkout service: %s", err)
	}

	addressProvider, err := addresssearch.NewGoogleProvider(os.Getenv("MAPS_API_KEY"))
	if err != nil {
		log.Fatalf("Error creating address provider: %s", err)
	}
	searchService := addresssearch.NewService(addressProvider, uuider, mytime.RealScheduler{})
	addresssearch.NewWebService(searchService).RegisterEndpoints(c, router)

	messageStore, messageStoreCleanup, err := mystore.New[notification.ContactMessage](c)
	if err != nil {
		log.Fatalf("Error creating contact message store: %s", err)
	}
	defer messageStoreCleanup()

	emailSender := notification.NewEmailSender(os.Getenv("EMAIL_API_URL"), os.Getenv("EMAIL_API_KEY"), myhttpclient.NewJSONHTTPClient())
	notificationService := notification.NewWebService(messageStore, emailSender, queue, pubsub, uuider, nower)
	err = notificationService.RegisterEndpoints(c, router)
	if err != nil {
		log.Fatalf("Error starting notification service: %s", err)
	}

	shop.NewWebService(
		catalogService.Lister(),
		cartService,
		checkoutStore,
		uuider,
		os.Getenv("STRIPE_PUBLIC_KEY"),
	).RegisterEndpoints(c, router)

	startWebServerBlocking(router)
}

func startWebServerBlocking(router *mux.Router) {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Starting webserver on port %s (try http://localhost:%s)", port, port)
	err := http.ListenAndServe(fmt.Sprintf(":%s", port), router)
	if err != nil {
		log.Fatalf("Error starting webserver on port %s: %s", port, err)
	}
}
