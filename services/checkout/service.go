package checkout

import (
	"context"
	"errors"
	"fmt"

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
	supportedCountry  = "GB"
	supportedCurrency = "gbp"
)

//go:generate mockgen -source=service.go -package checkout -destination cart_mock.go CartService
type CartService interface {
	Get(c context.Context, cartUID string) (cart.Cart, error)
	Clear(c context.Context, cartUID string) error
}

type service struct {
	apiKey        string
	payer         Payer
	checkoutStore mystore.Store[CheckoutContext]
	cartService   CartService
	vault         myvault.Vault
	queue         myqueue.TaskQueuer
	publisher     mypublisher.Publisher
	nower         mytime.Nower
	logger        mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(apiKey string, payer Payer, checkoutStore mystore.Store[CheckoutContext], cartService CartService, vault myvault.Vault, queue myqueue.TaskQueuer, publisher mypublisher.Publisher, nower mytime.Nower, logger mylog.Logger) *service {
	return &service{
		apiKey:        apiKey,
		payer:         payer,
		checkoutStore: checkoutStore,
		cartService:   cartService,
		vault:         vault,
		queue:         queue,
		publisher:     publisher,
		nower:         nower,
		logger:        logger,
	}
}

// resolveAPIKey prefers the vault-held credential over the configured one,
// so rotated keys take effect without a redeploy.
func (s *service) resolveAPIKey(c context.Context) string {
	cred, found, err := s.vault.Get(c, "stripe")
	if err == nil && found && cred.APIKey != "" {
		return cred.APIKey
	}
	return s.apiKey
}

func (s *service) CreateTopics(c context.Context) error {
	err := s.publisher.CreateTopic(c, checkoutevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", checkoutevents.TopicName, err)
	}
	return nil
}

// saveShipping validates the submitted details and persists them. It must
// succeed before any charge is attempted: a failure here aborts the flow
// without touching the payment provider. The recorded amount is the cart
// total plus the shipping amount of the entry path.
func (s *service) saveShipping(c context.Context, cartUID string, form cartapi.CheckoutForm, shippingAmount int64) (CheckoutContext, error) {
	now := s.nower.Now()

	s.logger.Log(c, cartUID, mylog.SeverityInfo, "Save shipping details for checkout %s", cartUID)

	cc := newCheckoutContext(cartUID, form, now)

	cc.State = StateValidating
	err := cc.validate()
	if err != nil {
		cc.State = StateFailed
		cc.FailureReason = err.Error()
		_ = s.storeContext(c, &cc)
		return cc, err
	}

	basket, err := s.cartService.Get(c, cartUID)
	if err != nil {
		return cc, myerrors.NewInternalError(fmt.Errorf("error fetching cart %s: %s", cartUID, err))
	}
	cc.AmountInCents = basket.TotalPrice() + shippingAmount
	cc.Currency = supportedCurrency

	cc.State = StateSubmittingShipping
	err = s.checkoutStore.RunInTransaction(c, func(c context.Context) error {
		// must be idempotent

		existing, found, err := s.checkoutStore.Get(c, cartUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching checkout %s: %s", cartUID, err))
		}
		if found && existing.inFlight() {
			return myerrors.NewInvalidInputError(fmt.Errorf("payment for checkout %s is already in progress", cartUID))
		}
		if found {
			cc.CreatedAt = existing.CreatedAt
		}

		err = s.storeContext(c, &cc)
		if err != nil {
			return err
		}

		if !found {
			err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.CheckoutStarted{
				CheckoutUID:   cartUID,
				AmountInCents: cc.AmountInCents,
				Currency:      cc.Currency,
				ShopperEmail:  cc.Email,
			})
			if err != nil {
				return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
			}
		}

		err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.ShippingDetailsSaved{
			CheckoutUID:      cartUID,
			PaymentIntentUID: cc.PaymentIntentUID,
			City:             cc.ShippingAddress.City,
			PostalCode:       cc.ShippingAddress.PostalCode,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
	if err != nil {
		return cc, err
	}

	return cc, nil
}

// checkoutWithCard is the direct submission path: persist shipping first,
// then confirm with the card-sourced payment method.
func (s *service) checkoutWithCard(c context.Context, cartUID string, form cartapi.CheckoutForm) (CheckoutContext, error) {
	// the checkout form offers no shipping options
	cc, err := s.saveShipping(c, cartUID, form, 0)
	if err != nil {
		// No charge was attempted
		return cc, err
	}

	s.payer.UseAPIKey(s.resolveAPIKey(c))

	return s.confirmPayment(c, cc, ConfirmRequest{
		PaymentMethodUID: form.PaymentMethodID,
		BillingName:      cc.Name,
		BillingEmail:     cc.Email,
		BillingPhone:     cc.Phone,
		BillingAddress:   cc.BillingAddress,
	})
}

// confirmPayment drives one payment confirmation to a terminal state.
func (s *service) confirmPayment(c context.Context, cc CheckoutContext, req ConfirmRequest) (CheckoutContext, error) {
	if cc.PaymentIntentUID == "" {
		err := myerrors.NewInvalidInputError(fmt.Errorf("missing or malformed payment client secret"))
		s.fail(c, &cc, err.Error())
		return cc, err
	}

	err := s.transition(c, &cc, StateConfirmingPayment)
	if err != nil {
		return cc, err
	}

	result, err := s.payer.ConfirmPayment(c, cc.PaymentIntentUID, req)
	if err != nil {
		// Provider-reported payment errors are shown verbatim
		s.fail(c, &cc, err.Error())
		return cc, myerrors.NewInvalidInputError(err)
	}

	err = s.interpretResult(c, &cc, result)
	return cc, err
}

// interpretResult maps the provider's status enum onto the state machine.
// It applies to the card path and the wallet path alike.
func (s *service) interpretResult(c context.Context, cc *CheckoutContext, result PaymentResult) error {
	switch result.Status {
	case PaymentStatusSucceeded:
		return s.finalize(c, cc)

	case PaymentStatusRequiresAction, PaymentStatusRequiresConfirmation:
		// One secondary-authentication round-trip, re-confirming with no
		// new payment method.
		err := s.transition(c, cc, StateAwaitingSecondaryAuth)
		if err != nil {
			return err
		}

		retry, err := s.payer.ConfirmPayment(c, cc.PaymentIntentUID, ConfirmRequest{})
		if err != nil || retry.Status != PaymentStatusSucceeded {
			s.fail(c, cc, "authentication required but failed")
			return myerrors.NewInvalidInputError(errors.New("authentication required but failed"))
		}
		return s.finalize(c, cc)

	case PaymentStatusRequiresPaymentMethod:
		reason := "payment was not accepted, please retry with a different payment method"
		s.fail(c, cc, reason)
		return myerrors.NewInvalidInputError(errors.New(reason))

	case PaymentStatusProcessing:
		// Not an error: the authoritative outcome arrives out-of-band, so
		// finalization proceeds optimistically.
		s.logger.Log(c, cc.CheckoutUID, mylog.SeverityInfo, "Payment for checkout %s still processing, finalizing optimistically", cc.CheckoutUID)
		return s.finalize(c, cc)

	default:
		reason := "payment could not be completed, please try again"
		s.fail(c, cc, reason)
		return myerrors.NewInvalidInputError(errors.New(reason))
	}
}

// finalize runs the success tail: best-effort order completion, clearing the
// cart, marking the checkout succeeded. Completion failures are logged but
// never surfaced: the shopper has paid.
func (s *service) finalize(c context.Context, cc *CheckoutContext) error {
	err := s.transition(c, cc, StateFinalizing)
	if err != nil {
		return err
	}

	err = s.queue.Enqueue(c, myqueue.Task{
		UID:            "complete_" + cc.CheckoutUID,
		WebhookURLPath: fmt.Sprintf("/api/checkout/%s/complete", cc.CheckoutUID),
		Payload:        []byte{},
	})
	if err != nil {
		s.logger.Log(c, cc.CheckoutUID, mylog.SeverityWarn, "Error enqueueing completion of order %s: %s", cc.CheckoutUID, err)
	}

	err = s.cartService.Clear(c, cc.CheckoutUID)
	if err != nil {
		s.logger.Log(c, cc.CheckoutUID, mylog.SeverityWarn, "Error clearing cart %s: %s", cc.CheckoutUID, err)
	}

	err = s.transition(c, cc, StateSucceeded)
	if err != nil {
		return err
	}

	s.logger.Log(c, cc.CheckoutUID, mylog.SeverityInfo, "Checkout %s succeeded", cc.CheckoutUID)

	return nil
}

// markComplete is invoked by the task queue after a successful payment. It
// must be idempotent: the queue retries on failure.
func (s *service) markComplete(c context.Context, cartUID string) error {
	return s.checkoutStore.RunInTransaction(c, func(c context.Context) error {
		cc, found, err := s.checkoutStore.Get(c, cartUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching checkout %s: %s", cartUID, err))
		}
		if !found {
			return myerrors.NewNotFoundError(fmt.Errorf("checkout with uid %s not found", cartUID))
		}
		if cc.Completed {
			return nil
		}

		cc.Completed = true
		err = s.storeContext(c, &cc)
		if err != nil {
			return err
		}

		err = s.publisher.Publish(c, checkoutevents.TopicName, checkoutevents.OrderCompleted{
			CheckoutUID:      cc.CheckoutUID,
			PaymentIntentUID: cc.PaymentIntentUID,
			AmountInCents:    cc.AmountInCents,
			Currency:         cc.Currency,
			ShopperName:      cc.Name,
			ShopperEmail:     cc.Email,
			Success:          true,
		})
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error publishing event: %s", err))
		}

		return nil
	})
}

func (s *service) getCheckout(c context.Context, cartUID string) (CheckoutContext, error) {
	cc, found, err := s.checkoutStore.Get(c, cartUID)
	if err != nil {
		return CheckoutContext{}, myerrors.NewInternalError(fmt.Errorf("error fetching checkout %s: %s", cartUID, err))
	}
	if !found {
		return CheckoutContext{}, myerrors.NewNotFoundError(fmt.Errorf("checkout with uid %s not found", cartUID))
	}
	return cc, nil
}

func (cc CheckoutContext) inFlight() bool {
	switch cc.State {
	case StateConfirmingPayment, StateAwaitingSecondaryAuth, StateFinalizing:
		return true
	}
	return false
}

func (s *service) transition(c context.Context, cc *CheckoutContext, state State) error {
	cc.State = state
	return s.storeContext(c, cc)
}

// fail records a terminal failure. The cart is deliberately left untouched
// so the shopper can resubmit.
func (s *service) fail(c context.Context, cc *CheckoutContext, reason string) {
	cc.State = StateFailed
	cc.FailureReason = reason
	err := s.storeContext(c, cc)
	if err != nil {
		s.logger.Log(c, cc.CheckoutUID, mylog.SeverityError, "Error storing failed checkout %s: %s", cc.CheckoutUID, err)
	}

	s.logger.Log(c, cc.CheckoutUID, mylog.SeverityWarn, "Checkout %s failed: %s", cc.CheckoutUID, reason)
}

func (s *service) storeContext(c context.Context, cc *CheckoutContext) error {
	now := s.nower.Now()
	cc.LastModified = &now
	err := s.checkoutStore.Put(c, cc.CheckoutUID, *cc)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error storing checkout %s: %s", cc.CheckoutUID, err))
	}
	return nil
}
