package notification

import (
	"context"
	"fmt"

	"github.com/roastworks/roasterybackend/lib/myerrors"
	"github.com/roastworks/roasterybackend/lib/myhttp"
	"github.com/roastworks/roasterybackend/lib/mylog"
	"github.com/roastworks/roasterybackend/lib/mypubsub"
	"github.com/roastworks/roasterybackend/lib/myqueue"
	"github.com/roastworks/roasterybackend/lib/mystore"
	"github.com/roastworks/roasterybackend/lib/mytime"
	"github.com/roastworks/roasterybackend/lib/myuuid"
	"github.com/roastworks/roasterybackend/services/checkoutevents"
)

const supportInbox = "hello@roastworks.coffee"

type service struct {
	messageStore mystore.Store[ContactMessage]
	emailSender  EmailSender
	queue        myqueue.TaskQueuer
	subscriber   mypubsub.PubSub
	uuider       myuuid.UUIDer
	nower        mytime.Nower
	logger       mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(messageStore mystore.Store[ContactMessage], emailSender EmailSender, queue myqueue.TaskQueuer, subscriber mypubsub.PubSub, uuider myuuid.UUIDer, nower mytime.Nower, logger mylog.Logger) *service {
	return &service{
		messageStore: messageStore,
		emailSender:  emailSender,
		queue:        queue,
		subscriber:   subscriber,
		uuider:       uuider,
		nower:        nower,
		logger:       logger,
	}
}

func (s *service) Subscribe(c context.Context) error {
	err := s.subscriber.CreateTopic(c, checkoutevents.TopicName)
	if err != nil {
		return fmt.Errorf("error creating topic %s: %s", checkoutevents.TopicName, err)
	}

	err = s.subscriber.Subscribe(c, checkoutevents.TopicName, myhttp.GuessHostnameWithScheme()+"/api/notification/event")
	if err != nil {
		return fmt.Errorf("error subscribing to topic %s: %s", checkoutevents.TopicName, err)
	}

	return nil
}

// submitContactMessage stores the message, then hands delivery to the task
// queue. A failed enqueue is logged only: the message itself is safe.
func (s *service) submitContactMessage(c context.Context, msg ContactMessage) (ContactMessage, error) {
	msg.UID = s.uuider.Create()
	msg.CreatedAt = s.nower.Now()

	err := s.messageStore.Put(c, msg.UID, msg)
	if err != nil {
		return ContactMessage{}, myerrors.NewInternalError(fmt.Errorf("error storing contact message: %s", err))
	}

	err = s.queue.Enqueue(c, myqueue.Task{
		UID:            "contact_email_" + msg.UID,
		WebhookURLPath: fmt.Sprintf("/api/notification/email/%s", msg.UID),
		Payload:        []byte{},
	})
	if err != nil {
		s.logger.Log(c, msg.UID, mylog.SeverityWarn, "Error enqueueing email for contact message %s: %s", msg.UID, err)
	}

	return msg, nil
}

// sendQueuedEmail is driven by the task queue, so it must be idempotent.
func (s *service) sendQueuedEmail(c context.Context, messageUID string) error {
	return s.messageStore.RunInTransaction(c, func(c context.Context) error {
		msg, found, err := s.messageStore.Get(c, messageUID)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error fetching contact message %s: %s", messageUID, err))
		}
		if !found {
			return myerrors.NewNotFoundErrorf("contact message %s not found", messageUID)
		}
		if msg.EmailedAt != nil {
			return nil
		}

		err = s.emailSender.Send(c, EmailMessage{
			To:      supportInbox,
			Subject: fmt.Sprintf("Contact form: %s", msg.Subject),
			Body:    fmt.Sprintf("From: %s <%s>\n\n%s", msg.Name, msg.Email, msg.Body),
		})
		if err != nil {
			return myerrors.NewUnavailableError(err)
		}

		now := s.nower.Now()
		msg.EmailedAt = &now
		err = s.messageStore.Put(c, msg.UID, msg)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error storing contact message %s: %s", msg.UID, err))
		}

		return nil
	})
}

func (s *service) OnCheckoutStarted(c context.Context, topic string, event checkoutevents.CheckoutStarted) error {
	s.logger.Log(c, event.CheckoutUID, mylog.SeverityDebug, "Checkout %s started", event.CheckoutUID)
	return nil
}

func (s *service) OnShippingDetailsSaved(c context.Context, topic string, event checkoutevents.ShippingDetailsSaved) error {
	s.logger.Log(c, event.CheckoutUID, mylog.SeverityDebug, "Shipping details saved for checkout %s", event.CheckoutUID)
	return nil
}

// OnOrderCompleted emails the order confirmation. Email trouble is logged,
// never propagated: the order itself has already completed.
func (s *service) OnOrderCompleted(c context.Context, topic string, event checkoutevents.OrderCompleted) error {
	if !event.Success || event.ShopperEmail == "" {
		return nil
	}

	err := s.emailSender.Send(c, EmailMessage{
		To:      event.ShopperEmail,
		Subject: fmt.Sprintf("Your Roastworks order %s", event.CheckoutUID),
		Body: fmt.Sprintf("Hi %s,\n\nThanks for your order. We charged %s and will start roasting shortly.\n\nRoastworks",
			event.ShopperName, formatAmount(event.AmountInCents, event.Currency)),
	})
	if err != nil {
		s.logger.Log(c, event.CheckoutUID, mylog.SeverityWarn, "Error emailing confirmation for order %s: %s", event.CheckoutUID, err)
	}

	return nil
}

func formatAmount(amountInCents int64, currency string) string {
	symbol := currency
	if currency == "gbp" {
		symbol = "£"
	}
	return fmt.Sprintf("%s%d.%02d", symbol, amountInCents/100, amountInCents%100)
}
