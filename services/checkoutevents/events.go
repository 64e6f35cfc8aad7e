package checkoutevents

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/roastworks/roasterybackend/lib/myerrors"
	"github.com/roastworks/roasterybackend/lib/myevents"
)

const (
	TopicName                = "checkout"
	checkoutStartedName      = TopicName + ".started"
	shippingDetailsSavedName = TopicName + ".shippingDetailsSaved"
	orderCompletedName       = TopicName + ".orderCompleted"
)

type CheckoutEventService interface {
	OnCheckoutStarted(c context.Context, topic string, event CheckoutStarted) error
	OnShippingDetailsSaved(c context.Context, topic string, event ShippingDetailsSaved) error
	OnOrderCompleted(c context.Context, topic string, event OrderCompleted) error
}

func DispatchEvent(c context.Context, reader io.Reader, service CheckoutEventService) error {
	envelope, err := myevents.ParseEventEnvelope(reader)
	if err != nil {
		return myerrors.NewInvalidInputError(err)
	}

	switch envelope.EventTypeName {
	case checkoutStartedName:
		{
			event := CheckoutStarted{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnCheckoutStarted(c, envelope.Topic, event)
		}
	case shippingDetailsSavedName:
		{
			event := ShippingDetailsSaved{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnShippingDetailsSaved(c, envelope.Topic, event)
		}
	case orderCompletedName:
		{
			event := OrderCompleted{}
			err := json.Unmarshal([]byte(envelope.EventPayload), &event)
			if err != nil {
				return myerrors.NewInvalidInputError(err)
			}
			return service.OnOrderCompleted(c, envelope.Topic, event)
		}
	default:
		return myerrors.NewNotImplementedError(fmt.Errorf("unknown event %s", envelope.EventTypeName))
	}
}

type CheckoutStarted struct {
	CheckoutUID   string
	AmountInCents int64
	Currency      string
	ShopperEmail  string
}

func (e CheckoutStarted) GetEventTypeName() string {
	return checkoutStartedName
}

func (e CheckoutStarted) GetAggregateName() string {
	return e.CheckoutUID
}

type ShippingDetailsSaved struct {
	CheckoutUID      string
	PaymentIntentUID string
	City             string
	PostalCode       string
}

func (e ShippingDetailsSaved) GetEventTypeName() string {
	return shippingDetailsSavedName
}

func (e ShippingDetailsSaved) GetAggregateName() string {
	return e.CheckoutUID
}

type OrderCompleted struct {
	CheckoutUID      string
	PaymentIntentUID string
	AmountInCents    int64
	Currency         string
	ShopperName      string
	ShopperEmail     string
	Success          bool
}

func (e OrderCompleted) GetEventTypeName() string {
	return orderCompletedName
}

func (e OrderCompleted) GetAggregateName() string {
	return e.CheckoutUID
}
