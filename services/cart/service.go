package cart

import (
	"context"
	"fmt"

	"github.com/roastworks/roasterybackend/lib/myerrors"
	"github.com/roastworks/roasterybackend/lib/mylog"
	"github.com/roastworks/roasterybackend/lib/mystore"
	"github.com/roastworks/roasterybackend/lib/mytime"
)

// Service is the single source of truth for cart contents and the
// cart-drawer visibility flag. All mutations run inside a store transaction,
// so no two mutations interleave mid-update.
type Service struct {
	cartStore mystore.Store[Cart]
	nower     mytime.Nower
	logger    mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(cartStore mystore.Store[Cart], nower mytime.Nower) *Service {
	return &Service{
		cartStore: cartStore,
		nower:     nower,
		logger:    mylog.New("cart"),
	}
}

// AddItem merges the item into the cart. Adding an existing id increases its
// quantity, clamped to the recorded stock. When the clamp prevents any
// increase the cart is left unchanged and a warning is returned instead of
// an error. Every successful add opens the cart drawer.
func (s *Service) AddItem(c context.Context, cartUID string, item LineItem, quantity int) (Cart, string, error) {
	if item.ID == "" {
		return Cart{}, "", myerrors.NewInvalidInputError(fmt.Errorf("item without id"))
	}
	if quantity <= 0 {
		quantity = 1
	}

	var cart Cart
	warning := ""
	err := s.cartStore.RunInTransaction(c, func(c context.Context) error {
		var err error
		cart, err = s.fetchOrCreate(c, cartUID)
		if err != nil {
			return err
		}

		idx := cart.itemIndex(item.ID)
		if idx < 0 {
			item.Quantity = clamp(quantity, 1, item.stockLimit())
			cart.Items = append(cart.Items, item)
		} else {
			existing := &cart.Items[idx]
			newQuantity := clamp(existing.Quantity+quantity, 1, existing.stockLimit())
			if newQuantity == existing.Quantity {
				warning = fmt.Sprintf("only %d of %s in stock", existing.stockLimit(), existing.Name)
				return nil
			}
			existing.Quantity = newQuantity
		}

		cart.DrawerOpen = true

		return s.store(c, &cart)
	})
	if err != nil {
		return Cart{}, "", err
	}

	if warning != "" {
		s.logger.Log(c, cartUID, mylog.SeverityWarn, "Add of %s rejected: %s", item.ID, warning)
	}

	return cart, warning, nil
}

// RemoveItem removes the line item when present. Removing an absent item is
// not an error.
func (s *Service) RemoveItem(c context.Context, cartUID string, itemID string) (Cart, error) {
	var cart Cart
	err := s.cartStore.RunInTransaction(c, func(c context.Context) error {
		var err error
		cart, err = s.fetchOrCreate(c, cartUID)
		if err != nil {
			return err
		}

		idx := cart.itemIndex(itemID)
		if idx < 0 {
			return nil
		}
		cart.Items = append(cart.Items[:idx], cart.Items[idx+1:]...)

		return s.store(c, &cart)
	})
	if err != nil {
		return Cart{}, err
	}

	return cart, nil
}

// UpdateQuantity sets the quantity of a line item, clamped to its stock.
// A quantity of zero or less removes the item.
func (s *Service) UpdateQuantity(c context.Context, cartUID string, itemID string, quantity int) (Cart, error) {
	if quantity <= 0 {
		return s.RemoveItem(c, cartUID, itemID)
	}

	var cart Cart
	err := s.cartStore.RunInTransaction(c, func(c context.Context) error {
		var err error
		cart, err = s.fetchOrCreate(c, cartUID)
		if err != nil {
			return err
		}

		idx := cart.itemIndex(itemID)
		if idx < 0 {
			return nil
		}
		item := &cart.Items[idx]
		item.Quantity = clamp(quantity, 1, item.stockLimit())

		return s.store(c, &cart)
	})
	if err != nil {
		return Cart{}, err
	}

	return cart, nil
}

// Clear empties the cart and closes the drawer. Called exactly once per
// confirmed successful order.
func (s *Service) Clear(c context.Context, cartUID string) error {
	return s.cartStore.RunInTransaction(c, func(c context.Context) error {
		cart, err := s.fetchOrCreate(c, cartUID)
		if err != nil {
			return err
		}

		cart.Items = []LineItem{}
		cart.DrawerOpen = false

		return s.store(c, &cart)
	})
}

func (s *Service) Get(c context.Context, cartUID string) (Cart, error) {
	cart, found, err := s.cartStore.Get(c, cartUID)
	if err != nil {
		return Cart{}, myerrors.NewInternalError(fmt.Errorf("error fetching cart %s: %s", cartUID, err))
	}
	if !found {
		return Cart{UID: cartUID, CreatedAt: s.nower.Now()}, nil
	}
	return cart, nil
}

// Open, Close and Toggle only touch the drawer visibility flag.
func (s *Service) Open(c context.Context, cartUID string) (Cart, error) {
	return s.setDrawer(c, cartUID, func(open bool) bool { return true })
}

func (s *Service) Close(c context.Context, cartUID string) (Cart, error) {
	return s.setDrawer(c, cartUID, func(open bool) bool { return false })
}

func (s *Service) Toggle(c context.Context, cartUID string) (Cart, error) {
	return s.setDrawer(c, cartUID, func(open bool) bool { return !open })
}

func (s *Service) setDrawer(c context.Context, cartUID string, f func(open bool) bool) (Cart, error) {
	var cart Cart
	err := s.cartStore.RunInTransaction(c, func(c context.Context) error {
		var err error
		cart, err = s.fetchOrCreate(c, cartUID)
		if err != nil {
			return err
		}
		cart.DrawerOpen = f(cart.DrawerOpen)

		return s.store(c, &cart)
	})
	if err != nil {
		return Cart{}, err
	}

	return cart, nil
}

func (s *Service) fetchOrCreate(c context.Context, cartUID string) (Cart, error) {
	cart, found, err := s.cartStore.Get(c, cartUID)
	if err != nil {
		return Cart{}, myerrors.NewInternalError(fmt.Errorf("error fetching cart %s: %s", cartUID, err))
	}
	if !found {
		cart = Cart{
			UID:       cartUID,
			Items:     []LineItem{},
			CreatedAt: s.nower.Now(),
		}
	}
	return cart, nil
}

func (s *Service) store(c context.Context, cart *Cart) error {
	now := s.nower.Now()
	cart.LastModified = &now
	err := s.cartStore.Put(c, cart.UID, *cart)
	if err != nil {
		return myerrors.NewInternalError(fmt.Errorf("error storing cart %s: %s", cart.UID, err))
	}
	return nil
}

func clamp(value int, low int, high int) int {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
