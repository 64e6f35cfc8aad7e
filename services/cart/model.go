package cart

import "time"

// unboundedStock is the effective stock limit when availability is unknown.
const unboundedStock = 1 << 30

type LineItem struct {
	ID          string
	ProductType string
	Name        string
	UnitPrice   int64 // minor units
	Image       string
	Quantity    int
	Size        string
	Grind       string
	SKU         string
	Stock       int // snapshot at add-time; 0 means unknown
}

// Subtotal is the line total in minor units.
func (i LineItem) Subtotal() int64 {
	return i.UnitPrice * int64(i.Quantity)
}

// stockLimit is the upper clamp for this line's quantity.
func (i LineItem) stockLimit() int {
	if i.Stock > 0 {
		return i.Stock
	}
	return unboundedStock
}

type Cart struct {
	UID          string
	Items        []LineItem
	DrawerOpen   bool `datastore:"-"` // UI state, never persisted
	CreatedAt    time.Time
	LastModified *time.Time
}

// TotalItems is the sum of quantities over all line items. Derived, never stored.
func (b Cart) TotalItems() int {
	total := 0
	for _, item := range b.Items {
		total += item.Quantity
	}
	return total
}

// TotalPrice is the sum of unit-price times quantity over all line items.
func (b Cart) TotalPrice() int64 {
	var total int64
	for _, item := range b.Items {
		total += item.UnitPrice * int64(item.Quantity)
	}
	return total
}

// ItemsByType returns the line items of one product type in insertion order.
func (b Cart) ItemsByType(productType string) []LineItem {
	result := []LineItem{}
	for _, item := range b.Items {
		if item.ProductType == productType {
			result = append(result, item)
		}
	}
	return result
}

func (b Cart) itemIndex(itemID string) int {
	for idx, item := range b.Items {
		if item.ID == itemID {
			return idx
		}
	}
	return -1
}
