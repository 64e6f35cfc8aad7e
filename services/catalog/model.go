package catalog

import "time"

const (
	ProductTypeCoffee       = "coffee"
	ProductTypeEquipment    = "equipment"
	ProductTypeAccessory    = "accessory"
	ProductTypeSubscription = "subscription"
)

type Product struct {
	UID          string
	ProductType  string
	Name         string
	Description  string `datastore:",noindex"`
	PriceInCents int64
	Image        string
	Sizes        []string
	Grinds       []string
	SKU          string
	Stock        int
	CreatedAt    time.Time
}
