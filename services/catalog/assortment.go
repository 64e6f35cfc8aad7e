package catalog

import "time"

func timeOffset(i int) time.Duration {
	return time.Duration(i) * time.Second
}

func initialAssortment() []Product {
	return []Product{
		{
			UID:          "coffee_yirgacheffe",
			ProductType:  ProductTypeCoffee,
			Name:         "Ethiopia Yirgacheffe",
			Description:  "Washed heirloom, floral with bergamot and lemon curd.",
			PriceInCents: 1150,
			Image:        "coffee/yirgacheffe.jpg",
			Sizes:        []string{"250g", "1kg"},
			Grinds:       []string{"Whole Bean", "Filter", "Espresso", "Cafetiere"},
			SKU:          "CF-ETH-YRG",
			Stock:        42,
		},
		{
			UID:          "coffee_huila",
			ProductType:  ProductTypeCoffee,
			Name:         "Colombia Huila",
			Description:  "Caramel sweetness, red apple, round body. Our house favourite.",
			PriceInCents: 975,
			Image:        "coffee/huila.jpg",
			Sizes:        []string{"250g", "1kg"},
			Grinds:       []string{"Whole Bean", "Filter", "Espresso", "Cafetiere"},
			SKU:          "CF-COL-HUI",
			Stock:        60,
		},
		{
			UID:          "coffee_santos_decaf",
			ProductType:  ProductTypeCoffee,
			Name:         "Brazil Santos Decaf",
			Description:  "Sugarcane process, chocolate and hazelnut, no compromise.",
			PriceInCents: 1050,
			Image:        "coffee/santos-decaf.jpg",
			Sizes:        []string{"250g"},
			Grinds:       []string{"Whole Bean", "Filter", "Espresso"},
			SKU:          "CF-BRA-DEC",
			Stock:        18,
		},
		{
			UID:          "equipment_v60",
			ProductType:  ProductTypeEquipment,
			Name:         "Hario V60 Dripper 02",
			Description:  "Ceramic, white. The classic pour-over cone.",
			PriceInCents: 2400,
			Image:        "equipment/v60.jpg",
			SKU:          "EQ-HAR-V60",
			Stock:        12,
		},
		{
			UID:          "equipment_aeropress",
			ProductType:  ProductTypeEquipment,
			Name:         "AeroPress",
			Description:  "Travel-proof immersion brewer with 350 filters.",
			PriceInCents: 3450,
			Image:        "equipment/aeropress.jpg",
			SKU:          "EQ-AER-STD",
			Stock:        8,
		},
		{
			UID:          "accessory_tote",
			ProductType:  ProductTypeAccessory,
			Name:         "Roastery Tote Bag",
			Description:  "Heavy cotton tote, roastery logo, fits two kilos of beans.",
			PriceInCents: 900,
			Image:        "accessory/tote.jpg",
			SKU:          "AC-TOTE",
			Stock:        100,
		},
		{
			UID:          "subscription_monthly",
			ProductType:  ProductTypeSubscription,
			Name:         "Monthly Roaster's Choice",
			Description:  "Two 250g bags of whatever is singing on the cupping table.",
			PriceInCents: 1900,
			Image:        "subscription/monthly.jpg",
			Sizes:        []string{"2x250g"},
			SKU:          "SB-MONTH",
		},
	}
}
