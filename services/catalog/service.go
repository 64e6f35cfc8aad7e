package catalog

import (
	"context"
	"fmt"

	"github.com/roastworks/roasterybackend/lib/myerrors"
	"github.com/roastworks/roasterybackend/lib/mylog"
	"github.com/roastworks/roasterybackend/lib/mystore"
	"github.com/roastworks/roasterybackend/lib/mytime"
)

type service struct {
	productStore mystore.Store[Product]
	nower        mytime.Nower
	logger       mylog.Logger
}

// Use dependency injection to isolate the infrastructure and easy testing
func newService(productStore mystore.Store[Product], nower mytime.Nower, logger mylog.Logger) *service {
	return &service{
		productStore: productStore,
		nower:        nower,
		logger:       logger,
	}
}

func (s *service) listProducts(c context.Context, productType string) ([]Product, error) {
	if productType == "" {
		products, err := s.productStore.Query(c, nil, "CreatedAt")
		if err != nil {
			return nil, myerrors.NewInternalError(fmt.Errorf("error fetching products: %s", err))
		}
		return products, nil
	}

	products, err := s.productStore.Query(c, []mystore.Filter{
		{Field: "ProductType", Compare: "=", Value: productType},
	}, "CreatedAt")
	if err != nil {
		return nil, myerrors.NewInternalError(fmt.Errorf("error fetching products of type %s: %s", productType, err))
	}

	return products, nil
}

func (s *service) getProduct(c context.Context, productUID string) (Product, error) {
	product, found, err := s.productStore.Get(c, productUID)
	if err != nil {
		return Product{}, myerrors.NewInternalError(fmt.Errorf("error fetching product %s: %s", productUID, err))
	}
	if !found {
		return Product{}, myerrors.NewNotFoundError(fmt.Errorf("product with uid %s not found", productUID))
	}

	return product, nil
}

// seedWhenEmpty populates the catalog on first boot so the storefront has
// something to sell.
func (s *service) seedWhenEmpty(c context.Context) error {
	return s.productStore.RunInTransaction(c, func(c context.Context) error {
		existing, err := s.productStore.List(c)
		if err != nil {
			return fmt.Errorf("error listing products: %s", err)
		}
		if len(existing) > 0 {
			return nil
		}

		now := s.nower.Now()
		assortment := initialAssortment()
		for i, p := range assortment {
			// ascending CreatedAt keeps the assortment order in queries
			p.CreatedAt = now.Add(-1 * timeOffset(len(assortment)-i))
			err := s.productStore.Put(c, p.UID, p)
			if err != nil {
				return fmt.Errorf("error seeding product %s: %s", p.UID, err)
			}
		}

		s.logger.Log(c, "", mylog.SeverityInfo, "Seeded catalog with initial assortment")

		return nil
	})
}
