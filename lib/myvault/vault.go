package myvault

import (
	"context"

	"github.com/roastworks/roasterybackend/lib/mystore"
)

// Credential is an api-key for one of the external providers (payment,
// places, email), kept out of the environment when running in the cloud.
type Credential struct {
	ProviderName string
	APIKey       string
}

type Vault interface {
	Put(c context.Context, uid string, value Credential) error
	Get(c context.Context, uid string) (Credential, bool, error)
}

func New(c context.Context) (Vault, func(), error) {
	return mystore.New[Credential](c)
}
