package addresssearch

import (
	"context"
)

// SuggestionSource records which lookup produced a suggestion. Geocode-sourced
// suggestions must be re-geocoded on selection, autocomplete ones go through
// the place-details lookup.
type SuggestionSource string

const (
	SourceAutocomplete SuggestionSource = "autocomplete"
	SourceGeocode      SuggestionSource = "geocode"
)

type Suggestion struct {
	PlaceUID    string
	Description string
	Source      SuggestionSource
}

// ResolvedAddress is a fully populated postal address as returned by the
// provider. Field semantics match the checkout address form.
type ResolvedAddress struct {
	Unit       string
	Street     string
	City       string
	PostalCode string
	Country    string
}

//go:generate mockgen -source=provider.go -package addresssearch -destination provider_mock.go AddressProvider
type AddressProvider interface {
	// Suggest returns address predictions for partial input. The session
	// token groups keystrokes of one lookup for billing purposes.
	Suggest(ctx context.Context, sessionToken string, input string) ([]Suggestion, error)

	// ResolvePlace fetches the full address behind an autocomplete
	// suggestion, consuming the session token.
	ResolvePlace(ctx context.Context, sessionToken string, placeUID string) (ResolvedAddress, error)

	// Geocode resolves free text (typically a postal code) to addresses.
	Geocode(ctx context.Context, query string) ([]Suggestion, error)

	// ResolveGeocode re-geocodes a geocode-sourced suggestion into a full
	// address.
	ResolveGeocode(ctx context.Context, query string) (ResolvedAddress, error)
}
