package addresssearch

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"googlemaps.github.io/maps"
)

// Deliveries are UK only, so every lookup is restricted to that region.
const countryRestriction = "gb"

type googleProvider struct {
	client *maps.Client
}

func NewGoogleProvider(apiKey string) (AddressProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("error creating maps client: %s", err)
	}
	return &googleProvider{
		client: client,
	}, nil
}

func (p *googleProvider) Suggest(ctx context.Context, sessionToken string, input string) ([]Suggestion, error) {
	token, err := parseSessionToken(sessionToken)
	if err != nil {
		return nil, err
	}

	resp, err := p.client.PlaceAutocomplete(ctx, &maps.PlaceAutocompleteRequest{
		Input:        input,
		SessionToken: token,
		Components: map[maps.Component][]string{
			maps.ComponentCountry: {countryRestriction},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error fetching autocomplete predictions: %s", err)
	}

	suggestions := []Suggestion{}
	for _, prediction := range resp.Predictions {
		suggestions = append(suggestions, Suggestion{
			PlaceUID:    prediction.PlaceID,
			Description: prediction.Description,
			Source:      SourceAutocomplete,
		})
	}
	return suggestions, nil
}

func (p *googleProvider) ResolvePlace(ctx context.Context, sessionToken string, placeUID string) (ResolvedAddress, error) {
	token, err := parseSessionToken(sessionToken)
	if err != nil {
		return ResolvedAddress{}, err
	}

	resp, err := p.client.PlaceDetails(ctx, &maps.PlaceDetailsRequest{
		PlaceID:      placeUID,
		SessionToken: token,
		Fields: []maps.PlaceDetailsFieldMask{
			maps.PlaceDetailsFieldMaskAddressComponent,
			maps.PlaceDetailsFieldMaskFormattedAddress,
		},
	})
	if err != nil {
		return ResolvedAddress{}, fmt.Errorf("error fetching place details: %s", err)
	}

	return addressFromComponents(resp.AddressComponents), nil
}

func (p *googleProvider) Geocode(ctx context.Context, query string) ([]Suggestion, error) {
	results, err := p.geocode(ctx, query)
	if err != nil {
		return nil, err
	}

	suggestions := []Suggestion{}
	for _, result := range results {
		suggestions = append(suggestions, Suggestion{
			PlaceUID:    result.PlaceID,
			Description: result.FormattedAddress,
			Source:      SourceGeocode,
		})
	}
	return suggestions, nil
}

func (p *googleProvider) ResolveGeocode(ctx context.Context, query string) (ResolvedAddress, error) {
	results, err := p.geocode(ctx, query)
	if err != nil {
		return ResolvedAddress{}, err
	}
	if len(results) == 0 {
		return ResolvedAddress{}, fmt.Errorf("no geocode results for %q", query)
	}
	return addressFromComponents(results[0].AddressComponents), nil
}

func (p *googleProvider) geocode(ctx context.Context, query string) ([]maps.GeocodingResult, error) {
	results, err := p.client.Geocode(ctx, &maps.GeocodingRequest{
		Address: query,
		Components: map[maps.Component]string{
			maps.ComponentCountry: countryRestriction,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("error geocoding %q: %s", query, err)
	}
	return results, nil
}

func parseSessionToken(sessionToken string) (maps.PlaceAutocompleteSessionToken, error) {
	parsed, err := uuid.Parse(sessionToken)
	if err != nil {
		return maps.PlaceAutocompleteSessionToken{}, fmt.Errorf("invalid session token %q: %s", sessionToken, err)
	}
	return maps.PlaceAutocompleteSessionToken(parsed), nil
}

func addressFromComponents(components []maps.AddressComponent) ResolvedAddress {
	addr := ResolvedAddress{}
	streetNumber := ""
	route := ""

	for _, component := range components {
		for _, componentType := range component.Types {
			switch componentType {
			case "subpremise":
				addr.Unit = component.LongName
			case "street_number":
				streetNumber = component.LongName
			case "route":
				route = component.LongName
			case "postal_town", "locality":
				if addr.City == "" {
					addr.City = component.LongName
				}
			case "postal_code":
				addr.PostalCode = component.LongName
			case "country":
				addr.Country = component.ShortName
			}
		}
	}

	addr.Street = strings.TrimSpace(streetNumber + " " + route)
	return addr
}
