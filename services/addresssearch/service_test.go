package addresssearch

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/roastworks/roasterybackend/lib/mytime"
)

func TestDebouncedLookup(t *testing.T) {
	t.Run("Rapid keystrokes collapse into one lookup for the final input", func(t *testing.T) {
		c, sut, provider, clock := setupSearch(t)
		sessionUID := sut.StartSession(c)

		provider.EXPECT().Suggest(gomock.Any(), gomock.Any(), "10 Downing").
			Return([]Suggestion{{PlaceUID: "place-1", Description: "10 Downing Street, London", Source: SourceAutocomplete}}, nil).
			Times(1)

		assert.NoError(t, sut.Keystroke(c, sessionUID, "10 Down"))
		clock.Advance(300 * time.Millisecond)
		assert.NoError(t, sut.Keystroke(c, sessionUID, "10 Downi"))
		clock.Advance(300 * time.Millisecond)
		assert.NoError(t, sut.Keystroke(c, sessionUID, "10 Downing"))
		clock.Advance(800 * time.Millisecond)

		results, err := sut.Results(c, sessionUID)
		assert.NoError(t, err)
		assert.Len(t, results.Suggestions, 1)
		assert.Equal(t, "10 Downing Street, London", results.Suggestions[0].Description)
	})

	t.Run("Input below the minimum length clears suggestions without a lookup", func(t *testing.T) {
		c, sut, provider, clock := setupSearch(t)
		sessionUID := sut.StartSession(c)

		provider.EXPECT().Suggest(gomock.Any(), gomock.Any(), "10 Downing").
			Return([]Suggestion{{PlaceUID: "place-1", Description: "10 Downing Street, London", Source: SourceAutocomplete}}, nil)

		assert.NoError(t, sut.Keystroke(c, sessionUID, "10 Downing"))
		clock.Advance(800 * time.Millisecond)

		// shopper deletes most of the input
		assert.NoError(t, sut.Keystroke(c, sessionUID, "10"))
		clock.Advance(time.Second)

		results, err := sut.Results(c, sessionUID)
		assert.NoError(t, err)
		assert.Empty(t, results.Suggestions)
	})

	t.Run("Postal code input also geocodes, merged after the suggestions", func(t *testing.T) {
		c, sut, provider, clock := setupSearch(t)
		sessionUID := sut.StartSession(c)

		provider.EXPECT().Suggest(gomock.Any(), gomock.Any(), "SW1A 1AA").
			Return([]Suggestion{
				{PlaceUID: "place-1", Description: "Buckingham Palace, London SW1A 1AA", Source: SourceAutocomplete},
			}, nil)
		provider.EXPECT().Geocode(gomock.Any(), "SW1A 1AA").
			Return([]Suggestion{
				{PlaceUID: "geo-1", Description: "Buckingham Palace, London SW1A 1AA", Source: SourceGeocode},
				{PlaceUID: "geo-2", Description: "Westminster, London SW1A 1AA", Source: SourceGeocode},
			}, nil)

		assert.NoError(t, sut.Keystroke(c, sessionUID, "SW1A 1AA"))
		clock.Advance(800 * time.Millisecond)

		results, err := sut.Results(c, sessionUID)
		assert.NoError(t, err)
		// the duplicate display text is dropped, suggestions come first
		assert.Len(t, results.Suggestions, 2)
		assert.Equal(t, SourceAutocomplete, results.Suggestions[0].Source)
		assert.Equal(t, "Westminster, London SW1A 1AA", results.Suggestions[1].Description)
	})

	t.Run("Lookup still fires after the originating request has completed", func(t *testing.T) {
		_, sut, provider, clock := setupSearch(t)
		reqCtx, cancel := context.WithCancel(context.TODO())
		sessionUID := sut.StartSession(reqCtx)

		provider.EXPECT().Suggest(gomock.Any(), gomock.Any(), "10 Downing").
			DoAndReturn(func(ctx context.Context, token string, input string) ([]Suggestion, error) {
				assert.NoError(t, ctx.Err())
				return []Suggestion{{PlaceUID: "place-1", Description: "10 Downing Street, London", Source: SourceAutocomplete}}, nil
			})

		assert.NoError(t, sut.Keystroke(reqCtx, sessionUID, "10 Downing"))
		// the webserver cancels the request context once the handler returns
		cancel()
		clock.Advance(800 * time.Millisecond)

		results, err := sut.Results(context.TODO(), sessionUID)
		assert.NoError(t, err)
		assert.Len(t, results.Suggestions, 1)
	})

	t.Run("Provider failure yields empty results, not an error", func(t *testing.T) {
		c, sut, provider, clock := setupSearch(t)
		sessionUID := sut.StartSession(c)

		provider.EXPECT().Suggest(gomock.Any(), gomock.Any(), "10 Downing").
			Return(nil, errors.New("quota exceeded"))

		assert.NoError(t, sut.Keystroke(c, sessionUID, "10 Downing"))
		clock.Advance(800 * time.Millisecond)

		results, err := sut.Results(c, sessionUID)
		assert.NoError(t, err)
		assert.Empty(t, results.Suggestions)
	})
}

func TestCursorMovement(t *testing.T) {
	c, sut, provider, clock := setupSearch(t)
	sessionUID := sut.StartSession(c)

	provider.EXPECT().Suggest(gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]Suggestion{
			{PlaceUID: "place-1", Description: "First", Source: SourceAutocomplete},
			{PlaceUID: "place-2", Description: "Second", Source: SourceAutocomplete},
		}, nil)

	assert.NoError(t, sut.Keystroke(c, sessionUID, "High Road"))
	clock.Advance(800 * time.Millisecond)

	// the cursor clamps at both ends
	for i := 0; i < 3; i++ {
		_, err := sut.MoveCursor(c, sessionUID, 1)
		assert.NoError(t, err)
	}
	results, _ := sut.Results(c, sessionUID)
	assert.Equal(t, 1, results.Cursor)

	for i := 0; i < 5; i++ {
		_, err := sut.MoveCursor(c, sessionUID, -1)
		assert.NoError(t, err)
	}
	results, _ = sut.Results(c, sessionUID)
	assert.Equal(t, 0, results.Cursor)
}

func TestKeyboardEnter(t *testing.T) {
	t.Run("Enter resolves the highlighted suggestion", func(t *testing.T) {
		c, sut, provider, clock := setupSearch(t)
		sessionUID := sut.StartSession(c)

		provider.EXPECT().Suggest(gomock.Any(), gomock.Any(), "High Road").
			Return([]Suggestion{
				{PlaceUID: "place-1", Description: "1 High Road, London", Source: SourceAutocomplete},
				{PlaceUID: "place-2", Description: "2 High Road, London", Source: SourceAutocomplete},
			}, nil)
		provider.EXPECT().ResolvePlace(gomock.Any(), gomock.Any(), "place-2").
			Return(ResolvedAddress{Street: "2 High Road", City: "London", PostalCode: "N17 0AA", Country: "GB"}, nil)

		assert.NoError(t, sut.Keystroke(c, sessionUID, "High Road"))
		clock.Advance(800 * time.Millisecond)
		_, err := sut.MoveCursor(c, sessionUID, 1)
		assert.NoError(t, err)

		addr, err := sut.Enter(c, sessionUID)

		assert.NoError(t, err)
		assert.Equal(t, "2 High Road", addr.Street)
	})

	t.Run("Enter on a bare postal code geocodes it directly", func(t *testing.T) {
		c, sut, provider, _ := setupSearch(t)
		sessionUID := sut.StartSession(c)

		provider.EXPECT().ResolveGeocode(gomock.Any(), "SW1A 1AA").
			Return(ResolvedAddress{City: "London", PostalCode: "sw1a1aa", Country: "GB"}, nil)

		// no suggestions yet: the debounced lookup has not fired
		assert.NoError(t, sut.Keystroke(c, sessionUID, "SW1A 1AA"))

		addr, err := sut.Enter(c, sessionUID)

		assert.NoError(t, err)
		assert.Equal(t, "SW1A 1AA", addr.PostalCode)
	})

	t.Run("Enter with no suggestions and no postal code is rejected", func(t *testing.T) {
		c, sut, _, _ := setupSearch(t)
		sessionUID := sut.StartSession(c)

		assert.NoError(t, sut.Keystroke(c, sessionUID, "10 Downing"))

		_, err := sut.Enter(c, sessionUID)

		assert.Error(t, err)
	})
}

func TestDismiss(t *testing.T) {
	t.Run("Escape hides the suggestions but keeps the input", func(t *testing.T) {
		c, sut, provider, clock := setupSearch(t)
		sessionUID := sut.StartSession(c)

		provider.EXPECT().Suggest(gomock.Any(), gomock.Any(), "10 Downing").
			Return([]Suggestion{{PlaceUID: "place-1", Description: "10 Downing Street, London", Source: SourceAutocomplete}}, nil)

		assert.NoError(t, sut.Keystroke(c, sessionUID, "10 Downing"))
		clock.Advance(800 * time.Millisecond)

		assert.NoError(t, sut.Dismiss(c, sessionUID))

		results, err := sut.Results(c, sessionUID)
		assert.NoError(t, err)
		assert.Empty(t, results.Suggestions)
		assert.Equal(t, "10 Downing", results.Input)
	})

	t.Run("Escape cancels a pending lookup", func(t *testing.T) {
		c, sut, _, clock := setupSearch(t)
		sessionUID := sut.StartSession(c)

		// no provider call expected
		assert.NoError(t, sut.Keystroke(c, sessionUID, "10 Downing"))
		assert.NoError(t, sut.Dismiss(c, sessionUID))
		clock.Advance(time.Second)

		results, err := sut.Results(c, sessionUID)
		assert.NoError(t, err)
		assert.Empty(t, results.Suggestions)
	})
}

func TestSelectSuggestion(t *testing.T) {
	t.Run("Selecting a suggestion resolves and normalizes the address", func(t *testing.T) {
		c, sut, provider, clock := setupSearch(t)
		sessionUID := sut.StartSession(c)
		tokenBefore := sut.sessions[sessionUID].providerToken

		provider.EXPECT().Suggest(gomock.Any(), tokenBefore, "10 Downing").
			Return([]Suggestion{{PlaceUID: "place-1", Description: "10 Downing Street, London", Source: SourceAutocomplete}}, nil)
		provider.EXPECT().ResolvePlace(gomock.Any(), tokenBefore, "place-1").
			Return(ResolvedAddress{
				Unit:       "Flat 2",
				Street:     "10 Downing Street",
				City:       "London",
				PostalCode: "sw1a2aa",
				Country:    "GB",
			}, nil)

		assert.NoError(t, sut.Keystroke(c, sessionUID, "10 Downing"))
		clock.Advance(800 * time.Millisecond)

		addr, err := sut.Select(c, sessionUID, 0)

		assert.NoError(t, err)
		assert.Equal(t, "SW1A 2AA", addr.PostalCode)
		assert.Equal(t, "London", addr.City)
		assert.Equal(t, "Flat 2", addr.Unit)
		// the details lookup consumed the token, a fresh one was minted
		assert.NotEqual(t, tokenBefore, sut.sessions[sessionUID].providerToken)
	})

	t.Run("Selecting a geocode result re-geocodes its display text", func(t *testing.T) {
		c, sut, provider, clock := setupSearch(t)
		sessionUID := sut.StartSession(c)

		provider.EXPECT().Suggest(gomock.Any(), gomock.Any(), "SW1A 1AA").Return(nil, nil)
		provider.EXPECT().Geocode(gomock.Any(), "SW1A 1AA").
			Return([]Suggestion{{PlaceUID: "geo-1", Description: "Westminster, London SW1A 1AA", Source: SourceGeocode}}, nil)
		provider.EXPECT().ResolveGeocode(gomock.Any(), "Westminster, London SW1A 1AA").
			Return(ResolvedAddress{City: "London", PostalCode: "SW1A 1AA", Country: "GB"}, nil)

		assert.NoError(t, sut.Keystroke(c, sessionUID, "SW1A 1AA"))
		clock.Advance(800 * time.Millisecond)

		addr, err := sut.Select(c, sessionUID, 0)

		assert.NoError(t, err)
		assert.Equal(t, "SW1A 1AA", addr.PostalCode)
	})

	t.Run("Selecting outside the list is rejected", func(t *testing.T) {
		c, sut, _, _ := setupSearch(t)
		sessionUID := sut.StartSession(c)

		_, err := sut.Select(c, sessionUID, 0)

		assert.Error(t, err)
	})
}

func TestProviderTokenExpiry(t *testing.T) {
	t.Run("An idle session rotates its token every two minutes", func(t *testing.T) {
		c, sut, _, clock := setupSearch(t)
		sessionUID := sut.StartSession(c)

		first := sut.sessions[sessionUID].providerToken

		clock.Advance(2 * time.Minute)
		second := sut.sessions[sessionUID].providerToken
		assert.NotEqual(t, first, second)

		// the expiry timer re-arms itself
		clock.Advance(2 * time.Minute)
		assert.NotEqual(t, second, sut.sessions[sessionUID].providerToken)
	})

	t.Run("Typing keeps the token alive", func(t *testing.T) {
		c, sut, _, clock := setupSearch(t)
		sessionUID := sut.StartSession(c)

		first := sut.sessions[sessionUID].providerToken

		clock.Advance(time.Minute)
		assert.NoError(t, sut.Keystroke(c, sessionUID, "10"))

		// two minutes after session start, but only one since the keystroke
		clock.Advance(time.Minute)
		assert.Equal(t, first, sut.sessions[sessionUID].providerToken)

		// two minutes of inactivity after the keystroke
		clock.Advance(time.Minute)
		assert.NotEqual(t, first, sut.sessions[sessionUID].providerToken)
	})
}

func TestUnknownSession(t *testing.T) {
	c, sut, _, _ := setupSearch(t)

	assert.Error(t, sut.Keystroke(c, "missing", "10 Downing"))
	_, err := sut.Results(c, "missing")
	assert.Error(t, err)
}

func setupSearch(t *testing.T) (context.Context, *Service, *MockAddressProvider, *mytime.VirtualScheduler) {
	ctrl := gomock.NewController(t)
	c := context.TODO()

	provider := NewMockAddressProvider(ctrl)
	clock := mytime.NewVirtualScheduler(mytime.ExampleTime)

	return c, NewService(provider, &seqUUIDer{}, clock), provider, clock
}

type seqUUIDer struct {
	n int
}

func (u *seqUUIDer) Create() string {
	u.n++
	return fmt.Sprintf("uid-%d", u.n)
}
