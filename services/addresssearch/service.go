package addresssearch

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/roastworks/roasterybackend/lib/myerrors"
	"github.com/roastworks/roasterybackend/lib/mylog"
	"github.com/roastworks/roasterybackend/lib/mytime"
	"github.com/roastworks/roasterybackend/lib/myuuid"
	"github.com/roastworks/roasterybackend/services/checkout"
)

const (
	// debounceInterval is how long after the last keystroke the lookup fires.
	debounceInterval = 800 * time.Millisecond

	// providerTokenTTL is how long one provider session token stays valid
	// before a fresh one is minted.
	providerTokenTTL = 2 * time.Minute

	// minInputLength is the smallest trimmed input that triggers a lookup.
	minInputLength = 4
)

// session is the per-widget lookup state. The generation counter increases on
// every fired lookup so late responses of superseded lookups are dropped.
type session struct {
	uid           string
	providerToken string
	generation    int
	input         string
	suggestions   []Suggestion
	cursor        int

	cancelDebounce func()
	cancelTTL      func()
}

type Service struct {
	provider  AddressProvider
	uuider    myuuid.UUIDer
	scheduler mytime.Scheduler
	logger    mylog.Logger

	mutex    sync.Mutex
	sessions map[string]*session
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewService(provider AddressProvider, uuider myuuid.UUIDer, scheduler mytime.Scheduler) *Service {
	return &Service{
		provider:  provider,
		uuider:    uuider,
		scheduler: scheduler,
		logger:    mylog.New("addresssearch"),
		sessions:  map[string]*session{},
	}
}

// StartSession creates a lookup session with a fresh provider token.
func (s *Service) StartSession(c context.Context) string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sess := &session{
		uid:           s.uuider.Create(),
		providerToken: s.uuider.Create(),
	}
	s.armTTL(sess)
	s.sessions[sess.uid] = sess

	s.logger.Log(c, sess.uid, mylog.SeverityDebug, "Started address search session %s", sess.uid)

	return sess.uid
}

// EndSession drops the session and cancels its timers.
func (s *Service) EndSession(c context.Context, sessionUID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sess, found := s.sessions[sessionUID]
	if !found {
		return
	}
	if sess.cancelDebounce != nil {
		sess.cancelDebounce()
	}
	if sess.cancelTTL != nil {
		sess.cancelTTL()
	}
	delete(s.sessions, sessionUID)
}

// Keystroke records new input. The actual lookup is debounced: it fires once
// the input has been stable for the debounce interval, and only when the
// input is long enough to be worth a provider round-trip.
func (s *Service) Keystroke(c context.Context, sessionUID string, input string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sess, found := s.sessions[sessionUID]
	if !found {
		return myerrors.NewNotFoundErrorf("address search session %s not found", sessionUID)
	}

	// typing counts as activity, so the token expiry starts over
	s.armTTL(sess)

	if sess.cancelDebounce != nil {
		sess.cancelDebounce()
		sess.cancelDebounce = nil
	}

	sess.input = input
	if len(strings.TrimSpace(input)) < minInputLength {
		sess.suggestions = nil
		sess.cursor = 0
		return nil
	}

	// the lookup fires after this request has completed, so it must not
	// inherit the request's cancellation
	lookupCtx := context.WithoutCancel(c)
	sess.cancelDebounce = s.scheduler.Schedule(debounceInterval, func() {
		s.search(lookupCtx, sessionUID, input)
	})

	return nil
}

// search fans out to the autocomplete lookup, plus a geocode lookup when the
// input resembles a postal code. Provider failures yield an empty result
// list, never an error to the shopper.
func (s *Service) search(c context.Context, sessionUID string, input string) {
	s.mutex.Lock()
	sess, found := s.sessions[sessionUID]
	if !found {
		s.mutex.Unlock()
		return
	}
	sess.generation++
	generation := sess.generation
	token := sess.providerToken
	s.mutex.Unlock()

	var wg sync.WaitGroup
	var suggested, geocoded []Suggestion

	wg.Add(1)
	go func() {
		defer wg.Done()
		results, err := s.provider.Suggest(c, token, input)
		if err != nil {
			s.logger.Log(c, sessionUID, mylog.SeverityWarn, "Error fetching suggestions for %q: %s", input, err)
			return
		}
		suggested = results
	}()

	if checkout.LooksLikePostalCode(input) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results, err := s.provider.Geocode(c, input)
			if err != nil {
				s.logger.Log(c, sessionUID, mylog.SeverityWarn, "Error geocoding %q: %s", input, err)
				return
			}
			geocoded = results
		}()
	}

	wg.Wait()

	merged := mergeSuggestions(suggested, geocoded)

	s.mutex.Lock()
	defer s.mutex.Unlock()

	sess, found = s.sessions[sessionUID]
	if !found {
		return
	}
	if sess.generation != generation {
		// a newer lookup fired in the meantime
		s.logger.Log(c, sessionUID, mylog.SeverityDebug, "Dropping stale results of generation %d", generation)
		return
	}

	sess.suggestions = merged
	sess.cursor = 0
}

// mergeSuggestions appends geocode results after the autocomplete ones,
// dropping geocode entries whose display text duplicates a suggestion.
func mergeSuggestions(suggested []Suggestion, geocoded []Suggestion) []Suggestion {
	merged := make([]Suggestion, 0, len(suggested)+len(geocoded))
	seen := map[string]bool{}

	for _, suggestion := range suggested {
		merged = append(merged, suggestion)
		seen[strings.ToLower(suggestion.Description)] = true
	}
	for _, suggestion := range geocoded {
		if seen[strings.ToLower(suggestion.Description)] {
			continue
		}
		merged = append(merged, suggestion)
	}

	return merged
}

type Results struct {
	Input       string
	Suggestions []Suggestion
	Cursor      int
}

func (s *Service) Results(c context.Context, sessionUID string) (Results, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sess, found := s.sessions[sessionUID]
	if !found {
		return Results{}, myerrors.NewNotFoundErrorf("address search session %s not found", sessionUID)
	}

	return Results{
		Input:       sess.input,
		Suggestions: append([]Suggestion{}, sess.suggestions...),
		Cursor:      sess.cursor,
	}, nil
}

// MoveCursor shifts the highlighted suggestion, clamped to the list bounds.
func (s *Service) MoveCursor(c context.Context, sessionUID string, delta int) (Results, error) {
	s.mutex.Lock()

	sess, found := s.sessions[sessionUID]
	if !found {
		s.mutex.Unlock()
		return Results{}, myerrors.NewNotFoundErrorf("address search session %s not found", sessionUID)
	}

	if len(sess.suggestions) == 0 {
		sess.cursor = 0
	} else {
		sess.cursor = clamp(sess.cursor+delta, 0, len(sess.suggestions)-1)
	}
	s.mutex.Unlock()

	return s.Results(c, sessionUID)
}

// Select resolves the suggestion at index into a full address, in one
// response so all form fields can be populated together. The postal code is
// returned normalized.
func (s *Service) Select(c context.Context, sessionUID string, index int) (ResolvedAddress, error) {
	s.mutex.Lock()

	sess, found := s.sessions[sessionUID]
	if !found {
		s.mutex.Unlock()
		return ResolvedAddress{}, myerrors.NewNotFoundErrorf("address search session %s not found", sessionUID)
	}
	if index < 0 || index >= len(sess.suggestions) {
		s.mutex.Unlock()
		return ResolvedAddress{}, myerrors.NewInvalidInputErrorf("suggestion index %d out of range", index)
	}
	suggestion := sess.suggestions[index]
	token := sess.providerToken
	s.mutex.Unlock()

	var addr ResolvedAddress
	var err error
	switch suggestion.Source {
	case SourceGeocode:
		addr, err = s.provider.ResolveGeocode(c, suggestion.Description)
	default:
		addr, err = s.provider.ResolvePlace(c, token, suggestion.PlaceUID)
	}
	if err != nil {
		return ResolvedAddress{}, myerrors.NewInternalError(err)
	}

	addr.PostalCode = checkout.NormalizePostalCode(addr.PostalCode)

	// a place-details call consumes the provider token
	if suggestion.Source == SourceAutocomplete {
		s.rotateToken(sessionUID)
	}

	return addr, nil
}

// Enter resolves the highlighted suggestion. Without a suggestion list, input
// that is a valid postal code is geocoded directly.
func (s *Service) Enter(c context.Context, sessionUID string) (ResolvedAddress, error) {
	s.mutex.Lock()

	sess, found := s.sessions[sessionUID]
	if !found {
		s.mutex.Unlock()
		return ResolvedAddress{}, myerrors.NewNotFoundErrorf("address search session %s not found", sessionUID)
	}
	if len(sess.suggestions) > 0 {
		cursor := sess.cursor
		s.mutex.Unlock()
		return s.Select(c, sessionUID, cursor)
	}
	input := sess.input
	s.mutex.Unlock()

	if !checkout.IsValidPostalCode(input) {
		return ResolvedAddress{}, myerrors.NewInvalidInputErrorf("nothing to select for input %q", input)
	}

	addr, err := s.provider.ResolveGeocode(c, input)
	if err != nil {
		return ResolvedAddress{}, myerrors.NewInternalError(err)
	}
	addr.PostalCode = checkout.NormalizePostalCode(addr.PostalCode)

	return addr, nil
}

// Dismiss hides the suggestion list and cancels any pending lookup. The typed
// input is left as-is.
func (s *Service) Dismiss(c context.Context, sessionUID string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sess, found := s.sessions[sessionUID]
	if !found {
		return myerrors.NewNotFoundErrorf("address search session %s not found", sessionUID)
	}

	if sess.cancelDebounce != nil {
		sess.cancelDebounce()
		sess.cancelDebounce = nil
	}
	sess.suggestions = nil
	sess.cursor = 0

	return nil
}

// rotateToken mints a fresh provider token and restarts its expiry timer.
func (s *Service) rotateToken(sessionUID string) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sess, found := s.sessions[sessionUID]
	if !found {
		return
	}

	sess.providerToken = s.uuider.Create()
	s.armTTL(sess)
}

// armTTL (re)starts the inactivity timer that expires the provider token.
// Caller must hold the mutex.
func (s *Service) armTTL(sess *session) {
	if sess.cancelTTL != nil {
		sess.cancelTTL()
	}
	sess.cancelTTL = s.scheduler.Schedule(providerTokenTTL, func() {
		s.rotateToken(sess.uid)
	})
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
