package addresssearch

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/roastworks/roasterybackend/lib/mycontext"
	"github.com/roastworks/roasterybackend/lib/myerrors"
	"github.com/roastworks/roasterybackend/lib/myhttp"
	"github.com/roastworks/roasterybackend/lib/mylog"
)

type webService struct {
	logger  mylog.Logger
	service *Service
}

func NewWebService(service *Service) *webService {
	return &webService{
		logger:  mylog.New("addresssearchWeb"),
		service: service,
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) {
	router.HandleFunc("/api/addresssearch/session", s.startSessionPage()).Methods("POST")
	router.HandleFunc("/api/addresssearch/{sessionUID}", s.endSessionPage()).Methods("DELETE")
	router.HandleFunc("/api/addresssearch/{sessionUID}/input", s.inputPage()).Methods("PUT")
	router.HandleFunc("/api/addresssearch/{sessionUID}/suggestions", s.suggestionsPage()).Methods("GET")
	router.HandleFunc("/api/addresssearch/{sessionUID}/cursor/{direction}", s.cursorPage()).Methods("PUT")
	router.HandleFunc("/api/addresssearch/{sessionUID}/select/{index}", s.selectPage()).Methods("POST")
	router.HandleFunc("/api/addresssearch/{sessionUID}/enter", s.enterPage()).Methods("POST")
	router.HandleFunc("/api/addresssearch/{sessionUID}/suggestions", s.dismissPage()).Methods("DELETE")
}

type sessionResponse struct {
	SessionUID string
}

func (s *webService) startSessionPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sessionUID := s.service.StartSession(c)

		errorWriter.Write(c, w, http.StatusOK, sessionResponse{SessionUID: sessionUID})
	}
}

func (s *webService) endSessionPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		s.service.EndSession(c, mux.Vars(r)["sessionUID"])

		errorWriter.Write(c, w, http.StatusOK, myhttp.EmptyResponse{})
	}
}

// inputPage accepts a keystroke. The lookup itself is debounced, so this
// always returns immediately.
func (s *webService) inputPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sessionUID := mux.Vars(r)["sessionUID"]
		input := r.URL.Query().Get("q")

		err := s.service.Keystroke(c, sessionUID, input)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusAccepted, myhttp.EmptyResponse{})
	}
}

func (s *webService) suggestionsPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		results, err := s.service.Results(c, mux.Vars(r)["sessionUID"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, results)
	}
}

func (s *webService) cursorPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sessionUID := mux.Vars(r)["sessionUID"]

		var delta int
		switch direction := mux.Vars(r)["direction"]; direction {
		case "up":
			delta = -1
		case "down":
			delta = 1
		default:
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("unknown cursor direction %s", direction))
			return
		}

		results, err := s.service.MoveCursor(c, sessionUID, delta)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, results)
	}
}

// enterPage handles the enter key: it resolves whatever is highlighted, or
// geocodes a bare postal code when no suggestions are up.
func (s *webService) enterPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		addr, err := s.service.Enter(c, mux.Vars(r)["sessionUID"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, addr)
	}
}

// dismissPage handles the escape key: the suggestion list goes away, the
// typed input stays.
func (s *webService) dismissPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := s.service.Dismiss(c, mux.Vars(r)["sessionUID"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.EmptyResponse{})
	}
}

func (s *webService) selectPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		sessionUID := mux.Vars(r)["sessionUID"]

		index, err := strconv.Atoi(mux.Vars(r)["index"])
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputErrorf("invalid suggestion index: %s", err))
			return
		}

		addr, err := s.service.Select(c, sessionUID, index)
		if err != nil {
			errorWriter.WriteError(c, w, 2, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, addr)
	}
}
