package notification

import (
	"context"
	"net/http"

	formcodec "github.com/go-playground/form/v4"
	"github.com/gorilla/mux"

	"github.com/roastworks/roasterybackend/lib/mycontext"
	"github.com/roastworks/roasterybackend/lib/myerrors"
	"github.com/roastworks/roasterybackend/lib/myhttp"
	"github.com/roastworks/roasterybackend/lib/mylog"
	"github.com/roastworks/roasterybackend/lib/mypubsub"
	"github.com/roastworks/roasterybackend/lib/myqueue"
	"github.com/roastworks/roasterybackend/lib/mystore"
	"github.com/roastworks/roasterybackend/lib/mytime"
	"github.com/roastworks/roasterybackend/lib/myuuid"
	"github.com/roastworks/roasterybackend/services/checkoutevents"
)

type webService struct {
	logger  mylog.Logger
	service *service
}

// Use dependency injection to isolate the infrastructure and easy testing
func NewWebService(messageStore mystore.Store[ContactMessage], emailSender EmailSender, queue myqueue.TaskQueuer, subscriber mypubsub.PubSub, uuider myuuid.UUIDer, nower mytime.Nower) *webService {
	logger := mylog.New("notification")
	return &webService{
		logger:  logger,
		service: newService(messageStore, emailSender, queue, subscriber, uuider, nower, logger),
	}
}

func (s *webService) RegisterEndpoints(c context.Context, router *mux.Router) error {
	router.HandleFunc("/api/contact", s.contactPage()).Methods("POST")
	router.HandleFunc("/api/notification/email/{messageUID}", s.sendEmailPage()).Methods("PUT")

	// push subscription delivery
	router.HandleFunc("/api/notification/event", s.handleEventEnvelope()).Methods("POST")

	err := s.service.Subscribe(c)
	if err != nil {
		return err
	}

	return nil
}

type contactForm struct {
	Name    string `form:"name"`
	Email   string `form:"email"`
	Subject string `form:"subject"`
	Body    string `form:"body"`
}

type contactResponse struct {
	MessageUID string
}

func (s *webService) contactPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := r.ParseForm()
		if err != nil {
			errorWriter.WriteError(c, w, 1, myerrors.NewInvalidInputError(err))
			return
		}
		form := contactForm{}
		err = formcodec.NewDecoder().Decode(&form, r.Form)
		if err != nil {
			errorWriter.WriteError(c, w, 2, myerrors.NewInvalidInputErrorf("error decoding form: %s", err))
			return
		}
		if form.Email == "" || form.Body == "" {
			errorWriter.WriteError(c, w, 3, myerrors.NewInvalidInputErrorf("missing email or message body"))
			return
		}

		msg, err := s.service.submitContactMessage(c, ContactMessage{
			Name:    form.Name,
			Email:   form.Email,
			Subject: form.Subject,
			Body:    form.Body,
		})
		if err != nil {
			errorWriter.WriteError(c, w, 4, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, contactResponse{MessageUID: msg.UID})
	}
}

// sendEmailPage is hit by the task queue, so it must be idempotent.
func (s *webService) sendEmailPage() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		messageUID := mux.Vars(r)["messageUID"]

		err := s.service.sendQueuedEmail(c, messageUID)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.EmptyResponse{})
	}
}

func (s *webService) handleEventEnvelope() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := mycontext.ContextFromHTTPRequest(r)
		errorWriter := myhttp.NewWriter(s.logger)

		err := checkoutevents.DispatchEvent(c, r.Body, s.service)
		if err != nil {
			errorWriter.WriteError(c, w, 1, err)
			return
		}

		errorWriter.Write(c, w, http.StatusOK, myhttp.EmptyResponse{})
	}
}
