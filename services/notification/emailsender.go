package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/roastworks/roasterybackend/lib/myhttpclient"
)

type EmailMessage struct {
	To      string `json:"to"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

//go:generate mockgen -source=emailsender.go -package notification -destination emailsender_mock.go EmailSender
type EmailSender interface {
	Send(c context.Context, msg EmailMessage) error
}

// httpEmailSender delivers mail through an external transactional email API.
type httpEmailSender struct {
	apiURL string
	apiKey string
	client myhttpclient.HTTPSender
}

func NewEmailSender(apiURL string, apiKey string, client myhttpclient.HTTPSender) EmailSender {
	return &httpEmailSender{
		apiURL: apiURL,
		apiKey: apiKey,
		client: client,
	}
}

func (s *httpEmailSender) Send(c context.Context, msg EmailMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("error marshalling email: %s", err)
	}

	status, _, err := s.client.Send(c, http.MethodPost, s.apiURL, map[string]string{
		"api-key": s.apiKey,
	}, body)
	if err != nil {
		return fmt.Errorf("error sending email to %s: %s", msg.To, err)
	}
	if status != http.StatusOK && status != http.StatusAccepted {
		return fmt.Errorf("error sending email to %s: http status %d", msg.To, status)
	}

	return nil
}
