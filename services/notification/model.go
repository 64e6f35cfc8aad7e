package notification

import "time"

// ContactMessage is a message submitted through the contact form. It is
// stored first and emailed to the support inbox asynchronously.
type ContactMessage struct {
	UID       string
	Name      string
	Email     string
	Subject   string
	Body      string `datastore:",noindex"`
	CreatedAt time.Time
	EmailedAt *time.Time
}
