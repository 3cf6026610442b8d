package providers

import "context"

// EmailMessage is a rendered email ready for delivery
type EmailMessage struct {
	To       []string
	Subject  string
	HTMLBody string
	TextBody string
}

// EmailSender delivers rendered email
type EmailSender interface {
	Send(ctx context.Context, msg *EmailMessage) error
}
