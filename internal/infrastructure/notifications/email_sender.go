package notifications

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-gomail/gomail"
	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"

	"github.com/corpcare/agentbooking/internal/domain/providers"
	"github.com/corpcare/agentbooking/pkg/config"
)

// ErrNoRecipients is returned when a message has no To address
var ErrNoRecipients = errors.New("email has no recipients")

type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPSender delivers email over SMTP. Consecutive failures open a circuit
// breaker so a dead mail server does not stall every dispatch.
type SMTPSender struct {
	dialer  mailDialer
	from    string
	breaker *gobreaker.CircuitBreaker
}

// NewSMTPSender creates an SMTP sender from configuration
func NewSMTPSender(cfg config.SMTPConfig) *SMTPSender {
	return newSMTPSender(gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password), cfg.From)
}

func newSMTPSender(dialer mailDialer, from string) *SMTPSender {
	return &SMTPSender{
		dialer: dialer,
		from:   from,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        "smtp",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("Circuit breaker state changed")
			},
		}),
	}
}

var _ providers.EmailSender = (*SMTPSender)(nil)

// Send delivers msg, honouring ctx cancellation before dialing
func (s *SMTPSender) Send(ctx context.Context, msg *providers.EmailMessage) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", msg.To...)
	m.SetHeader("Subject", msg.Subject)
	m.SetBody("text/plain", msg.TextBody)
	if msg.HTMLBody != "" {
		m.AddAlternative("text/html", msg.HTMLBody)
	}

	_, err := s.breaker.Execute(func() (interface{}, error) {
		return nil, s.dialer.DialAndSend(m)
	})
	if err != nil {
		return fmt.Errorf("error sending email: %w", err)
	}
	return nil
}

// LogSender writes emails to the log instead of sending them. It is used
// when SMTP is disabled.
type LogSender struct{}

var _ providers.EmailSender = LogSender{}

// Send logs msg
func (LogSender) Send(ctx context.Context, msg *providers.EmailMessage) error {
	if len(msg.To) == 0 {
		return ErrNoRecipients
	}
	log.Info().Strs("to", msg.To).Str("subject", msg.Subject).Msg("Email delivery disabled, message logged")
	return nil
}
