package dispatch

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/rs/zerolog/log"
	"github.com/wneessen/go-mail"

	"github.com/CHAND7/ETE-Robotics-App/internal/compose"
	"github.com/CHAND7/ETE-Robotics-App/internal/config"
)

// TransportError reports a failed dispatch. Transient marks failures
// that were worth the single retry (timeouts, temporary SMTP status).
type TransportError struct {
	Reason    string
	Transient bool
	Err       error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("dispatch failed: %s", e.Reason)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Result is the outcome of a dispatch attempt.
type Result struct {
	OK       bool `json:"ok"`
	Attempts int  `json:"attempts"`
}

// sender abstracts the SMTP client so tests can inject a fake.
type sender interface {
	DialAndSendWithContext(ctx context.Context, msgs ...*mail.Msg) error
}

// Mailer sends a composed bundle by email. One retry on a transient
// failure, never more; every failure is reported to the caller.
type Mailer struct {
	client        sender
	from          string
	subjectPrefix string
}

// NewMailer builds the SMTP-backed mailer from config.
func NewMailer(cfg config.SMTPConfig) (*Mailer, error) {
	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
	}
	if cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(cfg.Username),
			mail.WithPassword(cfg.Password),
		)
	}

	client, err := mail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to build smtp client: %w", err)
	}

	return &Mailer{
		client:        client,
		from:          cfg.From,
		subjectPrefix: cfg.SubjectPrefix,
	}, nil
}

// newMailerWithSender is the test seam.
func newMailerWithSender(s sender, from, subjectPrefix string) *Mailer {
	return &Mailer{client: s, from: from, subjectPrefix: subjectPrefix}
}

// Send emails the bundle to recipient. The subject is derived from the
// RFQ reference; both documents are attached.
func (m *Mailer) Send(ctx context.Context, b *compose.Bundle, recipient string) (Result, error) {
	msg, err := m.buildMessage(b, recipient)
	if err != nil {
		return Result{}, &TransportError{Reason: err.Error(), Err: err}
	}

	attempts := 0
	for {
		attempts++
		err = m.client.DialAndSendWithContext(ctx, msg)
		if err == nil {
			log.Info().Str("rfq", b.RFQRef).Str("to", recipient).Int("attempts", attempts).
				Msg("bundle dispatched")
			return Result{OK: true, Attempts: attempts}, nil
		}
		if attempts > 1 || !isTransient(err) {
			break
		}
		log.Warn().Err(err).Str("rfq", b.RFQRef).Msg("transient dispatch failure, retrying once")
	}

	return Result{Attempts: attempts}, &TransportError{
		Reason:    err.Error(),
		Transient: isTransient(err),
		Err:       err,
	}
}

func (m *Mailer) buildMessage(b *compose.Bundle, recipient string) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid sender %q: %w", m.from, err)
	}
	if err := msg.To(recipient); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", recipient, err)
	}

	subject := b.RFQRef
	if m.subjectPrefix != "" {
		subject = m.subjectPrefix + " " + subject
	}
	msg.Subject(subject)

	body := fmt.Sprintf(
		"Please find attached the RFQ summary and slide deck for %s.\n", b.RFQRef)
	msg.SetBodyString(mail.TypeTextPlain, body)

	if err := msg.AttachReader(b.PDFName, bytes.NewReader(b.PDF)); err != nil {
		return nil, fmt.Errorf("failed to attach %s: %w", b.PDFName, err)
	}
	if err := msg.AttachReader(b.DeckName, bytes.NewReader(b.Deck)); err != nil {
		return nil, fmt.Errorf("failed to attach %s: %w", b.DeckName, err)
	}

	return msg, nil
}

// isTransient classifies failures worth one retry.
func isTransient(err error) bool {
	var sendErr *mail.SendError
	if errors.As(err, &sendErr) {
		return sendErr.IsTemp()
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return netErr.Timeout()
	}
	return false
}
