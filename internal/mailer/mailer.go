package mailer

import (
	"context"
	"fmt"

	"github.com/opulent-living/property-service/internal/listing/domain"
	"github.com/opulent-living/property-service/internal/platform/logger"
	"gopkg.in/gomail.v2"
)

type sender interface {
	DialAndSend(m ...*gomail.Message) error
}

type Config struct {
	Host     string
	Port     int
	From     string
	Password string
	To       string
}

// SMTPMailer notifies moderators when a listing is created.
type SMTPMailer struct {
	from   string
	to     string
	dialer sender
	logger *logger.Logger
}

func NewSMTPMailer(cfg Config, log *logger.Logger) *SMTPMailer {
	return &SMTPMailer{
		from:   cfg.From,
		to:     cfg.To,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.From, cfg.Password),
		logger: log,
	}
}

func (m *SMTPMailer) ListingCreated(ctx context.Context, listing *domain.Listing) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := m.dialer.DialAndSend(listingCreatedMessage(m.from, m.to, listing)); err != nil {
		return fmt.Errorf("failed to send listing email: %w", err)
	}
	m.logger.Debug("Listing email sent", "listing_id", listing.ID, "to", m.to)
	return nil
}

func listingCreatedMessage(from, to string, listing *domain.Listing) *gomail.Message {
	msg := gomail.NewMessage()
	msg.SetHeader("From", from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "New Listing Created")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Listing #%d '%s' has been created by %s.",
		listing.ID, listing.Title, listing.OwnerID,
	))
	return msg
}

// NopNotifier is used when SMTP is not configured.
type NopNotifier struct{}

func (NopNotifier) ListingCreated(context.Context, *domain.Listing) error { return nil }
