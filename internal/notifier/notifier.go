package notifier

import (
	"context"
	"net/http"
	"time"

	"github.com/pryme0/vyb-q-admin/configs"
)

// Notifier delivers customer and staff notifications. Callers treat every
// send as best effort.
type Notifier interface {
	SendSMS(ctx context.Context, to, message string) error
	SendEmail(ctx context.Context, msg Email) error
}

type Email struct {
	To          []string
	Subject     string
	Text        string
	HTML        string
	Attachments []Attachment
}

type Attachment struct {
	Filename    string
	ContentType string
	Data        []byte
}

// Default sends email through AWS SES and SMS through Africa's Talking.
type Default struct {
	Email config.EmailConfig
	SMS   config.AfricaTalkingConfig
	HTTP  *http.Client
}

func NewDefault(email config.EmailConfig, sms config.AfricaTalkingConfig) *Default {
	return &Default{
		Email: email,
		SMS:   sms,
		HTTP:  &http.Client{Timeout: 15 * time.Second},
	}
}

// Nop discards every notification.
type Nop struct{}

func (Nop) SendSMS(context.Context, string, string) error { return nil }
func (Nop) SendEmail(context.Context, Email) error { return nil }
