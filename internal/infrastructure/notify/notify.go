// Package notify delivers one-time codes to a recipient over email or SMS.
package notify

import (
	"context"
	"errors"
	"fmt"
)

// Channels a recipient can be reached on.
const (
	ChannelEmail = "email"
	ChannelSMS   = "sms"
)

var (
	// ErrChannelUnavailable is returned when no sender is configured for the
	// requested channel.
	ErrChannelUnavailable = errors.New("notification channel not configured")
	ErrUnknownChannel     = errors.New("unknown notification channel")
)

type emailSender interface {
	SendEmail(to, subject, body string) error
}

type smsSender interface {
	SendSMS(ctx context.Context, to, message string) error
}

// Router hands a message to the sender for the channel the caller chose.
type Router struct {
	mail emailSender
	sms  smsSender
}

// NewRouter returns a Router. Either sender may be nil.
func NewRouter(mail emailSender, sms smsSender) *Router {
	return &Router{mail: mail, sms: sms}
}

func (r *Router) Send(ctx context.Context, channel, recipient, subject, body string) error {
	switch channel {
	case ChannelEmail:
		if r.mail == nil {
			return fmt.Errorf("email: %w", ErrChannelUnavailable)
		}
		return r.mail.SendEmail(recipient, subject, body)
	case ChannelSMS:
		if r.sms == nil {
			return fmt.Errorf("sms: %w", ErrChannelUnavailable)
		}
		return r.sms.SendSMS(ctx, recipient, subject+": "+body)
	default:
		return fmt.Errorf("%q: %w", channel, ErrUnknownChannel)
	}
}
