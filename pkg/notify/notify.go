// Package notify delivers user and team notifications over a set of
// configured channels.
package notify

import (
	"context"
	"log/slog"

	"github.com/helpflow/triago/pkg/models"
	"github.com/helpflow/triago/pkg/protocol"
)

// Kind distinguishes the two notification audiences.
type Kind string

const (
	KindUser Kind = "user"
	KindTeam Kind = "team"
)

// Message is one notification to be delivered by a channel.
type Message struct {
	Kind   Kind
	Team   string
	Text   string
	Ticket *models.Ticket
}

// Channel delivers one message over a single transport.
type Channel interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Provider fans a notification out to every configured channel. Channel
// failures never abort delivery; each channel's outcome lands in the
// DeliveryResult instead.
type Provider struct {
	channels []Channel
	logger   *slog.Logger
}

// NewProvider creates a fan-out notification provider.
func NewProvider(logger *slog.Logger, channels ...Channel) *Provider {
	return &Provider{
		channels: channels,
		logger:   logger.With("module", "notify"),
	}
}

func (p *Provider) NotifyUser(ctx context.Context, ticket *models.Ticket, message string) (protocol.DeliveryResult, error) {
	return p.send(ctx, Message{
		Kind:   KindUser,
		Text:   message,
		Ticket: ticket,
	}), nil
}

func (p *Provider) NotifyTeam(ctx context.Context, team, message string, ticket *models.Ticket) (protocol.DeliveryResult, error) {
	return p.send(ctx, Message{
		Kind:   KindTeam,
		Team:   team,
		Text:   message,
		Ticket: ticket,
	}), nil
}

func (p *Provider) send(ctx context.Context, msg Message) protocol.DeliveryResult {
	result := protocol.DeliveryResult{
		Channels: make(map[string]string, len(p.channels)),
	}

	for _, channel := range p.channels {
		err := channel.Send(ctx, msg)
		if err != nil {
			p.logger.WarnContext(ctx, "Notification channel failed",
				"channel", channel.Name(), "kind", msg.Kind, "error", err)

			result.Channels[channel.Name()] = err.Error()

			continue
		}

		result.Channels[channel.Name()] = "delivered"
		result.Delivered = true
	}

	return result
}
