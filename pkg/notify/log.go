package notify

import (
	"context"
	"log/slog"
)

// LogChannel writes notifications to the structured log. Always configured,
// so every notification leaves at least one trace.
type LogChannel struct {
	logger *slog.Logger
}

// NewLogChannel creates a log-backed notification channel.
func NewLogChannel(logger *slog.Logger) *LogChannel {
	return &LogChannel{logger: logger.With("module", "notify")}
}

func (l *LogChannel) Name() string {
	return "log"
}

func (l *LogChannel) Send(ctx context.Context, msg Message) error {
	ticketID := ""
	if msg.Ticket != nil {
		ticketID = msg.Ticket.ID
	}

	l.logger.InfoContext(ctx, "Notification",
		"kind", msg.Kind, "team", msg.Team, "ticket_id", ticketID, "message", msg.Text)

	return nil
}
