package notify

import (
	"context"
	"log/slog"

	"github.com/vitalstudio/auth-service/internal/auth/domain"
)

// LogNotifier writes messages to the log instead of delivering them. It is
// the default when no email provider is configured, which keeps local
// development and tests working without credentials.
type LogNotifier struct {
	log *slog.Logger
}

func NewLogNotifier(log *slog.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) Send(_ context.Context, recipient domain.Email, subject, body string) error {
	n.log.Info("sending email",
		slog.String("recipient", string(recipient)),
		slog.String("subject", subject),
		slog.String("body", body),
	)
	return nil
}
