// Package notify delivers out-of-band messages to users, currently the
// two-factor login codes sent over email.
package notify

import (
	"context"

	"github.com/vitalstudio/auth-service/internal/auth/domain"
)

// Notifier sends a message to the given recipient. Implementations must be
// safe for concurrent use.
type Notifier interface {
	Send(ctx context.Context, recipient domain.Email, subject, body string) error
}
