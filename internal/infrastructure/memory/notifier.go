package memory

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/lanehart/authd/internal/application/auth"
)

// LogNotifier prints mail links instead of sending them. Dev only: the
// logged URL is how you verify an account without a mail server.
type LogNotifier struct{}

func NewLogNotifier() *LogNotifier { return &LogNotifier{} }

func (n *LogNotifier) SendVerifyEmail(ctx context.Context, evt auth.Notification) error {
	log.Info().
		Str("user_id", evt.UserID).
		Str("url", evt.URL).
		Msg("dev notifier: verify email")
	return nil
}

func (n *LogNotifier) SendPasswordReset(ctx context.Context, evt auth.Notification) error {
	log.Info().
		Str("user_id", evt.UserID).
		Str("url", evt.URL).
		Msg("dev notifier: password reset")
	return nil
}
