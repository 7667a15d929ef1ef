package audit

import (
	"strings"

	"github.com/rs/zerolog"
)

// Logger records auth business events in a structured, grep-friendly
// form. It also satisfies the audit hook shape the application service
// expects, so signup/login/reset events flow through one sink.
type Logger struct {
	log zerolog.Logger
}

// New creates an audit logger on top of the service logger.
func New(log zerolog.Logger) *Logger {
	return &Logger{
		log: log.With().Bool("audit", true).Logger(),
	}
}

// Event is the generic sink wired into the application service.
// Failed and blocked actions log at warn, everything else at info.
func (l *Logger) Event(action string, fields map[string]string) {
	ev := l.log.Info()
	if strings.Contains(action, "failed") || strings.Contains(action, "blocked") ||
		strings.Contains(action, "bad_credentials") {
		ev = l.log.Warn()
	}
	ev = ev.Str("action", action)
	for k, v := range fields {
		if k == "email" {
			v = maskEmail(v)
		}
		ev = ev.Str(k, v)
	}
	ev.Msg("auth event")
}

// maskEmail partially masks the address for privacy in logs.
func maskEmail(email string) string {
	if len(email) < 5 {
		return "***"
	}
	at := strings.IndexByte(email, '@')
	if at < 0 {
		return "***"
	}
	if at < 2 {
		return email[:1] + "***" + email[at:]
	}
	return email[:2] + "***" + email[at:]
}
