// Package email delivers account mails over SMTP.
package email

import (
	"context"
	"fmt"
	"html"
	"time"

	"github.com/rs/zerolog"
	"github.com/wneessen/go-mail"

	"github.com/lanehart/authd/internal/application/auth"
	"github.com/lanehart/authd/internal/domain"
)

type SMTPSender struct {
	lg zerolog.Logger

	host     string
	port     int
	user     string
	pass     string
	from     string
	insecure bool

	timeout time.Duration
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	Timeout  time.Duration
	Insecure bool
}

func NewSMTPSender(cfg SMTPConfig, lg zerolog.Logger) *SMTPSender {
	return &SMTPSender{
		lg:       lg.With().Str("component", "smtp_sender").Logger(),
		host:     cfg.Host,
		port:     cfg.Port,
		user:     cfg.Username,
		pass:     cfg.Password,
		from:     cfg.From,
		insecure: cfg.Insecure,
		timeout:  cfg.Timeout,
	}
}

// ---- auth.Notifier ----

func (s *SMTPSender) SendVerifyEmail(ctx context.Context, n auth.Notification) error {
	subject := "Verify your email"
	text := fmt.Sprintf("Hi %s,\n\nVerify your email by opening this link:\n\n%s\n", n.Name, n.URL)
	htmlBody := renderBasicHTML(
		"Verify your email",
		"Click the button below to verify your email address.",
		"Verify email",
		n.URL,
	)
	return s.send(ctx, n.Email, subject, text, htmlBody)
}

func (s *SMTPSender) SendPasswordReset(ctx context.Context, n auth.Notification) error {
	subject := "Reset your password"
	text := fmt.Sprintf("Hi %s,\n\nReset your password by opening this link:\n\n%s\n", n.Name, n.URL)
	htmlBody := renderBasicHTML(
		"Reset your password",
		"Click the button below to reset your password.",
		"Reset password",
		n.URL,
	)
	return s.send(ctx, n.Email, subject, text, htmlBody)
}

func (s *SMTPSender) send(ctx context.Context, to, subject, textBody, htmlBody string) error {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	m := mail.NewMsg()
	if err := m.From(s.from); err != nil {
		return domain.ErrMailUnavailable(fmt.Errorf("invalid from address: %w", err))
	}
	if err := m.To(to); err != nil {
		return domain.ErrMailUnavailable(fmt.Errorf("invalid to address: %w", err))
	}
	m.Subject(subject)

	// Text fallback + HTML alternative
	m.SetBodyString(mail.TypeTextPlain, textBody)
	m.AddAlternativeString(mail.TypeTextHTML, htmlBody)

	tlsPolicy := mail.TLSMandatory
	if s.insecure {
		tlsPolicy = mail.TLSOpportunistic
	}

	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithTLSPolicy(tlsPolicy),
	}
	if s.user != "" {
		opts = append(opts, mail.WithSMTPAuth(mail.SMTPAuthPlain), mail.WithUsername(s.user), mail.WithPassword(s.pass))
	}

	c, err := mail.NewClient(s.host, opts...)
	if err != nil {
		return domain.ErrMailUnavailable(fmt.Errorf("smtp client init: %w", err))
	}

	if err := c.DialAndSendWithContext(ctx, m); err != nil {
		s.lg.Error().Err(err).Str("subject", subject).Msg("smtp send failed")
		return domain.ErrMailUnavailable(err)
	}

	s.lg.Info().Str("subject", subject).Msg("smtp send ok")
	return nil
}

func renderBasicHTML(title, intro, buttonText, link string) string {
	// minimal safe escaping
	escLink := html.EscapeString(link)
	escTitle := html.EscapeString(title)
	escIntro := html.EscapeString(intro)
	escBtn := html.EscapeString(buttonText)

	// very simple inline HTML (works in Gmail)
	return `<!doctype html>
<html>
  <body style="font-family:Arial,Helvetica,sans-serif; line-height:1.4;">
    <h2>` + escTitle + `</h2>
    <p>` + escIntro + `</p>

    <p>
      <a href="` + escLink + `" style="display:inline-block; padding:10px 14px; text-decoration:none; border-radius:6px; background:#111; color:#fff;">
        ` + escBtn + `
      </a>
    </p>

    <p style="color:#555; font-size:12px;">
      If the button doesn't work, open this link:<br/>
      <a href="` + escLink + `">` + escLink + `</a>
    </p>
  </body>
</html>`
}
