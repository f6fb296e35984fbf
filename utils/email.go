package utils

//go:generate mockgen -source=email.go -destination=mocks/mocks.go -package=mocks Mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/jordan-wright/email"
	"gopkg.in/gomail.v2"
)

//go:embed templates/*.html
var templateFS embed.FS

var emailTemplates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

type Mail struct {
	To      []string
	Subject string
	Text    string
	HTML    string
}

// Mailer delivers a single message. Implementations must be safe for
// concurrent use.
type Mailer interface {
	Send(ctx context.Context, mail Mail) error
}

type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// NewMailer picks the SMTP transport by name. Without an SMTP host messages
// are only logged.
func NewMailer(transport string, cfg SMTPConfig, logger *slog.Logger) Mailer {
	if cfg.Host == "" {
		return &LogMailer{logger: logger}
	}
	if transport == "email" {
		return &EmailMailer{cfg: cfg}
	}
	return NewGomailMailer(cfg)
}

type GomailMailer struct {
	from   string
	dialer *gomail.Dialer
}

func NewGomailMailer(cfg SMTPConfig) *GomailMailer {
	return &GomailMailer{
		from:   cfg.From,
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
	}
}

func (g *GomailMailer) Send(_ context.Context, mail Mail) error {
	m := gomail.NewMessage()
	m.SetHeader("From", g.from)
	m.SetHeader("To", mail.To...)
	m.SetHeader("Subject", mail.Subject)
	m.SetBody("text/plain", mail.Text)
	if mail.HTML != "" {
		m.AddAlternative("text/html", mail.HTML)
	}
	if err := g.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("gomail send: %w", err)
	}
	return nil
}

// EmailMailer sends through net/smtp using jordan-wright/email.
type EmailMailer struct {
	cfg SMTPConfig
}

func NewEmailMailer(cfg SMTPConfig) *EmailMailer {
	return &EmailMailer{cfg: cfg}
}

func (e *EmailMailer) Send(_ context.Context, mail Mail) error {
	msg := email.NewEmail()
	msg.From = e.cfg.From
	msg.To = mail.To
	msg.Subject = mail.Subject
	msg.Text = []byte(mail.Text)
	if mail.HTML != "" {
		msg.HTML = []byte(mail.HTML)
	}

	var auth smtp.Auth
	if e.cfg.Username != "" {
		auth = smtp.PlainAuth("", e.cfg.Username, e.cfg.Password, e.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", e.cfg.Host, e.cfg.Port)
	if err := msg.Send(addr, auth); err != nil {
		return fmt.Errorf("smtp send to %s: %w", addr, err)
	}
	return nil
}

type LogMailer struct {
	logger *slog.Logger
}

func (l *LogMailer) Send(_ context.Context, mail Mail) error {
	logger := l.logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("mail not sent, no SMTP host configured",
		"to", mail.To, "subject", mail.Subject, "text", mail.Text)
	return nil
}

type PasswordResetData struct {
	ResetURL  string
	ExpiresIn time.Duration
	Year      int
}

// PasswordResetMail renders the reset message in both text and HTML.
func PasswordResetMail(to, subject string, data PasswordResetData) (Mail, error) {
	var body bytes.Buffer
	if err := emailTemplates.ExecuteTemplate(&body, "password_reset.html", data); err != nil {
		return Mail{}, fmt.Errorf("render password reset email: %w", err)
	}

	text := fmt.Sprintf("You are receiving this email because you (or someone else) requested a password reset.\n\n"+
		"Please open the link below to choose a new password:\n\n%s\n\n"+
		"The link expires in %d minutes. If you did not request this, you can ignore this email.\n",
		data.ResetURL, int(data.ExpiresIn.Minutes()))

	return Mail{
		To:      []string{to},
		Subject: subject,
		Text:    text,
		HTML:    body.String(),
	}, nil
}
