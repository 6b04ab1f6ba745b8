package email

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"log/slog"
	"net/smtp"
	"time"

	"github.com/cmlabs-hris/timesheet-go/internal/config"
)

//go:embed templates/*.html
var templateFS embed.FS

const maxRetries = 3

// Template names keyed by notification type. Anything else uses notification.html.
var typeTemplates = map[string]string{
	"timesheet_approved":       "timesheet_decision.html",
	"timesheet_rejected":       "timesheet_decision.html",
	"timesheet_draft_reminder": "draft_reminder.html",
}

// EmailService defines the interface for sending emails
type EmailService interface {
	SendNotification(to string, data NotificationData) error
}

// NotificationData fills the notification templates. Details is rendered as a
// label/value table in insertion order of DetailOrder.
type NotificationData struct {
	Type        string
	Title       string
	Message     string
	Link        string
	Details     map[string]string
	DetailOrder []string
}

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type emailServiceImpl struct {
	cfg       config.SMTPConfig
	templates *template.Template
	send      sendFunc
	backoff   func(attempt int) time.Duration
}

// NewEmailService creates a new email service instance
func NewEmailService(cfg config.SMTPConfig) (EmailService, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse email templates: %w", err)
	}

	return &emailServiceImpl{
		cfg:       cfg,
		templates: tmpl,
		send:      smtp.SendMail,
		backoff: func(attempt int) time.Duration {
			// 1s, 2s, 4s
			return time.Duration(1<<(attempt-1)) * time.Second
		},
	}, nil
}

type detailRow struct {
	Label string
	Value string
}

type templateData struct {
	Title   string
	Message string
	Link    string
	Details []detailRow
}

// SendNotification renders the template for data.Type and sends it.
func (s *emailServiceImpl) SendNotification(to string, data NotificationData) error {
	name, ok := typeTemplates[data.Type]
	if !ok {
		name = "notification.html"
	}

	td := templateData{Title: data.Title, Message: data.Message, Link: data.Link}
	for _, label := range data.DetailOrder {
		if v, ok := data.Details[label]; ok {
			td.Details = append(td.Details, detailRow{Label: label, Value: v})
		}
	}

	var body bytes.Buffer
	if err := s.templates.ExecuteTemplate(&body, name, td); err != nil {
		return fmt.Errorf("failed to execute template: %w", err)
	}

	return s.sendHTML(to, data.Title, body.String())
}

func (s *emailServiceImpl) sendHTML(to, subject, htmlBody string) error {
	// Skip sending if SMTP is not configured
	if s.cfg.Host == "" {
		slog.Warn("SMTP not configured, skipping email send", "to", to, "subject", subject)
		return nil
	}

	from := s.cfg.From

	headers := fmt.Sprintf("From: %s <%s>\r\n", s.cfg.FromName, from)
	headers += fmt.Sprintf("To: %s\r\n", to)
	headers += fmt.Sprintf("Subject: %s\r\n", subject)
	headers += "MIME-Version: 1.0\r\n"
	headers += "Content-Type: text/html; charset=\"UTF-8\"\r\n"
	headers += "\r\n"

	message := []byte(headers + htmlBody)

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	addr := fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port)

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		err := s.send(addr, auth, from, []string{to}, message)
		if err == nil {
			slog.Info("Email sent successfully", "to", to, "subject", subject, "attempt", attempt)
			return nil
		}

		lastErr = err
		slog.Error("Failed to send email",
			"to", to,
			"subject", subject,
			"attempt", attempt,
			"max_retries", maxRetries,
			"error", err,
		)

		if attempt < maxRetries {
			time.Sleep(s.backoff(attempt))
		}
	}

	return fmt.Errorf("failed to send email after %d attempts: %w", maxRetries, lastErr)
}
