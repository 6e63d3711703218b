package email

import (
	"fmt"
	"net/smtp"
	"strconv"
	"time"

	"github.com/rs/zerolog"
)

// EmailService defines the interface for email operations
type EmailService interface {
	SendEventCancelledEmail(toEmail, toName, eventTitle string, startsAt time.Time) error
	SendAccountApprovedEmail(toEmail, toName string) error
}

// SMTPConfig holds configuration for the SMTP server
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromName  string
	FromEmail string
}

// EmailServiceImpl implements EmailService
type EmailServiceImpl struct {
	config SMTPConfig
	logger zerolog.Logger
}

// NewEmailService creates a new EmailService
func NewEmailService(config SMTPConfig, logger zerolog.Logger) EmailService {
	return &EmailServiceImpl{
		config: config,
		logger: logger,
	}
}

// SendEventCancelledEmail tells a booked member their event was cancelled.
// Without SMTP credentials the mail is logged instead of sent, so development
// setups work without a mail server.
func (s *EmailServiceImpl) SendEventCancelledEmail(toEmail, toName, eventTitle string, startsAt time.Time) error {
	subject := fmt.Sprintf("Evento annullato: %s", eventTitle)
	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<p>Ciao %s,</p>
				<p>L'evento <strong>%s</strong> previsto per il %s è stato annullato.</p>
				<p>Ci scusiamo per il disagio. Controlla l'app per i prossimi appuntamenti.</p>
				<p>Il direttivo</p>
			</div>
		</body>
		</html>
	`, toName, eventTitle, startsAt.Format("02/01/2006"))

	return s.sendHTMLEmail(toEmail, subject, body)
}

// SendAccountApprovedEmail tells a member their account was approved
func (s *EmailServiceImpl) SendAccountApprovedEmail(toEmail, toName string) error {
	subject := "Il tuo account è stato approvato"
	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<p>Ciao %s,</p>
				<p>Il tuo account è stato approvato: da ora puoi iscriverti agli eventi del club.</p>
				<p>Il direttivo</p>
			</div>
		</body>
		</html>
	`, toName)

	return s.sendHTMLEmail(toEmail, subject, body)
}

// sendHTMLEmail sends an HTML email over plain SMTP
func (s *EmailServiceImpl) sendHTMLEmail(toEmail, subject, htmlBody string) error {
	if s.config.Username == "" || s.config.Password == "" {
		s.logger.Warn().
			Str("toEmail", toEmail).
			Str("subject", subject).
			Msg("SMTP credentials not configured - email not sent")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Username, s.config.Password, s.config.Host)

	headers := map[string]string{
		"From":         fmt.Sprintf("%s <%s>", s.config.FromName, s.config.FromEmail),
		"To":           toEmail,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=UTF-8",
	}

	message := ""
	for key, value := range headers {
		message += fmt.Sprintf("%s: %s\r\n", key, value)
	}
	message += "\r\n" + htmlBody

	serverAddress := s.config.Host + ":" + strconv.Itoa(s.config.Port)
	err := smtp.SendMail(serverAddress, auth, s.config.FromEmail, []string{toEmail}, []byte(message))
	if err != nil {
		s.logger.Error().Err(err).Str("server", serverAddress).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}
