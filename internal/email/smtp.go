// Package email sends notification mail over SMTP. The service degrades
// to a no-op when no SMTP host is configured, so deployments without a
// mail server run unchanged.
package email

import (
	"fmt"
	"net/smtp"

	"github.com/SkyePiper/esd-tracker-backend/internal/model"
)

// Config holds the SMTP server settings. An empty Host disables sending.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	Sender   string
}

// Service sends tracker notification emails.
type Service struct {
	config Config
	auth   smtp.Auth
}

// NewService builds the email service.
func NewService(config Config) *Service {
	var auth smtp.Auth
	if config.Host != "" {
		auth = smtp.PlainAuth("", config.Username, config.Password, config.Host)
	}
	return &Service{config: config, auth: auth}
}

// Enabled reports whether an SMTP host is configured.
func (s *Service) Enabled() bool {
	return s.config.Host != ""
}

// SendAttendanceNotice tells a user their attendance for a session was
// recorded or changed. A disabled service returns nil without sending.
func (s *Service) SendAttendanceNotice(recipientEmail, forename, sessionDatetime string, t model.AttendanceType) error {
	if !s.Enabled() {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	subject := fmt.Sprintf("Training session attendance updated: %s", t.DisplayName())
	body := fmt.Sprintf(
		"Hi %s,\n\nYour attendance for the training session on %s has been recorded as '%s'.\n\nIf this does not look right, please contact your training coordinator.",
		forename, sessionDatetime, t.DisplayName())

	message := []byte(
		"To: " + recipientEmail + "\r\n" +
			"From: " + s.config.Sender + "\r\n" +
			"Subject: " + subject + "\r\n" +
			"\r\n" +
			body + "\r\n")

	if err := smtp.SendMail(addr, s.auth, s.config.Sender, []string{recipientEmail}, message); err != nil {
		return fmt.Errorf("smtp error: %w", err)
	}
	return nil
}
