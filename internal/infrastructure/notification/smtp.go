package notification

import (
	"context"
	"fmt"
	"net/smtp"
	"strings"

	"go.uber.org/zap"

	"github.com/ordem-digital/protocol-engine/internal/application/port"
)

// Config holds SMTP relay settings
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// SMTPNotifier delivers first-access credentials to newly created member
// accounts over a plain SMTP relay
type SMTPNotifier struct {
	config Config
	logger *zap.Logger
}

// NewSMTPNotifier creates a new SMTP credential notifier
func NewSMTPNotifier(config Config, logger *zap.Logger) port.CredentialNotifier {
	return &SMTPNotifier{
		config: config,
		logger: logger,
	}
}

// SendFirstAccess sends the welcome message with the member's number and
// temporary password
func (n *SMTPNotifier) SendFirstAccess(ctx context.Context, credential port.Credential) error {
	n.logger.Info("Sending first-access credentials",
		zap.String("email", credential.Email),
		zap.String("member_number", credential.MemberNumber))

	msg := n.buildMessage(credential)
	addr := fmt.Sprintf("%s:%d", n.config.Host, n.config.Port)

	var auth smtp.Auth
	if n.config.Username != "" {
		auth = smtp.PlainAuth("", n.config.Username, n.config.Password, n.config.Host)
	}

	if err := smtp.SendMail(addr, auth, n.config.From, []string{credential.Email}, msg); err != nil {
		n.logger.Error("Failed to send credentials",
			zap.String("email", credential.Email),
			zap.Error(err))
		return fmt.Errorf("failed to send credentials: %w", err)
	}

	return nil
}

// buildMessage builds the RFC 5322 message body
func (n *SMTPNotifier) buildMessage(credential port.Credential) []byte {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", n.config.From)
	fmt.Fprintf(&b, "To: %s\r\n", credential.Email)
	b.WriteString("Subject: Welcome - your first access credentials\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	b.WriteString("\r\n")

	fmt.Fprintf(&b, "Hello %s,\n\n", credential.Name)
	b.WriteString("Your membership has been approved. Use the credentials below for your first access:\n\n")
	fmt.Fprintf(&b, "  Member number: %s\n", credential.MemberNumber)
	fmt.Fprintf(&b, "  Email: %s\n", credential.Email)
	fmt.Fprintf(&b, "  Temporary password: %s\n\n", credential.TempPassword)
	b.WriteString("You will be asked to set a new password on first login.\n\n")
	b.WriteString("This message was sent automatically. Please do not reply.\n")

	return []byte(b.String())
}

// Verify interface compliance
var _ port.CredentialNotifier = (*SMTPNotifier)(nil)
