package mail

import (
	"context"
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strconv"
)

// SMTPConfig holds the connection settings for the SMTP transport. All of
// Host, Username and Password must be set for the transport to count as
// configured.
type SMTPConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	SenderName string
}

// SMTPTransport delivers mail over SMTP with STARTTLS.
type SMTPTransport struct {
	config SMTPConfig
}

func NewSMTPTransport(config SMTPConfig) *SMTPTransport {
	if config.Port == 0 {
		config.Port = 587
	}

	if config.SenderName == "" {
		config.SenderName = "Leadflow"
	}

	return &SMTPTransport{config: config}
}

func (t *SMTPTransport) IsConfigured() bool {
	return t.config.Host != "" && t.config.Username != "" && t.config.Password != ""
}

func (t *SMTPTransport) addr() string {
	return t.config.Host + ":" + strconv.Itoa(t.config.Port)
}

// Send delivers one message. A true return means the server accepted the
// message for delivery.
func (t *SMTPTransport) Send(ctx context.Context, msg Message) (bool, error) {
	if !t.IsConfigured() {
		return false, fmt.Errorf("smtp transport is not configured")
	}

	if err := ctx.Err(); err != nil {
		return false, err
	}

	payload := fmt.Sprintf(
		"From: %s <%s>\r\nTo: %s <%s>\r\nSubject: %s\r\nMIME-version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		t.config.SenderName, t.config.Username, msg.ToName, msg.To, msg.Subject, msg.Body,
	)

	auth := smtp.PlainAuth("", t.config.Username, t.config.Password, t.config.Host)

	err := smtp.SendMail(t.addr(), auth, t.config.Username, []string{msg.To}, []byte(payload))
	if err != nil {
		return false, fmt.Errorf("failed to send email to %s: %w", msg.To, err)
	}

	return true, nil
}

// TestConnection dials the server, upgrades to TLS and authenticates,
// without sending anything.
func (t *SMTPTransport) TestConnection(ctx context.Context) error {
	if !t.IsConfigured() {
		return fmt.Errorf("smtp transport is not configured")
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	client, err := smtp.Dial(t.addr())
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", t.addr(), err)
	}
	defer func() { _ = client.Close() }()

	err = client.StartTLS(&tls.Config{ServerName: t.config.Host, MinVersion: tls.VersionTLS12})
	if err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	auth := smtp.PlainAuth("", t.config.Username, t.config.Password, t.config.Host)

	err = client.Auth(auth)
	if err != nil {
		return fmt.Errorf("smtp authentication failed: %w", err)
	}

	return client.Quit()
}
