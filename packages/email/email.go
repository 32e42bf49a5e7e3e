package email

import (
	"crypto/tls"
	"fmt"
	"net/smtp"
	"strings"
)

// Config holds SMTP settings.
type Config struct {
	Host     string `koanf:"host"`     // e.g. smtp.gmail.com
	Port     int    `koanf:"port"`     // 587 (STARTTLS) or 25
	Username string `koanf:"username"` // SMTP login
	Password string `koanf:"password"` // password or app token
	UseTLS   bool   `koanf:"tls"`
	From     string `koanf:"from"` // default sender, e.g. "MedSync <noreply@medsync.local>"
}

// Message is a single outgoing mail.
type Message struct {
	From        string
	To          []string
	Cc          []string
	Bcc         []string
	Subject     string
	Body        string
	ContentType string // defaults to text/plain
}

// Sender delivers a message. Client is the SMTP implementation.
type Sender interface {
	Send(msg *Message) error
}

// Client sends mail over SMTP.
type Client struct {
	config *Config
}

func NewClient(config *Config) *Client {
	if config.Port == 0 {
		config.Port = 587
	}
	return &Client{config: config}
}

// Send validates msg and hands it to the SMTP server.
func (c *Client) Send(msg *Message) error {
	if msg.From == "" {
		msg.From = c.config.From
	}
	if err := validate(msg); err != nil {
		return err
	}

	recipients := append([]string{}, msg.To...)
	recipients = append(recipients, msg.Cc...)
	recipients = append(recipients, msg.Bcc...)

	auth := smtp.PlainAuth("", c.config.Username, c.config.Password, c.config.Host)
	addr := fmt.Sprintf("%s:%d", c.config.Host, c.config.Port)
	from := envelopeAddress(msg.From)
	raw := buildMessage(msg)

	if c.config.UseTLS || c.config.Port == 587 {
		return c.sendWithTLS(addr, auth, from, recipients, raw)
	}
	return smtp.SendMail(addr, auth, from, recipients, raw)
}

func validate(msg *Message) error {
	if msg.From == "" {
		return fmt.Errorf("sender is empty")
	}
	if len(msg.To) == 0 {
		return fmt.Errorf("recipient list is empty")
	}
	if msg.Subject == "" {
		return fmt.Errorf("subject is empty")
	}
	if msg.ContentType == "" {
		msg.ContentType = "text/plain; charset=UTF-8"
	}
	return nil
}

// buildMessage renders headers in a fixed order followed by the body.
func buildMessage(msg *Message) []byte {
	var b strings.Builder
	header := func(k, v string) {
		b.WriteString(k)
		b.WriteString(": ")
		b.WriteString(v)
		b.WriteString("\r\n")
	}
	header("From", msg.From)
	header("To", strings.Join(msg.To, ", "))
	if len(msg.Cc) > 0 {
		header("Cc", strings.Join(msg.Cc, ", "))
	}
	header("Subject", msg.Subject)
	header("MIME-Version", "1.0")
	header("Content-Type", msg.ContentType)
	b.WriteString("\r\n")
	b.WriteString(msg.Body)
	return []byte(b.String())
}

// envelopeAddress strips a display name: "MedSync <a@b>" -> "a@b".
func envelopeAddress(from string) string {
	if i := strings.LastIndex(from, "<"); i >= 0 {
		if j := strings.LastIndex(from, ">"); j > i {
			return from[i+1 : j]
		}
	}
	return from
}

func (c *Client) sendWithTLS(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	client, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	defer client.Close()

	if err = client.StartTLS(&tls.Config{ServerName: c.config.Host}); err != nil {
		return fmt.Errorf("starttls: %w", err)
	}
	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err = client.Mail(from); err != nil {
		return fmt.Errorf("smtp MAIL FROM: %w", err)
	}
	for _, recipient := range to {
		if err = client.Rcpt(recipient); err != nil {
			return fmt.Errorf("smtp RCPT TO %s: %w", recipient, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp DATA: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("write body: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("close body: %w", err)
	}

	return client.Quit()
}

// SendHTML is a convenience wrapper for a single-recipient HTML mail.
func SendHTML(s Sender, from, to, subject, htmlBody string) error {
	return s.Send(&Message{
		From:        from,
		To:          []string{to},
		Subject:     subject,
		Body:        htmlBody,
		ContentType: "text/html; charset=UTF-8",
	})
}
