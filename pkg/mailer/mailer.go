// Package mailer delivers templated HTML mail over SMTP.
package mailer

import (
	"bytes"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"net"
	"net/mail"
	"net/smtp"
	"strconv"
	"time"
)

const dialTimeout = 10 * time.Second

var ErrNotConfigured = errors.New("mailer is not configured")

type Mailer interface {
	SendHTML(to, subject, htmlTpl string, data any) error
}

// Config describes the relay. Credentials are only offered over implicit TLS.
type Config struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	UseTLS   bool
}

type smtpMailer struct {
	cfg Config
}

func New(cfg *Config) Mailer {
	return &smtpMailer{cfg: *cfg}
}

func (m *smtpMailer) SendHTML(to, subject, htmlTpl string, data any) error {
	if m.cfg.Host == "" {
		return ErrNotConfigured
	}

	msg, err := compose(m.cfg.From, to, subject, htmlTpl, data)
	if err != nil {
		return err
	}

	c, err := m.dial()
	if err != nil {
		return err
	}

	defer func() {
		_ = c.Close()
	}()

	if m.cfg.UseTLS && m.cfg.Username != "" {
		if err := c.Auth(smtp.PlainAuth("", m.cfg.Username, m.cfg.Password, m.cfg.Host)); err != nil {
			return fmt.Errorf("failed to authenticate: %w", err)
		}
	}

	if err := c.Mail(envelopeAddress(m.cfg.From)); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err := c.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient %s: %w", to, err)
	}

	w, err := c.Data()
	if err != nil {
		return fmt.Errorf("failed to open data: %w", err)
	}

	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("failed to write message: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close data: %w", err)
	}

	return c.Quit()
}

func (m *smtpMailer) dial() (*smtp.Client, error) {
	addr := net.JoinHostPort(m.cfg.Host, strconv.Itoa(m.cfg.Port))
	dialer := &net.Dialer{Timeout: dialTimeout}

	var (
		conn net.Conn
		err  error
	)

	if m.cfg.UseTLS {
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: m.cfg.Host})
	} else {
		conn, err = dialer.Dial("tcp", addr)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to dial %s: %w", addr, err)
	}

	c, err := smtp.NewClient(conn, m.cfg.Host)
	if err != nil {
		_ = conn.Close()

		return nil, fmt.Errorf("failed to start smtp session: %w", err)
	}

	return c, nil
}

// compose renders htmlTpl with data and prepends the RFC 5322 headers.
func compose(from, to, subject, htmlTpl string, data any) ([]byte, error) {
	tpl, err := template.New("mail").Parse(htmlTpl)
	if err != nil {
		return nil, fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer

	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", to)
	fmt.Fprintf(&buf, "Subject: %s\r\n", subject)
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=UTF-8\r\n\r\n")

	if err := tpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to render template: %w", err)
	}

	return buf.Bytes(), nil
}

// envelopeAddress strips the display name; unparsable input is used as is.
func envelopeAddress(from string) string {
	addr, err := mail.ParseAddress(from)
	if err != nil {
		return from
	}

	return addr.Address
}
