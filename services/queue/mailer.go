package queue

import (
	"crypto/tls"
	"fmt"
	"net"
	"net/smtp"
	"strconv"
	"time"
)

const smtpDialTimeout = 15 * time.Second

// SMTPMailer sends plain-text mail over SMTP. Port 465 uses implicit
// TLS; other ports upgrade with STARTTLS when the server offers it.
type SMTPMailer struct {
	Server   string
	Port     int
	Username string
	Password string
	From     string
	UseSSL   bool
}

// NewSMTPMailer creates a mailer from the email configuration.
func NewSMTPMailer(server string, port int, username, password, from string, useSSL bool) *SMTPMailer {
	return &SMTPMailer{
		Server:   server,
		Port:     port,
		Username: username,
		Password: password,
		From:     from,
		UseSSL:   useSSL,
	}
}

// SendMessage delivers one message to one recipient, synchronously.
func (m *SMTPMailer) SendMessage(recipient, subject, body string) error {
	addr := net.JoinHostPort(m.Server, strconv.Itoa(m.Port))

	var conn net.Conn
	var err error
	if m.Port == 465 {
		conn, err = tls.DialWithDialer(&net.Dialer{Timeout: smtpDialTimeout}, "tcp", addr, &tls.Config{ServerName: m.Server})
	} else {
		conn, err = net.DialTimeout("tcp", addr, smtpDialTimeout)
	}
	if err != nil {
		return fmt.Errorf("smtp dial: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, m.Server)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	if m.Port != 465 && m.UseSSL {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: m.Server}); err != nil {
				return fmt.Errorf("starttls: %w", err)
			}
		}
	}

	if m.Username != "" {
		auth := smtp.PlainAuth("", m.Username, m.Password, m.Server)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(m.From); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	if err := client.Rcpt(recipient); err != nil {
		return fmt.Errorf("smtp rcpt %s: %w", recipient, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	headers := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nContent-Type: text/plain; charset=UTF-8\r\n\r\n",
		m.From, recipient, subject)
	if _, err := w.Write([]byte(headers + body)); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return client.Quit()
}
