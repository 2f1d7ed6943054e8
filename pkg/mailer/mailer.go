// Файл: pkg/mailer/mailer.go
package mailer

import (
	"crypto/tls"
	"fmt"
	"mime"
	"net"
	"net/smtp"
	"strings"
	"time"
)

// MailerInterface - отправка HTML-писем через SMTP.
type MailerInterface interface {
	Send(to, subject, htmlBody string) error
}

// Mailer работает через SMTPS (implicit TLS, порт 465) - так принимает
// почту smtp.yandex.ru.
type Mailer struct {
	host     string
	port     string
	user     string
	password string
	timeout  time.Duration
}

func NewMailer(host, port, user, password string) MailerInterface {
	return &Mailer{
		host:     host,
		port:     port,
		user:     user,
		password: password,
		timeout:  10 * time.Second,
	}
}

func (m *Mailer) Send(to, subject, htmlBody string) error {
	addr := net.JoinHostPort(m.host, m.port)

	dialer := &net.Dialer{Timeout: m.timeout}
	conn, err := tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: m.host})
	if err != nil {
		return fmt.Errorf("ошибка TLS-соединения с SMTP-сервером: %w", err)
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("ошибка создания SMTP-клиента: %w", err)
	}
	defer func() { _ = client.Close() }()

	auth := smtp.PlainAuth("", m.user, m.password, m.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("ошибка авторизации на SMTP-сервере: %w", err)
	}

	if err := client.Mail(m.user); err != nil {
		return err
	}
	if err := client.Rcpt(to); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte(m.buildMessage(to, subject, htmlBody))); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	return client.Quit()
}

func (m *Mailer) buildMessage(to, subject, htmlBody string) string {
	var b strings.Builder
	b.WriteString("From: " + m.user + "\r\n")
	b.WriteString("To: " + to + "\r\n")
	b.WriteString("Subject: " + mime.QEncoding.Encode("utf-8", subject) + "\r\n")
	b.WriteString("MIME-Version: 1.0\r\n")
	b.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	b.WriteString("\r\n")
	b.WriteString(htmlBody)
	b.WriteString("\r\n")
	return b.String()
}
