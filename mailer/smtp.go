package mailer

import (
	"context"
	"fmt"
	"log"
	"mime"
	"net/smtp"
	"strings"

	"flappion-backend/utils"
)

const boundary = "----=_FLAPPION_EMAIL_BOUNDARY"

type SMTPMailer struct {
	host     string
	port     string
	username string
	password string
	send     func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewSMTP(host, port, username, password string) *SMTPMailer {
	return &SMTPMailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		send:     smtp.SendMail,
	}
}

func (m *SMTPMailer) Provider() string { return "smtp" }

func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	auth := smtp.PlainAuth("", m.username, m.password, m.host)
	addr := fmt.Sprintf("%s:%s", m.host, m.port)

	if err := m.send(addr, auth, m.username, msg.To, buildMIME(msg)); err != nil {
		log.Printf("Failed to send email to %s: %v", strings.Join(msg.To, ","), err)
		return fmt.Errorf("smtp send: %w", err)
	}

	log.Printf("Email sent to %s", strings.Join(msg.To, ","))
	return nil
}

func buildMIME(msg Message) []byte {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", utils.SanitizeHeader(msg.From)))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", utils.SanitizeHeader(strings.Join(msg.To, ", "))))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("utf-8", utils.SanitizeHeader(msg.Subject))))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString(fmt.Sprintf("Content-Type: multipart/alternative; boundary=\"%s\"\r\n\r\n", boundary))

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
	sb.WriteString(msg.Text + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s\r\n", boundary))
	sb.WriteString("Content-Type: text/html; charset=utf-8\r\n\r\n")
	sb.WriteString(msg.HTML + "\r\n")

	sb.WriteString(fmt.Sprintf("--%s--\r\n", boundary))
	return []byte(sb.String())
}
