package report

import (
	"fmt"
	"net/smtp"
	"strings"
)

// Sender delivers a composed report.
type Sender interface {
	Send(to, subject, body string) error
}

// SMTPSender sends plain-text mail through a relay. No auth: the relay is
// expected to be an internal submission host.
type SMTPSender struct {
	Host string
	Port int
	From string
}

func NewSMTPSender(host string, port int, from string) *SMTPSender {
	return &SMTPSender{Host: host, Port: port, From: from}
}

func (s *SMTPSender) Send(to, subject, body string) error {
	msg := strings.Join([]string{
		"From: " + s.From,
		"To: " + to,
		"Subject: " + subject,
		"",
		body,
	}, "\r\n")
	addr := fmt.Sprintf("%s:%d", s.Host, s.Port)
	if err := smtp.SendMail(addr, nil, s.From, []string{to}, []byte(msg)); err != nil {
		return fmt.Errorf("send report mail: %w", err)
	}
	return nil
}
