package notify

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"math"
	"net"
	"net/smtp"
	"time"
)

var resetTemplate = template.Must(template.New("reset").Parse(`<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
  <h2 style="color: #0d47a1;">Password Reset</h2>
  <p>You requested a password reset. Use the following verification code to reset your password:</p>
  <div style="background-color: #f5f5f5; padding: 15px; font-size: 24px; text-align: center; letter-spacing: 5px; font-weight: bold;">
    {{.Code}}
  </div>
  <p>This code will expire in {{.Minutes}} minutes.</p>
  <p>If you didn't request this reset, please ignore this email.</p>
</div>`))

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

type SMTPNotifier struct {
	server   string
	user     string
	password string
	from     string
	send     sendFunc
}

// NewSMTPNotifier expects server as host:port. When from is empty the SMTP
// user is used as the sender address.
func NewSMTPNotifier(server, user, password, from string) (*SMTPNotifier, error) {
	if _, _, err := net.SplitHostPort(server); err != nil {
		return nil, fmt.Errorf("invalid SMTP_SERVER format (expected host:port): %w", err)
	}
	if from == "" {
		from = user
	}
	return &SMTPNotifier{
		server:   server,
		user:     user,
		password: password,
		from:     from,
		send:     smtp.SendMail,
	}, nil
}

func (n *SMTPNotifier) SendPasswordReset(ctx context.Context, email, code string, ttl time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg, err := n.resetMessage(email, code, ttl)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if n.user != "" {
		host, _, _ := net.SplitHostPort(n.server)
		auth = smtp.PlainAuth("", n.user, n.password, host)
	}

	if err := n.send(n.server, auth, n.from, []string{email}, msg); err != nil {
		return fmt.Errorf("failed to send email via %s: %w", n.server, err)
	}
	return nil
}

func (n *SMTPNotifier) resetMessage(email, code string, ttl time.Duration) ([]byte, error) {
	var body bytes.Buffer
	err := resetTemplate.Execute(&body, struct {
		Code    string
		Minutes int
	}{Code: code, Minutes: int(math.Ceil(ttl.Minutes()))})
	if err != nil {
		return nil, err
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", n.from)
	fmt.Fprintf(&msg, "To: %s\r\n", email)
	msg.WriteString("Subject: Password Reset OTP\r\n")
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.Write(body.Bytes())
	msg.WriteString("\r\n")
	return msg.Bytes(), nil
}
