package notifier

import (
	"fmt"
	"net/smtp"
	"os"

	logrus "github.com/sirupsen/logrus"
)

// Email delivery is strictly best-effort: every failure is logged and
// swallowed so a mail outage can never fail an assignment or approval
// write. SendAsync is the only entry point controllers use.

type mailConfig struct {
	host     string
	port     string
	from     string
	password string
}

func loadConfig() mailConfig {
	return mailConfig{
		host:     getEnv("SMTP_HOST", ""),
		port:     getEnv("SMTP_PORT", "587"),
		from:     getEnv("SMTP_FROM", "coordination@example.com"),
		password: getEnv("SMTP_PASSWORD", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return defaultValue
}

// SendAsync fires the email on its own goroutine and returns immediately.
func SendAsync(to, subject, body string) {
	go func() {
		if err := send(to, subject, body); err != nil {
			logrus.WithError(err).WithField("to", to).Warn("email delivery failed")
		}
	}()
}

func send(to, subject, body string) error {
	cfg := loadConfig()
	if cfg.host == "" {
		// No SMTP configured (dev/test). Log and move on.
		logrus.WithField("to", to).WithField("subject", subject).Info("SMTP not configured, skipping email")
		return nil
	}

	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n%s", cfg.from, to, subject, body)

	var auth smtp.Auth
	if cfg.password != "" {
		auth = smtp.PlainAuth("", cfg.from, cfg.password, cfg.host)
	}
	return smtp.SendMail(cfg.host+":"+cfg.port, auth, cfg.from, []string{to}, []byte(msg))
}
