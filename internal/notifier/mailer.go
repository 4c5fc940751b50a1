package notifier

import (
	"fmt"
	"time"

	"djp.chapter42.de/beeper/internal/data"
	"djp.chapter42.de/beeper/internal/logger"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

const (
	DefaultFromName = "Motorola Beeper"
	mailSubject     = "📟 Motorola Beeper"
)

// Mailer stellt Nachrichten per SMTP zu und implementiert damit den
// Notifier des Dispatchers.
type Mailer struct {
	dialer   *gomail.Dialer
	fromName string
	fromAddr string
	tplFile  string
}

func NewMailer(cfg *data.BeeperConfig) *Mailer {
	host, port, secure := cfg.SMTP.Resolve()

	d := gomail.NewDialer(host, port, cfg.SMTP.User, cfg.SMTP.Password())
	d.SSL = secure
	logger.Log.Info("SMTP-Ziel:", zap.String("host", host), zap.Int("port", port), zap.Bool("secure", secure))

	fromName := cfg.Mail.FromName
	if fromName == "" {
		fromName = DefaultFromName
	}
	fromAddr := cfg.Mail.FromAddress
	if fromAddr == "" {
		fromAddr = cfg.SMTP.User
	}

	return &Mailer{
		dialer:   d,
		fromName: fromName,
		fromAddr: fromAddr,
		tplFile:  cfg.Mail.TemplateFile,
	}
}

// Verify baut probeweise eine SMTP-Verbindung auf und schließt sie wieder.
func (m *Mailer) Verify() error {
	sc, err := m.dialer.Dial()
	if err != nil {
		return err
	}
	return sc.Close()
}

// Send verschickt die Nachricht als Text mit HTML-Alternative. kind
// beschreibt die Zustellungsart und landet im Mailkopfbereich.
func (m *Mailer) Send(to, content, kind string) error {
	sentAt := data.FormatLocalMinute(time.Now())

	msg := gomail.NewMessage()
	msg.SetAddressHeader("From", m.fromAddr, m.fromName)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", mailSubject)
	msg.SetBody("text/plain", fmt.Sprintf("[MSG]\n%s\n\n[EMAIL] %s\n[TIM] %s", content, to, sentAt))
	msg.AddAlternative("text/html", m.renderBody(to, content, kind, sentAt))

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("mailversand an %s fehlgeschlagen: %w", to, err)
	}
	return nil
}
