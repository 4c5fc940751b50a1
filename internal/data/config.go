package data

import (
	"os"
	"strings"
)

type BeeperConfig struct {
	Port        string     `mapstructure:"port"`
	Debug       bool       `mapstructure:"debug"`
	PendingFile string     `mapstructure:"pending_file"`
	SMTP        SMTPConfig `mapstructure:"smtp"`
	Mail        MailConfig `mapstructure:"mail"`
}

type SMTPConfig struct {
	Host   string `mapstructure:"host"`
	Port   int    `mapstructure:"port"`
	Secure *bool  `mapstructure:"secure"`
	User   string `mapstructure:"user"`
	Pass   string `mapstructure:"pass"`
}

type MailConfig struct {
	FromName     string `mapstructure:"from_name"`
	FromAddress  string `mapstructure:"from_address"`
	TemplateFile string `mapstructure:"template_file"`
}

const (
	DefaultSMTPHost   = "smtp.qq.com"
	DefaultSMTPPort   = 465
	DefaultSubmission = 587
)

// Resolve wendet die SMTP-Defaults an: ohne Host smtp.qq.com, ohne Port 465
// bzw. 587 wenn secure explizit abgeschaltet wurde. Implizites TLS gilt
// genau dann, wenn der aufgelöste Port 465 ist.
func (c SMTPConfig) Resolve() (host string, port int, secure bool) {
	host = strings.TrimSpace(c.Host)
	if host == "" {
		host = DefaultSMTPHost
	}
	port = c.Port
	if port == 0 {
		if c.Secure != nil && !*c.Secure {
			port = DefaultSubmission
		} else {
			port = DefaultSMTPPort
		}
	}
	return host, port, port == DefaultSMTPPort
}

// Password liefert das konfigurierte Passwort, ersatzweise SMTP_PASS aus
// der Umgebung.
func (c SMTPConfig) Password() string {
	if c.Pass != "" {
		return c.Pass
	}
	return os.Getenv("SMTP_PASS")
}
