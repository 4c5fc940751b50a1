package notifier

import (
	"bytes"
	"html/template"
	"os"
	"strings"

	"djp.chapter42.de/beeper/internal/logger"
	"go.uber.org/zap"
)

type mailView struct {
	MsgHTML template.HTML
	Email   string
	SentAt  string
	Kind    string
}

// Eingebautes Fallback, falls keine Template-Datei konfiguriert oder lesbar ist.
const fallbackTemplate = `<!doctype html><html><head><meta charset="utf-8"><title>Motorola Beeper</title></head>
<body style="margin:0;background:#f4f5f7;padding:24px;">
<div style="max-width:560px;margin:0 auto;background:#ffffff;border:1px solid #e5e7eb;border-radius:16px;overflow:hidden;">
  <div style="padding:14px 18px;border-bottom:1px solid #f1f5f9;background:#fff;">
    <span style="font-weight:900;font-size:14px;letter-spacing:1px;color:#111;">MOTOROLA FLEX</span>
    <span style="float:right;font-size:12px;color:#9ca3af;">{{.Kind}}</span>
  </div>
  <div style="padding:20px;">
    <div style="font-size:12px;font-weight:700;color:#9ca3af;letter-spacing:1.5px;">MSG</div>
    <div style="font-family:'Courier New',monospace;font-size:18px;color:#111;line-height:1.6;background:rgba(0,0,0,0.03);padding:8px 12px;border-radius:8px;">{{.MsgHTML}}</div>
    <div style="font-size:12px;font-weight:700;color:#9ca3af;letter-spacing:1.5px;margin-top:14px;">EMAIL</div>
    <div style="font-size:14px;color:#1f2937;">{{.Email}}</div>
    <div style="font-size:12px;font-weight:700;color:#9ca3af;letter-spacing:1.5px;margin-top:14px;">TIM</div>
    <div style="font-size:14px;color:#1f2937;">{{.SentAt}}</div>
  </div>
</div>
</body></html>`

func (m *Mailer) renderBody(to, content, kind, sentAt string) string {
	view := mailView{
		MsgHTML: msgHTML(content),
		Email:   to,
		SentAt:  sentAt,
		Kind:    kind,
	}

	tpl := m.loadTemplate()
	var buf bytes.Buffer
	if err := tpl.Execute(&buf, view); err != nil {
		logger.Log.Error("Fehler beim Rendern des Mail-Templates:", zap.Error(err))
		return string(view.MsgHTML)
	}
	return buf.String()
}

func (m *Mailer) loadTemplate() *template.Template {
	if m.tplFile != "" {
		raw, err := os.ReadFile(m.tplFile)
		if err == nil {
			if tpl, err := template.New("mail").Parse(string(raw)); err == nil {
				return tpl
			} else {
				logger.Log.Warn("Mail-Template nicht parsebar, verwende Fallback:", zap.String("filename", m.tplFile), zap.Error(err))
			}
		} else {
			logger.Log.Warn("Mail-Template nicht lesbar, verwende Fallback:", zap.String("filename", m.tplFile), zap.Error(err))
		}
	}
	return template.Must(template.New("mail").Parse(fallbackTemplate))
}

// msgHTML escapet den Nachrichtentext und erhält Zeilenumbrüche als <br>.
func msgHTML(content string) template.HTML {
	esc := template.HTMLEscapeString(content)
	esc = strings.ReplaceAll(esc, "\r\n", "<br>")
	esc = strings.ReplaceAll(esc, "\n", "<br>")
	return template.HTML(esc)
}
