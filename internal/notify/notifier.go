// Package notify delivers disclosure reports as HTML email with the
// filing document attached.
package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"log/slog"

	gomail "gopkg.in/gomail.v2"

	"github.com/finwatch/disclosure-tracker/internal/config"
	"github.com/finwatch/disclosure-tracker/pkg/models"
)

var bodyTemplate = template.Must(template.New("email").Parse(emailTemplate))

// EmailNotifier sends disclosure reports through an authenticated SMTP
// relay, one message per configured recipient on a single connection.
type EmailNotifier struct {
	cfg config.EmailConfig
	log *slog.Logger
}

// New creates an email notifier for the given mail relay settings.
func New(cfg config.EmailConfig, log *slog.Logger) *EmailNotifier {
	return &EmailNotifier{cfg: cfg, log: log}
}

// Notify renders the report and sends it to every configured
// recipient, attaching the raw document bytes when present. A nil
// return means the report was delivered.
func (n *EmailNotifier) Notify(filing models.Filing, trades []models.Trade, pdfData []byte) error {
	body, err := renderBody(filing, trades)
	if err != nil {
		return fmt.Errorf("render notification body: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", n.cfg.SenderEmail)
	m.SetHeader("Subject", fmt.Sprintf("New Financial Disclosure: %s (%s)", filing.Name, filing.FilingType))
	m.SetBody("text/html", body)

	if len(pdfData) > 0 {
		name := fmt.Sprintf("%s_%s.pdf", filing.Name, filing.FilingType)
		m.Attach(name, gomail.SetCopyFunc(func(w io.Writer) error {
			_, err := w.Write(pdfData)
			return err
		}))
	}

	d := gomail.NewDialer(n.cfg.SMTPServer, n.cfg.SMTPPort, n.cfg.SenderEmail, n.cfg.SenderPassword)
	sender, err := d.Dial()
	if err != nil {
		return fmt.Errorf("connect to mail relay %s:%d: %w", n.cfg.SMTPServer, n.cfg.SMTPPort, err)
	}
	defer sender.Close()

	// One message per recipient, reusing the connection.
	for _, recipient := range n.cfg.RecipientEmails {
		m.SetHeader("To", recipient)
		if err := gomail.Send(sender, m); err != nil {
			return fmt.Errorf("send notification to %s: %w", recipient, err)
		}
		n.log.Info("email notification sent",
			"recipient", recipient,
			"identity", filing.Identity())
	}

	return nil
}

// renderBody renders the HTML report for a filing and its trades.
func renderBody(filing models.Filing, trades []models.Trade) (string, error) {
	var buf bytes.Buffer
	data := struct {
		Filing models.Filing
		Trades []models.Trade
	}{filing, trades}
	if err := bodyTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
