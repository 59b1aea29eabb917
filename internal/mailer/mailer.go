package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/SeakMengs/AutoTermo/internal/config"
	"go.uber.org/zap"
)

const (
	FROM_NAME              = "Monitoria"
	MAX_RETRY              = 3
	TERMO_PENDING_TEMPLATE = "termo_pending.tmpl"
)

const (
	DriverSendGrid = "sendgrid"
	DriverSMTP     = "smtp"
)

//go:embed "templates"
var FS embed.FS

// Message addresses one recipient. Data is executed against the "subject"
// and "body" blocks of templates/<Template>.
type Message struct {
	Template string
	ToName   string
	ToEmail  string
	Data     any
}

type Client interface {
	Send(ctx context.Context, msg Message) (int, error)
}

func NewClient(cfg *config.Config, logger *zap.SugaredLogger) (Client, error) {
	switch cfg.Mail.DRIVER {
	case DriverSendGrid, "":
		return NewSendgrid(cfg.Mail.SEND_GRID.API_KEY, cfg.Mail.FROM_EMAIL, cfg.IsProduction(), logger), nil
	case DriverSMTP:
		return NewSMTPMailer(cfg.Mail.SMTP, cfg.Mail.FROM_EMAIL, logger), nil
	default:
		return nil, fmt.Errorf("unknown mail driver %q", cfg.Mail.DRIVER)
	}
}

func render(msg Message) (subject string, body string, err error) {
	// Parsed per message since every template defines its own "subject" and "body"
	tmpl, err := template.ParseFS(FS, "templates/"+msg.Template)
	if err != nil {
		return "", "", fmt.Errorf("parse mail template %s: %w", msg.Template, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "subject", msg.Data); err != nil {
		return "", "", fmt.Errorf("render subject of %s: %w", msg.Template, err)
	}
	subject = buf.String()

	buf.Reset()
	if err := tmpl.ExecuteTemplate(&buf, "body", msg.Data); err != nil {
		return "", "", fmt.Errorf("render body of %s: %w", msg.Template, err)
	}

	return subject, buf.String(), nil
}

// retry calls send up to MAX_RETRY times with a linear backoff, giving up
// early when ctx ends.
func retry(ctx context.Context, send func() (int, error)) (int, error) {
	var lastErr error
	for attempt := 1; attempt <= MAX_RETRY; attempt++ {
		status, err := send()
		if err == nil {
			return status, nil
		}
		lastErr = err

		if attempt == MAX_RETRY {
			break
		}
		select {
		case <-ctx.Done():
			return -1, fmt.Errorf("mail send cancelled after %d attempt(s): %w", attempt, lastErr)
		case <-time.After(time.Duration(attempt) * time.Second):
		}
	}

	return -1, fmt.Errorf("failed to send email after %d attempts: %w", MAX_RETRY, lastErr)
}
