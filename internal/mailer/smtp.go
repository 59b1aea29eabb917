package mailer

import (
	"context"
	"net/http"

	"github.com/SeakMengs/AutoTermo/internal/config"
	"github.com/SeakMengs/AutoTermo/internal/util"
	"go.uber.org/zap"
	"gopkg.in/gomail.v2"
)

// SMTPMailer is the driver for local mail catchers and institutional relays.
type SMTPMailer struct {
	fromEmail string
	dialer    *gomail.Dialer
	logger    *zap.SugaredLogger
}

func NewSMTPMailer(cfg config.SMTPConfig, fromEmail string, logger *zap.SugaredLogger) *SMTPMailer {
	if logger == nil {
		logger = util.NewNopLogger()
	}

	if fromEmail == "" {
		fromEmail = cfg.USERNAME
	}

	return &SMTPMailer{
		fromEmail: fromEmail,
		dialer:    gomail.NewDialer(cfg.HOST, cfg.PORT, cfg.USERNAME, cfg.PASSWORD),
		logger:    logger,
	}
}

func (sm *SMTPMailer) build(msg Message) (*gomail.Message, error) {
	subject, body, err := render(msg)
	if err != nil {
		return nil, err
	}

	m := gomail.NewMessage()
	m.SetAddressHeader("From", sm.fromEmail, FROM_NAME)
	m.SetAddressHeader("To", msg.ToEmail, msg.ToName)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	return m, nil
}

// Send dials per message. gomail has no context support, ctx only bounds
// the retries.
func (sm *SMTPMailer) Send(ctx context.Context, msg Message) (int, error) {
	message, err := sm.build(msg)
	if err != nil {
		sm.logger.Errorf("Failed to render %s: %v", msg.Template, err)
		return http.StatusInternalServerError, err
	}

	status, err := retry(ctx, func() (int, error) {
		if err := sm.dialer.DialAndSend(message); err != nil {
			return http.StatusServiceUnavailable, err
		}
		return http.StatusOK, nil
	})
	if err != nil {
		sm.logger.Errorw("Failed to send email", "to", msg.ToEmail, "template", msg.Template, "error", err)
		return status, err
	}

	sm.logger.Debugw("Email sent", "to", msg.ToEmail, "template", msg.Template)
	return status, nil
}
