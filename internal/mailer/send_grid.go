package mailer

import (
	"context"
	"fmt"

	"github.com/SeakMengs/AutoTermo/internal/util"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"go.uber.org/zap"
)

type SendGridMailer struct {
	fromEmail string
	client    *sendgrid.Client
	isSandBox bool
	logger    *zap.SugaredLogger
}

func NewSendgrid(apiKey string, fromEmail string, isProduction bool, logger *zap.SugaredLogger) *SendGridMailer {
	if logger == nil {
		logger = util.NewNopLogger()
	}

	return &SendGridMailer{
		fromEmail: fromEmail,
		client:    sendgrid.NewSendClient(apiKey),
		// Sandbox mode only validates the request, nothing is delivered
		isSandBox: !isProduction,
		logger:    logger,
	}
}

func (m SendGridMailer) build(msg Message) (*mail.SGMailV3, error) {
	subject, body, err := render(msg)
	if err != nil {
		return nil, err
	}

	message := mail.NewSingleEmail(mail.NewEmail(FROM_NAME, m.fromEmail), subject, mail.NewEmail(msg.ToName, msg.ToEmail), "", body)
	message.SetMailSettings(&mail.MailSettings{
		SandboxMode: &mail.Setting{Enable: &m.isSandBox},
	})

	return message, nil
}

func (m SendGridMailer) Send(ctx context.Context, msg Message) (int, error) {
	message, err := m.build(msg)
	if err != nil {
		m.logger.Errorf("Failed to render %s: %v", msg.Template, err)
		return -1, err
	}

	status, err := retry(ctx, func() (int, error) {
		res, err := m.client.SendWithContext(ctx, message)
		if err != nil {
			return -1, err
		}
		// 4xx will not get better on retry but the caller decides that
		if res.StatusCode >= 300 {
			return res.StatusCode, fmt.Errorf("sendgrid responded %d: %s", res.StatusCode, res.Body)
		}
		return res.StatusCode, nil
	})
	if err != nil {
		m.logger.Errorw("Failed to send email", "to", msg.ToEmail, "template", msg.Template, "error", err)
		return status, err
	}

	return status, nil
}
