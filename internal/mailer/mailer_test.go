package mailer

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/SeakMengs/AutoTermo/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pendingVars struct {
	RecipientName string
	TermNumber    string
	ProjectTitle  string
	StudentName   string
	Requirement   string
	ActionURL     string
}

func TestRenderTermoPendingTemplate(t *testing.T) {
	subject, body, err := render(Message{Template: TERMO_PENDING_TEMPLATE, Data: pendingVars{
		RecipientName: "Prof. Ada",
		TermNumber:    "TC-2025-1-V1",
		ProjectTitle:  "Monitoria de Cálculo I",
		StudentName:   "Alan <script>",
		Requirement:   "Assinatura do professor (ata de seleção)",
		ActionURL:     "https://monitoria.example/termos/V1",
	}})
	require.NoError(t, err)

	assert.Equal(t, "Termo de compromisso TC-2025-1-V1 aguardando sua assinatura", subject)
	assert.Contains(t, body, "Prof. Ada")
	assert.Contains(t, body, "https://monitoria.example/termos/V1")
	// html/template escapes user supplied names
	assert.NotContains(t, body, "<script>")
}

func TestRenderUnknownTemplate(t *testing.T) {
	_, _, err := render(Message{Template: "missing.tmpl"})
	assert.Error(t, err)
}

func TestSMTPMailerBuildMessage(t *testing.T) {
	m := NewSMTPMailer(config.SMTPConfig{HOST: "localhost", PORT: 1025, USERNAME: "noreply@monitoria.example"}, "", nil)

	msg, err := m.build(Message{
		Template: TERMO_PENDING_TEMPLATE,
		ToName:   "Alan",
		ToEmail:  "alan@monitoria.example",
		Data:     pendingVars{TermNumber: "TC-2025-1-V1"},
	})
	require.NoError(t, err)

	var out bytes.Buffer
	_, err = msg.WriteTo(&out)
	require.NoError(t, err)

	raw := out.String()
	assert.True(t, strings.Contains(raw, "alan@monitoria.example"))
	assert.True(t, strings.Contains(raw, "noreply@monitoria.example"))
	assert.Contains(t, msg.GetHeader("Subject"), "Termo de compromisso TC-2025-1-V1 aguardando sua assinatura")
}

func TestNewClient(t *testing.T) {
	cfg := &config.Config{ENV: "development"}

	cfg.Mail.DRIVER = DriverSendGrid
	c, err := NewClient(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &SendGridMailer{}, c)

	cfg.Mail.DRIVER = DriverSMTP
	c, err = NewClient(cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &SMTPMailer{}, c)

	cfg.Mail.DRIVER = "pigeon"
	_, err = NewClient(cfg, nil)
	assert.Error(t, err)
}

func TestRetry(t *testing.T) {
	calls := 0
	status, err := retry(context.Background(), func() (int, error) {
		calls++
		if calls < 2 {
			return -1, errors.New("connection reset")
		}
		return 202, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 202, status)
	assert.Equal(t, 2, calls)
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	start := time.Now()
	_, err := retry(ctx, func() (int, error) {
		calls++
		return -1, errors.New("connection refused")
	})
	require.Error(t, err)
	assert.Equal(t, 1, calls)
	assert.Less(t, time.Since(start), time.Second)
	assert.Contains(t, err.Error(), "connection refused")
}
