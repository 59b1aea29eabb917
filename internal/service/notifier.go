package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/SeakMengs/AutoTermo/internal/mailer"
	"github.com/SeakMengs/AutoTermo/internal/repository"
	"github.com/SeakMengs/AutoTermo/pkg/termo"
	"go.uber.org/zap"
)

// One reminder for one missing signer of one term.
type Reminder struct {
	VacancyID      string              `json:"vacancy_id"`
	TermNumber     string              `json:"term_number"`
	ProjectTitle   string              `json:"project_title"`
	StudentName    string              `json:"student_name"`
	SignatureType  termo.SignatureType `json:"signature_type"`
	RecipientID    string              `json:"recipient_id"`
	RecipientName  string              `json:"recipient_name"`
	RecipientEmail string              `json:"recipient_email"`
}

type Notifier interface {
	NotifyPendingSignature(ctx context.Context, r Reminder) error
}

func toReminder(detail *repository.VacancyDetail, termNumber string, missing termo.SignatureType) Reminder {
	r := Reminder{
		VacancyID:     detail.VacancyID,
		TermNumber:    termNumber,
		ProjectTitle:  detail.ProjectTitle,
		StudentName:   detail.StudentName,
		SignatureType: missing,
	}

	if missing == termo.SignatureTypeProfessorSelectionRecord {
		r.RecipientID, r.RecipientName, r.RecipientEmail = detail.ProfessorID, detail.ProfessorName, detail.ProfessorEmail
	} else {
		r.RecipientID, r.RecipientName, r.RecipientEmail = detail.StudentID, detail.StudentName, detail.StudentEmail
	}

	return r
}

// MailNotifier turns reminders into e-mails.
type MailNotifier struct {
	client      mailer.Client
	frontendURL string
	logger      *zap.SugaredLogger
}

func NewMailNotifier(client mailer.Client, frontendURL string, logger *zap.SugaredLogger) *MailNotifier {
	return &MailNotifier{client: client, frontendURL: strings.TrimRight(frontendURL, "/"), logger: logger}
}

type termoPendingMail struct {
	RecipientName string
	TermNumber    string
	ProjectTitle  string
	StudentName   string
	Requirement   string
	ActionURL     string
}

func (mn *MailNotifier) NotifyPendingSignature(ctx context.Context, r Reminder) error {
	if r.RecipientEmail == "" {
		return fmt.Errorf("recipient %s has no e-mail", r.RecipientID)
	}

	vars := termoPendingMail{
		RecipientName: r.RecipientName,
		TermNumber:    r.TermNumber,
		ProjectTitle:  r.ProjectTitle,
		StudentName:   r.StudentName,
		Requirement:   r.SignatureType.Label(),
	}
	if mn.frontendURL != "" {
		vars.ActionURL = fmt.Sprintf("%s/termos/%s", mn.frontendURL, r.VacancyID)
	}

	status, err := mn.client.Send(ctx, mailer.Message{
		Template: mailer.TERMO_PENDING_TEMPLATE,
		ToName:   r.RecipientName,
		ToEmail:  r.RecipientEmail,
		Data:     vars,
	})
	if err != nil {
		return err
	}

	mn.logger.Debugf("Reminder for %s sent to %s with status %d", r.VacancyID, r.RecipientEmail, status)
	return nil
}
