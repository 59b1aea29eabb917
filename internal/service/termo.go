package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SeakMengs/AutoTermo/internal/constant"
	filestorage "github.com/SeakMengs/AutoTermo/internal/file_storage"
	"github.com/SeakMengs/AutoTermo/internal/model"
	"github.com/SeakMengs/AutoTermo/internal/repository"
	"github.com/SeakMengs/AutoTermo/internal/util"
	"github.com/SeakMengs/AutoTermo/pkg/termo"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Authenticated caller of every termo operation.
type Actor struct {
	UserID string
	Role   constant.UserRole
}

func (a Actor) IsAdmin() bool {
	return a.Role == constant.UserRoleAdmin
}

type VacancyReader interface {
	GetDetail(ctx context.Context, tx *gorm.DB, vacancyID string) (*repository.VacancyDetail, error)
	ListDetailsByProject(ctx context.Context, tx *gorm.DB, projectID string) ([]repository.VacancyDetail, error)
	ListDetailsByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]repository.VacancyDetail, error)
	ListDetailsByProfessor(ctx context.Context, tx *gorm.DB, professorID string) ([]repository.VacancyDetail, error)
	ListDetails(ctx context.Context, tx *gorm.DB) ([]repository.VacancyDetail, error)
}

type ProjectReader interface {
	GetById(ctx context.Context, tx *gorm.DB, projectID string) (*model.Project, error)
}

type SignatureStore interface {
	ExistsByVacancyAndType(ctx context.Context, tx *gorm.DB, vacancyID string, signatureType termo.SignatureType) (bool, error)
	ListByVacancy(ctx context.Context, tx *gorm.DB, vacancyID string) ([]model.TermSignature, error)
	ListByVacancies(ctx context.Context, tx *gorm.DB, vacancyIDs []string) (map[string][]model.TermSignature, error)
	CreateAndList(ctx context.Context, tx *gorm.DB, signature *model.TermSignature) ([]model.TermSignature, error)
}

type DocumentMarkerStore interface {
	Upsert(ctx context.Context, tx *gorm.DB, doc *model.TermDocument) error
	GetByVacancy(ctx context.Context, tx *gorm.DB, vacancyID string) (*model.TermDocument, error)
	ListByVacancies(ctx context.Context, tx *gorm.DB, vacancyIDs []string) (map[string]model.TermDocument, error)
	SetEmbeddedSignatures(ctx context.Context, tx *gorm.DB, vacancyID string, count int) error
	ListStale(ctx context.Context, tx *gorm.DB, limit int) ([]model.TermDocument, error)
	// LockVacancy runs fn in a transaction that holds an exclusive lock on the
	// vacancy's term. Writers of the stored file must hold it.
	LockVacancy(ctx context.Context, vacancyID string, fn func(tx *gorm.DB) error) error
}

type TermoServiceOptions struct {
	Logger     *zap.SugaredLogger
	Vacancies  VacancyReader
	Projects   ProjectReader
	Signatures SignatureStore
	Documents  DocumentMarkerStore
	Storage    filestorage.DocumentStore
	Renderer   *termo.Renderer
	Overlayer  *termo.Overlayer
	Notifier   Notifier
	// Defaults to 24h
	PresignTTL time.Duration
}

type TermoService struct {
	logger     *zap.SugaredLogger
	vacancies  VacancyReader
	projects   ProjectReader
	signatures SignatureStore
	documents  DocumentMarkerStore
	storage    filestorage.DocumentStore
	renderer   *termo.Renderer
	overlayer  *termo.Overlayer
	notifier   Notifier
	presignTTL time.Duration

	now     func() time.Time
	newCode func() (string, error)
}

const verificationCodeLength = 10

func NewTermoService(opts TermoServiceOptions) *TermoService {
	if opts.PresignTTL <= 0 {
		opts.PresignTTL = constant.TERMO_DOWNLOAD_TTL
	}
	if opts.Overlayer == nil {
		opts.Overlayer = termo.NewOverlayer()
	}

	return &TermoService{
		logger:     opts.Logger,
		vacancies:  opts.Vacancies,
		projects:   opts.Projects,
		signatures: opts.Signatures,
		documents:  opts.Documents,
		storage:    opts.Storage,
		renderer:   opts.Renderer,
		overlayer:  opts.Overlayer,
		notifier:   opts.Notifier,
		presignTTL: opts.PresignTTL,
		now:        time.Now,
		newCode: func() (string, error) {
			return util.GenerateCode(verificationCodeLength)
		},
	}
}

type GenerateResult struct {
	VacancyID        string `json:"vacancyId"`
	DocumentKey      string `json:"documentKey"`
	TermNumber       string `json:"termNumber"`
	VerificationCode string `json:"verificationCode"`
	SignatureCount   int    `json:"signatureCount"`
}

type SignResult struct {
	VacancyID     string              `json:"vacancyId"`
	SignatureType termo.SignatureType `json:"signatureType"`
	Status        termo.Status        `json:"status"`
}

type DownloadResult struct {
	URL        string    `json:"url"`
	Size       int64     `json:"size"`
	TermNumber string    `json:"termNumber"`
	ExpiresAt  time.Time `json:"expiresAt"`
}

type RoleSignature struct {
	Signed       bool       `json:"signed"`
	SignedAt     *time.Time `json:"signedAt,omitempty"`
	SignerUserID string     `json:"signerUserId,omitempty"`
}

type VacancyStatus struct {
	VacancyID         string                `json:"vacancyId"`
	ProjectID         string                `json:"projectId"`
	ProjectTitle      string                `json:"projectTitle"`
	StudentID         string                `json:"studentId"`
	StudentName       string                `json:"studentName"`
	ProfessorID       string                `json:"professorId"`
	ProfessorName     string                `json:"professorName"`
	TermNumber        string                `json:"termNumber"`
	Status            termo.Status          `json:"status"`
	Student           RoleSignature         `json:"student"`
	Professor         RoleSignature         `json:"professor"`
	Missing           []termo.SignatureType `json:"missing"`
	DocumentGenerated bool                  `json:"documentGenerated"`
}

type ReadyResult struct {
	VacancyID string   `json:"vacancyId"`
	Ready     bool     `json:"ready"`
	Missing   []string `json:"missing"`
}

// Exactly one of the ids is set.
type NotifyScope struct {
	VacancyID string
	ProjectID string
}

type NotifyResult struct {
	Requested int `json:"requested"`
}

type RebuildResult struct {
	VacancyID      string `json:"vacancyId"`
	DocumentKey    string `json:"documentKey"`
	SignatureCount int    `json:"signatureCount"`
}

type ReconcileResult struct {
	Checked int
	Rebuilt int
	Failed  int
}

func isResponsibleProfessor(actor Actor, detail *repository.VacancyDetail) bool {
	return actor.Role == constant.UserRoleProfessor && actor.UserID == detail.ProfessorID
}

// Admin or the responsible professor of the vacancy's project.
func canManage(actor Actor, detail *repository.VacancyDetail) bool {
	return actor.IsAdmin() || isResponsibleProfessor(actor, detail)
}

// Managers plus the vacancy's own student.
func canView(actor Actor, detail *repository.VacancyDetail) bool {
	return canManage(actor, detail) || actor.UserID == detail.StudentID
}

// The only user allowed to submit a given signature type.
func expectedSigner(st termo.SignatureType, detail *repository.VacancyDetail) string {
	switch st {
	case termo.SignatureTypeStudentCommitment:
		return detail.StudentID
	case termo.SignatureTypeProfessorSelectionRecord:
		return detail.ProfessorID
	}
	return ""
}

func (s *TermoService) loadDetail(ctx context.Context, vacancyID string) (*repository.VacancyDetail, error) {
	if vacancyID == "" {
		return nil, invalidInput("vacancy id is required", nil)
	}

	detail, err := s.vacancies.GetDetail(ctx, nil, vacancyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(fmt.Sprintf("vacancy %s not found", vacancyID), err)
		}
		return nil, fmt.Errorf("failed to load vacancy %s: %w", vacancyID, err)
	}

	return detail, nil
}

func (s *TermoService) loadMarker(ctx context.Context, vacancyID string) (*model.TermDocument, error) {
	doc, err := s.documents.GetByVacancy(ctx, nil, vacancyID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(fmt.Sprintf("term of vacancy %s was never generated", vacancyID), err)
		}
		return nil, fmt.Errorf("failed to load term document of vacancy %s: %w", vacancyID, err)
	}

	return doc, nil
}

func termNumberOf(detail *repository.VacancyDetail) (string, error) {
	tn, err := termo.TermNumber(detail.Year, detail.Term, detail.VacancyID)
	if err != nil {
		return "", invalidInput("vacancy project has no valid academic period", err)
	}
	return tn, nil
}

func toTermData(detail *repository.VacancyDetail, termNumber, verificationCode string) termo.TermData {
	return termo.TermData{
		TermNumber:       termNumber,
		VerificationCode: verificationCode,
		Year:             detail.Year,
		Term:             detail.Term,
		Department:       detail.Department,
		ProjectTitle:     detail.ProjectTitle,
		ComponentCode:    detail.ComponentCode,
		ComponentName:    detail.ComponentName,
		VacancyID:        detail.VacancyID,
		VacancyKind:      detail.Kind.Label(),
		StartDate:        detail.StartDate,
		StudentName:      detail.StudentName,
		StudentEmail:     detail.StudentEmail,
		ProfessorName:    detail.ProfessorName,
		ProfessorEmail:   detail.ProfessorEmail,
	}
}

func toStamps(signatures []model.TermSignature) []termo.Stamp {
	stamps := make([]termo.Stamp, 0, len(signatures))
	for _, sig := range signatures {
		stamps = append(stamps, termo.Stamp{Type: sig.SignatureType, Image: sig.SignatureImage})
	}
	return stamps
}

func toFacts(signatures []model.TermSignature) []termo.SignatureFact {
	facts := make([]termo.SignatureFact, 0, len(signatures))
	for _, sig := range signatures {
		facts = append(facts, termo.SignatureFact{Type: sig.SignatureType, SignerUserID: sig.SignerUserID, SignedAt: sig.CreatedAt})
	}
	return facts
}

func (s *TermoService) putDocument(ctx context.Context, key string, data []byte) error {
	ctx, cancel := context.WithTimeout(ctx, constant.STORAGE_TIMEOUT)
	defer cancel()

	return s.storage.Put(ctx, key, data, termo.ContentType)
}

// Read the unsigned base. Terms generated before bases were kept separately
// fall back to the current document.
func (s *TermoService) loadBase(ctx context.Context, doc *model.TermDocument) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, constant.STORAGE_TIMEOUT)
	defer cancel()

	if doc.BaseKey != "" {
		base, err := s.storage.Get(ctx, doc.BaseKey)
		if err == nil {
			return base, nil
		}
		if !errors.Is(err, filestorage.ErrObjectNotFound) {
			return nil, err
		}
		s.logger.Warnw("Base term missing, falling back to current document", "vacancyId", doc.VacancyID, "baseKey", doc.BaseKey)
	}

	return s.storage.Get(ctx, doc.FileKey)
}

func (s *TermoService) overlayAndStore(ctx context.Context, doc *model.TermDocument, base []byte, signatures []model.TermSignature) error {
	pdf, err := s.overlayer.Overlay(base, toStamps(signatures))
	if err != nil {
		return fmt.Errorf("failed to overlay signatures: %w", err)
	}

	if err := s.putDocument(ctx, doc.FileKey, pdf); err != nil {
		return fmt.Errorf("failed to store term: %w", err)
	}

	return nil
}

// materialize overwrites the stored document with the base plus every
// signature row, and records how many rows the file embeds. Rows are read
// under the vacancy lock, so the last writer always sees every committed
// signature and the recorded count always matches the file.
func (s *TermoService) materialize(ctx context.Context, doc *model.TermDocument) ([]model.TermSignature, error) {
	var signatures []model.TermSignature
	stored := false

	err := s.documents.LockVacancy(ctx, doc.VacancyID, func(tx *gorm.DB) error {
		var err error
		signatures, err = s.signatures.ListByVacancy(ctx, tx, doc.VacancyID)
		if err != nil {
			return fmt.Errorf("failed to list signatures: %w", err)
		}

		base, err := s.loadBase(ctx, doc)
		if err != nil {
			return fmt.Errorf("failed to load base term: %w", err)
		}

		if err := s.overlayAndStore(ctx, doc, base, signatures); err != nil {
			return err
		}
		stored = true
		doc.EmbeddedSignatures = len(signatures)

		return s.documents.SetEmbeddedSignatures(ctx, tx, doc.VacancyID, len(signatures))
	})
	if err != nil && stored {
		// The file is correct, a count left behind only costs one extra rebuild later
		s.logger.Warnw("Failed to record embedded signatures", "vacancyId", doc.VacancyID, "count", len(signatures), "error", err)
		return signatures, nil
	}

	return signatures, err
}

// GenerateTermo renders the unsigned term and stores it. Signatures already on
// file are embedded again so regenerating never drops them.
func (s *TermoService) GenerateTermo(ctx context.Context, vacancyID string, actor Actor) (*GenerateResult, error) {
	detail, err := s.loadDetail(ctx, vacancyID)
	if err != nil {
		return nil, err
	}

	if !canManage(actor, detail) {
		return nil, forbidden("only an admin or the responsible professor can generate the term")
	}

	termNumber, err := termNumberOf(detail)
	if err != nil {
		return nil, err
	}

	// Keep the verification code stable across regenerations
	verificationCode := ""
	existing, err := s.documents.GetByVacancy(ctx, nil, vacancyID)
	switch {
	case err == nil:
		verificationCode = existing.VerificationCode
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to load term document of vacancy %s: %w", vacancyID, err)
	}
	if verificationCode == "" {
		verificationCode, err = s.newCode()
		if err != nil {
			return nil, fmt.Errorf("failed to generate verification code: %w", err)
		}
	}

	base, err := s.renderer.Render(toTermData(detail, termNumber, verificationCode))
	if err != nil {
		return nil, upstream("failed to render term", err)
	}

	doc := &model.TermDocument{
		VacancyID:        detail.VacancyID,
		ProjectID:        detail.ProjectID,
		FileKey:          termo.ObjectKey(termNumber),
		BaseKey:          termo.BaseObjectKey(termNumber),
		TermNumber:       termNumber,
		VerificationCode: verificationCode,
		GeneratedAt:      s.now(),
	}

	var signatures []model.TermSignature
	err = s.documents.LockVacancy(ctx, vacancyID, func(tx *gorm.DB) error {
		if err := s.putDocument(ctx, doc.BaseKey, base); err != nil {
			return upstream("failed to store base term", err)
		}

		var err error
		signatures, err = s.signatures.ListByVacancy(ctx, tx, vacancyID)
		if err != nil {
			return fmt.Errorf("failed to list signatures of vacancy %s: %w", vacancyID, err)
		}

		if err := s.overlayAndStore(ctx, doc, base, signatures); err != nil {
			return upstream("failed to store term", err)
		}
		doc.EmbeddedSignatures = len(signatures)

		if err := s.documents.Upsert(ctx, tx, doc); err != nil {
			return fmt.Errorf("failed to save term document of vacancy %s: %w", vacancyID, err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Infow("Term generated", "vacancyId", vacancyID, "termNumber", termNumber, "signatures", len(signatures), "actorId", actor.UserID)

	return &GenerateResult{
		VacancyID:        vacancyID,
		DocumentKey:      doc.FileKey,
		TermNumber:       termNumber,
		VerificationCode: verificationCode,
		SignatureCount:   len(signatures),
	}, nil
}

// SignTermo records a signature and re-materializes the stored term with every
// signature on file. The row is the legal fact: a failure after it commits is
// reported as upstream and the row stays.
func (s *TermoService) SignTermo(ctx context.Context, vacancyID string, signatureImage string, signatureType termo.SignatureType, actor Actor) (*SignResult, error) {
	if !signatureType.IsValid() {
		return nil, invalidInput(fmt.Sprintf("unknown signature type %q", signatureType), nil)
	}

	detail, err := s.loadDetail(ctx, vacancyID)
	if err != nil {
		return nil, err
	}

	if expected := expectedSigner(signatureType, detail); expected == "" || actor.UserID != expected {
		return nil, forbidden(fmt.Sprintf("user is not allowed to submit %s", signatureType))
	}

	exists, err := s.signatures.ExistsByVacancyAndType(ctx, nil, vacancyID, signatureType)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing signature: %w", err)
	}
	if exists {
		return nil, conflict("term already signed for this role", repository.ErrDuplicateSignature)
	}

	if _, err := termo.DecodeSignatureImage(signatureImage); err != nil {
		return nil, invalidInput("signature image is not a valid PNG or JPEG", err)
	}

	doc, err := s.loadMarker(ctx, vacancyID)
	if err != nil {
		return nil, err
	}

	signatures, err := s.signatures.CreateAndList(ctx, nil, &model.TermSignature{
		VacancyID:      vacancyID,
		SignatureType:  signatureType,
		SignerUserID:   actor.UserID,
		SignatureImage: signatureImage,
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicateSignature) {
			return nil, conflict("term already signed for this role", err)
		}
		return nil, fmt.Errorf("failed to save signature: %w", err)
	}

	projection := termo.Project(toFacts(signatures))
	s.logger.Infow("Term signed", "vacancyId", vacancyID, "signatureType", signatureType, "signerId", actor.UserID, "status", projection.Status)

	if _, err := s.materialize(ctx, doc); err != nil {
		s.logger.Errorw("Signature saved but term was not updated", "vacancyId", vacancyID, "signatureType", signatureType, "error", err)
		return nil, upstream("signature saved but the term document could not be updated", err)
	}

	return &SignResult{VacancyID: vacancyID, SignatureType: signatureType, Status: projection.Status}, nil
}

func (s *TermoService) DownloadTermo(ctx context.Context, vacancyID string, actor Actor) (*DownloadResult, error) {
	detail, err := s.loadDetail(ctx, vacancyID)
	if err != nil {
		return nil, err
	}

	if !canView(actor, detail) {
		return nil, forbidden("user is not allowed to download this term")
	}

	termNumber, err := termNumberOf(detail)
	if err != nil {
		return nil, err
	}
	key := termo.ObjectKey(termNumber)

	storageCtx, cancel := context.WithTimeout(ctx, constant.STORAGE_TIMEOUT)
	defer cancel()

	info, err := s.storage.Stat(storageCtx, key)
	if err != nil {
		if errors.Is(err, filestorage.ErrObjectNotFound) {
			return nil, notFound(fmt.Sprintf("term of vacancy %s was never generated", vacancyID), err)
		}
		return nil, upstream("failed to stat term", err)
	}

	url, err := s.storage.Presign(storageCtx, key, s.presignTTL)
	if err != nil {
		return nil, upstream("failed to presign term", err)
	}

	return &DownloadResult{
		URL:        url,
		Size:       info.Size,
		TermNumber: termNumber,
		ExpiresAt:  s.now().Add(s.presignTTL),
	}, nil
}

func (s *TermoService) buildStatuses(ctx context.Context, details []repository.VacancyDetail) ([]VacancyStatus, error) {
	ids := make([]string, 0, len(details))
	for _, d := range details {
		ids = append(ids, d.VacancyID)
	}

	signatures, err := s.signatures.ListByVacancies(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list signatures: %w", err)
	}

	docs, err := s.documents.ListByVacancies(ctx, nil, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to list term documents: %w", err)
	}

	statuses := make([]VacancyStatus, 0, len(details))
	for _, d := range details {
		projection := termo.Project(toFacts(signatures[d.VacancyID]))
		doc, generated := docs[d.VacancyID]

		termNumber := doc.TermNumber
		if termNumber == "" {
			termNumber, _ = termo.TermNumber(d.Year, d.Term, d.VacancyID)
		}

		statuses = append(statuses, VacancyStatus{
			VacancyID:         d.VacancyID,
			ProjectID:         d.ProjectID,
			ProjectTitle:      d.ProjectTitle,
			StudentID:         d.StudentID,
			StudentName:       d.StudentName,
			ProfessorID:       d.ProfessorID,
			ProfessorName:     d.ProfessorName,
			TermNumber:        termNumber,
			Status:            projection.Status,
			Student:           toRoleSignature(projection, termo.SignatureTypeStudentCommitment),
			Professor:         toRoleSignature(projection, termo.SignatureTypeProfessorSelectionRecord),
			Missing:           projection.Missing,
			DocumentGenerated: generated,
		})
	}

	return statuses, nil
}

func toRoleSignature(p termo.Projection, st termo.SignatureType) RoleSignature {
	fact, ok := p.Signed[st]
	if !ok {
		return RoleSignature{}
	}
	return RoleSignature{Signed: true, SignedAt: fact.SignedAt, SignerUserID: fact.SignerUserID}
}

func (s *TermoService) GetTermosStatusByVacancy(ctx context.Context, vacancyID string, actor Actor) (*VacancyStatus, error) {
	detail, err := s.loadDetail(ctx, vacancyID)
	if err != nil {
		return nil, err
	}

	if !canView(actor, detail) {
		return nil, forbidden("user is not allowed to view this term")
	}

	statuses, err := s.buildStatuses(ctx, []repository.VacancyDetail{*detail})
	if err != nil {
		return nil, err
	}

	return &statuses[0], nil
}

// Admins and the responsible professor see every vacancy of the project,
// a student only their own.
func (s *TermoService) GetTermosStatusByProject(ctx context.Context, projectID string, actor Actor) ([]VacancyStatus, error) {
	if projectID == "" {
		return nil, invalidInput("project id is required", nil)
	}

	project, err := s.projects.GetById(ctx, nil, projectID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFound(fmt.Sprintf("project %s not found", projectID), err)
		}
		return nil, fmt.Errorf("failed to load project %s: %w", projectID, err)
	}

	details, err := s.vacancies.ListDetailsByProject(ctx, nil, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vacancies of project %s: %w", projectID, err)
	}

	managesProject := actor.IsAdmin() || (actor.Role == constant.UserRoleProfessor && actor.UserID == project.ProfessorID)
	if !managesProject {
		own := make([]repository.VacancyDetail, 0, 1)
		for _, d := range details {
			if d.StudentID == actor.UserID {
				own = append(own, d)
			}
		}
		if len(own) == 0 {
			return nil, forbidden("user is not allowed to view the terms of this project")
		}
		details = own
	}

	return s.buildStatuses(ctx, details)
}

// Role scoped worklist of terms still waiting for a signature.
func (s *TermoService) GetTermosPendentes(ctx context.Context, actor Actor) ([]VacancyStatus, error) {
	var (
		details []repository.VacancyDetail
		err     error
		waitFor termo.SignatureType
	)

	switch actor.Role {
	case constant.UserRoleStudent:
		details, err = s.vacancies.ListDetailsByStudent(ctx, nil, actor.UserID)
		waitFor = termo.SignatureTypeStudentCommitment
	case constant.UserRoleProfessor:
		details, err = s.vacancies.ListDetailsByProfessor(ctx, nil, actor.UserID)
		waitFor = termo.SignatureTypeProfessorSelectionRecord
	case constant.UserRoleAdmin:
		details, err = s.vacancies.ListDetails(ctx, nil)
	default:
		return nil, forbidden("unknown role")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list vacancies: %w", err)
	}

	statuses, err := s.buildStatuses(ctx, details)
	if err != nil {
		return nil, err
	}

	pending := make([]VacancyStatus, 0, len(statuses))
	for _, st := range statuses {
		if st.Status == termo.StatusComplete {
			continue
		}
		if waitFor != "" && !containsType(st.Missing, waitFor) {
			continue
		}
		pending = append(pending, st)
	}

	return pending, nil
}

func containsType(types []termo.SignatureType, st termo.SignatureType) bool {
	for _, t := range types {
		if t == st {
			return true
		}
	}
	return false
}

// Ready when both signatures are on file. Missing lists what is outstanding.
func (s *TermoService) ValidateTermoReady(ctx context.Context, vacancyID string, actor Actor) (*ReadyResult, error) {
	status, err := s.GetTermosStatusByVacancy(ctx, vacancyID, actor)
	if err != nil {
		return nil, err
	}

	missing := make([]string, 0, len(status.Missing))
	for _, st := range status.Missing {
		missing = append(missing, st.Label())
	}

	return &ReadyResult{
		VacancyID: vacancyID,
		Ready:     status.Status == termo.StatusComplete,
		Missing:   missing,
	}, nil
}

// NotifyPendingSignatures requests one reminder per missing signer per vacancy.
// Repeated calls send again. Delivery failures are logged only.
func (s *TermoService) NotifyPendingSignatures(ctx context.Context, scope NotifyScope, actor Actor) (*NotifyResult, error) {
	if !actor.IsAdmin() && actor.Role != constant.UserRoleProfessor {
		return nil, forbidden("only an admin or a professor can send reminders")
	}

	if (scope.VacancyID == "") == (scope.ProjectID == "") {
		return nil, invalidInput("exactly one of vacancy id or project id is required", nil)
	}

	var details []repository.VacancyDetail
	if scope.VacancyID != "" {
		detail, err := s.loadDetail(ctx, scope.VacancyID)
		if err != nil {
			return nil, err
		}
		details = []repository.VacancyDetail{*detail}
	} else {
		project, err := s.projects.GetById(ctx, nil, scope.ProjectID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, notFound(fmt.Sprintf("project %s not found", scope.ProjectID), err)
			}
			return nil, fmt.Errorf("failed to load project %s: %w", scope.ProjectID, err)
		}
		if !actor.IsAdmin() && project.ProfessorID != actor.UserID {
			return nil, forbidden("professors can only notify their own projects")
		}

		details, err = s.vacancies.ListDetailsByProject(ctx, nil, scope.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("failed to list vacancies of project %s: %w", scope.ProjectID, err)
		}
	}

	for i := range details {
		if !canManage(actor, &details[i]) {
			return nil, forbidden("professors can only notify their own projects")
		}
	}

	statuses, err := s.buildStatuses(ctx, details)
	if err != nil {
		return nil, err
	}

	byVacancy := make(map[string]*repository.VacancyDetail, len(details))
	for i := range details {
		byVacancy[details[i].VacancyID] = &details[i]
	}

	requested := 0
	for _, st := range statuses {
		detail := byVacancy[st.VacancyID]
		for _, missing := range st.Missing {
			reminder := toReminder(detail, st.TermNumber, missing)
			requested++

			if s.notifier == nil {
				continue
			}
			if err := s.notifier.NotifyPendingSignature(ctx, reminder); err != nil {
				s.logger.Warnw("Failed to send pending signature reminder", "vacancyId", st.VacancyID, "signatureType", missing, "recipient", reminder.RecipientEmail, "error", err)
			}
		}
	}

	s.logger.Infow("Pending signature reminders requested", "vacancyId", scope.VacancyID, "projectId", scope.ProjectID, "requested", requested, "actorId", actor.UserID)

	return &NotifyResult{Requested: requested}, nil
}

// RebuildDocument re-materializes the stored term from the base and the
// signature rows. Recovery path after a failed sign.
func (s *TermoService) RebuildDocument(ctx context.Context, vacancyID string, actor Actor) (*RebuildResult, error) {
	detail, err := s.loadDetail(ctx, vacancyID)
	if err != nil {
		return nil, err
	}

	if !canManage(actor, detail) {
		return nil, forbidden("only an admin or the responsible professor can rebuild the term")
	}

	doc, err := s.loadMarker(ctx, vacancyID)
	if err != nil {
		return nil, err
	}

	signatures, err := s.materialize(ctx, doc)
	if err != nil {
		return nil, upstream("failed to rebuild term", err)
	}

	s.logger.Infow("Term rebuilt", "vacancyId", vacancyID, "signatures", len(signatures), "actorId", actor.UserID)

	return &RebuildResult{VacancyID: vacancyID, DocumentKey: doc.FileKey, SignatureCount: len(signatures)}, nil
}

// ReconcileDocuments rebuilds up to limit terms whose stored file is missing
// signatures that are on record, such as after a storage failure during sign.
// Runs as the system, without an actor.
func (s *TermoService) ReconcileDocuments(ctx context.Context, limit int) (*ReconcileResult, error) {
	stale, err := s.documents.ListStale(ctx, nil, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list stale term documents: %w", err)
	}

	res := &ReconcileResult{Checked: len(stale)}
	for i := range stale {
		doc := &stale[i]

		if _, err := s.materialize(ctx, doc); err != nil {
			res.Failed++
			s.logger.Errorw("Failed to reconcile term", "vacancyId", doc.VacancyID, "error", err)
			continue
		}
		res.Rebuilt++
	}

	if res.Checked > 0 {
		s.logger.Infow("Reconciled stale terms", "checked", res.Checked, "rebuilt", res.Rebuilt, "failed", res.Failed)
	}

	return res, nil
}

// Termos is the public surface of the engine, implemented by *TermoService.
type Termos interface {
	GenerateTermo(ctx context.Context, vacancyID string, actor Actor) (*GenerateResult, error)
	SignTermo(ctx context.Context, vacancyID string, signatureImage string, signatureType termo.SignatureType, actor Actor) (*SignResult, error)
	DownloadTermo(ctx context.Context, vacancyID string, actor Actor) (*DownloadResult, error)
	GetTermosStatusByVacancy(ctx context.Context, vacancyID string, actor Actor) (*VacancyStatus, error)
	GetTermosStatusByProject(ctx context.Context, projectID string, actor Actor) ([]VacancyStatus, error)
	GetTermosPendentes(ctx context.Context, actor Actor) ([]VacancyStatus, error)
	ValidateTermoReady(ctx context.Context, vacancyID string, actor Actor) (*ReadyResult, error)
	NotifyPendingSignatures(ctx context.Context, scope NotifyScope, actor Actor) (*NotifyResult, error)
	RebuildDocument(ctx context.Context, vacancyID string, actor Actor) (*RebuildResult, error)
}

var _ Termos = (*TermoService)(nil)
