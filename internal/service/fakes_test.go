package service

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"regexp"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/SeakMengs/AutoTermo/internal/constant"
	filestorage "github.com/SeakMengs/AutoTermo/internal/file_storage"
	"github.com/SeakMengs/AutoTermo/internal/model"
	"github.com/SeakMengs/AutoTermo/internal/repository"
	"github.com/SeakMengs/AutoTermo/internal/util"
	"github.com/SeakMengs/AutoTermo/pkg/termo"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const (
	adminID      = "admin-1"
	professorID  = "prof-1"
	otherProfID  = "prof-2"
	studentID    = "student-1"
	student2ID   = "student-2"
	outsiderID   = "outsider-1"
	projectID    = "P1"
	vacancyID    = "V1"
	vacancy2ID   = "V2"
	otherProjID  = "P2"
	otherVacancy = "V3"
)

var (
	admin     = Actor{UserID: adminID, Role: constant.UserRoleAdmin}
	professor = Actor{UserID: professorID, Role: constant.UserRoleProfessor}
	otherProf = Actor{UserID: otherProfID, Role: constant.UserRoleProfessor}
	student   = Actor{UserID: studentID, Role: constant.UserRoleStudent}
	student2  = Actor{UserID: student2ID, Role: constant.UserRoleStudent}
	outsider  = Actor{UserID: outsiderID, Role: constant.UserRoleStudent}
)

var fixedNow = time.Date(2025, 3, 10, 12, 0, 0, 0, time.UTC)

type fakeVacancies struct {
	details map[string]repository.VacancyDetail
}

func (f *fakeVacancies) sorted(keep func(repository.VacancyDetail) bool) []repository.VacancyDetail {
	out := make([]repository.VacancyDetail, 0)
	for _, d := range f.details {
		if keep(d) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VacancyID < out[j].VacancyID })
	return out
}

func (f *fakeVacancies) GetDetail(ctx context.Context, tx *gorm.DB, id string) (*repository.VacancyDetail, error) {
	d, ok := f.details[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

func (f *fakeVacancies) ListDetailsByProject(ctx context.Context, tx *gorm.DB, id string) ([]repository.VacancyDetail, error) {
	return f.sorted(func(d repository.VacancyDetail) bool { return d.ProjectID == id }), nil
}

func (f *fakeVacancies) ListDetailsByStudent(ctx context.Context, tx *gorm.DB, id string) ([]repository.VacancyDetail, error) {
	return f.sorted(func(d repository.VacancyDetail) bool { return d.StudentID == id }), nil
}

func (f *fakeVacancies) ListDetailsByProfessor(ctx context.Context, tx *gorm.DB, id string) ([]repository.VacancyDetail, error) {
	return f.sorted(func(d repository.VacancyDetail) bool { return d.ProfessorID == id }), nil
}

func (f *fakeVacancies) ListDetails(ctx context.Context, tx *gorm.DB) ([]repository.VacancyDetail, error) {
	return f.sorted(func(repository.VacancyDetail) bool { return true }), nil
}

type fakeProjects struct {
	projects map[string]model.Project
}

func (f *fakeProjects) GetById(ctx context.Context, tx *gorm.DB, id string) (*model.Project, error) {
	p, ok := f.projects[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &p, nil
}

// Mirrors the composite unique index of term_signatures.
type fakeSignatures struct {
	mu   sync.Mutex
	rows []model.TermSignature
	now  time.Time
	// Pretend the fast path check missed a concurrent insert
	hideFromExists bool
}

func (f *fakeSignatures) ExistsByVacancyAndType(ctx context.Context, tx *gorm.DB, vid string, st termo.SignatureType) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.hideFromExists {
		return false, nil
	}
	for _, r := range f.rows {
		if r.VacancyID == vid && r.SignatureType == st {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeSignatures) ListByVacancy(ctx context.Context, tx *gorm.DB, vid string) ([]model.TermSignature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listLocked(vid), nil
}

func (f *fakeSignatures) listLocked(vid string) []model.TermSignature {
	out := make([]model.TermSignature, 0, 2)
	for _, r := range f.rows {
		if r.VacancyID == vid {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SignatureType < out[j].SignatureType })
	return out
}

func (f *fakeSignatures) ListByVacancies(ctx context.Context, tx *gorm.DB, ids []string) (map[string][]model.TermSignature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	grouped := make(map[string][]model.TermSignature, len(ids))
	for _, id := range ids {
		if rows := f.listLocked(id); len(rows) > 0 {
			grouped[id] = rows
		}
	}
	return grouped, nil
}

func (f *fakeSignatures) CreateAndList(ctx context.Context, tx *gorm.DB, sig *model.TermSignature) ([]model.TermSignature, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, r := range f.rows {
		if r.VacancyID == sig.VacancyID && r.SignatureType == sig.SignatureType {
			return nil, repository.ErrDuplicateSignature
		}
	}

	created := f.now
	sig.ID = "sig-" + string(sig.SignatureType)
	sig.CreatedAt = &created
	f.rows = append(f.rows, *sig)

	return f.listLocked(sig.VacancyID), nil
}

func (f *fakeSignatures) count(vid string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.listLocked(vid))
}

type fakeDocuments struct {
	mu         sync.Mutex
	docs       map[string]model.TermDocument
	signatures *fakeSignatures

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// Stands in for the per-vacancy advisory lock.
func (f *fakeDocuments) LockVacancy(ctx context.Context, vid string, fn func(tx *gorm.DB) error) error {
	f.locksMu.Lock()
	if f.locks == nil {
		f.locks = map[string]*sync.Mutex{}
	}
	l, ok := f.locks[vid]
	if !ok {
		l = &sync.Mutex{}
		f.locks[vid] = l
	}
	f.locksMu.Unlock()

	l.Lock()
	defer l.Unlock()
	return fn(nil)
}

func (f *fakeDocuments) Upsert(ctx context.Context, tx *gorm.DB, doc *model.TermDocument) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.docs[doc.VacancyID] = *doc
	return nil
}

func (f *fakeDocuments) GetByVacancy(ctx context.Context, tx *gorm.DB, vid string) (*model.TermDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[vid]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &d, nil
}

func (f *fakeDocuments) ListByVacancies(ctx context.Context, tx *gorm.DB, ids []string) (map[string]model.TermDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]model.TermDocument, len(ids))
	for _, id := range ids {
		if d, ok := f.docs[id]; ok {
			out[id] = d
		}
	}
	return out, nil
}

func (f *fakeDocuments) SetEmbeddedSignatures(ctx context.Context, tx *gorm.DB, vid string, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	d, ok := f.docs[vid]
	if !ok {
		return nil
	}
	d.EmbeddedSignatures = count
	f.docs[vid] = d
	return nil
}

func (f *fakeDocuments) ListStale(ctx context.Context, tx *gorm.DB, limit int) ([]model.TermDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make([]model.TermDocument, 0)
	for vid, d := range f.docs {
		if d.EmbeddedSignatures < f.signatures.count(vid) {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].VacancyID < out[j].VacancyID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeDocuments) embedded(vid string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs[vid].EmbeddedSignatures
}

// MemoryStore that can be told to fail writes, or to hold the next write of
// one key until released.
type flakyStore struct {
	*filestorage.MemoryStore
	mu      sync.Mutex
	failPut bool

	holdKey string
	held    chan struct{}
	release chan struct{}
}

// holdNextPut blocks the next Put of key. held is closed once that Put is
// waiting, closing the returned release channel lets it continue.
func (f *flakyStore) holdNextPut(key string) (held <-chan struct{}, release chan<- struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.holdKey = key
	f.held = make(chan struct{})
	f.release = make(chan struct{})
	return f.held, f.release
}

var errStorageDown = errors.New("storage unavailable")

func (f *flakyStore) setFailPut(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failPut = fail
}

func (f *flakyStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	f.mu.Lock()
	fail := f.failPut
	var held, release chan struct{}
	if f.holdKey != "" && f.holdKey == key {
		held, release = f.held, f.release
		f.holdKey = ""
	}
	f.mu.Unlock()

	if fail {
		return errStorageDown
	}
	if held != nil {
		close(held)
		<-release
	}
	return f.MemoryStore.Put(ctx, key, data, contentType)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) NotifyPendingSignature(ctx context.Context, r Reminder) error {
	args := m.Called(ctx, r)
	return args.Error(0)
}

type fixture struct {
	svc        *TermoService
	store      *flakyStore
	signatures *fakeSignatures
	documents  *fakeDocuments
	notifier   *mockNotifier
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	start := time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	vacancies := &fakeVacancies{details: map[string]repository.VacancyDetail{
		vacancyID: {
			VacancyID: vacancyID, Kind: constant.VacancyKindScholarship, StartDate: start,
			ProjectID: projectID, ProjectTitle: "Monitoria de Cálculo I", Year: 2025, Term: 1,
			Department: "Departamento de Matemática", ComponentCode: "MAT0101", ComponentName: "Cálculo I",
			StudentID: studentID, StudentName: "Ana Souza", StudentEmail: "ana@monitoria.example",
			ProfessorID: professorID, ProfessorName: "João Lima", ProfessorEmail: "joao@monitoria.example",
		},
		vacancy2ID: {
			VacancyID: vacancy2ID, Kind: constant.VacancyKindVolunteer, StartDate: start,
			ProjectID: projectID, ProjectTitle: "Monitoria de Cálculo I", Year: 2025, Term: 1,
			Department: "Departamento de Matemática", ComponentCode: "MAT0101", ComponentName: "Cálculo I",
			StudentID: student2ID, StudentName: "Bruno Alves", StudentEmail: "bruno@monitoria.example",
			ProfessorID: professorID, ProfessorName: "João Lima", ProfessorEmail: "joao@monitoria.example",
		},
		otherVacancy: {
			VacancyID: otherVacancy, Kind: constant.VacancyKindVolunteer, StartDate: start,
			ProjectID: otherProjID, ProjectTitle: "Monitoria de Física", Year: 2025, Term: 2,
			Department: "Departamento de Física", ComponentCode: "FIS0001", ComponentName: "Física I",
			StudentID: outsiderID, StudentName: "Carla Dias", StudentEmail: "carla@monitoria.example",
			ProfessorID: otherProfID, ProfessorName: "Marta Reis", ProfessorEmail: "marta@monitoria.example",
		},
	}}
	projects := &fakeProjects{projects: map[string]model.Project{
		projectID:   {BaseModel: model.BaseModel{ID: projectID}, Title: "Monitoria de Cálculo I", Year: 2025, Term: 1, ProfessorID: professorID},
		otherProjID: {BaseModel: model.BaseModel{ID: otherProjID}, Title: "Monitoria de Física", Year: 2025, Term: 2, ProfessorID: otherProfID},
	}}

	signatures := &fakeSignatures{now: fixedNow}
	f := &fixture{
		store:      &flakyStore{MemoryStore: filestorage.NewMemoryStore()},
		signatures: signatures,
		documents:  &fakeDocuments{docs: map[string]model.TermDocument{}, signatures: signatures},
		notifier:   &mockNotifier{},
	}

	f.svc = NewTermoService(TermoServiceOptions{
		Logger:     util.NewNopLogger(),
		Vacancies:  vacancies,
		Projects:   projects,
		Signatures: f.signatures,
		Documents:  f.documents,
		Storage:    f.store,
		Renderer:   termo.NewRenderer(termo.RenderOptions{InstitutionName: "Universidade Federal"}),
		Overlayer:  termo.NewOverlayer(),
		Notifier:   f.notifier,
	})
	f.svc.now = func() time.Time { return fixedNow }
	f.svc.newCode = func() (string, error) { return "K7QX2M9PLA", nil }

	return f
}

func (f *fixture) document(t *testing.T, key string) []byte {
	t.Helper()
	data, err := f.store.Get(context.Background(), key)
	require.NoError(t, err)
	return data
}

func signatureDataURL(t *testing.T, c color.Color) string {
	t.Helper()

	img := image.NewRGBA(image.Rect(0, 0, 120, 40))
	for y := 0; y < 40; y++ {
		for x := 0; x < 120; x++ {
			if (x+y)%7 == 0 {
				img.Set(x, y, c)
			}
		}
	}

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(buf.Bytes())
}

var (
	imageObject = regexp.MustCompile(`/Subtype\s*/Image`)
	softMaskRef = regexp.MustCompile(`/SMask\s+\d+\s+\d+\s+R`)
)

// Soft masks of transparent stamps are images too, only the stamps count.
func countImages(pdf []byte) int {
	return len(imageObject.FindAll(pdf, -1)) - len(softMaskRef.FindAll(pdf, -1))
}

var volatileMetadata = regexp.MustCompile(`/(ModDate|CreationDate)\s*\([^)]*\)|/ID\s*\[[^\]]*\]`)

func normalize(pdf []byte) []byte {
	return volatileMetadata.ReplaceAll(pdf, nil)
}
