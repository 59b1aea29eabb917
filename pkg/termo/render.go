package termo

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"github.com/skip2/go-qrcode"
)

// Everything printed on the unsigned term.
type TermData struct {
	TermNumber       string
	VerificationCode string

	Year       int
	Term       int
	Department string

	ProjectTitle  string
	ComponentCode string
	ComponentName string

	VacancyID   string
	VacancyKind string
	StartDate   time.Time

	StudentName    string
	StudentEmail   string
	ProfessorName  string
	ProfessorEmail string
}

type RenderOptions struct {
	InstitutionName string
	// fmt pattern with a single %s for the verification code, e.g. https://host/termos/verify/%s
	// If empty, the QR code carries the term number.
	QrURLPattern string
	// Stamped as the PDF creation date so equal input renders equal bytes.
	CreationDate time.Time
}

type Renderer struct {
	opts RenderOptions
}

func NewRenderer(opts RenderOptions) *Renderer {
	if opts.CreationDate.IsZero() {
		opts.CreationDate = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	return &Renderer{opts: opts}
}

const (
	marginMM     = 20.0
	lineHeightMM = 5.0
	qrSizeMM     = 22.0
)

var ErrTemplateOverflow = errors.New("term content does not fit above the signature area")

// Render the unsigned base term. Page 1 holds both the commitment term and
// the selection record, and leaves the signature regions blank.
func (r *Renderer) Render(data TermData) ([]byte, error) {
	if data.TermNumber == "" {
		return nil, fmt.Errorf("term number is required")
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetCreationDate(r.opts.CreationDate)
	pdf.SetCatalogSort(true)
	pdf.SetMargins(marginMM, marginMM, marginMM)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle("Termo de Compromisso "+data.TermNumber, true)
	pdf.SetAuthor(r.opts.InstitutionName, true)
	pdf.SetSubject("Termo de compromisso de monitoria", true)

	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	if err := r.drawQRCode(pdf, data); err != nil {
		return nil, err
	}
	r.drawHeader(pdf, tr, data)
	r.drawDataTable(pdf, tr, data)
	r.drawCommitment(pdf, tr, data)
	r.drawSelectionRecord(pdf, tr, data)

	sigTop := ptToMM(signatureAreaTop())
	if pdf.GetY() > sigTop-8 {
		return nil, ErrTemplateOverflow
	}

	pdf.SetXY(marginMM, sigTop-8)
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, lineHeightMM, tr(fmt.Sprintf("%s, ____ de ______________ de %d.", r.opts.InstitutionName, data.Year)), "", 1, "R", false, 0, "")

	r.drawSignatureLines(pdf, tr, data)

	if pdf.Err() {
		return nil, fmt.Errorf("failed to render term: %w", pdf.Error())
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to write term pdf: %w", err)
	}

	return buf.Bytes(), nil
}

func (r *Renderer) qrContent(data TermData) string {
	if r.opts.QrURLPattern != "" && data.VerificationCode != "" {
		return fmt.Sprintf(r.opts.QrURLPattern, data.VerificationCode)
	}
	return data.TermNumber
}

func (r *Renderer) drawQRCode(pdf *gofpdf.Fpdf, data TermData) error {
	png, err := qrcode.Encode(r.qrContent(data), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("failed to generate QR code: %w", err)
	}

	opts := gofpdf.ImageOptions{ImageType: "PNG", ReadDpi: false}
	pdf.RegisterImageOptionsReader("qrcode", opts, bytes.NewReader(png))
	pdf.ImageOptions("qrcode", 210-marginMM-qrSizeMM, marginMM-8, qrSizeMM, qrSizeMM, false, opts, 0, "")

	return nil
}

func (r *Renderer) drawHeader(pdf *gofpdf.Fpdf, tr func(string) string, data TermData) {
	pdf.SetXY(marginMM, marginMM-6)
	pdf.SetFont("Helvetica", "B", 12)
	pdf.CellFormat(140, 6, tr(strings.ToUpper(r.opts.InstitutionName)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(140, 5, tr(data.Department), "", 1, "L", false, 0, "")
	pdf.CellFormat(140, 5, tr("Programa de Monitoria"), "", 1, "L", false, 0, "")

	pdf.SetY(marginMM + 20)
	pdf.SetFont("Helvetica", "B", 13)
	pdf.CellFormat(0, 7, tr("TERMO DE COMPROMISSO DO MONITOR"), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 5, tr(fmt.Sprintf("Nº %s", data.TermNumber)), "", 1, "C", false, 0, "")
	if data.VerificationCode != "" {
		pdf.CellFormat(0, 4, tr(fmt.Sprintf("Código de verificação: %s", data.VerificationCode)), "", 1, "C", false, 0, "")
	}
	pdf.Ln(3)
}

func (r *Renderer) drawDataTable(pdf *gofpdf.Fpdf, tr func(string) string, data TermData) {
	rows := [][2]string{
		{"Aluno(a)", fmt.Sprintf("%s <%s>", data.StudentName, data.StudentEmail)},
		{"Professor(a) responsável", fmt.Sprintf("%s <%s>", data.ProfessorName, data.ProfessorEmail)},
		{"Projeto", data.ProjectTitle},
		{"Componente curricular", strings.TrimSpace(fmt.Sprintf("%s - %s", data.ComponentCode, data.ComponentName))},
		{"Período letivo", fmt.Sprintf("%d.%d", data.Year, data.Term)},
		{"Modalidade", data.VacancyKind},
		{"Início das atividades", data.StartDate.Format("02/01/2006")},
	}

	pdf.SetFillColor(242, 242, 242)
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 9)
		pdf.CellFormat(50, 6, tr(row[0]), "1", 0, "L", true, 0, "")
		pdf.SetFont("Helvetica", "", 9)
		// Single line cells, long values are cut so the layout never moves
		pdf.CellFormat(120, 6, fitWidth(pdf, tr(row[1]), 118), "1", 1, "L", false, 0, "")
	}
	pdf.Ln(4)
}

func (r *Renderer) drawCommitment(pdf *gofpdf.Fpdf, tr func(string) string, data TermData) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, tr("1. Termo de compromisso do(a) aluno(a)"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)

	intro := fmt.Sprintf("Pelo presente termo, o(a) aluno(a) %s compromete-se a exercer a monitoria na modalidade %s, "+
		"no componente curricular %s, sob orientação do(a) professor(a) %s, observando as seguintes condições:",
		data.StudentName, strings.ToLower(data.VacancyKind), data.ComponentCode, data.ProfessorName)
	pdf.MultiCell(0, lineHeightMM-0.5, tr(intro), "", "J", false)

	clauses := []string{
		"a) cumprir a carga horária de 12 (doze) horas semanais, conforme plano de atividades do projeto;",
		"b) auxiliar o(a) professor(a) em tarefas didáticas compatíveis com seu grau de conhecimento;",
		"c) não substituir o(a) professor(a) em aulas, avaliações ou atividades de sua exclusiva responsabilidade;",
		"d) apresentar relatório de atividades ao final do período letivo;",
		"e) comunicar imediatamente qualquer impedimento ao exercício da monitoria.",
	}
	for _, c := range clauses {
		pdf.MultiCell(0, lineHeightMM-0.5, tr(c), "", "L", false)
	}
	pdf.Ln(3)
}

func (r *Renderer) drawSelectionRecord(pdf *gofpdf.Fpdf, tr func(string) string, data TermData) {
	pdf.SetFont("Helvetica", "B", 10)
	pdf.CellFormat(0, 6, tr("2. Ata de seleção"), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)

	record := fmt.Sprintf("O(A) professor(a) %s, responsável pelo projeto \"%s\" no período %d.%d, declara que o(a) aluno(a) "+
		"%s foi selecionado(a) para a vaga de monitoria na modalidade %s, conforme o processo seletivo do projeto, "+
		"com início das atividades em %s.",
		data.ProfessorName, data.ProjectTitle, data.Year, data.Term, data.StudentName, strings.ToLower(data.VacancyKind),
		data.StartDate.Format("02/01/2006"))
	pdf.MultiCell(0, lineHeightMM-0.5, tr(record), "", "J", false)
}

func signatureAreaTop() float64 {
	top := PageHeight
	for _, st := range SignatureTypes {
		if reg, ok := RegionFor(st); ok && reg.Y < top {
			top = reg.Y
		}
	}
	return top
}

// Line and caption under each signature region.
func (r *Renderer) drawSignatureLines(pdf *gofpdf.Fpdf, tr func(string) string, data TermData) {
	captions := map[SignatureType][2]string{
		SignatureTypeStudentCommitment:        {data.StudentName, "Aluno(a) monitor(a)"},
		SignatureTypeProfessorSelectionRecord: {data.ProfessorName, "Professor(a) responsável"},
	}

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.2)
	for _, st := range SignatureTypes {
		reg, _ := RegionFor(st)
		x := ptToMM(reg.X)
		w := ptToMM(reg.Width)
		y := ptToMM(reg.Y+reg.Height) + 1

		pdf.Line(x, y, x+w, y)
		pdf.SetXY(x, y+1)
		pdf.SetFont("Helvetica", "B", 8)
		pdf.CellFormat(w, 4, tr(captions[st][0]), "", 2, "C", false, 0, "")
		pdf.SetFont("Helvetica", "", 8)
		pdf.CellFormat(w, 4, tr(captions[st][1]), "", 2, "C", false, 0, "")
	}
}

// Cut an already translated string so it fits in width mm.
func fitWidth(pdf *gofpdf.Fpdf, s string, width float64) string {
	if pdf.GetStringWidth(s) <= width {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"...") > width {
		s = s[:len(s)-1]
	}
	return s + "..."
}
