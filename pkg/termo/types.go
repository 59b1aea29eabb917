package termo

type SignatureType string

const (
	SignatureTypeStudentCommitment        SignatureType = "STUDENT_COMMITMENT"
	SignatureTypeProfessorSelectionRecord SignatureType = "PROFESSOR_SELECTION_RECORD"
)

// Every signature a term needs, in display order.
var SignatureTypes = []SignatureType{
	SignatureTypeStudentCommitment,
	SignatureTypeProfessorSelectionRecord,
}

func (st SignatureType) IsValid() bool {
	return st == SignatureTypeStudentCommitment || st == SignatureTypeProfessorSelectionRecord
}

func (st SignatureType) Label() string {
	switch st {
	case SignatureTypeStudentCommitment:
		return "Assinatura do aluno (termo de compromisso)"
	case SignatureTypeProfessorSelectionRecord:
		return "Assinatura do professor (ata de seleção)"
	}
	return string(st)
}

type Status string

const (
	StatusPending  Status = "pending"
	StatusPartial  Status = "partial"
	StatusComplete Status = "complete"
)
