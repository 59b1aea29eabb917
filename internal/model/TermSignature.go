package model

import "github.com/SeakMengs/AutoTermo/pkg/termo"

// One row per (vacancy, signature type). Write once.
type TermSignature struct {
	BaseModel
	VacancyID      string              `gorm:"type:text;not null;uniqueIndex:idx_term_signatures_vacancy_type" json:"vacancyId"`
	SignatureType  termo.SignatureType `gorm:"type:varchar(40);not null;uniqueIndex:idx_term_signatures_vacancy_type" json:"signatureType"`
	SignerUserID   string              `gorm:"type:text;not null" json:"signerUserId"`
	SignatureImage string              `gorm:"type:text;not null" json:"-"`

	Vacancy Vacancy `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Signer  User    `gorm:"foreignKey:SignerUserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"-"`
}

func (ts TermSignature) TableName() string {
	return "term_signatures"
}
