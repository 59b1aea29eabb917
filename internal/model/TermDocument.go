package model

import "time"

// Marker that the term of a vacancy was generated, and where it lives.
type TermDocument struct {
	BaseModel
	VacancyID        string    `gorm:"type:text;not null;uniqueIndex" json:"vacancyId"`
	ProjectID        string    `gorm:"type:text;not null;index" json:"projectId"`
	FileKey          string    `gorm:"type:text;not null" json:"fileKey"`
	BaseKey          string    `gorm:"type:text;not null" json:"-"`
	TermNumber       string    `gorm:"type:varchar(60);not null" json:"termNumber"`
	VerificationCode string    `gorm:"type:varchar(20);not null" json:"verificationCode"`
	GeneratedAt      time.Time `gorm:"type:timestamptz;not null" json:"generatedAt"`

	// Signatures embedded in the stored file, behind the row count means the file is stale
	EmbeddedSignatures int `gorm:"not null;default:0" json:"embeddedSignatures"`

	Vacancy Vacancy `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
	Project Project `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-"`
}

func (td TermDocument) TableName() string {
	return "term_documents"
}
