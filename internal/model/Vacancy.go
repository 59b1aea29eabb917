package model

import (
	"time"

	"github.com/SeakMengs/AutoTermo/internal/constant"
)

type Vacancy struct {
	BaseModel
	Kind      constant.VacancyKind `gorm:"type:varchar(20);not null" json:"kind" form:"kind"`
	StartDate time.Time            `gorm:"type:date;not null" json:"startDate" form:"startDate"`

	StudentID string  `gorm:"type:text;not null;index" json:"studentId" form:"studentId"`
	Student   User    `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"student" form:"-"`
	ProjectID string  `gorm:"type:text;not null;index" json:"projectId" form:"projectId"`
	Project   Project `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"project" form:"-"`
}

func (v Vacancy) TableName() string {
	return "vacancies"
}
