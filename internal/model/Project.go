package model

// Monitoring project. Owned by the approval workflow, read-only here.
type Project struct {
	BaseModel
	Title      string `gorm:"type:varchar(200);not null;" json:"title" form:"title" binding:"required"`
	Year       int    `gorm:"type:integer;not null" json:"year" form:"year" binding:"required"`
	Term       int    `gorm:"type:integer;not null" json:"term" form:"term" binding:"required"`
	Department string `gorm:"type:varchar(200);not null" json:"department" form:"department"`

	ComponentCode string `gorm:"type:varchar(30);not null" json:"componentCode" form:"componentCode"`
	ComponentName string `gorm:"type:varchar(200);not null" json:"componentName" form:"componentName"`

	ProfessorID string `gorm:"type:text;not null;index" json:"professorId" form:"professorId"`
	Professor   User   `gorm:"constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;" json:"professor" form:"-"`
}

func (p Project) TableName() string {
	return "projects"
}
