package model

import "github.com/SeakMengs/AutoTermo/internal/constant"

type User struct {
	BaseModel
	Email string            `gorm:"unique;not null;type:citext" json:"email" form:"email" binding:"required"`
	Name  string            `gorm:"type:varchar(120);not null;" json:"name" form:"name" binding:"required"`
	Role  constant.UserRole `gorm:"type:varchar(20);not null;index" json:"role" form:"role" binding:"required"`
}

func (u User) TableName() string {
	return "users"
}
