package repository

import (
	"context"

	constant "github.com/SeakMengs/AutoTermo/internal/constant"
	"github.com/SeakMengs/AutoTermo/internal/model"
	"gorm.io/gorm"
)

type ProjectRepository struct {
	*baseRepository
}

func (pr ProjectRepository) GetById(ctx context.Context, tx *gorm.DB, projectID string) (*model.Project, error) {
	pr.logger.Debugf("Get project by id: %s \n", projectID)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var project model.Project
	if err := db.WithContext(ctx).Model(&model.Project{}).Where(&model.Project{
		BaseModel: model.BaseModel{
			ID: projectID,
		},
	}).Preload("Professor").First(&project).Error; err != nil {
		return nil, err
	}

	return &project, nil
}

func (pr ProjectRepository) ListByProfessor(ctx context.Context, tx *gorm.DB, professorID string) ([]model.Project, error) {
	pr.logger.Debugf("List projects of professor: %s \n", professorID)

	db := pr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var projects []model.Project
	if err := db.WithContext(ctx).Model(&model.Project{}).Where(&model.Project{ProfessorID: professorID}).
		Order("year DESC, term DESC, title ASC").Find(&projects).Error; err != nil {
		return nil, err
	}

	return projects, nil
}
