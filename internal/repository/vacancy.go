package repository

import (
	"context"
	"time"

	constant "github.com/SeakMengs/AutoTermo/internal/constant"
	"github.com/SeakMengs/AutoTermo/internal/model"
	"gorm.io/gorm"
)

// Vacancy joined with its project, student and responsible professor.
type VacancyDetail struct {
	VacancyID string               `json:"vacancyId"`
	Kind      constant.VacancyKind `json:"kind"`
	StartDate time.Time            `json:"startDate"`

	ProjectID     string `json:"projectId"`
	ProjectTitle  string `json:"projectTitle"`
	Year          int    `json:"year"`
	Term          int    `json:"term"`
	Department    string `json:"department"`
	ComponentCode string `json:"componentCode"`
	ComponentName string `json:"componentName"`

	StudentID      string `json:"studentId"`
	StudentName    string `json:"studentName"`
	StudentEmail   string `json:"studentEmail"`
	ProfessorID    string `json:"professorId"`
	ProfessorName  string `json:"professorName"`
	ProfessorEmail string `json:"professorEmail"`
}

func toVacancyDetail(v model.Vacancy) VacancyDetail {
	return VacancyDetail{
		VacancyID:      v.ID,
		Kind:           v.Kind,
		StartDate:      v.StartDate,
		ProjectID:      v.ProjectID,
		ProjectTitle:   v.Project.Title,
		Year:           v.Project.Year,
		Term:           v.Project.Term,
		Department:     v.Project.Department,
		ComponentCode:  v.Project.ComponentCode,
		ComponentName:  v.Project.ComponentName,
		StudentID:      v.StudentID,
		StudentName:    v.Student.Name,
		StudentEmail:   v.Student.Email,
		ProfessorID:    v.Project.ProfessorID,
		ProfessorName:  v.Project.Professor.Name,
		ProfessorEmail: v.Project.Professor.Email,
	}
}

func toVacancyDetails(vacancies []model.Vacancy) []VacancyDetail {
	details := make([]VacancyDetail, 0, len(vacancies))
	for _, v := range vacancies {
		details = append(details, toVacancyDetail(v))
	}
	return details
}

type VacancyRepository struct {
	*baseRepository
}

func (vr VacancyRepository) detailQuery(ctx context.Context, tx *gorm.DB) *gorm.DB {
	return vr.getDB(tx).WithContext(ctx).Model(&model.Vacancy{}).
		Preload("Student").
		Preload("Project").
		Preload("Project.Professor")
}

func (vr VacancyRepository) GetDetail(ctx context.Context, tx *gorm.DB, vacancyID string) (*VacancyDetail, error) {
	vr.logger.Debugf("Get vacancy detail by id: %s \n", vacancyID)

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var vacancy model.Vacancy
	if err := vr.detailQuery(ctx, tx).Where(&model.Vacancy{
		BaseModel: model.BaseModel{
			ID: vacancyID,
		},
	}).First(&vacancy).Error; err != nil {
		return nil, err
	}

	detail := toVacancyDetail(vacancy)
	return &detail, nil
}

func (vr VacancyRepository) ListDetailsByProject(ctx context.Context, tx *gorm.DB, projectID string) ([]VacancyDetail, error) {
	vr.logger.Debugf("List vacancy details of project: %s \n", projectID)

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var vacancies []model.Vacancy
	if err := vr.detailQuery(ctx, tx).Where(&model.Vacancy{ProjectID: projectID}).
		Order("vacancies.created_at ASC").Find(&vacancies).Error; err != nil {
		return nil, err
	}

	return toVacancyDetails(vacancies), nil
}

func (vr VacancyRepository) ListDetailsByStudent(ctx context.Context, tx *gorm.DB, studentID string) ([]VacancyDetail, error) {
	vr.logger.Debugf("List vacancy details of student: %s \n", studentID)

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var vacancies []model.Vacancy
	if err := vr.detailQuery(ctx, tx).Where(&model.Vacancy{StudentID: studentID}).
		Order("vacancies.created_at ASC").Find(&vacancies).Error; err != nil {
		return nil, err
	}

	return toVacancyDetails(vacancies), nil
}

func (vr VacancyRepository) ListDetailsByProfessor(ctx context.Context, tx *gorm.DB, professorID string) ([]VacancyDetail, error) {
	vr.logger.Debugf("List vacancy details of professor: %s \n", professorID)

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var vacancies []model.Vacancy
	if err := vr.detailQuery(ctx, tx).
		Joins("JOIN projects ON projects.id = vacancies.project_id").
		Where("projects.professor_id = ?", professorID).
		Order("vacancies.created_at ASC").Find(&vacancies).Error; err != nil {
		return nil, err
	}

	return toVacancyDetails(vacancies), nil
}

func (vr VacancyRepository) ListDetails(ctx context.Context, tx *gorm.DB) ([]VacancyDetail, error) {
	vr.logger.Debug("List all vacancy details")

	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var vacancies []model.Vacancy
	if err := vr.detailQuery(ctx, tx).Order("vacancies.created_at ASC").Find(&vacancies).Error; err != nil {
		return nil, err
	}

	return toVacancyDetails(vacancies), nil
}
