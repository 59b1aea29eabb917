package repository

import (
	"context"
	"errors"
	"fmt"

	constant "github.com/SeakMengs/AutoTermo/internal/constant"
	"github.com/SeakMengs/AutoTermo/internal/model"
	"github.com/SeakMengs/AutoTermo/pkg/termo"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var ErrDuplicateSignature = errors.New("signature already exists for this vacancy and type")

const pgUniqueViolation = "23505"

// gorm translates unique violations when TranslateError is on, the pg code covers the rest
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}

	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}

type TermSignatureRepository struct {
	*baseRepository
}

func (tsr TermSignatureRepository) Create(ctx context.Context, tx *gorm.DB, signature *model.TermSignature) error {
	tsr.logger.Debugf("Create term signature of type %s for vacancy %s by %s \n", signature.SignatureType, signature.VacancyID, signature.SignerUserID)

	db := tsr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	if err := db.WithContext(ctx).Model(&model.TermSignature{}).Create(signature).Error; err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateSignature
		}
		return err
	}

	return nil
}

func (tsr TermSignatureRepository) ExistsByVacancyAndType(ctx context.Context, tx *gorm.DB, vacancyID string, signatureType termo.SignatureType) (bool, error) {
	tsr.logger.Debugf("Check term signature of type %s exists for vacancy %s \n", signatureType, vacancyID)

	db := tsr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var count int64
	if err := db.WithContext(ctx).Model(&model.TermSignature{}).Where(&model.TermSignature{
		VacancyID:     vacancyID,
		SignatureType: signatureType,
	}).Count(&count).Error; err != nil {
		return false, err
	}

	return count > 0, nil
}

func (tsr TermSignatureRepository) ListByVacancy(ctx context.Context, tx *gorm.DB, vacancyID string) ([]model.TermSignature, error) {
	tsr.logger.Debugf("List term signatures of vacancy %s \n", vacancyID)

	db := tsr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var signatures []model.TermSignature
	if err := db.WithContext(ctx).Model(&model.TermSignature{}).Where(&model.TermSignature{VacancyID: vacancyID}).
		Order("signature_type ASC").Find(&signatures).Error; err != nil {
		return nil, err
	}

	return signatures, nil
}

// Signatures grouped by vacancy id. Images are not loaded, this is for status projections.
func (tsr TermSignatureRepository) ListByVacancies(ctx context.Context, tx *gorm.DB, vacancyIDs []string) (map[string][]model.TermSignature, error) {
	tsr.logger.Debugf("List term signatures of %d vacancies \n", len(vacancyIDs))

	grouped := make(map[string][]model.TermSignature, len(vacancyIDs))
	if len(vacancyIDs) == 0 {
		return grouped, nil
	}

	db := tsr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var signatures []model.TermSignature
	if err := db.WithContext(ctx).Model(&model.TermSignature{}).
		Select("id", "created_at", "updated_at", "vacancy_id", "signature_type", "signer_user_id").
		Where("vacancy_id IN ?", vacancyIDs).
		Order("vacancy_id ASC, signature_type ASC").Find(&signatures).Error; err != nil {
		return nil, err
	}

	for _, s := range signatures {
		grouped[s.VacancyID] = append(grouped[s.VacancyID], s)
	}

	return grouped, nil
}

// Insert the signature and read back every signature of the vacancy in one transaction.
// A concurrent insert for the same (vacancy, type) fails on the unique index with ErrDuplicateSignature.
func (tsr TermSignatureRepository) CreateAndList(ctx context.Context, tx *gorm.DB, signature *model.TermSignature) ([]model.TermSignature, error) {
	tsr.logger.Debugf("Create term signature and list vacancy signatures (Transaction): vacancy %s type %s \n", signature.VacancyID, signature.SignatureType)

	var signatures []model.TermSignature
	err := tsr.withTx(tsr.getDB(tx), func(tx *gorm.DB) error {
		if err := tsr.Create(ctx, tx, signature); err != nil {
			return err
		}

		list, err := tsr.ListByVacancy(ctx, tx, signature.VacancyID)
		if err != nil {
			return fmt.Errorf("failed to list signatures after insert: %w", err)
		}
		signatures = list

		return nil
	})
	if err != nil {
		return nil, err
	}

	return signatures, nil
}
