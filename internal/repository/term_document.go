package repository

import (
	"context"
	"fmt"

	constant "github.com/SeakMengs/AutoTermo/internal/constant"
	"github.com/SeakMengs/AutoTermo/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type TermDocumentRepository struct {
	*baseRepository
}

// Namespace of the advisory locks taken on term documents.
const TERM_DOCUMENT_LOCK_CLASS = 7301

// Upsert keyed by vacancy id, a regenerated term replaces the previous marker.
func (tdr TermDocumentRepository) Upsert(ctx context.Context, tx *gorm.DB, doc *model.TermDocument) error {
	tdr.logger.Debugf("Upsert term document of vacancy %s: %s \n", doc.VacancyID, doc.FileKey)

	db := tdr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Model(&model.TermDocument{}).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "vacancy_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"project_id", "file_key", "base_key", "term_number", "verification_code", "generated_at", "embedded_signatures", "updated_at",
		}),
	}).Create(doc).Error
}

func (tdr TermDocumentRepository) GetByVacancy(ctx context.Context, tx *gorm.DB, vacancyID string) (*model.TermDocument, error) {
	tdr.logger.Debugf("Get term document of vacancy %s \n", vacancyID)

	db := tdr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var doc model.TermDocument
	if err := db.WithContext(ctx).Model(&model.TermDocument{}).Where(&model.TermDocument{VacancyID: vacancyID}).First(&doc).Error; err != nil {
		return nil, err
	}

	return &doc, nil
}

func (tdr TermDocumentRepository) ListByVacancies(ctx context.Context, tx *gorm.DB, vacancyIDs []string) (map[string]model.TermDocument, error) {
	tdr.logger.Debugf("List term documents of %d vacancies \n", len(vacancyIDs))

	docs := make(map[string]model.TermDocument, len(vacancyIDs))
	if len(vacancyIDs) == 0 {
		return docs, nil
	}

	db := tdr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	var list []model.TermDocument
	if err := db.WithContext(ctx).Model(&model.TermDocument{}).Where("vacancy_id IN ?", vacancyIDs).Find(&list).Error; err != nil {
		return nil, err
	}

	for _, d := range list {
		docs[d.VacancyID] = d
	}

	return docs, nil
}

func (tdr TermDocumentRepository) SetEmbeddedSignatures(ctx context.Context, tx *gorm.DB, vacancyID string, count int) error {
	tdr.logger.Debugf("Set embedded signatures of vacancy %s to %d \n", vacancyID, count)

	db := tdr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	return db.WithContext(ctx).Model(&model.TermDocument{}).
		Where("vacancy_id = ?", vacancyID).
		Update("embedded_signatures", count).Error
}

// ListStale returns markers whose stored file embeds fewer signatures than are on record.
func (tdr TermDocumentRepository) ListStale(ctx context.Context, tx *gorm.DB, limit int) ([]model.TermDocument, error) {
	tdr.logger.Debugf("List stale term documents, limit %d \n", limit)

	db := tdr.getDB(tx)
	ctx, cancel := context.WithTimeout(ctx, constant.QUERY_TIMEOUT_DURATION)
	defer cancel()

	signed := db.Model(&model.TermSignature{}).
		Select("COUNT(*)").
		Where("term_signatures.vacancy_id = term_documents.vacancy_id")

	var docs []model.TermDocument
	err := db.WithContext(ctx).Model(&model.TermDocument{}).
		Where("term_documents.embedded_signatures < (?)", signed).
		Order("term_documents.updated_at ASC").
		Limit(limit).
		Find(&docs).Error
	if err != nil {
		return nil, err
	}

	return docs, nil
}

// LockVacancy runs fn in a transaction holding a transaction scoped advisory
// lock on the vacancy. An advisory lock also covers the first generation,
// when no term_documents row exists to lock yet.
// Docs: https://www.postgresql.org/docs/current/explicit-locking.html#ADVISORY-LOCKS
func (tdr TermDocumentRepository) LockVacancy(ctx context.Context, vacancyID string, fn func(tx *gorm.DB) error) error {
	tdr.logger.Debugf("Lock term document of vacancy %s \n", vacancyID)

	return tdr.withTx(tdr.db.WithContext(ctx), func(tx *gorm.DB) error {
		if err := tx.Exec("SELECT pg_advisory_xact_lock(CAST(? AS integer), hashtext(?))", TERM_DOCUMENT_LOCK_CLASS, vacancyID).Error; err != nil {
			return fmt.Errorf("failed to lock term of vacancy %s: %w", vacancyID, err)
		}

		return fn(tx)
	})
}
