package repositories

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"resumio/resume-analyzer/internal/models"
)

// HistoryRepository stores history records and their reports. Every method
// runs on the handle the repository was built with, so the repository passed
// to a Transaction callback composes all calls into one transaction.
type HistoryRepository interface {
	Transaction(ctx context.Context, fn func(repo HistoryRepository) error) error
	LockUserRecords(ctx context.Context, userID string) error
	CreateHistoryRecord(ctx context.Context, record *models.HistoryRecord) error
	CreateReportFor(ctx context.Context, recordID uuid.UUID, report *models.Report) error
	ListRecords(ctx context.Context, userID string, offset, limit int) ([]models.HistoryRecord, error)
	ListRecordIDs(ctx context.Context, userID string, offset int) ([]uuid.UUID, error)
	DeleteRecords(ctx context.Context, ids []uuid.UUID) error
	DeleteReports(ctx context.Context, recordIDs []uuid.UUID) error
	FindByIDs(ctx context.Context, userID string, ids []uuid.UUID) ([]models.HistoryRecord, error)
}

type historyRepository struct {
	db *gorm.DB
}

func NewHistoryRepository(db *gorm.DB) HistoryRepository {
	return &historyRepository{db: db}
}

// Transaction implements HistoryRepository.
func (r *historyRepository) Transaction(ctx context.Context, fn func(repo HistoryRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&historyRepository{db: tx})
	})
}

// LockUserRecords takes row locks on every record the user owns. Dialects
// without row locking ignore the clause.
func (r *historyRepository) LockUserRecords(ctx context.Context, userID string) error {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.HistoryRecord{}).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("user_id = ?", userID).
		Pluck("id", &ids).Error
	if err != nil {
		return fmt.Errorf("failed to lock history records: %w", err)
	}
	return nil
}

// CreateHistoryRecord implements HistoryRepository.
func (r *historyRepository) CreateHistoryRecord(ctx context.Context, record *models.HistoryRecord) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(record).Error; err != nil {
		return fmt.Errorf("failed to create history record: %w", err)
	}
	return nil
}

// CreateReportFor implements HistoryRepository.
func (r *historyRepository) CreateReportFor(ctx context.Context, recordID uuid.UUID, report *models.Report) error {
	report.RecordID = recordID
	if err := r.db.WithContext(ctx).Create(report).Error; err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// ListRecords returns the user's records newest first, with reports attached.
func (r *historyRepository) ListRecords(ctx context.Context, userID string, offset, limit int) ([]models.HistoryRecord, error) {
	var records []models.HistoryRecord
	query := r.db.WithContext(ctx).
		Preload("Report").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	if err := query.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("failed to list history records: %w", err)
	}
	return records, nil
}

// ListRecordIDs returns the ids of the user's records newest first, skipping
// the first offset.
func (r *historyRepository) ListRecordIDs(ctx context.Context, userID string, offset int) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).
		Model(&models.HistoryRecord{}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Order("id DESC").
		Offset(offset).
		Limit(-1).
		Pluck("id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list history record ids: %w", err)
	}
	return ids, nil
}

// DeleteRecords implements HistoryRepository.
func (r *historyRepository) DeleteRecords(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Delete(&models.HistoryRecord{}).Error; err != nil {
		return fmt.Errorf("failed to delete history records: %w", err)
	}
	return nil
}

// DeleteReports implements HistoryRepository.
func (r *historyRepository) DeleteReports(ctx context.Context, recordIDs []uuid.UUID) error {
	if len(recordIDs) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Where("record_id IN ?", recordIDs).Delete(&models.Report{}).Error; err != nil {
		return fmt.Errorf("failed to delete reports: %w", err)
	}
	return nil
}

// FindByIDs implements HistoryRepository.
func (r *historyRepository) FindByIDs(ctx context.Context, userID string, ids []uuid.UUID) ([]models.HistoryRecord, error) {
	var records []models.HistoryRecord
	if len(ids) == 0 {
		return records, nil
	}
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND id IN ?", userID, ids).
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("failed to find history records: %w", err)
	}
	return records, nil
}
