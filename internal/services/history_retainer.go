package services

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"resumio/resume-analyzer/internal/models"
	"resumio/resume-analyzer/internal/repositories"
)

// DefaultHistoryLimit is the number of records a user keeps.
const DefaultHistoryLimit = 50

type RetainInput struct {
	UserID   string
	FileName string
	FilePath string
	Report   *models.AnalysisReport
}

type RetainResult struct {
	Record    *models.HistoryRecord
	PrunedIDs []uuid.UUID
}

type HistoryRetainer interface {
	// Retain stores the report and trims the user's history to the limit in
	// a single transaction.
	Retain(ctx context.Context, in RetainInput) (*RetainResult, error)
	// List returns the user's retained records, newest first.
	List(ctx context.Context, userID string) ([]models.HistoryRecord, error)
}

type historyRetainer struct {
	repo  repositories.HistoryRepository
	limit int
	now   func() time.Time
}

func NewHistoryRetainer(repo repositories.HistoryRepository, limit int) HistoryRetainer {
	return newHistoryRetainer(repo, limit, time.Now)
}

func newHistoryRetainer(repo repositories.HistoryRepository, limit int, now func() time.Time) *historyRetainer {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &historyRetainer{repo: repo, limit: limit, now: now}
}

// Retain implements HistoryRetainer.
func (h *historyRetainer) Retain(ctx context.Context, in RetainInput) (*RetainResult, error) {
	if in.Report == nil {
		return nil, fmt.Errorf("report is required")
	}

	createdAt := h.now().UTC()
	record := &models.HistoryRecord{
		ID:        uuid.New(),
		UserID:    in.UserID,
		FileName:  in.FileName,
		FilePath:  in.FilePath,
		CreatedAt: createdAt,
	}

	var pruned []uuid.UUID
	err := h.repo.Transaction(ctx, func(tx repositories.HistoryRepository) error {
		// Serializes concurrent runs for the same user on the window
		if err := tx.LockUserRecords(ctx, in.UserID); err != nil {
			return err
		}

		if err := tx.CreateHistoryRecord(ctx, record); err != nil {
			return err
		}

		report := &models.Report{
			ID:        uuid.New(),
			ATSScore:  in.Report.ATSScore,
			Details:   datatypes.NewJSONType(*in.Report),
			CreatedAt: createdAt,
		}
		if err := tx.CreateReportFor(ctx, record.ID, report); err != nil {
			return err
		}
		record.Report = report

		excess, err := tx.ListRecordIDs(ctx, in.UserID, h.limit)
		if err != nil {
			return err
		}
		if len(excess) == 0 {
			return nil
		}

		if err := tx.DeleteReports(ctx, excess); err != nil {
			return err
		}
		if err := tx.DeleteRecords(ctx, excess); err != nil {
			return err
		}
		pruned = excess
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retain analysis: %w", err)
	}

	if len(pruned) > 0 {
		log.Printf("🧹 Pruned %d history records for user %s", len(pruned), in.UserID)
	}

	return &RetainResult{Record: record, PrunedIDs: pruned}, nil
}

// List implements HistoryRetainer.
func (h *historyRetainer) List(ctx context.Context, userID string) ([]models.HistoryRecord, error) {
	return h.repo.ListRecords(ctx, userID, 0, h.limit)
}
