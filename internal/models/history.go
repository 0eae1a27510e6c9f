package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// HistoryRecord is one analyzed upload owned by a user. Each record has
// exactly one attached Report.
type HistoryRecord struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    string    `gorm:"type:text;not null;index:idx_history_user_created,priority:1" json:"user_id"`
	FileName  string    `gorm:"type:text" json:"file_name"`
	FilePath  string    `gorm:"type:text" json:"file_path"`
	CreatedAt time.Time `gorm:"not null;index:idx_history_user_created,priority:2" json:"created_at"`

	// Relations
	Report *Report `gorm:"foreignKey:RecordID" json:"report,omitempty"`
}

func (HistoryRecord) TableName() string {
	return "history_records"
}

func (r *HistoryRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

type Report struct {
	ID        uuid.UUID                          `gorm:"type:uuid;primaryKey" json:"id"`
	RecordID  uuid.UUID                          `gorm:"type:uuid;not null;uniqueIndex" json:"record_id"`
	ATSScore  int                                `gorm:"not null" json:"ats_score"`
	Details   datatypes.JSONType[AnalysisReport] `json:"details"`
	CreatedAt time.Time                          `json:"created_at"`
}

func (Report) TableName() string {
	return "reports"
}

func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}
