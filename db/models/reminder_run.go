package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReminderRun struct {
	ID string `gorm:"primaryKey;type:text"`

	JobID string      `gorm:"type:text;not null;index"`
	Job   ReminderJob `gorm:"foreignKey:JobID;references:ID;constraint:OnDelete:CASCADE"`

	// Snapshot job version at enqueue time (UTC unix seconds from reminder_jobs.updated_at).
	JobUpdatedAt int64 `gorm:"not null;default:0"`

	// queued|running|succeeded|failed|canceled|skipped
	Status string `gorm:"type:text;not null;index"`

	// UTC unix seconds
	ScheduledFor int64  `gorm:"not null;index"`
	StartedAt    *int64 `gorm:""`
	FinishedAt   *int64 `gorm:""`

	Attempt int `gorm:"not null;default:1"`

	Error         *string `gorm:"type:text"`
	ResultSummary *string `gorm:"type:text"`

	CreatedAt int64 `gorm:"autoCreateTime"`
	UpdatedAt int64 `gorm:"autoUpdateTime"`
}

func (r *ReminderRun) BeforeCreate(_ *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
