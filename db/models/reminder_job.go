package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReminderJob struct {
	ID string `gorm:"primaryKey;type:text"`

	UserID string `gorm:"type:text;not null;uniqueIndex"`
	User   User   `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE"`

	Enabled bool `gorm:"not null;default:1"`

	// Local wall-clock time of day, "HH:MM" 24h, interpreted in the
	// user's timezone.
	TimeOfDay string `gorm:"type:text;not null"`

	// Message posted to the user's DM. Empty means the default prompt.
	Message string `gorm:"type:text"`

	// Derived schedule state (UTC unix seconds).
	LastRunAt *int64 `gorm:""`
	NextRunAt *int64 `gorm:"index"`

	CreatedAt int64 `gorm:"autoCreateTime"`
	UpdatedAt int64 `gorm:"autoUpdateTime"`
}

func (j *ReminderJob) BeforeCreate(_ *gorm.DB) error {
	if j.ID == "" {
		j.ID = uuid.NewString()
	}
	return nil
}
