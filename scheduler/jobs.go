package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kavisanghavi/logline/db/models"
	"gorm.io/gorm"
)

// UpsertJob creates or updates the single reminder job owned by userID.
// NextRunAt is cleared so the scheduler recomputes it on the next tick.
func UpsertJob(ctx context.Context, gdb *gorm.DB, userID, timeOfDay, message string) (*models.ReminderJob, error) {
	if _, _, err := parseTimeOfDay(timeOfDay); err != nil {
		return nil, err
	}
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, fmt.Errorf("empty user id")
	}

	var job models.ReminderJob
	err := gdb.WithContext(ctx).Where("user_id = ?", userID).First(&job).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		job = models.ReminderJob{
			UserID:    userID,
			Enabled:   true,
			TimeOfDay: strings.TrimSpace(timeOfDay),
			Message:   strings.TrimSpace(message),
		}
		if err := gdb.WithContext(ctx).Create(&job).Error; err != nil {
			return nil, err
		}
		return &job, nil
	case err != nil:
		return nil, err
	}

	updates := map[string]any{
		"enabled":     true,
		"time_of_day": strings.TrimSpace(timeOfDay),
		"message":     strings.TrimSpace(message),
		"next_run_at": nil,
	}
	if err := gdb.WithContext(ctx).Model(&models.ReminderJob{}).Where("id = ?", job.ID).Updates(updates).Error; err != nil {
		return nil, err
	}
	return &job, nil
}

// DisableJob turns off the reminder for userID. Missing jobs are not an error.
func DisableJob(ctx context.Context, gdb *gorm.DB, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return fmt.Errorf("empty user id")
	}
	return gdb.WithContext(ctx).
		Model(&models.ReminderJob{}).
		Where("user_id = ?", userID).
		Updates(map[string]any{"enabled": false, "next_run_at": nil}).Error
}
