package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type User struct {
	ID string `gorm:"primaryKey;type:text"`

	// Slack identity. The pair is the lookup key for inbound events.
	SlackTeamID string `gorm:"type:text;not null;index:idx_users_slack,unique"`
	SlackUserID string `gorm:"type:text;not null;index:idx_users_slack,unique"`

	// IANA timezone name used for day headings and reminder scheduling.
	Timezone string `gorm:"type:text;not null;default:'UTC'"`

	// Target document. Empty until onboarding creates or links one.
	DocumentID string `gorm:"type:text"`

	// Document credential, sealed with the process secret key.
	CredentialCiphertext string `gorm:"type:text"`

	// Set when a write fails with an expired credential so the bot can
	// prompt for re-authorization instead of retrying blindly.
	CredentialExpired bool `gorm:"not null;default:0"`

	CreatedAt int64 `gorm:"autoCreateTime"`
	UpdatedAt int64 `gorm:"autoUpdateTime"`
}

func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
