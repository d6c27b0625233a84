package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kavisanghavi/logline/db/models"
	"gorm.io/gorm"
)

var ErrUserNotFound = errors.New("user not found")

func FindUserBySlack(ctx context.Context, gdb *gorm.DB, teamID, userID string) (*models.User, error) {
	teamID = strings.TrimSpace(teamID)
	userID = strings.TrimSpace(userID)
	if teamID == "" || userID == "" {
		return nil, fmt.Errorf("empty slack identity")
	}
	var u models.User
	err := gdb.WithContext(ctx).
		Where("slack_team_id = ? AND slack_user_id = ?", teamID, userID).
		First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func SaveUser(ctx context.Context, gdb *gorm.DB, u *models.User) error {
	if u == nil {
		return fmt.Errorf("nil user")
	}
	return gdb.WithContext(ctx).Save(u).Error
}
