package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/intentbot-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&domain.User{},

		&domain.Intent{},
		&domain.Pattern{},
		&domain.Response{},

		&domain.ChatLog{},
		&domain.TrainingRun{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}
