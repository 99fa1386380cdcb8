package db

import (
	"fmt"

	"github.com/diewo77/go-talent/internal/models"
	"gorm.io/gorm"
)

// Migrate creates or updates the questionnaire tables and their partial unique indexes.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.Category{},
		&models.Question{},
		&models.Response{},
	); err != nil {
		return fmt.Errorf("migrations failed: %w", err)
	}
	return nil
}
