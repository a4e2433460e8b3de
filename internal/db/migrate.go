package db

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/quillhub/quill/internal/models"
)

// Migrate creates or updates the schema for all entities.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.Post{},
		&models.Comment{},
		&models.Follow{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}
	return nil
}
