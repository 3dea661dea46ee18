package db

import (
	"fmt"

	"gorm.io/gorm"

	gormModels "infinite-experiment/gazetteer/internal/models/gorm"
)

// Migrate creates the destination tables and indexes if they are missing.
func Migrate(gdb *gorm.DB) error {
	if err := gdb.AutoMigrate(&gormModels.Country{}, &gormModels.State{}, &gormModels.City{}, &gormModels.Location{}); err != nil {
		return fmt.Errorf("failed to migrate destination schema: %w", err)
	}
	return nil
}
