package model

import (
	"fmt"

	"medsync/services/medsync/internal/model/counter"
	"medsync/services/medsync/internal/model/user"

	"gorm.io/gorm"
)

// GetModels lists every table the service migrates.
func GetModels() []interface{} {
	return []interface{}{
		&user.User{},
		&counter.RoleCounter{},
	}
}

func InitTable(db *gorm.DB) error {
	if err := db.AutoMigrate(GetModels()...); err != nil {
		return fmt.Errorf("migrate tables: %w", err)
	}
	return nil
}
