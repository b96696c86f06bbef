package model

import "gorm.io/gorm"

// Migrate creates or updates every table, join tables included.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(All()...)
}
