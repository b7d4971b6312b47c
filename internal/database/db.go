package database

import (
	"fmt"

	"github.com/wikisphere/userverify/internal/keystore"
	"github.com/wikisphere/userverify/internal/records"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to the sqlite database at path and migrates the two
// verification tables. Read/write routing beyond a single connection is left
// to the driver.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database at %s: %w", path, err)
	}

	if err := db.AutoMigrate(&keystore.KeyRecord{}, &records.VerificationRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate schema: %w", err)
	}

	return db, nil
}
