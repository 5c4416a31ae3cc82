package main

import (
	"log"
	"time"

	"gryffintwin/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func openDB(cfg Config) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(cfg.DSN), &gorm.Config{})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(5 * time.Minute)
	return db, nil
}

// migrate creates or updates every table. Models are migrated one at a time so a failure on one
// (usually a permission problem on a managed database) doesn't block the others.
func migrate(db *gorm.DB) {
	for _, m := range models.All() {
		if err := db.AutoMigrate(m); err != nil {
			log.Printf("migration warning (%T): %v", m, err)
		}
	}
}
