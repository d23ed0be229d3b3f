package database

import (
	"fmt"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"science-ecosystem/models"
)

// Open verbindet sich mit Postgres. SQL-Logging bleibt stumm, Fehler
// protokollieren die Aufrufer selbst.
func Open(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	if err := sqlDB.Ping(); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	log.Info("Successfully connected to database.")
	return db, nil
}

// Models lists every table in creation order; users must come first so the
// owner foreign keys can be created.
func Models() []any {
	return []any{
		&models.User{},
		&models.Session{},
		&models.LibraryItem{},
		&models.Note{},
		&models.Collection{},
		&models.CollectionItem{},
		&models.ClaimedAuthor{},
		&models.MergedClaim{},
		&models.Project{},
		&models.Material{},
	}
}

// Migrate führt die Auto-Migration für alle Tabellen aus.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
