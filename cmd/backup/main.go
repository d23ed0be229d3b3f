package main

import (
	"context"
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"science-ecosystem/logging"
	"science-ecosystem/storage"
)

type BackupConfig struct {
	DatabaseURL     string `envconfig:"DATABASE_URL" required:"true"`
	BackupBucket    string `envconfig:"BACKUP_S3_BUCKET" required:"true"`
	BackupEndpoint  string `envconfig:"BACKUP_S3_ENDPOINT" required:"true"`
	BackupAccessKey string `envconfig:"BACKUP_S3_ACCESS_KEY" required:"true"`
	BackupSecretKey string `envconfig:"BACKUP_S3_SECRET_KEY" required:"true"`
	BackupRegion    string `envconfig:"BACKUP_S3_REGION" required:"true"`
	BackupPrefix    string `envconfig:"BACKUP_PREFIX" default:"backups/"`
	KeepBackups     int    `envconfig:"KEEP_BACKUPS" default:"4"`
	LogLevel        string `envconfig:"LOG_LEVEL" default:"info"`
}

func (c BackupConfig) validate() error {
	if c.KeepBackups < 1 {
		return fmt.Errorf("KEEP_BACKUPS must be at least 1, got %d", c.KeepBackups)
	}
	return nil
}

func main() {
	_ = godotenv.Load()

	var cfg BackupConfig
	if err := envconfig.Process("", &cfg); err != nil {
		logging.New("production", "info").Fatal("Fehler beim Laden der Konfiguration", zap.Error(err))
	}
	if err := cfg.validate(); err != nil {
		logging.New("production", "info").Fatal("Ungültige Konfiguration", zap.Error(err))
	}
	log := logging.New("production", cfg.LogLevel)
	defer log.Sync()
	log.Info("Starte Backup-Prozess...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	objects, err := storage.NewS3Store(ctx, storage.Options{
		Endpoint:  cfg.BackupEndpoint,
		Region:    cfg.BackupRegion,
		AccessKey: cfg.BackupAccessKey,
		SecretKey: cfg.BackupSecretKey,
		Bucket:    cfg.BackupBucket,
	})
	if err != nil {
		log.Fatal("Fehler beim Erstellen des S3-Clients", zap.Error(err))
	}

	job := &Job{
		Dump:    PgDump(cfg.DatabaseURL),
		Objects: objects,
		Prefix:  cfg.BackupPrefix,
		Keep:    cfg.KeepBackups,
		Logger:  log,
	}
	key, err := job.Run(ctx, time.Now())
	if err != nil {
		log.Fatal("Backup fehlgeschlagen", zap.Error(err))
	}
	log.Info("Backup-Prozess erfolgreich abgeschlossen.", zap.String("bucket", cfg.BackupBucket), zap.String("key", key))
}
