package main

import (
	"bytes"
	"compress/gzip"
	"context"
	"fmt"
	"io"
	"os/exec"
	"time"

	"go.uber.org/zap"

	"science-ecosystem/storage"
)

// DumpFunc schreibt einen SQL-Dump nach w.
type DumpFunc func(ctx context.Context, w io.Writer) error

// PgDump ruft pg_dump mit der Verbindungs-URL auf.
func PgDump(databaseURL string) DumpFunc {
	return func(ctx context.Context, w io.Writer) error {
		var stderr bytes.Buffer
		cmd := exec.CommandContext(ctx, "pg_dump", "--no-owner", "--no-privileges", "--dbname="+databaseURL)
		cmd.Stdout = w
		cmd.Stderr = &stderr
		if err := cmd.Run(); err != nil {
			return fmt.Errorf("pg_dump: %w: %s", err, bytes.TrimSpace(stderr.Bytes()))
		}
		return nil
	}
}

// Job erstellt ein Backup, lädt es hoch und rotiert alte Backups.
type Job struct {
	Dump    DumpFunc
	Objects storage.ObjectStore
	Prefix  string
	Keep    int
	Logger  *zap.Logger
}

// BackupKey ist der Objektname eines Backups zum Zeitpunkt now.
func BackupKey(prefix string, now time.Time) string {
	return fmt.Sprintf("%sbackup-%s.sql.gz", prefix, now.UTC().Format("2006-01-02T15-04-05Z"))
}

// Run führt das Backup aus und gibt den Objektnamen zurück.
func (j *Job) Run(ctx context.Context, now time.Time) (string, error) {
	// 1. Datenbank-Dump erstellen
	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	if err := j.Dump(ctx, zw); err != nil {
		return "", fmt.Errorf("dump: %w", err)
	}
	if err := zw.Close(); err != nil {
		return "", fmt.Errorf("gzip: %w", err)
	}

	// 2. Backup hochladen
	key := BackupKey(j.Prefix, now)
	if _, err := j.Objects.Put(ctx, key, bytes.NewReader(buf.Bytes()), int64(buf.Len()), "application/gzip"); err != nil {
		return "", fmt.Errorf("upload %s: %w", key, err)
	}
	j.Logger.Info("Backup hochgeladen", zap.String("key", key), zap.Int("bytes", buf.Len()))

	// 3. Alte Backups rotieren
	deleted, err := storage.Rotate(ctx, j.Objects, j.Prefix, j.Keep, j.Logger)
	if err != nil {
		return key, fmt.Errorf("rotate: %w", err)
	}
	if deleted > 0 {
		j.Logger.Info("Alte Backups gelöscht", zap.Int("anzahl", deleted))
	}
	return key, nil
}
