package storage

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"
)

// Rotate behält unter prefix die keep neuesten Objekte und löscht den Rest.
// Einzelne Löschfehler werden protokolliert, brechen aber nicht ab.
func Rotate(ctx context.Context, store ObjectStore, prefix string, keep int, log *zap.Logger) (deleted int, err error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must not be negative, got %d", keep)
	}
	objects, err := store.List(ctx, prefix)
	if err != nil {
		return 0, err
	}
	if len(objects) <= keep {
		log.Info("Keine Rotation nötig.", zap.Int("vorhanden", len(objects)), zap.Int("keep", keep))
		return 0, nil
	}

	sort.Slice(objects, func(i, j int) bool {
		return objects[i].LastModified.After(objects[j].LastModified)
	})

	for _, obj := range objects[keep:] {
		log.Info("Lösche altes Backup", zap.String("key", obj.Key))
		if err := store.Delete(ctx, obj.Key); err != nil {
			log.Error("Fehler beim Löschen", zap.String("key", obj.Key), zap.Error(err))
			continue
		}
		deleted++
	}
	return deleted, nil
}
