package store

import (
	"context"

	"gorm.io/gorm/clause"

	"science-ecosystem/models"
)

// Library ist die persönliche Paper-Bibliothek.
type Library struct{ o Owner }

func (l Library) List(ctx context.Context) ([]models.LibraryItem, error) {
	items := []models.LibraryItem{}
	err := l.o.scoped(ctx).Order("created_at DESC, id").Find(&items).Error
	return items, err
}

// Add speichert ein Paper und gibt den gespeicherten Eintrag zurück. Ist es
// bereits gespeichert, bleibt der bestehende Eintrag unverändert und created
// ist false.
func (l Library) Add(ctx context.Context, item models.LibraryItem) (stored models.LibraryItem, created bool, err error) {
	item.ORCID = l.o.orcid
	res := l.o.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&item)
	if res.Error != nil {
		return models.LibraryItem{}, false, res.Error
	}
	stored, err = l.Get(ctx, item.ID)
	return stored, res.RowsAffected == 1, err
}

// Get liefert einen Eintrag oder ErrNotFound.
func (l Library) Get(ctx context.Context, id string) (models.LibraryItem, error) {
	var item models.LibraryItem
	err := l.o.scoped(ctx).Where("id = ?", id).Take(&item).Error
	return item, notFound(err)
}

// Delete entfernt ein Paper; fehlende Einträge sind kein Fehler.
func (l Library) Delete(ctx context.Context, id string) error {
	return l.o.scoped(ctx).Where("id = ?", id).Delete(&models.LibraryItem{}).Error
}

// Has meldet für jede ID, ob sie gespeichert ist.
func (l Library) Has(ctx context.Context, ids []string) (map[string]bool, error) {
	out := make(map[string]bool, len(ids))
	for _, id := range ids {
		out[id] = false
	}
	if len(ids) == 0 {
		return out, nil
	}

	var saved []string
	if err := l.o.scoped(ctx).Model(&models.LibraryItem{}).Where("id IN ?", ids).Pluck("id", &saved).Error; err != nil {
		return nil, err
	}
	for _, id := range saved {
		out[id] = true
	}
	return out, nil
}

// SetOpenAccess speichert das Ergebnis der Unpaywall-Anreicherung.
func (l Library) SetOpenAccess(ctx context.Context, id, status, url string) error {
	return l.o.scoped(ctx).Model(&models.LibraryItem{}).Where("id = ?", id).
		Updates(map[string]any{"oa_status": status, "oa_url": url}).Error
}
