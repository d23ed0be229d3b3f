package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"science-ecosystem/models"
)

// Collections verwaltet den Sammlungsbaum eines Nutzers.
type Collections struct{ o Owner }

// CollectionPatch beschreibt eine Teiländerung. ParentID wird nur
// übernommen, wenn SetParent gesetzt ist; nil macht die Sammlung zur Wurzel.
type CollectionPatch struct {
	Name      *string
	ParentID  *string
	SetParent bool
}

func (c Collections) List(ctx context.Context) ([]models.Collection, error) {
	cols := []models.Collection{}
	err := c.o.scoped(ctx).Order("created_at, id").Find(&cols).Error
	return cols, err
}

func (c Collections) Get(ctx context.Context, id string) (models.Collection, error) {
	var col models.Collection
	err := c.o.scoped(ctx).Where("id = ?", id).Take(&col).Error
	return col, notFound(err)
}

func (c Collections) Create(ctx context.Context, name string, parentID *string) (models.Collection, error) {
	col := models.Collection{ID: uuid.NewString(), ORCID: c.o.orcid, Name: name, ParentID: parentID}
	err := c.o.tx(ctx, func(o Owner) error {
		if parentID != nil {
			if _, err := (Collections{o}).Get(ctx, *parentID); err != nil {
				if errors.Is(err, ErrNotFound) {
					return ErrInvalidParent
				}
				return err
			}
		}
		return o.db.WithContext(ctx).Omit(clause.Associations).Create(&col).Error
	})
	return col, err
}

func (c Collections) Update(ctx context.Context, id string, patch CollectionPatch) (models.Collection, error) {
	var out models.Collection
	err := c.o.tx(ctx, func(o Owner) error {
		cols := Collections{o}
		if _, err := cols.Get(ctx, id); err != nil {
			return err
		}

		updates := map[string]any{}
		if patch.Name != nil {
			updates["name"] = *patch.Name
		}
		if patch.SetParent {
			if patch.ParentID != nil {
				parents, err := cols.parents(ctx)
				if err != nil {
					return err
				}
				if err := checkMove(parents, id, *patch.ParentID); err != nil {
					return err
				}
			}
			updates["parent_id"] = patch.ParentID
		}
		if len(updates) > 0 {
			if err := o.scoped(ctx).Model(&models.Collection{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}

		var err error
		out, err = cols.Get(ctx, id)
		return err
	})
	return out, err
}

// Delete entfernt eine Sammlung. Ihre Kinder rücken an ihre Stelle unter
// den bisherigen Elternknoten; ihre Einträge verschwinden mit ihr.
func (c Collections) Delete(ctx context.Context, id string) error {
	return c.o.tx(ctx, func(o Owner) error {
		col, err := (Collections{o}).Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}

		if err := o.scoped(ctx).Model(&models.Collection{}).Where("parent_id = ?", id).
			Update("parent_id", col.ParentID).Error; err != nil {
			return err
		}
		if err := o.scoped(ctx).Where("collection_id = ?", id).Delete(&models.CollectionItem{}).Error; err != nil {
			return err
		}
		return o.scoped(ctx).Where("id = ?", id).Delete(&models.Collection{}).Error
	})
}

// parents lädt den Baum als Arena id -> parent.
func (c Collections) parents(ctx context.Context) (map[string]*string, error) {
	var rows []struct {
		ID       string
		ParentID *string
	}
	if err := c.o.scoped(ctx).Model(&models.Collection{}).Select("id", "parent_id").Find(&rows).Error; err != nil {
		return nil, err
	}
	out := make(map[string]*string, len(rows))
	for _, r := range rows {
		out[r.ID] = r.ParentID
	}
	return out, nil
}

// checkMove prüft, ob id unter newParent gehängt werden darf: newParent muss
// existieren und darf weder id selbst noch ein Nachfahre von id sein.
func checkMove(parents map[string]*string, id, newParent string) error {
	if _, ok := parents[newParent]; !ok {
		return ErrInvalidParent
	}
	cur := &newParent
	// Ein intakter Baum hat höchstens len(parents) Vorfahren.
	for steps := 0; cur != nil && steps <= len(parents); steps++ {
		if *cur == id {
			return ErrCycle
		}
		cur = parents[*cur]
	}
	if cur != nil {
		return ErrCycle
	}
	return nil
}

// AddItem legt ein Paper in die Sammlung; doppelte Einträge werden ignoriert.
func (c Collections) AddItem(ctx context.Context, collectionID, paperID string) error {
	if _, err := c.Get(ctx, collectionID); err != nil {
		return err
	}
	item := models.CollectionItem{CollectionID: collectionID, PaperID: paperID, ORCID: c.o.orcid}
	return c.o.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&item).Error
}

func (c Collections) RemoveItem(ctx context.Context, collectionID, paperID string) error {
	return c.o.scoped(ctx).Where("collection_id = ? AND paper_id = ?", collectionID, paperID).
		Delete(&models.CollectionItem{}).Error
}

func (c Collections) Items(ctx context.Context, collectionID string) ([]models.CollectionItem, error) {
	if _, err := c.Get(ctx, collectionID); err != nil {
		return nil, err
	}
	items := []models.CollectionItem{}
	err := c.o.scoped(ctx).Where("collection_id = ?", collectionID).Order("created_at, paper_id").Find(&items).Error
	return items, err
}
