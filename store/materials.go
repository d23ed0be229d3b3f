package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"science-ecosystem/models"
)

type Materials struct{ o Owner }

// MaterialPatch enthält nur die zu ändernden Felder. ProjectID wird nur
// übernommen, wenn SetProject gesetzt ist.
type MaterialPatch struct {
	Title      *string
	Kind       *string
	URL        *string
	ProjectID  *string
	SetProject bool
}

// List gibt alle Materialien zurück, optional nur die eines Projekts.
func (m Materials) List(ctx context.Context, projectID string) ([]models.Material, error) {
	q := m.o.scoped(ctx)
	if projectID != "" {
		q = q.Where("project_id = ?", projectID)
	}
	materials := []models.Material{}
	err := q.Order("created_at DESC").Find(&materials).Error
	return materials, err
}

func (m Materials) Get(ctx context.Context, id string) (models.Material, error) {
	var material models.Material
	err := m.o.scoped(ctx).Where("id = ?", id).Take(&material).Error
	return material, notFound(err)
}

// Create speichert ein Material. ID und ORCID werden gesetzt; ein
// angegebenes Projekt muss dem Nutzer gehören.
func (m Materials) Create(ctx context.Context, material models.Material) (models.Material, error) {
	if material.ID == "" {
		material.ID = uuid.NewString()
	}
	material.ORCID = m.o.orcid
	if err := m.checkProject(ctx, material.ProjectID); err != nil {
		return models.Material{}, err
	}
	err := m.o.db.WithContext(ctx).Omit(clause.Associations).Create(&material).Error
	return material, err
}

func (m Materials) Update(ctx context.Context, id string, patch MaterialPatch) (models.Material, error) {
	updates := map[string]any{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Kind != nil {
		updates["kind"] = *patch.Kind
	}
	if patch.URL != nil {
		updates["url"] = *patch.URL
	}
	if patch.SetProject {
		if err := m.checkProject(ctx, patch.ProjectID); err != nil {
			return models.Material{}, err
		}
		updates["project_id"] = patch.ProjectID
	}
	if len(updates) > 0 {
		res := m.o.scoped(ctx).Model(&models.Material{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return models.Material{}, res.Error
		}
		if res.RowsAffected == 0 {
			return models.Material{}, ErrNotFound
		}
	}
	return m.Get(ctx, id)
}

// Delete entfernt das Material und gibt die gelöschte Zeile zurück, damit
// eine hochgeladene Datei mit aufgeräumt werden kann. ok ist false, wenn
// nichts gelöscht wurde.
func (m Materials) Delete(ctx context.Context, id string) (removed models.Material, ok bool, err error) {
	err = m.o.tx(ctx, func(o Owner) error {
		mat, err := (Materials{o}).Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		if err := o.scoped(ctx).Where("id = ?", id).Delete(&models.Material{}).Error; err != nil {
			return err
		}
		removed, ok = mat, true
		return nil
	})
	return removed, ok, err
}

func (m Materials) checkProject(ctx context.Context, projectID *string) error {
	if projectID == nil {
		return nil
	}
	if _, err := m.o.Projects().Get(ctx, *projectID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrInvalidProject
		}
		return err
	}
	return nil
}
