package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"science-ecosystem/models"
)

type Projects struct{ o Owner }

// ProjectPatch enthält nur die zu ändernden Felder.
type ProjectPatch struct {
	Title       *string
	Description *string
	Status      *string
}

func (p Projects) List(ctx context.Context) ([]models.Project, error) {
	projects := []models.Project{}
	err := p.o.scoped(ctx).Order("created_at DESC").Find(&projects).Error
	return projects, err
}

func (p Projects) Get(ctx context.Context, id string) (models.Project, error) {
	var project models.Project
	err := p.o.scoped(ctx).Where("id = ?", id).Take(&project).Error
	return project, notFound(err)
}

func (p Projects) Create(ctx context.Context, title, description, status string) (models.Project, error) {
	if status == "" {
		status = "active"
	}
	project := models.Project{ID: uuid.NewString(), ORCID: p.o.orcid, Title: title, Description: description, Status: status}
	err := p.o.db.WithContext(ctx).Omit(clause.Associations).Create(&project).Error
	return project, err
}

func (p Projects) Update(ctx context.Context, id string, patch ProjectPatch) (models.Project, error) {
	updates := map[string]any{}
	if patch.Title != nil {
		updates["title"] = *patch.Title
	}
	if patch.Description != nil {
		updates["description"] = *patch.Description
	}
	if patch.Status != nil {
		updates["status"] = *patch.Status
	}
	if len(updates) > 0 {
		res := p.o.scoped(ctx).Model(&models.Project{}).Where("id = ?", id).Updates(updates)
		if res.Error != nil {
			return models.Project{}, res.Error
		}
		if res.RowsAffected == 0 {
			return models.Project{}, ErrNotFound
		}
	}
	return p.Get(ctx, id)
}

// Delete entfernt das Projekt; zugeordnete Materialien bleiben ohne Projekt erhalten.
func (p Projects) Delete(ctx context.Context, id string) error {
	return p.o.tx(ctx, func(o Owner) error {
		if err := o.scoped(ctx).Model(&models.Material{}).Where("project_id = ?", id).
			Update("project_id", nil).Error; err != nil {
			return err
		}
		return o.scoped(ctx).Where("id = ?", id).Delete(&models.Project{}).Error
	})
}
