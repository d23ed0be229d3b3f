package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm/clause"

	"science-ecosystem/models"
)

type Notes struct{ o Owner }

// List gibt die Notizen zurück, optional nur die zu einem Paper.
func (n Notes) List(ctx context.Context, paperID string) ([]models.Note, error) {
	q := n.o.scoped(ctx)
	if paperID != "" {
		q = q.Where("paper_id = ?", paperID)
	}
	notes := []models.Note{}
	err := q.Order("created_at DESC").Find(&notes).Error
	return notes, err
}

func (n Notes) Create(ctx context.Context, paperID, text string) (models.Note, error) {
	note := models.Note{ID: uuid.NewString(), ORCID: n.o.orcid, PaperID: paperID, Text: text}
	err := n.o.db.WithContext(ctx).Omit(clause.Associations).Create(&note).Error
	return note, err
}

// Update ersetzt den Text. Fremde oder fehlende Notizen ergeben ErrNotFound.
func (n Notes) Update(ctx context.Context, id, text string) (models.Note, error) {
	res := n.o.scoped(ctx).Model(&models.Note{}).Where("id = ?", id).Update("text", text)
	if res.Error != nil {
		return models.Note{}, res.Error
	}
	if res.RowsAffected == 0 {
		return models.Note{}, ErrNotFound
	}
	return n.Get(ctx, id)
}

func (n Notes) Get(ctx context.Context, id string) (models.Note, error) {
	var note models.Note
	err := n.o.scoped(ctx).Where("id = ?", id).Take(&note).Error
	return note, notFound(err)
}

func (n Notes) Delete(ctx context.Context, id string) error {
	return n.o.scoped(ctx).Where("id = ?", id).Delete(&models.Note{}).Error
}
