package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"science-ecosystem/models"
)

// Users verwaltet die Nutzertabelle. Sie ist nicht owner-gescoped, weil der
// Login den Nutzer erst anlegt.
type Users struct {
	db *gorm.DB
}

func NewUsers(db *gorm.DB) *Users {
	return &Users{db: db}
}

// Upsert legt den Nutzer an oder aktualisiert Name und Affiliation. Leere
// Werte überschreiben gespeicherte nicht.
func (u *Users) Upsert(ctx context.Context, orcid string, name, affiliation *string) (models.User, error) {
	row := models.User{ORCID: orcid, Name: name, Affiliation: affiliation}
	err := u.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "orcid"}},
		DoUpdates: clause.Assignments(map[string]any{
			"name":        gorm.Expr("COALESCE(excluded.name, users.name)"),
			"affiliation": gorm.Expr("COALESCE(excluded.affiliation, users.affiliation)"),
			"updated_at":  gorm.Expr("excluded.updated_at"),
		}),
	}).Create(&row).Error
	if err != nil {
		return models.User{}, err
	}
	return u.Get(ctx, orcid)
}

// Get liefert den Nutzer oder ErrNotFound.
func (u *Users) Get(ctx context.Context, orcid string) (models.User, error) {
	var row models.User
	err := u.db.WithContext(ctx).Where("orcid = ?", orcid).Take(&row).Error
	return row, notFound(err)
}
