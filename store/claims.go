package store

import (
	"context"

	"gorm.io/gorm/clause"

	"science-ecosystem/models"
)

// Claims verwaltet beanspruchte OpenAlex-Autoren und deren Zusammenführungen.
type Claims struct{ o Owner }

func (c Claims) List(ctx context.Context) ([]models.ClaimedAuthor, error) {
	claims := []models.ClaimedAuthor{}
	err := c.o.scoped(ctx).Order("created_at, author_id").Find(&claims).Error
	return claims, err
}

// Claim beansprucht einen Autor. Ein bestehender Claim bleibt unverändert.
// verified bedeutet, dass OpenAlex denselben Autor mit der ORCID des Nutzers führt.
func (c Claims) Claim(ctx context.Context, authorID string, displayName *string, verified bool) (models.ClaimedAuthor, bool, error) {
	row := models.ClaimedAuthor{ORCID: c.o.orcid, AuthorID: authorID, DisplayName: displayName, Verified: verified}
	res := c.o.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&row)
	if res.Error != nil {
		return models.ClaimedAuthor{}, false, res.Error
	}

	var stored models.ClaimedAuthor
	err := c.o.scoped(ctx).Where("author_id = ?", authorID).Take(&stored).Error
	return stored, res.RowsAffected == 1, notFound(err)
}

// Unclaim entfernt den Claim samt aller Zusammenführungen, an denen er beteiligt ist.
func (c Claims) Unclaim(ctx context.Context, authorID string) error {
	return c.o.tx(ctx, func(o Owner) error {
		if err := o.scoped(ctx).Where("primary_author_id = ? OR merged_author_id = ?", authorID, authorID).
			Delete(&models.MergedClaim{}).Error; err != nil {
			return err
		}
		return o.scoped(ctx).Where("author_id = ?", authorID).Delete(&models.ClaimedAuthor{}).Error
	})
}

func (c Claims) Merge(ctx context.Context, primaryID, mergedID string) (models.MergedClaim, error) {
	if primaryID == mergedID {
		return models.MergedClaim{}, ErrSameAuthor
	}
	row := models.MergedClaim{ORCID: c.o.orcid, PrimaryAuthorID: primaryID, MergedAuthorID: mergedID}
	err := c.o.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Omit(clause.Associations).
		Create(&row).Error
	return row, err
}

func (c Claims) Merges(ctx context.Context) ([]models.MergedClaim, error) {
	merges := []models.MergedClaim{}
	err := c.o.scoped(ctx).Order("created_at, primary_author_id, merged_author_id").Find(&merges).Error
	return merges, err
}

func (c Claims) Unmerge(ctx context.Context, primaryID, mergedID string) error {
	return c.o.scoped(ctx).Where("primary_author_id = ? AND merged_author_id = ?", primaryID, mergedID).
		Delete(&models.MergedClaim{}).Error
}
