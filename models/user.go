package models

import "time"

// User ist ein über ORCID angemeldeter Forscher. Die ORCID iD ist der
// stabile Schlüssel und wird nie geändert.
type User struct {
	ORCID       string    `json:"orcid" gorm:"column:orcid;primaryKey;size:19"`
	Name        *string   `json:"name"`
	Affiliation *string   `json:"affiliation"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`

	// Alles, was dem Nutzer gehört, verschwindet mit ihm.
	LibraryItems   []LibraryItem   `json:"-" gorm:"foreignKey:ORCID;references:ORCID;constraint:OnDelete:CASCADE"`
	Notes          []Note          `json:"-" gorm:"foreignKey:ORCID;references:ORCID;constraint:OnDelete:CASCADE"`
	Collections    []Collection    `json:"-" gorm:"foreignKey:ORCID;references:ORCID;constraint:OnDelete:CASCADE"`
	ClaimedAuthors []ClaimedAuthor `json:"-" gorm:"foreignKey:ORCID;references:ORCID;constraint:OnDelete:CASCADE"`
	MergedClaims   []MergedClaim   `json:"-" gorm:"foreignKey:ORCID;references:ORCID;constraint:OnDelete:CASCADE"`
	Projects       []Project       `json:"-" gorm:"foreignKey:ORCID;references:ORCID;constraint:OnDelete:CASCADE"`
	Materials      []Material      `json:"-" gorm:"foreignKey:ORCID;references:ORCID;constraint:OnDelete:CASCADE"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (User) TableName() string {
	return "users"
}
