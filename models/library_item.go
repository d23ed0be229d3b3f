package models

import "time"

// LibraryItem ist ein in der persönlichen Bibliothek gespeichertes Paper.
// (orcid, id) ist eindeutig; id ist der OpenAlex-Tail (W...) oder eine
// andere externe Kennung.
type LibraryItem struct {
	ORCID     string    `json:"-" gorm:"column:orcid;primaryKey;size:19"`
	ID        string    `json:"id" gorm:"column:id;primaryKey;size:200"`
	Title     string    `json:"title" gorm:"type:text;not null"`
	DOI       string    `json:"doi,omitempty" gorm:"column:doi"`
	OAStatus  string    `json:"oa_status,omitempty" gorm:"column:oa_status"`
	OAURL     string    `json:"oa_url,omitempty" gorm:"column:oa_url;type:text"`
	CreatedAt time.Time `json:"created_at"`
}

func (LibraryItem) TableName() string { return "library_items" }
