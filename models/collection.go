package models

import "time"

// Collection ist ein Knoten im Sammlungsbaum eines Nutzers. ParentID zeigt
// auf eine andere Sammlung desselben Nutzers oder ist nil (Wurzel).
type Collection struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	ORCID     string    `json:"-" gorm:"column:orcid;index;size:19;not null"`
	Name      string    `json:"name" gorm:"not null"`
	ParentID  *string   `json:"parent_id" gorm:"index;size:36"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Collection) TableName() string { return "collections" }

// CollectionItem ordnet ein Paper einer Sammlung zu.
type CollectionItem struct {
	CollectionID string    `json:"collection_id" gorm:"primaryKey;size:36"`
	PaperID      string    `json:"paper_id" gorm:"primaryKey;size:200"`
	ORCID        string    `json:"-" gorm:"column:orcid;index;size:19;not null"`
	CreatedAt    time.Time `json:"created_at"`

	Collection Collection `json:"-" gorm:"foreignKey:CollectionID;references:ID;constraint:OnDelete:CASCADE"`
}

func (CollectionItem) TableName() string { return "collection_items" }
