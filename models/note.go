package models

import "time"

// Note ist eine Notiz zu einem Paper, unabhängig von Sammlungen.
type Note struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	ORCID     string    `json:"-" gorm:"column:orcid;index;size:19;not null"`
	PaperID   string    `json:"paper_id" gorm:"index;size:200;not null"`
	Text      string    `json:"text" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Note) TableName() string { return "notes" }
