package models

import "time"

// Project bündelt Materialien eines Nutzers.
type Project struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	ORCID       string    `json:"-" gorm:"column:orcid;index;size:19;not null"`
	Title       string    `json:"title" gorm:"not null"`
	Description string    `json:"description,omitempty" gorm:"type:text"`
	Status      string    `json:"status" gorm:"default:'active'"` // active, archived
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Project) TableName() string { return "projects" }
