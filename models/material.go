package models

import "time"

// Material ist ein Link oder eine hochgeladene Datei, optional einem Projekt
// zugeordnet.
type Material struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	ORCID       string    `json:"-" gorm:"column:orcid;index;size:19;not null"`
	ProjectID   *string   `json:"project_id" gorm:"index;size:36"`
	Title       string    `json:"title" gorm:"not null"`
	Kind        string    `json:"kind" gorm:"size:16;not null"` // link, file, dataset, code
	URL         string    `json:"url,omitempty" gorm:"column:url;type:text"`
	ObjectKey   string    `json:"-" gorm:"type:text"`
	ContentType string    `json:"content_type,omitempty"`
	Size        int64     `json:"size,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (Material) TableName() string { return "materials" }
