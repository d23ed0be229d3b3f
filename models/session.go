package models

import "gorm.io/datatypes"

// Session ist ein serverseitiger Anmeldezustand. ExpiresAt ist in
// Epoch-Millisekunden gespeichert.
type Session struct {
	SID       string         `gorm:"column:sid;primaryKey;size:128"`
	Payload   datatypes.JSON `gorm:"type:jsonb;not null"`
	ExpiresAt int64          `gorm:"column:expires_at;index;not null"`
}

// TableName gibt den expliziten Tabellennamen für GORM an.
func (Session) TableName() string {
	return "sessions"
}
