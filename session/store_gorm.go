package session

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"science-ecosystem/models"
)

// GormStore keeps sessions in the sessions table.
type GormStore struct {
	db *gorm.DB
}

// NewGormStore creates a Store backed by db.
func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) Save(ctx context.Context, rec Record) error {
	payload, err := json.Marshal(rec.Payload)
	if err != nil {
		return err
	}
	row := models.Session{SID: rec.Token, Payload: payload, ExpiresAt: rec.ExpiresAt.UnixMilli()}
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "sid"}},
		DoUpdates: clause.AssignmentColumns([]string{"payload", "expires_at"}),
	}).Create(&row).Error
}

func (s *GormStore) Get(ctx context.Context, token string) (Record, bool, error) {
	var row models.Session
	err := s.db.WithContext(ctx).Where("sid = ?", token).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Record{}, false, nil
	}
	if err != nil {
		return Record{}, false, err
	}

	var p Payload
	if err := json.Unmarshal(row.Payload, &p); err != nil {
		return Record{}, false, err
	}
	return Record{Token: row.SID, Payload: p, ExpiresAt: time.UnixMilli(row.ExpiresAt)}, true, nil
}

func (s *GormStore) Delete(ctx context.Context, token string) error {
	return s.db.WithContext(ctx).Where("sid = ?", token).Delete(&models.Session{}).Error
}

func (s *GormStore) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res := s.db.WithContext(ctx).Where("expires_at < ?", now.UnixMilli()).Delete(&models.Session{})
	return res.RowsAffected, res.Error
}

var _ Store = (*GormStore)(nil)
