package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CleanupTask records a user row whose compensation delete failed after a
// notification or workspace error. The cleanup job retries these; the
// applicant never sees any of it.
type CleanupTask struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Email     string    `gorm:"size:255;not null"`
	Attempts  int       `gorm:"not null;default:0"`
	LastError string    `gorm:"type:text"`

	CreatedAt time.Time
}

func (t *CleanupTask) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
