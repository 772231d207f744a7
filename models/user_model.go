package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is an accepted applicant. Every user except the seeded admin was
// created by the signup workflow and carries a reference to whoever referred
// them. The referral code is issued once and never changes.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string    `gorm:"size:255;not null;unique" json:"email"`
	ReferralCode string    `gorm:"size:20;not null;unique" json:"referral_code"`

	ReferrerID *uuid.UUID `gorm:"type:uuid;index" json:"referrer_id,omitempty"`
	Referrer   *User      `gorm:"foreignKey:ReferrerID" json:"-"`

	UnlimitedReferrals bool `gorm:"not null;default:false" json:"unlimited_referrals"`

	Role     string  `gorm:"size:20;not null;default:'applicant'" json:"role"`
	Password *string `gorm:"size:255" json:"-"`

	CreatedAt time.Time `json:"created_at"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
