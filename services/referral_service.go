package services

import (
	"errors"

	"github.com/marcelmiro/starkeys/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrCodeNotFound  = errors.New("referral code not found")
	ErrQuotaExceeded = errors.New("referral code has expired")
)

// VerifyReferralCode returns the user owning the given referral code, or
// ErrCodeNotFound / ErrQuotaExceeded. Read-only and safe to call repeatedly:
// it gates the landing page and runs again at submission time.
func VerifyReferralCode(db *gorm.DB, code string, maxReferrals int) (*models.User, error) {
	return verifyReferralCode(db, code, maxReferrals, false)
}

func verifyReferralCode(db *gorm.DB, code string, maxReferrals int, forUpdate bool) (*models.User, error) {
	query := db.Where("referral_code = ?", code)
	// Inside the signup transaction the referrer row is locked so two
	// concurrent submissions cannot both pass the quota check. sqlite has a
	// single writer and rejects FOR UPDATE, so the clause is postgres-only.
	if forUpdate && db.Dialector.Name() == "postgres" {
		query = query.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var user models.User
	if err := query.First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCodeNotFound
		}
		return nil, err
	}

	if !user.UnlimitedReferrals {
		var referrees int64
		err := db.Model(&models.User{}).Where("referrer_id = ?", user.ID).Count(&referrees).Error
		if err != nil {
			return nil, err
		}
		if referrees >= int64(maxReferrals) {
			return nil, ErrQuotaExceeded
		}
	}

	return &user, nil
}
