package utils

import (
	"errors"

	"github.com/marcelmiro/starkeys/models"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"gorm.io/gorm"
)

const codeAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateCode returns a random string of the given length drawn from the
// 62-symbol alphanumeric alphabet, using a crypto/rand source so codes are
// unguessable.
func GenerateCode(length int) (string, error) {
	return gonanoid.Generate(codeAlphabet, length)
}

// GenerateUniqueReferralCode draws codes until one is not already assigned to
// a user. At sane code lengths a collision is close to impossible, so the
// loop almost always runs once.
func GenerateUniqueReferralCode(db *gorm.DB, length int) (string, error) {
	for {
		code, err := GenerateCode(length)
		if err != nil {
			return "", err
		}

		var user models.User
		err = db.Where("referral_code = ?", code).First(&user).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return code, nil
			}
			return "", err
		}
	}
}
