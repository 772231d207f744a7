package database

import (
	"fmt"
	"log"

	config "github.com/marcelmiro/starkeys/configs"
	"github.com/marcelmiro/starkeys/models"
	"github.com/marcelmiro/starkeys/utils"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var DB *gorm.DB

func ConnectDB(dsn string) {
	var err error

	DB, err = gorm.Open(postgres.Open(dsn), &gorm.Config{
		SkipDefaultTransaction: true,
		// Duplicate-key violations must surface as gorm.ErrDuplicatedKey so
		// the signup workflow can report "email already in use".
		TranslateError: true,
	})
	if err != nil {
		log.Fatalf("🔥 Failed to connect to database: %v", err)
	}

	fmt.Println("✅ Database connected successfully")
}

func Migrate() {
	err := DB.AutoMigrate(
		&models.User{},
		&models.CleanupTask{},
	)
	if err != nil {
		log.Fatalf("🔥 Failed to migrate database: %v", err)
	}
	fmt.Println("✅ Database migration successful")
}

// SeedAdmin creates the root of the referral tree: an admin user with
// unlimited referrals whose code bootstraps every other signup. Idempotent.
func SeedAdmin(cfg *config.AppConfig) {
	var count int64
	err := DB.Model(&models.User{}).Where("email = ?", cfg.AdminEmail).Count(&count).Error
	if err != nil {
		log.Fatalf("🔥 Failed to check for admin user: %v", err)
	}

	if count > 0 {
		log.Println("Admin user already exists.")
		return
	}

	code, err := utils.GenerateUniqueReferralCode(DB, cfg.ReferralCodeLength)
	if err != nil {
		log.Fatalf("🔥 Failed to generate admin referral code: %v", err)
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("🔥 Failed to hash admin password: %v", err)
	}

	password := string(hashedPassword)
	adminUser := models.User{
		Email:              cfg.AdminEmail,
		ReferralCode:       code,
		UnlimitedReferrals: true,
		Role:               "admin",
		Password:           &password,
	}

	if err := DB.Create(&adminUser).Error; err != nil {
		log.Fatalf("🔥 Failed to seed admin user: %v", err)
	}

	log.Printf("✅ Admin user seeded successfully with referral code %s", code)
}
