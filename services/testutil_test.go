package services

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/marcelmiro/starkeys/models"
	"github.com/marcelmiro/starkeys/workspace"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("failed opening in-memory sqlite database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed getting sql.DB from gorm: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	if err := db.AutoMigrate(&models.User{}, &models.CleanupTask{}); err != nil {
		t.Fatalf("failed automigrating models: %v", err)
	}

	return db
}

func createUser(t *testing.T, db *gorm.DB, email, code string, unlimited bool, referrerID *uuid.UUID) *models.User {
	t.Helper()

	user := models.User{
		Email:              email,
		ReferralCode:       code,
		UnlimitedReferrals: unlimited,
		ReferrerID:         referrerID,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("failed creating user %s: %v", email, err)
	}
	return &user
}

type fakeUploader struct {
	url   string
	err   error
	calls int32
}

func (f *fakeUploader) UploadResume(ctx context.Context, data []byte, fileName, contentType string) (string, error) {
	atomic.AddInt32(&f.calls, 1)
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type fakeMailer struct {
	err    error
	onSend func()

	mu           sync.Mutex
	referralURLs []string
}

func (f *fakeMailer) SendSubmissionEmail(ctx context.Context, toEmail, firstName, referralURL string) error {
	f.mu.Lock()
	f.referralURLs = append(f.referralURLs, referralURL)
	f.mu.Unlock()
	if f.onSend != nil {
		f.onSend()
	}
	return f.err
}

type fakeRecorder struct {
	err error

	mu   sync.Mutex
	apps []workspace.Application
}

func (f *fakeRecorder) RecordApplication(ctx context.Context, app workspace.Application) error {
	f.mu.Lock()
	f.apps = append(f.apps, app)
	f.mu.Unlock()
	return f.err
}

func newTestSignup(db *gorm.DB) (*SignupService, *fakeUploader, *fakeMailer, *fakeRecorder) {
	uploader := &fakeUploader{url: "https://files.example.com/abc/resume.pdf"}
	mailer := &fakeMailer{}
	recorder := &fakeRecorder{}

	signup := &SignupService{
		DB:           db,
		Files:        uploader,
		Mail:         mailer,
		Workspace:    recorder,
		BaseURL:      "https://starkeys.example.com/",
		CodeLength:   8,
		MaxReferrals: 3,
	}
	return signup, uploader, mailer, recorder
}

func countUsers(t *testing.T, db *gorm.DB) int64 {
	t.Helper()

	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		t.Fatalf("failed counting users: %v", err)
	}
	return count
}
