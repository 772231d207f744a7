package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/google/uuid"
	"github.com/marcelmiro/starkeys/database"
	"github.com/marcelmiro/starkeys/middleware"
	"github.com/marcelmiro/starkeys/models"
	"github.com/marcelmiro/starkeys/services"
	"github.com/marcelmiro/starkeys/workspace"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type testEnv struct {
	app      *fiber.App
	db       *gorm.DB
	uploader *stubUploader
	mailer   *stubMailer
	recorder *stubRecorder
}

type stubUploader struct {
	url string
	err error
}

func (f *stubUploader) UploadResume(ctx context.Context, data []byte, fileName, contentType string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	return f.url, nil
}

type stubMailer struct {
	err error

	mu    sync.Mutex
	sent  int
	lasts string
}

func (f *stubMailer) SendSubmissionEmail(ctx context.Context, toEmail, firstName, referralURL string) error {
	f.mu.Lock()
	f.sent++
	f.lasts = referralURL
	f.mu.Unlock()
	return f.err
}

type stubRecorder struct {
	err error

	mu   sync.Mutex
	apps []workspace.Application
}

func (f *stubRecorder) RecordApplication(ctx context.Context, app workspace.Application) error {
	f.mu.Lock()
	f.apps = append(f.apps, app)
	f.mu.Unlock()
	return f.err
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()

	t.Setenv("JWT_SECRET", "test-secret")

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

	database.DB = db

	uploader := &stubUploader{url: "https://files.example.com/abc/resume.pdf"}
	mailer := &stubMailer{}
	recorder := &stubRecorder{}

	signup := &services.SignupService{
		DB:           db,
		Files:        uploader,
		Mail:         mailer,
		Workspace:    recorder,
		BaseURL:      "https://starkeys.example.com/",
		CodeLength:   8,
		MaxReferrals: 3,
	}

	app := fiber.New()
	app.Use(recover.New())

	application := NewApplicationHandler(signup)

	api := app.Group("/api/v1")
	api.Get("/referrals/verify", application.VerifyReferralCode)
	api.Post("/applications", application.SubmitApplication)

	auth := api.Group("/auth")
	auth.Post("/login", LoginUser)

	admin := app.Group("/api/v1/admin", middleware.Protected(), middleware.AdminRequired())
	admin.Get("/applicants", ListApplicants)
	admin.Patch("/applicants/:id/unlimited", SetUnlimitedReferrals)

	return &testEnv{app: app, db: db, uploader: uploader, mailer: mailer, recorder: recorder}
}

func (env *testEnv) createUser(t *testing.T, email, code string, unlimited bool, referrerID *uuid.UUID) *models.User {
	t.Helper()

	user := models.User{
		Email:              email,
		ReferralCode:       code,
		UnlimitedReferrals: unlimited,
		ReferrerID:         referrerID,
	}
	if err := env.db.Create(&user).Error; err != nil {
		t.Fatalf("failed creating user %s: %v", email, err)
	}
	return &user
}

func (env *testEnv) createAdmin(t *testing.T, email, password string) *models.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("failed hashing password: %v", err)
	}
	hashed := string(hash)

	admin := models.User{
		Email:              email,
		ReferralCode:       "admincode",
		UnlimitedReferrals: true,
		Role:               "admin",
		Password:           &hashed,
	}
	if err := env.db.Create(&admin).Error; err != nil {
		t.Fatalf("failed creating admin: %v", err)
	}
	return &admin
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("failed encoding request body: %v", err)
		}
	}
	req, err := http.NewRequest(method, target, &buf)
	if err != nil {
		t.Fatalf("failed creating request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed reading response body: %v", err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("failed decoding response body %q: %v", string(raw), err)
	}
	return decoded
}
