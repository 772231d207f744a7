package config

import (
	"log"
	"net/url"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// AppConfig holds every recognized environment option. Load validates all of
// them up front so a misconfigured deployment dies before serving a single
// request instead of at first use.
type AppConfig struct {
	BaseURL            string
	Port               string
	DatabaseURL        string
	ReferralCodeLength int
	MaxReferrals       int
	NotionSecret       string
	NotionDatabaseID   string
	BrevoAPIKey        string
	SenderEmail        string
	SenderName         string
	CloudinaryURL      string
	JWTSecret          string
	AdminEmail         string
	AdminPassword      string
}

func Load() *AppConfig {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: .env file not found, reading from system environment variables")
	}

	cfg := &AppConfig{
		BaseURL:            mustURL("BASE_URL"),
		Port:               getEnv("PORT", "8080"),
		DatabaseURL:        mustEnv("DATABASE_URL"),
		ReferralCodeLength: mustPositiveInt("REFERRAL_CODE_LENGTH"),
		MaxReferrals:       mustPositiveInt("MAX_REFERREES"),
		NotionSecret:       mustEnv("NOTION_SECRET"),
		NotionDatabaseID:   mustEnv("NOTION_DATABASE_ID"),
		BrevoAPIKey:        mustEnv("BREVO_API_KEY"),
		SenderEmail:        mustEnv("EMAIL_SENDER"),
		SenderName:         mustEnv("EMAIL_SENDER_NAME"),
		CloudinaryURL:      mustEnv("CLOUDINARY_URL"),
		JWTSecret:          mustEnv("JWT_SECRET"),
		AdminEmail:         mustEnv("ADMIN_EMAIL"),
		AdminPassword:      mustEnv("ADMIN_PASSWORD"),
	}

	log.Println("✅ Configuration loaded successfully")
	return cfg
}

// Config reads a single environment variable. Load has already verified the
// required ones, so callers that only need one value can skip the struct.
func Config(key string) string {
	return os.Getenv(key)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok && value != "" {
		return value
	}
	return fallback
}

func mustEnv(key string) string {
	value := os.Getenv(key)
	if value == "" {
		log.Fatalf("🔥 Missing required environment variable: %s", key)
	}
	return value
}

func mustPositiveInt(key string) int {
	value, err := strconv.Atoi(mustEnv(key))
	if err != nil || value <= 0 {
		log.Fatalf("🔥 Environment variable %s must be a positive integer", key)
	}
	return value
}

// mustURL requires an absolute URL ending in a slash, so referral links can be
// built by plain concatenation.
func mustURL(key string) string {
	value := mustEnv(key)
	parsed, err := url.Parse(value)
	if err != nil || !parsed.IsAbs() || !strings.HasSuffix(value, "/") {
		log.Fatalf("🔥 Environment variable %s must be an absolute URL ending in '/'", key)
	}
	return value
}
