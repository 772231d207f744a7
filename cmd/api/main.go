package main

import (
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	config "github.com/marcelmiro/starkeys/configs"
	"github.com/marcelmiro/starkeys/database"
	"github.com/marcelmiro/starkeys/handlers"
	"github.com/marcelmiro/starkeys/jobs"
	"github.com/marcelmiro/starkeys/notifications"
	"github.com/marcelmiro/starkeys/routes"
	"github.com/marcelmiro/starkeys/services"
	"github.com/marcelmiro/starkeys/storage"
	"github.com/marcelmiro/starkeys/websocket"
	"github.com/marcelmiro/starkeys/workspace"
	"github.com/robfig/cron/v3"
)

func main() {
	cfg := config.Load()

	database.ConnectDB(cfg.DatabaseURL)
	database.Migrate()
	database.SeedAdmin(cfg)
	notifications.InitEmailService(cfg.BrevoAPIKey, cfg.SenderEmail, cfg.SenderName)

	files, err := storage.NewCloudinaryService(cfg.CloudinaryURL)
	if err != nil {
		log.Fatalf("🔥 Failed to initialize file storage: %v", err)
	}

	signup := &services.SignupService{
		DB:           database.DB,
		Files:        files,
		Mail:         notifications.EmailClient,
		Workspace:    workspace.NewNotionService(cfg.NotionSecret, cfg.NotionDatabaseID),
		BaseURL:      cfg.BaseURL,
		CodeLength:   cfg.ReferralCodeLength,
		MaxReferrals: cfg.MaxReferrals,
	}

	c := cron.New()
	if _, err := c.AddFunc("*/10 * * * *", jobs.ProcessCleanupTasks); err != nil {
		log.Fatalf("🔥 Failed to schedule cleanup job: %v", err)
	}
	c.Start()
	log.Println("✅ Cron job for orphan cleanup scheduled successfully.")

	app := fiber.New(fiber.Config{
		AppName:       "Starkeys",
		CaseSensitive: true,
		StrictRouting: true,
		ReadTimeout:   15 * time.Second,
		WriteTimeout:  15 * time.Second,
		IdleTimeout:   60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	applicationHandler := handlers.NewApplicationHandler(signup)

	routes.PublicRoutes(app, applicationHandler)
	routes.AuthRoutes(app)
	routes.AdminRoutes(app)

	go websocket.RunHub()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	log.Printf("✅ Server is running on port %s", cfg.Port)
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
