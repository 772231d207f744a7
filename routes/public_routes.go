package routes

import (
	"github.com/gofiber/fiber/v2"
	"github.com/marcelmiro/starkeys/handlers"
)

func PublicRoutes(app *fiber.App, application *handlers.ApplicationHandler) {
	api := app.Group("/api/v1")

	api.Get("/referrals/verify", application.VerifyReferralCode)
	api.Post("/applications", application.SubmitApplication)

	uploads := api.Group("/uploads")
	uploads.Get("/signature", handlers.GenerateUploadSignature)
}
