package routes

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/marcelmiro/starkeys/handlers"
	"github.com/marcelmiro/starkeys/middleware"
	ws "github.com/marcelmiro/starkeys/websocket"
)

func AdminRoutes(app *fiber.App) {
	admin := app.Group("/api/v1/admin", middleware.Protected(), middleware.AdminRequired())

	admin.Get("/applicants", handlers.ListApplicants)
	admin.Patch("/applicants/:id/unlimited", handlers.SetUnlimitedReferrals)

	admin.Get("/feed", websocket.New(ws.ServeFeed))
}
