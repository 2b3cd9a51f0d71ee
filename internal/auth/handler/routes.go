package handler

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

func RegisterRoutes(app *fiber.App, h *AuthHandler, allowedOrigin string) {
	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     allowedOrigin,
		AllowCredentials: true,
		AllowHeaders:     "Content-Type, Authorization",
		AllowMethods:     "GET,POST,OPTIONS",
	}))
	app.Use(NoStore())

	app.Get("/healthz", h.Health)

	api := app.Group("/api")
	api.Post("/signup", h.Signup)
	api.Post("/login", h.Login)
	api.Post("/federated-login", h.FederatedLogin)
	api.Post("/forgot-password", h.ForgotPassword)
	api.Post("/reset-password", h.ResetPassword)
	api.Get("/identity-provider-client-id", h.IdentityProviderClientID)

	api.Get("/verify-token", h.RequireBearer(), h.VerifyToken)
	api.Post("/logout", h.RequireBearer(), h.Logout)
}
