package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-router"
)

// NewFiberServer builds a fiber-backed server with the module defaults.
// Callers mount the auth endpoints on srv.Router() through
// RegisterAuthRoutes.
func NewFiberServer() router.Server[*fiber.App] {
	return router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			UnescapePath:  true,
			StrictRouting: false,
		}))
	})
}
