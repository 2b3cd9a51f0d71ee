package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const (
	localClaims = "claims"
	localToken  = "token"

	cacheControlNoStore = "no-store, no-cache, must-revalidate, private"
)

// RequireBearer rejects requests without a valid bearer token and stores the
// raw token and its claims in c.Locals for the next handler.
func (h *AuthHandler) RequireBearer() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		token, found := strings.CutPrefix(authHeader, "Bearer ")
		if !found || strings.TrimSpace(token) == "" {
			return message(c, fiber.StatusUnauthorized, msgNoToken)
		}

		claims, err := h.authService.VerifyToken(token)
		if err != nil {
			return message(c, fiber.StatusUnauthorized, msgInvalidToken)
		}

		c.Locals(localToken, token)
		c.Locals(localClaims, claims)
		return c.Next()
	}
}

// NoStore keeps auth responses out of browser and proxy caches.
func NoStore() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set(fiber.HeaderCacheControl, cacheControlNoStore)
		c.Set(fiber.HeaderPragma, "no-cache")
		c.Set(fiber.HeaderExpires, "0")
		return c.Next()
	}
}
