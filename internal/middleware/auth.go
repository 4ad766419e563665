// Package middleware provides HTTP middleware for the API. It validates
// JWT bearer tokens, enforces role and permission checks, and makes the
// authenticated claims available to handlers.
package middleware

import (
	"log"
	"strings"

	"habitstake/internal/models"
	"habitstake/internal/services/auth"
	"habitstake/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// AuthMiddleware validates JWT tokens and attaches the claims to the
// request context. A token whose version no longer matches the stored
// user version is treated as expired.
type AuthMiddleware struct {
	authService auth.Service
}

func NewAuthMiddleware(authService auth.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authService: authService,
	}
}

func (m *AuthMiddleware) Handler(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return utils.Unauthorized(c, "missing authorization header")
	}

	if !strings.HasPrefix(authHeader, "Bearer ") {
		return utils.Unauthorized(c, "invalid authorization format")
	}

	tokenString := strings.TrimPrefix(authHeader, "Bearer ")

	_, claims, err := utils.ParseToken(tokenString)
	if err != nil {
		log.Printf("token validation error: %v", err)
		return utils.Unauthorized(c, "invalid token")
	}

	currentVersion, err := m.authService.GetUserTokenVersion(claims.UserID)
	if err != nil {
		log.Printf("error getting token version for user %d: %v", claims.UserID, err)
		return utils.Unauthorized(c, "invalid token")
	}

	if claims.TokenVersion != currentVersion {
		log.Printf("token version mismatch for user %d: token %d, current %d",
			claims.UserID, claims.TokenVersion, currentVersion)
		return utils.Unauthorized(c, "session expired")
	}

	c.Locals("claims", claims)
	c.Locals("userID", claims.UserID)

	return c.Next()
}

// AdminAuthMiddleware verifies that the request carries admin claims.
// Escrow resolution and config routes sit behind this check in addition
// to the service layer's admin id comparison.
func AdminAuthMiddleware(c *fiber.Ctx) error {
	claims, ok := c.Locals("claims").(*models.UserClaims)
	if !ok {
		return utils.Unauthorized(c, "invalid claims")
	}

	if claims.Role != "admin" {
		log.Printf("access denied: user %d role is %s, not admin", claims.UserID, claims.Role)
		return utils.Forbidden(c, "insufficient permissions")
	}

	return c.Next()
}

// HasPermission returns a middleware that checks for a specific permission.
func HasPermission(permission string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		claims, ok := c.Locals("claims").(*models.UserClaims)
		if !ok {
			return utils.Unauthorized(c, "unauthorized")
		}

		if claims.Role == "admin" {
			return c.Next()
		}

		if claims.HasPermission(permission) {
			return c.Next()
		}

		return utils.Forbidden(c, "insufficient permissions")
	}
}
