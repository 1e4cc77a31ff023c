// Package middleware provides authentication and authorization middleware for the application.
package middleware

import (
	"context"
	"strconv"
	"strings"

	"stackit/internal/config"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// TokenCookieName is the HTTP-only cookie carrying the session JWT.
const TokenCookieName = "token"

// extractToken pulls the JWT from the session cookie, falling back to the
// Authorization header for API clients that prefer bearer tokens.
func extractToken(c *fiber.Ctx) string {
	if tok := c.Cookies(TokenCookieName); tok != "" {
		return tok
	}

	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}

// parseUserID validates the token signature and returns the user ID from the
// "sub" claim (subject claim per RFC 7519).
func parseUserID(tokenString string) (uint, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	subStr, ok := claims["sub"].(string)
	if !ok {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid token subject")
	}

	userIDVal, err := strconv.ParseUint(subStr, 10, 32)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
	}
	return uint(userIDVal), nil
}

// AuthRequired is a middleware that enforces authentication for protected routes.
func AuthRequired(c *fiber.Ctx) error {
	tokenString := extractToken(c)
	if tokenString == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication required",
		})
	}

	userID, err := parseUserID(tokenString)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired token",
		})
	}

	setUserID(c, userID)
	return c.Next()
}

// setUserID records the authenticated user in Fiber locals and syncs it into
// the request context so the structured logger picks it up downstream.
func setUserID(c *fiber.Ctx, userID uint) {
	c.Locals("userID", userID)
	c.SetUserContext(context.WithValue(c.UserContext(), UserIDKey, userID))
}

// OptionalAuth resolves the viewer's user ID when a valid token is present but
// never rejects the request. Public read endpoints use it to personalize
// responses (e.g. the viewer's own vote on a question).
func OptionalAuth(c *fiber.Ctx) error {
	if tokenString := extractToken(c); tokenString != "" {
		if userID, err := parseUserID(tokenString); err == nil {
			setUserID(c, userID)
		}
	}
	return c.Next()
}

// WebSocketAuthRequired validates JWT tokens for WebSocket upgrade requests.
// Browsers cannot set headers on WebSocket handshakes, so the token may arrive
// as a query parameter in addition to the usual cookie or header.
func WebSocketAuthRequired(c *fiber.Ctx) error {
	tokenString := c.Query("token")
	if tokenString == "" {
		tokenString = extractToken(c)
	}
	if tokenString == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Token required",
		})
	}

	userID, err := parseUserID(tokenString)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Invalid or expired token",
		})
	}

	setUserID(c, userID)
	return c.Next()
}
