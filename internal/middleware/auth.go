package middleware

import (
	"strings"

	"github.com/cinetalkapp/cinetalk-backend/internal/apperr"
	"github.com/cinetalkapp/cinetalk-backend/internal/authz"
	"github.com/cinetalkapp/cinetalk-backend/internal/config"
	"github.com/cinetalkapp/cinetalk-backend/internal/dto"
	jwtware "github.com/gofiber/contrib/jwt"
	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// JWTProtected rejects requests without a valid access token.
func JWTProtected(cfg *config.Config) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey: jwtware.SigningKey{Key: []byte(cfg.JWTSecret)},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(
				dto.Err("invalid or expired token"))
		},
	})
}

// OptionalAuth parses a bearer token when one is supplied and otherwise lets
// the request through anonymously. A token that is present but invalid is
// still a 401, never downgraded to anonymous.
func OptionalAuth(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		if header == "" {
			return c.Next()
		}

		raw, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(
				dto.Err("malformed authorization header"))
		}

		token, err := jwt.Parse(raw, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(cfg.JWTSecret), nil
		})
		if err != nil || !token.Valid {
			return c.Status(fiber.StatusUnauthorized).JSON(
				dto.Err("invalid or expired token"))
		}

		c.Locals("user", token)
		return c.Next()
	}
}

// Identity resolves the acting user from JWT claims in context. Returns a
// zero Actor for anonymous requests.
func Identity(c *fiber.Ctx) authz.Actor {
	token, ok := c.Locals("user").(*jwt.Token)
	if !ok || token == nil {
		return authz.Actor{}
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return authz.Actor{}
	}

	actor := authz.Actor{}
	if sub, ok := claims["sub"].(string); ok {
		actor.ID, _ = uuid.Parse(sub)
	}
	if role, ok := claims["role"].(string); ok {
		actor.Admin = role == "admin"
	}
	return actor
}

// UserID returns the authenticated user's id, or an error for anonymous
// requests. Use on routes behind JWTProtected.
func UserID(c *fiber.Ctx) (uuid.UUID, error) {
	actor := Identity(c)
	if actor.Anonymous() {
		return uuid.Nil, apperr.Unauthenticated("authentication required")
	}
	return actor.ID, nil
}
