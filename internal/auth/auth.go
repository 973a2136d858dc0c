package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	jwtware "github.com/gofiber/jwt/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Role separates the two kinds of principal. Each role signs with its own key.
type Role string

const (
	RoleCustomer Role = "customer"
	RoleAdmin    Role = "admin"
)

// ContextKey is where the verified *jwt.Token is stored in fiber locals.
const ContextKey = "user"

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrWrongRole    = errors.New("token not valid for this area")
)

// IssueToken signs an HS256 token for the given principal.
func IssueToken(secret string, role Role, id int64, email string, ttl time.Duration) (string, error) {
	claims := jwt.MapClaims{
		"uid":   id,
		"email": email,
		"role":  string(role),
		"exp":   time.Now().Add(ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Protect verifies the bearer token with secret and requires it to carry role.
func Protect(secret string, role Role) fiber.Handler {
	return jwtware.New(jwtware.Config{
		SigningKey:    []byte(secret),
		SigningMethod: "HS256",
		ContextKey:    ContextKey,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "unauthorized"})
		},
		SuccessHandler: func(c *fiber.Ctx) error {
			if _, err := principalID(c, role); err != nil {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"message": ErrWrongRole.Error()})
			}
			return c.Next()
		},
	})
}

// Throttle limits sign-in attempts per client IP.
func Throttle(max int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: window,
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"message": "too many attempts, try again later"})
		},
	})
}

// CustomerID returns the authenticated customer's id.
func CustomerID(c *fiber.Ctx) (int64, error) {
	return principalID(c, RoleCustomer)
}

// AdminID returns the authenticated admin's id.
func AdminID(c *fiber.Ctx) (int64, error) {
	return principalID(c, RoleAdmin)
}

// SetPrincipal stores an already-trusted principal in locals. Used by tests and
// by any middleware that authenticates by other means.
func SetPrincipal(c *fiber.Ctx, role Role, id int64) {
	c.Locals(ContextKey, &jwt.Token{Claims: jwt.MapClaims{"uid": id, "role": string(role)}, Valid: true})
}

func principalID(c *fiber.Ctx, role Role) (int64, error) {
	tok, ok := c.Locals(ContextKey).(*jwt.Token)
	if !ok || tok == nil {
		return 0, ErrUnauthorized
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return 0, ErrUnauthorized
	}
	if r, _ := claims["role"].(string); Role(r) != role {
		return 0, ErrWrongRole
	}

	var id int64
	switch v := claims["uid"].(type) {
	case float64:
		id = int64(v)
	case int64:
		id = v
	case int:
		id = int64(v)
	case string:
		parsed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return 0, ErrUnauthorized
		}
		id = parsed
	default:
		return 0, ErrUnauthorized
	}
	if id <= 0 {
		return 0, ErrUnauthorized
	}
	return id, nil
}
