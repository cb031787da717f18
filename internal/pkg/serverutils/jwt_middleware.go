package serverutils

import (
	"os"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func jwtSecret() []byte {
	return []byte(os.Getenv("JWT_SECRET"))
}

func parseBearer(ctx *fiber.Ctx) (jwt.MapClaims, bool) {
	authHeader := ctx.Get("Authorization")
	if len(authHeader) < 7 || authHeader[:7] != "Bearer " {
		return nil, false
	}
	tokenStr := authHeader[7:]

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return jwtSecret(), nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}
	return claims, true
}

// JwtMiddleware protects routes that require an authenticated user.
func JwtMiddleware(ctx *fiber.Ctx) error {
	claims, ok := parseBearer(ctx)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Missing or invalid token"})
	}

	userId, ok := claims["user_id"].(string)
	if !ok {
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "Invalid claims"})
	}

	ctx.Locals("user_id", userId)
	return ctx.Next()
}

// OptionalJwtMiddleware resolves identity when a valid token is present but
// lets anonymous callers through. Anonymous callers are tracked by a guest
// session id: taken from the X-Guest-Session header when supplied, minted
// otherwise and echoed back so the client can persist it.
func OptionalJwtMiddleware(ctx *fiber.Ctx) error {
	if claims, ok := parseBearer(ctx); ok {
		if userId, ok := claims["user_id"].(string); ok {
			ctx.Locals("user_id", userId)
			return ctx.Next()
		}
	}

	guestId := ctx.Get("X-Guest-Session")
	if _, err := uuid.Parse(guestId); err != nil {
		guestId = uuid.New().String()
	}
	ctx.Locals("guest_id", guestId)
	ctx.Set("X-Guest-Session", guestId)
	return ctx.Next()
}
