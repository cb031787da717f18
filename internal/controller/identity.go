package controller

import (
	"lexai-be/internal/entity"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// identityFromCtx reads the identity set by the JWT middlewares. Routes
// behind OptionalJwtMiddleware always get either a user id or a guest id.
func identityFromCtx(ctx *fiber.Ctx) entity.Identity {
	if userIdStr, ok := ctx.Locals("user_id").(string); ok {
		if userId, err := uuid.Parse(userIdStr); err == nil {
			return entity.Identity{UserId: &userId}
		}
	}
	guestId, _ := ctx.Locals("guest_id").(string)
	return entity.Identity{GuestId: guestId}
}

func mustUserId(ctx *fiber.Ctx) uuid.UUID {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)
	return userId
}
