package middlewares

import (
	"vetclinic-backend/database"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// RequestDB binds a session carrying the request context to c.Locals, so
// handlers reach it via database.FromCtx(c). Services own their multi-step
// sequencing and do not share a request transaction.
func RequestDB(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		database.Bind(c, db.WithContext(c.UserContext()))
		return c.Next()
	}
}
