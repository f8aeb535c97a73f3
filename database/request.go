package database

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const localsKey = "db"

// Bind stores a request-scoped handle in the fiber context.
func Bind(c *fiber.Ctx, db *gorm.DB) {
	c.Locals(localsKey, db)
}

// FromCtx returns the *gorm.DB bound to the request by middlewares.RequestDB.
func FromCtx(c *fiber.Ctx) (*gorm.DB, error) {
	if v := c.Locals(localsKey); v != nil {
		if db, ok := v.(*gorm.DB); ok && db != nil {
			return db, nil
		}
	}
	return nil, errors.New("database not bound to request")
}
