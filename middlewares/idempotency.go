package middlewares

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"vetclinic-backend/models"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Idempotency processes Idempotency-Key for mutating HTTP methods. The first
// completed response is stored and replayed for retries with the same request,
// so a retried invoice creation does not consume a second invoice number.
func Idempotency(db *gorm.DB, log *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		method := strings.ToUpper(c.Method())
		if method != fiber.MethodPost && method != fiber.MethodPut && method != fiber.MethodPatch && method != fiber.MethodDelete {
			return c.Next()
		}

		key := strings.TrimSpace(c.Get("Idempotency-Key"))
		if key == "" {
			return c.Next()
		}
		if len(key) > 128 {
			return fiber.NewError(fiber.StatusBadRequest, "Idempotency-Key too long")
		}

		actor, ok := ActorFrom(c)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "auth context missing")
		}

		path := c.OriginalURL() // includes query string

		// Build deterministic request hash: method|path|body|user
		h := sha256.New()
		h.Write([]byte(method))
		h.Write([]byte{'\n'})
		h.Write([]byte(path))
		h.Write([]byte{'\n'})
		h.Write(c.Body())
		h.Write([]byte{'\n'})
		h.Write([]byte(actor.ID))
		reqHash := hex.EncodeToString(h.Sum(nil))

		// ---- Phase 1: read or create the pending record
		conn := db.WithContext(c.UserContext())
		var existing models.IdempotencyKey
		err := conn.Where("key = ?", key).Take(&existing).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rec := models.IdempotencyKey{
				Key:         key,
				RequestHash: reqHash,
				Method:      method,
				Path:        path,
				UserID:      actor.ID,
			}
			if cerr := conn.Create(&rec).Error; cerr != nil {
				// Could be unique race: read again
				if rerr := conn.Where("key = ?", key).Take(&existing).Error; rerr != nil {
					return fiber.NewError(fiber.StatusInternalServerError, "idempotency create failed")
				}
			} else {
				existing = rec
			}
		} else if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "idempotency lookup failed")
		}

		if existing.RequestHash != reqHash {
			return fiber.NewError(fiber.StatusConflict, "Idempotency-Key reuse with different request")
		}
		if existing.ResponseStatus != 0 && existing.ResponseBody != nil {
			c.Status(existing.ResponseStatus)
			c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
			c.Set("Idempotent-Replayed", "true")
			return c.Send(existing.ResponseBody)
		}

		// Run the handler once.
		if err := c.Next(); err != nil {
			// Failed requests may be retried with the same key.
			_ = conn.Where("key = ? AND response_status = 0", key).Delete(&models.IdempotencyKey{}).Error
			return err
		}

		// ---- Phase 2: store the response (best-effort)
		status := c.Response().StatusCode()
		if status >= fiber.StatusBadRequest {
			_ = conn.Where("key = ? AND response_status = 0", key).Delete(&models.IdempotencyKey{}).Error
			return nil
		}
		now := time.Now().UTC()
		resp := c.Response().Body()
		blob := make([]byte, len(resp))
		copy(blob, resp)

		if err := conn.Model(&models.IdempotencyKey{}).
			Where("key = ?", key).
			Updates(map[string]any{
				"response_status": status,
				"response_body":   blob,
				"completed_at":    &now,
			}).Error; err != nil {
			log.Warn("idempotency response not stored", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
}
