package middleware

import (
	"fmt"
	"net/http"
	"time"

	"digiwave-dashboard/internal/shared/apperror"
	"digiwave-dashboard/internal/shared/contextutil"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var ErrDuplicateSubmission = apperror.New(
	apperror.CodeConflict,
	"This request was already submitted",
	http.StatusConflict,
)

// Idempotency rejects a repeated POST carrying an Idempotency-Key the same
// user already sent within ttl. The key is released when the handler fails
// with a 5xx so the page can retry. Redis errors let the request through.
func Idempotency(rdb redis.Cmdable, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		idempKey := c.GetHeader("Idempotency-Key")
		if idempKey == "" || c.Request.Method != http.MethodPost {
			c.Next()
			return
		}

		ctx := c.Request.Context()
		log := contextutil.GetLogger(ctx, logger)
		cacheKey := fmt.Sprintf("idemp:%s:%s:%s", c.FullPath(), c.GetString(KeyUserID), idempKey)

		isNew, err := rdb.SetNX(ctx, cacheKey, "1", ttl).Result()
		if err != nil {
			log.Warn("idempotency check unavailable", zap.String("key", cacheKey), zap.Error(err))
			c.Next()
			return
		}
		if !isNew {
			abort(c, ErrDuplicateSubmission)
			return
		}

		c.Next()

		if c.Writer.Status() >= http.StatusInternalServerError {
			if err := rdb.Del(ctx, cacheKey).Err(); err != nil {
				log.Warn("release idempotency key failed", zap.String("key", cacheKey), zap.Error(err))
			}
		}
	}
}
