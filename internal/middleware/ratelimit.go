package middleware

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/panotour/core/internal/pkg/response"
	"go.uber.org/zap"
)

// WindowCounter counts hits on a key within a fixed window.
type WindowCounter interface {
	CountWindow(ctx context.Context, key string, window time.Duration) (int64, error)
}

// RateLimit allows max requests per client IP in each fixed window. Counter
// failures let the request through.
func RateLimit(counter WindowCounter, max int, window time.Duration, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if counter == nil || ip == "" {
			c.Next()
			return
		}

		bucket := time.Now().UnixNano() / int64(window)
		key := fmt.Sprintf("panotour:rate_limit:%s:%d", ip, bucket)
		count, err := counter.CountWindow(c.Request.Context(), key, window)
		if err != nil {
			log.Warn("rate limit counter unavailable", zap.Error(err))
			c.Next()
			return
		}

		if count > int64(max) {
			retry := time.Duration(bucket+1)*window - time.Duration(time.Now().UnixNano())
			c.Header("Retry-After", strconv.Itoa(int(retry.Seconds())+1))
			response.TooManyRequests(c)
			return
		}
		c.Next()
	}
}
