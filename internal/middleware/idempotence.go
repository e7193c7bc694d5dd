package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/panotour/core/internal/pkg/response"
	"go.uber.org/zap"
)

const (
	idempotenceHeader = "X-Idempotence"
	idempotenceTTL    = 60 * time.Second
)

// RequestLedger remembers recently seen request fingerprints.
type RequestLedger interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (claimed, done bool, err error)
	Settle(ctx context.Context, key string, ok bool) error
}

// Idempotence rejects a repeat of the same write on one of routes while the
// first is in flight, and for a minute after it succeeded. Routes are gin
// route patterns such as "/api/notification/bookTour".
func Idempotence(ledger RequestLedger, log *zap.Logger, routes ...string) gin.HandlerFunc {
	guarded := make(map[string]struct{}, len(routes))
	for _, r := range routes {
		guarded[r] = struct{}{}
	}
	return func(c *gin.Context) {
		if ledger == nil || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}
		if _, ok := guarded[c.FullPath()]; !ok {
			c.Next()
			return
		}

		key, err := idempotenceKey(c)
		if err != nil || key == "" {
			c.Next()
			return
		}
		key = "panotour:idempotence:" + key

		ctx := c.Request.Context()
		claimed, done, err := ledger.Claim(ctx, key, idempotenceTTL)
		if err != nil {
			log.Warn("idempotence ledger unavailable", zap.Error(err))
			c.Next()
			return
		}
		if !claimed {
			if done {
				response.Conflict(c, "The same request was already accepted, try again in a minute")
			} else {
				response.Conflict(c, "The same request is still being processed")
			}
			return
		}

		c.Next()

		status := c.Writer.Status()
		if err := ledger.Settle(context.WithoutCancel(ctx), key, status >= 200 && status < 300); err != nil {
			log.Warn("settle idempotence key failed", zap.Error(err))
		}
	}
}

// idempotenceKey prefers the client supplied header, otherwise it hashes the
// request line, body and caller.
func idempotenceKey(c *gin.Context) (string, error) {
	if hdr := c.GetHeader(idempotenceHeader); hdr != "" {
		h := sha256.Sum256([]byte(c.FullPath() + "|" + hdr))
		return hex.EncodeToString(h[:]), nil
	}

	// multipart uploads are keyed by the header only
	if c.ContentType() == "multipart/form-data" {
		return "", nil
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return "", err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	raw := c.Request.Method + "|" + c.Request.URL.String() + "|" + string(body) + "|" +
		c.Request.UserAgent() + "|" + c.ClientIP() + "|" + extractToken(c)
	h := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(h[:]), nil
}
