// Package authz gates privileged routes with a Casbin RBAC policy keyed by
// the caller's role.
package authz

import (
	"context"
	_ "embed"
	"fmt"
	"strings"

	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	"github.com/gin-gonic/gin"
	"github.com/panotour/core/internal/middleware"
	"github.com/panotour/core/internal/pkg/response"
	"go.uber.org/zap"
)

//go:embed model.conf
var embeddedModel string

//go:embed policy.csv
var embeddedPolicy string

// Enforcer wraps a synced Casbin enforcer loaded from the embedded policy.
type Enforcer struct {
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer() (*Enforcer, error) {
	m, err := model.NewModelFromString(embeddedModel)
	if err != nil {
		return nil, fmt.Errorf("load casbin model: %w", err)
	}
	e, err := casbin.NewSyncedEnforcer(m)
	if err != nil {
		return nil, fmt.Errorf("create casbin enforcer: %w", err)
	}
	if err := loadPolicy(e, embeddedPolicy); err != nil {
		return nil, err
	}
	return &Enforcer{enforcer: e}, nil
}

func loadPolicy(e *casbin.SyncedEnforcer, policy string) error {
	for _, line := range strings.Split(policy, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		parts := strings.Split(line, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		switch {
		case parts[0] == "p" && len(parts) == 4:
			if _, err := e.AddPolicy(parts[1], parts[2], parts[3]); err != nil {
				return fmt.Errorf("add policy %v: %w", parts[1:], err)
			}
		case parts[0] == "g" && len(parts) == 3:
			if _, err := e.AddGroupingPolicy(parts[1], parts[2]); err != nil {
				return fmt.Errorf("add grouping policy %v: %w", parts[1:], err)
			}
		default:
			return fmt.Errorf("malformed policy line %q", line)
		}
	}
	return nil
}

// Allowed reports whether role may perform method on path.
func (e *Enforcer) Allowed(role, path, method string) (bool, error) {
	if role == "" {
		return false, nil
	}
	ok, err := e.enforcer.Enforce(role, path, method)
	if err != nil {
		return false, fmt.Errorf("enforce: %w", err)
	}
	return ok, nil
}

// RoleSource resolves the current role of a user. The role is looked up on
// each request so demotions apply to tokens already issued.
type RoleSource interface {
	RoleOf(ctx context.Context, userID int64) (string, error)
}

// Require must run after middleware.Auth.
func Require(e *Enforcer, roles RoleSource, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := middleware.CurrentUserID(c)
		if uid <= 0 {
			response.Unauthorized(c, "Missing access token")
			return
		}
		role, err := roles.RoleOf(c.Request.Context(), uid)
		if err != nil {
			log.Warn("role lookup failed", zap.Int64("user_id", uid), zap.Error(err))
			response.Forbidden(c, "Insufficient permissions")
			return
		}
		allowed, err := e.Allowed(role, c.Request.URL.Path, c.Request.Method)
		if err != nil {
			response.InternalError(c, err)
			return
		}
		if !allowed {
			response.Forbidden(c, "Insufficient permissions")
			return
		}
		c.Next()
	}
}
