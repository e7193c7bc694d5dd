package authz

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/panotour/core/internal/middleware"
	"github.com/panotour/core/internal/pkg/jwt"
	"go.uber.org/zap"
)

func TestAllowed(t *testing.T) {
	e, err := NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}

	tests := []struct {
		role, path, method string
		want               bool
	}{
		{"admin", "/api/admin/users", http.MethodGet, true},
		{"admin", "/api/admin/users/12", http.MethodDelete, true},
		{"admin", "/api/admin/projects/3/lock", http.MethodPost, true},
		{"moderator", "/api/admin/projects", http.MethodGet, true},
		{"moderator", "/api/admin/projects/3/lock", http.MethodPost, true},
		{"moderator", "/api/admin/users", http.MethodGet, false},
		{"moderator", "/api/admin/projects/3", http.MethodDelete, false},
		{"user", "/api/admin/projects", http.MethodGet, false},
		{"", "/api/admin/projects", http.MethodGet, false},
	}
	for _, tt := range tests {
		got, err := e.Allowed(tt.role, tt.path, tt.method)
		if err != nil {
			t.Fatalf("Allowed(%q, %q, %q): %v", tt.role, tt.path, tt.method, err)
		}
		if got != tt.want {
			t.Errorf("Allowed(%q, %q, %q) = %v, want %v", tt.role, tt.path, tt.method, got, tt.want)
		}
	}
}

type roleMap map[int64]string

func (m roleMap) RoleOf(_ context.Context, id int64) (string, error) {
	role, ok := m[id]
	if !ok {
		return "", errors.New("no such user")
	}
	return role, nil
}

func TestRequire(t *testing.T) {
	gin.SetMode(gin.TestMode)
	e, err := NewEnforcer()
	if err != nil {
		t.Fatalf("NewEnforcer: %v", err)
	}
	r := gin.New()
	admin := r.Group("/api/admin", middleware.Auth(), Require(e, roleMap{1: "admin", 2: "user"}, zap.NewNop()))
	admin.GET("/users", func(c *gin.Context) { c.Status(http.StatusOK) })

	tests := []struct {
		name string
		uid  int64
		want int
	}{
		{"admin", 1, http.StatusOK},
		{"plain user", 2, http.StatusForbidden},
		{"deleted user", 3, http.StatusForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := jwt.Sign(jwt.Identity{UserID: tt.uid, Role: "admin"}, time.Hour)
			if err != nil {
				t.Fatal(err)
			}
			req := httptest.NewRequest(http.MethodGet, "/api/admin/users", nil)
			req.Header.Set("Authorization", "Bearer "+token)
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}
