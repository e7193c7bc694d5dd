package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/panotour/core/internal/pkg/jwt"
	"go.uber.org/zap"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func signed(t *testing.T, id jwt.Identity) string {
	t.Helper()
	token, err := jwt.Sign(id, time.Hour)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestAuth(t *testing.T) {
	r := gin.New()
	r.GET("/me", Auth(), func(c *gin.Context) {
		id, _ := CurrentIdentity(c)
		c.JSON(http.StatusOK, gin.H{"userId": CurrentUserID(c), "userName": id.UserName})
	})

	valid := signed(t, jwt.Identity{UserID: 42, Type: 1, UserName: "linh", Role: "user"})
	tests := []struct {
		name   string
		header string
		query  string
		want   int
	}{
		{name: "missing", want: http.StatusUnauthorized},
		{name: "garbage", header: "Bearer nope", want: http.StatusForbidden},
		{name: "bearer", header: "Bearer " + valid, want: http.StatusOK},
		{name: "lowercase bearer", header: "bearer " + valid, want: http.StatusOK},
		{name: "query token", query: "?token=" + valid, want: http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me"+tt.query, nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d (%s)", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestOptionalAuth(t *testing.T) {
	r := gin.New()
	r.GET("/p", OptionalAuth(), func(c *gin.Context) {
		if IsAuthenticated(c) {
			c.String(http.StatusOK, "user")
			return
		}
		c.String(http.StatusOK, "anon")
	})

	valid := "Bearer " + signed(t, jwt.Identity{UserID: 7})
	cases := map[string]string{
		"":              "anon",
		"Bearer broken": "anon",
		valid:           "user",
	}
	for header, want := range cases {
		req := httptest.NewRequest(http.MethodGet, "/p", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		if w.Code != http.StatusOK || w.Body.String() != want {
			t.Errorf("header %q: got %d %q, want 200 %q", header, w.Code, w.Body.String(), want)
		}
	}
}

type memCounter struct {
	mu   sync.Mutex
	hits map[string]int64
}

func (m *memCounter) CountWindow(_ context.Context, key string, _ time.Duration) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hits == nil {
		m.hits = make(map[string]int64)
	}
	m.hits[key]++
	return m.hits[key], nil
}

func TestRateLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimit(&memCounter{}, 3, time.Hour, zap.NewNop()))
	r.GET("/api/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	var last *httptest.ResponseRecorder
	for i := 0; i < 4; i++ {
		last = httptest.NewRecorder()
		r.ServeHTTP(last, httptest.NewRequest(http.MethodGet, "/api/ping", nil))
		if i < 3 && last.Code != http.StatusNoContent {
			t.Fatalf("request %d: status = %d", i+1, last.Code)
		}
	}
	if last.Code != http.StatusTooManyRequests {
		t.Fatalf("4th request status = %d, want 429", last.Code)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After header")
	}
}

func TestNormalizeToken(t *testing.T) {
	cases := map[string]string{
		"":               "",
		"  abc ":         "abc",
		"Bearer abc":     "abc",
		"BEARER   abc  ": "abc",
	}
	for in, want := range cases {
		if got := NormalizeToken(in); got != want {
			t.Errorf("NormalizeToken(%q) = %q, want %q", in, got, want)
		}
	}
}
