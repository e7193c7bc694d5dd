package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type memLedger struct {
	mu   sync.Mutex
	keys map[string]bool
}

func (m *memLedger) Claim(_ context.Context, key string, _ time.Duration) (bool, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.keys == nil {
		m.keys = map[string]bool{}
	}
	if done, ok := m.keys[key]; ok {
		return false, done, nil
	}
	m.keys[key] = false
	return true, false, nil
}

func (m *memLedger) Settle(_ context.Context, key string, ok bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if ok {
		m.keys[key] = true
	} else {
		delete(m.keys, key)
	}
	return nil
}

func TestIdempotence(t *testing.T) {
	ledger := &memLedger{}
	status := http.StatusCreated
	r := gin.New()
	r.Use(Idempotence(ledger, zap.NewNop(), "/book", "/fail"))
	r.POST("/book", func(c *gin.Context) { c.Status(status) })
	r.POST("/fail", func(c *gin.Context) { c.Status(http.StatusBadRequest) })
	r.POST("/toggle", func(c *gin.Context) { c.Status(http.StatusOK) })

	send := func(path, body, key string) int {
		req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
		if key != "" {
			req.Header.Set(idempotenceHeader, key)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}

	if got := send("/book", `{"projectId":1}`, ""); got != http.StatusCreated {
		t.Fatalf("first = %d", got)
	}
	if got := send("/book", `{"projectId":1}`, ""); got != http.StatusConflict {
		t.Errorf("repeat = %d, want 409", got)
	}
	if got := send("/book", `{"projectId":2}`, ""); got != http.StatusCreated {
		t.Errorf("different body = %d", got)
	}
	if got := send("/book", `{"projectId":1}`, "abc"); got != http.StatusCreated {
		t.Errorf("explicit key = %d", got)
	}
	if got := send("/book", `{"projectId":9}`, "abc"); got != http.StatusConflict {
		t.Errorf("reused explicit key = %d, want 409", got)
	}

	for i := 0; i < 2; i++ {
		if got := send("/fail", `{}`, ""); got != http.StatusBadRequest {
			t.Errorf("failed request %d = %d, want it retried", i, got)
		}
	}
	for i := 0; i < 2; i++ {
		if got := send("/toggle", `{}`, ""); got != http.StatusOK {
			t.Errorf("unguarded route %d = %d", i, got)
		}
	}
}

func TestIdempotenceWithoutLedger(t *testing.T) {
	r := gin.New()
	r.Use(Idempotence(nil, zap.NewNop(), "/book"))
	r.POST("/book", func(c *gin.Context) { c.Status(http.StatusCreated) })
	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/book", strings.NewReader(`{}`)))
		if w.Code != http.StatusCreated {
			t.Errorf("request %d = %d", i, w.Code)
		}
	}
}
