package vote

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/panotour/core/internal/middleware"
	"github.com/panotour/core/internal/pkg/jwt"
)

func newRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	l, _, _ := newTestLedger(t)
	r := gin.New()
	NewHandler(l).RegisterRoutes(r.Group("/api"), middleware.Auth(), middleware.OptionalAuth())
	return r
}

func tokenFor(t *testing.T, uid int64) string {
	t.Helper()
	tok, err := jwt.Sign(jwt.Identity{UserID: uid, Role: "user"}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}
	return tok
}

func doJSON(r http.Handler, method, path, body, token string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	var out map[string]interface{}
	_ = json.Unmarshal(w.Body.Bytes(), &out)
	return w, out
}

func TestSubmitStatuses(t *testing.T) {
	r := newRouter(t)
	voter := tokenFor(t, userU2)

	tests := []struct {
		name  string
		body  string
		token string
		want  int
	}{
		{"anonymous", `{"projectId":100,"rating":4}`, "", http.StatusUnauthorized},
		{"missing rating", `{"projectId":100}`, voter, http.StatusBadRequest},
		{"rating too high", `{"projectId":100,"rating":6}`, voter, http.StatusBadRequest},
		{"rating zero", `{"projectId":100,"rating":0}`, voter, http.StatusBadRequest},
		{"self vote", `{"projectId":100,"rating":5}`, tokenFor(t, owner), http.StatusForbidden},
		{"unknown project", `{"projectId":999,"rating":3}`, voter, http.StatusNotFound},
		{"accepted", `{"projectId":100,"rating":4}`, voter, http.StatusOK},
		{"revote", `{"projectId":100,"rating":5}`, voter, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, _ := doJSON(r, http.MethodPost, "/api/vote/submit", tt.body, tt.token)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d: %s", w.Code, tt.want, w.Body.String())
			}
		})
	}
}

func TestStatsEndpoint(t *testing.T) {
	r := newRouter(t)
	for _, v := range []struct {
		uid    int64
		rating int
	}{{userU2, 5}, {userU3, 4}, {4, 4}} {
		body := `{"projectId":100,"rating":` + strconv.Itoa(v.rating) + `}`
		if w, _ := doJSON(r, http.MethodPost, "/api/vote/submit", body, tokenFor(t, v.uid)); w.Code != http.StatusOK {
			t.Fatalf("submit: %d %s", w.Code, w.Body.String())
		}
	}

	w, body := doJSON(r, http.MethodGet, "/api/vote/100", "", tokenFor(t, userU3))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	if body["totalVotes"] != float64(3) || body["averageRating"] != 4.33 {
		t.Errorf("stats = %v / %v", body["totalVotes"], body["averageRating"])
	}
	dist, _ := body["distribution"].([]interface{})
	if len(dist) != 5 || dist[0].(map[string]interface{})["star"] != float64(1) {
		t.Errorf("distribution not ascending: %v", dist)
	}
	if uv, _ := body["userVote"].(map[string]interface{}); uv == nil || uv["rating"] != float64(4) {
		t.Errorf("userVote = %v", body["userVote"])
	}

	_, anon := doJSON(r, http.MethodGet, "/api/vote/100", "", "")
	if anon["userVote"] != nil {
		t.Errorf("anonymous userVote = %v", anon["userVote"])
	}
	if w, _ := doJSON(r, http.MethodGet, "/api/vote/abc", "", ""); w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d", w.Code)
	}
}
