package catalog

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
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
	f := newFixture(t)
	f.seed(t)
	r := gin.New()
	NewHandler(f.catalog).RegisterRoutes(r.Group("/api"), middleware.Auth(), middleware.OptionalAuth())
	return r
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

func TestGetListProjectModes(t *testing.T) {
	r := newRouter(t)

	w, body := doJSON(r, http.MethodPost, "/api/project/getListProject", `{"page":1,"limit":5}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("split status = %d: %s", w.Code, w.Body.String())
	}
	if _, ok := body["domesticProjects"]; !ok {
		t.Error("split response missing domesticProjects")
	}
	if _, ok := body["foreignProjects"]; !ok {
		t.Error("split response missing foreignProjects")
	}

	w, body = doJSON(r, http.MethodPost, "/api/project/getListProject", `{"type":1}`, "")
	if w.Code != http.StatusOK {
		t.Fatalf("typed status = %d", w.Code)
	}
	list, _ := body["listProject"].([]interface{})
	if len(list) != 1 {
		t.Errorf("foreign list = %v", body["listProject"])
	}
	if _, ok := body["pagination"]; !ok {
		t.Error("typed response missing pagination")
	}

	w, _ = doJSON(r, http.MethodPost, "/api/project/getListProject", "", "")
	if w.Code != http.StatusOK {
		t.Errorf("empty body status = %d", w.Code)
	}

	w, _ = doJSON(r, http.MethodPost, "/api/project/getListProject", `{"type":7}`, "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad type status = %d", w.Code)
	}
}

func TestDetailEndpoint(t *testing.T) {
	r := newRouter(t)
	token, err := jwt.Sign(jwt.Identity{UserID: 20}, time.Hour)
	if err != nil {
		t.Fatal(err)
	}

	w, body := doJSON(r, http.MethodGet, "/api/project/1", "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", w.Code, w.Body.String())
	}
	vote, _ := body["vote"].(map[string]interface{})
	if vote["totalVotes"] != float64(2) || vote["averageRating"] != 4.5 {
		t.Errorf("vote = %v", vote)
	}
	if uv, _ := vote["userVote"].(map[string]interface{}); uv == nil || uv["rating"] != float64(5) {
		t.Errorf("userVote = %v", vote["userVote"])
	}

	w, body = doJSON(r, http.MethodGet, "/api/project/404", "", "")
	if w.Code != http.StatusNotFound || body["success"] != false {
		t.Errorf("missing project: %d %v", w.Code, body)
	}

	w, _ = doJSON(r, http.MethodGet, "/api/project/abc", "", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad id status = %d", w.Code)
	}
}

func TestSearchAndMine(t *testing.T) {
	r := newRouter(t)

	w, body := doJSON(r, http.MethodGet, "/api/project/search?keyword=seoul&isForeign=true", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("search status = %d", w.Code)
	}
	if list, _ := body["listProject"].([]interface{}); len(list) != 1 {
		t.Errorf("search list = %v", body["listProject"])
	}

	w, _ = doJSON(r, http.MethodGet, "/api/project/search?price=cheap", "", "")
	if w.Code != http.StatusBadRequest {
		t.Errorf("bad price status = %d", w.Code)
	}

	w, _ = doJSON(r, http.MethodGet, "/api/project/mine", "", "")
	if w.Code != http.StatusUnauthorized {
		t.Errorf("anonymous mine status = %d", w.Code)
	}

	token, _ := jwt.Sign(jwt.Identity{UserID: 10}, time.Hour)
	w, body = doJSON(r, http.MethodGet, "/api/project/mine?limit=2", "", token)
	if w.Code != http.StatusOK {
		t.Fatalf("mine status = %d", w.Code)
	}
	pag, _ := body["pagination"].(map[string]interface{})
	if pag["total"] != float64(4) || pag["size"] != float64(2) {
		t.Errorf("mine pagination = %v", pag)
	}
}
