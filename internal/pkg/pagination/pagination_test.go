package pagination

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		in   Query
		want Query
	}{
		{Query{}, Query{Page: 1, Size: DefaultSize}},
		{Query{Page: -3, Size: 500}, Query{Page: 1, Size: MaxSize}},
		{Query{Page: 4, Size: 9}, Query{Page: 4, Size: 9}},
	}
	for _, tt := range tests {
		if got := tt.in.Normalize(); got != tt.want {
			t.Errorf("Normalize(%+v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestFromContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=3&limit=5", nil)
	if got := FromContext(c); got.Page != 3 || got.Size != 5 || got.Offset() != 10 {
		t.Errorf("FromContext() = %+v", got)
	}
	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?page=x&size=7", nil)
	if got := FromContext(c); got.Page != 1 || got.Size != 7 {
		t.Errorf("FromContext(size) = %+v", got)
	}
}

func TestMeta(t *testing.T) {
	m := Meta(Query{Page: 2, Size: 10}, 25)
	if m.TotalPage != 3 || !m.HasNextPage || m.Total != 25 {
		t.Errorf("Meta() = %+v", m)
	}
	m = Meta(Query{Page: 1, Size: 10}, 0)
	if m.TotalPage != 0 || m.HasNextPage {
		t.Errorf("Meta(empty) = %+v", m)
	}
}
