package save

import (
	"context"
	"testing"
	"time"

	"github.com/panotour/core/internal/database/dbtest"
	"github.com/panotour/core/internal/models"
	"github.com/panotour/core/internal/modules/tour/catalog"
	"github.com/panotour/core/internal/modules/tour/project"
	"github.com/panotour/core/internal/modules/tour/vote"
	"github.com/panotour/core/internal/pkg/apperr"
	"github.com/panotour/core/internal/pkg/events"
	"github.com/panotour/core/internal/pkg/pagination"
	"github.com/panotour/core/internal/pkg/sequence"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *project.Service, *gorm.DB) {
	t.Helper()
	db := dbtest.Open(t)
	projects := project.NewService(db, sequence.New(db), events.Nop{}, zap.NewNop())
	ledger := vote.NewLedger(db, projects, events.Nop{}, zap.NewNop())
	for _, id := range []int64{1, 2, 3} {
		if _, err := projects.Create(context.Background(), 9, &project.CreateProjectDTO{ProjectID: id, Title: "tour"}); err != nil {
			t.Fatal(err)
		}
	}
	return NewService(db, projects, catalog.NewService(projects, ledger)), projects, db
}

func TestToggleIsAnInvolution(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	want := []bool{true, false, true, false}
	for i, w := range want {
		saved, err := svc.Toggle(ctx, 4, 1)
		if err != nil {
			t.Fatalf("toggle %d: %v", i, err)
		}
		if saved != w {
			t.Errorf("toggle %d = %v, want %v", i, saved, w)
		}
		status, err := svc.Status(ctx, 4, 1)
		if err != nil || status != w {
			t.Errorf("status after toggle %d = %v, %v", i, status, err)
		}
	}
}

func TestToggleMissingProject(t *testing.T) {
	svc, _, _ := newTestService(t)
	if _, err := svc.Toggle(context.Background(), 4, 42); !apperr.IsNotFound(err) {
		t.Fatalf("err = %v, want NotFound", err)
	}
}

func TestUnsaveAfterProjectDeleted(t *testing.T) {
	svc, projects, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.Toggle(ctx, 4, 2); err != nil {
		t.Fatal(err)
	}
	if err := projects.Delete(ctx, 2); err != nil {
		t.Fatal(err)
	}
	saved, err := svc.Toggle(ctx, 4, 2)
	if err != nil || saved {
		t.Fatalf("unsave orphan = %v, %v", saved, err)
	}
}

func TestListNewestFirst(t *testing.T) {
	svc, projects, db := newTestService(t)
	ctx := context.Background()
	for i, id := range []int64{1, 2, 3} {
		if _, err := svc.Toggle(ctx, 4, id); err != nil {
			t.Fatal(err)
		}
		stamp := time.Now().Add(time.Duration(i) * time.Minute)
		if err := db.Model(&models.SavedTourModel{}).Where("user_id = ? AND project_id = ?", 4, id).
			Update("created_at", stamp).Error; err != nil {
			t.Fatal(err)
		}
	}
	if err := projects.Delete(ctx, 2); err != nil {
		t.Fatal(err)
	}

	items, pag, err := svc.List(ctx, 4, pagination.Query{Page: 1, Size: 10})
	if err != nil {
		t.Fatal(err)
	}
	if pag.Total != 3 {
		t.Errorf("total = %d, want 3 saved rows", pag.Total)
	}
	if len(items) != 2 || items[0].ProjectID != 3 || items[1].ProjectID != 1 {
		t.Errorf("items = %+v", items)
	}
	if items[0].Vote.Total != 0 || len(items[0].Vote.Distribution) != 5 {
		t.Errorf("vote stats = %+v", items[0].Vote)
	}
}
