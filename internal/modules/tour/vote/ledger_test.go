package vote

import (
	"context"
	"sync"
	"testing"

	"github.com/panotour/core/internal/database/dbtest"
	"github.com/panotour/core/internal/models"
	"github.com/panotour/core/internal/pkg/apperr"
	"github.com/panotour/core/internal/pkg/events"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type projectTable map[int64]*models.ProjectModel

func (p projectTable) Get(_ context.Context, id int64) (*models.ProjectModel, error) {
	if proj, ok := p[id]; ok {
		return proj, nil
	}
	return nil, apperr.New(apperr.NotFound, "Project not found")
}

const (
	owner  = int64(1)
	p1     = int64(100)
	userU2 = int64(2)
	userU3 = int64(3)
)

func newTestLedger(t *testing.T) (*Ledger, *gorm.DB, *events.Recorder) {
	t.Helper()
	db := dbtest.Open(t)
	rec := &events.Recorder{}
	projects := projectTable{p1: {ProjectID: p1, OwnerUserID: owner}, 200: {ProjectID: 200, OwnerUserID: owner}}
	return NewLedger(db, projects, rec, zap.NewNop()), db, rec
}

func countVotes(t *testing.T, db *gorm.DB, projectID, userID int64) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&models.VoteModel{}).Where("project_id = ? AND user_id = ?", projectID, userID).Count(&n).Error; err != nil {
		t.Fatal(err)
	}
	return n
}

func TestCastWorkedExample(t *testing.T) {
	l, db, rec := newTestLedger(t)
	ctx := context.Background()

	steps := []struct {
		voter     int64
		rating    int
		wantTotal int64
		wantAvg   float64
	}{
		{userU2, 4, 1, 4.0},
		{userU3, 2, 2, 3.0},
		{userU2, 5, 2, 3.5},
	}
	for i, st := range steps {
		if _, err := l.Cast(ctx, p1, st.voter, st.rating); err != nil {
			t.Fatalf("step %d: %v", i, err)
		}
		stats, err := l.StatsFor(ctx, p1)
		if err != nil {
			t.Fatal(err)
		}
		if stats.Total != st.wantTotal || stats.Average() != st.wantAvg {
			t.Errorf("step %d: total=%d avg=%v, want %d %v", i, stats.Total, stats.Average(), st.wantTotal, st.wantAvg)
		}
	}

	if _, err := l.Cast(ctx, p1, owner, 5); err != ErrSelfVote {
		t.Fatalf("self vote err = %v, want ErrSelfVote", err)
	}
	stats, _ := l.StatsFor(ctx, p1)
	if stats.Total != 2 || stats.Average() != 3.5 {
		t.Errorf("stats changed after rejected self vote: %+v", stats)
	}
	if n := countVotes(t, db, p1, userU2); n != 1 {
		t.Errorf("U2 holds %d vote rows, want 1", n)
	}
	if got := len(rec.Types()); got != 3 {
		t.Errorf("published %d events, want 3", got)
	}
}

func TestCastValidation(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		project int64
		rating  int
		kind    apperr.Kind
	}{
		{"zero rating", p1, 0, apperr.InvalidArgument},
		{"six stars", p1, 6, apperr.InvalidArgument},
		{"missing project", 999, 3, apperr.NotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := l.Cast(ctx, tt.project, userU2, tt.rating)
			if apperr.KindOf(err) != tt.kind {
				t.Errorf("err = %v, want kind %v", err, tt.kind)
			}
		})
	}
}

func TestSelfVoteRejectedRegardlessOfPriorState(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := l.Cast(ctx, p1, owner, 3); apperr.KindOf(err) != apperr.Forbidden {
			t.Fatalf("attempt %d: err = %v, want Forbidden", i, err)
		}
	}
}

func TestConcurrentCastsKeepOneRow(t *testing.T) {
	l, db, _ := newTestLedger(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(rating int) {
			defer wg.Done()
			if _, err := l.Cast(ctx, p1, userU2, rating); err != nil {
				t.Errorf("cast %d: %v", rating, err)
			}
		}(i%5 + 1)
	}
	wg.Wait()

	if n := countVotes(t, db, p1, userU2); n != 1 {
		t.Fatalf("vote rows = %d, want 1", n)
	}
	if _, err := l.Cast(ctx, p1, userU2, 2); err != nil {
		t.Fatal(err)
	}
	v, err := l.UserVote(ctx, p1, userU2)
	if err != nil || v == nil || v.Rating != 2 {
		t.Fatalf("UserVote = %+v, %v; want rating 2", v, err)
	}
}

func TestStatsForMany(t *testing.T) {
	l, _, _ := newTestLedger(t)
	ctx := context.Background()
	for voter, rating := range map[int64]int{2: 5, 3: 4, 4: 4} {
		if _, err := l.Cast(ctx, p1, voter, rating); err != nil {
			t.Fatal(err)
		}
	}

	got, err := l.StatsForMany(ctx, []int64{p1, 200})
	if err != nil {
		t.Fatal(err)
	}
	single, _ := l.StatsFor(ctx, p1)
	if got[p1] != single {
		t.Errorf("batched %+v != single %+v", got[p1], single)
	}
	if empty, ok := got[200]; !ok || empty.Total != 0 || empty.Average() != 0 {
		t.Errorf("unvoted project stats = %+v, present=%v", empty, ok)
	}
}

func TestUserVoteAnonymous(t *testing.T) {
	l, _, _ := newTestLedger(t)
	v, err := l.UserVote(context.Background(), p1, 0)
	if err != nil || v != nil {
		t.Fatalf("UserVote(anonymous) = %+v, %v", v, err)
	}
}
