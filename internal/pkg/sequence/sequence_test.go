package sequence_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/panotour/core/internal/database/dbtest"
	"github.com/panotour/core/internal/models"
	"github.com/panotour/core/internal/pkg/sequence"
)

func TestNextSeedsFromExistingRows(t *testing.T) {
	db := dbtest.Open(t)
	for _, id := range []int64{3, 17, 9} {
		if err := db.Create(&models.UserModel{UserID: id, Account: fmt.Sprintf("user%d", id), Password: "x"}).Error; err != nil {
			t.Fatalf("seed user: %v", err)
		}
	}
	alloc := sequence.New(db)
	ctx := context.Background()

	first, err := alloc.Next(ctx, sequence.Users)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if first != 18 {
		t.Errorf("Next() = %d, want 18", first)
	}
	second, _ := alloc.Next(ctx, sequence.Users)
	if second != 19 {
		t.Errorf("Next() = %d, want 19", second)
	}
}

func TestNextIsUniqueUnderConcurrency(t *testing.T) {
	db := dbtest.Open(t)
	alloc := sequence.New(db)
	ctx := context.Background()

	const n = 20
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		seen = map[int64]bool{}
	)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			id, err := alloc.Next(ctx, sequence.Projects)
			if err != nil {
				t.Errorf("Next() error = %v", err)
				return
			}
			mu.Lock()
			defer mu.Unlock()
			if seen[id] {
				t.Errorf("duplicate id %d", id)
			}
			seen[id] = true
		}()
	}
	wg.Wait()
	if len(seen) != n {
		t.Errorf("allocated %d ids, want %d", len(seen), n)
	}
}

func TestAdvance(t *testing.T) {
	db := dbtest.Open(t)
	alloc := sequence.New(db)
	ctx := context.Background()

	if err := alloc.Advance(ctx, sequence.Projects, 100); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if id, _ := alloc.Next(ctx, sequence.Projects); id != 101 {
		t.Errorf("Next() after Advance(100) = %d, want 101", id)
	}
	if err := alloc.Advance(ctx, sequence.Projects, 50); err != nil {
		t.Fatalf("Advance() error = %v", err)
	}
	if id, _ := alloc.Next(ctx, sequence.Projects); id != 102 {
		t.Errorf("Advance() moved backwards: Next() = %d, want 102", id)
	}
}
