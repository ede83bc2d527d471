package memstore

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"task-manager-backend/internal/models"
)

func TestUsers_UniqueEmail(t *testing.T) {
	users := New().Users()
	ctx := context.Background()

	a, err := users.Create(ctx, "a@x.com", "A", "h")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := users.Create(ctx, "a@x.com", "B", "h"); !errors.Is(err, models.ErrEmailExists) {
		t.Fatalf("err = %v, want ErrEmailExists", err)
	}
	// Emails compare exactly as stored.
	b, err := users.Create(ctx, "A@x.com", "B", "h")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("ids collide: %d", a.ID)
	}
}

func TestTasks_OrderingTieBreak(t *testing.T) {
	s := New()
	fixed := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }
	tasks := s.Tasks()
	ctx := context.Background()

	for _, title := range []string{"a", "b", "c"} {
		if _, err := tasks.Create(ctx, 1, title, ""); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	list, _ := tasks.ListByUser(ctx, 1)
	if list[0].Title != "c" || list[1].Title != "b" || list[2].Title != "a" {
		t.Fatalf("order = %+v", list)
	}
}

func TestTasks_ConcurrentToggle(t *testing.T) {
	tasks := New().Tasks()
	ctx := context.Background()
	task, _ := tasks.Create(ctx, 1, "x", "")

	var wg sync.WaitGroup
	for i := 0; i < 101; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = tasks.Toggle(ctx, task.ID, 1)
		}()
	}
	wg.Wait()

	list, _ := tasks.ListByUser(ctx, 1)
	if !list[0].Completed {
		t.Fatal("odd number of toggles should leave completed=true")
	}
}

func TestPingContext(t *testing.T) {
	s := New()
	if err := s.PingContext(context.Background()); err != nil {
		t.Fatalf("ping: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.PingContext(ctx); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}
