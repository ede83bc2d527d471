package services

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"task-manager-backend/internal/models"
	"task-manager-backend/internal/store/memstore"
)

type recordedEvent struct {
	userID int
	event  models.TaskEvent
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(userID int, event models.TaskEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{userID: userID, event: event})
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.event.Type)
	}
	return out
}

func newTaskService() (*TaskService, *recordingPublisher) {
	pub := &recordingPublisher{}
	return NewTaskService(memstore.New().Tasks(), pub), pub
}

func TestCreateTask(t *testing.T) {
	svc, pub := newTaskService()
	ctx := context.Background()

	task, err := svc.Create(ctx, 1, "Buy milk", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.ID == 0 || task.UserID != 1 || task.Title != "Buy milk" || task.Completed {
		t.Fatalf("task = %+v", task)
	}
	if got := pub.types(); !reflect.DeepEqual(got, []string{models.EventTaskCreated}) {
		t.Fatalf("events = %v", got)
	}
}

func TestListTasks_ScopedToOwner(t *testing.T) {
	svc, _ := newTaskService()
	ctx := context.Background()

	task, err := svc.Create(ctx, 1, "Mine", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := svc.Create(ctx, 2, "Theirs", ""); err != nil {
		t.Fatalf("create: %v", err)
	}

	own, err := svc.List(ctx, 1)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(own) != 1 || own[0].ID != task.ID {
		t.Fatalf("owner tasks = %+v", own)
	}

	other, _ := svc.List(ctx, 2)
	for _, tk := range other {
		if tk.ID == task.ID {
			t.Fatalf("user 2 sees task %d of user 1", task.ID)
		}
	}

	empty, err := svc.List(ctx, 3)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty non-nil list, got %#v", empty)
	}
}

func TestListTasks_NewestFirstAndStable(t *testing.T) {
	svc, _ := newTaskService()
	ctx := context.Background()

	for _, title := range []string{"first", "second", "third"} {
		if _, err := svc.Create(ctx, 1, title, ""); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	a, _ := svc.List(ctx, 1)
	b, _ := svc.List(ctx, 1)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("two lists differ:\n%+v\n%+v", a, b)
	}
	if len(a) != 3 || a[0].Title != "third" || a[2].Title != "first" {
		t.Fatalf("order = %+v", a)
	}
}

func TestToggleTwiceRestoresState(t *testing.T) {
	svc, pub := newTaskService()
	ctx := context.Background()

	task, _ := svc.Create(ctx, 1, "Buy milk", "")

	completed, err := svc.Toggle(ctx, task.ID, 1)
	if err != nil || !completed {
		t.Fatalf("first toggle = %v, %v", completed, err)
	}
	completed, err = svc.Toggle(ctx, task.ID, 1)
	if err != nil || completed {
		t.Fatalf("second toggle = %v, %v", completed, err)
	}

	want := []string{models.EventTaskCreated, models.EventTaskToggled, models.EventTaskToggled}
	if got := pub.types(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v", got)
	}
}

func TestConcurrentTogglesAreNotLost(t *testing.T) {
	svc, _ := newTaskService()
	ctx := context.Background()

	task, _ := svc.Create(ctx, 1, "Race", "")

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := svc.Toggle(ctx, task.ID, 1); err != nil {
				t.Errorf("toggle: %v", err)
			}
		}()
	}
	wg.Wait()

	tasks, _ := svc.List(ctx, 1)
	if tasks[0].Completed {
		t.Fatalf("even number of toggles left completed=true")
	}
}

func TestUpdateTask(t *testing.T) {
	svc, _ := newTaskService()
	ctx := context.Background()

	task, _ := svc.Create(ctx, 1, "Old", "")
	if err := svc.Update(ctx, task.ID, 1, "New", "details", true); err != nil {
		t.Fatalf("update: %v", err)
	}

	tasks, _ := svc.List(ctx, 1)
	got := tasks[0]
	if got.Title != "New" || got.Description != "details" || !got.Completed {
		t.Fatalf("task = %+v", got)
	}
}

func TestForeignTaskIsNotFound(t *testing.T) {
	svc, pub := newTaskService()
	ctx := context.Background()

	task, _ := svc.Create(ctx, 1, "Buy milk", "keep me")

	if err := svc.Update(ctx, task.ID, 2, "hijacked", "", true); !errors.Is(err, models.ErrTaskNotFound) {
		t.Fatalf("update err = %v", err)
	}
	if _, err := svc.Toggle(ctx, task.ID, 2); !errors.Is(err, models.ErrTaskNotFound) {
		t.Fatalf("toggle err = %v", err)
	}
	if err := svc.Delete(ctx, task.ID, 2); !errors.Is(err, models.ErrTaskNotFound) {
		t.Fatalf("delete err = %v", err)
	}

	tasks, _ := svc.List(ctx, 1)
	if len(tasks) != 1 {
		t.Fatalf("task was removed: %+v", tasks)
	}
	if got := tasks[0]; got.Title != "Buy milk" || got.Description != "keep me" || got.Completed {
		t.Fatalf("task was mutated: %+v", got)
	}

	if got := pub.types(); !reflect.DeepEqual(got, []string{models.EventTaskCreated}) {
		t.Fatalf("events = %v", got)
	}
}

func TestMissingTaskIsNotFound(t *testing.T) {
	svc, _ := newTaskService()
	ctx := context.Background()

	if err := svc.Delete(ctx, 404, 1); !errors.Is(err, models.ErrTaskNotFound) {
		t.Fatalf("err = %v", err)
	}
}

func TestDeleteTask(t *testing.T) {
	svc, pub := newTaskService()
	ctx := context.Background()

	task, _ := svc.Create(ctx, 1, "Buy milk", "")
	if err := svc.Delete(ctx, task.ID, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}

	tasks, _ := svc.List(ctx, 1)
	if len(tasks) != 0 {
		t.Fatalf("tasks = %+v", tasks)
	}
	if err := svc.Delete(ctx, task.ID, 1); !errors.Is(err, models.ErrTaskNotFound) {
		t.Fatalf("second delete err = %v", err)
	}

	want := []string{models.EventTaskCreated, models.EventTaskDeleted}
	if got := pub.types(); !reflect.DeepEqual(got, want) {
		t.Fatalf("events = %v", got)
	}
}

func TestNilPublisher(t *testing.T) {
	svc := NewTaskService(memstore.New().Tasks(), nil)
	if _, err := svc.Create(context.Background(), 1, "ok", ""); err != nil {
		t.Fatalf("create: %v", err)
	}
}
