package migration

import (
	"sync"

	"drover/internal/api"
)

// TaskRegistry holds every migration task until it is cleaned up. It is safe
// for concurrent use; readers receive copies.
type TaskRegistry struct {
	mu    sync.RWMutex
	tasks map[string]*Task
	order []string
}

// NewTaskRegistry creates an empty registry.
func NewTaskRegistry() *TaskRegistry {
	return &TaskRegistry{
		tasks: make(map[string]*Task),
	}
}

func (r *TaskRegistry) add(task *Task) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tasks[task.ID]; exists {
		return api.NewValidationError("taskId", "migration task %s already exists", task.ID)
	}
	r.tasks[task.ID] = task
	r.order = append(r.order, task.ID)
	return nil
}

// lookup returns the registered task with the given id.
func (r *TaskRegistry) lookup(id string) (*Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.tasks[id]
	return task, ok
}

// mutate applies fn to task under the write lock. The task keeps its own
// state even after it was removed from the registry.
func (r *TaskRegistry) mutate(task *Task, fn func(*Task)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	fn(task)
}

// snapshot returns a copy of task taken under the read lock.
func (r *TaskRegistry) snapshot(task *Task) Task {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return task.clone()
}

// update applies fn to the task under the write lock.
func (r *TaskRegistry) update(id string, fn func(*Task) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	task, ok := r.tasks[id]
	if !ok {
		return api.NewTaskNotFoundError(id)
	}
	return fn(task)
}

// Get returns a copy of the task with the given id.
func (r *TaskRegistry) Get(id string) (Task, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return Task{}, false
	}
	return task.clone(), true
}

// List returns copies of all tasks in start order.
func (r *TaskRegistry) List() []Task {
	return r.filter(func(Task) bool { return true })
}

// Active returns copies of the tasks that have not reached a terminal phase.
func (r *TaskRegistry) Active() []Task {
	return r.filter(func(t Task) bool { return !t.Status.IsTerminal() })
}

func (r *TaskRegistry) filter(keep func(Task) bool) []Task {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Task, 0, len(r.order))
	for _, id := range r.order {
		task := r.tasks[id]
		if keep(*task) {
			out = append(out, task.clone())
		}
	}
	return out
}

// Len returns the number of registered tasks.
func (r *TaskRegistry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tasks)
}

// RemoveTerminal drops every task in a terminal phase and returns how many
// were removed. Running tasks are never removed.
func (r *TaskRegistry) RemoveTerminal() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	kept := r.order[:0]
	for _, id := range r.order {
		if r.tasks[id].Status.IsTerminal() {
			delete(r.tasks, id)
			removed++
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
	return removed
}
