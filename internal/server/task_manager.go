package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/sanonone/trustsum/internal/batch"
)

// TaskStatus defines the possible states of a task.
type TaskStatus string

const (
	TaskStatusStarted   TaskStatus = "started"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
)

// Task is an asynchronous batch run. Read it through Snapshot.
type Task struct {
	TaskView
	mu sync.RWMutex
}

// TaskManager tracks all asynchronous tasks.
type TaskManager struct {
	tasks map[string]*Task
	mu    sync.RWMutex
}

// NewTaskManager creates a new task manager.
func NewTaskManager() *TaskManager {
	return &TaskManager{
		tasks: make(map[string]*Task),
	}
}

// NewTask creates a new task, registers it, and returns it.
func (tm *TaskManager) NewTask() *Task {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	task := &Task{TaskView: TaskView{
		ID:        uuid.New().String(),
		Status:    TaskStatusStarted,
		CreatedAt: time.Now().UTC(),
	}}
	tm.tasks[task.ID] = task
	return task
}

// GetTask safely retrieves a task by its ID.
func (tm *TaskManager) GetTask(id string) (*Task, bool) {
	tm.mu.RLock()
	defer tm.mu.RUnlock()
	task, found := tm.tasks[id]
	return task, found
}

// Start marks the task running over total documents.
func (t *Task) Start(total int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Status = TaskStatusRunning
	t.Total = total
}

// Advance counts one finished document.
func (t *Task) Advance() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Processed++
}

// Finish stores the report and the final status.
func (t *Task) Finish(report *batch.Report, err error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.Report = report
	if err != nil {
		t.Status = TaskStatusFailed
		t.Error = err.Error()
		return
	}
	t.Status = TaskStatusCompleted
}

// Snapshot returns a copy that can be encoded without holding the lock.
func (t *Task) Snapshot() TaskView {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.TaskView
}

// TaskView is the JSON form of a Task.
type TaskView struct {
	ID        string        `json:"id"`
	Status    TaskStatus    `json:"status"`
	Total     int           `json:"total"`
	Processed int           `json:"processed"`
	Error     string        `json:"error,omitempty"`
	CreatedAt time.Time     `json:"created_at"`
	Report    *batch.Report `json:"report,omitempty"`
}
