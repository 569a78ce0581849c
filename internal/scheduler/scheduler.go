// Package scheduler runs delayed side effects as Bubble Tea ticks that can be
// cancelled before they fire.
package scheduler

import (
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

type TaskID uint64

// Task is a pending delayed side effect.
type Task struct {
	ID      TaskID
	Owner   string
	Delay   time.Duration
	Payload any
}

// FiredMsg is delivered to the Bubble Tea loop when a task's delay elapses.
type FiredMsg struct {
	ID TaskID
}

// Scheduler tracks delayed tasks so they can be cancelled before they land.
// It is not safe for concurrent use; all calls happen on the event loop.
type Scheduler struct {
	next    TaskID
	pending map[TaskID]Task
}

func New() *Scheduler {
	return &Scheduler{pending: make(map[TaskID]Task)}
}

// Schedule registers a task and returns its id together with the command
// that will fire it after delay.
func (s *Scheduler) Schedule(owner string, delay time.Duration, payload any) (TaskID, tea.Cmd) {
	s.next++
	id := s.next
	s.pending[id] = Task{ID: id, Owner: owner, Delay: delay, Payload: payload}

	return id, tea.Tick(delay, func(time.Time) tea.Msg {
		return FiredMsg{ID: id}
	})
}

// Fire consumes a fired task. ok is false when the task was cancelled or
// already fired.
func (s *Scheduler) Fire(msg FiredMsg) (Task, bool) {
	task, ok := s.pending[msg.ID]
	if !ok {
		return Task{}, false
	}
	delete(s.pending, msg.ID)
	return task, true
}

func (s *Scheduler) Cancel(id TaskID) bool {
	if _, ok := s.pending[id]; !ok {
		return false
	}
	delete(s.pending, id)
	return true
}

// CancelOwner drops every pending task registered by owner and returns how
// many were dropped.
func (s *Scheduler) CancelOwner(owner string) int {
	n := 0
	for id, task := range s.pending {
		if task.Owner == owner {
			delete(s.pending, id)
			n++
		}
	}
	return n
}

func (s *Scheduler) CancelAll() int {
	n := len(s.pending)
	s.pending = make(map[TaskID]Task)
	return n
}

// Pending lists tasks for owner in scheduling order. An empty owner lists all.
func (s *Scheduler) Pending(owner string) []Task {
	tasks := make([]Task, 0, len(s.pending))
	for _, task := range s.pending {
		if owner == "" || task.Owner == owner {
			tasks = append(tasks, task)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks
}
