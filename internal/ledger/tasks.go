package ledger

import (
	"fmt"
	"strings"

	"github.com/andresuchdata/stockledger/internal/domain"
)

// normalizeTask fills defaults and checks the enumerations.
func normalizeTask(op string, t domain.Task) (domain.Task, error) {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return t, domain.NewLedgerError(op, "task", t.ID, domain.ErrInvalidInput, "title is required")
	}
	if t.Priority == "" {
		t.Priority = domain.PriorityMedium
	}
	if !t.Priority.Valid() {
		return t, domain.NewLedgerError(op, "task", t.ID, domain.ErrInvalidInput, fmt.Sprintf("unknown priority %q", t.Priority))
	}
	if t.Status == "" {
		t.Status = domain.TaskPending
	}
	if !t.Status.Valid() {
		return t, domain.NewLedgerError(op, "task", t.ID, domain.ErrInvalidInput, fmt.Sprintf("unknown status %q", t.Status))
	}
	return t, nil
}

func (l *Ledger) taskIndex(id string) int {
	for i := range l.tasks {
		if l.tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// AddTask records a task and announces the assignment in the activity feed.
func (l *Ledger) AddTask(t domain.Task) (domain.Task, error) {
	const op = "add_task"
	var out domain.Task

	err := l.mutate(op, func(tx *txn) error {
		if t.ID == "" {
			t.ID = shortID()
		}
		task, err := normalizeTask(op, t)
		if err != nil {
			return err
		}
		if l.taskIndex(task.ID) >= 0 {
			return domain.NewLedgerError(op, "task", task.ID, domain.ErrDuplicateOperation, "id already exists")
		}
		if task.DueDate.IsZero() {
			task.DueDate = tx.today()
		}
		l.tasks = append(l.tasks, task)
		tx.activity(domain.ActivitySystem, "New task assigned: "+task.Title)
		out = task
		return nil
	})
	return out, err
}

// UpdateTask replaces a task's fields. It is silent in the activity feed.
func (l *Ledger) UpdateTask(t domain.Task) (domain.Task, error) {
	const op = "update_task"
	var out domain.Task

	err := l.mutate(op, func(tx *txn) error {
		idx := l.taskIndex(t.ID)
		if idx < 0 {
			return domain.Unknown(op, "task", t.ID)
		}
		task, err := normalizeTask(op, t)
		if err != nil {
			return err
		}
		if task.DueDate.IsZero() {
			task.DueDate = l.tasks[idx].DueDate
		}
		l.tasks[idx] = task
		tx.dirty = true
		out = task
		return nil
	})
	return out, err
}

func (l *Ledger) DeleteTask(id string) error {
	const op = "delete_task"
	return l.mutate(op, func(tx *txn) error {
		idx := l.taskIndex(id)
		if idx < 0 {
			return domain.Unknown(op, "task", id)
		}
		l.tasks = append(l.tasks[:idx], l.tasks[idx+1:]...)
		tx.dirty = true
		return nil
	})
}
