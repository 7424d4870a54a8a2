package handlers

import (
	"context"
	"todoBot/internal/models/task"
)

type Service interface {
	HealthCheck(ctx context.Context) error
	AddTask(ctx context.Context, owner, text string) (task.Entry, error)
	ListTasks(ctx context.Context, owner string) ([]task.Entry, error)
	ActiveTasks(ctx context.Context, owner string) ([]task.Entry, error)
	CompleteTask(ctx context.Context, owner, ref string) (task.Outcome, error)
	UndoTask(ctx context.Context, owner, ref string) (task.Outcome, error)
	RemoveTask(ctx context.Context, owner, ref string) (task.Outcome, error)
	ClearTasks(ctx context.Context, owner string) (task.ClearSummary, error)
	IsEmpty(ctx context.Context, owner string) (bool, error)
}
