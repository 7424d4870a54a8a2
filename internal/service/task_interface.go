package service

import (
	"context"
	"todoBot/internal/models/task"
)

type TaskRepository interface {
	HealthCheck(context.Context) error
	Create(ctx context.Context, owner, text string) (task.Entry, error)
	List(ctx context.Context, owner string, includeDeleted bool) ([]task.Entry, error)
	SetCompleted(ctx context.Context, owner string, id int64, completed bool) (*task.Task, bool, error)
	SetDeleted(ctx context.Context, owner string, id int64) (*task.Task, bool, error)
	Clear(ctx context.Context, owner string) (task.ClearSummary, error)
	IsEmpty(ctx context.Context, owner string) (bool, error)
}
