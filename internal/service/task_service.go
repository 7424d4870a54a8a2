package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"todoBot/internal/logger"
	"todoBot/internal/models/task"
	rep "todoBot/internal/repository"
	"todoBot/internal/resolver"

	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

type TaskService struct {
	repo      TaskRepository
	resolver  *resolver.Resolver
	Numbering task.Numbering
}

func NewTaskService(repo TaskRepository, numbering task.Numbering) TaskService {
	if numbering == "" {
		numbering = task.NumberingDense
	}
	return TaskService{
		repo:      repo,
		resolver:  resolver.New(repo),
		Numbering: numbering,
	}
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка здоровья сервиса: %w", err)
	}
	return nil
}

func (s *TaskService) AddTask(ctx context.Context, owner, text string) (task.Entry, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return task.Entry{}, NewValidationError("text", "текст задачи пуст")
	}

	entry, err := s.repo.Create(ctx, owner, text)
	if err != nil {
		return task.Entry{}, s.mapError(err, "create", "")
	}

	// хранилище считает стабильный слот, в других режимах номер другой
	switch s.Numbering {
	case task.NumberingRaw:
		entry.Position = resolver.Position(entry, s.Numbering)
	case task.NumberingDense:
		// запись уже зафиксирована: если номер не найти, остаётся слот из хранилища
		pos, err := s.resolver.Locate(ctx, owner, entry.Task.ID, s.Numbering)
		if err != nil {
			logger.Warn("Service: Не удалось определить номер новой задачи",
				zap.String("owner", owner),
				zap.Int64("task_id", entry.Task.ID),
				zap.Error(err))
		} else {
			entry.Position = pos
		}
	}

	logger.Info("Service: Задача создана",
		zap.String("owner", owner),
		zap.Int64("task_id", entry.Task.ID),
		zap.Int("position", entry.Position))
	return entry, nil
}

func (s *TaskService) ListTasks(ctx context.Context, owner string) ([]task.Entry, error) {
	entries, err := s.repo.List(ctx, owner, s.Numbering.IncludeDeleted())
	if err != nil {
		return nil, s.mapError(err, "list", "")
	}
	for i := range entries {
		entries[i].Position = resolver.Position(entries[i], s.Numbering)
	}
	return entries, nil
}

// ActiveTasks - только невыполненные задачи, номера те же, что в ListTasks
func (s *TaskService) ActiveTasks(ctx context.Context, owner string) ([]task.Entry, error) {
	entries, err := s.ListTasks(ctx, owner)
	if err != nil {
		return nil, err
	}
	active := []task.Entry{}
	for _, e := range entries {
		if e.Task.Active() {
			active = append(active, e)
		}
	}
	return active, nil
}

func (s *TaskService) CompleteTask(ctx context.Context, owner, ref string) (task.Outcome, error) {
	return s.setCompleted(ctx, owner, ref, true)
}

func (s *TaskService) UndoTask(ctx context.Context, owner, ref string) (task.Outcome, error) {
	return s.setCompleted(ctx, owner, ref, false)
}

func (s *TaskService) setCompleted(ctx context.Context, owner, ref string, completed bool) (task.Outcome, error) {
	entry, err := s.resolve(ctx, owner, ref)
	if err != nil {
		return task.Outcome{}, err
	}

	// удалённую задачу не трогаем, вызывающий покажет предупреждение
	if entry.Task.Deleted {
		logger.Info("Service: Задача уже удалена",
			zap.String("owner", owner),
			zap.Int64("task_id", entry.Task.ID))
		return task.Outcome{Entry: entry, Deleted: true}, nil
	}

	updated, changed, err := s.repo.SetCompleted(ctx, owner, entry.Task.ID, completed)
	if err != nil {
		return task.Outcome{}, s.mapError(err, "set_completed", ref)
	}

	entry.Task = updated
	return task.Outcome{Entry: entry, Changed: changed}, nil
}

func (s *TaskService) RemoveTask(ctx context.Context, owner, ref string) (task.Outcome, error) {
	entry, err := s.resolve(ctx, owner, ref)
	if err != nil {
		return task.Outcome{}, err
	}

	removed, changed, err := s.repo.SetDeleted(ctx, owner, entry.Task.ID)
	if err != nil {
		return task.Outcome{}, s.mapError(err, "remove", ref)
	}

	entry.Task = removed
	return task.Outcome{Entry: entry, Changed: changed}, nil
}

func (s *TaskService) ClearTasks(ctx context.Context, owner string) (task.ClearSummary, error) {
	summary, err := s.repo.Clear(ctx, owner)
	if err != nil {
		return task.ClearSummary{}, s.mapError(err, "clear", "")
	}

	logger.Info("Service: Список очищен",
		zap.String("owner", owner),
		zap.Int("total", summary.Total))
	return summary, nil
}

func (s *TaskService) IsEmpty(ctx context.Context, owner string) (bool, error) {
	empty, err := s.repo.IsEmpty(ctx, owner)
	if err != nil {
		return false, s.mapError(err, "is_empty", "")
	}
	return empty, nil
}

func (s *TaskService) resolve(ctx context.Context, owner, ref string) (task.Entry, error) {
	number, err := resolver.ParseNumber(ref)
	if err != nil {
		return task.Entry{}, NewValidationError("number", err.Error())
	}

	entry, err := s.resolver.Resolve(ctx, owner, number, s.Numbering)
	if err != nil {
		return task.Entry{}, s.mapError(err, "resolve", ref)
	}
	return entry, nil
}

func (s *TaskService) mapError(err error, operation, ref string) error {
	switch {
	case errors.Is(err, rep.ErrNotFound):
		logger.Info("Service: Задача не найдена", zap.String("ref", ref))
		return NewNotFound(ref)
	case errors.Is(err, rep.ErrActiveTasks):
		return NewPrecondition("в списке есть невыполненные задачи")
	case errors.Is(err, rep.ErrEmptyText):
		return NewValidationError("text", "текст задачи пуст")
	default:
		logger.Log(zap.DebugLevel, "Service: Хранилище недоступно",
			zap.String("operation", operation),
			zap.Error(err))
		return NewStorageUnavailable(operation, err)
	}
}
