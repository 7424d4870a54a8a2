package inmemory

import (
	"context"
	"strings"
	"sync"
	"time"
	"todoBot/internal/logger"
	"todoBot/internal/models/task"
	repo "todoBot/internal/repository"

	"go.uber.org/zap"
)

type TaskStorage struct {
	storage map[int64]*task.Task
	mtx     *sync.RWMutex
	// id в порядке создания
	ids    []int64
	lastID int64
}

func NewTaskStorage() *TaskStorage {
	return &TaskStorage{
		storage: make(map[int64]*task.Task),
		mtx:     &sync.RWMutex{},
		ids:     []int64{},
	}
}

func (s *TaskStorage) HealthCheck(ctx context.Context) error {
	logger.Log(zap.DebugLevel, "Repository: Соединение стабильно")
	return nil
}

func (s *TaskStorage) Close() {}

func (s *TaskStorage) Create(ctx context.Context, owner, text string) (task.Entry, error) {
	if strings.TrimSpace(text) == "" {
		return task.Entry{}, repo.ErrEmptyText
	}

	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.lastID++
	created := &task.Task{
		ID:        s.lastID,
		Owner:     owner,
		Text:      text,
		CreatedAt: time.Now(),
	}
	s.storage[created.ID] = created
	s.ids = append(s.ids, created.ID)

	position := 0
	for _, id := range s.ids {
		if s.storage[id].Owner == owner {
			position++
		}
	}

	return task.Entry{Position: position, Task: clone(created)}, nil
}

func (s *TaskStorage) List(ctx context.Context, owner string, includeDeleted bool) ([]task.Entry, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []task.Entry{}
	for _, id := range s.ids {
		t := s.storage[id]
		if t.Owner != owner {
			continue
		}
		if t.Deleted && !includeDeleted {
			continue
		}
		res = append(res, task.Entry{Position: len(res) + 1, Task: clone(t)})
	}
	return res, nil
}

func (s *TaskStorage) SetCompleted(ctx context.Context, owner string, id int64, completed bool) (*task.Task, bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.storage[id]
	if !ok || t.Owner != owner {
		return nil, false, repo.ErrNotFound
	}
	if t.Completed == completed {
		return clone(t), false, nil
	}
	t.Completed = completed
	return clone(t), true, nil
}

// мягкое удаление, флаг completed не трогаем
func (s *TaskStorage) SetDeleted(ctx context.Context, owner string, id int64) (*task.Task, bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.storage[id]
	if !ok || t.Owner != owner {
		return nil, false, repo.ErrNotFound
	}
	if t.Deleted {
		return clone(t), false, nil
	}
	t.Deleted = true
	return clone(t), true, nil
}

// полное удаление всех задач пользователя, если среди них нет активных
func (s *TaskStorage) Clear(ctx context.Context, owner string) (task.ClearSummary, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	summary := task.ClearSummary{}
	for _, id := range s.ids {
		t := s.storage[id]
		if t.Owner != owner {
			continue
		}
		if t.Active() {
			return task.ClearSummary{}, repo.ErrActiveTasks
		}
		summary.Total++
		if t.Completed {
			summary.Completed++
		}
		if t.Deleted {
			summary.Deleted++
		}
	}

	kept := s.ids[:0]
	for _, id := range s.ids {
		if s.storage[id].Owner == owner {
			delete(s.storage, id)
			continue
		}
		kept = append(kept, id)
	}
	s.ids = kept

	return summary, nil
}

func (s *TaskStorage) IsEmpty(ctx context.Context, owner string) (bool, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, id := range s.ids {
		if s.storage[id].Owner == owner {
			return false, nil
		}
	}
	return true, nil
}

func clone(t *task.Task) *task.Task {
	c := *t
	return &c
}
