package inmemory_test

import (
	"context"
	"fmt"
	"testing"
	"todoBot/internal/logger"
	"todoBot/internal/models/task"
	"todoBot/internal/repository"
	"todoBot/internal/repository/task/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"golang.org/x/sync/errgroup"
)

// TestTaskStorage_New тестирует создание хранилища
func TestTaskStorage_New(t *testing.T) {
	storage := inmemory.NewTaskStorage()
	assert.NotNil(t, storage)
	assert.NoError(t, storage.HealthCheck(context.Background()))
}

// TestTaskStorage_HealthCheckQuiet тестирует, что периодическая проверка не засоряет лог на уровне info
func TestTaskStorage_HealthCheckQuiet(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	prev := logger.Logger
	logger.Logger = zap.New(core)
	defer func() { logger.Logger = prev }()

	storage := inmemory.NewTaskStorage()
	for i := 0; i < 3; i++ {
		require.NoError(t, storage.HealthCheck(context.Background()))
	}
	assert.Zero(t, logs.Len())
}

// TestTaskStorage_Create тестирует создание задачи
func TestTaskStorage_Create(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	first, err := storage.Create(ctx, "u1", "buy milk")
	require.NoError(t, err)
	assert.Equal(t, 1, first.Position)
	assert.False(t, first.Task.CreatedAt.IsZero())
	assert.False(t, first.Task.Completed)
	assert.False(t, first.Task.Deleted)

	// id глобальные, позиции - по пользователю
	other, err := storage.Create(ctx, "u2", "walk dog")
	require.NoError(t, err)
	assert.Equal(t, 1, other.Position)
	assert.Greater(t, other.Task.ID, first.Task.ID)

	second, err := storage.Create(ctx, "u1", "call mom")
	require.NoError(t, err)
	assert.Equal(t, 2, second.Position)
	assert.Greater(t, second.Task.ID, other.Task.ID)

	// позиция считается по всем задачам, включая удалённые
	_, _, err = storage.SetDeleted(ctx, "u1", first.Task.ID)
	require.NoError(t, err)
	third, err := storage.Create(ctx, "u1", "read book")
	require.NoError(t, err)
	assert.Equal(t, 3, third.Position)

	_, err = storage.Create(ctx, "u1", "   ")
	assert.ErrorIs(t, err, repository.ErrEmptyText)
}

// TestTaskStorage_CreateThenList тестирует, что новая задача последняя в списке
func TestTaskStorage_CreateThenList(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	for i := 1; i <= 3; i++ {
		_, err := storage.Create(ctx, "u1", fmt.Sprintf("Task %d", i))
		require.NoError(t, err)
	}
	created, err := storage.Create(ctx, "u1", "last one")
	require.NoError(t, err)

	entries, err := storage.List(ctx, "u1", false)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	last := entries[len(entries)-1]
	assert.Equal(t, 4, last.Position)
	assert.Equal(t, created.Task.ID, last.Task.ID)
	assert.False(t, last.Task.Completed)
}

// TestTaskStorage_ListNumbering тестирует плотную и стабильную нумерацию
func TestTaskStorage_ListNumbering(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	ids := make([]int64, 4)
	for i := range ids {
		e, err := storage.Create(ctx, "u1", fmt.Sprintf("Task %d", i+1))
		require.NoError(t, err)
		ids[i] = e.Task.ID
	}

	_, _, err := storage.SetDeleted(ctx, "u1", ids[1])
	require.NoError(t, err)

	t.Run("dense shifts following positions", func(t *testing.T) {
		entries, err := storage.List(ctx, "u1", false)
		require.NoError(t, err)
		require.Len(t, entries, 3)
		assert.Equal(t, ids[0], entries[0].Task.ID)
		assert.Equal(t, ids[2], entries[1].Task.ID)
		assert.Equal(t, 2, entries[1].Position)
		assert.Equal(t, ids[3], entries[2].Task.ID)
		assert.Equal(t, 3, entries[2].Position)
	})

	t.Run("stable keeps every slot", func(t *testing.T) {
		entries, err := storage.List(ctx, "u1", true)
		require.NoError(t, err)
		require.Len(t, entries, 4)
		for i, e := range entries {
			assert.Equal(t, i+1, e.Position)
			assert.Equal(t, ids[i], e.Task.ID)
		}
		assert.True(t, entries[1].Task.Deleted)
	})
}

// TestTaskStorage_SetCompleted тестирует выполнение и отмену выполнения
func TestTaskStorage_SetCompleted(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	e, err := storage.Create(ctx, "u1", "buy milk")
	require.NoError(t, err)

	done, changed, err := storage.SetCompleted(ctx, "u1", e.Task.ID, true)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, done.Completed)

	// повторный вызов ничего не меняет
	again, changed, err := storage.SetCompleted(ctx, "u1", e.Task.ID, true)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, done, again)

	undone, changed, err := storage.SetCompleted(ctx, "u1", e.Task.ID, false)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.False(t, undone.Completed)

	_, _, err = storage.SetCompleted(ctx, "u1", e.Task.ID+100, true)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

// TestTaskStorage_SetDeleted тестирует мягкое удаление
func TestTaskStorage_SetDeleted(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	e, err := storage.Create(ctx, "u1", "buy milk")
	require.NoError(t, err)
	_, _, err = storage.SetCompleted(ctx, "u1", e.Task.ID, true)
	require.NoError(t, err)

	removed, changed, err := storage.SetDeleted(ctx, "u1", e.Task.ID)
	require.NoError(t, err)
	assert.True(t, changed)
	assert.True(t, removed.Deleted)
	assert.True(t, removed.Completed, "удаление не сбрасывает выполнение")

	again, changed, err := storage.SetDeleted(ctx, "u1", e.Task.ID)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, removed, again)

	// удалённая задача всё ещё хранится
	entries, err := storage.List(ctx, "u1", true)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

// TestTaskStorage_OwnerIsolation тестирует изоляцию пользователей
func TestTaskStorage_OwnerIsolation(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	foreign, err := storage.Create(ctx, "owner-b", "secret")
	require.NoError(t, err)

	_, _, err = storage.SetCompleted(ctx, "owner-a", foreign.Task.ID, true)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	_, _, err = storage.SetDeleted(ctx, "owner-a", foreign.Task.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)

	entries, err := storage.List(ctx, "owner-a", true)
	require.NoError(t, err)
	assert.Empty(t, entries)

	empty, err := storage.IsEmpty(ctx, "owner-a")
	require.NoError(t, err)
	assert.True(t, empty)

	// чужая задача не изменилась
	entries, err = storage.List(ctx, "owner-b", true)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.True(t, entries[0].Task.Active())
}

// TestTaskStorage_Clear тестирует массовую очистку
func TestTaskStorage_Clear(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	milk, err := storage.Create(ctx, "U", "buy milk")
	require.NoError(t, err)
	dog, err := storage.Create(ctx, "U", "walk dog")
	require.NoError(t, err)
	_, err = storage.Create(ctx, "other", "untouched")
	require.NoError(t, err)

	_, _, err = storage.SetCompleted(ctx, "U", milk.Task.ID, true)
	require.NoError(t, err)

	_, err = storage.Clear(ctx, "U")
	assert.ErrorIs(t, err, repository.ErrActiveTasks)

	// неудачная очистка ничего не трогает
	entries, err := storage.List(ctx, "U", true)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	_, _, err = storage.SetDeleted(ctx, "U", dog.Task.ID)
	require.NoError(t, err)

	summary, err := storage.Clear(ctx, "U")
	require.NoError(t, err)
	assert.Equal(t, task.ClearSummary{Completed: 1, Deleted: 1, Total: 2}, summary)

	empty, err := storage.IsEmpty(ctx, "U")
	require.NoError(t, err)
	assert.True(t, empty)

	entries, err = storage.List(ctx, "other", false)
	require.NoError(t, err)
	assert.Len(t, entries, 1)

	// id не переиспользуются после очистки
	next, err := storage.Create(ctx, "U", "fresh")
	require.NoError(t, err)
	assert.Greater(t, next.Task.ID, dog.Task.ID)
	assert.Equal(t, 1, next.Position)
}

// TestTaskStorage_ClearEmpty тестирует очистку пустого списка
func TestTaskStorage_ClearEmpty(t *testing.T) {
	storage := inmemory.NewTaskStorage()

	summary, err := storage.Clear(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Equal(t, task.ClearSummary{}, summary)
}

// TestTaskStorage_ReturnsCopies тестирует, что наружу не отдаются внутренние указатели
func TestTaskStorage_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	e, err := storage.Create(ctx, "u1", "original")
	require.NoError(t, err)
	e.Task.Text = "mutated"
	e.Task.Completed = true

	entries, err := storage.List(ctx, "u1", false)
	require.NoError(t, err)
	assert.Equal(t, "original", entries[0].Task.Text)
	assert.False(t, entries[0].Task.Completed)
}

// TestTaskStorage_ConcurrentAccess тестирует конкурентный доступ
func TestTaskStorage_ConcurrentAccess(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()
	taskCount := 100
	goroutines := 10

	var g errgroup.Group
	for i := 0; i < goroutines; i++ {
		workerID := i
		g.Go(func() error {
			for j := 0; j < taskCount/goroutines; j++ {
				if _, err := storage.Create(ctx, "shared", fmt.Sprintf("Task %d-%d", workerID, j)); err != nil {
					return err
				}
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	entries, err := storage.List(ctx, "shared", false)
	require.NoError(t, err)
	require.Len(t, entries, taskCount)
	for i := 1; i < len(entries); i++ {
		assert.Greater(t, entries[i].Task.ID, entries[i-1].Task.ID)
	}
}

// TestTaskStorage_ConcurrentCreateAndClear тестирует, что очистка не теряет новые задачи
func TestTaskStorage_ConcurrentCreateAndClear(t *testing.T) {
	ctx := context.Background()
	storage := inmemory.NewTaskStorage()

	var g errgroup.Group
	for i := 0; i < 50; i++ {
		n := i
		g.Go(func() error {
			_, err := storage.Create(ctx, "U", fmt.Sprintf("Task %d", n))
			return err
		})
		g.Go(func() error {
			_, err := storage.Clear(ctx, "U")
			if err != nil && err != repository.ErrActiveTasks {
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	// все созданные задачи активны, поэтому очистка их не удаляла
	entries, err := storage.List(ctx, "U", true)
	require.NoError(t, err)
	assert.Len(t, entries, 50)
}
