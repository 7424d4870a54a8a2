package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"todoBot/internal/logger"
	"todoBot/internal/models/task"
	repo "todoBot/internal/repository"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

const columns = `id, owner_id, text, completed, deleted, created_at`

// блокировка транзакции на пользователя: create и clear одного пользователя не пересекаются
const lockOwner = `SELECT pg_advisory_xact_lock(hashtext($1))`

const slowQuery = 100 * time.Millisecond

type Storage struct {
	pool *pgxpool.Pool
}

type Option func(*pgxpool.Config)

func WithMaxConns(n int32) Option {
	return func(c *pgxpool.Config) {
		if n > 0 {
			c.MaxConns = n
		}
	}
}

func WithMinConns(n int32) Option {
	return func(c *pgxpool.Config) {
		if n > 0 {
			c.MinConns = n
		}
	}
}

func WithMaxConnIdleTime(d time.Duration) Option {
	return func(c *pgxpool.Config) {
		if d > 0 {
			c.MaxConnIdleTime = d
		}
	}
}

func New(ctx context.Context, connString string, opts ...Option) (*Storage, error) {
	config, err := pgxpool.ParseConfig(connString)
	if err != nil {
		logger.Error("Repository: Ошибка загрузки конфига", err)
		return nil, fmt.Errorf("загрузка конфига: %w", err)
	}

	config.MaxConns = 10
	config.MinConns = 2
	config.MaxConnIdleTime = time.Minute * 5
	for _, opt := range opts {
		opt(config)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		logger.Error("Repository: Ошибка создания пула", err)
		return nil, fmt.Errorf("создание пула: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		logger.Error("Repository: Неудачная проверка ping", err)
		return nil, fmt.Errorf("проверка соединения ping: %w", err)
	}

	logger.Info("Repository: Успешное создание подключения к PostgreSQL")
	return &Storage{pool: pool}, nil
}

func (s *Storage) Close() {
	s.pool.Close()
	logger.Info("Repository: Закрытие всех соединений PostgreSQL")
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	if err := s.pool.Ping(ctx); err != nil {
		logger.Error("Repository: Неудачная проверка ping", err)
		return fmt.Errorf("проверка соединения ping: %w", err)
	}
	return nil
}

func (s *Storage) Create(ctx context.Context, owner, text string) (task.Entry, error) {
	start := time.Now()
	defer warnIfSlow("create", start)

	if strings.TrimSpace(text) == "" {
		return task.Entry{}, repo.ErrEmptyText
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logger.Error("Repository: Не удалось начать транзакцию", err)
		return task.Entry{}, fmt.Errorf("начало транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, lockOwner, owner); err != nil {
		logger.Error("Repository: Не удалось заблокировать пользователя", err)
		return task.Entry{}, fmt.Errorf("блокировка пользователя: %w", err)
	}

	query := `INSERT INTO todos (owner_id, text)
				VALUES ($1, $2)
				RETURNING ` + columns

	created, err := scanTask(tx.QueryRow(ctx, query, owner, text))
	if err != nil {
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return task.Entry{}, fmt.Errorf("добавление задачи: %w", err)
	}

	var position int
	if err := tx.QueryRow(ctx, `SELECT count(*) FROM todos WHERE owner_id = $1`, owner).Scan(&position); err != nil {
		logger.Error("Repository: Не удалось посчитать задачи", err)
		return task.Entry{}, fmt.Errorf("подсчёт задач: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Repository: Не удалось зафиксировать транзакцию", err)
		return task.Entry{}, fmt.Errorf("фиксация транзакции: %w", err)
	}

	return task.Entry{Position: position, Task: created}, nil
}

func (s *Storage) List(ctx context.Context, owner string, includeDeleted bool) ([]task.Entry, error) {
	start := time.Now()
	defer warnIfSlow("list", start)

	query := `SELECT ` + columns + `
				FROM todos
				WHERE owner_id = $1 AND ($2 OR NOT deleted)
				ORDER BY id`

	rows, err := s.pool.Query(ctx, query, owner, includeDeleted)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	entries := []task.Entry{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Error("Repository: Ошибка сканирования задачи", err)
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}
		entries = append(entries, task.Entry{Position: len(entries) + 1, Task: t})
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	return entries, nil
}

func (s *Storage) SetCompleted(ctx context.Context, owner string, id int64, completed bool) (*task.Task, bool, error) {
	return s.setFlag(ctx, "completed", owner, id, completed)
}

// мягкое удаление, completed не меняется
func (s *Storage) SetDeleted(ctx context.Context, owner string, id int64) (*task.Task, bool, error) {
	return s.setFlag(ctx, "deleted", owner, id, true)
}

// setFlag меняет булев столбец одним UPDATE; если значение уже такое, возвращает запись без изменений
func (s *Storage) setFlag(ctx context.Context, column, owner string, id int64, value bool) (*task.Task, bool, error) {
	start := time.Now()
	defer warnIfSlow("set_"+column, start)

	query := fmt.Sprintf(`UPDATE todos
				SET %[1]s = $3
				WHERE id = $1 AND owner_id = $2 AND %[1]s <> $3
				RETURNING `+columns, column)

	updated, err := scanTask(s.pool.QueryRow(ctx, query, id, owner, value))
	if err == nil {
		return updated, true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		logger.Error("Repository: Не удалось обновить задачу", err,
			zap.String("column", column),
			zap.Int64("task_id", id))
		return nil, false, fmt.Errorf("обновление задачи: %w", err)
	}

	current, err := s.getByID(ctx, owner, id)
	if err != nil {
		return nil, false, err
	}
	return current, false, nil
}

func (s *Storage) getByID(ctx context.Context, owner string, id int64) (*task.Task, error) {
	query := `SELECT ` + columns + `
				FROM todos
				WHERE id = $1 AND owner_id = $2`

	t, err := scanTask(s.pool.QueryRow(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Int64("task_id", id))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}
	return t, nil
}

// полное удаление всех задач пользователя; проверка и удаление в одной транзакции
func (s *Storage) Clear(ctx context.Context, owner string) (task.ClearSummary, error) {
	start := time.Now()
	defer warnIfSlow("clear", start)

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		logger.Error("Repository: Не удалось начать транзакцию", err)
		return task.ClearSummary{}, fmt.Errorf("начало транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, lockOwner, owner); err != nil {
		logger.Error("Repository: Не удалось заблокировать пользователя", err)
		return task.ClearSummary{}, fmt.Errorf("блокировка пользователя: %w", err)
	}

	query := `SELECT
				count(*) FILTER (WHERE completed),
				count(*) FILTER (WHERE deleted),
				count(*) FILTER (WHERE NOT completed AND NOT deleted),
				count(*)
				FROM todos
				WHERE owner_id = $1`

	var summary task.ClearSummary
	var active int
	if err := tx.QueryRow(ctx, query, owner).Scan(&summary.Completed, &summary.Deleted, &active, &summary.Total); err != nil {
		logger.Error("Repository: Не удалось посчитать задачи", err)
		return task.ClearSummary{}, fmt.Errorf("подсчёт задач: %w", err)
	}

	if active > 0 {
		return task.ClearSummary{}, repo.ErrActiveTasks
	}

	if _, err := tx.Exec(ctx, `DELETE FROM todos WHERE owner_id = $1`, owner); err != nil {
		logger.Error("Repository: Не удалось очистить задачи", err)
		return task.ClearSummary{}, fmt.Errorf("очистка задач: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		logger.Error("Repository: Не удалось зафиксировать транзакцию", err)
		return task.ClearSummary{}, fmt.Errorf("фиксация транзакции: %w", err)
	}

	return summary, nil
}

func (s *Storage) IsEmpty(ctx context.Context, owner string) (bool, error) {
	var exists bool
	err := s.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM todos WHERE owner_id = $1)`, owner).Scan(&exists)
	if err != nil {
		logger.Error("Repository: Не удалось проверить наличие задач", err)
		return false, fmt.Errorf("проверка наличия задач: %w", err)
	}
	return !exists, nil
}

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	err := row.Scan(
		&t.ID,
		&t.Owner,
		&t.Text,
		&t.Completed,
		&t.Deleted,
		&t.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func warnIfSlow(operation string, start time.Time) {
	if time.Since(start) > slowQuery {
		logger.Warn("Repository: Медленный запрос",
			zap.String("operation", operation),
			zap.Duration("ms", time.Since(start)))
	}
}
