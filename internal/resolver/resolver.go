// Package resolver переводит номер задачи, который видит пользователь, в её id и обратно.
package resolver

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"todoBot/internal/models/task"
	repo "todoBot/internal/repository"
)

var ErrInvalidNumber = errors.New("номер задачи должен быть положительным числом")

// Lister - чтение списка задач пользователя, упорядоченного по id
type Lister interface {
	List(ctx context.Context, owner string, includeDeleted bool) ([]task.Entry, error)
}

type Resolver struct {
	tasks Lister
}

func New(tasks Lister) *Resolver {
	return &Resolver{tasks: tasks}
}

func ParseNumber(arg string) (int64, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || n < 1 {
		return 0, ErrInvalidNumber
	}
	return n, nil
}

// Resolve находит задачу по номеру; id задачи - Entry.Task.ID.
// В режиме Stable найденная задача может быть уже удалена, решает вызывающий.
func (r *Resolver) Resolve(ctx context.Context, owner string, number int64, mode task.Numbering) (task.Entry, error) {
	entries, err := r.tasks.List(ctx, owner, mode.IncludeDeleted())
	if err != nil {
		return task.Entry{}, err
	}

	if mode == task.NumberingRaw {
		for _, e := range entries {
			if e.Task.ID == number {
				return task.Entry{Position: Position(e, mode), Task: e.Task}, nil
			}
		}
		return task.Entry{}, repo.ErrNotFound
	}

	if number < 1 || number > int64(len(entries)) {
		return task.Entry{}, repo.ErrNotFound
	}
	return entries[number-1], nil
}

// Locate - обратная операция: номер, под которым пользователь видит задачу
func (r *Resolver) Locate(ctx context.Context, owner string, id int64, mode task.Numbering) (int, error) {
	entries, err := r.tasks.List(ctx, owner, mode.IncludeDeleted())
	if err != nil {
		return 0, err
	}
	for _, e := range entries {
		if e.Task.ID == id {
			return Position(e, mode), nil
		}
	}
	return 0, repo.ErrNotFound
}

// Position - номер записи списка в заданном режиме
func Position(e task.Entry, mode task.Numbering) int {
	if mode == task.NumberingRaw {
		return int(e.Task.ID)
	}
	return e.Position
}
