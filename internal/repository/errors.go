package repository

import "errors"

var ErrNotFound = errors.New("задача не найдена")

// ErrActiveTasks - у пользователя есть невыполненные неудалённые задачи
var ErrActiveTasks = errors.New("есть активные задачи")

var ErrEmptyText = errors.New("пустой текст задачи")
