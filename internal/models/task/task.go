package task

import (
	"fmt"
	"strings"
	"time"
)

type Task struct {
	ID        int64     `json:"id" db:"id"`
	Owner     string    `json:"owner" db:"owner_id"`
	Text      string    `json:"text" db:"text"`
	Completed bool      `json:"completed" db:"completed"`
	Deleted   bool      `json:"deleted" db:"deleted"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// Active - задача не выполнена и не удалена
func (t *Task) Active() bool {
	return !t.Completed && !t.Deleted
}

// Entry - задача вместе с её номером в списке пользователя
type Entry struct {
	Position int   `json:"position"`
	Task     *Task `json:"task"`
}

// Outcome - результат изменения задачи по номеру
type Outcome struct {
	Entry
	Changed bool `json:"changed"`
	// задача уже удалена, изменение не применялось
	Deleted bool `json:"deleted"`
}

type ClearSummary struct {
	Completed int `json:"completed"`
	Deleted   int `json:"deleted"`
	Total     int `json:"total"`
}

type Numbering string

// Dense - номера 1..N по неудалённым задачам, пересчитываются при удалении.
// Stable - у каждой созданной задачи постоянный слот, включая удалённые.
// Raw - номером служит id задачи.
const NumberingDense Numbering = "dense"
const NumberingStable Numbering = "stable"
const NumberingRaw Numbering = "raw"

func ParseNumbering(s string) (Numbering, error) {
	switch n := Numbering(strings.ToLower(strings.TrimSpace(s))); n {
	case NumberingDense, NumberingStable, NumberingRaw:
		return n, nil
	case "":
		return NumberingDense, nil
	default:
		return "", fmt.Errorf("неизвестный режим нумерации %q", s)
	}
}

// IncludeDeleted сообщает, занимают ли удалённые задачи номера в этом режиме
func (n Numbering) IncludeDeleted() bool {
	return n == NumberingStable
}
