package handlers

import (
	"fmt"
	"strings"
	"todoBot/internal/models/task"
)

const helpText = "👋 Привет! Я todo-бот.\n" +
	"Команды:\n" +
	"/add <текст> - добавить задачу\n" +
	"/list - все задачи\n" +
	"/active - активные задачи\n" +
	"/done <номер> - отметить выполненной\n" +
	"/undo <номер> - вернуть в работу\n" +
	"/del <номер> - удалить задачу\n" +
	"/clear - очистить список, когда всё сделано"

func statusGlyph(t *task.Task) string {
	switch {
	case t.Deleted:
		return "🗑"
	case t.Completed:
		return "✅"
	default:
		return "⏳"
	}
}

func renderList(title string, entries []task.Entry) string {
	var b strings.Builder
	b.WriteString(title)
	b.WriteString("\n")
	for _, e := range entries {
		fmt.Fprintf(&b, "%d. %s %s\n", e.Position, statusGlyph(e.Task), e.Task.Text)
	}
	return strings.TrimRight(b.String(), "\n")
}
