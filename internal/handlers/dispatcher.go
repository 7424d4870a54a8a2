package handlers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"todoBot/internal/logger"
	"todoBot/internal/service"

	"go.uber.org/zap"
)

// Reply - ответ бота на одну команду. Code пустой при успехе
type Reply struct {
	Text string
	Code string
}

type Dispatcher struct {
	Service Service
}

func NewDispatcher(svc Service) Dispatcher {
	return Dispatcher{Service: svc}
}

// normalizeCommand убирает ведущий "/", суффикс "@botname" и приводит к нижнему регистру
func normalizeCommand(command string) string {
	cmd := strings.TrimPrefix(strings.TrimSpace(command), "/")
	if i := strings.IndexByte(cmd, '@'); i >= 0 {
		cmd = cmd[:i]
	}
	return strings.ToLower(cmd)
}

func (d *Dispatcher) Handle(ctx context.Context, userID, command string, args []string) Reply {
	cmd := normalizeCommand(command)

	logger.Log(zap.DebugLevel, "Dispatcher: команда",
		zap.String("user_id", userID),
		zap.String("command", cmd),
		zap.Int("args", len(args)),
	)

	switch cmd {
	case "start", "help":
		return Reply{Text: helpText}
	case "add":
		return d.add(ctx, userID, args)
	case "list":
		return d.list(ctx, userID)
	case "active":
		return d.active(ctx, userID)
	case "done":
		return d.done(ctx, userID, args)
	case "undo":
		return d.undo(ctx, userID, args)
	case "del":
		return d.remove(ctx, userID, args)
	case "clear", "clear_completed", "clear_done":
		return d.clear(ctx, userID)
	default:
		return Reply{Text: "🤷 Неизвестная команда\n\n" + helpText}
	}
}

func usage(text string) Reply {
	return Reply{Text: "Использование: " + text, Code: service.CodeInvalidInput}
}

func (d *Dispatcher) add(ctx context.Context, userID string, args []string) Reply {
	text := strings.TrimSpace(strings.Join(args, " "))
	if text == "" {
		return usage("/add купить хлеб")
	}

	entry, err := d.Service.AddTask(ctx, userID, text)
	if err != nil {
		return d.errorReply(userID, "add", err)
	}
	return Reply{Text: fmt.Sprintf("✅ Задача %d добавлена", entry.Position)}
}

func (d *Dispatcher) list(ctx context.Context, userID string) Reply {
	entries, err := d.Service.ListTasks(ctx, userID)
	if err != nil {
		return d.errorReply(userID, "list", err)
	}
	if len(entries) == 0 {
		return Reply{Text: "📭 Список задач пуст"}
	}
	return Reply{Text: renderList("📋 Ваши задачи:", entries)}
}

func (d *Dispatcher) active(ctx context.Context, userID string) Reply {
	entries, err := d.Service.ActiveTasks(ctx, userID)
	if err != nil {
		return d.errorReply(userID, "active", err)
	}
	if len(entries) == 0 {
		return Reply{Text: "🎉 Активных задач нет"}
	}
	return Reply{Text: renderList("⏳ Активные задачи:", entries)}
}

func (d *Dispatcher) done(ctx context.Context, userID string, args []string) Reply {
	if len(args) == 0 {
		return usage("/done 1")
	}

	out, err := d.Service.CompleteTask(ctx, userID, args[0])
	if err != nil {
		return d.errorReply(userID, "done", err)
	}

	switch {
	case out.Deleted:
		return Reply{Text: fmt.Sprintf("⚠️ Задача %d удалена, отмечать нечего", out.Position)}
	case !out.Changed:
		return Reply{Text: fmt.Sprintf("ℹ️ Задача %d уже выполнена", out.Position)}
	default:
		return Reply{Text: fmt.Sprintf("✅ Задача %d выполнена!", out.Position)}
	}
}

func (d *Dispatcher) undo(ctx context.Context, userID string, args []string) Reply {
	if len(args) == 0 {
		return usage("/undo 1")
	}

	out, err := d.Service.UndoTask(ctx, userID, args[0])
	if err != nil {
		return d.errorReply(userID, "undo", err)
	}

	switch {
	case out.Deleted:
		return Reply{Text: fmt.Sprintf("⚠️ Задача %d удалена, возвращать нечего", out.Position)}
	case !out.Changed:
		return Reply{Text: fmt.Sprintf("ℹ️ Задача %d и так не выполнена", out.Position)}
	default:
		return Reply{Text: fmt.Sprintf("↩️ Задача %d снова в работе", out.Position)}
	}
}

func (d *Dispatcher) remove(ctx context.Context, userID string, args []string) Reply {
	if len(args) == 0 {
		return usage("/del 1")
	}

	out, err := d.Service.RemoveTask(ctx, userID, args[0])
	if err != nil {
		return d.errorReply(userID, "del", err)
	}

	if !out.Changed {
		return Reply{Text: fmt.Sprintf("ℹ️ Задача %d уже удалена", out.Position)}
	}
	return Reply{Text: fmt.Sprintf("🗑 Задача %d удалена", out.Position)}
}

func (d *Dispatcher) clear(ctx context.Context, userID string) Reply {
	summary, err := d.Service.ClearTasks(ctx, userID)
	if err != nil {
		return d.errorReply(userID, "clear", err)
	}
	if summary.Total == 0 {
		return Reply{Text: "📭 Очищать нечего"}
	}
	return Reply{Text: fmt.Sprintf("🧹 Список очищен: выполнено %d, удалено %d, всего %d",
		summary.Completed, summary.Deleted, summary.Total)}
}

func detail(be *service.BusinessError, key string) string {
	if v, ok := be.Details[key]; ok {
		return fmt.Sprint(v)
	}
	return ""
}

func (d *Dispatcher) errorReply(userID, command string, err error) Reply {
	var be *service.BusinessError
	if !errors.As(err, &be) {
		logger.Error("Dispatcher: неожиданная ошибка", err,
			zap.String("user_id", userID),
			zap.String("command", command),
		)
		return Reply{Text: "🔧 Хранилище временно недоступно, попробуйте позже", Code: service.CodeStorageUnavailable}
	}

	switch be.Code {
	case service.CodeInvalidInput:
		if detail(be, "field") == "text" {
			return Reply{Text: "⚠️ Текст задачи не может быть пустым", Code: be.Code}
		}
		return Reply{Text: "⚠️ Номер задачи должен быть положительным числом", Code: be.Code}
	case service.CodeNotFound:
		return Reply{Text: fmt.Sprintf("❌ Задача %s не найдена", detail(be, "ref")), Code: be.Code}
	case service.CodePrecondition:
		return Reply{Text: "⛔ Нельзя очистить список: есть невыполненные задачи", Code: be.Code}
	default:
		logger.Error("Dispatcher: хранилище недоступно", err,
			zap.String("user_id", userID),
			zap.String("command", command),
		)
		return Reply{Text: "🔧 Хранилище временно недоступно, попробуйте позже", Code: service.CodeStorageUnavailable}
	}
}
