package handlers

import (
	"encoding/json"
	"net/http"
	"time"
	"todoBot/internal/handlers/dto"
	"todoBot/internal/logger"

	"go.uber.org/zap"
)

const maxBodyBytes = 64 << 10

type CommandHandler struct {
	Service    Service
	Dispatcher Dispatcher
}

func NewCommandHandler(svc Service) CommandHandler {
	return CommandHandler{
		Service:    svc,
		Dispatcher: NewDispatcher(svc),
	}
}

func (h *CommandHandler) PostCommand(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	if !checkContentType(r, "application/json") {

		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return
	}

	var request dto.CommandRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&request); err != nil {

		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return
	}

	if request.UserID == "" {

		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "user_id"),
			zap.String("error", "empty_field"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "user_id не может быть пустым")
		return
	}

	command, args := request.Split()
	if command == "" {

		logger.Warn("HTTP: Ошибка валидации",
			zap.String("field", "command"),
			zap.String("error", "empty_field"),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "команда не может быть пустой")
		return
	}

	reply := h.Dispatcher.Handle(r.Context(), string(request.UserID), command, args)
	status := mapCodeToHTTP(reply.Code)

	logger.Info("HTTP_OUT: Команда обработана",
		zap.String("command", command),
		zap.String("code", reply.Code),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", status))

	writeJSON(w, status, dto.CommandResponse{Reply: reply.Text, Code: reply.Code})
}

func (h *CommandHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	logger.HttpRequestInfo(r, "HTTP: Health check")

	if err := h.Service.HealthCheck(r.Context()); err != nil {
		logger.Warn("HTTP: Хранилище недоступно", zap.Error(err))
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("service", "todo-bot"),
			toPayload("status", "unavailable"),
		)
		return
	}

	responseWithJSON(w, http.StatusOK,
		toPayload("service", "todo-bot"),
		toPayload("status", "ok"),
	)
}
