package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"
	"todoBot/internal/config"
	"todoBot/internal/handlers"
	"todoBot/internal/logger"
	"todoBot/internal/middleware"
	"todoBot/internal/service"
	"todoBot/internal/worker"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/sourcegraph/conc"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

type App struct {
	config     *config.Config
	server     *http.Server
	router     *chi.Mux
	repository Repository
	service    *service.TaskService
	dispatcher handlers.Dispatcher
	probe      *worker.ProbeWorker
	shutdowns  []func() // функции для graceful shutdown, вызываются в обратном порядке
}

func New(cfg *config.Config) *App {
	return &App{
		config:    cfg,
		shutdowns: make([]func(), 0),
	}
}

// Init поднимает логгер, хранилище, сервис и HTTP-сервер
func (a *App) Init(ctx context.Context) error {
	if err := logger.Init(a.config.Logging.Development); err != nil {
		return fmt.Errorf("инициализация логгера: %w", err)
	}
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Завершение работы логгирования...")
		logger.Sync()
	})

	if err := a.InitCore(ctx); err != nil {
		return err
	}

	interval := a.config.Probe.Interval
	a.probe = worker.NewProbeWorker(a.repository, &interval)

	a.router = a.newRouter()
	a.server = &http.Server{
		Addr:         a.config.GetServerAddr(),
		Handler:      otelhttp.NewHandler(a.router, "todobot"),
		ReadTimeout:  a.config.Server.ReadTimeout,
		WriteTimeout: a.config.Server.WriteTimeout,
	}
	return nil
}

// InitCore поднимает только хранилище и сервис, без HTTP
func (a *App) InitCore(ctx context.Context) error {
	repo, err := OpenRepository(ctx, a.config)
	if err != nil {
		return fmt.Errorf("инициализация хранилища: %w", err)
	}
	a.repository = repo
	a.shutdowns = append(a.shutdowns, func() {
		logger.Info("Закрытие хранилища...")
		repo.Close()
	})

	svc := service.NewTaskService(repo, a.config.NumberingMode())
	a.service = &svc
	a.dispatcher = handlers.NewDispatcher(a.service)

	logger.Info("Приложение инициализировано",
		zap.String("repository", a.config.Repository.Type),
		zap.String("numbering", string(a.service.Numbering)))
	return nil
}

func (a *App) newRouter() *chi.Mux {
	commands := handlers.NewCommandHandler(a.service)

	r := chi.NewRouter()
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "X-Request-ID", middleware.UserIDHeader},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Remaining", "X-RateLimit-Reset"},
		MaxAge:         300,
	}))
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)

	r.Get("/health", commands.HealthCheck)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimit(a.config.RateLimit.RPM))
		r.Post("/commands", commands.PostCommand) // POST /commands
	})

	return r
}

func (a *App) Dispatcher() *handlers.Dispatcher {
	return &a.dispatcher
}

func (a *App) Handler() http.Handler {
	return a.server.Handler
}

// Run блокируется до отмены ctx или падения сервера, затем останавливает всё
func (a *App) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	serveErr := make(chan error, 1)

	var wg conc.WaitGroup
	wg.Go(func() {
		logger.Info("HTTP: Сервер запущен", zap.String("addr", a.server.Addr))
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("HTTP-сервер: %w", err)
			cancel()
		}
	})
	wg.Go(func() {
		a.probe.Start(ctx)
	})

	<-ctx.Done()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), a.config.Server.ShutdownTimeout)
	defer shutdownCancel()
	shutdownErr := a.Shutdown(shutdownCtx)

	wg.Wait()
	a.runShutdowns()

	select {
	case err := <-serveErr:
		return err
	default:
		return shutdownErr
	}
}

func (a *App) Shutdown(ctx context.Context) error {
	start := time.Now()
	logger.Info("HTTP: Остановка сервера...")

	if err := a.server.Shutdown(ctx); err != nil {
		logger.Error("HTTP: Ошибка остановки сервера", err)
		return fmt.Errorf("остановка сервера: %w", err)
	}

	logger.Info("HTTP: Сервер остановлен", zap.Duration("ms", time.Since(start)))
	return nil
}

// Close освобождает ресурсы, когда Run не вызывался
func (a *App) Close() {
	a.runShutdowns()
}

func (a *App) runShutdowns() {
	for i := len(a.shutdowns) - 1; i >= 0; i-- {
		a.shutdowns[i]()
	}
	a.shutdowns = nil
}
