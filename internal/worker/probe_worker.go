package worker

import (
	"context"
	"sync/atomic"
	"time"
	"todoBot/internal/logger"

	"go.uber.org/zap"
)

type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// ProbeWorker периодически проверяет хранилище и пишет в лог смену его состояния
type ProbeWorker struct {
	store    Pinger
	interval time.Duration
	timeout  time.Duration

	healthy  atomic.Bool
	failures atomic.Int64
	downAt   time.Time
}

func NewProbeWorker(store Pinger, interval *time.Duration) *ProbeWorker {
	intervalToSet := 30 * time.Second
	if interval != nil && *interval > 0 {
		intervalToSet = *interval
	}

	w := &ProbeWorker{
		store:    store,
		interval: intervalToSet,
		timeout:  min(intervalToSet, 5*time.Second),
	}
	w.healthy.Store(true)
	return w
}

func (w *ProbeWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	logger.Info("Worker: Проверка хранилища запущена", zap.Duration("interval", w.interval))

	for {
		select {
		case <-ticker.C:
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: Проверка хранилища останавливается")
			return
		}
	}
}

// Check делает одну проверку и возвращает, доступно ли хранилище
func (w *ProbeWorker) Check(ctx context.Context) bool {
	start := time.Now()

	probeCtx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()

	err := w.store.HealthCheck(probeCtx)
	if err != nil {
		failures := w.failures.Add(1)
		if w.healthy.Swap(false) {
			w.downAt = start
			logger.Error("Worker: Хранилище недоступно", err, zap.Duration("ms", time.Since(start)))
		} else {
			logger.Warn("Worker: Хранилище всё ещё недоступно",
				zap.Error(err),
				zap.Int64("failures", failures),
				zap.Duration("down_for", time.Since(w.downAt)))
		}
		return false
	}

	if !w.healthy.Swap(true) {
		logger.Info("Worker: Хранилище снова доступно",
			zap.Int64("failures", w.failures.Swap(0)),
			zap.Duration("down_for", time.Since(w.downAt)))
	}
	return true
}
