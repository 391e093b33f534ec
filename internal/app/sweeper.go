package app

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// StatusReconciler persists derived subscription statuses and reports how many changed.
type StatusReconciler interface {
	Reconcile(ctx context.Context) (int, error)
}

// Sweeper периодически пересчитывает статусы абонементов
type Sweeper struct {
	reconciler StatusReconciler
	interval   time.Duration
	logger     *zap.Logger
	stopChan   chan struct{}
	startOnce  sync.Once
	stopOnce   sync.Once
	done       chan struct{}
}

// NewSweeper создаёт фоновую задачу; interval 0 отключает её
func NewSweeper(reconciler StatusReconciler, interval time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		reconciler: reconciler,
		interval:   interval,
		logger:     logger,
		stopChan:   make(chan struct{}),
		done:       make(chan struct{}),
	}
}

// Start запускает фоновую задачу. Повторный вызов и вызов после Stop ничего не делают.
func (s *Sweeper) Start(ctx context.Context) {
	s.startOnce.Do(func() {
		if s.interval <= 0 {
			s.logger.Info("Status sweep disabled")
			close(s.done)
			return
		}

		s.logger.Info("Starting status sweep", zap.Duration("interval", s.interval))
		go s.run(ctx)
	})
}

// Stop останавливает задачу и ждёт завершения текущего прохода
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopChan)
	})
	// Задача не запускалась
	s.startOnce.Do(func() {
		close(s.done)
	})
	<-s.done
}

func (s *Sweeper) run(ctx context.Context) {
	defer close(s.done)

	// Первый запуск сразу при старте
	s.sweep(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.sweep(ctx)
		case <-s.stopChan:
			s.logger.Info("Status sweep stopped")
			return
		case <-ctx.Done():
			s.logger.Info("Status sweep cancelled")
			return
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	changed, err := s.reconciler.Reconcile(ctx)
	if err != nil {
		s.logger.Error("Status sweep failed", zap.Error(err), zap.Int("changed", changed))
		return
	}
	s.logger.Info("Status sweep completed", zap.Int("changed", changed))
}
