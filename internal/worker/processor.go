package worker

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-WikiControlService/internal/domain"
	"github.com/m04kA/SMC-WikiControlService/pkg/metrics"
)

// Processor воркер доставки pending событий
// Забирает события батчами и разворачивает каждое в персональные уведомления
type Processor struct {
	repo     EventRepository
	delivery DeliveryService
	logger   Logger
	metrics  *metrics.Metrics // nil, если метрики выключены
	interval time.Duration    // Интервал опроса БД (по умолчанию 30 секунд)
	batch    int              // Количество событий за один опрос
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewProcessor создает новый экземпляр воркера доставки
func NewProcessor(repo EventRepository, delivery DeliveryService, logger Logger, m *metrics.Metrics, interval time.Duration, batch int) *Processor {
	ctx, cancel := context.WithCancel(context.Background())

	return &Processor{
		repo:     repo,
		delivery: delivery,
		logger:   logger,
		metrics:  m,
		interval: interval,
		batch:    batch,
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Start запускает воркер в отдельной goroutine
func (p *Processor) Start() {
	p.logger.Info("Starting delivery processor (interval: %s, batch size: %d)", p.interval, p.batch)

	p.wg.Add(1)
	go p.run()
}

// Stop останавливает воркер
func (p *Processor) Stop() {
	p.logger.Info("Stopping delivery processor")
	p.cancel()
	p.wg.Wait()
	p.logger.Info("Delivery processor stopped")
}

// run основной цикл обработки pending событий
func (p *Processor) run() {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	// Первый запуск сразу (не ждём первого тика)
	p.processPendingEvents()

	for {
		select {
		case <-ticker.C:
			p.processPendingEvents()
		case <-p.ctx.Done():
			return
		}
	}
}

// processPendingEvents обрабатывает батч pending событий
func (p *Processor) processPendingEvents() {
	ctx, cancel := context.WithTimeout(p.ctx, 5*time.Minute)
	defer cancel()

	events, err := p.repo.GetPendingEvents(ctx, p.batch)
	if err != nil {
		p.logger.Error("Failed to fetch pending events: %v", err)
		return
	}

	if len(events) == 0 {
		return
	}

	p.logger.Info("Processing %d pending events", len(events))

	for _, event := range events {
		select {
		case <-p.ctx.Done():
			p.logger.Info("Processor stopped, aborting event processing")
			return
		default:
		}

		p.processEvent(ctx, event)
	}
}

// processEvent доставляет одно событие
func (p *Processor) processEvent(ctx context.Context, event *domain.Event) {
	created, err := p.delivery.Deliver(ctx, event)
	if err != nil {
		p.logger.Error("Failed to deliver event %d: %v", event.ID, err)

		if markErr := p.repo.MarkAsFailed(ctx, event.ID, err.Error(), true); markErr != nil {
			p.logger.Error("Failed to mark event %d as failed: %v", event.ID, markErr)
		}
		if p.metrics != nil {
			p.metrics.EventsFailedTotal.WithLabelValues(string(event.Target.Type)).Inc()
		}

		return
	}

	if err := p.repo.MarkAsDelivered(ctx, event.ID, time.Now()); err != nil {
		p.logger.Error("Failed to mark event %d as delivered: %v", event.ID, err)
		return
	}

	if p.metrics != nil {
		p.metrics.EventsDeliveredTotal.WithLabelValues(string(event.Target.Type)).Inc()
		p.metrics.DeliveriesCreatedTotal.WithLabelValues("web").Add(float64(created))
	}

	p.logger.Info("Delivered event %d to %d recipients", event.ID, created)
}
