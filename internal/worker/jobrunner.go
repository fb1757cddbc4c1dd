package worker

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/SMC-WikiControlService/internal/domain"
	"github.com/m04kA/SMC-WikiControlService/pkg/metrics"
)

// JobRunner воркер очереди отложенных рассылок
// Выполняет queued задачи и ретраит failed, пока не исчерпаны попытки
// Контракт at-least-once: упавшая между эмиссией и MarkAsDone задача
// при повторе эмитит окна заново
type JobRunner struct {
	repo        JobRepository
	broadcast   BroadcastService
	events      EventCreator
	logger      Logger
	metrics     *metrics.Metrics // nil, если метрики выключены
	interval    time.Duration
	maxAttempts int
	ctx         context.Context
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

// NewJobRunner создает новый экземпляр воркера очереди задач
func NewJobRunner(repo JobRepository, broadcast BroadcastService, events EventCreator, logger Logger, m *metrics.Metrics, interval time.Duration, maxAttempts int) *JobRunner {
	ctx, cancel := context.WithCancel(context.Background())

	return &JobRunner{
		repo:        repo,
		broadcast:   broadcast,
		events:      events,
		logger:      logger,
		metrics:     m,
		interval:    interval,
		maxAttempts: maxAttempts,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// Start запускает воркер в отдельной goroutine
func (r *JobRunner) Start() {
	r.logger.Info("Starting broadcast job runner (interval: %s, max attempts: %d)", r.interval, r.maxAttempts)

	r.wg.Add(1)
	go r.run()
}

// Stop останавливает воркер
func (r *JobRunner) Stop() {
	r.logger.Info("Stopping broadcast job runner")
	r.cancel()
	r.wg.Wait()
	r.logger.Info("Broadcast job runner stopped")
}

// run основной цикл обработки очереди
func (r *JobRunner) run() {
	defer r.wg.Done()

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.processQueuedJobs()

	for {
		select {
		case <-ticker.C:
			r.processQueuedJobs()
		case <-r.ctx.Done():
			return
		}
	}
}

// processQueuedJobs выполняет все готовые задачи очереди
func (r *JobRunner) processQueuedJobs() {
	ctx, cancel := context.WithTimeout(r.ctx, 10*time.Minute)
	defer cancel()

	jobs, err := r.repo.GetQueuedJobs(ctx, r.maxAttempts, 50)
	if err != nil {
		r.logger.Error("Failed to fetch queued jobs: %v", err)
		return
	}

	if len(jobs) == 0 {
		return
	}

	r.logger.Info("Processing %d queued broadcast jobs", len(jobs))

	for _, job := range jobs {
		select {
		case <-r.ctx.Done():
			r.logger.Info("Job runner stopped, aborting queue processing")
			return
		default:
		}

		r.ProcessJob(ctx, job)
	}
}

// ProcessJob выполняет одну задачу рассылки
func (r *JobRunner) ProcessJob(ctx context.Context, job *domain.BroadcastJob) {
	if err := r.repo.MarkAsRunning(ctx, job.ID); err != nil {
		r.logger.Error("Failed to mark job %d as running: %v", job.ID, err)
		return
	}

	r.logger.Info("Executing broadcast job %d (span: %s, attempt: %d)", job.ID, job.SpanID, job.Attempts+1)

	eventIDs, err := r.emit(ctx, job)
	if err != nil {
		r.logger.Error("Broadcast job %d failed: %v", job.ID, err)

		if markErr := r.repo.MarkAsFailed(ctx, job.ID, err.Error()); markErr != nil {
			r.logger.Error("Failed to mark job %d as failed: %v", job.ID, markErr)
		}
		r.observeJob("failed")

		return
	}

	if err := r.repo.MarkAsDone(ctx, job.ID); err != nil {
		r.logger.Error("Failed to mark job %d as done: %v", job.ID, err)
		return
	}

	r.observeJob("done")
	if r.metrics != nil {
		r.metrics.EventsEmittedTotal.WithLabelValues(string(job.Target.Type)).Add(float64(len(eventIDs)))
	}

	r.logger.Info("Broadcast job %d emitted %d events", job.ID, len(eventIDs))
}

// emit эмитит события задачи согласно её target'у
func (r *JobRunner) emit(ctx context.Context, job *domain.BroadcastJob) ([]int64, error) {
	// all_users планируется по текущему max(id), окна в задаче не хранятся
	if job.Target.Type == domain.TargetTypeAllUsers {
		return r.broadcast.EmitWindows(ctx, job.Kind, job.ActorID, job.Header, job.Content, job.URL, job.Icon)
	}

	// users и прочие типы - одно событие с сохранённым target'ом
	id, err := r.emitSingle(ctx, job)
	if err != nil {
		return nil, err
	}
	return []int64{id}, nil
}

func (r *JobRunner) emitSingle(ctx context.Context, job *domain.BroadcastJob) (int64, error) {
	event := &domain.Event{
		Type:    job.Kind,
		ActorID: job.ActorID,
		Target:  job.Target,
		Header:  job.Header,
		Content: job.Content,
		URL:     job.URL,
		Icon:    job.Icon,
		Status:  domain.EventStatusPending,
	}

	return r.events.Create(ctx, event)
}

func (r *JobRunner) observeJob(outcome string) {
	if r.metrics != nil {
		r.metrics.JobsProcessedTotal.WithLabelValues(outcome).Inc()
	}
}
