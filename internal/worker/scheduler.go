package worker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/m04kA/SMC-WikiControlService/internal/domain"
)

// Scheduler планировщик отложенных по времени рассылок
// В момент run_at переводит задачу в queued, дальше её подхватывает JobRunner
type Scheduler struct {
	repo      JobRepository
	logger    Logger
	scheduler *gocron.Scheduler
	jobs      map[int64]*gocron.Job // broadcast job id -> gocron job
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
}

// NewScheduler создает новый экземпляр планировщика
func NewScheduler(repo JobRepository, logger Logger) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		repo:      repo,
		logger:    logger,
		scheduler: gocron.NewScheduler(time.UTC),
		jobs:      make(map[int64]*gocron.Job),
		ctx:       ctx,
		cancel:    cancel,
	}
}

// Start запускает планировщик
func (s *Scheduler) Start() {
	s.logger.Info("Starting broadcast scheduler")
	s.scheduler.StartAsync()
}

// Stop останавливает планировщик
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping broadcast scheduler")
	s.cancel()
	s.scheduler.Stop()
	s.logger.Info("Broadcast scheduler stopped")
}

// LoadScheduledJobs загружает отложенные задачи из БД при старте
// Без этого перезапуск сервиса терял бы запланированные рассылки
func (s *Scheduler) LoadScheduledJobs(ctx context.Context) error {
	s.logger.Info("Loading scheduled broadcast jobs from database")

	jobs, err := s.repo.GetScheduledJobs(ctx)
	if err != nil {
		return fmt.Errorf("failed to load scheduled jobs: %w", err)
	}

	for _, job := range jobs {
		if err := s.ScheduleJob(job); err != nil {
			s.logger.Error("Failed to schedule job %d: %v", job.ID, err)
			continue
		}
	}

	s.logger.Info("Loaded %d scheduled broadcast jobs", len(jobs))
	return nil
}

// ScheduleJob планирует перевод задачи в очередь на время run_at
// Просроченный run_at означает немедленный запуск
func (s *Scheduler) ScheduleJob(job *domain.BroadcastJob) error {
	if job.RunAt == nil {
		return fmt.Errorf("job %d has no run_at time", job.ID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.ID]; exists {
		s.logger.Warn("Job %d is already scheduled", job.ID)
		return nil
	}

	runAt := *job.RunAt
	if runAt.Before(time.Now()) {
		runAt = time.Now().Add(time.Second)
	}

	gcJob, err := s.scheduler.Every(1).StartAt(runAt).LimitRunsTo(1).Do(
		s.promoteJob,
		job.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to schedule job %d: %w", job.ID, err)
	}

	s.jobs[job.ID] = gcJob
	s.logger.Info("Scheduled broadcast job %d for %s", job.ID, job.RunAt.Format(time.RFC3339))

	return nil
}

// CancelJob убирает задачу из планировщика
func (s *Scheduler) CancelJob(jobID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	gcJob, exists := s.jobs[jobID]
	if !exists {
		return
	}

	s.scheduler.RemoveByReference(gcJob)
	delete(s.jobs, jobID)

	s.logger.Info("Removed broadcast job %d from scheduler", jobID)
}

// promoteJob переводит задачу в queued в момент run_at
// Вызывается планировщиком gocron
func (s *Scheduler) promoteJob(jobID int64) {
	ctx, cancel := context.WithTimeout(s.ctx, 30*time.Second)
	defer cancel()

	job, err := s.repo.GetByID(ctx, jobID)
	if err != nil {
		s.logger.Error("Failed to fetch job %d: %v", jobID, err)
		s.removeJob(jobID)
		return
	}

	// Задача могла быть отменена, пока ждала своего времени
	if job.Status != domain.JobStatusScheduled {
		s.logger.Warn("Job %d is no longer scheduled (current status: %s)", jobID, job.Status)
		s.removeJob(jobID)
		return
	}

	if err := s.repo.UpdateStatus(ctx, jobID, domain.JobStatusQueued); err != nil {
		s.logger.Error("Failed to queue job %d: %v", jobID, err)
		return
	}

	s.logger.Info("Broadcast job %d moved to queue", jobID)
	s.removeJob(jobID)
}

// removeJob удаляет задачу из внутреннего реестра (не из gocron)
func (s *Scheduler) removeJob(jobID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.jobs, jobID)
}
