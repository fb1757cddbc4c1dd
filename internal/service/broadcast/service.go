package broadcast

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-WikiControlService/internal/config"
	"github.com/m04kA/SMC-WikiControlService/internal/domain"
	eventRepo "github.com/m04kA/SMC-WikiControlService/internal/infra/storage/event"
	jobRepo "github.com/m04kA/SMC-WikiControlService/internal/infra/storage/job"
	userRepo "github.com/m04kA/SMC-WikiControlService/internal/infra/storage/user"
	"github.com/m04kA/SMC-WikiControlService/internal/service/broadcast/models"
)

// Service диспетчер рассылок: валидирует запрос, выбирает стратегию
// и либо эмитит события сразу, либо ставит задачу в очередь
type Service struct {
	userRepo  UserRepository
	eventRepo EventRepository
	jobRepo   JobRepository
	planner   *Planner
	cfg       config.BroadcastConfig
}

// NewService создает новый экземпляр сервиса рассылок
func NewService(userRepo UserRepository, eventRepo EventRepository, jobRepo JobRepository, cfg config.BroadcastConfig) *Service {
	return &Service{
		userRepo:  userRepo,
		eventRepo: eventRepo,
		jobRepo:   jobRepo,
		planner:   NewPlanner(cfg.WindowSize),
		cfg:       cfg,
	}
}

// Send принимает запрос на рассылку и выполняет его согласно стратегии
//
// Порядок действий:
//  1. users - получатели разрешаются в id на сабмите, невалидные имена
//     возвращаются в FailedUsernames
//  2. scheduled_for в будущем - задача со статусом scheduled, эмиссия позже
//  3. all_users + deferred - задача queued, окна планирует воркер
//  4. иначе - события эмитятся до возврата из вызова
func (s *Service) Send(ctx context.Context, input *models.SendNotificationInput) (*models.SendNotificationResult, error) {
	if err := s.validate(input); err != nil {
		return nil, err
	}

	mode := s.resolveMode(input.Mode)

	target, failedUsernames, err := s.buildTarget(ctx, input)
	if err != nil {
		return nil, err
	}

	// Отложенная по времени рассылка всегда уходит в очередь
	if input.IsScheduled() {
		return s.enqueueJob(ctx, input, target, domain.JobStatusScheduled, mode, failedUsernames)
	}

	switch target.Type {
	case domain.TargetTypeUsers:
		// Список конкретных получателей - одно событие, эмиссия сразу
		id, err := s.emitEvent(ctx, input, target)
		if err != nil {
			return nil, err
		}
		return &models.SendNotificationResult{
			EventIDs:        []int64{id},
			Mode:            domain.DispatchModeSync,
			FailedUsernames: failedUsernames,
		}, nil

	case domain.TargetTypeAllUsers:
		if mode == domain.DispatchModeDeferred {
			return s.enqueueJob(ctx, input, target, domain.JobStatusQueued, mode, failedUsernames)
		}
		return s.emitAllUsers(ctx, input, failedUsernames)

	default:
		return nil, fmt.Errorf("%w: unknown target type %q", ErrInternal, target.Type)
	}
}

// EmitWindows планирует окна по текущему максимальному user id и эмитит
// по событию на окно. Используется и синхронной веткой Send, и JobRunner'ом
func (s *Service) EmitWindows(ctx context.Context, kind domain.BroadcastKind, actorID int64, header string, content, url, icon *string) ([]int64, error) {
	maxID, err := s.userRepo.MaxUserID(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: EmitWindows - get max user id: %v", ErrInternal, err)
	}

	windows := s.planner.Plan(maxID)
	eventIDs := make([]int64, 0, len(windows))

	for _, w := range windows {
		event := &domain.Event{
			Type:    kind,
			ActorID: actorID,
			Target:  domain.AllUsersTarget(w),
			Header:  header,
			Content: content,
			URL:     url,
			Icon:    icon,
			Status:  domain.EventStatusPending,
		}

		id, err := s.eventRepo.Create(ctx, event)
		if err != nil {
			return eventIDs, fmt.Errorf("%w: EmitWindows - create event for window [%d, %d]: %v", ErrInternal, w.StartID, w.EndID, err)
		}
		eventIDs = append(eventIDs, id)
	}

	return eventIDs, nil
}

// ListEvents получает список событий рассылки с фильтрацией
func (s *Service) ListEvents(ctx context.Context, filter models.ListEventsFilter) ([]*domain.Event, error) {
	events, err := s.eventRepo.List(ctx, eventRepo.ListFilter{
		Status:     filter.Status,
		Type:       filter.Kind,
		TargetType: filter.TargetType,
		ActorID:    filter.ActorID,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: ListEvents - repository error: %v", ErrInternal, err)
	}

	return events, nil
}

// GetJob получает задачу рассылки по ID
func (s *Service) GetJob(ctx context.Context, id int64) (*domain.BroadcastJob, error) {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, jobRepo.ErrJobNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, fmt.Errorf("%w: GetJob - repository error: %v", ErrInternal, err)
	}

	return job, nil
}

// CancelJob отменяет задачу рассылки, если она ещё не начала выполняться
func (s *Service) CancelJob(ctx context.Context, id int64) error {
	job, err := s.jobRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, jobRepo.ErrJobNotFound) {
			return ErrJobNotFound
		}
		return fmt.Errorf("%w: CancelJob - repository error: %v", ErrInternal, err)
	}

	if !job.CanBeCancelled() {
		return ErrCannotCancel
	}

	if err := s.jobRepo.Cancel(ctx, id); err != nil {
		if errors.Is(err, jobRepo.ErrJobNotFound) {
			// Задача успела перейти в running между проверкой и отменой
			return ErrCannotCancel
		}
		return fmt.Errorf("%w: CancelJob - repository error: %v", ErrInternal, err)
	}

	return nil
}

// validate проверяет корректность входных данных рассылки
func (s *Service) validate(input *models.SendNotificationInput) error {
	if !input.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidKind, input.Kind)
	}
	if input.Header == "" {
		return ErrEmptyHeader
	}
	if input.Mode != nil && !input.Mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, *input.Mode)
	}
	if input.Icon != nil && *input.Icon != "" && !s.iconAllowed(*input.Icon) {
		return fmt.Errorf("%w: %q", ErrInvalidIcon, *input.Icon)
	}

	return nil
}

func (s *Service) iconAllowed(icon string) bool {
	for _, allowed := range s.cfg.Icons {
		if icon == allowed {
			return true
		}
	}
	return false
}

// resolveMode возвращает стратегию из запроса или значение по умолчанию из конфига
func (s *Service) resolveMode(mode *domain.DispatchMode) domain.DispatchMode {
	if mode != nil {
		return *mode
	}
	return domain.DispatchMode(s.cfg.DefaultMode)
}

// buildTarget строит селектор аудитории из входных данных
// Для users имена разрешаются в id, ненайденные собираются в failed
func (s *Service) buildTarget(ctx context.Context, input *models.SendNotificationInput) (domain.Target, []string, error) {
	switch input.TargetType {
	case domain.TargetTypeUsers:
		recipients := make([]int64, 0, len(input.Recipients))
		failed := make([]string, 0)

		for _, name := range input.Recipients {
			user, err := s.userRepo.GetByName(ctx, name)
			if err != nil {
				if errors.Is(err, userRepo.ErrUserNotFound) {
					failed = append(failed, name)
					continue
				}
				return domain.Target{}, nil, fmt.Errorf("%w: buildTarget - get user %q: %v", ErrInternal, name, err)
			}
			recipients = append(recipients, user.ID)
		}

		if len(recipients) == 0 {
			return domain.Target{}, failed, ErrNoValidRecipients
		}

		return domain.UsersTarget(recipients), failed, nil

	case domain.TargetTypeAllUsers:
		// Окна планируются в момент эмиссии, селектор пока пустой по границам
		return domain.Target{Type: domain.TargetTypeAllUsers}, nil, nil

	default:
		return domain.Target{}, nil, fmt.Errorf("%w: unknown target type %q", ErrInternal, input.TargetType)
	}
}

// emitEvent создает одно событие рассылки
func (s *Service) emitEvent(ctx context.Context, input *models.SendNotificationInput, target domain.Target) (int64, error) {
	event := &domain.Event{
		Type:    input.Kind,
		ActorID: input.ActorID,
		Target:  target,
		Header:  input.Header,
		Content: input.Content,
		URL:     input.URL,
		Icon:    input.Icon,
		Status:  domain.EventStatusPending,
	}

	id, err := s.eventRepo.Create(ctx, event)
	if err != nil {
		return 0, fmt.Errorf("%w: emitEvent - repository error: %v", ErrInternal, err)
	}

	return id, nil
}

// emitAllUsers синхронно эмитит события по всем окнам фан-аута
func (s *Service) emitAllUsers(ctx context.Context, input *models.SendNotificationInput, failedUsernames []string) (*models.SendNotificationResult, error) {
	eventIDs, err := s.EmitWindows(ctx, input.Kind, input.ActorID, input.Header, input.Content, input.URL, input.Icon)
	if err != nil {
		return nil, err
	}

	return &models.SendNotificationResult{
		EventIDs:        eventIDs,
		Mode:            domain.DispatchModeSync,
		WindowCount:     len(eventIDs),
		FailedUsernames: failedUsernames,
	}, nil
}

// enqueueJob ставит задачу рассылки в очередь
func (s *Service) enqueueJob(ctx context.Context, input *models.SendNotificationInput, target domain.Target, status domain.JobStatus, mode domain.DispatchMode, failedUsernames []string) (*models.SendNotificationResult, error) {
	spanID := uuid.New().String()

	job := &domain.BroadcastJob{
		SpanID:  spanID,
		Kind:    input.Kind,
		ActorID: input.ActorID,
		Target:  target,
		Header:  input.Header,
		Content: input.Content,
		URL:     input.URL,
		Icon:    input.Icon,
		Status:  status,
		RunAt:   input.ScheduledFor,
	}

	id, err := s.jobRepo.Create(ctx, job)
	if err != nil {
		return nil, fmt.Errorf("%w: enqueueJob - repository error: %v", ErrInternal, err)
	}
	job.ID = id

	return &models.SendNotificationResult{
		JobID:           &id,
		SpanID:          &spanID,
		Job:             job,
		Mode:            mode,
		FailedUsernames: failedUsernames,
	}, nil
}
