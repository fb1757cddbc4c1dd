package tasks

import (
	"context"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/m04kA/SMC-WikiControlService/internal/config"
	"github.com/m04kA/SMC-WikiControlService/internal/domain"
	userRepo "github.com/m04kA/SMC-WikiControlService/internal/infra/storage/user"
	"github.com/m04kA/SMC-WikiControlService/internal/service/tasks/models"
	"github.com/m04kA/SMC-WikiControlService/pkg/logger"
	"github.com/m04kA/SMC-WikiControlService/pkg/ptr"
)

// AnonymizedEmail адрес, подставляемый анонимизированным аккаунтам
const AnonymizedEmail = "fake@email.com"

// WarnEmailAlreadySet текст предупреждения, когда email уже установлен
const WarnEmailAlreadySet = "указанный email уже установлен у пользователя"

// Service выполняет привилегированные задачи обслуживания аккаунтов
// Каждая задача кроме purge_cache пишется в журнал аудита
type Service struct {
	userRepo  UserRepository
	sessions  SessionStore // nil, если хранилище сессий не подключено
	cdnClient CDNClient
	auditRepo AuditRepository
	txManager TxManager
	cfg       config.TasksConfig
	logger    *logger.Logger
}

// NewService создает новый экземпляр сервиса задач
func NewService(userRepo UserRepository, sessions SessionStore, cdnClient CDNClient, auditRepo AuditRepository, txManager TxManager, cfg config.TasksConfig, log *logger.Logger) *Service {
	return &Service{
		userRepo:  userRepo,
		sessions:  sessions,
		cdnClient: cdnClient,
		auditRepo: auditRepo,
		txManager: txManager,
		cfg:       cfg,
		logger:    log,
	}
}

// Run выполняет задачу обслуживания
// Задачи над собственным аккаунтом оператора отклоняются
func (s *Service) Run(ctx context.Context, input *models.RunTaskInput) (*models.TaskResult, error) {
	if !input.Task.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnknownTask, input.Task)
	}

	switch input.Task {
	case models.TaskChangeEmail:
		return s.changeEmail(ctx, input)
	case models.TaskChangePassword:
		return s.changePassword(ctx, input)
	case models.TaskReassignEdits:
		return s.reassignEdits(ctx, input)
	case models.TaskAnonymize:
		return s.anonymize(ctx, input)
	case models.TaskPurgeCache:
		return s.purgeCache(ctx, input)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownTask, input.Task)
	}
}

// changeEmail устанавливает новый email и помечает его подтверждённым
// Совпадающий email - не ошибка, задача завершается с предупреждением
func (s *Service) changeEmail(ctx context.Context, input *models.RunTaskInput) (*models.TaskResult, error) {
	if input.Email == "" {
		return nil, fmt.Errorf("%w: email is required", ErrInvalidInput)
	}

	target, err := s.targetUser(ctx, input.Username, input.ActorID)
	if err != nil {
		return nil, err
	}

	result := &models.TaskResult{Task: input.Task}

	if target.Email == input.Email {
		result.Warning = ptr.Ptr(WarnEmailAlreadySet)
		return result, nil
	}

	if err := s.userRepo.UpdateEmail(ctx, target.ID, input.Email, time.Now()); err != nil {
		return nil, fmt.Errorf("%w: changeEmail - update email: %v", ErrInternal, err)
	}

	s.audit(ctx, input.ActorID, domain.AuditActionChangeEmail, target.ID, input.Comment, domain.AuditDetails{
		"username": target.Name,
	})

	return result, nil
}

// changePassword задаёт новый пароль и завершает активные сессии пользователя
func (s *Service) changePassword(ctx context.Context, input *models.RunTaskInput) (*models.TaskResult, error) {
	if input.Password == "" {
		return nil, fmt.Errorf("%w: password is required", ErrInvalidInput)
	}
	if utf8.RuneCountInString(input.Password) < s.cfg.MinPasswordLength {
		return nil, fmt.Errorf("%w: minimum length is %d", ErrPasswordTooWeak, s.cfg.MinPasswordLength)
	}

	target, err := s.targetUser(ctx, input.Username, input.ActorID)
	if err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("%w: changePassword - hash password: %v", ErrInternal, err)
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, target.ID, string(hash)); err != nil {
		return nil, fmt.Errorf("%w: changePassword - update password: %v", ErrInternal, err)
	}

	ended := s.invalidateSessions(ctx, target.ID)

	s.audit(ctx, input.ActorID, domain.AuditActionChangePassword, target.ID, input.Comment, domain.AuditDetails{
		"username":       target.Name,
		"sessions_ended": ended,
	})

	return &models.TaskResult{Task: input.Task, SessionsEnded: ended}, nil
}

// reassignEdits переносит правки одного пользователя на другого
// Перенос и пересчёт счётчиков выполняются в одной транзакции
func (s *Service) reassignEdits(ctx context.Context, input *models.RunTaskInput) (*models.TaskResult, error) {
	if input.ToUsername == "" {
		return nil, fmt.Errorf("%w: destination username is required", ErrInvalidInput)
	}
	if input.Username == input.ToUsername {
		return nil, fmt.Errorf("%w: source and destination are the same user", ErrInvalidInput)
	}

	from, err := s.targetUser(ctx, input.Username, input.ActorID)
	if err != nil {
		return nil, err
	}
	to, err := s.targetUser(ctx, input.ToUsername, input.ActorID)
	if err != nil {
		return nil, err
	}

	var moved int64
	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		moved, err = s.userRepo.ReassignEdits(ctx, from.ID, to.ID)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: reassignEdits - transaction failed: %v", ErrInternal, err)
	}

	s.audit(ctx, input.ActorID, domain.AuditActionReassignEdits, from.ID, input.Comment, domain.AuditDetails{
		"from_username": from.Name,
		"to_username":   to.Name,
		"moved_edits":   moved,
	})

	return &models.TaskResult{Task: input.Task, AffectedRows: moved}, nil
}

// anonymize обезличивает аккаунт: подставной email, пустое настоящее имя,
// сброшенный пароль и новое имя вида "Anonymous <uuid>"
func (s *Service) anonymize(ctx context.Context, input *models.RunTaskInput) (*models.TaskResult, error) {
	target, err := s.targetUser(ctx, input.Username, input.ActorID)
	if err != nil {
		return nil, err
	}

	newName := fmt.Sprintf("Anonymous %s", uuid.New().String())

	err = s.txManager.Do(ctx, func(ctx context.Context) error {
		if err := s.userRepo.UpdateEmail(ctx, target.ID, AnonymizedEmail, time.Now()); err != nil {
			return fmt.Errorf("update email: %w", err)
		}
		if err := s.userRepo.SetRealName(ctx, target.ID, ""); err != nil {
			return fmt.Errorf("blank real name: %w", err)
		}
		// Пустой хэш делает вход по паролю невозможным
		if err := s.userRepo.UpdatePasswordHash(ctx, target.ID, ""); err != nil {
			return fmt.Errorf("reset password: %w", err)
		}
		if err := s.userRepo.Rename(ctx, target.ID, newName); err != nil {
			return fmt.Errorf("rename: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: anonymize - transaction failed: %v", ErrInternal, err)
	}

	ended := s.invalidateSessions(ctx, target.ID)

	s.audit(ctx, input.ActorID, domain.AuditActionAnonymize, target.ID, input.Comment, domain.AuditDetails{
		"old_username":   target.Name,
		"new_username":   newName,
		"sessions_ended": ended,
	})

	return &models.TaskResult{
		Task:          input.Task,
		NewUsername:   &newName,
		SessionsEnded: ended,
	}, nil
}

// purgeCache сбрасывает кэш страниц на CDN
// Задача не затрагивает аккаунты и в журнал аудита не пишется
func (s *Service) purgeCache(ctx context.Context, input *models.RunTaskInput) (*models.TaskResult, error) {
	if len(input.URLs) == 0 {
		return nil, fmt.Errorf("%w: at least one url is required", ErrInvalidInput)
	}

	purged, err := s.cdnClient.PurgeURLs(ctx, input.URLs)
	if err != nil {
		return nil, fmt.Errorf("%w: purgeCache - cdn error: %v", ErrInternal, err)
	}

	return &models.TaskResult{Task: input.Task, AffectedRows: int64(purged)}, nil
}

// targetUser находит целевого пользователя и отклоняет задачи над самим собой
func (s *Service) targetUser(ctx context.Context, username string, actorID int64) (*domain.User, error) {
	if username == "" {
		return nil, fmt.Errorf("%w: username is required", ErrInvalidInput)
	}

	user, err := s.userRepo.GetByName(ctx, username)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: targetUser - get user %q: %v", ErrInternal, username, err)
	}

	if user.ID == actorID {
		return nil, ErrSelfTarget
	}

	return user, nil
}

// invalidateSessions завершает сессии пользователя, если хранилище подключено
// Ошибки Redis не валят задачу, пароль или данные уже изменены
func (s *Service) invalidateSessions(ctx context.Context, userID int64) int64 {
	if s.sessions == nil {
		return 0
	}

	ended, err := s.sessions.InvalidateUser(ctx, userID)
	if err != nil {
		s.logger.Warn("Failed to invalidate sessions for user %d: %v", userID, err)
	}
	return ended
}

// audit пишет запись в журнал, ошибки журнала не валят уже выполненную задачу
func (s *Service) audit(ctx context.Context, actorID int64, action domain.AuditAction, targetUserID int64, comment *string, details domain.AuditDetails) {
	_, err := s.auditRepo.Create(ctx, &domain.AuditRecord{
		ActorID:      actorID,
		Action:       action,
		TargetUserID: &targetUserID,
		Comment:      comment,
		Details:      details,
	})
	if err != nil {
		s.logger.Error("Failed to write audit record %s for user %d: %v", action, targetUserID, err)
	}
}
