package delivery

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-WikiControlService/internal/domain"
	"github.com/m04kA/SMC-WikiControlService/pkg/logger"
)

// LinkLabel подпись основной ссылки уведомления
const LinkLabel = "Click for more information"

// Service доставляет одно событие: резолвит аудиторию и создает
// персональные уведомления. Telegram-копия уходит по мере возможности,
// её ошибки не считаются ошибкой доставки события
type Service struct {
	resolver         AudienceResolver
	notificationRepo NotificationRepository
	telegram         TelegramSender // nil, если канал выключен
	logger           *logger.Logger
}

// NewService создает новый экземпляр сервиса доставки
func NewService(resolver AudienceResolver, notificationRepo NotificationRepository, telegram TelegramSender, log *logger.Logger) *Service {
	return &Service{
		resolver:         resolver,
		notificationRepo: notificationRepo,
		telegram:         telegram,
		logger:           log,
	}
}

// Deliver разворачивает событие в персональные уведомления
// Возвращает количество созданных уведомлений; ноль адресатов - не ошибка
func (s *Service) Deliver(ctx context.Context, event *domain.Event) (int, error) {
	users, err := s.resolver.Resolve(ctx, event.Target)
	if err != nil {
		return 0, fmt.Errorf("%w: Deliver - resolve audience for event %d: %v", ErrInternal, event.ID, err)
	}

	if len(users) == 0 {
		return 0, nil
	}

	notifications := make([]*domain.UserNotification, 0, len(users))
	for _, user := range users {
		notifications = append(notifications, s.buildNotification(event, user))
	}

	if _, err := s.notificationRepo.CreateBatch(ctx, notifications); err != nil {
		return 0, fmt.Errorf("%w: Deliver - create notifications for event %d: %v", ErrInternal, event.ID, err)
	}

	s.sendTelegramCopies(users, notifications)

	return len(notifications), nil
}

// buildNotification собирает персональное уведомление из события
func (s *Service) buildNotification(event *domain.Event, user *domain.User) *domain.UserNotification {
	notification := &domain.UserNotification{
		EventID: event.ID,
		UserID:  user.ID,
		Kind:    event.Type,
		Icon:    event.IconOrDefault(),
		Header:  event.Header,
		Content: event.Content,
		URL:     event.URL,
	}

	if notification.HasLink() {
		label := LinkLabel
		notification.LinkLabel = &label
	}

	return notification
}

// sendTelegramCopies отправляет копии в Telegram пользователям с привязкой
// Ошибки отдельных отправок логируются и не прерывают доставку
func (s *Service) sendTelegramCopies(users []*domain.User, notifications []*domain.UserNotification) {
	if s.telegram == nil {
		return
	}

	for i, user := range users {
		if !user.HasTelegram() {
			continue
		}

		if err := s.telegram.SendNotification(*user.TelegramChatID, notifications[i]); err != nil {
			s.logger.Warn("Telegram copy failed for user %d: %v", user.ID, err)
		}
	}
}
