package delivery

import (
	"context"

	"github.com/m04kA/SMC-WikiControlService/internal/domain"
)

// AudienceResolver интерфейс резолвера аудитории
type AudienceResolver interface {
	Resolve(ctx context.Context, target domain.Target) ([]*domain.User, error)
}

// NotificationRepository интерфейс репозитория пользовательских уведомлений
type NotificationRepository interface {
	CreateBatch(ctx context.Context, notifications []*domain.UserNotification) ([]int64, error)
}

// TelegramSender интерфейс вторичного канала доставки
type TelegramSender interface {
	SendNotification(chatID int64, notification *domain.UserNotification) error
}
