package broadcast

import (
	"context"

	"github.com/m04kA/SMC-WikiControlService/internal/domain"
	eventRepo "github.com/m04kA/SMC-WikiControlService/internal/infra/storage/event"
)

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	GetByName(ctx context.Context, name string) (*domain.User, error)
	MaxUserID(ctx context.Context) (int64, error)
}

// EventRepository интерфейс репозитория событий
type EventRepository interface {
	Create(ctx context.Context, event *domain.Event) (int64, error)
	List(ctx context.Context, filter eventRepo.ListFilter) ([]*domain.Event, error)
}

// JobRepository интерфейс репозитория очереди задач рассылки
type JobRepository interface {
	Create(ctx context.Context, job *domain.BroadcastJob) (int64, error)
	GetByID(ctx context.Context, id int64) (*domain.BroadcastJob, error)
	Cancel(ctx context.Context, id int64) error
}
