package worker

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WikiControlService/internal/domain"
)

// EventRepository интерфейс для работы с репозиторием событий
type EventRepository interface {
	// GetPendingEvents получает события, ожидающие доставки
	GetPendingEvents(ctx context.Context, limit int) ([]*domain.Event, error)

	// MarkAsDelivered помечает событие доставленным
	MarkAsDelivered(ctx context.Context, id int64, deliveredAt time.Time) error

	// MarkAsFailed помечает событие неудачным
	// Параметр incrementRetry указывает, нужно ли увеличить счётчик попыток
	MarkAsFailed(ctx context.Context, id int64, errorMsg string, incrementRetry bool) error
}

// JobRepository интерфейс для работы с очередью задач рассылки
type JobRepository interface {
	// GetQueuedJobs получает задачи, готовые к выполнению
	GetQueuedJobs(ctx context.Context, maxAttempts, limit int) ([]*domain.BroadcastJob, error)

	// GetScheduledJobs получает отложенные на время задачи для загрузки в scheduler
	GetScheduledJobs(ctx context.Context) ([]*domain.BroadcastJob, error)

	// GetByID получает задачу по ID
	GetByID(ctx context.Context, id int64) (*domain.BroadcastJob, error)

	// UpdateStatus обновляет статус задачи
	UpdateStatus(ctx context.Context, id int64, status domain.JobStatus) error

	// MarkAsRunning переводит задачу в running с увеличением счётчика попыток
	MarkAsRunning(ctx context.Context, id int64) error

	// MarkAsDone помечает задачу успешно завершённой
	MarkAsDone(ctx context.Context, id int64) error

	// MarkAsFailed помечает задачу неудачной с сообщением об ошибке
	MarkAsFailed(ctx context.Context, id int64, errorMsg string) error
}

// EventCreator интерфейс эмиссии одного события
type EventCreator interface {
	Create(ctx context.Context, event *domain.Event) (int64, error)
}

// DeliveryService интерфейс сервиса доставки событий
type DeliveryService interface {
	// Deliver разворачивает событие в персональные уведомления
	Deliver(ctx context.Context, event *domain.Event) (int, error)
}

// BroadcastService интерфейс диспетчера рассылок, нужный воркерам
type BroadcastService interface {
	// EmitWindows планирует окна фан-аута и эмитит событие на каждое
	EmitWindows(ctx context.Context, kind domain.BroadcastKind, actorID int64, header string, content, url, icon *string) ([]int64, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
