package send_notification

import (
	"context"

	"github.com/m04kA/SMC-WikiControlService/internal/domain"
	"github.com/m04kA/SMC-WikiControlService/internal/service/broadcast/models"
)

// BroadcastService интерфейс диспетчера рассылок
type BroadcastService interface {
	Send(ctx context.Context, input *models.SendNotificationInput) (*models.SendNotificationResult, error)
}

// Scheduler интерфейс планировщика отложенных задач рассылки
type Scheduler interface {
	ScheduleJob(job *domain.BroadcastJob) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
