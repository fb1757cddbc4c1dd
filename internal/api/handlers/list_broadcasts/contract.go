package list_broadcasts

import (
	"context"

	"github.com/m04kA/SMC-WikiControlService/internal/domain"
	"github.com/m04kA/SMC-WikiControlService/internal/service/broadcast/models"
)

// BroadcastService интерфейс диспетчера рассылок
type BroadcastService interface {
	ListEvents(ctx context.Context, filter models.ListEventsFilter) ([]*domain.Event, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
