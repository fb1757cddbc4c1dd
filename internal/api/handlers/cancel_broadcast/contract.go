package cancel_broadcast

import "context"

// BroadcastService интерфейс диспетчера рассылок
type BroadcastService interface {
	CancelJob(ctx context.Context, id int64) error
}

// Scheduler интерфейс планировщика отложенных рассылок
type Scheduler interface {
	CancelJob(jobID int64)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
