package run_task

import (
	"context"

	"github.com/m04kA/SMC-WikiControlService/internal/service/tasks/models"
)

// TasksService интерфейс сервиса задач обслуживания
type TasksService interface {
	Run(ctx context.Context, input *models.RunTaskInput) (*models.TaskResult, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
