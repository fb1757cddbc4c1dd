package get_user

import (
	"context"

	"github.com/m04kA/SMC-WikiControlService/internal/service/users/models"
)

// UsersService интерфейс сервиса поиска пользователей
type UsersService interface {
	Lookup(ctx context.Context, username string) (*models.UserDetails, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
