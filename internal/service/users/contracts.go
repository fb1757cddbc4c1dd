package users

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WikiControlService/internal/domain"
)

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	GetByName(ctx context.Context, name string) (*domain.User, error)
	LastEditAt(ctx context.Context, userID int64) (*time.Time, error)
}
