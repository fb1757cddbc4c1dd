package audience

import (
	"context"

	"github.com/m04kA/SMC-WikiControlService/internal/domain"
)

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	GetByIDs(ctx context.Context, ids []int64) ([]*domain.User, error)
	ListIDRange(ctx context.Context, startID, endID int64) ([]*domain.User, error)
}
