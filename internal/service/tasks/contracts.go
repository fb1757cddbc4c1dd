package tasks

import (
	"context"
	"time"

	"github.com/m04kA/SMC-WikiControlService/internal/domain"
)

// UserRepository интерфейс репозитория пользователей
type UserRepository interface {
	GetByName(ctx context.Context, name string) (*domain.User, error)
	UpdateEmail(ctx context.Context, id int64, email string, authenticatedAt time.Time) error
	UpdatePasswordHash(ctx context.Context, id int64, hash string) error
	SetRealName(ctx context.Context, id int64, realName string) error
	Rename(ctx context.Context, id int64, newName string) error
	ReassignEdits(ctx context.Context, fromID, toID int64) (int64, error)
}

// SessionStore интерфейс хранилища сессий
type SessionStore interface {
	InvalidateUser(ctx context.Context, userID int64) (int64, error)
}

// CDNClient интерфейс клиента CDN
type CDNClient interface {
	PurgeURLs(ctx context.Context, pageURLs []string) (int, error)
}

// AuditRepository интерфейс репозитория журнала действий
type AuditRepository interface {
	Create(ctx context.Context, record *domain.AuditRecord) (int64, error)
}

// TxManager интерфейс менеджера транзакций
type TxManager interface {
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
