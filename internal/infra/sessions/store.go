package sessions

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/m04kA/SMC-WikiControlService/internal/config"
)

// Store хранилище пользовательских сессий в Redis
// Ключи имеют вид session:<user_id>:<token>, значение - сериализованная сессия
type Store struct {
	client *redis.Client
}

// NewStore создает подключение к Redis и проверяет его доступность
func NewStore(cfg config.RedisConfig) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("%w: NewStore - ping: %v", ErrConnect, err)
	}

	return &Store{client: client}, nil
}

// InvalidateUser удаляет все активные сессии пользователя
// Возвращает количество удалённых сессий
func (s *Store) InvalidateUser(ctx context.Context, userID int64) (int64, error) {
	pattern := fmt.Sprintf("session:%d:*", userID)

	var deleted int64
	var cursor uint64

	for {
		keys, next, err := s.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return deleted, fmt.Errorf("%w: InvalidateUser - scan keys: %v", ErrInvalidate, err)
		}

		if len(keys) > 0 {
			n, err := s.client.Del(ctx, keys...).Result()
			if err != nil {
				return deleted, fmt.Errorf("%w: InvalidateUser - delete keys: %v", ErrInvalidate, err)
			}
			deleted += n
		}

		cursor = next
		if cursor == 0 {
			break
		}
	}

	return deleted, nil
}

// Close закрывает подключение к Redis
func (s *Store) Close() error {
	return s.client.Close()
}
