package users

import (
	"context"
	"errors"
	"fmt"

	userRepo "github.com/m04kA/SMC-WikiControlService/internal/infra/storage/user"
	"github.com/m04kA/SMC-WikiControlService/internal/service/users/models"
)

// Service поиск учётных записей для панели администратора
type Service struct {
	userRepo UserRepository
}

// NewService создает новый экземпляр сервиса пользователей
func NewService(userRepo UserRepository) *Service {
	return &Service{userRepo: userRepo}
}

// Lookup находит пользователя по имени и собирает сводку по учётке
func (s *Service) Lookup(ctx context.Context, username string) (*models.UserDetails, error) {
	user, err := s.userRepo.GetByName(ctx, username)
	if err != nil {
		if errors.Is(err, userRepo.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("%w: Lookup - get user %q: %v", ErrInternal, username, err)
	}

	lastEditAt, err := s.userRepo.LastEditAt(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("%w: Lookup - last edit for user %d: %v", ErrInternal, user.ID, err)
	}

	return models.FromDomainUser(user, lastEditAt), nil
}
