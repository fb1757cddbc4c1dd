package audience

import (
	"context"
	"fmt"

	"github.com/m04kA/SMC-WikiControlService/internal/domain"
)

// Resolver разрешает адресатов рассылки в момент доставки, а не постановки
// Пользователи, удалённые между постановкой и доставкой, молча выпадают из выборки
type Resolver struct {
	userRepo UserRepository
}

// NewResolver создает новый экземпляр резолвера аудитории
func NewResolver(userRepo UserRepository) *Resolver {
	return &Resolver{userRepo: userRepo}
}

// Resolve возвращает список живых пользователей, попадающих под target
// Неизвестный тип target'а дает пустую аудиторию без ошибки: событие
// считается доставленным нулю адресатов, а не сломанным
func (r *Resolver) Resolve(ctx context.Context, target domain.Target) ([]*domain.User, error) {
	switch target.Type {
	case domain.TargetTypeUsers:
		if len(target.Recipients) == 0 {
			return []*domain.User{}, nil
		}

		users, err := r.userRepo.GetByIDs(ctx, target.Recipients)
		if err != nil {
			return nil, fmt.Errorf("%w: Resolve - get users by ids: %v", ErrInternal, err)
		}
		return users, nil

	case domain.TargetTypeAllUsers:
		users, err := r.userRepo.ListIDRange(ctx, target.Start, target.End)
		if err != nil {
			return nil, fmt.Errorf("%w: Resolve - list id range: %v", ErrInternal, err)
		}
		return users, nil

	default:
		return []*domain.User{}, nil
	}
}
