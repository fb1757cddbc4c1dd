package audience

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WikiControlService/internal/domain"
)

func nowPtr() *time.Time {
	now := time.Now()
	return &now
}

type fakeUserRepo struct {
	byID map[int64]*domain.User
}

func (f *fakeUserRepo) GetByIDs(_ context.Context, ids []int64) ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(ids))
	for _, id := range ids {
		if u, ok := f.byID[id]; ok && u.IsRegistered() {
			users = append(users, u)
		}
	}
	return users, nil
}

func (f *fakeUserRepo) ListIDRange(_ context.Context, startID, endID int64) ([]*domain.User, error) {
	users := make([]*domain.User, 0)
	for id := startID; id <= endID; id++ {
		if u, ok := f.byID[id]; ok && u.IsRegistered() {
			users = append(users, u)
		}
	}
	return users, nil
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{byID: make(map[int64]*domain.User)}
	for _, u := range users {
		repo.byID[u.ID] = u
	}
	return repo
}

func TestResolver_Resolve_Users(t *testing.T) {
	now := nowPtr()
	repo := newFakeUserRepo(
		&domain.User{ID: 1, Name: "Alice"},
		&domain.User{ID: 2, Name: "Bob", DeletedAt: now},
		&domain.User{ID: 3, Name: "Maintenance", IsSystem: true},
		&domain.User{ID: 4, Name: "Carol"},
	)
	resolver := NewResolver(repo)

	// Удалённые и системные пользователи молча выпадают, ошибок нет
	users, err := resolver.Resolve(context.Background(), domain.UsersTarget([]int64{1, 2, 3, 4, 999}))
	require.NoError(t, err)

	ids := make([]int64, 0, len(users))
	for _, u := range users {
		ids = append(ids, u.ID)
	}
	assert.ElementsMatch(t, []int64{1, 4}, ids)
}

func TestResolver_Resolve_UsersEmptyRecipients(t *testing.T) {
	resolver := NewResolver(newFakeUserRepo())

	users, err := resolver.Resolve(context.Background(), domain.UsersTarget(nil))
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestResolver_Resolve_AllUsersWindow(t *testing.T) {
	repo := newFakeUserRepo(
		&domain.User{ID: 10, Name: "A"},
		&domain.User{ID: 20, Name: "B"},
		&domain.User{ID: 30, Name: "C"},
	)
	resolver := NewResolver(repo)

	users, err := resolver.Resolve(context.Background(), domain.AllUsersTarget(domain.Window{StartID: 10, EndID: 20}))
	require.NoError(t, err)
	assert.Len(t, users, 2)
}

func TestResolver_Resolve_UnknownTargetType(t *testing.T) {
	resolver := NewResolver(newFakeUserRepo(&domain.User{ID: 1, Name: "Alice"}))

	// Неопознанный тип target'а дает пустую аудиторию без ошибки
	users, err := resolver.Resolve(context.Background(), domain.Target{Type: "group"})
	require.NoError(t, err)
	assert.Empty(t, users)
}
