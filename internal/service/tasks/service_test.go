package tasks

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/m04kA/SMC-WikiControlService/internal/config"
	"github.com/m04kA/SMC-WikiControlService/internal/domain"
	userRepo "github.com/m04kA/SMC-WikiControlService/internal/infra/storage/user"
	"github.com/m04kA/SMC-WikiControlService/internal/service/tasks/models"
	"github.com/m04kA/SMC-WikiControlService/pkg/logger"
)

type fakeUserRepo struct {
	byName       map[string]*domain.User
	emails       map[int64]string
	hashes       map[int64]string
	realNames    map[int64]string
	renames      map[int64]string
	movedEdits   int64
	reassignFrom int64
	reassignTo   int64
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{
		byName:    make(map[string]*domain.User),
		emails:    make(map[int64]string),
		hashes:    make(map[int64]string),
		realNames: make(map[int64]string),
		renames:   make(map[int64]string),
	}
	for _, u := range users {
		repo.byName[u.Name] = u
	}
	return repo
}

func (f *fakeUserRepo) GetByName(_ context.Context, name string) (*domain.User, error) {
	if u, ok := f.byName[name]; ok {
		return u, nil
	}
	return nil, userRepo.ErrUserNotFound
}

func (f *fakeUserRepo) UpdateEmail(_ context.Context, id int64, email string, _ time.Time) error {
	f.emails[id] = email
	return nil
}

func (f *fakeUserRepo) UpdatePasswordHash(_ context.Context, id int64, hash string) error {
	f.hashes[id] = hash
	return nil
}

func (f *fakeUserRepo) SetRealName(_ context.Context, id int64, realName string) error {
	f.realNames[id] = realName
	return nil
}

func (f *fakeUserRepo) Rename(_ context.Context, id int64, newName string) error {
	f.renames[id] = newName
	return nil
}

func (f *fakeUserRepo) ReassignEdits(_ context.Context, fromID, toID int64) (int64, error) {
	f.reassignFrom = fromID
	f.reassignTo = toID
	return f.movedEdits, nil
}

type fakeSessions struct {
	invalidated []int64
}

func (f *fakeSessions) InvalidateUser(_ context.Context, userID int64) (int64, error) {
	f.invalidated = append(f.invalidated, userID)
	return 2, nil
}

type fakeCDN struct {
	purged []string
}

func (f *fakeCDN) PurgeURLs(_ context.Context, urls []string) (int, error) {
	f.purged = append(f.purged, urls...)
	return len(urls), nil
}

type fakeAuditRepo struct {
	records []*domain.AuditRecord
}

func (f *fakeAuditRepo) Create(_ context.Context, record *domain.AuditRecord) (int64, error) {
	f.records = append(f.records, record)
	return int64(len(f.records)), nil
}

type fakeTxManager struct{}

func (f *fakeTxManager) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(filepath.Join(t.TempDir(), "test.log"), "debug")
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })
	return log
}

type testEnv struct {
	users    *fakeUserRepo
	sessions *fakeSessions
	cdn      *fakeCDN
	audit    *fakeAuditRepo
	svc      *Service
}

func newTestEnv(t *testing.T, users ...*domain.User) *testEnv {
	env := &testEnv{
		users:    newFakeUserRepo(users...),
		sessions: &fakeSessions{},
		cdn:      &fakeCDN{},
		audit:    &fakeAuditRepo{},
	}
	env.svc = NewService(env.users, env.sessions, env.cdn, env.audit, &fakeTxManager{}, config.TasksConfig{MinPasswordLength: 8}, testLogger(t))
	return env
}

func TestService_Run_ChangeEmail(t *testing.T) {
	env := newTestEnv(t, &domain.User{ID: 5, Name: "Alice", Email: "old@example.org"})

	comment := "ticket #4182"
	result, err := env.svc.Run(context.Background(), &models.RunTaskInput{
		Task:     models.TaskChangeEmail,
		ActorID:  1,
		Username: "Alice",
		Email:    "new@example.org",
		Comment:  &comment,
	})
	require.NoError(t, err)

	assert.Nil(t, result.Warning)
	assert.Equal(t, "new@example.org", env.users.emails[5])

	require.Len(t, env.audit.records, 1)
	assert.Equal(t, domain.AuditActionChangeEmail, env.audit.records[0].Action)
	assert.Equal(t, int64(5), *env.audit.records[0].TargetUserID)
	require.NotNil(t, env.audit.records[0].Comment)
	assert.Equal(t, comment, *env.audit.records[0].Comment)
}

func TestService_Run_ChangeEmail_AlreadySet(t *testing.T) {
	env := newTestEnv(t, &domain.User{ID: 5, Name: "Alice", Email: "same@example.org"})

	result, err := env.svc.Run(context.Background(), &models.RunTaskInput{
		Task:     models.TaskChangeEmail,
		ActorID:  1,
		Username: "Alice",
		Email:    "same@example.org",
	})
	require.NoError(t, err)

	// Совпадающий email - предупреждение вместо записи, аудита нет
	require.NotNil(t, result.Warning)
	assert.Empty(t, env.users.emails)
	assert.Empty(t, env.audit.records)
}

func TestService_Run_ChangePassword(t *testing.T) {
	env := newTestEnv(t, &domain.User{ID: 5, Name: "Alice"})

	result, err := env.svc.Run(context.Background(), &models.RunTaskInput{
		Task:     models.TaskChangePassword,
		ActorID:  1,
		Username: "Alice",
		Password: "correct horse battery staple",
	})
	require.NoError(t, err)

	// Пароль хэшируется bcrypt'ом, сессии пользователя завершаются
	hash := env.users.hashes[5]
	require.NotEmpty(t, hash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("correct horse battery staple")))
	assert.Equal(t, []int64{5}, env.sessions.invalidated)
	assert.Equal(t, int64(2), result.SessionsEnded)
	assert.Len(t, env.audit.records, 1)
}

func TestService_Run_ReassignEdits(t *testing.T) {
	env := newTestEnv(t,
		&domain.User{ID: 5, Name: "Alice"},
		&domain.User{ID: 9, Name: "Bob"},
	)
	env.users.movedEdits = 1234

	result, err := env.svc.Run(context.Background(), &models.RunTaskInput{
		Task:       models.TaskReassignEdits,
		ActorID:    1,
		Username:   "Alice",
		ToUsername: "Bob",
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1234), result.AffectedRows)
	assert.Equal(t, int64(5), env.users.reassignFrom)
	assert.Equal(t, int64(9), env.users.reassignTo)

	require.Len(t, env.audit.records, 1)
	assert.Equal(t, domain.AuditActionReassignEdits, env.audit.records[0].Action)
}

func TestService_Run_ReassignEdits_SameUser(t *testing.T) {
	env := newTestEnv(t, &domain.User{ID: 5, Name: "Alice"})

	_, err := env.svc.Run(context.Background(), &models.RunTaskInput{
		Task:       models.TaskReassignEdits,
		ActorID:    1,
		Username:   "Alice",
		ToUsername: "Alice",
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestService_Run_Anonymize(t *testing.T) {
	env := newTestEnv(t, &domain.User{ID: 5, Name: "Alice", RealName: "Alice Liddell", Email: "alice@example.org"})

	result, err := env.svc.Run(context.Background(), &models.RunTaskInput{
		Task:     models.TaskAnonymize,
		ActorID:  1,
		Username: "Alice",
	})
	require.NoError(t, err)

	assert.Equal(t, AnonymizedEmail, env.users.emails[5])
	assert.Equal(t, "", env.users.realNames[5])
	assert.Equal(t, "", env.users.hashes[5])

	require.NotNil(t, result.NewUsername)
	assert.True(t, strings.HasPrefix(*result.NewUsername, "Anonymous "))
	assert.Equal(t, *result.NewUsername, env.users.renames[5])
	assert.Equal(t, []int64{5}, env.sessions.invalidated)
	assert.Len(t, env.audit.records, 1)
}

func TestService_Run_PurgeCache(t *testing.T) {
	env := newTestEnv(t)

	result, err := env.svc.Run(context.Background(), &models.RunTaskInput{
		Task:    models.TaskPurgeCache,
		ActorID: 1,
		URLs:    []string{"https://wiki.example.org/Main_Page", "https://wiki.example.org/Help"},
	})
	require.NoError(t, err)

	assert.Equal(t, int64(2), result.AffectedRows)
	assert.Len(t, env.cdn.purged, 2)
	// Сброс кэша не касается аккаунтов и не журналируется
	assert.Empty(t, env.audit.records)
}

func TestService_Run_SelfTarget(t *testing.T) {
	env := newTestEnv(t, &domain.User{ID: 1, Name: "Admin"})

	_, err := env.svc.Run(context.Background(), &models.RunTaskInput{
		Task:     models.TaskChangePassword,
		ActorID:  1,
		Username: "Admin",
		Password: "long enough password",
	})
	assert.ErrorIs(t, err, ErrSelfTarget)
}

func TestService_Run_ChangePassword_TooShort(t *testing.T) {
	env := newTestEnv(t, &domain.User{ID: 5, Name: "Alice"})

	_, err := env.svc.Run(context.Background(), &models.RunTaskInput{
		Task:     models.TaskChangePassword,
		ActorID:  1,
		Username: "Alice",
		Password: "short",
	})
	assert.ErrorIs(t, err, ErrPasswordTooWeak)
	assert.Empty(t, env.users.hashes)
}

func TestService_Run_UnknownTask(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Run(context.Background(), &models.RunTaskInput{Task: "drop_database"})
	assert.ErrorIs(t, err, ErrUnknownTask)
}

func TestService_Run_UserNotFound(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.Run(context.Background(), &models.RunTaskInput{
		Task:     models.TaskChangeEmail,
		ActorID:  1,
		Username: "Ghost",
		Email:    "x@example.org",
	})
	assert.ErrorIs(t, err, ErrUserNotFound)
}
