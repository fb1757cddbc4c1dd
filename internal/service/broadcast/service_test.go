package broadcast

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WikiControlService/internal/config"
	"github.com/m04kA/SMC-WikiControlService/internal/domain"
	eventRepo "github.com/m04kA/SMC-WikiControlService/internal/infra/storage/event"
	jobRepo "github.com/m04kA/SMC-WikiControlService/internal/infra/storage/job"
	userRepo "github.com/m04kA/SMC-WikiControlService/internal/infra/storage/user"
	"github.com/m04kA/SMC-WikiControlService/internal/service/broadcast/models"
	"github.com/m04kA/SMC-WikiControlService/pkg/ptr"
)

type fakeUserRepo struct {
	byName map[string]*domain.User
	maxID  int64
}

func (f *fakeUserRepo) GetByName(_ context.Context, name string) (*domain.User, error) {
	if u, ok := f.byName[name]; ok {
		return u, nil
	}
	return nil, userRepo.ErrUserNotFound
}

func (f *fakeUserRepo) MaxUserID(_ context.Context) (int64, error) {
	return f.maxID, nil
}

type fakeEventRepo struct {
	events []*domain.Event
}

func (f *fakeEventRepo) Create(_ context.Context, event *domain.Event) (int64, error) {
	f.events = append(f.events, event)
	return int64(len(f.events)), nil
}

func (f *fakeEventRepo) List(_ context.Context, _ eventRepo.ListFilter) ([]*domain.Event, error) {
	return f.events, nil
}

type fakeJobRepo struct {
	jobs map[int64]*domain.BroadcastJob
}

func newFakeJobRepo() *fakeJobRepo {
	return &fakeJobRepo{jobs: make(map[int64]*domain.BroadcastJob)}
}

func (f *fakeJobRepo) Create(_ context.Context, job *domain.BroadcastJob) (int64, error) {
	id := int64(len(f.jobs) + 1)
	job.ID = id
	f.jobs[id] = job
	return id, nil
}

func (f *fakeJobRepo) GetByID(_ context.Context, id int64) (*domain.BroadcastJob, error) {
	if j, ok := f.jobs[id]; ok {
		return j, nil
	}
	return nil, jobRepo.ErrJobNotFound
}

func (f *fakeJobRepo) Cancel(_ context.Context, id int64) error {
	j, ok := f.jobs[id]
	if !ok || !j.CanBeCancelled() {
		return jobRepo.ErrJobNotFound
	}
	j.Status = domain.JobStatusCancelled
	return nil
}

func testConfig() config.BroadcastConfig {
	return config.BroadcastConfig{
		WindowSize:  500,
		DefaultMode: "deferred",
		MaxAttempts: 3,
		Icons:       []string{"robot", "speechBubbles", "alert", "tray"},
	}
}

func newTestService(users *fakeUserRepo, events *fakeEventRepo, jobs *fakeJobRepo) *Service {
	return NewService(users, events, jobs, testConfig())
}

func TestService_Send_UsersTarget(t *testing.T) {
	users := &fakeUserRepo{byName: map[string]*domain.User{
		"Alice": {ID: 1, Name: "Alice"},
		"Bob":   {ID: 7, Name: "Bob"},
	}}
	events := &fakeEventRepo{}
	svc := newTestService(users, events, newFakeJobRepo())

	result, err := svc.Send(context.Background(), &models.SendNotificationInput{
		Kind:       domain.BroadcastKindNotice,
		ActorID:    100,
		Header:     "Maintenance window",
		TargetType: domain.TargetTypeUsers,
		Recipients: []string{"Alice", "Ghost", "Bob"},
	})
	require.NoError(t, err)

	// Одно событие на всю группу, невалидные имена - в failed
	require.Len(t, result.EventIDs, 1)
	assert.Equal(t, []string{"Ghost"}, result.FailedUsernames)
	assert.Equal(t, domain.DispatchModeSync, result.Mode)

	require.Len(t, events.events, 1)
	assert.Equal(t, domain.TargetTypeUsers, events.events[0].Target.Type)
	assert.ElementsMatch(t, []int64{1, 7}, events.events[0].Target.Recipients)
	assert.Equal(t, domain.EventStatusPending, events.events[0].Status)
}

func TestService_Send_UsersTarget_NoValidRecipients(t *testing.T) {
	svc := newTestService(&fakeUserRepo{byName: map[string]*domain.User{}}, &fakeEventRepo{}, newFakeJobRepo())

	_, err := svc.Send(context.Background(), &models.SendNotificationInput{
		Kind:       domain.BroadcastKindNotice,
		ActorID:    100,
		Header:     "Hello",
		TargetType: domain.TargetTypeUsers,
		Recipients: []string{"Ghost"},
	})
	assert.ErrorIs(t, err, ErrNoValidRecipients)
}

func TestService_Send_AllUsersSync(t *testing.T) {
	users := &fakeUserRepo{maxID: 1200}
	events := &fakeEventRepo{}
	svc := newTestService(users, events, newFakeJobRepo())

	result, err := svc.Send(context.Background(), &models.SendNotificationInput{
		Kind:       domain.BroadcastKindAlert,
		ActorID:    100,
		Header:     "Read the new policy",
		TargetType: domain.TargetTypeAllUsers,
		Mode:       ptr.Ptr(domain.DispatchModeSync),
	})
	require.NoError(t, err)

	// maxID = 1200, окно 500: три окна, три события
	assert.Len(t, result.EventIDs, 3)
	assert.Equal(t, 3, result.WindowCount)
	assert.Nil(t, result.JobID)

	require.Len(t, events.events, 3)
	assert.Equal(t, int64(1), events.events[0].Target.Start)
	assert.Equal(t, int64(500), events.events[0].Target.End)
	assert.Equal(t, int64(1001), events.events[2].Target.Start)
	assert.Equal(t, int64(1500), events.events[2].Target.End)
}

func TestService_Send_AllUsersSync_EmptyUserTable(t *testing.T) {
	events := &fakeEventRepo{}
	svc := newTestService(&fakeUserRepo{maxID: 0}, events, newFakeJobRepo())

	result, err := svc.Send(context.Background(), &models.SendNotificationInput{
		Kind:       domain.BroadcastKindNotice,
		ActorID:    100,
		Header:     "Nobody home",
		TargetType: domain.TargetTypeAllUsers,
		Mode:       ptr.Ptr(domain.DispatchModeSync),
	})
	require.NoError(t, err)

	// Нет пользователей - нет ни окон, ни событий, и это не ошибка
	assert.Empty(t, result.EventIDs)
	assert.Empty(t, events.events)
}

func TestService_Send_AllUsersDeferred(t *testing.T) {
	jobs := newFakeJobRepo()
	events := &fakeEventRepo{}
	svc := newTestService(&fakeUserRepo{maxID: 1000}, events, jobs)

	// Стратегия не указана - берется deferred из конфига
	result, err := svc.Send(context.Background(), &models.SendNotificationInput{
		Kind:       domain.BroadcastKindNotice,
		ActorID:    100,
		Header:     "Deferred fanout",
		TargetType: domain.TargetTypeAllUsers,
	})
	require.NoError(t, err)

	require.NotNil(t, result.JobID)
	require.NotNil(t, result.SpanID)
	assert.Equal(t, domain.DispatchModeDeferred, result.Mode)
	assert.Empty(t, result.EventIDs)
	assert.Empty(t, events.events)

	job := jobs.jobs[*result.JobID]
	assert.Equal(t, domain.JobStatusQueued, job.Status)
	assert.Equal(t, domain.TargetTypeAllUsers, job.Target.Type)
}

func TestService_Send_Scheduled(t *testing.T) {
	jobs := newFakeJobRepo()
	svc := newTestService(&fakeUserRepo{maxID: 100}, &fakeEventRepo{}, jobs)

	runAt := time.Now().Add(2 * time.Hour)
	result, err := svc.Send(context.Background(), &models.SendNotificationInput{
		Kind:         domain.BroadcastKindNotice,
		ActorID:      100,
		Header:       "Later",
		TargetType:   domain.TargetTypeAllUsers,
		ScheduledFor: &runAt,
	})
	require.NoError(t, err)

	require.NotNil(t, result.JobID)
	job := jobs.jobs[*result.JobID]
	assert.Equal(t, domain.JobStatusScheduled, job.Status)
	require.NotNil(t, job.RunAt)
	assert.WithinDuration(t, runAt, *job.RunAt, time.Second)
}

func TestService_Send_Validation(t *testing.T) {
	svc := newTestService(&fakeUserRepo{}, &fakeEventRepo{}, newFakeJobRepo())

	tests := []struct {
		name     string
		input    *models.SendNotificationInput
		expected error
	}{
		{
			name: "неизвестный тип рассылки",
			input: &models.SendNotificationInput{
				Kind:       "spam",
				Header:     "x",
				TargetType: domain.TargetTypeAllUsers,
			},
			expected: ErrInvalidKind,
		},
		{
			name: "пустой заголовок",
			input: &models.SendNotificationInput{
				Kind:       domain.BroadcastKindNotice,
				TargetType: domain.TargetTypeAllUsers,
			},
			expected: ErrEmptyHeader,
		},
		{
			name: "неизвестная стратегия",
			input: &models.SendNotificationInput{
				Kind:       domain.BroadcastKindNotice,
				Header:     "x",
				TargetType: domain.TargetTypeAllUsers,
				Mode:       ptr.Ptr(domain.DispatchMode("eventually")),
			},
			expected: ErrInvalidMode,
		},
		{
			name: "недопустимая иконка",
			input: &models.SendNotificationInput{
				Kind:       domain.BroadcastKindNotice,
				Header:     "x",
				TargetType: domain.TargetTypeAllUsers,
				Icon:       ptr.Ptr("skull"),
			},
			expected: ErrInvalidIcon,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Send(context.Background(), tt.input)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestService_CancelJob(t *testing.T) {
	jobs := newFakeJobRepo()
	svc := newTestService(&fakeUserRepo{}, &fakeEventRepo{}, jobs)

	id, err := jobs.Create(context.Background(), &domain.BroadcastJob{Status: domain.JobStatusQueued})
	require.NoError(t, err)

	require.NoError(t, svc.CancelJob(context.Background(), id))
	assert.Equal(t, domain.JobStatusCancelled, jobs.jobs[id].Status)

	// Повторная отмена и отмена выполняющейся задачи невозможны
	assert.ErrorIs(t, svc.CancelJob(context.Background(), id), ErrCannotCancel)

	runningID, err := jobs.Create(context.Background(), &domain.BroadcastJob{Status: domain.JobStatusRunning})
	require.NoError(t, err)
	assert.ErrorIs(t, svc.CancelJob(context.Background(), runningID), ErrCannotCancel)

	assert.ErrorIs(t, svc.CancelJob(context.Background(), 404), ErrJobNotFound)
}
