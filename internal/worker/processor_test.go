package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WikiControlService/internal/domain"
)

type fakeEventRepo struct {
	pending   []*domain.Event
	delivered []int64
	failed    []int64
}

func (f *fakeEventRepo) GetPendingEvents(_ context.Context, limit int) ([]*domain.Event, error) {
	if len(f.pending) > limit {
		return f.pending[:limit], nil
	}
	return f.pending, nil
}

func (f *fakeEventRepo) MarkAsDelivered(_ context.Context, id int64, _ time.Time) error {
	f.delivered = append(f.delivered, id)
	return nil
}

func (f *fakeEventRepo) MarkAsFailed(_ context.Context, id int64, _ string, _ bool) error {
	f.failed = append(f.failed, id)
	return nil
}

type fakeDelivery struct {
	failFor map[int64]error
	created int
	seen    []int64
}

func (f *fakeDelivery) Deliver(_ context.Context, event *domain.Event) (int, error) {
	f.seen = append(f.seen, event.ID)
	if err, ok := f.failFor[event.ID]; ok {
		return 0, err
	}
	f.created++
	return 1, nil
}

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

func TestProcessor_ProcessPendingEvents(t *testing.T) {
	repo := &fakeEventRepo{pending: []*domain.Event{
		{ID: 1, Header: "a", Target: domain.UsersTarget([]int64{1})},
		{ID: 2, Header: "b", Target: domain.AllUsersTarget(domain.Window{StartID: 1, EndID: 500})},
		{ID: 3, Header: "c", Target: domain.UsersTarget([]int64{2})},
	}}
	delivery := &fakeDelivery{failFor: map[int64]error{2: errors.New("resolve failed")}}

	p := NewProcessor(repo, delivery, nopLogger{}, nil, time.Minute, 100)
	p.processPendingEvents()

	// Упавшее событие помечается failed, остальные доставляются
	assert.Equal(t, []int64{1, 2, 3}, delivery.seen)
	assert.ElementsMatch(t, []int64{1, 3}, repo.delivered)
	assert.Equal(t, []int64{2}, repo.failed)
}

type fakeJobRepo struct {
	jobs    map[int64]*domain.BroadcastJob
	done    []int64
	failed  []int64
	running []int64
}

func newFakeJobRepo(jobs ...*domain.BroadcastJob) *fakeJobRepo {
	repo := &fakeJobRepo{jobs: make(map[int64]*domain.BroadcastJob)}
	for _, j := range jobs {
		repo.jobs[j.ID] = j
	}
	return repo
}

func (f *fakeJobRepo) GetQueuedJobs(_ context.Context, maxAttempts, _ int) ([]*domain.BroadcastJob, error) {
	out := make([]*domain.BroadcastJob, 0)
	for _, j := range f.jobs {
		if j.Status == domain.JobStatusQueued || (j.Status == domain.JobStatusFailed && j.Attempts < maxAttempts) {
			out = append(out, j)
		}
	}
	return out, nil
}

func (f *fakeJobRepo) GetScheduledJobs(_ context.Context) ([]*domain.BroadcastJob, error) {
	return nil, nil
}

func (f *fakeJobRepo) GetByID(_ context.Context, id int64) (*domain.BroadcastJob, error) {
	return f.jobs[id], nil
}

func (f *fakeJobRepo) UpdateStatus(_ context.Context, id int64, status domain.JobStatus) error {
	f.jobs[id].Status = status
	return nil
}

func (f *fakeJobRepo) MarkAsRunning(_ context.Context, id int64) error {
	f.running = append(f.running, id)
	f.jobs[id].Status = domain.JobStatusRunning
	f.jobs[id].Attempts++
	return nil
}

func (f *fakeJobRepo) MarkAsDone(_ context.Context, id int64) error {
	f.done = append(f.done, id)
	f.jobs[id].Status = domain.JobStatusDone
	return nil
}

func (f *fakeJobRepo) MarkAsFailed(_ context.Context, id int64, _ string) error {
	f.failed = append(f.failed, id)
	f.jobs[id].Status = domain.JobStatusFailed
	return nil
}

type fakeBroadcast struct {
	emitted int
	err     error
}

func (f *fakeBroadcast) EmitWindows(_ context.Context, _ domain.BroadcastKind, _ int64, _ string, _, _, _ *string) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.emitted++
	return []int64{1, 2, 3}, nil
}

type fakeEventCreator struct {
	created []*domain.Event
}

func (f *fakeEventCreator) Create(_ context.Context, event *domain.Event) (int64, error) {
	f.created = append(f.created, event)
	return int64(len(f.created)), nil
}

func TestJobRunner_ProcessJob_AllUsers(t *testing.T) {
	job := &domain.BroadcastJob{
		ID:     1,
		Kind:   domain.BroadcastKindNotice,
		Header: "fanout",
		Status: domain.JobStatusQueued,
		Target: domain.Target{Type: domain.TargetTypeAllUsers},
	}
	repo := newFakeJobRepo(job)
	broadcast := &fakeBroadcast{}

	r := NewJobRunner(repo, broadcast, &fakeEventCreator{}, nopLogger{}, nil, time.Minute, 3)
	r.ProcessJob(context.Background(), job)

	assert.Equal(t, 1, broadcast.emitted)
	assert.Equal(t, []int64{1}, repo.done)
	assert.Equal(t, domain.JobStatusDone, job.Status)
}

func TestJobRunner_ProcessJob_UsersTargetEmitsStoredTarget(t *testing.T) {
	job := &domain.BroadcastJob{
		ID:     2,
		Kind:   domain.BroadcastKindAlert,
		Header: "direct",
		Status: domain.JobStatusQueued,
		Target: domain.UsersTarget([]int64{5, 6}),
	}
	repo := newFakeJobRepo(job)
	events := &fakeEventCreator{}

	r := NewJobRunner(repo, &fakeBroadcast{}, events, nopLogger{}, nil, time.Minute, 3)
	r.ProcessJob(context.Background(), job)

	require.Len(t, events.created, 1)
	assert.Equal(t, []int64{5, 6}, events.created[0].Target.Recipients)
	assert.Equal(t, domain.EventStatusPending, events.created[0].Status)
	assert.Equal(t, []int64{2}, repo.done)
}

func TestJobRunner_FailedJobIsRetriedUntilMaxAttempts(t *testing.T) {
	job := &domain.BroadcastJob{
		ID:     3,
		Header: "flaky",
		Status: domain.JobStatusQueued,
		Target: domain.Target{Type: domain.TargetTypeAllUsers},
	}
	repo := newFakeJobRepo(job)
	broadcast := &fakeBroadcast{err: errors.New("db down")}

	r := NewJobRunner(repo, broadcast, &fakeEventCreator{}, nopLogger{}, nil, time.Minute, 3)

	// Каждый цикл очереди повторяет failed задачу, пока не исчерпаны попытки
	for i := 0; i < 5; i++ {
		r.processQueuedJobs()
	}

	assert.Equal(t, 3, job.Attempts)
	assert.Equal(t, domain.JobStatusFailed, job.Status)
	assert.Len(t, repo.failed, 3)
}
