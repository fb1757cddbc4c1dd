package delivery

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-WikiControlService/internal/domain"
	"github.com/m04kA/SMC-WikiControlService/pkg/logger"
	"github.com/m04kA/SMC-WikiControlService/pkg/ptr"
)

type fakeResolver struct {
	users []*domain.User
	err   error
}

func (f *fakeResolver) Resolve(_ context.Context, _ domain.Target) ([]*domain.User, error) {
	return f.users, f.err
}

type fakeNotificationRepo struct {
	created []*domain.UserNotification
	err     error
}

func (f *fakeNotificationRepo) CreateBatch(_ context.Context, notifications []*domain.UserNotification) ([]int64, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, notifications...)
	ids := make([]int64, len(notifications))
	for i := range ids {
		ids[i] = int64(i + 1)
	}
	return ids, nil
}

type fakeTelegram struct {
	sent []int64
	err  error
}

func (f *fakeTelegram) SendNotification(chatID int64, _ *domain.UserNotification) error {
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, chatID)
	return nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(filepath.Join(t.TempDir(), "test.log"), "debug")
	require.NoError(t, err)
	t.Cleanup(func() { log.Close() })
	return log
}

func TestService_Deliver(t *testing.T) {
	resolver := &fakeResolver{users: []*domain.User{
		{ID: 1, Name: "Alice"},
		{ID: 2, Name: "Bob", TelegramChatID: ptr.Ptr(int64(555))},
	}}
	repo := &fakeNotificationRepo{}
	tg := &fakeTelegram{}
	svc := NewService(resolver, repo, tg, testLogger(t))

	event := &domain.Event{
		ID:      10,
		Type:    domain.BroadcastKindNotice,
		Header:  "Scheduled maintenance",
		Content: ptr.Ptr("The wiki will be read-only tonight."),
		URL:     ptr.Ptr("https://wiki.example.org/maintenance"),
		Status:  domain.EventStatusPending,
	}

	count, err := svc.Deliver(context.Background(), event)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
	require.Len(t, repo.created, 2)

	n := repo.created[0]
	assert.Equal(t, int64(10), n.EventID)
	assert.Equal(t, int64(1), n.UserID)
	// Иконка не задана - подставляется иконка по умолчанию
	assert.Equal(t, domain.DefaultIcon, n.Icon)
	require.NotNil(t, n.LinkLabel)
	assert.Equal(t, LinkLabel, *n.LinkLabel)

	// Telegram-копия уходит только пользователю с привязанным чатом
	assert.Equal(t, []int64{555}, tg.sent)
}

func TestService_Deliver_NoLinkNoLabel(t *testing.T) {
	resolver := &fakeResolver{users: []*domain.User{{ID: 1, Name: "Alice"}}}
	repo := &fakeNotificationRepo{}
	svc := NewService(resolver, repo, nil, testLogger(t))

	_, err := svc.Deliver(context.Background(), &domain.Event{
		ID:     11,
		Type:   domain.BroadcastKindAlert,
		Icon:   ptr.Ptr("alert"),
		Header: "No link here",
	})
	require.NoError(t, err)

	require.Len(t, repo.created, 1)
	assert.Nil(t, repo.created[0].LinkLabel)
	assert.Equal(t, "alert", repo.created[0].Icon)
}

func TestService_Deliver_EmptyAudience(t *testing.T) {
	repo := &fakeNotificationRepo{}
	svc := NewService(&fakeResolver{}, repo, nil, testLogger(t))

	count, err := svc.Deliver(context.Background(), &domain.Event{ID: 12, Header: "x"})
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Empty(t, repo.created)
}

func TestService_Deliver_TelegramFailureIsNotFatal(t *testing.T) {
	resolver := &fakeResolver{users: []*domain.User{
		{ID: 1, Name: "Alice", TelegramChatID: ptr.Ptr(int64(777))},
	}}
	repo := &fakeNotificationRepo{}
	tg := &fakeTelegram{err: errors.New("telegram down")}
	svc := NewService(resolver, repo, tg, testLogger(t))

	count, err := svc.Deliver(context.Background(), &domain.Event{ID: 13, Header: "x"})
	require.NoError(t, err)
	assert.Equal(t, 1, count)
	assert.Len(t, repo.created, 1)
}

func TestService_Deliver_RepoError(t *testing.T) {
	resolver := &fakeResolver{users: []*domain.User{{ID: 1, Name: "Alice"}}}
	repo := &fakeNotificationRepo{err: errors.New("db down")}
	svc := NewService(resolver, repo, nil, testLogger(t))

	_, err := svc.Deliver(context.Background(), &domain.Event{ID: 14, Header: "x"})
	assert.ErrorIs(t, err, ErrInternal)
}
