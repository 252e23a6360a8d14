package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vedran77/syncspace/internal/domain"
	"github.com/vedran77/syncspace/internal/repository"
	"github.com/vedran77/syncspace/internal/repository/memory"
	"github.com/vedran77/syncspace/pkg/validator"
)

var errStoreDown = errors.New("store down")

// brokenNotifications fails every write.
type brokenNotifications struct {
	repository.NotificationRepository
}

func (brokenNotifications) Create(context.Context, *domain.Notification) error {
	return errStoreDown
}

func (brokenNotifications) CreateMany(context.Context, []*domain.Notification) error {
	return errStoreDown
}

func newNotificationService(repo repository.NotificationRepository) (*NotificationService, *recordingNotifier) {
	svc := NewNotificationService(repo, nil)
	n := &recordingNotifier{}
	svc.SetNotifier(n)
	return svc, n
}

func TestNotificationService_DeliverToOfflineUser(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newNotificationService(memory.NewNotificationRepo())

	before, err := svc.UnreadCount(ctx, 42)
	require.NoError(t, err)

	ref := "task:7"
	n, err := svc.Deliver(ctx, 42, DeliverInput{Message: "Task assigned", Type: domain.NotificationTaskAssigned, ReferenceID: &ref})
	require.NoError(t, err)
	assert.NotZero(t, n.ID)
	assert.False(t, n.IsRead)

	after, err := svc.UnreadCount(ctx, 42)
	require.NoError(t, err)
	assert.Equal(t, before+1, after)

	list, err := svc.List(ctx, 42, 1, 20)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "task:7", *list[0].ReferenceID)

	require.Len(t, notifier.notifications, 1)
	assert.Equal(t, int64(42), notifier.notifications[0].UserID)
}

func TestNotificationService_PersistenceFailurePublishesNothing(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newNotificationService(brokenNotifications{})

	_, err := svc.Deliver(ctx, 42, DeliverInput{Message: "hello"})
	require.ErrorIs(t, err, domain.ErrPersistence)
	require.ErrorIs(t, err, errStoreDown)

	_, err = svc.DeliverMany(ctx, []int64{1, 2}, DeliverInput{Message: "hello"})
	require.ErrorIs(t, err, domain.ErrPersistence)

	assert.Empty(t, notifier.notifications)
}

func TestNotificationService_DeliverValidates(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newNotificationService(memory.NewNotificationRepo())

	_, err := svc.Deliver(ctx, 42, DeliverInput{Message: "", Type: "Bogus"})
	var verrs validator.ValidationErrors
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "message")
	assert.Contains(t, verrs, "type")

	_, err = svc.Deliver(ctx, 0, DeliverInput{Message: "x"})
	require.ErrorAs(t, err, &verrs)
	assert.Contains(t, verrs, "userId")

	n, err := svc.Deliver(ctx, 42, DeliverInput{Message: "no type"})
	require.NoError(t, err)
	assert.Equal(t, domain.NotificationSystem, n.Type)
	assert.Len(t, notifier.notifications, 1)
}

func TestNotificationService_DeliverMany(t *testing.T) {
	ctx := context.Background()
	svc, notifier := newNotificationService(memory.NewNotificationRepo())

	ns, err := svc.DeliverMany(ctx, []int64{3, 4, 3}, DeliverInput{Message: "Document shared", Type: domain.NotificationDocumentShared})
	require.NoError(t, err)
	assert.Len(t, ns, 2, "duplicates are collapsed")
	assert.Len(t, notifier.notifications, 2)

	for _, id := range []int64{3, 4} {
		count, err := svc.UnreadCount(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	}
}

func TestNotificationService_ReadState(t *testing.T) {
	ctx := context.Background()
	svc, _ := newNotificationService(memory.NewNotificationRepo())

	var ids []int64
	for _, msg := range []string{"a", "b", "c"} {
		n, err := svc.Deliver(ctx, 5, DeliverInput{Message: msg})
		require.NoError(t, err)
		ids = append(ids, n.ID)
	}

	require.NoError(t, svc.MarkRead(ctx, 5, ids[0]))
	assert.ErrorIs(t, svc.MarkRead(ctx, 6, ids[1]), domain.ErrNotificationNotFound, "other users' notifications are invisible")

	count, err := svc.UnreadCount(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	require.NoError(t, svc.MarkUnread(ctx, 5, ids[0]))
	changed, err := svc.MarkAllRead(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 3, changed)

	changed, err = svc.MarkAllRead(ctx, 5)
	require.NoError(t, err)
	assert.Equal(t, 0, changed)

	require.NoError(t, svc.Delete(ctx, 5, ids[2]))
	assert.ErrorIs(t, svc.Delete(ctx, 5, ids[2]), domain.ErrNotificationNotFound)

	list, err := svc.List(ctx, 5, 1, 0)
	require.NoError(t, err)
	assert.Len(t, list, 2)
	assert.Equal(t, ids[1], list[0].ID, "newest first")
}
