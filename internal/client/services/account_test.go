package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medhelper/medhelper/internal/client/models"
)

// fakeAccountAPI returns canned results and records the last arguments.
type fakeAccountAPI struct {
	CartRet int
	CartErr error

	PageRet *models.NotificationPage
	PageErr error

	MarkErr error

	LastPage     int
	LastPageSize int
	LastMarkID   int64
}

func (f *fakeAccountAPI) CartCount(context.Context) (int, error) {
	return f.CartRet, f.CartErr
}

func (f *fakeAccountAPI) Notifications(_ context.Context, page, pageSize int) (*models.NotificationPage, error) {
	f.LastPage, f.LastPageSize = page, pageSize
	return f.PageRet, f.PageErr
}

func (f *fakeAccountAPI) MarkNotificationRead(_ context.Context, id int64) error {
	f.LastMarkID = id
	return f.MarkErr
}

func pageWith(read ...bool) *models.NotificationPage {
	p := &models.NotificationPage{}
	for i, r := range read {
		p.Results = append(p.Results, models.Notification{ID: int64(i + 1), Read: r})
	}
	return p
}

func TestAccountService_RefreshCart(t *testing.T) {
	api := &fakeAccountAPI{CartRet: 4}
	svc := NewAccountService(api, 10)

	require.NoError(t, svc.RefreshCart(context.Background()))
	assert.Equal(t, 4, svc.CartCount())

	api.CartErr = errors.New("offline")
	require.Error(t, svc.RefreshCart(context.Background()))
	assert.Zero(t, svc.CartCount(), "failure resets the count")
}

func TestAccountService_SyncNotifications(t *testing.T) {
	api := &fakeAccountAPI{PageRet: pageWith(false, true, false)}
	svc := NewAccountService(api, 5)

	require.NoError(t, svc.SyncNotifications(context.Background()))
	assert.Equal(t, 2, svc.UnreadCount())
	assert.Equal(t, 1, api.LastPage)
	assert.Equal(t, 5, api.LastPageSize)

	api.PageErr = errors.New("boom")
	require.Error(t, svc.SyncNotifications(context.Background()))
	assert.Equal(t, 2, svc.UnreadCount(), "failed sync keeps the previous count")
}

func TestAccountService_NotificationsPaging(t *testing.T) {
	api := &fakeAccountAPI{PageRet: pageWith(false)}
	svc := NewAccountService(api, 0)

	_, err := svc.Notifications(context.Background(), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, api.LastPage, "pages start at 1")
	assert.Equal(t, 10, api.LastPageSize, "default page size")

	_, err = svc.Notifications(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, api.LastPage)
}

func TestAccountService_MarkRead(t *testing.T) {
	api := &fakeAccountAPI{PageRet: pageWith(false, false)}
	svc := NewAccountService(api, 10)
	ctx := context.Background()

	require.NoError(t, svc.SyncNotifications(ctx))
	require.NoError(t, svc.MarkRead(ctx, 2))
	assert.Equal(t, int64(2), api.LastMarkID)
	assert.Equal(t, 1, svc.UnreadCount())

	api.MarkErr = errors.New("nope")
	require.Error(t, svc.MarkRead(ctx, 1))
	assert.Equal(t, 1, svc.UnreadCount())

	svc.Reset()
	assert.Zero(t, svc.UnreadCount())
	assert.Zero(t, svc.CartCount())
}
