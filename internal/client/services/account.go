package services

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/medhelper/medhelper/internal/client/client"
	"github.com/medhelper/medhelper/internal/client/models"
)

// AccountReader is the part of client.Client AccountService needs.
type AccountReader interface {
	CartCount(ctx context.Context) (int, error)
	Notifications(ctx context.Context, page, pageSize int) (*models.NotificationPage, error)
	MarkNotificationRead(ctx context.Context, id int64) error
}

var _ AccountReader = (client.Client)(nil)

// AccountService keeps the latest cart count and unread notification count
// for the signed-in user. The refresh methods are driven by the watchers;
// the getters are read by the shell.
type AccountService struct {
	api      AccountReader
	pageSize int

	cart   atomic.Int64
	unread atomic.Int64
}

func NewAccountService(api AccountReader, pageSize int) *AccountService {
	if pageSize <= 0 {
		pageSize = 10
	}
	return &AccountService{api: api, pageSize: pageSize}
}

// RefreshCart fetches the cart size. On failure the count drops to 0.
func (a *AccountService) RefreshCart(ctx context.Context) error {
	n, err := a.api.CartCount(ctx)
	if err != nil {
		a.cart.Store(0)
		return fmt.Errorf("refresh cart: %w", err)
	}
	a.cart.Store(int64(n))
	return nil
}

// SyncNotifications reloads the first page and recounts unread items.
func (a *AccountService) SyncNotifications(ctx context.Context) error {
	page, err := a.api.Notifications(ctx, 1, a.pageSize)
	if err != nil {
		return fmt.Errorf("sync notifications: %w", err)
	}
	a.unread.Store(int64(page.Unread()))
	return nil
}

// Notifications returns one page of the feed.
func (a *AccountService) Notifications(ctx context.Context, page int) (*models.NotificationPage, error) {
	if page < 1 {
		page = 1
	}
	p, err := a.api.Notifications(ctx, page, a.pageSize)
	if err != nil {
		return nil, fmt.Errorf("load notifications: %w", err)
	}
	if page == 1 {
		a.unread.Store(int64(p.Unread()))
	}
	return p, nil
}

func (a *AccountService) MarkRead(ctx context.Context, id int64) error {
	if err := a.api.MarkNotificationRead(ctx, id); err != nil {
		return fmt.Errorf("mark notification %d read: %w", id, err)
	}
	if a.unread.Load() > 0 {
		a.unread.Add(-1)
	}
	return nil
}

func (a *AccountService) CartCount() int   { return int(a.cart.Load()) }
func (a *AccountService) UnreadCount() int { return int(a.unread.Load()) }

// Reset zeroes the counters; called on logout.
func (a *AccountService) Reset() {
	a.cart.Store(0)
	a.unread.Store(0)
}
