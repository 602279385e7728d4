package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/medhelper/medhelper/internal/client/client"
)

var errNotSignedIn = errors.New("not signed in")

func (a *App) requireLogin() error {
	if !a.isLoggedIn() {
		a.println("Please sign in first.")
		return errNotSignedIn
	}
	return nil
}

// Status prints the session, the dialog state and the cached counters.
func (a *App) Status(ctx context.Context) error {
	sess, err := a.sessions.Load(ctx)
	if err != nil {
		a.log.Warn(ctx, "cannot read session", "error", err)
	}
	switch {
	case !a.isLoggedIn():
		a.println("Signed out.")
	case sess.Email != "":
		a.println("Signed in as", sess.Email+".")
	default:
		a.println("Signed in.")
	}

	if a.flow.IsOpen() {
		a.println("Dialog:", a.flow.View().Name())
		a.printBanner(a.flow.Banner())
		a.println(describeView(a.flow.View()))
	}
	if a.isLoggedIn() {
		a.println(fmt.Sprintf("Cart: %d  Unread notifications: %d", a.account.CartCount(), a.account.UnreadCount()))
	}
	return err
}

// Cart refreshes and prints the cart size.
func (a *App) Cart(ctx context.Context) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if err := a.account.RefreshCart(ctx); err != nil {
		a.printAPIError("Could not load the cart", err)
		return err
	}
	a.println(fmt.Sprintf("Cart: %d item(s)", a.account.CartCount()))
	return nil
}

// Notifications prints one page of the notification feed; the optional
// argument is the page number.
func (a *App) Notifications(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	page := 1
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n < 1 {
			a.println("Usage: notifications [page]")
			return fmt.Errorf("bad page %q", args[0])
		}
		page = n
	}

	p, err := a.account.Notifications(ctx, page)
	if err != nil {
		a.printAPIError("Could not load notifications", err)
		return err
	}
	if len(p.Results) == 0 {
		a.println("No notifications.")
		return nil
	}
	for _, n := range p.Results {
		mark := "*"
		if n.Read {
			mark = " "
		}
		a.println(fmt.Sprintf("%s #%d  %s  %s", mark, n.ID, n.CreatedAt.Local().Format("2006-01-02 15:04"), n.Subject))
	}
	if p.HasMore() {
		a.println(fmt.Sprintf("More: type 'notifications %d'.", page+1))
	}
	return nil
}

// Read marks the notification with the given id as read.
func (a *App) Read(ctx context.Context, args []string) error {
	if err := a.requireLogin(); err != nil {
		return err
	}
	if len(args) == 0 {
		a.println("Usage: read <id>")
		return errors.New("missing id")
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		a.println("Usage: read <id>")
		return fmt.Errorf("bad id %q: %w", args[0], err)
	}
	if err := a.account.MarkRead(ctx, id); err != nil {
		a.printAPIError("Could not update the notification", err)
		return err
	}
	a.println(fmt.Sprintf("Notification #%d marked as read.", id))
	return nil
}

func (a *App) printAPIError(what string, err error) {
	var apiErr *client.APIError
	switch {
	case errors.As(err, &apiErr) && apiErr.Status == http.StatusUnauthorized:
		// onUnauthorized already told the user.
	case apiErr != nil && apiErr.Message != "":
		a.println(what+":", apiErr.Message)
	case errors.Is(err, client.ErrUnavailable):
		a.println(what + ": the server is unavailable.")
	default:
		a.println(what + ".")
	}
}
