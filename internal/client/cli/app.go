package cli

import (
	"bufio"
	"context"
	"database/sql"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"

	"go.uber.org/zap/zapcore"

	"github.com/medhelper/medhelper/internal/authflow"
	"github.com/medhelper/medhelper/internal/client/client"
	"github.com/medhelper/medhelper/internal/client/config"
	"github.com/medhelper/medhelper/internal/client/services"
	"github.com/medhelper/medhelper/internal/client/watcher"
	"github.com/medhelper/medhelper/internal/logging"

	_ "modernc.org/sqlite"
)

// deps are the collaborators of an App. NewApp builds the real ones; tests
// pass fakes.
type deps struct {
	api      authflow.AuthAPI
	account  services.AccountReader
	sessions services.SessionService
	clock    authflow.Clock
	log      logging.Logger
}

type App struct {
	config   *config.Config
	sessions services.SessionService
	account  *services.AccountService
	flow     *authflow.Controller
	nav      *authflow.PathNavigator
	watchers *watcher.Group
	log      logging.Logger
	db       *sql.DB

	reader *bufio.Reader
	outMu  sync.Mutex
	out    io.Writer

	loggedIn atomic.Bool
	runCtx   context.Context
}

// NewApp opens the local database, builds the API client and wires the
// sign-in dialog, the session store and the background watchers.
func NewApp(ctx context.Context, c *config.Config, in io.Reader, out io.Writer, log logging.Logger) (*App, error) {
	db, err := client.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "path", c.DatabasePath, "error", err)
		return nil, err
	}
	sessions := services.NewSessionService(db)

	var app *App
	api, err := client.NewHTTPClient(c.APIBaseURL,
		client.WithTimeout(c.RequestTimeout),
		client.WithTokenSource(client.TokenSourceFunc(sessions.Token)),
		client.WithUnauthorizedHandler(func(ctx context.Context) { app.onUnauthorized(ctx) }),
		client.WithLogger(log),
	)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	app = newApp(c, deps{api: api, account: api, sessions: sessions, clock: authflow.SystemClock, log: log}, in, out)
	app.db = db
	app.restoreSession(ctx)
	return app, nil
}

func newApp(c *config.Config, d deps, in io.Reader, out io.Writer) *App {
	if d.log == nil {
		d.log = logging.Nop{}
	}
	if d.clock == nil {
		d.clock = authflow.SystemClock
	}

	a := &App{
		config:   c,
		sessions: d.sessions,
		account:  services.NewAccountService(d.account, c.NotificationPageSize),
		nav:      authflow.NewPathNavigator("/"),
		log:      d.log,
		reader:   bufio.NewReader(in),
		out:      out,
		runCtx:   context.Background(),
	}
	a.flow = authflow.NewController(d.api, d.sessions,
		authflow.WithClock(d.clock),
		authflow.WithNavigator(a.nav),
		authflow.WithOnLogin(a.onLogin),
		authflow.WithOnChange(a.onChange),
		authflow.WithLogger(d.log),
	)
	a.watchers = watcher.NewGroup(
		watcher.Poller{
			Name:     "cart",
			Interval: c.CartPollInterval,
			Timeout:  c.RequestTimeout,
			Fn:       a.whenLoggedIn(a.account.RefreshCart),
			Log:      d.log,
		},
		watcher.Poller{
			Name:     "notifications",
			Interval: c.NotificationPollInterval,
			Timeout:  c.RequestTimeout,
			Fn:       a.whenLoggedIn(a.account.SyncNotifications),
			Log:      d.log,
		},
	)
	return a
}

// restoreSession picks up a session stored by a previous run.
func (a *App) restoreSession(ctx context.Context) {
	ok, err := a.sessions.IsAuthenticated(ctx)
	if err != nil {
		a.log.Warn(ctx, "cannot read stored session", "error", err)
		return
	}
	a.loggedIn.Store(ok)
}

// Run starts the REPL and blocks until the user exits or in is exhausted.
func (a *App) Run(ctx context.Context) {
	a.runCtx = ctx
	defer a.Close()
	a.Root(ctx)
}

// Close stops the watchers and timers and releases the database.
func (a *App) Close() {
	a.flow.Teardown()
	if err := a.watchers.Stop(); err != nil {
		a.log.Warn(context.Background(), "watchers stopped with error", "error", err)
	}
	if a.db != nil {
		_ = a.db.Close()
	}
}

func (a *App) isLoggedIn() bool {
	return a.loggedIn.Load()
}

func (a *App) onLogin(string) {
	a.loggedIn.Store(true)
	a.watchers.Start(a.runCtx)
	a.println("Signed in.")
}

// onChange reports view changes made by timers, after the command that
// caused them has returned.
func (a *App) onChange(v authflow.View, b authflow.Banner) {
	a.printBanner(b)
	a.println(describeView(v))
}

// onUnauthorized runs when an authenticated call gets a 401. It can fire
// from a watcher, so the watchers are left running; they skip their work
// until the next sign-in.
func (a *App) onUnauthorized(ctx context.Context) {
	if !a.loggedIn.Swap(false) {
		return
	}
	if err := a.sessions.Clear(ctx); err != nil {
		a.log.Error(ctx, "cannot clear session", "error", err)
	}
	a.account.Reset()
	a.println("Your session has expired. Please sign in again.")
}

func (a *App) whenLoggedIn(fn func(ctx context.Context) error) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		if !a.isLoggedIn() {
			return nil
		}
		return fn(ctx)
	}
}

func (a *App) println(args ...any) {
	a.outMu.Lock()
	defer a.outMu.Unlock()
	fmt.Fprintln(a.out, args...)
}

// NewLogger builds the logger selected by c.LogFormat, writing to w.
func NewLogger(c *config.Config, w io.Writer) (logging.Logger, func() error, error) {
	switch strings.ToLower(c.LogFormat) {
	case "json":
		var lvl slog.Level
		if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
			return nil, nil, fmt.Errorf("log level: %w", err)
		}
		return logging.NewSlogLogger(logging.NewJSONSlog(w, lvl)), func() error { return nil }, nil
	default:
		lvl, err := zapcore.ParseLevel(c.LogLevel)
		if err != nil {
			return nil, nil, fmt.Errorf("log level: %w", err)
		}
		zl := logging.NewZapLogger(logging.NewConsoleZap(w, lvl))
		return zl, zl.Sync, nil
	}
}
