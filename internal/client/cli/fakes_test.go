package cli

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/medhelper/medhelper/internal/authflow"
	"github.com/medhelper/medhelper/internal/client/client"
	"github.com/medhelper/medhelper/internal/client/config"
	"github.com/medhelper/medhelper/internal/client/models"
	"github.com/medhelper/medhelper/internal/client/services"
)

// fakeAPI serves both the dialog and the account reads.
type fakeAPI struct {
	mu sync.Mutex

	token    string
	loginErr error
	regErr   error
	cart     int
	cartErr  error
	page     *models.NotificationPage
	markErr  error

	calls     []string
	lastReset models.PasswordReset
	lastOTP   string
	marked    []int64
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, name)
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) Login(context.Context, string, string) (string, error) {
	f.record("login")
	return f.token, f.loginErr
}

func (f *fakeAPI) Register(context.Context, models.SignUp) error {
	f.record("register")
	return f.regErr
}

func (f *fakeAPI) VerifyEmail(_ context.Context, otp string) error {
	f.record("verify")
	f.lastOTP = otp
	return nil
}

func (f *fakeAPI) ResendOTP(context.Context, string) error {
	f.record("resend")
	return nil
}

func (f *fakeAPI) RequestPasswordReset(context.Context, string) error {
	f.record("request-reset")
	return nil
}

func (f *fakeAPI) SetNewPassword(_ context.Context, req models.PasswordReset) error {
	f.record("set-password")
	f.lastReset = req
	return nil
}

func (f *fakeAPI) CartCount(context.Context) (int, error) {
	f.record("cart")
	return f.cart, f.cartErr
}

func (f *fakeAPI) Notifications(context.Context, int, int) (*models.NotificationPage, error) {
	f.record("notifications")
	if f.page == nil {
		return &models.NotificationPage{}, nil
	}
	return f.page, nil
}

func (f *fakeAPI) MarkNotificationRead(_ context.Context, id int64) error {
	f.record("mark-read")
	f.marked = append(f.marked, id)
	return f.markErr
}

// manualClock collects timers and fires them on demand.
type manualClock struct {
	mu     sync.Mutex
	timers []*manualTimer
}

type manualTimer struct {
	fn      func()
	stopped bool
}

func (t *manualTimer) Stop() bool {
	was := !t.stopped
	t.stopped = true
	return was
}

func (c *manualClock) Now() time.Time { return time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC) }

func (c *manualClock) AfterFunc(_ time.Duration, f func()) authflow.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{fn: f}
	c.timers = append(c.timers, t)
	return t
}

// fireAll runs every pending timer once.
func (c *manualClock) fireAll() {
	c.mu.Lock()
	timers := c.timers
	c.timers = nil
	c.mu.Unlock()
	for _, t := range timers {
		if !t.stopped {
			t.stopped = true
			t.fn()
		}
	}
}

type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

type testApp struct {
	*App
	api   *fakeAPI
	clock *manualClock
	out   *lockedBuffer
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.CartPollInterval = time.Hour
	cfg.NotificationPollInterval = time.Hour

	api := &fakeAPI{token: "token-abc", cart: 3}
	clk := &manualClock{}
	out := &lockedBuffer{}
	a := newApp(cfg, deps{api: api, account: api, sessions: services.NewSessionService(db), clock: clk}, strings.NewReader(""), out)
	t.Cleanup(a.Close)
	return &testApp{App: a, api: api, clock: clk, out: out}
}

// stubInputs feeds answers to the text and password prompts in order.
func stubInputs(t *testing.T, texts []string, passwords []string) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) {
		if len(texts) == 0 {
			return "", io.EOF
		}
		s := texts[0]
		texts = texts[1:]
		return s, nil
	}
	getPassword = func(_ *bufio.Reader, _ string, _ io.Writer) ([]byte, error) {
		if len(passwords) == 0 {
			return nil, io.EOF
		}
		p := passwords[0]
		passwords = passwords[1:]
		return []byte(p), nil
	}
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}
