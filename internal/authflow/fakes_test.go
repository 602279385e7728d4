package authflow

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/medhelper/medhelper/internal/client/models"
)

// ---- fake clock ----

type fakeTimer struct {
	clock   *fakeClock
	at      time.Time
	fn      func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped || t.fired {
		return false
	}
	t.stopped = true
	return true
}

// fakeClock only moves when Advance is called. Due timers fire
// synchronously inside Advance, in deadline order.
type fakeClock struct {
	mu     sync.Mutex
	now    time.Time
	timers []*fakeTimer
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, at: c.now.Add(d), fn: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	target := c.now.Add(d)
	c.mu.Unlock()

	for {
		c.mu.Lock()
		sort.SliceStable(c.timers, func(i, j int) bool { return c.timers[i].at.Before(c.timers[j].at) })
		var next *fakeTimer
		for _, t := range c.timers {
			if !t.stopped && !t.fired && !t.at.After(target) {
				next = t
				break
			}
		}
		if next == nil {
			c.now = target
			c.mu.Unlock()
			return
		}
		next.fired = true
		c.now = next.at
		c.mu.Unlock()
		next.fn()
	}
}

func (c *fakeClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			n++
		}
	}
	return n
}

// ---- fake API ----

// fakeAPI returns configured errors and records calls and their last
// arguments. A non-nil gate blocks every call until it is closed.
type fakeAPI struct {
	mu sync.Mutex

	LoginToken string
	LoginErr   error
	// LoginErrs, when set, is consumed one entry per Login call.
	LoginErrs   []error
	RegisterErr error
	VerifyErr   error
	ResendErr   error
	ResetErr    error
	SetPassErr  error

	Calls map[string]int

	LastLoginEmail    string
	LastLoginPassword string
	LastSignUp        models.SignUp
	LastOTP           string
	LastResendEmail   string
	LastResetEmail    string
	LastPasswordReset models.PasswordReset

	gate    chan struct{}
	entered chan string
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{LoginToken: "token-abc", Calls: map[string]int{}}
}

// block makes subsequent calls wait until release. entered receives the
// method name once a call is waiting.
func (f *fakeAPI) block() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.gate = make(chan struct{})
	f.entered = make(chan string, 8)
}

func (f *fakeAPI) release() {
	f.mu.Lock()
	gate := f.gate
	f.gate = nil
	f.mu.Unlock()
	if gate != nil {
		close(gate)
	}
}

func (f *fakeAPI) record(name string) {
	f.mu.Lock()
	f.Calls[name]++
	gate, entered := f.gate, f.entered
	f.mu.Unlock()
	if gate != nil {
		entered <- name
		<-gate
	}
}

func (f *fakeAPI) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.Calls[name]
}

func (f *fakeAPI) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, v := range f.Calls {
		n += v
	}
	return n
}

func (f *fakeAPI) Login(_ context.Context, email, password string) (string, error) {
	f.record("login")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastLoginEmail, f.LastLoginPassword = email, password
	err := f.LoginErr
	if len(f.LoginErrs) > 0 {
		err, f.LoginErrs = f.LoginErrs[0], f.LoginErrs[1:]
	}
	if err != nil {
		return "", err
	}
	return f.LoginToken, nil
}

func (f *fakeAPI) Register(_ context.Context, req models.SignUp) error {
	f.record("register")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastSignUp = req
	return f.RegisterErr
}

func (f *fakeAPI) VerifyEmail(_ context.Context, otp string) error {
	f.record("verify")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastOTP = otp
	return f.VerifyErr
}

func (f *fakeAPI) ResendOTP(_ context.Context, email string) error {
	f.record("resend")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastResendEmail = email
	return f.ResendErr
}

func (f *fakeAPI) RequestPasswordReset(_ context.Context, email string) error {
	f.record("request-reset")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastResetEmail = email
	return f.ResetErr
}

func (f *fakeAPI) SetNewPassword(_ context.Context, req models.PasswordReset) error {
	f.record("set-password")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.LastPasswordReset = req
	return f.SetPassErr
}

// ---- in-memory session store ----

type memStore struct {
	mu      sync.Mutex
	data    map[string]string
	SaveErr error
}

func newMemStore() *memStore {
	return &memStore{data: map[string]string{}}
}

func (s *memStore) Save(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SaveErr != nil {
		return s.SaveErr
	}
	s.data["token"] = token
	s.data["isAuthenticated"] = "true"
	return nil
}

// Logout mimics the shell clearing storage.
func (s *memStore) Logout() {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, "token")
	delete(s.data, "isAuthenticated")
}

func (s *memStore) get(k string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	v, ok := s.data[k]
	return v, ok
}
