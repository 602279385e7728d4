package authflow

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/medhelper/medhelper/internal/client/models"
	"github.com/medhelper/medhelper/internal/common"
	"github.com/medhelper/medhelper/internal/logging"
)

const (
	// AutoSignInDelay separates an accepted code from the replayed sign-in.
	AutoSignInDelay = 1500 * time.Millisecond
	// ResetReturnDelay separates a completed reset from the return to
	// MainForm.
	ResetReturnDelay = 3 * time.Second
)

// OpenOptions select the initial view when no reset link is present.
type OpenOptions struct {
	// ShowResetPassword opens the reset request form.
	ShowResetPassword bool
	// ResetToken is a token handed over by the shell without the uidb64
	// segment. It always yields an invalid link.
	ResetToken string
}

// Option configures a Controller.
type Option func(*Controller)

func WithClock(c Clock) Option {
	return func(ctl *Controller) { ctl.clock = c }
}

func WithNavigator(n Navigator) Option {
	return func(ctl *Controller) { ctl.nav = n }
}

// WithOnLogin registers the callback run after a session was stored.
func WithOnLogin(fn func(token string)) Option {
	return func(ctl *Controller) { ctl.onLogin = fn }
}

// WithOnChange registers a callback for changes made by timers, which
// happen outside any caller's request.
func WithOnChange(fn func(v View, b Banner)) Option {
	return func(ctl *Controller) { ctl.onChange = fn }
}

func WithLogger(l logging.Logger) Option {
	return func(ctl *Controller) { ctl.log = l }
}

// Controller runs the sign-in dialog. See the package documentation.
type Controller struct {
	api   AuthAPI
	store SessionStore
	clock Clock
	nav   Navigator
	log   logging.Logger

	onLogin  func(token string)
	onChange func(View, Banner)

	mu      sync.Mutex
	open    bool
	loading bool
	view    View
	banner  Banner
	gen     uint64

	timers    map[uint64]Timer // pending only; fired timers remove themselves
	nextTimer uint64
}

func NewController(api AuthAPI, store SessionStore, opts ...Option) *Controller {
	c := &Controller{
		api:   api,
		store: store,
		clock: SystemClock,
		nav:   NewPathNavigator("/"),
		log:   logging.Nop{},
		view:  MainForm{},

		timers: map[uint64]Timer{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Open shows the dialog. A reset link in the current path wins over opts
// and is removed from the path. While a request is in flight, or when the
// dialog is already open and no reset link is given, the current view is
// kept.
func (c *Controller) Open(ctx context.Context, opts OpenOptions) View {
	c.mu.Lock()
	defer c.mu.Unlock()

	link, hasLink := ParseResetLink(c.nav.CurrentPath())
	wasOpen := c.open
	c.open = true
	if c.loading || (wasOpen && !hasLink && opts.ResetToken == "") {
		return c.view
	}

	c.banner = Banner{}
	if hasLink {
		c.nav.ReplacePath(common.ResetConfirmPath)
		c.view = Next(c.view, ResetLinkFound{UIDB64: link.UIDB64, Token: link.Token})
		c.log.Debug(ctx, "reset link consumed", "valid", link.Valid())
	} else if opts.ResetToken != "" {
		c.view = Next(c.view, ResetLinkFound{Token: opts.ResetToken})
	} else {
		c.view = Next(c.view, Opened{ShowResetPassword: opts.ShowResetPassword})
	}

	if v, ok := c.view.(ConfirmReset); ok && !v.ValidLink() {
		c.banner = errorBanner(MsgInvalidLink)
	}
	return c.view
}

// Close hides the dialog. It refuses, returning false, while a request is
// in flight.
func (c *Controller) Close() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loading {
		return false
	}
	c.open = false
	return true
}

func (c *Controller) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *Controller) IsLoading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loading
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *Controller) Banner() Banner {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.banner
}

// ToggleRegistering switches the main form between sign-in and
// registration, clearing its fields and banner.
func (c *Controller) ToggleRegistering() error {
	return c.apply(Toggled{}, isMainForm)
}

// ForgotPassword moves from the main form to the reset request form.
func (c *Controller) ForgotPassword() error {
	return c.apply(ForgotPressed{}, isMainForm)
}

// Back returns to the main form from the verification and reset request
// views. The reset confirmation view can only be closed.
func (c *Controller) Back() error {
	return c.apply(BackPressed{}, func(v View) bool {
		switch v := v.(type) {
		case VerifyEmail:
			return !v.Verified
		case RequestReset:
			return true
		}
		return false
	})
}

func (c *Controller) apply(e Event, allowed func(View) bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkLocked(allowed); err != nil {
		return err
	}
	c.view = Next(c.view, e)
	c.banner = Banner{}
	return nil
}

// checkLocked rejects an action when the dialog is closed, busy, or the
// current view does not accept it.
func (c *Controller) checkLocked(allowed func(View) bool) error {
	if !c.open {
		return ErrClosed
	}
	if c.loading {
		return ErrBusy
	}
	if !allowed(c.view) {
		return ErrWrongView
	}
	return nil
}

// beginLocked marks a request as started and returns the generation it belongs
// to.
func (c *Controller) beginLocked() uint64 {
	c.loading = true
	c.banner = Banner{}
	return c.gen
}

// finish applies the outcome of a request started in generation gen. It
// returns false, leaving the state alone, if Teardown ran in between.
func (c *Controller) finish(gen uint64, fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.gen {
		return false
	}
	c.loading = false
	fn()
	return true
}

func (c *Controller) current(gen uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return gen == c.gen
}

func (c *Controller) fail(err error) error {
	c.banner = errorBanner(err.Error())
	return err
}

// SubmitSignIn validates creds, signs in and stores the session. On success
// the dialog closes and OnLogin runs.
func (c *Controller) SubmitSignIn(ctx context.Context, creds Credentials) error {
	c.mu.Lock()
	if err := c.checkLocked(isSignInForm); err != nil {
		c.mu.Unlock()
		return err
	}
	if err := ValidateSignIn(creds); err != nil {
		defer c.mu.Unlock()
		return c.fail(err)
	}
	gen := c.beginLocked()
	c.mu.Unlock()

	return c.signIn(ctx, gen, creds, false)
}

// signIn performs the login request and its aftermath. auto marks the
// replay after email verification.
func (c *Controller) signIn(ctx context.Context, gen uint64, creds Credentials, auto bool) error {
	token, err := c.api.Login(ctx, creds.Email, creds.Password)
	if err == nil && c.current(gen) {
		if saveErr := c.store.Save(ctx, token); saveErr != nil {
			c.log.Error(ctx, "session not saved", "error", saveErr)
			err = fmt.Errorf("%w: %w", errSessionNotSaved, saveErr)
		}
	}

	var saved bool
	ok := c.finish(gen, func() {
		switch {
		case err == nil:
			c.view = Next(c.view, SignedIn{})
			c.banner = Banner{}
			c.open = false
			saved = true
		case auto:
			c.view = Next(c.view, AutoSignInFailed{Email: creds.Email})
			c.banner = errorBanner(signInMessage(err))
		default:
			c.banner = errorBanner(signInMessage(err))
		}
	})
	if !ok {
		return ErrClosed
	}
	if saved {
		c.log.Info(ctx, "signed in", "email", creds.Email)
		if c.onLogin != nil {
			c.onLogin(token)
		}
		return nil
	}
	c.log.Warn(ctx, "sign in failed", "email", creds.Email, "error", err)
	return err
}

var errSessionNotSaved = errors.New("session not saved")

func signInMessage(err error) string {
	if errors.Is(err, errSessionNotSaved) {
		return msgSessionNotSaved
	}
	return actSignIn.message(err)
}

// SubmitRegistration validates r and registers the account. On success the
// dialog moves to VerifyEmail and the resend cooldown starts.
func (c *Controller) SubmitRegistration(ctx context.Context, r Registration) error {
	c.mu.Lock()
	if err := c.checkLocked(isRegisterForm); err != nil {
		c.mu.Unlock()
		return err
	}
	if err := ValidateRegistration(r); err != nil {
		defer c.mu.Unlock()
		return c.fail(err)
	}
	gen := c.beginLocked()
	c.mu.Unlock()

	err := c.api.Register(ctx, models.SignUp{
		Email:     r.Email,
		Password:  r.Password,
		FullName:  r.FullName,
		Password2: r.Confirm,
	})

	ok := c.finish(gen, func() {
		if err != nil {
			c.banner = errorBanner(actRegister.message(err))
			return
		}
		c.view = Next(c.view, Registered{Email: r.Email, Password: r.Password, At: c.clock.Now()})
	})
	if !ok {
		return ErrClosed
	}
	if err != nil {
		c.log.Warn(ctx, "registration failed", "email", r.Email, "error", err)
		return err
	}
	c.log.Info(ctx, "registered, awaiting verification", "email", r.Email)
	return nil
}

// SetCode replaces the verification code with the digits of raw, capped at
// six, and returns what was kept. Outside VerifyEmail it does nothing.
func (c *Controller) SetCode(raw string) string {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.view.(VerifyEmail)
	if !ok {
		return ""
	}
	if v.Verified {
		return v.Code
	}
	c.view = Next(v, CodeEdited{Code: raw})
	return c.view.(VerifyEmail).Code
}

// CanVerify reports whether SubmitCode would send a request.
func (c *Controller) CanVerify() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.view.(VerifyEmail)
	return ok && c.open && !c.loading && !v.Verified && CodeComplete(v.Code)
}

// SubmitCode sends the verification code. Once accepted, the sign-in is
// replayed after AutoSignInDelay.
func (c *Controller) SubmitCode(ctx context.Context) error {
	c.mu.Lock()
	if err := c.checkLocked(isUnverified); err != nil {
		c.mu.Unlock()
		return err
	}
	v := c.view.(VerifyEmail)
	if !CodeComplete(v.Code) {
		c.mu.Unlock()
		return ErrCodeIncomplete
	}
	gen := c.beginLocked()
	c.mu.Unlock()

	err := c.api.VerifyEmail(ctx, v.Code)

	ok := c.finish(gen, func() {
		if err != nil {
			c.banner = errorBanner(actVerify.message(err))
			return
		}
		c.view = Next(c.view, CodeVerified{})
		c.banner = successBanner(MsgVerified)
		c.scheduleLocked(AutoSignInDelay, func() { c.autoSignIn(gen) })
	})
	if !ok {
		return ErrClosed
	}
	if err != nil {
		c.log.Warn(ctx, "verification failed", "email", v.Email, "error", err)
		return err
	}
	return nil
}

// autoSignIn replays the sign-in with the credentials kept since
// registration.
func (c *Controller) autoSignIn(gen uint64) {
	c.mu.Lock()
	v, ok := c.view.(VerifyEmail)
	if gen != c.gen || !ok || !v.Verified || c.loading {
		c.mu.Unlock()
		return
	}
	c.beginLocked()
	c.mu.Unlock()

	_ = c.signIn(context.Background(), gen, Credentials{Email: v.Email, Password: v.Password}, true)
	c.notify(gen)
}

// ResendCooldown returns the whole seconds left before ResendCode is
// allowed, or 0 outside VerifyEmail.
func (c *Controller) ResendCooldown() int {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.view.(VerifyEmail)
	if !ok {
		return 0
	}
	return secondsUntil(c.clock.Now(), v.ResendAt)
}

func secondsUntil(now, t time.Time) int {
	left := t.Sub(now)
	if left <= 0 {
		return 0
	}
	return int(math.Ceil(left.Seconds()))
}

// ResendCode asks for a new verification code. The cooldown restarts after
// the attempt whether or not it succeeded.
func (c *Controller) ResendCode(ctx context.Context) error {
	c.mu.Lock()
	if err := c.checkLocked(isUnverified); err != nil {
		c.mu.Unlock()
		return err
	}
	v := c.view.(VerifyEmail)
	if secondsUntil(c.clock.Now(), v.ResendAt) > 0 {
		c.mu.Unlock()
		return ErrCooldown
	}
	gen := c.beginLocked()
	c.mu.Unlock()

	err := c.api.ResendOTP(ctx, v.Email)

	ok := c.finish(gen, func() {
		c.view = Next(c.view, ResendAttempted{At: c.clock.Now()})
		if err != nil {
			c.banner = errorBanner(actResend.message(err))
			return
		}
		c.banner = successBanner(MsgCodeResent)
	})
	if !ok {
		return ErrClosed
	}
	if err != nil {
		c.log.Warn(ctx, "resend failed", "email", v.Email, "error", err)
	}
	return err
}

// RequestPasswordReset asks the server to email a reset link. The view
// stays on the form with a confirmation.
func (c *Controller) RequestPasswordReset(ctx context.Context, email string) error {
	c.mu.Lock()
	if err := c.checkLocked(isResetRequest); err != nil {
		c.mu.Unlock()
		return err
	}
	if err := ValidateResetEmail(email); err != nil {
		defer c.mu.Unlock()
		return c.fail(err)
	}
	gen := c.beginLocked()
	c.mu.Unlock()

	err := c.api.RequestPasswordReset(ctx, email)

	ok := c.finish(gen, func() {
		if err != nil {
			c.banner = errorBanner(actResetLink.message(err))
			return
		}
		c.view = Next(c.view, ResetRequested{Email: email})
		c.banner = successBanner(MsgResetLinkSent)
	})
	if !ok {
		return ErrClosed
	}
	if err != nil {
		c.log.Warn(ctx, "reset link request failed", "error", err)
	}
	return err
}

// SubmitNewPassword completes a reset. After success the dialog returns to
// MainForm once ResetReturnDelay has passed.
func (c *Controller) SubmitNewPassword(ctx context.Context, password, confirm string) error {
	c.mu.Lock()
	if err := c.checkLocked(isConfirmReset); err != nil {
		c.mu.Unlock()
		return err
	}
	v := c.view.(ConfirmReset)
	if !v.ValidLink() {
		c.banner = errorBanner(MsgInvalidLink)
		c.mu.Unlock()
		return ErrInvalidResetLink
	}
	if err := ValidateNewPassword(password, confirm); err != nil {
		defer c.mu.Unlock()
		return c.fail(err)
	}
	gen := c.beginLocked()
	c.mu.Unlock()

	err := c.api.SetNewPassword(ctx, models.PasswordReset{UIDB64: v.UIDB64, Token: v.Token, Password: password})

	ok := c.finish(gen, func() {
		if err != nil {
			c.banner = errorBanner(actNewPassword.message(err))
			return
		}
		c.view = Next(c.view, PasswordChanged{})
		c.banner = successBanner(MsgPasswordChanged)
		c.scheduleLocked(ResetReturnDelay, func() { c.finishReset(gen) })
	})
	if !ok {
		return ErrClosed
	}
	if err != nil {
		c.log.Warn(ctx, "password reset failed", "error", err)
	}
	return err
}

func (c *Controller) finishReset(gen uint64) {
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	v, ok := c.view.(ConfirmReset)
	if ok && v.Done {
		c.view = Next(c.view, ResetFinished{})
		c.banner = Banner{}
	}
	c.mu.Unlock()

	if ok && v.Done {
		c.notify(gen)
	}
}

// Teardown stops pending timers and detaches in-flight requests: their
// results are dropped. The controller is left closed on a fresh MainForm
// and may be opened again.
func (c *Controller) Teardown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, t := range c.timers {
		t.Stop()
	}
	clear(c.timers)
	c.gen++
	c.loading = false
	c.open = false
	c.view = MainForm{}
	c.banner = Banner{}
}

func (c *Controller) scheduleLocked(d time.Duration, fn func()) {
	c.nextTimer++
	id := c.nextTimer
	c.timers[id] = c.clock.AfterFunc(d, func() {
		c.mu.Lock()
		delete(c.timers, id)
		c.mu.Unlock()
		fn()
	})
}

func (c *Controller) pendingTimers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.timers)
}

func (c *Controller) notify(gen uint64) {
	if c.onChange == nil {
		return
	}
	c.mu.Lock()
	if gen != c.gen {
		c.mu.Unlock()
		return
	}
	v, b := c.view, c.banner
	c.mu.Unlock()
	c.onChange(v, b)
}

func isMainForm(v View) bool {
	_, ok := v.(MainForm)
	return ok
}

func isSignInForm(v View) bool {
	m, ok := v.(MainForm)
	return ok && !m.Registering
}

func isRegisterForm(v View) bool {
	m, ok := v.(MainForm)
	return ok && m.Registering
}

func isUnverified(v View) bool {
	e, ok := v.(VerifyEmail)
	return ok && !e.Verified
}

func isResetRequest(v View) bool {
	_, ok := v.(RequestReset)
	return ok
}

func isConfirmReset(v View) bool {
	r, ok := v.(ConfirmReset)
	return ok && !r.Done
}
