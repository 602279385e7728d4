package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/medhelper/medhelper/internal/authflow"
	"github.com/medhelper/medhelper/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
)

// Open shows the dialog. An optional argument is taken as the current
// location, so a pasted reset link starts the reset flow.
func (a *App) Open(ctx context.Context, args []string) error {
	if len(args) > 0 {
		a.nav.ReplacePath(args[0])
	}
	v := a.flow.Open(ctx, authflow.OpenOptions{})
	a.printBanner(a.flow.Banner())
	a.println(describeView(v))
	return nil
}

// ensureOpen opens the dialog on its default view unless it is open already.
func (a *App) ensureOpen(ctx context.Context, opts authflow.OpenOptions) {
	if !a.flow.IsOpen() {
		a.flow.Open(ctx, opts)
	}
}

// SignIn switches the dialog to the sign-in form and submits the
// credentials read from the user.
func (a *App) SignIn(ctx context.Context) error {
	a.ensureOpen(ctx, authflow.OpenOptions{})
	if m, ok := a.flow.View().(authflow.MainForm); ok && m.Registering {
		if err := a.flow.ToggleRegistering(); err != nil {
			return a.report(err)
		}
	}
	m, ok := a.flow.View().(authflow.MainForm)
	if !ok {
		return a.report(authflow.ErrWrongView)
	}

	email, err := a.prompt("Email", m.Email)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	return a.report(a.flow.SubmitSignIn(ctx, authflow.Credentials{Email: email, Password: string(password)}))
}

// Register switches the dialog to the registration form and submits it.
// On success the dialog waits for the emailed code.
func (a *App) Register(ctx context.Context) error {
	a.ensureOpen(ctx, authflow.OpenOptions{})
	if m, ok := a.flow.View().(authflow.MainForm); ok && !m.Registering {
		if err := a.flow.ToggleRegistering(); err != nil {
			return a.report(err)
		}
	}
	m, ok := a.flow.View().(authflow.MainForm)
	if !ok {
		return a.report(authflow.ErrWrongView)
	}

	fullName, err := getSimpleText(a.reader, "Full name", a.out)
	if err != nil {
		return err
	}
	email, err := a.prompt("Email", m.Email)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirm, err := getPassword(a.reader, "Confirm password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	err = a.flow.SubmitRegistration(ctx, authflow.Registration{
		FullName: fullName,
		Email:    email,
		Password: string(password),
		Confirm:  string(confirm),
	})
	if err != nil {
		return a.report(err)
	}
	a.println(describeView(a.flow.View()))
	return nil
}

// Verify submits the verification code given as argument or read from the
// user. Non-digits are dropped and the code is cut to six digits.
func (a *App) Verify(ctx context.Context, args []string) error {
	var code string
	if len(args) > 0 {
		code = args[0]
	} else {
		var err error
		if code, err = getSimpleText(a.reader, "Verification code", a.out); err != nil {
			return err
		}
	}
	a.flow.SetCode(code)
	return a.report(a.flow.SubmitCode(ctx))
}

func (a *App) Resend(ctx context.Context) error {
	return a.report(a.flow.ResendCode(ctx))
}

// Forgot opens the reset request form and sends a reset link to the email
// read from the user.
func (a *App) Forgot(ctx context.Context) error {
	a.ensureOpen(ctx, authflow.OpenOptions{ShowResetPassword: true})
	if _, ok := a.flow.View().(authflow.MainForm); ok {
		if err := a.flow.ForgotPassword(); err != nil {
			return a.report(err)
		}
	}
	r, ok := a.flow.View().(authflow.RequestReset)
	if !ok {
		return a.report(authflow.ErrWrongView)
	}

	email, err := a.prompt("Email", r.Email)
	if err != nil {
		return err
	}
	if err := a.report(a.flow.RequestPasswordReset(ctx, email)); err != nil {
		return err
	}
	a.println(describeView(a.flow.View()))
	return nil
}

// Reset sets a new password on the reset link the dialog was opened with.
func (a *App) Reset(ctx context.Context) error {
	a.ensureOpen(ctx, authflow.OpenOptions{})
	if v, ok := a.flow.View().(authflow.ConfirmReset); ok && !v.ValidLink() {
		return a.report(a.flow.SubmitNewPassword(ctx, "", ""))
	}

	password, err := getPassword(a.reader, "New password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	confirm, err := getPassword(a.reader, "Confirm new password", a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	if err := a.report(a.flow.SubmitNewPassword(ctx, string(password), string(confirm))); err != nil {
		return err
	}
	a.println(describeView(a.flow.View()))
	return nil
}

func (a *App) Back(context.Context) error {
	if err := a.report(a.flow.Back()); err != nil {
		return err
	}
	a.println(describeView(a.flow.View()))
	return nil
}

// CloseDialog hides the dialog unless a request is in flight.
func (a *App) CloseDialog(context.Context) error {
	if !a.flow.Close() {
		a.println("Please wait for the current request to finish.")
		return authflow.ErrBusy
	}
	return nil
}

// Logout forgets the stored session and stops the watchers.
func (a *App) Logout(ctx context.Context) error {
	if err := a.sessions.Clear(ctx); err != nil {
		a.log.Error(ctx, "cannot clear session", "error", err)
		a.println("Logout failed:", err)
		return err
	}
	a.loggedIn.Store(false)
	if err := a.watchers.Stop(); err != nil {
		a.log.Warn(ctx, "watchers stopped with error", "error", err)
	}
	a.account.Reset()
	a.println("Logged out.")
	return nil
}

// prompt reads a line, falling back to def when the user enters nothing.
func (a *App) prompt(label, def string) (string, error) {
	if def != "" {
		label = fmt.Sprintf("%s [%s]", label, def)
	}
	s, err := getSimpleText(a.reader, label, a.out)
	if err != nil {
		return "", err
	}
	if s == "" {
		return def, nil
	}
	return s, nil
}

// report prints the outcome of a dialog action and returns err unchanged.
func (a *App) report(err error) error {
	switch {
	case err == nil:
		a.printBanner(a.flow.Banner())
	case errors.Is(err, authflow.ErrBusy):
		a.println("A request is already in progress.")
	case errors.Is(err, authflow.ErrClosed):
		a.println("The dialog is closed. Type 'open' first.")
	case errors.Is(err, authflow.ErrWrongView):
		a.println("That is not available here.", describeView(a.flow.View()))
	case errors.Is(err, authflow.ErrCodeIncomplete):
		a.println(fmt.Sprintf("Enter all %d digits of the code.", authflow.CodeLength))
	case errors.Is(err, authflow.ErrCooldown):
		a.println(fmt.Sprintf("You can request a new code in %d s.", a.flow.ResendCooldown()))
	default:
		a.printBanner(a.flow.Banner())
	}
	return err
}

func (a *App) printBanner(b authflow.Banner) {
	switch b.Kind {
	case authflow.BannerError:
		a.println("Error:", b.Text)
	case authflow.BannerSuccess:
		a.println(b.Text)
	}
}

// describeView tells the user what the current view expects.
func describeView(v authflow.View) string {
	switch v := v.(type) {
	case authflow.MainForm:
		if v.Registering {
			return "Create an account with 'register'. Already registered? Type 'signin'."
		}
		return "Sign in with 'signin'. New here? Type 'register'. Forgot your password? Type 'forgot'."
	case authflow.VerifyEmail:
		if v.Verified {
			return "Signing you in..."
		}
		return fmt.Sprintf("Enter the %d-digit code sent to %s with 'verify <code>'. Type 'resend' for a new one.", authflow.CodeLength, v.Email)
	case authflow.RequestReset:
		if v.Sent {
			return fmt.Sprintf("Check %s for the reset link, then type 'open <link>'.", v.Email)
		}
		return "Type 'forgot' and enter your email to get a reset link."
	case authflow.ConfirmReset:
		switch {
		case v.Done:
			return "Returning to sign in..."
		case v.ValidLink():
			return "Choose a new password with 'reset'."
		default:
			return "Type 'close', then 'forgot' to request a new link."
		}
	}
	return ""
}
