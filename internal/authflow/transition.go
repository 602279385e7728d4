package authflow

import "time"

// ResendCooldown is how long the resend action stays disabled.
const ResendCooldown = 60 * time.Second

// Event is an input to Next.
type Event interface {
	isEvent()
}

type (
	// Opened selects the view the dialog starts in when no reset link is
	// present.
	Opened struct{ ShowResetPassword bool }
	// ResetLinkFound enters ConfirmReset. Empty tokens give an invalid link.
	ResetLinkFound struct{ UIDB64, Token string }
	// Toggled flips between sign-in and registration.
	Toggled struct{}
	// ForgotPressed opens the reset request form.
	ForgotPressed struct{}
	// BackPressed returns to the main form.
	BackPressed struct{}
	// SignedIn resets the dialog after a session was established.
	SignedIn struct{}
	// AutoSignInFailed returns to sign-in after the replayed login failed.
	AutoSignInFailed struct{ Email string }
	// Registered enters VerifyEmail; the cooldown starts at At.
	Registered struct {
		Email, Password string
		At              time.Time
	}
	// CodeEdited replaces the verification code input.
	CodeEdited struct{ Code string }
	// CodeVerified marks the code as accepted.
	CodeVerified struct{}
	// ResendAttempted restarts the cooldown at At, whatever the outcome.
	ResendAttempted struct{ At time.Time }
	// ResetRequested marks the reset link as sent to Email.
	ResetRequested struct{ Email string }
	// PasswordChanged marks the reset as done.
	PasswordChanged struct{}
	// ResetFinished leaves ConfirmReset after the success delay.
	ResetFinished struct{}
)

func (Opened) isEvent()           {}
func (ResetLinkFound) isEvent()   {}
func (Toggled) isEvent()          {}
func (ForgotPressed) isEvent()    {}
func (BackPressed) isEvent()      {}
func (SignedIn) isEvent()         {}
func (AutoSignInFailed) isEvent() {}
func (Registered) isEvent()       {}
func (CodeEdited) isEvent()       {}
func (CodeVerified) isEvent()     {}
func (ResendAttempted) isEvent()  {}
func (ResetRequested) isEvent()   {}
func (PasswordChanged) isEvent()  {}
func (ResetFinished) isEvent()    {}

// Next returns the view that follows v after e. Events that do not apply to
// v leave it unchanged. A nil v is treated as a fresh MainForm.
func Next(v View, e Event) View {
	if v == nil {
		v = MainForm{}
	}

	switch e := e.(type) {
	case Opened:
		if e.ShowResetPassword {
			return RequestReset{}
		}
		return MainForm{}
	case ResetLinkFound:
		return ConfirmReset{UIDB64: e.UIDB64, Token: e.Token}
	case SignedIn:
		return MainForm{}
	}

	switch cur := v.(type) {
	case MainForm:
		switch e.(type) {
		case Toggled:
			return MainForm{Registering: !cur.Registering}
		case ForgotPressed:
			return RequestReset{Email: cur.Email}
		}
		if r, ok := e.(Registered); ok && cur.Registering {
			return VerifyEmail{Email: r.Email, Password: r.Password, ResendAt: r.At.Add(ResendCooldown)}
		}

	case VerifyEmail:
		switch e := e.(type) {
		case CodeEdited:
			if !cur.Verified {
				cur.Code = SanitizeCode(e.Code)
			}
			return cur
		case CodeVerified:
			cur.Verified = true
			return cur
		case ResendAttempted:
			if !cur.Verified {
				cur.ResendAt = e.At.Add(ResendCooldown)
			}
			return cur
		case BackPressed:
			if !cur.Verified {
				return MainForm{Registering: true, Email: cur.Email}
			}
		case AutoSignInFailed:
			return MainForm{Email: e.Email}
		}

	case RequestReset:
		switch e := e.(type) {
		case ResetRequested:
			return RequestReset{Email: e.Email, Sent: true}
		case BackPressed:
			return MainForm{}
		}

	case ConfirmReset:
		switch e.(type) {
		case PasswordChanged:
			if cur.ValidLink() {
				cur.Done = true
			}
			return cur
		case ResetFinished:
			if cur.Done {
				return MainForm{}
			}
		}
	}

	return v
}
