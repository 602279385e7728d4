package authflow

import "time"

// View is one of MainForm, VerifyEmail, RequestReset or ConfirmReset.
type View interface {
	Name() string
	isView()
}

// MainForm is the sign-in form, or the registration form when Registering
// is set. Email pre-fills the email field.
type MainForm struct {
	Registering bool
	Email       string
}

// VerifyEmail collects the 6-digit code sent after registration. Email and
// Password are kept to replay the sign-in once the code is accepted.
type VerifyEmail struct {
	Email    string
	Password string
	Code     string

	// ResendAt is the earliest moment another code may be requested.
	ResendAt time.Time
	// Verified is set once the server accepted the code; the dialog then
	// waits for the automatic sign-in.
	Verified bool
}

// RequestReset asks for the email a reset link is sent to.
type RequestReset struct {
	Email string
	Sent  bool
}

// ConfirmReset sets a new password with the tokens from a reset link.
type ConfirmReset struct {
	UIDB64 string
	Token  string
	Done   bool
}

func (MainForm) Name() string     { return "main" }
func (VerifyEmail) Name() string  { return "verify-email" }
func (RequestReset) Name() string { return "request-reset" }
func (ConfirmReset) Name() string { return "confirm-reset" }

func (MainForm) isView()     {}
func (VerifyEmail) isView()  {}
func (RequestReset) isView() {}
func (ConfirmReset) isView() {}

// ValidLink reports whether both reset tokens are present.
func (v ConfirmReset) ValidLink() bool {
	return v.UIDB64 != "" && v.Token != ""
}

// BannerKind tells errors from confirmations.
type BannerKind int

const (
	BannerNone BannerKind = iota
	BannerError
	BannerSuccess
)

func (k BannerKind) String() string {
	switch k {
	case BannerError:
		return "error"
	case BannerSuccess:
		return "success"
	default:
		return "none"
	}
}

// Banner is the message shown inside the active view.
type Banner struct {
	Kind BannerKind
	Text string
}

func errorBanner(text string) Banner   { return Banner{Kind: BannerError, Text: text} }
func successBanner(text string) Banner { return Banner{Kind: BannerSuccess, Text: text} }

// IsZero reports whether nothing is to be shown.
func (b Banner) IsZero() bool {
	return b.Kind == BannerNone && b.Text == ""
}
