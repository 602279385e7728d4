package authflow

import "strings"

const (
	// CodeLength is the number of digits in a verification code.
	CodeLength = 6
	// MinPasswordLength applies to registration and password reset.
	MinPasswordLength = 8
)

const (
	MsgEmailRequired    = "Email is required"
	MsgPasswordRequired = "Password is required"
	MsgFullNameRequired = "Full name is required"
	MsgPasswordTooShort = "Password must be at least 8 characters"
	MsgPasswordMismatch = "Passwords do not match"
	MsgResetEmailNeeded = "Please enter your email."
)

// Credentials is the sign-in form.
type Credentials struct {
	Email    string
	Password string
}

// Registration is the registration form.
type Registration struct {
	FullName string
	Email    string
	Password string
	Confirm  string
}

// ValidationError is an input problem caught before any request is sent.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func invalid(msg string) error { return &ValidationError{Message: msg} }

func ValidateSignIn(c Credentials) error {
	if c.Email == "" {
		return invalid(MsgEmailRequired)
	}
	if c.Password == "" {
		return invalid(MsgPasswordRequired)
	}
	return nil
}

// ValidateRegistration applies the sign-in checks, then full name, length
// and confirmation, reporting the first failure.
func ValidateRegistration(r Registration) error {
	if err := ValidateSignIn(Credentials{Email: r.Email, Password: r.Password}); err != nil {
		return err
	}
	if r.FullName == "" {
		return invalid(MsgFullNameRequired)
	}
	if len(r.Password) < MinPasswordLength {
		return invalid(MsgPasswordTooShort)
	}
	if r.Password != r.Confirm {
		return invalid(MsgPasswordMismatch)
	}
	return nil
}

func ValidateNewPassword(password, confirm string) error {
	if password == "" {
		return invalid(MsgPasswordRequired)
	}
	if len(password) < MinPasswordLength {
		return invalid(MsgPasswordTooShort)
	}
	if password != confirm {
		return invalid(MsgPasswordMismatch)
	}
	return nil
}

func ValidateResetEmail(email string) error {
	if email == "" {
		return invalid(MsgResetEmailNeeded)
	}
	return nil
}

// SanitizeCode keeps the ASCII digits of raw, at most CodeLength of them.
func SanitizeCode(raw string) string {
	var b strings.Builder
	for _, r := range raw {
		if b.Len() == CodeLength {
			break
		}
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// CodeComplete reports whether code is exactly CodeLength digits.
func CodeComplete(code string) bool {
	return len(code) == CodeLength && SanitizeCode(code) == code
}
