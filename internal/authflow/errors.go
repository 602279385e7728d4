package authflow

import "errors"

var (
	// ErrBusy is returned while another request is in flight.
	ErrBusy = errors.New("authflow: request in progress")
	// ErrClosed is returned when the dialog is not open, or when a result
	// arrives after Teardown.
	ErrClosed = errors.New("authflow: dialog closed")
	// ErrWrongView is returned when the action does not belong to the
	// current view.
	ErrWrongView = errors.New("authflow: action not available in this view")
	// ErrCodeIncomplete is returned when the code has fewer than 6 digits.
	ErrCodeIncomplete = errors.New("authflow: verification code incomplete")
	// ErrCooldown is returned when a resend is requested too early.
	ErrCooldown = errors.New("authflow: resend cooldown active")
	// ErrInvalidResetLink is returned for every submit on a reset link that
	// lacks its tokens.
	ErrInvalidResetLink = errors.New("authflow: invalid reset link")
)
