package authflow

import (
	"errors"

	"github.com/medhelper/medhelper/internal/client/client"
)

// Banner texts shown after a request. For each action the first message is
// used when the server rejects the request without a reason, the second
// when the request did not get a usable reply.
const (
	msgSignInFailed      = "Authentication failed"
	msgSignInRetry       = "Authentication failed. Please check your credentials."
	msgRegisterFailed    = "Registration failed"
	msgRegisterRetry     = "Registration failed. Please try again."
	msgVerifyFailed      = "Verification failed"
	msgVerifyRetry       = "Invalid verification code. Please try again."
	msgResendFailed      = "Failed to resend code"
	msgResendRetry       = "Failed to resend code. Please try again."
	msgResetLinkFailed   = "Failed to send reset link"
	msgResetLinkRetry    = "Failed to send reset link. Please try again."
	msgNewPasswordFailed = "Failed to reset password"
	msgNewPasswordRetry  = "Failed to reset password. The link may be expired."

	msgSessionNotSaved = "Could not save your session. Please try again."

	MsgVerified        = "Email verified successfully! Logging you in..."
	MsgCodeResent      = "New verification code sent to your email!"
	MsgResetLinkSent   = "Reset instructions sent! Please check your email."
	MsgPasswordChanged = "Your password has been reset successfully!"
	MsgInvalidLink     = "The password reset link is invalid or expired."
)

// action names the fallback texts of one request kind.
type action struct {
	failed string
	retry  string
}

var (
	actSignIn      = action{msgSignInFailed, msgSignInRetry}
	actRegister    = action{msgRegisterFailed, msgRegisterRetry}
	actVerify      = action{msgVerifyFailed, msgVerifyRetry}
	actResend      = action{msgResendFailed, msgResendRetry}
	actResetLink   = action{msgResetLinkFailed, msgResetLinkRetry}
	actNewPassword = action{msgNewPasswordFailed, msgNewPasswordRetry}
)

// message picks the text for a failed request: the server's reason when it
// gave one, the action's fallback when it replied without one, and the
// retry text for transport or decoding failures.
func (a action) message(err error) string {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		if apiErr.Message != "" {
			return apiErr.Message
		}
		return a.failed
	}
	return a.retry
}
