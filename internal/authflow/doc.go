// Package authflow drives the sign-in dialog of the MedHelper client:
// sign-in and registration, email verification with a one-time code, and
// password reset.
//
// The dialog shows exactly one View at a time. Views change only through
// Next, a pure function of the current view and an Event. The Controller
// wraps Next with the side effects: calls to the AuthAPI, writes to the
// SessionStore, timers from the Clock and path rewrites on the Navigator.
//
// Timings
//
//   - Resend cooldown: 60 seconds from entering VerifyEmail and from every
//     resend attempt.
//   - After a successful verification the sign-in is replayed with the
//     registration credentials 1.5 seconds later.
//   - After a successful password reset the dialog returns to MainForm 3
//     seconds later.
//
// Concurrency
//
// A Controller is safe for concurrent use. At most one request is in flight;
// while it is, mutating calls fail with ErrBusy and Close refuses. Requests
// are not cancelled by Close or Teardown; their results are dropped if
// Teardown ran in the meantime.
package authflow
