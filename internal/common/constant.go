// Package common contains constants and small helpers shared by the MedHelper
// client, the flow controller and the development API.
package common

const (
	// AuthorizationHeader carries the bearer token on authenticated requests.
	AuthorizationHeader = "Authorization"
	// BearerPrefix precedes the access token in AuthorizationHeader.
	BearerPrefix = "Bearer "
	// RequestIDHeader tags every outbound request with a fresh id.
	RequestIDHeader = "X-Request-ID"

	// SessionKeyToken and SessionKeyAuthenticated are the durable storage keys
	// that make up a session.
	SessionKeyToken         = "token"
	SessionKeyAuthenticated = "isAuthenticated"

	// ResetConfirmPath is the route prefix of emailed password reset links:
	// /password-reset-confirm/{uidb64}/{token}
	ResetConfirmPath = "/password-reset-confirm"
)
