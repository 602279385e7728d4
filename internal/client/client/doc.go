// Package client talks to the MedHelper HTTP API and bootstraps the local
// session database.
//
// # Overview
//
//  1. Client is the API contract used by the CLI and the auth flow: the six
//     authentication calls plus cart and notification reads.
//  2. HTTPClient implements it over JSON/HTTP against a fixed base origin. It
//     keeps cookies, tags requests with X-Request-ID, attaches the bearer
//     token from a TokenSource and reports 401 replies to an
//     OnUnauthorized hook.
//  3. InitDatabase and RunMigrations open the SQLite file and apply the
//     embedded goose migrations.
//
// # Error Handling
//
// Transport failures map to ErrUnavailable, undecodable bodies to
// ErrBadResponse, and other non-2xx replies to *APIError, whose Message is
// chosen from the body in this order: detail, email[0], password[0],
// non_field_errors[0]. An *APIError with status 401 or 403 also matches
// ErrUnauthorized.
package client
