// Package mockapi is an in-memory stand-in for the MedHelper backend, used
// for local development of the client. It serves the auth and account
// endpoints with the same paths, payloads and error bodies, and writes
// verification codes and reset links to the log instead of mailing them.
package mockapi
