// Package cli provides the interactive MedHelper command-line client.
//
// It wires configuration, the local session store, the API client, the
// sign-in dialog (package authflow) and an interactive REPL. The dialog
// commands map onto the dialog's actions; once a session is established the
// shell polls the cart size and the unread notification count in the
// background until logout.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
// See App, runREPL and describeView for details.
package cli
