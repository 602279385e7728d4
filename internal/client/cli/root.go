package cli

import (
	"context"
	"fmt"
)

// getStatus renders the prompt status: the auth state and, while the
// dialog is open, its view.
func (a *App) getStatus() string {
	s := "signed out"
	if a.isLoggedIn() {
		s = "signed in"
	}
	if a.flow.IsOpen() {
		s += " | " + a.flow.View().Name()
		if a.flow.IsLoading() {
			s += "…"
		}
	}
	return fmt.Sprintf("(%s)", s)
}

// Root prints the welcome line and runs the REPL on the app's input.
func (a *App) Root(ctx context.Context) {
	a.println("Welcome to MedHelper (type 'help' for commands)")
	if a.isLoggedIn() {
		a.watchers.Start(ctx)
	}
	runREPL(ctx, a, a.getStatus, a.reader)
}
