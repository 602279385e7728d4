package cli

import (
	"bufio"
	"context"
	"fmt"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Open(ctx context.Context, args []string) error
	SignIn(ctx context.Context) error
	Register(ctx context.Context) error
	Verify(ctx context.Context, args []string) error
	Resend(ctx context.Context) error
	Forgot(ctx context.Context) error
	Reset(ctx context.Context) error
	Back(ctx context.Context) error
	CloseDialog(ctx context.Context) error
	Status(ctx context.Context) error
	Cart(ctx context.Context) error
	Notifications(ctx context.Context, args []string) error
	Read(ctx context.Context, args []string) error
	Logout(ctx context.Context) error
}

const (
	helpSignedOut = "Available commands: open [link], signin, register, verify [code], resend, forgot, reset, back, close, status, exit"
	helpSignedIn  = "Available commands: cart, notifications [page], read <id>, status, open [link], logout, exit"
)

// runREPL starts a simple read–eval–print loop for the MedHelper CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a' with the remaining tokens as arguments.
// Unknown commands are reported back to the user. The loop exits on EOF or
// when the user types "exit" or "quit".
//
// Prompt & Commands
//
// The prompt shows the current status (from statusFn) and accepts commands:
//
//	Dialog:
//	  - open [link]      open the sign-in dialog, optionally with a reset link
//	  - signin           sign in with email and password
//	  - register         create an account
//	  - verify [code]    submit the emailed 6-digit code
//	  - resend           ask for a new code (once a minute)
//	  - forgot           request a password reset link
//	  - reset            choose a new password from a reset link
//	  - back             return to the sign-in form
//	  - close            hide the dialog
//
//	Account (signed in):
//	  - cart             show the number of items in the cart
//	  - notifications    list notifications, optionally a page number
//	  - read <id>        mark a notification as read
//	  - logout           forget the stored session
//
//	Always:
//	  - help, status, exit | quit
//
// Errors returned by command handlers are ignored here; handlers report
// their own errors.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("medhelper %s> ", statusFn()))
		line, err := readLine(reader)
		if err != nil {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}

		case "open":
			_ = a.Open(ctx, args)

		case "signin", "login":
			_ = a.SignIn(ctx)

		case "register":
			_ = a.Register(ctx)

		case "verify":
			_ = a.Verify(ctx, args)

		case "resend":
			_ = a.Resend(ctx)

		case "forgot":
			_ = a.Forgot(ctx)

		case "reset":
			_ = a.Reset(ctx)

		case "back":
			_ = a.Back(ctx)

		case "close":
			_ = a.CloseDialog(ctx)

		case "status":
			_ = a.Status(ctx)

		case "cart":
			_ = a.Cart(ctx)

		case "notifications", "n":
			_ = a.Notifications(ctx, args)

		case "read":
			if len(args) == 0 {
				printlnFn("Usage: read <id>")
				continue
			}
			_ = a.Read(ctx, args)

		case "logout":
			_ = a.Logout(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
