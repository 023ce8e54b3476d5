package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output.
var printlnFn = fmt.Println

// execIface is the command surface the REPL dispatches to.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	Report(ctx context.Context) error
	Unlock(ctx context.Context, args []string) error
	Activate(ctx context.Context, args []string) error
	Deactivate(ctx context.Context, args []string) error
	Failures(ctx context.Context, args []string) error
}

// runREPL reads commands until EOF or exit. It shares reader with the
// prompts of the commands, so it must not read ahead. Command errors are
// already reported to the user by the handlers and do not end the loop.
// Commands other than help, login and exit require a login.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("securelogin %s > ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
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
				printlnFn("Available commands: report, unlock <id>, activate <id>, deactivate <id>, failures <address> [hours], logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}
			continue
		case "login":
			_ = a.Login(ctx)
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if !a.isLoggedIn() {
			printlnFn("Log in first (type 'login')")
			continue
		}

		switch cmd {
		case "report":
			_ = a.Report(ctx)
		case "unlock":
			_ = a.Unlock(ctx, args)
		case "activate":
			_ = a.Activate(ctx, args)
		case "deactivate":
			_ = a.Deactivate(ctx, args)
		case "failures":
			_ = a.Failures(ctx, args)
		case "logout":
			_ = a.Logout(ctx)
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
