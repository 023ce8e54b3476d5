package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/dmitrijs2005/securelogin/internal/client/client"
	"github.com/dmitrijs2005/securelogin/internal/client/models"
	"github.com/dmitrijs2005/securelogin/internal/common"
)

var errUsage = errors.New("usage")

func (a *App) report(err error) error {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		fmt.Fprintln(a.out, "Not authorized:", err)
	case errors.Is(err, client.ErrForbidden):
		fmt.Fprintln(a.out, "Access denied: an administrator account is required")
	case errors.Is(err, client.ErrNotFound):
		fmt.Fprintln(a.out, "Account not found")
	case errors.Is(err, client.ErrUnavailable):
		fmt.Fprintln(a.out, "Server unavailable, try again later")
	default:
		fmt.Fprintln(a.out, "Error:", err)
	}
	return err
}

func (a *App) Login(ctx context.Context) error {
	userName, err := GetSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return a.report(err)
	}

	password, err := GetPassword(a.out)
	if err != nil {
		return a.report(err)
	}
	defer common.WipeByteArray(password)

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	if err := a.api.Authenticate(ctx, userName, password); err != nil {
		return a.report(err)
	}

	a.userName = userName
	fmt.Fprintln(a.out, "Login successful")
	return nil
}

func (a *App) Logout(context.Context) error {
	a.api.Logout()
	a.userName = ""
	fmt.Fprintln(a.out, "Logged out")
	return nil
}

func (a *App) Report(ctx context.Context) error {
	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	r, err := a.api.SecurityReport(ctx)
	if err != nil {
		return a.report(err)
	}

	fmt.Fprintf(a.out, "Security report since %s\n", r.ReportPeriod.Format(time.RFC1123))
	fmt.Fprintf(a.out, "  total:      %d\n", r.TotalAttempts)
	fmt.Fprintf(a.out, "  successful: %d (%.1f%%)\n", r.SuccessfulAttempts, r.SuccessRate)
	fmt.Fprintf(a.out, "  failed:     %d (%.1f%%)\n", r.FailedAttempts, r.FailureRate)
	return nil
}

func (a *App) Unlock(ctx context.Context, args []string) error {
	return a.changeAccount(ctx, args, "unlock", a.api.UnlockAccount)
}

func (a *App) Activate(ctx context.Context, args []string) error {
	return a.changeAccount(ctx, args, "activate", a.api.ActivateAccount)
}

func (a *App) Deactivate(ctx context.Context, args []string) error {
	return a.changeAccount(ctx, args, "deactivate", a.api.DeactivateAccount)
}

func (a *App) changeAccount(ctx context.Context, args []string, cmd string,
	call func(context.Context, string) (*models.Account, error)) error {
	if len(args) != 1 {
		fmt.Fprintf(a.out, "Usage: %s <account-id>\n", cmd)
		return errUsage
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	acc, err := call(ctx, args[0])
	if err != nil {
		return a.report(err)
	}
	fmt.Fprintf(a.out, "%s: active=%t locked=%t roles=%v\n", acc.Username, acc.Active, !acc.AccountNonLocked, acc.Roles)
	return nil
}

// Failures lists failed attempts from an address; hours defaults to 24.
func (a *App) Failures(ctx context.Context, args []string) error {
	if len(args) < 1 || len(args) > 2 {
		fmt.Fprintln(a.out, "Usage: failures <address> [hours]")
		return errUsage
	}
	hours := 24
	if len(args) == 2 {
		n, err := strconv.Atoi(args[1])
		if err != nil || n <= 0 {
			fmt.Fprintln(a.out, "hours must be a positive number")
			return errUsage
		}
		hours = n
	}

	ctx, cancel := a.withTimeout(ctx)
	defer cancel()

	list, err := a.api.RecentFailures(ctx, args[0], hours)
	if err != nil {
		return a.report(err)
	}

	if len(list) == 0 {
		fmt.Fprintf(a.out, "No failed attempts from %s in the last %dh\n", args[0], hours)
		return nil
	}
	for _, at := range list {
		fmt.Fprintf(a.out, "%s  %-20s %s\n", at.AttemptTime.Format(time.RFC3339), at.Username, at.FailureReason)
	}
	return nil
}
