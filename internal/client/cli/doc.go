// Package cli provides the interactive operator console for securelogin.
//
// The console logs an administrator in over the admin gRPC API and then
// accepts commands: report, unlock, activate, deactivate, failures, logout.
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
