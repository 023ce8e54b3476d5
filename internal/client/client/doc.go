// Package client talks to the securelogin admin gRPC API on behalf of the
// console.
//
// GRPCClient keeps the access token obtained by Authenticate and attaches it
// to every later call through a unary interceptor. gRPC status codes are
// mapped to the sentinel errors ErrUnauthorized, ErrForbidden, ErrNotFound
// and ErrUnavailable so callers can match them with errors.Is.
package client
