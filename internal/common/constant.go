// Package common contains shared constants and sentinel errors used across
// securelogin components.
package common

// AccessTokenHeaderName is the gRPC metadata key used to carry the
// access token on outbound requests.
const AccessTokenHeaderName = "access_token"

// SessionCookieName is the cookie that carries the session token for
// browser clients.
const SessionCookieName = "SESSION"
