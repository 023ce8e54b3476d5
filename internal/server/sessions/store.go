// Package sessions tracks revoked session tokens until they would have
// expired anyway.
package sessions

import (
	"context"
	"time"
)

// RevocationStore marks token ids as revoked. Implementations may forget a
// revocation once expiresAt has passed.
type RevocationStore interface {
	Revoke(ctx context.Context, tokenID string, expiresAt time.Time) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

const keyPrefix = "securelogin:revoked:"

// fallbackTTL is used when a token is revoked after (or at) its expiry.
const fallbackTTL = time.Minute
