// Package auth issues and verifies the HS256 session tokens handed out after
// a successful login.
package auth

import (
	"errors"
	"time"

	"github.com/dmitrijs2005/securelogin/internal/common"
	"github.com/dmitrijs2005/securelogin/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims are the registered claims plus the caller's identity. The token id
// (jti) is what logout revokes.
type Claims struct {
	jwt.RegisteredClaims
	AccountID   string   `json:"aid"`
	Authorities []string `json:"auth"`
}

// Token is a signed session token and its bookkeeping.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// GenerateToken signs a token for the identity valid for validityDuration.
func GenerateToken(id models.Identity, secretKey []byte, validityDuration time.Duration) (*Token, error) {
	now := time.Now()
	tokenID := uuid.NewString()
	expires := now.Add(validityDuration)

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        tokenID,
			Subject:   id.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		AccountID:   id.AccountID,
		Authorities: id.Authorities,
	})

	signed, err := token.SignedString(secretKey)
	if err != nil {
		return nil, err
	}

	return &Token{Value: signed, ID: tokenID, ExpiresAt: expires}, nil
}

// ParseToken verifies the signature and expiry and returns the principal the
// token was issued to. Expired tokens yield common.ErrTokenExpired, anything
// else unusable yields common.ErrInvalidToken.
func ParseToken(tokenString string, secretKey []byte) (*models.Principal, time.Time, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, time.Time{}, common.ErrTokenExpired
		}
		return nil, time.Time{}, common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject == "" || claims.ID == "" {
		return nil, time.Time{}, common.ErrInvalidToken
	}

	var expires time.Time
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}

	return &models.Principal{
		AccountID:   claims.AccountID,
		Username:    claims.Subject,
		Authorities: claims.Authorities,
		TokenID:     claims.ID,
	}, expires, nil
}
