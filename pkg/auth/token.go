// Package auth issues and verifies the bearer tokens that guard the write endpoints.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")

// Claims carried by every token. Role mirrors the optional user role of the
// token generator script.
type Claims struct {
	Role string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret []byte
	method jwt.SigningMethod
}

// NewIssuer accepts the HMAC algorithms HS256, HS384 and HS512
func NewIssuer(secret, algorithm string) (*Issuer, error) {
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported JWT algorithm %q", algorithm)
	}
	if secret == "" {
		return nil, errors.New("JWT secret is empty")
	}
	return &Issuer{secret: []byte(secret), method: method}, nil
}

// Issue signs a token for subject. A zero ttl produces a token without expiry.
func (i *Issuer) Issue(subject, role string, ttl time.Duration) (string, error) {
	claims := &Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  subject,
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
	}
	if ttl != 0 {
		claims.ExpiresAt = jwt.NewNumericDate(time.Now().Add(ttl))
	}
	return jwt.NewWithClaims(i.method, claims).SignedString(i.secret)
}

// Verify parses tokenString and checks signature, algorithm and expiry
func (i *Issuer) Verify(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return i.secret, nil
	}, jwt.WithValidMethods([]string{i.method.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
