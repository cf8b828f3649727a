package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestIssueAndVerify(t *testing.T) {
	iss, err := NewIssuer("testsecret", "HS256")
	if err != nil {
		t.Fatal(err)
	}

	token, err := iss.Issue("user-1", "admin", time.Minute)
	if err != nil {
		t.Fatal(err)
	}

	claims, err := iss.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if claims.Subject != "user-1" || claims.Role != "admin" {
		t.Errorf("claims = %+v", claims)
	}
}

func TestVerifyRejects(t *testing.T) {
	iss, _ := NewIssuer("testsecret", "HS256")
	other, _ := NewIssuer("othersecret", "HS256")
	hs512, _ := NewIssuer("testsecret", "HS512")

	expired, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Minute))},
	}).SignedString([]byte("testsecret"))
	wrongKey, _ := other.Issue("u", "", 0)
	wrongAlg, _ := hs512.Issue("u", "", 0)

	tests := []struct {
		name  string
		token string
	}{
		{"garbage", "not-a-token"},
		{"expired", expired},
		{"wrong secret", wrongKey},
		{"wrong algorithm", wrongAlg},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := iss.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("err = %v, want ErrInvalidToken", err)
			}
		})
	}
}

func TestNewIssuerRejectsNonHMAC(t *testing.T) {
	if _, err := NewIssuer("s", "RS256"); err == nil {
		t.Error("RS256 should be rejected")
	}
	if _, err := NewIssuer("", "HS256"); err == nil {
		t.Error("empty secret should be rejected")
	}
}
