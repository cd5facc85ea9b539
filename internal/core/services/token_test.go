package services

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestToken_RoundTrip(t *testing.T) {
	svc := NewTokenService("test-secret")
	token, err := svc.GenerateToken("user-42")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	got, err := svc.ValidateToken(token)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if got != "user-42" {
		t.Fatalf("ValidateToken = %q, want user-42", got)
	}
}

func TestToken_RejectsGarbage(t *testing.T) {
	svc := NewTokenService("test-secret")
	for _, tok := range []string{"", "not-a-jwt", "a.b.c"} {
		if _, err := svc.ValidateToken(tok); err == nil {
			t.Fatalf("ValidateToken(%q) succeeded", tok)
		}
	}
}

func TestToken_RejectsWrongSecret(t *testing.T) {
	other := NewTokenService("other-secret")
	token, err := other.GenerateToken("user-42")
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}
	svc := NewTokenService("test-secret")
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("token signed with a different secret validated")
	}
}

func TestToken_RejectsExpired(t *testing.T) {
	svc := NewTokenService("test-secret")
	claims := jwt.MapClaims{
		"sub": "user-42",
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(-1 * time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("expired token validated")
	}
}

func TestToken_RejectsAlgNone(t *testing.T) {
	svc := NewTokenService("test-secret")
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString(jwt.UnsafeAllowNoneSignatureType)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("alg=none token validated")
	}
}

func TestToken_RejectsMissingSubject(t *testing.T) {
	svc := NewTokenService("test-secret")
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(time.Hour).Unix(),
	}).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := svc.ValidateToken(token); err == nil {
		t.Fatal("token without sub validated")
	}
	if !strings.Contains(token, ".") {
		t.Fatal("sanity: produced token is not a JWT")
	}
}
