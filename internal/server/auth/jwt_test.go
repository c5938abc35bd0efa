package auth

import (
	"errors"
	"testing"
	"time"

	"github.com/dmitrijs2005/questkeeper/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

func TestGenerateAndParse_Success(t *testing.T) {
	t.Parallel()

	secret := []byte("super-secret")

	tok, err := GenerateToken(42, secret, time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	got, err := GetPlayerIDFromToken(tok, secret)
	if err != nil {
		t.Fatalf("GetPlayerIDFromToken error: %v", err)
	}
	if got != 42 {
		t.Fatalf("player id mismatch: got %d want 42", got)
	}
}

func TestGetPlayerIDFromToken_Expired(t *testing.T) {
	t.Parallel()

	secret := []byte("secret")

	tok, err := GenerateToken(1, secret, -1*time.Second)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = GetPlayerIDFromToken(tok, secret)
	if !errors.Is(err, common.ErrTokenExpired) {
		t.Fatalf("expected common.ErrTokenExpired, got %v", err)
	}
}

func TestGetPlayerIDFromToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateToken(2, []byte("right-secret"), time.Hour)
	if err != nil {
		t.Fatalf("GenerateToken error: %v", err)
	}

	_, err = GetPlayerIDFromToken(tok, []byte("wrong-secret"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestGetPlayerIDFromToken_Malformed(t *testing.T) {
	t.Parallel()

	_, err := GetPlayerIDFromToken("not-a-jwt", []byte("k"))
	if !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected common.ErrInvalidToken, got %v", err)
	}
}

func TestGetPlayerIDFromToken_BadSubject(t *testing.T) {
	t.Parallel()

	secret := []byte("k")
	for _, sub := range []string{"", "alice", "0", "-3"} {
		tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Issuer:    issuer,
				Subject:   sub,
				ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
			},
		}).SignedString(secret)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		if _, err := GetPlayerIDFromToken(tok, secret); !errors.Is(err, common.ErrInvalidToken) {
			t.Fatalf("subject %q: expected ErrInvalidToken, got %v", sub, err)
		}
	}
}

func TestGetPlayerIDFromToken_WrongAlgorithm(t *testing.T) {
	t.Parallel()

	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS512, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			Subject:   "1",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte("k"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if _, err := GetPlayerIDFromToken(tok, []byte("k")); !errors.Is(err, common.ErrInvalidToken) {
		t.Fatalf("expected ErrInvalidToken, got %v", err)
	}
}
