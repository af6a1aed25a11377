package auth_test

import (
	"testing"
	"time"

	"slumberpod/core/auth"
)

func TestHashAndVerifyPassword(t *testing.T) {
	hash, err := auth.HashPassword("sleep-tight-123")
	if err != nil {
		t.Fatalf("HashPassword returned error: %v", err)
	}
	if hash == "sleep-tight-123" {
		t.Fatal("hash must not equal the plaintext password")
	}

	if !auth.VerifyPassword("sleep-tight-123", hash) {
		t.Error("correct password must verify")
	}
	if auth.VerifyPassword("wrong-password", hash) {
		t.Error("wrong password must not verify")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", time.Hour)

	token, err := tm.GenerateToken(42, "nightowl")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}

	claims, err := tm.ParseToken(token)
	if err != nil {
		t.Fatalf("ParseToken returned error: %v", err)
	}
	if claims.UserID != 42 {
		t.Errorf("expected user id 42, got %d", claims.UserID)
	}
	if claims.Username != "nightowl" {
		t.Errorf("expected username nightowl, got %s", claims.Username)
	}
	if claims.Issuer != "slumberpod" {
		t.Errorf("expected issuer slumberpod, got %s", claims.Issuer)
	}
}

func TestParseTokenRejectsGarbage(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", time.Hour)
	if _, err := tm.ParseToken("not.a.token"); err == nil {
		t.Fatal("expected error for malformed token")
	}
}

func TestParseTokenRejectsWrongSecret(t *testing.T) {
	issuer := auth.NewTokenManager("secret-a", time.Hour)
	verifier := auth.NewTokenManager("secret-b", time.Hour)

	token, err := issuer.GenerateToken(1, "user")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	if _, err := verifier.ParseToken(token); err == nil {
		t.Fatal("expected error for token signed with a different secret")
	}
}

func TestParseTokenRejectsExpired(t *testing.T) {
	tm := auth.NewTokenManager("test-secret", -time.Minute)

	token, err := tm.GenerateToken(1, "user")
	if err != nil {
		t.Fatalf("GenerateToken returned error: %v", err)
	}
	if _, err := tm.ParseToken(token); err == nil {
		t.Fatal("expected error for expired token")
	}
}
