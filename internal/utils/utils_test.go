package utils

import (
	"testing"

	"golang.org/x/crypto/bcrypt"
)

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("s3cret", bcrypt.MinCost)
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if hash == "s3cret" {
		t.Fatal("HashPassword() returned the plain text")
	}
	if !VerifyPassword(hash, "s3cret") {
		t.Error("VerifyPassword() = false for the right password")
	}
	if VerifyPassword(hash, "wrong") {
		t.Error("VerifyPassword() = true for a wrong password")
	}
}

func TestAccessToken_RoundTrip(t *testing.T) {
	tok, err := NewAccessToken("secret", 42, 5)
	if err != nil {
		t.Fatalf("NewAccessToken() error = %v", err)
	}

	id, err := ParseAccessToken("secret", tok.Token)
	if err != nil {
		t.Fatalf("ParseAccessToken() error = %v", err)
	}
	if id != 42 {
		t.Errorf("user id = %d, want 42", id)
	}
}

func TestParseAccessToken_Rejects(t *testing.T) {
	valid, err := NewAccessToken("secret", 7, 5)
	if err != nil {
		t.Fatalf("NewAccessToken() error = %v", err)
	}
	expired, err := NewAccessToken("secret", 7, -5)
	if err != nil {
		t.Fatalf("NewAccessToken() error = %v", err)
	}

	tests := []struct {
		name   string
		secret string
		raw    string
	}{
		{name: "wrong secret", secret: "other", raw: valid.Token},
		{name: "expired", secret: "secret", raw: expired.Token},
		{name: "garbage", secret: "secret", raw: "not-a-jwt"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseAccessToken(tt.secret, tt.raw); err != ErrInvalidToken {
				t.Errorf("ParseAccessToken() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}
