package auth

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	codec := NewTokenCodec("test-secret", 24*time.Hour)

	token, err := codec.Issue(7, "a@x.com")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	identity, err := codec.Verify(token)
	if err != nil {
		t.Fatalf("Verify() error: %v", err)
	}
	if identity.UserID != 7 {
		t.Errorf("UserID = %d, want 7", identity.UserID)
	}
	if identity.Email != "a@x.com" {
		t.Errorf("Email = %q, want a@x.com", identity.Email)
	}
}

func TestVerifyRejections(t *testing.T) {
	codec := NewTokenCodec("test-secret", 24*time.Hour)
	valid, err := codec.Issue(7, "a@x.com")
	if err != nil {
		t.Fatalf("Issue() error: %v", err)
	}

	expired, err := NewTokenCodec("test-secret", -time.Minute).Issue(7, "a@x.com")
	if err != nil {
		t.Fatalf("Issue(expired) error: %v", err)
	}

	otherKey, err := NewTokenCodec("other-secret", 24*time.Hour).Issue(7, "a@x.com")
	if err != nil {
		t.Fatalf("Issue(other key) error: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty token", ""},
		{"malformed token", "not.a.jwt"},
		{"tampered payload", tamper(valid)},
		{"wrong key", otherKey},
		{"expired", expired},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := codec.Verify(tt.token); !errors.Is(err, ErrInvalidToken) {
				t.Errorf("Verify() error = %v, want ErrInvalidToken", err)
			}
		})
	}
}

// tamper flips a character in the payload segment so the signature no longer matches.
func tamper(token string) string {
	parts := strings.Split(token, ".")
	if len(parts) != 3 || len(parts[1]) == 0 {
		return token + "x"
	}
	payload := []byte(parts[1])
	if payload[0] == 'A' {
		payload[0] = 'B'
	} else {
		payload[0] = 'A'
	}
	parts[1] = string(payload)
	return strings.Join(parts, ".")
}
