package auth

import (
	"testing"
	"time"
)

func TestIssueVerifyRoundTrip(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)

	token, err := mgr.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	userID, err := mgr.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if userID != "user-123" {
		t.Fatalf("Verify subject = %s, want user-123", userID)
	}
}

func TestVerifyRejectsBadTokens(t *testing.T) {
	mgr := NewManager("test-secret", time.Hour)
	other := NewManager("other-secret", time.Hour)

	goodToken, err := mgr.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	expired := NewManager("test-secret", -time.Minute)
	expiredToken, err := expired.Issue("user-123")
	if err != nil {
		t.Fatalf("Issue expired: %v", err)
	}

	tests := []struct {
		name  string
		token string
	}{
		{"empty", ""},
		{"garbage", "not.a.token"},
		{"wrong secret", mustIssue(t, other, "user-123")},
		{"expired", expiredToken},
		{"tampered", goodToken + "x"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := mgr.Verify(tt.token); err != ErrInvalidToken {
				t.Fatalf("Verify(%q) error = %v, want ErrInvalidToken", tt.name, err)
			}
		})
	}
}

func mustIssue(t *testing.T, mgr *Manager, userID string) string {
	t.Helper()
	token, err := mgr.Issue(userID)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if hash == "hunter22" {
		t.Fatalf("hash equals plaintext")
	}
	if !CheckPassword(hash, "hunter22") {
		t.Fatalf("CheckPassword rejected correct password")
	}
	if CheckPassword(hash, "hunter23") {
		t.Fatalf("CheckPassword accepted wrong password")
	}
}
