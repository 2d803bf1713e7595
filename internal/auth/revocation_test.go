package auth

import (
	"testing"
	"time"
)

func TestRevocationMembershipBlocks(t *testing.T) {
	t.Parallel()

	list := NewMemoryRevocationList(time.Minute)
	t.Cleanup(list.Close)

	revoked, err := list.IsRevoked("jti-1")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Fatal("unknown id must not be revoked")
	}

	if err := list.Revoke("jti-1", time.Now().Add(time.Hour)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	revoked, err = list.IsRevoked("jti-1")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if !revoked {
		t.Fatal("revoked id must be reported as revoked")
	}
}

func TestRevocationExpires(t *testing.T) {
	t.Parallel()

	list := NewMemoryRevocationList(time.Minute)
	t.Cleanup(list.Close)

	if err := list.Revoke("short", time.Now().Add(20*time.Millisecond)); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	time.Sleep(40 * time.Millisecond)

	revoked, err := list.IsRevoked("short")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if revoked {
		t.Fatal("entry should lapse once the token has expired")
	}
}

func TestRevokeRejectsEmptyID(t *testing.T) {
	t.Parallel()

	list := NewMemoryRevocationList(time.Minute)
	t.Cleanup(list.Close)

	if err := list.Revoke("", time.Now().Add(time.Hour)); err == nil {
		t.Fatal("expected error for empty id")
	}
	if err := list.Revoke("past", time.Now().Add(-time.Hour)); err != nil {
		t.Fatalf("expired token should be ignored, got %v", err)
	}
}
