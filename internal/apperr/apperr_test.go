package apperr

import (
	"errors"
	"fmt"
	"testing"
)

func TestKindOf(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"not found", NotFoundf("recipe %d not found", 4), KindNotFound},
		{"wrapped unauthorized", fmt.Errorf("update: %w", Unauthorizedf("not the owner")), KindUnauthorized},
		{"validation", Validationf("name is required"), KindValidation},
		{"conflict", Conflictf("duplicate"), KindConflict},
		{"unauthenticated", Unauthenticatedf("missing token"), KindUnauthenticated},
		{"foreign error", errors.New("disk on fire"), KindInternal},
		{"internal", Internal(errors.New("db down"), "load list"), KindInternal},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := KindOf(tt.err); got != tt.want {
				t.Fatalf("KindOf(%v) = %s, want %s", tt.err, got, tt.want)
			}
		})
	}
}

func TestErrorsIsMatchesKind(t *testing.T) {
	t.Parallel()

	err := fmt.Errorf("toggle: %w", NotFoundf("item %d not found", 9))
	if !errors.Is(err, ErrNotFound) {
		t.Fatal("expected errors.Is to match not found kind")
	}
	if errors.Is(err, ErrUnauthorized) {
		t.Fatal("did not expect unauthorized match")
	}
}

func TestMessageHidesInternalDetails(t *testing.T) {
	t.Parallel()

	if got := Message(Internal(errors.New("pq: connection refused"), "load list")); got != "internal error" {
		t.Fatalf("Message = %q", got)
	}
	if got := Message(Validationf("name is required")); got != "name is required" {
		t.Fatalf("Message = %q", got)
	}
	if got := Message(errors.New("raw")); got != "internal error" {
		t.Fatalf("Message = %q", got)
	}
}

func TestInternalUnwraps(t *testing.T) {
	t.Parallel()

	cause := errors.New("boom")
	err := Internal(cause, "save list")
	if !errors.Is(err, cause) {
		t.Fatal("expected cause to be reachable")
	}
	if err.Error() != "save list: boom" {
		t.Fatalf("Error() = %q", err.Error())
	}
}
