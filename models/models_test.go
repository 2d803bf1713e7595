package models

import "testing"

func TestNormalizeRole(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name  string
		value string
		want  string
	}{
		{"admin", RoleAdmin, RoleAdmin},
		{"user", RoleUser, RoleUser},
		{"lowercase admin is not elevated", "admin", RoleUser},
		{"empty", "", RoleUser},
	}

	for _, tt := range cases {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeRole(tt.value); got != tt.want {
				t.Fatalf("NormalizeRole(%q) = %q, want %q", tt.value, got, tt.want)
			}
		})
	}
}

func TestListItemIsChecked(t *testing.T) {
	t.Parallel()

	yes, no := true, false
	if (ListItem{}).IsChecked() {
		t.Fatal("expected nil checked flag to read as false")
	}
	if !(ListItem{Checked: &yes}).IsChecked() {
		t.Fatal("expected checked flag true")
	}
	if (ListItem{Checked: &no}).IsChecked() {
		t.Fatal("expected checked flag false")
	}
}

func TestValidReaction(t *testing.T) {
	t.Parallel()

	for kind, want := range map[string]bool{ReactionLike: true, ReactionDislike: true, "LOVE": false, "": false} {
		if got := ValidReaction(kind); got != want {
			t.Fatalf("ValidReaction(%q) = %t, want %t", kind, got, want)
		}
	}
}
