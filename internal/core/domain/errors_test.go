package domain

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

func TestErrLockedOutFor_Wording(t *testing.T) {
	cases := []struct {
		name      string
		remaining time.Duration
		want      string
	}{
		{"one second", time.Second, "Try again in 1 seconds."},
		{"half a minute", 30 * time.Second, "Try again in 30 seconds."},
		{"fractional seconds round up", 10*time.Second + time.Millisecond, "Try again in 11 seconds."},
		{"exactly one minute", time.Minute, "Try again in 60 seconds."},
		{"just over a minute", time.Minute + time.Second, "Try again in 2 minutes."},
		{"four and a half minutes", 4*time.Minute + 30*time.Second, "Try again in 5 minutes."},
		{"exact minutes", 5 * time.Minute, "Try again in 5 minutes."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ErrLockedOutFor(tc.remaining)
			want := "You have attempted to login too many times. " + tc.want
			if err.Message != want {
				t.Fatalf("wording mismatch:\n want %q\n got  %q", want, err.Message)
			}
		})
	}
}

func TestAuthError_IsMatchesByCode(t *testing.T) {
	interpolated := ErrLockedOutFor(2 * time.Minute)
	if !errors.Is(interpolated, ErrAccountLockedOut) {
		t.Fatalf("interpolated lockout error must match the canonical one")
	}

	if errors.Is(ErrEmailEmpty, ErrPasswordEmpty) {
		t.Fatalf("distinct codes must not match")
	}

	wrapped := fmt.Errorf("login: %w", ErrInvalidPassword)
	if !errors.Is(wrapped, ErrInvalidPassword) {
		t.Fatalf("wrapping must preserve taxonomy matching")
	}

	if errors.Is(ErrEmailEmpty, errors.New("Email is empty.")) {
		t.Fatalf("plain errors are outside the taxonomy")
	}
}

func TestErrEmailTaken(t *testing.T) {
	err := ErrEmailTaken("alice@example.com")
	if err.Code != CodeEmailAlreadyExists {
		t.Fatalf("unexpected code %d", err.Code)
	}
	if err.Error() != "User with the email (alice@example.com) already exists." {
		t.Fatalf("wording mismatch: %q", err.Error())
	}
	if !errors.Is(err, ErrEmailTaken("other@example.com")) {
		t.Fatalf("duplicate-email errors must match regardless of the email")
	}
}

func TestParseRole(t *testing.T) {
	for _, valid := range []string{"Booker", "Employee", "Admin"} {
		role, err := ParseRole(valid)
		if err != nil || string(role) != valid {
			t.Fatalf("ParseRole(%q) = %v, %v", valid, role, err)
		}
	}
	for _, invalid := range []string{"", "booker", "SuperAdmin"} {
		if _, err := ParseRole(invalid); err == nil {
			t.Fatalf("expected ParseRole(%q) to fail", invalid)
		}
	}
}
