package token

import (
	"encoding/base64"
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/tourbooking/auth-service/internal/core/domain"
)

func payloadToken(t *testing.T, payload map[string]any) string {
	t.Helper()
	raw, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	return header + "." + base64.RawURLEncoding.EncodeToString(raw) + ".sig"
}

func rolesOf(claims []Claim) []string {
	var roles []string
	for _, c := range claims {
		if c.Type == "role" {
			roles = append(roles, c.Value)
		}
	}
	sort.Strings(roles)
	return roles
}

func TestParseClaims_SingleRoleString(t *testing.T) {
	tok := payloadToken(t, map[string]any{
		"sub":   "user-1",
		"email": "alice@example.com",
		"role":  "Booker",
	})

	claims, err := ParseClaims(tok)
	if err != nil {
		t.Fatalf("ParseClaims: %v", err)
	}

	if got := rolesOf(claims); len(got) != 1 || got[0] != "Booker" {
		t.Fatalf("expected single Booker role, got %v", got)
	}
}

func TestParseClaims_DelimitedRoleString(t *testing.T) {
	tok := payloadToken(t, map[string]any{
		"sub":  "user-1",
		"role": `["Admin","Employee"]`,
	})

	claims, err := ParseClaims(tok)
	if err != nil {
		t.Fatalf("ParseClaims: %v", err)
	}

	want := []string{"Admin", "Employee"}
	got := rolesOf(claims)
	if len(got) != len(want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, got)
		}
	}
}

func TestParseClaims_RoleArray(t *testing.T) {
	tok := payloadToken(t, map[string]any{
		"sub":  "user-1",
		"role": []string{"Admin", "Booker"},
	})

	claims, err := ParseClaims(tok)
	if err != nil {
		t.Fatalf("ParseClaims: %v", err)
	}

	got := rolesOf(claims)
	if len(got) != 2 || got[0] != "Admin" || got[1] != "Booker" {
		t.Fatalf("expected [Admin Booker], got %v", got)
	}
}

func TestParseClaims_PreservesOtherClaims(t *testing.T) {
	tok := payloadToken(t, map[string]any{
		"sub":   "user-1",
		"email": "alice@example.com",
		"exp":   1700000000,
		"role":  "Booker",
	})

	claims, err := ParseClaims(tok)
	if err != nil {
		t.Fatalf("ParseClaims: %v", err)
	}

	byType := make(map[string]string, len(claims))
	for _, c := range claims {
		byType[c.Type] = c.Value
	}
	if byType["sub"] != "user-1" {
		t.Fatalf("sub not preserved: %v", byType)
	}
	if byType["email"] != "alice@example.com" {
		t.Fatalf("email not preserved: %v", byType)
	}
	if byType["exp"] != "1700000000" {
		t.Fatalf("exp not preserved as integral seconds: %v", byType)
	}
}

func TestParseClaims_RepadsPayload(t *testing.T) {
	// Payload lengths 2 and 3 mod 4 exercise both re-padding branches.
	for _, payload := range []map[string]any{
		{"a": "x"},
		{"ab": "xy"},
		{"abc": "xyz"},
	} {
		tok := payloadToken(t, payload)
		if _, err := ParseClaims(tok); err != nil {
			t.Fatalf("ParseClaims(%v): %v", payload, err)
		}
	}
}

func TestParseClaims_Malformed(t *testing.T) {
	for _, tok := range []string{"", "justonesegment", "bad.!!!.sig"} {
		if _, err := ParseClaims(tok); err == nil {
			t.Fatalf("expected error for %q", tok)
		}
	}
}

// Claims extracted from a minted token must reproduce the original role set
// exactly, order-independent, for both role encodings.
func TestParseClaims_RoundTripWithMint(t *testing.T) {
	codec := newTestCodec(t)

	for _, roles := range [][]string{
		{"Booker"},
		{"Admin", "Employee", "Booker"},
	} {
		signed, err := codec.Mint(domain.AccessClaims{
			Subject: "user-1",
			Email:   "alice@example.com",
			TokenID: "jti-1",
			Roles:   roles,
		}, time.Now().Add(time.Hour))
		if err != nil {
			t.Fatalf("Mint: %v", err)
		}

		claims, err := ParseClaims(signed)
		if err != nil {
			t.Fatalf("ParseClaims: %v", err)
		}

		want := append([]string(nil), roles...)
		sort.Strings(want)
		got := rolesOf(claims)
		if len(got) != len(want) {
			t.Fatalf("role set mismatch: want %v, got %v", want, got)
		}
		for i := range want {
			if got[i] != want[i] {
				t.Fatalf("role set mismatch: want %v, got %v", want, got)
			}
		}
	}
}
